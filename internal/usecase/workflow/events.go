package workflow

import "github.com/simaogato/transferflow-backend/internal/domain"

// EventKind identifies what changed in a session
type EventKind string

const (
	EventStateChanged  EventKind = "state_changed"
	EventQuoteUpdated  EventKind = "quote_updated"
	EventBadgeUpdated  EventKind = "badge_updated"
	EventPaymentFailed EventKind = "payment_failed"
)

// Event is delivered to subscribers after every change, in the order the changes happened
type Event struct {
	Kind  EventKind
	State domain.WorkflowState
	// From is the previous state on EventStateChanged
	From  domain.WorkflowState
	Quote domain.QuotedTotal
	Badge string
	Err   error
	// Retryable is set on EventPaymentFailed when confirming again may succeed
	Retryable bool
}

// Listener receives session events. Listeners may read the session with
// Snapshot but must not start transitions synchronously.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}
