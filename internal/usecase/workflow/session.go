package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/simaogato/transferflow-backend/internal/async"
	"github.com/simaogato/transferflow-backend/internal/domain"
)

const tracerName = "github.com/simaogato/transferflow-backend/internal/usecase/workflow"

const transactionSerialSpace = 1000000

// Config holds session parameters that are not business rules
type Config struct {
	TransactionIDPrefix string
	StartupProbeDelay   time.Duration
}

// DefaultConfig uses the "MN" ID prefix and a 2s startup probe
func DefaultConfig() Config {
	return Config{
		TransactionIDPrefix: domain.DefaultTransactionIDPrefix,
		StartupProbeDelay:   2 * time.Second,
	}
}

// Snapshot is a read-only copy of a session
type Snapshot struct {
	SessionID    uuid.UUID
	State        domain.WorkflowState
	Draft        domain.TransferRequest
	Speed        domain.DeliverySpeed
	Quote        domain.QuotedTotal
	Badge        string
	BadgeChecked bool
	Confirmation *domain.ConfirmationView
	Record       *domain.TransactionRecord
	LastError    error
}

// Session is the transfer workflow state machine.
//
//	Editing --submit(valid)--> ConfirmationOpen --confirm--> Processing --settled--> Success
//	   ^                           |      ^                       |                      |
//	   +---------cancel------------+      +------settle failed----+                      |
//	   +------------------------------------sendAnother--------------------------------+
//
// Requests are handled one at a time. A settlement completion only applies
// while the session is still in the Processing epoch that started it.
type Session struct {
	ID           uuid.UUID
	Settlement   domain.SettlementGateway
	Capabilities domain.CapabilityChecker
	Clock        domain.Clock
	Random       domain.RandomSource
	Config       Config
	Logger       *zap.Logger
	Tracer       trace.Tracer

	mu           sync.Mutex
	state        domain.WorkflowState
	draft        domain.TransferRequest
	speed        domain.DeliverySpeed
	confirmation *domain.ConfirmationView
	record       *domain.TransactionRecord
	lastErr      error
	badgeChecked bool
	epoch        uint64
	pending      []Event
	listeners    []subscription
	nextListener int

	notifyMu    sync.Mutex
	startupOnce sync.Once
}

// NewSession creates a session in the Editing state with Instant delivery selected
func NewSession(
	settlement domain.SettlementGateway,
	capabilities domain.CapabilityChecker,
	clock domain.Clock,
	random domain.RandomSource,
	cfg Config,
	logger *zap.Logger,
) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	return &Session{
		ID:           id,
		Settlement:   settlement,
		Capabilities: capabilities,
		Clock:        clock,
		Random:       random,
		Config:       cfg,
		Logger:       logger.With(zap.String("session_id", id.String())),
		Tracer:       otel.Tracer(tracerName),
		state:        domain.StateEditing,
		speed:        domain.DefaultSpeed,
	}
}

// Subscribe registers l for session events and returns a function that removes it
func (s *Session) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextListener++
	id := s.nextListener
	s.listeners = append(s.listeners, subscription{id: id, fn: l})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the current session
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:    s.ID,
		State:        s.state,
		Draft:        s.draft,
		Speed:        s.speed,
		Quote:        domain.QuoteRaw(s.draft.Amount, s.speed),
		Badge:        s.speed.Badge(),
		BadgeChecked: s.badgeChecked,
		LastError:    s.lastErr,
	}
	if s.confirmation != nil {
		view := *s.confirmation
		snap.Confirmation = &view
	}
	if s.record != nil {
		record := *s.record
		snap.Record = &record
	}
	return snap
}

// ValidateField checks one field for blur-time feedback
func (s *Session) ValidateField(field domain.Field, raw string) string {
	return domain.ValidateField(field, raw)
}

// UpdateDraft replaces the draft while editing and re-quotes it
func (s *Session) UpdateDraft(ctx context.Context, draft domain.TransferRequest) (domain.QuotedTotal, error) {
	_, span := s.Tracer.Start(ctx, "workflow.UpdateDraft")
	defer span.End()

	s.mu.Lock()
	if err := s.requireLocked("UpdateDraft", domain.StateEditing); err != nil {
		s.mu.Unlock()
		return domain.QuotedTotal{}, spanError(span, err)
	}
	s.draft = draft
	quote := domain.QuoteRaw(draft.Amount, s.speed)
	s.emitLocked(Event{Kind: EventQuoteUpdated, State: s.state, Quote: quote})
	s.mu.Unlock()

	s.flush()
	return quote, nil
}

// EditAmount normalizes a raw amount edit, stores it in the draft and re-quotes.
// It returns the normalized text the input should now show.
func (s *Session) EditAmount(ctx context.Context, raw string) (string, domain.QuotedTotal, error) {
	_, span := s.Tracer.Start(ctx, "workflow.EditAmount")
	defer span.End()

	s.mu.Lock()
	if err := s.requireLocked("EditAmount", domain.StateEditing); err != nil {
		s.mu.Unlock()
		return "", domain.QuotedTotal{}, spanError(span, err)
	}
	normalized := domain.NormalizeAmount(raw)
	s.draft.Amount = normalized
	quote := domain.QuoteRaw(normalized, s.speed)
	s.emitLocked(Event{Kind: EventQuoteUpdated, State: s.state, Quote: quote})
	s.mu.Unlock()

	s.flush()
	return normalized, quote, nil
}

// SelectSpeed changes the delivery speed while editing and returns the new quote.
// It does not change the workflow state.
func (s *Session) SelectSpeed(ctx context.Context, speed domain.DeliverySpeed) (domain.QuotedTotal, error) {
	_, span := s.Tracer.Start(ctx, "workflow.SelectSpeed", trace.WithAttributes(
		attribute.String("transfer.speed", string(speed)),
	))
	defer span.End()

	speed, err := domain.ParseDeliverySpeed(string(speed))
	if err != nil {
		return domain.QuotedTotal{}, spanError(span, err)
	}

	s.mu.Lock()
	if err := s.requireLocked("SelectSpeed", domain.StateEditing); err != nil {
		s.mu.Unlock()
		return domain.QuotedTotal{}, spanError(span, err)
	}
	s.speed = speed
	quote := domain.QuoteRaw(s.draft.Amount, speed)
	s.emitLocked(Event{Kind: EventQuoteUpdated, State: s.state, Quote: quote})
	s.emitLocked(Event{Kind: EventBadgeUpdated, State: s.state, Badge: speed.Badge()})
	s.mu.Unlock()

	s.flush()
	s.TrackAction("select_speed", zap.String("speed", string(speed)))
	return quote, nil
}

// SubmitDraft stores draft and, when every field is valid, opens the confirmation.
// Invalid drafts stay in Editing and come back as domain.ValidationErrors.
func (s *Session) SubmitDraft(ctx context.Context, draft domain.TransferRequest) (domain.ConfirmationView, error) {
	_, span := s.Tracer.Start(ctx, "workflow.SubmitDraft")
	defer span.End()

	s.mu.Lock()
	if err := s.requireLocked("SubmitDraft", domain.StateEditing); err != nil {
		s.mu.Unlock()
		return domain.ConfirmationView{}, spanError(span, err)
	}
	s.draft = draft

	if err := draft.Validate(); err != nil {
		s.mu.Unlock()
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, f := range verrs.Fields() {
				fields = append(fields, string(f))
			}
			s.Logger.Info("draft rejected", zap.Strings("invalid_fields", fields))
		}
		span.SetAttributes(attribute.Bool("transfer.valid", false))
		return domain.ConfirmationView{}, err
	}

	view, err := domain.NewConfirmationView(draft, s.speed)
	if err != nil {
		s.mu.Unlock()
		return domain.ConfirmationView{}, spanError(span, err)
	}
	s.confirmation = &view
	s.transitionLocked(domain.StateConfirmationOpen)
	s.mu.Unlock()

	s.flush()
	s.TrackAction("submit_draft", zap.String("speed", string(view.Speed)))
	return view, nil
}

// CancelConfirmation closes the confirmation and returns to Editing with the draft intact
func (s *Session) CancelConfirmation(ctx context.Context) error {
	_, span := s.Tracer.Start(ctx, "workflow.CancelConfirmation")
	defer span.End()

	s.mu.Lock()
	if err := s.requireLocked("CancelConfirmation", domain.StateConfirmationOpen); err != nil {
		s.mu.Unlock()
		return spanError(span, err)
	}
	s.confirmation = nil
	s.lastErr = nil
	s.transitionLocked(domain.StateEditing)
	s.mu.Unlock()

	s.flush()
	return nil
}

// ConfirmAndProcess starts settlement of the open confirmation. The returned
// future resolves with the transaction record once settlement completes.
// Calling it outside ConfirmationOpen, including while a settlement is
// already running, fails with domain.ErrInvalidTransition.
func (s *Session) ConfirmAndProcess(ctx context.Context) (*async.Future[*domain.TransactionRecord], error) {
	ctx, span := s.Tracer.Start(ctx, "workflow.ConfirmAndProcess")
	defer span.End()

	s.mu.Lock()
	if err := s.requireLocked("ConfirmAndProcess", domain.StateConfirmationOpen); err != nil {
		s.mu.Unlock()
		return nil, spanError(span, err)
	}
	view := *s.confirmation
	s.epoch++
	epoch := s.epoch
	s.lastErr = nil
	s.transitionLocked(domain.StateProcessing)
	s.mu.Unlock()

	s.flush()
	s.TrackAction("confirm", zap.String("total", view.Quote.Total.StringFixed(2)))

	// settlement outlives the request that started it
	settleCtx := context.WithoutCancel(ctx)
	return async.Go(func() (*domain.TransactionRecord, error) {
		return s.settle(settleCtx, view, epoch)
	}), nil
}

func (s *Session) settle(ctx context.Context, view domain.ConfirmationView, epoch uint64) (*domain.TransactionRecord, error) {
	settleErr := s.Settlement.Settle(ctx, view)

	s.mu.Lock()
	if s.state != domain.StateProcessing || s.epoch != epoch {
		state := s.state
		s.mu.Unlock()
		s.Logger.Warn("dropping stale settlement completion",
			zap.Uint64("epoch", epoch),
			zap.String("state", string(state)),
		)
		return nil, domain.ErrStaleCompletion
	}

	if settleErr != nil {
		s.lastErr = settleErr
		s.transitionLocked(domain.StateConfirmationOpen)
		s.paymentErrorLocked(settleErr)
		s.mu.Unlock()
		s.flush()
		return nil, settleErr
	}

	now := s.Clock.Now()
	id := domain.NewTransactionID(s.Config.TransactionIDPrefix, now.Year(), s.Random.IntN(transactionSerialSpace))
	record := domain.NewTransactionRecord(id, view, now)
	s.record = record
	s.transitionLocked(domain.StateSuccess)
	s.mu.Unlock()

	s.flush()
	s.Logger.Info("transfer settled",
		zap.String("transaction_id", record.ID),
		zap.String("speed", string(record.Speed)),
		zap.String("total", record.Total.StringFixed(2)),
	)
	copied := *record
	return &copied, nil
}

// ResetSession is "send another": back to Editing with the draft cleared,
// Instant selected again and the last record discarded.
// The routing number is kept since it usually stays the same.
func (s *Session) ResetSession(ctx context.Context) error {
	_, span := s.Tracer.Start(ctx, "workflow.ResetSession")
	defer span.End()

	s.mu.Lock()
	if err := s.requireLocked("ResetSession", domain.StateSuccess); err != nil {
		s.mu.Unlock()
		return spanError(span, err)
	}
	s.draft = domain.TransferRequest{RoutingNumber: s.draft.RoutingNumber}
	s.speed = domain.DefaultSpeed
	s.confirmation = nil
	s.record = nil
	s.lastErr = nil
	s.epoch++
	s.transitionLocked(domain.StateEditing)
	s.emitLocked(Event{Kind: EventBadgeUpdated, State: s.state, Badge: s.speed.Badge()})
	s.mu.Unlock()

	s.flush()
	s.TrackAction("send_another")
	return nil
}

// ProbeBankCapability asks whether the bank behind routingNumber supports
// instant delivery. It never blocks; await the returned future for the answer.
func (s *Session) ProbeBankCapability(ctx context.Context, routingNumber string) *async.Future[bool] {
	ctx, span := s.Tracer.Start(ctx, "workflow.ProbeBankCapability")
	probeCtx := context.WithoutCancel(ctx)

	return async.Go(func() (bool, error) {
		defer span.End()
		supported, err := s.Capabilities.SupportsInstant(probeCtx, routingNumber)
		if err != nil {
			s.Logger.Warn("bank capability probe failed", zap.Error(err))
			return false, spanError(span, err)
		}
		span.SetAttributes(attribute.Bool("bank.supports_instant", supported))
		return supported, nil
	})
}

// StartCapabilityProbe runs the one-time check after load. When it completes
// the routing badge is marked as verified; it never gates submission.
// Later calls do nothing.
func (s *Session) StartCapabilityProbe() *async.Future[bool] {
	f, resolve := async.New[bool]()
	started := false

	s.startupOnce.Do(func() {
		started = true
		delay := s.Clock.After(s.Config.StartupProbeDelay)
		go func() {
			<-delay
			s.mu.Lock()
			s.badgeChecked = true
			s.emitLocked(Event{Kind: EventBadgeUpdated, State: s.state, Badge: s.speed.Badge()})
			s.mu.Unlock()
			s.flush()
			resolve(true, nil)
		}()
	})

	if !started {
		s.mu.Lock()
		checked := s.badgeChecked
		s.mu.Unlock()
		resolve(checked, nil)
	}
	return f
}

// HandlePaymentError reports a payment failure to subscribers as a retryable
// error. The draft and confirmation are left untouched.
func (s *Session) HandlePaymentError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.lastErr = err
	s.paymentErrorLocked(err)
	s.mu.Unlock()
	s.flush()
}

// TrackAction records a user action for analytics
func (s *Session) TrackAction(action string, fields ...zap.Field) {
	s.Logger.Debug("user action", append([]zap.Field{zap.String("action", action)}, fields...)...)
}

func (s *Session) paymentErrorLocked(err error) {
	s.Logger.Error("payment processing error", zap.Error(err))
	s.emitLocked(Event{Kind: EventPaymentFailed, State: s.state, Err: err, Retryable: true})
}

func (s *Session) requireLocked(op string, want domain.WorkflowState) error {
	if s.state != want {
		return &domain.TransitionError{Op: op, State: s.state}
	}
	return nil
}

func (s *Session) transitionLocked(to domain.WorkflowState) {
	from := s.state
	s.state = to
	s.Logger.Info("workflow transition",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	s.emitLocked(Event{Kind: EventStateChanged, From: from, State: to, Quote: domain.QuoteRaw(s.draft.Amount, s.speed)})
}

func (s *Session) emitLocked(e Event) {
	s.pending = append(s.pending, e)
}

// flush delivers queued events in order. notifyMu keeps deliveries from
// concurrent operations from interleaving.
func (s *Session) flush() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		events := s.pending
		s.pending = nil
		listeners := make([]subscription, len(s.listeners))
		copy(listeners, s.listeners)
		s.mu.Unlock()

		for _, e := range events {
			for _, sub := range listeners {
				sub.fn(e)
			}
		}
	}
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
