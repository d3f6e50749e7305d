package seeder

import (
	"context"
	"fmt"

	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/usecase/workflow"
)

// DraftSession is the part of the workflow session the seeder touches
type DraftSession interface {
	Snapshot() workflow.Snapshot
	UpdateDraft(ctx context.Context, draft domain.TransferRequest) (domain.QuotedTotal, error)
}

// DemoSeeder prefills a fresh session with the demo transfer
type DemoSeeder struct {
	session DraftSession
	draft   domain.TransferRequest
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(session DraftSession) *DemoSeeder {
	return &DemoSeeder{
		session: session,
		draft:   domain.DemoDraft(),
	}
}

// Seed stores the demo draft if the session is editing an empty draft.
// A draft the user already started is left alone.
func (s *DemoSeeder) Seed(ctx context.Context) (bool, error) {
	snapshot := s.session.Snapshot()
	if snapshot.State != domain.StateEditing || snapshot.Draft != (domain.TransferRequest{}) {
		return false, nil
	}

	// The demo draft must be submittable as-is
	if err := s.draft.Validate(); err != nil {
		return false, fmt.Errorf("demo draft: %w", err)
	}

	if _, err := s.session.UpdateDraft(ctx, s.draft); err != nil {
		return false, fmt.Errorf("seed demo draft: %w", err)
	}
	return true, nil
}
