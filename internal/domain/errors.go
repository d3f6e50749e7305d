package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidTransition marks a request the current workflow state does not accept.
	// It signals a bug in the caller, not a user mistake.
	ErrInvalidTransition = errors.New("invalid workflow transition")

	// ErrSettlementFailed marks a settlement that did not complete
	ErrSettlementFailed = errors.New("settlement failed")

	// ErrStaleCompletion is returned to a waiter whose settlement finished
	// after the session had already moved on
	ErrStaleCompletion = errors.New("settlement completed after the session moved on")
)

// ValidationErrors maps each invalid field to its display message
type ValidationErrors map[Field]string

func (v ValidationErrors) Error() string {
	fields := v.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, string(f)+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the invalid fields in a stable order
func (v ValidationErrors) Fields() []Field {
	fields := make([]Field, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// TransitionError reports an operation requested in a state that does not allow it
type TransitionError struct {
	Op    string
	State WorkflowState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// SettlementError is the failure of a (simulated) payment settlement.
// The draft and confirmation survive it so the payment can be retried.
type SettlementError struct {
	Reason string
}

func (e *SettlementError) Error() string {
	return "settlement failed: " + e.Reason
}

func (e *SettlementError) Unwrap() error {
	return ErrSettlementFailed
}
