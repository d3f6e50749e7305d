package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowState is the screen a transfer session is on
type WorkflowState string

const (
	StateEditing          WorkflowState = "EDITING"
	StateConfirmationOpen WorkflowState = "CONFIRMATION_OPEN"
	StateProcessing       WorkflowState = "PROCESSING"
	StateSuccess          WorkflowState = "SUCCESS"
)

// ConfirmationView is the immutable snapshot shown in the confirmation modal
type ConfirmationView struct {
	Request      TransferRequest
	Amount       decimal.Decimal
	AccountLast4 string
	Speed        DeliverySpeed
	Quote        QuotedTotal
}

// NewConfirmationView snapshots a valid draft at the given speed
func NewConfirmationView(req TransferRequest, speed DeliverySpeed) (ConfirmationView, error) {
	amount, err := req.ParsedAmount()
	if err != nil {
		return ConfirmationView{}, err
	}
	return ConfirmationView{
		Request:      req,
		Amount:       amount,
		AccountLast4: req.AccountLast4(),
		Speed:        speed,
		Quote:        Quote(amount, speed),
	}, nil
}

// TimelineEvent is one step of a completed transfer
type TimelineEvent struct {
	Label string
	At    time.Time
}

// TransactionRecord is the synthetic receipt produced when settlement completes
type TransactionRecord struct {
	ID           string
	Amount       decimal.Decimal
	Fee          decimal.Decimal
	Total        decimal.Decimal
	Recipient    string
	AccountLast4 string
	Memo         string
	Speed        DeliverySpeed
	Timeline     [3]TimelineEvent
}

// AmountString renders the amount with two decimals, e.g. "250.00"
func (r *TransactionRecord) AmountString() string {
	return r.Amount.StringFixed(2)
}
