package domain

import (
	"fmt"
	"time"
)

// DefaultTransactionIDPrefix starts every synthetic transaction ID
const DefaultTransactionIDPrefix = "MN"

const transactionSerialSpace = 1000000

// Timeline offsets relative to completion
const (
	submittedOffset = -15 * time.Second
	confirmedOffset = -14 * time.Second
)

// NewTransactionID formats an ID such as "MN-2024-004213"
func NewTransactionID(prefix string, year int, serial int) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, serial%transactionSerialSpace)
}

// NewTransactionRecord builds the receipt for a settled confirmation.
// The three timeline entries sit 15s and 14s before completion and at completion.
func NewTransactionRecord(id string, view ConfirmationView, completedAt time.Time) *TransactionRecord {
	return &TransactionRecord{
		ID:           id,
		Amount:       view.Quote.Amount,
		Fee:          view.Quote.Fee,
		Total:        view.Quote.Total,
		Recipient:    view.Request.RecipientName,
		AccountLast4: view.AccountLast4,
		Memo:         view.Request.Memo,
		Speed:        view.Speed,
		Timeline: [3]TimelineEvent{
			{Label: "Payment initiated", At: completedAt.Add(submittedOffset)},
			{Label: "Sent via " + view.Speed.Rail(), At: completedAt.Add(confirmedOffset)},
			{Label: "Delivered", At: completedAt},
		},
	}
}
