// Package view turns workflow values into the plain maps both transports
// send to the presentation layer.
package view

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/format"
	"github.com/simaogato/transferflow-backend/internal/usecase/workflow"
)

// Draft field keys shared by every transport
const (
	KeyRecipient = "recipient"
	KeyAmount    = "amount"
	KeyAccount   = "account"
	KeyRouting   = "routing"
	KeyMemo      = "memo"
)

// DraftFromMap reads a draft from decoded request fields. Numbers, as JSON
// and structpb decode them, are kept in decimal text form. Missing values
// and any other type read as empty.
func DraftFromMap(m map[string]interface{}) domain.TransferRequest {
	str := func(key string) string {
		switch v := m[key].(type) {
		case string:
			return v
		case float64:
			return decimal.NewFromFloat(v).String()
		}
		return ""
	}
	return domain.TransferRequest{
		RecipientName: str(KeyRecipient),
		Amount:        str(KeyAmount),
		AccountNumber: str(KeyAccount),
		RoutingNumber: str(KeyRouting),
		Memo:          str(KeyMemo),
	}
}

// Speed renders a speed the way clients send it: "instant" or "standard"
func Speed(s domain.DeliverySpeed) string {
	return strings.ToLower(string(s))
}

// Quote renders a quote as fixed two-place strings plus display text
func Quote(q domain.QuotedTotal) map[string]interface{} {
	return map[string]interface{}{
		"amount":        q.Amount.StringFixed(2),
		"fee":           q.Fee.StringFixed(2),
		"total":         q.Total.StringFixed(2),
		"fee_display":   format.Fee(q.Fee),
		"total_display": format.Currency(q.Total),
	}
}

// Confirmation renders the confirmation dialog with the account masked
func Confirmation(v domain.ConfirmationView) map[string]interface{} {
	return map[string]interface{}{
		"recipient":      v.Request.RecipientName,
		"amount":         v.Amount.StringFixed(2),
		"account":        format.MaskedAccount(v.AccountLast4),
		"memo":           v.Request.Memo,
		"speed":          Speed(v.Speed),
		"speed_title":    v.Speed.Title(),
		"delivery_label": v.Speed.DeliveryLabel(),
		"fee_label":      format.FeeLabel(v.Speed),
		"quote":          Quote(v.Quote),
	}
}

// Record renders the success receipt, timeline included
func Record(r *domain.TransactionRecord) map[string]interface{} {
	timeline := make([]interface{}, 0, len(r.Timeline))
	for i, event := range r.Timeline {
		timeline = append(timeline, map[string]interface{}{
			"label": event.Label,
			"at":    event.At.UTC().Format(time.RFC3339),
			"time":  format.TimelineTime(r, i),
		})
	}
	return map[string]interface{}{
		"id":             r.ID,
		"amount":         r.AmountString(),
		"amount_display": format.Currency(r.Amount),
		"fee":            r.Fee.StringFixed(2),
		"total":          r.Total.StringFixed(2),
		"recipient":      r.Recipient,
		"account":        format.MaskedAccount(r.AccountLast4),
		"memo":           r.Memo,
		"speed":          Speed(r.Speed),
		"timeline":       timeline,
	}
}

// Snapshot renders the whole session. The account number is always masked.
func Snapshot(s workflow.Snapshot) map[string]interface{} {
	draft := domain.TransferRequest{AccountNumber: s.Draft.AccountNumber}
	out := map[string]interface{}{
		"session_id": s.SessionID.String(),
		"state":      string(s.State),
		"speed":      Speed(s.Speed),
		"draft": map[string]interface{}{
			KeyRecipient: s.Draft.RecipientName,
			KeyAmount:    s.Draft.Amount,
			KeyAccount:   maskedOrEmpty(draft.AccountLast4()),
			KeyRouting:   s.Draft.RoutingNumber,
			KeyMemo:      s.Draft.Memo,
		},
		"quote":         Quote(s.Quote),
		"badge":         s.Badge,
		"badge_checked": s.BadgeChecked,
	}
	if s.Confirmation != nil {
		out["confirmation"] = Confirmation(*s.Confirmation)
	}
	if s.Record != nil {
		out["record"] = Record(s.Record)
	}
	if s.LastError != nil {
		out["error"] = map[string]interface{}{
			"message": s.LastError.Error(),
			"retry":   s.State == domain.StateConfirmationOpen,
		}
	}
	return out
}

func maskedOrEmpty(last4 string) string {
	if last4 == "" {
		return ""
	}
	return format.MaskedAccount(last4)
}
