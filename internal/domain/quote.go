package domain

import "github.com/shopspring/decimal"

// QuotedTotal is the fee and total derived from an amount and a speed.
// It is always recomputed, never stored on its own.
type QuotedTotal struct {
	Amount decimal.Decimal
	Fee    decimal.Decimal
	Total  decimal.Decimal
}

// Quote computes the fee and the total for amount at the given speed.
// Amount and total are rounded half-up to cents.
func Quote(amount decimal.Decimal, speed DeliverySpeed) QuotedTotal {
	amount = amount.Round(2)
	fee := speed.Fee()
	return QuotedTotal{
		Amount: amount,
		Fee:    fee,
		Total:  amount.Add(fee).Round(2),
	}
}

// QuoteRaw quotes an unparsed amount string. Unparseable input quotes as zero,
// matching how an in-progress edit is displayed.
func QuoteRaw(raw string, speed DeliverySpeed) QuotedTotal {
	amount, err := ParseAmount(raw)
	if err != nil {
		amount = decimal.Zero
	}
	return Quote(amount, speed)
}
