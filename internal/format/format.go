// Package format renders amounts, accounts and times the way the transfer
// screens display them.
package format

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/simaogato/transferflow-backend/internal/domain"
)

var printer = message.NewPrinter(language.AmericanEnglish)

const timelineLayout = "3:04:05 PM"

// Currency renders d as US dollars with grouping and cents, e.g. "$10,001.99"
func Currency(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s$%s.%02d", sign, printer.Sprintf("%d", whole.IntPart()), cents)
}

// WholeDollars renders d without cents, e.g. "$10,000"
func WholeDollars(d decimal.Decimal) string {
	return "$" + printer.Sprintf("%d", d.Truncate(0).IntPart())
}

// MaskedAccount hides everything but the last four characters
func MaskedAccount(last4 string) string {
	return "•••• " + last4
}

// Fee renders a fee line: the amount for paid speeds, "Free" otherwise
func Fee(fee decimal.Decimal) string {
	if fee.IsZero() {
		return "Free"
	}
	return Currency(fee)
}

// FeeLabel names the fee line for a speed
func FeeLabel(speed domain.DeliverySpeed) string {
	if speed == domain.SpeedInstant {
		return "Instant transfer fee"
	}
	return "Transfer fee"
}

// TimelineTime renders a timeline timestamp as a 12-hour clock time with seconds
func TimelineTime(record *domain.TransactionRecord, i int) string {
	return record.Timeline[i].At.Format(timelineLayout)
}
