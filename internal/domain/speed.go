package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DeliverySpeed represents how fast a transfer reaches the recipient bank
type DeliverySpeed string

const (
	SpeedInstant  DeliverySpeed = "INSTANT"
	SpeedStandard DeliverySpeed = "STANDARD"
)

// DefaultSpeed is the speed selected at session start and after every reset
const DefaultSpeed = SpeedInstant

var (
	// InstantFee is charged on top of the amount for instant delivery
	InstantFee = decimal.RequireFromString("1.99")
	// StandardFee is the fee for standard delivery (free)
	StandardFee = decimal.Zero
)

// Fee returns the fee associated with the speed
func (s DeliverySpeed) Fee() decimal.Decimal {
	if s == SpeedInstant {
		return InstantFee
	}
	return StandardFee
}

// DeliveryLabel describes when the money arrives
func (s DeliverySpeed) DeliveryLabel() string {
	if s == SpeedInstant {
		return "delivers in ~15 seconds"
	}
	return "delivers by end of business day"
}

// Title is the heading shown on the confirmation view
func (s DeliverySpeed) Title() string {
	if s == SpeedInstant {
		return "Instant Payment"
	}
	return "Standard Payment"
}

// Rail names the payment network used for the speed
func (s DeliverySpeed) Rail() string {
	if s == SpeedInstant {
		return "FedNow"
	}
	return "Same-Day ACH"
}

// Badge is the routing badge text shown next to the speed options
func (s DeliverySpeed) Badge() string {
	if s == SpeedInstant {
		return "Recipient bank supports FedNow - Instant delivery available"
	}
	return "Payment will be sent via Same-Day ACH"
}

// Valid reports whether s is one of the known speeds
func (s DeliverySpeed) Valid() bool {
	return s == SpeedInstant || s == SpeedStandard
}

// ParseDeliverySpeed accepts "instant" or "standard" in any case
func ParseDeliverySpeed(raw string) (DeliverySpeed, error) {
	speed := DeliverySpeed(strings.ToUpper(strings.TrimSpace(raw)))
	if !speed.Valid() {
		return "", fmt.Errorf("invalid delivery speed %q: must be instant or standard", raw)
	}
	return speed, nil
}
