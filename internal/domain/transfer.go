package domain

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Field identifies a user-editable field of a TransferRequest
type Field string

const (
	FieldRecipient Field = "recipient"
	FieldAmount    Field = "amount"
	FieldAccount   Field = "account"
	FieldRouting   Field = "routing"
	FieldMemo      Field = "memo"
)

// MaxTransferAmount is the ceiling for a single transfer, in currency units
var MaxTransferAmount = decimal.NewFromInt(10000)

const (
	routingNumberLength = 9
	minAccountLength    = 4
)

// Validation messages shown next to the offending field
const (
	MsgRecipientRequired = "Please enter a recipient name"
	MsgInvalidRouting    = "Routing number must be 9 digits"
	MsgInvalidAccount    = "Please enter a valid account number"
	MsgInvalidAmount     = "Please enter a valid amount"
	MsgAmountTooLarge    = "Amount cannot exceed $10,000"
)

var amountPattern = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)

// ErrUnparseableAmount is returned by ParseAmount for text that is not a plain decimal
var ErrUnparseableAmount = errors.New("amount is not a decimal number")

// TransferRequest is the draft a user fills in before confirming.
// All fields hold the raw form text; Amount is a decimal string.
type TransferRequest struct {
	RecipientName string
	Amount        string
	AccountNumber string
	RoutingNumber string
	Memo          string
}

// DemoDraft returns the prefilled draft the demo starts with
func DemoDraft() TransferRequest {
	return TransferRequest{
		RecipientName: "Sarah Johnson",
		Amount:        "250.00",
		AccountNumber: "4829",
		RoutingNumber: "021000021",
		Memo:          "Rent payment",
	}
}

// Validate checks every field independently and returns ValidationErrors
// listing each invalid field, or nil when the request can be submitted
func (r TransferRequest) Validate() error {
	errs := ValidationErrors{}
	for field, raw := range map[Field]string{
		FieldRecipient: r.RecipientName,
		FieldAmount:    r.Amount,
		FieldAccount:   r.AccountNumber,
		FieldRouting:   r.RoutingNumber,
	} {
		if msg := ValidateField(field, raw); msg != "" {
			errs[field] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ParsedAmount returns the draft amount as a decimal
func (r TransferRequest) ParsedAmount() (decimal.Decimal, error) {
	return ParseAmount(r.Amount)
}

// AccountLast4 returns the last four characters of the account number
func (r TransferRequest) AccountLast4() string {
	account := strings.TrimSpace(r.AccountNumber)
	if utf8.RuneCountInString(account) <= minAccountLength {
		return account
	}
	runes := []rune(account)
	return string(runes[len(runes)-minAccountLength:])
}

// IsTransferValid reports whether all four required fields are valid
func IsTransferValid(r TransferRequest) bool {
	return r.Validate() == nil
}

// ValidateField checks a single field and returns the message to display,
// or an empty string when the value is acceptable
func ValidateField(field Field, raw string) string {
	value := strings.TrimSpace(raw)

	switch field {
	case FieldRecipient:
		if value == "" {
			return MsgRecipientRequired
		}
	case FieldRouting:
		if !isRoutingNumber(value) {
			return MsgInvalidRouting
		}
	case FieldAccount:
		// masked values such as "************4829" are checked on their raw length
		if utf8.RuneCountInString(value) < minAccountLength {
			return MsgInvalidAccount
		}
	case FieldAmount:
		amount, err := ParseAmount(value)
		if err != nil || amount.LessThanOrEqual(decimal.Zero) {
			return MsgInvalidAmount
		}
		if amount.GreaterThan(MaxTransferAmount) {
			return MsgAmountTooLarge
		}
	}
	return ""
}

func isRoutingNumber(value string) bool {
	if len(value) != routingNumberLength {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

// ParseAmount parses plain decimal text such as "250", "250.00" or ".5"
func ParseAmount(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if !amountPattern.MatchString(value) {
		return decimal.Zero, ErrUnparseableAmount
	}
	value = strings.TrimSuffix(value, ".")
	if strings.HasPrefix(value, ".") {
		value = "0" + value
	}
	return decimal.NewFromString(value)
}

// NormalizeAmount sanitizes a raw amount edit: only digits and the first
// period survive, and at most two digits are kept after the period.
// NormalizeAmount(NormalizeAmount(s)) == NormalizeAmount(s) for every s.
func NormalizeAmount(raw string) string {
	var whole, frac strings.Builder
	seenPoint := false

	for _, r := range raw {
		switch {
		case r == '.':
			seenPoint = true
		case r >= '0' && r <= '9':
			if !seenPoint {
				whole.WriteRune(r)
			} else if frac.Len() < 2 {
				frac.WriteRune(r)
			}
		}
	}

	if !seenPoint {
		return whole.String()
	}
	return whole.String() + "." + frac.String()
}
