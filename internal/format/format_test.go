package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/transferflow-backend/internal/domain"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "$0.00"},
		{in: "1.99", want: "$1.99"},
		{in: "251.99", want: "$251.99"},
		{in: "10001.99", want: "$10,001.99"},
		{in: "1234567.5", want: "$1,234,567.50"},
		{in: "-3.456", want: "-$3.46"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestWholeDollars_MatchesCeilingMessage(t *testing.T) {
	assert.Equal(t, "$10,000", WholeDollars(domain.MaxTransferAmount))
	assert.Equal(t, domain.MsgAmountTooLarge, "Amount cannot exceed "+WholeDollars(domain.MaxTransferAmount))
}

func TestFee(t *testing.T) {
	assert.Equal(t, "$1.99", Fee(domain.SpeedInstant.Fee()))
	assert.Equal(t, "Free", Fee(domain.SpeedStandard.Fee()))
	assert.Equal(t, "Instant transfer fee", FeeLabel(domain.SpeedInstant))
	assert.Equal(t, "Transfer fee", FeeLabel(domain.SpeedStandard))
}

func TestTimelineTime(t *testing.T) {
	view, err := domain.NewConfirmationView(domain.DemoDraft(), domain.SpeedInstant)
	require.NoError(t, err)

	completed := time.Date(2024, 6, 1, 14, 5, 30, 0, time.UTC)
	record := domain.NewTransactionRecord("MN-2024-000001", view, completed)

	assert.Equal(t, "2:05:15 PM", TimelineTime(record, 0))
	assert.Equal(t, "2:05:16 PM", TimelineTime(record, 1))
	assert.Equal(t, "2:05:30 PM", TimelineTime(record, 2))
	assert.Equal(t, "•••• 4829", MaskedAccount(record.AccountLast4))
}
