package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateField(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		raw   string
		want  string
	}{
		{name: "Recipient present", field: FieldRecipient, raw: "Sarah Johnson", want: ""},
		{name: "Recipient blank after trim", field: FieldRecipient, raw: "   ", want: MsgRecipientRequired},
		{name: "Routing valid", field: FieldRouting, raw: "021000021", want: ""},
		{name: "Routing 8 digits", field: FieldRouting, raw: "12345678", want: MsgInvalidRouting},
		{name: "Routing with letter", field: FieldRouting, raw: "12345678a", want: MsgInvalidRouting},
		{name: "Routing 10 digits", field: FieldRouting, raw: "0210000210", want: MsgInvalidRouting},
		{name: "Routing non-ASCII digits", field: FieldRouting, raw: "٠٢١٠٠٠٠٢١", want: MsgInvalidRouting},
		{name: "Account 4 chars", field: FieldAccount, raw: "4829", want: ""},
		{name: "Account masked", field: FieldAccount, raw: "************4829", want: ""},
		{name: "Account too short", field: FieldAccount, raw: "482", want: MsgInvalidAccount},
		{name: "Amount valid", field: FieldAmount, raw: "250.00", want: ""},
		{name: "Amount at ceiling", field: FieldAmount, raw: "10000.00", want: ""},
		{name: "Amount above ceiling", field: FieldAmount, raw: "10000.01", want: MsgAmountTooLarge},
		{name: "Amount zero", field: FieldAmount, raw: "0", want: MsgInvalidAmount},
		{name: "Amount empty", field: FieldAmount, raw: "", want: MsgInvalidAmount},
		{name: "Amount garbage", field: FieldAmount, raw: "abc", want: MsgInvalidAmount},
		{name: "Amount negative", field: FieldAmount, raw: "-5", want: MsgInvalidAmount},
		{name: "Memo is never validated", field: FieldMemo, raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateField(tt.field, tt.raw))
		})
	}
}

func TestTransferRequest_Validate(t *testing.T) {
	t.Run("Demo draft is valid", func(t *testing.T) {
		assert.NoError(t, DemoDraft().Validate())
		assert.True(t, IsTransferValid(DemoDraft()))
	})

	t.Run("Every invalid field is reported", func(t *testing.T) {
		err := TransferRequest{}.Validate()
		require.Error(t, err)

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, []Field{FieldAccount, FieldAmount, FieldRecipient, FieldRouting}, verrs.Fields())
		assert.Equal(t, MsgInvalidRouting, verrs[FieldRouting])
		assert.Contains(t, err.Error(), "routing: Routing number must be 9 digits")
	})

	t.Run("Out of range amounts invalidate otherwise valid drafts", func(t *testing.T) {
		for _, amount := range []string{"0", "0.00", "-1", "10000.01", "25000"} {
			req := DemoDraft()
			req.Amount = amount
			assert.False(t, IsTransferValid(req), "amount %s", amount)
		}
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "250", want: "250"},
		{raw: "250.00", want: "250"},
		{raw: "250.", want: "250"},
		{raw: ".5", want: "0.5"},
		{raw: " 12.34 ", want: "12.34"},
		{raw: ".", wantErr: true},
		{raw: "1e3", wantErr: true},
		{raw: "1,000", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnparseableAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "250.00", want: "250.00"},
		{raw: "$1,250.5", want: "1250.5"},
		{raw: "12.345", want: "12.34"},
		{raw: "1.2.345", want: "1.23"},
		{raw: "1..5", want: "1.5"},
		{raw: "abc", want: ""},
		{raw: ".", want: "."},
		{raw: "..9", want: ".9"},
		{raw: "10000.019", want: "10000.01"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAmount(tt.raw))
		})
	}
}

func TestNormalizeAmount_Idempotent(t *testing.T) {
	inputs := []string{
		"", "0", "250.00", "1.2.3.4", "..", "12.3456", "$ 9,999.999", "abc.def", "1.", ".123", "٣.٤", "1.2a3b4",
	}
	for _, s := range inputs {
		once := NormalizeAmount(s)
		assert.Equal(t, once, NormalizeAmount(once), "input %q", s)
	}
}

func TestTransferRequest_AccountLast4(t *testing.T) {
	assert.Equal(t, "4829", TransferRequest{AccountNumber: "************4829"}.AccountLast4())
	assert.Equal(t, "4829", TransferRequest{AccountNumber: "4829"}.AccountLast4())
	assert.Equal(t, "12", TransferRequest{AccountNumber: "12"}.AccountLast4())
}
