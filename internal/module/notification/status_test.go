package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	valid := []string{
		"awaiting_payment_confirmation",
		"paid",
		"failed",
		"expired",
		"canceled",
	}
	for _, raw := range valid {
		got, err := Classify(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, PaymentStatus(raw), got)
	}
}

func TestClassifyRejectsUnknown(t *testing.T) {
	invalid := []string{
		"",
		"refunded",
		"PAID",       // inbound gate is case-sensitive
		"Paid",
		"cancelled",  // provider spells it "canceled"
		"awaiting",
		"paid ",
	}
	for _, raw := range invalid {
		_, err := Classify(raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, ErrUnknownStatus, raw)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, StatusPaid, Normalize("PAID"))
	assert.Equal(t, StatusExpired, Normalize("Expired"))
	assert.True(t, Normalize("FAILED").Valid())
	assert.False(t, Normalize("refunded").Valid())
}

func TestIsTerminalNegative(t *testing.T) {
	assert.True(t, StatusFailed.IsTerminalNegative())
	assert.True(t, StatusExpired.IsTerminalNegative())
	assert.True(t, StatusCanceled.IsTerminalNegative())
	assert.False(t, StatusPaid.IsTerminalNegative())
	assert.False(t, StatusAwaitingConfirmation.IsTerminalNegative())
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusPaid.IsPaid())
	assert.False(t, StatusFailed.IsPaid())
	assert.True(t, StatusAwaitingConfirmation.IsPending())
	assert.False(t, StatusPaid.IsPending())
}
