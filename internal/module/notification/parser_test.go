package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	body := []byte(`{
		"id": "tx1",
		"shop_order_id": "00001",
		"status": "paid",
		"amount": "100.00",
		"currency": "EUR",
		"description": "Order #00001",
		"expires": "2026-01-02T15:04:05Z",
		"test": true
	}`)

	n, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "tx1", n.TransactionID)
	assert.Equal(t, "00001", n.ShopOrderID)
	assert.Equal(t, "paid", n.Status)
	assert.Equal(t, "100.00", n.Amount)
	assert.Equal(t, "EUR", n.Currency)
	assert.True(t, n.Test)
	assert.Equal(t, body, n.Raw)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidNotification)
}

func TestParseMissingIDs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"missing transaction id", `{"shop_order_id": "00001", "status": "paid"}`},
		{"missing shop order id", `{"id": "tx1", "status": "paid"}`},
		{"empty strings", `{"id": "", "shop_order_id": "", "status": "paid"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidNotification)
		})
	}
}
