package notification

import (
	"encoding/json"
	"fmt"
)

// Parse decodes a raw callback body into a Notification. A body that is
// not valid JSON, or that lacks the provider transaction id or the shop
// order id, is invalid and must not be processed further.
func Parse(body []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}

	if n.TransactionID == "" || n.ShopOrderID == "" {
		return nil, fmt.Errorf("%w: missing transaction or order id", ErrInvalidNotification)
	}

	n.Raw = body
	return &n, nil
}
