package notification

import (
	"fmt"
	"strings"
)

// PaymentStatus is the closed set of payment statuses the Lunu provider
// reports. Anything outside this set is invalid and short-circuits
// processing.
type PaymentStatus string

const (
	StatusAwaitingConfirmation PaymentStatus = "awaiting_payment_confirmation"
	StatusPaid                 PaymentStatus = "paid"
	StatusFailed               PaymentStatus = "failed"
	StatusExpired              PaymentStatus = "expired"
	StatusCanceled             PaymentStatus = "canceled"
)

// validStatuses is the accepted set, exactly five values.
var validStatuses = map[PaymentStatus]struct{}{
	StatusAwaitingConfirmation: {},
	StatusPaid:                 {},
	StatusFailed:               {},
	StatusExpired:              {},
	StatusCanceled:             {},
}

// Classify maps a raw provider status string to a PaymentStatus. The
// inbound gate is case-sensitive: statuses arrive lowercased from the
// provider and anything else is rejected before any order lookup.
func Classify(raw string) (PaymentStatus, error) {
	s := PaymentStatus(raw)
	if _, ok := validStatuses[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// Normalize lowercases a canonical status for comparison against the
// valid set. Used when checking the provider's authoritative record,
// which is not trusted to preserve case.
func Normalize(raw string) PaymentStatus {
	return PaymentStatus(strings.ToLower(raw))
}

// Valid returns true if the status is a member of the closed set.
func (s PaymentStatus) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

// IsTerminalNegative returns true if no further payment progress is
// possible and the order must be failed.
func (s PaymentStatus) IsTerminalNegative() bool {
	return s == StatusFailed || s == StatusExpired || s == StatusCanceled
}

// IsPaid returns true if the status is the terminal-positive outcome.
func (s PaymentStatus) IsPaid() bool {
	return s == StatusPaid
}

// IsPending returns true if the payment is still awaiting confirmation.
func (s PaymentStatus) IsPending() bool {
	return s == StatusAwaitingConfirmation
}
