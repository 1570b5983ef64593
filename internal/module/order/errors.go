package order

import "errors"

// Module errors.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrTokenMismatch     = errors.New("order token mismatch")
	ErrInvalidTransition = errors.New("invalid order status transition")
)
