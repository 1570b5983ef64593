package notification

import "errors"

// Module errors. Each maps to a drop reason; none of them escalates past
// the current call.
var (
	ErrInvalidNotification         = errors.New("invalid notification payload")
	ErrUnknownStatus               = errors.New("unknown payment status")
	ErrOrderNotFound               = errors.New("order not found")
	ErrPaymentInstrumentMissing    = errors.New("payment instrument missing")
	ErrCanonicalPaymentUnavailable = errors.New("canonical payment unavailable")
	ErrOrderMismatch               = errors.New("order number mismatch")
	ErrAmountMismatch              = errors.New("payment amount mismatch")
	ErrTerminalStatus              = errors.New("terminal-negative payment status")
	ErrProviderUnavailable         = errors.New("payment provider unavailable")
	ErrRecordNotFound              = errors.New("notification record not found")
)
