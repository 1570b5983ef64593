package notification

import (
	"context"
	"strconv"

	"github.com/lunugate/server/internal/module/order"
	"go.uber.org/zap"
)

// Validator cross-checks a canonical payment against the order it claims
// to settle. On a terminal-negative status it also drives the order
// lifecycle transition, but only after the order-number and amount gates
// have passed, so a failed/expired/canceled payment for the wrong order
// or the wrong amount never touches this order.
type Validator struct {
	orders order.Gateway
	logger *zap.Logger
}

// NewValidator creates a new reconciliation validator.
func NewValidator(orders order.Gateway, logger *zap.Logger) *Validator {
	return &Validator{orders: orders, logger: logger}
}

// Validate runs the reconciliation gates in strict order and returns nil
// when the canonical payment may be recorded. Any non-nil error is a
// rejection; the caller drops the call.
func (v *Validator) Validate(ctx context.Context, canonical *CanonicalPayment, ord *order.Order) error {
	if canonical.ShopOrderID != ord.OrderNo {
		v.logger.Warn("order number mismatch",
			zap.String("canonical_order", canonical.ShopOrderID),
			zap.String("order_no", ord.OrderNo),
		)
		return ErrOrderMismatch
	}

	status := Normalize(canonical.Status)
	if !status.Valid() {
		v.logger.Warn("canonical payment status is invalid",
			zap.String("status", canonical.Status),
		)
		return ErrUnknownStatus
	}

	amount, err := strconv.ParseFloat(canonical.Amount, 64)
	if err != nil || amount != ord.TotalGrossPrice.Value {
		v.logger.Warn("payment amount mismatch",
			zap.String("canonical_amount", canonical.Amount),
			zap.Float64("order_amount", ord.TotalGrossPrice.Value),
		)
		return ErrAmountMismatch
	}

	if status.IsTerminalNegative() {
		// Fail the order and reopen the basket for a new checkout
		// attempt. The call is still rejected: terminal-negative
		// notifications never produce a notification record.
		if err := v.orders.FailOrder(ctx, ord, true); err != nil {
			v.logger.Error("failed to fail order on terminal status",
				zap.String("order_no", ord.OrderNo),
				zap.String("status", string(status)),
				zap.Error(err),
			)
		}
		return ErrTerminalStatus
	}

	return nil
}
