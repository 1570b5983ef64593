package order

import "context"

// Gateway is the order-management collaborator contract. The reconciler
// only reads orders and drives a single lifecycle transition; order
// creation and fulfillment live elsewhere.
type Gateway interface {
	// GetOrder fetches an order by order number. A non-empty token must
	// match the order's token.
	GetOrder(ctx context.Context, orderNo, token string) (*Order, error)

	// FailOrder marks the order failed and, when reopenBasket is set,
	// makes its contents available for a new checkout attempt. The whole
	// transition is atomic. Failing an already-failed order is a no-op.
	FailOrder(ctx context.Context, o *Order, reopenBasket bool) error
}
