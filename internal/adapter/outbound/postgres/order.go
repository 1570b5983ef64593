package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lunugate/server/internal/module/order"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderGateway implements order.Gateway on Postgres. The reconciler
// treats order management as a collaborator; this adapter is the default
// implementation backing that contract.
type orderGateway struct {
	db *gorm.DB
	sm *order.StateMachine
}

// NewOrderGateway creates a new order gateway adapter.
func NewOrderGateway(db *gorm.DB) order.Gateway {
	return &orderGateway{db: db, sm: order.NewStateMachine()}
}

func (g *orderGateway) GetOrder(ctx context.Context, orderNo, token string) (*order.Order, error) {
	var o order.Order
	err := g.db.WithContext(ctx).
		Preload("PaymentInstruments").
		Preload("Items").
		First(&o, "order_no = ?", orderNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if token != "" && o.Token != token {
		return nil, order.ErrTokenMismatch
	}
	return &o, nil
}

func (g *orderGateway) FailOrder(ctx context.Context, o *order.Order, reopenBasket bool) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored order.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&stored, "order_no = ?", o.OrderNo).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return order.ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		// Failing an already-failed order must not error the pipeline.
		if stored.IsFailed() {
			return nil
		}

		if err := g.sm.Transition(&stored, order.StatusFailed); err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":    order.StatusFailed,
			"failed_at": now,
		}
		if reopenBasket {
			updates["basket_reopened"] = true
		}
		err = tx.Model(&order.Order{}).
			Where("order_no = ?", o.OrderNo).
			Updates(updates).Error
		if err != nil {
			return fmt.Errorf("fail order: %w", err)
		}

		if reopenBasket {
			err = tx.Model(&order.Item{}).
				Where("order_id = ?", stored.ID).
				Update("restocked", true).Error
			if err != nil {
				return fmt.Errorf("restock order items: %w", err)
			}
		}

		o.Status = order.StatusFailed
		o.FailedAt = &now
		o.BasketReopened = o.BasketReopened || reopenBasket
		return nil
	})
}

// Compile-time check
var _ order.Gateway = (*orderGateway)(nil)
