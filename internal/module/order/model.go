package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Status represents the lifecycle status of an order.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Money is a gross price with its currency.
type Money struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency" gorm:"default:eur"`
}

// Order represents a shop order awaiting payment settlement.
type Order struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNo         string     `json:"order_no" gorm:"uniqueIndex;not null"`
	Token           string     `json:"-" gorm:"not null"`
	CustomerEmail   string     `json:"customer_email"`
	Status          Status     `json:"status" gorm:"not null;default:pending"`
	TotalGrossPrice Money      `json:"total_gross_price" gorm:"embedded;embeddedPrefix:total_"`
	ShippingGross   float64    `json:"shipping_gross"`
	BasketReopened  bool       `json:"basket_reopened" gorm:"default:false"`
	FailedAt        *time.Time `json:"failed_at,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relations
	PaymentInstruments []PaymentInstrument `json:"payment_instruments,omitempty" gorm:"foreignKey:OrderID"`
	Items              []Item              `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// IsPending returns true if the order is awaiting payment.
func (o *Order) IsPending() bool {
	return o.Status == StatusPending
}

// IsFailed returns true if the order has been failed.
func (o *Order) IsFailed() bool {
	return o.Status == StatusFailed
}

// PaymentInstrument represents a payment method attached to an order.
type PaymentInstrument struct {
	ID                 uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID            uuid.UUID      `json:"order_id" gorm:"type:uuid;not null;index"`
	Method             string         `json:"method" gorm:"not null"`
	TransactionID      string         `json:"transaction_id" gorm:"index"`
	AcceptedCurrencies pq.StringArray `json:"accepted_currencies" gorm:"type:text[]"`
	CreatedAt          time.Time      `json:"created_at"`
}

// TableName returns the database table name.
func (PaymentInstrument) TableName() string {
	return "order_payment_instruments"
}

// Item represents a basket line item of an order.
type Item struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID     uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   string    `json:"product_id" gorm:"not null"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity" gorm:"not null;default:1"`
	GrossPrice  float64   `json:"gross_price"`
	Restocked   bool      `json:"restocked" gorm:"default:false"`
}

// TableName returns the database table name.
func (Item) TableName() string {
	return "order_items"
}
