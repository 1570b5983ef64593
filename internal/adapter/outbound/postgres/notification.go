package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lunugate/server/internal/module/notification"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRecordEntity is the GORM entity for a notification record,
// keyed by the provider transaction id.
type NotificationRecordEntity struct {
	TransactionID      string `gorm:"primaryKey"`
	OrderID            string `gorm:"index"`
	Status             string
	Amount             string
	Currency           string
	Description        string
	Expires            string
	Test               bool
	Content            string `gorm:"type:jsonb"`
	NotificationStatus string `gorm:"not null;default:PENDING"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName returns the database table name.
func (NotificationRecordEntity) TableName() string {
	return "payment_notifications"
}

// ToDomain converts the entity to a domain Record.
func (e *NotificationRecordEntity) ToDomain() *notification.Record {
	return &notification.Record{
		TransactionID:      e.TransactionID,
		OrderID:            e.OrderID,
		Status:             e.Status,
		Amount:             e.Amount,
		Currency:           e.Currency,
		Description:        e.Description,
		Expires:            e.Expires,
		Test:               e.Test,
		Content:            e.Content,
		NotificationStatus: notification.RecordStatus(e.NotificationStatus),
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

// DeliveryEntity is the GORM entity for one audited delivery attempt.
type DeliveryEntity struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TransactionID string    `gorm:"index"`
	OrderID       string    `gorm:"index"`
	Status        string
	Outcome       string `gorm:"not null;index"`
	Payload       string `gorm:"type:jsonb"`
	ReceivedAt    time.Time
}

// TableName returns the database table name.
func (DeliveryEntity) TableName() string {
	return "payment_notification_deliveries"
}

// notificationRepository implements notification.Repository on Postgres.
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) GetOrCreate(ctx context.Context, transactionID string) (*notification.Record, error) {
	ent := &NotificationRecordEntity{
		TransactionID:      transactionID,
		NotificationStatus: string(notification.RecordPending),
	}

	// Insert-or-ignore, then reread: late creators racing on the same
	// transaction id observe the winner's row instead of erroring.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(ent).Error
	if err != nil {
		return nil, fmt.Errorf("create notification record: %w", err)
	}

	var stored NotificationRecordEntity
	err = r.db.WithContext(ctx).
		First(&stored, "transaction_id = ?", transactionID).Error
	if err != nil {
		return nil, fmt.Errorf("reread notification record: %w", err)
	}
	return stored.ToDomain(), nil
}

func (r *notificationRepository) ApplyIfChanged(ctx context.Context, rec *notification.Record, canonical *notification.CanonicalPayment, orderID string) (bool, error) {
	status := string(notification.Normalize(canonical.Status))

	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ent NotificationRecordEntity
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ent, "transaction_id = ?", rec.TransactionID).Error
		if err != nil {
			return fmt.Errorf("lock notification record: %w", err)
		}

		// Never overwrite a record whose stored status already equals
		// the incoming one.
		if ent.Status == status {
			return nil
		}

		// PROCESSED is sticky; everything else resets to PENDING for
		// the downstream consumer.
		notificationStatus := string(notification.RecordPending)
		if ent.NotificationStatus == string(notification.RecordProcessed) {
			notificationStatus = string(notification.RecordProcessed)
		}

		updates := map[string]interface{}{
			"order_id":            orderID,
			"status":              status,
			"amount":              canonical.Amount,
			"currency":            canonical.Currency,
			"description":         canonical.Description,
			"expires":             canonical.Expires,
			"test":                canonical.Test,
			"content":             string(canonical.Raw),
			"notification_status": notificationStatus,
		}
		err = tx.Model(&NotificationRecordEntity{}).
			Where("transaction_id = ?", rec.TransactionID).
			Updates(updates).Error
		if err != nil {
			return fmt.Errorf("update notification record: %w", err)
		}

		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (r *notificationRepository) GetRecord(ctx context.Context, transactionID string) (*notification.Record, error) {
	var ent NotificationRecordEntity
	err := r.db.WithContext(ctx).
		First(&ent, "transaction_id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notification.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get notification record: %w", err)
	}
	return ent.ToDomain(), nil
}

func (r *notificationRepository) AppendDelivery(ctx context.Context, d *notification.Delivery) error {
	ent := &DeliveryEntity{
		ID:            d.ID,
		TransactionID: d.TransactionID,
		OrderID:       d.OrderID,
		Status:        d.Status,
		Outcome:       string(d.Outcome),
		Payload:       d.Payload,
		ReceivedAt:    d.ReceivedAt,
	}
	if err := r.db.WithContext(ctx).Create(ent).Error; err != nil {
		return fmt.Errorf("append delivery: %w", err)
	}
	return nil
}

// Compile-time check
var _ notification.Repository = (*notificationRepository)(nil)
