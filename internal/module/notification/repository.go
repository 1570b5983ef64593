package notification

import "context"

// Repository is the durable notification store.
type Repository interface {
	// GetOrCreate looks up the record for a transaction id, creating an
	// empty PENDING record when none exists. Concurrent creators must
	// converge on a single record: create-then-reread, never error on a
	// lost race.
	GetOrCreate(ctx context.Context, transactionID string) (*Record, error)

	// ApplyIfChanged overwrites the record's snapshot from the canonical
	// payment when, and only when, the stored status differs from the
	// canonical one. Returns true if a write happened. The
	// notification-status flag is sticky: PROCESSED stays PROCESSED.
	ApplyIfChanged(ctx context.Context, rec *Record, canonical *CanonicalPayment, orderID string) (bool, error)

	// GetRecord fetches a record by transaction id.
	GetRecord(ctx context.Context, transactionID string) (*Record, error)

	// AppendDelivery records one inbound delivery attempt and its outcome.
	AppendDelivery(ctx context.Context, d *Delivery) error
}
