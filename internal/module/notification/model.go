package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the parsed inbound callback payload. It is only a
// trigger: amount and status are never trusted from it, the canonical
// payment is re-queried from the provider instead.
type Notification struct {
	TransactionID string `json:"id"`
	ShopOrderID   string `json:"shop_order_id"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Description   string `json:"description"`
	Expires       string `json:"expires"`
	Test          bool   `json:"test"`

	// Raw is the unparsed request body, retained for the audit trail.
	Raw []byte `json:"-"`
}

// CanonicalPayment is the provider's authoritative record for a
// transaction, fetched via the payments/get endpoint.
type CanonicalPayment struct {
	TransactionID string `json:"id"`
	ShopOrderID   string `json:"shop_order_id"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Description   string `json:"description"`
	Expires       string `json:"expires"`
	Test          bool   `json:"test"`

	// Raw is the provider response body for this payment.
	Raw []byte `json:"-"`
}

// RecordStatus is the downstream-processing flag on a notification
// record. It moves PENDING to PROCESSED and never back.
type RecordStatus string

const (
	RecordPending   RecordStatus = "PENDING"
	RecordProcessed RecordStatus = "PROCESSED"
)

// Record is the durable notification record, one per provider
// transaction id. It is created lazily on first sight of a transaction
// and mutated only when the incoming status differs from the stored one.
type Record struct {
	TransactionID      string
	OrderID            string
	Status             string
	Amount             string
	Currency           string
	Description        string
	Expires            string
	Test               bool
	Content            string // raw canonical payment snapshot
	NotificationStatus RecordStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Outcome is the terminal result of processing one inbound call.
type Outcome string

const (
	OutcomeRecorded  Outcome = "recorded"
	OutcomeUnchanged Outcome = "unchanged"

	OutcomeMalformedPayload     Outcome = "malformed_payload"
	OutcomeUnknownStatus        Outcome = "unknown_status"
	OutcomeOrderNotFound        Outcome = "order_not_found"
	OutcomeInstrumentMissing    Outcome = "payment_instrument_missing"
	OutcomeCanonicalUnavailable Outcome = "canonical_payment_unavailable"
	OutcomeOrderMismatch        Outcome = "order_mismatch"
	OutcomeAmountMismatch       Outcome = "amount_mismatch"
	OutcomeTerminalStatus       Outcome = "terminal_status"
	OutcomeTransportFailure     Outcome = "transport_failure"
	OutcomeStoreFailure         Outcome = "store_failure"
)

// Dropped returns true if the outcome is anything but a record write or
// an idempotent replay.
func (o Outcome) Dropped() bool {
	return o != OutcomeRecorded && o != OutcomeUnchanged
}

// Delivery is one audited inbound delivery attempt. Every call appends
// exactly one row, dropped calls included, so terminal-negative
// notifications stay auditable even though they never produce a Record.
type Delivery struct {
	ID            uuid.UUID
	TransactionID string
	OrderID       string
	Status        string
	Outcome       Outcome
	Payload       string
	ReceivedAt    time.Time
}

// Result is what the orchestrator reports for one call.
type Result struct {
	Outcome       Outcome
	TransactionID string
	OrderNo       string
}
