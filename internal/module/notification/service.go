package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lunugate/server/internal/module/order"
	"github.com/lunugate/server/internal/shared/metrics"
	"go.uber.org/zap"
)

// ProviderClient queries the payment provider for the authoritative
// state of a transaction.
type ProviderClient interface {
	// GetPayment returns the canonical payment for a transaction id, or
	// nil when the provider has no payment for it.
	GetPayment(ctx context.Context, transactionID string) (*CanonicalPayment, error)
}

// Service is the per-call reconciliation orchestrator. One invocation
// per inbound callback, fully synchronous, terminal per outcome; the
// provider's own retry cadence is the only recovery mechanism.
type Service struct {
	repo      Repository
	orders    order.Gateway
	provider  ProviderClient
	validator *Validator
	locks     Locker
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewService creates a new notification service.
func NewService(
	repo Repository,
	orders order.Gateway,
	provider ProviderClient,
	locks Locker,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:      repo,
		orders:    orders,
		provider:  provider,
		validator: NewValidator(orders, logger),
		locks:     locks,
		logger:    logger,
		metrics:   m,
	}
}

// Process runs one inbound callback through the pipeline:
// parse, classify, resolve order, fetch canonical state, validate,
// record. Every gate may drop the call; a drop is final and the caller
// still acknowledges receipt.
func (s *Service) Process(ctx context.Context, payload []byte) *Result {
	n, err := Parse(payload)
	if err != nil {
		s.logger.Debug("empty or malformed callback data", zap.Error(err))
		return s.finish(ctx, &Delivery{Payload: string(payload)}, OutcomeMalformedPayload)
	}

	d := &Delivery{
		TransactionID: n.TransactionID,
		OrderID:       n.ShopOrderID,
		Status:        n.Status,
		Payload:       string(payload),
	}

	// The status gate runs before the order lookup so unknown statuses
	// never cost an external call.
	if _, err := Classify(n.Status); err != nil {
		s.logger.Debug("callback payment status is invalid",
			zap.String("transaction_id", n.TransactionID),
			zap.String("status", n.Status),
		)
		return s.finish(ctx, d, OutcomeUnknownStatus)
	}

	ord, err := s.orders.GetOrder(ctx, n.ShopOrderID, "")
	if err != nil {
		s.logger.Debug("order does not exist",
			zap.String("order_no", n.ShopOrderID),
			zap.Error(err),
		)
		return s.finish(ctx, d, OutcomeOrderNotFound)
	}

	if len(ord.PaymentInstruments) == 0 {
		s.logger.Debug("payment instrument for order does not exist",
			zap.String("order_no", ord.OrderNo),
		)
		return s.finish(ctx, d, OutcomeInstrumentMissing)
	}

	canonical, err := s.provider.GetPayment(ctx, n.TransactionID)
	if err != nil {
		s.logger.Warn("provider query failed",
			zap.String("transaction_id", n.TransactionID),
			zap.Error(err),
		)
		return s.finish(ctx, d, OutcomeTransportFailure)
	}
	if canonical == nil {
		s.logger.Debug("empty payment information data",
			zap.String("transaction_id", n.TransactionID),
		)
		return s.finish(ctx, d, OutcomeCanonicalUnavailable)
	}

	if err := s.validator.Validate(ctx, canonical, ord); err != nil {
		outcome := dropOutcome(err)
		if errors.Is(err, ErrTerminalStatus) {
			s.metrics.OrderLifecycleTotal.WithLabelValues("fail_and_reopen").Inc()
		}
		return s.finish(ctx, d, outcome)
	}

	// Serialize concurrent calls for the same transaction id before
	// touching the store.
	release, err := s.locks.Acquire(ctx, canonical.TransactionID)
	if err != nil {
		s.logger.Error("failed to acquire transaction lease",
			zap.String("transaction_id", canonical.TransactionID),
			zap.Error(err),
		)
		return s.finish(ctx, d, OutcomeStoreFailure)
	}
	defer release()

	rec, err := s.repo.GetOrCreate(ctx, canonical.TransactionID)
	if err != nil {
		s.logger.Error("failed to get or create notification record",
			zap.String("transaction_id", canonical.TransactionID),
			zap.Error(err),
		)
		return s.finish(ctx, d, OutcomeStoreFailure)
	}

	changed, err := s.repo.ApplyIfChanged(ctx, rec, canonical, ord.OrderNo)
	if err != nil {
		s.logger.Error("failed to update notification record",
			zap.String("transaction_id", canonical.TransactionID),
			zap.Error(err),
		)
		return s.finish(ctx, d, OutcomeStoreFailure)
	}

	if !changed {
		return s.finish(ctx, d, OutcomeUnchanged)
	}

	s.logger.Info("notification recorded",
		zap.String("transaction_id", canonical.TransactionID),
		zap.String("order_no", ord.OrderNo),
		zap.String("status", string(Normalize(canonical.Status))),
	)
	return s.finish(ctx, d, OutcomeRecorded)
}

// GetRecord fetches a stored notification record by transaction id.
func (s *Service) GetRecord(ctx context.Context, transactionID string) (*Record, error) {
	return s.repo.GetRecord(ctx, transactionID)
}

// finish appends the delivery audit row and records metrics. Audit
// failures are logged, never propagated: the outcome of the call is
// already decided.
func (s *Service) finish(ctx context.Context, d *Delivery, outcome Outcome) *Result {
	d.ID = uuid.New()
	d.Outcome = outcome
	d.ReceivedAt = time.Now().UTC()

	if err := s.repo.AppendDelivery(ctx, d); err != nil {
		s.logger.Error("failed to append delivery audit row",
			zap.String("transaction_id", d.TransactionID),
			zap.Error(err),
		)
	}

	if outcome.Dropped() {
		s.metrics.NotificationDrops.WithLabelValues(string(outcome)).Inc()
	}
	s.metrics.NotificationsTotal.WithLabelValues(string(outcome)).Inc()

	return &Result{
		Outcome:       outcome,
		TransactionID: d.TransactionID,
		OrderNo:       d.OrderID,
	}
}

// dropOutcome maps a validation error to its drop reason.
func dropOutcome(err error) Outcome {
	switch {
	case errors.Is(err, ErrOrderMismatch):
		return OutcomeOrderMismatch
	case errors.Is(err, ErrUnknownStatus):
		return OutcomeUnknownStatus
	case errors.Is(err, ErrAmountMismatch):
		return OutcomeAmountMismatch
	case errors.Is(err, ErrTerminalStatus):
		return OutcomeTerminalStatus
	default:
		return OutcomeStoreFailure
	}
}
