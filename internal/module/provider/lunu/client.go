package lunu

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lunugate/server/internal/module/notification"
	"github.com/lunugate/server/internal/module/order"
	"github.com/lunugate/server/internal/shared/config"
	"github.com/lunugate/server/internal/shared/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Client talks to the Lunu merchant API. Outbound calls carry a bounded
// timeout and run behind a circuit breaker so a provider outage degrades
// to drops instead of piling up blocked calls.
type Client struct {
	cfg     *config.LunuConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewClient creates a new Lunu API client.
func NewClient(cfg *config.LunuConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	settings := gobreaker.Settings{
		Name:        "lunu",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:  logger,
		metrics: m,
	}
}

// apiResponse is the provider's envelope; every payload sits under
// "response".
type apiResponse struct {
	Response json.RawMessage `json:"response"`
}

// CreatePaymentResponse is the provider's answer to a payment creation.
type CreatePaymentResponse struct {
	TransactionID     string `json:"id"`
	ConfirmationToken string `json:"confirmation_token"`
}

// createPaymentRequest is the outbound payment creation body.
type createPaymentRequest struct {
	Email            string  `json:"email"`
	ShopOrderID      string  `json:"shop_order_id"`
	Amount           float64 `json:"amount"`
	AmountOfShipping float64 `json:"amount_of_shipping"`
	CallbackURL      string  `json:"callback_url"`
	Description      string  `json:"description"`
	Expires          string  `json:"expires"`
}

// CreatePayment registers a payment for an order with the provider and
// returns the transaction id and widget confirmation token.
func (c *Client) CreatePayment(ctx context.Context, o *order.Order) (*CreatePaymentResponse, error) {
	body := createPaymentRequest{
		Email:            o.CustomerEmail,
		ShopOrderID:      o.OrderNo,
		Amount:           o.TotalGrossPrice.Value,
		AmountOfShipping: o.ShippingGross,
		CallbackURL:      c.cfg.CallbackBaseURL + "/webhooks/lunu",
		Description:      "Order #" + o.OrderNo,
		Expires:          time.Now().Add(c.cfg.PaymentExpiry).UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal create payment request: %w", err)
	}

	headers := map[string]string{
		"Idempotence-Key": fmt.Sprintf("%s_%d_%s", c.cfg.SiteID, time.Now().UnixMilli(), o.OrderNo),
	}

	raw, err := c.do(ctx, http.MethodPost, "payments/create", payload, headers)
	c.recordRequest("create_payment", err)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("create payment: empty provider response")
	}

	var resp CreatePaymentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode create payment response: %w", err)
	}
	return &resp, nil
}

// GetPayment fetches the canonical payment state for a transaction.
// A missing payment yields (nil, nil): the caller treats it as a drop.
func (c *Client) GetPayment(ctx context.Context, transactionID string) (*notification.CanonicalPayment, error) {
	raw, err := c.do(ctx, http.MethodGet, "payments/get/"+transactionID, nil, nil)
	c.recordRequest("get_payment", err)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var p notification.CanonicalPayment
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}
	if p.TransactionID == "" {
		return nil, nil
	}
	p.Raw = raw
	return &p, nil
}

// do executes one API call through the breaker and unwraps the response
// envelope. A 2xx response without a "response" field returns nil bytes.
func (c *Client) do(ctx context.Context, method, path string, body []byte, headers map[string]string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", c.basicAuth())
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", notification.ErrProviderUnavailable, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %s %s returned %d", notification.ErrProviderUnavailable, method, path, resp.StatusCode)
		}

		var envelope apiResponse
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("decode response envelope: %w", err)
		}
		if len(envelope.Response) == 0 || string(envelope.Response) == "null" {
			return nil, nil
		}
		return envelope.Response, nil
	})
}

// basicAuth builds the Authorization header from the merchant app id and
// secret key.
func (c *Client) basicAuth() string {
	creds := c.cfg.AppID + ":" + c.cfg.SecretKey
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}

func (c *Client) recordRequest(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.ProviderRequestsTotal.WithLabelValues(operation, status).Inc()
}

// Compile-time check
var _ notification.ProviderClient = (*Client)(nil)
