package notification

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lunugate/server/internal/module/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupHandlerRouter(repo Repository, orders order.Gateway, provider ProviderClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	svc := newTestService(repo, orders, provider)
	h := NewHandler(svc, zap.NewNop())
	h.RegisterRoutes(r.Group("/webhooks"))
	return r
}

// Dropped calls are still acknowledged with 200: a non-2xx answer would
// only make the provider retry a call that will never pass the gates.
func TestHandleCallbackAlwaysAcks(t *testing.T) {
	repo := new(MockRepository)
	orders := new(MockOrderGateway)
	provider := new(MockProviderClient)
	repo.On("AppendDelivery", mock.Anything, mock.Anything).Return(nil)
	orders.On("GetOrder", mock.Anything, mock.Anything, mock.Anything).Return(nil, order.ErrOrderNotFound)

	r := setupHandlerRouter(repo, orders, provider)

	cases := []struct {
		name    string
		body    string
		outcome Outcome
	}{
		{"malformed body", `{broken`, OutcomeMalformedPayload},
		{"unknown status", `{"id":"tx1","shop_order_id":"00001","status":"refunded"}`, OutcomeUnknownStatus},
		{"order not found", `{"id":"tx1","shop_order_id":"00001","status":"paid"}`, OutcomeOrderNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/webhooks/lunu", bytes.NewBufferString(tc.body))
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(tc.outcome), resp["result"])
		})
	}
}

func TestHandleCallbackRecorded(t *testing.T) {
	repo := new(MockRepository)
	orders := new(MockOrderGateway)
	provider := new(MockProviderClient)

	canonical := canonicalPayment("paid", "100.00")
	rec := &Record{TransactionID: "tx1", NotificationStatus: RecordPending}

	orders.On("GetOrder", mock.Anything, "00001", "").Return(testOrder(), nil).Once()
	provider.On("GetPayment", mock.Anything, "tx1").Return(canonical, nil).Once()
	repo.On("GetOrCreate", mock.Anything, "tx1").Return(rec, nil).Once()
	repo.On("ApplyIfChanged", mock.Anything, rec, canonical, "00001").Return(true, nil).Once()
	repo.On("AppendDelivery", mock.Anything, mock.Anything).Return(nil).Once()

	r := setupHandlerRouter(repo, orders, provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/lunu", bytes.NewBuffer(validPayload()))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"result":"recorded"}`, w.Body.String())
}

func TestGetRecordNotFound(t *testing.T) {
	repo := new(MockRepository)
	orders := new(MockOrderGateway)
	provider := new(MockProviderClient)
	repo.On("GetRecord", mock.Anything, "unknown").Return(nil, ErrRecordNotFound).Once()

	r := setupHandlerRouter(repo, orders, provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhooks/lunu/records/unknown", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRecordFound(t *testing.T) {
	repo := new(MockRepository)
	orders := new(MockOrderGateway)
	provider := new(MockProviderClient)
	repo.On("GetRecord", mock.Anything, "tx1").Return(&Record{
		TransactionID:      "tx1",
		OrderID:            "00001",
		Status:             "paid",
		Amount:             "100.00",
		Currency:           "EUR",
		NotificationStatus: RecordProcessed,
	}, nil).Once()

	r := setupHandlerRouter(repo, orders, provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhooks/lunu/records/tx1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tx1", resp["transaction_id"])
	assert.Equal(t, "paid", resp["status"])
	assert.Equal(t, "PROCESSED", resp["notification_status"])
}
