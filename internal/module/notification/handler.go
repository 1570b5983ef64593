package notification

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles Lunu payment callback webhooks.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the webhook routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/lunu", h.HandleCallback)
	r.GET("/lunu/records/:transaction_id", h.GetRecord)
}

// HandleCallback handles an inbound payment-status notification.
// The response is always 200: the provider's retries are the only
// recovery mechanism and a non-2xx ack would cause retry storms for
// calls this core has already decided to drop.
func (h *Handler) HandleCallback(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("failed to read callback body", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"result": string(OutcomeMalformedPayload)})
		return
	}

	res := h.service.Process(c.Request.Context(), payload)
	c.JSON(http.StatusOK, gin.H{"result": string(res.Outcome)})
}

// GetRecord returns the stored notification record for a transaction.
func (h *Handler) GetRecord(c *gin.Context) {
	transactionID := c.Param("transaction_id")

	rec, err := h.service.GetRecord(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "notification record not found",
			}})
			return
		}
		h.logger.Error("failed to fetch notification record",
			zap.String("transaction_id", transactionID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "internal server error",
		}})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction_id":      rec.TransactionID,
		"order_id":            rec.OrderID,
		"status":              rec.Status,
		"amount":              rec.Amount,
		"currency":            rec.Currency,
		"description":         rec.Description,
		"expires":             rec.Expires,
		"test":                rec.Test,
		"notification_status": string(rec.NotificationStatus),
		"created_at":          rec.CreatedAt,
		"updated_at":          rec.UpdatedAt,
	})
}
