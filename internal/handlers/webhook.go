package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/taskflow/marketplace-api/internal/errors"
	"github.com/taskflow/marketplace-api/internal/services"
)

// WebhookHandler receives payment processor webhook deliveries
type WebhookHandler struct {
	paymentService *services.PaymentService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(paymentService *services.PaymentService) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService}
}

// HandleProcessorEvent handles POST /webhooks/payments. The processor
// retries on any non-2xx response, so only verification and attribution
// failures reject the delivery.
func (h *WebhookHandler) HandleProcessorEvent(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		apierrors.BadRequest(c, "unreadable payload")
		return
	}

	err = h.paymentService.IngestProcessorEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSignature):
			apierrors.BadRequest(c, "signature verification failed")
		case errors.Is(err, services.ErrInvalidMetadata):
			apierrors.BadRequest(c, "missing payment attribution")
		case errors.Is(err, services.ErrTaskNotFound):
			apierrors.NotFound(c, "unknown task")
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
