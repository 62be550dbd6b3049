package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/marketplace-api/internal/dto"
	apierrors "github.com/taskflow/marketplace-api/internal/errors"
	"github.com/taskflow/marketplace-api/internal/middleware"
	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/services"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateCheckout handles POST /tasks/:id/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.paymentService.CreateCheckoutIntent(c.Request.Context(), middleware.GetUserID(c), taskID)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CheckoutResponse{
		SessionID:   session.SessionID,
		CheckoutURL: session.CheckoutURL,
	})
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(middleware.GetUserID(c), middleware.GetUserRole(c), id)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// GetByTask handles GET /tasks/:id/payment
func (h *PaymentHandler) GetByTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetByTask(middleware.GetUserID(c), middleware.GetUserRole(c), taskID)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// ListMine handles GET /payments/mine
func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var payments []models.Payment
	var err error
	if middleware.GetUserRole(c) == models.RoleFreelancer {
		payments, err = h.paymentService.ListForFreelancer(userID)
	} else {
		payments, err = h.paymentService.ListForClient(userID)
	}
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponses(payments))
}

// ListAll handles GET /payments, admin only
func (h *PaymentHandler) ListAll(c *gin.Context) {
	payments, err := h.paymentService.ListAll()
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponses(payments))
}

// TotalRevenue handles GET /payments/revenue, admin only
func (h *PaymentHandler) TotalRevenue(c *gin.Context) {
	total, err := h.paymentService.TotalRevenue()
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_revenue": total.StringFixed(2)})
}

func (h *PaymentHandler) respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPaymentNotFound), errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTaskOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotAssigned), errors.Is(err, services.ErrPaymentAlreadySettled), errors.Is(err, services.ErrPaymentNotHeld):
		apierrors.InvalidState(c, err.Error())
	case errors.Is(err, services.ErrAmountBelowMinimum):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrProcessorUnavailable):
		apierrors.ExternalFailure(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
