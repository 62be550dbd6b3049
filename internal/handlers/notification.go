package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/marketplace-api/internal/dto"
	apierrors "github.com/taskflow/marketplace-api/internal/errors"
	"github.com/taskflow/marketplace-api/internal/middleware"
	"github.com/taskflow/marketplace-api/internal/services"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.notificationService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.ToNotificationResponses(notifications))
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(id, middleware.GetUserID(c)); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			apierrors.NotFound(c, err.Error())
			return
		}
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}
