package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "github.com/taskflow/marketplace-api/internal/errors"
	"github.com/taskflow/marketplace-api/internal/services"
)

// ReminderHandler exposes the deadline reminder sweep for manual runs
type ReminderHandler struct {
	reminderService *services.ReminderService
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderService *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// RunSweep handles POST /admin/reminders/sweep, admin only
func (h *ReminderHandler) RunSweep(c *gin.Context) {
	summary, err := h.reminderService.RunSweep(time.Now())
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, summary)
}
