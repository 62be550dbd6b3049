package dto

import (
	"time"

	"github.com/taskflow/marketplace-api/internal/models"
)

// NotificationResponse is the API representation of a notification
type NotificationResponse struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	TaskID    *uint64   `json:"task_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToNotificationResponse converts a notification model
func ToNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		TaskID:    n.TaskID,
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationResponses converts a slice of notification models
func ToNotificationResponses(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, len(notifications))
	for i := range notifications {
		responses[i] = ToNotificationResponse(&notifications[i])
	}
	return responses
}
