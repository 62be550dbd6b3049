package services

import (
	"errors"

	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/repository"
)

var (
	// ErrNotificationNotFound is returned when a notification does not
	// exist or belongs to another user
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationService persists and queries in-app notifications.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// Notify records an in-app notification for a user.
func (s *NotificationService) Notify(userID uint64, taskID *uint64, notifType models.NotificationType, message string) error {
	n := &models.Notification{
		Message: message,
		Type:    notifType,
		UserID:  userID,
		TaskID:  taskID,
	}
	return s.notificationRepo.Create(n)
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(userID uint64) ([]models.Notification, error) {
	return s.notificationRepo.ListByUserID(userID)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(id, userID uint64) error {
	err := s.notificationRepo.MarkRead(id, userID)
	if errors.Is(err, repository.ErrNotificationNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
