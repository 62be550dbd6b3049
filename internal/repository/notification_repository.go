package repository

import (
	"gorm.io/gorm"

	"github.com/taskflow/marketplace-api/internal/models"
)

// GormNotificationRepository implements NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GORM notification repository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *GormNotificationRepository) ListByUserID(userID uint64) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (r *GormNotificationRepository) MarkRead(id, userID uint64) error {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
