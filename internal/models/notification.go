package models

import "time"

type NotificationType string

const (
	NotificationTaskAssigned     NotificationType = "TASK_ASSIGNED"
	NotificationProposalUpdate   NotificationType = "PROPOSAL_UPDATE"
	NotificationPaymentReceived  NotificationType = "PAYMENT_RECEIVED"
	NotificationPaymentReleased  NotificationType = "PAYMENT_RELEASED"
	NotificationDeadlineReminder NotificationType = "DEADLINE_REMINDER"
)

type Notification struct {
	ID        uint64           `gorm:"primarykey" json:"id"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Type      NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	UserID    uint64           `gorm:"not null;index" json:"user_id"`
	TaskID    *uint64          `gorm:"index" json:"task_id"`
	CreatedAt time.Time        `json:"created_at"`

	// Relations
	User User  `gorm:"foreignKey:UserID" json:"-"`
	Task *Task `gorm:"foreignKey:TaskID" json:"-"`
}
