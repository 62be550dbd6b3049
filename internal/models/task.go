package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// ParseTaskStatus rejects unknown status values at the boundary.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted:
		return TaskStatus(s), true
	}
	return "", false
}

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	Deadline    time.Time      `gorm:"type:date;not null" json:"deadline"`
	// ClientID is immutable after creation; FreelancerID is set exactly once
	// by proposal acceptance.
	ClientID     uint64         `gorm:"not null" json:"client_id"`
	FreelancerID *uint64        `json:"freelancer_id"`
	WorkURL      *string        `gorm:"type:varchar(512)" json:"work_url"`
	CategoryID   *uint64        `json:"category_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Client     User          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Freelancer *User         `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	Category   *TaskCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Proposals  []Proposal    `gorm:"foreignKey:TaskID" json:"proposals,omitempty"`
	Payment    *Payment      `gorm:"foreignKey:TaskID" json:"payment,omitempty"`
	Reminders  []Notification `gorm:"foreignKey:TaskID" json:"-"`
}
