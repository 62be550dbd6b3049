package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleClient     Role = "CLIENT"
	RoleFreelancer Role = "FREELANCER"
	RoleAdmin      Role = "ADMIN"
)

// ParseRole validates a role value coming from the outside.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleClient, RoleFreelancer, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	PostedTasks   []Task     `gorm:"foreignKey:ClientID" json:"-"`
	AssignedTasks []Task     `gorm:"foreignKey:FreelancerID" json:"-"`
	Proposals     []Proposal `gorm:"foreignKey:FreelancerID" json:"-"`
}
