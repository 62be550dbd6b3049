package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "PENDING"
	ProposalStatusAccepted ProposalStatus = "ACCEPTED"
	ProposalStatusRejected ProposalStatus = "REJECTED"
)

// ParseProposalStatus rejects unknown status values at the boundary.
func ParseProposalStatus(s string) (ProposalStatus, bool) {
	switch ProposalStatus(s) {
	case ProposalStatusPending, ProposalStatusAccepted, ProposalStatusRejected:
		return ProposalStatus(s), true
	}
	return "", false
}

// Proposal is a freelancer's bid on a task. Once a proposal leaves PENDING it
// is immutable; at most one proposal per task ever holds ACCEPTED.
type Proposal struct {
	ID           uint64          `gorm:"primarykey" json:"id"`
	CoverLetter  string          `gorm:"type:text" json:"cover_letter"`
	BidAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"bid_amount"`
	SubmittedAt  time.Time       `gorm:"not null" json:"submitted_at"`
	Status       ProposalStatus  `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	TaskID       uint64          `gorm:"not null;index" json:"task_id"`
	FreelancerID uint64          `gorm:"not null;index" json:"freelancer_id"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Task       Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Freelancer User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}
