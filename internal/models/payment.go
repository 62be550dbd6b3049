package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusHeld      PaymentStatus = "HELD"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// ParsePaymentStatus rejects unknown status values at the boundary.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusHeld, PaymentStatusCompleted:
		return PaymentStatus(s), true
	}
	return "", false
}

// Payment is the escrow record for a task. The unique index on TaskID is what
// makes concurrent webhook deliveries for the same task collapse into one row.
// HELD→COMPLETED is the only forward transition out of HELD; a failed checkout
// never creates or updates a row.
type Payment struct {
	ID                 uint64          `gorm:"primarykey" json:"id"`
	Amount             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency           string          `gorm:"type:varchar(10);not null" json:"currency"`
	ProcessorSessionID *string         `gorm:"type:varchar(255)" json:"processor_session_id"`
	Status             PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	PaymentDate        time.Time       `gorm:"type:date;not null" json:"payment_date"`
	TaskID             uint64          `gorm:"not null;uniqueIndex" json:"task_id"`
	ClientID           uint64          `gorm:"not null;index" json:"client_id"`
	FreelancerID       uint64          `gorm:"not null;index" json:"freelancer_id"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	// Relations
	Task       Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Client     User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Freelancer User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

// AmountFromMinorUnits converts a processor amount in minor units (cents)
// into the decimal major units stored internally.
func AmountFromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// AmountToMinorUnits converts a decimal major-unit amount into the minor
// units the processor expects, rounding to the nearest cent.
func AmountToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
