package repository

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskflow/marketplace-api/internal/models"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GORM payment repository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) FindByID(id uint64, preload ...string) (*models.Payment, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var payment models.Payment
	if err := query.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *GormPaymentRepository) FindByTaskID(taskID uint64, preload ...string) (*models.Payment, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var payment models.Payment
	err := query.Where("task_id = ?", taskID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *GormPaymentRepository) ListAll() ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Preload("Task").Preload("Client").Preload("Freelancer").
		Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *GormPaymentRepository) ListByClientID(clientID uint64) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Preload("Task").Preload("Freelancer").
		Where("client_id = ?", clientID).
		Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *GormPaymentRepository) ListByFreelancerID(freelancerID uint64) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Preload("Task").Preload("Client").
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").Find(&payments).Error
	return payments, err
}

// SaveHeld is idempotent per task. The unique index on task_id collapses
// concurrent inserts for the same task; when the insert loses that race the
// retry runs as an update outside the aborted transaction.
func (r *GormPaymentRepository) SaveHeld(input HeldPaymentInput) (*models.Payment, bool, error) {
	if existing, err := r.holdExisting(input); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrPaymentNotFound) {
		return nil, false, err
	}

	var taskCount int64
	if err := r.db.Model(&models.Task{}).Where("id = ?", input.TaskID).Count(&taskCount).Error; err != nil {
		return nil, false, err
	}
	if taskCount == 0 {
		return nil, false, ErrTaskNotFound
	}

	var userCount int64
	if err := r.db.Model(&models.User{}).
		Where("id IN ?", []uint64{input.ClientID, input.FreelancerID}).
		Count(&userCount).Error; err != nil {
		return nil, false, err
	}
	wantUsers := int64(2)
	if input.ClientID == input.FreelancerID {
		wantUsers = 1
	}
	if userCount < wantUsers {
		return nil, false, ErrUserNotFound
	}

	sessionID := input.SessionID
	payment := models.Payment{
		Amount:             input.Amount,
		Currency:           input.Currency,
		ProcessorSessionID: &sessionID,
		Status:             models.PaymentStatusHeld,
		PaymentDate:        input.PaymentDate,
		TaskID:             input.TaskID,
		ClientID:           input.ClientID,
		FreelancerID:       input.FreelancerID,
	}
	if err := r.db.Create(&payment).Error; err != nil {
		// A concurrent webhook for the same task may have won the insert.
		if existing, retryErr := r.holdExisting(input); retryErr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	return &payment, true, nil
}

// holdExisting refreshes an already-recorded payment for the task from the
// processor event and moves it into escrow. COMPLETED payments are left
// untouched so a late replay cannot reopen a settled escrow.
func (r *GormPaymentRepository) holdExisting(input HeldPaymentInput) (*models.Payment, error) {
	payment, err := r.FindByTaskID(input.TaskID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusCompleted {
		return payment, nil
	}

	sessionID := input.SessionID
	payment.Amount = input.Amount
	payment.Currency = input.Currency
	payment.ProcessorSessionID = &sessionID
	payment.Status = models.PaymentStatusHeld
	payment.PaymentDate = input.PaymentDate
	if err := r.db.Save(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *GormPaymentRepository) Release(taskID uint64) (*models.Payment, error) {
	result := r.db.Model(&models.Payment{}).
		Where("task_id = ? AND status = ?", taskID, models.PaymentStatusHeld).
		Update("status", models.PaymentStatusCompleted)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Payment{}).Where("task_id = ?", taskID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrPaymentNotFound
		}
		return nil, ErrPaymentNotHeld
	}
	return r.FindByTaskID(taskID, "Task", "Client", "Freelancer")
}

func (r *GormPaymentRepository) TotalCompletedRevenue() (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
