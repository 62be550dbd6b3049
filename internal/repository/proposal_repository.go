package repository

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskflow/marketplace-api/internal/models"
)

// GormProposalRepository implements ProposalRepository using GORM
type GormProposalRepository struct {
	db *gorm.DB
}

// NewGormProposalRepository creates a new GORM proposal repository
func NewGormProposalRepository(db *gorm.DB) *GormProposalRepository {
	return &GormProposalRepository{db: db}
}

func (r *GormProposalRepository) Create(proposal *models.Proposal) error {
	return r.db.Create(proposal).Error
}

func (r *GormProposalRepository) FindByID(id uint64, preload ...string) (*models.Proposal, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var proposal models.Proposal
	if err := query.First(&proposal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *GormProposalRepository) ListByTaskID(taskID uint64) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.Preload("Freelancer").
		Where("task_id = ?", taskID).
		Order("submitted_at DESC").Find(&proposals).Error
	return proposals, err
}

func (r *GormProposalRepository) ListByFreelancerID(freelancerID uint64) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.Preload("Task").
		Where("freelancer_id = ?", freelancerID).
		Order("submitted_at DESC").Find(&proposals).Error
	return proposals, err
}

func (r *GormProposalRepository) ListByClientID(clientID uint64) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.Preload("Task").Preload("Freelancer").
		Joins("JOIN tasks ON tasks.id = proposals.task_id").
		Where("tasks.client_id = ?", clientID).
		Order("proposals.submitted_at DESC").Find(&proposals).Error
	return proposals, err
}

func (r *GormProposalRepository) FindAcceptedByTaskID(taskID uint64) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.Preload("Freelancer").
		Where("task_id = ? AND status = ?", taskID, models.ProposalStatusAccepted).
		First(&proposal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

// Accept runs the acceptance cascade in a single transaction. The task row
// is updated first under an OPEN guard so that concurrent accepts for the
// same task serialize there instead of deadlocking across proposal rows.
func (r *GormProposalRepository) Accept(id uint64) (*AcceptResult, error) {
	var rejectedIDs []uint64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var proposal models.Proposal
		if err := tx.First(&proposal, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProposalNotFound
			}
			return err
		}

		result := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", proposal.TaskID, models.TaskStatusOpen).
			Updates(map[string]interface{}{
				"status":        models.TaskStatusInProgress,
				"freelancer_id": proposal.FreelancerID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotOpen
		}

		result = tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", id, models.ProposalStatusPending).
			Update("status", models.ProposalStatusAccepted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProposalNotPending
		}

		var siblings []models.Proposal
		if err := tx.Where("task_id = ? AND id <> ? AND status = ?",
			proposal.TaskID, id, models.ProposalStatusPending).
			Find(&siblings).Error; err != nil {
			return err
		}

		for _, s := range siblings {
			rejectedIDs = append(rejectedIDs, s.ID)
		}
		if len(rejectedIDs) > 0 {
			if err := tx.Model(&models.Proposal{}).
				Where("id IN ?", rejectedIDs).
				Update("status", models.ProposalStatusRejected).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	accepted, err := r.FindByID(id, "Task", "Task.Client", "Freelancer")
	if err != nil {
		return nil, err
	}

	result := &AcceptResult{Proposal: accepted}
	if len(rejectedIDs) > 0 {
		if err := r.db.Preload("Freelancer").Preload("Task").
			Where("id IN ?", rejectedIDs).
			Find(&result.Rejected).Error; err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *GormProposalRepository) Reject(id uint64) (*models.Proposal, error) {
	result := r.db.Model(&models.Proposal{}).
		Where("id = ? AND status = ?", id, models.ProposalStatusPending).
		Update("status", models.ProposalStatusRejected)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Proposal{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrProposalNotFound
		}
		return nil, ErrProposalNotPending
	}
	return r.FindByID(id, "Task", "Freelancer")
}

func (r *GormProposalRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Proposal{}).Count(&count).Error
	return count, err
}

func (r *GormProposalRepository) CountByStatus(status models.ProposalStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Proposal{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *GormProposalRepository) EarningsSince(freelancerID uint64, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&models.Proposal{}).
		Joins("JOIN tasks ON tasks.id = proposals.task_id").
		Where("proposals.freelancer_id = ? AND proposals.status = ? AND tasks.status = ? AND proposals.submitted_at > ?",
			freelancerID, models.ProposalStatusAccepted, models.TaskStatusCompleted, since).
		Select("COALESCE(SUM(proposals.bid_amount), 0)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
