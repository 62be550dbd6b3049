package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/marketplace-api/internal/database"
	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/utils"
)

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM task repository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	var task models.Task
	if err := query.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *GormTaskRepository) ListAll() ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("Client").Preload("Category").
		Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *GormTaskRepository) ListPaginated(params utils.PaginationParams) ([]models.Task, int64, error) {
	var total int64
	if err := r.db.Model(&models.Task{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := r.db.Preload("Client").Preload("Category").
		Scopes(database.Paginate(params)).
		Order("created_at DESC").Find(&tasks).Error
	return tasks, total, err
}

func (r *GormTaskRepository) ListByClientID(clientID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("Freelancer").Preload("Category").
		Where("client_id = ?", clientID).
		Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *GormTaskRepository) ListByFreelancerID(freelancerID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("Client").Preload("Category").
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Proposal{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

func (r *GormTaskRepository) CompleteInProgress(id uint64, workURL *string) (*models.Task, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": models.TaskStatusCompleted}
		if workURL != nil {
			updates["work_url"] = *workURL
		}

		result := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", id, models.TaskStatusInProgress).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrTaskNotFound
			}
			return ErrTaskNotInProgress
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(id, "Client", "Freelancer")
}

func (r *GormTaskRepository) CountByStatus(status models.TaskStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *GormTaskRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Count(&count).Error
	return count, err
}

func (r *GormTaskRepository) ListInProgressDeadlineOn(day time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("Client").Preload("Freelancer").
		Where("status = ? AND deadline >= ? AND deadline < ?",
			models.TaskStatusInProgress, day, day.AddDate(0, 0, 1)).
		Find(&tasks).Error
	return tasks, err
}

func (r *GormTaskRepository) ListInProgressOverdue(day time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Preload("Client").Preload("Freelancer").
		Where("status = ? AND deadline < ?", models.TaskStatusInProgress, day).
		Find(&tasks).Error
	return tasks, err
}
