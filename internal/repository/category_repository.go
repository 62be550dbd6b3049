package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/taskflow/marketplace-api/internal/models"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GORM task category repository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) Create(category *models.TaskCategory) error {
	return r.db.Create(category).Error
}

func (r *GormCategoryRepository) FindByName(name string) (*models.TaskCategory, error) {
	var category models.TaskCategory
	err := r.db.Where("name = ?", name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *GormCategoryRepository) List() ([]models.TaskCategory, error) {
	var categories []models.TaskCategory
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}
