package repositories

import (
	"context"

	"amana-grc/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// standardRepository implements StandardRepository interface
type standardRepository struct {
	db *gorm.DB
}

// NewStandardRepository creates a new standard repository
func NewStandardRepository(db *gorm.DB) StandardRepository {
	return &standardRepository{db: db}
}

// Create creates a new standard
func (r *standardRepository) Create(ctx context.Context, standard *models.Standard) error {
	return r.db.WithContext(ctx).Create(standard).Error
}

// GetByID gets a standard by ID
func (r *standardRepository) GetByID(ctx context.Context, id uint) (*models.Standard, error) {
	var standard models.Standard
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&standard).Error
	if err != nil {
		return nil, err
	}
	return &standard, nil
}

// GetByCode gets a standard by its code
func (r *standardRepository) GetByCode(ctx context.Context, code string) (*models.Standard, error) {
	var standard models.Standard
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&standard).Error
	if err != nil {
		return nil, err
	}
	return &standard, nil
}

// Update updates a standard
func (r *standardRepository) Update(ctx context.Context, standard *models.Standard) error {
	return r.db.WithContext(ctx).Save(standard).Error
}

// List lists standards with pagination
func (r *standardRepository) List(ctx context.Context, offset, limit int) ([]*models.Standard, int64, error) {
	var standards []*models.Standard
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Standard{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Order("code ASC").Offset(offset).Limit(limit).Find(&standards).Error; err != nil {
		return nil, 0, err
	}

	return standards, total, nil
}

// ExistsByCode checks if a standard code exists
func (r *standardRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Standard{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}
