package repositories

import (
	"context"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/core/domain"

	"gorm.io/gorm"
)

// controlRepository implements ControlRepository interface
type controlRepository struct {
	db *gorm.DB
}

// NewControlRepository creates a new control repository
func NewControlRepository(db *gorm.DB) ControlRepository {
	return &controlRepository{db: db}
}

// Create creates a new control
func (r *controlRepository) Create(ctx context.Context, control *models.Control) error {
	return r.db.WithContext(ctx).Create(control).Error
}

// CreateBatch inserts controls in bulk, used by framework seeders
func (r *controlRepository) CreateBatch(ctx context.Context, controls []*models.Control) error {
	if len(controls) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(controls, 100).Error
}

// GetByID gets a control by ID with its standard preloaded
func (r *controlRepository) GetByID(ctx context.Context, id uint) (*models.Control, error) {
	var control models.Control
	err := r.db.WithContext(ctx).Preload("Standard").Where("id = ?", id).First(&control).Error
	if err != nil {
		return nil, err
	}
	return &control, nil
}

// Update updates a control
func (r *controlRepository) Update(ctx context.Context, control *models.Control) error {
	return r.db.WithContext(ctx).Save(control).Error
}

// List lists controls with filtering and pagination
func (r *controlRepository) List(ctx context.Context, filter ControlFilter, offset, limit int) ([]*models.Control, int64, error) {
	var controls []*models.Control
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Control{})
	if filter.StandardID > 0 {
		query = query.Where("standard_id = ?", filter.StandardID)
	}
	if filter.ImplementationStatus != "" {
		query = query.Where("implementation_status = ?", filter.ImplementationStatus)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR title_en LIKE ? OR title_ar LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("code ASC").Offset(offset).Limit(limit).Find(&controls).Error; err != nil {
		return nil, 0, err
	}

	return controls, total, nil
}

// ListByStandard lists all controls of a standard without pagination
func (r *controlRepository) ListByStandard(ctx context.Context, standardID uint) ([]*models.Control, error) {
	var controls []*models.Control
	err := r.db.WithContext(ctx).Where("standard_id = ?", standardID).Order("code ASC").Find(&controls).Error
	if err != nil {
		return nil, err
	}
	return controls, nil
}

// CountByStatus counts controls grouped by implementation status.
// A zero standardID counts across all standards.
func (r *controlRepository) CountByStatus(ctx context.Context, standardID uint) (map[domain.ImplementationStatus]int64, error) {
	type row struct {
		ImplementationStatus domain.ImplementationStatus
		Count                int64
	}
	var rows []row

	query := r.db.WithContext(ctx).Model(&models.Control{}).
		Select("implementation_status, COUNT(*) as count")
	if standardID > 0 {
		query = query.Where("standard_id = ?", standardID)
	}
	if err := query.Group("implementation_status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[domain.ImplementationStatus]int64, len(rows))
	for _, rw := range rows {
		result[rw.ImplementationStatus] = rw.Count
	}
	return result, nil
}

// CountByDomain counts controls grouped by their domain label
func (r *controlRepository) CountByDomain(ctx context.Context, standardID uint) (map[string]int64, error) {
	type row struct {
		DomainEN string
		Count    int64
	}
	var rows []row

	query := r.db.WithContext(ctx).Model(&models.Control{}).
		Select("domain_en, COUNT(*) as count")
	if standardID > 0 {
		query = query.Where("standard_id = ?", standardID)
	}
	if err := query.Group("domain_en").Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, rw := range rows {
		result[rw.DomainEN] = rw.Count
	}
	return result, nil
}
