package repositories

import (
	"context"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/core/domain"

	"gorm.io/gorm"
)

// evidenceRepository implements EvidenceRepository interface
type evidenceRepository struct {
	db *gorm.DB
}

// NewEvidenceRepository creates a new evidence repository
func NewEvidenceRepository(db *gorm.DB) EvidenceRepository {
	return &evidenceRepository{db: db}
}

// Create creates a new evidence record
func (r *evidenceRepository) Create(ctx context.Context, evidence *models.Evidence) error {
	return r.db.WithContext(ctx).Create(evidence).Error
}

// GetByID gets an evidence record by ID with related records preloaded
func (r *evidenceRepository) GetByID(ctx context.Context, id uint) (*models.Evidence, error) {
	var evidence models.Evidence
	err := r.db.WithContext(ctx).
		Preload("Control").Preload("UploadedBy").
		Where("id = ?", id).First(&evidence).Error
	if err != nil {
		return nil, err
	}
	return &evidence, nil
}

// Update updates an evidence record
func (r *evidenceRepository) Update(ctx context.Context, evidence *models.Evidence) error {
	return r.db.WithContext(ctx).Save(evidence).Error
}

// Delete removes an evidence record
func (r *evidenceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Evidence{}, id).Error
}

// ListByControl lists evidence attached to a control
func (r *evidenceRepository) ListByControl(ctx context.Context, controlID uint) ([]*models.Evidence, error) {
	var evidence []*models.Evidence
	err := r.db.WithContext(ctx).
		Preload("UploadedBy").
		Where("control_id = ?", controlID).
		Order("created_at DESC").
		Find(&evidence).Error
	if err != nil {
		return nil, err
	}
	return evidence, nil
}

// List lists evidence, optionally filtered by review status, with pagination
func (r *evidenceRepository) List(ctx context.Context, status domain.EvidenceStatus, offset, limit int) ([]*models.Evidence, int64, error) {
	var evidence []*models.Evidence
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Evidence{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Control").Preload("UploadedBy").
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&evidence).Error; err != nil {
		return nil, 0, err
	}

	return evidence, total, nil
}

// CountByStatus counts evidence grouped by review status
func (r *evidenceRepository) CountByStatus(ctx context.Context) (map[domain.EvidenceStatus]int64, error) {
	type row struct {
		Status domain.EvidenceStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Evidence{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[domain.EvidenceStatus]int64, len(rows))
	for _, rw := range rows {
		result[rw.Status] = rw.Count
	}
	return result, nil
}
