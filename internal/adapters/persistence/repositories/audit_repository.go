package repositories

import (
	"context"
	"fmt"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/core/domain"

	"gorm.io/gorm"
)

// auditRepository implements AuditRepository interface
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create creates a new audit
func (r *auditRepository) Create(ctx context.Context, audit *models.Audit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

// GetByID gets an audit by ID with the lead auditor preloaded
func (r *auditRepository) GetByID(ctx context.Context, id uint) (*models.Audit, error) {
	var audit models.Audit
	err := r.db.WithContext(ctx).Preload("LeadAuditor").Where("id = ?", id).First(&audit).Error
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

// GetByAuditID gets an audit by its engagement identifier
func (r *auditRepository) GetByAuditID(ctx context.Context, auditID string) (*models.Audit, error) {
	var audit models.Audit
	err := r.db.WithContext(ctx).Preload("LeadAuditor").Where("audit_id = ?", auditID).First(&audit).Error
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

// Update updates an audit
func (r *auditRepository) Update(ctx context.Context, audit *models.Audit) error {
	return r.db.WithContext(ctx).Save(audit).Error
}

// List lists audits, optionally filtered by status, with pagination
func (r *auditRepository) List(ctx context.Context, status domain.AuditStatus, offset, limit int) ([]*models.Audit, int64, error) {
	var audits []*models.Audit
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Audit{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("LeadAuditor").Order("start_date DESC").
		Offset(offset).Limit(limit).Find(&audits).Error; err != nil {
		return nil, 0, err
	}

	return audits, total, nil
}

// CountInYear counts audits opened in a calendar year, used for ID sequencing
func (r *auditRepository) CountInYear(ctx context.Context, year int) (int64, error) {
	var count int64
	prefix := fmt.Sprintf("AUD-%d-%%", year)
	err := r.db.WithContext(ctx).Model(&models.Audit{}).Where("audit_id LIKE ?", prefix).Count(&count).Error
	return count, err
}

// CountByStatus counts audits grouped by status
func (r *auditRepository) CountByStatus(ctx context.Context) (map[domain.AuditStatus]int64, error) {
	type row struct {
		Status domain.AuditStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Audit{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[domain.AuditStatus]int64, len(rows))
	for _, rw := range rows {
		result[rw.Status] = rw.Count
	}
	return result, nil
}
