package repositories

import (
	"context"
	"time"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/core/domain"

	"gorm.io/gorm"
)

// findingRepository implements FindingRepository interface
type findingRepository struct {
	db *gorm.DB
}

// NewFindingRepository creates a new finding repository
func NewFindingRepository(db *gorm.DB) FindingRepository {
	return &findingRepository{db: db}
}

// Create creates a new finding
func (r *findingRepository) Create(ctx context.Context, finding *models.Finding) error {
	return r.db.WithContext(ctx).Create(finding).Error
}

// GetByID gets a finding by ID with related records preloaded
func (r *findingRepository) GetByID(ctx context.Context, id uint) (*models.Finding, error) {
	var finding models.Finding
	err := r.db.WithContext(ctx).
		Preload("Audit").Preload("Control").Preload("AssignedTo").
		Where("id = ?", id).First(&finding).Error
	if err != nil {
		return nil, err
	}
	return &finding, nil
}

// Update updates a finding
func (r *findingRepository) Update(ctx context.Context, finding *models.Finding) error {
	return r.db.WithContext(ctx).Save(finding).Error
}

// ListByAudit lists findings belonging to an audit
func (r *findingRepository) ListByAudit(ctx context.Context, auditID uint) ([]*models.Finding, error) {
	var findings []*models.Finding
	err := r.db.WithContext(ctx).
		Preload("Control").Preload("AssignedTo").
		Where("audit_id = ?", auditID).
		Order("severity DESC, created_at ASC").
		Find(&findings).Error
	if err != nil {
		return nil, err
	}
	return findings, nil
}

// ListOverdue lists unresolved findings whose due date has passed
func (r *findingRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.Finding, error) {
	var findings []*models.Finding
	err := r.db.WithContext(ctx).
		Preload("Audit").Preload("AssignedTo").
		Where("due_date IS NOT NULL AND due_date < ?", asOf).
		Where("status IN ?", []domain.FindingStatus{domain.FindingOpen, domain.FindingInProgress}).
		Order("due_date ASC").
		Find(&findings).Error
	if err != nil {
		return nil, err
	}
	return findings, nil
}

// CountBySeverity counts findings grouped by severity
func (r *findingRepository) CountBySeverity(ctx context.Context) (map[domain.Severity]int64, error) {
	type row struct {
		Severity domain.Severity
		Count    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Finding{}).
		Select("severity, COUNT(*) as count").
		Group("severity").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[domain.Severity]int64, len(rows))
	for _, rw := range rows {
		result[rw.Severity] = rw.Count
	}
	return result, nil
}

// CountOpen counts findings that are not yet resolved or closed
func (r *findingRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Finding{}).
		Where("status IN ?", []domain.FindingStatus{domain.FindingOpen, domain.FindingInProgress}).
		Count(&count).Error
	return count, err
}
