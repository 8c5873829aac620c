package repositories

import (
	"context"
	"fmt"
	"time"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/core/domain"

	"gorm.io/gorm"
)

// riskRepository implements RiskRepository interface
type riskRepository struct {
	db *gorm.DB
}

// NewRiskRepository creates a new risk repository
func NewRiskRepository(db *gorm.DB) RiskRepository {
	return &riskRepository{db: db}
}

// Create creates a new risk
func (r *riskRepository) Create(ctx context.Context, risk *models.Risk) error {
	return r.db.WithContext(ctx).Create(risk).Error
}

// GetByID gets a risk by ID with its owner preloaded
func (r *riskRepository) GetByID(ctx context.Context, id uint) (*models.Risk, error) {
	var risk models.Risk
	err := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&risk).Error
	if err != nil {
		return nil, err
	}
	return &risk, nil
}

// GetByRiskID gets a risk by its register identifier
func (r *riskRepository) GetByRiskID(ctx context.Context, riskID string) (*models.Risk, error) {
	var risk models.Risk
	err := r.db.WithContext(ctx).Preload("Owner").Where("risk_id = ?", riskID).First(&risk).Error
	if err != nil {
		return nil, err
	}
	return &risk, nil
}

// Update updates a risk
func (r *riskRepository) Update(ctx context.Context, risk *models.Risk) error {
	return r.db.WithContext(ctx).Save(risk).Error
}

// List lists risks with filtering and pagination
func (r *riskRepository) List(ctx context.Context, filter RiskFilter, offset, limit int) ([]*models.Risk, int64, error) {
	var risks []*models.Risk
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Risk{})
	if filter.Level != "" {
		query = query.Where("risk_level = ?", filter.Level)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OwnerID > 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("risk_id LIKE ? OR title_en LIKE ? OR title_ar LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Owner").Order("risk_score DESC, risk_id ASC").
		Offset(offset).Limit(limit).Find(&risks).Error; err != nil {
		return nil, 0, err
	}

	return risks, total, nil
}

// ListAll lists every risk, used by the CSV exporter
func (r *riskRepository) ListAll(ctx context.Context) ([]*models.Risk, error) {
	var risks []*models.Risk
	err := r.db.WithContext(ctx).Preload("Owner").Order("risk_id ASC").Find(&risks).Error
	if err != nil {
		return nil, err
	}
	return risks, nil
}

// CountInYear counts risks registered in a calendar year, used for ID sequencing
func (r *riskRepository) CountInYear(ctx context.Context, year int) (int64, error) {
	var count int64
	prefix := fmt.Sprintf("RISK-%d-%%", year)
	err := r.db.WithContext(ctx).Model(&models.Risk{}).Where("risk_id LIKE ?", prefix).Count(&count).Error
	return count, err
}

// CountByLevel counts risks grouped by level
func (r *riskRepository) CountByLevel(ctx context.Context) (map[domain.RiskLevel]int64, error) {
	type row struct {
		RiskLevel domain.RiskLevel
		Count     int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Risk{}).
		Select("risk_level, COUNT(*) as count").
		Group("risk_level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[domain.RiskLevel]int64, len(rows))
	for _, rw := range rows {
		result[rw.RiskLevel] = rw.Count
	}
	return result, nil
}

// MonthlyCounts counts risks created per month since the given time
func (r *riskRepository) MonthlyCounts(ctx context.Context, since time.Time) ([]models.MonthlyCount, error) {
	var rows []models.MonthlyCount
	err := r.db.WithContext(ctx).Model(&models.Risk{}).
		Select("DATE_FORMAT(created_at, '%Y-%m') as month, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
