package repositories

import (
	"context"
	"time"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertByUsername(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}

// StandardRepository defines standard repository interface
type StandardRepository interface {
	Create(ctx context.Context, standard *models.Standard) error
	GetByID(ctx context.Context, id uint) (*models.Standard, error)
	GetByCode(ctx context.Context, code string) (*models.Standard, error)
	Update(ctx context.Context, standard *models.Standard) error
	List(ctx context.Context, offset, limit int) ([]*models.Standard, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// ControlFilter narrows control listings
type ControlFilter struct {
	StandardID           uint
	ImplementationStatus domain.ImplementationStatus
	Search               string
}

// ControlRepository defines control repository interface
type ControlRepository interface {
	Create(ctx context.Context, control *models.Control) error
	CreateBatch(ctx context.Context, controls []*models.Control) error
	GetByID(ctx context.Context, id uint) (*models.Control, error)
	Update(ctx context.Context, control *models.Control) error
	List(ctx context.Context, filter ControlFilter, offset, limit int) ([]*models.Control, int64, error)
	ListByStandard(ctx context.Context, standardID uint) ([]*models.Control, error)
	CountByStatus(ctx context.Context, standardID uint) (map[domain.ImplementationStatus]int64, error)
	CountByDomain(ctx context.Context, standardID uint) (map[string]int64, error)
}

// RiskFilter narrows risk listings
type RiskFilter struct {
	Level   domain.RiskLevel
	Status  string
	OwnerID uint
	Search  string
}

// RiskRepository defines risk repository interface
type RiskRepository interface {
	Create(ctx context.Context, risk *models.Risk) error
	GetByID(ctx context.Context, id uint) (*models.Risk, error)
	GetByRiskID(ctx context.Context, riskID string) (*models.Risk, error)
	Update(ctx context.Context, risk *models.Risk) error
	List(ctx context.Context, filter RiskFilter, offset, limit int) ([]*models.Risk, int64, error)
	ListAll(ctx context.Context) ([]*models.Risk, error)
	CountInYear(ctx context.Context, year int) (int64, error)
	CountByLevel(ctx context.Context) (map[domain.RiskLevel]int64, error)
	MonthlyCounts(ctx context.Context, since time.Time) ([]models.MonthlyCount, error)
}

// AuditRepository defines audit repository interface
type AuditRepository interface {
	Create(ctx context.Context, audit *models.Audit) error
	GetByID(ctx context.Context, id uint) (*models.Audit, error)
	GetByAuditID(ctx context.Context, auditID string) (*models.Audit, error)
	Update(ctx context.Context, audit *models.Audit) error
	List(ctx context.Context, status domain.AuditStatus, offset, limit int) ([]*models.Audit, int64, error)
	CountInYear(ctx context.Context, year int) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.AuditStatus]int64, error)
}

// FindingRepository defines finding repository interface
type FindingRepository interface {
	Create(ctx context.Context, finding *models.Finding) error
	GetByID(ctx context.Context, id uint) (*models.Finding, error)
	Update(ctx context.Context, finding *models.Finding) error
	ListByAudit(ctx context.Context, auditID uint) ([]*models.Finding, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*models.Finding, error)
	CountBySeverity(ctx context.Context) (map[domain.Severity]int64, error)
	CountOpen(ctx context.Context) (int64, error)
}

// EvidenceRepository defines evidence repository interface
type EvidenceRepository interface {
	Create(ctx context.Context, evidence *models.Evidence) error
	GetByID(ctx context.Context, id uint) (*models.Evidence, error)
	Update(ctx context.Context, evidence *models.Evidence) error
	Delete(ctx context.Context, id uint) error
	ListByControl(ctx context.Context, controlID uint) ([]*models.Evidence, error)
	List(ctx context.Context, status domain.EvidenceStatus, offset, limit int) ([]*models.Evidence, int64, error)
	CountByStatus(ctx context.Context) (map[domain.EvidenceStatus]int64, error)
}
