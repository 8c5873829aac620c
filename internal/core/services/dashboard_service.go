package services

import (
	"context"
	"time"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/adapters/persistence/repositories"
	"amana-grc/internal/core/domain"
)

// DashboardService aggregates register data for the overview screens
type DashboardService struct {
	userRepo     repositories.UserRepository
	standardRepo repositories.StandardRepository
	controlRepo  repositories.ControlRepository
	riskRepo     repositories.RiskRepository
	auditRepo    repositories.AuditRepository
	findingRepo  repositories.FindingRepository
	evidenceRepo repositories.EvidenceRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	userRepo repositories.UserRepository,
	standardRepo repositories.StandardRepository,
	controlRepo repositories.ControlRepository,
	riskRepo repositories.RiskRepository,
	auditRepo repositories.AuditRepository,
	findingRepo repositories.FindingRepository,
	evidenceRepo repositories.EvidenceRepository,
) *DashboardService {
	return &DashboardService{
		userRepo:     userRepo,
		standardRepo: standardRepo,
		controlRepo:  controlRepo,
		riskRepo:     riskRepo,
		auditRepo:    auditRepo,
		findingRepo:  findingRepo,
		evidenceRepo: evidenceRepo,
	}
}

// OverviewData represents the main dashboard payload
type OverviewData struct {
	UsersByRole        map[domain.Role]int64                 `json:"users_by_role"`
	RisksByLevel       map[domain.RiskLevel]int64            `json:"risks_by_level"`
	ControlsByStatus   map[domain.ImplementationStatus]int64 `json:"controls_by_status"`
	AuditsByStatus     map[domain.AuditStatus]int64          `json:"audits_by_status"`
	FindingsBySeverity map[domain.Severity]int64             `json:"findings_by_severity"`
	EvidenceByStatus   map[domain.EvidenceStatus]int64       `json:"evidence_by_status"`
	OpenFindings       int64                                 `json:"open_findings"`
}

// GetOverview returns the main dashboard counts
func (s *DashboardService) GetOverview(ctx context.Context) (*OverviewData, error) {
	usersByRole, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}

	risksByLevel, err := s.riskRepo.CountByLevel(ctx)
	if err != nil {
		return nil, err
	}

	controlsByStatus, err := s.controlRepo.CountByStatus(ctx, 0)
	if err != nil {
		return nil, err
	}

	auditsByStatus, err := s.auditRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	findingsBySeverity, err := s.findingRepo.CountBySeverity(ctx)
	if err != nil {
		return nil, err
	}

	evidenceByStatus, err := s.evidenceRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	openFindings, err := s.findingRepo.CountOpen(ctx)
	if err != nil {
		return nil, err
	}

	return &OverviewData{
		UsersByRole:        usersByRole,
		RisksByLevel:       risksByLevel,
		ControlsByStatus:   controlsByStatus,
		AuditsByStatus:     auditsByStatus,
		FindingsBySeverity: findingsBySeverity,
		EvidenceByStatus:   evidenceByStatus,
		OpenFindings:       openFindings,
	}, nil
}

// RiskTrends returns risks registered per month over the last twelve months
func (s *DashboardService) RiskTrends(ctx context.Context) ([]models.MonthlyCount, error) {
	since := time.Now().AddDate(-1, 0, 0)
	return s.riskRepo.MonthlyCounts(ctx, since)
}

// ComplianceByDomain returns control counts grouped by domain for a standard
func (s *DashboardService) ComplianceByDomain(ctx context.Context, standardID uint) (map[string]int64, error) {
	return s.controlRepo.CountByDomain(ctx, standardID)
}

// TrendPoint is a dated compliance percentage sample
type TrendPoint struct {
	Date          string  `json:"date"`
	CompliancePct float64 `json:"compliance_pct"`
}

// ComplianceTrend returns a daily series of the compliance percentage over
// the given window. Historical snapshots are not stored, so every point
// carries the current percentage; the series shape matches what charting
// clients consume.
func (s *DashboardService) ComplianceTrend(ctx context.Context, standardID uint, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = 30
	}

	byStatus, err := s.controlRepo.CountByStatus(ctx, standardID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, count := range byStatus {
		total += count
	}

	pct := 0.0
	base := total - byStatus[domain.ImplNotApplicable]
	if base > 0 {
		weighted := float64(byStatus[domain.ImplImplemented]) +
			0.5*float64(byStatus[domain.ImplPartiallyImplemented])
		pct = 100 * weighted / float64(base)
	}

	points := make([]TrendPoint, 0, days)
	start := time.Now().AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		points = append(points, TrendPoint{
			Date:          start.AddDate(0, 0, i).Format("2006-01-02"),
			CompliancePct: pct,
		})
	}

	return points, nil
}
