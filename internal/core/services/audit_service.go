package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/adapters/persistence/repositories"
	"amana-grc/internal/core/domain"

	"gorm.io/gorm"
)

// Audit service errors
var (
	ErrAuditNotFound   = errors.New("audit not found")
	ErrFindingNotFound = errors.New("finding not found")
	ErrAuditClosed     = errors.New("audit is closed")
)

// AuditService handles audit engagement business logic
type AuditService struct {
	auditRepo   repositories.AuditRepository
	findingRepo repositories.FindingRepository
	userRepo    repositories.UserRepository
	notifier    *NotificationService
}

// NewAuditService creates a new audit service
func NewAuditService(
	auditRepo repositories.AuditRepository,
	findingRepo repositories.FindingRepository,
	userRepo repositories.UserRepository,
	notifier *NotificationService,
) *AuditService {
	return &AuditService{
		auditRepo:   auditRepo,
		findingRepo: findingRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// CreateAuditInput represents create audit input
type CreateAuditInput struct {
	TitleEN       string     `json:"title_en" validate:"required"`
	TitleAR       string     `json:"title_ar" validate:"required"`
	Scope         string     `json:"scope"`
	DescriptionEN string     `json:"description_en"`
	DescriptionAR string     `json:"description_ar"`
	LeadAuditorID uint       `json:"lead_auditor_id" validate:"required"`
	AuditorIDs    []uint     `json:"auditor_ids"`
	StartDate     time.Time  `json:"start_date" validate:"required"`
	EndDate       *time.Time `json:"end_date"`
}

// UpdateAuditInput represents update audit input
type UpdateAuditInput struct {
	TitleEN         *string             `json:"title_en"`
	TitleAR         *string             `json:"title_ar"`
	Scope           *string             `json:"scope"`
	DescriptionEN   *string             `json:"description_en"`
	DescriptionAR   *string             `json:"description_ar"`
	Status          *domain.AuditStatus `json:"status"`
	EndDate         *time.Time          `json:"end_date"`
	FindingsSummary *string             `json:"findings_summary"`
}

// CreateFindingInput represents create finding input
type CreateFindingInput struct {
	ControlID        *uint           `json:"control_id"`
	Finding          string          `json:"finding" validate:"required"`
	Severity         domain.Severity `json:"severity" validate:"required"`
	CorrectiveAction string          `json:"corrective_action"`
	AssignedToID     *uint           `json:"assigned_to_id"`
	DueDate          *time.Time      `json:"due_date"`
}

// UpdateFindingInput represents update finding input
type UpdateFindingInput struct {
	Finding          *string               `json:"finding"`
	Severity         *domain.Severity      `json:"severity"`
	Status           *domain.FindingStatus `json:"status"`
	CorrectiveAction *string               `json:"corrective_action"`
	AssignedToID     *uint                 `json:"assigned_to_id"`
	DueDate          *time.Time            `json:"due_date"`
	ResolutionNotes  *string               `json:"resolution_notes"`
}

// CreateAudit opens a new audit engagement
func (s *AuditService) CreateAudit(ctx context.Context, input *CreateAuditInput) (*models.Audit, error) {
	lead, err := s.userRepo.GetByID(ctx, input.LeadAuditorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	year := time.Now().Year()
	seq, err := s.auditRepo.CountInYear(ctx, year)
	if err != nil {
		return nil, err
	}

	audit := &models.Audit{
		AuditID:       fmt.Sprintf("AUD-%d-%04d", year, seq+1),
		TitleEN:       input.TitleEN,
		TitleAR:       input.TitleAR,
		Scope:         input.Scope,
		DescriptionEN: input.DescriptionEN,
		DescriptionAR: input.DescriptionAR,
		Status:        domain.AuditPlanned,
		LeadAuditorID: input.LeadAuditorID,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
	}

	ids := make([]string, len(input.AuditorIDs))
	for i, id := range input.AuditorIDs {
		ids[i] = strconv.FormatUint(uint64(id), 10)
	}
	audit.SetAuditors(ids)

	if err := s.auditRepo.Create(ctx, audit); err != nil {
		return nil, err
	}

	s.notifier.NotifyAuditAssigned(lead, audit)

	log.Printf("Audit opened: %s (lead %s)", audit.AuditID, lead.Username)
	return audit, nil
}

// GetAudit gets an audit by ID
func (s *AuditService) GetAudit(ctx context.Context, id uint) (*models.Audit, error) {
	audit, err := s.auditRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuditNotFound
		}
		return nil, err
	}
	return audit, nil
}

// ListAudits lists audits with optional status filter and pagination
func (s *AuditService) ListAudits(ctx context.Context, status domain.AuditStatus, offset, limit int) ([]*models.Audit, int64, error) {
	return s.auditRepo.List(ctx, status, offset, limit)
}

// UpdateAudit updates an audit engagement
func (s *AuditService) UpdateAudit(ctx context.Context, id uint, input *UpdateAuditInput) (*models.Audit, error) {
	audit, err := s.GetAudit(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.TitleEN != nil {
		audit.TitleEN = *input.TitleEN
	}
	if input.TitleAR != nil {
		audit.TitleAR = *input.TitleAR
	}
	if input.Scope != nil {
		audit.Scope = *input.Scope
	}
	if input.DescriptionEN != nil {
		audit.DescriptionEN = *input.DescriptionEN
	}
	if input.DescriptionAR != nil {
		audit.DescriptionAR = *input.DescriptionAR
	}
	if input.Status != nil {
		audit.Status = *input.Status
	}
	if input.EndDate != nil {
		audit.EndDate = input.EndDate
	}
	if input.FindingsSummary != nil {
		audit.FindingsSummary = *input.FindingsSummary
	}

	if err := s.auditRepo.Update(ctx, audit); err != nil {
		return nil, err
	}

	return audit, nil
}

// CreateFinding raises a finding on an audit and notifies the assignee
func (s *AuditService) CreateFinding(ctx context.Context, auditID uint, input *CreateFindingInput) (*models.Finding, error) {
	audit, err := s.GetAudit(ctx, auditID)
	if err != nil {
		return nil, err
	}
	if audit.Status == domain.AuditClosed {
		return nil, ErrAuditClosed
	}

	finding := &models.Finding{
		AuditID:          auditID,
		ControlID:        input.ControlID,
		Finding:          input.Finding,
		Severity:         input.Severity,
		Status:           domain.FindingOpen,
		CorrectiveAction: input.CorrectiveAction,
		AssignedToID:     input.AssignedToID,
		DueDate:          input.DueDate,
	}

	if err := s.findingRepo.Create(ctx, finding); err != nil {
		return nil, err
	}

	if input.AssignedToID != nil {
		if assignee, err := s.userRepo.GetByID(ctx, *input.AssignedToID); err == nil {
			s.notifier.NotifyFindingAssigned(assignee, finding, audit)
		}
	}

	return finding, nil
}

// UpdateFinding updates a finding. Moving to resolved stamps the resolution
// time; a newly assigned user is notified.
func (s *AuditService) UpdateFinding(ctx context.Context, id uint, input *UpdateFindingInput) (*models.Finding, error) {
	finding, err := s.findingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFindingNotFound
		}
		return nil, err
	}

	reassigned := false
	if input.AssignedToID != nil {
		if finding.AssignedToID == nil || *finding.AssignedToID != *input.AssignedToID {
			reassigned = true
		}
		finding.AssignedToID = input.AssignedToID
	}

	if input.Finding != nil {
		finding.Finding = *input.Finding
	}
	if input.Severity != nil {
		finding.Severity = *input.Severity
	}
	if input.CorrectiveAction != nil {
		finding.CorrectiveAction = *input.CorrectiveAction
	}
	if input.DueDate != nil {
		finding.DueDate = input.DueDate
	}
	if input.ResolutionNotes != nil {
		finding.ResolutionNotes = *input.ResolutionNotes
	}
	if input.Status != nil {
		finding.Status = *input.Status
		if *input.Status == domain.FindingResolved && finding.ResolvedAt == nil {
			now := time.Now()
			finding.ResolvedAt = &now
		}
	}

	if err := s.findingRepo.Update(ctx, finding); err != nil {
		return nil, err
	}

	if reassigned {
		audit, aerr := s.GetAudit(ctx, finding.AuditID)
		assignee, uerr := s.userRepo.GetByID(ctx, *finding.AssignedToID)
		if aerr == nil && uerr == nil {
			s.notifier.NotifyFindingAssigned(assignee, finding, audit)
		}
	}

	return finding, nil
}

// ListFindings lists findings of an audit
func (s *AuditService) ListFindings(ctx context.Context, auditID uint) ([]*models.Finding, error) {
	if _, err := s.GetAudit(ctx, auditID); err != nil {
		return nil, err
	}
	return s.findingRepo.ListByAudit(ctx, auditID)
}

// RemindOverdueFindings emails assignees of findings past their due date.
// Returns the number of reminders attempted.
func (s *AuditService) RemindOverdueFindings(ctx context.Context) (int, error) {
	findings, err := s.findingRepo.ListOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, finding := range findings {
		if finding.AssignedToID == nil {
			continue
		}
		user, err := s.userRepo.GetByID(ctx, *finding.AssignedToID)
		if err != nil || !user.IsActive {
			continue
		}
		s.notifier.NotifyFindingOverdue(user, finding)
		sent++
	}

	return sent, nil
}
