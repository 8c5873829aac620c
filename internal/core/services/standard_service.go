package services

import (
	"context"
	"errors"
	"log"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/adapters/persistence/repositories"
	"amana-grc/internal/core/domain"

	"gorm.io/gorm"
)

// Standard service errors
var (
	ErrStandardNotFound  = errors.New("standard not found")
	ErrStandardCodeInUse = errors.New("standard code already exists")
	ErrControlNotFound   = errors.New("control not found")
	ErrInvalidImplStatus = errors.New("invalid implementation status")
)

// StandardService handles standards and controls business logic
type StandardService struct {
	standardRepo repositories.StandardRepository
	controlRepo  repositories.ControlRepository
}

// NewStandardService creates a new standard service
func NewStandardService(standardRepo repositories.StandardRepository, controlRepo repositories.ControlRepository) *StandardService {
	return &StandardService{
		standardRepo: standardRepo,
		controlRepo:  controlRepo,
	}
}

// CreateStandardInput represents create standard input
type CreateStandardInput struct {
	Code          string `json:"code" validate:"required"`
	NameEN        string `json:"name_en" validate:"required"`
	NameAR        string `json:"name_ar" validate:"required"`
	DescriptionEN string `json:"description_en"`
	DescriptionAR string `json:"description_ar"`
	Version       string `json:"version"`
	Category      string `json:"category"`
}

// CreateControlInput represents create control input
type CreateControlInput struct {
	StandardID    uint   `json:"standard_id" validate:"required"`
	Code          string `json:"code" validate:"required"`
	DomainEN      string `json:"domain_en"`
	DomainAR      string `json:"domain_ar"`
	TitleEN       string `json:"title_en" validate:"required"`
	TitleAR       string `json:"title_ar" validate:"required"`
	DescriptionEN string `json:"description_en"`
	DescriptionAR string `json:"description_ar"`
	Priority      string `json:"priority"`
}

// UpdateControlStatusInput represents control implementation status update
type UpdateControlStatusInput struct {
	ImplementationStatus domain.ImplementationStatus `json:"implementation_status" validate:"required"`
	ImplementationNotes  string                      `json:"implementation_notes"`
}

// CreateStandard creates a new standard
func (s *StandardService) CreateStandard(ctx context.Context, input *CreateStandardInput) (*models.Standard, error) {
	exists, err := s.standardRepo.ExistsByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrStandardCodeInUse
	}

	standard := &models.Standard{
		Code:          input.Code,
		NameEN:        input.NameEN,
		NameAR:        input.NameAR,
		DescriptionEN: input.DescriptionEN,
		DescriptionAR: input.DescriptionAR,
		Version:       input.Version,
		Category:      input.Category,
		IsActive:      true,
	}
	if standard.Version == "" {
		standard.Version = "1.0"
	}

	if err := s.standardRepo.Create(ctx, standard); err != nil {
		return nil, err
	}

	log.Printf("Standard created: %s", standard.Code)
	return standard, nil
}

// GetStandard gets a standard by ID
func (s *StandardService) GetStandard(ctx context.Context, id uint) (*models.Standard, error) {
	standard, err := s.standardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStandardNotFound
		}
		return nil, err
	}
	return standard, nil
}

// ListStandards lists standards with pagination
func (s *StandardService) ListStandards(ctx context.Context, offset, limit int) ([]*models.Standard, int64, error) {
	return s.standardRepo.List(ctx, offset, limit)
}

// CreateControl adds a control to a standard
func (s *StandardService) CreateControl(ctx context.Context, input *CreateControlInput) (*models.Control, error) {
	if _, err := s.GetStandard(ctx, input.StandardID); err != nil {
		return nil, err
	}

	control := &models.Control{
		StandardID:           input.StandardID,
		Code:                 input.Code,
		DomainEN:             input.DomainEN,
		DomainAR:             input.DomainAR,
		TitleEN:              input.TitleEN,
		TitleAR:              input.TitleAR,
		DescriptionEN:        input.DescriptionEN,
		DescriptionAR:        input.DescriptionAR,
		Priority:             input.Priority,
		ImplementationStatus: domain.ImplNotImplemented,
	}
	if control.Priority == "" {
		control.Priority = "MEDIUM"
	}

	if err := s.controlRepo.Create(ctx, control); err != nil {
		return nil, err
	}

	return control, nil
}

// GetControl gets a control by ID
func (s *StandardService) GetControl(ctx context.Context, id uint) (*models.Control, error) {
	control, err := s.controlRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrControlNotFound
		}
		return nil, err
	}
	return control, nil
}

// ListControls lists controls with filtering and pagination
func (s *StandardService) ListControls(ctx context.Context, filter repositories.ControlFilter, offset, limit int) ([]*models.Control, int64, error) {
	return s.controlRepo.List(ctx, filter, offset, limit)
}

// UpdateControlStatus records implementation progress on a control
func (s *StandardService) UpdateControlStatus(ctx context.Context, id uint, input *UpdateControlStatusInput) (*models.Control, error) {
	switch input.ImplementationStatus {
	case domain.ImplNotImplemented, domain.ImplPartiallyImplemented, domain.ImplImplemented, domain.ImplNotApplicable:
	default:
		return nil, ErrInvalidImplStatus
	}

	control, err := s.GetControl(ctx, id)
	if err != nil {
		return nil, err
	}

	control.ImplementationStatus = input.ImplementationStatus
	control.ImplementationNotes = input.ImplementationNotes

	if err := s.controlRepo.Update(ctx, control); err != nil {
		return nil, err
	}

	return control, nil
}

// ComplianceSummary reports control implementation progress for a standard
type ComplianceSummary struct {
	StandardID    uint                                  `json:"standard_id"`
	TotalControls int64                                 `json:"total_controls"`
	ByStatus      map[domain.ImplementationStatus]int64 `json:"by_status"`
	CompliancePct float64                               `json:"compliance_pct"`
}

// GetComplianceSummary computes implementation progress for a standard.
// Not-applicable controls are excluded from the percentage base, and a
// partially implemented control counts half.
func (s *StandardService) GetComplianceSummary(ctx context.Context, standardID uint) (*ComplianceSummary, error) {
	if _, err := s.GetStandard(ctx, standardID); err != nil {
		return nil, err
	}

	byStatus, err := s.controlRepo.CountByStatus(ctx, standardID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, count := range byStatus {
		total += count
	}

	base := total - byStatus[domain.ImplNotApplicable]
	pct := 0.0
	if base > 0 {
		weighted := float64(byStatus[domain.ImplImplemented]) +
			0.5*float64(byStatus[domain.ImplPartiallyImplemented])
		pct = 100 * weighted / float64(base)
	}

	return &ComplianceSummary{
		StandardID:    standardID,
		TotalControls: total,
		ByStatus:      byStatus,
		CompliancePct: pct,
	}, nil
}
