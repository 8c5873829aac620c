package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/adapters/persistence/repositories"
	"amana-grc/internal/core/domain"

	"gorm.io/gorm"
)

// Risk service errors
var (
	ErrRiskNotFound = errors.New("risk not found")
	ErrInvalidScore = errors.New("impact and likelihood must be between 1 and 5")
)

// RiskService handles risk register business logic
type RiskService struct {
	riskRepo repositories.RiskRepository
}

// NewRiskService creates a new risk service
func NewRiskService(riskRepo repositories.RiskRepository) *RiskService {
	return &RiskService{riskRepo: riskRepo}
}

// CreateRiskInput represents create risk input
type CreateRiskInput struct {
	TitleEN         string                `json:"title_en" validate:"required"`
	TitleAR         string                `json:"title_ar" validate:"required"`
	DescriptionEN   string                `json:"description_en"`
	DescriptionAR   string                `json:"description_ar"`
	Asset           string                `json:"asset"`
	Threat          string                `json:"threat"`
	Vulnerability   string                `json:"vulnerability"`
	ImpactScore     int                   `json:"impact_score" validate:"required,min=1,max=5"`
	LikelihoodScore int                   `json:"likelihood_score" validate:"required,min=1,max=5"`
	Treatment       *domain.RiskTreatment `json:"treatment"`
	TreatmentPlan   string                `json:"treatment_plan"`
	ReviewDate      *time.Time            `json:"review_date"`
}

// UpdateRiskInput represents update risk input
type UpdateRiskInput struct {
	TitleEN         *string               `json:"title_en"`
	TitleAR         *string               `json:"title_ar"`
	DescriptionEN   *string               `json:"description_en"`
	DescriptionAR   *string               `json:"description_ar"`
	Asset           *string               `json:"asset"`
	Threat          *string               `json:"threat"`
	Vulnerability   *string               `json:"vulnerability"`
	ImpactScore     *int                  `json:"impact_score"`
	LikelihoodScore *int                  `json:"likelihood_score"`
	Treatment       *domain.RiskTreatment `json:"treatment"`
	TreatmentPlan   *string               `json:"treatment_plan"`
	Status          *string               `json:"status"`
	ReviewDate      *time.Time            `json:"review_date"`
}

func validScore(n int) bool {
	return n >= 1 && n <= 5
}

// CreateRisk registers a new risk. The register identifier carries the
// calendar year and a per-year sequence number, and score and level are
// derived from the 5x5 matrix inputs.
func (s *RiskService) CreateRisk(ctx context.Context, ownerID uint, input *CreateRiskInput) (*models.Risk, error) {
	if !validScore(input.ImpactScore) || !validScore(input.LikelihoodScore) {
		return nil, ErrInvalidScore
	}

	year := time.Now().Year()
	seq, err := s.riskRepo.CountInYear(ctx, year)
	if err != nil {
		return nil, err
	}

	risk := &models.Risk{
		RiskID:          fmt.Sprintf("RISK-%d-%04d", year, seq+1),
		TitleEN:         input.TitleEN,
		TitleAR:         input.TitleAR,
		DescriptionEN:   input.DescriptionEN,
		DescriptionAR:   input.DescriptionAR,
		Asset:           input.Asset,
		Threat:          input.Threat,
		Vulnerability:   input.Vulnerability,
		ImpactScore:     input.ImpactScore,
		LikelihoodScore: input.LikelihoodScore,
		Treatment:       domain.TreatmentMitigate,
		TreatmentPlan:   input.TreatmentPlan,
		Status:          domain.RiskStatusOpen,
		OwnerID:         ownerID,
		ReviewDate:      input.ReviewDate,
	}
	if input.Treatment != nil {
		risk.Treatment = *input.Treatment
	}
	risk.Reclassify()

	if err := s.riskRepo.Create(ctx, risk); err != nil {
		return nil, err
	}

	log.Printf("Risk registered: %s (%s, score %d)", risk.RiskID, risk.RiskLevel, risk.RiskScore)
	return risk, nil
}

// UpdateRisk updates a risk. Score and level are recomputed only when impact
// or likelihood actually change.
func (s *RiskService) UpdateRisk(ctx context.Context, id uint, input *UpdateRiskInput) (*models.Risk, error) {
	risk, err := s.riskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRiskNotFound
		}
		return nil, err
	}

	if input.TitleEN != nil {
		risk.TitleEN = *input.TitleEN
	}
	if input.TitleAR != nil {
		risk.TitleAR = *input.TitleAR
	}
	if input.DescriptionEN != nil {
		risk.DescriptionEN = *input.DescriptionEN
	}
	if input.DescriptionAR != nil {
		risk.DescriptionAR = *input.DescriptionAR
	}
	if input.Asset != nil {
		risk.Asset = *input.Asset
	}
	if input.Threat != nil {
		risk.Threat = *input.Threat
	}
	if input.Vulnerability != nil {
		risk.Vulnerability = *input.Vulnerability
	}
	if input.Treatment != nil {
		risk.Treatment = *input.Treatment
	}
	if input.TreatmentPlan != nil {
		risk.TreatmentPlan = *input.TreatmentPlan
	}
	if input.Status != nil {
		risk.Status = *input.Status
	}
	if input.ReviewDate != nil {
		risk.ReviewDate = input.ReviewDate
	}

	rescore := false
	if input.ImpactScore != nil && *input.ImpactScore != risk.ImpactScore {
		if !validScore(*input.ImpactScore) {
			return nil, ErrInvalidScore
		}
		risk.ImpactScore = *input.ImpactScore
		rescore = true
	}
	if input.LikelihoodScore != nil && *input.LikelihoodScore != risk.LikelihoodScore {
		if !validScore(*input.LikelihoodScore) {
			return nil, ErrInvalidScore
		}
		risk.LikelihoodScore = *input.LikelihoodScore
		rescore = true
	}
	if rescore {
		risk.Reclassify()
	}

	if err := s.riskRepo.Update(ctx, risk); err != nil {
		return nil, err
	}

	return risk, nil
}

// GetRisk gets a risk by ID
func (s *RiskService) GetRisk(ctx context.Context, id uint) (*models.Risk, error) {
	risk, err := s.riskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRiskNotFound
		}
		return nil, err
	}
	return risk, nil
}

// ListRisks lists risks with filtering and pagination
func (s *RiskService) ListRisks(ctx context.Context, filter repositories.RiskFilter, offset, limit int) ([]*models.Risk, int64, error) {
	return s.riskRepo.List(ctx, filter, offset, limit)
}

// CloseRisk closes a risk. Register entries are never removed; closing keeps
// the record for the audit trail.
func (s *RiskService) CloseRisk(ctx context.Context, id uint) error {
	risk, err := s.riskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRiskNotFound
		}
		return err
	}

	risk.Status = domain.RiskStatusClosed
	if err := s.riskRepo.Update(ctx, risk); err != nil {
		return err
	}

	log.Printf("Risk closed: %s", risk.RiskID)
	return nil
}
