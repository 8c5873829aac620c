package services

import (
	"context"
	"errors"
	"log"
	"os"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/adapters/persistence/repositories"
	"amana-grc/internal/core/domain"

	"gorm.io/gorm"
)

// Evidence service errors
var (
	ErrEvidenceNotFound = errors.New("evidence not found")
	ErrInvalidReview    = errors.New("review status must be APPROVED or REJECTED")
)

// EvidenceService handles evidence lifecycle business logic
type EvidenceService struct {
	evidenceRepo repositories.EvidenceRepository
	controlRepo  repositories.ControlRepository
	aiService    *AIService
}

// NewEvidenceService creates a new evidence service
func NewEvidenceService(
	evidenceRepo repositories.EvidenceRepository,
	controlRepo repositories.ControlRepository,
	aiService *AIService,
) *EvidenceService {
	return &EvidenceService{
		evidenceRepo: evidenceRepo,
		controlRepo:  controlRepo,
		aiService:    aiService,
	}
}

// CreateEvidenceInput represents evidence metadata recorded at upload
type CreateEvidenceInput struct {
	ControlID   uint
	Title       string
	Description string
	FilePath    string
	FileType    string
	FileSize    int64
}

// ReviewEvidenceInput represents a reviewer's decision
type ReviewEvidenceInput struct {
	Status        domain.EvidenceStatus `json:"status" validate:"required"`
	ReviewerNotes string                `json:"reviewer_notes"`
}

// CreateEvidence records an uploaded evidence file against a control
func (s *EvidenceService) CreateEvidence(ctx context.Context, uploaderID uint, input *CreateEvidenceInput) (*models.Evidence, error) {
	if _, err := s.controlRepo.GetByID(ctx, input.ControlID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrControlNotFound
		}
		return nil, err
	}

	evidence := &models.Evidence{
		ControlID:    input.ControlID,
		UploadedByID: uploaderID,
		Title:        input.Title,
		Description:  input.Description,
		FilePath:     input.FilePath,
		FileType:     input.FileType,
		FileSize:     input.FileSize,
		Status:       domain.EvidencePending,
	}

	if err := s.evidenceRepo.Create(ctx, evidence); err != nil {
		return nil, err
	}

	log.Printf("Evidence uploaded: %s (control %d)", evidence.Title, evidence.ControlID)
	return evidence, nil
}

// GetEvidence gets an evidence record by ID
func (s *EvidenceService) GetEvidence(ctx context.Context, id uint) (*models.Evidence, error) {
	evidence, err := s.evidenceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvidenceNotFound
		}
		return nil, err
	}
	return evidence, nil
}

// ListEvidence lists evidence, optionally filtered by review status
func (s *EvidenceService) ListEvidence(ctx context.Context, status domain.EvidenceStatus, offset, limit int) ([]*models.Evidence, int64, error) {
	return s.evidenceRepo.List(ctx, status, offset, limit)
}

// ListEvidenceByControl lists evidence attached to a control
func (s *EvidenceService) ListEvidenceByControl(ctx context.Context, controlID uint) ([]*models.Evidence, error) {
	return s.evidenceRepo.ListByControl(ctx, controlID)
}

// ReviewEvidence records a reviewer's approve or reject decision
func (s *EvidenceService) ReviewEvidence(ctx context.Context, id uint, input *ReviewEvidenceInput) (*models.Evidence, error) {
	if input.Status != domain.EvidenceApproved && input.Status != domain.EvidenceRejected {
		return nil, ErrInvalidReview
	}

	evidence, err := s.GetEvidence(ctx, id)
	if err != nil {
		return nil, err
	}

	evidence.Status = input.Status
	evidence.ReviewerNotes = input.ReviewerNotes

	if err := s.evidenceRepo.Update(ctx, evidence); err != nil {
		return nil, err
	}

	return evidence, nil
}

// AssessEvidence runs the AI reviewer over an evidence record and stores its
// verdict. The review status stays pending; a human makes the final call.
func (s *EvidenceService) AssessEvidence(ctx context.Context, id uint) (*models.Evidence, error) {
	evidence, err := s.GetEvidence(ctx, id)
	if err != nil {
		return nil, err
	}

	control, err := s.controlRepo.GetByID(ctx, evidence.ControlID)
	if err != nil {
		return nil, err
	}

	assessment := s.aiService.AssessEvidence(ctx, control, evidence)
	evidence.AIAssessment = assessment.Verdict
	evidence.AIConfidence = assessment.Confidence

	if err := s.evidenceRepo.Update(ctx, evidence); err != nil {
		return nil, err
	}

	return evidence, nil
}

// DeleteEvidence removes an evidence record and its stored file
func (s *EvidenceService) DeleteEvidence(ctx context.Context, id uint) error {
	evidence, err := s.GetEvidence(ctx, id)
	if err != nil {
		return err
	}

	if err := s.evidenceRepo.Delete(ctx, id); err != nil {
		return err
	}

	if evidence.FilePath != "" {
		if err := os.Remove(evidence.FilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("Evidence file cleanup failed: %v", err)
		}
	}

	return nil
}
