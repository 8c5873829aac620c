package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"amana-grc/internal/adapters/http/middleware"
	"amana-grc/internal/config"
	"amana-grc/internal/core/domain"
	"amana-grc/internal/core/services"
	"amana-grc/internal/pkg/pagination"
	"amana-grc/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// EvidenceHandler handles evidence endpoints
type EvidenceHandler struct {
	evidenceService *services.EvidenceService
	cfg             *config.Config
}

// NewEvidenceHandler creates a new evidence handler
func NewEvidenceHandler(evidenceService *services.EvidenceService, cfg *config.Config) *EvidenceHandler {
	return &EvidenceHandler{
		evidenceService: evidenceService,
		cfg:             cfg,
	}
}

// UploadEvidence handles uploading an evidence file
// @Summary Upload evidence
// @Description Upload an evidence file against a control
// @Tags Evidence
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param control_id formData int true "Control ID"
// @Param title formData string true "Evidence title"
// @Param description formData string false "Evidence description"
// @Param file formData file true "Evidence file"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /evidence [post]
func (h *EvidenceHandler) UploadEvidence(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	controlID, err := strconv.ParseUint(c.FormValue("control_id"), 10, 32)
	if err != nil || controlID == 0 {
		return response.BadRequest(c, "Valid control_id is required")
	}

	title := c.FormValue("title")
	if title == "" {
		return response.BadRequest(c, "Title is required")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Evidence file is required")
	}

	if file.Size > h.cfg.Upload.MaxSizeBytes {
		return response.BadRequest(c, fmt.Sprintf("File exceeds the %d byte limit", h.cfg.Upload.MaxSizeBytes))
	}

	// stored under a random name so uploads cannot collide or traverse paths
	storedName := uuid.New().String() + filepath.Ext(file.Filename)
	storedPath := filepath.Join(h.cfg.Upload.Dir, storedName)

	if err := c.SaveFile(file, storedPath); err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	input := &services.CreateEvidenceInput{
		ControlID:   uint(controlID),
		Title:       title,
		Description: c.FormValue("description"),
		FilePath:    storedPath,
		FileType:    file.Header.Get("Content-Type"),
		FileSize:    file.Size,
	}

	evidence, err := h.evidenceService.CreateEvidence(c.Context(), user.ID, input)
	if err != nil {
		if errors.Is(err, services.ErrControlNotFound) {
			return response.NotFound(c, "Control not found")
		}
		return response.InternalServerError(c, "Failed to record evidence")
	}

	return response.Created(c, "Evidence uploaded successfully", evidence)
}

// ListEvidence handles listing evidence
// @Summary List evidence
// @Description Get a paginated list of evidence, optionally filtered by review status
// @Tags Evidence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by review status"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /evidence [get]
func (h *EvidenceHandler) ListEvidence(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := domain.EvidenceStatus(c.Query("status"))

	evidence, total, err := h.evidenceService.ListEvidence(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list evidence")
	}

	return response.Success(c, "Evidence retrieved successfully", pagination.NewResponse(evidence, params, total))
}

// GetEvidence handles getting an evidence record
// @Summary Get evidence
// @Description Get an evidence record by ID
// @Tags Evidence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evidence ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /evidence/{id} [get]
func (h *EvidenceHandler) GetEvidence(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid evidence ID")
	}

	evidence, err := h.evidenceService.GetEvidence(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrEvidenceNotFound) {
			return response.NotFound(c, "Evidence not found")
		}
		return response.InternalServerError(c, "Failed to get evidence")
	}

	return response.Success(c, "Evidence retrieved successfully", evidence)
}

// ReviewEvidence handles approving or rejecting evidence
// @Summary Review evidence
// @Description Approve or reject an evidence record
// @Tags Evidence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evidence ID"
// @Param body body services.ReviewEvidenceInput true "Review decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /evidence/{id}/review [put]
func (h *EvidenceHandler) ReviewEvidence(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid evidence ID")
	}

	var input services.ReviewEvidenceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	evidence, err := h.evidenceService.ReviewEvidence(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEvidenceNotFound):
			return response.NotFound(c, "Evidence not found")
		case errors.Is(err, services.ErrInvalidReview):
			return response.BadRequest(c, "Review status must be APPROVED or REJECTED")
		default:
			return response.InternalServerError(c, "Failed to review evidence")
		}
	}

	return response.Success(c, "Evidence reviewed successfully", evidence)
}

// AssessEvidence handles running the AI pre-assessment
// @Summary AI assess evidence
// @Description Ask the AI reviewer for a pre-assessment of the evidence
// @Tags Evidence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evidence ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /evidence/{id}/assess [post]
func (h *EvidenceHandler) AssessEvidence(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid evidence ID")
	}

	evidence, err := h.evidenceService.AssessEvidence(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrEvidenceNotFound) {
			return response.NotFound(c, "Evidence not found")
		}
		return response.InternalServerError(c, "Failed to assess evidence")
	}

	return response.Success(c, "Evidence assessed", evidence)
}

// DeleteEvidence handles deleting an evidence record
// @Summary Delete evidence
// @Description Delete an evidence record and its stored file
// @Tags Evidence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evidence ID"
// @Success 204
// @Failure 404 {object} response.Response
// @Router /evidence/{id} [delete]
func (h *EvidenceHandler) DeleteEvidence(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid evidence ID")
	}

	if err := h.evidenceService.DeleteEvidence(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrEvidenceNotFound) {
			return response.NotFound(c, "Evidence not found")
		}
		return response.InternalServerError(c, "Failed to delete evidence")
	}

	return response.NoContent(c)
}
