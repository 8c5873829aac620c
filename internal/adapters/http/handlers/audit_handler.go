package handlers

import (
	"errors"
	"strconv"

	"amana-grc/internal/core/domain"
	"amana-grc/internal/core/services"
	"amana-grc/internal/pkg/pagination"
	"amana-grc/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuditHandler handles audit and finding endpoints
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// CreateAudit handles opening an audit engagement
// @Summary Create audit
// @Description Open an audit engagement and notify the lead auditor
// @Tags Audits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateAuditInput true "Audit data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /audits [post]
func (h *AuditHandler) CreateAudit(c *fiber.Ctx) error {
	var input services.CreateAuditInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.TitleEN == "" || input.TitleAR == "" || input.LeadAuditorID == 0 || input.StartDate.IsZero() {
		return response.BadRequest(c, "Bilingual titles, lead auditor and start date are required")
	}

	audit, err := h.auditService.CreateAudit(c.Context(), &input)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.BadRequest(c, "Lead auditor not found")
		}
		return response.InternalServerError(c, "Failed to create audit")
	}

	return response.Created(c, "Audit created successfully", audit)
}

// ListAudits handles listing audits
// @Summary List audits
// @Description Get a paginated list of audits, optionally filtered by status
// @Tags Audits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /audits [get]
func (h *AuditHandler) ListAudits(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := domain.AuditStatus(c.Query("status"))

	audits, total, err := h.auditService.ListAudits(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list audits")
	}

	return response.Success(c, "Audits retrieved successfully", pagination.NewResponse(audits, params, total))
}

// GetAudit handles getting an audit by ID
// @Summary Get audit
// @Description Get an audit by ID
// @Tags Audits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Audit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /audits/{id} [get]
func (h *AuditHandler) GetAudit(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid audit ID")
	}

	audit, err := h.auditService.GetAudit(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrAuditNotFound) {
			return response.NotFound(c, "Audit not found")
		}
		return response.InternalServerError(c, "Failed to get audit")
	}

	return response.Success(c, "Audit retrieved successfully", audit)
}

// UpdateAudit handles updating an audit
// @Summary Update audit
// @Description Update audit details or move it through its workflow
// @Tags Audits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Audit ID"
// @Param body body services.UpdateAuditInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /audits/{id} [put]
func (h *AuditHandler) UpdateAudit(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid audit ID")
	}

	var input services.UpdateAuditInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	audit, err := h.auditService.UpdateAudit(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrAuditNotFound) {
			return response.NotFound(c, "Audit not found")
		}
		return response.InternalServerError(c, "Failed to update audit")
	}

	return response.Success(c, "Audit updated successfully", audit)
}

// CreateFinding handles raising a finding on an audit
// @Summary Create finding
// @Description Raise a finding on an audit and notify the assignee
// @Tags Audits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Audit ID"
// @Param body body services.CreateFindingInput true "Finding data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /audits/{id}/findings [post]
func (h *AuditHandler) CreateFinding(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid audit ID")
	}

	var input services.CreateFindingInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Finding == "" || input.Severity == "" {
		return response.BadRequest(c, "Finding text and severity are required")
	}

	finding, err := h.auditService.CreateFinding(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuditNotFound):
			return response.NotFound(c, "Audit not found")
		case errors.Is(err, services.ErrAuditClosed):
			return response.BadRequest(c, "Cannot add findings to a closed audit")
		default:
			return response.InternalServerError(c, "Failed to create finding")
		}
	}

	return response.Created(c, "Finding created successfully", finding)
}

// ListFindings handles listing an audit's findings
// @Summary List findings
// @Description Get all findings of an audit
// @Tags Audits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Audit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /audits/{id}/findings [get]
func (h *AuditHandler) ListFindings(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid audit ID")
	}

	findings, err := h.auditService.ListFindings(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrAuditNotFound) {
			return response.NotFound(c, "Audit not found")
		}
		return response.InternalServerError(c, "Failed to list findings")
	}

	return response.Success(c, "Findings retrieved successfully", findings)
}

// UpdateFinding handles updating a finding
// @Summary Update finding
// @Description Update a finding's details, assignment or status
// @Tags Audits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Finding ID"
// @Param body body services.UpdateFindingInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /findings/{id} [put]
func (h *AuditHandler) UpdateFinding(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid finding ID")
	}

	var input services.UpdateFindingInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	finding, err := h.auditService.UpdateFinding(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrFindingNotFound) {
			return response.NotFound(c, "Finding not found")
		}
		return response.InternalServerError(c, "Failed to update finding")
	}

	return response.Success(c, "Finding updated successfully", finding)
}
