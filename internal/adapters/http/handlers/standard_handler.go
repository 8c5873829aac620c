package handlers

import (
	"errors"
	"strconv"

	"amana-grc/internal/adapters/persistence/repositories"
	"amana-grc/internal/core/domain"
	"amana-grc/internal/core/services"
	"amana-grc/internal/pkg/pagination"
	"amana-grc/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// StandardHandler handles standards and controls endpoints
type StandardHandler struct {
	standardService *services.StandardService
}

// NewStandardHandler creates a new standard handler
func NewStandardHandler(standardService *services.StandardService) *StandardHandler {
	return &StandardHandler{standardService: standardService}
}

// CreateStandard handles creating a standard
// @Summary Create standard
// @Description Register a compliance standard (Admin only)
// @Tags Standards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateStandardInput true "Standard data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /standards [post]
func (h *StandardHandler) CreateStandard(c *fiber.Ctx) error {
	var input services.CreateStandardInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Code == "" || input.NameEN == "" || input.NameAR == "" {
		return response.BadRequest(c, "Code and bilingual names are required")
	}

	standard, err := h.standardService.CreateStandard(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrStandardCodeInUse) {
			return response.Conflict(c, "Standard code already exists")
		}
		return response.InternalServerError(c, "Failed to create standard")
	}

	return response.Created(c, "Standard created successfully", standard)
}

// ListStandards handles listing standards
// @Summary List standards
// @Description Get a paginated list of standards
// @Tags Standards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /standards [get]
func (h *StandardHandler) ListStandards(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	standards, total, err := h.standardService.ListStandards(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list standards")
	}

	return response.Success(c, "Standards retrieved successfully", pagination.NewResponse(standards, params, total))
}

// GetStandard handles getting a standard by ID
// @Summary Get standard
// @Description Get a standard by ID
// @Tags Standards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Standard ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /standards/{id} [get]
func (h *StandardHandler) GetStandard(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid standard ID")
	}

	standard, err := h.standardService.GetStandard(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrStandardNotFound) {
			return response.NotFound(c, "Standard not found")
		}
		return response.InternalServerError(c, "Failed to get standard")
	}

	return response.Success(c, "Standard retrieved successfully", standard)
}

// GetComplianceSummary handles the per-standard compliance summary
// @Summary Compliance summary
// @Description Implementation progress of a standard's controls
// @Tags Standards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Standard ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /standards/{id}/compliance [get]
func (h *StandardHandler) GetComplianceSummary(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid standard ID")
	}

	summary, err := h.standardService.GetComplianceSummary(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrStandardNotFound) {
			return response.NotFound(c, "Standard not found")
		}
		return response.InternalServerError(c, "Failed to compute compliance summary")
	}

	return response.Success(c, "Compliance summary retrieved successfully", summary)
}

// CreateControl handles adding a control to a standard
// @Summary Create control
// @Description Add a control requirement to a standard (Admin only)
// @Tags Controls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateControlInput true "Control data"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /controls [post]
func (h *StandardHandler) CreateControl(c *fiber.Ctx) error {
	var input services.CreateControlInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.StandardID == 0 || input.Code == "" || input.TitleEN == "" || input.TitleAR == "" {
		return response.BadRequest(c, "Standard, code and bilingual titles are required")
	}

	control, err := h.standardService.CreateControl(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrStandardNotFound) {
			return response.NotFound(c, "Standard not found")
		}
		return response.InternalServerError(c, "Failed to create control")
	}

	return response.Created(c, "Control created successfully", control)
}

// ListControls handles listing controls with filters
// @Summary List controls
// @Description Get a filtered, paginated list of controls
// @Tags Controls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param standard_id query int false "Filter by standard"
// @Param status query string false "Filter by implementation status"
// @Param search query string false "Search in code and titles"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /controls [get]
func (h *StandardHandler) ListControls(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	standardID, _ := strconv.ParseUint(c.Query("standard_id", "0"), 10, 32)
	filter := repositories.ControlFilter{
		StandardID:           uint(standardID),
		ImplementationStatus: domain.ImplementationStatus(c.Query("status")),
		Search:               c.Query("search"),
	}

	controls, total, err := h.standardService.ListControls(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list controls")
	}

	return response.Success(c, "Controls retrieved successfully", pagination.NewResponse(controls, params, total))
}

// GetControl handles getting a control by ID
// @Summary Get control
// @Description Get a control by ID
// @Tags Controls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Control ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /controls/{id} [get]
func (h *StandardHandler) GetControl(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid control ID")
	}

	control, err := h.standardService.GetControl(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrControlNotFound) {
			return response.NotFound(c, "Control not found")
		}
		return response.InternalServerError(c, "Failed to get control")
	}

	return response.Success(c, "Control retrieved successfully", control)
}

// UpdateControlStatus handles updating implementation status
// @Summary Update control status
// @Description Record implementation progress on a control
// @Tags Controls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Control ID"
// @Param body body services.UpdateControlStatusInput true "Status update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /controls/{id}/status [put]
func (h *StandardHandler) UpdateControlStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid control ID")
	}

	var input services.UpdateControlStatusInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	control, err := h.standardService.UpdateControlStatus(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrControlNotFound):
			return response.NotFound(c, "Control not found")
		case errors.Is(err, services.ErrInvalidImplStatus):
			return response.BadRequest(c, "Invalid implementation status")
		default:
			return response.InternalServerError(c, "Failed to update control")
		}
	}

	return response.Success(c, "Control updated successfully", control)
}
