package handlers

import (
	"errors"
	"strconv"

	"amana-grc/internal/adapters/http/middleware"
	"amana-grc/internal/adapters/persistence/repositories"
	"amana-grc/internal/core/domain"
	"amana-grc/internal/core/services"
	"amana-grc/internal/pkg/pagination"
	"amana-grc/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RiskHandler handles risk register endpoints
type RiskHandler struct {
	riskService *services.RiskService
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(riskService *services.RiskService) *RiskHandler {
	return &RiskHandler{riskService: riskService}
}

// CreateRisk handles registering a risk
// @Summary Create risk
// @Description Register a risk; score and level are derived from impact and likelihood
// @Tags Risks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRiskInput true "Risk data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /risks [post]
func (h *RiskHandler) CreateRisk(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateRiskInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.TitleEN == "" || input.TitleAR == "" {
		return response.BadRequest(c, "Bilingual titles are required")
	}

	risk, err := h.riskService.CreateRisk(c.Context(), user.ID, &input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidScore) {
			return response.BadRequest(c, "Impact and likelihood must be between 1 and 5")
		}
		return response.InternalServerError(c, "Failed to create risk")
	}

	return response.Created(c, "Risk registered successfully", risk)
}

// ListRisks handles listing risks with filters
// @Summary List risks
// @Description Get a filtered, paginated list of risks ordered by score
// @Tags Risks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param level query string false "Filter by risk level"
// @Param status query string false "Filter by status"
// @Param owner_id query int false "Filter by owner"
// @Param search query string false "Search in ID and titles"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /risks [get]
func (h *RiskHandler) ListRisks(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	ownerID, _ := strconv.ParseUint(c.Query("owner_id", "0"), 10, 32)
	filter := repositories.RiskFilter{
		Level:   domain.RiskLevel(c.Query("level")),
		Status:  c.Query("status"),
		OwnerID: uint(ownerID),
		Search:  c.Query("search"),
	}

	risks, total, err := h.riskService.ListRisks(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list risks")
	}

	return response.Success(c, "Risks retrieved successfully", pagination.NewResponse(risks, params, total))
}

// GetRisk handles getting a risk by ID
// @Summary Get risk
// @Description Get a risk by ID
// @Tags Risks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Risk ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /risks/{id} [get]
func (h *RiskHandler) GetRisk(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid risk ID")
	}

	risk, err := h.riskService.GetRisk(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrRiskNotFound) {
			return response.NotFound(c, "Risk not found")
		}
		return response.InternalServerError(c, "Failed to get risk")
	}

	return response.Success(c, "Risk retrieved successfully", risk)
}

// UpdateRisk handles updating a risk
// @Summary Update risk
// @Description Update a risk; score is recomputed when impact or likelihood change
// @Tags Risks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Risk ID"
// @Param body body services.UpdateRiskInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /risks/{id} [put]
func (h *RiskHandler) UpdateRisk(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid risk ID")
	}

	var input services.UpdateRiskInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	risk, err := h.riskService.UpdateRisk(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRiskNotFound):
			return response.NotFound(c, "Risk not found")
		case errors.Is(err, services.ErrInvalidScore):
			return response.BadRequest(c, "Impact and likelihood must be between 1 and 5")
		default:
			return response.InternalServerError(c, "Failed to update risk")
		}
	}

	return response.Success(c, "Risk updated successfully", risk)
}

// CloseRisk handles closing a risk
// @Summary Close risk
// @Description Close a risk; register entries are kept for the audit trail
// @Tags Risks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Risk ID"
// @Success 204
// @Failure 404 {object} response.Response
// @Router /risks/{id} [delete]
func (h *RiskHandler) CloseRisk(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid risk ID")
	}

	if err := h.riskService.CloseRisk(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrRiskNotFound) {
			return response.NotFound(c, "Risk not found")
		}
		return response.InternalServerError(c, "Failed to close risk")
	}

	return response.NoContent(c)
}
