package handlers

import (
	"strconv"

	"amana-grc/internal/core/services"
	"amana-grc/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard and analytics endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetOverview handles the main dashboard
// @Summary Dashboard overview
// @Description Counts across users, risks, controls, audits, findings and evidence
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/overview [get]
func (h *DashboardHandler) GetOverview(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetOverview(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}

// GetRiskTrends handles the monthly risk trend report
// @Summary Risk trends
// @Description Risks registered per month over the last twelve months
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/risk-trends [get]
func (h *DashboardHandler) GetRiskTrends(c *fiber.Ctx) error {
	trends, err := h.dashboardService.RiskTrends(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load risk trends")
	}

	return response.Success(c, "Risk trends retrieved successfully", trends)
}

// GetComplianceByDomain handles the per-domain control breakdown
// @Summary Compliance by domain
// @Description Control counts grouped by domain, optionally scoped to a standard
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param standard_id query int false "Standard ID"
// @Success 200 {object} response.Response
// @Router /dashboard/compliance-by-domain [get]
func (h *DashboardHandler) GetComplianceByDomain(c *fiber.Ctx) error {
	standardID, _ := strconv.ParseUint(c.Query("standard_id", "0"), 10, 32)

	data, err := h.dashboardService.ComplianceByDomain(c.Context(), uint(standardID))
	if err != nil {
		return response.InternalServerError(c, "Failed to load compliance breakdown")
	}

	return response.Success(c, "Compliance breakdown retrieved successfully", data)
}

// GetComplianceTrend handles the compliance percentage series
// @Summary Compliance trend
// @Description Daily compliance percentage series, optionally scoped to a standard
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param standard_id query int false "Standard ID"
// @Param days query int false "Window in days" default(30)
// @Success 200 {object} response.Response
// @Router /dashboard/compliance-trend [get]
func (h *DashboardHandler) GetComplianceTrend(c *fiber.Ctx) error {
	standardID, _ := strconv.ParseUint(c.Query("standard_id", "0"), 10, 32)
	days, _ := strconv.Atoi(c.Query("days", "30"))

	points, err := h.dashboardService.ComplianceTrend(c.Context(), uint(standardID), days)
	if err != nil {
		return response.InternalServerError(c, "Failed to load compliance trend")
	}

	return response.Success(c, "Compliance trend retrieved successfully", points)
}
