package handlers

import (
	"fmt"
	"strconv"
	"time"

	"amana-grc/internal/core/services"
	"amana-grc/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ExportHandler handles CSV export endpoints
type ExportHandler struct {
	exportService *services.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportRisks handles exporting the risk register
// @Summary Export risks
// @Description Download the full risk register as CSV
// @Tags Export
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV content"
// @Router /export/risks [get]
func (h *ExportHandler) ExportRisks(c *fiber.Ctx) error {
	content, err := h.exportService.ExportRisks(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to export risks")
	}

	filename := fmt.Sprintf("risk-register-%s.csv", time.Now().Format("2006-01-02"))
	return response.CSV(c, filename, content)
}

// ExportControls handles exporting a standard's controls
// @Summary Export controls
// @Description Download all controls of a standard as CSV
// @Tags Export
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "Standard ID"
// @Success 200 {string} string "CSV content"
// @Router /export/standards/{id}/controls [get]
func (h *ExportHandler) ExportControls(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid standard ID")
	}

	content, err := h.exportService.ExportControls(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to export controls")
	}

	filename := fmt.Sprintf("controls-%d-%s.csv", id, time.Now().Format("2006-01-02"))
	return response.CSV(c, filename, content)
}

// ExportAuditReport handles exporting an audit report
// @Summary Export audit report
// @Description Download an audit and its findings as CSV
// @Tags Export
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "Audit ID"
// @Success 200 {string} string "CSV content"
// @Router /export/audits/{id} [get]
func (h *ExportHandler) ExportAuditReport(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid audit ID")
	}

	content, err := h.exportService.ExportAuditReport(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to export audit report")
	}

	filename := fmt.Sprintf("audit-report-%d-%s.csv", id, time.Now().Format("2006-01-02"))
	return response.CSV(c, filename, content)
}
