package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"amana-grc/internal/adapters/persistence/repositories"
)

// ExportService renders register data as CSV for download
type ExportService struct {
	riskRepo    repositories.RiskRepository
	controlRepo repositories.ControlRepository
	auditRepo   repositories.AuditRepository
	findingRepo repositories.FindingRepository
}

// NewExportService creates a new export service
func NewExportService(
	riskRepo repositories.RiskRepository,
	controlRepo repositories.ControlRepository,
	auditRepo repositories.AuditRepository,
	findingRepo repositories.FindingRepository,
) *ExportService {
	return &ExportService{
		riskRepo:    riskRepo,
		controlRepo: controlRepo,
		auditRepo:   auditRepo,
		findingRepo: findingRepo,
	}
}

// ExportRisks renders the full risk register as CSV
func (s *ExportService) ExportRisks(ctx context.Context) (string, error) {
	risks, err := s.riskRepo.ListAll(ctx)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Risk ID", "Title (EN)", "Title (AR)", "Asset", "Threat", "Vulnerability",
		"Impact", "Likelihood", "Score", "Level", "Treatment", "Status", "Owner",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, risk := range risks {
		owner := ""
		if risk.Owner != nil {
			owner = risk.Owner.Username
		}
		record := []string{
			risk.RiskID, risk.TitleEN, risk.TitleAR,
			risk.Asset, risk.Threat, risk.Vulnerability,
			strconv.Itoa(risk.ImpactScore), strconv.Itoa(risk.LikelihoodScore),
			strconv.Itoa(risk.RiskScore), string(risk.RiskLevel),
			string(risk.Treatment), risk.Status, owner,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}

// ExportControls renders all controls of a standard as CSV
func (s *ExportService) ExportControls(ctx context.Context, standardID uint) (string, error) {
	controls, err := s.controlRepo.ListByStandard(ctx, standardID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Code", "Domain (EN)", "Title (EN)", "Title (AR)",
		"Priority", "Implementation Status", "Notes",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, control := range controls {
		record := []string{
			control.Code, control.DomainEN, control.TitleEN, control.TitleAR,
			control.Priority, string(control.ImplementationStatus), control.ImplementationNotes,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}

// ExportAuditReport renders an audit and its findings as CSV
func (s *ExportService) ExportAuditReport(ctx context.Context, auditID uint) (string, error) {
	audit, err := s.auditRepo.GetByID(ctx, auditID)
	if err != nil {
		return "", err
	}

	findings, err := s.findingRepo.ListByAudit(ctx, auditID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	meta := [][]string{
		{"Audit ID", audit.AuditID},
		{"Title", audit.TitleEN},
		{"Scope", audit.Scope},
		{"Status", string(audit.Status)},
		{"Start Date", audit.StartDate.Format("2006-01-02")},
		{},
	}
	for _, record := range meta {
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	header := []string{"Finding", "Severity", "Status", "Corrective Action", "Assigned To", "Due Date"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, finding := range findings {
		assignee := ""
		if finding.AssignedTo != nil {
			assignee = finding.AssignedTo.Username
		}
		due := ""
		if finding.DueDate != nil {
			due = finding.DueDate.Format("2006-01-02")
		}
		record := []string{
			finding.Finding, string(finding.Severity), string(finding.Status),
			finding.CorrectiveAction, assignee, due,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}
