package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/config"
)

// smtpMailer sends mail through a plain SMTP relay
type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates a mailer backed by the configured SMTP relay
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

// Send sends an email to the given recipients
func (m *smtpMailer) Send(to []string, subject, body string) error {
	addr := m.cfg.Host + ":" + m.cfg.Port

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.cfg.From, strings.Join(to, ", "), subject, body,
	))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	return smtp.SendMail(addr, auth, m.cfg.From, to, msg)
}

// NotificationService sends workflow emails. When SMTP is disabled every
// notification is a logged no-op, so workflows never block on mail delivery.
type NotificationService struct {
	mailer  Mailer
	enabled bool
}

// NewNotificationService creates a new notification service
func NewNotificationService(mailer Mailer, enabled bool) *NotificationService {
	return &NotificationService{
		mailer:  mailer,
		enabled: enabled,
	}
}

// IsEnabled checks if notifications are enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// NotifyFindingAssigned emails the user a finding was assigned to
func (s *NotificationService) NotifyFindingAssigned(user *models.User, finding *models.Finding, audit *models.Audit) {
	subject := fmt.Sprintf("[GRC] Finding assigned - %s | تم إسناد ملاحظة", audit.AuditID)
	body := fmt.Sprintf(
		"Dear %s,\n\nA finding from audit %s has been assigned to you.\n\nSeverity: %s\nFinding: %s\n\n"+
			"عزيزي %s،\n\nتم إسناد ملاحظة من التدقيق %s إليك.\n\nالخطورة: %s\n",
		user.FullNameEN, audit.AuditID, finding.Severity, finding.Finding,
		user.FullNameAR, audit.AuditID, finding.Severity,
	)
	s.send([]string{user.Email}, subject, body)
}

// NotifyFindingOverdue emails the assignee of an overdue finding
func (s *NotificationService) NotifyFindingOverdue(user *models.User, finding *models.Finding) {
	due := ""
	if finding.DueDate != nil {
		due = finding.DueDate.Format("2006-01-02")
	}
	subject := "[GRC] Overdue finding reminder | تذكير بملاحظة متأخرة"
	body := fmt.Sprintf(
		"Dear %s,\n\nThe following finding passed its due date (%s) and is still open.\n\nFinding: %s\nSeverity: %s\n\n"+
			"عزيزي %s،\n\nتجاوزت الملاحظة التالية تاريخ استحقاقها (%s) وما زالت مفتوحة.\n",
		user.FullNameEN, due, finding.Finding, finding.Severity,
		user.FullNameAR, due,
	)
	s.send([]string{user.Email}, subject, body)
}

// NotifyAuditAssigned emails the lead auditor of a new engagement
func (s *NotificationService) NotifyAuditAssigned(user *models.User, audit *models.Audit) {
	subject := fmt.Sprintf("[GRC] Audit assigned - %s | تم إسناد تدقيق", audit.AuditID)
	body := fmt.Sprintf(
		"Dear %s,\n\nYou were assigned as lead auditor of %s (%s), starting %s.\n\n"+
			"عزيزي %s،\n\nتم تعيينك مدققاً رئيسياً للتدقيق %s.\n",
		user.FullNameEN, audit.AuditID, audit.TitleEN, audit.StartDate.Format("2006-01-02"),
		user.FullNameAR, audit.AuditID,
	)
	s.send([]string{user.Email}, subject, body)
}

func (s *NotificationService) send(to []string, subject, body string) {
	if !s.enabled || s.mailer == nil {
		log.Printf("Notification skipped (mail disabled): %s", subject)
		return
	}

	go func() {
		start := time.Now()
		if err := s.mailer.Send(to, subject, body); err != nil {
			log.Printf("Notification send failed: %v", err)
			return
		}
		log.Printf("Notification sent in %s: %s", time.Since(start).Round(time.Millisecond), subject)
	}()
}
