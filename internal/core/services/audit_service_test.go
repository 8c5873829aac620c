package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanMailer pushes every sent mail onto a channel so tests can wait for
// the async delivery goroutine.
type chanMailer struct {
	sent chan sentMail
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

func newChanMailer() *chanMailer {
	return &chanMailer{sent: make(chan sentMail, 10)}
}

func (m *chanMailer) Send(to []string, subject, body string) error {
	m.sent <- sentMail{to: to, subject: subject, body: body}
	return nil
}

func (m *chanMailer) waitForMail(t *testing.T) sentMail {
	t.Helper()
	select {
	case mail := <-m.sent:
		return mail
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification email, none was sent")
		return sentMail{}
	}
}

func newAuditFixture(mailer Mailer, enabled bool) (*AuditService, *fakeAuditRepo, *fakeFindingRepo, *fakeUserRepo) {
	auditRepo := newFakeAuditRepo()
	findingRepo := &fakeFindingRepo{}
	userRepo := newFakeUserRepo()
	notifier := NewNotificationService(mailer, enabled)
	svc := NewAuditService(auditRepo, findingRepo, userRepo, notifier)
	return svc, auditRepo, findingRepo, userRepo
}

func TestCreateAuditSequencesAndNotifiesLead(t *testing.T) {
	mailer := newChanMailer()
	svc, _, _, userRepo := newAuditFixture(mailer, true)

	lead := &models.User{
		Username: "omar", Email: "omar@amana.sa",
		FullNameEN: "Omar Alharbi", Role: domain.RoleAuditor, IsActive: true,
	}
	require.NoError(t, userRepo.Create(context.Background(), lead))

	audit, err := svc.CreateAudit(context.Background(), &CreateAuditInput{
		TitleEN:       "Annual access review",
		TitleAR:       "المراجعة السنوية للصلاحيات",
		LeadAuditorID: lead.ID,
		AuditorIDs:    []uint{lead.ID},
		StartDate:     time.Now(),
	})
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("AUD-%d-0001", year), audit.AuditID)
	assert.Equal(t, domain.AuditPlanned, audit.Status)

	mail := mailer.waitForMail(t)
	assert.Equal(t, []string{"omar@amana.sa"}, mail.to)
	assert.Contains(t, mail.subject, audit.AuditID)
	assert.Contains(t, mail.body, "Omar Alharbi")

	_, err = svc.CreateAudit(context.Background(), &CreateAuditInput{
		TitleEN: "x", TitleAR: "x", LeadAuditorID: 999, StartDate: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreateFindingRejectedOnClosedAudit(t *testing.T) {
	svc, auditRepo, _, _ := newAuditFixture(nil, false)

	require.NoError(t, auditRepo.Create(context.Background(), &models.Audit{
		AuditID: "AUD-2026-0001", Status: domain.AuditClosed,
	}))

	_, err := svc.CreateFinding(context.Background(), 1, &CreateFindingInput{
		Finding:  "Backups not tested",
		Severity: domain.SeverityMajor,
	})
	assert.ErrorIs(t, err, ErrAuditClosed)
}

func TestUpdateFindingResolvedStampsOnce(t *testing.T) {
	svc, auditRepo, _, _ := newAuditFixture(nil, false)

	require.NoError(t, auditRepo.Create(context.Background(), &models.Audit{
		AuditID: "AUD-2026-0001", Status: domain.AuditInProgress,
	}))

	finding, err := svc.CreateFinding(context.Background(), 1, &CreateFindingInput{
		Finding:  "Backups not tested",
		Severity: domain.SeverityMajor,
	})
	require.NoError(t, err)
	require.Nil(t, finding.ResolvedAt)

	resolved := domain.FindingResolved
	updated, err := svc.UpdateFinding(context.Background(), finding.ID, &UpdateFindingInput{Status: &resolved})
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	firstStamp := *updated.ResolvedAt

	// Resolving again keeps the original timestamp
	updated, err = svc.UpdateFinding(context.Background(), finding.ID, &UpdateFindingInput{Status: &resolved})
	require.NoError(t, err)
	assert.Equal(t, firstStamp, *updated.ResolvedAt)

	_, err = svc.UpdateFinding(context.Background(), 999, &UpdateFindingInput{})
	assert.ErrorIs(t, err, ErrFindingNotFound)
}

func TestRemindOverdueFindings(t *testing.T) {
	mailer := newChanMailer()
	svc, _, findingRepo, userRepo := newAuditFixture(mailer, true)

	active := &models.User{Username: "sara", Email: "sara@amana.sa", IsActive: true}
	inactive := &models.User{Username: "former", Email: "former@amana.sa", IsActive: false}
	require.NoError(t, userRepo.Create(context.Background(), active))
	require.NoError(t, userRepo.Create(context.Background(), inactive))

	pastDue := time.Now().Add(-48 * time.Hour)
	futureDue := time.Now().Add(48 * time.Hour)

	findings := []*models.Finding{
		{AuditID: 1, Finding: "Overdue, assigned, active", Severity: domain.SeverityMajor,
			Status: domain.FindingOpen, AssignedToID: &active.ID, DueDate: &pastDue},
		{AuditID: 1, Finding: "Overdue, assignee inactive", Severity: domain.SeverityMinor,
			Status: domain.FindingOpen, AssignedToID: &inactive.ID, DueDate: &pastDue},
		{AuditID: 1, Finding: "Overdue, unassigned", Severity: domain.SeverityMinor,
			Status: domain.FindingOpen, DueDate: &pastDue},
		{AuditID: 1, Finding: "Not due yet", Severity: domain.SeverityMinor,
			Status: domain.FindingOpen, AssignedToID: &active.ID, DueDate: &futureDue},
		{AuditID: 1, Finding: "Overdue but resolved", Severity: domain.SeverityMinor,
			Status: domain.FindingResolved, AssignedToID: &active.ID, DueDate: &pastDue},
	}
	for _, f := range findings {
		require.NoError(t, findingRepo.Create(context.Background(), f))
	}

	sent, err := svc.RemindOverdueFindings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	mail := mailer.waitForMail(t)
	assert.Equal(t, []string{"sara@amana.sa"}, mail.to)
	assert.Contains(t, mail.body, "Overdue, assigned, active")
}
