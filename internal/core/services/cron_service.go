package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled background jobs
type CronService struct {
	cron         *cron.Cron
	auditService *AuditService
}

// NewCronService creates a new cron service
func NewCronService(auditService *AuditService) *CronService {
	return &CronService{
		cron:         cron.New(),
		auditService: auditService,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	// Overdue finding reminders every morning at 08:30
	_, err := s.cron.AddFunc("30 8 * * *", s.remindOverdueFindings)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Cron scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron scheduler stopped")
}

func (s *CronService) remindOverdueFindings() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sent, err := s.auditService.RemindOverdueFindings(ctx)
	if err != nil {
		log.Printf("Overdue finding reminder job failed: %v", err)
		return
	}
	log.Printf("Overdue finding reminders sent: %d", sent)
}
