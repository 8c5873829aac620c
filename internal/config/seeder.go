package config

import (
	"log"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/core/domain"
	"amana-grc/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("Admin seeder skipped: %v", err)
	}

	if err := s.seedStandards(); err != nil {
		log.Printf("Standards seeder skipped: %v", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// seedAdminUser creates the bootstrap admin account from ADMIN_* env vars.
// Skipped when no admin password is configured or an admin already exists.
func (s *Seeder) seedAdminUser() error {
	if s.cfg.Admin.Password == "" {
		log.Println("Skipping admin seed: ADMIN_PASSWORD not set")
		return nil
	}

	var count int64
	s.db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash(s.cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:   s.cfg.Admin.Username,
		Email:      s.cfg.Admin.Email,
		FullNameEN: "System Administrator",
		FullNameAR: "مدير النظام",
		Password:   hashedPassword,
		Role:       domain.RoleAdmin,
		IsActive:   true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("Admin user created: %s", admin.Username)
	return nil
}
