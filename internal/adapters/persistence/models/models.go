package models

import (
	"strings"
	"time"

	"amana-grc/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Users & Identity
// ============================================================

// User represents the users table.
// Identities are never hard-deleted; deactivation flips IsActive.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	FullNameEN  string         `gorm:"size:200" json:"full_name_en"`
	FullNameAR  string         `gorm:"size:200" json:"full_name_ar"`
	Password    string         `gorm:"size:255" json:"-"` // bcrypt hash, empty for directory-only accounts
	Role        domain.Role    `gorm:"size:20;default:'VIEWER';index" json:"role"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	IsLDAPUser  bool           `gorm:"default:false" json:"is_ldap_user"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// HasLocalPassword reports whether local authentication can be attempted.
func (u *User) HasLocalPassword() bool {
	return u.Password != ""
}

// UserResponse DTO
type UserResponse struct {
	ID          uint        `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	FullNameEN  string      `json:"full_name_en"`
	FullNameAR  string      `json:"full_name_ar"`
	Role        domain.Role `json:"role"`
	IsActive    bool        `json:"is_active"`
	IsLDAPUser  bool        `json:"is_ldap_user"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullNameEN:  u.FullNameEN,
		FullNameAR:  u.FullNameAR,
		Role:        u.Role,
		IsActive:    u.IsActive,
		IsLDAPUser:  u.IsLDAPUser,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// ============================================================
// Standards & Controls
// ============================================================

// Standard represents a compliance standard or framework
type Standard struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Code          string    `gorm:"uniqueIndex;size:30;not null" json:"code"`
	NameEN        string    `gorm:"size:200;not null" json:"name_en"`
	NameAR        string    `gorm:"size:200;not null" json:"name_ar"`
	DescriptionEN string    `gorm:"type:text" json:"description_en"`
	DescriptionAR string    `gorm:"type:text" json:"description_ar"`
	Version       string    `gorm:"size:20;default:'1.0'" json:"version"`
	Category      string    `gorm:"size:50;index" json:"category"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Standard) TableName() string {
	return "standards"
}

// Control represents a requirement belonging to a standard
type Control struct {
	ID                   uint                        `gorm:"primaryKey" json:"id"`
	StandardID           uint                        `gorm:"not null;index" json:"standard_id"`
	Code                 string                      `gorm:"size:30;not null;index" json:"code"` // e.g. ECC-1-1
	DomainEN             string                      `gorm:"size:200" json:"domain_en"`
	DomainAR             string                      `gorm:"size:200" json:"domain_ar"`
	TitleEN              string                      `gorm:"size:300;not null" json:"title_en"`
	TitleAR              string                      `gorm:"size:300;not null" json:"title_ar"`
	DescriptionEN        string                      `gorm:"type:text" json:"description_en"`
	DescriptionAR        string                      `gorm:"type:text" json:"description_ar"`
	Priority             string                      `gorm:"size:20;default:'MEDIUM';index" json:"priority"`
	ImplementationStatus domain.ImplementationStatus `gorm:"size:30;default:'NOT_IMPLEMENTED';index" json:"implementation_status"`
	ImplementationNotes  string                      `gorm:"type:text" json:"implementation_notes"`
	CreatedAt            time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`

	Standard *Standard `gorm:"foreignKey:StandardID" json:"standard,omitempty"`
}

func (Control) TableName() string {
	return "controls"
}

// ============================================================
// Risk Register
// ============================================================

// Risk represents a risk register entry.
// RiskScore and RiskLevel are derived from ImpactScore and LikelihoodScore
// and must be recomputed whenever either input changes.
type Risk struct {
	ID              uint                 `gorm:"primaryKey" json:"id"`
	RiskID          string               `gorm:"uniqueIndex;size:30;not null" json:"risk_id"` // e.g. RISK-2024-0001
	TitleEN         string               `gorm:"size:300;not null" json:"title_en"`
	TitleAR         string               `gorm:"size:300;not null" json:"title_ar"`
	DescriptionEN   string               `gorm:"type:text" json:"description_en"`
	DescriptionAR   string               `gorm:"type:text" json:"description_ar"`
	Asset           string               `gorm:"size:200" json:"asset"`
	Threat          string               `gorm:"size:200" json:"threat"`
	Vulnerability   string               `gorm:"size:200" json:"vulnerability"`
	ImpactScore     int                  `gorm:"not null" json:"impact_score"`     // 1-5
	LikelihoodScore int                  `gorm:"not null" json:"likelihood_score"` // 1-5
	RiskScore       int                  `gorm:"not null" json:"risk_score"`
	RiskLevel       domain.RiskLevel     `gorm:"size:20;not null;index" json:"risk_level"`
	Treatment       domain.RiskTreatment `gorm:"size:20;default:'MITIGATE'" json:"treatment"`
	TreatmentPlan   string               `gorm:"type:text" json:"treatment_plan"`
	Status          string               `gorm:"size:20;default:'OPEN';index" json:"status"`
	OwnerID         uint                 `gorm:"not null" json:"owner_id"`
	ReviewDate      *time.Time           `json:"review_date"`
	CreatedAt       time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (Risk) TableName() string {
	return "risks"
}

// Reclassify recomputes the derived score and level from current inputs.
func (r *Risk) Reclassify() {
	r.RiskScore, r.RiskLevel = domain.ClassifyRisk(r.ImpactScore, r.LikelihoodScore)
}

// ============================================================
// Audits & Findings
// ============================================================

// Audit represents an audit engagement
type Audit struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	AuditID         string             `gorm:"uniqueIndex;size:30;not null" json:"audit_id"` // e.g. AUD-2024-0001
	TitleEN         string             `gorm:"size:300;not null" json:"title_en"`
	TitleAR         string             `gorm:"size:300;not null" json:"title_ar"`
	Scope           string             `gorm:"size:300" json:"scope"`
	DescriptionEN   string             `gorm:"type:text" json:"description_en"`
	DescriptionAR   string             `gorm:"type:text" json:"description_ar"`
	Status          domain.AuditStatus `gorm:"size:20;default:'PLANNED';index" json:"status"`
	LeadAuditorID   uint               `gorm:"not null" json:"lead_auditor_id"`
	AuditorIDs      string             `gorm:"size:500" json:"-"` // comma-separated user IDs
	StartDate       time.Time          `gorm:"not null;index" json:"start_date"`
	EndDate         *time.Time         `json:"end_date"`
	FindingsSummary string             `gorm:"type:text" json:"findings_summary"`
	CreatedAt       time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	LeadAuditor *User `gorm:"foreignKey:LeadAuditorID" json:"lead_auditor,omitempty"`
}

func (Audit) TableName() string {
	return "audits"
}

// Auditors returns the audit team user IDs.
func (a *Audit) Auditors() []string {
	if a.AuditorIDs == "" {
		return nil
	}
	return strings.Split(a.AuditorIDs, ",")
}

// SetAuditors stores the audit team user IDs.
func (a *Audit) SetAuditors(ids []string) {
	a.AuditorIDs = strings.Join(ids, ",")
}

// Finding represents a non-conformity raised during an audit
type Finding struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	AuditID          uint                 `gorm:"not null;index" json:"audit_id"`
	ControlID        *uint                `gorm:"index" json:"control_id"`
	Finding          string               `gorm:"type:text;not null" json:"finding"`
	Severity         domain.Severity      `gorm:"size:20;not null;index" json:"severity"`
	Status           domain.FindingStatus `gorm:"size:20;default:'OPEN';index" json:"status"`
	CorrectiveAction string               `gorm:"type:text" json:"corrective_action"`
	AssignedToID     *uint                `json:"assigned_to_id"`
	DueDate          *time.Time           `gorm:"index" json:"due_date"`
	ResolutionNotes  string               `gorm:"type:text" json:"resolution_notes"`
	ResolvedAt       *time.Time           `json:"resolved_at"`
	CreatedAt        time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	Audit      *Audit   `gorm:"foreignKey:AuditID" json:"audit,omitempty"`
	Control    *Control `gorm:"foreignKey:ControlID" json:"control,omitempty"`
	AssignedTo *User    `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

func (Finding) TableName() string {
	return "findings"
}

// IsOverdue reports whether an unresolved finding has passed its due date.
func (f *Finding) IsOverdue(now time.Time) bool {
	if f.DueDate == nil {
		return false
	}
	if f.Status == domain.FindingResolved || f.Status == domain.FindingClosed {
		return false
	}
	return now.After(*f.DueDate)
}

// ============================================================
// Evidence
// ============================================================

// Evidence represents a document supporting control implementation
type Evidence struct {
	ID            uint                  `gorm:"primaryKey" json:"id"`
	ControlID     uint                  `gorm:"not null;index" json:"control_id"`
	UploadedByID  uint                  `gorm:"not null" json:"uploaded_by_id"`
	Title         string                `gorm:"size:300;not null" json:"title"`
	Description   string                `gorm:"type:text" json:"description"`
	FilePath      string                `gorm:"size:500" json:"file_path"`
	FileType      string                `gorm:"size:100" json:"file_type"`
	FileSize      int64                 `json:"file_size"`
	Status        domain.EvidenceStatus `gorm:"size:20;default:'PENDING';index" json:"status"`
	ReviewerNotes string                `gorm:"type:text" json:"reviewer_notes"`
	AIAssessment  string                `gorm:"type:text" json:"ai_assessment"`
	AIConfidence  *float64              `json:"ai_confidence"`
	CreatedAt     time.Time             `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"autoUpdateTime" json:"updated_at"`

	Control    *Control `gorm:"foreignKey:ControlID" json:"control,omitempty"`
	UploadedBy *User    `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}

func (Evidence) TableName() string {
	return "evidence"
}

// MonthlyCount is a query projection for trend reports
type MonthlyCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Standard{},
		&Control{},
		&Risk{},
		&Audit{},
		&Finding{},
		&Evidence{},
	)
}
