package domain

// Role represents a user role for RBAC checks.
// Authorization is set-membership over these values - there is no hierarchy.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleRiskOfficer Role = "RISK_OFFICER"
	RoleAuditor     Role = "AUDITOR"
	RoleViewer      Role = "VIEWER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRiskOfficer, RoleAuditor, RoleViewer:
		return true
	}
	return false
}

// RiskLevel represents risk severity derived from the risk score.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "VERY_LOW"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskTreatment represents a risk treatment strategy.
type RiskTreatment string

const (
	TreatmentAccept   RiskTreatment = "ACCEPT"
	TreatmentMitigate RiskTreatment = "MITIGATE"
	TreatmentTransfer RiskTreatment = "TRANSFER"
	TreatmentAvoid    RiskTreatment = "AVOID"
)

// Risk status values
const (
	RiskStatusOpen       = "OPEN"
	RiskStatusMonitoring = "MONITORING"
	RiskStatusClosed     = "CLOSED"
)

// ImplementationStatus represents control implementation progress.
type ImplementationStatus string

const (
	ImplNotImplemented       ImplementationStatus = "NOT_IMPLEMENTED"
	ImplPartiallyImplemented ImplementationStatus = "PARTIALLY_IMPLEMENTED"
	ImplImplemented          ImplementationStatus = "IMPLEMENTED"
	ImplNotApplicable        ImplementationStatus = "NOT_APPLICABLE"
)

// AuditStatus represents audit workflow status.
type AuditStatus string

const (
	AuditPlanned    AuditStatus = "PLANNED"
	AuditInProgress AuditStatus = "IN_PROGRESS"
	AuditCompleted  AuditStatus = "COMPLETED"
	AuditClosed     AuditStatus = "CLOSED"
)

// Severity represents finding severity.
type Severity string

const (
	SeverityObservation Severity = "OBSERVATION"
	SeverityMinor       Severity = "MINOR"
	SeverityMajor       Severity = "MAJOR"
	SeverityCritical    Severity = "CRITICAL"
)

// FindingStatus represents finding resolution status.
type FindingStatus string

const (
	FindingOpen       FindingStatus = "OPEN"
	FindingInProgress FindingStatus = "IN_PROGRESS"
	FindingResolved   FindingStatus = "RESOLVED"
	FindingClosed     FindingStatus = "CLOSED"
)

// EvidenceStatus represents evidence review status.
type EvidenceStatus string

const (
	EvidencePending  EvidenceStatus = "PENDING"
	EvidenceApproved EvidenceStatus = "APPROVED"
	EvidenceRejected EvidenceStatus = "REJECTED"
)
