package claims

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EncounterType is the setting a claimed service was rendered in.
type EncounterType string

const (
	Inpatient  EncounterType = "INPATIENT"
	Outpatient EncounterType = "OUTPATIENT"
)

// Status is the validation lifecycle state of a claim. Claims are created
// Pending at ingestion and moved to Validated or NotValidated by a
// validation run. Re-running validation overwrites the outcome; it never
// accumulates.
type Status string

const (
	StatusPending      Status = "Pending"
	StatusValidated    Status = "Validated"
	StatusNotValidated Status = "Not validated"
)

// ErrorCategory is the four-way classification of a validated claim.
type ErrorCategory string

const (
	NoError        ErrorCategory = "No error"
	TechnicalError ErrorCategory = "Technical error"
	MedicalError   ErrorCategory = "Medical error"
	BothErrors     ErrorCategory = "Both"
)

// Document maps to the claims table. It is the raw persisted form of a
// claim: diagnosis codes are kept as the delimited text the ingestion
// boundary delivered, the approval number may be a placeholder token, and
// the unique id may lack separators. Normalize converts a Document into a
// Claim before any rule evaluation runs.
type Document struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	TenantID          string     `db:"tenant_id" json:"tenant_id"`
	ClaimID           string     `db:"claim_id" json:"claim_id"`
	UniqueID          string     `db:"unique_id" json:"unique_id"`
	EncounterType     string     `db:"encounter_type" json:"encounter_type"`
	ServiceDate       string     `db:"service_date" json:"service_date"`
	NationalID        string     `db:"national_id" json:"national_id"`
	MemberID          string     `db:"member_id" json:"member_id"`
	FacilityID        string     `db:"facility_id" json:"facility_id"`
	DiagnosisCodes    string     `db:"diagnosis_codes" json:"diagnosis_codes"`
	ServiceCode       string     `db:"service_code" json:"service_code"`
	PaidAmount        float64    `db:"paid_amount" json:"paid_amount"`
	ApprovalNumber    string     `db:"approval_number" json:"approval_number"`
	Status            string     `db:"status" json:"status"`
	ErrorType         string     `db:"error_type" json:"error_type"`
	ErrorExplanation  []string   `db:"error_explanation" json:"error_explanation"`
	RecommendedAction string     `db:"recommended_action" json:"recommended_action"`
	UploadedAt        time.Time  `db:"uploaded_at" json:"uploaded_at"`
	ValidatedAt       *time.Time `db:"validated_at" json:"validated_at,omitempty"`
}

// Claim is the validated in-memory representation consumed by the rule
// evaluators. DiagnosisCodes never contains empty strings.
type Claim struct {
	UniqueID       string
	TenantID       string
	EncounterType  EncounterType
	ServiceDate    string
	NationalID     string
	MemberID       string
	FacilityID     string
	DiagnosisCodes []string
	ServiceCode    string
	PaidAmount     float64
	ApprovalNumber string
}

// OutcomeUpdate carries one claim's validation outcome to the bulk
// persistence write, keyed by (unique_id, tenant_id).
type OutcomeUpdate struct {
	UniqueID          string
	TenantID          string
	Status            Status
	ErrorType         ErrorCategory
	ErrorExplanation  []string
	RecommendedAction string
	ValidatedAt       time.Time
}

// approvalPlaceholders are tokens the ingestion boundary uses for "no
// approval number". Matching is case-insensitive after trimming.
var approvalPlaceholders = map[string]bool{
	"NA":              true,
	"N/A":             true,
	"NONE":            true,
	"NULL":            true,
	"OBTAIN APPROVAL": true,
	"PENDING":         true,
}

// HasApproval reports whether the claim carries a usable approval number.
// Empty values and known placeholder tokens count as absent.
func (c *Claim) HasApproval() bool {
	return !ApprovalAbsent(c.ApprovalNumber)
}

// ApprovalAbsent reports whether an approval-number field should be treated
// as "no approval provided".
func ApprovalAbsent(approval string) bool {
	v := strings.TrimSpace(approval)
	if v == "" {
		return true
	}
	return approvalPlaceholders[strings.ToUpper(v)]
}
