package rules

import (
	"context"
	"time"
)

// Source is the persisted rule text of one tenant, as delivered by the
// upload boundary (text extraction from PDFs happens before storage).
type Source struct {
	TenantID       string    `db:"tenant_id" json:"tenant_id"`
	TechnicalRules string    `db:"technical_rules" json:"technical_rules"`
	MedicalRules   string    `db:"medical_rules" json:"medical_rules"`
	UploadedAt     time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// SourceRepository stores rule text per tenant. Get returns (nil, nil) when
// the tenant has no rule source.
type SourceRepository interface {
	Upsert(ctx context.Context, src *Source) error
	Get(ctx context.Context, tenantID string) (*Source, error)
}
