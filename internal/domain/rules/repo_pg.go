package rules

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type sourceRepoPG struct{ pool *pgxpool.Pool }

// NewSourceRepoPG returns a Postgres-backed rule-source repository.
func NewSourceRepoPG(pool *pgxpool.Pool) SourceRepository { return &sourceRepoPG{pool: pool} }

func (r *sourceRepoPG) Upsert(ctx context.Context, src *Source) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rule_sources (tenant_id, technical_rules, medical_rules, uploaded_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (tenant_id) DO UPDATE SET
			technical_rules = EXCLUDED.technical_rules,
			medical_rules = EXCLUDED.medical_rules,
			uploaded_at = NOW()`,
		src.TenantID, src.TechnicalRules, src.MedicalRules)
	return err
}

func (r *sourceRepoPG) Get(ctx context.Context, tenantID string) (*Source, error) {
	var src Source
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id, technical_rules, medical_rules, uploaded_at
		FROM rule_sources WHERE tenant_id = $1`, tenantID).
		Scan(&src.TenantID, &src.TechnicalRules, &src.MedicalRules, &src.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &src, nil
}
