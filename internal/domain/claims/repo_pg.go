package claims

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Postgres-backed claim repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const claimCols = `id, tenant_id, claim_id, unique_id, encounter_type, service_date,
	national_id, member_id, facility_id, diagnosis_codes, service_code,
	paid_amount, approval_number, status, error_type, error_explanation,
	recommended_action, uploaded_at, validated_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.TenantID, &d.ClaimID, &d.UniqueID, &d.EncounterType, &d.ServiceDate,
		&d.NationalID, &d.MemberID, &d.FacilityID, &d.DiagnosisCodes, &d.ServiceCode,
		&d.PaidAmount, &d.ApprovalNumber, &d.Status, &d.ErrorType, &d.ErrorExplanation,
		&d.RecommendedAction, &d.UploadedAt, &d.ValidatedAt)
	return &d, err
}

func (r *repoPG) InsertMany(ctx context.Context, docs []*Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, d := range docs {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		batch.Queue(`
			INSERT INTO claims (id, tenant_id, claim_id, unique_id, encounter_type, service_date,
				national_id, member_id, facility_id, diagnosis_codes, service_code,
				paid_amount, approval_number, status, error_type, error_explanation,
				recommended_action)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			d.ID, d.TenantID, d.ClaimID, d.UniqueID, d.EncounterType, d.ServiceDate,
			d.NationalID, d.MemberID, d.FacilityID, d.DiagnosisCodes, d.ServiceCode,
			d.PaidAmount, d.ApprovalNumber, d.Status, d.ErrorType, d.ErrorExplanation,
			d.RecommendedAction)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range docs {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("insert claim %s: %w", docs[i].UniqueID, err)
		}
	}
	return len(docs), nil
}

func (r *repoPG) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*Document, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM claims WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+claimCols+` FROM claims
		WHERE tenant_id = $1 ORDER BY uploaded_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

func (r *repoPG) FetchPending(ctx context.Context, tenantID string) ([]*Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+claimCols+` FROM claims
		WHERE tenant_id = $1 AND status = $2 ORDER BY uploaded_at`,
		tenantID, string(StatusPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// BulkUpdateOutcomes applies all validation outcomes of a run in a single
// batched write keyed by (unique_id, tenant_id). Returns the number of rows
// actually modified.
func (r *repoPG) BulkUpdateOutcomes(ctx context.Context, updates []*OutcomeUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`
			UPDATE claims SET status=$3, error_type=$4, error_explanation=$5,
				recommended_action=$6, validated_at=$7
			WHERE unique_id = $1 AND tenant_id = $2`,
			u.UniqueID, u.TenantID, string(u.Status), string(u.ErrorType),
			u.ErrorExplanation, u.RecommendedAction, u.ValidatedAt)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	var modified int64
	for i := range updates {
		tag, err := br.Exec()
		if err != nil {
			return modified, fmt.Errorf("update claim %s: %w", updates[i].UniqueID, err)
		}
		modified += tag.RowsAffected()
	}
	return modified, nil
}

func (r *repoPG) DeleteByTenant(ctx context.Context, tenantID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM claims WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
