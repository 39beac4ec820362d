package analytics

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Postgres-backed analytics repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) StatusCounts(ctx context.Context, tenantID string) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM claims
		WHERE tenant_id = $1 GROUP BY status ORDER BY status`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

func (r *repoPG) ErrorBuckets(ctx context.Context, tenantID string) ([]ErrorBucket, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT error_type, COUNT(*), COALESCE(SUM(paid_amount), 0) FROM claims
		WHERE tenant_id = $1 AND status <> 'Pending'
		GROUP BY error_type ORDER BY error_type`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []ErrorBucket
	for rows.Next() {
		var b ErrorBucket
		if err := rows.Scan(&b.ErrorType, &b.Count, &b.PaidAmount); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *repoPG) Totals(ctx context.Context, tenantID string) (int64, float64, error) {
	var count int64
	var paid float64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(paid_amount), 0) FROM claims
		WHERE tenant_id = $1`, tenantID).Scan(&count, &paid)
	return count, paid, err
}

func (r *repoPG) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO claim_analytics (tenant_id, total_claims, total_paid_amount, not_validated, generated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id) DO UPDATE SET
			total_claims = EXCLUDED.total_claims,
			total_paid_amount = EXCLUDED.total_paid_amount,
			not_validated = EXCLUDED.not_validated,
			generated_at = EXCLUDED.generated_at`,
		snap.TenantID, snap.TotalClaims, snap.TotalPaidAmount, snap.NotValidated, snap.GeneratedAt)
	return err
}

func (r *repoPG) DeleteByTenant(ctx context.Context, tenantID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM claim_analytics WHERE tenant_id = $1`, tenantID)
	return err
}

func (r *repoPG) LatestSnapshot(ctx context.Context, tenantID string) (*Snapshot, error) {
	var snap Snapshot
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id, total_claims, total_paid_amount, not_validated, generated_at
		FROM claim_analytics WHERE tenant_id = $1`, tenantID).
		Scan(&snap.TenantID, &snap.TotalClaims, &snap.TotalPaidAmount, &snap.NotValidated, &snap.GeneratedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
