package analytics

import "context"

// Repository reads claim aggregates and persists report snapshots.
type Repository interface {
	StatusCounts(ctx context.Context, tenantID string) ([]StatusCount, error)
	ErrorBuckets(ctx context.Context, tenantID string) ([]ErrorBucket, error)
	Totals(ctx context.Context, tenantID string) (count int64, paidAmount float64, err error)
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	LatestSnapshot(ctx context.Context, tenantID string) (*Snapshot, error)
	DeleteByTenant(ctx context.Context, tenantID string) error
}
