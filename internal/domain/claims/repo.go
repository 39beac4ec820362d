package claims

import (
	"context"
)

// Repository is the storage boundary for claim documents. The validation
// orchestrator only depends on FetchPending and BulkUpdateOutcomes; the
// remaining operations serve ingestion and the results API.
type Repository interface {
	InsertMany(ctx context.Context, docs []*Document) (int, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*Document, int, error)
	FetchPending(ctx context.Context, tenantID string) ([]*Document, error)
	BulkUpdateOutcomes(ctx context.Context, updates []*OutcomeUpdate) (int64, error)
	DeleteByTenant(ctx context.Context, tenantID string) (int64, error)
}
