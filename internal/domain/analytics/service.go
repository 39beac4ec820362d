package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcm/rcm/internal/domain/claims"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Report builds the analytics payload for a tenant and persists a snapshot
// of the headline numbers. A tenant with no claims gets a zeroed report
// with empty (non-nil) summaries.
func (s *Service) Report(ctx context.Context, tenantID string) (*Report, error) {
	total, paid, err := s.repo.Totals(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("claim totals: %w", err)
	}

	report := &Report{
		TenantID:        tenantID,
		TotalClaims:     total,
		TotalPaidAmount: paid,
		StatusSummary:   []StatusCount{},
		ErrorSummary:    []ErrorBucket{},
		ClaimsByError:   []ChartPoint{},
		AmountByError:   []ChartPoint{},
		GeneratedAt:     time.Now().UTC(),
	}
	if total == 0 {
		return report, nil
	}

	statuses, err := s.repo.StatusCounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	report.StatusSummary = statuses

	buckets, err := s.repo.ErrorBuckets(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error buckets: %w", err)
	}

	var bucketTotal int64
	for _, b := range buckets {
		bucketTotal += b.Count
	}
	for i := range buckets {
		if bucketTotal > 0 {
			buckets[i].Percentage = round2(float64(buckets[i].Count) / float64(bucketTotal) * 100)
		}
		report.ClaimsByError = append(report.ClaimsByError, ChartPoint{
			Label: buckets[i].ErrorType,
			Value: float64(buckets[i].Count),
		})
		report.AmountByError = append(report.AmountByError, ChartPoint{
			Label: buckets[i].ErrorType,
			Value: buckets[i].PaidAmount,
		})
	}
	report.ErrorSummary = buckets

	var notValidated int64
	for _, sc := range statuses {
		if sc.Status == string(claims.StatusNotValidated) {
			notValidated = sc.Count
		}
	}
	snap := &Snapshot{
		TenantID:        tenantID,
		TotalClaims:     total,
		TotalPaidAmount: paid,
		NotValidated:    notValidated,
		GeneratedAt:     report.GeneratedAt,
	}
	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		// Snapshot persistence is best effort; the report is already built.
		s.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("save analytics snapshot failed")
	}

	return report, nil
}

// Snapshot returns the most recent persisted aggregate for a tenant, or nil
// when no report has been generated yet.
func (s *Service) Snapshot(ctx context.Context, tenantID string) (*Snapshot, error) {
	return s.repo.LatestSnapshot(ctx, tenantID)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
