package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcm/rcm/internal/domain/claims"
	"github.com/rcm/rcm/internal/domain/rules"
	"github.com/rcm/rcm/internal/platform/augment"
)

// ErrNoRuleConfig is returned when a tenant has no uploaded rule source.
// Handlers map it to 404.
var ErrNoRuleConfig = errors.New("no rule configuration for tenant")

// ErrInvalidRuleConfig is returned when the stored rule text cannot be
// parsed into a usable configuration. Handlers map it to 422.
var ErrInvalidRuleConfig = errors.New("invalid rule configuration")

const defaultBatchSize = 10

// Service orchestrates a validation run: it loads the tenant's rule
// configuration, evaluates every pending claim, folds in the augmentation
// opinion, and persists all outcomes in one bulk write.
type Service struct {
	claims    claims.Repository
	rules     rules.SourceRepository
	augmenter augment.Augmenter
	batchSize int
	log       zerolog.Logger
}

func NewService(claimsRepo claims.Repository, rulesRepo rules.SourceRepository, augmenter augment.Augmenter, batchSize int, log zerolog.Logger) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if augmenter == nil {
		augmenter = augment.Disabled{}
	}
	return &Service{
		claims:    claimsRepo,
		rules:     rulesRepo,
		augmenter: augmenter,
		batchSize: batchSize,
		log:       log,
	}
}

// RunSummary aggregates the outcome of one validation run.
type RunSummary struct {
	TenantID          string    `json:"tenant_id"`
	TotalClaims       int       `json:"total_claims"`
	Validated         int       `json:"validated"`
	NotValidated      int       `json:"not_validated"`
	TechnicalErrors   int       `json:"technical_errors"`
	MedicalErrors     int       `json:"medical_errors"`
	BothErrors        int       `json:"both_errors"`
	SuccessRate       float64   `json:"success_rate"`
	ErrorRate         float64   `json:"error_rate"`
	ProcessingSeconds float64   `json:"processing_seconds"`
	CompletedAt       time.Time `json:"completed_at"`
	Message           string    `json:"message,omitempty"`
	Results           []*Result `json:"results,omitempty"`
}

// Run validates every pending claim of a tenant. A malformed claim becomes
// a technical-error outcome rather than aborting the run; rule configuration
// and persistence failures abort it.
func (s *Service) Run(ctx context.Context, tenantID string) (*RunSummary, error) {
	started := time.Now()

	src, err := s.rules.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load rule source: %w", err)
	}
	if src == nil {
		return nil, ErrNoRuleConfig
	}
	cfg, err := rules.Build(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleConfig, err)
	}

	docs, err := s.claims.FetchPending(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("fetch pending claims: %w", err)
	}
	if len(docs) == 0 {
		return &RunSummary{
			TenantID:    tenantID,
			CompletedAt: time.Now().UTC(),
			Message:     "no pending claims to validate",
		}, nil
	}

	s.log.Info().
		Str("tenant_id", tenantID).
		Int("pending", len(docs)).
		Int("batch_size", s.batchSize).
		Msg("validation run started")

	rulesContext := BuildRulesContext(cfg)

	results := make([]*Result, 0, len(docs))
	for start := 0; start < len(docs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		for _, doc := range docs[start:end] {
			results = append(results, s.validateOne(ctx, doc, cfg, rulesContext))
		}
		s.log.Debug().
			Str("tenant_id", tenantID).
			Int("processed", end).
			Int("total", len(docs)).
			Msg("batch complete")
	}

	now := time.Now().UTC()
	updates := make([]*claims.OutcomeUpdate, 0, len(results))
	for _, r := range results {
		updates = append(updates, &claims.OutcomeUpdate{
			UniqueID:          r.UniqueID,
			TenantID:          tenantID,
			Status:            r.Status,
			ErrorType:         r.ErrorType,
			ErrorExplanation:  r.ErrorExplanation,
			RecommendedAction: r.RecommendedAction,
			ValidatedAt:       now,
		})
	}
	if _, err := s.claims.BulkUpdateOutcomes(ctx, updates); err != nil {
		return nil, fmt.Errorf("persist validation outcomes: %w", err)
	}

	summary := summarize(tenantID, results)
	summary.ProcessingSeconds = time.Since(started).Seconds()
	summary.CompletedAt = now

	s.log.Info().
		Str("tenant_id", tenantID).
		Int("total", summary.TotalClaims).
		Int("validated", summary.Validated).
		Int("not_validated", summary.NotValidated).
		Float64("seconds", summary.ProcessingSeconds).
		Msg("validation run finished")

	return summary, nil
}

// validateOne runs the full pipeline for a single claim document.
func (s *Service) validateOne(ctx context.Context, doc *claims.Document, cfg *rules.Config, rulesContext string) *Result {
	claim, err := claims.Normalize(doc)
	if err != nil {
		s.log.Warn().
			Str("tenant_id", doc.TenantID).
			Str("unique_id", doc.UniqueID).
			Err(err).
			Msg("claim failed normalization")
		return failedResult(doc.UniqueID, err)
	}

	technical := EvaluateTechnical(claim, &cfg.Technical)
	medical := EvaluateMedical(claim, &cfg.Medical)
	result := newResult(claim.UniqueID, technical, medical)

	opinion := s.augmenter.Evaluate(ctx, rulesContext, BuildClaimContext(claim))
	return MergeOpinion(result, opinion)
}

func summarize(tenantID string, results []*Result) *RunSummary {
	summary := &RunSummary{
		TenantID:    tenantID,
		TotalClaims: len(results),
		Results:     results,
	}
	for _, r := range results {
		switch r.Status {
		case claims.StatusValidated:
			summary.Validated++
		default:
			summary.NotValidated++
		}
		switch r.ErrorType {
		case claims.TechnicalError:
			summary.TechnicalErrors++
		case claims.MedicalError:
			summary.MedicalErrors++
		case claims.BothErrors:
			summary.BothErrors++
		}
	}
	if summary.TotalClaims > 0 {
		summary.SuccessRate = round2(float64(summary.Validated) / float64(summary.TotalClaims) * 100)
		summary.ErrorRate = round2(float64(summary.NotValidated) / float64(summary.TotalClaims) * 100)
	}
	return summary
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
