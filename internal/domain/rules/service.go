package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidSource marks an upload rejected by validation rather than by
// storage, so the handler can answer 422 instead of 500.
var ErrInvalidSource = errors.New("invalid rule source")

type Service struct {
	repo SourceRepository
	log  zerolog.Logger
}

func NewService(repo SourceRepository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Upload stores a tenant's rule documents. Both documents must parse into
// at least one directive; garbage is rejected here rather than surfacing as
// a failed validation run later.
func (s *Service) Upload(ctx context.Context, src *Source) error {
	if src.TenantID == "" {
		return fmt.Errorf("%w: tenant_id is required", ErrInvalidSource)
	}
	if _, err := Build(src); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSource, err)
	}
	src.UploadedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, src); err != nil {
		return fmt.Errorf("store rule source: %w", err)
	}
	s.log.Info().Str("tenant_id", src.TenantID).Msg("rule source uploaded")
	return nil
}

func (s *Service) Get(ctx context.Context, tenantID string) (*Source, error) {
	return s.repo.Get(ctx, tenantID)
}
