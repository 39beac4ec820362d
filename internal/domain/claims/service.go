package claims

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// csvColumns are the required headers of an uploaded claims file, in the
// order the ingestion boundary delivers them.
var csvColumns = []string{
	"claim_id", "encounter_type", "service_date", "national_id",
	"member_id", "facility_id", "unique_id", "diagnosis_codes",
	"service_code", "paid_amount_aed", "approval_number",
}

// AnalyticsPurger clears a tenant's persisted analytics when its claims are
// purged, so stale snapshots never outlive the data they summarize.
type AnalyticsPurger interface {
	DeleteByTenant(ctx context.Context, tenantID string) error
}

type Service struct {
	repo      Repository
	analytics AnalyticsPurger
	log       zerolog.Logger
}

func NewService(repo Repository, analytics AnalyticsPurger, log zerolog.Logger) *Service {
	return &Service{repo: repo, analytics: analytics, log: log}
}

// UploadCSV parses a claims CSV and stores every row as a pending claim.
// Returns the number of claims stored.
func (s *Service) UploadCSV(ctx context.Context, tenantID string, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	var missing []string
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var docs []*Document
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return 0, fmt.Errorf("read csv line %d: %w", line, err)
		}

		field := func(name string) string {
			return strings.TrimSpace(record[index[name]])
		}

		paid, err := strconv.ParseFloat(field("paid_amount_aed"), 64)
		if err != nil {
			return 0, fmt.Errorf("line %d: invalid paid_amount_aed %q", line, field("paid_amount_aed"))
		}

		docs = append(docs, &Document{
			TenantID:          tenantID,
			ClaimID:           field("claim_id"),
			UniqueID:          field("unique_id"),
			EncounterType:     field("encounter_type"),
			ServiceDate:       field("service_date"),
			NationalID:        field("national_id"),
			MemberID:          field("member_id"),
			FacilityID:        field("facility_id"),
			DiagnosisCodes:    field("diagnosis_codes"),
			ServiceCode:       field("service_code"),
			PaidAmount:        paid,
			ApprovalNumber:    field("approval_number"),
			Status:            string(StatusPending),
			ErrorType:         string(NoError),
			ErrorExplanation:  []string{},
			RecommendedAction: "",
		})
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("file contains no claim rows")
	}

	inserted, err := s.repo.InsertMany(ctx, docs)
	if err != nil {
		return inserted, err
	}
	s.log.Info().Str("tenant_id", tenantID).Int("claims", inserted).Msg("claims uploaded")
	return inserted, nil
}

func (s *Service) List(ctx context.Context, tenantID string, limit, offset int) ([]*Document, int, error) {
	return s.repo.ListByTenant(ctx, tenantID, limit, offset)
}

// PurgeTenant removes every claim of a tenant along with its analytics
// snapshot. Used by data-reset tooling.
func (s *Service) PurgeTenant(ctx context.Context, tenantID string) (int64, error) {
	deleted, err := s.repo.DeleteByTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	if s.analytics != nil {
		if err := s.analytics.DeleteByTenant(ctx, tenantID); err != nil {
			return deleted, fmt.Errorf("purge tenant analytics: %w", err)
		}
	}
	s.log.Info().Str("tenant_id", tenantID).Int64("deleted", deleted).Msg("tenant data purged")
	return deleted, nil
}
