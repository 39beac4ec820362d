package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rcm/rcm/internal/domain/claims"
	"github.com/rcm/rcm/internal/domain/rules"
	"github.com/rcm/rcm/internal/platform/augment"
)

type mockClaimsRepo struct {
	pending  []*claims.Document
	fetchErr error
	updates  []*claims.OutcomeUpdate
}

func (m *mockClaimsRepo) InsertMany(ctx context.Context, docs []*claims.Document) (int, error) {
	return len(docs), nil
}

func (m *mockClaimsRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*claims.Document, int, error) {
	return m.pending, len(m.pending), nil
}

func (m *mockClaimsRepo) FetchPending(ctx context.Context, tenantID string) ([]*claims.Document, error) {
	return m.pending, m.fetchErr
}

func (m *mockClaimsRepo) BulkUpdateOutcomes(ctx context.Context, updates []*claims.OutcomeUpdate) (int64, error) {
	m.updates = updates
	return int64(len(updates)), nil
}

func (m *mockClaimsRepo) DeleteByTenant(ctx context.Context, tenantID string) (int64, error) {
	return 0, nil
}

type mockRulesRepo struct {
	src *rules.Source
	err error
}

func (m *mockRulesRepo) Upsert(ctx context.Context, src *rules.Source) error { return nil }

func (m *mockRulesRepo) Get(ctx context.Context, tenantID string) (*rules.Source, error) {
	return m.src, m.err
}

type stubAugmenter struct {
	opinion augment.Opinion
	calls   int
}

func (s *stubAugmenter) Evaluate(ctx context.Context, rulesContext, claimContext string) augment.Opinion {
	s.calls++
	return s.opinion
}

const testTechnicalRules = `APPROVAL_SERVICES: SRV1001
PAID_AMOUNT_THRESHOLD: 250`

const testMedicalRules = `INPATIENT_ONLY: SRV1001
FACILITY FACWXYZ: GENERAL_HOSPITAL
MUTUALLY_EXCLUSIVE: R73.03 | E11.9`

func testRuleSource() *rules.Source {
	return &rules.Source{
		TenantID:       "tenant-a",
		TechnicalRules: testTechnicalRules,
		MedicalRules:   testMedicalRules,
	}
}

func cleanDocument() *claims.Document {
	return &claims.Document{
		TenantID:       "tenant-a",
		ClaimID:        "CLM-001",
		UniqueID:       "ABCD-1234-WXYZ",
		EncounterType:  "OUTPATIENT",
		ServiceDate:    "2025-03-14",
		NationalID:     "ABCD123456",
		MemberID:       "XX1234YY",
		FacilityID:     "FACWXYZ",
		DiagnosisCodes: "J45.909",
		ServiceCode:    "SRV2001",
		PaidAmount:     100,
		ApprovalNumber: "",
		Status:         string(claims.StatusPending),
	}
}

func TestRun_NoRuleConfig(t *testing.T) {
	svc := NewService(&mockClaimsRepo{}, &mockRulesRepo{}, nil, 0, zerolog.Nop())

	_, err := svc.Run(context.Background(), "tenant-a")
	if !errors.Is(err, ErrNoRuleConfig) {
		t.Errorf("expected ErrNoRuleConfig, got %v", err)
	}
}

func TestRun_InvalidRuleConfig(t *testing.T) {
	src := testRuleSource()
	src.TechnicalRules = "this is not a rule document"
	svc := NewService(&mockClaimsRepo{}, &mockRulesRepo{src: src}, nil, 0, zerolog.Nop())

	_, err := svc.Run(context.Background(), "tenant-a")
	if !errors.Is(err, ErrInvalidRuleConfig) {
		t.Errorf("expected ErrInvalidRuleConfig, got %v", err)
	}
}

func TestRun_NoPendingClaims(t *testing.T) {
	svc := NewService(&mockClaimsRepo{}, &mockRulesRepo{src: testRuleSource()}, nil, 0, zerolog.Nop())

	summary, err := svc.Run(context.Background(), "tenant-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalClaims != 0 || summary.Message != "no pending claims to validate" {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestRun_ClassifiesAndPersists(t *testing.T) {
	clean := cleanDocument()

	both := cleanDocument()
	both.UniqueID = "EFGH-5678-WXYZ"
	both.NationalID = "EFGH999999"
	both.MemberID = "AB5678CD"
	both.ServiceCode = "SRV1001"
	both.PaidAmount = 300

	malformed := cleanDocument()
	malformed.UniqueID = "IJKL-9012-WXYZ"
	malformed.DiagnosisCodes = ""

	repo := &mockClaimsRepo{pending: []*claims.Document{clean, both, malformed}}
	svc := NewService(repo, &mockRulesRepo{src: testRuleSource()}, nil, 2, zerolog.Nop())

	summary, err := svc.Run(context.Background(), "tenant-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalClaims != 3 {
		t.Errorf("expected 3 claims, got %d", summary.TotalClaims)
	}
	if summary.Validated != 1 || summary.NotValidated != 2 {
		t.Errorf("expected 1 validated / 2 not validated, got %d / %d", summary.Validated, summary.NotValidated)
	}
	if summary.BothErrors != 1 {
		t.Errorf("expected 1 both-errors claim, got %d", summary.BothErrors)
	}
	if summary.TechnicalErrors != 1 {
		t.Errorf("expected the malformed claim counted as technical, got %d", summary.TechnicalErrors)
	}
	if summary.SuccessRate != 33.33 || summary.ErrorRate != 66.67 {
		t.Errorf("unexpected rates: %v / %v", summary.SuccessRate, summary.ErrorRate)
	}

	if len(repo.updates) != 3 {
		t.Fatalf("expected 3 persisted outcomes, got %d", len(repo.updates))
	}
	byID := make(map[string]*claims.OutcomeUpdate)
	for _, u := range repo.updates {
		if u.TenantID != "tenant-a" {
			t.Errorf("outcome for %s has tenant %q", u.UniqueID, u.TenantID)
		}
		if u.ValidatedAt.IsZero() {
			t.Errorf("outcome for %s has no validated_at", u.UniqueID)
		}
		byID[u.UniqueID] = u
	}
	if u := byID["ABCD-1234-WXYZ"]; u == nil || u.Status != claims.StatusValidated {
		t.Errorf("expected clean claim validated, got %+v", u)
	}
	if u := byID["EFGH-5678-WXYZ"]; u == nil || u.ErrorType != claims.BothErrors {
		t.Errorf("expected both-errors outcome, got %+v", u)
	}
	if u := byID["IJKL-9012-WXYZ"]; u == nil || u.ErrorType != claims.TechnicalError {
		t.Errorf("expected malformed claim as technical error, got %+v", u)
	}
}

func TestRun_AugmenterOpinionFoldsIn(t *testing.T) {
	repo := &mockClaimsRepo{pending: []*claims.Document{cleanDocument()}}
	aug := &stubAugmenter{opinion: augment.Opinion{
		HasAdditionalErrors: true,
		AdditionalErrors:    []string{"Diagnosis combination is clinically implausible"},
		ConfidenceScore:     0.7,
	}}
	svc := NewService(repo, &mockRulesRepo{src: testRuleSource()}, aug, 0, zerolog.Nop())

	summary, err := svc.Run(context.Background(), "tenant-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if aug.calls != 1 {
		t.Errorf("expected augmenter called once, got %d", aug.calls)
	}
	if summary.Validated != 0 || summary.MedicalErrors != 1 {
		t.Errorf("expected augmentation finding to reclassify, got %+v", summary)
	}
}

func TestRun_FetchErrorAborts(t *testing.T) {
	repo := &mockClaimsRepo{fetchErr: errors.New("connection reset")}
	svc := NewService(repo, &mockRulesRepo{src: testRuleSource()}, nil, 0, zerolog.Nop())

	if _, err := svc.Run(context.Background(), "tenant-a"); err == nil {
		t.Error("expected fetch error to abort the run")
	}
}
