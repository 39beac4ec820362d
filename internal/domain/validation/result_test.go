package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/rcm/rcm/internal/domain/claims"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		technical  []string
		medical    []string
		wantStatus claims.Status
		wantType   claims.ErrorCategory
	}{
		{"clean", nil, nil, claims.StatusValidated, claims.NoError},
		{"technical only", []string{"t"}, nil, claims.StatusNotValidated, claims.TechnicalError},
		{"medical only", nil, []string{"m"}, claims.StatusNotValidated, claims.MedicalError},
		{"both", []string{"t"}, []string{"m"}, claims.StatusNotValidated, claims.BothErrors},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, errType := Classify(tt.technical, tt.medical)
			if status != tt.wantStatus || errType != tt.wantType {
				t.Errorf("Classify() = (%v, %v), want (%v, %v)", status, errType, tt.wantStatus, tt.wantType)
			}
		})
	}
}

func TestNewResult_CleanClaim(t *testing.T) {
	r := newResult("ABCD-1234-WXYZ", nil, nil)

	if r.Status != claims.StatusValidated || r.ErrorType != claims.NoError {
		t.Errorf("expected validated outcome, got %v / %v", r.Status, r.ErrorType)
	}
	if len(r.ErrorExplanation) != 0 {
		t.Errorf("expected empty explanation, got %v", r.ErrorExplanation)
	}
	if r.RecommendedAction != "No action required" {
		t.Errorf("unexpected action: %q", r.RecommendedAction)
	}
}

func TestNewResult_ExplanationOrdering(t *testing.T) {
	r := newResult("ABCD-1234-WXYZ",
		[]string{"tech one", "tech two"},
		[]string{"med one"},
	)

	want := []string{"tech one", "tech two", "med one"}
	if len(r.ErrorExplanation) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), r.ErrorExplanation)
	}
	for i, f := range want {
		if r.ErrorExplanation[i] != f {
			t.Errorf("entry %d = %q, want %q", i, r.ErrorExplanation[i], f)
		}
	}
	if r.ErrorType != claims.BothErrors {
		t.Errorf("expected both-errors classification, got %v", r.ErrorType)
	}
}

func TestFailedResult(t *testing.T) {
	r := failedResult("BAD1-0000-0000", errors.New("claim BAD1-0000-0000 has no diagnosis codes"))

	if r.Status != claims.StatusNotValidated || r.ErrorType != claims.TechnicalError {
		t.Errorf("expected technical-error outcome, got %v / %v", r.Status, r.ErrorType)
	}
	if len(r.ErrorExplanation) != 1 || !strings.HasPrefix(r.ErrorExplanation[0], "Processing error: ") {
		t.Errorf("expected a processing-error finding, got %v", r.ErrorExplanation)
	}
	if r.RecommendedAction != "Review claim data format" {
		t.Errorf("unexpected action: %q", r.RecommendedAction)
	}
}

func TestRecommendAction_KeywordMapping(t *testing.T) {
	tests := []struct {
		name      string
		technical []string
		medical   []string
		want      string
	}{
		{
			"prior approval",
			[]string{"Service SRV1001 requires prior approval but no approval number provided"},
			nil,
			"Obtain prior approval before processing",
		},
		{
			"identifier format",
			[]string{`unique_id "abcd" does not match required format`},
			nil,
			"Correct ID formatting to uppercase alphanumeric",
		},
		{
			"threshold",
			[]string{"Paid amount AED 300.00 exceeds threshold of AED 250.00, prior approval required"},
			nil,
			// "prior approval" matches first within a single finding.
			"Obtain prior approval before processing",
		},
		{
			"encounter",
			nil,
			[]string{"Service SRV1001 can only be performed for INPATIENT encounters"},
			"Verify encounter type matches service requirements",
		},
		{
			"facility",
			nil,
			[]string{"Facility UNKNOWN1 is not registered"},
			"Transfer to appropriate facility or update facility code",
		},
		{
			"diagnosis requires",
			nil,
			[]string{"Diagnosis E11.9 requires one of these services: SRV2007, but got SRV3000"},
			"Update service code to match diagnosis requirements",
		},
		{
			"mutually exclusive",
			nil,
			[]string{"Mutually exclusive diagnoses found: R73.03 and E11.9 cannot coexist"},
			"Review and correct diagnosis codes",
		},
		{
			"fallback",
			[]string{"something unrecognized"},
			nil,
			"Review claim details and correct identified issues",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecommendAction(tt.technical, tt.medical); got != tt.want {
				t.Errorf("RecommendAction() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecommendAction_DeduplicatesPreservingOrder(t *testing.T) {
	technical := []string{
		"Service SRV1001 requires prior approval but no approval number provided",
		"Diagnosis E11.9 requires prior approval but no approval number provided",
	}
	medical := []string{"Facility UNKNOWN1 is not registered"}

	got := RecommendAction(technical, medical)
	want := "Obtain prior approval before processing; Transfer to appropriate facility or update facility code"
	if got != want {
		t.Errorf("RecommendAction() = %q, want %q", got, want)
	}
}
