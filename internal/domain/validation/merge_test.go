package validation

import (
	"strings"
	"testing"

	"github.com/rcm/rcm/internal/domain/claims"
	"github.com/rcm/rcm/internal/platform/augment"
)

func TestMergeOpinion_NeutralLeavesResultUntouched(t *testing.T) {
	base := newResult("ABCD-1234-WXYZ", []string{"tech finding about approval"}, nil)

	merged := MergeOpinion(base, augment.Neutral())

	if merged.Status != base.Status || merged.ErrorType != base.ErrorType {
		t.Errorf("neutral opinion changed classification: %v / %v", merged.Status, merged.ErrorType)
	}
	if len(merged.ErrorExplanation) != len(base.ErrorExplanation) {
		t.Errorf("neutral opinion changed explanation: %v", merged.ErrorExplanation)
	}
	if merged.RecommendedAction != base.RecommendedAction {
		t.Errorf("neutral opinion changed action: %q", merged.RecommendedAction)
	}
}

func TestMergeOpinion_CleanClaimStaysValidated(t *testing.T) {
	// An enhanced explanation with no additional errors must not flip a
	// clean claim: validated claims keep an empty explanation.
	base := newResult("ABCD-1234-WXYZ", nil, nil)

	merged := MergeOpinion(base, augment.Opinion{
		EnhancedExplanation: "This claim looks fine overall.",
		ConfidenceScore:     0.9,
	})

	if merged.Status != claims.StatusValidated || merged.ErrorType != claims.NoError {
		t.Errorf("expected claim to stay validated, got %v / %v", merged.Status, merged.ErrorType)
	}
	if len(merged.ErrorExplanation) != 0 {
		t.Errorf("expected empty explanation, got %v", merged.ErrorExplanation)
	}
}

func TestMergeOpinion_AdditionalErrorsReclassify(t *testing.T) {
	base := newResult("ABCD-1234-WXYZ", nil, nil)

	merged := MergeOpinion(base, augment.Opinion{
		HasAdditionalErrors: true,
		AdditionalErrors:    []string{"Diagnosis combination is clinically implausible"},
		ConfidenceScore:     0.8,
	})

	if merged.Status != claims.StatusNotValidated {
		t.Errorf("expected reclassification to not validated, got %v", merged.Status)
	}
	if merged.ErrorType != claims.MedicalError {
		t.Errorf("expected medical classification, got %v", merged.ErrorType)
	}
	if len(merged.ErrorExplanation) != 1 || merged.ErrorExplanation[0] != "Diagnosis combination is clinically implausible" {
		t.Errorf("unexpected explanation: %v", merged.ErrorExplanation)
	}
}

func TestMergeOpinion_KeywordRouting(t *testing.T) {
	tests := []struct {
		finding  string
		wantType claims.ErrorCategory
	}{
		{"Missing approval documentation for this service", claims.TechnicalError},
		{"Paid amount seems inconsistent with the service", claims.TechnicalError},
		{"Member id format looks wrong", claims.TechnicalError},
		{"Diagnosis combination is clinically implausible", claims.MedicalError},
	}
	for _, tt := range tests {
		t.Run(tt.finding, func(t *testing.T) {
			base := newResult("ABCD-1234-WXYZ", nil, nil)
			merged := MergeOpinion(base, augment.Opinion{
				HasAdditionalErrors: true,
				AdditionalErrors:    []string{tt.finding},
				ConfidenceScore:     0.7,
			})
			if merged.ErrorType != tt.wantType {
				t.Errorf("finding %q classified as %v, want %v", tt.finding, merged.ErrorType, tt.wantType)
			}
		})
	}
}

func TestMergeOpinion_EnhancedExplanationAppendedToFindings(t *testing.T) {
	base := newResult("ABCD-1234-WXYZ", []string{"tech finding about approval"}, nil)

	merged := MergeOpinion(base, augment.Opinion{
		EnhancedExplanation: "the approval gap is the core issue",
		ConfidenceScore:     0.85,
	})

	last := merged.ErrorExplanation[len(merged.ErrorExplanation)-1]
	if last != "Additional insight: the approval gap is the core issue" {
		t.Errorf("expected insight appended, got %q", last)
	}
	if merged.ErrorType != claims.TechnicalError {
		t.Errorf("insight must not affect classification, got %v", merged.ErrorType)
	}
}

func TestMergeOpinion_ActionDerivedFromAugmentationOnlyFindings(t *testing.T) {
	base := newResult("ABCD-1234-WXYZ", nil, nil)

	merged := MergeOpinion(base, augment.Opinion{
		HasAdditionalErrors: true,
		AdditionalErrors:    []string{"Missing prior approval evidence"},
		RecommendedAction:   "Attach approval documentation",
		ConfidenceScore:     0.8,
	})

	if !strings.HasPrefix(merged.RecommendedAction, "Obtain prior approval before processing") {
		t.Errorf("expected derived action, got %q", merged.RecommendedAction)
	}
	if !strings.HasSuffix(merged.RecommendedAction, "; Attach approval documentation") {
		t.Errorf("expected augmentation action appended, got %q", merged.RecommendedAction)
	}
}

func TestMergeOpinion_BlankAdditionsIgnored(t *testing.T) {
	base := newResult("ABCD-1234-WXYZ", nil, nil)

	merged := MergeOpinion(base, augment.Opinion{
		HasAdditionalErrors: true,
		AdditionalErrors:    []string{"", "   "},
		ConfidenceScore:     0.5,
	})

	if merged.Status != claims.StatusValidated {
		t.Errorf("blank additions must not reclassify, got %v", merged.Status)
	}
}

func TestMergeOpinion_ConsistencyInvariant(t *testing.T) {
	// After any merge: no-error classification, empty explanation, and
	// validated status always coincide.
	opinions := []augment.Opinion{
		augment.Neutral(),
		{EnhancedExplanation: "all good", ConfidenceScore: 1},
		{HasAdditionalErrors: true, AdditionalErrors: []string{"odd billing amount"}, ConfidenceScore: 0.6},
	}
	bases := []*Result{
		newResult("A", nil, nil),
		newResult("B", []string{"approval missing"}, nil),
		newResult("C", nil, []string{"facility mismatch"}),
	}

	for _, base := range bases {
		for _, op := range opinions {
			merged := MergeOpinion(base, op)
			noError := merged.ErrorType == claims.NoError
			emptyExplanation := len(merged.ErrorExplanation) == 0
			validated := merged.Status == claims.StatusValidated
			if noError != emptyExplanation || emptyExplanation != validated {
				t.Errorf("inconsistent result for %s: type=%v explanation=%v status=%v",
					merged.UniqueID, merged.ErrorType, merged.ErrorExplanation, merged.Status)
			}
		}
	}
}
