package validation

import (
	"strings"

	"github.com/rcm/rcm/internal/platform/augment"
)

// technicalKeywords route an augmentation finding into the technical list.
// Anything that matches none of them is treated as a medical finding. The
// heuristic is approximate; see the merge policy notes in DESIGN.md.
var technicalKeywords = []string{"approval", "threshold", "format", "id", "amount"}

func isTechnicalFinding(finding string) bool {
	lower := strings.ToLower(finding)
	for _, kw := range technicalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MergeOpinion folds an augmentation opinion into a deterministic result
// and returns the final classified Result. Additional errors join the
// technical or medical list by keyword routing and participate in
// classification; the enhanced explanation is informational only and is
// appended solely when the claim already carries findings, so a clean claim
// stays Validated with an empty explanation.
func MergeOpinion(base *Result, op augment.Opinion) *Result {
	technical := base.TechnicalErrors
	medical := base.MedicalErrors

	var additions []string
	if op.HasAdditionalErrors {
		for _, finding := range op.AdditionalErrors {
			if strings.TrimSpace(finding) == "" {
				continue
			}
			additions = append(additions, finding)
			if isTechnicalFinding(finding) {
				technical = append(technical, finding)
			} else {
				medical = append(medical, finding)
			}
		}
	}

	status, errorType := Classify(technical, medical)

	explanation := make([]string, 0, len(base.ErrorExplanation)+len(additions)+1)
	explanation = append(explanation, base.ErrorExplanation...)
	explanation = append(explanation, additions...)
	if op.EnhancedExplanation != "" && len(explanation) > 0 {
		explanation = append(explanation, "Additional insight: "+op.EnhancedExplanation)
	}

	action := base.RecommendedAction
	if len(technical)+len(medical) > 0 && (len(base.TechnicalErrors)+len(base.MedicalErrors) == 0) {
		// Findings came only from augmentation; derive the action from them.
		action = RecommendAction(technical, medical)
	}
	if op.RecommendedAction != "" {
		action = action + "; " + op.RecommendedAction
	}

	return &Result{
		UniqueID:          base.UniqueID,
		Status:            status,
		ErrorType:         errorType,
		ErrorExplanation:  explanation,
		RecommendedAction: action,
		TechnicalErrors:   technical,
		MedicalErrors:     medical,
	}
}
