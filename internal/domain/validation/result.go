package validation

import (
	"github.com/rcm/rcm/internal/domain/claims"
)

// Result is the outcome of evaluating one claim. ErrorExplanation preserves
// finding order: deterministic technical findings first, then deterministic
// medical findings, then any augmentation additions. TechnicalErrors and
// MedicalErrors are the post-merge lists classification is derived from.
type Result struct {
	UniqueID          string                `json:"unique_id"`
	Status            claims.Status         `json:"status"`
	ErrorType         claims.ErrorCategory  `json:"error_type"`
	ErrorExplanation  []string              `json:"error_explanation"`
	RecommendedAction string                `json:"recommended_action"`
	TechnicalErrors   []string              `json:"technical_errors"`
	MedicalErrors     []string              `json:"medical_errors"`
}

// Classify derives the claim status and error category from the final
// technical and medical finding lists. It must be called on the post-merge
// lists so the classification can never disagree with the explanation.
func Classify(technical, medical []string) (claims.Status, claims.ErrorCategory) {
	switch {
	case len(technical) == 0 && len(medical) == 0:
		return claims.StatusValidated, claims.NoError
	case len(technical) > 0 && len(medical) > 0:
		return claims.StatusNotValidated, claims.BothErrors
	case len(technical) > 0:
		return claims.StatusNotValidated, claims.TechnicalError
	default:
		return claims.StatusNotValidated, claims.MedicalError
	}
}

// newResult builds a classified Result from deterministic finding lists.
func newResult(uniqueID string, technical, medical []string) *Result {
	status, errorType := Classify(technical, medical)
	explanation := make([]string, 0, len(technical)+len(medical))
	explanation = append(explanation, technical...)
	explanation = append(explanation, medical...)

	action := "No action required"
	if len(explanation) > 0 {
		action = RecommendAction(technical, medical)
	}

	return &Result{
		UniqueID:          uniqueID,
		Status:            status,
		ErrorType:         errorType,
		ErrorExplanation:  explanation,
		RecommendedAction: action,
		TechnicalErrors:   technical,
		MedicalErrors:     medical,
	}
}

// failedResult wraps a per-claim processing failure as a technical-error
// outcome so a malformed claim never aborts the batch it rides in.
func failedResult(uniqueID string, reason error) *Result {
	finding := "Processing error: " + reason.Error()
	return &Result{
		UniqueID:          uniqueID,
		Status:            claims.StatusNotValidated,
		ErrorType:         claims.TechnicalError,
		ErrorExplanation:  []string{finding},
		RecommendedAction: "Review claim data format",
		TechnicalErrors:   []string{finding},
	}
}
