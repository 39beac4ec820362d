package augment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Opinion is the structured second opinion an augmentation provider returns
// for one claim. A zero-value Opinion is neutral: no additional errors, no
// explanation, no action.
type Opinion struct {
	HasAdditionalErrors bool     `json:"has_additional_errors"`
	AdditionalErrors    []string `json:"additional_errors"`
	EnhancedExplanation string   `json:"enhanced_explanation"`
	RecommendedAction   string   `json:"recommended_action"`
	ConfidenceScore     float64  `json:"confidence_score"`
}

// Neutral is the opinion used whenever augmentation is disabled or fails.
// It leaves the deterministic result untouched.
func Neutral() Opinion {
	return Opinion{AdditionalErrors: []string{}}
}

// opinionWire mirrors Opinion with pointer fields so a response missing a
// required key is distinguishable from one carrying a zero value.
type opinionWire struct {
	HasAdditionalErrors *bool     `json:"has_additional_errors"`
	AdditionalErrors    *[]string `json:"additional_errors"`
	EnhancedExplanation *string   `json:"enhanced_explanation"`
	RecommendedAction   *string   `json:"recommended_action"`
	ConfidenceScore     *float64  `json:"confidence_score"`
}

// ParseOpinion extracts and validates an Opinion from raw model output. The
// output may be bare JSON, a fenced ```json block, or JSON embedded in prose;
// each form is tried in that order.
func ParseOpinion(raw string) (Opinion, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return Opinion{}, err
	}

	var wire opinionWire
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return Opinion{}, fmt.Errorf("decode opinion: %w", err)
	}

	switch {
	case wire.HasAdditionalErrors == nil:
		return Opinion{}, fmt.Errorf("opinion missing has_additional_errors")
	case wire.AdditionalErrors == nil:
		return Opinion{}, fmt.Errorf("opinion missing additional_errors")
	case wire.EnhancedExplanation == nil:
		return Opinion{}, fmt.Errorf("opinion missing enhanced_explanation")
	case wire.RecommendedAction == nil:
		return Opinion{}, fmt.Errorf("opinion missing recommended_action")
	case wire.ConfidenceScore == nil:
		return Opinion{}, fmt.Errorf("opinion missing confidence_score")
	}

	if *wire.ConfidenceScore < 0 || *wire.ConfidenceScore > 1 {
		return Opinion{}, fmt.Errorf("confidence_score %v out of range", *wire.ConfidenceScore)
	}

	return Opinion{
		HasAdditionalErrors: *wire.HasAdditionalErrors,
		AdditionalErrors:    *wire.AdditionalErrors,
		EnhancedExplanation: *wire.EnhancedExplanation,
		RecommendedAction:   *wire.RecommendedAction,
		ConfidenceScore:     *wire.ConfidenceScore,
	}, nil
}

// extractJSON finds the JSON object inside raw model text. Models sometimes
// wrap the payload in a fenced block or surround it with commentary.
func extractJSON(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	if start := strings.Index(trimmed, "```json"); start >= 0 {
		rest := trimmed[start+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			candidate := strings.TrimSpace(rest[:end])
			if json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		candidate := trimmed[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no JSON object found in response")
}
