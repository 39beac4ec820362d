package validation

import "strings"

// RecommendAction turns finding lists into a semicolon-joined set of
// corrective actions. Actions are deduplicated preserving first-occurrence
// order so repeated runs produce identical text.
func RecommendAction(technical, medical []string) string {
	var actions []string
	seen := make(map[string]bool)
	add := func(action string) {
		if !seen[action] {
			seen[action] = true
			actions = append(actions, action)
		}
	}

	for _, finding := range technical {
		lower := strings.ToLower(finding)
		switch {
		case strings.Contains(lower, "prior approval"):
			add("Obtain prior approval before processing")
		case strings.Contains(lower, "unique_id"):
			add("Correct ID formatting to uppercase alphanumeric")
		case strings.Contains(lower, "threshold"):
			add("Request prior approval for high-value claim")
		}
	}

	for _, finding := range medical {
		lower := strings.ToLower(finding)
		switch {
		case strings.Contains(lower, "encounter"):
			add("Verify encounter type matches service requirements")
		case strings.Contains(lower, "facility"):
			add("Transfer to appropriate facility or update facility code")
		case strings.Contains(lower, "diagnosis") && strings.Contains(lower, "requires"):
			add("Update service code to match diagnosis requirements")
		case strings.Contains(lower, "mutually exclusive"):
			add("Review and correct diagnosis codes")
		}
	}

	if len(actions) == 0 {
		add("Review claim details and correct identified issues")
	}

	return strings.Join(actions, "; ")
}
