package validation

import (
	"fmt"
	"strings"

	"github.com/rcm/rcm/internal/domain/claims"
	"github.com/rcm/rcm/internal/domain/rules"
)

// EvaluateMedical applies the clinical rules to a normalized claim. All
// checks run; findings accumulate in check order.
func EvaluateMedical(c *claims.Claim, cfg *rules.MedicalConfig) []string {
	var findings []string

	if cfg.InpatientOnlyServices[c.ServiceCode] && c.EncounterType != claims.Inpatient {
		findings = append(findings, fmt.Sprintf(
			"Service %s can only be performed for INPATIENT encounters", c.ServiceCode))
	}

	if cfg.OutpatientOnlyServices[c.ServiceCode] && c.EncounterType != claims.Outpatient {
		findings = append(findings, fmt.Sprintf(
			"Service %s can only be performed for OUTPATIENT encounters", c.ServiceCode))
	}

	if facilityType, ok := cfg.FacilityType(c.FacilityID); ok {
		if !cfg.ServiceAllowedAt(facilityType, c.ServiceCode) {
			findings = append(findings, fmt.Sprintf(
				"Service %s is not allowed at %s (facility %s)", c.ServiceCode, facilityType, c.FacilityID))
		}
	} else {
		findings = append(findings, fmt.Sprintf("Facility %s is not registered", c.FacilityID))
	}

	for _, diagnosis := range c.DiagnosisCodes {
		required, ok := cfg.RequiredServices[diagnosis]
		if !ok {
			continue
		}
		if !containsCode(required, c.ServiceCode) {
			findings = append(findings, fmt.Sprintf(
				"Diagnosis %s requires one of these services: %s, but got %s",
				diagnosis, strings.Join(required, ", "), c.ServiceCode))
		}
	}

	for _, pair := range cfg.MutuallyExclusive {
		if containsCode(c.DiagnosisCodes, pair.A) && containsCode(c.DiagnosisCodes, pair.B) {
			findings = append(findings, fmt.Sprintf(
				"Mutually exclusive diagnoses found: %s and %s cannot coexist", pair.A, pair.B))
		}
	}

	return findings
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
