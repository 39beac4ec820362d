package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// The rule parser reads line-oriented directives out of the extracted rule
// text. Rule documents are uploaded as free text (often extracted from
// PDFs), so unrecognized lines are skipped; a document that yields no
// directives at all is an error.
//
// Technical directives:
//
//	APPROVAL_SERVICES: SRV1001, SRV1002
//	APPROVAL_DIAGNOSES: E11.9, R07.9
//	PAID_AMOUNT_THRESHOLD: 250
//
// Medical directives:
//
//	INPATIENT_ONLY: SRV1001, SRV1002
//	OUTPATIENT_ONLY: SRV2001, SRV2004
//	FACILITY 96GUDLMT: GENERAL_HOSPITAL
//	FACILITY_TYPE DIALYSIS_CENTER: SRV1003, SRV2010
//	DIAGNOSIS_REQUIRES E11.9: SRV2007
//	MUTUALLY_EXCLUSIVE: R73.03 | E11.9

// ParseTechnical builds a TechnicalConfig from rule text.
func ParseTechnical(content string) (TechnicalConfig, error) {
	cfg := TechnicalConfig{
		ServicesRequiringApproval:  make(map[string]bool),
		DiagnosesRequiringApproval: make(map[string]bool),
		PaidAmountThreshold:        0,
		IDFormat:                   DefaultIDFormat(),
	}

	directives := 0
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := splitDirective(line)
		if !ok {
			continue
		}
		switch strings.ToUpper(key) {
		case "APPROVAL_SERVICES":
			for _, code := range splitList(value) {
				cfg.ServicesRequiringApproval[code] = true
			}
			directives++
		case "APPROVAL_DIAGNOSES":
			for _, code := range splitList(value) {
				cfg.DiagnosesRequiringApproval[code] = true
			}
			directives++
		case "PAID_AMOUNT_THRESHOLD":
			threshold, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return cfg, fmt.Errorf("invalid paid amount threshold %q: %w", value, err)
			}
			cfg.PaidAmountThreshold = threshold
			directives++
		}
	}

	if directives == 0 {
		return cfg, fmt.Errorf("technical rule text contains no recognizable directives")
	}
	return cfg, nil
}

// ParseMedical builds a MedicalConfig from rule text.
func ParseMedical(content string) (MedicalConfig, error) {
	cfg := MedicalConfig{
		InpatientOnlyServices:  make(map[string]bool),
		OutpatientOnlyServices: make(map[string]bool),
		FacilityRegistry:       make(map[string]string),
		AllowedServices:        make(map[string]map[string]bool),
		RequiredServices:       make(map[string][]string),
	}

	directives := 0
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := splitDirective(line)
		if !ok {
			continue
		}

		upper := strings.ToUpper(key)
		switch {
		case upper == "INPATIENT_ONLY":
			for _, code := range splitList(value) {
				cfg.InpatientOnlyServices[code] = true
			}
			directives++
		case upper == "OUTPATIENT_ONLY":
			for _, code := range splitList(value) {
				cfg.OutpatientOnlyServices[code] = true
			}
			directives++
		case strings.HasPrefix(upper, "FACILITY_TYPE "):
			facilityType := strings.TrimSpace(key[len("FACILITY_TYPE "):])
			allowed := make(map[string]bool)
			for _, code := range splitList(value) {
				allowed[code] = true
			}
			cfg.AllowedServices[strings.ToUpper(facilityType)] = allowed
			directives++
		case strings.HasPrefix(upper, "FACILITY "):
			facilityID := strings.ToUpper(strings.TrimSpace(key[len("FACILITY "):]))
			cfg.FacilityRegistry[facilityID] = strings.ToUpper(strings.TrimSpace(value))
			directives++
		case strings.HasPrefix(upper, "DIAGNOSIS_REQUIRES "):
			diagnosis := strings.TrimSpace(key[len("DIAGNOSIS_REQUIRES "):])
			cfg.RequiredServices[diagnosis] = splitList(value)
			directives++
		case upper == "MUTUALLY_EXCLUSIVE":
			parts := strings.SplitN(value, "|", 2)
			if len(parts) != 2 {
				return cfg, fmt.Errorf("mutually exclusive directive needs two codes separated by '|', got %q", value)
			}
			cfg.MutuallyExclusive = append(cfg.MutuallyExclusive, ExclusivePair{
				A: strings.TrimSpace(parts[0]),
				B: strings.TrimSpace(parts[1]),
			})
			directives++
		}
	}

	if directives == 0 {
		return cfg, fmt.Errorf("medical rule text contains no recognizable directives")
	}
	return cfg, nil
}

// Build parses both rule documents of a tenant's rule source into the
// per-run configuration.
func Build(src *Source) (*Config, error) {
	if src == nil {
		return nil, fmt.Errorf("no rule source")
	}
	technical, err := ParseTechnical(src.TechnicalRules)
	if err != nil {
		return nil, fmt.Errorf("parse technical rules: %w", err)
	}
	medical, err := ParseMedical(src.MedicalRules)
	if err != nil {
		return nil, fmt.Errorf("parse medical rules: %w", err)
	}
	return &Config{Technical: technical, Medical: medical}, nil
}

// splitDirective splits "KEY: value" lines. Lines without a colon, comment
// lines, and empty lines report ok=false.
func splitDirective(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if code := strings.TrimSpace(part); code != "" {
			out = append(out, code)
		}
	}
	return out
}
