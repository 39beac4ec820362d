// Package rules holds the per-tenant rule configuration model and the
// parser that builds it from uploaded rule text. A Config is constructed
// once per validation run and passed explicitly into the evaluators; it is
// never shared across tenants or mutated after construction.
package rules

import "strings"

// IDFormat describes the composite-identifier format a tenant enforces.
type IDFormat struct {
	Segments      int
	SegmentLength int
	Pattern       string
	AllowedChars  string
}

// DefaultIDFormat is the XXXX-XXXX-XXXX uppercase-alphanumeric format.
func DefaultIDFormat() IDFormat {
	return IDFormat{
		Segments:      3,
		SegmentLength: 4,
		Pattern:       `^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`,
		AllowedChars:  "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
	}
}

// TechnicalConfig holds the administrative rule tables. A service or
// diagnosis code absent from an approval map does not require approval.
type TechnicalConfig struct {
	ServicesRequiringApproval  map[string]bool
	DiagnosesRequiringApproval map[string]bool
	PaidAmountThreshold        float64
	IDFormat                   IDFormat
}

// ExclusivePair is an unordered pair of diagnosis codes that must not
// appear on the same claim.
type ExclusivePair struct {
	A string
	B string
}

// MedicalConfig holds the clinical rule tables. Facility registry keys are
// stored uppercased; a facility type absent from AllowedServices leaves the
// service unconstrained at facilities of that type.
type MedicalConfig struct {
	InpatientOnlyServices  map[string]bool
	OutpatientOnlyServices map[string]bool
	FacilityRegistry       map[string]string
	AllowedServices        map[string]map[string]bool
	RequiredServices       map[string][]string
	MutuallyExclusive      []ExclusivePair
}

// Config is the immutable per-run rule configuration.
type Config struct {
	Technical TechnicalConfig
	Medical   MedicalConfig
}

// FacilityType resolves a facility id in the registry, case-insensitively.
func (m *MedicalConfig) FacilityType(facilityID string) (string, bool) {
	t, ok := m.FacilityRegistry[strings.ToUpper(strings.TrimSpace(facilityID))]
	return t, ok
}

// ServiceAllowedAt reports whether a service code may be billed at a
// facility of the given type. Facility types without an allowed-services
// entry accept any service.
func (m *MedicalConfig) ServiceAllowedAt(facilityType, serviceCode string) bool {
	allowed, ok := m.AllowedServices[facilityType]
	if !ok {
		return true
	}
	return allowed[serviceCode]
}
