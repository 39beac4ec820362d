package validation

import (
	"strings"
	"testing"

	"github.com/rcm/rcm/internal/domain/claims"
	"github.com/rcm/rcm/internal/domain/rules"
)

func testMedicalConfig() *rules.MedicalConfig {
	return &rules.MedicalConfig{
		InpatientOnlyServices:  map[string]bool{"SRV1001": true},
		OutpatientOnlyServices: map[string]bool{"SRV2001": true},
		FacilityRegistry: map[string]string{
			"FACWXYZ":  "GENERAL_HOSPITAL",
			"96GUDLMT": "DIALYSIS_CENTER",
		},
		AllowedServices: map[string]map[string]bool{
			"DIALYSIS_CENTER": {"SRV1003": true, "SRV2010": true},
		},
		RequiredServices: map[string][]string{
			"E11.9": {"SRV2007", "SRV2008"},
		},
		MutuallyExclusive: []rules.ExclusivePair{{A: "R73.03", B: "E11.9"}},
	}
}

func TestEvaluateMedical_CleanClaim(t *testing.T) {
	findings := EvaluateMedical(cleanClaim(), testMedicalConfig())
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %v", findings)
	}
}

func TestEvaluateMedical_EncounterTypeRestrictions(t *testing.T) {
	c := cleanClaim()
	c.ServiceCode = "SRV1001"
	c.EncounterType = claims.Outpatient

	findings := EvaluateMedical(c, testMedicalConfig())
	if len(findings) != 1 || !strings.Contains(findings[0], "only be performed for INPATIENT") {
		t.Errorf("expected inpatient-only finding, got %v", findings)
	}

	c = cleanClaim()
	c.ServiceCode = "SRV2001"
	c.EncounterType = claims.Inpatient

	findings = EvaluateMedical(c, testMedicalConfig())
	if len(findings) != 1 || !strings.Contains(findings[0], "only be performed for OUTPATIENT") {
		t.Errorf("expected outpatient-only finding, got %v", findings)
	}
}

func TestEvaluateMedical_UnregisteredFacility(t *testing.T) {
	c := cleanClaim()
	c.FacilityID = "UNKNOWN1"

	findings := EvaluateMedical(c, testMedicalConfig())
	if len(findings) != 1 || findings[0] != "Facility UNKNOWN1 is not registered" {
		t.Errorf("expected unregistered-facility finding, got %v", findings)
	}
}

func TestEvaluateMedical_ServiceNotAllowedAtFacilityType(t *testing.T) {
	c := cleanClaim()
	c.FacilityID = "96GUDLMT"

	findings := EvaluateMedical(c, testMedicalConfig())
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %v", findings)
	}
	if !strings.Contains(findings[0], "not allowed at DIALYSIS_CENTER") {
		t.Errorf("unexpected finding: %q", findings[0])
	}
}

func TestEvaluateMedical_FacilityTypeWithoutConstraintsAcceptsAnything(t *testing.T) {
	// GENERAL_HOSPITAL has no allowed-services entry.
	c := cleanClaim()
	c.ServiceCode = "SRV9999"

	findings := EvaluateMedical(c, testMedicalConfig())
	if len(findings) != 0 {
		t.Errorf("expected unconstrained facility type to accept the service, got %v", findings)
	}
}

func TestEvaluateMedical_DiagnosisRequiresService(t *testing.T) {
	c := cleanClaim()
	c.DiagnosisCodes = []string{"E11.9"}
	c.ServiceCode = "SRV2008"

	if findings := EvaluateMedical(c, testMedicalConfig()); len(findings) != 0 {
		t.Errorf("expected required service to satisfy, got %v", findings)
	}

	c.ServiceCode = "SRV3000"
	findings := EvaluateMedical(c, testMedicalConfig())
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %v", findings)
	}
	want := "Diagnosis E11.9 requires one of these services: SRV2007, SRV2008, but got SRV3000"
	if findings[0] != want {
		t.Errorf("expected %q, got %q", want, findings[0])
	}
}

func TestEvaluateMedical_MutuallyExclusiveDiagnoses(t *testing.T) {
	for _, codes := range [][]string{
		{"R73.03", "E11.9"},
		{"E11.9", "R73.03"},
	} {
		c := cleanClaim()
		c.DiagnosisCodes = codes
		c.ServiceCode = "SRV2008"

		findings := EvaluateMedical(c, testMedicalConfig())
		var found bool
		for _, f := range findings {
			if f == "Mutually exclusive diagnoses found: R73.03 and E11.9 cannot coexist" {
				found = true
			}
		}
		if !found {
			t.Errorf("codes %v: expected exclusivity finding, got %v", codes, findings)
		}
	}
}

func TestEvaluateMedical_FindingsAccumulate(t *testing.T) {
	c := cleanClaim()
	c.ServiceCode = "SRV1001"
	c.EncounterType = claims.Outpatient
	c.FacilityID = "UNKNOWN1"
	c.DiagnosisCodes = []string{"R73.03", "E11.9"}

	findings := EvaluateMedical(c, testMedicalConfig())
	if len(findings) != 4 {
		t.Errorf("expected 4 findings (encounter, facility, diagnosis-service, exclusivity), got %v", findings)
	}
}
