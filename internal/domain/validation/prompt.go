package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rcm/rcm/internal/domain/claims"
	"github.com/rcm/rcm/internal/domain/rules"
)

// BuildRulesContext renders a tenant's rule configuration as the plain-text
// context handed to the augmentation provider. Keys are sorted so the same
// configuration always yields the same prompt.
func BuildRulesContext(cfg *rules.Config) string {
	var b strings.Builder

	b.WriteString("TECHNICAL RULES:\n")
	b.WriteString("- Services requiring prior approval: " + sortedKeys(cfg.Technical.ServicesRequiringApproval) + "\n")
	b.WriteString("- Diagnoses requiring prior approval: " + sortedKeys(cfg.Technical.DiagnosesRequiringApproval) + "\n")
	fmt.Fprintf(&b, "- Paid amount threshold: AED %.2f\n", cfg.Technical.PaidAmountThreshold)
	b.WriteString("- ID format must be uppercase alphanumeric with pattern XXXX-XXXX-XXXX\n")

	b.WriteString("\nMEDICAL RULES:\n")
	b.WriteString("- Inpatient-only services: " + sortedKeys(cfg.Medical.InpatientOnlyServices) + "\n")
	b.WriteString("- Outpatient-only services: " + sortedKeys(cfg.Medical.OutpatientOnlyServices) + "\n")
	b.WriteString("- Facility constraints apply per the registered facility type\n")
	b.WriteString("- Diagnosis-service matching required\n")
	if len(cfg.Medical.MutuallyExclusive) > 0 {
		pairs := make([]string, 0, len(cfg.Medical.MutuallyExclusive))
		for _, p := range cfg.Medical.MutuallyExclusive {
			pairs = append(pairs, p.A+"+"+p.B)
		}
		b.WriteString("- Mutually exclusive diagnoses: " + strings.Join(pairs, ", ") + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// BuildClaimContext renders one normalized claim for the augmentation
// provider.
func BuildClaimContext(c *claims.Claim) string {
	approval := c.ApprovalNumber
	if claims.ApprovalAbsent(approval) {
		approval = "None"
	}
	lines := []string{
		"CLAIM DETAILS:",
		"- Unique ID: " + c.UniqueID,
		"- Encounter Type: " + string(c.EncounterType),
		"- Service Code: " + c.ServiceCode,
		"- Diagnosis Codes: " + strings.Join(c.DiagnosisCodes, ", "),
		"- Facility ID: " + c.FacilityID,
		fmt.Sprintf("- Paid Amount: AED %.2f", c.PaidAmount),
		"- Approval Number: " + approval,
		"- National ID: " + c.NationalID,
		"- Member ID: " + c.MemberID,
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
