package validation

import (
	"fmt"

	"github.com/rcm/rcm/internal/domain/claims"
	"github.com/rcm/rcm/internal/domain/rules"
)

// EvaluateTechnical applies the administrative rules to a normalized claim.
// Every independent reason approval is required produces its own finding
// when the approval number is absent: a claim failing on a flagged service
// code, a flagged diagnosis, and an over-threshold amount yields three
// findings, not one. Identifier findings are appended unconditionally.
func EvaluateTechnical(c *claims.Claim, cfg *rules.TechnicalConfig) []string {
	var findings []string
	approvalMissing := claims.ApprovalAbsent(c.ApprovalNumber)

	if cfg.ServicesRequiringApproval[c.ServiceCode] && approvalMissing {
		findings = append(findings, fmt.Sprintf(
			"Service %s requires prior approval but no approval number provided", c.ServiceCode))
	}

	for _, diagnosis := range c.DiagnosisCodes {
		if cfg.DiagnosesRequiringApproval[diagnosis] && approvalMissing {
			findings = append(findings, fmt.Sprintf(
				"Diagnosis %s requires prior approval but no approval number provided", diagnosis))
		}
	}

	if c.PaidAmount > cfg.PaidAmountThreshold && approvalMissing {
		findings = append(findings, fmt.Sprintf(
			"Paid amount AED %.2f exceeds threshold of AED %.2f, prior approval required",
			c.PaidAmount, cfg.PaidAmountThreshold))
	}

	findings = append(findings, ValidateIdentifier(c.UniqueID, c.NationalID, c.MemberID, c.FacilityID)...)
	return findings
}
