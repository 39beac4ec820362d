package claims

import (
	"fmt"
	"strings"
)

// NormalizeUniqueID uppercases a composite identifier and restores the
// XXXX-XXXX-XXXX form when the separators were dropped (12 contiguous
// characters). Anything else is returned uppercased as-is so the identifier
// validator can report the format violation.
func NormalizeUniqueID(uid string) string {
	if uid == "" {
		return uid
	}
	up := strings.ToUpper(strings.TrimSpace(uid))
	bare := strings.ReplaceAll(up, "-", "")
	if len(bare) == 12 {
		return bare[0:4] + "-" + bare[4:8] + "-" + bare[8:12]
	}
	return up
}

// SplitDiagnosisCodes splits a raw diagnosis-code field on commas or
// semicolons, trims each code, and drops empties.
func SplitDiagnosisCodes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	codes := make([]string, 0, len(fields))
	for _, f := range fields {
		if code := strings.TrimSpace(f); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// Normalize converts a persisted claim document into the validated
// in-memory representation the evaluators consume. It tolerates the known
// ingestion quirks (unhyphenated unique ids, delimited diagnosis strings,
// approval placeholders) and rejects documents the engine cannot evaluate.
func Normalize(doc *Document) (*Claim, error) {
	if doc.UniqueID == "" {
		return nil, fmt.Errorf("claim document has no unique_id")
	}

	encounter := EncounterType(strings.ToUpper(strings.TrimSpace(doc.EncounterType)))
	switch encounter {
	case Inpatient, Outpatient:
	default:
		return nil, fmt.Errorf("invalid encounter_type %q for claim %s", doc.EncounterType, doc.UniqueID)
	}

	if doc.PaidAmount < 0 {
		return nil, fmt.Errorf("negative paid amount %.2f for claim %s", doc.PaidAmount, doc.UniqueID)
	}

	diagnoses := SplitDiagnosisCodes(doc.DiagnosisCodes)
	if len(diagnoses) == 0 {
		return nil, fmt.Errorf("claim %s has no diagnosis codes", doc.UniqueID)
	}

	serviceCode := strings.TrimSpace(doc.ServiceCode)
	if serviceCode == "" {
		return nil, fmt.Errorf("claim %s has no service code", doc.UniqueID)
	}

	return &Claim{
		UniqueID:       NormalizeUniqueID(doc.UniqueID),
		TenantID:       doc.TenantID,
		EncounterType:  encounter,
		ServiceDate:    strings.TrimSpace(doc.ServiceDate),
		NationalID:     strings.TrimSpace(doc.NationalID),
		MemberID:       strings.TrimSpace(doc.MemberID),
		FacilityID:     strings.TrimSpace(doc.FacilityID),
		DiagnosisCodes: diagnoses,
		ServiceCode:    serviceCode,
		PaidAmount:     doc.PaidAmount,
		ApprovalNumber: strings.TrimSpace(doc.ApprovalNumber),
	}, nil
}
