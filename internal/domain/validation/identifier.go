package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var uniqueIDPattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// ValidateIdentifier cross-checks the composite unique id against the three
// source identifiers it is derived from. All applicable violations are
// returned; nothing short-circuits on the first failure.
//
// Derivation: segment 1 is the first 4 characters of the national id,
// segment 2 is characters 3-6 of the member id, segment 3 is the last 4
// characters of the facility id, all compared uppercased. Member ids of
// 4-7 characters get a weaker containment check instead; sources shorter
// than 4 characters produce a length finding instead of a mismatch.
func ValidateIdentifier(uniqueID, nationalID, memberID, facilityID string) []string {
	var findings []string

	switch {
	case !uniqueIDPattern.MatchString(uniqueID):
		findings = append(findings, fmt.Sprintf(
			"unique_id %q does not match required format XXXX-XXXX-XXXX (uppercase alphanumeric)", uniqueID))
	case isPlaceholderID(uniqueID):
		findings = append(findings, fmt.Sprintf(
			"unique_id %q is a placeholder value, not a derived identifier", uniqueID))
	default:
		segments := strings.Split(uniqueID, "-")
		findings = append(findings, checkNationalSegment(segments[0], nationalID)...)
		findings = append(findings, checkMemberSegment(segments[1], memberID)...)
		findings = append(findings, checkFacilitySegment(segments[2], facilityID)...)
	}

	// Charset and case violations on the source ids are reported
	// independently of the segment checks above.
	for _, src := range []struct{ name, value string }{
		{"national_id", nationalID},
		{"member_id", memberID},
		{"facility_id", facilityID},
	} {
		findings = append(findings, checkSourceID(src.name, src.value)...)
	}

	return findings
}

// isPlaceholderID reports whether every segment character is drawn from the
// placeholder alphabet (X, Y, Z). Such values pass the format pattern but
// cannot be a real derivation.
func isPlaceholderID(uniqueID string) bool {
	for _, r := range uniqueID {
		switch r {
		case 'X', 'Y', 'Z', '-':
		default:
			return false
		}
	}
	return true
}

func checkNationalSegment(segment, nationalID string) []string {
	src := strings.ToUpper(nationalID)
	if len(src) < 4 {
		return []string{fmt.Sprintf(
			"national_id %q is too short to derive the first unique_id segment (need at least 4 characters)", nationalID)}
	}
	if src[:4] != segment {
		return []string{fmt.Sprintf(
			"unique_id first segment %q does not match the first 4 characters of national_id %q", segment, nationalID)}
	}
	return nil
}

func checkMemberSegment(segment, memberID string) []string {
	src := strings.ToUpper(memberID)
	switch {
	case len(src) >= 8:
		if src[2:6] != segment {
			return []string{fmt.Sprintf(
				"unique_id middle segment %q does not match characters 3-6 of member_id %q", segment, memberID)}
		}
	case len(src) >= 4:
		if !strings.Contains(src, segment) {
			return []string{fmt.Sprintf(
				"unique_id middle segment %q not found within member_id %q", segment, memberID)}
		}
	default:
		return []string{fmt.Sprintf(
			"member_id %q is too short to derive the middle unique_id segment (need at least 4 characters)", memberID)}
	}
	return nil
}

func checkFacilitySegment(segment, facilityID string) []string {
	src := strings.ToUpper(facilityID)
	if len(src) < 4 {
		return []string{fmt.Sprintf(
			"facility_id %q is too short to derive the last unique_id segment (need at least 4 characters)", facilityID)}
	}
	if src[len(src)-4:] != segment {
		return []string{fmt.Sprintf(
			"unique_id last segment %q does not match the last 4 characters of facility_id %q", segment, facilityID)}
	}
	return nil
}

// checkSourceID flags non-alphanumeric and lowercase characters in a source
// identifier. Each violation class yields at most one finding.
func checkSourceID(name, value string) []string {
	var findings []string
	hasInvalid := false
	hasLower := false
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
		default:
			hasInvalid = true
		}
	}
	if hasInvalid {
		findings = append(findings, fmt.Sprintf(
			"%s %q contains invalid characters (must be uppercase alphanumeric)", name, value))
	}
	if hasLower {
		findings = append(findings, fmt.Sprintf(
			"%s %q contains lowercase characters (must be uppercase alphanumeric)", name, value))
	}
	return findings
}
