package ipmatch

import "strings"

// typicalRangeListCapacity is the initial capacity used when splitting range
// lists; configured allow and deny lists are usually short.
const typicalRangeListCapacity = 8

// RangeList is an ordered list of parsed ranges with OR semantics.
type RangeList []RangeSpec

// SplitRanges splits a comma-separated range list into trimmed, non-empty
// tokens.
func SplitRanges(ranges string) []string {
	if strings.TrimSpace(ranges) == "" {
		return nil
	}

	tokens := make([]string, 0, typicalRangeListCapacity)
	for part := range strings.SplitSeq(ranges, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

// ParseRangeList parses every token with ParseRange. Malformed tokens are
// left out of the list and reported in the returned error slice; they never
// abort parsing of the remaining tokens.
func ParseRangeList(tokens []string) (RangeList, []error) {
	return parseRangeList(tokens, false)
}

func parseRangeList(tokens []string, strictNetmask bool) (RangeList, []error) {
	list := make(RangeList, 0, len(tokens))
	var errs []error

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		spec, err := parseRange(token, strictNetmask)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		list = append(list, spec)
	}

	return list, errs
}

// Contains reports whether addr is a member of any range in l. Evaluation
// stops at the first match. Unspecified addresses are never members.
func (l RangeList) Contains(addr Address) bool {
	if !addr.IsValid() || addr.IsUnspecified() {
		return false
	}

	for _, spec := range l {
		if spec.Contains(addr) {
			return true
		}
	}
	return false
}

// String returns l as a comma-separated list in canonical notation.
func (l RangeList) String() string {
	parts := make([]string, len(l))
	for i, spec := range l {
		parts[i] = spec.String()
	}
	return strings.Join(parts, ", ")
}

// IsInRanges reports whether ip is contained in any range of the
// comma-separated list ranges.
//
// It returns false when ip is empty, malformed or an unspecified address
// (0.0.0.0 or ::), and when ranges holds no tokens. Malformed range tokens
// are skipped.
func IsInRanges(ip, ranges string) bool {
	return IsInRangeList(ip, SplitRanges(ranges))
}

// IsInRangeList is IsInRanges for ranges given as a slice of tokens.
func IsInRangeList(ip string, ranges []string) bool {
	addr, ok := candidateAddress(ip)
	if !ok {
		return false
	}

	for _, token := range ranges {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		spec, err := ParseRange(token)
		if err != nil {
			continue
		}
		if spec.Contains(addr) {
			return true
		}
	}

	return false
}

// candidateAddress parses the address being tested for membership. Empty,
// malformed and unspecified addresses are never members of any range.
func candidateAddress(ip string) (Address, bool) {
	addr, err := ParseAddress(ip)
	if err != nil || addr.IsUnspecified() {
		return Address{}, false
	}
	return addr, true
}
