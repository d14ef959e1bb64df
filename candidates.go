package ipmatch

import "strings"

const (
	// SourceRemoteAddr is the direct-connection address (REMOTE_ADDR or
	// http.Request.RemoteAddr).
	SourceRemoteAddr = "remote_addr"
	// SourceClientIP is the Client-Ip request header.
	SourceClientIP = "client_ip"
	// SourceXForwardedFor is the X-Forwarded-For request header.
	SourceXForwardedFor = "x_forwarded_for"
)

const (
	// sourceEnvironment labels a value read from the REMOTE_ADDR environment
	// variable.
	sourceEnvironment = "environment"
	// sourceNone labels a resolution where no source was present.
	sourceNone = "none"
)

// overridePriority lists the sources consulted when overrides are allowed,
// in application order. Each present source replaces the value of the ones
// before it, so the last present source wins.
var overridePriority = []string{
	SourceRemoteAddr,
	SourceClientIP,
	SourceXForwardedFor,
}

// Candidate is one raw value offered for client address resolution.
//
// Source is matched after normalisation, so "X-Forwarded-For",
// "HTTP_X_FORWARDED_FOR" and "forwarded-for" all name SourceXForwardedFor,
// and "direct" names SourceRemoteAddr. A source missing from the candidate
// slice is absent; a present source with an empty Value is not.
type Candidate struct {
	Source string
	Value  string
}

// NormalizeSourceName lowercases name and replaces dashes with underscores.
func NormalizeSourceName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
}

func canonicalSourceName(name string) string {
	normalized := NormalizeSourceName(name)
	switch normalized {
	case SourceRemoteAddr, "direct":
		return SourceRemoteAddr
	case SourceClientIP, "http_client_ip":
		return SourceClientIP
	case SourceXForwardedFor, "http_x_forwarded_for", "forwarded_for":
		return SourceXForwardedFor
	default:
		return normalized
	}
}

// lookupCandidate returns the value of the first candidate naming source.
func lookupCandidate(candidates []Candidate, source string) (string, bool) {
	for _, candidate := range candidates {
		if canonicalSourceName(candidate.Source) == source {
			return candidate.Value, true
		}
	}
	return "", false
}

// hasOverrideCandidate reports whether a header-style source carries a value.
func hasOverrideCandidate(candidates []Candidate) bool {
	for _, source := range []string{SourceClientIP, SourceXForwardedFor} {
		if value, ok := lookupCandidate(candidates, source); ok && strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}
