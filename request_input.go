package ipmatch

import (
	"context"
	"net"
	"strings"
)

// HeaderValues provides access to request header values by name.
//
// Implementations should return one slice entry per received header line;
// repeated lines are joined with ", " the way a CGI gateway folds them into
// a single variable.
//
// net/http's http.Header satisfies this interface directly.
type HeaderValues interface {
	Values(name string) []string
}

// HeaderValuesFunc adapts a function to the HeaderValues interface.
type HeaderValuesFunc func(name string) []string

// Values implements HeaderValues.
func (f HeaderValuesFunc) Values(name string) []string {
	if f == nil {
		return nil
	}

	return f(name)
}

// RequestInput provides framework-agnostic request data for resolution.
//
// Context defaults to context.Background() when nil. RemoteAddr may carry a
// port ("203.0.113.7:51234") or be a bare address.
type RequestInput struct {
	Context    context.Context
	RemoteAddr string
	Headers    HeaderValues
}

func requestInputContext(input RequestInput) context.Context {
	if input.Context == nil {
		return context.Background()
	}

	return input.Context
}

// candidatesFrom builds the candidate list for an HTTP request.
func (res *Resolver) candidatesFrom(remoteAddr string, headers HeaderValues) []Candidate {
	candidates := make([]Candidate, 0, len(overridePriority))

	if remoteAddr != "" {
		candidates = append(candidates, Candidate{
			Source: SourceRemoteAddr,
			Value:  remoteAddrHost(remoteAddr),
		})
	}

	if isNilInterface(headers) {
		return candidates
	}

	if value, ok := headerValue(headers, res.config.clientIPHeader); ok {
		candidates = append(candidates, Candidate{Source: SourceClientIP, Value: value})
	}
	if value, ok := headerValue(headers, res.config.forwardedForHeader); ok {
		candidates = append(candidates, Candidate{Source: SourceXForwardedFor, Value: value})
	}

	return candidates
}

func headerValue(headers HeaderValues, name string) (string, bool) {
	values := headers.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, ", "), true
}

// remoteAddrHost strips the port and IPv6 brackets from a connection
// address. Values without a port are returned trimmed.
func remoteAddrHost(remoteAddr string) string {
	s := strings.TrimSpace(remoteAddr)
	if host, _, err := net.SplitHostPort(s); err == nil {
		return host
	}

	return trimMatchedPair(s, '[', ']')
}

// trimMatchedPair removes one leading and trailing delimiter when both match.
func trimMatchedPair(s string, start, end byte) string {
	if len(s) < 2 {
		return s
	}

	if s[0] != start || s[len(s)-1] != end {
		return s
	}

	return s[1 : len(s)-1]
}
