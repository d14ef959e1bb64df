package ipmatch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Resolver selects the client address from direct-connection and proxy
// header candidates.
//
// Resolver instances hold no per-request state and are safe for concurrent
// reuse.
type Resolver struct {
	config *config
}

// defaultResolver backs ResolveClientAddress. It is never mutated.
var defaultResolver = &Resolver{config: defaultConfig()}

// NewResolver creates a Resolver from one or more Option builders.
func NewResolver(opts ...Option) (*Resolver, error) {
	cfg, err := configFromOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Resolver{config: cfg}, nil
}

// ResolveClientAddress resolves the client address from candidates using the
// default Resolver configuration. See Resolver.Resolve.
func ResolveClientAddress(candidates []Candidate, allowOverride bool) string {
	return defaultResolver.Resolve(context.Background(), candidates, allowOverride)
}

// Resolve returns the client address selected from candidates, or "" when no
// usable address is available.
//
// Without overrides only SourceRemoteAddr is consulted, falling back to the
// REMOTE_ADDR environment variable when that candidate is absent. With
// overrides SourceRemoteAddr, SourceClientIP and SourceXForwardedFor are
// applied in that order and the last present one wins.
//
// The selected value may be a comma-separated proxy chain. Invalid entries
// are discarded and the right-most valid entry is returned as written. That
// entry was appended by the hop closest to this process; callers needing the
// originating client must apply their own proxy trust policy.
func (res *Resolver) Resolve(ctx context.Context, candidates []Candidate, allowOverride bool) string {
	if ctx == nil {
		ctx = context.Background()
	}

	raw, source := res.detect(candidates, allowOverride)
	ip := res.clean(ctx, source, raw)

	result := resolveResultResolved
	if ip == "" {
		result = resolveResultEmpty
	}
	res.config.metrics.RecordResolution(source, result)

	return ip
}

// ResolveAddr is Resolve returning the parsed address.
func (res *Resolver) ResolveAddr(ctx context.Context, candidates []Candidate, allowOverride bool) (Address, bool) {
	addr, err := ParseAddress(res.Resolve(ctx, candidates, allowOverride))
	if err != nil {
		return Address{}, false
	}
	return addr, true
}

// ResolveRequest resolves the client address of r. The direct-connection
// candidate is r.RemoteAddr without its port; header candidates come from
// the configured Client-Ip and X-Forwarded-For headers.
func (res *Resolver) ResolveRequest(r *http.Request, allowOverride bool) string {
	if r == nil {
		return res.Resolve(context.Background(), nil, allowOverride)
	}

	return res.Resolve(r.Context(), res.candidatesFrom(r.RemoteAddr, r.Header), allowOverride)
}

// ResolveFrom resolves the client address from framework-agnostic request
// input.
func (res *Resolver) ResolveFrom(input RequestInput, allowOverride bool) string {
	return res.Resolve(requestInputContext(input), res.candidatesFrom(input.RemoteAddr, input.Headers), allowOverride)
}

func (res *Resolver) detect(candidates []Candidate, allowOverride bool) (raw, source string) {
	if !allowOverride {
		if hasOverrideCandidate(candidates) {
			res.config.metrics.RecordSecurityEvent(securityEventOverrideIgnored)
		}

		if value, ok := lookupCandidate(candidates, SourceRemoteAddr); ok {
			return value, SourceRemoteAddr
		}

		if value, ok := res.config.lookupEnv(RemoteAddrEnv); ok {
			return value, sourceEnvironment
		}

		return "", sourceNone
	}

	source = sourceNone
	for _, name := range overridePriority {
		if value, ok := lookupCandidate(candidates, name); ok {
			raw, source = value, name
		}
	}

	return raw, source
}

// clean validates every entry of a comma-separated chain and returns the
// right-most valid one.
func (res *Resolver) clean(ctx context.Context, source, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	last := ""
	entries := 0
	invalid := 0

	for part := range strings.SplitSeq(raw, ",") {
		token := strings.TrimSpace(part)
		if token != "" {
			entries++
		}
		if res.config.maxChainLength > 0 && entries > res.config.maxChainLength {
			res.config.metrics.RecordSecurityEvent(securityEventChainTooLong)
			res.config.logger.WarnContext(ctx, "candidate chain exceeds configured maximum length",
				"event", securityEventChainTooLong,
				"source", source,
				"max_length", res.config.maxChainLength,
			)
			return ""
		}

		if IsValidAddress(token) {
			last = token
			continue
		}
		invalid++
	}

	if invalid > 0 {
		res.config.metrics.RecordSecurityEvent(securityEventInvalidIP)
		res.config.logger.WarnContext(ctx, "discarded invalid entries in candidate value",
			"event", securityEventInvalidIP,
			"source", source,
			"invalid_count", invalid,
			"value", raw,
		)
	}

	return last
}
