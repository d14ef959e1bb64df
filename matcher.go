package ipmatch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Matcher tests addresses against range lists, keeping recently used lists
// in parsed form.
//
// Matcher instances are safe for concurrent reuse.
type Matcher struct {
	config *config
	cache  *lru.Cache[string, RangeList]
}

// NewMatcher creates a Matcher from one or more Option builders.
func NewMatcher(opts ...Option) (*Matcher, error) {
	cfg, err := configFromOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	matcher := &Matcher{config: cfg}

	if cfg.rangeCacheSize > 0 {
		cache, err := lru.New[string, RangeList](cfg.rangeCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create range cache: %w", err)
		}
		matcher.cache = cache
	}

	return matcher, nil
}

// Contains reports whether ip is contained in any range of the
// comma-separated list ranges.
//
// The result is the same as IsInRanges; in addition, rejected candidates and
// skipped range tokens are logged and counted.
func (m *Matcher) Contains(ctx context.Context, ip, ranges string) bool {
	return m.check(ctx, ip, "s\x00"+ranges, func() []string {
		return SplitRanges(ranges)
	})
}

// ContainsList is Contains for ranges given as a slice of tokens.
func (m *Matcher) ContainsList(ctx context.Context, ip string, ranges []string) bool {
	return m.check(ctx, ip, listCacheKey(ranges), func() []string {
		return ranges
	})
}

// Compile parses ranges once for repeated use with RangeList.Contains.
// Malformed tokens are logged, counted and left out. The returned list is
// owned by the caller.
func (m *Matcher) Compile(ctx context.Context, ranges []string) RangeList {
	return slices.Clone(m.rangeList(ctx, listCacheKey(ranges), func() []string {
		return ranges
	}))
}

// listCacheKey encodes tokens with length prefixes so that no two distinct
// token slices share a key.
func listCacheKey(ranges []string) string {
	var b strings.Builder
	b.WriteString("l")
	for _, token := range ranges {
		b.WriteString(strconv.Itoa(len(token)))
		b.WriteByte(':')
		b.WriteString(token)
	}
	return b.String()
}

func (m *Matcher) check(ctx context.Context, ip, cacheKey string, tokens func() []string) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	addr, ok := m.candidate(ctx, ip)
	if !ok {
		m.config.metrics.RecordRangeCheck(checkResultRejected)
		return false
	}

	list := m.rangeList(ctx, cacheKey, tokens)
	if len(list) == 0 {
		m.config.metrics.RecordRangeCheck(checkResultRejected)
		return false
	}

	if list.Contains(addr) {
		m.config.metrics.RecordRangeCheck(checkResultMatch)
		return true
	}

	m.config.metrics.RecordRangeCheck(checkResultNoMatch)
	return false
}

func (m *Matcher) candidate(ctx context.Context, ip string) (Address, bool) {
	if strings.TrimSpace(ip) == "" {
		return Address{}, false
	}

	addr, err := ParseAddress(ip)
	if err != nil {
		m.config.metrics.RecordSecurityEvent(securityEventInvalidIP)
		m.config.logger.WarnContext(ctx, "candidate address is malformed",
			"event", securityEventInvalidIP,
			"ip", ip,
		)
		return Address{}, false
	}

	if addr.IsUnspecified() {
		m.config.metrics.RecordSecurityEvent(securityEventUnspecifiedIP)
		m.config.logger.WarnContext(ctx, "unspecified address is never contained in a range",
			"event", securityEventUnspecifiedIP,
			"ip", ip,
		)
		return Address{}, false
	}

	return addr, true
}

func (m *Matcher) rangeList(ctx context.Context, cacheKey string, tokens func() []string) RangeList {
	if m.cache != nil {
		if list, ok := m.cache.Get(cacheKey); ok {
			return list
		}
	}

	list, errs := parseRangeList(tokens(), m.config.strictNetmasks)
	for _, err := range errs {
		m.reportSkippedRange(ctx, err)
	}

	list = slices.Clip(list)
	if m.cache != nil {
		m.cache.Add(cacheKey, list)
	}

	return list
}

func (m *Matcher) reportSkippedRange(ctx context.Context, err error) {
	m.config.metrics.RecordRangeSkipped(securityEventMalformedRange)

	input := ""
	var rangeErr *RangeError
	if errors.As(err, &rangeErr) {
		input = rangeErr.Input
	}

	m.config.logger.WarnContext(ctx, "skipping malformed range",
		"event", securityEventMalformedRange,
		"range", input,
		"error", err.Error(),
	)
}
