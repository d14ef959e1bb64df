// Package ipmatch tests IP addresses against human-friendly range lists and
// resolves the client address of a request from direct-connection and proxy
// header candidates.
//
// # Features
//
//   - Strict IPv4/IPv6 parsing to a fixed-width binary form; compressed and
//     expanded IPv6 notations compare equal
//   - Range notations: single address, from-to range, CIDR, address/netmask
//     and partial IPv4 prefixes ("10.", "10.1.", "10.1.2.")
//   - Mixed-family range lists: entries of the other family are skipped, not
//     rejected
//   - Client address resolution with an explicit, per-call override policy
//   - Optional observability with context-aware logging and pluggable metrics
//
// # Range Membership
//
//	ipmatch.IsInRanges("192.168.1.129", "10.0.0.0/8, 192.168.1.0-192.168.1.255") // true
//	ipmatch.IsInRanges("127.0.0.1", "127.")                                       // true
//	ipmatch.IsInRanges("2001:db8::1", "192.168.0.0/16")                           // false
//
// Unspecified addresses (0.0.0.0, ::) are never contained in any range, and
// an empty range list contains nothing. Malformed range tokens are skipped.
//
// For repeated checks against the same lists, use a Matcher, which caches
// parsed lists and reports skipped tokens:
//
//	matcher, err := ipmatch.NewMatcher(
//	    ipmatch.WithLogger(slog.Default()),
//	    ipmatch.WithStrictNetmasks(true),
//	)
//	ok := matcher.Contains(ctx, ip, "10.0.0.0/255.0.0.0, 192.168.")
//
// # Netmasks
//
// A netmask is reduced to a prefix length by counting its set bits. A
// non-contiguous mask such as 255.0.255.0 therefore behaves like /16 rather
// than being rejected; WithStrictNetmasks and ParseRangeStrict reject such
// masks instead.
//
// # Client Address Resolution
//
//	ip := ipmatch.ResolveClientAddress([]ipmatch.Candidate{
//	    {Source: ipmatch.SourceRemoteAddr, Value: "10.0.0.5"},
//	    {Source: ipmatch.SourceXForwardedFor, Value: "75.184.124.93, 10.194.95.79"},
//	}, true)
//	// ip == "10.194.95.79"
//
// Without overrides only the direct-connection address is used (with the
// REMOTE_ADDR environment variable as fallback). With overrides the
// direct-connection address, Client-Ip and X-Forwarded-For are applied in
// that order and the last present source wins. From a comma-separated chain
// the right-most valid entry is returned.
//
// Proxy headers are client-controlled unless a trusted proxy overwrites
// them. Only allow overrides behind a proxy you operate.
//
// # HTTP
//
//	resolver, _ := ipmatch.NewResolver()
//	matcher, _ := ipmatch.NewMatcher()
//	guard, _ := ipmatch.RequireRanges(resolver, matcher, ipmatch.PrivateRanges(), false)
//	http.Handle("/admin", resolver.Middleware(false)(guard(adminHandler)))
//
// # Observability
//
// Prometheus adapter package: github.com/abczzz13/ipmatch/prometheus.
//
// # Thread Safety
//
// Package functions are pure. Matcher and Resolver instances are safe for
// concurrent use and are typically created once at application startup.
package ipmatch
