package ipmatch

import (
	"fmt"
	"strings"
)

var (
	// loopbackRanges covers loopback addresses, for services that only accept
	// callers on the same host.
	loopbackRanges = []string{
		"127.",
		"::1",
	}

	// privateRanges covers private-network ranges commonly used inside VM
	// and internal network deployments.
	privateRanges = []string{
		"10.",
		"172.16.0.0/12",
		"192.168.",
		"fc00::/7",
	}
)

// LoopbackRanges returns range tokens covering IPv4 and IPv6 loopback.
func LoopbackRanges() []string {
	return cloneStrings(loopbackRanges)
}

// PrivateRanges returns range tokens covering RFC 1918 networks and IPv6
// unique local addresses.
func PrivateRanges() []string {
	return cloneStrings(privateRanges)
}

// LocalRanges returns LoopbackRanges followed by PrivateRanges.
func LocalRanges() []string {
	ranges := make([]string, 0, len(loopbackRanges)+len(privateRanges))
	ranges = append(ranges, loopbackRanges...)
	return append(ranges, privateRanges...)
}

// PresetRanges returns the range tokens of a named preset: "loopback",
// "private" or "local".
func PresetRanges(name string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "loopback":
		return LoopbackRanges(), nil
	case "private":
		return PrivateRanges(), nil
	case "local":
		return LocalRanges(), nil
	default:
		return nil, fmt.Errorf("unknown range preset %q", name)
	}
}
