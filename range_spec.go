package ipmatch

import (
	"net/netip"
	"strconv"
	"strings"

	"go4.org/netipx"
)

// maxPartialPrefixOctets is the largest number of leading octets accepted in
// partial prefix notation ("10.", "10.1.", "10.1.2.").
const maxPartialPrefixOctets = 3

// RangeKind identifies the notation variant held by a RangeSpec.
type RangeKind int

const (
	// Start at 1 so the zero RangeSpec is recognisably empty.
	//
	// RangeSingle matches exactly one address ("192.168.1.129").
	RangeSingle RangeKind = iota + 1
	// RangeExplicit matches an inclusive from-to range
	// ("192.168.1.0-192.168.1.255").
	RangeExplicit
	// RangeCIDR matches a network prefix ("2001:db8::/57"). Partial prefixes
	// such as "127.0." parse to this kind.
	RangeCIDR
	// RangeNetmask matches a network given with a dotted mask
	// ("192.168.1.0/255.255.255.0").
	RangeNetmask
)

// String returns the canonical text representation of k.
func (k RangeKind) String() string {
	switch k {
	case RangeSingle:
		return "single"
	case RangeExplicit:
		return "explicit"
	case RangeCIDR:
		return "cidr"
	case RangeNetmask:
		return "netmask"
	default:
		return "unknown"
	}
}

// RangeSpec is one parsed range expression.
//
// The zero value matches nothing.
type RangeSpec struct {
	kind RangeKind

	// first holds the single address, the explicit lower bound or the
	// network; last holds the explicit upper bound or the netmask.
	first Address
	last  Address

	// bits is the prefix length for RangeCIDR and the effective prefix length
	// derived from the mask for RangeNetmask.
	bits int
}

// ParseRange parses one range expression.
//
// Accepted notations, tried in this order:
//   - explicit range: "from-to" (both bounds of the same family, any order)
//   - CIDR: "network/prefixLen"
//   - netmask: "network/mask" (mask of the same family as network)
//   - partial IPv4 prefix: "127.", "127.0.", "127.0.0."
//   - single address
//
// A netmask is reduced to a prefix length by counting its set bits, so a
// non-contiguous mask such as 255.0.255.0 behaves like /16. Use
// ParseRangeStrict to reject such masks.
//
// On failure the returned error is a *RangeError wrapping ErrMalformedRange,
// or ErrEmptyInput for blank text.
func ParseRange(text string) (RangeSpec, error) {
	return parseRange(text, false)
}

// ParseRangeStrict is like ParseRange but rejects netmasks whose set bits are
// not a contiguous leading run.
func ParseRangeStrict(text string) (RangeSpec, error) {
	return parseRange(text, true)
}

// MustParseRange is like ParseRange but panics on error.
func MustParseRange(text string) RangeSpec {
	spec, err := ParseRange(text)
	if err != nil {
		panic(err)
	}
	return spec
}

func parseRange(text string, strictNetmask bool) (RangeSpec, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return RangeSpec{}, &RangeError{Input: text, Err: ErrEmptyInput}
	}

	if from, to, ok := strings.Cut(s, "-"); ok {
		return parseExplicitRange(text, from, to)
	}

	if network, mask, ok := strings.Cut(s, "/"); ok {
		return parseMaskedRange(text, network, mask, strictNetmask)
	}

	if strings.HasSuffix(s, ".") {
		return parsePartialPrefix(text, s)
	}

	addr, err := ParseAddress(s)
	if err != nil {
		return RangeSpec{}, malformedRange(text, "")
	}

	return RangeSpec{kind: RangeSingle, first: addr}, nil
}

func parseExplicitRange(text, fromText, toText string) (RangeSpec, error) {
	from, err := ParseAddress(fromText)
	if err != nil {
		return RangeSpec{}, malformedRange(text, "invalid range start %q", strings.TrimSpace(fromText))
	}

	to, err := ParseAddress(toText)
	if err != nil {
		return RangeSpec{}, malformedRange(text, "invalid range end %q", strings.TrimSpace(toText))
	}

	if !sameVersion(from, to) {
		return RangeSpec{}, malformedRange(text, "range bounds mix %s and %s", from.Version(), to.Version())
	}

	return RangeSpec{kind: RangeExplicit, first: from, last: to}, nil
}

func parseMaskedRange(text, networkText, maskText string, strictNetmask bool) (RangeSpec, error) {
	network, err := ParseAddress(networkText)
	if err != nil {
		return RangeSpec{}, malformedRange(text, "invalid network %q", strings.TrimSpace(networkText))
	}

	maskText = strings.TrimSpace(maskText)
	if isDecimal(maskText) {
		bits, err := strconv.Atoi(maskText)
		if err != nil || bits > network.BitLen() {
			return RangeSpec{}, malformedRange(text, "prefix length %s out of range for %s", maskText, network.Version())
		}

		return RangeSpec{kind: RangeCIDR, first: network, bits: bits}, nil
	}

	mask, err := ParseAddress(maskText)
	if err != nil {
		return RangeSpec{}, malformedRange(text, "invalid netmask %q", maskText)
	}

	if !sameVersion(network, mask) {
		return RangeSpec{}, malformedRange(text, "netmask %s does not match %s network", mask.Version(), network.Version())
	}

	bits := onesCount(mask.Bytes())
	if strictNetmask {
		var contiguous bool
		bits, contiguous = contiguousPrefixLen(mask.Bytes())
		if !contiguous {
			return RangeSpec{}, malformedRange(text, "non-contiguous netmask %s", mask)
		}
	}

	return RangeSpec{kind: RangeNetmask, first: network, last: mask, bits: bits}, nil
}

// parsePartialPrefix expands "a.", "a.b." or "a.b.c." to the equivalent
// zero-padded IPv4 CIDR.
func parsePartialPrefix(text, s string) (RangeSpec, error) {
	segments := strings.Split(strings.TrimSuffix(s, "."), ".")
	if len(segments) > maxPartialPrefixOctets {
		return RangeSpec{}, malformedRange(text, "partial prefix has more than %d octets", maxPartialPrefixOctets)
	}

	octets := make([]string, 0, 4)
	for _, segment := range segments {
		if segment == "" {
			return RangeSpec{}, malformedRange(text, "empty octet in partial prefix")
		}
		octets = append(octets, segment)
	}
	for len(octets) < 4 {
		octets = append(octets, "0")
	}

	network, err := ParseAddress(strings.Join(octets, "."))
	if err != nil || network.Version() != V4 {
		return RangeSpec{}, malformedRange(text, "invalid partial prefix")
	}

	return RangeSpec{kind: RangeCIDR, first: network, bits: len(segments) * 8}, nil
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Kind returns the notation variant of r.
func (r RangeSpec) Kind() RangeKind {
	return r.kind
}

// Addr returns the address of a RangeSingle.
func (r RangeSpec) Addr() Address {
	if r.kind != RangeSingle {
		return Address{}
	}
	return r.first
}

// From returns the lower bound as written for a RangeExplicit.
func (r RangeSpec) From() Address {
	if r.kind != RangeExplicit {
		return Address{}
	}
	return r.first
}

// To returns the upper bound as written for a RangeExplicit.
func (r RangeSpec) To() Address {
	if r.kind != RangeExplicit {
		return Address{}
	}
	return r.last
}

// Network returns the network address of a RangeCIDR or RangeNetmask.
func (r RangeSpec) Network() Address {
	if r.kind != RangeCIDR && r.kind != RangeNetmask {
		return Address{}
	}
	return r.first
}

// Mask returns the netmask of a RangeNetmask.
func (r RangeSpec) Mask() Address {
	if r.kind != RangeNetmask {
		return Address{}
	}
	return r.last
}

// Bits returns the prefix length used for matching a RangeCIDR or
// RangeNetmask, and -1 for other kinds.
func (r RangeSpec) Bits() int {
	if r.kind != RangeCIDR && r.kind != RangeNetmask {
		return -1
	}
	return r.bits
}

// Version returns the address family the range applies to.
func (r RangeSpec) Version() Version {
	return r.first.Version()
}

// Contains reports whether addr is a member of r.
//
// Addresses of a different family than r never match.
func (r RangeSpec) Contains(addr Address) bool {
	if !addr.IsValid() || !sameVersion(addr, r.first) {
		return false
	}

	switch r.kind {
	case RangeSingle:
		return addr.Compare(r.first) == 0
	case RangeExplicit:
		if addr.Version() != r.last.Version() {
			return false
		}
		return r.IPRange().Contains(addr.ip)
	case RangeCIDR, RangeNetmask:
		return leadingBitsEqual(addr.Bytes(), r.first.Bytes(), r.bits)
	default:
		return false
	}
}

// IPRange returns the inclusive address range covered by r. Explicit bounds
// are ordered. The zero IPRange is returned for the zero RangeSpec.
func (r RangeSpec) IPRange() netipx.IPRange {
	switch r.kind {
	case RangeSingle:
		return netipx.IPRangeFrom(r.first.ip, r.first.ip)
	case RangeExplicit:
		from, to := r.first, r.last
		if from.Compare(to) > 0 {
			from, to = to, from
		}
		return netipx.IPRangeFrom(from.ip, to.ip)
	case RangeCIDR, RangeNetmask:
		return netipx.RangeOfPrefix(netip.PrefixFrom(r.first.ip, r.bits).Masked())
	default:
		return netipx.IPRange{}
	}
}

// String returns r in the notation it was parsed from, using canonical
// address text. Partial prefixes render as CIDR.
func (r RangeSpec) String() string {
	switch r.kind {
	case RangeSingle:
		return r.first.String()
	case RangeExplicit:
		return r.first.String() + "-" + r.last.String()
	case RangeCIDR:
		return r.first.String() + "/" + strconv.Itoa(r.bits)
	case RangeNetmask:
		return r.first.String() + "/" + r.last.String()
	default:
		return ""
	}
}
