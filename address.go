package ipmatch

import (
	"net/netip"
	"strings"
)

// Version is the address family of an Address.
type Version uint8

const (
	// VersionUnknown is reported for the zero Address.
	VersionUnknown Version = 0
	// V4 is a 32-bit IPv4 address.
	V4 Version = 4
	// V6 is a 128-bit IPv6 address, including IPv4-embedded forms.
	V6 Version = 6
)

// String returns the canonical text representation of v.
func (v Version) String() string {
	switch v {
	case V4:
		return "IPv4"
	case V6:
		return "IPv6"
	default:
		return "unknown"
	}
}

// BitLen returns the address width for v, or 0 for VersionUnknown.
func (v Version) BitLen() int {
	switch v {
	case V4:
		return 32
	case V6:
		return 128
	default:
		return 0
	}
}

// Address is a parsed IPv4 or IPv6 address in fixed-width binary form.
//
// The zero value is not a valid address. Address values are comparable and
// safe to copy.
type Address struct {
	ip netip.Addr
}

// ParseAddress parses text as an IPv4 dotted quad or an IPv6 literal.
//
// Surrounding whitespace is ignored. IPv6 literals with an embedded IPv4 tail
// (for example "::127.0.0.1") are IPv6. Zoned IPv6 literals are rejected.
// The unspecified addresses 0.0.0.0 and :: parse successfully.
//
// On failure the returned error is a *ParseError wrapping ErrMalformedAddress.
func ParseAddress(text string) (Address, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Address{}, &ParseError{Input: text, Err: ErrMalformedAddress}
	}

	if strings.IndexByte(s, '%') >= 0 {
		return Address{}, &ParseError{Input: text, Err: ErrMalformedAddress}
	}

	ip, err := netip.ParseAddr(s)
	if err != nil {
		return Address{}, &ParseError{Input: text, Err: ErrMalformedAddress}
	}

	return Address{ip: ip}, nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(text string) Address {
	addr, err := ParseAddress(text)
	if err != nil {
		panic(err)
	}
	return addr
}

// AddressFrom wraps ip. The zone, if any, is dropped.
func AddressFrom(ip netip.Addr) Address {
	return Address{ip: ip.WithZone("")}
}

// IsValidAddress reports whether text parses as an IPv4 or IPv6 address.
func IsValidAddress(text string) bool {
	_, err := ParseAddress(text)
	return err == nil
}

// IsIPv6 reports whether text parses as an IPv6 address.
func IsIPv6(text string) bool {
	addr, err := ParseAddress(text)
	return err == nil && addr.Version() == V6
}

// IsValid reports whether a was produced by a successful parse.
func (a Address) IsValid() bool {
	return a.ip.IsValid()
}

// Version returns the address family of a.
func (a Address) Version() Version {
	switch {
	case !a.ip.IsValid():
		return VersionUnknown
	case a.ip.Is4():
		return V4
	default:
		return V6
	}
}

// BitLen returns 32 for IPv4, 128 for IPv6 and 0 for the zero Address.
func (a Address) BitLen() int {
	return a.ip.BitLen()
}

// Bytes returns the 4 or 16 byte network-order form of a.
func (a Address) Bytes() []byte {
	return a.ip.AsSlice()
}

// Addr returns a as a netip.Addr.
func (a Address) Addr() netip.Addr {
	return a.ip
}

// IsUnspecified reports whether a is 0.0.0.0 or ::.
func (a Address) IsUnspecified() bool {
	return a.ip.IsUnspecified()
}

// Compare returns -1, 0 or 1 ordering a and b by family and then by their
// big-endian binary value.
func (a Address) Compare(b Address) int {
	return a.ip.Compare(b.ip)
}

// String returns the canonical text form of a.
func (a Address) String() string {
	if !a.ip.IsValid() {
		return ""
	}
	return a.ip.String()
}

// sameVersion reports whether all addresses share one valid family.
func sameVersion(first Address, rest ...Address) bool {
	v := first.Version()
	if v == VersionUnknown {
		return false
	}
	for _, addr := range rest {
		if addr.Version() != v {
			return false
		}
	}
	return true
}
