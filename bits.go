package ipmatch

import "math/bits"

// leadingBitsEqual reports whether a and b agree on their first n bits.
//
// Both slices must have the same length and n must not exceed their bit
// length.
func leadingBitsEqual(a, b []byte, n int) bool {
	if len(a) != len(b) || n < 0 || n > len(a)*8 {
		return false
	}

	full := n / 8
	for i := range full {
		if a[i] != b[i] {
			return false
		}
	}

	rem := n % 8
	if rem == 0 {
		return true
	}

	mask := byte(0xff) << (8 - rem)
	return a[full]&mask == b[full]&mask
}

// onesCount returns the number of set bits in mask, regardless of position.
func onesCount(mask []byte) int {
	n := 0
	for _, b := range mask {
		n += bits.OnesCount8(b)
	}
	return n
}

// contiguousPrefixLen returns the number of leading one bits in mask and
// whether every bit after them is zero.
func contiguousPrefixLen(mask []byte) (int, bool) {
	total := len(mask) * 8

	ones := 0
	for ones < total && addrBit(mask, ones) == 1 {
		ones++
	}

	for i := ones; i < total; i++ {
		if addrBit(mask, i) == 1 {
			return ones, false
		}
	}

	return ones, true
}

func addrBit(addr []byte, bitIndex int) int {
	byteIndex := bitIndex / 8
	shift := uint(7 - (bitIndex % 8))
	if ((addr[byteIndex] >> shift) & 1) == 1 {
		return 1
	}
	return 0
}
