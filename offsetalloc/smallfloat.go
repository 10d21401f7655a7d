// Package offsetalloc implements a two-level segregated-fit offset allocator.
// It partitions an abstract range [0, size) into variable-sized regions and
// hands back offsets into that range; it never touches backing memory itself.
package offsetalloc

import (
	"math"
	"math/bits"
)

// mantissaBits controls the bounded per-class overhead: 1/2^mantissaBits.
const (
	mantissaBits  = 3
	mantissaValue = 1 << mantissaBits
	mantissaMask  = mantissaValue - 1
)

// smallFloatRoundUp converts a byte count to a bin index whose decoded size
// is >= size. Sizes below mantissaValue are denormals and map 1:1.
func smallFloatRoundUp(size uint32) uint32 {
	if size < mantissaValue {
		return size
	}

	highestSetBit := uint32(bits.Len32(size)) - 1
	mantissaStartBit := highestSetBit - mantissaBits
	exponent := mantissaStartBit + 1
	mantissa := (size >> mantissaStartBit) & mantissaMask

	lowBitsMask := uint32(1<<mantissaStartBit) - 1
	if size&lowBitsMask != 0 {
		mantissa++ // round up
	}

	// + rather than | lets a mantissa overflow ripple into the exponent.
	return (exponent << mantissaBits) + mantissa
}

// smallFloatRoundDown converts a byte count to a bin index whose decoded
// size is <= size.
func smallFloatRoundDown(size uint32) uint32 {
	if size < mantissaValue {
		return size
	}

	highestSetBit := uint32(bits.Len32(size)) - 1
	mantissaStartBit := highestSetBit - mantissaBits
	exponent := mantissaStartBit + 1
	mantissa := (size >> mantissaStartBit) & mantissaMask

	return (exponent << mantissaBits) | mantissa
}

// smallFloatDecode returns the byte count represented by a bin index.
//
// RoundUp's carry can push the encoding one step past the largest bin whose
// true value fits in a uint32 (the round-up of 0xFFFFFFFF is one such bin):
// the arithmetic result would be exactly 1<<32. Decode saturates to
// math.MaxUint32 in that case rather than silently wrapping to 0, which
// would otherwise violate decode(round_up(x)) >= x right at the top of the
// range.
func smallFloatDecode(bin uint32) uint32 {
	exponent := bin >> mantissaBits
	mantissa := bin & mantissaMask
	if exponent == 0 {
		return mantissa
	}
	value := uint64(mantissa|mantissaValue) << (exponent - 1)
	if value > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(value)
}
