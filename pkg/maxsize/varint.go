package maxsize

import (
	"math"
	"math/bits"
)

// VarintSize returns the number of bytes n occupies as an unsigned LEB128
// varint: seven payload bits per byte, high bit set on every byte but the
// last. It must agree byte for byte with the wire encoder.
func VarintSize(n uint64) int {
	if n == 0 {
		return 1
	}
	return (bits.Len64(n) + 6) / 7
}

// Worst-case encoded sizes of the fixed-shape kinds. Signed integers are
// zig-zag mapped before varint encoding, so they share the unsigned bounds.
const (
	BoolSize = 1
	U8Size   = 1
	U16Size  = 3  // ceil(16/7)
	U32Size  = 5  // ceil(32/7)
	U64Size  = 10 // ceil(64/7)
	U128Size = 19 // ceil(128/7)
	F32Size  = 4
	F64Size  = 8
	CharSize = 5 // length byte + up to 4 UTF-8 bytes

	// EmptyEnumTagSize is the discriminant cost charged to an enum with no
	// variants.
	EmptyEnumTagSize = 1
)

// DiscriminantSize returns the bytes needed for the largest zero-based
// variant index of an enum with the given number of variants.
func DiscriminantSize(variants int) int {
	if variants <= 0 {
		return EmptyEnumTagSize
	}
	return VarintSize(uint64(variants - 1))
}

// checked arithmetic; false means the result does not fit in an int.

func add(a, b int) (int, bool) {
	if a < 0 || b < 0 || b > math.MaxInt-a {
		return 0, false
	}
	return a + b, true
}

func mul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}
