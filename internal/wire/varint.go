package wire

import "github.com/wireschema/wireschema/pkg/schema"

// AppendUvarint appends n as an unsigned LEB128 varint.
func AppendUvarint(buf []byte, n uint64) []byte {
	for n >= 0x80 {
		buf = append(buf, byte(n)|0x80)
		n >>= 7
	}
	return append(buf, byte(n))
}

// ZigZag maps signed integers onto unsigned ones so that values of small
// magnitude stay small: 0, -1, 1, -2 become 0, 1, 2, 3.
func ZigZag(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

// UnZigZag is the inverse of ZigZag.
func UnZigZag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// Uint128 is an unsigned 128-bit integer.
type Uint128 struct {
	Hi, Lo uint64
}

// Int128 is a two's complement signed 128-bit integer.
type Int128 struct {
	Hi, Lo uint64
}

// appendUvarint128 encodes a 128-bit value seven bits at a time, low bits
// first, exactly like AppendUvarint does for 64 bits.
func appendUvarint128(buf []byte, v Uint128) []byte {
	for v.Hi != 0 || v.Lo >= 0x80 {
		buf = append(buf, byte(v.Lo)|0x80)
		v.Lo = v.Lo>>7 | v.Hi<<57
		v.Hi >>= 7
	}
	return append(buf, byte(v.Lo))
}

// zigZag128 is ZigZag for Int128.
func zigZag128(v Int128) Uint128 {
	sign := uint64(int64(v.Hi) >> 63)
	hi := v.Hi<<1 | v.Lo>>63
	lo := v.Lo << 1
	return Uint128{Hi: hi ^ sign, Lo: lo ^ sign}
}

func unZigZag128(u Uint128) Int128 {
	sign := -(u.Lo & 1)
	lo := u.Lo>>1 | u.Hi<<63
	hi := u.Hi >> 1
	return Int128{Hi: hi ^ sign, Lo: lo ^ sign}
}

func (Uint128) WireSchema() *schema.NamedType { return schema.U128 }
func (Int128) WireSchema() *schema.NamedType  { return schema.I128 }
