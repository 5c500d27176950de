package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"unicode/utf8"
)

// Reader decodes values written by Writer.
// Like Writer it keeps the first error and turns every later call into a
// no-op that returns it.
type Reader struct {
	r         io.Reader
	bytesRead int
	err       error
	buf       [8]byte
}

// NewReader creates a Reader over r, typically a *bytes.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Error returns the first error that occurred during reading, if any.
func (r *Reader) Error() error {
	return r.err
}

// BytesRead returns the number of bytes consumed so far.
func (r *Reader) BytesRead() int {
	return r.bytesRead
}

func (r *Reader) recordError(err error) {
	if r.err == nil && err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = ErrBufferTooSmall
		}
		r.err = err
	}
}

func (r *Reader) readFull(p []byte) error {
	if r.err != nil {
		return r.err
	}
	n, err := io.ReadFull(r.r, p)
	r.bytesRead += n
	if err != nil {
		r.recordError(err)
		return r.err
	}
	return nil
}

func (r *Reader) readByte() (byte, error) {
	if err := r.readFull(r.buf[:1]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// readUvarint reads at most maxBytes bytes of LEB128 and rejects values that
// do not fit in bits.
func (r *Reader) readUvarint(bits int) (uint64, error) {
	maxBytes := (bits + 6) / 7
	var v uint64
	for i := 0; i < maxBytes; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		chunk := uint64(b & 0x7f)
		shift := uint(7 * i)
		if i == maxBytes-1 && bits < 64 && chunk>>(uint(bits)-shift) != 0 {
			r.recordError(ErrOverflow)
			return 0, r.err
		}
		if i == maxBytes-1 && bits == 64 && chunk > 1 {
			r.recordError(ErrOverflow)
			return 0, r.err
		}
		v |= chunk << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
	r.recordError(ErrVarintTooLong)
	return 0, r.err
}

// ReadBool decodes a bool, rejecting bytes other than 0 and 1.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		r.recordError(ErrInvalidBool)
		return false, r.err
	}
}

func (r *Reader) ReadU8() (uint8, error) {
	return r.readByte()
}

func (r *Reader) ReadI8() (int8, error) {
	b, err := r.readByte()
	return int8(b), err
}

func (r *Reader) ReadU16() (uint16, error) {
	v, err := r.readUvarint(16)
	return uint16(v), err
}

func (r *Reader) ReadU32() (uint32, error) {
	v, err := r.readUvarint(32)
	return uint32(v), err
}

func (r *Reader) ReadU64() (uint64, error) {
	return r.readUvarint(64)
}

func (r *Reader) ReadI16() (int16, error) {
	v, err := r.readUvarint(16)
	return int16(UnZigZag(v)), err
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.readUvarint(32)
	return int32(UnZigZag(v)), err
}

func (r *Reader) ReadI64() (int64, error) {
	v, err := r.readUvarint(64)
	return UnZigZag(v), err
}

// ReadU128 decodes a 128-bit unsigned varint.
func (r *Reader) ReadU128() (Uint128, error) {
	var v Uint128
	for i := 0; i < 19; i++ {
		b, err := r.readByte()
		if err != nil {
			return Uint128{}, err
		}
		chunk := uint64(b & 0x7f)
		shift := uint(7 * i)
		if i == 18 && chunk > 3 {
			r.recordError(ErrOverflow)
			return Uint128{}, r.err
		}
		switch {
		case shift < 64:
			v.Lo |= chunk << shift
			if shift > 57 {
				v.Hi |= chunk >> (64 - shift)
			}
		default:
			v.Hi |= chunk << (shift - 64)
		}
		if b&0x80 == 0 {
			return v, nil
		}
	}
	r.recordError(ErrVarintTooLong)
	return Uint128{}, r.err
}

// ReadI128 decodes a zig-zag mapped 128-bit varint.
func (r *Reader) ReadI128() (Int128, error) {
	u, err := r.ReadU128()
	if err != nil {
		return Int128{}, err
	}
	return unZigZag128(u), nil
}

func (r *Reader) ReadF32() (float32, error) {
	if err := r.readFull(r.buf[:4]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(r.buf[:4])), nil
}

func (r *Reader) ReadF64() (float64, error) {
	if err := r.readFull(r.buf[:8]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[:8])), nil
}

// ReadLen reads a length prefix and checks it against limit. A negative
// limit disables the check.
func (r *Reader) ReadLen(limit int) (int, error) {
	v, err := r.readUvarint(64)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 || (limit >= 0 && v > uint64(limit)) {
		r.recordError(ErrTooLong)
		return 0, r.err
	}
	return int(v), nil
}

// ReadChar decodes a length-prefixed UTF-8 encoded rune.
func (r *Reader) ReadChar() (rune, error) {
	n, err := r.ReadLen(utf8.UTFMax)
	if err != nil {
		return 0, err
	}
	var enc [utf8.UTFMax]byte
	if err := r.readFull(enc[:n]); err != nil {
		return 0, err
	}
	c, size := utf8.DecodeRune(enc[:n])
	if n == 0 || c == utf8.RuneError || size != n {
		r.recordError(ErrInvalidChar)
		return 0, r.err
	}
	return c, nil
}

// ReadString decodes a length-prefixed UTF-8 string of at most limit bytes.
func (r *Reader) ReadString(limit int) (string, error) {
	b, err := r.ReadBytes(limit)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		r.recordError(ErrInvalidUTF8)
		return "", r.err
	}
	return string(b), nil
}

// ReadBytes decodes a length-prefixed byte array of at most limit bytes.
func (r *Reader) ReadBytes(limit int) ([]byte, error) {
	n, err := r.ReadLen(limit)
	if err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	// Copy rather than allocate n up front: n comes off the wire.
	var buf bytes.Buffer
	m, err := io.CopyN(&buf, r.r, int64(n))
	r.bytesRead += int(m)
	if err != nil {
		r.recordError(err)
		return nil, r.err
	}
	return buf.Bytes(), nil
}

// ReadOption reads the presence tag of an optional value.
func (r *Reader) ReadOption() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		r.recordError(ErrInvalidOption)
		return false, r.err
	}
}

// ReadVariant reads an enum discriminant.
func (r *Reader) ReadVariant() (uint32, error) {
	return r.ReadU32()
}
