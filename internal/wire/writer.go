// Package wire encodes and decodes values in the varint layout that
// pkg/maxsize bounds.
package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// Writer encodes values in the varint wire format.
// It wraps an io.Writer (typically a bytes.Buffer) and remembers the first
// error; every later call is a no-op, so callers check Error once at the end.
type Writer struct {
	w            io.Writer
	err          error // first error encountered
	bytesWritten int
	scratch      [19]byte
}

// NewWriter creates a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Bytes returns the written bytes if the underlying writer is a
// *bytes.Buffer and no error occurred.
func (w *Writer) Bytes() []byte {
	if w.err != nil {
		return nil
	}
	if bb, ok := w.w.(*bytes.Buffer); ok {
		return bb.Bytes()
	}
	return nil
}

// Error returns the first error that occurred during writing, if any.
func (w *Writer) Error() error {
	return w.err
}

// BytesWritten returns the number of bytes written so far.
func (w *Writer) BytesWritten() int {
	return w.bytesWritten
}

func (w *Writer) recordError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.bytesWritten += n
	w.recordError(err)
}

func (w *Writer) writeUvarint(n uint64) {
	w.write(AppendUvarint(w.scratch[:0], n))
}

// WriteBool writes 0x00 or 0x01.
func (w *Writer) WriteBool(val bool) {
	if val {
		w.write([]byte{1})
	} else {
		w.write([]byte{0})
	}
}

// WriteU8 writes a single raw byte.
func (w *Writer) WriteU8(val uint8) {
	w.write([]byte{val})
}

// WriteI8 writes a single raw byte.
func (w *Writer) WriteI8(val int8) {
	w.write([]byte{byte(val)})
}

func (w *Writer) WriteU16(val uint16) { w.writeUvarint(uint64(val)) }
func (w *Writer) WriteU32(val uint32) { w.writeUvarint(uint64(val)) }
func (w *Writer) WriteU64(val uint64) { w.writeUvarint(val) }

// Signed integers are zig-zag mapped before varint encoding.

func (w *Writer) WriteI16(val int16) { w.writeUvarint(ZigZag(int64(val))) }
func (w *Writer) WriteI32(val int32) { w.writeUvarint(ZigZag(int64(val))) }
func (w *Writer) WriteI64(val int64) { w.writeUvarint(ZigZag(val)) }

// WriteU128 writes a 128-bit unsigned varint.
func (w *Writer) WriteU128(val Uint128) {
	w.write(appendUvarint128(w.scratch[:0], val))
}

// WriteI128 writes a zig-zag mapped 128-bit varint.
func (w *Writer) WriteI128(val Int128) {
	w.WriteU128(zigZag128(val))
}

// WriteF32 writes the IEEE 754 bits little-endian.
func (w *Writer) WriteF32(val float32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], math.Float32bits(val))
	w.write(w.scratch[:4])
}

// WriteF64 writes the IEEE 754 bits little-endian.
func (w *Writer) WriteF64(val float64) {
	binary.LittleEndian.PutUint64(w.scratch[:8], math.Float64bits(val))
	w.write(w.scratch[:8])
}

// WriteChar writes a Unicode scalar as its length-prefixed UTF-8 form.
func (w *Writer) WriteChar(val rune) {
	if !utf8.ValidRune(val) {
		w.recordError(ErrInvalidChar)
		return
	}
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], val)
	w.WriteLen(n)
	w.write(enc[:n])
}

// WriteString writes a varint byte length followed by the UTF-8 bytes.
func (w *Writer) WriteString(val string) {
	if !utf8.ValidString(val) {
		w.recordError(ErrInvalidUTF8)
		return
	}
	w.WriteLen(len(val))
	if len(val) > 0 {
		w.write([]byte(val))
	}
}

// WriteBytes writes a varint length followed by the raw bytes.
func (w *Writer) WriteBytes(val []byte) {
	w.WriteLen(len(val))
	if len(val) > 0 {
		w.write(val)
	}
}

// WriteLen writes a sequence, map, string or byte array length prefix.
func (w *Writer) WriteLen(n int) {
	w.writeUvarint(uint64(n))
}

// WriteNone writes an absent option.
func (w *Writer) WriteNone() {
	w.write([]byte{0})
}

// WriteSome writes the presence tag. The caller writes the payload next.
func (w *Writer) WriteSome() {
	w.write([]byte{1})
}

// WriteVariant writes an enum discriminant: the zero-based variant index as a
// varint. The caller writes the variant's payload next, if any.
func (w *Writer) WriteVariant(index uint32) {
	w.writeUvarint(uint64(index))
}
