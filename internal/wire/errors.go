package wire

import (
	"errors"
	"fmt"
)

var (
	ErrBufferTooSmall = errors.New("wire: buffer too small")
	ErrInvalidUTF8    = errors.New("wire: invalid utf8 string")
	ErrOverflow       = errors.New("wire: integer overflow")
	ErrVarintTooLong  = errors.New("wire: varint too long")
	ErrInvalidBool    = errors.New("wire: invalid bool byte")
	ErrInvalidOption  = errors.New("wire: invalid option tag")
	ErrInvalidChar    = errors.New("wire: invalid char")
	ErrTooLong        = errors.New("wire: value exceeds maxlen")
	ErrUnsupported    = errors.New("wire: unsupported type")
	ErrTrailingBytes  = errors.New("wire: trailing bytes after value")
)

// EncodeError is returned by Marshal.
type EncodeError struct {
	Type string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("wire: encoding %s: %v", e.Type, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError is returned by Unmarshal. Offset is the number of bytes
// consumed when decoding stopped.
type DecodeError struct {
	Type   string
	Offset int
	Err    error
}

func (d *DecodeError) Error() string {
	return fmt.Sprintf("wire: decoding %s at byte %d: %v", d.Type, d.Offset, d.Err)
}

func (d *DecodeError) Unwrap() error {
	return d.Err
}
