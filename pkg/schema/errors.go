package schema

import "errors"

var (
	ErrNilDescriptor = errors.New("schema: nil descriptor")
	ErrNilType       = errors.New("schema: nil type instance")
	ErrConflict      = errors.New("schema: conflicting registration")
	ErrInvalid       = errors.New("schema: invalid descriptor")
)
