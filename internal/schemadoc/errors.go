package schemadoc

import "errors"

var (
	ErrDuplicate   = errors.New("schemadoc: duplicate type name")
	ErrUnknownType = errors.New("schemadoc: unknown type")
	ErrUnknownKind = errors.New("schemadoc: unknown kind")
	ErrMissingRef  = errors.New("schemadoc: missing type reference")
	ErrFormat      = errors.New("schemadoc: unsupported document format")
)
