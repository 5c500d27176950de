// Package schemadoc reads and writes descriptor sets kept outside Go code.
//
// A document is a flat list of named declarations. References between them
// are by name and may be recursive; the built-in primitive names (u8, i32,
// String, bool, ...) are always in scope.
//
//	[[types]]
//	name = "Packet"
//	kind = "struct"
//	fields = [ { name = "id", type = "u32" }, { name = "body", type = "Body" } ]
//
//	[[types]]
//	name = "Body"
//	kind = "bytes"
//	max_len = 512
package schemadoc

// Document is the on-disk form. The same shape is used for TOML, YAML and
// CBOR.
type Document struct {
	Types []Decl `toml:"types" yaml:"types" cbor:"types"`
}

// Decl declares one named type. Which of the reference fields are read
// depends on Kind:
//
//	option, newtype_struct, seq  Type
//	map                          Key, Val
//	tuple, tuple_struct          Elems
//	struct                       Fields
//	enum                         Variants
//
// MaxLen bounds string, bytes, seq and map. MaxSize is a manual size
// override for the declared type and is trusted as-is.
type Decl struct {
	Name     string        `toml:"name" yaml:"name" cbor:"name"`
	Kind     string        `toml:"kind" yaml:"kind" cbor:"kind"`
	Type     string        `toml:"type,omitempty" yaml:"type,omitempty" cbor:"type,omitempty"`
	Key      string        `toml:"key,omitempty" yaml:"key,omitempty" cbor:"key,omitempty"`
	Val      string        `toml:"val,omitempty" yaml:"val,omitempty" cbor:"val,omitempty"`
	Elems    []string      `toml:"elems,omitempty" yaml:"elems,omitempty" cbor:"elems,omitempty"`
	Fields   []FieldDecl   `toml:"fields,omitempty" yaml:"fields,omitempty" cbor:"fields,omitempty"`
	Variants []VariantDecl `toml:"variants,omitempty" yaml:"variants,omitempty" cbor:"variants,omitempty"`
	MaxLen   *int          `toml:"max_len,omitempty" yaml:"max_len,omitempty" cbor:"max_len,omitempty"`
	MaxSize  *int          `toml:"max_size,omitempty" yaml:"max_size,omitempty" cbor:"max_size,omitempty"`
}

// FieldDecl is a struct field or struct-variant field.
type FieldDecl struct {
	Name string `toml:"name" yaml:"name" cbor:"name"`
	Type string `toml:"type" yaml:"type" cbor:"type"`
}

// VariantDecl is one enum variant. Kind may be left empty; it is then taken
// from whichever of Type, Elems or Fields is set, and unit when none is.
type VariantDecl struct {
	Name   string      `toml:"name" yaml:"name" cbor:"name"`
	Kind   string      `toml:"kind,omitempty" yaml:"kind,omitempty" cbor:"kind,omitempty"`
	Type   string      `toml:"type,omitempty" yaml:"type,omitempty" cbor:"type,omitempty"`
	Elems  []string    `toml:"elems,omitempty" yaml:"elems,omitempty" cbor:"elems,omitempty"`
	Fields []FieldDecl `toml:"fields,omitempty" yaml:"fields,omitempty" cbor:"fields,omitempty"`
}

func (v VariantDecl) kind() string {
	switch {
	case v.Kind != "":
		return v.Kind
	case v.Type != "":
		return "newtype"
	case len(v.Elems) > 0:
		return "tuple"
	case len(v.Fields) > 0:
		return "struct"
	default:
		return "unit"
	}
}
