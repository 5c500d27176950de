// Package schema describes wire shapes.
//
// A NamedType is a static description of how a Go type is laid out on the
// wire. Descriptors are built once, shared by pointer and never mutated after
// construction, so any number of goroutines may read them without locking.
package schema

// Kind selects which variant of DataModelType is populated.
type Kind uint8

const (
	KindBool Kind = iota
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindUsize
	KindIsize
	KindF32
	KindF64
	KindChar
	KindString
	KindByteArray
	KindOption
	KindUnit
	KindUnitStruct
	KindNewtypeStruct
	KindSeq
	KindTuple
	KindTupleStruct
	KindMap
	KindStruct
	KindEnum
	KindSchema
	kindCount // sentinel, keep last
)

// NamedType identifies a type by name and structural shape.
type NamedType struct {
	Name string
	Type *DataModelType
}

// NamedValue is a struct field, or a field of a struct-like enum variant.
type NamedValue struct {
	Name string
	Type *NamedType
}

// NamedVariant is one variant of an enum. Its position in the enclosing
// slice is its zero-based wire discriminant.
type NamedVariant struct {
	Name  string
	Shape VariantShape
}

// VariantKind selects the payload form of an enum variant.
type VariantKind uint8

const (
	VariantUnit VariantKind = iota
	VariantNewtype
	VariantTuple
	VariantStruct
)

// VariantShape is the payload of an enum variant.
type VariantShape struct {
	Kind   VariantKind
	Inner  *NamedType    // VariantNewtype
	Elems  []*NamedType  // VariantTuple
	Fields []*NamedValue // VariantStruct
}

// DataModelType is the structural shape of a type. Only the fields relevant
// to Kind are set; the rest stay at their zero values.
type DataModelType struct {
	Kind Kind

	// MaxLen bounds String, ByteArray, Seq and Map. Nil means unbounded.
	// When set it is an exact upper bound on byte length or element count.
	MaxLen *int

	Inner    *NamedType      // Option, NewtypeStruct
	Element  *NamedType      // Seq
	Key      *NamedType      // Map
	Val      *NamedType      // Map
	Elems    []*NamedType    // Tuple, TupleStruct
	Fields   []*NamedValue   // Struct
	Variants []*NamedVariant // Enum
}

// IsPrimitive reports whether k is a fixed scalar with no children.
func (k Kind) IsPrimitive() bool {
	return k <= KindChar
}

// IsBoundedContainer reports whether k carries a MaxLen.
func (k Kind) IsBoundedContainer() bool {
	switch k {
	case KindString, KindByteArray, KindSeq, KindMap:
		return true
	default:
		return false
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k < kindCount
}

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindI128:
		return "i128"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindU128:
		return "u128"
	case KindUsize:
		return "usize"
	case KindIsize:
		return "isize"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindByteArray:
		return "bytes"
	case KindOption:
		return "option"
	case KindUnit:
		return "unit"
	case KindUnitStruct:
		return "unit_struct"
	case KindNewtypeStruct:
		return "newtype_struct"
	case KindSeq:
		return "seq"
	case KindTuple:
		return "tuple"
	case KindTupleStruct:
		return "tuple_struct"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindSchema:
		return "schema"
	default:
		return "unknown_kind"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k := Kind(0); k < kindCount; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

func (k VariantKind) String() string {
	switch k {
	case VariantUnit:
		return "unit"
	case VariantNewtype:
		return "newtype"
	case VariantTuple:
		return "tuple"
	case VariantStruct:
		return "struct"
	default:
		return "unknown_variant"
	}
}
