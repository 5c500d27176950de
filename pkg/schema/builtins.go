package schema

// Primitive descriptors. These are the single shared instances for each
// scalar; compare by pointer or by Kind.
var (
	Bool  = &NamedType{Name: "bool", Type: &DataModelType{Kind: KindBool}}
	I8    = &NamedType{Name: "i8", Type: &DataModelType{Kind: KindI8}}
	I16   = &NamedType{Name: "i16", Type: &DataModelType{Kind: KindI16}}
	I32   = &NamedType{Name: "i32", Type: &DataModelType{Kind: KindI32}}
	I64   = &NamedType{Name: "i64", Type: &DataModelType{Kind: KindI64}}
	I128  = &NamedType{Name: "i128", Type: &DataModelType{Kind: KindI128}}
	U8    = &NamedType{Name: "u8", Type: &DataModelType{Kind: KindU8}}
	U16   = &NamedType{Name: "u16", Type: &DataModelType{Kind: KindU16}}
	U32   = &NamedType{Name: "u32", Type: &DataModelType{Kind: KindU32}}
	U64   = &NamedType{Name: "u64", Type: &DataModelType{Kind: KindU64}}
	U128  = &NamedType{Name: "u128", Type: &DataModelType{Kind: KindU128}}
	Usize = &NamedType{Name: "usize", Type: &DataModelType{Kind: KindUsize}}
	Isize = &NamedType{Name: "isize", Type: &DataModelType{Kind: KindIsize}}
	F32   = &NamedType{Name: "f32", Type: &DataModelType{Kind: KindF32}}
	F64   = &NamedType{Name: "f64", Type: &DataModelType{Kind: KindF64}}
	Char  = &NamedType{Name: "char", Type: &DataModelType{Kind: KindChar}}

	Unit = &NamedType{Name: "()", Type: &DataModelType{Kind: KindUnit}}

	// String and Bytes are the unbounded forms.
	String = &NamedType{Name: "String", Type: &DataModelType{Kind: KindString}}
	Bytes  = &NamedType{Name: "Bytes", Type: &DataModelType{Kind: KindByteArray}}

	// Meta describes a descriptor itself. It is opaque to size inference.
	Meta = &NamedType{Name: "NamedType", Type: &DataModelType{Kind: KindSchema}}
)

// Primitives returns the shared primitive descriptors keyed by name.
func Primitives() map[string]*NamedType {
	return map[string]*NamedType{
		Bool.Name:   Bool,
		I8.Name:     I8,
		I16.Name:    I16,
		I32.Name:    I32,
		I64.Name:    I64,
		I128.Name:   I128,
		U8.Name:     U8,
		U16.Name:    U16,
		U32.Name:    U32,
		U64.Name:    U64,
		U128.Name:   U128,
		Usize.Name:  Usize,
		Isize.Name:  Isize,
		F32.Name:    F32,
		F64.Name:    F64,
		Char.Name:   Char,
		Unit.Name:   Unit,
		String.Name: String,
		Bytes.Name:  Bytes,
		Meta.Name:   Meta,
	}
}

// Len returns a pointer to n for use as a MaxLen.
func Len(n int) *int {
	return &n
}

// Constructors -------------------------------------------------------------

func Named(name string, t *DataModelType) *NamedType {
	return &NamedType{Name: name, Type: t}
}

func StringOf(maxLen *int) *DataModelType {
	return &DataModelType{Kind: KindString, MaxLen: maxLen}
}

func BytesOf(maxLen *int) *DataModelType {
	return &DataModelType{Kind: KindByteArray, MaxLen: maxLen}
}

func OptionOf(inner *NamedType) *DataModelType {
	return &DataModelType{Kind: KindOption, Inner: inner}
}

func UnitStructOf() *DataModelType {
	return &DataModelType{Kind: KindUnitStruct}
}

func NewtypeOf(inner *NamedType) *DataModelType {
	return &DataModelType{Kind: KindNewtypeStruct, Inner: inner}
}

func SeqOf(elem *NamedType, maxLen *int) *DataModelType {
	return &DataModelType{Kind: KindSeq, Element: elem, MaxLen: maxLen}
}

func TupleOf(elems ...*NamedType) *DataModelType {
	return &DataModelType{Kind: KindTuple, Elems: elems}
}

func TupleStructOf(elems ...*NamedType) *DataModelType {
	return &DataModelType{Kind: KindTupleStruct, Elems: elems}
}

func MapOf(key, val *NamedType, maxLen *int) *DataModelType {
	return &DataModelType{Kind: KindMap, Key: key, Val: val, MaxLen: maxLen}
}

func StructOf(fields ...*NamedValue) *DataModelType {
	return &DataModelType{Kind: KindStruct, Fields: fields}
}

func EnumOf(variants ...*NamedVariant) *DataModelType {
	return &DataModelType{Kind: KindEnum, Variants: variants}
}

func Field(name string, t *NamedType) *NamedValue {
	return &NamedValue{Name: name, Type: t}
}

// Variant helpers ----------------------------------------------------------

func UnitVariant(name string) *NamedVariant {
	return &NamedVariant{Name: name, Shape: VariantShape{Kind: VariantUnit}}
}

func NewtypeVariant(name string, inner *NamedType) *NamedVariant {
	return &NamedVariant{Name: name, Shape: VariantShape{Kind: VariantNewtype, Inner: inner}}
}

func TupleVariant(name string, elems ...*NamedType) *NamedVariant {
	return &NamedVariant{Name: name, Shape: VariantShape{Kind: VariantTuple, Elems: elems}}
}

func StructVariant(name string, fields ...*NamedValue) *NamedVariant {
	return &NamedVariant{Name: name, Shape: VariantShape{Kind: VariantStruct, Fields: fields}}
}
