// Package derive builds wire descriptors from Go types by reflection.
//
// Go kinds map onto the data model as follows:
//
//	bool, int8..int64, uint8..uint64, float32, float64   matching scalar
//	int                                                  isize
//	uint, uintptr                                        usize
//	string                                               string
//	[]byte                                               byte array
//	[N]T                                                 tuple of N elements
//	[]T                                                  seq
//	map[K]V                                              map
//	*T                                                   option
//	struct{}                                             unit
//	named empty struct                                   unit struct
//	struct                                               struct of exported fields
//
// Types implementing schema.Schema supply their own descriptor, and the
// registry is consulted before the kind mapping. Field tags are described at
// schema.TagKey. Recursive types come out as cyclic descriptor graphs, which
// size inference reports as unbounded.
package derive

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/wireschema/wireschema/pkg/schema"
)

var (
	ErrUnsupported = errors.New("derive: unsupported kind")
	ErrMaxLen      = errors.New("derive: maxlen on non-container field")
)

// Deriver turns Go types into descriptors. It memoizes every type it has
// seen so that each Go type maps to exactly one descriptor. A Deriver is not
// safe for concurrent use; the descriptors it returns are.
type Deriver struct {
	reg       *schema.Registry
	types     map[reflect.Type]*schema.NamedType
	overrides map[*schema.NamedType]int

	// depth and added track the outermost Type call so a failure can drop
	// every entry it memoized.
	depth int
	added []reflect.Type
}

// New creates a Deriver that consults reg first. A nil reg uses the default
// registry.
func New(reg *schema.Registry) *Deriver {
	if reg == nil {
		reg = schema.Default()
	}
	return &Deriver{
		reg:       reg,
		types:     make(map[reflect.Type]*schema.NamedType),
		overrides: make(map[*schema.NamedType]int),
	}
}

// Of derives the descriptor of rt with a fresh Deriver on the default
// registry.
func Of(rt reflect.Type) (*schema.NamedType, error) {
	return New(nil).Type(rt)
}

// For derives the descriptor of T.
func For[T any]() (*schema.NamedType, error) {
	return Of(reflect.TypeOf((*T)(nil)).Elem())
}

// Overrides returns the manual size overrides found while deriving, keyed by
// the descriptor they apply to. Feed them to maxsize.WithOverrides.
func (d *Deriver) Overrides() map[*schema.NamedType]int {
	out := make(map[*schema.NamedType]int, len(d.overrides))
	for nt, n := range d.overrides {
		out[nt] = n
	}
	return out
}

// Type derives the descriptor of rt. On error nothing derived during the
// call is kept, so a later call reports the same error.
func (d *Deriver) Type(rt reflect.Type) (*schema.NamedType, error) {
	if d.depth == 0 {
		d.added = d.added[:0]
	}
	d.depth++
	nt, err := d.resolve(rt)
	d.depth--
	if d.depth == 0 {
		if err != nil {
			d.forget()
		}
		d.added = d.added[:0]
	}
	return nt, err
}

func (d *Deriver) resolve(rt reflect.Type) (*schema.NamedType, error) {
	if rt == nil {
		return nil, schema.ErrNilType
	}
	if nt, ok := d.types[rt]; ok {
		return nt, nil
	}

	if nt, ok := schema.DescriptorFor(rt); ok {
		if nt == nil {
			return nil, fmt.Errorf("%w: %v returned no descriptor", schema.ErrNilDescriptor, rt)
		}
		d.remember(rt, nt)
		if n, ok := schema.OverrideFor(rt); ok {
			d.overrides[nt] = n
		}
		return nt, nil
	}
	if info, ok := d.reg.Lookup(rt); ok {
		d.remember(rt, info.Schema)
		if info.MaxSize != nil {
			d.overrides[info.Schema] = *info.MaxSize
		}
		return info.Schema, nil
	}

	nt, err := d.byKind(rt)
	if err != nil {
		return nil, err
	}
	if n, ok := schema.OverrideFor(rt); ok {
		d.overrides[nt] = n
	}
	return nt, nil
}

func (d *Deriver) remember(rt reflect.Type, nt *schema.NamedType) {
	d.types[rt] = nt
	d.added = append(d.added, rt)
}

func (d *Deriver) forget() {
	for _, rt := range d.added {
		if nt, ok := d.types[rt]; ok {
			delete(d.overrides, nt)
			delete(d.types, rt)
		}
	}
}

func (d *Deriver) byKind(rt reflect.Type) (*schema.NamedType, error) {
	name := rt.String()
	if prim := primitive(rt.Kind()); prim != nil {
		if rt.PkgPath() == "" {
			d.remember(rt, prim)
			return prim, nil
		}
		// A defined type over a scalar has the scalar's layout.
		nt := schema.Named(name, prim.Type)
		d.remember(rt, nt)
		return nt, nil
	}

	switch rt.Kind() {
	case reflect.String:
		nt := schema.Named(name, schema.String.Type)
		d.remember(rt, nt)
		return nt, nil

	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			nt := schema.Named(name, schema.Bytes.Type)
			d.remember(rt, nt)
			return nt, nil
		}
		nt := &schema.NamedType{Name: name}
		d.remember(rt, nt)
		elem, err := d.Type(rt.Elem())
		if err != nil {
			return nil, err
		}
		nt.Type = schema.SeqOf(elem, nil)
		return nt, nil

	case reflect.Array:
		nt := &schema.NamedType{Name: name}
		d.remember(rt, nt)
		elem, err := d.Type(rt.Elem())
		if err != nil {
			return nil, err
		}
		elems := make([]*schema.NamedType, rt.Len())
		for i := range elems {
			elems[i] = elem
		}
		nt.Type = schema.TupleOf(elems...)
		return nt, nil

	case reflect.Map:
		nt := &schema.NamedType{Name: name}
		d.remember(rt, nt)
		key, err := d.Type(rt.Key())
		if err != nil {
			return nil, err
		}
		val, err := d.Type(rt.Elem())
		if err != nil {
			return nil, err
		}
		nt.Type = schema.MapOf(key, val, nil)
		return nt, nil

	case reflect.Pointer:
		nt := &schema.NamedType{Name: name}
		d.remember(rt, nt)
		inner, err := d.Type(rt.Elem())
		if err != nil {
			return nil, err
		}
		nt.Type = schema.OptionOf(inner)
		return nt, nil

	case reflect.Struct:
		return d.structType(rt)

	default:
		return nil, fmt.Errorf("%w: %v (%s)", ErrUnsupported, rt, rt.Kind())
	}
}

func (d *Deriver) structType(rt reflect.Type) (*schema.NamedType, error) {
	nt := &schema.NamedType{Name: rt.String()}
	d.remember(rt, nt)
	if rt.NumField() == 0 {
		nt.Type = schema.UnitStructOf()
		return nt, nil
	}

	fields := make([]*schema.NamedValue, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, err := schema.ParseFieldTag(sf)
		if err != nil {
			return nil, err
		}
		if tag.Skip {
			continue
		}
		ft, err := d.field(sf.Type, tag)
		if err != nil {
			return nil, fmt.Errorf("derive: %v.%s: %w", rt, sf.Name, err)
		}
		fields = append(fields, schema.Field(tag.Name, ft))
	}
	nt.Type = schema.StructOf(fields...)
	return nt, nil
}

// field derives a field's type, applying a maxlen tag by building a bounded
// copy of the container descriptor.
func (d *Deriver) field(rt reflect.Type, tag schema.FieldTag) (*schema.NamedType, error) {
	if tag.MaxLen == nil {
		return d.Type(rt)
	}
	limit := *tag.MaxLen
	name := fmt.Sprintf("%s<%d>", rt.String(), limit)
	switch {
	case rt.Kind() == reflect.String:
		return schema.Named(name, schema.StringOf(&limit)), nil
	case rt.Kind() == reflect.Slice && rt.Elem().Kind() == reflect.Uint8:
		return schema.Named(name, schema.BytesOf(&limit)), nil
	case rt.Kind() == reflect.Slice:
		elem, err := d.Type(rt.Elem())
		if err != nil {
			return nil, err
		}
		return schema.Named(name, schema.SeqOf(elem, &limit)), nil
	case rt.Kind() == reflect.Map:
		key, err := d.Type(rt.Key())
		if err != nil {
			return nil, err
		}
		val, err := d.Type(rt.Elem())
		if err != nil {
			return nil, err
		}
		return schema.Named(name, schema.MapOf(key, val, &limit)), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrMaxLen, rt)
	}
}

func primitive(k reflect.Kind) *schema.NamedType {
	switch k {
	case reflect.Bool:
		return schema.Bool
	case reflect.Int8:
		return schema.I8
	case reflect.Int16:
		return schema.I16
	case reflect.Int32:
		return schema.I32
	case reflect.Int64:
		return schema.I64
	case reflect.Int:
		return schema.Isize
	case reflect.Uint8:
		return schema.U8
	case reflect.Uint16:
		return schema.U16
	case reflect.Uint32:
		return schema.U32
	case reflect.Uint64:
		return schema.U64
	case reflect.Uint, reflect.Uintptr:
		return schema.Usize
	case reflect.Float32:
		return schema.F32
	case reflect.Float64:
		return schema.F64
	default:
		return nil
	}
}
