package schema

import "reflect"

// Schema is implemented by types that describe their own wire shape.
//
// WireSchema must be declared on a value receiver and must not look at the
// receiver: it is called on the zero value and must return the same shared
// descriptor every time.
type Schema interface {
	WireSchema() *NamedType
}

// SizeOverride is an optional companion to Schema. When implemented, the
// returned byte count is used as the type's maximum encoded size instead of
// the bound inferred from its descriptor.
//
// Use it when the descriptor is structurally unbounded but every real value
// is bounded by something the descriptor cannot express, such as a
// fixed-capacity buffer. The number is trusted as-is; a wrong override is a
// bug in the implementing type.
type SizeOverride interface {
	MaxSizeOverride() int
}

// Of returns the descriptor of T.
func Of[T Schema]() *NamedType {
	var zero T
	return zero.WireSchema()
}

// OverrideOf returns T's manual size override, if it declares one.
func OverrideOf[T any]() (int, bool) {
	var zero T
	if o, ok := any(zero).(SizeOverride); ok {
		return o.MaxSizeOverride(), true
	}
	return 0, false
}

var (
	schemaIface   = reflect.TypeOf((*Schema)(nil)).Elem()
	overrideIface = reflect.TypeOf((*SizeOverride)(nil)).Elem()
)

// DescriptorFor returns the descriptor declared by rt through Schema, looking
// at both rt and *rt.
func DescriptorFor(rt reflect.Type) (*NamedType, bool) {
	if rt == nil {
		return nil, false
	}
	if rt.Implements(schemaIface) && rt.Kind() != reflect.Pointer && rt.Kind() != reflect.Interface {
		return reflect.Zero(rt).Interface().(Schema).WireSchema(), true
	}
	if rt.Kind() != reflect.Pointer && reflect.PointerTo(rt).Implements(schemaIface) {
		return reflect.New(rt).Interface().(Schema).WireSchema(), true
	}
	return nil, false
}

// OverrideFor is the reflect counterpart of OverrideOf.
func OverrideFor(rt reflect.Type) (int, bool) {
	if rt == nil {
		return 0, false
	}
	if rt.Implements(overrideIface) && rt.Kind() != reflect.Pointer && rt.Kind() != reflect.Interface {
		return reflect.Zero(rt).Interface().(SizeOverride).MaxSizeOverride(), true
	}
	if rt.Kind() != reflect.Pointer && reflect.PointerTo(rt).Implements(overrideIface) {
		return reflect.New(rt).Interface().(SizeOverride).MaxSizeOverride(), true
	}
	return 0, false
}
