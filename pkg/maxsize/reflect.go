package maxsize

import (
	"reflect"

	"github.com/wireschema/wireschema/pkg/derive"
	"github.com/wireschema/wireschema/pkg/schema"
)

// OfReflect bounds a Go type that need not implement schema.Schema. The
// type's own override wins, then its descriptor is taken from the type
// itself, the default registry, or reflection, in that order. Overrides
// declared by nested types apply as well.
//
// An error means no descriptor could be built at all (an unsupported kind
// such as chan or func); it is not the same as unbounded.
func OfReflect(rt reflect.Type) (int, bool, error) {
	return defaultEngine.Reflect(rt)
}

// OfValue is OfReflect on the dynamic type of v. The value itself is not
// inspected.
func OfValue(v any) (int, bool, error) {
	return defaultEngine.Reflect(reflect.TypeOf(v))
}

// Reflect is OfReflect with e's options. Overrides found while deriving are
// layered over e's own.
func (e *Engine) Reflect(rt reflect.Type) (int, bool, error) {
	if rt == nil {
		return 0, false, schema.ErrNilType
	}
	if n, ok := schema.OverrideFor(rt); ok {
		return n, true, nil
	}
	d := derive.New(nil)
	nt, err := d.Type(rt)
	if err != nil {
		return 0, false, err
	}
	found := d.Overrides()
	if len(found) == 0 {
		n, ok := e.Named(nt)
		return n, ok, nil
	}
	merged := New(WithMaxDepth(e.maxDepth), WithOverrides(found), WithOverrides(e.overrides))
	n, ok := merged.Named(nt)
	return n, ok, nil
}
