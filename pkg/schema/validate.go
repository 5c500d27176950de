package schema

import (
	"errors"
	"fmt"
)

// ValidationError describes a single structural problem in a descriptor tree.
type ValidationError struct {
	Path    string // Dot-separated path from the root descriptor
	Message string
}

func (ve *ValidationError) Error() string {
	if ve.Path != "" {
		return fmt.Sprintf("schema: %s: %s", ve.Path, ve.Message)
	}
	return "schema: " + ve.Message
}

func (ve *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Validate checks nt against the structural rules of the data model. Every
// child descriptor must be present and scalars must have none. MaxLen must be
// non-negative and only set on bounded containers. Field and variant names
// must be non-empty and unique within their parent.
//
// Self-referential graphs are accepted; each node is visited once. The
// returned error joins every *ValidationError found, or is nil.
func Validate(nt *NamedType) error {
	v := validator{seen: make(map[*NamedType]bool)}
	v.named(nt, "")
	return errors.Join(v.errs...)
}

type validator struct {
	seen map[*NamedType]bool
	errs []error
}

func (v *validator) fail(path, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func join(path, part string) string {
	if path == "" {
		return part
	}
	return path + "." + part
}

func (v *validator) named(nt *NamedType, path string) {
	if nt == nil {
		v.fail(path, "nil named type")
		return
	}
	if v.seen[nt] {
		return
	}
	v.seen[nt] = true
	if nt.Name == "" {
		v.fail(path, "empty type name")
	}
	if path == "" {
		path = nt.Name
	}
	v.dmt(nt.Type, path)
}

func (v *validator) dmt(t *DataModelType, path string) {
	if t == nil {
		v.fail(path, "nil data model type")
		return
	}
	if !t.Kind.Valid() {
		v.fail(path, "unknown kind %d", t.Kind)
		return
	}
	if t.MaxLen != nil {
		if !t.Kind.IsBoundedContainer() {
			v.fail(path, "max_len set on %s", t.Kind)
		} else if *t.MaxLen < 0 {
			v.fail(path, "negative max_len %d", *t.MaxLen)
		}
	}

	if t.Kind.IsPrimitive() && t.hasChildren() {
		v.fail(path, "child descriptors set on %s", t.Kind)
		return
	}

	switch t.Kind {
	case KindOption, KindNewtypeStruct:
		v.named(t.Inner, join(path, "inner"))
	case KindSeq:
		v.named(t.Element, join(path, "element"))
	case KindMap:
		v.named(t.Key, join(path, "key"))
		v.named(t.Val, join(path, "val"))
	case KindTuple, KindTupleStruct:
		v.elems(t.Elems, path)
	case KindStruct:
		v.fields(t.Fields, path)
	case KindEnum:
		names := make(map[string]bool, len(t.Variants))
		for i, nv := range t.Variants {
			if nv == nil {
				v.fail(join(path, fmt.Sprint(i)), "nil variant")
				continue
			}
			vpath := join(path, nv.Name)
			if nv.Name == "" {
				v.fail(join(path, fmt.Sprint(i)), "empty variant name")
			} else if names[nv.Name] {
				v.fail(vpath, "duplicate variant name")
			}
			names[nv.Name] = true
			v.variant(nv.Shape, vpath)
		}
	}
}

func (v *validator) variant(s VariantShape, path string) {
	switch s.Kind {
	case VariantUnit:
	case VariantNewtype:
		v.named(s.Inner, join(path, "inner"))
	case VariantTuple:
		v.elems(s.Elems, path)
	case VariantStruct:
		v.fields(s.Fields, path)
	default:
		v.fail(path, "unknown variant kind %d", s.Kind)
	}
}

func (v *validator) elems(elems []*NamedType, path string) {
	for i, e := range elems {
		v.named(e, join(path, fmt.Sprint(i)))
	}
}

func (v *validator) fields(fields []*NamedValue, path string) {
	names := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f == nil {
			v.fail(join(path, fmt.Sprint(i)), "nil field")
			continue
		}
		fpath := join(path, f.Name)
		if f.Name == "" {
			v.fail(join(path, fmt.Sprint(i)), "empty field name")
		} else if names[f.Name] {
			v.fail(fpath, "duplicate field name")
		}
		names[f.Name] = true
		v.named(f.Type, fpath)
	}
}

func (t *DataModelType) hasChildren() bool {
	return t.Inner != nil || t.Element != nil || t.Key != nil || t.Val != nil ||
		len(t.Elems) > 0 || len(t.Fields) > 0 || len(t.Variants) > 0
}
