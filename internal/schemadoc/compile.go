package schemadoc

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wireschema/wireschema/pkg/maxsize"
	"github.com/wireschema/wireschema/pkg/schema"
)

// Set is a compiled document.
type Set struct {
	Types     map[string]*schema.NamedType
	Order     []string // Declaration order
	Overrides map[*schema.NamedType]int
}

// Engine returns a size engine that honours the set's max_size overrides.
func (s *Set) Engine(opts ...maxsize.Option) *maxsize.Engine {
	return maxsize.New(append([]maxsize.Option{maxsize.WithOverrides(s.Overrides)}, opts...)...)
}

// CompileOption configures Compile.
type CompileOption func(*compiler)

// WithLogger logs each compiled declaration at debug level.
func WithLogger(logger zerolog.Logger) CompileOption {
	return func(c *compiler) { c.logger = logger }
}

type compiler struct {
	logger zerolog.Logger
	decls  map[string]*schema.NamedType
	prims  map[string]*schema.NamedType
	errs   []error
}

// Compile resolves every declaration of doc into a descriptor. Each compiled
// descriptor is also run through schema.Validate. All problems found are
// returned together.
func Compile(doc Document, opts ...CompileOption) (*Set, error) {
	c := &compiler{
		logger: zerolog.Nop(),
		decls:  make(map[string]*schema.NamedType, len(doc.Types)),
		prims:  schema.Primitives(),
	}
	for _, opt := range opts {
		opt(c)
	}

	set := &Set{
		Types:     make(map[string]*schema.NamedType, len(doc.Types)),
		Overrides: make(map[*schema.NamedType]int),
	}

	// Allocate every node first so references may point forward or back.
	for _, d := range doc.Types {
		switch {
		case d.Name == "":
			c.fail("", "%w: empty name", schema.ErrInvalid)
			continue
		case c.decls[d.Name] != nil:
			c.fail(d.Name, "%w", ErrDuplicate)
			continue
		case c.prims[d.Name] != nil:
			c.fail(d.Name, "%w: shadows a built-in type", ErrDuplicate)
			continue
		}
		nt := &schema.NamedType{Name: d.Name}
		c.decls[d.Name] = nt
		set.Types[d.Name] = nt
		set.Order = append(set.Order, d.Name)
		if d.MaxSize != nil {
			set.Overrides[nt] = *d.MaxSize
		}
	}

	for _, d := range doc.Types {
		nt := c.decls[d.Name]
		if nt == nil || nt.Type != nil {
			continue
		}
		nt.Type = c.build(d)
		c.logger.Debug().Str("name", d.Name).Str("kind", d.Kind).Msg("compiled declaration")
	}
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}

	for _, name := range set.Order {
		if err := schema.Validate(set.Types[name]); err != nil {
			c.errs = append(c.errs, err)
		}
	}
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}
	return set, nil
}

func (c *compiler) fail(name, format string, args ...any) {
	err := fmt.Errorf(format, args...)
	if name != "" {
		err = fmt.Errorf("type %s: %w", name, err)
	}
	c.errs = append(c.errs, err)
}

func (c *compiler) ref(owner, what, name string) *schema.NamedType {
	if name == "" {
		c.fail(owner, "%w: %s", ErrMissingRef, what)
		return nil
	}
	if nt := c.decls[name]; nt != nil {
		return nt
	}
	if nt := c.prims[name]; nt != nil {
		return nt
	}
	c.fail(owner, "%w %q in %s", ErrUnknownType, name, what)
	return nil
}

func (c *compiler) refs(owner, what string, names []string) []*schema.NamedType {
	out := make([]*schema.NamedType, len(names))
	for i, n := range names {
		out[i] = c.ref(owner, fmt.Sprintf("%s[%d]", what, i), n)
	}
	return out
}

func (c *compiler) fields(owner string, decls []FieldDecl) []*schema.NamedValue {
	out := make([]*schema.NamedValue, len(decls))
	for i, f := range decls {
		out[i] = schema.Field(f.Name, c.ref(owner, "field "+f.Name, f.Type))
	}
	return out
}

func (c *compiler) build(d Decl) *schema.DataModelType {
	kind, ok := schema.ParseKind(d.Kind)
	if !ok {
		c.fail(d.Name, "%w %q", ErrUnknownKind, d.Kind)
		return nil
	}

	t := &schema.DataModelType{Kind: kind, MaxLen: d.MaxLen}
	switch kind {
	case schema.KindOption, schema.KindNewtypeStruct:
		t.Inner = c.ref(d.Name, "type", d.Type)
	case schema.KindSeq:
		t.Element = c.ref(d.Name, "type", d.Type)
	case schema.KindMap:
		t.Key = c.ref(d.Name, "key", d.Key)
		t.Val = c.ref(d.Name, "val", d.Val)
	case schema.KindTuple, schema.KindTupleStruct:
		t.Elems = c.refs(d.Name, "elems", d.Elems)
	case schema.KindStruct:
		t.Fields = c.fields(d.Name, d.Fields)
	case schema.KindEnum:
		t.Variants = make([]*schema.NamedVariant, len(d.Variants))
		for i, v := range d.Variants {
			t.Variants[i] = c.variant(d.Name, v)
		}
	}
	return t
}

func (c *compiler) variant(owner string, v VariantDecl) *schema.NamedVariant {
	where := "variant " + v.Name
	switch v.kind() {
	case "unit":
		return schema.UnitVariant(v.Name)
	case "newtype":
		return schema.NewtypeVariant(v.Name, c.ref(owner, where, v.Type))
	case "tuple":
		return schema.TupleVariant(v.Name, c.refs(owner, where, v.Elems)...)
	case "struct":
		return schema.StructVariant(v.Name, c.fields(owner, v.Fields)...)
	default:
		c.fail(owner, "%w %q for %s", ErrUnknownKind, v.Kind, where)
		return schema.UnitVariant(v.Name)
	}
}
