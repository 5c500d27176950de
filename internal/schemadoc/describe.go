package schemadoc

import (
	"fmt"

	"github.com/wireschema/wireschema/pkg/schema"
)

// Describe is the inverse of Compile: it flattens the descriptor graphs
// reachable from roots into a document. Built-in primitives are referenced by
// name and not declared. overrides may be nil.
//
// Two distinct descriptors with the same name cannot be told apart in a
// document and are reported as ErrDuplicate.
func Describe(roots []*schema.NamedType, overrides map[*schema.NamedType]int) (Document, error) {
	d := describer{
		prims:     schema.Primitives(),
		byName:    make(map[string]*schema.NamedType),
		overrides: overrides,
	}
	for _, nt := range roots {
		if err := d.named(nt); err != nil {
			return Document{}, err
		}
	}
	return d.doc, nil
}

type describer struct {
	prims     map[string]*schema.NamedType
	byName    map[string]*schema.NamedType
	overrides map[*schema.NamedType]int
	doc       Document
}

// named declares nt unless it is a built-in or already declared.
func (d *describer) named(nt *schema.NamedType) error {
	if nt == nil {
		return schema.ErrNilDescriptor
	}
	if d.prims[nt.Name] == nt {
		return nil
	}
	if seen, ok := d.byName[nt.Name]; ok {
		if seen != nt {
			return fmt.Errorf("%w: %q names two different descriptors", ErrDuplicate, nt.Name)
		}
		return nil
	}
	if d.prims[nt.Name] != nil {
		return fmt.Errorf("%w: %q shadows a built-in type", ErrDuplicate, nt.Name)
	}
	if nt.Type == nil {
		return fmt.Errorf("%w: %s", schema.ErrNilDescriptor, nt.Name)
	}
	d.byName[nt.Name] = nt

	// Reserve the slot before recursing so declarations come out parents
	// first.
	idx := len(d.doc.Types)
	d.doc.Types = append(d.doc.Types, Decl{})

	t := nt.Type
	decl := Decl{Name: nt.Name, Kind: t.Kind.String(), MaxLen: t.MaxLen}
	if n, ok := d.overrides[nt]; ok {
		decl.MaxSize = &n
	}

	var err error
	switch t.Kind {
	case schema.KindOption, schema.KindNewtypeStruct:
		decl.Type, err = d.ref(t.Inner)
	case schema.KindSeq:
		decl.Type, err = d.ref(t.Element)
	case schema.KindMap:
		if decl.Key, err = d.ref(t.Key); err == nil {
			decl.Val, err = d.ref(t.Val)
		}
	case schema.KindTuple, schema.KindTupleStruct:
		decl.Elems, err = d.refs(t.Elems)
	case schema.KindStruct:
		decl.Fields, err = d.fields(t.Fields)
	case schema.KindEnum:
		decl.Variants, err = d.variants(t.Variants)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", nt.Name, err)
	}
	d.doc.Types[idx] = decl
	return nil
}

func (d *describer) ref(nt *schema.NamedType) (string, error) {
	if err := d.named(nt); err != nil {
		return "", err
	}
	return nt.Name, nil
}

func (d *describer) refs(nts []*schema.NamedType) ([]string, error) {
	out := make([]string, len(nts))
	for i, nt := range nts {
		name, err := d.ref(nt)
		if err != nil {
			return nil, err
		}
		out[i] = name
	}
	return out, nil
}

func (d *describer) fields(fields []*schema.NamedValue) ([]FieldDecl, error) {
	out := make([]FieldDecl, len(fields))
	for i, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("%w: field %d", schema.ErrNilDescriptor, i)
		}
		name, err := d.ref(f.Type)
		if err != nil {
			return nil, err
		}
		out[i] = FieldDecl{Name: f.Name, Type: name}
	}
	return out, nil
}

func (d *describer) variants(variants []*schema.NamedVariant) ([]VariantDecl, error) {
	out := make([]VariantDecl, len(variants))
	for i, v := range variants {
		if v == nil {
			return nil, fmt.Errorf("%w: variant %d", schema.ErrNilDescriptor, i)
		}
		vd := VariantDecl{Name: v.Name, Kind: v.Shape.Kind.String()}
		var err error
		switch v.Shape.Kind {
		case schema.VariantNewtype:
			vd.Type, err = d.ref(v.Shape.Inner)
		case schema.VariantTuple:
			vd.Elems, err = d.refs(v.Shape.Elems)
		case schema.VariantStruct:
			vd.Fields, err = d.fields(v.Shape.Fields)
		}
		if err != nil {
			return nil, err
		}
		out[i] = vd
	}
	return out, nil
}
