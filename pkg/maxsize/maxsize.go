// Package maxsize computes worst-case encoded sizes from wire descriptors.
//
// A bound is reported as (n, true). (0, false) means no bound can be
// computed: some part of the descriptor is unbounded, recursive, or too large
// to count in an int. Callers that get false must size buffers dynamically.
//
// Bounds are only as good as the descriptors and manual overrides they are
// computed from. Do not use them to justify unchecked memory access.
package maxsize

import (
	"fmt"
	"strings"

	"github.com/wireschema/wireschema/pkg/schema"
)

// DefaultMaxDepth caps descriptor nesting. Deeper trees are reported as
// unbounded instead of growing the call stack.
const DefaultMaxDepth = 256

// Engine walks descriptor trees. The zero value is not usable; use New.
// An Engine is immutable and safe for concurrent use.
type Engine struct {
	maxDepth  int
	overrides map[*schema.NamedType]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth sets the nesting limit. Values below one are ignored.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithOverride makes the engine report n for every occurrence of nt,
// including nested ones, instead of walking it.
func WithOverride(nt *schema.NamedType, n int) Option {
	return func(e *Engine) {
		e.overrides[nt] = n
	}
}

// WithOverrides adds every entry of m as an override.
func WithOverrides(m map[*schema.NamedType]int) Option {
	return func(e *Engine) {
		for nt, n := range m {
			e.overrides[nt] = n
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxDepth:  DefaultMaxDepth,
		overrides: make(map[*schema.NamedType]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// OfNamed bounds nt with the default engine.
func OfNamed(nt *schema.NamedType) (int, bool) {
	return defaultEngine.Named(nt)
}

// OfType bounds t with the default engine.
func OfType(t *schema.DataModelType) (int, bool) {
	return defaultEngine.Type(t)
}

// Of returns the maximum encoded size of T: its manual override if it
// declares one, otherwise the bound inferred from its descriptor.
//
// T's descriptor is used as written. Overrides are only looked up by Go type,
// so those of nested types apply when the descriptor is derived by OfReflect,
// not when T spells its descriptor out by hand. For a Schema type the two
// agree.
func Of[T schema.Schema]() (int, bool) {
	if n, ok := schema.OverrideOf[T](); ok {
		return n, true
	}
	return OfNamed(schema.Of[T]())
}

// Named bounds nt.
func (e *Engine) Named(nt *schema.NamedType) (int, bool) {
	w := e.walker(false)
	return w.named(nt)
}

// Type bounds t.
func (e *Engine) Type(t *schema.DataModelType) (int, bool) {
	w := e.walker(false)
	return w.dmt(t)
}

// Report is the outcome of Explain.
type Report struct {
	Size    int
	Bounded bool
	Path    string // Where the first unbounded part was found
	Reason  string
}

func (r Report) String() string {
	if r.Bounded {
		return fmt.Sprintf("%d bytes", r.Size)
	}
	if r.Path == "" {
		return "unbounded: " + r.Reason
	}
	return fmt.Sprintf("unbounded: %s: %s", r.Path, r.Reason)
}

// Explain is Named plus a description of the first part of the tree that
// made it unbounded.
func (e *Engine) Explain(nt *schema.NamedType) Report {
	w := e.walker(true)
	n, ok := w.named(nt)
	if ok {
		return Report{Size: n, Bounded: true}
	}
	return Report{Path: w.reasonPath, Reason: w.reason}
}

// Explain runs Engine.Explain with the default engine.
func Explain(nt *schema.NamedType) Report {
	return defaultEngine.Explain(nt)
}

// walker holds the state of one traversal. It never outlives the call that
// created it.
type walker struct {
	e       *Engine
	depth   int
	active  map[*schema.NamedType]bool
	explain bool
	trail   []string

	reason     string
	reasonPath string
}

func (e *Engine) walker(explain bool) *walker {
	return &walker{e: e, active: make(map[*schema.NamedType]bool), explain: explain}
}

func (w *walker) unbounded(format string, args ...any) (int, bool) {
	if w.explain && w.reason == "" {
		w.reason = fmt.Sprintf(format, args...)
		w.reasonPath = strings.Join(w.trail, ".")
	}
	return 0, false
}

func (w *walker) push(part string) {
	if w.explain {
		w.trail = append(w.trail, part)
	}
}

func (w *walker) pop() {
	if w.explain {
		w.trail = w.trail[:len(w.trail)-1]
	}
}

func (w *walker) named(nt *schema.NamedType) (int, bool) {
	if nt == nil {
		return w.unbounded("nil descriptor")
	}
	if n, ok := w.e.overrides[nt]; ok {
		return n, true
	}
	if w.active[nt] {
		return w.unbounded("recursive reference to %s", nt.Name)
	}
	if w.depth >= w.e.maxDepth {
		return w.unbounded("nesting deeper than %d", w.e.maxDepth)
	}
	w.active[nt] = true
	w.depth++
	n, ok := w.dmt(nt.Type)
	w.depth--
	delete(w.active, nt)
	return n, ok
}

func (w *walker) dmt(t *schema.DataModelType) (int, bool) {
	if t == nil {
		return w.unbounded("nil data model type")
	}
	switch t.Kind {
	case schema.KindBool:
		return BoolSize, true
	case schema.KindI8, schema.KindU8:
		return U8Size, true
	case schema.KindI16, schema.KindU16:
		return U16Size, true
	case schema.KindI32, schema.KindU32:
		return U32Size, true
	case schema.KindI64, schema.KindU64:
		return U64Size, true
	case schema.KindI128, schema.KindU128:
		return U128Size, true
	case schema.KindUsize, schema.KindIsize:
		return w.unbounded("%s has platform-dependent width", t.Kind)
	case schema.KindF32:
		return F32Size, true
	case schema.KindF64:
		return F64Size, true
	case schema.KindChar:
		return CharSize, true
	case schema.KindString, schema.KindByteArray:
		if t.MaxLen == nil {
			return w.unbounded("%s without max_len", t.Kind)
		}
		return w.checked(StringMax(t.MaxLen))
	case schema.KindOption:
		// Same bound as the inner value; the presence byte is not charged.
		w.push("some")
		n, ok := w.named(t.Inner)
		w.pop()
		return n, ok
	case schema.KindUnit, schema.KindUnitStruct:
		return 0, true
	case schema.KindNewtypeStruct:
		return w.named(t.Inner)
	case schema.KindSeq:
		w.push("[]")
		elem, ok := w.named(t.Element)
		w.pop()
		if !ok {
			return 0, false
		}
		if t.MaxLen == nil {
			return w.unbounded("seq without max_len")
		}
		return w.checked(SeqMax(elem, ok, t.MaxLen))
	case schema.KindMap:
		w.push("key")
		key, ok := w.named(t.Key)
		w.pop()
		if !ok {
			return 0, false
		}
		w.push("val")
		val, ok := w.named(t.Val)
		w.pop()
		if !ok {
			return 0, false
		}
		if t.MaxLen == nil {
			return w.unbounded("map without max_len")
		}
		return w.checked(MapMax(key, true, val, true, t.MaxLen))
	case schema.KindTuple, schema.KindTupleStruct:
		return w.elems(t.Elems)
	case schema.KindStruct:
		return w.fields(t.Fields)
	case schema.KindEnum:
		return w.enum(t.Variants)
	case schema.KindSchema:
		return w.unbounded("schema descriptors are opaque")
	default:
		return w.unbounded("unknown kind %d", t.Kind)
	}
}

func (w *walker) checked(n int, ok bool) (int, bool) {
	if !ok {
		return w.unbounded("size overflows int")
	}
	return n, true
}

// elems sums a tuple. One unbounded element makes the whole sum unbounded.
func (w *walker) elems(elems []*schema.NamedType) (int, bool) {
	total := 0
	for i, e := range elems {
		w.push(fmt.Sprint(i))
		n, ok := w.named(e)
		w.pop()
		if !ok {
			return 0, false
		}
		if total, ok = add(total, n); !ok {
			return w.unbounded("size overflows int")
		}
	}
	return total, true
}

func (w *walker) fields(fields []*schema.NamedValue) (int, bool) {
	total := 0
	for _, f := range fields {
		if f == nil {
			return w.unbounded("nil field")
		}
		w.push(f.Name)
		n, ok := w.named(f.Type)
		w.pop()
		if !ok {
			return 0, false
		}
		if total, ok = add(total, n); !ok {
			return w.unbounded("size overflows int")
		}
	}
	return total, true
}

// enum takes the largest variant, not the sum: exactly one variant is on the
// wire per value, preceded by its varint index.
func (w *walker) enum(variants []*schema.NamedVariant) (int, bool) {
	largest := 0
	for _, v := range variants {
		if v == nil {
			return w.unbounded("nil variant")
		}
		w.push(v.Name)
		n, ok := w.variant(v.Shape)
		w.pop()
		if !ok {
			return 0, false
		}
		if n > largest {
			largest = n
		}
	}
	return w.checked(add(largest, DiscriminantSize(len(variants))))
}

func (w *walker) variant(s schema.VariantShape) (int, bool) {
	switch s.Kind {
	case schema.VariantUnit:
		return 0, true
	case schema.VariantNewtype:
		return w.named(s.Inner)
	case schema.VariantTuple:
		return w.elems(s.Elems)
	case schema.VariantStruct:
		return w.fields(s.Fields)
	default:
		return w.unbounded("unknown variant kind %d", s.Kind)
	}
}
