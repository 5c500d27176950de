package maxsize

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s "github.com/wireschema/wireschema/pkg/schema"
)

func TestPrimitiveCosts(t *testing.T) {
	tests := []struct {
		nt      *s.NamedType
		want    int
		bounded bool
	}{
		{s.Bool, 1, true},
		{s.I8, 1, true},
		{s.U8, 1, true},
		{s.I16, 3, true},
		{s.U16, 3, true},
		{s.I32, 5, true},
		{s.U32, 5, true},
		{s.I64, 10, true},
		{s.U64, 10, true},
		{s.I128, 19, true},
		{s.U128, 19, true},
		{s.F32, 4, true},
		{s.F64, 8, true},
		{s.Char, 5, true},
		{s.Unit, 0, true},
		{s.Usize, 0, false},
		{s.Isize, 0, false},
		{s.String, 0, false},
		{s.Bytes, 0, false},
		{s.Meta, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.nt.Name, func(t *testing.T) {
			n, ok := OfNamed(tt.nt)
			assert.Equal(t, tt.bounded, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestComposites(t *testing.T) {
	pair := s.Named("Pair", s.StructOf(s.Field("a", s.U8), s.Field("b", s.U16)))
	tests := []struct {
		name    string
		nt      *s.NamedType
		want    int
		bounded bool
	}{
		{"struct of u8 and u16", pair, 4, true},
		{"struct with skipped member", s.Named("Skip", s.StructOf(s.Field("b", s.U16))), 3, true},
		{"empty struct", s.Named("E", s.StructOf()), 0, true},
		{"unit struct", s.Named("U", s.UnitStructOf()), 0, true},
		{"newtype", s.Named("N", s.NewtypeOf(pair)), 4, true},
		{"tuple", s.Named("T", s.TupleOf(s.U8, s.I64, s.F32)), 15, true},
		{"tuple struct", s.Named("TS", s.TupleStructOf(s.Char, s.Bool)), 6, true},
		{"option", s.Named("O", s.OptionOf(s.U32)), 5, true},
		{"nested option", s.Named("OO", s.OptionOf(s.Named("O", s.OptionOf(s.U8)))), 1, true},
		{"bounded seq of u8", s.Named("S", s.SeqOf(s.U8, s.Len(128))), 130, true},
		{"bounded map", s.Named("M", s.MapOf(s.U8, s.U16, s.Len(2))), 9, true},
		{"bounded string", s.Named("Str", s.StringOf(s.Len(127))), 128, true},
		{"bounded bytes", s.Named("B", s.BytesOf(s.Len(128))), 130, true},
		{"seq without max_len", s.Named("S", s.SeqOf(s.U8, nil)), 0, false},
		{"map without max_len", s.Named("M", s.MapOf(s.U8, s.U8, nil)), 0, false},
		{"seq of unbounded", s.Named("S", s.SeqOf(s.String, s.Len(1))), 0, false},
		{"map of unbounded key", s.Named("M", s.MapOf(s.Usize, s.U8, s.Len(1))), 0, false},
		{"struct with unbounded field", s.Named("X", s.StructOf(s.Field("a", s.U8), s.Field("b", s.String))), 0, false},
		{"tuple with unbounded element", s.Named("X", s.TupleOf(s.Isize)), 0, false},
		{"option of unbounded", s.Named("X", s.OptionOf(s.Bytes)), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := OfNamed(tt.nt)
			assert.Equal(t, tt.bounded, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestEnum(t *testing.T) {
	tests := []struct {
		name    string
		nt      *s.NamedType
		want    int
		bounded bool
	}{
		{"no variants", s.Named("Never", s.EnumOf()), 1, true},
		{"three unit variants", s.Named("Dir", s.EnumOf(s.UnitVariant("A"), s.UnitVariant("B"), s.UnitVariant("C"))), 1, true},
		{
			"largest variant wins",
			s.Named("E", s.EnumOf(
				s.UnitVariant("A"),
				s.NewtypeVariant("B", s.U64),
				s.TupleVariant("C", s.U8, s.U8),
				s.StructVariant("D", s.Field("x", s.U32)),
			)),
			11, true,
		},
		{"unbounded variant poisons", s.Named("E", s.EnumOf(s.UnitVariant("A"), s.NewtypeVariant("B", s.String))), 0, false},
		{"unbounded struct variant", s.Named("E", s.EnumOf(s.StructVariant("A", s.Field("x", s.Usize)))), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := OfNamed(tt.nt)
			assert.Equal(t, tt.bounded, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestEnumDiscriminantGrowsWithVariants(t *testing.T) {
	variants := make([]*s.NamedVariant, 129)
	for i := range variants {
		variants[i] = s.UnitVariant(fmt.Sprintf("V%d", i))
	}
	n, ok := OfNamed(s.Named("Wide", s.EnumOf(variants...)))
	require.True(t, ok)
	assert.Equal(t, 2, n)

	n, ok = OfNamed(s.Named("Narrow", s.EnumOf(variants[:128]...)))
	require.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestSeqLaw(t *testing.T) {
	for _, elem := range []*s.NamedType{s.U8, s.U16, s.I64, s.Char} {
		e, ok := OfNamed(elem)
		require.True(t, ok)
		for _, c := range []int{0, 1, 127, 128, 1000} {
			n, ok := OfNamed(s.Named("S", s.SeqOf(elem, s.Len(c))))
			require.True(t, ok)
			assert.Equal(t, VarintSize(uint64(c))+c*e, n, "%s x %d", elem.Name, c)
		}
	}
}

func TestRecursionIsUnbounded(t *testing.T) {
	list := &s.NamedType{Name: "List"}
	list.Type = s.OptionOf(s.Named("Cons", s.TupleOf(s.U8, list)))

	n, ok := OfNamed(list)
	assert.False(t, ok)
	assert.Zero(t, n)

	// Shared but acyclic references are fine.
	shared := s.Named("Shared", s.StructOf(s.Field("a", s.U16)))
	dag := s.Named("Dag", s.TupleOf(shared, shared, s.Named("Wrap", s.NewtypeOf(shared))))
	n, ok = OfNamed(dag)
	assert.True(t, ok)
	assert.Equal(t, 9, n)
}

func TestMaxDepth(t *testing.T) {
	nest := func(depth int) *s.NamedType {
		nt := s.U8
		for i := 0; i < depth; i++ {
			nt = s.Named(fmt.Sprintf("N%d", i), s.NewtypeOf(nt))
		}
		return nt
	}

	// depth wrappers plus the u8 leaf
	n, ok := New(WithMaxDepth(11)).Named(nest(10))
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = New(WithMaxDepth(10)).Named(nest(10))
	assert.False(t, ok)

	_, ok = OfNamed(nest(DefaultMaxDepth + 1))
	assert.False(t, ok)

	e := New(WithMaxDepth(0))
	assert.Equal(t, DefaultMaxDepth, e.maxDepth)
}

func TestOverflowIsUnbounded(t *testing.T) {
	big := s.Named("Big", s.SeqOf(s.U64, s.Len(math.MaxInt/8)))
	_, ok := OfNamed(big)
	assert.False(t, ok)

	huge := s.Named("Huge", s.BytesOf(s.Len(math.MaxInt)))
	_, ok = OfNamed(huge)
	assert.False(t, ok)

	half := s.Named("Half", s.BytesOf(s.Len(math.MaxInt/2)))
	_, ok = OfNamed(s.Named("Sum", s.TupleOf(half, half, half)))
	assert.False(t, ok)
}

func TestNilDescriptors(t *testing.T) {
	_, ok := OfNamed(nil)
	assert.False(t, ok)
	_, ok = OfType(nil)
	assert.False(t, ok)
	_, ok = OfNamed(&s.NamedType{Name: "Empty"})
	assert.False(t, ok)
	_, ok = OfType(&s.DataModelType{Kind: 200})
	assert.False(t, ok)
}

func TestOfType(t *testing.T) {
	n, ok := OfType(s.StructOf(s.Field("a", s.U8), s.Field("b", s.U16)))
	assert.True(t, ok)
	assert.Equal(t, 4, n)
}

func TestOverrides(t *testing.T) {
	frame := s.Named("Frame", s.BytesOf(nil))
	packet := s.Named("Packet", s.StructOf(s.Field("id", s.U16), s.Field("frame", frame)))

	_, ok := OfNamed(packet)
	require.False(t, ok)

	e := New(WithOverride(frame, 1500))
	n, ok := e.Named(frame)
	assert.True(t, ok)
	assert.Equal(t, 1500, n)

	n, ok = e.Named(packet)
	assert.True(t, ok)
	assert.Equal(t, 1503, n)

	// An override wins even over a bounded descriptor, and breaks cycles.
	list := &s.NamedType{Name: "List"}
	list.Type = s.OptionOf(s.Named("Cons", s.TupleOf(s.U8, list)))
	e = New(WithOverrides(map[*s.NamedType]int{list: 64, s.U8: 2}))
	n, ok = e.Named(list)
	assert.True(t, ok)
	assert.Equal(t, 64, n)
	n, ok = e.Named(s.Named("T", s.TupleOf(s.U8, s.U8)))
	assert.True(t, ok)
	assert.Equal(t, 4, n)
}

type packet struct{}

var packetSchema = s.Named("Packet", s.StructOf(s.Field("id", s.U32), s.Field("body", s.Named("Body", s.BytesOf(s.Len(64))))))

func (packet) WireSchema() *s.NamedType { return packetSchema }

type frame struct{}

func (frame) WireSchema() *s.NamedType { return s.Bytes }
func (frame) MaxSizeOverride() int     { return 256 }

func TestOf(t *testing.T) {
	n, ok := Of[packet]()
	assert.True(t, ok)
	assert.Equal(t, 5+1+64, n)

	n, ok = Of[frame]()
	assert.True(t, ok)
	assert.Equal(t, 256, n)
}

func TestOfAgreesWithOfReflect(t *testing.T) {
	tests := []struct {
		name string
		of   func() (int, bool)
		rt   reflect.Type
	}{
		{"descriptor", Of[packet], reflect.TypeOf(packet{})},
		{"override", Of[frame], reflect.TypeOf(frame{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, wantOK := tt.of()
			got, ok, err := OfReflect(tt.rt)
			require.NoError(t, err)
			assert.Equal(t, wantOK, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestExplain(t *testing.T) {
	payload := s.Named("Payload", s.StructOf(s.Field("data", s.Named("Data", s.SeqOf(s.U8, nil)))))
	msg := s.Named("Msg", s.StructOf(
		s.Field("id", s.U8),
		s.Field("payload", payload),
	))

	r := Explain(msg)
	assert.False(t, r.Bounded)
	assert.Equal(t, "payload.data", r.Path)
	assert.Equal(t, "seq without max_len", r.Reason)
	assert.Equal(t, "unbounded: payload.data: seq without max_len", r.String())

	r = Explain(s.Named("Ok", s.TupleOf(s.U8, s.U16)))
	assert.True(t, r.Bounded)
	assert.Equal(t, 4, r.Size)
	assert.Equal(t, "4 bytes", r.String())

	list := &s.NamedType{Name: "List"}
	list.Type = s.OptionOf(s.Named("Cons", s.TupleOf(s.U8, list)))
	r = Explain(list)
	assert.Equal(t, "some.1", r.Path)
	assert.Equal(t, "recursive reference to List", r.Reason)

	r = Explain(s.Usize)
	assert.Equal(t, "unbounded: usize has platform-dependent width", r.String())
}
