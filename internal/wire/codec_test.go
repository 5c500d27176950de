package wire

import (
	"bytes"
	"math"
	"math/rand"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireschema/wireschema/pkg/derive"
	"github.com/wireschema/wireschema/pkg/maxsize"
	"github.com/wireschema/wireschema/pkg/schema"
)

type pair struct {
	A uint8
	B uint16
}

type skipped struct {
	A     uint8 `wire:"-"`
	B     uint16
	Cache map[string]int `wire:"-"`
}

type limited struct {
	Name string   `wire:"name,maxlen=8"`
	Tags []uint16 `wire:"tags,maxlen=3"`
	Blob []byte   `wire:"blob,maxlen=4"`
}

type nested struct {
	P     pair
	Opt   *uint32
	Fixed [3]int8
	Big   Uint128
	Neg   Int128
	Ratio float64
}

// shape is a hand-encoded enum: Circle(f32) | Square{side: u8} | Empty.
type shape struct {
	variant uint32
	radius  float32
	side    uint8
}

func (s shape) MarshalWire(w *Writer) error {
	w.WriteVariant(s.variant)
	switch s.variant {
	case 0:
		w.WriteF32(s.radius)
	case 1:
		w.WriteU8(s.side)
	}
	return w.Error()
}

func (s *shape) UnmarshalWire(r *Reader) error {
	v, err := r.ReadVariant()
	if err != nil {
		return err
	}
	s.variant = v
	switch v {
	case 0:
		s.radius, err = r.ReadF32()
	case 1:
		s.side, err = r.ReadU8()
	case 2:
	default:
		return ErrUnsupported
	}
	return err
}

func (shape) WireSchema() *schema.NamedType {
	return schema.Named("Shape", schema.EnumOf(
		schema.NewtypeVariant("Circle", schema.F32),
		schema.StructVariant("Square", schema.Field("side", schema.U8)),
		schema.UnitVariant("Empty"),
	))
}

func TestMarshalLayout(t *testing.T) {
	u := uint32(300)
	tests := []struct {
		name string
		in   any
		want []byte
	}{
		{"bool", true, []byte{0x01}},
		{"u8", uint8(0xff), []byte{0xff}},
		{"i8", int8(-1), []byte{0xff}},
		{"u16 varint", uint16(300), []byte{0xac, 0x02}},
		{"i32 zigzag", int32(-2), []byte{0x03}},
		{"f32 little endian", float32(1), []byte{0x00, 0x00, 0x80, 0x3f}},
		{"string", "hi", []byte{0x02, 'h', 'i'}},
		{"bytes", []byte{7, 8}, []byte{0x02, 7, 8}},
		{"seq", []uint16{1, 128}, []byte{0x02, 0x01, 0x80, 0x01}},
		{"array has no prefix", [2]uint8{1, 2}, []byte{0x01, 0x02}},
		{"struct", pair{A: 1, B: 2}, []byte{0x01, 0x02}},
		{"skipped field", skipped{A: 9, B: 2}, []byte{0x02}},
		{"some", struct{ V *uint32 }{&u}, []byte{0x01, 0xac, 0x02}},
		{"none", struct{ V *uint32 }{}, []byte{0x00}},
		{"enum newtype", shape{variant: 0, radius: 1}, []byte{0x00, 0x00, 0x00, 0x80, 0x3f}},
		{"enum unit", shape{variant: 2}, []byte{0x02}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	u := uint32(77)
	t.Run("nested", func(t *testing.T) {
		in := nested{
			P:     pair{A: 3, B: 65535},
			Opt:   &u,
			Fixed: [3]int8{-128, 0, 127},
			Big:   Uint128{Hi: math.MaxUint64, Lo: 42},
			Neg:   Int128{Hi: math.MaxUint64, Lo: math.MaxUint64 - 5},
			Ratio: -0.25,
		}
		buf, err := Marshal(in)
		require.NoError(t, err)
		var out nested
		require.NoError(t, Unmarshal(buf, &out))
		assert.Equal(t, in, out)
	})

	t.Run("limited", func(t *testing.T) {
		in := limited{Name: "gopher", Tags: []uint16{1, 2, 3}, Blob: []byte{0xde, 0xad}}
		buf, err := Marshal(&in)
		require.NoError(t, err)
		var out limited
		require.NoError(t, Unmarshal(buf, &out))
		assert.Equal(t, in, out)
	})

	t.Run("map", func(t *testing.T) {
		in := map[string]int64{"a": -1, "b": math.MaxInt64}
		buf, err := Marshal(in)
		require.NoError(t, err)
		var out map[string]int64
		require.NoError(t, Unmarshal(buf, &out))
		assert.Equal(t, in, out)
	})

	t.Run("enum", func(t *testing.T) {
		for _, in := range []shape{{variant: 0, radius: 2.5}, {variant: 1, side: 9}, {variant: 2}} {
			buf, err := Marshal(in)
			require.NoError(t, err)
			var out shape
			require.NoError(t, Unmarshal(buf, &out))
			assert.Equal(t, in, out)
		}
	})
}

func TestSkippedFieldDecodesToZero(t *testing.T) {
	buf, err := Marshal(skipped{A: 9, B: 500, Cache: map[string]int{"x": 1}})
	require.NoError(t, err)

	out := skipped{A: 4, Cache: map[string]int{"stale": 1}}
	require.NoError(t, Unmarshal(buf, &out))
	assert.Equal(t, skipped{B: 500}, out)
}

func TestMarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want error
	}{
		{"nil", nil, ErrUnsupported},
		{"channel", make(chan int), ErrUnsupported},
		{"string over maxlen", limited{Name: "much too long"}, ErrTooLong},
		{"seq over maxlen", limited{Tags: []uint16{1, 2, 3, 4}}, ErrTooLong},
		{"bytes over maxlen", limited{Blob: []byte{1, 2, 3, 4, 5}}, ErrTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		out  any
		want error
	}{
		{"short", []byte{0x01}, new(pair), ErrBufferTooSmall},
		{"trailing", []byte{0x01, 0x02, 0x03}, new(pair), ErrTrailingBytes},
		{"bad bool", []byte{0x02}, new(bool), ErrInvalidBool},
		{"bad option", []byte{0x05}, new(*uint8), ErrInvalidOption},
		{"u16 overflow", []byte{0xff, 0xff, 0x04}, new(uint16), ErrOverflow},
		{"varint too long", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, new(uint64), ErrVarintTooLong},
		{"invalid utf8", []byte{0x01, 0xff}, new(string), ErrInvalidUTF8},
		{"maxlen enforced", []byte{0x09, 'a', 'a', 'a', 'a', 'a', 'a', 'a', 'a', 'a', 0x00, 0x00}, new(limited), ErrTooLong},
		{"not a pointer", []byte{0x00}, pair{}, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Unmarshal(tt.buf, tt.out), tt.want)
		})
	}
}

// A large length prefix with no elements behind it must fail without
// reserving memory for the claimed length.
func TestHugeLengthPrefixDoesNotPreallocate(t *testing.T) {
	prefix := AppendUvarint(nil, 1<<24)
	tests := []struct {
		name string
		out  any
	}{
		{"slice", &[]uint64{}},
		{"map", &map[uint64]uint64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&before)
			err := Unmarshal(prefix, tt.out)
			runtime.ReadMemStats(&after)

			assert.ErrorIs(t, err, ErrBufferTooSmall)
			assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
		})
	}
}

// The inferred bound must cover every encoding, and the worst-case value must
// hit it exactly.
func TestEncodingsStayWithinBound(t *testing.T) {
	type worst struct {
		A uint8
		B uint16
		C int32
		D uint64
		E int64
		F Uint128
		G Int128
		H float32
		I bool
		K string   `wire:",maxlen=200"`
		L []uint32 `wire:",maxlen=3"`
		M [2]int16
		N shape
	}

	nt, err := derive.For[worst]()
	require.NoError(t, err)
	bound, ok := maxsize.OfNamed(nt)
	require.True(t, ok)

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	worstCase := worst{
		A: math.MaxUint8,
		B: math.MaxUint16,
		C: math.MinInt32,
		D: math.MaxUint64,
		E: math.MinInt64,
		F: Uint128{Hi: math.MaxUint64, Lo: math.MaxUint64},
		G: Int128{Hi: 1 << 63},
		H: -1,
		I: true,
		K: string(long),
		L: []uint32{math.MaxUint32, math.MaxUint32, math.MaxUint32},
		M: [2]int16{math.MinInt16, math.MinInt16},
		N: shape{variant: 0, radius: 1},
	}
	buf, err := Marshal(worstCase)
	require.NoError(t, err)
	assert.Equal(t, bound, len(buf))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		v := worst{
			A: uint8(rng.Uint32()),
			B: uint16(rng.Uint32()),
			C: int32(rng.Uint32()),
			D: rng.Uint64() >> rng.Intn(64),
			E: int64(rng.Uint64()) >> rng.Intn(64),
			F: Uint128{Hi: rng.Uint64() >> rng.Intn(64), Lo: rng.Uint64()},
			G: Int128{Hi: rng.Uint64(), Lo: rng.Uint64()},
			H: rng.Float32(),
			K: string(long[:rng.Intn(201)]),
			L: make([]uint32, rng.Intn(4)),
			M: [2]int16{int16(rng.Uint32()), int16(rng.Uint32())},
			N: shape{variant: uint32(rng.Intn(3)), side: uint8(rng.Uint32())},
		}
		buf, err := Marshal(v)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(buf), bound)
	}
}

// Options are bounded by their payload alone, so a present value encodes one
// presence byte past the bound.
func TestOptionBoundExcludesPresenceByte(t *testing.T) {
	type holder struct {
		V *uint16
	}
	nt, err := derive.For[holder]()
	require.NoError(t, err)
	bound, ok := maxsize.OfNamed(nt)
	require.True(t, ok)
	assert.Equal(t, 3, bound)

	v := uint16(math.MaxUint16)
	some, err := Marshal(holder{V: &v})
	require.NoError(t, err)
	assert.Equal(t, bound+1, len(some))

	none, err := Marshal(holder{})
	require.NoError(t, err)
	assert.Equal(t, 1, len(none))
}

func TestCharWithinBound(t *testing.T) {
	for _, c := range []rune{'a', 'é', '€', '😀', '\U0010FFFF'} {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		w.WriteChar(c)
		require.NoError(t, w.Error())
		assert.LessOrEqual(t, buf.Len(), maxsize.CharSize)

		got, err := NewReader(&buf).ReadChar()
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestDecodeErrorOffset(t *testing.T) {
	err := Unmarshal([]byte{0x01, 0xff, 0xff, 0x04}, new(pair))
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 4, de.Offset)
	assert.Equal(t, "*wire.pair", de.Type)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Marshal(limited{Name: "much too long"})
	var ee *EncodeError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "wire.limited", ee.Type)
}

func TestOptionalMarshaler(t *testing.T) {
	type holder struct {
		S *shape
	}
	in := holder{S: &shape{variant: 1, side: 4}}
	buf, err := Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x01, 0x04}, buf)

	var out holder
	require.NoError(t, Unmarshal(buf, &out))
	assert.Equal(t, in, out)

	buf, err = Marshal(holder{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, buf)
}
