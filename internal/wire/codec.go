package wire

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/wireschema/wireschema/pkg/schema"
)

// Marshaler is implemented by types that write themselves, bypassing
// reflection. Enums are typically encoded this way: WriteVariant followed by
// the payload of the active variant.
type Marshaler interface {
	MarshalWire(w *Writer) error
}

// Unmarshaler is the decoding counterpart of Marshaler. It is called on a
// pointer receiver.
type Unmarshaler interface {
	UnmarshalWire(r *Reader) error
}

var (
	marshalerType   = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	uint128Type     = reflect.TypeOf(Uint128{})
	int128Type      = reflect.TypeOf(Int128{})
)

// maxPrealloc caps the slice capacity reserved from a decoded length prefix.
const maxPrealloc = 1024

// Marshal encodes v. Struct fields follow the wire tag rules of the schema
// package: skipped fields are not written and maxlen limits are enforced.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteValue(v); err != nil {
		return nil, &EncodeError{Type: fmt.Sprintf("%T", v), Err: err}
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes buf into the value out points to. Skipped struct fields
// are reset to their zero value. All of buf must be consumed.
func Unmarshal(buf []byte, out any) error {
	br := bytes.NewReader(buf)
	r := NewReader(br)
	if err := r.ReadValue(out); err != nil {
		return &DecodeError{Type: fmt.Sprintf("%T", out), Offset: r.BytesRead(), Err: err}
	}
	if br.Len() != 0 {
		return &DecodeError{
			Type:   fmt.Sprintf("%T", out),
			Offset: r.BytesRead(),
			Err:    fmt.Errorf("%w: %d left", ErrTrailingBytes, br.Len()),
		}
	}
	return nil
}

// WriteValue encodes v by reflection and returns the writer's error state.
// A non-nil top-level pointer is encoded as the value it points to, mirroring
// ReadValue.
func (w *Writer) WriteValue(v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		w.recordError(fmt.Errorf("%w: nil", ErrUnsupported))
		return w.err
	}
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	w.encode(rv, nil)
	return w.err
}

// ReadValue decodes into the value out points to.
func (r *Reader) ReadValue(out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		r.recordError(fmt.Errorf("%w: decode target must be a non-nil pointer, got %T", ErrUnsupported, out))
		return r.err
	}
	r.decode(rv.Elem(), nil)
	return r.err
}

func (w *Writer) encode(rv reflect.Value, maxLen *int) {
	if w.err != nil {
		return
	}
	rt := rv.Type()
	if rt.Kind() == reflect.Interface {
		w.recordError(fmt.Errorf("%w: interface %v", ErrUnsupported, rt))
		return
	}
	// Pointers are options even when they implement Marshaler; the hook
	// runs on the pointed-to value.
	if rt.Kind() != reflect.Pointer && rt.Implements(marshalerType) {
		w.recordError(rv.Interface().(Marshaler).MarshalWire(w))
		return
	}
	if rv.CanAddr() && reflect.PointerTo(rt).Implements(marshalerType) {
		w.recordError(rv.Addr().Interface().(Marshaler).MarshalWire(w))
		return
	}
	switch rt {
	case uint128Type:
		w.WriteU128(rv.Interface().(Uint128))
		return
	case int128Type:
		w.WriteI128(rv.Interface().(Int128))
		return
	}

	switch rt.Kind() {
	case reflect.Bool:
		w.WriteBool(rv.Bool())
	case reflect.Int8:
		w.WriteI8(int8(rv.Int()))
	case reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		w.writeUvarint(ZigZag(rv.Int()))
	case reflect.Uint8:
		w.WriteU8(uint8(rv.Uint()))
	case reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		w.writeUvarint(rv.Uint())
	case reflect.Float32:
		w.WriteF32(float32(rv.Float()))
	case reflect.Float64:
		w.WriteF64(rv.Float())
	case reflect.String:
		if !w.checkLen(rv.Len(), maxLen) {
			return
		}
		w.WriteString(rv.String())
	case reflect.Slice:
		if !w.checkLen(rv.Len(), maxLen) {
			return
		}
		if rt.Elem().Kind() == reflect.Uint8 {
			w.WriteBytes(rv.Bytes())
			return
		}
		w.WriteLen(rv.Len())
		for i := 0; i < rv.Len(); i++ {
			w.encode(rv.Index(i), nil)
		}
	case reflect.Array:
		// Fixed length: no prefix, like a tuple.
		for i := 0; i < rv.Len(); i++ {
			w.encode(rv.Index(i), nil)
		}
	case reflect.Map:
		if !w.checkLen(rv.Len(), maxLen) {
			return
		}
		w.WriteLen(rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			w.encode(iter.Key(), nil)
			w.encode(iter.Value(), nil)
		}
	case reflect.Pointer:
		if rv.IsNil() {
			w.WriteNone()
			return
		}
		w.WriteSome()
		w.encode(rv.Elem(), nil)
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			tag, err := schema.ParseFieldTag(sf)
			if err != nil {
				w.recordError(err)
				return
			}
			if tag.Skip {
				continue
			}
			w.encode(rv.Field(i), tag.MaxLen)
		}
	default:
		w.recordError(fmt.Errorf("%w: %v", ErrUnsupported, rt))
	}
}

func (w *Writer) checkLen(n int, maxLen *int) bool {
	if maxLen != nil && n > *maxLen {
		w.recordError(fmt.Errorf("%w: length %d, max %d", ErrTooLong, n, *maxLen))
		return false
	}
	return true
}

func (r *Reader) decode(rv reflect.Value, maxLen *int) {
	if r.err != nil {
		return
	}
	rt := rv.Type()
	if reflect.PointerTo(rt).Implements(unmarshalerType) {
		r.recordError(rv.Addr().Interface().(Unmarshaler).UnmarshalWire(r))
		return
	}
	switch rt {
	case uint128Type:
		v, _ := r.ReadU128()
		rv.Set(reflect.ValueOf(v))
		return
	case int128Type:
		v, _ := r.ReadI128()
		rv.Set(reflect.ValueOf(v))
		return
	}

	limit := -1
	if maxLen != nil {
		limit = *maxLen
	}

	switch rt.Kind() {
	case reflect.Bool:
		v, _ := r.ReadBool()
		rv.SetBool(v)
	case reflect.Int8:
		v, _ := r.ReadI8()
		rv.SetInt(int64(v))
	case reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		u, _ := r.readUvarint(rt.Bits())
		rv.SetInt(UnZigZag(u))
	case reflect.Uint8:
		v, _ := r.ReadU8()
		rv.SetUint(uint64(v))
	case reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		v, _ := r.readUvarint(rt.Bits())
		rv.SetUint(v)
	case reflect.Float32:
		v, _ := r.ReadF32()
		rv.SetFloat(float64(v))
	case reflect.Float64:
		v, _ := r.ReadF64()
		rv.SetFloat(v)
	case reflect.String:
		v, _ := r.ReadString(limit)
		rv.SetString(v)
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			v, _ := r.ReadBytes(limit)
			rv.SetBytes(v)
			return
		}
		n, err := r.ReadLen(limit)
		if err != nil {
			return
		}
		// The length prefix is untrusted; grow as elements actually decode.
		s := reflect.MakeSlice(rt, 0, min(n, maxPrealloc))
		for i := 0; i < n && r.err == nil; i++ {
			elem := reflect.New(rt.Elem()).Elem()
			r.decode(elem, nil)
			s = reflect.Append(s, elem)
		}
		if r.err != nil {
			return
		}
		rv.Set(s)
	case reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			r.decode(rv.Index(i), nil)
		}
	case reflect.Map:
		n, err := r.ReadLen(limit)
		if err != nil {
			return
		}
		m := reflect.MakeMap(rt)
		for i := 0; i < n && r.err == nil; i++ {
			k := reflect.New(rt.Key()).Elem()
			v := reflect.New(rt.Elem()).Elem()
			r.decode(k, nil)
			r.decode(v, nil)
			m.SetMapIndex(k, v)
		}
		rv.Set(m)
	case reflect.Pointer:
		some, err := r.ReadOption()
		if err != nil {
			return
		}
		if !some {
			rv.SetZero()
			return
		}
		p := reflect.New(rt.Elem())
		r.decode(p.Elem(), nil)
		rv.Set(p)
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			tag, err := schema.ParseFieldTag(sf)
			if err != nil {
				r.recordError(err)
				return
			}
			if tag.Skip {
				rv.Field(i).SetZero()
				continue
			}
			r.decode(rv.Field(i), tag.MaxLen)
		}
	default:
		r.recordError(fmt.Errorf("%w: %v", ErrUnsupported, rt))
	}
}
