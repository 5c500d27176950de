package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TagKey is the struct tag read by the reflection producer and the encoder.
//
//	Field  T `wire:"-"`             // skipped: absent from the descriptor and the wire
//	Field  T `wire:"name"`          // renamed
//	Field  T `wire:",maxlen=32"`    // bounded string, bytes, slice or map
//	Field  T `wire:"name,maxlen=8"`
const TagKey = "wire"

// FieldTag is a parsed wire struct tag.
type FieldTag struct {
	Name   string
	Skip   bool
	MaxLen *int
}

// ParseFieldTag reads the wire tag of sf. The field's Go name is used when
// the tag does not rename it.
func ParseFieldTag(sf reflect.StructField) (FieldTag, error) {
	raw, ok := sf.Tag.Lookup(TagKey)
	ft := FieldTag{Name: sf.Name}
	if !ok {
		return ft, nil
	}
	if raw == "-" {
		ft.Skip = true
		return ft, nil
	}
	parts := strings.Split(raw, ",")
	if parts[0] != "" {
		ft.Name = parts[0]
	}
	for _, opt := range parts[1:] {
		key, val, _ := strings.Cut(opt, "=")
		switch key {
		case "maxlen":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return FieldTag{}, fmt.Errorf("schema: field %s: invalid maxlen %q", sf.Name, val)
			}
			ft.MaxLen = &n
		case "":
		default:
			return FieldTag{}, fmt.Errorf("schema: field %s: unknown tag option %q", sf.Name, key)
		}
	}
	return ft, nil
}
