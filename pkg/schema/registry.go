package schema

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

// TypeInfo holds the wire metadata registered for a Go type.
type TypeInfo struct {
	GoType  reflect.Type
	Name    string
	Schema  *NamedType
	MaxSize *int // Manual override; nil means use inference
}

// RegisterOption customises a single registration.
type RegisterOption func(*TypeInfo)

// WithMaxSize attaches a manual size override to the registration.
func WithMaxSize(n int) RegisterOption {
	return func(ti *TypeInfo) { ti.MaxSize = &n }
}

// Registry maps Go types to descriptors for types that cannot carry a
// WireSchema method themselves (built-in scalars, types from other packages).
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byGoType map[reflect.Type]*TypeInfo
	byName   map[string]*TypeInfo
	logger   zerolog.Logger
}

// NewRegistry creates an empty registry. Registrations are logged at debug
// level to logger.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		byGoType: make(map[reflect.Type]*TypeInfo),
		byName:   make(map[string]*TypeInfo),
		logger:   logger,
	}
}

// Register associates the Go type of goTypeInstance (pointers are
// dereferenced) with nt. Registering the same metadata twice is a no-op;
// registering a different descriptor, name or override for an already known
// Go type or name fails with ErrConflict.
func (r *Registry) Register(goTypeInstance any, nt *NamedType, opts ...RegisterOption) error {
	rt := reflect.TypeOf(goTypeInstance)
	if rt == nil {
		return ErrNilType
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return r.RegisterType(rt, nt, opts...)
}

// RegisterType is Register for an already resolved reflect.Type.
func (r *Registry) RegisterType(rt reflect.Type, nt *NamedType, opts ...RegisterOption) error {
	if rt == nil {
		return ErrNilType
	}
	if nt == nil || nt.Type == nil {
		return fmt.Errorf("%w: registering %v", ErrNilDescriptor, rt)
	}

	info := &TypeInfo{GoType: rt, Name: nt.Name, Schema: nt}
	for _, opt := range opts {
		opt(info)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, found := r.byGoType[rt]; found {
		if !sameInfo(existing, info) {
			return fmt.Errorf("%w: type %v already registered as %q", ErrConflict, rt, existing.Name)
		}
		return nil
	}
	if existing, found := r.byName[info.Name]; found && existing.GoType != rt {
		return fmt.Errorf("%w: name %q already registered for type %v", ErrConflict, info.Name, existing.GoType)
	}

	r.byGoType[rt] = info
	r.byName[info.Name] = info
	ev := r.logger.Debug().Str("go_type", rt.String()).Str("name", info.Name)
	if info.MaxSize != nil {
		ev = ev.Int("max_size_override", *info.MaxSize)
	}
	ev.Msg("registered wire type")
	return nil
}

// MustRegister is like Register but panics if registration fails.
func (r *Registry) MustRegister(goTypeInstance any, nt *NamedType, opts ...RegisterOption) {
	if err := r.Register(goTypeInstance, nt, opts...); err != nil {
		panic(err)
	}
}

// Lookup returns the metadata registered for rt.
func (r *Registry) Lookup(rt reflect.Type) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, found := r.byGoType[rt]
	return info, found
}

// LookupName returns the metadata registered under a descriptor name.
func (r *Registry) LookupName(name string) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, found := r.byName[name]
	return info, found
}

// Len returns the number of registered Go types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byGoType)
}

func sameInfo(a, b *TypeInfo) bool {
	if a.Name != b.Name || a.Schema != b.Schema {
		return false
	}
	if (a.MaxSize == nil) != (b.MaxSize == nil) {
		return false
	}
	return a.MaxSize == nil || *a.MaxSize == *b.MaxSize
}

// Builtins returns a registry pre-populated with Go's scalar types.
//
// int and uint map to the platform-width kinds, which never have a static
// bound. uintptr is left out.
func Builtins(logger zerolog.Logger) *Registry {
	r := NewRegistry(logger)
	r.MustRegister(false, Bool)
	r.MustRegister(int8(0), I8)
	r.MustRegister(int16(0), I16)
	r.MustRegister(int32(0), I32)
	r.MustRegister(int64(0), I64)
	r.MustRegister(int(0), Isize)
	r.MustRegister(uint8(0), U8)
	r.MustRegister(uint16(0), U16)
	r.MustRegister(uint32(0), U32)
	r.MustRegister(uint64(0), U64)
	r.MustRegister(uint(0), Usize)
	r.MustRegister(float32(0), F32)
	r.MustRegister(float64(0), F64)
	r.MustRegister("", String)
	r.MustRegister([]byte(nil), Bytes)
	r.MustRegister(struct{}{}, Unit)
	return r
}

var defaultRegistry = Builtins(zerolog.Nop())

// Default returns the process-wide registry used by the package-level
// Register helpers.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a type to the default registry.
func Register(goTypeInstance any, nt *NamedType, opts ...RegisterOption) error {
	return defaultRegistry.Register(goTypeInstance, nt, opts...)
}

// MustRegister adds a type to the default registry and panics on conflict.
func MustRegister(goTypeInstance any, nt *NamedType, opts ...RegisterOption) {
	defaultRegistry.MustRegister(goTypeInstance, nt, opts...)
}
