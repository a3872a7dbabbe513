// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reflectcodec

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/utils/wideint"
)

var (
	ErrDuplicateType = errors.New("duplicate type registration")
	errNotInterface  = errors.New("target is not a pointer to an interface")
	errNotNamed      = errors.New("enum type must be a named integer type")
	errNotVariant    = errors.New("variant does not implement interface")

	uint128Type = reflect.TypeOf(wideint.Uint128{})
	int128Type  = reflect.TypeOf(wideint.Int128{})

	hostLittleEndian = func() bool {
		x := uint16(1)
		return *(*byte)(unsafe.Pointer(&x)) == 1
	}()
)

// EnumValue is one declared value of a C-style enum.
type EnumValue struct {
	// Bits holds the value zero- or sign-extended to 64 bits.
	Bits uint64
	Name string
}

// Variant is one registered implementation of an item enum.
type Variant struct {
	Discriminant byte
	Type         reflect.Type
}

type enumInfo struct {
	values []EnumValue
	known  map[uint64]struct{}
}

type variantSet struct {
	byDiscriminant map[byte]reflect.Type
	byType         map[reflect.Type]byte
}

// Registry records the per-type capabilities the codecs dispatch on: which
// structs are fixed-layout, which integer types are C-style enums, and which
// interfaces are item enums with which variants.
//
// Registration normally happens once at start up. All methods are safe for
// concurrent use.
type Registry struct {
	lock     sync.RWMutex
	fixed    map[reflect.Type]struct{}
	enums    map[reflect.Type]*enumInfo
	variants map[reflect.Type]*variantSet
}

// NewRegistry returns a registry that knows the 128-bit integers as
// fixed-layout types and nothing else.
func NewRegistry() *Registry {
	r := &Registry{
		fixed:    make(map[reflect.Type]struct{}),
		enums:    make(map[reflect.Type]*enumInfo),
		variants: make(map[reflect.Type]*variantSet),
	}
	if hostLittleEndian {
		r.fixed[uint128Type] = struct{}{}
		r.fixed[int128Type] = struct{}{}
	}
	return r
}

// RegisterFixedLayout declares the struct type of [v] as fixed-layout, so that
// sequences of it are copied in bulk. The declaration is validated: every
// field must itself be fixed-layout, the struct must have no padding and the
// host must be little-endian.
func (r *Registry) RegisterFixedLayout(v interface{}) error {
	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %v is not a struct", codec.ErrNotFixedLayout, t)
	}
	if hasMarshalHook(t) || hasUnmarshalHook(t) {
		return fmt.Errorf("%w: %s encodes itself", codec.ErrNotFixedLayout, t)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.fixed[t]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, t)
	}
	if !hostLittleEndian {
		return fmt.Errorf("%w: %s on a big-endian host", codec.ErrNotFixedLayout, t)
	}
	var size uintptr
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		switch {
		case !field.IsExported():
			return fmt.Errorf("%w: %s.%s is unexported", codec.ErrNotFixedLayout, t, field.Name)
		case field.Tag.Get(TagName) == SkipValue:
			return fmt.Errorf("%w: %s.%s is skipped", codec.ErrNotFixedLayout, t, field.Name)
		case !r.isFixedLayout(field.Type):
			return fmt.Errorf("%w: %s.%s has type %s", codec.ErrNotFixedLayout, t, field.Name, field.Type)
		}
		size += field.Type.Size()
	}
	if size != t.Size() {
		return fmt.Errorf("%w: %s has %d bytes of padding", codec.ErrNotFixedLayout, t, t.Size()-size)
	}
	r.fixed[t] = struct{}{}
	return nil
}

// RegisterEnum declares the named integer type T as a C-style enum whose only
// valid values are [values]. Encoding and decoding reject any other value.
func RegisterEnum[T constraints.Integer](r *Registry, values ...T) error {
	t := reflect.TypeOf(*new(T))
	switch {
	case t.PkgPath() == "" || t.Name() == "":
		return fmt.Errorf("%w: got %s", errNotNamed, t)
	case !supportedInteger(t.Kind()):
		return fmt.Errorf("%w: %s has platform dependent width", codec.ErrUnsupportedType, t)
	}

	info := &enumInfo{
		values: make([]EnumValue, 0, len(values)),
		known:  make(map[uint64]struct{}, len(values)),
	}
	for _, v := range values {
		bits := integerBits(reflect.ValueOf(v))
		if _, ok := info.known[bits]; ok {
			return fmt.Errorf("%w: %s value %v", codec.ErrDuplicateDiscriminant, t, v)
		}
		info.known[bits] = struct{}{}
		info.values = append(info.values, EnumValue{
			Bits: bits,
			Name: fmt.Sprint(v),
		})
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.enums[t]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, t)
	}
	r.enums[t] = info
	return nil
}

// RegisterVariant adds [variant] as the implementation of the item enum
// [iface] with the given discriminant. [iface] must be a nil pointer to the
// interface type, e.g. (*Shape)(nil).
func (r *Registry) RegisterVariant(iface interface{}, discriminant byte, variant interface{}) error {
	it := reflect.TypeOf(iface)
	if it == nil || it.Kind() != reflect.Pointer || it.Elem().Kind() != reflect.Interface {
		return fmt.Errorf("%w: got %v", errNotInterface, it)
	}
	it = it.Elem()
	vt := reflect.TypeOf(variant)
	if vt == nil || !vt.Implements(it) {
		return fmt.Errorf("%w: %v does not implement %s", errNotVariant, vt, it)
	}
	if vt.Kind() == reflect.Pointer && vt.Elem().Kind() == reflect.Pointer {
		return fmt.Errorf("%w: variant %s", codec.ErrUnsupportedType, vt)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	set, ok := r.variants[it]
	if !ok {
		set = &variantSet{
			byDiscriminant: make(map[byte]reflect.Type),
			byType:         make(map[reflect.Type]byte),
		}
		r.variants[it] = set
	}
	if existing, ok := set.byDiscriminant[discriminant]; ok {
		return fmt.Errorf("%w: %s discriminant 0x%02x used by %s and %s",
			codec.ErrDuplicateDiscriminant,
			it,
			discriminant,
			existing,
			vt,
		)
	}
	if _, ok := set.byType[vt]; ok {
		return fmt.Errorf("%w: %s already a variant of %s", ErrDuplicateType, vt, it)
	}
	set.byDiscriminant[discriminant] = vt
	set.byType[vt] = discriminant
	return nil
}

// IsFixedLayout reports whether the State encoding of [t] is identical to its
// in-memory representation.
func (r *Registry) IsFixedLayout(t reflect.Type) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.isFixedLayout(t)
}

func (r *Registry) isFixedLayout(t reflect.Type) bool {
	if !hostLittleEndian || hasMarshalHook(t) || hasUnmarshalHook(t) {
		return false
	}
	switch k := t.Kind(); {
	case supportedInteger(k):
		_, isEnum := r.enums[t]
		return !isEnum
	case k == reflect.Array:
		return r.isFixedLayout(t.Elem())
	case k == reflect.Struct:
		_, ok := r.fixed[t]
		return ok
	default:
		return false
	}
}

// FixedSize returns the encoded size of [t] if it is fixed-layout.
func (r *Registry) FixedSize(t reflect.Type) (int, bool) {
	if !r.IsFixedLayout(t) {
		return 0, false
	}
	return int(t.Size()), true
}

// EnumValues returns the declared values of the C-style enum [t] in
// registration order.
func (r *Registry) EnumValues(t reflect.Type) ([]EnumValue, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	info, ok := r.enums[t]
	if !ok {
		return nil, false
	}
	values := make([]EnumValue, len(info.values))
	copy(values, info.values)
	return values, true
}

// Variants returns the registered variants of the item enum [iface] sorted by
// discriminant.
func (r *Registry) Variants(iface reflect.Type) ([]Variant, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	set, ok := r.variants[iface]
	if !ok {
		return nil, false
	}
	variants := make([]Variant, 0, len(set.byDiscriminant))
	for d, t := range set.byDiscriminant {
		variants = append(variants, Variant{
			Discriminant: d,
			Type:         t,
		})
	}
	sort.Slice(variants, func(i, j int) bool {
		return variants[i].Discriminant < variants[j].Discriminant
	})
	return variants, true
}

// VariantOf returns the discriminant of the dynamic type of [value] within
// the item enum [iface].
func (r *Registry) VariantOf(iface reflect.Type, value interface{}) (byte, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	set, ok := r.variants[iface]
	if !ok {
		return 0, false
	}
	d, ok := set.byType[reflect.TypeOf(value)]
	return d, ok
}

func (r *Registry) isEnumValue(t reflect.Type, bits uint64) (isEnum bool, known bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	info, ok := r.enums[t]
	if !ok {
		return false, false
	}
	_, known = info.known[bits]
	return true, known
}

func (r *Registry) variantType(iface reflect.Type, discriminant byte) (reflect.Type, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	set, ok := r.variants[iface]
	if !ok {
		return nil, false
	}
	t, ok := set.byDiscriminant[discriminant]
	return t, ok
}

// supportedInteger reports whether [k] is an integer kind of fixed width.
func supportedInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

// integerBits returns [v] zero- or sign-extended to 64 bits.
func integerBits(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(v.Int())
	default:
		return v.Uint()
	}
}
