// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reflectcodec

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"
	"unsafe"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

// DefaultMaxSliceLen bounds every sequence unless a field's len tag says
// otherwise.
const DefaultMaxSliceLen = math.MaxInt32

var (
	errNeedPointer = errors.New("argument to unmarshal must be a pointer")

	marshalerType   = reflect.TypeOf((*codec.Marshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*codec.Unmarshaler)(nil)).Elem()

	_ codec.Codec = (*genericCodec)(nil)
)

// Config selects the wire format a codec speaks.
type Config struct {
	Format codec.Format

	// LittleEndian selects the byte order of every multi-byte integer,
	// including length prefixes.
	LittleEndian bool

	// SignedLengths marks sequence lengths as signed 32-bit values; negative
	// lengths are rejected when decoding.
	SignedLengths bool

	// BulkCopy enables copying sequences of fixed-layout elements as a single
	// run of memory. It only takes effect on little-endian hosts.
	BulkCopy bool

	MaxSliceLen uint32
	Registry    *Registry
}

// genericCodec handles marshaling and unmarshaling of structs with a generic
// implementation for every interface. The behaviour that differs between
// formats is driven by [Config].
type genericCodec struct {
	format        codec.Format
	littleEndian  bool
	signedLengths bool
	bulkCopy      bool
	maxSliceLen   uint32
	registry      *Registry
	fielder       StructFielder
}

// New returns a new, concurrency-safe codec
func New(config Config) codec.Codec {
	if config.Registry == nil {
		config.Registry = NewRegistry()
	}
	if config.MaxSliceLen == 0 || config.MaxSliceLen > DefaultMaxSliceLen {
		config.MaxSliceLen = DefaultMaxSliceLen
	}
	return &genericCodec{
		format:        config.Format,
		littleEndian:  config.LittleEndian,
		signedLengths: config.SignedLengths,
		bulkCopy:      config.BulkCopy && config.LittleEndian && hostLittleEndian,
		maxSliceLen:   config.MaxSliceLen,
		registry:      config.Registry,
		fielder:       NewStructFielder(config.MaxSliceLen),
	}
}

func (c *genericCodec) Format() codec.Format {
	return c.format
}

// FixedSize reports the encoded size of [t] when sequences of it are copied
// in bulk.
func (c *genericCodec) FixedSize(t reflect.Type) (int, bool) {
	if !c.bulkCopy {
		return 0, false
	}
	return c.registry.FixedSize(t)
}

func (c *genericCodec) Size(value interface{}) (int, error) {
	v, err := topLevel(value)
	if err != nil {
		return 0, err
	}
	return c.size(v)
}

// To marshal an interface, [value] must be a pointer to the interface. A
// pointer passed here is followed once, mirroring UnmarshalFrom, so an
// option is marshaled by passing a pointer to it.
func (c *genericCodec) MarshalInto(value interface{}, p *wrappers.Packer) error {
	v, err := topLevel(value)
	if err != nil {
		return err
	}
	return c.marshal(v, p, c.maxSliceLen)
}

func topLevel(value interface{}) (reflect.Value, error) {
	if value == nil {
		return reflect.Value{}, codec.ErrMarshalNil // can't marshal nil
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Pointer {
		return v, nil
	}
	if v.IsNil() {
		return reflect.Value{}, codec.ErrMarshalNil
	}
	return v.Elem(), nil
}

// Unmarshal unmarshals [p] into [dest], where [dest] must be a pointer
func (c *genericCodec) UnmarshalFrom(p *wrappers.Packer, dest interface{}) error {
	if dest == nil {
		return codec.ErrMarshalNil
	}
	destPtr := reflect.ValueOf(dest)
	if destPtr.Kind() != reflect.Pointer || destPtr.IsNil() {
		return errNeedPointer
	}
	return c.unmarshal(p, destPtr.Elem(), c.maxSliceLen)
}

func hasMarshalHook(t reflect.Type) bool {
	k := t.Kind()
	return k != reflect.Pointer && k != reflect.Interface && t.Implements(marshalerType)
}

func hasUnmarshalHook(t reflect.Type) bool {
	k := t.Kind()
	return k != reflect.Pointer && k != reflect.Interface && reflect.PointerTo(t).Implements(unmarshalerType)
}

// isRawByte reports whether elements of [t] are copied as plain bytes inside
// arrays and slices.
func (c *genericCodec) isRawByte(t reflect.Type) bool {
	return t.Kind() == reflect.Uint8 && !c.isEnum(t) && !hasMarshalHook(t) && !hasUnmarshalHook(t)
}

// marshal writes the value to the packer
func (c *genericCodec) marshal(value reflect.Value, p *wrappers.Packer, maxSliceLen uint32) error {
	if !value.IsValid() {
		return codec.ErrMarshalNil
	}

	t := value.Type()
	if hasMarshalHook(t) {
		if err := value.Interface().(codec.Marshaler).MarshalWire(c.format, p); err != nil {
			return err
		}
		return p.Err
	}

	valueKind := value.Kind()
	switch valueKind {
	case reflect.Uint8, reflect.Int8, reflect.Uint16, reflect.Int16,
		reflect.Uint32, reflect.Int32, reflect.Uint64, reflect.Int64:
		bits := integerBits(value)
		if isEnum, known := c.registry.isEnumValue(t, bits); isEnum && !known {
			return fmt.Errorf("%w: %s value %v", codec.ErrUnknownDiscriminant, t, value)
		}
		c.packInteger(p, valueKind, bits)
		return p.Err
	case reflect.Bool:
		p.PackBool(value.Bool())
		return p.Err
	case reflect.String:
		str := value.String()
		if !utf8.ValidString(str) {
			return codec.ErrInvalidUTF8
		}
		if uint64(len(str)) > wrappers.MaxStringLen {
			return fmt.Errorf("%w: string of %d bytes", codec.ErrMaxSliceLenExceeded, len(str))
		}
		c.packLength(p, uint32(len(str)))
		p.PackFixedBytes([]byte(str))
		return p.Err
	case reflect.Pointer:
		if value.IsNil() {
			p.PackByte(0)
			return p.Err
		}
		p.PackByte(1)
		if p.Errored() {
			return p.Err
		}
		return c.marshal(value.Elem(), p, maxSliceLen)
	case reflect.Interface:
		if value.IsNil() {
			return fmt.Errorf("%w: %s", codec.ErrMarshalNil, t)
		}
		underlying := value.Elem()
		discriminant, ok := c.registry.VariantOf(t, underlying.Interface())
		if !ok {
			return fmt.Errorf("%w: %s is not a registered variant of %s",
				codec.ErrDoesNotImplementInterface,
				underlying.Type(),
				t,
			)
		}
		p.PackByte(discriminant)
		if p.Errored() {
			return p.Err
		}
		if underlying.Kind() == reflect.Pointer {
			if underlying.IsNil() {
				return fmt.Errorf("%w: nil %s", codec.ErrMarshalNil, underlying.Type())
			}
			underlying = underlying.Elem()
		}
		return c.marshal(underlying, p, maxSliceLen)
	case reflect.Array:
		numElts := value.Len()
		if c.isRawByte(t.Elem()) {
			bytes := make([]byte, numElts)
			for i := 0; i < numElts; i++ {
				bytes[i] = byte(value.Index(i).Uint())
			}
			p.PackFixedBytes(bytes)
			return p.Err
		}
		for i := 0; i < numElts; i++ { // Process each element in the array
			if err := c.marshal(value.Index(i), p, maxSliceLen); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice:
		numElts := value.Len() // # elements in the slice/array. 0 if this slice is nil.
		if numElts > math.MaxInt32 || uint32(numElts) > maxSliceLen {
			return fmt.Errorf("%w; slice length, %d, exceeds maximum length, %d",
				codec.ErrMaxSliceLenExceeded,
				numElts,
				maxSliceLen,
			)
		}
		c.packLength(p, uint32(numElts))
		if p.Errored() {
			return p.Err
		}
		if bytes, ok := c.sliceBytes(value); ok {
			p.PackFixedBytes(bytes)
			return p.Err
		}
		for i := 0; i < numElts; i++ { // Process each element in the slice
			if err := c.marshal(value.Index(i), p, maxSliceLen); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		switch t {
		case uint128Type, int128Type:
			c.packUint128(p, value)
			return p.Err
		}
		serializedFields, err := c.fielder.GetSerializedFields(t)
		if err != nil {
			return err
		}
		for _, fieldDesc := range serializedFields { // Go through all fields of this struct that are serialized
			if err := c.marshal(value.Field(fieldDesc.Index), p, fieldDesc.MaxSliceLen); err != nil { // Serialize the field and write to byte array
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("can't marshal %w: %s", codec.ErrUnsupportedType, t)
	}
}

// Unmarshal from p.Bytes into [value]. [value] must be addressable.
func (c *genericCodec) unmarshal(p *wrappers.Packer, value reflect.Value, maxSliceLen uint32) error {
	t := value.Type()
	if hasUnmarshalHook(t) {
		if err := value.Addr().Interface().(codec.Unmarshaler).UnmarshalWire(c.format, p); err != nil {
			return err
		}
		return p.Err
	}

	valueKind := value.Kind()
	switch valueKind {
	case reflect.Uint8, reflect.Int8, reflect.Uint16, reflect.Int16,
		reflect.Uint32, reflect.Int32, reflect.Uint64, reflect.Int64:
		bits := c.unpackInteger(p, valueKind)
		if p.Errored() {
			return fmt.Errorf("couldn't unmarshal %s: %w", t, p.Err)
		}
		if isEnum, known := c.registry.isEnumValue(t, bits); isEnum && !known {
			return fmt.Errorf("%w: %s value 0x%x", codec.ErrUnknownDiscriminant, t, bits)
		}
		switch valueKind {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			value.SetInt(int64(bits))
		default:
			value.SetUint(bits)
		}
		return nil
	case reflect.Bool:
		b := p.UnpackBool()
		if p.Errored() {
			return fmt.Errorf("couldn't unmarshal bool: %w", p.Err)
		}
		value.SetBool(b)
		return nil
	case reflect.String:
		length := c.unpackLength(p)
		if p.Errored() {
			return fmt.Errorf("couldn't unmarshal string length: %w", p.Err)
		}
		if uint64(length) > uint64(p.Remaining()) {
			return fmt.Errorf("couldn't unmarshal string of %d bytes: %w", length, wrappers.ErrInsufficientLength)
		}
		bytes := p.UnpackFixedBytes(int(length))
		if p.Errored() {
			return fmt.Errorf("couldn't unmarshal string: %w", p.Err)
		}
		if !utf8.Valid(bytes) {
			return codec.ErrInvalidUTF8
		}
		value.SetString(string(bytes))
		return nil
	case reflect.Pointer:
		marker := p.UnpackByte()
		if p.Errored() {
			return fmt.Errorf("couldn't unmarshal option marker: %w", p.Err)
		}
		if marker == 0 {
			value.Set(reflect.Zero(t))
			return nil
		}
		v := reflect.New(t.Elem())
		if err := c.unmarshal(p, v.Elem(), maxSliceLen); err != nil {
			return err
		}
		value.Set(v)
		return nil
	case reflect.Interface:
		discriminant := p.UnpackByte()
		if p.Errored() {
			return fmt.Errorf("couldn't unmarshal discriminant of %s: %w", t, p.Err)
		}
		variantType, ok := c.registry.variantType(t, discriminant)
		if !ok {
			return fmt.Errorf("%w: %s discriminant 0x%02x", codec.ErrUnknownDiscriminant, t, discriminant)
		}
		if variantType.Kind() == reflect.Pointer {
			v := reflect.New(variantType.Elem())
			if err := c.unmarshal(p, v.Elem(), maxSliceLen); err != nil {
				return err
			}
			value.Set(v)
			return nil
		}
		v := reflect.New(variantType).Elem()
		if err := c.unmarshal(p, v, maxSliceLen); err != nil {
			return err
		}
		value.Set(v)
		return nil
	case reflect.Array:
		numElts := value.Len()
		if c.isRawByte(t.Elem()) {
			bytes := p.UnpackFixedBytes(numElts)
			if p.Errored() {
				return fmt.Errorf("couldn't unmarshal %s: %w", t, p.Err)
			}
			for i, b := range bytes {
				value.Index(i).SetUint(uint64(b))
			}
			return nil
		}
		for i := 0; i < numElts; i++ {
			if err := c.unmarshal(p, value.Index(i), maxSliceLen); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice:
		numElts, err := c.unpackSliceLen(p, t, maxSliceLen)
		if err != nil {
			return err
		}
		if numElts == 0 {
			value.Set(reflect.Zero(t))
			return nil
		}
		slice := reflect.MakeSlice(t, numElts, numElts)
		if eltSize, ok := c.staticSize(t.Elem()); ok && eltSize == 0 {
			value.Set(slice)
			return nil
		}
		if dst, ok := c.sliceBytes(slice); ok {
			src := p.UnpackFixedBytes(len(dst))
			if p.Errored() {
				return fmt.Errorf("couldn't unmarshal %s: %w", t, p.Err)
			}
			copy(dst, src)
			value.Set(slice)
			return nil
		}
		for i := 0; i < numElts; i++ {
			if err := c.unmarshal(p, slice.Index(i), maxSliceLen); err != nil {
				return err
			}
		}
		value.Set(slice)
		return nil
	case reflect.Struct:
		switch t {
		case uint128Type, int128Type:
			c.unpackUint128(p, value)
			if p.Errored() {
				return fmt.Errorf("couldn't unmarshal %s: %w", t, p.Err)
			}
			return nil
		}
		serializedFieldIndices, err := c.fielder.GetSerializedFields(t)
		if err != nil {
			return err
		}
		for _, fieldDesc := range serializedFieldIndices {
			if err := c.unmarshal(p, value.Field(fieldDesc.Index), fieldDesc.MaxSliceLen); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("can't unmarshal %w: %s", codec.ErrUnsupportedType, t)
	}
}

func (c *genericCodec) size(value reflect.Value) (int, error) {
	if !value.IsValid() {
		return 0, codec.ErrMarshalNil
	}

	t := value.Type()
	if hasMarshalHook(t) {
		p := wrappers.Packer{MaxSize: math.MaxInt32}
		if err := value.Interface().(codec.Marshaler).MarshalWire(c.format, &p); err != nil {
			return 0, err
		}
		return len(p.Bytes), p.Err
	}

	switch value.Kind() {
	case reflect.Uint8, reflect.Int8:
		return wrappers.ByteLen, nil
	case reflect.Uint16, reflect.Int16:
		return wrappers.ShortLen, nil
	case reflect.Uint32, reflect.Int32:
		return wrappers.IntLen, nil
	case reflect.Uint64, reflect.Int64:
		return wrappers.LongLen, nil
	case reflect.Bool:
		return wrappers.BoolLen, nil
	case reflect.String:
		return wrappers.IntLen + value.Len(), nil
	case reflect.Pointer:
		if value.IsNil() {
			return wrappers.ByteLen, nil
		}
		size, err := c.size(value.Elem())
		return wrappers.ByteLen + size, err
	case reflect.Interface:
		if value.IsNil() {
			return 0, fmt.Errorf("%w: %s", codec.ErrMarshalNil, t)
		}
		underlying := value.Elem()
		if underlying.Kind() == reflect.Pointer {
			underlying = underlying.Elem()
		}
		size, err := c.size(underlying)
		return wrappers.ByteLen + size, err
	case reflect.Array, reflect.Slice:
		size := 0
		if value.Kind() == reflect.Slice {
			size = wrappers.IntLen
		}
		numElts := value.Len()
		if numElts == 0 {
			return size, nil
		}
		if eltSize, ok := c.staticSize(t.Elem()); ok {
			return size + numElts*eltSize, nil
		}
		for i := 0; i < numElts; i++ {
			eltSize, err := c.size(value.Index(i))
			if err != nil {
				return 0, err
			}
			size += eltSize
		}
		return size, nil
	case reflect.Struct:
		switch t {
		case uint128Type, int128Type:
			return wrappers.Uint128Len, nil
		}
		serializedFields, err := c.fielder.GetSerializedFields(t)
		if err != nil {
			return 0, err
		}
		size := 0
		for _, fieldDesc := range serializedFields {
			fieldSize, err := c.size(value.Field(fieldDesc.Index))
			if err != nil {
				return 0, err
			}
			size += fieldSize
		}
		return size, nil
	default:
		return 0, fmt.Errorf("can't evaluate marshalled size of %w: %s", codec.ErrUnsupportedType, t)
	}
}

// staticSize returns the encoded size of [t] when it doesn't depend on the
// value.
func (c *genericCodec) staticSize(t reflect.Type) (int, bool) {
	if hasMarshalHook(t) {
		return 0, false
	}
	switch t.Kind() {
	case reflect.Uint8, reflect.Int8:
		return wrappers.ByteLen, true
	case reflect.Uint16, reflect.Int16:
		return wrappers.ShortLen, true
	case reflect.Uint32, reflect.Int32:
		return wrappers.IntLen, true
	case reflect.Uint64, reflect.Int64:
		return wrappers.LongLen, true
	case reflect.Bool:
		return wrappers.BoolLen, true
	case reflect.Array:
		eltSize, ok := c.staticSize(t.Elem())
		return t.Len() * eltSize, ok
	case reflect.Struct:
		switch t {
		case uint128Type, int128Type:
			return wrappers.Uint128Len, true
		}
		serializedFields, err := c.fielder.GetSerializedFields(t)
		if err != nil {
			return 0, false
		}
		size := 0
		for _, fieldDesc := range serializedFields {
			fieldSize, ok := c.staticSize(t.Field(fieldDesc.Index).Type)
			if !ok {
				return 0, false
			}
			size += fieldSize
		}
		return size, true
	default:
		return 0, false
	}
}

// minSize returns a lower bound on the encoded size of any value of [t].
func (c *genericCodec) minSize(t reflect.Type, seen map[reflect.Type]bool) int {
	switch {
	case hasMarshalHook(t):
		return wrappers.ByteLen
	case seen[t]:
		return 0
	}
	switch t.Kind() {
	case reflect.Uint8, reflect.Int8, reflect.Bool, reflect.Pointer, reflect.Interface:
		return wrappers.ByteLen
	case reflect.Uint16, reflect.Int16:
		return wrappers.ShortLen
	case reflect.Uint32, reflect.Int32, reflect.String, reflect.Slice:
		return wrappers.IntLen
	case reflect.Uint64, reflect.Int64:
		return wrappers.LongLen
	case reflect.Array:
		return t.Len() * c.minSize(t.Elem(), seen)
	case reflect.Struct:
		switch t {
		case uint128Type, int128Type:
			return wrappers.Uint128Len
		}
		serializedFields, err := c.fielder.GetSerializedFields(t)
		if err != nil {
			return 0
		}
		seen[t] = true
		defer delete(seen, t)
		size := 0
		for _, fieldDesc := range serializedFields {
			size += c.minSize(t.Field(fieldDesc.Index).Type, seen)
		}
		return size
	default:
		return 0
	}
}

// sliceBytes returns the backing memory of [value] when its elements are
// written as a single run of bytes.
func (c *genericCodec) sliceBytes(value reflect.Value) ([]byte, bool) {
	numElts := value.Len()
	elemType := value.Type().Elem()
	if numElts == 0 {
		return nil, false
	}
	switch {
	case c.isRawByte(elemType):
		return unsafe.Slice((*byte)(value.UnsafePointer()), numElts), true
	case c.bulkCopy && c.registry.IsFixedLayout(elemType):
		return unsafe.Slice((*byte)(value.UnsafePointer()), numElts*int(elemType.Size())), true
	default:
		return nil, false
	}
}

func (c *genericCodec) unpackSliceLen(p *wrappers.Packer, t reflect.Type, maxSliceLen uint32) (int, error) {
	rawLen := c.unpackLength(p)
	if p.Errored() {
		return 0, fmt.Errorf("couldn't unmarshal slice length: %w", p.Err)
	}
	if c.signedLengths && int32(rawLen) < 0 {
		return 0, fmt.Errorf("%w: %d", codec.ErrNegativeLength, int32(rawLen))
	}
	if rawLen > maxSliceLen {
		return 0, fmt.Errorf("%w; array length, %d, exceeds maximum length, %d",
			codec.ErrMaxSliceLenExceeded,
			rawLen,
			maxSliceLen,
		)
	}
	numElts := int(rawLen)
	if minSize := c.minSize(t.Elem(), make(map[reflect.Type]bool)); minSize > 0 && numElts > p.Remaining()/minSize {
		return 0, fmt.Errorf("couldn't unmarshal %d elements of %s: %w", numElts, t.Elem(), wrappers.ErrInsufficientLength)
	}
	return numElts, nil
}

func (c *genericCodec) isEnum(t reflect.Type) bool {
	_, ok := c.registry.EnumValues(t)
	return ok
}

func (c *genericCodec) packLength(p *wrappers.Packer, length uint32) {
	c.packInteger(p, reflect.Uint32, uint64(length))
}

func (c *genericCodec) unpackLength(p *wrappers.Packer) uint32 {
	return uint32(c.unpackInteger(p, reflect.Uint32))
}

func (c *genericCodec) packInteger(p *wrappers.Packer, kind reflect.Kind, bits uint64) {
	switch kind {
	case reflect.Uint8, reflect.Int8:
		p.PackByte(byte(bits))
	case reflect.Uint16, reflect.Int16:
		if c.littleEndian {
			p.PackShortLE(uint16(bits))
		} else {
			p.PackShort(uint16(bits))
		}
	case reflect.Uint32, reflect.Int32:
		if c.littleEndian {
			p.PackIntLE(uint32(bits))
		} else {
			p.PackInt(uint32(bits))
		}
	default:
		if c.littleEndian {
			p.PackLongLE(bits)
		} else {
			p.PackLong(bits)
		}
	}
}

// unpackInteger returns the value zero- or sign-extended to 64 bits.
func (c *genericCodec) unpackInteger(p *wrappers.Packer, kind reflect.Kind) uint64 {
	switch kind {
	case reflect.Uint8:
		return uint64(p.UnpackByte())
	case reflect.Int8:
		return uint64(int8(p.UnpackByte()))
	case reflect.Uint16, reflect.Int16:
		var v uint16
		if c.littleEndian {
			v = p.UnpackShortLE()
		} else {
			v = p.UnpackShort()
		}
		if kind == reflect.Int16 {
			return uint64(int16(v))
		}
		return uint64(v)
	case reflect.Uint32, reflect.Int32:
		var v uint32
		if c.littleEndian {
			v = p.UnpackIntLE()
		} else {
			v = p.UnpackInt()
		}
		if kind == reflect.Int32 {
			return uint64(int32(v))
		}
		return uint64(v)
	default:
		if c.littleEndian {
			return p.UnpackLongLE()
		}
		return p.UnpackLong()
	}
}

// packUint128 writes a wideint value, whose fields are Lo then Hi.
func (c *genericCodec) packUint128(p *wrappers.Packer, value reflect.Value) {
	lo, hi := value.Field(0).Uint(), value.Field(1).Uint()
	if c.littleEndian {
		p.PackLongLE(lo)
		p.PackLongLE(hi)
	} else {
		p.PackLong(hi)
		p.PackLong(lo)
	}
}

func (c *genericCodec) unpackUint128(p *wrappers.Packer, value reflect.Value) {
	var lo, hi uint64
	if c.littleEndian {
		lo = p.UnpackLongLE()
		hi = p.UnpackLongLE()
	} else {
		hi = p.UnpackLong()
		lo = p.UnpackLong()
	}
	if p.Errored() {
		return
	}
	value.Field(0).SetUint(lo)
	value.Field(1).SetUint(hi)
}
