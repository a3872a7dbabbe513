// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package abi

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/codec/reflectcodec"
	"github.com/ava-labs/contractcodec/shortname"
	"github.com/ava-labs/contractcodec/utils/wideint"
)

// FieldTagName overrides the ABI name of a struct field.
const FieldTagName = "abi"

var (
	ErrUnresolvedType      = errors.New("type is not in the type table")
	ErrUnnamedType         = errors.New("type has no name")
	ErrNotEnum             = errors.New("type is not a registered enum")
	ErrDiscriminantTooWide = errors.New("enum value does not fit a discriminant byte")
	ErrArrayTooLong        = errors.New("array length does not fit a byte")
	errNilType             = errors.New("nil type")
	errInconsistentPasses  = errors.New("indexing and resolution passes disagree")

	uint128Type      = reflect.TypeOf(wideint.Uint128{})
	int128Type       = reflect.TypeOf(wideint.Int128{})
	keyValueTypeType = reflect.TypeOf((*keyValueTyper)(nil)).Elem()
)

// keyValueTyper is implemented by persistent map handles.
type keyValueTyper interface {
	KeyValueTypes() (reflect.Type, reflect.Type)
}

// producer emits the table records of one registered type. Named references
// are looked up in [table]; when [strict] is false a missing entry becomes
// UnresolvedIndex instead of an error.
type producer func(table *LookupTable, strict bool) ([]NamedTypeSpec, error)

// Arg is a function argument.
type Arg struct {
	Name string
	Type reflect.Type
}

// ArgOf returns an argument of type T.
func ArgOf[T any](name string) Arg {
	return Arg{
		Name: name,
		Type: reflect.TypeOf((*T)(nil)).Elem(),
	}
}

// FnSpec declares one callable function.
type FnSpec struct {
	Kind FnKind
	Name string
	// Shortname defaults to shortname.FromName(Name).
	Shortname *shortname.Shortname
	Args      []Arg
	// SecretArg is required for, and only allowed on, FnKindZkSecretInput.
	// Its name is always SecretArgName.
	SecretArg *Arg
}

// Builder assembles a ContractAbi from Go types. Types are described through
// the registry the contract's codecs use, so that enums and item enums are
// recognized the same way they are encoded.
type Builder struct {
	registry      *reflectcodec.Registry
	fielder       reflectcodec.StructFielder
	binderVersion Version
	clientVersion Version

	registered map[reflect.Type]struct{}
	producers  []producer
}

func NewBuilder(registry *reflectcodec.Registry, binderVersion, clientVersion Version) *Builder {
	return &Builder{
		registry:      registry,
		fielder:       reflectcodec.NewStructFielder(reflectcodec.DefaultMaxSliceLen),
		binderVersion: binderVersion,
		clientVersion: clientVersion,
		registered:    make(map[reflect.Type]struct{}),
	}
}

// RegisterType adds a contract-visible named type. [v] is a value of a
// struct or C-style enum type, or a nil pointer to an item enum interface,
// e.g. (*Shape)(nil). Registration order is table order.
func (b *Builder) RegisterType(v interface{}) error {
	t := reflect.TypeOf(v)
	if t == nil {
		return errNilType
	}
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Interface {
		t = t.Elem()
	}
	if t.Name() == "" {
		return fmt.Errorf("%w: %s", ErrUnnamedType, t)
	}
	if _, ok := b.registered[t]; ok {
		return fmt.Errorf("%w: %s", reflectcodec.ErrDuplicateType, t)
	}

	var p producer
	switch {
	case t.Kind() == reflect.Struct:
		p = func(table *LookupTable, strict bool) ([]NamedTypeSpec, error) {
			record, err := b.structRecord(t, table, strict)
			return []NamedTypeSpec{record}, err
		}
	case t.Kind() == reflect.Interface:
		if _, ok := b.registry.Variants(t); !ok {
			return fmt.Errorf("%w: %s has no variants", ErrNotEnum, t)
		}
		p = func(table *LookupTable, strict bool) ([]NamedTypeSpec, error) {
			return b.itemEnumRecords(t, table, strict)
		}
	case isInteger(t.Kind()):
		if _, ok := b.registry.EnumValues(t); !ok {
			return fmt.Errorf("%w: %s", ErrNotEnum, t)
		}
		p = func(table *LookupTable, _ bool) ([]NamedTypeSpec, error) {
			return b.enumRecords(t, table)
		}
	default:
		return fmt.Errorf("%w: %s", codec.ErrUnsupportedType, t)
	}
	b.registered[t] = struct{}{}
	b.producers = append(b.producers, p)
	return nil
}

// Build runs the two passes over the registered types and resolves the state
// type and the functions against the completed table.
func (b *Builder) Build(state interface{}, fns ...FnSpec) (*ContractAbi, error) {
	stateType := reflect.TypeOf(state)
	if stateType == nil {
		return nil, errNilType
	}

	// Indexing: only the identities and order of the records matter here.
	table := NewLookupTable()
	empty := NewLookupTable()
	for _, p := range b.producers {
		records, err := p(empty, false)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			if _, err := table.Add(record.TypeID); err != nil {
				return nil, err
			}
		}
	}

	// Resolution: every reference now has its final index.
	types := make([]NamedTypeSpec, 0, table.Len())
	for _, p := range b.producers {
		records, err := p(table, true)
		if err != nil {
			return nil, err
		}
		types = append(types, records...)
	}
	if len(types) != table.Len() {
		return nil, fmt.Errorf("%w: %d records for %d identities", errInconsistentPasses, len(types), table.Len())
	}
	for i, record := range types {
		if index, _ := table.Index(record.TypeID); int(index) != i {
			return nil, fmt.Errorf("%w: %s at %d, indexed %d", errInconsistentPasses, record.TypeID, i, index)
		}
	}

	stateExpr, err := b.TypeExprOf(stateType, table)
	if err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	abi := &ContractAbi{
		BinderVersion: b.binderVersion,
		ClientVersion: b.clientVersion,
		State:         stateExpr,
		Types:         types,
	}
	for _, spec := range fns {
		fn, err := b.fnAbi(spec, table)
		if err != nil {
			return nil, err
		}
		abi.Fns = append(abi.Fns, fn)
	}
	return abi, nil
}

// TypeExprOf returns the expression of [t]. Named types must be in [table].
func (b *Builder) TypeExprOf(t reflect.Type, table *LookupTable) (TypeExpr, error) {
	return b.exprOf(t, table, true)
}

func (b *Builder) fnAbi(spec FnSpec, table *LookupTable) (FnAbi, error) {
	fn := FnAbi{
		Kind: spec.Kind,
		Name: spec.Name,
	}
	if spec.Shortname != nil {
		fn.Shortname = *spec.Shortname
	} else {
		fn.Shortname = shortname.FromName(spec.Name)
	}
	for _, arg := range spec.Args {
		expr, err := b.exprOf(arg.Type, table, true)
		if err != nil {
			return FnAbi{}, fmt.Errorf("%s argument %s: %w", spec.Name, arg.Name, err)
		}
		fn.Args = append(fn.Args, NamedEntityAbi{
			Name: arg.Name,
			Type: expr,
		})
	}
	if spec.SecretArg != nil {
		expr, err := b.exprOf(spec.SecretArg.Type, table, true)
		if err != nil {
			return FnAbi{}, fmt.Errorf("%s secret argument: %w", spec.Name, err)
		}
		fn.SecretArg = &NamedEntityAbi{
			Name: SecretArgName,
			Type: expr,
		}
	}
	return fn, fn.checkSecretArg()
}

func (b *Builder) structRecord(t reflect.Type, table *LookupTable, strict bool) (NamedTypeSpec, error) {
	id := typeID(t)
	record := NamedTypeSpec{
		Name:     t.Name(),
		TypeID:   id,
		TypeExpr: Named(table.Resolve(id)),
		Kind:     KindStruct,
	}
	fields, err := b.fielder.GetSerializedFields(t)
	if err != nil {
		return NamedTypeSpec{}, err
	}
	for _, desc := range fields {
		field := t.Field(desc.Index)
		expr, err := b.exprOf(field.Type, table, strict)
		if err != nil {
			return NamedTypeSpec{}, fmt.Errorf("%s.%s: %w", t.Name(), field.Name, err)
		}
		name := field.Name
		if tag := field.Tag.Get(FieldTagName); tag != "" {
			name = tag
		}
		record.Fields = append(record.Fields, NamedEntityAbi{
			Name: name,
			Type: expr,
		})
	}
	return record, nil
}

// itemEnumRecords emits the enum record followed by one struct record per
// variant, in discriminant order.
func (b *Builder) itemEnumRecords(t reflect.Type, table *LookupTable, strict bool) ([]NamedTypeSpec, error) {
	variants, _ := b.registry.Variants(t)
	id := typeID(t)
	enum := NamedTypeSpec{
		Name:     t.Name(),
		TypeID:   id,
		TypeExpr: Named(table.Resolve(id)),
		Kind:     KindEnum,
	}
	records := []NamedTypeSpec{enum}
	for _, variant := range variants {
		vt := variant.Type
		if vt.Kind() == reflect.Pointer {
			vt = vt.Elem()
		}
		if vt.Kind() != reflect.Struct || vt.Name() == "" {
			return nil, fmt.Errorf("%w: variant %s of %s", codec.ErrUnsupportedType, variant.Type, t)
		}
		record, err := b.structRecord(vt, table, strict)
		if err != nil {
			return nil, err
		}
		records[0].Variants = append(records[0].Variants, EnumVariant{
			Discriminant: variant.Discriminant,
			Type:         record.TypeExpr,
		})
		records = append(records, record)
	}
	return records, nil
}

// enumRecords emits the enum record of a C-style enum followed by an empty
// struct record per value.
func (b *Builder) enumRecords(t reflect.Type, table *LookupTable) ([]NamedTypeSpec, error) {
	values, _ := b.registry.EnumValues(t)
	id := typeID(t)
	enum := NamedTypeSpec{
		Name:     t.Name(),
		TypeID:   id,
		TypeExpr: Named(table.Resolve(id)),
		Kind:     KindEnum,
	}
	records := []NamedTypeSpec{enum}
	for _, value := range values {
		if value.Bits > math.MaxUint8 {
			return nil, fmt.Errorf("%w: %s value %s", ErrDiscriminantTooWide, t, value.Name)
		}
		valueID := id + "::" + value.Name
		record := NamedTypeSpec{
			Name:     value.Name,
			TypeID:   valueID,
			TypeExpr: Named(table.Resolve(valueID)),
			Kind:     KindStruct,
		}
		records[0].Variants = append(records[0].Variants, EnumVariant{
			Discriminant: byte(value.Bits),
			Type:         record.TypeExpr,
		})
		records = append(records, record)
	}
	return records, nil
}

func (b *Builder) exprOf(t reflect.Type, table *LookupTable, strict bool) (TypeExpr, error) {
	switch {
	case t == uint128Type:
		return Simple(OrdinalU128), nil
	case t == int128Type:
		return Simple(OrdinalI128), nil
	case t.Kind() != reflect.Pointer && t.Implements(keyValueTypeType):
		k, v := reflect.Zero(t).Interface().(keyValueTyper).KeyValueTypes()
		keyExpr, err := b.exprOf(k, table, strict)
		if err != nil {
			return nil, err
		}
		valueExpr, err := b.exprOf(v, table, strict)
		if err != nil {
			return nil, err
		}
		return AvlTreeMap(keyExpr, valueExpr), nil
	}

	if isInteger(t.Kind()) {
		if _, ok := b.registry.EnumValues(t); ok {
			return named(t, table, strict)
		}
	}

	switch t.Kind() {
	case reflect.Uint8:
		return Simple(OrdinalU8), nil
	case reflect.Uint16:
		return Simple(OrdinalU16), nil
	case reflect.Uint32:
		return Simple(OrdinalU32), nil
	case reflect.Uint64:
		return Simple(OrdinalU64), nil
	case reflect.Int8:
		return Simple(OrdinalI8), nil
	case reflect.Int16:
		return Simple(OrdinalI16), nil
	case reflect.Int32:
		return Simple(OrdinalI32), nil
	case reflect.Int64:
		return Simple(OrdinalI64), nil
	case reflect.Bool:
		return Simple(OrdinalBool), nil
	case reflect.String:
		return Simple(OrdinalString), nil
	case reflect.Slice:
		elem, err := b.exprOf(t.Elem(), table, strict)
		if err != nil {
			return nil, err
		}
		return Vec(elem), nil
	case reflect.Pointer:
		elem, err := b.exprOf(t.Elem(), table, strict)
		if err != nil {
			return nil, err
		}
		return Option(elem), nil
	case reflect.Array:
		if t.Len() > math.MaxUint8 {
			return nil, fmt.Errorf("%w: %s", ErrArrayTooLong, t)
		}
		elem, err := b.exprOf(t.Elem(), table, strict)
		if err != nil {
			return nil, err
		}
		if Ordinal(elem[0]) == OrdinalU8 {
			return SizedByteArray(byte(t.Len())), nil
		}
		return SizedArray(elem, byte(t.Len())), nil
	case reflect.Struct, reflect.Interface:
		return named(t, table, strict)
	default:
		return nil, fmt.Errorf("%w: %s", codec.ErrUnsupportedType, t)
	}
}

func named(t reflect.Type, table *LookupTable, strict bool) (TypeExpr, error) {
	if t.Name() == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnnamedType, t)
	}
	index, ok := table.Index(typeID(t))
	if !ok {
		if strict {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedType, t)
		}
		index = UnresolvedIndex
	}
	return Named(index), nil
}

// typeID names a Go type uniquely within a program.
func typeID(t reflect.Type) string {
	return t.PkgPath() + "." + t.Name()
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}
