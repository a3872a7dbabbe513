// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package abi

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/avl"
	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/codec/reflectcodec"
	"github.com/ava-labs/contractcodec/shortname"
	"github.com/ava-labs/contractcodec/utils/wideint"
)

type Inner struct {
	A uint8
	B []uint64
}

type Outer struct {
	In  Inner
	Tag *Inner `abi:"tag"`
}

type Node struct {
	Label    string
	Children []Node
}

type Shape interface {
	isShape()
}

type Circle struct {
	Radius uint32
}

func (Circle) isShape() {}

type Square struct {
	Side uint32
}

func (Square) isShape() {}

type Color uint8

const (
	Red   Color = 1
	Green Color = 3
)

func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Green:
		return "Green"
	default:
		return "Unknown"
	}
}

type Wide int16

type Unregistered interface {
	Other()
}

type Counter struct {
	Value uint32
}

func newRegistry(t *testing.T) *reflectcodec.Registry {
	require := require.New(t)

	r := reflectcodec.NewRegistry()
	require.NoError(r.RegisterVariant((*Shape)(nil), 2, Circle{}))
	require.NoError(r.RegisterVariant((*Shape)(nil), 5, Square{}))
	require.NoError(reflectcodec.RegisterEnum(r, Red, Green))
	return r
}

func TestNestedReferenceUsesAssignedIndex(t *testing.T) {
	tests := []struct {
		name       string
		register   []interface{}
		outerIndex byte
		innerIndex byte
	}{
		{
			name:       "inner first",
			register:   []interface{}{Inner{}, Outer{}},
			outerIndex: 1,
			innerIndex: 0,
		},
		{
			name:       "outer first",
			register:   []interface{}{Outer{}, Inner{}},
			outerIndex: 0,
			innerIndex: 1,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			b := NewBuilder(newRegistry(t), Version{}, Version{})
			for _, v := range test.register {
				require.NoError(b.RegisterType(v))
			}
			a, err := b.Build(Outer{})
			require.NoError(err)
			require.Len(a.Types, 2)

			require.Equal(Named(test.outerIndex), a.State)
			outer := a.Types[test.outerIndex]
			require.Equal("Outer", outer.Name)
			require.Equal([]NamedEntityAbi{
				{Name: "In", Type: TypeExpr{0x00, test.innerIndex}},
				{Name: "tag", Type: TypeExpr{0x12, 0x00, test.innerIndex}},
			}, outer.Fields)

			inner := a.Types[test.innerIndex]
			require.Equal("Inner", inner.Name)
			require.Equal(Named(test.innerIndex), inner.TypeExpr)
			require.Equal([]NamedEntityAbi{
				{Name: "A", Type: TypeExpr{0x01}},
				{Name: "B", Type: TypeExpr{0x0e, 0x04}},
			}, inner.Fields)
		})
	}
}

func TestSelfReference(t *testing.T) {
	require := require.New(t)

	b := NewBuilder(newRegistry(t), Version{}, Version{})
	require.NoError(b.RegisterType(Counter{}))
	require.NoError(b.RegisterType(Node{}))

	a, err := b.Build(Node{})
	require.NoError(err)
	require.Equal(Named(1), a.State)
	require.Equal([]NamedEntityAbi{
		{Name: "Label", Type: TypeExpr{0x0b}},
		{Name: "Children", Type: TypeExpr{0x0e, 0x00, 0x01}},
	}, a.Types[1].Fields)
}

type Ledger struct {
	Balances *avl.Handle[uint32, uint64]
}

func TestOptionalTreeField(t *testing.T) {
	require := require.New(t)

	b := NewBuilder(newRegistry(t), Version{}, Version{})
	require.NoError(b.RegisterType(Ledger{}))

	a, err := b.Build(Ledger{})
	require.NoError(err)
	require.Equal([]NamedEntityAbi{
		{Name: "Balances", Type: TypeExpr{0x12, 0x19, 0x03, 0x04}},
	}, a.Types[0].Fields)
	require.Equal("Option<AvlTreeMap<u32, u64>>", a.Types[0].Fields[0].Type.String())
}

func TestItemEnumRecords(t *testing.T) {
	require := require.New(t)

	b := NewBuilder(newRegistry(t), Version{}, Version{})
	require.NoError(b.RegisterType(Counter{}))
	require.NoError(b.RegisterType((*Shape)(nil)))

	a, err := b.Build(Counter{})
	require.NoError(err)
	require.Len(a.Types, 4)

	shape := a.Types[1]
	require.Equal(KindEnum, shape.Kind)
	require.Equal("Shape", shape.Name)
	require.Equal([]EnumVariant{
		{Discriminant: 2, Type: Named(2)},
		{Discriminant: 5, Type: Named(3)},
	}, shape.Variants)

	require.Equal("Circle", a.Types[2].Name)
	require.Equal(KindStruct, a.Types[2].Kind)
	require.Equal([]NamedEntityAbi{{Name: "Radius", Type: TypeExpr{0x03}}}, a.Types[2].Fields)
	require.Equal("Square", a.Types[3].Name)
}

func TestEnumRecords(t *testing.T) {
	require := require.New(t)

	b := NewBuilder(newRegistry(t), Version{}, Version{})
	require.NoError(b.RegisterType(Red))
	require.NoError(b.RegisterType(Counter{}))

	a, err := b.Build(Counter{}, FnSpec{
		Kind: FnKindAction,
		Name: "paint",
		Args: []Arg{ArgOf[Color]("color"), ArgOf[[2]Color]("palette")},
	})
	require.NoError(err)
	require.Len(a.Types, 4)

	color := a.Types[0]
	require.Equal(KindEnum, color.Kind)
	require.Equal([]EnumVariant{
		{Discriminant: 1, Type: Named(1)},
		{Discriminant: 3, Type: Named(2)},
	}, color.Variants)
	require.Equal(NamedTypeSpec{
		Name:     "Red",
		TypeID:   color.TypeID + "::Red",
		TypeExpr: Named(1),
		Kind:     KindStruct,
	}, a.Types[1])
	require.Equal("Green", a.Types[2].Name)
	require.Equal(Named(3), a.State)

	fn, ok := a.Fn("paint")
	require.True(ok)
	require.Equal(shortname.FromName("paint"), fn.Shortname)
	require.Equal([]NamedEntityAbi{
		{Name: "color", Type: TypeExpr{0x00, 0x00}},
		{Name: "palette", Type: TypeExpr{0x1a, 0x00, 0x00, 0x02}},
	}, fn.Args)
}

func TestTypeExprOf(t *testing.T) {
	b := NewBuilder(newRegistry(t), Version{}, Version{})
	table := NewLookupTable()
	_, err := table.Add(typeID(reflect.TypeOf(Counter{})))
	require.NoError(t, err)

	tests := []struct {
		name     string
		typ      reflect.Type
		expected TypeExpr
	}{
		{"u8", reflect.TypeOf(uint8(0)), TypeExpr{0x01}},
		{"u16", reflect.TypeOf(uint16(0)), TypeExpr{0x02}},
		{"u64", reflect.TypeOf(uint64(0)), TypeExpr{0x04}},
		{"u128", reflect.TypeOf(wideint.Uint128{}), TypeExpr{0x05}},
		{"i8", reflect.TypeOf(int8(0)), TypeExpr{0x06}},
		{"i32", reflect.TypeOf(int32(0)), TypeExpr{0x08}},
		{"i64", reflect.TypeOf(int64(0)), TypeExpr{0x09}},
		{"i128", reflect.TypeOf(wideint.Int128{}), TypeExpr{0x0a}},
		{"unregistered named integer", reflect.TypeOf(Wide(0)), TypeExpr{0x07}},
		{"string", reflect.TypeOf(""), TypeExpr{0x0b}},
		{"bool", reflect.TypeOf(false), TypeExpr{0x0c}},
		{"vec", reflect.TypeOf([]bool{}), TypeExpr{0x0e, 0x0c}},
		{"byte vec", reflect.TypeOf([]byte{}), TypeExpr{0x0e, 0x01}},
		{"address", reflect.TypeOf([20]byte{}), TypeExpr{0x11, 0x14}},
		{"sized array", reflect.TypeOf([3]uint16{}), TypeExpr{0x1a, 0x02, 0x03}},
		{"option", reflect.TypeOf((*string)(nil)), TypeExpr{0x12, 0x0b}},
		{"named", reflect.TypeOf(Counter{}), TypeExpr{0x00, 0x00}},
		{"vec of option", reflect.TypeOf([]*Counter{}), TypeExpr{0x0e, 0x12, 0x00, 0x00}},
		{"tree", reflect.TypeOf(avl.Handle[uint32, string]{}), TypeExpr{0x19, 0x03, 0x0b}},
		{"tree of named", reflect.TypeOf(avl.Handle[[20]byte, Counter]{}), TypeExpr{0x19, 0x11, 0x14, 0x00, 0x00}},
		{"optional tree", reflect.TypeOf((*avl.Handle[uint32, uint64])(nil)), TypeExpr{0x12, 0x19, 0x03, 0x04}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			expr, err := b.TypeExprOf(test.typ, table)
			require.NoError(t, err)
			require.Equal(t, test.expected, expr)
		})
	}
}

func TestTypeExprOfErrors(t *testing.T) {
	b := NewBuilder(newRegistry(t), Version{}, Version{})
	table := NewLookupTable()

	tests := []struct {
		name        string
		typ         reflect.Type
		expectedErr error
	}{
		{"unresolved struct", reflect.TypeOf(Inner{}), ErrUnresolvedType},
		{"unresolved enum", reflect.TypeOf(Red), ErrUnresolvedType},
		{"anonymous struct", reflect.TypeOf(struct{ A uint8 }{}), ErrUnnamedType},
		{"long array", reflect.TypeOf([256]byte{}), ErrArrayTooLong},
		{"platform int", reflect.TypeOf(0), codec.ErrUnsupportedType},
		{"map", reflect.TypeOf(map[string]string{}), codec.ErrUnsupportedType},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := b.TypeExprOf(test.typ, table)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestRegisterTypeErrors(t *testing.T) {
	tests := []struct {
		name        string
		register    []interface{}
		expectedErr error
	}{
		{
			name:        "nil",
			register:    []interface{}{nil},
			expectedErr: errNilType,
		},
		{
			name:        "twice",
			register:    []interface{}{Counter{}, Counter{}},
			expectedErr: reflectcodec.ErrDuplicateType,
		},
		{
			name:        "integer without values",
			register:    []interface{}{Wide(0)},
			expectedErr: ErrNotEnum,
		},
		{
			name:        "interface without variants",
			register:    []interface{}{(*Unregistered)(nil)},
			expectedErr: ErrNotEnum,
		},
		{
			name:        "anonymous interface",
			register:    []interface{}{(*interface{ Other() })(nil)},
			expectedErr: ErrUnnamedType,
		},
		{
			name:        "unsupported kind",
			register:    []interface{}{"state"},
			expectedErr: codec.ErrUnsupportedType,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := NewBuilder(newRegistry(t), Version{}, Version{})
			var err error
			for _, v := range test.register {
				if err = b.RegisterType(v); err != nil {
					break
				}
			}
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name        string
		register    []interface{}
		state       interface{}
		fns         []FnSpec
		expectedErr error
	}{
		{
			name:        "nil state",
			expectedErr: errNilType,
		},
		{
			name:        "missing nested type",
			register:    []interface{}{Outer{}},
			state:       Outer{},
			expectedErr: ErrUnresolvedType,
		},
		{
			name:        "unregistered state",
			state:       Counter{},
			expectedErr: ErrUnresolvedType,
		},
		{
			name:        "variant also registered alone",
			register:    []interface{}{Circle{}, (*Shape)(nil)},
			state:       Circle{},
			expectedErr: ErrDuplicateTypeID,
		},
		{
			name:     "unresolved argument",
			register: []interface{}{Counter{}},
			state:    Counter{},
			fns: []FnSpec{{
				Kind: FnKindAction,
				Name: "nest",
				Args: []Arg{ArgOf[Inner]("inner")},
			}},
			expectedErr: ErrUnresolvedType,
		},
		{
			name:     "secret input without secret",
			register: []interface{}{Counter{}},
			state:    Counter{},
			fns: []FnSpec{{
				Kind: FnKindZkSecretInput,
				Name: "vote",
			}},
			expectedErr: ErrMissingSecretArg,
		},
		{
			name:     "secret on action",
			register: []interface{}{Counter{}},
			state:    Counter{},
			fns: []FnSpec{{
				Kind:      FnKindAction,
				Name:      "vote",
				SecretArg: &Arg{Type: reflect.TypeOf(uint8(0))},
			}},
			expectedErr: ErrUnexpectedSecret,
		},
		{
			name:     "unknown kind",
			register: []interface{}{Counter{}},
			state:    Counter{},
			fns: []FnSpec{{
				Kind: 0x7f,
				Name: "mystery",
			}},
			expectedErr: ErrUnknownFnKind,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			b := NewBuilder(newRegistry(t), Version{}, Version{})
			for _, v := range test.register {
				require.NoError(b.RegisterType(v))
			}
			_, err := b.Build(test.state, test.fns...)
			require.ErrorIs(err, test.expectedErr)
		})
	}
}

func TestEnumDiscriminantTooWide(t *testing.T) {
	require := require.New(t)

	r := reflectcodec.NewRegistry()
	require.NoError(reflectcodec.RegisterEnum(r, Wide(1), Wide(300)))
	b := NewBuilder(r, Version{}, Version{})
	require.NoError(b.RegisterType(Wide(0)))

	_, err := b.Build(Wide(0))
	require.ErrorIs(err, ErrDiscriminantTooWide)
}

func TestExplicitShortnameAndSecretArg(t *testing.T) {
	require := require.New(t)

	b := NewBuilder(newRegistry(t), Version{}, Version{})
	require.NoError(b.RegisterType(Counter{}))

	sn := shortname.FromUint32(0x40)
	a, err := b.Build(Counter{}, FnSpec{
		Kind:      FnKindZkSecretInput,
		Name:      "add_secret",
		Shortname: &sn,
		Args:      []Arg{ArgOf[uint64]("round")},
		SecretArg: &Arg{Name: "ignored", Type: reflect.TypeOf(int32(0))},
	})
	require.NoError(err)

	fn, ok := a.Fn("add_secret")
	require.True(ok)
	require.Equal(sn, fn.Shortname)
	require.Equal(&NamedEntityAbi{Name: SecretArgName, Type: TypeExpr{0x08}}, fn.SecretArg)

	_, ok = a.Fn("missing")
	require.False(ok)
}
