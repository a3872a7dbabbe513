// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package codectest provides a test suite for testing codec implementations.
package codectest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/codec/reflectcodec"
	"github.com/ava-labs/contractcodec/shortname"
	"github.com/ava-labs/contractcodec/utils/wideint"
	"github.com/ava-labs/contractcodec/utils/wrappers"

	codecpkg "github.com/ava-labs/contractcodec/codec"
)

// Constructor builds the manager under test over the types known to the
// registry.
type Constructor func(*reflectcodec.Registry) codecpkg.Manager

// A NamedTest couples a test in the suite with a human-readable name.
type NamedTest struct {
	Name string
	Test func(testing.TB, Constructor)
}

// Run runs the test against managers built by [ctor].
func (tt *NamedTest) Run(t *testing.T, ctor Constructor) {
	t.Run(tt.Name, func(t *testing.T) {
		tt.Test(t, ctor)
	})
}

// RunAll runs all [Tests].
func RunAll(t *testing.T, ctor Constructor) {
	for _, tt := range Tests {
		tt.Run(t, ctor)
	}
}

var Tests = []NamedTest{
	{"Struct", TestStruct},
	{"UInt32", TestUInt32},
	{"UIntPtr", TestUIntPtr},
	{"Unsupported Kinds", TestUnsupportedKinds},
	{"Slice", TestSlice},
	{"Max-Size Slice", TestMaxSizeSlice},
	{"Bool", TestBool},
	{"Bad Bool", TestBadBool},
	{"Array", TestArray},
	{"Big Array", TestBigArray},
	{"Option", TestOption},
	{"Slice Of Struct", TestSliceOfStruct},
	{"Interface", TestInterface},
	{"Slice Of Interface", TestSliceOfInterface},
	{"Unregistered Variant", TestUnregisteredVariant},
	{"Unknown Variant Discriminant", TestUnknownVariantDiscriminant},
	{"Enum", TestEnum},
	{"Unknown Enum Value", TestUnknownEnumValue},
	{"String", TestString},
	{"Invalid UTF-8", TestInvalidUTF8},
	{"Nil Slice", TestNilSlice},
	{"Serialize Unexported Field", TestSerializeUnexportedField},
	{"Skipped Field", TestSkippedField},
	{"Slice Too Large", TestSliceTooLarge},
	{"Zero Size Elements", TestZeroSizeElements},
	{"Negative Numbers", TestNegativeNumbers},
	{"Wide Integers", TestWideIntegers},
	{"Too Large Unmarshal", TestTooLargeUnmarshal},
	{"Extra Space", TestExtraSpace},
	{"Insufficient Space", TestInsufficientSpace},
	{"Slice Length Overflow", TestSliceLengthOverflow},
	{"Custom Hook", TestCustomHook},
	{"Can Marshal Large Slices", TestCanMarshalLargeSlices},
	{"Implements UnmarshalFrom", TestImplementsUnmarshalFrom},
}

// The below structs and interfaces exist
// for the sake of testing

var (
	_ Foo = (*MyInnerStruct)(nil)
	_ Foo = MyInnerStruct2{}
)

type Foo interface {
	Foo() int
}

type MyInnerStruct struct {
	Str string
}

func (*MyInnerStruct) Foo() int {
	return 1
}

type MyInnerStruct2 struct {
	Bool bool
}

func (MyInnerStruct2) Foo() int {
	return 2
}

type MyInnerStruct3 struct {
	Str string
	M1  MyInnerStruct
	F   Foo
}

type Color uint16

const (
	Red   Color = 1
	Green Color = 2
	Blue  Color = 0x100
)

type myStruct struct {
	InnerStruct  MyInnerStruct
	InnerStruct2 *MyInnerStruct
	Member1      int64
	Member2      uint16
	MyArray2     [5]string
	MyArray3     [3]MyInnerStruct
	MyArray4     [2]*MyInnerStruct2
	MySlice      []byte
	MySlice2     []string
	MySlice3     []MyInnerStruct
	MySlice4     []*MyInnerStruct2
	MyArray      [4]byte
	MyInterface  Foo
	MySlice5     []Foo
	InnerStruct3 MyInnerStruct3
	MyColors     []Color
	Uint8        uint8
	Int8         int8
	Uint16       uint16
	Int16        int16
	Uint32       uint32
	Int32        int32
	Uint64       uint64
	Int64        int64
	Uint128      wideint.Uint128
	Int128       wideint.Int128
	Bool         bool
	String       string
	Name         shortname.Shortname
}

func newRegistry(t testing.TB) *reflectcodec.Registry {
	require := require.New(t)

	r := reflectcodec.NewRegistry()
	require.NoError(r.RegisterVariant((*Foo)(nil), 0, &MyInnerStruct{}))
	require.NoError(r.RegisterVariant((*Foo)(nil), 7, MyInnerStruct2{}))
	require.NoError(reflectcodec.RegisterEnum(r, Red, Green, Blue))
	return r
}

// Test marshaling/unmarshaling a complicated struct
func TestStruct(t testing.TB, ctor Constructor) {
	require := require.New(t)

	myStructInstance := myStruct{
		InnerStruct:  MyInnerStruct{"hello"},
		InnerStruct2: &MyInnerStruct{"yello"},
		Member1:      1,
		Member2:      2,
		MySlice:      []byte{1, 2, 3, 4},
		MySlice2:     []string{"one", "two", "three"},
		MySlice3:     []MyInnerStruct{{"abc"}, {"ab"}, {"c"}},
		MySlice4:     []*MyInnerStruct2{{true}, nil},
		MySlice5:     []Foo{MyInnerStruct2{true}, &MyInnerStruct{"x"}},
		MyArray:      [4]byte{5, 6, 7, 8},
		MyArray2:     [5]string{"four", "five", "six", "seven"},
		MyArray3:     [3]MyInnerStruct{{"d"}, {"e"}, {"f"}},
		MyArray4:     [2]*MyInnerStruct2{{}, {true}},
		MyInterface:  &MyInnerStruct{"yeet"},
		InnerStruct3: MyInnerStruct3{
			Str: "str",
			M1: MyInnerStruct{
				Str: "other str",
			},
			F: MyInnerStruct2{},
		},
		MyColors: []Color{Blue, Red},
		Uint8:    math.MaxUint8,
		Int8:     math.MinInt8,
		Uint16:   math.MaxUint16,
		Int16:    math.MinInt16,
		Uint32:   math.MaxUint32,
		Int32:    math.MinInt32,
		Uint64:   math.MaxUint64,
		Int64:    math.MinInt64,
		Uint128:  wideint.Uint128{Lo: 1, Hi: math.MaxUint64},
		Int128:   wideint.NewInt128(-5),
		Bool:     true,
		String:   "héllo",
		Name:     shortname.FromUint32(0x12345),
	}

	manager := ctor(newRegistry(t))

	myStructBytes, err := manager.Marshal(myStructInstance)
	require.NoError(err)

	bytesLen, err := manager.Size(myStructInstance)
	require.NoError(err)
	require.Len(myStructBytes, bytesLen)

	myStructUnmarshaled := &myStruct{}
	require.NoError(manager.Unmarshal(myStructBytes, myStructUnmarshaled))
	require.Equal(myStructInstance, *myStructUnmarshaled)

	// A pointer to the value marshals the value itself.
	pointerBytes, err := manager.Marshal(&myStructInstance)
	require.NoError(err)
	require.Equal(myStructBytes, pointerBytes)
}

func TestUInt32(t testing.TB, ctor Constructor) {
	require := require.New(t)

	number := uint32(500)

	manager := ctor(reflectcodec.NewRegistry())

	bytes, err := manager.Marshal(number)
	require.NoError(err)

	bytesLen, err := manager.Size(number)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var numberUnmarshaled uint32
	require.NoError(manager.Unmarshal(bytes, &numberUnmarshaled))
	require.Equal(number, numberUnmarshaled)
}

func TestUIntPtr(t testing.TB, ctor Constructor) {
	require := require.New(t)

	manager := ctor(reflectcodec.NewRegistry())

	number := uintptr(500)
	_, err := manager.Marshal(number)
	require.ErrorIs(err, codecpkg.ErrUnsupportedType)
}

func TestUnsupportedKinds(t testing.TB, ctor Constructor) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{
			name:  "int",
			value: 1,
		},
		{
			name:  "float",
			value: 1.5,
		},
		{
			name:  "map",
			value: map[string]string{"a": "b"},
		},
		{
			name:  "func",
			value: func() {},
		},
		{
			name: "struct with map",
			value: struct {
				M map[uint8]uint8
			}{},
		},
	}
	manager := ctor(reflectcodec.NewRegistry())
	for _, test := range tests {
		_, err := manager.Marshal(test.value)
		require.ErrorIs(t, err, codecpkg.ErrUnsupportedType, test.name)

		_, err = manager.Size(test.value)
		require.ErrorIs(t, err, codecpkg.ErrUnsupportedType, test.name)
	}

	var f float64
	err := manager.Unmarshal(make([]byte, 8), &f)
	require.ErrorIs(t, err, codecpkg.ErrUnsupportedType)
}

func TestSlice(t testing.TB, ctor Constructor) {
	require := require.New(t)

	mySlice := []bool{true, false, true, true}
	manager := ctor(reflectcodec.NewRegistry())

	bytes, err := manager.Marshal(mySlice)
	require.NoError(err)

	bytesLen, err := manager.Size(mySlice)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var sliceUnmarshaled []bool
	require.NoError(manager.Unmarshal(bytes, &sliceUnmarshaled))
	require.Equal(mySlice, sliceUnmarshaled)
}

// Test marshalling/unmarshalling largest possible slice
func TestMaxSizeSlice(t testing.TB, ctor Constructor) {
	require := require.New(t)

	mySlice := make([]string, math.MaxUint16)
	mySlice[0] = "first!"
	mySlice[math.MaxUint16-1] = "last!"
	manager := ctor(reflectcodec.NewRegistry())

	bytes, err := manager.Marshal(mySlice)
	require.NoError(err)

	bytesLen, err := manager.Size(mySlice)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var sliceUnmarshaled []string
	require.NoError(manager.Unmarshal(bytes, &sliceUnmarshaled))
	require.Equal(mySlice, sliceUnmarshaled)
}

// Test marshalling a bool
func TestBool(t testing.TB, ctor Constructor) {
	require := require.New(t)

	myBool := true
	manager := ctor(reflectcodec.NewRegistry())

	bytes, err := manager.Marshal(myBool)
	require.NoError(err)
	require.Equal([]byte{1}, bytes)

	var boolUnmarshaled bool
	require.NoError(manager.Unmarshal(bytes, &boolUnmarshaled))
	require.Equal(myBool, boolUnmarshaled)
}

func TestBadBool(t testing.TB, ctor Constructor) {
	manager := ctor(reflectcodec.NewRegistry())

	var b bool
	err := manager.Unmarshal([]byte{2}, &b)
	require.ErrorIs(t, err, wrappers.ErrBadBool)
}

// Test marshalling an array
func TestArray(t testing.TB, ctor Constructor) {
	require := require.New(t)

	myArr := [5]uint64{5, 6, 7, 8, 9}
	manager := ctor(reflectcodec.NewRegistry())

	bytes, err := manager.Marshal(myArr)
	require.NoError(err)
	require.Len(bytes, 5*wrappers.LongLen)

	bytesLen, err := manager.Size(myArr)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var myArrUnmarshaled [5]uint64
	require.NoError(manager.Unmarshal(bytes, &myArrUnmarshaled))
	require.Equal(myArr, myArrUnmarshaled)
}

// Test marshalling a really big array
func TestBigArray(t testing.TB, ctor Constructor) {
	require := require.New(t)

	myArr := [30000]uint64{5, 6, 7, 8, 9}
	manager := ctor(reflectcodec.NewRegistry())

	bytes, err := manager.Marshal(myArr)
	require.NoError(err)

	bytesLen, err := manager.Size(myArr)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var myArrUnmarshaled [30000]uint64
	require.NoError(manager.Unmarshal(bytes, &myArrUnmarshaled))
	require.Equal(myArr, myArrUnmarshaled)
}

// Test marshalling present and absent options
func TestOption(t testing.TB, ctor Constructor) {
	require := require.New(t)

	type withOption struct {
		Inner *MyInnerStruct
		Count *uint8
	}

	manager := ctor(reflectcodec.NewRegistry())

	count := uint8(3)
	present := withOption{
		Inner: &MyInnerStruct{Str: "x"},
		Count: &count,
	}
	bytes, err := manager.Marshal(present)
	require.NoError(err)

	bytesLen, err := manager.Size(present)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var presentUnmarshaled withOption
	require.NoError(manager.Unmarshal(bytes, &presentUnmarshaled))
	require.Equal(present, presentUnmarshaled)

	bytes, err = manager.Marshal(withOption{})
	require.NoError(err)
	require.Equal([]byte{0, 0}, bytes)

	// Any nonzero marker means present.
	var absentUnmarshaled withOption
	require.NoError(manager.Unmarshal([]byte{0, 0xff, 9}, &absentUnmarshaled))
	require.Nil(absentUnmarshaled.Inner)
	require.NotNil(absentUnmarshaled.Count)
	require.Equal(uint8(9), *absentUnmarshaled.Count)
}

// Test marshalling a slice of structs
func TestSliceOfStruct(t testing.TB, ctor Constructor) {
	require := require.New(t)

	mySlice := []MyInnerStruct3{
		{
			Str: "One",
			M1:  MyInnerStruct{"Two"},
			F:   &MyInnerStruct{"Three"},
		},
		{
			Str: "Four",
			M1:  MyInnerStruct{"Five"},
			F:   &MyInnerStruct{"Six"},
		},
	}
	manager := ctor(newRegistry(t))

	bytes, err := manager.Marshal(mySlice)
	require.NoError(err)

	bytesLen, err := manager.Size(mySlice)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var mySliceUnmarshaled []MyInnerStruct3
	require.NoError(manager.Unmarshal(bytes, &mySliceUnmarshaled))
	require.Equal(mySlice, mySliceUnmarshaled)
}

// Test marshalling an interface
func TestInterface(t testing.TB, ctor Constructor) {
	require := require.New(t)

	manager := ctor(newRegistry(t))

	var f Foo = MyInnerStruct2{true}
	bytes, err := manager.Marshal(&f)
	require.NoError(err)
	require.Equal([]byte{7, 1}, bytes)

	bytesLen, err := manager.Size(&f)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var unmarshaledFoo Foo
	require.NoError(manager.Unmarshal(bytes, &unmarshaledFoo))
	require.Equal(f, unmarshaledFoo)
}

// Test marshalling a slice of interfaces
func TestSliceOfInterface(t testing.TB, ctor Constructor) {
	require := require.New(t)

	mySlice := []Foo{
		&MyInnerStruct{
			Str: "Hello",
		},
		MyInnerStruct2{},
		&MyInnerStruct{
			Str: ", World!",
		},
	}
	manager := ctor(newRegistry(t))

	bytes, err := manager.Marshal(mySlice)
	require.NoError(err)

	bytesLen, err := manager.Size(mySlice)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var mySliceUnmarshaled []Foo
	require.NoError(manager.Unmarshal(bytes, &mySliceUnmarshaled))
	require.Equal(mySlice, mySliceUnmarshaled)
}

type unregistered struct{}

func (unregistered) Foo() int {
	return 3
}

func TestUnregisteredVariant(t testing.TB, ctor Constructor) {
	require := require.New(t)

	manager := ctor(newRegistry(t))

	var f Foo = unregistered{}
	_, err := manager.Marshal(&f)
	require.ErrorIs(err, codecpkg.ErrDoesNotImplementInterface)

	var nilFoo Foo
	_, err = manager.Marshal(&nilFoo)
	require.ErrorIs(err, codecpkg.ErrMarshalNil)
}

func TestUnknownVariantDiscriminant(t testing.TB, ctor Constructor) {
	manager := ctor(newRegistry(t))

	var f Foo
	err := manager.Unmarshal([]byte{3}, &f)
	require.ErrorIs(t, err, codecpkg.ErrUnknownDiscriminant)
}

func TestEnum(t testing.TB, ctor Constructor) {
	require := require.New(t)

	manager := ctor(newRegistry(t))

	colors := [3]Color{Red, Blue, Green}
	bytes, err := manager.Marshal(colors)
	require.NoError(err)
	require.Len(bytes, 3*wrappers.ShortLen)

	var colorsUnmarshaled [3]Color
	require.NoError(manager.Unmarshal(bytes, &colorsUnmarshaled))
	require.Equal(colors, colorsUnmarshaled)
}

func TestUnknownEnumValue(t testing.TB, ctor Constructor) {
	require := require.New(t)

	manager := ctor(newRegistry(t))

	_, err := manager.Marshal(Color(3))
	require.ErrorIs(err, codecpkg.ErrUnknownDiscriminant)

	var c Color
	err = manager.Unmarshal([]byte{0x03, 0x00}, &c)
	require.ErrorIs(err, codecpkg.ErrUnknownDiscriminant)

	var cs []Color
	bytes, err := manager.Marshal([]uint16{1, 3})
	require.NoError(err)
	err = manager.Unmarshal(bytes, &cs)
	require.ErrorIs(err, codecpkg.ErrUnknownDiscriminant)
}

// Test marshalling a string
func TestString(t testing.TB, ctor Constructor) {
	require := require.New(t)

	myString := "Ayy"
	manager := ctor(reflectcodec.NewRegistry())

	bytes, err := manager.Marshal(myString)
	require.NoError(err)
	require.Len(bytes, wrappers.IntLen+len(myString))

	bytesLen, err := manager.Size(myString)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var stringUnmarshaled string
	require.NoError(manager.Unmarshal(bytes, &stringUnmarshaled))
	require.Equal(myString, stringUnmarshaled)
}

func TestInvalidUTF8(t testing.TB, ctor Constructor) {
	require := require.New(t)

	manager := ctor(reflectcodec.NewRegistry())

	_, err := manager.Marshal("\xff")
	require.ErrorIs(err, codecpkg.ErrInvalidUTF8)

	bytes, err := manager.Marshal("a")
	require.NoError(err)
	bytes[len(bytes)-1] = 0xff

	var s string
	err = manager.Unmarshal(bytes, &s)
	require.ErrorIs(err, codecpkg.ErrInvalidUTF8)
}

// Ensure a nil slice is unmarshaled to slice with length 0
func TestNilSlice(t testing.TB, ctor Constructor) {
	require := require.New(t)

	type structWithSlice struct {
		Slice []byte
	}

	myStruct := structWithSlice{Slice: nil}
	manager := ctor(reflectcodec.NewRegistry())

	bytes, err := manager.Marshal(myStruct)
	require.NoError(err)
	require.Equal([]byte{0, 0, 0, 0}, bytes)

	bytesLen, err := manager.Size(myStruct)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var structUnmarshaled structWithSlice
	require.NoError(manager.Unmarshal(bytes, &structUnmarshaled))
	require.Empty(structUnmarshaled.Slice)

	emptyBytes, err := manager.Marshal(structWithSlice{Slice: []byte{}})
	require.NoError(err)
	require.Equal(bytes, emptyBytes)
}

// Ensure that trying to serialize a struct with an unexported member fails
func TestSerializeUnexportedField(t testing.TB, ctor Constructor) {
	require := require.New(t)

	type s struct {
		ExportedField   string
		unexportedField string
	}

	myS := s{
		ExportedField:   "Hello, ",
		unexportedField: "world!",
	}

	manager := ctor(reflectcodec.NewRegistry())
	_, err := manager.Marshal(myS)
	require.ErrorIs(err, codecpkg.ErrUnexportedField)

	_, err = manager.Size(myS)
	require.ErrorIs(err, codecpkg.ErrUnexportedField)
}

func TestSkippedField(t testing.TB, ctor Constructor) {
	require := require.New(t)

	type s struct {
		SerializedField   string
		UnserializedField string `wire:"-"`
		cache             []byte `wire:"-"`
		MarkedField       uint8
	}

	myS := s{
		SerializedField:   "Serialize me",
		UnserializedField: "Do not serialize me",
		cache:             []byte{1},
		MarkedField:       24,
	}

	manager := ctor(reflectcodec.NewRegistry())
	marshalled, err := manager.Marshal(myS)
	require.NoError(err)

	bytesLen, err := manager.Size(myS)
	require.NoError(err)
	require.Len(marshalled, bytesLen)

	unmarshalled := s{}
	require.NoError(manager.Unmarshal(marshalled, &unmarshalled))

	expectedUnmarshalled := s{
		SerializedField: "Serialize me",
		MarkedField:     24,
	}
	require.Equal(expectedUnmarshalled, unmarshalled)
}

func TestSliceTooLarge(t testing.TB, ctor Constructor) {
	require := require.New(t)

	type unlimited struct {
		Vals []uint8
	}
	type limited struct {
		Vals []uint8 `len:"2"`
	}

	manager := ctor(reflectcodec.NewRegistry())

	_, err := manager.Marshal(limited{Vals: []uint8{1, 2, 3}})
	require.ErrorIs(err, codecpkg.ErrMaxSliceLenExceeded)

	bytes, err := manager.Marshal(unlimited{Vals: []uint8{1, 2, 3}})
	require.NoError(err)

	var l limited
	err = manager.Unmarshal(bytes, &l)
	require.ErrorIs(err, codecpkg.ErrMaxSliceLenExceeded)
}

func TestZeroSizeElements(t testing.TB, ctor Constructor) {
	require := require.New(t)

	manager := ctor(reflectcodec.NewRegistry())

	val := make([]struct{}, 1000)
	bytes, err := manager.Marshal(val)
	require.NoError(err)
	require.Len(bytes, wrappers.IntLen)

	var valUnmarshaled []struct{}
	require.NoError(manager.Unmarshal(bytes, &valUnmarshaled))
	require.Equal(val, valUnmarshaled)
}

// Ensure serializing structs with negative number members works
func TestNegativeNumbers(t testing.TB, ctor Constructor) {
	require := require.New(t)

	type s struct {
		MyInt8  int8
		MyInt16 int16
		MyInt32 int32
		MyInt64 int64
	}

	manager := ctor(reflectcodec.NewRegistry())

	myS := s{-1, -2, -3, -4}
	bytes, err := manager.Marshal(myS)
	require.NoError(err)

	bytesLen, err := manager.Size(myS)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	mySUnmarshaled := s{}
	require.NoError(manager.Unmarshal(bytes, &mySUnmarshaled))
	require.Equal(myS, mySUnmarshaled)
}

func TestWideIntegers(t testing.TB, ctor Constructor) {
	require := require.New(t)

	manager := ctor(reflectcodec.NewRegistry())

	values := []wideint.Int128{
		wideint.NewInt128(math.MinInt64),
		wideint.NewInt128(0),
		{Lo: math.MaxUint64, Hi: math.MaxInt64},
	}
	bytes, err := manager.Marshal(values)
	require.NoError(err)
	require.Len(bytes, wrappers.IntLen+3*wrappers.Uint128Len)

	var valuesUnmarshaled []wideint.Int128
	require.NoError(manager.Unmarshal(bytes, &valuesUnmarshaled))
	require.Equal(values, valuesUnmarshaled)
}

// Ensure deserializing structs with too many bytes errors correctly
func TestTooLargeUnmarshal(t testing.TB, ctor Constructor) {
	require := require.New(t)

	type inner struct {
		B uint16
	}
	bytes := []byte{0, 0, 0, 0}

	manager := ctor(reflectcodec.NewRegistry())
	manager.SetMaxSize(3)

	s := inner{}
	err := manager.Unmarshal(bytes, &s)
	require.ErrorIs(err, codecpkg.ErrUnmarshalTooBig)

	_, err = manager.Marshal([]uint8{1, 2, 3})
	require.ErrorIs(err, wrappers.ErrInsufficientLength)
}

// Test unmarshaling something with extra data
func TestExtraSpace(t testing.TB, ctor Constructor) {
	require := require.New(t)

	manager := ctor(reflectcodec.NewRegistry())

	// 0x01 for b then 0x02 as extra data.
	byteSlice := []byte{0x01, 0x02}
	var b byte
	err := manager.Unmarshal(byteSlice, &b)
	require.ErrorIs(err, codecpkg.ErrExtraSpace)
}

func TestInsufficientSpace(t testing.TB, ctor Constructor) {
	require := require.New(t)

	manager := ctor(reflectcodec.NewRegistry())

	var v uint32
	err := manager.Unmarshal([]byte{0x01, 0x02}, &v)
	require.ErrorIs(err, wrappers.ErrInsufficientLength)

	var s string
	err = manager.Unmarshal([]byte{0x00, 0x00, 0x00, 0x00, 0x00}, &s)
	require.ErrorIs(err, codecpkg.ErrExtraSpace)

	var o *uint64
	err = manager.Unmarshal([]byte{0x01}, &o)
	require.ErrorIs(err, wrappers.ErrInsufficientLength)
}

// Ensure deserializing slices whose lengths exceed the input error before
// allocating
func TestSliceLengthOverflow(t testing.TB, ctor Constructor) {
	require := require.New(t)

	type inner struct {
		Vals []uint32
	}
	bytes := []byte{
		// Slice Length:
		0x00, 0x00, 0x00, 0x7f,
		0x7f, 0x00, 0x00, 0x00,
	}

	manager := ctor(reflectcodec.NewRegistry())

	s := inner{}
	err := manager.Unmarshal(bytes, &s)
	require.ErrorIs(err, wrappers.ErrInsufficientLength)
}

func TestCustomHook(t testing.TB, ctor Constructor) {
	require := require.New(t)

	type call struct {
		Name shortname.Shortname
		Arg  uint8
	}

	manager := ctor(reflectcodec.NewRegistry())

	c := call{
		Name: shortname.FromUint32(300),
		Arg:  9,
	}
	bytes, err := manager.Marshal(c)
	require.NoError(err)
	require.Equal([]byte{0xac, 0x02, 0x09}, bytes)

	bytesLen, err := manager.Size(c)
	require.NoError(err)
	require.Len(bytes, bytesLen)

	var cUnmarshaled call
	require.NoError(manager.Unmarshal(bytes, &cUnmarshaled))
	require.Equal(c, cUnmarshaled)

	err = manager.Unmarshal([]byte{0x80, 0x00, 0x09}, &cUnmarshaled)
	require.ErrorIs(err, shortname.ErrNonCanonical)
}

func TestCanMarshalLargeSlices(t testing.TB, ctor Constructor) {
	require := require.New(t)

	data := make([]uint16, 1_000_000)

	manager := ctor(reflectcodec.NewRegistry())

	bytes, err := manager.Marshal(data)
	require.NoError(err)

	var unmarshalledData []uint16
	require.NoError(manager.Unmarshal(bytes, &unmarshalledData))
	require.Equal(data, unmarshalledData)
}

func TestImplementsUnmarshalFrom(t testing.TB, ctor Constructor) {
	require := require.New(t)

	c := ctor(reflectcodec.NewRegistry()).Codec()

	p := wrappers.Packer{MaxSize: 1024}
	p.PackFixedBytes([]byte{0, 1, 2}) // pack 3 extra bytes prefix

	mySlice := []bool{true, false, true, true}

	require.NoError(c.MarshalInto(mySlice, &p))

	p.PackFixedBytes([]byte{7, 7, 7}) // pack 3 extra bytes suffix

	bytesLen, err := c.Size(mySlice)
	require.NoError(err)
	require.Equal(3+bytesLen+3, p.Offset)

	p = wrappers.Packer{Bytes: p.Bytes, MaxSize: p.MaxSize, Offset: 3}

	var sliceUnmarshaled []bool
	require.NoError(c.UnmarshalFrom(&p, &sliceUnmarshaled))
	require.Equal(mySlice, sliceUnmarshaled)
	require.Equal(
		wrappers.Packer{
			Bytes:   p.Bytes,
			MaxSize: p.MaxSize,
			Offset:  11,
		},
		p,
	)
}

// FuzzStructUnmarshal checks that whatever decodes re-encodes to a value that
// decodes to the same thing.
func FuzzStructUnmarshal(f *testing.F, ctor Constructor) {
	manager := ctor(newRegistry(f))

	f.Fuzz(func(t *testing.T, bytes []byte) {
		require := require.New(t)

		myParsedStruct := &myStruct{}
		if err := manager.Unmarshal(bytes, myParsedStruct); err != nil {
			return
		}

		marshalled, err := manager.Marshal(myParsedStruct)
		require.NoError(err)

		size, err := manager.Size(myParsedStruct)
		require.NoError(err)
		require.Len(marshalled, size)

		reparsed := &myStruct{}
		require.NoError(manager.Unmarshal(marshalled, reparsed))
		require.Equal(myParsedStruct, reparsed)
	})
}
