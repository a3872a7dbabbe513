// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package statecodec

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/codec/codectest"
	"github.com/ava-labs/contractcodec/codec/reflectcodec"
	"github.com/ava-labs/contractcodec/utils/wideint"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

type pair struct {
	A uint8
	B uint16
}

type point struct {
	X int32
	Y int32
	Z uint64
}

func TestVectors(t *testing.T) {
	codectest.RunAll(t, New)
}

func FuzzStructUnmarshalState(f *testing.F) {
	codectest.FuzzStructUnmarshal(f, New)
}

func TestLayout(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		value    interface{}
		expected []byte
	}{
		{
			name:     "u8",
			value:    uint8(42),
			expected: []byte{42},
		},
		{
			name: "struct without padding",
			value: pair{
				A: 0x42,
				B: 0x1234,
			},
			expected: []byte{0x42, 0x34, 0x12},
		},
		{
			name:     "i32",
			value:    int32(-2),
			expected: []byte{0xfe, 0xff, 0xff, 0xff},
		},
		{
			name:     "u128",
			value:    wideint.Uint128{Lo: 0x0102, Hi: 0x03},
			expected: []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0, 0x03, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:     "sequence",
			value:    []uint16{1, 0x0203},
			expected: []byte{0x02, 0, 0, 0, 0x01, 0x00, 0x03, 0x02},
		},
		{
			name:     "array has no length prefix",
			value:    [2]uint16{1, 2},
			expected: []byte{0x01, 0x00, 0x02, 0x00},
		},
		{
			name:     "string",
			value:    "hi",
			expected: []byte{0x02, 0, 0, 0, 'h', 'i'},
		},
		{
			name:     "absent option",
			value:    struct{ O *uint32 }{},
			expected: []byte{0x00},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			bytes, err := c.Marshal(test.value)
			require.NoError(err)
			require.Equal(test.expected, bytes)

			size, err := c.Size(test.value)
			require.NoError(err)
			require.Len(bytes, size)
		})
	}
}

func TestFixedSize(t *testing.T) {
	require := require.New(t)

	r := reflectcodec.NewRegistry()
	require.NoError(r.RegisterFixedLayout(point{}))
	c := New(r)

	size, ok := c.FixedSize(reflectTypeOf[point]())
	require.True(ok)
	require.Equal(16, size)

	size, ok = c.FixedSize(reflectTypeOf[[4]uint16]())
	require.True(ok)
	require.Equal(8, size)

	_, ok = c.FixedSize(reflectTypeOf[pair]())
	require.False(ok)

	_, ok = c.FixedSize(reflectTypeOf[string]())
	require.False(ok)

	_, ok = c.FixedSize(reflectTypeOf[*uint8]())
	require.False(ok)
}

// perElement encodes State bytes without the bulk copy path.
func perElement(r *reflectcodec.Registry) codec.Manager {
	return codec.NewDefaultManager(reflectcodec.New(reflectcodec.Config{
		Format:       codec.State,
		LittleEndian: true,
		Registry:     r,
	}))
}

func TestBulkCopyMatchesPerElement(t *testing.T) {
	r := reflectcodec.NewRegistry()
	require.NoError(t, r.RegisterFixedLayout(point{}))
	bulk := New(r)
	slow := perElement(r)

	sameBytes := func(v interface{}) bool {
		fast, err := bulk.Marshal(v)
		if err != nil {
			return false
		}
		want, err := slow.Marshal(v)
		if err != nil {
			return false
		}
		return string(fast) == string(want)
	}

	properties := gopter.NewProperties(nil)

	properties.Property("[]uint32", prop.ForAll(
		func(v []uint32) bool {
			return sameBytes(v)
		},
		gen.SliceOf(gen.UInt32()),
	))

	properties.Property("[]int64", prop.ForAll(
		func(v []int64) bool {
			return sameBytes(v)
		},
		gen.SliceOf(gen.Int64()),
	))

	properties.Property("[]point", prop.ForAll(
		func(xs []int32, z uint64) bool {
			points := make([]point, len(xs))
			for i, x := range xs {
				points[i] = point{X: x, Y: -x, Z: z + uint64(i)}
			}
			return sameBytes(points)
		},
		gen.SliceOf(gen.Int32()),
		gen.UInt64(),
	))

	properties.Property("[][3]uint16", prop.ForAll(
		func(v []uint16) bool {
			arrays := make([][3]uint16, len(v))
			for i, x := range v {
				arrays[i] = [3]uint16{x, x >> 1, ^x}
			}
			return sameBytes(arrays)
		},
		gen.SliceOf(gen.UInt16()),
	))

	properties.Property("[]Uint128", prop.ForAll(
		func(lo []uint64) bool {
			values := make([]wideint.Uint128, len(lo))
			for i, x := range lo {
				values[i] = wideint.Uint128{Lo: x, Hi: ^x}
			}
			return sameBytes(values)
		},
		gen.SliceOf(gen.UInt64()),
	))

	properties.TestingRun(t)
}

func TestBulkDecode(t *testing.T) {
	require := require.New(t)

	r := reflectcodec.NewRegistry()
	require.NoError(r.RegisterFixedLayout(point{}))
	c := New(r)

	points := []point{
		{X: 1, Y: -1, Z: 1 << 40},
		{X: -7, Y: 8, Z: 0},
	}
	bytes, err := perElement(r).Marshal(points)
	require.NoError(err)

	var decoded []point
	require.NoError(c.Unmarshal(bytes, &decoded))
	require.Equal(points, decoded)

	// A declared length longer than the input fails before allocating.
	bytes[3] = 0x10
	err = c.Unmarshal(bytes, &decoded)
	require.ErrorIs(err, wrappers.ErrInsufficientLength)
}

func reflectTypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// nibble is written inverted so a raw byte copy is detectable.
type nibble uint8

func (n nibble) MarshalWire(_ codec.Format, p *wrappers.Packer) error {
	p.PackByte(^byte(n))
	return nil
}

func (n *nibble) UnmarshalWire(_ codec.Format, p *wrappers.Packer) error {
	*n = nibble(^p.UnpackByte())
	return nil
}

// word is written big-endian, unlike its in-memory layout.
type word uint32

func (w word) MarshalWire(_ codec.Format, p *wrappers.Packer) error {
	p.PackInt(uint32(w))
	return nil
}

func (w *word) UnmarshalWire(_ codec.Format, p *wrappers.Packer) error {
	*w = word(p.UnpackInt())
	return nil
}

type words struct {
	A word
	B word
}

func TestHookedElements(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected []byte
	}{
		{
			name:     "byte array",
			value:    [2]nibble{0x01, 0x02},
			expected: []byte{0xfe, 0xfd},
		},
		{
			name:     "byte slice",
			value:    []nibble{0x01},
			expected: []byte{0x01, 0x00, 0x00, 0x00, 0xfe},
		},
		{
			name:  "word slice",
			value: []word{0x01020304, 0x05},
			expected: []byte{
				0x02, 0x00, 0x00, 0x00,
				0x01, 0x02, 0x03, 0x04,
				0x00, 0x00, 0x00, 0x05,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			c := Default()
			b, err := c.Marshal(test.value)
			require.NoError(err)
			require.Equal(test.expected, b)

			got := reflect.New(reflect.TypeOf(test.value))
			require.NoError(c.Unmarshal(b, got.Interface()))
			require.Equal(test.value, got.Elem().Interface())
		})
	}
}

func TestHookedTypesAreNotFixedLayout(t *testing.T) {
	require := require.New(t)

	r := reflectcodec.NewRegistry()
	require.False(r.IsFixedLayout(reflect.TypeOf(word(0))))
	require.False(r.IsFixedLayout(reflect.TypeOf([2]nibble{})))
	require.ErrorIs(r.RegisterFixedLayout(words{}), codec.ErrNotFixedLayout)

	b, err := New(r).Marshal([]words{{A: 1, B: 2}})
	require.NoError(err)
	require.Equal([]byte{
		0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x02,
	}, b)
}
