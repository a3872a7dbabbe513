// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpccodec

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/codec/codectest"
	"github.com/ava-labs/contractcodec/codec/reflectcodec"
	"github.com/ava-labs/contractcodec/utils/wideint"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

type transfer struct {
	To     [4]byte
	Amount wideint.Uint128
	Memo   *string
}

func TestVectors(t *testing.T) {
	codectest.RunAll(t, New)
}

func FuzzStructUnmarshalRPC(f *testing.F) {
	codectest.FuzzStructUnmarshal(f, New)
}

func TestLayout(t *testing.T) {
	c := New(reflectcodec.NewRegistry())

	memo := "ok"
	tests := []struct {
		name     string
		value    interface{}
		expected []byte
	}{
		{
			name:     "u16",
			value:    uint16(0x1234),
			expected: []byte{0x12, 0x34},
		},
		{
			name:     "i64",
			value:    int64(-2),
			expected: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe},
		},
		{
			name:     "sequence",
			value:    []uint32{1, 2},
			expected: []byte{0, 0, 0, 2, 0, 0, 0, 1, 0, 0, 0, 2},
		},
		{
			name:     "string",
			value:    "hi",
			expected: []byte{0, 0, 0, 2, 'h', 'i'},
		},
		{
			name: "struct",
			value: transfer{
				To:     [4]byte{1, 2, 3, 4},
				Amount: wideint.Uint128{Lo: 5, Hi: 1},
				Memo:   &memo,
			},
			expected: []byte{
				// To
				1, 2, 3, 4,
				// Amount, high word first
				0, 0, 0, 0, 0, 0, 0, 1,
				0, 0, 0, 0, 0, 0, 0, 5,
				// Memo
				1, 0, 0, 0, 2, 'o', 'k',
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			bytes, err := c.Marshal(test.value)
			require.NoError(err)
			require.Equal(test.expected, bytes)

			decoded := reflect.New(reflect.TypeOf(test.value))
			require.NoError(c.Unmarshal(bytes, decoded.Interface()))
			require.Equal(test.value, decoded.Elem().Interface())
		})
	}
}

func TestNegativeSequenceLength(t *testing.T) {
	c := New(reflectcodec.NewRegistry())

	var v []uint8
	err := c.Unmarshal([]byte{0xff, 0xff, 0xff, 0xfe}, &v)
	require.ErrorIs(t, err, codec.ErrNegativeLength)
}

func TestUnsignedStringLength(t *testing.T) {
	c := New(reflectcodec.NewRegistry())

	var s string
	err := c.Unmarshal([]byte{0xff, 0xff, 0xff, 0xfe, 'a'}, &s)
	require.ErrorIs(t, err, wrappers.ErrInsufficientLength)
}

func TestNoFixedSize(t *testing.T) {
	c := New(reflectcodec.NewRegistry())

	_, ok := c.FixedSize(reflect.TypeOf(uint64(0)))
	require.False(t, ok)
}

func TestArgs(t *testing.T) {
	require := require.New(t)

	c := New(reflectcodec.NewRegistry())

	payload := []byte{
		0, 0, 0, 7, // u32
		0, 0, 0, 1, 'x', // string
	}

	args := NewArgs(c, payload)
	var n uint32
	require.NoError(args.Next(&n))
	var s string
	require.NoError(args.Next(&s))
	require.NoError(args.Done())
	require.Equal(uint32(7), n)
	require.Equal("x", s)

	args = NewArgs(c, append(payload, 0))
	require.NoError(args.Next(&n))
	require.NoError(args.Next(&s))
	require.ErrorIs(args.Done(), codec.ErrExtraSpace)

	args = NewArgs(c, payload[:6])
	require.NoError(args.Next(&n))
	require.ErrorIs(args.Next(&s), wrappers.ErrInsufficientLength)
}
