// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wrappers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/utils/wideint"
)

func TestPackerByteOrders(t *testing.T) {
	require := require.New(t)

	p := Packer{MaxSize: math.MaxInt}
	p.PackShort(0x0102)
	p.PackShortLE(0x0102)
	p.PackInt(0x01020304)
	p.PackIntLE(0x01020304)
	p.PackLong(0x0102030405060708)
	p.PackLongLE(0x0102030405060708)
	require.NoError(p.Err)

	expected := []byte{
		0x01, 0x02,
		0x02, 0x01,
		0x01, 0x02, 0x03, 0x04,
		0x04, 0x03, 0x02, 0x01,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}
	require.Equal(expected, p.Bytes)

	r := Packer{Bytes: p.Bytes}
	require.Equal(uint16(0x0102), r.UnpackShort())
	require.Equal(uint16(0x0102), r.UnpackShortLE())
	require.Equal(uint32(0x01020304), r.UnpackInt())
	require.Equal(uint32(0x01020304), r.UnpackIntLE())
	require.Equal(uint64(0x0102030405060708), r.UnpackLong())
	require.Equal(uint64(0x0102030405060708), r.UnpackLongLE())
	require.NoError(r.Err)
	require.Zero(r.Remaining())
}

func TestPackerUint128(t *testing.T) {
	require := require.New(t)

	val := wideint.Uint128{Hi: 0x0102030405060708, Lo: 0x090a0b0c0d0e0f10}

	p := Packer{MaxSize: math.MaxInt}
	p.PackUint128(val)
	p.PackUint128LE(val)
	require.NoError(p.Err)
	require.Equal([]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
	}, p.Bytes[:Uint128Len])
	require.Equal([]byte{
		0x10, 0x0f, 0x0e, 0x0d, 0x0c, 0x0b, 0x0a, 0x09,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}, p.Bytes[Uint128Len:])

	r := Packer{Bytes: p.Bytes}
	require.Equal(val, r.UnpackUint128())
	require.Equal(val, r.UnpackUint128LE())
	require.NoError(r.Err)
}

func TestPackerMaxSize(t *testing.T) {
	require := require.New(t)

	p := Packer{MaxSize: 3}
	p.PackShort(1)
	require.NoError(p.Err)
	p.PackShort(2)
	require.ErrorIs(p.Err, ErrInsufficientLength)

	// Once errored, the packer no longer writes.
	p.PackByte(3)
	require.Len(p.Bytes, 2)
}

func TestPackerUnpackInsufficient(t *testing.T) {
	require := require.New(t)

	p := Packer{Bytes: []byte{0x01, 0x02, 0x03}}
	require.Zero(p.UnpackInt())
	require.ErrorIs(p.Err, ErrInsufficientLength)
	require.Zero(p.UnpackByte())
	require.Equal(0, p.Offset)
}

func TestPackerBool(t *testing.T) {
	require := require.New(t)

	p := Packer{MaxSize: 2}
	p.PackBool(true)
	p.PackBool(false)
	require.Equal([]byte{1, 0}, p.Bytes)

	r := Packer{Bytes: []byte{1, 0, 2}}
	require.True(r.UnpackBool())
	require.False(r.UnpackBool())
	require.False(r.UnpackBool())
	require.ErrorIs(r.Err, ErrBadBool)
}

func TestPackerFixedBytes(t *testing.T) {
	require := require.New(t)

	p := Packer{MaxSize: 8}
	p.PackFixedBytes([]byte("abc"))
	p.PackFixedBytes(nil)
	require.NoError(p.Err)
	require.Equal([]byte("abc"), p.Bytes)

	r := Packer{Bytes: p.Bytes}
	require.Equal([]byte("ab"), r.UnpackFixedBytes(2))
	require.Equal(1, r.Remaining())
	require.Nil(r.UnpackFixedBytes(2))
	require.ErrorIs(r.Err, ErrInsufficientLength)
}

func TestErrsKeepsFirst(t *testing.T) {
	require := require.New(t)

	errs := Errs{}
	errs.Add(nil, ErrBadBool, errInvalidInput)
	errs.Add(errNegativeOffset)
	require.True(errs.Errored())
	require.ErrorIs(errs.Err, ErrBadBool)
}
