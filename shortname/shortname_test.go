// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package shortname

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/utils/wrappers"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		value    uint32
		expected []byte
	}{
		{value: 0, expected: []byte{0x00}},
		{value: 1, expected: []byte{0x01}},
		{value: 0x7f, expected: []byte{0x7f}},
		{value: 0x80, expected: []byte{0x80, 0x01}},
		{value: 0x3fff, expected: []byte{0xff, 0x7f}},
		{value: 0x4000, expected: []byte{0x80, 0x80, 0x01}},
		{value: math.MaxUint32, expected: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, test := range tests {
		t.Run(FromUint32(test.value).String(), func(t *testing.T) {
			require := require.New(t)

			sn := FromUint32(test.value)
			require.Equal(test.expected, sn.Bytes())

			parsed, err := FromBytes(test.expected)
			require.NoError(err)
			require.True(sn.Equal(parsed))
			require.Equal(test.value, parsed.Uint32())
		})
	}
}

func TestFromBytesRejects(t *testing.T) {
	tests := []struct {
		name        string
		bytes       []byte
		expectedErr error
	}{
		{
			name:        "empty",
			bytes:       []byte{},
			expectedErr: ErrEmpty,
		},
		{
			name:        "last byte continues",
			bytes:       []byte{0x80, 0x81},
			expectedErr: ErrUnterminated,
		},
		{
			name:        "trailing zeroes",
			bytes:       []byte{0x70, 0x00, 0x00, 0x00},
			expectedErr: ErrNonCanonical,
		},
		{
			name:        "single trailing zero",
			bytes:       []byte{0x80, 0x00},
			expectedErr: ErrNonCanonical,
		},
		{
			name:        "missing continuation",
			bytes:       []byte{0x70, 0x01},
			expectedErr: ErrMissingContinuation,
		},
		{
			name:        "six bytes",
			bytes:       []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01},
			expectedErr: ErrOverflow,
		},
		{
			name:        "fifth byte too large",
			bytes:       []byte{0xff, 0xff, 0xff, 0xff, 0x10},
			expectedErr: ErrOverflow,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			var err error
			require.NotPanics(func() {
				_, err = FromBytes(test.bytes)
			})
			require.ErrorIs(err, test.expectedErr)
		})
	}
}

func TestRead(t *testing.T) {
	require := require.New(t)

	b := append(FromUint32(300).Bytes(), FromUint32(5).Bytes()...)
	b = append(b, 0xaa)
	p := wrappers.Packer{Bytes: b}

	first, err := Read(&p)
	require.NoError(err)
	require.Equal(uint32(300), first.Uint32())

	second, err := Read(&p)
	require.NoError(err)
	require.Equal(uint32(5), second.Uint32())
	require.Equal(1, p.Remaining())

	p = wrappers.Packer{Bytes: []byte{0x80, 0x80}}
	_, err = Read(&p)
	require.ErrorIs(err, wrappers.ErrInsufficientLength)
}

func TestFromName(t *testing.T) {
	require := require.New(t)

	hash := sha256.Sum256([]byte("transfer"))
	require.Equal(binary.BigEndian.Uint32(hash[:4]), FromName("transfer").Uint32())
	require.NotEqual(FromName("transfer"), FromName("approve"))
}

func TestRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("from_bytes(to_bytes(v)) == v", prop.ForAll(
		func(v uint32) bool {
			parsed, err := FromBytes(FromUint32(v).Bytes())
			return err == nil && parsed == FromUint32(v)
		},
		gen.UInt32(),
	))

	properties.Property("appending a zero byte is rejected", prop.ForAll(
		func(v uint32) bool {
			b := FromUint32(v).Bytes()
			b[len(b)-1] |= continuationBit
			b = append(b, 0x00)
			_, err := FromBytes(b)
			return err != nil
		},
		gen.UInt32(),
	))

	properties.TestingRun(t)
}
