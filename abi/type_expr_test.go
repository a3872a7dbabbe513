// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package abi

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

func TestTypeExprString(t *testing.T) {
	tests := []struct {
		expr     TypeExpr
		expected string
	}{
		{Simple(OrdinalU8), "u8"},
		{Simple(OrdinalI128), "i128"},
		{Simple(OrdinalString), "String"},
		{Named(7), "#7"},
		{Vec(Option(Simple(OrdinalU64))), "Vec<Option<u64>>"},
		{SizedByteArray(20), "[u8; 20]"},
		{SizedArray(Simple(OrdinalBool), 4), "[bool; 4]"},
		{AvlTreeMap(Simple(OrdinalU32), Vec(Named(2))), "AvlTreeMap<u32, Vec<#2>>"},
		{SizedArray(AvlTreeMap(Named(0), Named(1)), 2), "[AvlTreeMap<#0, #1>; 2]"},
		{TypeExpr{0x0d}, "invalid(0d)"},
		{TypeExpr{0x0e}, "invalid(0e)"},
	}
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			require.Equal(t, test.expected, test.expr.String())
		})
	}
}

func TestTypeExprValidate(t *testing.T) {
	tests := []struct {
		expr        TypeExpr
		expectedErr error
	}{
		{nil, ErrEmptyTypeExpr},
		{TypeExpr{0x00}, wrappers.ErrInsufficientLength},
		{TypeExpr{0x11}, wrappers.ErrInsufficientLength},
		{TypeExpr{0x1a, 0x01}, wrappers.ErrInsufficientLength},
		{TypeExpr{0x19, 0x01}, wrappers.ErrInsufficientLength},
		{TypeExpr{0x0d}, ErrUnknownOrdinal},
		{TypeExpr{0x12, 0xff}, ErrUnknownOrdinal},
		{TypeExpr{0x01, 0x01}, errMalformedExpr},
		{Simple(OrdinalBool), nil},
		{SizedArray(Named(3), 9), nil},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%x", []byte(test.expr)), func(t *testing.T) {
			require.ErrorIs(t, test.expr.Validate(), test.expectedErr)
		})
	}
}

func TestTypeExprDepthLimit(t *testing.T) {
	require := require.New(t)

	expr := Simple(OrdinalU8)
	for i := 0; i < maxExprDepth; i++ {
		expr = Vec(expr)
	}
	require.NoError(expr.Validate())

	require.ErrorIs(Option(expr).Validate(), ErrTypeExprDepth)
}

func TestTypeExprWireConsumesOneExpression(t *testing.T) {
	require := require.New(t)

	var (
		expr TypeExpr
		p    = wrappers.Packer{Bytes: []byte{0x19, 0x03, 0x0e, 0x0b, 0xaa}}
	)
	require.NoError(expr.UnmarshalWire(codec.RPC, &p))
	require.Equal(AvlTreeMap(Simple(OrdinalU32), Vec(Simple(OrdinalString))), expr)
	require.Equal(4, p.Offset)

	// The decoded expression must not alias the packer's buffer.
	p.Bytes[0] = 0x00
	require.Equal(byte(OrdinalAvlTreeMap), expr[0])
}

func TestTypeExprJSON(t *testing.T) {
	require := require.New(t)

	b, err := json.Marshal(NamedEntityAbi{
		Name: "owners",
		Type: Vec(SizedByteArray(20)),
	})
	require.NoError(err)
	require.JSONEq(`{"name":"owners","type":"Vec<[u8; 20]>"}`, string(b))
}

func TestLookupTable(t *testing.T) {
	require := require.New(t)

	table := NewLookupTable()
	for i := 0; i < MaxTypes; i++ {
		index, err := table.Add(fmt.Sprintf("type%d", i))
		require.NoError(err)
		require.Equal(byte(i), index)
	}
	require.Equal(MaxTypes, table.Len())

	_, err := table.Add("type0")
	require.ErrorIs(err, ErrDuplicateTypeID)

	_, err = table.Add("one too many")
	require.ErrorIs(err, ErrTooManyTypes)

	index, ok := table.Index("type254")
	require.True(ok)
	require.Equal(byte(254), index)
	require.Equal(UnresolvedIndex, table.Resolve("missing"))

	ids := table.TypeIDs()
	require.Len(ids, MaxTypes)
	require.Equal("type0", ids[0])
}
