// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wideint

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint128Big(t *testing.T) {
	require := require.New(t)

	maxVal := Uint128{Lo: math.MaxUint64, Hi: math.MaxUint64}
	require.Equal("340282366920938463463374607431768211455", maxVal.String())

	back, err := Uint128FromBig(maxVal.Big())
	require.NoError(err)
	require.Equal(maxVal, back)

	_, err = Uint128FromBig(big.NewInt(-1))
	require.ErrorIs(err, ErrOutOfRange)
	_, err = Uint128FromBig(new(big.Int).Add(maxVal.Big(), big.NewInt(1)))
	require.ErrorIs(err, ErrOutOfRange)
}

func TestInt128Big(t *testing.T) {
	require := require.New(t)

	minusOne := NewInt128(-1)
	require.Equal(Int128{Lo: math.MaxUint64, Hi: math.MaxUint64}, minusOne)
	require.Equal("-1", minusOne.String())

	for _, v := range []int64{0, 1, -1, math.MinInt64, math.MaxInt64} {
		i := NewInt128(v)
		require.Zero(big.NewInt(v).Cmp(i.Big()))
		back, err := Int128FromBig(i.Big())
		require.NoError(err)
		require.Equal(i, back)
	}

	minVal := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	i, err := Int128FromBig(minVal)
	require.NoError(err)
	require.Equal(Int128{Hi: 1 << 63}, i)

	_, err = Int128FromBig(new(big.Int).Sub(minVal, big.NewInt(1)))
	require.ErrorIs(err, ErrOutOfRange)
}
