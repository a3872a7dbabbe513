// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wideint provides the 128-bit integers used by contract state and
// call arguments.
//
// Both types store the low word first. On a little-endian host the in-memory
// representation is therefore byte-identical to the 16-byte little-endian
// wire encoding, which lets sequences of them use the bulk copy path.
package wideint

import (
	"errors"
	"math/big"
)

var (
	ErrOutOfRange = errors.New("value does not fit in 128 bits")

	two64  = new(big.Int).Lsh(big.NewInt(1), 64)
	two128 = new(big.Int).Lsh(big.NewInt(1), 128)
	minI   = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxI   = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

// Uint128 is an unsigned 128-bit integer.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// Int128 is a signed 128-bit integer in two's complement.
type Int128 struct {
	Lo uint64
	Hi uint64
}

func NewUint128(v uint64) Uint128 {
	return Uint128{Lo: v}
}

func NewInt128(v int64) Int128 {
	hi := uint64(0)
	if v < 0 {
		hi = ^uint64(0)
	}
	return Int128{Lo: uint64(v), Hi: hi}
}

// Big returns u as a new big.Int.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) String() string {
	return u.Big().String()
}

// Uint128FromBig converts b, which must be in [0, 2^128).
func Uint128FromBig(b *big.Int) (Uint128, error) {
	if b.Sign() < 0 || b.Cmp(two128) >= 0 {
		return Uint128{}, ErrOutOfRange
	}
	lo := new(big.Int).And(b, new(big.Int).Sub(two64, big.NewInt(1)))
	hi := new(big.Int).Rsh(b, 64)
	return Uint128{Lo: lo.Uint64(), Hi: hi.Uint64()}, nil
}

// Big returns i as a new big.Int.
func (i Int128) Big() *big.Int {
	b := Uint128(i).Big()
	if int64(i.Hi) < 0 {
		b.Sub(b, two128)
	}
	return b
}

func (i Int128) String() string {
	return i.Big().String()
}

// Int128FromBig converts b, which must be in [-2^127, 2^127).
func Int128FromBig(b *big.Int) (Int128, error) {
	if b.Cmp(minI) < 0 || b.Cmp(maxI) > 0 {
		return Int128{}, ErrOutOfRange
	}
	v := new(big.Int).Set(b)
	if v.Sign() < 0 {
		v.Add(v, two128)
	}
	u, err := Uint128FromBig(v)
	return Int128(u), err
}
