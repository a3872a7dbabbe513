// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package shortname implements the canonical LEB128 encoding of the 32-bit
// identifiers that name contract functions.
package shortname

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/utils/hashing"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

const (
	// MaxLen is the length of the longest canonical encoding of a uint32.
	MaxLen = 5

	continuationBit = 0x80
	payloadMask     = 0x7f
)

var (
	ErrEmpty               = errors.New("shortname is empty")
	ErrUnterminated        = errors.New("shortname last byte has continuation bit set")
	ErrNonCanonical        = errors.New("shortname is not canonical")
	ErrMissingContinuation = errors.New("shortname non-last byte lacks continuation bit")
	ErrOverflow            = errors.New("shortname overflows 32 bits")

	_ codec.Marshaler   = Shortname{}
	_ codec.Unmarshaler = (*Shortname)(nil)
)

// Shortname is a 32-bit function identifier. Its byte form is always the
// minimal LEB128 encoding of the value, so two shortnames are equal iff their
// values are.
type Shortname struct {
	value uint32
}

func FromUint32(value uint32) Shortname {
	return Shortname{value: value}
}

// FromName derives the shortname of a function that was not given one
// explicitly: the first four bytes of the SHA-256 of its name, big-endian.
func FromName(name string) Shortname {
	hash := hashing.ComputeHash256Array([]byte(name))
	return FromUint32(binary.BigEndian.Uint32(hash[:4]))
}

// FromBytes parses a canonical LEB128 encoding. The whole slice must be the
// encoding.
//
// The shape of the input is validated before any value is computed so that
// the error names the first structural problem found.
func FromBytes(b []byte) (Shortname, error) {
	if len(b) == 0 {
		return Shortname{}, ErrEmpty
	}
	last := len(b) - 1
	if b[last]&continuationBit != 0 {
		return Shortname{}, fmt.Errorf("%w: 0x%x", ErrUnterminated, b)
	}
	if last > 0 && b[last] == 0 {
		return Shortname{}, fmt.Errorf("%w: trailing zero byte in 0x%x", ErrNonCanonical, b)
	}
	for i, c := range b[:last] {
		if c&continuationBit == 0 {
			return Shortname{}, fmt.Errorf("%w: byte %d of 0x%x", ErrMissingContinuation, i, b)
		}
	}
	// Only 4 payload bits of the fifth byte fit in a uint32.
	if len(b) > MaxLen || (len(b) == MaxLen && b[last] > 0x0f) {
		return Shortname{}, fmt.Errorf("%w: 0x%x", ErrOverflow, b)
	}

	var value uint32
	for i, c := range b {
		value |= uint32(c&payloadMask) << (7 * i)
	}
	return Shortname{value: value}, nil
}

// Read consumes one shortname from [p]. The continuation bits delimit it.
func Read(p *wrappers.Packer) (Shortname, error) {
	if p.Errored() {
		return Shortname{}, p.Err
	}
	start := p.Offset
	for {
		c := p.UnpackByte()
		if p.Errored() {
			return Shortname{}, p.Err
		}
		if c&continuationBit == 0 || p.Offset-start > MaxLen {
			break
		}
	}
	sn, err := FromBytes(p.Bytes[start:p.Offset])
	if err != nil {
		p.Add(err)
	}
	return sn, err
}

func (s Shortname) Uint32() uint32 {
	return s.value
}

// Bytes returns the canonical encoding. Zero encodes as a single zero byte.
func (s Shortname) Bytes() []byte {
	b := make([]byte, 0, MaxLen)
	v := s.value
	for {
		c := byte(v & payloadMask)
		v >>= 7
		if v == 0 {
			return append(b, c)
		}
		b = append(b, c|continuationBit)
	}
}

func (s Shortname) Equal(other Shortname) bool {
	return s.value == other.value
}

func (s Shortname) String() string {
	return fmt.Sprintf("0x%08x", s.value)
}

func (s Shortname) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalWire writes the canonical bytes in both formats.
func (s Shortname) MarshalWire(_ codec.Format, p *wrappers.Packer) error {
	p.PackFixedBytes(s.Bytes())
	return p.Err
}

func (s *Shortname) UnmarshalWire(_ codec.Format, p *wrappers.Packer) error {
	sn, err := Read(p)
	if err != nil {
		return err
	}
	*s = sn
	return nil
}
