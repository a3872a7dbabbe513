// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wrappers

import (
	"encoding/binary"
	"errors"

	"github.com/ava-labs/contractcodec/utils/wideint"
)

const (
	MaxStringLen = 1<<31 - 1

	// ByteLen is the number of bytes per byte...
	ByteLen = 1
	// ShortLen is the number of bytes per short
	ShortLen = 2
	// IntLen is the number of bytes per int
	IntLen = 4
	// LongLen is the number of bytes per long
	LongLen = 8
	// Uint128Len is the number of bytes per 128-bit integer
	Uint128Len = 16
	// BoolLen is the number of bytes per bool
	BoolLen = 1
)

var (
	ErrInsufficientLength = errors.New("packer has insufficient length for input")
	errNegativeOffset     = errors.New("negative offset")
	errInvalidInput       = errors.New("input does not match expected format")
	ErrBadBool            = errors.New("unexpected value when unpacking bool")
)

// Packer packs and unpacks a byte array from/to fixed-width integers and byte
// runs. The unsuffixed integer methods are big-endian; the LE-suffixed methods
// are little-endian.
//
// Once an error occurs every further call is a no-op and the error is kept in
// [Errs].
type Packer struct {
	Errs

	// The largest allowed size of expanding the byte array
	MaxSize int
	// The current byte array
	Bytes []byte
	// The offset that is being written to in the byte array
	Offset int
}

// Remaining returns the number of unread bytes.
func (p *Packer) Remaining() int {
	if p.Offset > len(p.Bytes) {
		return 0
	}
	return len(p.Bytes) - p.Offset
}

func (p *Packer) PackByte(val byte) {
	p.expand(ByteLen)
	if p.Errored() {
		return
	}

	p.Bytes[p.Offset] = val
	p.Offset++
}

func (p *Packer) UnpackByte() byte {
	p.checkSpace(ByteLen)
	if p.Errored() {
		return 0
	}

	val := p.Bytes[p.Offset]
	p.Offset += ByteLen
	return val
}

func (p *Packer) PackShort(val uint16) {
	if b := p.reserve(ShortLen); b != nil {
		binary.BigEndian.PutUint16(b, val)
	}
}

func (p *Packer) UnpackShort() uint16 {
	if b := p.take(ShortLen); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (p *Packer) PackShortLE(val uint16) {
	if b := p.reserve(ShortLen); b != nil {
		binary.LittleEndian.PutUint16(b, val)
	}
}

func (p *Packer) UnpackShortLE() uint16 {
	if b := p.take(ShortLen); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (p *Packer) PackInt(val uint32) {
	if b := p.reserve(IntLen); b != nil {
		binary.BigEndian.PutUint32(b, val)
	}
}

func (p *Packer) UnpackInt() uint32 {
	if b := p.take(IntLen); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (p *Packer) PackIntLE(val uint32) {
	if b := p.reserve(IntLen); b != nil {
		binary.LittleEndian.PutUint32(b, val)
	}
}

func (p *Packer) UnpackIntLE() uint32 {
	if b := p.take(IntLen); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (p *Packer) PackLong(val uint64) {
	if b := p.reserve(LongLen); b != nil {
		binary.BigEndian.PutUint64(b, val)
	}
}

func (p *Packer) UnpackLong() uint64 {
	if b := p.take(LongLen); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

func (p *Packer) PackLongLE(val uint64) {
	if b := p.reserve(LongLen); b != nil {
		binary.LittleEndian.PutUint64(b, val)
	}
}

func (p *Packer) UnpackLongLE() uint64 {
	if b := p.take(LongLen); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// PackUint128 writes the high word first.
func (p *Packer) PackUint128(val wideint.Uint128) {
	if b := p.reserve(Uint128Len); b != nil {
		binary.BigEndian.PutUint64(b[:LongLen], val.Hi)
		binary.BigEndian.PutUint64(b[LongLen:], val.Lo)
	}
}

func (p *Packer) UnpackUint128() wideint.Uint128 {
	if b := p.take(Uint128Len); b != nil {
		return wideint.Uint128{
			Hi: binary.BigEndian.Uint64(b[:LongLen]),
			Lo: binary.BigEndian.Uint64(b[LongLen:]),
		}
	}
	return wideint.Uint128{}
}

// PackUint128LE writes the low word first.
func (p *Packer) PackUint128LE(val wideint.Uint128) {
	if b := p.reserve(Uint128Len); b != nil {
		binary.LittleEndian.PutUint64(b[:LongLen], val.Lo)
		binary.LittleEndian.PutUint64(b[LongLen:], val.Hi)
	}
}

func (p *Packer) UnpackUint128LE() wideint.Uint128 {
	if b := p.take(Uint128Len); b != nil {
		return wideint.Uint128{
			Lo: binary.LittleEndian.Uint64(b[:LongLen]),
			Hi: binary.LittleEndian.Uint64(b[LongLen:]),
		}
	}
	return wideint.Uint128{}
}

func (p *Packer) PackBool(b bool) {
	if b {
		p.PackByte(1)
	} else {
		p.PackByte(0)
	}
}

func (p *Packer) UnpackBool() bool {
	b := p.UnpackByte()
	switch b {
	case 0:
		return false
	case 1:
		return true
	default:
		p.Add(ErrBadBool)
		return false
	}
}

func (p *Packer) PackFixedBytes(bytes []byte) {
	if b := p.reserve(len(bytes)); b != nil {
		copy(b, bytes)
	}
}

// UnpackFixedBytes returns a sub-slice of the underlying array; callers that
// keep it must copy.
func (p *Packer) UnpackFixedBytes(size int) []byte {
	return p.take(size)
}

// reserve grows the array by [size] bytes and returns the new region.
func (p *Packer) reserve(size int) []byte {
	p.expand(size)
	if p.Errored() {
		return nil
	}
	b := p.Bytes[p.Offset : p.Offset+size]
	p.Offset += size
	return b
}

// take returns the next [size] unread bytes.
func (p *Packer) take(size int) []byte {
	p.checkSpace(size)
	if p.Errored() {
		return nil
	}
	b := p.Bytes[p.Offset : p.Offset+size]
	p.Offset += size
	return b
}

// checkSpace requires that there is at least [bytes] of write space left in the
// byte array. If this is not true, an error is added to the packer
func (p *Packer) checkSpace(bytes int) {
	switch {
	case p.Offset < 0:
		p.Add(errNegativeOffset)
	case bytes < 0:
		p.Add(errInvalidInput)
	case len(p.Bytes)-p.Offset < bytes:
		p.Add(ErrInsufficientLength)
	}
}

// expand ensures that there is [bytes] bytes left of space in the byte slice.
// If this is not allowed due to the maximum size, an error is added to the packer
// In order to understand this code, its important to understand the difference
// between a slice's length and its capacity.
func (p *Packer) expand(bytes int) {
	neededSize := bytes + p.Offset // Need byte slice's length to be at least [neededSize]
	switch {
	case p.Errored():
		return
	case bytes < 0:
		p.Add(errInvalidInput)
	case neededSize <= len(p.Bytes): // Byte slice has sufficient length already
		return
	case neededSize > p.MaxSize: // Lengthening the byte slice would cause it to grow too large
		p.Err = ErrInsufficientLength
		return
	case neededSize <= cap(p.Bytes): // Byte slice has sufficient capacity to lengthen it without mem alloc
		p.Bytes = p.Bytes[:neededSize]
		return
	default: // Add capacity to the byte slice
		p.Bytes = append(p.Bytes[:cap(p.Bytes)], make([]byte, neededSize-cap(p.Bytes))...)
	}
}
