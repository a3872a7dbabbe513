// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package result assembles the output of a contract invocation.
//
// The layout is a 4 byte big-endian total length followed by sections, each a
// 1 byte id, a 4 byte big-endian payload length and the payload:
//
//	[total u32][id u8][len u32][payload]...[id u8][len u32][payload]
package result

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/ava-labs/contractcodec/trap"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

// Well known section ids. The buffer only requires ids to be written in
// non-decreasing order.
const (
	SectionEvents     byte = 0x01
	SectionState      byte = 0x02
	SectionReturnData byte = 0x03
)

const (
	headerLen  = wrappers.IntLen
	initialCap = 256
)

var (
	ErrSectionOrder     = errors.New("section written out of order")
	ErrFinalized        = errors.New("result buffer already finalized")
	errSectionAfterLast = errors.New("no section may follow section 0xff")
)

// Buffer is written once per invocation and finalized exactly once. Every
// violation of that protocol aborts the invocation with a trap.
type Buffer struct {
	p wrappers.Packer

	// Smallest section id that may still be written. It reaches 256 after
	// section 0xff.
	next      uint16
	finalized bool
}

func New() *Buffer {
	b := &Buffer{
		p: wrappers.Packer{
			MaxSize: math.MaxInt32,
			Bytes:   make([]byte, 0, initialCap),
		},
	}
	b.p.PackInt(0)
	return b
}

// WriteSection appends section [id] with the payload produced by [write].
// Writing an id lower than the next allowed id traps. The next allowed id
// becomes [id]+1.
func (b *Buffer) WriteSection(id byte, write func(p *wrappers.Packer)) {
	switch {
	case b.finalized:
		trap.Abort(ErrFinalized)
	case b.next > math.MaxUint8:
		trap.Abortf("%w: got 0x%02x", errSectionAfterLast, id)
	case uint16(id) < b.next:
		trap.Abortf("%w: got 0x%02x but the next allowed id is 0x%02x", ErrSectionOrder, id, b.next)
	}
	b.next = uint16(id) + 1

	b.p.PackByte(id)
	lenOffset := b.p.Offset
	b.p.PackInt(0)
	start := b.p.Offset

	write(&b.p)
	trap.Check(b.p.Err)

	binary.BigEndian.PutUint32(b.p.Bytes[lenOffset:], uint32(b.p.Offset-start))
}

// Finalize writes the total length and returns the buffer. Calling it twice
// traps.
func (b *Buffer) Finalize() []byte {
	if b.finalized {
		trap.Abort(ErrFinalized)
	}
	b.finalized = true

	binary.BigEndian.PutUint32(b.p.Bytes, uint32(len(b.p.Bytes)-headerLen))
	return b.p.Bytes
}
