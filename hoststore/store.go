// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hoststore defines the interface of the external store that owns the
// contents of every lazily-paged map.
package hoststore

import (
	"errors"
	"fmt"
	"math"

	"github.com/ava-labs/contractcodec/utils/maybe"
)

// SizeAbsent is reported by size probes when the requested entry does not
// exist.
const SizeAbsent uint32 = math.MaxUint32

var (
	ErrUnknownTree   = errors.New("unknown tree")
	ErrBufferSize    = errors.New("destination buffer has wrong size")
	ErrEntryTooLarge = errors.New("entry too large")
)

// TreeID identifies one collection inside a Store.
type TreeID uint32

// Store is the host side of a lazily-paged map. Every tree is an ordered set of
// byte keys, ordered lexicographically, each mapped to a byte value.
//
// Every method other than Create returns [ErrUnknownTree] if [id] was never
// returned by Create.
type Store interface {
	// Create allocates a new, empty tree. Trees are never reclaimed.
	Create() (TreeID, error)

	// Fetch copies the value of [key] into [dst], which must have exactly the
	// size reported by SizeOf. Returns false if [key] is absent.
	Fetch(id TreeID, key []byte, dst []byte) (bool, error)

	// Upsert sets [key] to [value], overwriting any previous value.
	Upsert(id TreeID, key []byte, value []byte) error

	// Delete removes [key]. Deleting an absent key is not an error.
	Delete(id TreeID, key []byte) error

	// SizeOf returns the size of the value of [key], or [SizeAbsent].
	SizeOf(id TreeID, key []byte) (uint32, error)

	// CursorNext copies key || value of the entry whose key immediately
	// follows [prev] into [dst], which must have exactly the size reported by
	// CursorNextSize. If [prev] is nothing, the first entry is used. Returns
	// false if there is no such entry.
	CursorNext(id TreeID, prev maybe.Maybe[[]byte], dst []byte) (bool, error)

	// CursorNextSize returns len(key) + len(value) of the entry CursorNext
	// would return, or [SizeAbsent].
	CursorNextSize(id TreeID, prev maybe.Maybe[[]byte]) (uint32, error)

	// Len returns the number of entries in the tree.
	Len(id TreeID) (uint32, error)
}

// CheckEntrySize returns an error if an entry of [size] bytes can't be
// described by a size probe.
func CheckEntrySize(size int) error {
	if uint64(size) >= uint64(SizeAbsent) {
		return fmt.Errorf("%w: %d bytes", ErrEntryTooLarge, size)
	}
	return nil
}

// CheckBuffer returns an error if [dst] can't hold exactly [size] bytes.
func CheckBuffer(dst []byte, size int) error {
	if len(dst) != size {
		return fmt.Errorf("%w: expected %d bytes but got %d", ErrBufferSize, size, len(dst))
	}
	return nil
}

// Successor returns the smallest key that sorts strictly after [key].
func Successor(key []byte) []byte {
	succ := make([]byte, len(key)+1)
	copy(succ, key)
	return succ
}
