// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avl

import (
	"github.com/ava-labs/contractcodec/hoststore"
	"github.com/ava-labs/contractcodec/utils/maybe"
)

// Iterator walks a Map with the host store's cursor. It can't be restarted:
// once Next has returned false it keeps returning false.
type Iterator[K, V any] struct {
	m *Map[K, V]

	// encoded key of the last entry returned
	prev    maybe.Maybe[[]byte]
	current Entry[K, V]
	done    bool
	err     error
}

// Next moves to the following entry and reports whether there is one.
func (it *Iterator[K, V]) Next() bool {
	if it.done {
		return false
	}

	var (
		m    = it.m
		id   = m.handle.TreeID
		size = m.keySize + m.valueSize
	)
	if !m.keyFixed || !m.valueFixed {
		storedSize, err := m.store.CursorNextSize(id, it.prev)
		if err != nil {
			return it.fail(err)
		}
		if storedSize == hoststore.SizeAbsent {
			return it.fail(nil)
		}
		size = int(storedSize)
	}

	b := make([]byte, size)
	found, err := m.store.CursorNext(id, it.prev, b)
	if err != nil || !found {
		return it.fail(err)
	}

	entry, keyBytes, err := m.decodeEntry(b)
	if err != nil {
		return it.fail(err)
	}
	it.current = entry
	it.prev = maybe.Some(keyBytes)
	return true
}

// Key returns the key of the current entry.
func (it *Iterator[K, V]) Key() K {
	return it.current.Key
}

// Value returns the value of the current entry.
func (it *Iterator[K, V]) Value() V {
	return it.current.Value
}

// Entry returns the current entry.
func (it *Iterator[K, V]) Entry() Entry[K, V] {
	return it.current
}

// Error returns the error that ended the iteration, if any. Running out of
// entries is not an error.
func (it *Iterator[K, V]) Error() error {
	return it.err
}

// Release ends the iteration.
func (it *Iterator[K, V]) Release() {
	it.fail(nil)
}

func (it *Iterator[K, V]) fail(err error) bool {
	it.done = true
	it.current = Entry[K, V]{}
	if it.err == nil {
		it.err = err
	}
	return false
}
