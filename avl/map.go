// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package avl implements a sorted map whose entries live in a host store and
// are fetched one at a time.
package avl

import (
	"fmt"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/hoststore"
	"github.com/ava-labs/contractcodec/utils/maybe"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

// Entry is one key/value pair. Its encoding is the key followed by the value.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Map is a sorted map of K to V backed by a tree in a host store. Entries are
// ordered by the State encoding of their keys, which may differ from the
// natural order of K.
type Map[K, V any] struct {
	handle Handle[K, V]
	store  hoststore.Store
	codec  codec.Manager

	keySize, valueSize   int
	keyFixed, valueFixed bool
}

// New allocates a new tree in [store]. Trees are never reclaimed, so maps
// should only be created while initializing a contract.
func New[K, V any](store hoststore.Store, c codec.Manager) (*Map[K, V], error) {
	id, err := store.Create()
	if err != nil {
		return nil, err
	}
	return Handle[K, V]{TreeID: id}.Open(store, c), nil
}

// Handle returns the value to persist in contract state.
func (m *Map[K, V]) Handle() Handle[K, V] {
	return m.handle
}

// Get returns the value of [key] and true, or false if [key] is absent.
func (m *Map[K, V]) Get(key K) (V, bool, error) {
	var value V
	keyBytes, err := m.codec.Marshal(&key)
	if err != nil {
		return value, false, err
	}

	size := m.valueSize
	if !m.valueFixed {
		storedSize, err := m.store.SizeOf(m.handle.TreeID, keyBytes)
		if err != nil || storedSize == hoststore.SizeAbsent {
			return value, false, err
		}
		size = int(storedSize)
	}

	valueBytes := make([]byte, size)
	found, err := m.store.Fetch(m.handle.TreeID, keyBytes, valueBytes)
	if err != nil || !found {
		return value, false, err
	}
	if err := m.codec.Unmarshal(valueBytes, &value); err != nil {
		return value, false, fmt.Errorf("couldn't decode value of tree %d: %w", m.handle.TreeID, err)
	}
	return value, true, nil
}

// ContainsKey reports whether [key] is present.
func (m *Map[K, V]) ContainsKey(key K) (bool, error) {
	keyBytes, err := m.codec.Marshal(&key)
	if err != nil {
		return false, err
	}
	size, err := m.store.SizeOf(m.handle.TreeID, keyBytes)
	return size != hoststore.SizeAbsent, err
}

// Insert sets [key] to [value], replacing any previous value.
func (m *Map[K, V]) Insert(key K, value V) error {
	keyBytes, err := m.codec.Marshal(&key)
	if err != nil {
		return err
	}
	valueBytes, err := m.codec.Marshal(&value)
	if err != nil {
		return err
	}
	return m.store.Upsert(m.handle.TreeID, keyBytes, valueBytes)
}

// Remove deletes [key]. Removing an absent key does nothing.
func (m *Map[K, V]) Remove(key K) error {
	keyBytes, err := m.codec.Marshal(&key)
	if err != nil {
		return err
	}
	return m.store.Delete(m.handle.TreeID, keyBytes)
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() (uint32, error) {
	return m.store.Len(m.handle.TreeID)
}

func (m *Map[K, V]) IsEmpty() (bool, error) {
	n, err := m.Len()
	return n == 0, err
}

// Iterator returns an iterator over the entries in key order. The iterator
// fetches one entry per call to Next.
func (m *Map[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{
		m:    m,
		prev: maybe.Nothing[[]byte](),
	}
}

// decodeEntry splits [b] into its key and value. The key is decoded first and
// every remaining byte belongs to the value.
func (m *Map[K, V]) decodeEntry(b []byte) (Entry[K, V], []byte, error) {
	var (
		entry Entry[K, V]
		p     = wrappers.Packer{Bytes: b}
	)
	if err := m.codec.UnmarshalFrom(&p, &entry.Key); err != nil {
		return entry, nil, fmt.Errorf("couldn't decode key of tree %d: %w", m.handle.TreeID, err)
	}
	keyBytes := b[:p.Offset]
	if err := m.codec.Unmarshal(b[p.Offset:], &entry.Value); err != nil {
		return entry, nil, fmt.Errorf("couldn't decode value of tree %d: %w", m.handle.TreeID, err)
	}
	return entry, keyBytes, nil
}
