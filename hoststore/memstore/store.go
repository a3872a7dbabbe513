// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memstore

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/google/btree"

	"github.com/ava-labs/contractcodec/hoststore"
	"github.com/ava-labs/contractcodec/utils/maybe"
)

const defaultTreeDegree = 32

var _ hoststore.Store = (*Store)(nil)

type entry struct {
	key   []byte
	value []byte
}

func (e entry) size() int {
	return len(e.key) + len(e.value)
}

func less(a, b entry) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// Store keeps every tree in memory.
type Store struct {
	lock  sync.RWMutex
	trees []*btree.BTreeG[entry]
}

func New() *Store {
	return &Store{}
}

func (s *Store) Create() (hoststore.TreeID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := hoststore.TreeID(len(s.trees))
	s.trees = append(s.trees, btree.NewG(defaultTreeDegree, less))
	return id, nil
}

func (s *Store) Fetch(id hoststore.TreeID, key []byte, dst []byte) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	tree, err := s.tree(id)
	if err != nil {
		return false, err
	}
	e, ok := tree.Get(entry{key: key})
	if !ok {
		return false, nil
	}
	if err := hoststore.CheckBuffer(dst, len(e.value)); err != nil {
		return false, err
	}
	copy(dst, e.value)
	return true, nil
}

func (s *Store) Upsert(id hoststore.TreeID, key []byte, value []byte) error {
	if err := hoststore.CheckEntrySize(len(key) + len(value)); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	tree, err := s.tree(id)
	if err != nil {
		return err
	}
	tree.ReplaceOrInsert(entry{
		key:   slices.Clone(key),
		value: slices.Clone(value),
	})
	return nil
}

func (s *Store) Delete(id hoststore.TreeID, key []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	tree, err := s.tree(id)
	if err != nil {
		return err
	}
	tree.Delete(entry{key: key})
	return nil
}

func (s *Store) SizeOf(id hoststore.TreeID, key []byte) (uint32, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	tree, err := s.tree(id)
	if err != nil {
		return 0, err
	}
	e, ok := tree.Get(entry{key: key})
	if !ok {
		return hoststore.SizeAbsent, nil
	}
	return uint32(len(e.value)), nil
}

func (s *Store) CursorNext(id hoststore.TreeID, prev maybe.Maybe[[]byte], dst []byte) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	e, ok, err := s.next(id, prev)
	if err != nil || !ok {
		return false, err
	}
	if err := hoststore.CheckBuffer(dst, e.size()); err != nil {
		return false, err
	}
	n := copy(dst, e.key)
	copy(dst[n:], e.value)
	return true, nil
}

func (s *Store) CursorNextSize(id hoststore.TreeID, prev maybe.Maybe[[]byte]) (uint32, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	e, ok, err := s.next(id, prev)
	if err != nil {
		return 0, err
	}
	if !ok {
		return hoststore.SizeAbsent, nil
	}
	return uint32(e.size()), nil
}

func (s *Store) Len(id hoststore.TreeID) (uint32, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	tree, err := s.tree(id)
	if err != nil {
		return 0, err
	}
	return uint32(tree.Len()), nil
}

// Assumes [s.lock] is held.
func (s *Store) tree(id hoststore.TreeID) (*btree.BTreeG[entry], error) {
	if int(id) >= len(s.trees) {
		return nil, fmt.Errorf("%w: %d", hoststore.ErrUnknownTree, id)
	}
	return s.trees[id], nil
}

// Assumes [s.lock] is held.
func (s *Store) next(id hoststore.TreeID, prev maybe.Maybe[[]byte]) (entry, bool, error) {
	tree, err := s.tree(id)
	if err != nil {
		return entry{}, false, err
	}
	if prev.IsNothing() {
		e, ok := tree.Min()
		return e, ok, nil
	}

	var (
		next  entry
		found bool
	)
	tree.AscendGreaterOrEqual(entry{key: hoststore.Successor(prev.Value())}, func(e entry) bool {
		next = e
		found = true
		return false
	})
	return next, found, nil
}
