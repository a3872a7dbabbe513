// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memdb

import (
	"bytes"
	"slices"
	"sync"

	"github.com/google/btree"

	"github.com/ava-labs/contractcodec/database"
)

const (
	// Name is the name of this database for database switches
	Name = "memdb"

	defaultTreeDegree = 32
)

var (
	_ database.Database = (*Database)(nil)
	_ database.Batch    = (*batch)(nil)
	_ database.Iterator = (*iterator)(nil)
)

type entry struct {
	key   []byte
	value []byte
}

func less(a, b entry) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// Database is an ephemeral, ordered key-value store that implements the
// Database interface.
type Database struct {
	lock sync.RWMutex
	// nil once closed
	tree *btree.BTreeG[entry]
}

// New returns an empty in-memory database.
func New() *Database {
	return &Database{
		tree: btree.NewG(defaultTreeDegree, less),
	}
}

func (db *Database) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.tree == nil {
		return database.ErrClosed
	}
	db.tree = nil
	return nil
}

func (db *Database) isClosed() bool {
	db.lock.RLock()
	defer db.lock.RUnlock()

	return db.tree == nil
}

func (db *Database) Has(key []byte) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.tree == nil {
		return false, database.ErrClosed
	}
	return db.tree.Has(entry{key: key}), nil
}

func (db *Database) Get(key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.tree == nil {
		return nil, database.ErrClosed
	}
	if e, ok := db.tree.Get(entry{key: key}); ok {
		return slices.Clone(e.value), nil
	}
	return nil, database.ErrNotFound
}

func (db *Database) Put(key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.tree == nil {
		return database.ErrClosed
	}
	db.tree.ReplaceOrInsert(entry{
		key:   slices.Clone(key),
		value: slices.Clone(value),
	})
	return nil
}

func (db *Database) Delete(key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.tree == nil {
		return database.ErrClosed
	}
	db.tree.Delete(entry{key: key})
	return nil
}

func (db *Database) NewBatch() database.Batch {
	return &batch{db: db}
}

func (db *Database) NewIterator() database.Iterator {
	return db.NewIteratorWithStartAndPrefix(nil, nil)
}

func (db *Database) NewIteratorWithStart(start []byte) database.Iterator {
	return db.NewIteratorWithStartAndPrefix(start, nil)
}

func (db *Database) NewIteratorWithPrefix(prefix []byte) database.Iterator {
	return db.NewIteratorWithStartAndPrefix(nil, prefix)
}

// NewIteratorWithStartAndPrefix iterates over a copy-on-write snapshot of the
// tree, so writes made after this call are not observed.
func (db *Database) NewIteratorWithStartAndPrefix(start, prefix []byte) database.Iterator {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.tree == nil {
		return &database.IteratorError{
			Err: database.ErrClosed,
		}
	}

	pivot := start
	if bytes.Compare(pivot, prefix) < 0 {
		pivot = prefix
	}
	return &iterator{
		db:       db,
		snapshot: db.tree.Clone(),
		pivot:    slices.Clone(pivot),
		prefix:   slices.Clone(prefix),
	}
}

type batch struct {
	database.BatchOps

	db *Database
}

func (b *batch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	if b.db.tree == nil {
		return database.ErrClosed
	}

	for _, op := range b.Ops {
		if op.Delete {
			b.db.tree.Delete(entry{key: op.Key})
		} else {
			b.db.tree.ReplaceOrInsert(entry{
				key:   op.Key,
				value: op.Value,
			})
		}
	}
	return nil
}

// iterator walks the snapshot one seek at a time.
type iterator struct {
	db       *Database
	snapshot *btree.BTreeG[entry]
	// the smallest key the next call to Next may return
	pivot   []byte
	prefix  []byte
	current entry
	done    bool
	err     error
}

func (it *iterator) Next() bool {
	// Short-circuit and set an error if the underlying database has been closed.
	if it.db.isClosed() {
		it.release()
		it.err = database.ErrClosed
		return false
	}
	if it.done {
		return false
	}

	found := false
	it.snapshot.AscendGreaterOrEqual(entry{key: it.pivot}, func(e entry) bool {
		found = bytes.HasPrefix(e.key, it.prefix)
		it.current = e
		return false
	})
	if !found {
		it.release()
		return false
	}
	// The immediate successor of the current key.
	it.pivot = append(slices.Clone(it.current.key), 0)
	return true
}

func (it *iterator) Error() error {
	return it.err
}

func (it *iterator) Key() []byte {
	return slices.Clone(it.current.key)
}

func (it *iterator) Value() []byte {
	return slices.Clone(it.current.value)
}

func (it *iterator) Release() {
	it.release()
}

func (it *iterator) release() {
	it.done = true
	it.snapshot = nil
	it.current = entry{}
}
