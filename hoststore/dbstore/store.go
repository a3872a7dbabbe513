// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dbstore

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/ava-labs/contractcodec/database"
	"github.com/ava-labs/contractcodec/database/prefixdb"
	"github.com/ava-labs/contractcodec/hoststore"
	"github.com/ava-labs/contractcodec/utils/logging"
	"github.com/ava-labs/contractcodec/utils/maybe"
)

var (
	_ hoststore.Store = (*Store)(nil)

	errTooManyTrees = errors.New("tree ids exhausted")

	metadataPrefix = []byte("metadata")
	treesPrefix    = []byte("trees")

	nextTreeIDKey = []byte("nextTreeID")

	// Layout of a tree partition.
	countKey      = []byte{0x00}
	entriesPrefix = []byte{0x01}
)

// Store persists every tree in a database. Each tree is a prefixdb partition
// holding its entry count and its entries. An upsert or delete commits the
// entry and the count in one batch.
type Store struct {
	log logging.Logger

	lock       sync.Mutex
	metadata   database.Database
	trees      database.Database
	nextTreeID hoststore.TreeID
	partitions map[hoststore.TreeID]database.Database
}

// New opens the trees stored in [db].
func New(db database.Database, log logging.Logger) (*Store, error) {
	metadata := prefixdb.New(metadataPrefix, db)
	nextTreeID, err := database.WithDefault(database.GetUInt32, metadata, nextTreeIDKey, 0)
	if err != nil {
		return nil, err
	}

	log.Debug("opened host store",
		zap.Uint32("numTrees", nextTreeID),
	)
	return &Store{
		log:        log,
		metadata:   metadata,
		trees:      prefixdb.New(treesPrefix, db),
		nextTreeID: hoststore.TreeID(nextTreeID),
		partitions: make(map[hoststore.TreeID]database.Database),
	}, nil
}

func (s *Store) Create() (hoststore.TreeID, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := s.nextTreeID
	if id == math.MaxUint32 {
		return 0, errTooManyTrees
	}

	// The count is written before the id is handed out, so a tree id that was
	// never persisted is reused with an empty partition.
	partition := s.partition(id)
	if err := database.PutUInt32(partition, countKey, 0); err != nil {
		return 0, err
	}
	if err := database.PutUInt32(s.metadata, nextTreeIDKey, uint32(id)+1); err != nil {
		return 0, err
	}
	s.nextTreeID++

	s.log.Debug("created tree",
		zap.Uint32("treeID", uint32(id)),
	)
	return id, nil
}

func (s *Store) Fetch(id hoststore.TreeID, key []byte, dst []byte) (bool, error) {
	partition, err := s.knownPartition(id)
	if err != nil {
		return false, err
	}
	value, err := partition.Get(entryKey(key))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := hoststore.CheckBuffer(dst, len(value)); err != nil {
		return false, err
	}
	copy(dst, value)
	return true, nil
}

func (s *Store) Upsert(id hoststore.TreeID, key []byte, value []byte) error {
	if err := hoststore.CheckEntrySize(len(key) + len(value)); err != nil {
		return err
	}
	partition, err := s.knownPartition(id)
	if err != nil {
		return err
	}

	k := entryKey(key)
	has, err := partition.Has(k)
	if err != nil {
		return err
	}

	batch := partition.NewBatch()
	if err := batch.Put(k, value); err != nil {
		return err
	}
	if !has {
		if err := s.addToCount(partition, batch, 1); err != nil {
			return err
		}
	}
	return batch.Write()
}

func (s *Store) Delete(id hoststore.TreeID, key []byte) error {
	partition, err := s.knownPartition(id)
	if err != nil {
		return err
	}

	k := entryKey(key)
	has, err := partition.Has(k)
	if err != nil || !has {
		return err
	}

	batch := partition.NewBatch()
	if err := batch.Delete(k); err != nil {
		return err
	}
	if err := s.addToCount(partition, batch, -1); err != nil {
		return err
	}
	return batch.Write()
}

func (s *Store) SizeOf(id hoststore.TreeID, key []byte) (uint32, error) {
	partition, err := s.knownPartition(id)
	if err != nil {
		return 0, err
	}
	value, err := partition.Get(entryKey(key))
	if errors.Is(err, database.ErrNotFound) {
		return hoststore.SizeAbsent, nil
	}
	if err != nil {
		return 0, err
	}
	return uint32(len(value)), nil
}

func (s *Store) CursorNext(id hoststore.TreeID, prev maybe.Maybe[[]byte], dst []byte) (bool, error) {
	key, value, ok, err := s.next(id, prev)
	if err != nil || !ok {
		return false, err
	}
	if err := hoststore.CheckBuffer(dst, len(key)+len(value)); err != nil {
		return false, err
	}
	n := copy(dst, key)
	copy(dst[n:], value)
	return true, nil
}

func (s *Store) CursorNextSize(id hoststore.TreeID, prev maybe.Maybe[[]byte]) (uint32, error) {
	key, value, ok, err := s.next(id, prev)
	if err != nil {
		return 0, err
	}
	if !ok {
		return hoststore.SizeAbsent, nil
	}
	return uint32(len(key) + len(value)), nil
}

func (s *Store) Len(id hoststore.TreeID) (uint32, error) {
	partition, err := s.knownPartition(id)
	if err != nil {
		return 0, err
	}
	return database.GetUInt32(partition, countKey)
}

func (s *Store) next(id hoststore.TreeID, prev maybe.Maybe[[]byte]) ([]byte, []byte, bool, error) {
	partition, err := s.knownPartition(id)
	if err != nil {
		return nil, nil, false, err
	}

	start := entriesPrefix
	if prev.HasValue() {
		start = entryKey(hoststore.Successor(prev.Value()))
	}
	it := partition.NewIteratorWithStartAndPrefix(start, entriesPrefix)
	defer it.Release()

	if !it.Next() {
		return nil, nil, false, it.Error()
	}
	key := bytes.TrimPrefix(it.Key(), entriesPrefix)
	return key, it.Value(), true, nil
}

// addToCount stages the updated entry count of [partition] into [batch].
func (*Store) addToCount(partition database.KeyValueReader, batch database.Batch, delta int) error {
	count, err := database.GetUInt32(partition, countKey)
	if err != nil {
		return err
	}
	return batch.Put(countKey, database.PackUInt32(uint32(int64(count)+int64(delta))))
}

func (s *Store) knownPartition(id hoststore.TreeID) (database.Database, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if id >= s.nextTreeID {
		return nil, fmt.Errorf("%w: %d", hoststore.ErrUnknownTree, id)
	}
	return s.partition(id), nil
}

// Assumes [s.lock] is held.
func (s *Store) partition(id hoststore.TreeID) database.Database {
	partition, ok := s.partitions[id]
	if !ok {
		partition = prefixdb.New(database.PackUInt32(uint32(id)), s.trees)
		s.partitions[id] = partition
	}
	return partition
}

func entryKey(key []byte) []byte {
	return prefixdb.PrefixKey(entriesPrefix, key)
}
