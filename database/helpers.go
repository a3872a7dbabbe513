// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package database

import (
	"encoding/binary"
	"errors"
)

const uint32Size = 4

var errWrongSize = errors.New("value has unexpected size")

// PutUInt32 stores [val] big-endian, so that stored counters sort
// numerically.
func PutUInt32(db KeyValueWriter, key []byte, val uint32) error {
	return db.Put(key, PackUInt32(val))
}

func GetUInt32(db KeyValueReader, key []byte) (uint32, error) {
	b, err := db.Get(key)
	if err != nil {
		return 0, err
	}
	if len(b) != uint32Size {
		return 0, errWrongSize
	}
	return binary.BigEndian.Uint32(b), nil
}

func PackUInt32(val uint32) []byte {
	return binary.BigEndian.AppendUint32(make([]byte, 0, uint32Size), val)
}

// WithDefault returns [def] when [key] is missing from [db].
func WithDefault[V any](
	get func(KeyValueReader, []byte) (V, error),
	db KeyValueReader,
	key []byte,
	def V,
) (V, error) {
	v, err := get(db, key)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	return v, err
}

// Count returns the number of keys in [db].
func Count(db Iteratee) (int, error) {
	it := db.NewIterator()
	defer it.Release()

	count := 0
	for it.Next() {
		count++
	}
	return count, it.Error()
}
