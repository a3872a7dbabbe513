// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package database defines the ordered key/value storage that persistent host
// stores are built on.
package database

import "io"

// KeyValueReader wraps the Has and Get method of a backing data store.
type KeyValueReader interface {
	// Has retrieves if a key is present in the key-value data store.
	Has(key []byte) (bool, error)

	// Get retrieves the given key if it's present in the key-value data store.
	// Returns ErrNotFound if the key is not present.
	//
	// The returned byte slice is safe to read from and write to.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put method of a backing data store.
type KeyValueWriter interface {
	// Put inserts the given value into the key-value data store.
	//
	// Note: [key] and [value] are safe to modify and read after calling Put.
	Put(key []byte, value []byte) error
}

// KeyValueDeleter wraps the Delete method of a backing data store.
type KeyValueDeleter interface {
	// Delete removes the key from the key-value data store. Deleting a key
	// that isn't present is not an error.
	Delete(key []byte) error
}

// KeyValueWriterDeleter allows using both Put and Delete.
type KeyValueWriterDeleter interface {
	KeyValueWriter
	KeyValueDeleter
}

// Database contains all the methods required to allow handling different
// key-value data stores backing the host store.
type Database interface {
	KeyValueReader
	KeyValueWriterDeleter
	Batcher
	Iteratee
	io.Closer
}
