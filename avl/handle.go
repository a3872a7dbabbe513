// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avl

import (
	"reflect"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/hoststore"
)

// Handle is the part of a Map that lives in contract state. It owns nothing:
// the entries belong to the host store, keyed by TreeID. Copying a Handle
// yields a second reference to the same tree.
type Handle[K, V any] struct {
	TreeID hoststore.TreeID
}

// Open binds the handle to [store]. Keys and values are encoded with [c],
// which must be a State format manager.
func (h Handle[K, V]) Open(store hoststore.Store, c codec.Manager) *Map[K, V] {
	keySize, keyFixed := c.FixedSize(typeOf[K]())
	valueSize, valueFixed := c.FixedSize(typeOf[V]())
	return &Map[K, V]{
		handle:     h,
		store:      store,
		codec:      c,
		keySize:    keySize,
		keyFixed:   keyFixed,
		valueSize:  valueSize,
		valueFixed: valueFixed,
	}
}

// KeyValueTypes returns the key and value types of the tree.
func (Handle[K, V]) KeyValueTypes() (reflect.Type, reflect.Type) {
	return typeOf[K](), typeOf[V]()
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
