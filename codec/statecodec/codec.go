// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package statecodec provides the little-endian format in which contract
// state is persisted.
package statecodec

import (
	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/codec/reflectcodec"
)

// NewCodec returns the State format codec. Sequences of fixed-layout elements
// are copied in bulk.
func NewCodec(r *reflectcodec.Registry) codec.Codec {
	return reflectcodec.New(reflectcodec.Config{
		Format:       codec.State,
		LittleEndian: true,
		BulkCopy:     true,
		MaxSliceLen:  reflectcodec.DefaultMaxSliceLen,
		Registry:     r,
	})
}

// New returns a manager for the State format over the types known to [r].
func New(r *reflectcodec.Registry) codec.Manager {
	return codec.NewDefaultManager(NewCodec(r))
}

// Default returns a State manager that only knows the built in types.
func Default() codec.Manager {
	return New(reflectcodec.NewRegistry())
}
