// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rpccodec provides the big-endian format of call arguments, callback
// results and ABI-adjacent descriptors.
package rpccodec

import (
	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/codec/reflectcodec"
)

func NewCodec(r *reflectcodec.Registry) codec.Codec {
	return reflectcodec.New(reflectcodec.Config{
		Format:        codec.RPC,
		SignedLengths: true,
		MaxSliceLen:   reflectcodec.DefaultMaxSliceLen,
		Registry:      r,
	})
}

// New returns a manager for the RPC format over the types known to [r].
func New(r *reflectcodec.Registry) codec.Manager {
	return codec.NewDefaultManager(NewCodec(r))
}
