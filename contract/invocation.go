// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/codec/rpccodec"
	"github.com/ava-labs/contractcodec/trap"
)

// Invocation is the view a contract function has of the call it is serving.
// Every method traps on failure.
type Invocation struct {
	rpc  codec.Manager
	args *rpccodec.Args

	events    [][]byte
	ret       []byte
	returnSet bool
}

// Arg decodes the next argument into [dest], which must be a pointer.
func (i *Invocation) Arg(dest interface{}) {
	trap.Check(i.args.Next(dest))
}

// Emit appends the RPC encoding of [event] to the events of the call.
func (i *Invocation) Emit(event interface{}) {
	b, err := i.rpc.Marshal(event)
	trap.Check(err)
	i.events = append(i.events, b)
}

// Return sets the return data of the call. A later call replaces it.
func (i *Invocation) Return(value interface{}) {
	b, err := i.rpc.Marshal(value)
	trap.Check(err)
	i.ret = b
	i.returnSet = true
}
