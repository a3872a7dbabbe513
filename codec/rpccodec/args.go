// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpccodec

import (
	"fmt"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

// Args reads the arguments of one call, in order, from a single payload.
type Args struct {
	manager codec.Manager
	p       wrappers.Packer
	read    int
}

func NewArgs(manager codec.Manager, payload []byte) *Args {
	return &Args{
		manager: manager,
		p:       wrappers.Packer{Bytes: payload},
	}
}

// Next decodes the next argument into [dest], which must be a pointer.
func (a *Args) Next(dest interface{}) error {
	if err := a.manager.UnmarshalFrom(&a.p, dest); err != nil {
		return fmt.Errorf("argument %d: %w", a.read, err)
	}
	a.read++
	return nil
}

// Done requires that every byte of the payload was read.
func (a *Args) Done() error {
	if remaining := a.p.Remaining(); remaining != 0 {
		return fmt.Errorf("%w: %d bytes after %d arguments", codec.ErrExtraSpace, remaining, a.read)
	}
	return nil
}
