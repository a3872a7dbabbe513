// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract dispatches calls to the functions of a contract and
// assembles their results.
//
// A call payload is the shortname of the function followed by its RPC
// encoded arguments. The result holds, in this order, the events the call
// emitted, the State encoding of the new contract state and the return data.
package contract

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ava-labs/contractcodec/abi"
	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/codec/rpccodec"
	"github.com/ava-labs/contractcodec/result"
	"github.com/ava-labs/contractcodec/shortname"
	"github.com/ava-labs/contractcodec/trap"
	"github.com/ava-labs/contractcodec/utils/logging"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

var (
	ErrUnknownFunction    = errors.New("unknown function")
	ErrDuplicateShortname = errors.New("duplicate shortname")
	errNilFunction        = errors.New("nil function")
)

// Func is the body of a contract function. It may change [state] in place.
type Func[S any] func(inv *Invocation, state *S)

type function[S any] struct {
	spec abi.FnSpec
	fn   Func[S]
}

// Contract is a set of functions over the state type S.
type Contract[S any] struct {
	log   logging.Logger
	state codec.Manager
	rpc   codec.Manager

	functions map[shortname.Shortname]function[S]
	specs     []abi.FnSpec
}

// New returns a contract without functions. [state] must be a State format
// manager and [rpc] an RPC format one.
func New[S any](log logging.Logger, state, rpc codec.Manager) *Contract[S] {
	return &Contract[S]{
		log:       log,
		state:     state,
		rpc:       rpc,
		functions: make(map[shortname.Shortname]function[S]),
	}
}

// Register adds [fn] under the shortname of [spec].
func (c *Contract[S]) Register(spec abi.FnSpec, fn Func[S]) error {
	if fn == nil {
		return fmt.Errorf("%w: %s", errNilFunction, spec.Name)
	}
	sn := shortnameOf(spec)
	if existing, ok := c.functions[sn]; ok {
		return fmt.Errorf("%w: %s used by %s and %s", ErrDuplicateShortname, sn, existing.spec.Name, spec.Name)
	}
	c.functions[sn] = function[S]{
		spec: spec,
		fn:   fn,
	}
	c.specs = append(c.specs, spec)
	return nil
}

// ABI describes the contract with the types registered on [b].
func (c *Contract[S]) ABI(b *abi.Builder) (*abi.ContractAbi, error) {
	var state S
	return b.Build(state, c.specs...)
}

// Invoke runs the call in [payload] against the State encoded [state]. Init
// functions ignore [state] and start from the zero value. Any trap raised
// while serving the call is returned as an error.
func (c *Contract[S]) Invoke(state, payload []byte) ([]byte, error) {
	var (
		sn  shortname.Shortname
		out []byte
	)
	err := trap.Run(func() {
		p := wrappers.Packer{Bytes: payload}
		var err error
		sn, err = shortname.Read(&p)
		trap.Check(err)

		f, ok := c.functions[sn]
		if !ok {
			trap.Abortf("%w: %s", ErrUnknownFunction, sn)
		}

		var s S
		if f.spec.Kind != abi.FnKindInit {
			trap.Check(c.state.Unmarshal(state, &s))
		}

		inv := &Invocation{
			rpc:  c.rpc,
			args: rpccodec.NewArgs(c.rpc, payload[p.Offset:]),
		}
		f.fn(inv, &s)
		trap.Check(inv.args.Done())

		out = c.assemble(inv, &s)
	})
	if err != nil {
		c.log.Warn("invocation trapped",
			zap.Stringer("shortname", sn),
			zap.Error(err),
		)
		return nil, err
	}
	c.log.Debug("invocation finished",
		zap.Stringer("shortname", sn),
		zap.Int("resultLen", len(out)),
	)
	return out, nil
}

func (c *Contract[S]) assemble(inv *Invocation, state *S) []byte {
	buf := result.New()
	if len(inv.events) > 0 {
		buf.WriteSection(result.SectionEvents, func(p *wrappers.Packer) {
			trap.Check(c.rpc.Codec().MarshalInto(&inv.events, p))
		})
	}
	buf.WriteSection(result.SectionState, func(p *wrappers.Packer) {
		trap.Check(c.state.Codec().MarshalInto(state, p))
	})
	if inv.returnSet {
		buf.WriteSection(result.SectionReturnData, func(p *wrappers.Packer) {
			p.PackFixedBytes(inv.ret)
		})
	}
	return buf.Finalize()
}

func shortnameOf(spec abi.FnSpec) shortname.Shortname {
	if spec.Shortname != nil {
		return *spec.Shortname
	}
	return shortname.FromName(spec.Name)
}
