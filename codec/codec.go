// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"errors"
	"reflect"

	"github.com/ava-labs/contractcodec/utils/wrappers"
)

var (
	ErrUnsupportedType           = errors.New("unsupported type")
	ErrMaxSliceLenExceeded       = errors.New("max slice length exceeded")
	ErrDoesNotImplementInterface = errors.New("does not implement interface")
	ErrUnexportedField           = errors.New("unexported field")
	ErrExtraSpace                = errors.New("trailing buffer space")
	ErrMarshalNil                = errors.New("can't marshal nil interface")
	ErrNegativeLength            = errors.New("negative sequence length")
	ErrInvalidUTF8               = errors.New("string is not valid UTF-8")
	ErrUnknownDiscriminant       = errors.New("unknown enum discriminant")
	ErrDuplicateDiscriminant     = errors.New("duplicate enum discriminant")
	ErrNotFixedLayout            = errors.New("type does not have a fixed layout")
)

// Format names one of the two wire formats.
type Format uint8

const (
	// State is the little-endian persistent format.
	State Format = iota
	// RPC is the big-endian format of call arguments and results.
	RPC
)

func (f Format) String() string {
	switch f {
	case State:
		return "state"
	case RPC:
		return "rpc"
	default:
		return "unknown"
	}
}

// Codec marshals and unmarshals
type Codec interface {
	MarshalInto(interface{}, *wrappers.Packer) error
	// UnmarshalFrom reads one value from the current offset of the packer,
	// leaving the offset after it.
	UnmarshalFrom(*wrappers.Packer, interface{}) error

	// Returns the size, in bytes, of [value] when it's marshaled
	Size(value interface{}) (int, error)

	// FixedSize reports whether every value of [t] encodes to the same
	// number of bytes, known without looking at a value, and that number.
	FixedSize(t reflect.Type) (int, bool)

	Format() Format
}

// Marshaler is implemented by types that write their own encoding. The
// encoding must be at least one byte long.
type Marshaler interface {
	MarshalWire(Format, *wrappers.Packer) error
}

// Unmarshaler is implemented by pointers to types that read their own
// encoding.
type Unmarshaler interface {
	UnmarshalWire(Format, *wrappers.Packer) error
}
