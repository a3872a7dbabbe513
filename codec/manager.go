// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/ava-labs/contractcodec/utils/wrappers"
)

const (
	// default max size, in bytes, of something being marshalled by Marshal()
	defaultMaxSize = math.MaxInt32

	// initial capacity of byte slice that values are marshaled into.
	// Larger value --> need less memory allocations but possibly have allocated but unused memory
	// Smaller value --> need more memory allocations but more efficient use of allocated memory
	initialSliceCap = 128
)

var (
	ErrUnmarshalTooBig = errors.New("byte array exceeds maximum length")

	errMarshalNil   = errors.New("can't marshal nil pointer or interface")
	errUnmarshalNil = errors.New("can't unmarshal nil")

	_ Manager = (*manager)(nil)
)

// Manager wraps one codec with size limits and whole-buffer checks.
type Manager interface {
	// Define the maximum size, in bytes, of something serialized/deserialized
	// by this codec manager
	SetMaxSize(int)

	// Marshal the given value.
	Marshal(source interface{}) (destination []byte, err error)

	// Unmarshal the given bytes into the given destination. [destination] must
	// be a pointer. Every byte of [source] must be consumed.
	Unmarshal(source []byte, destination interface{}) error

	// UnmarshalFrom reads one value from [p], leaving the rest of the buffer
	// for the caller.
	UnmarshalFrom(p *wrappers.Packer, destination interface{}) error

	// Size returns the encoded size of [source].
	Size(source interface{}) (int, error)

	// FixedSize reports the encoded size shared by every value of [t], if
	// there is one.
	FixedSize(t reflect.Type) (int, bool)

	Codec() Codec
}

// NewManager returns a new codec manager.
func NewManager(c Codec, maxSize int) Manager {
	return &manager{
		maxSize: maxSize,
		codec:   c,
	}
}

// NewDefaultManager returns a new codec manager.
func NewDefaultManager(c Codec) Manager {
	return NewManager(c, defaultMaxSize)
}

type manager struct {
	lock    sync.RWMutex
	maxSize int
	codec   Codec
}

// SetMaxSize of bytes allowed
func (m *manager) SetMaxSize(size int) {
	m.lock.Lock()
	m.maxSize = size
	m.lock.Unlock()
}

func (m *manager) Codec() Codec {
	return m.codec
}

func (m *manager) Marshal(value interface{}) ([]byte, error) {
	if value == nil {
		return nil, errMarshalNil // can't marshal nil
	}

	m.lock.RLock()
	maxSize := m.maxSize
	m.lock.RUnlock()

	p := wrappers.Packer{
		MaxSize: maxSize,
		Bytes:   make([]byte, 0, initialSliceCap),
	}
	if err := m.codec.MarshalInto(value, &p); err != nil {
		return nil, err
	}
	return p.Bytes, nil
}

// Unmarshal unmarshals [bytes] into [dest], where [dest] must be a pointer.
func (m *manager) Unmarshal(bytes []byte, dest interface{}) error {
	if dest == nil {
		return errUnmarshalNil
	}

	m.lock.RLock()
	maxSize := m.maxSize
	m.lock.RUnlock()

	if len(bytes) > maxSize {
		return fmt.Errorf("%w, %d", ErrUnmarshalTooBig, maxSize)
	}

	p := wrappers.Packer{
		Bytes: bytes,
	}
	if err := m.codec.UnmarshalFrom(&p, dest); err != nil {
		return err
	}
	if p.Offset != len(bytes) {
		return fmt.Errorf("%w: read %d provided %d",
			ErrExtraSpace,
			p.Offset,
			len(bytes),
		)
	}
	return nil
}

func (m *manager) UnmarshalFrom(p *wrappers.Packer, dest interface{}) error {
	if dest == nil {
		return errUnmarshalNil
	}
	return m.codec.UnmarshalFrom(p, dest)
}

func (m *manager) Size(value interface{}) (int, error) {
	if value == nil {
		return 0, errMarshalNil // can't marshal nil
	}
	return m.codec.Size(value)
}

func (m *manager) FixedSize(t reflect.Type) (int, bool) {
	return m.codec.FixedSize(t)
}
