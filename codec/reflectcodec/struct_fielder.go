// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reflectcodec

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"github.com/ava-labs/contractcodec/codec"
)

const (
	// TagName is the struct tag read by the codec.
	TagName = "wire"

	// SkipValue excludes a field from the encoding.
	SkipValue = "-"

	// SliceLenTagName that specifies the length of a slice.
	SliceLenTagName = "len"
)

var _ StructFielder = (*structFielder)(nil)

type FieldDesc struct {
	Index       int
	MaxSliceLen uint32
}

// StructFielder handles discovery of serializable fields in a struct.
type StructFielder interface {
	// Returns the fields of [t], which is a struct type, that are part of its
	// encoding, in declaration order. Additionally, returns the custom maximum
	// length slice that may be serialized into the field, if any.
	// Returns an error if a field is un-exported and not marked as skipped.
	// GetSerializedField(Foo) --> [0,1,3] means Foo.Field(0), Foo.Field(1),
	// Foo.Field(3) are to be serialized/deserialized.
	GetSerializedFields(t reflect.Type) ([]FieldDesc, error)
}

func NewStructFielder(maxSliceLen uint32) StructFielder {
	return &structFielder{
		maxSliceLen:            maxSliceLen,
		serializedFieldIndices: make(map[reflect.Type][]FieldDesc),
	}
}

type structFielder struct {
	lock sync.Mutex

	maxSliceLen uint32

	// Key: a struct type
	// Value: Slice where each element is index in the struct type of a field
	// that is serialized/deserialized e.g. Foo --> [0,1,3] means Foo.Field(0),
	// etc. are to be serialized/deserialized. We assume this cache is pretty
	// small (a few hundred keys at most) and doesn't take up much memory.
	serializedFieldIndices map[reflect.Type][]FieldDesc
}

func (s *structFielder) GetSerializedFields(t reflect.Type) ([]FieldDesc, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if serializedFields, ok := s.serializedFieldIndices[t]; ok { // use pre-computed result
		return serializedFields, nil
	}
	numFields := t.NumField()
	serializedFields := make([]FieldDesc, 0, numFields)
	for i := 0; i < numFields; i++ { // Go through all fields of this struct
		field := t.Field(i)
		if field.Tag.Get(TagName) == SkipValue {
			continue
		}
		if !field.IsExported() { // Can only marshal exported fields
			return nil, fmt.Errorf("%w: %s.%s", codec.ErrUnexportedField, t, field.Name)
		}

		maxSliceLen := s.maxSliceLen
		if sliceLenField, ok := field.Tag.Lookup(SliceLenTagName); ok {
			newLen, err := strconv.ParseUint(sliceLenField, 10, 31)
			if err != nil {
				return nil, fmt.Errorf("can't parse %s (%s) of %s.%s", SliceLenTagName, sliceLenField, t, field.Name)
			}
			maxSliceLen = uint32(newLen)
		}
		serializedFields = append(serializedFields, FieldDesc{
			Index:       i,
			MaxSliceLen: maxSliceLen,
		})
	}
	s.serializedFieldIndices[t] = serializedFields // cache result
	return serializedFields, nil
}
