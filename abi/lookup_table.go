// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package abi

import (
	"errors"
	"fmt"
)

const (
	// MaxTypes is the number of table entries a Named expression can address.
	MaxTypes = 255

	// UnresolvedIndex is the index written for a type the table does not know
	// yet. It is never a valid index.
	UnresolvedIndex byte = 0xff
)

var (
	ErrTooManyTypes    = errors.New("too many named types")
	ErrDuplicateTypeID = errors.New("duplicate type identity")
)

// LookupTable assigns table indices to type identities in the order they are
// added.
type LookupTable struct {
	indices map[string]byte
	ids     []string
}

func NewLookupTable() *LookupTable {
	return &LookupTable{
		indices: make(map[string]byte),
	}
}

// Add appends [typeID] and returns its index.
func (l *LookupTable) Add(typeID string) (byte, error) {
	if _, ok := l.indices[typeID]; ok {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateTypeID, typeID)
	}
	if len(l.ids) >= MaxTypes {
		return 0, fmt.Errorf("%w: %s would be number %d", ErrTooManyTypes, typeID, len(l.ids)+1)
	}
	index := byte(len(l.ids))
	l.indices[typeID] = index
	l.ids = append(l.ids, typeID)
	return index, nil
}

func (l *LookupTable) Index(typeID string) (byte, bool) {
	index, ok := l.indices[typeID]
	return index, ok
}

// Resolve returns the index of [typeID], or UnresolvedIndex.
func (l *LookupTable) Resolve(typeID string) byte {
	if index, ok := l.indices[typeID]; ok {
		return index
	}
	return UnresolvedIndex
}

func (l *LookupTable) Len() int {
	return len(l.ids)
}

// TypeIDs returns the identities in index order.
func (l *LookupTable) TypeIDs() []string {
	ids := make([]string, len(l.ids))
	copy(ids, l.ids)
	return ids
}
