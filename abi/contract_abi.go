// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package abi

import (
	"bytes"
	"errors"
	"fmt"
)

// HeaderLen is the length of the magic tag and the two versions.
const HeaderLen = len(Magic) + 3 + 3

var (
	Magic = [6]byte{'P', 'B', 'C', 'A', 'B', 'I'}

	ErrBadMagic = errors.New("not an ABI blob")
)

// ContractAbi describes everything a client needs to call a contract and read
// its state.
type ContractAbi struct {
	BinderVersion Version         `json:"binderVersion"`
	ClientVersion Version         `json:"clientVersion"`
	State         TypeExpr        `json:"state"`
	Fns           []FnAbi         `json:"fns"`
	Types         []NamedTypeSpec `json:"types"`
}

// wireAbi is the encoded layout of a ContractAbi.
type wireAbi struct {
	Magic         [6]byte
	BinderVersion Version
	ClientVersion Version
	State         TypeExpr
	Fns           []FnAbi
	Types         []NamedTypeSpec
}

// Bytes returns the descriptor blob.
func (a *ContractAbi) Bytes() ([]byte, error) {
	return wireCodec.Marshal(&wireAbi{
		Magic:         Magic,
		BinderVersion: a.BinderVersion,
		ClientVersion: a.ClientVersion,
		State:         a.State,
		Fns:           a.Fns,
		Types:         a.Types,
	})
}

// Fn returns the function with the given name.
func (a *ContractAbi) Fn(name string) (FnAbi, bool) {
	for _, fn := range a.Fns {
		if fn.Name == name {
			return fn, true
		}
	}
	return FnAbi{}, false
}

// NamedType returns the table entry [expr] refers to.
func (a *ContractAbi) NamedType(expr TypeExpr) (NamedTypeSpec, bool) {
	index, ok := expr.NamedIndex()
	if !ok || int(index) >= len(a.Types) {
		return NamedTypeSpec{}, false
	}
	return a.Types[index], true
}

// Render prints [expr] with named references replaced by the names of the
// types they refer to.
func (a *ContractAbi) Render(expr TypeExpr) string {
	return expr.render(func(index byte) string {
		if int(index) < len(a.Types) {
			return a.Types[index].Name
		}
		return fmt.Sprintf("#%d", index)
	})
}

// Parse decodes a descriptor blob. The whole blob must be consumed.
func Parse(blob []byte) (*ContractAbi, error) {
	if len(blob) < len(Magic) || !bytes.Equal(blob[:len(Magic)], Magic[:]) {
		return nil, ErrBadMagic
	}
	var w wireAbi
	if err := wireCodec.Unmarshal(blob, &w); err != nil {
		return nil, fmt.Errorf("couldn't parse ABI: %w", err)
	}
	if len(w.Types) > MaxTypes {
		return nil, fmt.Errorf("%w: %d", ErrTooManyTypes, len(w.Types))
	}
	for i := range w.Types {
		w.Types[i].TypeExpr = Named(byte(i))
	}
	return &ContractAbi{
		BinderVersion: w.BinderVersion,
		ClientVersion: w.ClientVersion,
		State:         w.State,
		Fns:           w.Fns,
		Types:         w.Types,
	}, nil
}
