// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package abi assembles and parses the binary interface descriptor of a
// contract: its state type, its callable functions and the table of named
// types they refer to.
package abi

import (
	"errors"
	"fmt"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/codec/reflectcodec"
	"github.com/ava-labs/contractcodec/codec/rpccodec"
	"github.com/ava-labs/contractcodec/shortname"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

// SecretArgName is the name of the secret argument of a ZkSecretInput
// function.
const SecretArgName = "secret_input"

var (
	ErrUnknownKind      = errors.New("unknown named type kind")
	ErrUnknownFnKind    = errors.New("unknown function kind")
	ErrMissingSecretArg = errors.New("secret input function without secret argument")
	ErrUnexpectedSecret = errors.New("secret argument on function that takes none")

	// wireCodec is the RPC format codec all descriptor records are written in.
	wireCodec = rpccodec.New(reflectcodec.NewRegistry())

	_ codec.Marshaler   = NamedTypeSpec{}
	_ codec.Unmarshaler = (*NamedTypeSpec)(nil)
	_ codec.Marshaler   = FnAbi{}
	_ codec.Unmarshaler = (*FnAbi)(nil)
)

type Version struct {
	Major uint8 `json:"major"`
	Minor uint8 `json:"minor"`
	Patch uint8 `json:"patch"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Kind distinguishes the two shapes of named type.
type Kind byte

const (
	KindStruct Kind = 0x01
	KindEnum   Kind = 0x02
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("Kind(0x%02x)", byte(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// FnKind tells the host when a function may be invoked.
type FnKind byte

const (
	FnKindInit                          FnKind = 0x01
	FnKindAction                        FnKind = 0x02
	FnKindCallback                      FnKind = 0x03
	FnKindZkSecretInput                 FnKind = 0x10
	FnKindZkVarInputted                 FnKind = 0x11
	FnKindZkVarRejected                 FnKind = 0x12
	FnKindZkComputeComplete             FnKind = 0x13
	FnKindZkVarOpened                   FnKind = 0x14
	FnKindZkUserVarOpened               FnKind = 0x15
	FnKindZkAttestationComplete         FnKind = 0x16
	FnKindZkSecretInputWithExplicitType FnKind = 0x17
	FnKindZkExternalEvent               FnKind = 0x18
)

var fnKindNames = map[FnKind]string{
	FnKindInit:                          "init",
	FnKindAction:                        "action",
	FnKindCallback:                      "callback",
	FnKindZkSecretInput:                 "zk_secret_input",
	FnKindZkVarInputted:                 "zk_var_inputted",
	FnKindZkVarRejected:                 "zk_var_rejected",
	FnKindZkComputeComplete:             "zk_compute_complete",
	FnKindZkVarOpened:                   "zk_var_opened",
	FnKindZkUserVarOpened:               "zk_user_var_opened",
	FnKindZkAttestationComplete:         "zk_attestation_complete",
	FnKindZkSecretInputWithExplicitType: "zk_secret_input_with_explicit_type",
	FnKindZkExternalEvent:               "zk_external_event",
}

func (k FnKind) String() string {
	if name, ok := fnKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FnKind(0x%02x)", byte(k))
}

func (k FnKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k FnKind) Valid() bool {
	_, ok := fnKindNames[k]
	return ok
}

// NamedEntityAbi is a named field or argument.
type NamedEntityAbi struct {
	Name string   `json:"name"`
	Type TypeExpr `json:"type"`
}

type EnumVariant struct {
	Discriminant byte     `json:"discriminant"`
	Type         TypeExpr `json:"type"`
}

// NamedTypeSpec is one entry of the type table.
type NamedTypeSpec struct {
	Name string `json:"name"`
	// TypeID identifies the Go type the record was produced from. It is not
	// part of the encoding and is empty on parsed records.
	TypeID string `json:"-"`
	// TypeExpr is the Named expression other records use to refer to this
	// one.
	TypeExpr TypeExpr         `json:"-"`
	Kind     Kind             `json:"kind"`
	Fields   []NamedEntityAbi `json:"fields,omitempty"`
	Variants []EnumVariant    `json:"variants,omitempty"`
}

func (s NamedTypeSpec) MarshalWire(_ codec.Format, p *wrappers.Packer) error {
	c := wireCodec.Codec()
	p.PackByte(byte(s.Kind))
	if err := c.MarshalInto(&s.Name, p); err != nil {
		return err
	}
	switch s.Kind {
	case KindStruct:
		return c.MarshalInto(&s.Fields, p)
	case KindEnum:
		return c.MarshalInto(&s.Variants, p)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, s.Kind)
	}
}

func (s *NamedTypeSpec) UnmarshalWire(_ codec.Format, p *wrappers.Packer) error {
	c := wireCodec.Codec()
	s.Kind = Kind(p.UnpackByte())
	if p.Errored() {
		return p.Err
	}
	if err := c.UnmarshalFrom(p, &s.Name); err != nil {
		return err
	}
	switch s.Kind {
	case KindStruct:
		return c.UnmarshalFrom(p, &s.Fields)
	case KindEnum:
		return c.UnmarshalFrom(p, &s.Variants)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, s.Kind)
	}
}

type FnAbi struct {
	Kind      FnKind              `json:"kind"`
	Name      string              `json:"name"`
	Shortname shortname.Shortname `json:"shortname"`
	Args      []NamedEntityAbi    `json:"args"`
	SecretArg *NamedEntityAbi     `json:"secretArg,omitempty"`
}

func (f FnAbi) MarshalWire(_ codec.Format, p *wrappers.Packer) error {
	if err := f.checkSecretArg(); err != nil {
		return err
	}
	c := wireCodec.Codec()
	p.PackByte(byte(f.Kind))
	if err := c.MarshalInto(&f.Name, p); err != nil {
		return err
	}
	if err := c.MarshalInto(f.Shortname, p); err != nil {
		return err
	}
	if err := c.MarshalInto(&f.Args, p); err != nil {
		return err
	}
	if f.SecretArg != nil {
		return c.MarshalInto(f.SecretArg, p)
	}
	return nil
}

func (f *FnAbi) UnmarshalWire(_ codec.Format, p *wrappers.Packer) error {
	c := wireCodec.Codec()
	f.Kind = FnKind(p.UnpackByte())
	if p.Errored() {
		return p.Err
	}
	if !f.Kind.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownFnKind, f.Kind)
	}
	if err := c.UnmarshalFrom(p, &f.Name); err != nil {
		return err
	}
	if err := c.UnmarshalFrom(p, &f.Shortname); err != nil {
		return err
	}
	if err := c.UnmarshalFrom(p, &f.Args); err != nil {
		return err
	}
	f.SecretArg = nil
	if f.Kind != FnKindZkSecretInput {
		return nil
	}
	secret := &NamedEntityAbi{}
	if err := c.UnmarshalFrom(p, secret); err != nil {
		return err
	}
	f.SecretArg = secret
	return nil
}

func (f *FnAbi) checkSecretArg() error {
	if !f.Kind.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownFnKind, f.Kind)
	}
	switch {
	case f.Kind == FnKindZkSecretInput && f.SecretArg == nil:
		return fmt.Errorf("%w: %s", ErrMissingSecretArg, f.Name)
	case f.Kind != FnKindZkSecretInput && f.SecretArg != nil:
		return fmt.Errorf("%w: %s is %s", ErrUnexpectedSecret, f.Name, f.Kind)
	default:
		return nil
	}
}
