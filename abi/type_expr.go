// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package abi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ava-labs/contractcodec/codec"
	"github.com/ava-labs/contractcodec/utils/wrappers"
)

// Ordinal is the leading byte of a type expression.
type Ordinal byte

const (
	OrdinalNamed          Ordinal = 0x00
	OrdinalU8             Ordinal = 0x01
	OrdinalU16            Ordinal = 0x02
	OrdinalU32            Ordinal = 0x03
	OrdinalU64            Ordinal = 0x04
	OrdinalU128           Ordinal = 0x05
	OrdinalI8             Ordinal = 0x06
	OrdinalI16            Ordinal = 0x07
	OrdinalI32            Ordinal = 0x08
	OrdinalI64            Ordinal = 0x09
	OrdinalI128           Ordinal = 0x0a
	OrdinalString         Ordinal = 0x0b
	OrdinalBool           Ordinal = 0x0c
	OrdinalVec            Ordinal = 0x0e
	OrdinalSizedByteArray Ordinal = 0x11
	OrdinalOption         Ordinal = 0x12
	OrdinalAvlTreeMap     Ordinal = 0x19
	OrdinalSizedArray     Ordinal = 0x1a

	// maxExprDepth bounds the nesting accepted when parsing untrusted blobs.
	maxExprDepth = 64
)

var (
	ErrUnknownOrdinal = errors.New("unknown type ordinal")
	ErrEmptyTypeExpr  = errors.New("empty type expression")
	ErrTypeExprDepth  = errors.New("type expression nested too deeply")
	errMalformedExpr  = errors.New("malformed type expression")

	_ codec.Marshaler   = TypeExpr(nil)
	_ codec.Unmarshaler = (*TypeExpr)(nil)

	simpleNames = map[Ordinal]string{
		OrdinalU8:     "u8",
		OrdinalU16:    "u16",
		OrdinalU32:    "u32",
		OrdinalU64:    "u64",
		OrdinalU128:   "u128",
		OrdinalI8:     "i8",
		OrdinalI16:    "i16",
		OrdinalI32:    "i32",
		OrdinalI64:    "i64",
		OrdinalI128:   "i128",
		OrdinalString: "String",
		OrdinalBool:   "bool",
	}
)

// TypeExpr is the serialized form of a type: an ordinal followed by the
// expressions and parameters it takes. A Named expression refers to an entry
// of the contract's type table by index.
type TypeExpr []byte

func Simple(o Ordinal) TypeExpr {
	return TypeExpr{byte(o)}
}

func Named(index byte) TypeExpr {
	return TypeExpr{byte(OrdinalNamed), index}
}

func Vec(elem TypeExpr) TypeExpr {
	return compose(OrdinalVec, elem)
}

func Option(elem TypeExpr) TypeExpr {
	return compose(OrdinalOption, elem)
}

func AvlTreeMap(key, value TypeExpr) TypeExpr {
	return compose(OrdinalAvlTreeMap, key, value)
}

func SizedByteArray(n byte) TypeExpr {
	return TypeExpr{byte(OrdinalSizedByteArray), n}
}

func SizedArray(elem TypeExpr, n byte) TypeExpr {
	return append(compose(OrdinalSizedArray, elem), n)
}

func compose(o Ordinal, parts ...TypeExpr) TypeExpr {
	size := 1
	for _, part := range parts {
		size += len(part)
	}
	expr := make(TypeExpr, 1, size+1)
	expr[0] = byte(o)
	for _, part := range parts {
		expr = append(expr, part...)
	}
	return expr
}

// NamedIndex returns the referenced table index if [t] is a Named expression.
func (t TypeExpr) NamedIndex() (byte, bool) {
	if len(t) != 2 || Ordinal(t[0]) != OrdinalNamed {
		return 0, false
	}
	return t[1], true
}

// Validate checks that [t] is exactly one well formed expression.
func (t TypeExpr) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTypeExpr
	}
	n, err := exprLen(t, 0)
	if err != nil {
		return err
	}
	if n != len(t) {
		return fmt.Errorf("%w: %d trailing bytes", errMalformedExpr, len(t)-n)
	}
	return nil
}

func (t TypeExpr) MarshalWire(_ codec.Format, p *wrappers.Packer) error {
	if err := t.Validate(); err != nil {
		return err
	}
	p.PackFixedBytes(t)
	return p.Err
}

// UnmarshalWire reads exactly one expression. Its length is implied by the
// grammar, so nothing is length prefixed.
func (t *TypeExpr) UnmarshalWire(_ codec.Format, p *wrappers.Packer) error {
	if p.Errored() {
		return p.Err
	}
	n, err := exprLen(p.Bytes[p.Offset:], 0)
	if err != nil {
		return err
	}
	raw := p.UnpackFixedBytes(n)
	if p.Errored() {
		return p.Err
	}
	*t = append(TypeExpr(nil), raw...)
	return nil
}

// exprLen returns the length of the expression at the start of [b].
func exprLen(b []byte, depth int) (int, error) {
	if depth > maxExprDepth {
		return 0, ErrTypeExprDepth
	}
	if len(b) == 0 {
		return 0, fmt.Errorf("%w: type expression truncated", wrappers.ErrInsufficientLength)
	}

	o := Ordinal(b[0])
	switch {
	case o == OrdinalNamed, o == OrdinalSizedByteArray:
		if len(b) < 2 {
			return 0, fmt.Errorf("%w: missing parameter of ordinal 0x%02x", wrappers.ErrInsufficientLength, b[0])
		}
		return 2, nil
	case simpleNames[o] != "":
		return 1, nil
	case o == OrdinalVec, o == OrdinalOption:
		n, err := exprLen(b[1:], depth+1)
		return 1 + n, err
	case o == OrdinalAvlTreeMap:
		k, err := exprLen(b[1:], depth+1)
		if err != nil {
			return 0, err
		}
		v, err := exprLen(b[1+k:], depth+1)
		return 1 + k + v, err
	case o == OrdinalSizedArray:
		n, err := exprLen(b[1:], depth+1)
		if err != nil {
			return 0, err
		}
		if len(b) < 2+n {
			return 0, fmt.Errorf("%w: missing sized array length", wrappers.ErrInsufficientLength)
		}
		return 2 + n, nil
	default:
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownOrdinal, b[0])
	}
}

func (t TypeExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// String renders [t] in the notation of contract source code, e.g.
// "Vec<Option<u64>>". Named references print as "#index".
func (t TypeExpr) String() string {
	return t.render(func(index byte) string {
		return fmt.Sprintf("#%d", index)
	})
}

func (t TypeExpr) render(name func(index byte) string) string {
	var sb strings.Builder
	if _, err := writeExpr(&sb, t, name); err != nil {
		return fmt.Sprintf("invalid(%x)", []byte(t))
	}
	return sb.String()
}

func writeExpr(sb *strings.Builder, b []byte, name func(index byte) string) ([]byte, error) {
	if _, err := exprLen(b, 0); err != nil {
		return nil, err
	}
	o := Ordinal(b[0])
	switch o {
	case OrdinalNamed:
		sb.WriteString(name(b[1]))
		return b[2:], nil
	case OrdinalSizedByteArray:
		fmt.Fprintf(sb, "[u8; %d]", b[1])
		return b[2:], nil
	case OrdinalVec, OrdinalOption:
		if o == OrdinalVec {
			sb.WriteString("Vec<")
		} else {
			sb.WriteString("Option<")
		}
		rest, err := writeExpr(sb, b[1:], name)
		sb.WriteByte('>')
		return rest, err
	case OrdinalAvlTreeMap:
		sb.WriteString("AvlTreeMap<")
		rest, err := writeExpr(sb, b[1:], name)
		if err != nil {
			return nil, err
		}
		sb.WriteString(", ")
		rest, err = writeExpr(sb, rest, name)
		sb.WriteByte('>')
		return rest, err
	case OrdinalSizedArray:
		sb.WriteByte('[')
		rest, err := writeExpr(sb, b[1:], name)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(sb, "; %d]", rest[0])
		return rest[1:], nil
	default:
		sb.WriteString(simpleNames[o])
		return b[1:], nil
	}
}
