// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package maybe

import "fmt"

// Maybe T = Some T | Nothing.
// e.g. Maybe[int] is either Some[int] or Nothing.
// The zero value is Nothing.
type Maybe[T any] struct {
	hasValue bool
	value    T
}

// Some returns a new Maybe[T] with the value val.
func Some[T any](val T) Maybe[T] {
	return Maybe[T]{
		value:    val,
		hasValue: true,
	}
}

// Nothing returns a new Maybe[T] with no value.
func Nothing[T any]() Maybe[T] {
	return Maybe[T]{}
}

// IsNothing returns false iff [m] has a value.
func (m Maybe[T]) IsNothing() bool {
	return !m.hasValue
}

// HasValue returns true iff [m] has a value.
func (m Maybe[T]) HasValue() bool {
	return m.hasValue
}

// Value returns the value of [m].
func (m Maybe[T]) Value() T {
	return m.value
}

func (m Maybe[T]) String() string {
	if !m.hasValue {
		return fmt.Sprintf("Nothing[%T]", m.value)
	}
	return fmt.Sprintf("Some[%T]{%v}", m.value, m.value)
}

// Bind returns Nothing iff [m] is Nothing.
// Otherwise applies [f] to the value of [m] and returns the result as a Some.
func Bind[T, U any](m Maybe[T], f func(T) U) Maybe[U] {
	if m.IsNothing() {
		return Nothing[U]()
	}
	return Some(f(m.Value()))
}
