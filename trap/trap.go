// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package trap implements the fatal errors that abort a contract invocation.
//
// A protocol violation is a programming error, not a data condition, so it is
// raised with Abort instead of being returned. The boundary of the invocation
// turns it back into an error with Recover.
package trap

import (
	"errors"
	"fmt"
)

var ErrTrapped = errors.New("invocation trapped")

// Trap is the panic value raised by Abort.
type Trap struct {
	Err error
}

func (t *Trap) Error() string {
	return fmt.Sprintf("%s: %s", ErrTrapped, t.Err)
}

func (t *Trap) Unwrap() []error {
	return []error{ErrTrapped, t.Err}
}

// Abort unwinds the invocation with [err].
func Abort(err error) {
	panic(&Trap{Err: err})
}

// Abortf unwinds the invocation with a formatted error.
func Abortf(format string, args ...interface{}) {
	Abort(fmt.Errorf(format, args...))
}

// Check aborts if [err] is non-nil.
func Check(err error) {
	if err != nil {
		Abort(err)
	}
}

// Recover must be deferred. If the deferring function is unwinding because
// of Abort, the trap is stored in [errp] and the panic stops. Any other panic
// continues.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	t, ok := r.(*Trap)
	if !ok {
		panic(r)
	}
	*errp = t
}

// Run calls [f] and returns the trap it raised, if any.
func Run(f func()) (err error) {
	defer Recover(&err)
	f()
	return nil
}
