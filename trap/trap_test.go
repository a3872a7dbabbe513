// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errTest = errors.New("non-test error")

func TestRunWithoutTrap(t *testing.T) {
	require.NoError(t, Run(func() {}))
}

func TestRunRecoversTrap(t *testing.T) {
	require := require.New(t)

	err := Run(func() {
		Check(nil)
		Check(errTest)
		t.Fatal("unreachable")
	})
	require.ErrorIs(err, ErrTrapped)
	require.ErrorIs(err, errTest)

	var trapped *Trap
	require.ErrorAs(err, &trapped)
	require.Equal(errTest, trapped.Err)
}

func TestAbortf(t *testing.T) {
	err := Run(func() {
		Abortf("section %d out of order", 3)
	})
	require.ErrorIs(t, err, ErrTrapped)
	require.Contains(t, err.Error(), "section 3 out of order")
}

func TestOtherPanicsPropagate(t *testing.T) {
	require.PanicsWithValue(t, "boom", func() {
		_ = Run(func() {
			panic("boom")
		})
	})
}

func TestRecoverInDeferredFunction(t *testing.T) {
	invoke := func() (err error) {
		defer Recover(&err)
		Abort(errTest)
		return nil
	}
	require.ErrorIs(t, invoke(), errTest)
}
