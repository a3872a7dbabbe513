// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package leveldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/database/dbtest"
	"github.com/ava-labs/contractcodec/utils/logging"
)

func TestInterface(t *testing.T) {
	for name, test := range dbtest.Tests {
		t.Run(name, func(t *testing.T) {
			folder := filepath.Join(t.TempDir(), "db")

			db, err := New(folder, logging.NoLog{})
			require.NoError(t, err)

			// The database may have been closed by the test, so we don't care if it
			// errors here.
			defer db.Close()

			test(t, db)
		})
	}
}

func TestInterfaceMem(t *testing.T) {
	for name, test := range dbtest.Tests {
		t.Run(name, func(t *testing.T) {
			db, err := NewMem(logging.NoLog{})
			require.NoError(t, err)
			defer db.Close()

			test(t, db)
		})
	}
}

func TestReopen(t *testing.T) {
	require := require.New(t)

	folder := filepath.Join(t.TempDir(), "db")

	db, err := New(folder, logging.NoLog{})
	require.NoError(err)
	require.NoError(db.Put([]byte("key"), []byte("value")))
	require.NoError(db.Close())

	db, err = New(folder, logging.NoLog{})
	require.NoError(err)
	defer db.Close()

	value, err := db.Get([]byte("key"))
	require.NoError(err)
	require.Equal([]byte("value"), value)
}
