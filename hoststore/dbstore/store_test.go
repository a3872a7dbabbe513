// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dbstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/database/leveldb"
	"github.com/ava-labs/contractcodec/database/memdb"
	"github.com/ava-labs/contractcodec/hoststore"
	"github.com/ava-labs/contractcodec/hoststore/storetest"
	"github.com/ava-labs/contractcodec/utils/logging"
	"github.com/ava-labs/contractcodec/utils/maybe"
)

func TestInterfaceMemDB(t *testing.T) {
	for name, test := range storetest.Tests {
		t.Run(name, func(t *testing.T) {
			s, err := New(memdb.New(), logging.NoLog{})
			require.NoError(t, err)

			test(t, s)
		})
	}
}

func TestInterfaceLevelDB(t *testing.T) {
	for name, test := range storetest.Tests {
		t.Run(name, func(t *testing.T) {
			db, err := leveldb.NewMem(logging.NoLog{})
			require.NoError(t, err)
			defer db.Close()

			s, err := New(db, logging.NoLog{})
			require.NoError(t, err)

			test(t, s)
		})
	}
}

func TestReopen(t *testing.T) {
	require := require.New(t)

	folder := filepath.Join(t.TempDir(), "db")
	db, err := leveldb.New(folder, logging.NoLog{})
	require.NoError(err)

	s, err := New(db, logging.NoLog{})
	require.NoError(err)

	first, err := s.Create()
	require.NoError(err)
	require.NoError(s.Upsert(first, []byte("key"), []byte("value")))
	require.NoError(db.Close())

	db, err = leveldb.New(folder, logging.NoLog{})
	require.NoError(err)
	defer db.Close()

	s, err = New(db, logging.NoLog{})
	require.NoError(err)

	n, err := s.Len(first)
	require.NoError(err)
	require.Equal(uint32(1), n)

	size, err := s.CursorNextSize(first, maybe.Nothing[[]byte]())
	require.NoError(err)
	require.Equal(uint32(8), size)

	second, err := s.Create()
	require.NoError(err)
	require.Equal(first+1, second)
}

func TestSharedDatabase(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	a, err := New(db, logging.NoLog{})
	require.NoError(err)

	id, err := a.Create()
	require.NoError(err)
	require.NoError(a.Upsert(id, []byte{1}, []byte{2}))

	// A second store over the same database sees the trees of the first.
	b, err := New(db, logging.NoLog{})
	require.NoError(err)

	size, err := b.SizeOf(id, []byte{1})
	require.NoError(err)
	require.Equal(uint32(1), size)

	_, err = b.Len(id + 1)
	require.ErrorIs(err, hoststore.ErrUnknownTree)
}
