// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prefixdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/database"
	"github.com/ava-labs/contractcodec/database/dbtest"
	"github.com/ava-labs/contractcodec/database/memdb"
)

func TestInterface(t *testing.T) {
	for name, test := range dbtest.Tests {
		t.Run(name, func(t *testing.T) {
			db := memdb.New()
			test(t, New([]byte("hello"), db))
			test(t, New([]byte("world"), db))
			test(t, New([]byte("wor"), New([]byte("ld"), db)))
			test(t, New([]byte("ld"), New([]byte("wor"), db)))
		})
	}
}

func TestPartitionsAreIsolated(t *testing.T) {
	require := require.New(t)

	base := memdb.New()
	a := New([]byte("a"), base)
	b := New([]byte("b"), base)

	require.NoError(a.Put([]byte("key"), []byte("from a")))

	has, err := b.Has([]byte("key"))
	require.NoError(err)
	require.False(has)

	count, err := database.Count(b)
	require.NoError(err)
	require.Zero(count)

	raw, err := base.Get(PrefixKey(MakePrefix([]byte("a")), []byte("key")))
	require.NoError(err)
	require.Equal([]byte("from a"), raw)
}

func TestCloseLeavesParentOpen(t *testing.T) {
	require := require.New(t)

	base := memdb.New()
	db := New([]byte("a"), base)
	require.NoError(db.Close())

	require.NoError(base.Put([]byte("key"), []byte("value")))
}
