// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storetest holds the behaviour every hoststore.Store must share.
package storetest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/hoststore"
	"github.com/ava-labs/contractcodec/utils/maybe"
)

// Tests is a list of all store tests
var Tests = map[string]func(t *testing.T, s hoststore.Store){
	"CreateDistinct":        TestCreateDistinct,
	"UnknownTree":           TestUnknownTree,
	"UpsertFetch":           TestUpsertFetch,
	"UpsertOverwrites":      TestUpsertOverwrites,
	"DeleteAbsent":          TestDeleteAbsent,
	"FetchBufferSize":       TestFetchBufferSize,
	"EmptyValue":            TestEmptyValue,
	"CursorOrder":           TestCursorOrder,
	"CursorAfterDeletedKey": TestCursorAfterDeletedKey,
	"CursorBufferSize":      TestCursorBufferSize,
	"TreesAreIsolated":      TestTreesAreIsolated,
}

func TestCreateDistinct(t *testing.T, s hoststore.Store) {
	require := require.New(t)

	a, err := s.Create()
	require.NoError(err)
	b, err := s.Create()
	require.NoError(err)
	require.NotEqual(a, b)

	n, err := s.Len(a)
	require.NoError(err)
	require.Zero(n)
}

func TestUnknownTree(t *testing.T, s hoststore.Store) {
	require := require.New(t)

	const id = hoststore.TreeID(1 << 20)

	_, err := s.Fetch(id, []byte{1}, nil)
	require.ErrorIs(err, hoststore.ErrUnknownTree)
	require.ErrorIs(s.Upsert(id, []byte{1}, []byte{2}), hoststore.ErrUnknownTree)
	require.ErrorIs(s.Delete(id, []byte{1}), hoststore.ErrUnknownTree)
	_, err = s.SizeOf(id, []byte{1})
	require.ErrorIs(err, hoststore.ErrUnknownTree)
	_, err = s.CursorNext(id, maybe.Nothing[[]byte](), nil)
	require.ErrorIs(err, hoststore.ErrUnknownTree)
	_, err = s.CursorNextSize(id, maybe.Nothing[[]byte]())
	require.ErrorIs(err, hoststore.ErrUnknownTree)
	_, err = s.Len(id)
	require.ErrorIs(err, hoststore.ErrUnknownTree)
}

func TestUpsertFetch(t *testing.T, s hoststore.Store) {
	require := require.New(t)

	id, err := s.Create()
	require.NoError(err)

	key := []byte("key")
	size, err := s.SizeOf(id, key)
	require.NoError(err)
	require.Equal(hoststore.SizeAbsent, size)

	found, err := s.Fetch(id, key, nil)
	require.NoError(err)
	require.False(found)

	value := []byte("value")
	require.NoError(s.Upsert(id, key, value))
	value[0] = 'x'

	size, err = s.SizeOf(id, key)
	require.NoError(err)
	require.Equal(uint32(5), size)

	dst := make([]byte, size)
	found, err = s.Fetch(id, key, dst)
	require.NoError(err)
	require.True(found)
	require.Equal([]byte("value"), dst)

	n, err := s.Len(id)
	require.NoError(err)
	require.Equal(uint32(1), n)
}

func TestUpsertOverwrites(t *testing.T, s hoststore.Store) {
	require := require.New(t)

	id, err := s.Create()
	require.NoError(err)

	require.NoError(s.Upsert(id, []byte{1}, []byte{1, 1}))
	require.NoError(s.Upsert(id, []byte{1}, []byte{2}))

	size, err := s.SizeOf(id, []byte{1})
	require.NoError(err)
	require.Equal(uint32(1), size)

	dst := make([]byte, 1)
	found, err := s.Fetch(id, []byte{1}, dst)
	require.NoError(err)
	require.True(found)
	require.Equal([]byte{2}, dst)

	n, err := s.Len(id)
	require.NoError(err)
	require.Equal(uint32(1), n)
}

func TestDeleteAbsent(t *testing.T, s hoststore.Store) {
	require := require.New(t)

	id, err := s.Create()
	require.NoError(err)

	require.NoError(s.Delete(id, []byte{1}))
	require.NoError(s.Upsert(id, []byte{1}, []byte{1}))
	require.NoError(s.Delete(id, []byte{1}))
	require.NoError(s.Delete(id, []byte{1}))

	n, err := s.Len(id)
	require.NoError(err)
	require.Zero(n)

	size, err := s.SizeOf(id, []byte{1})
	require.NoError(err)
	require.Equal(hoststore.SizeAbsent, size)
}

func TestFetchBufferSize(t *testing.T, s hoststore.Store) {
	require := require.New(t)

	id, err := s.Create()
	require.NoError(err)
	require.NoError(s.Upsert(id, []byte{1}, []byte{1, 2, 3}))

	_, err = s.Fetch(id, []byte{1}, make([]byte, 2))
	require.ErrorIs(err, hoststore.ErrBufferSize)
}

func TestEmptyValue(t *testing.T, s hoststore.Store) {
	require := require.New(t)

	id, err := s.Create()
	require.NoError(err)
	require.NoError(s.Upsert(id, []byte{7}, nil))

	size, err := s.SizeOf(id, []byte{7})
	require.NoError(err)
	require.Zero(size)

	found, err := s.Fetch(id, []byte{7}, []byte{})
	require.NoError(err)
	require.True(found)

	size, err = s.CursorNextSize(id, maybe.Nothing[[]byte]())
	require.NoError(err)
	require.Equal(uint32(1), size)
}

func TestCursorOrder(t *testing.T, s hoststore.Store) {
	require := require.New(t)

	id, err := s.Create()
	require.NoError(err)

	entries := [][2][]byte{
		{{0x00, 0x01}, {0xaa}},
		{{0x01}, {0xbb, 0xbb}},
		{{0x01, 0x00}, {}},
		{{0x02}, {0xcc}},
	}
	for _, i := range []int{2, 0, 3, 1} {
		require.NoError(s.Upsert(id, entries[i][0], entries[i][1]))
	}

	prev := maybe.Nothing[[]byte]()
	for _, e := range entries {
		size, err := s.CursorNextSize(id, prev)
		require.NoError(err)
		require.Equal(uint32(len(e[0])+len(e[1])), size)

		dst := make([]byte, size)
		found, err := s.CursorNext(id, prev, dst)
		require.NoError(err)
		require.True(found)
		require.Equal(append(append([]byte{}, e[0]...), e[1]...), dst)

		prev = maybe.Some(e[0])
	}

	for i := 0; i < 2; i++ {
		size, err := s.CursorNextSize(id, prev)
		require.NoError(err)
		require.Equal(hoststore.SizeAbsent, size)

		found, err := s.CursorNext(id, prev, nil)
		require.NoError(err)
		require.False(found)
	}
}

func TestCursorAfterDeletedKey(t *testing.T, s hoststore.Store) {
	require := require.New(t)

	id, err := s.Create()
	require.NoError(err)
	require.NoError(s.Upsert(id, []byte{1}, nil))
	require.NoError(s.Upsert(id, []byte{3}, nil))

	dst := make([]byte, 1)
	found, err := s.CursorNext(id, maybe.Some([]byte{2}), dst)
	require.NoError(err)
	require.True(found)
	require.Equal([]byte{3}, dst)
}

func TestCursorBufferSize(t *testing.T, s hoststore.Store) {
	require := require.New(t)

	id, err := s.Create()
	require.NoError(err)
	require.NoError(s.Upsert(id, []byte{1}, []byte{2}))

	_, err = s.CursorNext(id, maybe.Nothing[[]byte](), make([]byte, 1))
	require.ErrorIs(err, hoststore.ErrBufferSize)
}

func TestTreesAreIsolated(t *testing.T, s hoststore.Store) {
	require := require.New(t)

	a, err := s.Create()
	require.NoError(err)
	b, err := s.Create()
	require.NoError(err)

	require.NoError(s.Upsert(a, []byte{1}, []byte{1}))

	size, err := s.SizeOf(b, []byte{1})
	require.NoError(err)
	require.Equal(hoststore.SizeAbsent, size)

	size, err = s.CursorNextSize(b, maybe.Nothing[[]byte]())
	require.NoError(err)
	require.Equal(hoststore.SizeAbsent, size)

	n, err := s.Len(b)
	require.NoError(err)
	require.Zero(n)
}
