// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/contractcodec/database"
)

// Tests is a list of all database tests
var Tests = map[string]func(t *testing.T, db database.Database){
	"SimpleKeyValue":       TestSimpleKeyValue,
	"KeyEmptyValue":        TestKeyEmptyValue,
	"SimpleKeyValueClosed": TestSimpleKeyValueClosed,
	"MemorySafetyDatabase": TestMemorySafetyDatabase,
	"BatchPut":             TestBatchPut,
	"BatchDelete":          TestBatchDelete,
	"BatchReset":           TestBatchReset,
	"BatchReplay":          TestBatchReplay,
	"BatchClosed":          TestBatchClosed,
	"IteratorSnapshot":     TestIteratorSnapshot,
	"Iterator":             TestIterator,
	"IteratorStart":        TestIteratorStart,
	"IteratorPrefix":       TestIteratorPrefix,
	"IteratorStartPrefix":  TestIteratorStartPrefix,
	"IteratorMemorySafety": TestIteratorMemorySafety,
	"IteratorClosed":       TestIteratorClosed,
	"IteratorReleaseTwice": TestIteratorReleaseTwice,
	"Count":                TestCount,
	"UInt32Helpers":        TestUInt32Helpers,
}

// TestSimpleKeyValue tests to make sure that simple Put + Get + Delete + Has
// calls return the expected values.
func TestSimpleKeyValue(t *testing.T, db database.Database) {
	require := require.New(t)

	key := []byte("hello")
	value := []byte("world")

	has, err := db.Has(key)
	require.NoError(err)
	require.False(has)

	_, err = db.Get(key)
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Delete(key))
	require.NoError(db.Put(key, value))

	has, err = db.Has(key)
	require.NoError(err)
	require.True(has)

	v, err := db.Get(key)
	require.NoError(err)
	require.Equal(value, v)

	require.NoError(db.Delete(key))

	has, err = db.Has(key)
	require.NoError(err)
	require.False(has)

	_, err = db.Get(key)
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Delete(key))
}

func TestKeyEmptyValue(t *testing.T, db database.Database) {
	require := require.New(t)

	key := []byte("hello")
	val := []byte(nil)

	_, err := db.Get(key)
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Put(key, val))

	value, err := db.Get(key)
	require.NoError(err)
	require.Empty(value)
}

// TestSimpleKeyValueClosed tests to make sure that Put + Get + Delete + Has
// calls return the correct error when the database has been closed.
func TestSimpleKeyValueClosed(t *testing.T, db database.Database) {
	require := require.New(t)

	key := []byte("hello")
	value := []byte("world")

	require.NoError(db.Put(key, value))
	require.NoError(db.Close())

	_, err := db.Has(key)
	require.ErrorIs(err, database.ErrClosed)

	_, err = db.Get(key)
	require.ErrorIs(err, database.ErrClosed)

	require.ErrorIs(db.Put(key, value), database.ErrClosed)
	require.ErrorIs(db.Delete(key), database.ErrClosed)
	require.ErrorIs(db.Close(), database.ErrClosed)
}

// TestMemorySafetyDatabase ensures it is safe to modify a key after passing it
// to Database.Put and Database.Get.
func TestMemorySafetyDatabase(t *testing.T, db database.Database) {
	require := require.New(t)

	key := []byte("1key")
	keyCopy := []byte("1key")
	value := []byte("value")
	key2 := []byte("2key")
	value2 := []byte("value2")

	require.NoError(db.Put(key, value))
	key[0] = '2'
	value[0] = 'x'
	require.NoError(db.Put(key2, value2))

	gotVal, err := db.Get(keyCopy)
	require.NoError(err)
	require.Equal([]byte("value"), gotVal)

	// Modifying the returned value must not change the stored one.
	gotVal[0] = 'y'
	gotVal, err = db.Get(keyCopy)
	require.NoError(err)
	require.Equal([]byte("value"), gotVal)
}

func TestBatchPut(t *testing.T, db database.Database) {
	require := require.New(t)

	key := []byte("hello")
	value := []byte("world")

	batch := db.NewBatch()
	require.NotNil(batch)

	require.NoError(batch.Put(key, value))
	require.Positive(batch.Size())

	has, err := db.Has(key)
	require.NoError(err)
	require.False(has)

	require.NoError(batch.Write())

	v, err := db.Get(key)
	require.NoError(err)
	require.Equal(value, v)
}

func TestBatchDelete(t *testing.T, db database.Database) {
	require := require.New(t)

	key := []byte("hello")
	value := []byte("world")

	require.NoError(db.Put(key, value))

	batch := db.NewBatch()
	require.NoError(batch.Delete(key))
	require.NoError(batch.Write())

	has, err := db.Has(key)
	require.NoError(err)
	require.False(has)
}

func TestBatchReset(t *testing.T, db database.Database) {
	require := require.New(t)

	key := []byte("hello")
	value := []byte("world")

	batch := db.NewBatch()
	require.NoError(batch.Put(key, value))

	batch.Reset()
	require.Zero(batch.Size())
	require.NoError(batch.Write())

	has, err := db.Has(key)
	require.NoError(err)
	require.False(has)
}

func TestBatchReplay(t *testing.T, db database.Database) {
	require := require.New(t)

	key1 := []byte("hello1")
	value1 := []byte("world1")
	key2 := []byte("hello2")

	batch := db.NewBatch()
	require.NoError(batch.Put(key1, value1))
	require.NoError(batch.Delete(key2))

	var ops []database.BatchOp
	require.NoError(batch.Replay(&recorder{ops: &ops}))
	require.Equal([]database.BatchOp{
		{Key: key1, Value: value1},
		{Key: key2, Delete: true},
	}, ops)
}

func TestBatchClosed(t *testing.T, db database.Database) {
	require := require.New(t)

	batch := db.NewBatch()
	require.NoError(batch.Put([]byte("hello"), []byte("world")))
	require.NoError(db.Close())
	require.ErrorIs(batch.Write(), database.ErrClosed)
}

// TestIteratorSnapshot tests to make sure the database iterates over a snapshot
// of the database at the time of the iterator creation.
func TestIteratorSnapshot(t *testing.T, db database.Database) {
	require := require.New(t)

	key1 := []byte("hello1")
	value1 := []byte("world1")
	key2 := []byte("hello2")
	value2 := []byte("world2")

	require.NoError(db.Put(key1, value1))

	iterator := db.NewIterator()
	defer iterator.Release()

	require.NoError(db.Put(key2, value2))

	require.True(iterator.Next())
	require.Equal(key1, iterator.Key())
	require.Equal(value1, iterator.Value())

	require.False(iterator.Next())
	require.Nil(iterator.Key())
	require.Nil(iterator.Value())
	require.NoError(iterator.Error())
}

// TestIterator tests to make sure the database iterates over the database
// contents lexicographically.
func TestIterator(t *testing.T, db database.Database) {
	require := require.New(t)

	keys := [][]byte{
		{0x01},
		{0x01, 0x00},
		{0x01, 0xff},
		{0x02},
		{0xff, 0xff},
	}
	// Insert out of order.
	for _, i := range []int{3, 0, 4, 2, 1} {
		require.NoError(db.Put(keys[i], []byte{byte(i)}))
	}

	iterator := db.NewIterator()
	defer iterator.Release()

	for i, key := range keys {
		require.True(iterator.Next())
		require.Equal(key, iterator.Key())
		require.Equal([]byte{byte(i)}, iterator.Value())
	}
	require.False(iterator.Next())
	require.NoError(iterator.Error())
}

// TestIteratorStart tests to make sure the the iterator can be configured to
// start mid way through the database.
func TestIteratorStart(t *testing.T, db database.Database) {
	require := require.New(t)

	key1 := []byte("hello1")
	value1 := []byte("world1")
	key2 := []byte("hello2")
	value2 := []byte("world2")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))

	iterator := db.NewIteratorWithStart(key2)
	defer iterator.Release()

	require.True(iterator.Next())
	require.Equal(key2, iterator.Key())
	require.Equal(value2, iterator.Value())

	require.False(iterator.Next())
	require.NoError(iterator.Error())
}

// TestIteratorPrefix tests to make sure the iterator can be configured to skip
// keys missing the provided prefix.
func TestIteratorPrefix(t *testing.T, db database.Database) {
	require := require.New(t)

	key1 := []byte("hello")
	value1 := []byte("world1")
	key2 := []byte("goodbye")
	value2 := []byte("world2")
	key3 := []byte("joy")
	value3 := []byte("world3")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))
	require.NoError(db.Put(key3, value3))

	iterator := db.NewIteratorWithPrefix([]byte("h"))
	defer iterator.Release()

	require.True(iterator.Next())
	require.Equal(key1, iterator.Key())
	require.Equal(value1, iterator.Value())

	require.False(iterator.Next())
	require.NoError(iterator.Error())
}

// TestIteratorStartPrefix tests to make sure that the iterator can start mid
// way through the database while skipping a prefix.
func TestIteratorStartPrefix(t *testing.T, db database.Database) {
	require := require.New(t)

	key1 := []byte("hello1")
	value1 := []byte("world1")
	key2 := []byte("z")
	value2 := []byte("world2")
	key3 := []byte("hello3")
	value3 := []byte("world3")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))
	require.NoError(db.Put(key3, value3))

	iterator := db.NewIteratorWithStartAndPrefix(key1, []byte("h"))
	defer iterator.Release()

	require.True(iterator.Next())
	require.Equal(key1, iterator.Key())
	require.Equal(value1, iterator.Value())

	require.True(iterator.Next())
	require.Equal(key3, iterator.Key())
	require.Equal(value3, iterator.Value())

	require.False(iterator.Next())
	require.NoError(iterator.Error())
}

// TestIteratorMemorySafety tests to make sure that keys can values are able to
// be modified from the returned iterator.
func TestIteratorMemorySafety(t *testing.T, db database.Database) {
	require := require.New(t)

	key1 := []byte("hello1")
	value1 := []byte("world1")
	key2 := []byte("hello2")
	value2 := []byte("world2")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))

	iterator := db.NewIterator()
	defer iterator.Release()

	var keys, values [][]byte
	for iterator.Next() {
		key := iterator.Key()
		value := iterator.Value()
		keys = append(keys, key)
		values = append(values, value)
	}
	require.NoError(iterator.Error())

	// Scribble over the returned slices.
	for _, b := range append(keys, values...) {
		for i := range b {
			b[i] = 0
		}
	}

	got, err := db.Get(key1)
	require.NoError(err)
	require.Equal(value1, got)
}

// TestIteratorClosed tests to make sure that an iterator that was created with
// a closed database will report a closed error correctly.
func TestIteratorClosed(t *testing.T, db database.Database) {
	require := require.New(t)

	require.NoError(db.Put([]byte("hello1"), []byte("world1")))
	require.NoError(db.Close())

	for _, iterator := range []database.Iterator{
		db.NewIterator(),
		db.NewIteratorWithPrefix(nil),
		db.NewIteratorWithStart(nil),
		db.NewIteratorWithStartAndPrefix(nil, nil),
	} {
		require.False(iterator.Next())
		require.Nil(iterator.Key())
		require.Nil(iterator.Value())
		require.ErrorIs(iterator.Error(), database.ErrClosed)
		iterator.Release()
	}
}

func TestIteratorReleaseTwice(t *testing.T, db database.Database) {
	require := require.New(t)

	require.NoError(db.Put([]byte("hello1"), []byte("world1")))

	iterator := db.NewIterator()
	require.True(iterator.Next())
	iterator.Release()
	iterator.Release()
}

func TestCount(t *testing.T, db database.Database) {
	require := require.New(t)

	count, err := database.Count(db)
	require.NoError(err)
	require.Zero(count)

	for i := 0; i < 3; i++ {
		require.NoError(db.Put([]byte{byte(i)}, nil))
	}
	count, err = database.Count(db)
	require.NoError(err)
	require.Equal(3, count)
}

func TestUInt32Helpers(t *testing.T, db database.Database) {
	require := require.New(t)

	key := []byte("counter")

	v, err := database.WithDefault(database.GetUInt32, db, key, 7)
	require.NoError(err)
	require.Equal(uint32(7), v)

	require.NoError(database.PutUInt32(db, key, 0x01020304))
	raw, err := db.Get(key)
	require.NoError(err)
	require.Equal([]byte{0x01, 0x02, 0x03, 0x04}, raw)

	v, err = database.WithDefault(database.GetUInt32, db, key, 7)
	require.NoError(err)
	require.Equal(uint32(0x01020304), v)
}

type recorder struct {
	ops *[]database.BatchOp
}

func (r *recorder) Put(key, value []byte) error {
	*r.ops = append(*r.ops, database.BatchOp{
		Key:   key,
		Value: value,
	})
	return nil
}

func (r *recorder) Delete(key []byte) error {
	*r.ops = append(*r.ops, database.BatchOp{
		Key:    key,
		Delete: true,
	})
	return nil
}
