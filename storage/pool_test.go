// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/kittywatch/fault"
	"github.com/bitmark-inc/kittywatch/storage"
)

func TestInitialiseTwice(t *testing.T) {
	setup(t)
	defer teardown(t)

	err := storage.Initialise(databaseFileName, storage.ReadWrite)
	assert.Equal(t, fault.AlreadyInitialised, err, "second initialise")
}

func TestPoolPutGet(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "begin error")

	_, err = storage.NewDBTransaction()
	assert.Equal(t, fault.TransactionInUse, err, "nested transaction")

	storage.Pool.Kitties.Put([]byte("key-one"), []byte("data-one"))
	storage.Pool.Kitties.Put([]byte("key-two"), []byte("data-two"))
	storage.Pool.Counts.PutN([]byte("n"), 12345)

	// visible before commit
	assert.Equal(t, []byte("data-one"), storage.Pool.Kitties.Get([]byte("key-one")), "uncommitted get")
	assert.True(t, storage.Pool.Kitties.Has([]byte("key-two")), "uncommitted has")
	assert.Equal(t, 0, len(storage.Pool.Kitties.Elements()), "iterator saw uncommitted data")

	err = trx.Commit()
	assert.Nil(t, err, "commit error")
	assert.False(t, trx.InUse(), "transaction still in use")

	elements := storage.Pool.Kitties.Elements()
	assert.Equal(t, 2, len(elements), "wrong element count")
	assert.Equal(t, []byte("key-one"), elements[0].Key, "wrong first key")
	assert.Equal(t, []byte("data-two"), elements[1].Value, "wrong second value")

	n, found := storage.Pool.Counts.GetN([]byte("n"))
	assert.True(t, found, "count not found")
	assert.Equal(t, uint64(12345), n, "wrong count")

	// pools do not overlap
	assert.Nil(t, storage.Pool.Owners.Get([]byte("key-one")), "owners pool sees kitties data")
	assert.Equal(t, 0, len(storage.Pool.Owners.Elements()), "owners pool not empty")
}

func TestPoolDeleteAbort(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "begin error")
	storage.Pool.Owners.Put([]byte("keep"), []byte{1})
	storage.Pool.Owners.Put([]byte("drop"), []byte{2})
	assert.Nil(t, trx.Commit(), "commit error")

	trx, err = storage.NewDBTransaction()
	assert.Nil(t, err, "begin error")
	storage.Pool.Owners.Delete([]byte("drop"))
	assert.False(t, storage.Pool.Owners.Has([]byte("drop")), "deleted key visible")
	assert.Nil(t, storage.Pool.Owners.Get([]byte("drop")), "deleted key readable")
	trx.Abort()

	assert.True(t, storage.Pool.Owners.Has([]byte("drop")), "abort lost committed data")

	trx, err = storage.NewDBTransaction()
	assert.Nil(t, err, "begin error")
	storage.Pool.Owners.Delete([]byte("drop"))
	assert.Nil(t, trx.Commit(), "commit error")

	assert.False(t, storage.Pool.Owners.Has([]byte("drop")), "delete not committed")
	assert.True(t, storage.Pool.Owners.Has([]byte("keep")), "wrong key deleted")
}

func TestReopen(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "begin error")
	storage.Pool.Counts.PutN([]byte("n"), 7)
	assert.Nil(t, trx.Commit(), "commit error")

	storage.Finalise()
	_, err = storage.NewDBTransaction()
	assert.Equal(t, fault.DatabaseIsNotSet, err, "transaction after finalise")

	err = storage.Initialise(databaseFileName, storage.ReadOnly)
	assert.Nil(t, err, "read only open error")

	n, found := storage.Pool.Counts.GetN([]byte("n"))
	assert.True(t, found, "count lost on reopen")
	assert.Equal(t, uint64(7), n, "wrong count after reopen")
}

func TestPoolKeysFrom(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "begin error")
	for _, k := range []byte{1, 3, 5, 7} {
		storage.Pool.Kitties.Put([]byte{0, k}, []byte{k})
	}
	storage.Pool.Owners.Put([]byte{0, 9}, []byte{9})
	assert.Nil(t, trx.Commit(), "commit error")

	keys := storage.Pool.Kitties.KeysFrom([]byte{0, 3})
	assert.Equal(t, [][]byte{{0, 3}, {0, 5}, {0, 7}}, keys, "wrong keys")

	keys = storage.Pool.Kitties.KeysFrom([]byte{0, 8})
	assert.Equal(t, 0, len(keys), "keys beyond the last")

	// the range stops at the end of the pool
	keys = storage.Pool.Kitties.KeysFrom([]byte{0, 0})
	assert.Equal(t, 4, len(keys), "wrong key count")
}
