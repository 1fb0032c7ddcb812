// Copyright 2018 The klaytn Authors
// This file is part of the klaytn library.
//
// The klaytn library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The klaytn library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the klaytn library. If not, see <http://www.gnu.org/licenses/>.

package storagedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemDatabase_PutGetDelete(t *testing.T) {
	db := NewMemDatabase()
	defer db.Close()

	require.NoError(t, db.Put([]byte("k"), []byte("v")))

	has, err := db.Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, has)

	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, db.Delete([]byte("k")))
	has, err = db.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMemDatabase_Get_MissingKeyReturnsError(t *testing.T) {
	db := NewMemDatabase()
	defer db.Close()

	_, err := db.Get([]byte("missing"))
	assert.Equal(t, ErrMemKeyNotFound, err)
}

func TestMemDatabase_Batch_AppliesAllWritesAtomically(t *testing.T) {
	db := NewMemDatabase()
	defer db.Close()

	b := db.NewBatch()
	require.NoError(t, b.Put([]byte("a"), []byte("1")))
	require.NoError(t, b.Put([]byte("b"), []byte("2")))
	assert.Greater(t, b.ValueSize(), 0)

	require.NoError(t, b.Write())

	v, err := db.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
	v, err = db.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestMemDatabase_Batch_ResetDiscardsPendingWrites(t *testing.T) {
	db := NewMemDatabase()
	defer db.Close()

	b := db.NewBatch()
	require.NoError(t, b.Put([]byte("a"), []byte("1")))
	b.Reset()
	require.NoError(t, b.Write())

	_, err := db.Get([]byte("a"))
	assert.Equal(t, ErrMemKeyNotFound, err)
}

func TestMemDatabase_NewIteratorWithPrefix_OnlyVisitsMatchingKeys(t *testing.T) {
	db := NewMemDatabase()
	defer db.Close()

	require.NoError(t, db.Put([]byte("h:1"), []byte("a")))
	require.NoError(t, db.Put([]byte("h:2"), []byte("b")))
	require.NoError(t, db.Put([]byte("r:1"), []byte("c")))

	it := db.NewIteratorWithPrefix([]byte("h:"))
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	assert.ElementsMatch(t, []string{"h:1", "h:2"}, keys)
}
