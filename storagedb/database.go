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

// Package storagedb is the storage port §4.11 names: the key/value contract
// the importer and pool's dependency graph persist through, plus the two
// implementations the rest of the module is built and tested against.
package storagedb

import "github.com/syndtr/goleveldb/leveldb/iterator"

// Database is the storage port every persistence-backed component depends
// on. It matches the shape the teacher's storage/database package exposes,
// trimmed to the operations this module actually calls: there is no
// multi-backend DBManager here, only a single active engine per node.
type Database interface {
	Put(key, value []byte) error
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error

	NewIterator() iterator.Iterator
	NewIteratorWithPrefix(prefix []byte) iterator.Iterator

	NewBatch() Batch
	Close()
}

// Batch groups writes into a single atomic commit, used by
// BlockStore.CommitBlock to make a block's committed changes durable together with
// its block-index entry (§4.9, §4.11).
type Batch interface {
	Put(key, value []byte) error
	Write() error
	ValueSize() int
	Reset()
}

// Key prefixes partition the single key space the way the teacher's table
// type scopes a prefix view over a shared database (§4.11).
var (
	BlockHeaderPrefix = []byte("h")
	BlockBodyPrefix   = []byte("b")
	BlockHeightKey    = []byte("LatestBlockHeight")
	BlockRootPrefix   = []byte("r")
)
