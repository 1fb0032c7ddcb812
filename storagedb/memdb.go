// Copyright 2019 The klaytn Authors
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
	"bytes"
	"errors"
	"sort"
	"sync"

	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrMemKeyNotFound mirrors leveldb.ErrNotFound for the in-memory Database,
// so callers that type-switch on "not found" behave identically against
// either backing store.
var ErrMemKeyNotFound = errors.New("storagedb: key not found")

// MemDatabase is a map-backed Database used by component tests that need a
// Database port without a leveldb file on disk. No example in the pack ships
// a ready-made in-memory KV store for this shape, so this is hand-written
// against the same port leveldb.go implements (see DESIGN.md).
type MemDatabase struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemDatabase() *MemDatabase {
	return &MemDatabase{data: make(map[string][]byte)}
}

func (m *MemDatabase) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[string(key)] = cp
	return nil
}

func (m *MemDatabase) Has(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

func (m *MemDatabase) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrMemKeyNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (m *MemDatabase) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *MemDatabase) NewIterator() iterator.Iterator {
	return m.newIterator(nil)
}

func (m *MemDatabase) NewIteratorWithPrefix(prefix []byte) iterator.Iterator {
	return m.newIterator(util.BytesPrefix(prefix))
}

func (m *MemDatabase) newIterator(r *util.Range) *memIterator {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if r != nil {
			if r.Start != nil && bytes.Compare([]byte(k), r.Start) < 0 {
				continue
			}
			if r.Limit != nil && bytes.Compare([]byte(k), r.Limit) >= 0 {
				continue
			}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vals := make([][]byte, len(keys))
	for i, k := range keys {
		vals[i] = m.data[k]
	}
	return &memIterator{keys: keys, vals: vals, pos: -1}
}

func (m *MemDatabase) NewBatch() Batch { return &memBatch{db: m} }

func (m *MemDatabase) Close() {}

// memIterator walks a point-in-time snapshot taken under the database's
// read lock, matching leveldb's own snapshot-at-creation iterator semantics.
type memIterator struct {
	keys []string
	vals [][]byte
	pos  int
}

func (it *memIterator) Valid() bool { return it.pos >= 0 && it.pos < len(it.keys) }

func (it *memIterator) First() bool {
	if len(it.keys) == 0 {
		it.pos = 0
		return false
	}
	it.pos = 0
	return true
}

func (it *memIterator) Last() bool {
	it.pos = len(it.keys) - 1
	return it.pos >= 0
}

func (it *memIterator) Seek(key []byte) bool {
	i := sort.SearchStrings(it.keys, string(key))
	it.pos = i
	return it.Valid()
}

func (it *memIterator) Next() bool {
	if it.pos < len(it.keys) {
		it.pos++
	}
	return it.Valid()
}

func (it *memIterator) Prev() bool {
	if it.pos >= 0 {
		it.pos--
	}
	return it.Valid()
}

func (it *memIterator) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return []byte(it.keys[it.pos])
}

func (it *memIterator) Value() []byte {
	if !it.Valid() {
		return nil
	}
	return it.vals[it.pos]
}

func (it *memIterator) Error() error                       { return nil }
func (it *memIterator) Release()                           {}
func (it *memIterator) SetReleaser(_ util.Releaser)         {}

type memBatch struct {
	db  *MemDatabase
	ops []memOp
	sz  int
}

type memOp struct {
	key, value []byte
}

func (b *memBatch) Put(key, value []byte) error {
	b.ops = append(b.ops, memOp{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
	b.sz += len(value)
	return nil
}

func (b *memBatch) Write() error {
	for _, op := range b.ops {
		if err := b.db.Put(op.key, op.value); err != nil {
			return err
		}
	}
	return nil
}

func (b *memBatch) ValueSize() int { return b.sz }
func (b *memBatch) Reset()         { b.ops = b.ops[:0]; b.sz = 0 }
