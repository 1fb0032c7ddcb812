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
	"encoding/binary"
	"errors"
	"sync"

	"github.com/ground-x/chainkit/types"
)

// ErrConflict is returned by StoreNewBlock when the height being stored is
// not exactly one past the current head, mirroring the append-only
// ConflictPolicy::Fail semantics the importer relies on (§4.9, §4.11).
var ErrConflict = errors.New("storagedb: block height conflicts with current head")

// BlockStore layers the append-only block commit path the importer drives
// on top of a raw Database. A single mutex gives it the serialize-on-write
// behavior an append-only chain needs; readers never block on it since Get
// et al. hit the Database directly (§4.11).
type BlockStore struct {
	db Database
	mu sync.Mutex
}

func NewBlockStore(db Database) *BlockStore {
	return &BlockStore{db: db}
}

func heightKey(prefix []byte, height uint64) []byte {
	b := make([]byte, len(prefix)+8)
	copy(b, prefix)
	binary.BigEndian.PutUint64(b[len(prefix):], height)
	return b
}

// LatestBlockHeight returns the height of the most recently stored block, or
// (0, false) if the store is empty.
func (s *BlockStore) LatestBlockHeight() (uint64, bool, error) {
	raw, err := s.db.Get(BlockHeightKey)
	if err != nil {
		if err == ErrMemKeyNotFound {
			return 0, false, nil
		}
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return binary.BigEndian.Uint64(raw), true, nil
}

// LatestBlockRoot returns the stored state root for height, used by the
// node's chain view to supply the producer's PrevRoot.
func (s *BlockStore) LatestBlockRoot(height uint64) ([32]byte, error) {
	var root [32]byte
	raw, err := s.db.Get(heightKey(BlockRootPrefix, height))
	if err != nil {
		return root, err
	}
	copy(root[:], raw)
	return root, nil
}

// StoreNewBlock atomically commits a block's header bytes, state root, and
// the updated head pointer, rejecting a height that is not exactly current
// head + 1 (ConflictPolicy::Fail, §4.9 invariant that blocks commit in
// order).
func (s *BlockStore) StoreNewBlock(height uint64, headerBytes []byte, root [32]byte) error {
	return s.CommitBlock(height, headerBytes, root, nil)
}

// Header returns the decoded header stored at height, as written by a prior
// StoreNewBlock call (§4.7 ChainView, §4.11).
func (s *BlockStore) Header(height uint64) (types.Header, error) {
	raw, err := s.db.Get(heightKey(BlockHeaderPrefix, height))
	if err != nil {
		return types.Header{}, err
	}
	return DecodeHeader(raw)
}

// CommitBlock persists a block's execution writes, header bytes, state
// root, and head pointer in a single batch (§4.9, §4.11): the importer's
// entire commit is one storage transaction, not a header write that can
// land without its state changes or vice versa. Rejects a height that is
// not exactly current head + 1 (ConflictPolicy::Fail), the same ordering
// invariant StoreNewBlock enforced on its own.
func (s *BlockStore) CommitBlock(height uint64, headerBytes []byte, root [32]byte, writes map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, ok, err := s.LatestBlockHeight()
	if err != nil {
		return err
	}
	if ok && height != head+1 {
		return ErrConflict
	}
	if !ok && height != 0 {
		return ErrConflict
	}

	batch := s.db.NewBatch()
	for k, v := range writes {
		if err := batch.Put([]byte(k), v); err != nil {
			return err
		}
	}
	if err := batch.Put(heightKey(BlockHeaderPrefix, height), headerBytes); err != nil {
		return err
	}
	if err := batch.Put(heightKey(BlockRootPrefix, height), root[:]); err != nil {
		return err
	}
	heightBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBytes, height)
	if err := batch.Put(BlockHeightKey, heightBytes); err != nil {
		return err
	}
	return batch.Write()
}

func isNotFound(err error) bool {
	// goleveldb returns leveldb.ErrNotFound; avoid importing it here to
	// keep this file backend-agnostic and compare by string instead.
	return err != nil && err.Error() == "leveldb: not found"
}
