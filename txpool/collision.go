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

package txpool

import (
	"gopkg.in/fatih/set.v0"

	"github.com/ground-x/chainkit/types"
)

// CollisionReason names why two transactions collide over the same
// resource (§4.3).
type CollisionReason uint8

const (
	CollisionCoin CollisionReason = iota
	CollisionContract
	CollisionMessage
	CollisionBlob
)

func reasonForInputKind(kind types.InputKind) CollisionReason {
	switch kind {
	case types.InputContract:
		return CollisionContract
	case types.InputMessage:
		return CollisionMessage
	default:
		return CollisionCoin
	}
}

// CollisionManager is the multimap from resource key to StorageIndex
// described in §4.3, keyed on typed resource references and implemented
// with per-resource subscriber sets on gopkg.in/fatih/set.v0, mirroring the
// teacher's use of the same library for small unordered id sets in
// work/worker.go.
type CollisionManager struct {
	byResource map[ResourceKey]*set.Set // ResourceKey -> set of types.StorageIndex
	byTx       map[types.TxID][]ResourceKey
	mintedBy   map[ResourceKey]types.TxID // coin output key -> minting tx, for GetCoinsSpenders
}

func NewCollisionManager() *CollisionManager {
	return &CollisionManager{
		byResource: make(map[ResourceKey]*set.Set),
		byTx:       make(map[types.TxID][]ResourceKey),
		mintedBy:   make(map[ResourceKey]types.TxID),
	}
}

// FindCollisions reports, for every resource tx's inputs reference, which
// other live storage entries already claim that same resource (§4.3).
func (c *CollisionManager) FindCollisions(tx *types.PoolTx) map[types.StorageIndex][]CollisionReason {
	out := make(map[types.StorageIndex][]CollisionReason)
	for _, in := range tx.Inputs {
		rk := inputResourceKey(in)
		s, ok := c.byResource[rk]
		if !ok {
			continue
		}
		reason := reasonForInputKind(in.Kind)
		s.Each(func(item interface{}) bool {
			idx := item.(types.StorageIndex)
			out[idx] = append(out[idx], reason)
			return true
		})
	}
	return out
}

// OnStoredTransaction indexes every resource idx's entry consumes and mints.
func (c *CollisionManager) OnStoredTransaction(idx types.StorageIndex, entry *StorageEntry) {
	var keys []ResourceKey
	for _, in := range entry.Tx.Inputs {
		rk := inputResourceKey(in)
		if c.byResource[rk] == nil {
			c.byResource[rk] = set.New()
		}
		c.byResource[rk].Add(idx)
		keys = append(keys, rk)
	}
	for i := range entry.Tx.Outputs {
		ork := outputResourceKey(entry.Tx.ID, uint16(i))
		c.mintedBy[ork] = entry.Tx.ID
	}
	c.byTx[entry.Tx.ID] = keys
}

// OnRemovedTransaction de-indexes every resource idx's entry consumed and
// minted (§4.3). Takes the storage index explicitly, since a resource key's
// subscriber set may (transiently, for a colliding resource) hold more than
// one entry and only the index pinpoints which one to drop.
func (c *CollisionManager) OnRemovedTransaction(idx types.StorageIndex, tx *types.PoolTx) {
	for _, rk := range c.byTx[tx.ID] {
		if s, ok := c.byResource[rk]; ok {
			s.Remove(idx)
			if s.Size() == 0 {
				delete(c.byResource, rk)
			}
		}
	}
	delete(c.byTx, tx.ID)
	for i := range tx.Outputs {
		delete(c.mintedBy, outputResourceKey(tx.ID, uint16(i)))
	}
}

// GetCoinsSpenders lists live storage indexes spending any output minted by
// txID, used for the skip-cascade in RemoveSkippedTransaction (§4.3, §4.6).
func (c *CollisionManager) GetCoinsSpenders(txID types.TxID, tx *types.PoolTx) []types.StorageIndex {
	seen := make(map[types.StorageIndex]struct{})
	var out []types.StorageIndex
	for i := range tx.Outputs {
		rk := outputResourceKey(txID, uint16(i))
		s, ok := c.byResource[rk]
		if !ok {
			continue
		}
		s.Each(func(item interface{}) bool {
			idx := item.(types.StorageIndex)
			if _, dup := seen[idx]; !dup {
				seen[idx] = struct{}{}
				out = append(out, idx)
			}
			return true
		})
	}
	return out
}
