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
	"sync"

	"github.com/ground-x/chainkit/types"
)

// ExtractedOutputs remembers outputs created by transactions extracted from
// the pool for a block under construction but not yet committed, so input
// validation accepts a child spending a not-yet-committed parent's output
// (§4.2).
type ExtractedOutputs struct {
	mu      sync.Mutex
	outputs map[ResourceKey]types.TxID
}

func NewExtractedOutputs() *ExtractedOutputs {
	return &ExtractedOutputs{outputs: make(map[ResourceKey]types.TxID)}
}

// NewExtractedTransaction registers every output tx mints as extracted.
func (e *ExtractedOutputs) NewExtractedTransaction(tx *types.PoolTx) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range tx.Outputs {
		e.outputs[outputResourceKey(tx.ID, uint16(i))] = tx.ID
	}
}

// NewSkippedTransaction clears every output tx previously registered, since
// a skipped transaction's outputs are no longer available to spend.
func (e *ExtractedOutputs) NewSkippedTransaction(id types.TxID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, owner := range e.outputs {
		if owner == id {
			delete(e.outputs, k)
		}
	}
}

// Contains reports whether key refers to a currently-extracted, not-yet-
// committed output.
func (e *ExtractedOutputs) Contains(key ResourceKey) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.outputs[key]
	return ok
}

// ClearCommitted drops the extracted-output records for every id in ids,
// called in bulk once their owning transactions are committed (§4.2).
func (e *ExtractedOutputs) ClearCommitted(ids []types.TxID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	committed := make(map[types.TxID]struct{}, len(ids))
	for _, id := range ids {
		committed[id] = struct{}{}
	}
	for k, owner := range e.outputs {
		if _, ok := committed[owner]; ok {
			delete(e.outputs, k)
		}
	}
}
