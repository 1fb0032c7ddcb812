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

	lru "github.com/hashicorp/golang-lru"

	"github.com/ground-x/chainkit/types"
)

// spendState distinguishes a tentative spend (tx extracted for a block but
// not yet committed) from a committed one (§4.1).
type spendState uint8

const (
	spendTentative spendState = iota
	spendCommitted
)

type spentRecord struct {
	inputs []types.Input
	state  spendState
}

// SpentInputs is the bounded cache of §4.1: a tx_id -> inputs-spent LRU
// backed by github.com/hashicorp/golang-lru (the same dependency the
// teacher leans on for its own bounded id caches), plus a reverse index of
// currently-spent resource keys for ValidateInputs lookups.
type SpentInputs struct {
	mu sync.Mutex

	cache *lru.Cache // types.TxID -> *spentRecord

	// spent maps a resource key to the tx_id currently holding it spent, so
	// IsInputSpent and UnspendInputs stay O(1) instead of walking cache
	// entries.
	spent map[ResourceKey]types.TxID
}

// NewSpentInputs builds a SpentInputs sized to capacity entries, matching
// §4.1's invariant that capacity is max_txs + 1.
func NewSpentInputs(capacity int) (*SpentInputs, error) {
	s := &SpentInputs{spent: make(map[ResourceKey]types.TxID)}
	c, err := lru.NewWithEvict(capacity, s.onEvicted)
	if err != nil {
		return nil, err
	}
	s.cache = c
	return s, nil
}

// onEvicted runs under the cache's own lock path (we never reenter cache
// methods here) to drop any still-spent resource entries the evicted record
// was holding.
func (s *SpentInputs) onEvicted(key interface{}, value interface{}) {
	rec := value.(*spentRecord)
	for _, in := range rec.inputs {
		rk := inputResourceKey(in)
		if owner, ok := s.spent[rk]; ok && owner == key.(types.TxID) {
			delete(s.spent, rk)
		}
	}
}

// IsSpentTx reports whether id has already been recorded as spending inputs,
// used at admission to reject a replayed submission (§4.6 step 1).
func (s *SpentInputs) IsSpentTx(id types.TxID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache.Get(id)
	return ok
}

// IsInputSpent reports whether the resource key referenced by in is
// currently held spent by any tracked transaction.
func (s *SpentInputs) IsInputSpent(in types.Input) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.spent[inputResourceKey(in)]
	return ok
}

// MaybeSpendInputs records a tentative spend: id has been extracted for a
// block being built but not yet committed (§4.1, §4.6
// ExtractTransactionsForBlock).
func (s *SpentInputs) MaybeSpendInputs(id types.TxID, inputs []types.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(id, inputs, spendTentative)
}

// SpendInputs promotes id's spend to committed, overriding any tentative
// record (§4.1, §4.9 ProcessCommittedTransactions).
func (s *SpentInputs) SpendInputs(id types.TxID, inputs []types.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(id, inputs, spendCommitted)
}

func (s *SpentInputs) setLocked(id types.TxID, inputs []types.Input, state spendState) {
	rec := &spentRecord{inputs: inputs, state: state}
	s.cache.Add(id, rec)
	for _, in := range inputs {
		s.spent[inputResourceKey(in)] = id
	}
}

// UnspendInputs rolls back a tentative or committed spend, used when a tx is
// skipped or rejected by the executor (§4.1, §4.6 RemoveSkippedTransaction).
// After this call, inputs previously spent by id are no longer flagged
// spent by this cache (§4.1 invariant).
func (s *SpentInputs) UnspendInputs(id types.TxID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Peek(id)
	if !ok {
		return
	}
	rec := v.(*spentRecord)
	for _, in := range rec.inputs {
		rk := inputResourceKey(in)
		if owner, ok := s.spent[rk]; ok && owner == id {
			delete(s.spent, rk)
		}
	}
	s.cache.Remove(id)
}

func (s *SpentInputs) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
