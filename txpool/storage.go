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
	"github.com/ground-x/chainkit/types"
)

// StorageEntry is one node of the dependency graph arena (§4.4).
type StorageEntry struct {
	Idx  types.StorageIndex
	Tx   *types.PoolTx
	Time int64 // unix nano admission time, used for tie-breaks and metrics

	Dependencies map[types.StorageIndex]struct{} // parents this tx spends from
	Dependents   map[types.StorageIndex]struct{} // children that spend from this tx

	// Cumulative* sum this entry's own weight plus every transitive
	// dependent's weight (§4.4, §8 invariant 3).
	CumulativeTip   uint64
	CumulativeGas   uint64
	CumulativeBytes uint64
	CumulativeCount uint32
}

// Ratio is the dependent-subtree-weighted price used by CollisionManager's
// requirement check and SelectionAlgorithm's least-worth ordering (§4.3,
// §4.5).
func (e *StorageEntry) Ratio() float64 {
	if e.CumulativeGas == 0 {
		return 0
	}
	return float64(e.CumulativeTip) / float64(e.CumulativeGas)
}

// CheckedTransaction is the result of Storage.CanStore: a transaction that
// has passed structural/dependency validation and carries the dependency
// edges StoreTransaction will wire in (§4.4).
type CheckedTransaction struct {
	Tx           *types.PoolTx
	directDeps   map[types.StorageIndex]struct{}
	allDeps      map[types.StorageIndex]struct{} // transitive closure
}

// AllDependencies returns the full transitive closure of storage indexes
// this transaction depends on, used by FindCollisions and CanFitIntoPool to
// tell whether a candidate-for-removal index is an ancestor of tx.
func (c *CheckedTransaction) AllDependencies() map[types.StorageIndex]struct{} {
	return c.allDeps
}

// Storage owns the dependency-graph arena described in §4.4.
type Storage struct {
	arena    []*StorageEntry // nil slots are free
	freeList []types.StorageIndex

	idIndex     map[types.TxID]types.StorageIndex
	outputIndex map[ResourceKey]types.StorageIndex // resources minted by live pool txs
	blobIndex   map[types.BlobID]types.StorageIndex

	CurrentGas   uint64
	CurrentBytes uint64
	CurrentTxs   uint32
}

func NewStorage() *Storage {
	return &Storage{
		idIndex:     make(map[types.TxID]types.StorageIndex),
		outputIndex: make(map[ResourceKey]types.StorageIndex),
		blobIndex:   make(map[types.BlobID]types.StorageIndex),
	}
}

// ByBlobID reports whether blobID is already claimed by a live pool
// transaction (§4.6 duplicate blob-id rejection).
func (s *Storage) ByBlobID(blobID types.BlobID) (types.StorageIndex, bool) {
	idx, ok := s.blobIndex[blobID]
	return idx, ok
}

// ByTxID resolves a transaction id to its storage index, if live.
func (s *Storage) ByTxID(id types.TxID) (types.StorageIndex, bool) {
	idx, ok := s.idIndex[id]
	return idx, ok
}

// Entry returns the live entry at idx, or nil.
func (s *Storage) Entry(idx types.StorageIndex) *StorageEntry {
	if int(idx) >= len(s.arena) {
		return nil
	}
	return s.arena[idx]
}

// HasDependencies reports whether idx's transaction still has unresolved
// parents, i.e. it is not in the executable set (§4.4, §8 invariant 4).
func (s *Storage) HasDependencies(idx types.StorageIndex) bool {
	e := s.Entry(idx)
	return e != nil && len(e.Dependencies) > 0
}

// GetDirectDependents lists idx's immediate children.
func (s *Storage) GetDirectDependents(idx types.StorageIndex) []types.StorageIndex {
	e := s.Entry(idx)
	if e == nil {
		return nil
	}
	out := make([]types.StorageIndex, 0, len(e.Dependents))
	for d := range e.Dependents {
		out = append(out, d)
	}
	return out
}

// PersistentLookup answers whether a resource key already exists in
// committed (on-disk) storage, decoupling Storage from storagedb.
type PersistentLookup func(ResourceKey) bool

// ValidateInputs checks every input of tx refers to a live resource not
// already spent, either in the pool's own graph, in extracted outputs, or in
// persistent storage (§4.4). utxoValidation gates the strict existence check
// for coin inputs; disabling it is used by re-validation paths that only
// care about the spent-cache check (e.g. replaying an already-selected tx).
func (s *Storage) ValidateInputs(tx *types.PoolTx, persistent PersistentLookup, extracted *ExtractedOutputs, spent *SpentInputs, utxoValidation bool) error {
	for _, in := range tx.Inputs {
		if spent.IsInputSpent(in) {
			return ErrAlreadySpent
		}
		rk := inputResourceKey(in)
		if _, ok := s.outputIndex[rk]; ok {
			continue
		}
		if extracted.Contains(rk) {
			continue
		}
		if persistent != nil && persistent(rk) {
			continue
		}
		if !utxoValidation {
			continue
		}
		return ErrUnknownInput
	}
	return nil
}

// CanStore validates the structural dependency rules for tx and returns the
// checked transaction StoreTransaction will commit (§4.4). It assumes
// ValidateInputs has already passed.
func (s *Storage) CanStore(tx *types.PoolTx) (*CheckedTransaction, error) {
	direct := make(map[types.StorageIndex]struct{})
	for _, in := range tx.Inputs {
		rk := inputResourceKey(in)
		if idx, ok := s.outputIndex[rk]; ok {
			direct[idx] = struct{}{}
		}
	}

	all := make(map[types.StorageIndex]struct{})
	queue := make([]types.StorageIndex, 0, len(direct))
	for idx := range direct {
		queue = append(queue, idx)
	}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		if _, seen := all[idx]; seen {
			continue
		}
		all[idx] = struct{}{}
		if e := s.Entry(idx); e != nil {
			for parent := range e.Dependencies {
				queue = append(queue, parent)
			}
		}
	}

	return &CheckedTransaction{Tx: tx, directDeps: direct, allDeps: all}, nil
}

// StoreTransaction inserts checked into the arena and updates cumulative
// counters along the chain to every ancestor (§4.4). instant is carried
// through for callers that want to distinguish immediate vs. deferred
// admission when emitting status (§4.6); it does not affect storage
// semantics.
func (s *Storage) StoreTransaction(checked *CheckedTransaction, instant bool, admittedAt int64) types.StorageIndex {
	tx := checked.Tx

	var idx types.StorageIndex
	if n := len(s.freeList); n > 0 {
		idx = s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
	} else {
		idx = types.StorageIndex(len(s.arena))
		s.arena = append(s.arena, nil)
	}

	entry := &StorageEntry{
		Idx:             idx,
		Tx:              tx,
		Time:            admittedAt,
		Dependencies:    checked.directDeps,
		Dependents:      make(map[types.StorageIndex]struct{}),
		CumulativeTip:   tx.Tip,
		CumulativeGas:   tx.MaxGas,
		CumulativeBytes: tx.BytesSize,
		CumulativeCount: 1,
	}
	s.arena[idx] = entry

	for parent := range checked.directDeps {
		if pe := s.Entry(parent); pe != nil {
			pe.Dependents[idx] = struct{}{}
		}
	}

	s.idIndex[tx.ID] = idx
	for i, out := range tx.Outputs {
		_ = out
		s.outputIndex[outputResourceKey(tx.ID, uint16(i))] = idx
	}
	if tx.BlobID != nil {
		s.blobIndex[*tx.BlobID] = idx
	}

	s.CurrentGas += tx.MaxGas
	s.CurrentBytes += tx.BytesSize
	s.CurrentTxs++

	s.propagateCumulative(checked.allDeps, int64(tx.Tip), int64(tx.MaxGas), int64(tx.BytesSize), 1)

	return idx
}

func (s *Storage) propagateCumulative(ancestors map[types.StorageIndex]struct{}, dTip, dGas, dBytes, dCount int64) {
	for idx := range ancestors {
		e := s.Entry(idx)
		if e == nil {
			continue
		}
		e.CumulativeTip = addSigned(e.CumulativeTip, dTip)
		e.CumulativeGas = addSigned(e.CumulativeGas, dGas)
		e.CumulativeBytes = addSigned(e.CumulativeBytes, dBytes)
		e.CumulativeCount = uint32(addSigned(uint64(e.CumulativeCount), dCount))
	}
}

func addSigned(v uint64, d int64) uint64 {
	if d >= 0 {
		return v + uint64(d)
	}
	dec := uint64(-d)
	if dec > v {
		return 0
	}
	return v - dec
}

// RemoveTransaction removes exactly one node; it fails if idx still has live
// dependents (§4.4).
func (s *Storage) RemoveTransaction(idx types.StorageIndex) error {
	e := s.Entry(idx)
	if e == nil {
		return ErrUnknownStorageIndex
	}
	if len(e.Dependents) > 0 {
		return ErrHasDependents
	}
	s.removeEntryLocked(idx)
	return nil
}

// removeEntryLocked unlinks idx from the graph without checking for
// dependents; callers use it either while a whole subtree is being torn
// down in dependent-first order, or to drop a committed transaction whose
// dependents stay and lose idx from their dependency sets.
func (s *Storage) removeEntryLocked(idx types.StorageIndex) {
	e := s.Entry(idx)
	if e == nil {
		return
	}

	// Re-fetch the transitive ancestor set to decrement cumulative counters
	// the same way StoreTransaction incremented them.
	ancestors := make(map[types.StorageIndex]struct{})
	queue := make([]types.StorageIndex, 0, len(e.Dependencies))
	for p := range e.Dependencies {
		queue = append(queue, p)
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if _, seen := ancestors[p]; seen {
			continue
		}
		ancestors[p] = struct{}{}
		if pe := s.Entry(p); pe != nil {
			for gp := range pe.Dependencies {
				queue = append(queue, gp)
			}
		}
	}
	s.propagateCumulative(ancestors, -int64(e.Tx.Tip), -int64(e.Tx.MaxGas), -int64(e.Tx.BytesSize), -1)

	for parent := range e.Dependencies {
		if pe := s.Entry(parent); pe != nil {
			delete(pe.Dependents, idx)
		}
	}
	for child := range e.Dependents {
		if ce := s.Entry(child); ce != nil {
			delete(ce.Dependencies, idx)
		}
	}

	delete(s.idIndex, e.Tx.ID)
	for i := range e.Tx.Outputs {
		delete(s.outputIndex, outputResourceKey(e.Tx.ID, uint16(i)))
	}
	if e.Tx.BlobID != nil {
		delete(s.blobIndex, *e.Tx.BlobID)
	}

	s.CurrentGas -= e.Tx.MaxGas
	s.CurrentBytes -= e.Tx.BytesSize
	s.CurrentTxs--

	s.arena[idx] = nil
	s.freeList = append(s.freeList, idx)
}

// RemoveTransactionAndDependentsSubtree removes idx together with every
// transitive dependent, in dependent-first order, and returns every removed
// index (§4.4 subtree eviction).
func (s *Storage) RemoveTransactionAndDependentsSubtree(idx types.StorageIndex) []types.StorageIndex {
	if s.Entry(idx) == nil {
		return nil
	}

	var order []types.StorageIndex
	visited := make(map[types.StorageIndex]struct{})
	var walk func(types.StorageIndex)
	walk = func(cur types.StorageIndex) {
		if _, ok := visited[cur]; ok {
			return
		}
		visited[cur] = struct{}{}
		e := s.Entry(cur)
		if e == nil {
			return
		}
		for child := range e.Dependents {
			walk(child)
		}
		order = append(order, cur)
	}
	walk(idx)

	for _, i := range order {
		s.removeEntryLocked(i)
	}
	return order
}
