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
	"bytes"
	"container/heap"

	"github.com/ground-x/chainkit/types"
)

// SelectionAlgorithm maintains the two views over the storage arena
// described in §4.5: an executable set ordered by tip/max_gas descending,
// and a least-worth view over executable roots ordered by the ancestor's
// cumulative ratio ascending. No library in the corpus supplies a priority
// queue for this; container/heap is the idiomatic standard-library fit and
// is used by necessity here (see DESIGN.md).
type SelectionAlgorithm struct {
	best *bestHeap // ordered by tx.Tip/tx.MaxGas desc
	worst *worstHeap // ordered by entry.Ratio() asc
	present map[types.StorageIndex]struct{}
}

func NewSelectionAlgorithm() *SelectionAlgorithm {
	return &SelectionAlgorithm{
		best:    &bestHeap{},
		worst:   &worstHeap{},
		present: make(map[types.StorageIndex]struct{}),
	}
}

// NewExecutableTransaction registers idx as having no unresolved
// dependencies, making it eligible for selection and eviction (§4.5).
func (s *SelectionAlgorithm) NewExecutableTransaction(idx types.StorageIndex, entry *StorageEntry) {
	if _, ok := s.present[idx]; ok {
		return
	}
	s.present[idx] = struct{}{}
	heap.Push(s.best, heapItem{idx: idx, entry: entry})
	heap.Push(s.worst, heapItem{idx: idx, entry: entry})
}

// OnRemovedTransaction drops idx from both views, e.g. when it gains a
// dependency it no longer has (impossible once stored, but symmetric with
// eviction) or is removed from storage entirely.
func (s *SelectionAlgorithm) OnRemovedTransaction(idx types.StorageIndex) {
	if _, ok := s.present[idx]; !ok {
		return
	}
	delete(s.present, idx)
	s.best.removeByIdx(idx)
	s.worst.removeByIdx(idx)
}

// NumberOfExecutableTransactions reports the size of the executable set.
func (s *SelectionAlgorithm) NumberOfExecutableTransactions() int {
	return len(s.present)
}

// LessWorthTxs returns every executable root ordered ascending by cumulative
// ratio, the order FindFreeSpace walks when evicting to make room (§4.6).
func (s *SelectionAlgorithm) LessWorthTxs() []types.StorageIndex {
	items := append([]heapItem(nil), s.worst.items...)
	ordered := &worstHeap{items: items}
	heap.Init(ordered)
	out := make([]types.StorageIndex, 0, len(items))
	for ordered.Len() > 0 {
		out = append(out, heap.Pop(ordered).(heapItem).idx)
	}
	return out
}

// GatherBestTxs selects transactions for a block under constraints: it pops
// executable roots in ratio-desc order, walks each root's dependent subtree
// in topological order (only emitting a node once every one of its
// dependencies has been emitted), while the cumulative gas/byte/count
// budgets stay non-negative. Ties within equal ratio break on tx id
// lexicographically for determinism (§4.5).
func (s *SelectionAlgorithm) GatherBestTxs(constraints Constraints, storage *Storage) []*StorageEntry {
	roots := append([]heapItem(nil), s.best.items...)
	ordered := &bestHeap{items: roots}
	heap.Init(ordered)

	var out []*StorageEntry
	var gas, bytesUsed uint64
	var count uint32

	emitted := make(map[types.StorageIndex]struct{})
	var tryEmit func(idx types.StorageIndex) bool
	tryEmit = func(idx types.StorageIndex) bool {
		if _, done := emitted[idx]; done {
			return true
		}
		e := storage.Entry(idx)
		if e == nil {
			return true
		}
		for parent := range e.Dependencies {
			if _, done := emitted[parent]; !done {
				return false
			}
		}
		if gas+e.Tx.MaxGas > constraints.MaxGas ||
			bytesUsed+e.Tx.BytesSize > constraints.MaxBytes ||
			count+1 > constraints.MaxTxs {
			return false
		}
		emitted[idx] = struct{}{}
		gas += e.Tx.MaxGas
		bytesUsed += e.Tx.BytesSize
		count++
		out = append(out, e)

		children := sortedChildren(e, storage)
		for _, child := range children {
			tryEmit(child)
		}
		return true
	}

	for ordered.Len() > 0 {
		root := heap.Pop(ordered).(heapItem).idx
		tryEmit(root)
	}
	return out
}

// sortedChildren orders a node's dependents by tx id, the deterministic
// tie-break §4.5 calls for.
func sortedChildren(e *StorageEntry, storage *Storage) []types.StorageIndex {
	out := make([]types.StorageIndex, 0, len(e.Dependents))
	for c := range e.Dependents {
		out = append(out, c)
	}
	// Insertion sort is fine: dependent fan-out per tx is small in practice.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a := storage.Entry(out[j-1])
			b := storage.Entry(out[j])
			if a == nil || b == nil || bytes.Compare(a.Tx.ID[:], b.Tx.ID[:]) <= 0 {
				break
			}
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

type heapItem struct {
	idx   types.StorageIndex
	entry *StorageEntry
}

// bestHeap orders by tx.Tip/tx.MaxGas descending (a max-heap), tie-broken by
// tx id ascending for determinism.
type bestHeap struct{ items []heapItem }

func (h *bestHeap) Len() int { return len(h.items) }
func (h *bestHeap) Less(i, j int) bool {
	ri, rj := h.items[i].entry.Tx.Ratio(), h.items[j].entry.Tx.Ratio()
	if ri != rj {
		return ri > rj
	}
	return bytes.Compare(h.items[i].entry.Tx.ID[:], h.items[j].entry.Tx.ID[:]) < 0
}
func (h *bestHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *bestHeap) Push(x interface{}) { h.items = append(h.items, x.(heapItem)) }
func (h *bestHeap) Pop() interface{} {
	n := len(h.items)
	it := h.items[n-1]
	h.items = h.items[:n-1]
	return it
}
func (h *bestHeap) removeByIdx(idx types.StorageIndex) {
	for i, it := range h.items {
		if it.idx == idx {
			heap.Remove(h, i)
			return
		}
	}
}

// worstHeap orders by entry.Ratio() ascending (a min-heap over the
// dependent-subtree-weighted ratio), tie-broken by tx id ascending.
type worstHeap struct{ items []heapItem }

func (h *worstHeap) Len() int { return len(h.items) }
func (h *worstHeap) Less(i, j int) bool {
	ri, rj := h.items[i].entry.Ratio(), h.items[j].entry.Ratio()
	if ri != rj {
		return ri < rj
	}
	return bytes.Compare(h.items[i].entry.Tx.ID[:], h.items[j].entry.Tx.ID[:]) < 0
}
func (h *worstHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *worstHeap) Push(x interface{}) { h.items = append(h.items, x.(heapItem)) }
func (h *worstHeap) Pop() interface{} {
	n := len(h.items)
	it := h.items[n-1]
	h.items = h.items[:n-1]
	return it
}
func (h *worstHeap) removeByIdx(idx types.StorageIndex) {
	for i, it := range h.items {
		if it.idx == idx {
			heap.Remove(h, i)
			return
		}
	}
}
