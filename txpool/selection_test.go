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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/chainkit/types"
)

func entryFor(idx types.StorageIndex, id byte, tip, gas uint64) *StorageEntry {
	var txID types.TxID
	txID[0] = id
	return &StorageEntry{
		Idx:           idx,
		Tx:            &types.PoolTx{ID: txID, Tip: tip, MaxGas: gas, BytesSize: 10},
		Dependencies:  map[types.StorageIndex]struct{}{},
		Dependents:    map[types.StorageIndex]struct{}{},
		CumulativeTip: tip,
		CumulativeGas: gas,
	}
}

func TestSelectionAlgorithm_GatherBestTxs_OrdersByRatioDescending(t *testing.T) {
	s := NewSelectionAlgorithm()
	storage := NewStorage()

	low := entryFor(1, 1, 1, 1000)   // ratio 0.001
	high := entryFor(2, 2, 100, 100) // ratio 1.0
	storage.arena = append(storage.arena, nil, low, high)
	s.NewExecutableTransaction(1, low)
	s.NewExecutableTransaction(2, high)

	out := s.GatherBestTxs(Constraints{MaxGas: 1_000_000, MaxBytes: 1_000_000, MaxTxs: 10}, storage)
	require.Len(t, out, 2)
	assert.Equal(t, high.Tx.ID, out[0].Tx.ID)
	assert.Equal(t, low.Tx.ID, out[1].Tx.ID)
}

func TestSelectionAlgorithm_GatherBestTxs_SkipsChildUntilParentEmitted(t *testing.T) {
	s := NewSelectionAlgorithm()
	storage := NewStorage()

	parent := entryFor(1, 1, 1, 100)
	child := entryFor(2, 2, 1000, 100) // far higher ratio, but depends on parent
	child.Dependencies[1] = struct{}{}
	parent.Dependents[2] = struct{}{}
	storage.arena = append(storage.arena, nil, parent, child)

	// Only the child is registered as executable roots would be if a
	// dependency resolution bug let it in early; GatherBestTxs must still
	// refuse to emit it before its parent.
	s.NewExecutableTransaction(2, child)

	out := s.GatherBestTxs(Constraints{MaxGas: 1_000_000, MaxBytes: 1_000_000, MaxTxs: 10}, storage)
	assert.Empty(t, out, "child must not be emitted while its dependency is unresolved")
}

func TestSelectionAlgorithm_GatherBestTxs_EmitsDependentSubtreeAfterRoot(t *testing.T) {
	s := NewSelectionAlgorithm()
	storage := NewStorage()

	parent := entryFor(1, 1, 1, 100)
	child := entryFor(2, 2, 1000, 100)
	child.Dependencies[1] = struct{}{}
	parent.Dependents[2] = struct{}{}
	storage.arena = append(storage.arena, nil, parent, child)

	s.NewExecutableTransaction(1, parent)

	out := s.GatherBestTxs(Constraints{MaxGas: 1_000_000, MaxBytes: 1_000_000, MaxTxs: 10}, storage)
	require.Len(t, out, 2)
	assert.Equal(t, parent.Tx.ID, out[0].Tx.ID)
	assert.Equal(t, child.Tx.ID, out[1].Tx.ID)
}

func TestSelectionAlgorithm_GatherBestTxs_StopsAtGasBudget(t *testing.T) {
	s := NewSelectionAlgorithm()
	storage := NewStorage()

	a := entryFor(1, 1, 10, 600)
	b := entryFor(2, 2, 5, 600)
	storage.arena = append(storage.arena, nil, a, b)
	s.NewExecutableTransaction(1, a)
	s.NewExecutableTransaction(2, b)

	out := s.GatherBestTxs(Constraints{MaxGas: 600, MaxBytes: 1_000_000, MaxTxs: 10}, storage)
	require.Len(t, out, 1)
	assert.Equal(t, a.Tx.ID, out[0].Tx.ID)
}

func TestSelectionAlgorithm_LessWorthTxs_OrdersByRatioAscending(t *testing.T) {
	s := NewSelectionAlgorithm()
	low := entryFor(1, 1, 1, 1000)
	high := entryFor(2, 2, 100, 100)
	s.NewExecutableTransaction(1, low)
	s.NewExecutableTransaction(2, high)

	out := s.LessWorthTxs()
	require.Len(t, out, 2)
	assert.Equal(t, types.StorageIndex(1), out[0])
	assert.Equal(t, types.StorageIndex(2), out[1])
}

func TestSelectionAlgorithm_OnRemovedTransaction_DropsFromBothViews(t *testing.T) {
	s := NewSelectionAlgorithm()
	e := entryFor(1, 1, 10, 100)
	s.NewExecutableTransaction(1, e)
	require.Equal(t, 1, s.NumberOfExecutableTransactions())

	s.OnRemovedTransaction(1)
	assert.Equal(t, 0, s.NumberOfExecutableTransactions())
	assert.Empty(t, s.LessWorthTxs())
}

func TestSelectionAlgorithm_NewExecutableTransaction_IgnoresDuplicateRegistration(t *testing.T) {
	s := NewSelectionAlgorithm()
	e := entryFor(1, 1, 10, 100)
	s.NewExecutableTransaction(1, e)
	s.NewExecutableTransaction(1, e)
	assert.Equal(t, 1, s.NumberOfExecutableTransactions())
}
