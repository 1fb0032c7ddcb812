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

func coinTx(id byte, tip, gas uint64, inputs []types.Input, numOutputs int) *types.PoolTx {
	var txID types.TxID
	txID[0] = id
	tx := &types.PoolTx{ID: txID, Kind: types.KindScript, Tip: tip, MaxGas: gas, BytesSize: 100, Inputs: inputs}
	for i := 0; i < numOutputs; i++ {
		tx.Outputs = append(tx.Outputs, types.Output{Kind: types.OutputCoin, Amount: 1})
	}
	return tx
}

func spendOutputOf(parent *types.PoolTx, idx uint16) types.Input {
	return types.Input{Kind: types.InputCoin, UTXO: types.NewUtxoID(parent.ID, idx)}
}

func TestPool_InsertRejectsZeroMaxGas(t *testing.T) {
	pool, err := NewPool(DefaultConfig())
	require.NoError(t, err)

	tx := coinTx(1, 10, 0, nil, 1)
	err = pool.Insert(tx)
	assert.Equal(t, ErrMaxGasZero, err)
}

func TestPool_InsertRejectsDuplicate(t *testing.T) {
	pool, err := NewPool(DefaultConfig())
	require.NoError(t, err)

	tx := coinTx(1, 10, 1000, nil, 1)
	require.NoError(t, pool.Insert(tx))
	assert.Equal(t, ErrDuplicateTxID, pool.Insert(tx))
}

func TestPool_DependencyBecomesExecutableAfterParentCommits(t *testing.T) {
	pool, err := NewPool(DefaultConfig())
	require.NoError(t, err)

	parent := coinTx(1, 10, 1000, nil, 1)
	require.NoError(t, pool.Insert(parent))

	child := coinTx(2, 5, 500, []types.Input{spendOutputOf(parent, 0)}, 0)
	require.NoError(t, pool.Insert(child))

	pool.mu.Lock()
	childIdx, _ := pool.storage.ByTxID(child.ID)
	assert.True(t, pool.storage.HasDependencies(childIdx))
	pool.mu.Unlock()

	pool.ProcessCommittedTransactions([]types.TxID{parent.ID})

	pool.mu.Lock()
	defer pool.mu.Unlock()
	assert.False(t, pool.storage.HasDependencies(childIdx))
	assert.Equal(t, 1, pool.selection.NumberOfExecutableTransactions())
}

func TestPool_ExtractTransactionsForBlock_RespectsOrderAndBudget(t *testing.T) {
	pool, err := NewPool(DefaultConfig())
	require.NoError(t, err)

	low := coinTx(1, 1, 1000, nil, 0)
	high := coinTx(2, 100, 1000, nil, 0)
	require.NoError(t, pool.Insert(low))
	require.NoError(t, pool.Insert(high))

	extracted := pool.ExtractTransactionsForBlock(Constraints{MaxGas: 1000, MaxBytes: 1_000_000, MaxTxs: 10})
	require.Len(t, extracted, 1)
	assert.Equal(t, high.ID, extracted[0].ID)
}

func TestPool_RemoveSkippedTransaction_CascadesToCoinDependents(t *testing.T) {
	pool, err := NewPool(DefaultConfig())
	require.NoError(t, err)

	parent := coinTx(1, 10, 1000, nil, 1)
	require.NoError(t, pool.Insert(parent))
	child := coinTx(2, 5, 500, []types.Input{spendOutputOf(parent, 0)}, 0)
	require.NoError(t, pool.Insert(child))

	pool.RemoveSkippedTransaction(parent.ID, ReasonExplicitlyRemoved)

	assert.False(t, pool.Contains(parent.ID))
	assert.False(t, pool.Contains(child.ID))
}

func TestPool_EvictsLessWorthTxWhenFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits = Constraints{MaxGas: 1500, MaxBytes: 1_000_000, MaxTxs: 10}
	pool, err := NewPool(cfg)
	require.NoError(t, err)

	cheap := coinTx(1, 1, 1000, nil, 0)
	require.NoError(t, pool.Insert(cheap))

	expensive := coinTx(2, 100, 1000, nil, 0)
	require.NoError(t, pool.Insert(expensive))

	assert.False(t, pool.Contains(cheap.ID))
	assert.True(t, pool.Contains(expensive.ID))
}

func TestPool_Invariant_SumsMatchCounters(t *testing.T) {
	pool, err := NewPool(DefaultConfig())
	require.NoError(t, err)

	var txs []*types.PoolTx
	for i := byte(1); i <= 5; i++ {
		tx := coinTx(i, uint64(i), uint64(i)*100, nil, 0)
		require.NoError(t, pool.Insert(tx))
		txs = append(txs, tx)
	}

	pool.mu.Lock()
	defer pool.mu.Unlock()

	var wantGas, wantBytes uint64
	for _, tx := range txs {
		wantGas += tx.MaxGas
		wantBytes += tx.BytesSize
	}
	assert.Equal(t, wantGas, pool.storage.CurrentGas)
	assert.Equal(t, wantBytes, pool.storage.CurrentBytes)
	assert.Equal(t, uint32(len(txs)), pool.storage.CurrentTxs)
}
