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

func sampleInput(b byte) types.Input {
	var parent types.TxID
	parent[0] = b
	return types.Input{Kind: types.InputCoin, UTXO: types.NewUtxoID(parent, 0)}
}

func TestSpentInputs_MaybeSpendInputs_MarksResourceSpent(t *testing.T) {
	s, err := NewSpentInputs(16)
	require.NoError(t, err)

	var id types.TxID
	id[0] = 1
	in := sampleInput(9)
	s.MaybeSpendInputs(id, []types.Input{in})

	assert.True(t, s.IsSpentTx(id))
	assert.True(t, s.IsInputSpent(in))
}

func TestSpentInputs_UnspendInputs_ClearsResourceAndTx(t *testing.T) {
	s, err := NewSpentInputs(16)
	require.NoError(t, err)

	var id types.TxID
	id[0] = 1
	in := sampleInput(9)
	s.SpendInputs(id, []types.Input{in})

	s.UnspendInputs(id)

	assert.False(t, s.IsSpentTx(id))
	assert.False(t, s.IsInputSpent(in))
}

func TestSpentInputs_EvictionClearsResourceIndex(t *testing.T) {
	s, err := NewSpentInputs(1)
	require.NoError(t, err)

	var first, second types.TxID
	first[0], second[0] = 1, 2
	firstInput := sampleInput(9)
	secondInput := sampleInput(10)

	s.MaybeSpendInputs(first, []types.Input{firstInput})
	s.MaybeSpendInputs(second, []types.Input{secondInput}) // evicts first, capacity 1

	assert.False(t, s.IsSpentTx(first))
	assert.False(t, s.IsInputSpent(firstInput))
	assert.True(t, s.IsInputSpent(secondInput))
	assert.Equal(t, 1, s.Len())
}

func TestSpentInputs_SpendInputsOverridesTentativeState(t *testing.T) {
	s, err := NewSpentInputs(16)
	require.NoError(t, err)

	var id types.TxID
	id[0] = 1
	in := sampleInput(9)
	s.MaybeSpendInputs(id, []types.Input{in})
	s.SpendInputs(id, []types.Input{in})

	assert.True(t, s.IsInputSpent(in))
}
