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

func TestNewBlacklist_ContainsOnlyConfiguredKeys(t *testing.T) {
	bl := NewBlacklist("banned-1", "banned-2")
	assert.True(t, bl.Contains("banned-1"))
	assert.True(t, bl.Contains("banned-2"))
	assert.False(t, bl.Contains("allowed"))
}

func TestNoBlacklist_NeverRejects(t *testing.T) {
	assert.False(t, NoBlacklist.Contains("anything"))
}

func TestPool_InsertRejectsBlacklistedResource(t *testing.T) {
	var contractID types.ContractID
	contractID[0] = 0xaa
	input := types.Input{Kind: types.InputContract, Contract: contractID}
	banned := inputResourceKey(input)

	pool, err := NewPool(DefaultConfig(), WithBlacklist(NewBlacklist(banned)))
	require.NoError(t, err)

	tx := coinTx(1, 10, 1000, nil, 0)
	tx.Inputs = append(tx.Inputs, input)
	assert.Equal(t, ErrBlacklisted, pool.Insert(tx))
}
