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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolTx_Validate_RejectsZeroMaxGas(t *testing.T) {
	tx := &PoolTx{MaxGas: 0}
	assert.Equal(t, ErrZeroMaxGas, tx.Validate())
}

func TestPoolTx_Validate_AcceptsPositiveMaxGas(t *testing.T) {
	tx := &PoolTx{MaxGas: 1}
	assert.NoError(t, tx.Validate())
}

func TestPoolTx_Ratio_ZeroGasReturnsZero(t *testing.T) {
	tx := &PoolTx{Tip: 100, MaxGas: 0}
	assert.Equal(t, float64(0), tx.Ratio())
}

func TestPoolTx_Ratio_DividesTipByMaxGas(t *testing.T) {
	tx := &PoolTx{Tip: 10, MaxGas: 200}
	assert.Equal(t, float64(10)/float64(200), tx.Ratio())
}

func TestPoolTx_IsMint_OnlyTrueForMintKind(t *testing.T) {
	assert.True(t, (&PoolTx{Kind: KindMint}).IsMint())
	assert.False(t, (&PoolTx{Kind: KindScript}).IsMint())
}

func TestNewMintTx_CarriesGasPriceAndCoinbase(t *testing.T) {
	var id TxID
	id[0] = 7
	var coinbase Address
	coinbase[0] = 9

	tx := NewMintTx(id, 42, coinbase)
	assert.Equal(t, id, tx.ID)
	assert.Equal(t, KindMint, tx.Kind)
	assert.Equal(t, uint64(42), tx.GasPrice)
	assert.Equal(t, coinbase, tx.CoinbaseRecipient)
	assert.True(t, tx.IsMint())
	assert.Equal(t, uint64(0), tx.MaxGas)
}

func TestSealedBlock_Validate_RejectsEmptyTransactions(t *testing.T) {
	b := &SealedBlock{}
	assert.Equal(t, ErrEmptyTransactions, b.Validate())
}

func TestSealedBlock_Validate_RejectsNonMintLastTransaction(t *testing.T) {
	b := &SealedBlock{Block: Block{Transactions: []*PoolTx{{Kind: KindScript, MaxGas: 1}}}}
	assert.Equal(t, ErrLastTxNotMint, b.Validate())
}

func TestSealedBlock_Validate_AcceptsMintTerminatedBlock(t *testing.T) {
	b := &SealedBlock{Block: Block{Transactions: []*PoolTx{
		{Kind: KindScript, MaxGas: 1},
		{Kind: KindMint},
	}}}
	assert.NoError(t, b.Validate())
}
