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
	"errors"
	"time"
)

// Header carries the per-block metadata named in §3, including the DA
// height range a producer pins when walking the bridge (Supplemented: see
// SPEC_FULL.md §3).
type Header struct {
	Height   uint64
	Time     time.Time
	PrevRoot [32]byte

	// DaHeight is the highest L1 height whose messages this block may spend
	// (§4.7). DaHeightFrom records the low end of the range consumed since
	// the previous block, supplementing the single-height field spec.md
	// names with the range original_source/ actually tracks.
	DaHeightFrom uint64
	DaHeight     uint64

	ConsensusParametersVersion      uint32
	StateTransitionBytecodeVersion  uint32
}

// Block pairs a header with the transactions it commits, mint included.
type Block struct {
	Header       Header
	Transactions []*PoolTx
}

// ConsensusSeal is an opaque authentication tag over a Block produced by
// whatever consensus mechanism signs it; this module only carries it, it
// never verifies or constructs one (§6, Non-goals).
type ConsensusSeal []byte

// SealedBlock is a Block plus the seal that authenticates it (§3). The final
// entry in Transactions is always the mint transaction carrying the block's
// gas price and coinbase recipient (§8 invariant 6).
type SealedBlock struct {
	Block Block
	Seal  ConsensusSeal
}

var (
	ErrEmptyTransactions = errors.New("types: sealed block must carry at least the mint transaction")
	ErrLastTxNotMint     = errors.New("types: final transaction in a sealed block must be a mint")
)

// Validate enforces invariant 6 of §8: every sealed block's last transaction
// is a mint.
func (b *SealedBlock) Validate() error {
	txs := b.Block.Transactions
	if len(txs) == 0 {
		return ErrEmptyTransactions
	}
	if !txs[len(txs)-1].IsMint() {
		return ErrLastTxNotMint
	}
	return nil
}

// StorageIndex is the arena offset the pool's dependency graph uses to refer
// to a stored transaction without repeating its 32-byte id (§4.4).
type StorageIndex uint32

// NoStorageIndex marks "not present in the storage arena".
const NoStorageIndex StorageIndex = ^StorageIndex(0)
