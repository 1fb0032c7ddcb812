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

import "errors"

// Kind enumerates the transaction kinds named in §3.
type Kind uint8

const (
	KindScript Kind = iota
	KindCreate
	KindMint
	KindUpload
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindCreate:
		return "create"
	case KindMint:
		return "mint"
	case KindUpload:
		return "upload"
	case KindBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// InputKind distinguishes a coin input from a cross-chain message input.
type InputKind uint8

const (
	InputCoin InputKind = iota
	InputContract
	InputMessage
)

// Input is a typed reference to a prior output or an L1 message nonce (§3).
type Input struct {
	Kind InputKind

	// Coin/Contract inputs.
	UTXO       UtxoID
	Contract   ContractID
	IsExclusive bool // contract inputs that require exclusive access (§4.3)

	// Message inputs.
	MessageNonce MessageNonce
}

// OutputKind distinguishes the output varieties named in §3.
type OutputKind uint8

const (
	OutputCoin OutputKind = iota
	OutputContract
	OutputChange
	OutputVariable
)

// Output is a value or state artifact a transaction produces (§3).
type Output struct {
	Kind     OutputKind
	Contract ContractID // set for OutputContract
	Amount   uint64
}

// PoolTx is the immutable transaction record the pool stores (§3). Callers
// construct it once at submission time; nothing in this module mutates a
// PoolTx after admission.
type PoolTx struct {
	ID      TxID
	Kind    Kind
	Inputs  []Input
	Outputs []Output

	MaxGas uint64
	Tip    uint64

	// BytesSize is the metered wire size used against the pool's byte
	// budget (§3, §4.6).
	BytesSize uint64

	BlobID *BlobID

	// GasPrice/CoinbaseRecipient are only meaningful on the synthetic mint
	// transaction a producer appends to every block (§3 SealedBlock).
	GasPrice          uint64
	CoinbaseRecipient Address
}

var ErrZeroMaxGas = errors.New("types: max_gas must be greater than zero")

// Validate enforces the only transaction-level invariant spec.md names:
// max_gas > 0 (§3).
func (tx *PoolTx) Validate() error {
	if tx.MaxGas == 0 {
		return ErrZeroMaxGas
	}
	return nil
}

// Ratio is the tip/max_gas effective price used throughout selection and
// eviction (§4.3, §4.5, §4.6). Computed as a float64 since gas/tip are
// bounded well under 2^53 in practice and the comparisons are all relative.
func (tx *PoolTx) Ratio() float64 {
	if tx.MaxGas == 0 {
		return 0
	}
	return float64(tx.Tip) / float64(tx.MaxGas)
}

// IsMint reports whether this is the synthetic terminal mint transaction
// every sealed block carries (§3, §8 invariant 6).
func (tx *PoolTx) IsMint() bool { return tx.Kind == KindMint }

// NewMintTx builds the synthetic mint transaction a producer appends to a
// block, carrying the chosen gas price and coinbase recipient (§3, §4.7).
func NewMintTx(id TxID, gasPrice uint64, coinbase Address) *PoolTx {
	return &PoolTx{
		ID:                id,
		Kind:              KindMint,
		MaxGas:            0,
		GasPrice:          gasPrice,
		CoinbaseRecipient: coinbase,
	}
}
