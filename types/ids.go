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

// Package types holds the wire-level data model of §3: transactions,
// headers, and sealed blocks. Hash/address identifiers are fixed-size byte
// arrays in the same spirit as the teacher's common.Hash/common.Address,
// rather than re-deriving a byte-slice-based id type.
package types

import (
	"encoding/hex"
	"fmt"
)

// TxID uniquely identifies a PoolTx for the lifetime of the process (§3).
type TxID [32]byte

func (id TxID) String() string { return hex.EncodeToString(id[:]) }

// ContractID identifies a contract account, used both as an output kind and
// as a collision resource key in §4.3.
type ContractID [32]byte

func (id ContractID) String() string { return hex.EncodeToString(id[:]) }

// UtxoID identifies a coin output being spent by an input (§3, §4.3).
type UtxoID [34]byte // tx id (32) + output index (2), matches a typical UTXO pointer encoding.

func NewUtxoID(tx TxID, outputIndex uint16) UtxoID {
	var id UtxoID
	copy(id[:32], tx[:])
	id[32] = byte(outputIndex >> 8)
	id[33] = byte(outputIndex)
	return id
}

func (id UtxoID) String() string { return hex.EncodeToString(id[:]) }

// BlobID identifies an optional blob payload attached to a blob-kind
// transaction (§3, §4.6).
type BlobID [32]byte

func (id BlobID) String() string { return hex.EncodeToString(id[:]) }

// MessageNonce identifies an L1 bridge message consumed by a message input
// (§3, §4.3).
type MessageNonce uint64

func (n MessageNonce) String() string { return fmt.Sprintf("%d", uint64(n)) }

// Address identifies an account, used for the mint transaction's coinbase
// recipient.
type Address [20]byte

func (a Address) String() string { return hex.EncodeToString(a[:]) }
