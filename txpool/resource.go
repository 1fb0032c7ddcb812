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
	"fmt"

	"github.com/ground-x/chainkit/types"
)

// inputResourceKey derives the resource a given input consumes, so
// SpentInputs, CollisionManager, and Blacklist can all key on the same
// string regardless of whether the resource is a coin, a contract, or a
// bridge message (§4.3).
func inputResourceKey(in types.Input) ResourceKey {
	switch in.Kind {
	case types.InputCoin:
		return ResourceKey("coin:" + in.UTXO.String())
	case types.InputContract:
		return ResourceKey(fmt.Sprintf("contract:%s:excl=%v", in.Contract.String(), in.IsExclusive))
	case types.InputMessage:
		return ResourceKey("message:" + in.MessageNonce.String())
	default:
		return ResourceKey("unknown")
	}
}

// outputResourceKey derives the resource a given output of tx mints, used to
// index a tx's coin outputs for coin-dependent cascade lookups (§4.3
// GetCoinsSpenders).
func outputResourceKey(id types.TxID, index uint16) ResourceKey {
	return ResourceKey("coin:" + types.NewUtxoID(id, index).String())
}
