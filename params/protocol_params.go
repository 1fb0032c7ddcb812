// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.
//
// This file is derived from params/protocol_params.go. Re-purposed for
// chainkit's UTXO/DA block-production model in place of the EVM gas table
// the original file carried.

package params

import "time"

const (
	// GasLimitBoundDivisor bounds how much the block gas limit may move
	// between consecutive blocks, mirroring the teacher's divisor for its
	// own gas-limit update calculation.
	GasLimitBoundDivisor uint64 = 1024
	MinBlockGasLimit     uint64 = 1_000_000
	DefaultBlockGasLimit uint64 = 30_000_000

	// MaxTxCountPerBlock matches §4.7 step 4's "sum_tx_count <= u16::MAX - 1"
	// bound on how many transactions a block's DA-height walk may include.
	MaxTxCountPerBlock uint32 = 65534

	// DefaultMaxPoolTxs / DefaultMaxPoolGas / DefaultMaxPoolBytes are the
	// txpool budgets referenced throughout §4.6 when no override is
	// supplied via config.
	DefaultMaxPoolTxs   int    = 10_000
	DefaultMaxPoolGas   uint64 = 30_000_000
	DefaultMaxPoolBytes uint64 = 128 * 1024 * 1024
)

// Parameters for the producer's execution time budget, analogous to the
// teacher's TotalTimeLimit for a mined block.
var (
	DefaultProductionTimeout = 10 * time.Second
	DefaultCommitRetryDelay  = time.Second
)
