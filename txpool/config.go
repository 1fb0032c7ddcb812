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

// Constraints bounds a single GatherBestTxs call (§4.5) and doubles as the
// pool's overall space budget in Config (§4.6 CanFitIntoPool).
type Constraints struct {
	MaxGas   uint64
	MaxBytes uint64
	MaxTxs   uint32
}

// Fits reports whether adding an entry of the given weight keeps all three
// budgets non-negative.
func (c Constraints) Fits(gas, bytes uint64, txs uint32) bool {
	return gas <= c.MaxGas && bytes <= c.MaxBytes && txs <= c.MaxTxs
}

// Config is the immutable set of pool-wide parameters built once at startup
// and threaded through every component constructor (§9 "Global state").
type Config struct {
	Limits Constraints

	// CapacityPerTx sizes the per-subscriber status channel buffer (§4.8).
	CapacityPerTx int

	// MaxSubscribers caps the number of live tx-status subscriptions
	// (§8 invariant 5).
	MaxSubscribers int
}

// DefaultConfig returns the pool defaults named in SPEC_FULL.md §2a/§4.6.
func DefaultConfig() Config {
	return Config{
		Limits: Constraints{
			MaxGas:   30_000_000,
			MaxBytes: 128 * 1024 * 1024,
			MaxTxs:   10_000,
		},
		CapacityPerTx:  4,
		MaxSubscribers: 100_000,
	}
}
