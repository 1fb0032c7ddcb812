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

// PoolStats is the snapshot Pool.Stats returns to clients; the pool has no
// stats channel (§6, Supplemented in SPEC_FULL.md §3 — spec.md names the three
// counters without naming a type for them).
type PoolStats struct {
	TxCount   uint32
	TotalSize uint64
	TotalGas  uint64
}
