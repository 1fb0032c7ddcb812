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

// Package dabridge declares the data-availability/L1 bridge boundary the
// producer pins block da_height against (§6). Bridge transport/consensus is
// out of scope (Non-goals); this module only consumes the interface plus a
// simple in-memory tracker for tests and single-node operation.
package dabridge

import (
	"context"
	"sync"
	"time"
)

// BlockCost reports the L1 cost and number of bridge transactions
// attributable to a given height, used by the producer's DA-height
// selection under limits (§4.7, §6).
type BlockCost struct {
	Cost          uint64
	TransactionCount uint32
}

// DaBridge is the L1 finality source the producer queries when selecting a
// block's da_height (§6).
type DaBridge interface {
	// WaitForAtLeastHeight blocks (respecting ctx) until the bridge reports
	// a finalized height >= h, then returns the height actually observed.
	WaitForAtLeastHeight(ctx context.Context, h uint64) (uint64, error)

	// GetCostAndTransactionsNumberForBlock returns the bridge cost metrics
	// for the single DA block at height h.
	GetCostAndTransactionsNumberForBlock(ctx context.Context, h uint64) (BlockCost, error)
}

// Tracker is an in-memory DaBridge: a manually advanced finality height,
// used in tests and by single-node deployments with no external bridge
// process to poll (§6 Supplemented implementation).
type Tracker struct {
	mu     sync.Mutex
	height uint64
	costs  map[uint64]BlockCost
}

func NewTracker() *Tracker {
	return &Tracker{costs: make(map[uint64]BlockCost)}
}

// Advance moves the tracked finality height forward and records the cost
// metrics observed for it.
func (t *Tracker) Advance(height uint64, cost BlockCost) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if height > t.height {
		t.height = height
	}
	t.costs[height] = cost
}

func (t *Tracker) WaitForAtLeastHeight(ctx context.Context, h uint64) (uint64, error) {
	for {
		t.mu.Lock()
		height := t.height
		t.mu.Unlock()
		if height >= h {
			return height, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (t *Tracker) GetCostAndTransactionsNumberForBlock(_ context.Context, h uint64) (BlockCost, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.costs[h], nil
}
