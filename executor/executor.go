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

// Package executor declares the block-execution boundary named in §6: the
// producer and importer depend on this interface, never on a concrete VM,
// matching the Non-goals' exclusion of execution-engine internals from this
// module's scope.
package executor

import (
	"context"
	"time"

	"github.com/ground-x/chainkit/types"
)

// Components is the set of inputs a producer hands the executor to build a
// block: the header skeleton and the transactions selected from the pool
// (§6).
type Components struct {
	Header       types.Header
	Transactions []*types.PoolTx
}

// Event is an opaque state-transition side effect emitted while executing a
// block (balance changes, contract state writes); this module only carries
// and persists them, it never interprets their contents (Non-goals).
type Event struct {
	Key   string
	Value []byte
}

// Uncommitted is the result of executing a set of Components without
// persisting it: the sealed-but-not-yet-stored block plus the storage
// writes CommitBlock will make durable together (§6).
type Uncommitted struct {
	Block   types.Block
	Events  []Event
	SkipIDs []types.TxID // transactions the executor rejected; pool must skip these
}

// DryRunResult reports the outcome of a side-effect-free simulation,
// without producing a block (§6).
type DryRunResult struct {
	Events  []Event
	Success bool
	Reason  string
}

// DryRunOptions tunes a DryRun call; UtxoValidation mirrors the toggle
// Storage.ValidateInputs exposes for relaxed re-validation paths.
type DryRunOptions struct {
	UtxoValidation bool
}

// Executor is the block-building/validating engine the producer and
// importer drive. Implementations live outside this module's scope; this
// module only depends on the interface (§6, Non-goals).
type Executor interface {
	// ProduceWithoutCommit executes components and returns the resulting
	// block without persisting it, failing if deadline elapses first.
	ProduceWithoutCommit(ctx context.Context, components Components, deadline time.Time) (*Uncommitted, error)

	// ValidateWithoutCommit re-executes an already-sealed block (e.g. one
	// received from a peer) to check it would produce the same result.
	ValidateWithoutCommit(ctx context.Context, block types.Block) (*Uncommitted, error)

	// DryRun simulates components without any intent to commit, used for
	// client-facing "what would happen" calls.
	DryRun(ctx context.Context, components Components, opts DryRunOptions) (*DryRunResult, error)

	// StorageReadReplay replays a committed block's storage reads, used by
	// observability tooling to reconstruct what state a block touched.
	StorageReadReplay(ctx context.Context, block types.Block) ([]Event, error)
}
