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

package executor

import (
	"context"
	"time"

	"github.com/ground-x/chainkit/types"
)

// Noop is a stand-in Executor that seals whatever components it is given
// without running any VM, the same role dabridge.Tracker and gasprice.Static
// play for their own excluded controllers (Non-goals: contract VM
// semantics). It lets a node run end-to-end against the txpool/producer/
// importer pipeline with no real state machine behind it, e.g. for local
// smoke-testing a deployment before a real engine is wired in.
type Noop struct{}

func (Noop) ProduceWithoutCommit(_ context.Context, c Components, _ time.Time) (*Uncommitted, error) {
	return &Uncommitted{Block: types.Block{Header: c.Header, Transactions: c.Transactions}}, nil
}

func (Noop) ValidateWithoutCommit(_ context.Context, block types.Block) (*Uncommitted, error) {
	return &Uncommitted{Block: block}, nil
}

func (Noop) DryRun(_ context.Context, _ Components, _ DryRunOptions) (*DryRunResult, error) {
	return &DryRunResult{Success: true}, nil
}

func (Noop) StorageReadReplay(_ context.Context, _ types.Block) ([]Event, error) {
	return nil, nil
}

var _ Executor = Noop{}
