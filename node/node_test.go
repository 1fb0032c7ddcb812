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

package node

import (
	"context"
	"testing"
	"time"

	"github.com/ground-x/chainkit/config"
	"github.com/ground-x/chainkit/executor"
	"github.com/ground-x/chainkit/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct{}

func (fakeExecutor) ProduceWithoutCommit(_ context.Context, c executor.Components, _ time.Time) (*executor.Uncommitted, error) {
	return &executor.Uncommitted{Block: types.Block{Header: c.Header, Transactions: c.Transactions}}, nil
}
func (fakeExecutor) ValidateWithoutCommit(_ context.Context, _ types.Block) (*executor.Uncommitted, error) {
	return nil, nil
}
func (fakeExecutor) DryRun(_ context.Context, _ executor.Components, _ executor.DryRunOptions) (*executor.DryRunResult, error) {
	return nil, nil
}
func (fakeExecutor) StorageReadReplay(_ context.Context, _ types.Block) ([]executor.Event, error) {
	return nil, nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Storage.DataDir = "" // in-memory database
	cfg.Producer.Trigger = config.TriggerConfig{Kind: "instant"}
	return cfg
}

func TestNew_WiresAllComponents(t *testing.T) {
	n, err := New(testConfig(), fakeExecutor{})
	require.NoError(t, err)
	assert.NotNil(t, n.Pool)
	assert.NotNil(t, n.Status)
	assert.NotNil(t, n.Bridge)
	assert.NotNil(t, n.GasPrice)
	assert.NotNil(t, n.Pipeline)
	assert.NotNil(t, n.Producer)
}

func TestNode_StartProducesBlockOnInstantTrigger(t *testing.T) {
	n, err := New(testConfig(), fakeExecutor{})
	require.NoError(t, err)
	defer n.Stop()

	ch, unsubscribe := n.Pipeline.Subscribe(1)
	defer unsubscribe()

	n.Start()

	tx := &types.PoolTx{ID: types.TxID{0x1}, MaxGas: 21000, Tip: 1}
	require.NoError(t, n.Pool.Insert(tx))

	select {
	case block := <-ch:
		assert.Equal(t, uint64(1), block.Block.Header.Height)
	case <-time.After(2 * time.Second):
		t.Fatal("expected the instant trigger to commit a block")
	}
}

func TestBuildTrigger_RejectsUnknownKind(t *testing.T) {
	_, err := buildTrigger(config.TriggerConfig{Kind: "bogus"})
	assert.Error(t, err)
}

func TestDecodeAddress_RejectsWrongLength(t *testing.T) {
	_, err := decodeAddress("0x1234")
	assert.Error(t, err)
}
