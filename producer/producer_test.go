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

package producer

import (
	"context"
	"testing"
	"time"

	"github.com/ground-x/chainkit/clock"
	"github.com/ground-x/chainkit/dabridge"
	"github.com/ground-x/chainkit/executor"
	"github.com/ground-x/chainkit/gasprice"
	"github.com/ground-x/chainkit/txpool"
	"github.com/ground-x/chainkit/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	height uint64
	header types.Header
	root   [32]byte
}

func (c *fakeChain) LatestHeight() (uint64, error)        { return c.height, nil }
func (c *fakeChain) LatestHeader() (types.Header, error)  { return c.header, nil }
func (c *fakeChain) LatestRoot() ([32]byte, error)        { return c.root, nil }

type fakePool struct {
	notify chan struct{}
	txs    []*types.PoolTx
}

func newFakePool() *fakePool { return &fakePool{notify: make(chan struct{}, 1)} }

func (p *fakePool) ExtractTransactionsForBlock(_ txpool.Constraints) []*types.PoolTx { return p.txs }
func (p *fakePool) NewExecutableNotifyCh() <-chan struct{}                          { return p.notify }

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

type fakeCommitter struct {
	commits []*executor.Uncommitted
}

func (c *fakeCommitter) Commit(_ context.Context, result *executor.Uncommitted) error {
	c.commits = append(c.commits, result)
	return nil
}

func newTestProducer(trigger Trigger, chain *fakeChain, pool *fakePool, commit *fakeCommitter, mockClock *clock.Mock) *Producer {
	cfg := DefaultConfig()
	cfg.CoinbaseRecipient = types.Address{0xAA}
	p := New(cfg, trigger, chain, pool, fakeExecutor{}, dabridge.NewTracker(), gasprice.NewStatic(7), commit)
	return p.WithClock(mockClock)
}

func TestProducer_Instant_ProducesOneBlockPerNotification(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mockClock := clock.NewMock(start)
	chain := &fakeChain{height: 5}
	pool := newFakePool()
	commit := &fakeCommitter{}
	p := newTestProducer(NewInstantTrigger(), chain, pool, commit, mockClock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	pool.notify <- struct{}{}

	require.Eventually(t, func() bool { return len(commit.commits) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, uint64(6), commit.commits[0].Block.Header.Height)
}

func TestProducer_Interval_UsesMaxOfLastPlusBlockTimeAndNow(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mockClock := clock.NewMock(start)
	chain := &fakeChain{height: 1, header: types.Header{Time: start}}
	pool := newFakePool()
	commit := &fakeCommitter{}
	blockTime := 2 * time.Second
	p := newTestProducer(NewIntervalTrigger(blockTime), chain, pool, commit, mockClock)

	require.NoError(t, p.ProduceNext(context.Background()))
	require.Len(t, commit.commits, 1)
	assert.Equal(t, start.Add(blockTime), commit.commits[0].Block.Header.Time)
}

func TestProducer_Interval_CatchesUpWhenProductionLags(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mockClock := clock.NewMock(start)
	chain := &fakeChain{height: 1, header: types.Header{Time: start}}
	pool := newFakePool()
	commit := &fakeCommitter{}
	blockTime := 2 * time.Second
	p := newTestProducer(NewIntervalTrigger(blockTime), chain, pool, commit, mockClock)

	// Simulate the executor having been slow: real time has moved far past
	// where a naive last+block_time schedule would land.
	mockClock.Advance(time.Hour)
	require.NoError(t, p.ProduceNext(context.Background()))
	require.Len(t, commit.commits, 1)
	assert.Equal(t, start.Add(time.Hour), commit.commits[0].Block.Header.Time)
}

func TestProducer_Interval_TimeRewindNeverRewindsBlockTimestamp(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 10, 0, time.UTC)
	mockClock := clock.NewMock(start)
	chain := &fakeChain{height: 1, header: types.Header{Time: start}}
	pool := newFakePool()
	commit := &fakeCommitter{}
	blockTime := 2 * time.Second
	p := newTestProducer(NewIntervalTrigger(blockTime), chain, pool, commit, mockClock)

	mockClock.Rewind(time.Hour) // host clock skew correction, moves backward
	require.NoError(t, p.ProduceNext(context.Background()))
	require.Len(t, commit.commits, 1)
	// Even though "now" moved backward, the assigned timestamp must still
	// advance monotonically from the previous block (E4).
	assert.Equal(t, start.Add(blockTime), commit.commits[0].Block.Header.Time)
	assert.True(t, commit.commits[0].Block.Header.Time.After(start))
}

func TestProducer_Open_TimestampIsWindowEnd(t *testing.T) {
	anchor := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mockClock := clock.NewMock(anchor.Add(30 * time.Second))
	chain := &fakeChain{height: 1, header: types.Header{Time: anchor}}
	pool := newFakePool()
	commit := &fakeCommitter{}
	period := time.Minute
	p := newTestProducer(NewOpenTrigger(period), chain, pool, commit, mockClock)

	require.NoError(t, p.ProduceNext(context.Background()))
	require.Len(t, commit.commits, 1)
	assert.Equal(t, anchor.Add(period), commit.commits[0].Block.Header.Time)
}

func TestProducer_ProduceNext_BusyWhenLockHeld(t *testing.T) {
	mockClock := clock.NewMock(time.Now())
	chain := &fakeChain{height: 1}
	pool := newFakePool()
	commit := &fakeCommitter{}
	p := newTestProducer(NewInstantTrigger(), chain, pool, commit, mockClock)

	require.True(t, p.lock.TryAcquire())
	err := p.ProduceNext(context.Background())
	assert.Equal(t, ErrBusy, err)
	assert.Empty(t, commit.commits)
}

func TestProducer_SelectDaHeight_StopsAtGasLimit(t *testing.T) {
	mockClock := clock.NewMock(time.Now())
	chain := &fakeChain{height: 1}
	pool := newFakePool()
	commit := &fakeCommitter{}
	cfg := DefaultConfig()
	cfg.BlockGasLimit = 100
	bridge := dabridge.NewTracker()
	bridge.Advance(1, dabridge.BlockCost{Cost: 40, TransactionCount: 1})
	bridge.Advance(2, dabridge.BlockCost{Cost: 40, TransactionCount: 1})
	bridge.Advance(3, dabridge.BlockCost{Cost: 40, TransactionCount: 1})
	p := New(cfg, NewInstantTrigger(), chain, pool, fakeExecutor{}, bridge, gasprice.NewStatic(1), commit)
	p.WithClock(mockClock)

	selected, err := p.selectDaHeight(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), selected)
}

func TestProducer_ProducePredefined_RecoversCoinbaseAndSkipsDaSelection(t *testing.T) {
	mockClock := clock.NewMock(time.Now())
	chain := &fakeChain{height: 3}
	pool := newFakePool()
	commit := &fakeCommitter{}
	p := newTestProducer(NewNeverTrigger(), chain, pool, commit, mockClock)

	mint := types.NewMintTx(types.TxID{0x9}, 42, types.Address{0x1})
	predefined := types.Block{
		Header:       types.Header{Height: 4},
		Transactions: []*types.PoolTx{mint},
	}

	result, err := p.ProducePredefined(context.Background(), predefined)
	require.NoError(t, err)
	require.Len(t, result.Block.Transactions, 1)
	assert.True(t, result.Block.Transactions[0].IsMint())
	assert.Equal(t, uint64(42), result.Block.Transactions[0].GasPrice)
	assert.Equal(t, types.Address{0x1}, result.Block.Transactions[0].CoinbaseRecipient)
}

func TestProducer_ProducePredefined_RejectsNonIncreasingHeight(t *testing.T) {
	mockClock := clock.NewMock(time.Now())
	chain := &fakeChain{height: 5}
	pool := newFakePool()
	commit := &fakeCommitter{}
	p := newTestProducer(NewNeverTrigger(), chain, pool, commit, mockClock)

	mint := types.NewMintTx(types.TxID{0x9}, 1, types.Address{})
	predefined := types.Block{Header: types.Header{Height: 5}, Transactions: []*types.PoolTx{mint}}

	_, err := p.ProducePredefined(context.Background(), predefined)
	assert.Equal(t, ErrBlockHeightShouldBeHigherThanPrevious, err)
}
