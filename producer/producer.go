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
	"time"

	"github.com/ground-x/chainkit/clock"
	"github.com/ground-x/chainkit/dabridge"
	"github.com/ground-x/chainkit/executor"
	"github.com/ground-x/chainkit/gasprice"
	"github.com/ground-x/chainkit/log"
	"github.com/ground-x/chainkit/metrics"
	"github.com/ground-x/chainkit/params"
	"github.com/ground-x/chainkit/txpool"
	"github.com/ground-x/chainkit/types"
	"github.com/pkg/errors"
)

var (
	producedCounter   = metrics.NewRegisteredCounter("producer/produced", nil)
	busyCounter       = metrics.NewRegisteredCounter("producer/busy", nil)
	productionTimer   = metrics.NewRegisteredTimer("producer/buildtime", nil)
)

// ChainView is the read-only slice of chain head state the header
// construction algorithm consults at step 2 of §4.7. Its implementation is
// normally storagedb.BlockStore plus a header decoder; kept as an interface
// here so the producer never imports storagedb directly (mirrors txpool's
// PersistentStore boundary).
type ChainView interface {
	LatestHeight() (uint64, error)
	LatestHeader() (types.Header, error)
	LatestRoot() ([32]byte, error)
}

// TxSource is the txpool facet the producer draws a block's transactions
// from (§4.7 step 6). There is no cycle risk importing txpool directly here
// (txpool never imports producer), unlike the txstatus/StatusNotifier
// boundary.
type TxSource interface {
	ExtractTransactionsForBlock(constraints txpool.Constraints) []*types.PoolTx
	NewExecutableNotifyCh() <-chan struct{}
}

// Committer hands a produced-but-uncommitted block to the commit pipeline
// (§4.7 step 8, §4.9). importer.Pipeline satisfies this; the producer never
// imports importer directly, keeping the dependency one-directional the
// same way txstatus.Manager satisfies txpool.StatusNotifier.
type Committer interface {
	Commit(ctx context.Context, result *executor.Uncommitted) error
}

// Config is the set of per-node parameters the header construction
// algorithm and block-time policies read (§4.7, §4.10).
type Config struct {
	BlockGasLimit     uint64
	ProductionTimeout time.Duration
	CoinbaseRecipient types.Address
	PoolConstraints   txpool.Constraints
}

func DefaultConfig() Config {
	return Config{
		BlockGasLimit:     params.DefaultBlockGasLimit,
		ProductionTimeout: params.DefaultProductionTimeout,
	}
}

// Producer runs the block-production control loop of §4.7: a Trigger
// decides when, the header-construction algorithm decides what, and the
// writerLock keeps at most one production in flight at a time (§8
// invariant 7).
type Producer struct {
	cfg     Config
	trigger Trigger
	clock   clock.Clock

	chain    ChainView
	pool     TxSource
	executor executor.Executor
	bridge   dabridge.DaBridge
	gasPrice gasprice.GasPriceProvider
	commit   Committer

	lock *writerLock
	log  *log.Logger

	// lastBlockTime is the Interval trigger's own bookkeeping: the
	// timestamp it assigned the previous block. While it is zero (a cold
	// producer), nextBlockTime uses the previous header's time instead.
	lastBlockTime time.Time
}

func New(cfg Config, trigger Trigger, chain ChainView, pool TxSource, ex executor.Executor, bridge dabridge.DaBridge, gp gasprice.GasPriceProvider, commit Committer) *Producer {
	return &Producer{
		cfg:      cfg,
		trigger:  trigger,
		clock:    clock.Real{},
		chain:    chain,
		pool:     pool,
		executor: ex,
		bridge:   bridge,
		gasPrice: gp,
		commit:   commit,
		lock:     newWriterLock(),
		log:      log.NewModuleLogger(log.Producer),
	}
}

// WithClock overrides the producer's time source, for deterministic tests
// (E2-E4).
func (p *Producer) WithClock(c clock.Clock) *Producer {
	p.clock = c
	return p
}

// Run drives the control loop until ctx is cancelled. Every trigger still
// drains the pool's executable-notification channel so a misconfigured
// Never trigger never causes that channel to back up against a pool that
// keeps signalling it (§4.7).
func (p *Producer) Run(ctx context.Context) {
	switch p.trigger.Kind {
	case TriggerNever:
		p.runDrainOnly(ctx)
	case TriggerInstant:
		p.runInstant(ctx)
	case TriggerInterval:
		p.runInterval(ctx)
	case TriggerOpen:
		p.runOpen(ctx)
	}
}

func (p *Producer) runDrainOnly(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.pool.NewExecutableNotifyCh():
		}
	}
}

func (p *Producer) runInstant(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.pool.NewExecutableNotifyCh():
			if err := p.ProduceNext(ctx); err != nil && err != ErrBusy {
				p.log.Error("instant production failed", "err", err)
			}
		}
	}
}

func (p *Producer) runInterval(ctx context.Context) {
	ticker := time.NewTicker(p.trigger.BlockTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.ProduceNext(ctx); err != nil && err != ErrBusy {
				p.log.Error("interval production failed", "err", err)
			}
		}
	}
}

func (p *Producer) runOpen(ctx context.Context) {
	ticker := time.NewTicker(p.trigger.Period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.ProduceNext(ctx); err != nil && err != ErrBusy {
				p.log.Error("open-window production failed", "err", err)
			}
		}
	}
}

// ProduceNext runs the full header-construction algorithm of §4.7 and hands
// the result to the commit pipeline. It returns ErrBusy without doing any
// work if another production is already in flight (step 1).
func (p *Producer) ProduceNext(ctx context.Context) error {
	if !p.lock.TryAcquire() {
		busyCounter.Inc(1)
		return ErrBusy
	}
	defer p.lock.Release()

	start := p.clock.Now()
	result, err := p.buildBlock(ctx)
	productionTimer.UpdateSince(start)
	if err != nil {
		return err
	}

	if err := p.commit.Commit(ctx, result); err != nil {
		return errors.Wrap(err, "producer: commit uncommitted block")
	}
	producedCounter.Inc(1)
	p.lastBlockTime = result.Block.Header.Time
	return nil
}

// buildBlock implements header-construction steps 2-7 of §4.7. The caller
// must hold the writer lock.
func (p *Producer) buildBlock(ctx context.Context) (*executor.Uncommitted, error) {
	// Step 2: load latest view.
	latestHeight, err := p.chain.LatestHeight()
	if err != nil {
		return nil, errors.Wrap(err, "producer: load latest height")
	}
	prevHeader, err := p.chain.LatestHeader()
	if err != nil {
		return nil, errors.Wrap(err, "producer: load latest header")
	}
	prevRoot, err := p.chain.LatestRoot()
	if err != nil {
		return nil, errors.Wrap(err, "producer: load latest root")
	}

	// Step 3: block_time per trigger policy.
	blockTime := p.nextBlockTime(prevHeader)

	// Step 4: DA height selection under limits.
	daHeightFrom := prevHeader.DaHeight
	newDaHeight, err := p.selectDaHeight(ctx, prevHeader.DaHeight)
	if err != nil {
		return nil, err
	}

	// Step 5: gas price.
	gasPrice, err := p.gasPrice.ProductionGasPrice()
	if err != nil {
		return nil, errors.Wrap(err, "producer: fetch gas price")
	}

	// Step 6: gather transactions and build components.
	txs := p.pool.ExtractTransactionsForBlock(p.cfg.PoolConstraints)
	mintID := mintTxID(latestHeight + 1)
	txs = append(txs, types.NewMintTx(mintID, gasPrice, p.cfg.CoinbaseRecipient))

	header := types.Header{
		Height:                         latestHeight + 1,
		Time:                           blockTime,
		PrevRoot:                       prevRoot,
		DaHeightFrom:                   daHeightFrom,
		DaHeight:                       newDaHeight,
		ConsensusParametersVersion:     prevHeader.ConsensusParametersVersion,
		StateTransitionBytecodeVersion: prevHeader.StateTransitionBytecodeVersion,
	}

	deadline := p.clock.Now().Add(p.cfg.ProductionTimeout)

	// Step 7: execute.
	result, err := p.executor.ProduceWithoutCommit(ctx, executor.Components{Header: header, Transactions: txs}, deadline)
	if err != nil {
		return nil, errors.Wrap(err, "producer: execute components")
	}
	return result, nil
}

// nextBlockTime implements the Interval/Open block-time policies of §4.7.
// Instant and Never simply stamp the current clock reading.
func (p *Producer) nextBlockTime(prevHeader types.Header) time.Time {
	now := p.clock.Now()
	switch p.trigger.Kind {
	case TriggerInterval:
		last := p.lastBlockTime
		if last.IsZero() {
			last = prevHeader.Time
		}
		next := last.Add(p.trigger.BlockTime)
		if now.After(next) {
			return now
		}
		return next
	case TriggerOpen:
		// The window containing "now" ends at windowStart + period; using
		// the previous block's time as the window anchor keeps windows
		// contiguous rather than re-anchoring to wall time every tick.
		anchor := prevHeader.Time
		if anchor.IsZero() {
			anchor = now
		}
		elapsed := now.Sub(anchor)
		windows := elapsed / p.trigger.Period
		if elapsed%p.trigger.Period != 0 || windows == 0 {
			windows++
		}
		return anchor.Add(p.trigger.Period * windows)
	default:
		return now
	}
}

// selectDaHeight implements step 4 of §4.7: walk the bridge's reported
// heights from prevDaHeight+1 up to the highest finalized height, stopping
// at the last one that keeps the accumulated gas and tx count under the
// block's limits.
func (p *Producer) selectDaHeight(ctx context.Context, prevDaHeight uint64) (uint64, error) {
	highest, err := p.bridge.WaitForAtLeastHeight(ctx, prevDaHeight)
	if err != nil {
		return 0, errors.Wrap(err, "producer: wait for da height")
	}
	if highest < prevDaHeight {
		return 0, ErrInvalidDaFinalizationState
	}
	if highest == prevDaHeight {
		return prevDaHeight, nil
	}

	selected := prevDaHeight
	var sumGas uint64
	var sumTxCount uint32
	for h := prevDaHeight + 1; h <= highest; h++ {
		cost, err := p.bridge.GetCostAndTransactionsNumberForBlock(ctx, h)
		if err != nil {
			return 0, errors.Wrap(err, "producer: fetch da block cost")
		}
		nextGas := sumGas + cost.Cost
		nextTxCount := sumTxCount + cost.TransactionCount
		if nextGas > p.cfg.BlockGasLimit || nextTxCount > params.MaxTxCountPerBlock {
			break
		}
		sumGas, sumTxCount = nextGas, nextTxCount
		selected = h
	}
	return selected, nil
}

// mintTxID derives a deterministic id for the synthetic mint transaction a
// producer appends to every block, keyed off the block height so it never
// collides with a user-submitted id.
func mintTxID(height uint64) types.TxID {
	var id types.TxID
	for i := 0; i < 8; i++ {
		id[31-i] = byte(height >> (8 * uint(i)))
	}
	id[0] = 0xFF // mint ids are reserved under this prefix, never user-reachable.
	return id
}

// ProducePredefined replays a pre-sealed block instead of running the
// normal header-construction algorithm: DA selection is skipped entirely,
// and the block's final mint transaction is popped to recover the
// coinbase/gas price the original producer chose (§4.7 "Predefined block
// path").
func (p *Producer) ProducePredefined(ctx context.Context, predefined types.Block) (*executor.Uncommitted, error) {
	if !p.lock.TryAcquire() {
		busyCounter.Inc(1)
		return nil, ErrBusy
	}
	defer p.lock.Release()

	latestHeight, err := p.chain.LatestHeight()
	if err != nil {
		return nil, errors.Wrap(err, "producer: load latest height")
	}
	if predefined.Header.Height <= latestHeight {
		return nil, ErrBlockHeightShouldBeHigherThanPrevious
	}
	if len(predefined.Transactions) == 0 || !predefined.Transactions[len(predefined.Transactions)-1].IsMint() {
		return nil, ErrMissingBlock
	}

	mint := predefined.Transactions[len(predefined.Transactions)-1]
	rest := predefined.Transactions[:len(predefined.Transactions)-1]

	deadline := p.clock.Now().Add(p.cfg.ProductionTimeout)
	components := executor.Components{
		Header:       predefined.Header,
		Transactions: append(append([]*types.PoolTx{}, rest...), mint),
	}
	result, err := p.executor.ProduceWithoutCommit(ctx, components, deadline)
	if err != nil {
		return nil, errors.Wrap(err, "producer: replay predefined block")
	}
	return result, nil
}
