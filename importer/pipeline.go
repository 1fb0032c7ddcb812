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

// Package importer is the commit pipeline of §4.9: it takes a producer's
// uncommitted execution result, persists it through a storage transaction,
// and retries indefinitely on failure with a fixed backoff rather than
// giving up, since losing a produced block silently would fork the chain
// from under the producer that built it.
package importer

import (
	"context"
	"sync"
	"time"

	"github.com/ground-x/chainkit/executor"
	"github.com/ground-x/chainkit/log"
	"github.com/ground-x/chainkit/metrics"
	"github.com/ground-x/chainkit/params"
	"github.com/ground-x/chainkit/storagedb"
	"github.com/ground-x/chainkit/txpool"
	"github.com/ground-x/chainkit/types"
	"github.com/pkg/errors"
)

var (
	commitCounter      = metrics.NewRegisteredCounter("importer/committed", nil)
	commitRetryCounter = metrics.NewRegisteredCounter("importer/retries", nil)
)

// BlockStore is the storage-transaction boundary the pipeline commits
// through (§4.9, §4.11). storagedb.BlockStore satisfies it directly.
// CommitBlock is the sole write path: it persists a block's execution
// writes, header, root, and head pointer as one storage transaction, so
// a crash or a read failure partway through can never leave state changes
// durable without their block index, or vice versa.
type BlockStore interface {
	LatestBlockHeight() (uint64, bool, error)
	LatestBlockRoot(height uint64) ([32]byte, error)
	CommitBlock(height uint64, headerBytes []byte, root [32]byte, writes map[string][]byte) error
}

// TxPool is the subset of *txpool.Pool the pipeline notifies once a block's
// transactions are durable, so the pool can drop them and release their
// reserved outputs (§4.6 ProcessCommittedTransactions, §4.9).
type TxPool interface {
	ProcessCommittedTransactions(ids []types.TxID)
}

// Pipeline is the single-committer-at-a-time importer of §4.9. Subscribers
// registered via Subscribe receive every successfully committed block.
type Pipeline struct {
	store      BlockStore
	pool       TxPool
	retryDelay time.Duration
	log        *log.Logger

	mu sync.Mutex // serializes Commit calls, at most one commit in flight

	subsMu sync.Mutex
	subs   map[int]chan types.SealedBlock
	nextID int
}

// New builds a Pipeline. retryDelay defaults to params.DefaultCommitRetryDelay
// when zero, matching the teacher's style of a package-level default
// threaded through the constructor (config/defaults.go).
func New(store BlockStore, pool TxPool, retryDelay time.Duration) *Pipeline {
	if retryDelay <= 0 {
		retryDelay = params.DefaultCommitRetryDelay
	}
	return &Pipeline{
		store:      store,
		pool:       pool,
		retryDelay: retryDelay,
		log:        log.NewModuleLogger(log.Importer),
		subs:       make(map[int]chan types.SealedBlock),
	}
}

// Subscribe registers to receive every block this pipeline commits from now
// on. Cancel the returned func to unsubscribe.
func (p *Pipeline) Subscribe(capacity int) (<-chan types.SealedBlock, func()) {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	id := p.nextID
	p.nextID++
	ch := make(chan types.SealedBlock, capacity)
	p.subs[id] = ch
	return ch, func() {
		p.subsMu.Lock()
		defer p.subsMu.Unlock()
		if existing, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(existing)
		}
	}
}

func (p *Pipeline) broadcast(block types.SealedBlock) {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- block:
		default:
		}
	}
}

// Commit persists result, retrying indefinitely on failure with a fixed 1s
// backoff until it succeeds or ctx is cancelled (§4.9 Retry policy). All
// retries reuse the same StorageChanges bundle computed once up front.
func (p *Pipeline) Commit(ctx context.Context, result *executor.Uncommitted) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	sealed := types.SealedBlock{Block: result.Block}
	if err := sealed.Validate(); err != nil {
		return errors.Wrap(err, "importer: reject malformed uncommitted block")
	}

	root := storagedb.HashHeader(result.Block.Header)
	headerBytes := storagedb.EncodeHeader(result.Block.Header)
	changes := eventsToWrites(result.Events)

	attempt := 0
	for {
		attempt++
		err := p.commitOnce(headerBytes, root, changes)
		if err == nil {
			break
		}
		commitRetryCounter.Inc(1)
		p.log.Error("commit attempt failed, retrying", "attempt", attempt, "height", result.Block.Header.Height, "err", err)

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "importer: commit abandoned before success")
		case <-time.After(p.retryDelay):
		}
	}

	commitCounter.Inc(1)
	ids := committedTxIDs(result)
	p.pool.ProcessCommittedTransactions(ids)
	p.broadcast(sealed)
	return nil
}

func (p *Pipeline) commitOnce(headerBytes []byte, root [32]byte, changes map[string][]byte) error {
	height, ok, err := p.store.LatestBlockHeight()
	if err != nil {
		return errors.Wrap(err, "importer: read latest height")
	}
	next := uint64(0)
	if ok {
		next = height + 1
	}
	if err := p.store.CommitBlock(next, headerBytes, root, changes); err != nil {
		return errors.Wrap(err, "importer: commit block")
	}
	return nil
}

// eventsToWrites flattens the executor's opaque event log into the
// key/value writes CommitBlock persists; this module never interprets
// event contents beyond their key (Non-goals).
func eventsToWrites(events []executor.Event) map[string][]byte {
	if len(events) == 0 {
		return nil
	}
	writes := make(map[string][]byte, len(events))
	for _, e := range events {
		writes[e.Key] = e.Value
	}
	return writes
}

// committedTxIDs names every transaction in result that is now durable and
// should be dropped from the pool, skipped ones included since the executor
// already decided they don't belong in this block (§4.9).
func committedTxIDs(result *executor.Uncommitted) []types.TxID {
	ids := make([]types.TxID, 0, len(result.Block.Transactions)+len(result.SkipIDs))
	for _, tx := range result.Block.Transactions {
		ids = append(ids, tx.ID)
	}
	ids = append(ids, result.SkipIDs...)
	return ids
}

// var _ TxPool = (*txpool.Pool)(nil) asserts *txpool.Pool satisfies the
// narrow interface this package needs, the same one-directional pattern
// txstatus.Manager uses against txpool.StatusNotifier: importer imports
// txpool, txpool never imports importer.
var _ TxPool = (*txpool.Pool)(nil)
