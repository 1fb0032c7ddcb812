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

import (
	"sync"
	"time"

	"github.com/ground-x/chainkit/clock"
	"github.com/ground-x/chainkit/log"
	"github.com/ground-x/chainkit/metrics"
	"github.com/ground-x/chainkit/types"
)

var (
	metricInserted   = metrics.NewRegisteredCounter("txpool/inserted", nil)
	metricSqueezed   = metrics.NewRegisteredCounter("txpool/squeezedout", nil)
	metricRejected   = metrics.NewRegisteredCounter("txpool/rejected", nil)
	gaugePoolTxs     = metrics.NewRegisteredGauge("txpool/txs", nil)
)

// PersistentStore answers the two questions the pool needs of committed
// (on-disk) state without depending on storagedb directly: whether a
// resource is already spent/minted there, and whether a tx id is already
// known there (§4.6 step 1, §4.4 ValidateInputs).
type PersistentStore interface {
	ContainsResource(ResourceKey) bool
	ContainsTxID(types.TxID) bool
}

// Pool is the single exclusive-writer mempool of §4.6. Every public method
// takes the pool's own mutex itself, so callers must not hold it; there is no separate
// reader lock because every read path here is a cheap map lookup (§5).
type Pool struct {
	mu sync.Mutex

	cfg       Config
	clock     clock.Clock
	blacklist Blacklist
	notifier  StatusNotifier
	persist   PersistentStore
	log       *log.Logger

	storage   *Storage
	collision *CollisionManager
	selection *SelectionAlgorithm
	spent     *SpentInputs
	extracted *ExtractedOutputs

	// newExecutable is a single-slot notify channel signalled whenever a
	// transaction enters the executable set, the producer's Instant
	// trigger selects on it (§4.7, §5).
	newExecutable chan struct{}
}

// NewExecutableNotifyCh returns the channel the Instant trigger selects on.
func (p *Pool) NewExecutableNotifyCh() <-chan struct{} { return p.newExecutable }

func (p *Pool) signalNewExecutable() {
	select {
	case p.newExecutable <- struct{}{}:
	default:
	}
}

// Option configures an optional Pool dependency at construction time.
type Option func(*Pool)

func WithBlacklist(b Blacklist) Option { return func(p *Pool) { p.blacklist = b } }
func WithNotifier(n StatusNotifier) Option { return func(p *Pool) { p.notifier = n } }
func WithPersistentStore(s PersistentStore) Option { return func(p *Pool) { p.persist = s } }
func WithClock(c clock.Clock) Option { return func(p *Pool) { p.clock = c } }

// NewPool builds an empty Pool. The spent-input cache is sized max_txs + 1
// to match §4.1's capacity invariant.
func NewPool(cfg Config, opts ...Option) (*Pool, error) {
	spent, err := NewSpentInputs(int(cfg.Limits.MaxTxs) + 1)
	if err != nil {
		return nil, err
	}
	p := &Pool{
		cfg:       cfg,
		clock:     clock.Real{},
		blacklist: NoBlacklist,
		notifier:  noopNotifier{},
		storage:   NewStorage(),
		collision: NewCollisionManager(),
		selection: NewSelectionAlgorithm(),
		spent:     spent,
		extracted:     NewExtractedOutputs(),
		newExecutable: make(chan struct{}, 1),
		log:           log.NewModuleLogger(log.TxPool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pool) persistentLookup() PersistentLookup {
	if p.persist == nil {
		return nil
	}
	return p.persist.ContainsResource
}

// Contains reports whether id is currently stored in the pool.
func (p *Pool) Contains(id types.TxID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.storage.ByTxID(id)
	return ok
}

// Get returns the stored transaction for id, if any.
func (p *Pool) Get(id types.TxID) (*types.PoolTx, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.storage.ByTxID(id)
	if !ok {
		return nil, false
	}
	return p.storage.Entry(idx).Tx, true
}

// IterTxIDs returns every live transaction id. Order is unspecified.
func (p *Pool) IterTxIDs() []types.TxID {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.TxID, 0, len(p.storage.idIndex))
	for id := range p.storage.idIndex {
		out = append(out, id)
	}
	return out
}

// Stats returns the pool's current counters (§6 PoolStats).
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		TxCount:   p.storage.CurrentTxs,
		TotalSize: p.storage.CurrentBytes,
		TotalGas:  p.storage.CurrentGas,
	}
}

// Insert runs the full admission algorithm of §4.6 and, on success, stores
// tx and emits the appropriate status notifications.
func (p *Pool) Insert(tx *types.PoolTx) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	plan, err := p.canInsertLocked(tx)
	if err != nil {
		metricRejected.Inc(1)
		return err
	}
	p.applyLocked(plan)
	metricInserted.Inc(1)
	gaugePoolTxs.Update(int64(p.storage.CurrentTxs))
	return nil
}

// CanStoreTransaction is the pre-computed admission plan CanInsertTransaction
// returns: a pure check split from its commit phase (§4.6).
type CanStoreTransaction struct {
	tx        *types.PoolTx
	checked   *CheckedTransaction
	toRemove  []types.StorageIndex // subtrees to evict to free space
	collided  map[types.StorageIndex][]CollisionReason
}

// CanInsertTransaction performs the admission check without mutating the
// pool, for dry-runs and to split check/commit (§4.6).
func (p *Pool) CanInsertTransaction(tx *types.PoolTx) (*CanStoreTransaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canInsertLocked(tx)
}

func (p *Pool) canInsertLocked(tx *types.PoolTx) (*CanStoreTransaction, error) {
	// Step 1: cheap rejections.
	if tx.MaxGas == 0 {
		return nil, ErrMaxGasZero
	}
	if _, ok := p.storage.ByTxID(tx.ID); ok {
		return nil, ErrDuplicateTxID
	}
	if p.persist != nil && p.persist.ContainsTxID(tx.ID) {
		return nil, ErrDuplicateTxID
	}
	if tx.BlobID != nil {
		if _, ok := p.storage.ByBlobID(*tx.BlobID); ok {
			return nil, ErrDuplicateBlobID
		}
	}
	if p.spent.IsSpentTx(tx.ID) {
		return nil, ErrAlreadySpent
	}
	for _, in := range tx.Inputs {
		if p.blacklist.Contains(inputResourceKey(in)) {
			return nil, ErrBlacklisted
		}
	}

	// Step 2: input validation.
	if err := p.storage.ValidateInputs(tx, p.persistentLookup(), p.extracted, p.spent, true); err != nil {
		return nil, err
	}

	// Step 3: collisions + structural dependency check.
	collided := p.collision.FindCollisions(tx)
	checked, err := p.storage.CanStore(tx)
	if err != nil {
		return nil, err
	}
	for idx := range collided {
		if _, isDep := checked.allDeps[idx]; isDep {
			return nil, ErrCollisionIsDependency
		}
	}

	// Step 4: collision requirement check (§4.3).
	ratio := tx.Ratio()
	for idx := range collided {
		e := p.storage.Entry(idx)
		if e == nil {
			continue
		}
		if ratio <= e.Ratio() {
			return nil, ErrCollision
		}
	}

	// Step 5: space check.
	toRemove, err := p.findFreeSpaceLocked(tx, checked)
	if err != nil {
		return nil, err
	}

	// Collided incumbents are always removed on success, plus whatever
	// FindFreeSpace chose.
	for idx := range collided {
		toRemove = append(toRemove, idx)
	}

	return &CanStoreTransaction{tx: tx, checked: checked, toRemove: toRemove, collided: collided}, nil
}

// findFreeSpaceLocked implements CanFitIntoPool / FindFreeSpace (§4.6 step 5).
func (p *Pool) findFreeSpaceLocked(tx *types.PoolTx, checked *CheckedTransaction) ([]types.StorageIndex, error) {
	limits := p.cfg.Limits
	fits := p.storage.CurrentGas+tx.MaxGas <= limits.MaxGas &&
		p.storage.CurrentBytes+tx.BytesSize <= limits.MaxBytes &&
		uint64(p.storage.CurrentTxs)+1 <= uint64(limits.MaxTxs)
	if fits {
		return nil, nil
	}
	if len(checked.directDeps) > 0 {
		return nil, ErrNotInsertedLimitHit
	}

	ratio := tx.Ratio()
	var gasOver, bytesOver int64
	var txsOver int64
	if p.storage.CurrentGas+tx.MaxGas > limits.MaxGas {
		gasOver = int64(p.storage.CurrentGas+tx.MaxGas) - int64(limits.MaxGas)
	}
	if p.storage.CurrentBytes+tx.BytesSize > limits.MaxBytes {
		bytesOver = int64(p.storage.CurrentBytes+tx.BytesSize) - int64(limits.MaxBytes)
	}
	if uint64(p.storage.CurrentTxs)+1 > uint64(limits.MaxTxs) {
		txsOver = int64(p.storage.CurrentTxs+1) - int64(limits.MaxTxs)
	}

	var toRemove []types.StorageIndex
	for _, idx := range p.selection.LessWorthTxs() {
		if gasOver <= 0 && bytesOver <= 0 && txsOver <= 0 {
			break
		}
		if _, isDep := checked.allDeps[idx]; isDep {
			continue
		}
		e := p.storage.Entry(idx)
		if e == nil {
			continue
		}
		if e.Ratio() > ratio {
			return nil, ErrNoFreeSpace
		}
		toRemove = append(toRemove, idx)
		gasOver -= int64(e.CumulativeGas)
		bytesOver -= int64(e.CumulativeBytes)
		txsOver -= int64(e.CumulativeCount)
	}
	if gasOver > 0 || bytesOver > 0 || txsOver > 0 {
		return nil, ErrNoFreeSpace
	}
	return toRemove, nil
}

// applyLocked commits a checked plan: evicting chosen subtrees, storing the
// new transaction, and emitting statuses (§4.6 step 6).
func (p *Pool) applyLocked(plan *CanStoreTransaction) {
	now := p.clock.Now()

	for _, idx := range dedupeIndexes(plan.toRemove) {
		p.evictSubtreeLocked(idx, ReasonLessWorth, now)
	}

	idx := p.storage.StoreTransaction(plan.checked, true, now.UnixNano())
	entry := p.storage.Entry(idx)
	p.collision.OnStoredTransaction(idx, entry)
	if !p.storage.HasDependencies(idx) {
		p.selection.NewExecutableTransaction(idx, entry)
		p.signalNewExecutable()
	}
	p.notifier.Submitted(plan.tx.ID, now)
}

func dedupeIndexes(in []types.StorageIndex) []types.StorageIndex {
	seen := make(map[types.StorageIndex]struct{}, len(in))
	out := make([]types.StorageIndex, 0, len(in))
	for _, idx := range in {
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out
}

// evictSubtreeLocked removes idx and its dependents, emitting SqueezedOut
// for each with reason, and keeps the collision/selection indices in sync.
func (p *Pool) evictSubtreeLocked(idx types.StorageIndex, reason SqueezedOutReason, now time.Time) {
	e := p.storage.Entry(idx)
	if e == nil {
		return
	}
	removed := p.collectSubtreeEntries(idx)
	actual := p.storage.RemoveTransactionAndDependentsSubtree(idx)
	removedSet := make(map[types.StorageIndex]struct{}, len(actual))
	for _, i := range actual {
		removedSet[i] = struct{}{}
	}
	for _, re := range removed {
		if _, ok := removedSet[re.Idx]; !ok {
			continue
		}
		p.collision.OnRemovedTransaction(re.Idx, re.Tx)
		p.selection.OnRemovedTransaction(re.Idx)
		metricSqueezed.Inc(1)
		p.notifier.SqueezedOut(re.Tx.ID, reason, now)
	}
}

// collectSubtreeEntries snapshots idx and its transitive dependents before
// removal, since RemoveTransactionAndDependentsSubtree frees the arena slots.
func (p *Pool) collectSubtreeEntries(idx types.StorageIndex) []*StorageEntry {
	var out []*StorageEntry
	visited := make(map[types.StorageIndex]struct{})
	var walk func(types.StorageIndex)
	walk = func(cur types.StorageIndex) {
		if _, ok := visited[cur]; ok {
			return
		}
		visited[cur] = struct{}{}
		e := p.storage.Entry(cur)
		if e == nil {
			return
		}
		out = append(out, e)
		for child := range e.Dependents {
			walk(child)
		}
	}
	walk(idx)
	return out
}

// ExtractTransactionsForBlock selects transactions for a block under
// constraints and records their outputs as extracted and their inputs as
// tentatively spent (§4.6). The selected transactions stay in storage and
// the pool counters are not decremented; they leave the pool when
// ProcessCommittedTransactions or an eviction removes them.
func (p *Pool) ExtractTransactionsForBlock(constraints Constraints) []*types.PoolTx {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.selection.GatherBestTxs(constraints, p.storage)
	out := make([]*types.PoolTx, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Tx)
		p.extracted.NewExtractedTransaction(e.Tx)
		p.spent.MaybeSpendInputs(e.Tx.ID, e.Tx.Inputs)
	}
	return out
}

// ProcessCommittedTransactions removes each committed id from the pool
// keeping its dependents (which may become new executable roots), marks
// its inputs as spent, clears the extracted-output records of the committed
// ids, and promotes dependents whose dependencies are now all resolved
// (§4.6).
func (p *Pool) ProcessCommittedTransactions(ids []types.TxID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	var candidates []types.StorageIndex
	for _, id := range ids {
		idx, ok := p.storage.ByTxID(id)
		if !ok {
			continue
		}
		e := p.storage.Entry(idx)
		p.spent.SpendInputs(id, e.Tx.Inputs)
		candidates = append(candidates, p.storage.GetDirectDependents(idx)...)

		// Only the committed node leaves; its dependents stay and are
		// unlinked from it.
		p.storage.removeEntryLocked(idx)
		p.collision.OnRemovedTransaction(idx, e.Tx)
		p.selection.OnRemovedTransaction(idx)
	}
	p.extracted.ClearCommitted(ids)

	for _, idx := range candidates {
		if p.storage.Entry(idx) == nil {
			continue
		}
		if !p.storage.HasDependencies(idx) {
			p.selection.NewExecutableTransaction(idx, p.storage.Entry(idx))
			p.signalNewExecutable()
		}
	}
	_ = now
}

// RemoveTransactionsAndDependents evicts the closed subtree of each id in
// ids, emitting SqueezedOut with reason for every removed transaction
// (§4.6).
func (p *Pool) RemoveTransactionsAndDependents(ids []types.TxID, reason SqueezedOutReason) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	for _, id := range ids {
		idx, ok := p.storage.ByTxID(id)
		if !ok {
			continue
		}
		p.evictSubtreeLocked(idx, reason, now)
	}
}

// RemoveSkippedTransaction evicts id's subtree (if still present), unspends
// its inputs, then cascades eviction to every live transaction spending an
// output id minted (§4.6).
func (p *Pool) RemoveSkippedTransaction(id types.TxID, reason SqueezedOutReason) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()

	var mintedTx *types.PoolTx
	if idx, ok := p.storage.ByTxID(id); ok {
		mintedTx = p.storage.Entry(idx).Tx
		p.evictSubtreeLocked(idx, reason, now)
	}

	p.spent.UnspendInputs(id)
	p.extracted.NewSkippedTransaction(id)

	if mintedTx == nil {
		return
	}
	for _, idx := range p.collision.GetCoinsSpenders(id, mintedTx) {
		if p.storage.Entry(idx) == nil {
			continue
		}
		p.evictSubtreeLocked(idx, ReasonCoinDependent, now)
	}
}
