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

// Package node assembles the components every other package only declares
// interfaces for into one running process, the way the teacher's
// node.ServiceContext/node.Service pair wires protocol services into a
// *node.Node. P2P/RPC service registration is out of scope here (Non-goals:
// networking transport); this module's "services" are the txpool, producer,
// and importer goroutines instead.
package node

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ground-x/chainkit/config"
	"github.com/ground-x/chainkit/dabridge"
	"github.com/ground-x/chainkit/executor"
	"github.com/ground-x/chainkit/gasprice"
	"github.com/ground-x/chainkit/importer"
	"github.com/ground-x/chainkit/log"
	"github.com/ground-x/chainkit/metrics"
	"github.com/ground-x/chainkit/producer"
	"github.com/ground-x/chainkit/storagedb"
	"github.com/ground-x/chainkit/txpool"
	"github.com/ground-x/chainkit/txstatus"
	"github.com/ground-x/chainkit/types"
	"github.com/pkg/errors"
)

// Node owns every long-lived component this module builds: the storage
// backend, the mempool, the status broadcaster, the importer pipeline, and
// the producer control loop (§9 "Global state").
type Node struct {
	cfg config.Config
	log *log.Logger

	db    storagedb.Database
	store *storagedb.BlockStore

	Pool     *txpool.Pool
	Status   *txstatus.Manager
	Bridge   *dabridge.Tracker
	GasPrice *gasprice.Static
	Pipeline *importer.Pipeline
	Producer *producer.Producer

	cancel  context.CancelFunc
	stopped chan struct{}
}

// New builds a Node from cfg. ex is the executor implementation a caller
// supplies, since block-execution semantics are outside this module's scope
// (Non-goals: contract VM semantics).
func New(cfg config.Config, ex executor.Executor) (*Node, error) {
	db, err := openDatabase(cfg.Storage)
	if err != nil {
		return nil, errors.Wrap(err, "node: open database")
	}
	store := storagedb.NewBlockStore(db)
	if err := ensureGenesis(store); err != nil {
		return nil, errors.Wrap(err, "node: ensure genesis block")
	}

	status := txstatus.NewManager(cfg.TxStatus.CapacityPerTx, cfg.TxStatus.MaxSubscribers)

	poolCfg := txpool.Config{
		Limits: txpool.Constraints{
			MaxGas:   cfg.Pool.MaxGas,
			MaxBytes: cfg.Pool.MaxBytesSize,
			MaxTxs:   uint32(cfg.Pool.MaxTxs),
		},
		CapacityPerTx:  cfg.TxStatus.CapacityPerTx,
		MaxSubscribers: cfg.TxStatus.MaxSubscribers,
	}
	blacklist := txpool.NoBlacklist
	if len(cfg.Pool.BlacklistedContracts) > 0 {
		keys := make([]txpool.ResourceKey, len(cfg.Pool.BlacklistedContracts))
		for i, e := range cfg.Pool.BlacklistedContracts {
			keys[i] = txpool.ResourceKey(e)
		}
		blacklist = txpool.NewBlacklist(keys...)
	}
	pool, err := txpool.NewPool(poolCfg,
		txpool.WithNotifier(status),
		txpool.WithBlacklist(blacklist),
		txpool.WithPersistentStore(persistentStore{}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "node: build pool")
	}

	bridge := dabridge.NewTracker()
	gasPriceProvider := gasprice.NewStatic(0)
	pipeline := importer.New(store, pool, 0) // 0 selects params.DefaultCommitRetryDelay

	coinbase, err := decodeAddress(cfg.Producer.CoinbaseRecipient)
	if err != nil {
		return nil, errors.Wrap(err, "node: decode coinbase recipient")
	}
	trigger, err := buildTrigger(cfg.Producer.Trigger)
	if err != nil {
		return nil, errors.Wrap(err, "node: build trigger")
	}
	prodCfg := producer.Config{
		BlockGasLimit:     cfg.Producer.BlockGasLimit,
		ProductionTimeout: cfg.Producer.ProductionTimeout,
		CoinbaseRecipient: coinbase,
		PoolConstraints:   poolCfg.Limits,
	}
	prod := producer.New(prodCfg, trigger, newChainView(store), pool, ex, bridge, gasPriceProvider, pipeline)

	n := &Node{
		cfg:      cfg,
		log:      log.NewModuleLogger(log.Node),
		db:       db,
		store:    store,
		Pool:     pool,
		Status:   status,
		Bridge:   bridge,
		GasPrice: gasPriceProvider,
		Pipeline: pipeline,
		Producer: prod,
		stopped:  make(chan struct{}),
	}
	return n, nil
}

// Start launches the producer control loop in the background. Stop cancels
// it; Start/Stop mirror the teacher's Service.Start/Service.Stop life-cycle
// contract, narrowed to the one background loop this module owns.
func (n *Node) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	go n.Producer.Run(ctx)
	if metrics.Enabled {
		go metrics.CollectProcessMetrics(3 * time.Second)
	}
}

func (n *Node) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
	n.db.Close()
	close(n.stopped)
}

// Wait blocks until Stop has been called, mirroring the teacher's
// node.Node.Wait used by a CLI entrypoint to keep the process alive.
func (n *Node) Wait() {
	<-n.stopped
}

// ensureGenesis writes the height-0 block a fresh store starts from, since
// the header-construction algorithm's ChainView always expects a previous
// block to read (§4.7 step 2, ErrNoGenesisBlock).
func ensureGenesis(store *storagedb.BlockStore) error {
	_, ok, err := store.LatestBlockHeight()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	genesis := types.Header{Height: 0}
	return store.StoreNewBlock(0, storagedb.EncodeHeader(genesis), storagedb.HashHeader(genesis))
}

func openDatabase(cfg config.StorageConfig) (storagedb.Database, error) {
	if cfg.DataDir == "" {
		return storagedb.NewMemDatabase(), nil
	}
	return storagedb.NewLevelDB(cfg.DataDir, cfg.LevelDBCache, cfg.LevelDBHandles)
}

func decodeAddress(s string) (types.Address, error) {
	var addr types.Address
	if s == "" {
		return addr, nil
	}
	raw, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return addr, err
	}
	if len(raw) != len(addr) {
		return addr, fmt.Errorf("node: coinbase recipient must be %d bytes, got %d", len(addr), len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func buildTrigger(cfg config.TriggerConfig) (producer.Trigger, error) {
	switch cfg.Kind {
	case "", "never":
		return producer.NewNeverTrigger(), nil
	case "instant":
		return producer.NewInstantTrigger(), nil
	case "interval":
		return producer.NewIntervalTrigger(cfg.BlockTime), nil
	case "open":
		return producer.NewOpenTrigger(cfg.Period), nil
	default:
		return producer.Trigger{}, fmt.Errorf("node: unknown trigger kind %q", cfg.Kind)
	}
}

// persistentStore adapts storagedb's committed-state queries to the narrow
// txpool.PersistentStore boundary. Block-level commit data does not
// currently carry a resource/tx index, so both checks report "not found"; a
// real deployment wires this against whatever index the executor maintains
// over committed UTXOs (Open Question, see DESIGN.md).
type persistentStore struct{}

func (persistentStore) ContainsResource(txpool.ResourceKey) bool { return false }
func (persistentStore) ContainsTxID(types.TxID) bool             { return false }
