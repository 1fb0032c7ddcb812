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

// Package config loads the node's TOML configuration file via
// github.com/naoina/toml, the teacher's config-file library
// (cmd/utils/nodecmd/dumpconfigcmd.go in jeongkyun-oh-klaytn), rather than
// hand-rolling an ini/flag-only reader.
package config

import (
	"os"
	"time"

	"github.com/naoina/toml"
)

// PoolConfig mirrors the limits named throughout §4.6 of the specification.
type PoolConfig struct {
	MaxTxs        int   `toml:"max_txs"`
	MaxGas        uint64 `toml:"max_gas"`
	MaxBytesSize  uint64 `toml:"max_bytes_size"`
	BlacklistedContracts []string `toml:"blacklisted_contracts"`
}

// TxStatusConfig bounds the per-tx broadcast manager of §4.8.
type TxStatusConfig struct {
	CapacityPerTx    int `toml:"capacity_per_tx"`
	MaxSubscribers   int `toml:"max_subscribers"`
}

// TriggerConfig configures the producer's timing policy (§4.7). Exactly one
// of the named fields is meaningful, selected by Kind.
type TriggerConfig struct {
	Kind      string        `toml:"kind"` // "never" | "instant" | "interval" | "open"
	BlockTime time.Duration `toml:"block_time"`
	Period    time.Duration `toml:"period"`
}

// ProducerConfig configures block production.
type ProducerConfig struct {
	Trigger           TriggerConfig `toml:"trigger"`
	BlockGasLimit     uint64        `toml:"block_gas_limit"`
	ProductionTimeout time.Duration `toml:"production_timeout"`
	CoinbaseRecipient string        `toml:"coinbase_recipient"`
}

// StorageConfig selects and configures the persistence layer (§4.11).
type StorageConfig struct {
	DataDir       string `toml:"data_dir"`
	LevelDBCache  int    `toml:"leveldb_cache_mb"`
	LevelDBHandles int   `toml:"leveldb_handles"`
}

// Config is the full node configuration, the TOML-file analogue of the
// teacher's node.Config + gxp/config.go pair, narrowed to what this module's
// components consume.
type Config struct {
	Pool     PoolConfig     `toml:"pool"`
	TxStatus TxStatusConfig `toml:"tx_status"`
	Producer ProducerConfig `toml:"producer"`
	Storage  StorageConfig  `toml:"storage"`
	MetricsEnabled    bool `toml:"metrics_enabled"`
	PrometheusEnabled bool `toml:"prometheus_enabled"`
	PrometheusPort    int  `toml:"prometheus_port"`
}

// Default returns reasonable defaults, the way node.DefaultConfig does in
// the teacher codebase.
func Default() Config {
	return Config{
		Pool: PoolConfig{
			MaxTxs:       10_000,
			MaxGas:       30_000_000,
			MaxBytesSize: 128 * 1024 * 1024,
		},
		TxStatus: TxStatusConfig{
			CapacityPerTx:  4,
			MaxSubscribers: 100_000,
		},
		Producer: ProducerConfig{
			Trigger:           TriggerConfig{Kind: "never"},
			BlockGasLimit:     30_000_000,
			ProductionTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			DataDir:        defaultDataDir(),
			LevelDBCache:   128,
			LevelDBHandles: 256,
		},
		PrometheusPort: 6060,
	}
}

// LoadFile reads and decodes a TOML config file, falling back to Default()
// values for anything the file leaves unset by decoding on top of them.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
