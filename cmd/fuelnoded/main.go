// Copyright 2018 The klaytn Authors
// Copyright 2016 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.
//
// This file is derived from cmd/kcn/main.go, trimmed from a full P2P/RPC
// consensus node's flag set down to the block-production pipeline this
// module actually owns.
package main

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/ground-x/chainkit/cmd/utils"
	"github.com/ground-x/chainkit/config"
	"github.com/ground-x/chainkit/executor"
	"github.com/ground-x/chainkit/log"
	"github.com/ground-x/chainkit/metrics"
	prometheusmetrics "github.com/ground-x/chainkit/metrics/prometheus"
	"github.com/ground-x/chainkit/node"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/urfave/cli.v1"
)

var logger = log.NewModuleLogger(log.CmdUtils)

var (
	ConfigFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file path",
	}
	DataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the block store",
	}
	TriggerKindFlag = cli.StringFlag{
		Name:  "trigger",
		Usage: "Block production trigger: never, instant, interval, open",
		Value: "never",
	}
	BlockTimeFlag = cli.DurationFlag{
		Name:  "blocktime",
		Usage: "Target spacing between blocks for the interval trigger",
	}
	PeriodFlag = cli.DurationFlag{
		Name:  "period",
		Usage: "Window length for the open trigger",
	}
	GasPriceFlag = cli.Uint64Flag{
		Name:  "gasprice",
		Usage: "Fixed gas price served to the producer's mint transaction",
	}
	CoinbaseFlag = cli.StringFlag{
		Name:  "coinbase",
		Usage: "Hex-encoded address credited by the producer's mint transaction",
	}
	MetricsEnabledFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "Enable metrics collection",
	}
	PrometheusExporterFlag = cli.BoolFlag{
		Name:  "prometheus",
		Usage: "Enable the Prometheus metrics exporter (requires --metrics)",
	}
	PrometheusExporterPortFlag = cli.IntFlag{
		Name:  "prometheus.port",
		Usage: "Port the Prometheus exporter listens on",
		Value: 6060,
	}
)

var app = cli.NewApp()

func init() {
	app.Name = "fuelnoded"
	app.Usage = "UTXO mempool and block-production node"
	app.Flags = []cli.Flag{
		ConfigFileFlag,
		DataDirFlag,
		TriggerKindFlag,
		BlockTimeFlag,
		PeriodFlag,
		GasPriceFlag,
		CoinbaseFlag,
		MetricsEnabledFlag,
		PrometheusExporterFlag,
		PrometheusExporterPortFlag,
	}
	app.Action = run

	app.Before = func(ctx *cli.Context) error {
		runtime.GOMAXPROCS(runtime.NumCPU())
		metrics.Enabled = ctx.GlobalBool(MetricsEnabledFlag.Name)
		if metrics.Enabled {
			logger.Info("Enabling metrics collection")
			if ctx.GlobalBool(PrometheusExporterFlag.Name) {
				logger.Info("Enabling Prometheus exporter")
				pClient := prometheusmetrics.NewPrometheusProvider(metrics.DefaultRegistry, "chainkit",
					"", prometheus.DefaultRegisterer, 3*time.Second)
				go pClient.UpdatePrometheusMetrics()

				port := ctx.GlobalInt(PrometheusExporterPortFlag.Name)
				http.Handle("/metrics", promhttp.Handler())
				go func() {
					if err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil); err != nil {
						logger.Error("Prometheus exporter failed", "port", port, "err", err)
					}
				}()
			}
		}
		return nil
	}
}

func loadConfig(ctx *cli.Context) (config.Config, error) {
	var cfg config.Config
	var err error
	if path := ctx.GlobalString(ConfigFileFlag.Name); path != "" {
		cfg, err = config.LoadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		cfg = config.Default()
	}

	if v := ctx.GlobalString(DataDirFlag.Name); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := ctx.GlobalString(TriggerKindFlag.Name); v != "" {
		cfg.Producer.Trigger.Kind = v
	}
	if v := ctx.GlobalDuration(BlockTimeFlag.Name); v > 0 {
		cfg.Producer.Trigger.BlockTime = v
	}
	if v := ctx.GlobalDuration(PeriodFlag.Name); v > 0 {
		cfg.Producer.Trigger.Period = v
	}
	if v := ctx.GlobalString(CoinbaseFlag.Name); v != "" {
		cfg.Producer.CoinbaseRecipient = v
	}
	return cfg, nil
}

// run wires a Node from the resolved configuration and blocks until an
// operator interrupts it via StartNode's signal handling. The block
// executor behind it is executor.Noop, since a real VM/UTXO execution
// engine is outside this module's scope; operators embedding this module
// in a larger node supply their own executor.Executor and call node.New
// directly instead of going through this CLI.
func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		utils.Fatalf("failed to load configuration: %v", err)
	}

	n, err := node.New(cfg, executor.Noop{})
	if err != nil {
		utils.Fatalf("failed to initialize node: %v", err)
	}

	if price := ctx.GlobalUint64(GasPriceFlag.Name); price > 0 {
		n.GasPrice.SetPrice(price)
	}

	utils.StartNode(n)

	if metrics.Enabled {
		go metrics.CollectProcessMetrics(3 * time.Second)
	}

	n.Wait()
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
