// Copyright 2018 The klaytn Authors
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

// Package metrics wraps github.com/rcrowley/go-metrics the way work/worker.go
// and storage/database/leveldb_database.go do in the teacher codebase:
// package-level registered counters/gauges/meters, bridged to Prometheus by
// the cmd entrypoint rather than scattering prometheus client calls through
// the domain packages themselves.
package metrics

import (
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Enabled mirrors metrics.Enabled in the teacher: a single process-wide
// switch, off by default, flipped on by the CLI's --metrics flag.
var Enabled = false

// DefaultRegistry is the registry every NewRegistered* call below feeds,
// exactly as in the teacher's metrics package.
var DefaultRegistry = gometrics.DefaultRegistry

type Counter = gometrics.Counter
type Gauge = gometrics.Gauge
type Meter = gometrics.Meter
type Timer = gometrics.Timer

func NewRegisteredCounter(name string, r gometrics.Registry) Counter {
	if !Enabled {
		return new(gometrics.NilCounter)
	}
	return gometrics.NewRegisteredCounter(name, registryOrDefault(r))
}

func NewRegisteredGauge(name string, r gometrics.Registry) Gauge {
	if !Enabled {
		return new(gometrics.NilGauge)
	}
	return gometrics.NewRegisteredGauge(name, registryOrDefault(r))
}

func NewRegisteredMeter(name string, r gometrics.Registry) Meter {
	if !Enabled {
		return new(gometrics.NilMeter)
	}
	return gometrics.NewRegisteredMeter(name, registryOrDefault(r))
}

func NewRegisteredTimer(name string, r gometrics.Registry) Timer {
	if !Enabled {
		return new(gometrics.NilTimer)
	}
	return gometrics.NewRegisteredTimer(name, registryOrDefault(r))
}

func registryOrDefault(r gometrics.Registry) gometrics.Registry {
	if r == nil {
		return DefaultRegistry
	}
	return r
}

// CollectProcessMetrics mirrors the teacher's background sampler started
// from cmd/kcn/main.go's app.Before hook (`go metrics.CollectProcessMetrics(3
// * time.Second)`), trimmed to the counters this module actually needs:
// the goroutine count.
func CollectProcessMetrics(refresh time.Duration) {
	if !Enabled {
		return
	}
	goroutines := NewRegisteredGauge("system/goroutines", nil)
	for range time.Tick(refresh) {
		goroutines.Update(int64(numGoroutine()))
	}
}
