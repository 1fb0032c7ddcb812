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

// Package prometheus bridges the go-metrics registry this module's
// components publish into to the real Prometheus client, the way
// cmd/kcn/main.go wires prometheusmetrics.NewPrometheusProvider in the
// teacher codebase.
package prometheus

import (
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	promclient "github.com/prometheus/client_golang/prometheus"
)

// Provider periodically walks a go-metrics registry and mirrors each entry
// into a Prometheus gauge, registered once per metric name on first sight.
type Provider struct {
	registry gometrics.Registry
	subsys   string
	registerer promclient.Registerer
	interval time.Duration

	gauges map[string]promclient.Gauge
}

func NewPrometheusProvider(r gometrics.Registry, namespace, subsystem string, registerer promclient.Registerer, interval time.Duration) *Provider {
	return &Provider{
		registry:   r,
		subsys:     namespace + "_" + subsystem,
		registerer: registerer,
		interval:   interval,
		gauges:     make(map[string]promclient.Gauge),
	}
}

// UpdatePrometheusMetrics runs forever, sampling the registry on `interval`.
// Intended to be started as `go provider.UpdatePrometheusMetrics()`.
func (p *Provider) UpdatePrometheusMetrics() {
	for range time.Tick(p.interval) {
		p.updateOnce()
	}
}

func (p *Provider) updateOnce() {
	p.registry.Each(func(name string, i interface{}) {
		gauge := p.gaugeFor(name)
		switch m := i.(type) {
		case gometrics.Counter:
			gauge.Set(float64(m.Count()))
		case gometrics.Gauge:
			gauge.Set(float64(m.Value()))
		case gometrics.Meter:
			gauge.Set(m.Snapshot().Rate1())
		}
	})
}

func (p *Provider) gaugeFor(name string) promclient.Gauge {
	if g, ok := p.gauges[name]; ok {
		return g
	}
	g := promclient.NewGauge(promclient.GaugeOpts{
		Name: sanitize(p.subsys + "_" + name),
		Help: name,
	})
	if p.registerer != nil {
		_ = p.registerer.Register(g)
	}
	p.gauges[name] = g
	return g
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
