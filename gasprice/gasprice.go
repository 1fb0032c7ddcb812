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

// Package gasprice is the §4.10 domain-stack component: an interface-only
// boundary in front of whatever production/dry-run gas price controller a
// deployment chooses, plus a default in-memory stand-in for the excluded
// P/D controller named in the Non-goals.
package gasprice

import (
	"errors"
	"sync/atomic"
)

// ErrNoGasPrice is returned when a provider has not been given a price to
// serve, e.g. before the node's first price update.
var ErrNoGasPrice = errors.New("gasprice: no gas price configured")

// GasPriceProvider is the interface the producer calls to price the mint
// transaction it appends to every block (§4.7, §4.10).
type GasPriceProvider interface {
	// ProductionGasPrice returns the price to use when sealing a real block.
	ProductionGasPrice() (uint64, error)
	// DryRunGasPrice returns the price to use for a DryRun simulation.
	DryRunGasPrice() (uint64, error)
}

// Static is a GasPriceProvider that always returns one configured value for
// both production and dry-run, a stand-in for the excluded P/D controller
// (§4.10) adequate for tests and for the CLI's --gasprice flag.
type Static struct {
	price uint64
}

// NewStatic builds a Static provider fixed at price.
func NewStatic(price uint64) *Static {
	return &Static{price: price}
}

func (s *Static) ProductionGasPrice() (uint64, error) {
	return atomic.LoadUint64(&s.price), nil
}

func (s *Static) DryRunGasPrice() (uint64, error) {
	return atomic.LoadUint64(&s.price), nil
}

// SetPrice updates the served price, e.g. from an operator RPC call or CLI
// reload.
func (s *Static) SetPrice(price uint64) {
	atomic.StoreUint64(&s.price, price)
}

var _ GasPriceProvider = (*Static)(nil)
