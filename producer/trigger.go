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

// Package producer is the block-production control loop of §4.7: a trigger
// policy drives when to build a block, a header-construction algorithm
// decides its contents, and a non-blocking single-writer lock keeps at most
// one production in flight.
package producer

import "time"

// TriggerKind names the four timing policies a producer may run under
// (§4.7, GLOSSARY).
type TriggerKind uint8

const (
	// TriggerNever produces no blocks; the loop still drains the pool's
	// new-tx notifications so submitters never back up waiting on a
	// producer that isn't listening.
	TriggerNever TriggerKind = iota
	// TriggerInstant produces as soon as the pool signals a new
	// transaction, coalescing bursts into one block per notification.
	TriggerInstant
	// TriggerInterval produces exactly once per BlockTime wall interval.
	TriggerInterval
	// TriggerOpen produces one block at the end of every Period window,
	// timestamped at the window's end.
	TriggerOpen
)

// Trigger configures the producer's timing policy.
type Trigger struct {
	Kind      TriggerKind
	BlockTime time.Duration // TriggerInterval
	Period    time.Duration // TriggerOpen
}

func NewNeverTrigger() Trigger { return Trigger{Kind: TriggerNever} }
func NewInstantTrigger() Trigger { return Trigger{Kind: TriggerInstant} }
func NewIntervalTrigger(blockTime time.Duration) Trigger {
	return Trigger{Kind: TriggerInterval, BlockTime: blockTime}
}
func NewOpenTrigger(period time.Duration) Trigger {
	return Trigger{Kind: TriggerOpen, Period: period}
}
