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
	"time"

	"github.com/ground-x/chainkit/types"
)

// StatusNotifier is the subset of txstatus.Manager the pool drives directly,
// declared here rather than imported so txpool has no dependency on
// txstatus; the node wiring supplies a concrete *txstatus.Manager (§4.8).
type StatusNotifier interface {
	Submitted(id types.TxID, at time.Time)
	Preconfirmed(id types.TxID, at time.Time)
	SqueezedOut(id types.TxID, reason SqueezedOutReason, at time.Time)
}

// noopNotifier discards every event; used when a Pool is built without a
// status manager (e.g. in unit tests of the pool alone).
type noopNotifier struct{}

func (noopNotifier) Submitted(types.TxID, time.Time)                       {}
func (noopNotifier) Preconfirmed(types.TxID, time.Time)                    {}
func (noopNotifier) SqueezedOut(types.TxID, SqueezedOutReason, time.Time) {}
