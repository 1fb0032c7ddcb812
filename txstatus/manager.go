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

package txstatus

import (
	"sync"
	"time"

	"github.com/hashicorp/go-uuid"

	"github.com/ground-x/chainkit/log"
	"github.com/ground-x/chainkit/txpool"
	"github.com/ground-x/chainkit/types"
)

// Manager is the per-transaction broadcast described in §4.8. Subscriber
// handles are minted with github.com/hashicorp/go-uuid, the same library
// the teacher reaches for to mint request identifiers
// (datasync/chaindatafetcher/event/kafka/kafka.go).
type Manager struct {
	mu sync.Mutex

	capacity       int
	maxSubscribers int
	subscriberCount int

	byTx map[types.TxID]map[string]*subscriber

	log *log.Logger
}

// NewManager builds a Manager with the per-subscriber channel capacity and
// process-wide subscriber cap from txpool.Config (§4.8, §8 invariant 5).
func NewManager(capacity, maxSubscribers int) *Manager {
	return &Manager{
		capacity:       capacity,
		maxSubscribers: maxSubscribers,
		byTx:           make(map[types.TxID]map[string]*subscriber),
		log:            log.NewModuleLogger(log.TxStatus),
	}
}

// TrySubscribe registers a fresh Empty-state subscriber for id and returns
// its delivery channel, refusing once the process-wide cap is reached
// (§4.8).
func (m *Manager) TrySubscribe(id types.TxID) (<-chan Update, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscriberCount >= m.maxSubscribers {
		return nil, "", false
	}
	handle, err := uuid.GenerateUUID()
	if err != nil {
		m.log.Error("failed to mint subscriber handle", "err", err)
		return nil, "", false
	}

	sub := newSubscriber(handle, m.capacity)
	if m.byTx[id] == nil {
		m.byTx[id] = make(map[string]*subscriber)
	}
	m.byTx[id][handle] = sub
	m.subscriberCount++
	return sub.ch, handle, true
}

// Unsubscribe removes handle's subscription to id, the table's CloseRecv
// transition applied unconditionally (§4.8).
func (m *Manager) Unsubscribe(id types.TxID, handle string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id, handle)
}

func (m *Manager) removeLocked(id types.TxID, handle string) {
	subs, ok := m.byTx[id]
	if !ok {
		return
	}
	if _, ok := subs[handle]; !ok {
		return
	}
	delete(subs, handle)
	m.subscriberCount--
	if len(subs) == 0 {
		delete(m.byTx, id)
	}
}

// broadcast delivers ev to every live subscriber of id, applying the send
// semantics of §4.8: a non-blocking send; Full degrades the subscriber to
// its AddFailure transition instead of blocking; a subscriber already
// Closed is pruned. Once a delivered Update lands the subscriber in a state
// with a further Next transition (EarlySuccess/Failed/SenderClosed/
// LateFailed/Success), that transition fires immediately and is delivered
// in turn, cascading until Next reports none remain — this is what
// eventually drives every terminal subscriber to Closed so it stops
// counting against the §8 invariant 5 subscriber bound.
func (m *Manager) broadcast(id types.TxID, ev event, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.byTx[id]
	for handle, sub := range subs {
		if sub.state == KindClosed {
			delete(subs, handle)
			m.subscriberCount--
			continue
		}
		upd, changed := sub.apply(ev, at)
		for changed {
			if !m.deliver(sub, upd, at) {
				break
			}
			upd, changed = sub.next()
		}
		if sub.state == KindClosed {
			delete(subs, handle)
			m.subscriberCount--
		}
	}
	if len(subs) == 0 {
		delete(m.byTx, id)
	}
}

// deliver attempts a non-blocking send of upd on sub's channel, degrading
// to the AddFailure transition on Full instead of blocking (§4.8). Returns
// whether the send succeeded, so callers know whether to keep cascading
// further Next transitions.
func (m *Manager) deliver(sub *subscriber, upd Update, at time.Time) bool {
	select {
	case sub.ch <- upd:
		return true
	default:
		sub.failed = true
		sub.apply(eventFailed, at)
		return false
	}
}

// Submitted records a Submitted status for id (§4.6 Insert, §4.8).
func (m *Manager) Submitted(id types.TxID, at time.Time) { m.broadcast(id, eventSubmitted, at) }

// Preconfirmed records a Preconfirmed status for id.
func (m *Manager) Preconfirmed(id types.TxID, at time.Time) { m.broadcast(id, eventPreconfirmed, at) }

// Success records id's terminal success, e.g. on block commit.
func (m *Manager) Success(id types.TxID, at time.Time) { m.broadcast(id, eventTerminalSuccess, at) }

// Failed records id's terminal failure, e.g. on executor rejection.
func (m *Manager) Failed(id types.TxID, at time.Time) { m.broadcast(id, eventFailed, at) }

// SqueezedOut records a pool eviction as a terminal failure; reason is
// logged but does not change the subscriber projection, which only tracks
// the §4.8 state machine's coarse categories.
func (m *Manager) SqueezedOut(id types.TxID, reason txpool.SqueezedOutReason, at time.Time) {
	m.log.Debug("transaction squeezed out", "tx", id.String(), "reason", reason)
	m.broadcast(id, eventFailed, at)
}

// Subscribers returns the current live subscriber count, for metrics and
// the §8 invariant 5 bound check.
func (m *Manager) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscriberCount
}

var _ txpool.StatusNotifier = (*Manager)(nil)
