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

import "time"

// subscriber tracks one listener's projected state and its delivery
// channel, implementing the transition table of §4.8 exactly.
type subscriber struct {
	handle string
	state  Kind
	last   time.Time // the most recent Submitted/Preconfirmed time, for Success/LateFailed's prev
	ch     chan Update
	failed bool // AddFailure landed while Kind was still live; finalize to Failed once drained
}

func newSubscriber(handle string, capacity int) *subscriber {
	return &subscriber{handle: handle, state: KindEmpty, ch: make(chan Update, capacity)}
}

// apply advances the subscriber per the table and returns the Update to
// deliver, or false if this event produces no transition in the current
// state (a closed or fully-terminal subscriber ignores further events other
// than CloseRecv).
func (s *subscriber) apply(ev event, at time.Time) (Update, bool) {
	switch s.state {
	case KindEmpty, KindSubmitted, KindPreconfirmed:
		return s.applyLive(ev, at)
	case KindClosed:
		return Update{}, false
	default:
		// EarlySuccess, Success, LateFailed, SenderClosed, Failed: only
		// CloseRecv has an effect, handled by close() directly.
		return Update{}, false
	}
}

func (s *subscriber) applyLive(ev event, at time.Time) (Update, bool) {
	switch ev {
	case eventSubmitted:
		s.state = KindSubmitted
		s.last = at
		return Update{Kind: KindSubmitted, Time: at}, true
	case eventPreconfirmed:
		s.state = KindPreconfirmed
		s.last = at
		return Update{Kind: KindPreconfirmed, Time: at}, true
	case eventTerminalSuccess:
		if s.state == KindEmpty {
			s.state = KindEarlySuccess
			return Update{Kind: KindEarlySuccess, Time: at}, true
		}
		prev := s.last
		s.state = KindSuccess
		s.last = at
		return Update{Kind: KindSuccess, Time: at, Prev: prev}, true
	case eventFailed:
		if s.state == KindEmpty {
			s.state = KindFailed
			return Update{Kind: KindFailed, Time: at}, true
		}
		prev := s.last
		s.state = KindLateFailed
		return Update{Kind: KindLateFailed, Time: at, Prev: prev}, true
	}
	return Update{}, false
}

// next advances a terminal state on the delivery-channel's Next tick, per
// the table's rightmost column: EarlySuccess/Failed/SenderClosed -> Closed,
// LateFailed -> Failed, Success -> SenderClosed. Returns false once no
// further Next transition applies (Empty/live states, and Closed itself).
func (s *subscriber) next() (Update, bool) {
	switch s.state {
	case KindEarlySuccess, KindFailed, KindSenderClosed:
		s.state = KindClosed
		return Update{Kind: KindClosed}, true
	case KindLateFailed:
		s.state = KindFailed
		return Update{Kind: KindFailed}, true
	case KindSuccess:
		s.state = KindSenderClosed
		return Update{Kind: KindSenderClosed}, true
	default:
		return Update{}, false
	}
}

// close marks the subscriber Closed unconditionally, the table's CloseRecv
// column for every row.
func (s *subscriber) close() Update {
	s.state = KindClosed
	return Update{Kind: KindClosed}
}
