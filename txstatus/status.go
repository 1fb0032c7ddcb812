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

// Package txstatus is the per-transaction broadcast manager of §4.8: each
// tracked transaction id has zero or more subscribers, each following the
// state machine spec.md's table names, fed by bounded per-subscriber
// channels.
package txstatus

import "time"

// Kind enumerates the broadcast states a subscriber can observe, matching
// the table's column/row labels one for one.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindSubmitted
	KindPreconfirmed
	KindEarlySuccess
	KindSuccess
	KindLateFailed
	KindSenderClosed
	KindFailed
	KindClosed
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindSubmitted:
		return "submitted"
	case KindPreconfirmed:
		return "preconfirmed"
	case KindEarlySuccess:
		return "early_success"
	case KindSuccess:
		return "success"
	case KindLateFailed:
		return "late_failed"
	case KindSenderClosed:
		return "sender_closed"
	case KindFailed:
		return "failed"
	case KindClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Update is one message delivered on a subscriber's channel: the Kind the
// subscriber transitioned into, plus the timestamp(s) involved. Prev is only
// set for Success/LateFailed, which carry the earlier Submitted/Preconfirmed
// time alongside the terminal one.
type Update struct {
	Kind Kind
	Time time.Time
	Prev time.Time
}

// event is the internal input driving a subscriber's transition; it mirrors
// the table's column headers (AddStatus(Submitted), AddStatus(Preconf),
// AddStatus(terminal), FailedStatus/AddFailure, CloseRecv).
type event uint8

const (
	eventSubmitted event = iota
	eventPreconfirmed
	eventTerminalSuccess // EarlySuccess / Success depending on prior state
	eventFailed          // FailedStatus / AddFailure
	eventClose           // CloseRecv
)
