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

package producer

// writerLock is the non-blocking single-writer mutex of §5/§9: acquisition
// never waits, it either succeeds or tells the caller the producer is busy.
// A buffered channel of size 1 is the idiomatic Go stand-in for a TryLock
// mutex, since sync.Mutex has no non-blocking TryLock in the Go versions
// this module targets.
type writerLock struct {
	slot chan struct{}
}

func newWriterLock() *writerLock {
	l := &writerLock{slot: make(chan struct{}, 1)}
	l.slot <- struct{}{}
	return l
}

// TryAcquire returns true if the lock was free and is now held by the
// caller; false if another production is already in flight (§8 invariant 7).
func (l *writerLock) TryAcquire() bool {
	select {
	case <-l.slot:
		return true
	default:
		return false
	}
}

func (l *writerLock) Release() {
	l.slot <- struct{}{}
}
