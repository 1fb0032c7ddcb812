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

package dabridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_WaitForAtLeastHeight_ReturnsImmediatelyWhenAlreadyPast(t *testing.T) {
	tr := NewTracker()
	tr.Advance(10, BlockCost{Cost: 5, TransactionCount: 2})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	h, err := tr.WaitForAtLeastHeight(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), h)
}

func TestTracker_WaitForAtLeastHeight_BlocksUntilAdvanced(t *testing.T) {
	tr := NewTracker()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan uint64, 1)
	go func() {
		h, err := tr.WaitForAtLeastHeight(ctx, 7)
		if err == nil {
			done <- h
		}
	}()

	time.Sleep(20 * time.Millisecond)
	tr.Advance(7, BlockCost{Cost: 1, TransactionCount: 1})

	select {
	case h := <-done:
		assert.Equal(t, uint64(7), h)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for WaitForAtLeastHeight to unblock")
	}
}

func TestTracker_WaitForAtLeastHeight_RespectsContextCancellation(t *testing.T) {
	tr := NewTracker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.WaitForAtLeastHeight(ctx, 1)
	assert.Error(t, err)
}

func TestTracker_GetCostAndTransactionsNumberForBlock(t *testing.T) {
	tr := NewTracker()
	tr.Advance(3, BlockCost{Cost: 100, TransactionCount: 4})

	cost, err := tr.GetCostAndTransactionsNumberForBlock(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, BlockCost{Cost: 100, TransactionCount: 4}, cost)
}
