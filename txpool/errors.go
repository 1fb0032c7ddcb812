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

// Package txpool is the mempool described in §4.1-4.6: a dependency-graph
// transaction store, its admission/eviction/extraction algorithm, and the
// supporting resource-collision and output-tracking indices.
package txpool

import "errors"

// Admission/input-validation errors (§7 InputValidation).
var (
	ErrDuplicateTxID        = errors.New("txpool: transaction already known")
	ErrDuplicateBlobID      = errors.New("txpool: blob id already known")
	ErrMaxGasZero           = errors.New("txpool: max_gas must be greater than zero")
	ErrAlreadySpent         = errors.New("txpool: input already spent")
	ErrUnknownInput         = errors.New("txpool: input does not refer to a live coin, message, or contract")
	ErrBlacklisted          = errors.New("txpool: transaction touches a blacklisted resource")
)

// Dependency/collision errors (§7 Dependency, Collided).
var (
	ErrCollisionIsDependency = errors.New("txpool: colliding transaction is also a dependency")
	ErrCollision             = errors.New("txpool: collision requirement not met")
	ErrNotInsertedLimitHit   = errors.New("txpool: pool limit hit and transaction has dependencies")
	ErrNoFreeSpace           = errors.New("txpool: could not free enough space for transaction")
)

// Storage graph errors (§4.4).
var (
	ErrUnknownStorageIndex = errors.New("txpool: unknown storage index")
	ErrHasDependents       = errors.New("txpool: cannot remove a transaction with live dependents")
)

// SqueezedOutReason explains why an eviction, an explicit removal or a skip
// removed a transaction the client had submitted (§4.6, §4.8).
type SqueezedOutReason string

const (
	ReasonLessWorth        SqueezedOutReason = "less_worth"
	ReasonCollided         SqueezedOutReason = "collided"
	ReasonParentSkipped    SqueezedOutReason = "parent_skipped"
	ReasonCoinDependent    SqueezedOutReason = "coin_dependent"
	ReasonExplicitlyRemoved SqueezedOutReason = "removed"
)
