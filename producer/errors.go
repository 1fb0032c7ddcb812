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

import "errors"

var (
	ErrBusy                           = errors.New("producer: a block production is already in flight")
	ErrNoGenesisBlock                 = errors.New("producer: chain view has no genesis block")
	ErrBlockHeightShouldBeHigherThanPrevious = errors.New("producer: predefined block height is not higher than the current head")
	ErrMissingBlock                  = errors.New("producer: predefined block is missing its mint transaction")
	ErrInvalidDaFinalizationState     = errors.New("producer: bridge reports a da height behind the previous block's")
)
