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

package node

import (
	"github.com/ground-x/chainkit/producer"
	"github.com/ground-x/chainkit/storagedb"
	"github.com/ground-x/chainkit/types"
)

// chainView adapts a storagedb.BlockStore to producer.ChainView, the only
// place this module translates the raw storage port into the narrow view
// the header-construction algorithm reads (§4.7 step 2).
type chainView struct {
	store *storagedb.BlockStore
}

func newChainView(store *storagedb.BlockStore) *chainView {
	return &chainView{store: store}
}

func (c *chainView) LatestHeight() (uint64, error) {
	height, ok, err := c.store.LatestBlockHeight()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, producer.ErrNoGenesisBlock
	}
	return height, nil
}

func (c *chainView) LatestHeader() (types.Header, error) {
	height, ok, err := c.store.LatestBlockHeight()
	if err != nil {
		return types.Header{}, err
	}
	if !ok {
		return types.Header{}, producer.ErrNoGenesisBlock
	}
	return c.store.Header(height)
}

func (c *chainView) LatestRoot() ([32]byte, error) {
	height, ok, err := c.store.LatestBlockHeight()
	if err != nil {
		return [32]byte{}, err
	}
	if !ok {
		return [32]byte{}, producer.ErrNoGenesisBlock
	}
	return c.store.LatestBlockRoot(height)
}

var _ producer.ChainView = (*chainView)(nil)
