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

package gasprice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_ProductionAndDryRunAgree(t *testing.T) {
	p := NewStatic(42)

	prod, err := p.ProductionGasPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), prod)

	dry, err := p.DryRunGasPrice()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), dry)
}

func TestStatic_SetPriceUpdatesBothPaths(t *testing.T) {
	p := NewStatic(1)
	p.SetPrice(99)

	prod, _ := p.ProductionGasPrice()
	dry, _ := p.DryRunGasPrice()
	assert.Equal(t, uint64(99), prod)
	assert.Equal(t, uint64(99), dry)
}
