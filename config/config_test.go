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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_SetsNonZeroBudgets(t *testing.T) {
	cfg := Default()
	assert.NotZero(t, cfg.Pool.MaxTxs)
	assert.NotZero(t, cfg.Pool.MaxGas)
	assert.NotZero(t, cfg.Pool.MaxBytesSize)
	assert.Equal(t, "never", cfg.Producer.Trigger.Kind)
	assert.NotZero(t, cfg.PrometheusPort)
}

func TestLoadFile_OverlaysDefaultsWithFileContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[pool]
max_txs = 42

[producer]
coinbase_recipient = "0xabc"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Pool.MaxTxs)
	assert.Equal(t, "0xabc", cfg.Producer.CoinbaseRecipient)
	// Fields the file didn't set retain Default()'s values.
	assert.NotZero(t, cfg.Pool.MaxGas)
}

func TestLoadFile_MissingFileReturnsError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}
