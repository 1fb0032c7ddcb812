// Copyright 2018 The klaytn Authors
// Copyright 2016 The go-ethereum Authors
// This file is part of go-ethereum.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultDataDir_NonEmptyWhenHomeResolves(t *testing.T) {
	dir := defaultDataDir()
	if homeDir() == "" {
		t.Skip("no resolvable home directory in this environment")
	}
	assert.NotEmpty(t, dir)
}

func TestHomeDir_PrefersHOMEEnvVar(t *testing.T) {
	t.Setenv("HOME", "/tmp/fuelnoded-home-test")
	assert.Equal(t, "/tmp/fuelnoded-home-test", homeDir())
}
