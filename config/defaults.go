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
//
// This file is derived from node/defaults.go. Modified for chainkit.

package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
)

// defaultDataDir mirrors node.DefaultDataDir in the teacher codebase: place
// the data folder under the user's home directory, OS-appropriately.
func defaultDataDir() string {
	dirname := filepath.Base(os.Args[0])
	if dirname == "" {
		dirname = "fuelnoded"
	}
	home := homeDir()
	if home == "" {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", strings.ToUpper(dirname))
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", strings.ToUpper(dirname))
	default:
		return filepath.Join(home, "."+dirname)
	}
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
