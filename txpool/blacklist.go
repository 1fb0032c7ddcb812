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

package txpool

import "gopkg.in/fatih/set.v0"

// ResourceKey is anything a collision or blacklist entry can be keyed on:
// a coin outpoint, a contract id, or a message nonce, pre-encoded to a
// comparable string the way the teacher keys its sets on hash strings
// (§4.3, Supplemented blacklist in SPEC_FULL.md §4.6).
type ResourceKey string

// Blacklist answers whether a resource a transaction touches is banned from
// admission. spec.md names "blacklisted" as a rejection reason without
// specifying its source; original_source's pool resolves this via a
// configured set of banned ids, modelled here the same way CollisionManager
// keys its resource sets (§4.6 Supplemented).
type Blacklist interface {
	Contains(key ResourceKey) bool
}

// setBlacklist is a simple in-memory Blacklist backed by fatih/set, the same
// library the collision manager uses for its per-resource subscriber sets.
type setBlacklist struct {
	banned *set.Set
}

// NewBlacklist builds a Blacklist from a fixed list of banned resource keys.
func NewBlacklist(keys ...ResourceKey) Blacklist {
	s := set.New()
	for _, k := range keys {
		s.Add(string(k))
	}
	return &setBlacklist{banned: s}
}

func (b *setBlacklist) Contains(key ResourceKey) bool {
	return b.banned.Has(string(key))
}

// emptyBlacklist never rejects anything; used where no Blacklist is
// configured.
type emptyBlacklist struct{}

func (emptyBlacklist) Contains(ResourceKey) bool { return false }

// NoBlacklist is the default Blacklist when the node operator configures none.
var NoBlacklist Blacklist = emptyBlacklist{}
