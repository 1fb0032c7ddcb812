// Copyright 2018 The klaytn Authors
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

// Package common supplies the small shared primitives used across the pool:
// a thin LRU cache wrapper, trimmed from the teacher's common/cache.go down
// to the single backing policy the spec actually calls for (§4.1's "bounded
// LRU-style cache"). The teacher's ARC and shard-cache variants existed to
// serve high-throughput account/state caches that have no counterpart in
// this module's scope, so they are dropped rather than carried unused — see
// DESIGN.md.
package common

import (
	lru "github.com/hashicorp/golang-lru"
)

// Cache is a minimal bounded key/value cache interface.
type Cache interface {
	Add(key interface{}, value interface{}) (evicted bool)
	Get(key interface{}) (value interface{}, ok bool)
	Contains(key interface{}) bool
	Remove(key interface{})
	Purge()
	Len() int
}

type lruCache struct {
	lru *lru.Cache
}

// NewLRUCache builds a Cache backed by github.com/hashicorp/golang-lru,
// sized to hold size entries before evicting the oldest.
func NewLRUCache(size int) (Cache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &lruCache{lru: c}, nil
}

func (c *lruCache) Add(key, value interface{}) (evicted bool) { return c.lru.Add(key, value) }
func (c *lruCache) Get(key interface{}) (interface{}, bool)   { return c.lru.Get(key) }
func (c *lruCache) Contains(key interface{}) bool             { return c.lru.Contains(key) }
func (c *lruCache) Remove(key interface{})                    { c.lru.Remove(key) }
func (c *lruCache) Purge()                                    { c.lru.Purge() }
func (c *lruCache) Len() int                                  { return c.lru.Len() }
