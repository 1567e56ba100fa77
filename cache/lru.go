// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU a LRU cache extends golang-lru with hit/miss accounting.
type LRU struct {
	cache     *lru.Cache
	hit, miss atomic.Int64
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU(maxSize int) (*LRU, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: cache}, nil
}

// Loader defines loader to load value.
type Loader func(key any) (any, error)

// Get looks up a key's value from the cache.
func (l *LRU) Get(key any) (any, bool) {
	v, ok := l.cache.Get(key)
	if ok {
		l.hit.Add(1)
	} else {
		l.miss.Add(1)
	}
	return v, ok
}

// Add adds a value to the cache, replacing the older one if any.
func (l *LRU) Add(key, value any) {
	l.cache.Add(key, value)
}

// Remove removes the provided key from the cache.
func (l *LRU) Remove(key any) {
	l.cache.Remove(key)
}

// Len returns the number of items in the cache.
func (l *LRU) Len() int {
	return l.cache.Len()
}

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU) GetOrLoad(key any, loader Loader) (any, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		return nil, err
	}

	l.cache.Add(key, v)
	return v, nil
}

// Stats returns the number of hits and misses.
func (l *LRU) Stats() (hit int64, miss int64) {
	return l.hit.Load(), l.miss.Load()
}
