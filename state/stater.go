// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/bluescrypto/staking/cache"
	"github.com/bluescrypto/staking/kv"
)

// Stater is the state creator. States created by the same stater share a cache of committed values.
type Stater struct {
	db    kv.Store
	cache *cache.LRU
}

// NewStater create a new stater. A non-positive cacheSize disables caching.
func NewStater(db kv.Store, cacheSize int) *Stater {
	var c *cache.LRU
	if cacheSize > 0 {
		c, _ = cache.NewLRU(cacheSize)
	}
	return &Stater{db, c}
}

// NewState create a new state object.
func (s *Stater) NewState() *State {
	return New(s.db, s.cache)
}

// Commit commits the changes of the state.
func (s *Stater) Commit(st *State) error {
	return st.Stage().Commit(s.db, s.cache)
}

// CacheStats returns hit and miss counters of the committed-value cache.
func (s *Stater) CacheStats() (int64, int64) {
	if s.cache == nil {
		return 0, 0
	}
	return s.cache.Stats()
}
