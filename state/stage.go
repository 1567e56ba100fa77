// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/cache"
	"github.com/bluescrypto/staking/kv"
)

// Stage abstracts the changes of a state, ready to be written.
type Stage struct {
	changes map[storageKey][]byte
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes into the store with a single batch, so either all of them
// become durable or none does. The cache is refreshed only after a successful write.
func (s *Stage) Commit(store kv.Store, cache *cache.LRU) error {
	if len(s.changes) == 0 {
		return nil
	}
	batch := store.NewBatch()
	for key, value := range s.changes {
		var err error
		if len(value) == 0 {
			err = batch.Delete(key.dbKey())
		} else {
			err = batch.Put(key.dbKey(), value)
		}
		if err != nil {
			return errors.Wrap(err, "stage")
		}
	}
	if err := batch.Write(); err != nil {
		if cache != nil {
			// outcome of the write is unknown, make later reads go to the store
			for key := range s.changes {
				cache.Remove(string(key.dbKey()))
			}
		}
		return errors.Wrap(err, "commit stage")
	}
	if cache != nil {
		for key, value := range s.changes {
			if len(value) == 0 {
				value = nil
			}
			cache.Add(string(key.dbKey()), value)
		}
	}
	return nil
}
