// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/cache"
	"github.com/bluescrypto/staking/kv"
	"github.com/bluescrypto/staking/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// storageKey locates a storage slot of an account.
type storageKey struct {
	addr blues.Address
	key  blues.Bytes32
}

func (k storageKey) dbKey() []byte {
	return append(append(make([]byte, 0, blues.AddressLength+32), k.addr[:]...), k.key[:]...)
}

// State manages account storage on top of a kv store. Writes are kept in memory, journaled
// by checkpoints, until staged and committed.
type State struct {
	db    kv.Getter
	cache *cache.LRU // committed values shared with the creator, may be nil
	sm    *stackedmap.StackedMap[storageKey, []byte]
}

// New create state object.
func New(db kv.Getter, cache *cache.LRU) *State {
	s := &State{
		db:    db,
		cache: cache,
	}
	s.sm = stackedmap.New(s.load)
	s.sm.Push()
	return s
}

// load reads a committed value. A missing key yields an empty value.
func (s *State) load(key storageKey) ([]byte, bool, error) {
	k := key.dbKey()
	if s.cache != nil {
		if v, ok := s.cache.Get(string(k)); ok {
			return v.([]byte), true, nil
		}
	}
	v, err := s.db.Get(k)
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, false, err
		}
		v = nil
	}
	if s.cache != nil {
		s.cache.Add(string(k), v)
	}
	return v, true, nil
}

// GetRawStorage returns the raw value of the storage slot, nil if never set.
func (s *State) GetRawStorage(addr blues.Address, key blues.Bytes32) ([]byte, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// SetRawStorage sets the raw value of the storage slot. An empty value clears the slot.
func (s *State) SetRawStorage(addr blues.Address, key blues.Bytes32, value []byte) {
	s.sm.Put(storageKey{addr, key}, bytes.Clone(value))
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr blues.Address, key blues.Bytes32) (blues.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return blues.Bytes32{}, err
	}
	return blues.BytesToBytes32(raw), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr blues.Address, key, value blues.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	s.SetRawStorage(addr, key, value.Bytes())
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by *Error type.
func (s *State) DecodeStorage(addr blues.Address, key blues.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by *Error type.
func (s *State) EncodeStorage(addr blues.Address, key blues.Bytes32, enc func() ([]byte, error)) error {
	data, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, data)
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Stage collects the pending changes so they can be committed in one batch.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey][]byte)
	s.sm.Journal(func(key storageKey, value []byte) bool {
		changes[key] = value
		return true
	})
	return &Stage{changes: changes}
}
