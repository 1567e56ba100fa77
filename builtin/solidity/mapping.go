// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/blues"
)

type Key interface {
	Bytes() []byte
}

// Index is a numeric mapping key.
type Index uint64

func (i Index) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(i))
}

var (
	errKeyExists   = errors.New("mapping: key already exists")
	errKeyNotFound = errors.New("mapping: key not found")
)

// Mapping is a key/value storage abstraction for built-in programs, similar to the mapping in Solidity.
type Mapping[K Key, V any] struct {
	context *Context
	basePos blues.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos blues.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) blues.Bytes32 {
	return Slot(m.basePos, key.Bytes())
}

// Get returns the value of the key, or the zero value when absent.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		return decodeValue(raw, &value)
	})
	return
}

// Has reports whether a value is stored for the key.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	raw, err := m.context.state.GetRawStorage(m.context.address, m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// Insert stores a value for a key that must not exist yet.
func (m *Mapping[K, V]) Insert(key K, value V) error {
	has, err := m.Has(key)
	if err != nil {
		return err
	}
	if has {
		return errKeyExists
	}
	return m.set(key, value)
}

// Update overwrites the value of an existing key.
func (m *Mapping[K, V]) Update(key K, value V) error {
	has, err := m.Has(key)
	if err != nil {
		return err
	}
	if !has {
		return errKeyNotFound
	}
	return m.set(key, value)
}

// Upsert stores the value regardless of the key's presence.
func (m *Mapping[K, V]) Upsert(key K, value V) error {
	return m.set(key, value)
}

// Delete clears the value of the key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

func (m *Mapping[K, V]) set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
