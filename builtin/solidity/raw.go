// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/bluescrypto/staking/blues"
)

// Raw stores a single RLP encoded value at a fixed position.
type Raw[V any] struct {
	context *Context
	pos     blues.Bytes32
}

func NewRaw[V any](context *Context, pos blues.Bytes32) *Raw[V] {
	return &Raw[V]{context: context, pos: pos}
}

// Get returns the stored value, or the zero value when the slot is empty.
// For pointer types an allocated zero value is returned instead of nil.
func (r *Raw[V]) Get() (value V, err error) {
	err = r.context.state.DecodeStorage(r.context.address, r.pos, func(raw []byte) error {
		return decodeValue(raw, &value)
	})
	return
}

// Upsert writes the value whether or not the slot was set before.
func (r *Raw[V]) Upsert(value V) error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// IsEmpty reports whether the slot was never written.
func (r *Raw[V]) IsEmpty() (bool, error) {
	raw, err := r.context.state.GetRawStorage(r.context.address, r.pos)
	if err != nil {
		return false, err
	}
	return len(raw) == 0, nil
}

func decodeValue[V any](raw []byte, value *V) error {
	if t := reflect.TypeOf(*value); t != nil && t.Kind() == reflect.Ptr {
		*value = reflect.New(t.Elem()).Interface().(V)
	}
	if len(raw) == 0 {
		return nil
	}
	return rlp.DecodeBytes(raw, value)
}
