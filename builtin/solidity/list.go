// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/blues"
)

// ErrIndexOutOfRange is returned when reading past the end of a list.
var ErrIndexOutOfRange = errors.New("list: index out of range")

// List is an append-only array. Elements live in a mapping keyed by position,
// the length in its own slot.
type List[V any] struct {
	length *Raw[uint64]
	items  *Mapping[Index, V]
}

func NewList[V any](context *Context, pos blues.Bytes32) *List[V] {
	return &List[V]{
		length: NewRaw[uint64](context, pos),
		items:  NewMapping[Index, V](context, Slot(pos, []byte("items"))),
	}
}

// Len returns the number of elements.
func (l *List[V]) Len() (uint64, error) {
	return l.length.Get()
}

// Get returns the element at index i.
func (l *List[V]) Get(i uint64) (value V, err error) {
	n, err := l.Len()
	if err != nil {
		return value, err
	}
	if i >= n {
		return value, ErrIndexOutOfRange
	}
	return l.items.Get(Index(i))
}

// Push appends an element and returns its index.
func (l *List[V]) Push(value V) (uint64, error) {
	n, err := l.Len()
	if err != nil {
		return 0, err
	}
	if err := l.items.Insert(Index(n), value); err != nil {
		return 0, errors.Wrap(err, "push")
	}
	if err := l.length.Upsert(n + 1); err != nil {
		return 0, err
	}
	return n, nil
}

// Set overwrites the element at index i.
func (l *List[V]) Set(i uint64, value V) error {
	n, err := l.Len()
	if err != nil {
		return err
	}
	if i >= n {
		return ErrIndexOutOfRange
	}
	return l.items.Update(Index(i), value)
}
