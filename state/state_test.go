// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/kv"
	"github.com/bluescrypto/staking/lvldb"
)

func newStater(t *testing.T) (*Stater, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStater(db, 128), db
}

func TestStateStorage(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()

	addr := blues.BytesToAddress([]byte("acc"))
	key := blues.BytesToBytes32([]byte("key"))
	value := blues.BytesToBytes32([]byte("value"))

	v, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	st.SetStorage(addr, key, value)
	v, err = st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, value, v)

	// another state does not see uncommitted writes
	v, err = stater.NewState().GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	require.NoError(t, stater.Commit(st))

	v, err = stater.NewState().GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, value, v)
}

func TestStateCheckpoint(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()

	addr := blues.BytesToAddress([]byte("acc"))
	key := blues.BytesToBytes32([]byte("key"))

	st.SetStorage(addr, key, blues.BytesToBytes32([]byte{1}))
	cp := st.NewCheckpoint()
	st.SetStorage(addr, key, blues.BytesToBytes32([]byte{2}))
	st.SetStorage(addr, blues.BytesToBytes32([]byte("other")), blues.BytesToBytes32([]byte{3}))

	st.RevertTo(cp)

	v, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, blues.BytesToBytes32([]byte{1}), v)
	assert.Equal(t, 1, st.Stage().Len())

	// reverting everything still leaves a writable state
	st.RevertTo(0)
	assert.Equal(t, 0, st.Stage().Len())
	st.SetStorage(addr, key, blues.BytesToBytes32([]byte{4}))
	assert.Equal(t, 1, st.Stage().Len())
}

func TestStateEncodeDecode(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()

	addr := blues.BytesToAddress([]byte("acc"))
	key := blues.BytesToBytes32([]byte("rec"))

	type record struct {
		Name   string
		Amount uint64
	}

	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&record{"pebble", 42})
	}))

	var got record
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	}))
	assert.Equal(t, record{"pebble", 42}, got)

	err := st.EncodeStorage(addr, key, func() ([]byte, error) { return nil, errors.New("enc") })
	var stateErr *Error
	assert.ErrorAs(t, err, &stateErr)
	assert.EqualError(t, err, "state: enc")

	err = st.DecodeStorage(addr, key, func([]byte) error { return errors.New("dec") })
	assert.ErrorAs(t, err, &stateErr)
}

func TestCommitClearsSlot(t *testing.T) {
	stater, db := newStater(t)
	addr := blues.BytesToAddress([]byte("acc"))
	key := blues.BytesToBytes32([]byte("key"))

	st := stater.NewState()
	st.SetStorage(addr, key, blues.BytesToBytes32([]byte{9}))
	require.NoError(t, stater.Commit(st))

	st = stater.NewState()
	st.SetStorage(addr, key, blues.Bytes32{})
	require.NoError(t, stater.Commit(st))

	_, err := db.Get(storageKey{addr, key}.dbKey())
	assert.True(t, db.IsNotFound(err))

	v, err := stater.NewState().GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

type failingStore struct {
	*lvldb.LevelDB
}

func (f failingStore) Get([]byte) ([]byte, error) { return nil, errors.New("io error") }

type failingBatch struct{ kv.Batch }

func (failingBatch) Write() error { return errors.New("disk full") }

type failingWriteStore struct {
	*lvldb.LevelDB
}

func (f failingWriteStore) NewBatch() kv.Batch { return failingBatch{f.LevelDB.NewBatch()} }

func TestStateErrors(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := New(failingStore{db}, nil)
	_, err = st.GetStorage(blues.Address{}, blues.Bytes32{})
	assert.EqualError(t, err, "state: io error")

	stater := NewStater(failingWriteStore{db}, 16)
	st = stater.NewState()
	st.SetStorage(blues.Address{1}, blues.Bytes32{1}, blues.Bytes32{1})
	assert.ErrorContains(t, stater.Commit(st), "disk full")

	v, err := stater.NewState().GetStorage(blues.Address{1}, blues.Bytes32{1})
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}
