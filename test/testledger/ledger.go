// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testledger builds in-memory ledgers for tests of the outer layers.
package testledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/genesis"
	"github.com/bluescrypto/staking/logdb"
	"github.com/bluescrypto/staking/lvldb"
	"github.com/bluescrypto/staking/runtime"
)

// Ledger is a devnet ledger driven by a manual clock.
type Ledger struct {
	*runtime.Runtime
	Clock *runtime.ManualClock
}

// New returns a ledger built from the devnet genesis. Its storage is released when t ends.
func New(t testing.TB) *Ledger {
	return NewWithGenesis(t, genesis.NewDevnet())
}

// NewWithGenesis returns a ledger built from gen.
func NewWithGenesis(t testing.TB, gen *genesis.Genesis) *Ledger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logDB.Close() })

	clock := runtime.NewManualClock(gen.LaunchTime)
	rt, err := runtime.New(db, logDB, gen, clock, runtime.Options{CacheSize: 1024})
	require.NoError(t, err)
	return &Ledger{Runtime: rt, Clock: clock}
}

// Maintainer returns the maintainer of the devnet.
func (l *Ledger) Maintainer() blues.Address {
	return l.Genesis().Maintainer
}

// Account returns the i-th funded devnet account. Account 0 is the maintainer.
func (l *Ledger) Account(i int) blues.Address {
	return genesis.DevAccounts()[i]
}
