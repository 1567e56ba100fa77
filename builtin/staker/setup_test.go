// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/staker/packages"
	"github.com/bluescrypto/staking/builtin/token"
	"github.com/bluescrypto/staking/builtin/vault"
	"github.com/bluescrypto/staking/lvldb"
	"github.com/bluescrypto/staking/state"
)

const (
	thirtyDays = uint64(2_592_000)
	t0         = uint64(1_700_000_000)
)

var (
	maintainer = blues.BytesToAddress([]byte("maintainer"))
	alice      = blues.BytesToAddress([]byte("alice"))
	bob        = blues.BytesToAddress([]byte("bob"))
	funder     = blues.BytesToAddress([]byte("funder"))
)

type testEnv struct {
	state  *state.State
	token  *token.Token
	vault  *vault.Vault
	staker *Staker
}

func newTestEnv(t *testing.T, pkgs ...packages.Package) *testEnv {
	env := newUninitialized(t)
	if len(pkgs) == 0 {
		pkgs = []packages.Package{{
			Name:             "reference",
			MaxDepositAmount: 100_000_000,
			Period:           thirtyDays,
			RewardRate:       164,
		}}
	}
	require.NoError(t, env.staker.Initialize(pkgs, maintainer))
	return env
}

func newUninitialized(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, nil)
	tok := token.New(blues.TokenProgram, st)
	v, err := vault.New(tok, "BLUES")
	require.NoError(t, err)

	for _, acc := range []blues.Address{alice, bob, funder} {
		require.NoError(t, tok.Mint(acc, 1_000_000_000))
	}
	return &testEnv{state: st, token: tok, vault: v, staker: New(blues.StakingProgram, st, v)}
}

func (e *testEnv) balance(t *testing.T, addr blues.Address) uint64 {
	bal, err := e.token.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func (e *testEnv) vaultBalance(t *testing.T) uint64 {
	bal, err := e.staker.VaultBalance()
	require.NoError(t, err)
	return bal
}

func (e *testEnv) pkg(t *testing.T, index uint32) *packages.Package {
	p, err := e.staker.Package(index)
	require.NoError(t, err)
	return p
}

// brokenVault refuses transfers in the configured direction and counts attempts.
type brokenVault struct {
	Vault
	failDeposit bool
	failRelease bool
	calls       int
}

var errVaultDown = errors.New("vault unavailable")

func (b *brokenVault) Deposit(from blues.Address, amount uint64) error {
	b.calls++
	if b.failDeposit {
		return errVaultDown
	}
	return b.Vault.Deposit(from, amount)
}

func (b *brokenVault) Release(to blues.Address, amount uint64) error {
	b.calls++
	if b.failRelease {
		return errVaultDown
	}
	return b.Vault.Release(to, amount)
}
