// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/token"
	"github.com/bluescrypto/staking/lvldb"
	"github.com/bluescrypto/staking/state"
)

func TestVault(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	tok := token.New(blues.TokenProgram, state.New(db, nil))
	staker := blues.BytesToAddress([]byte("staker"))
	require.NoError(t, tok.Mint(staker, 1_000))

	v, err := New(tok, "BLUES")
	require.NoError(t, err)
	assert.Equal(t, blues.DeriveAddress(blues.StakingProgram, []byte(Seed), []byte("BLUES")), v.Address())

	require.NoError(t, v.Deposit(staker, 800))
	bal, err := v.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(800), bal)

	assert.ErrorIs(t, v.Deposit(staker, 201), token.ErrInsufficientBalance)
	assert.ErrorIs(t, tok.Transfer(v.Address(), staker, 1), token.ErrDerivedAccount)

	require.NoError(t, v.Release(staker, 300))
	bal, err = v.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(500), bal)

	assert.ErrorIs(t, v.Release(staker, 501), token.ErrInsufficientBalance)

	other, err := New(tok, "OTHER")
	require.NoError(t, err)
	assert.NotEqual(t, v.Address(), other.Address())
}
