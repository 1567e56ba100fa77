// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluescrypto/staking/builtin"
	"github.com/bluescrypto/staking/lvldb"
	"github.com/bluescrypto/staking/state"
)

const sample = `
name: sample
mint: BLUES
maintainer: "0x000000000000000000000000000000000000beef"
launchTime: 1700000000
packages:
  - name: BLUES Pebble Pounch
    maxDeposit: 100000000
    period: 720h
    rewardRate: 164
accounts:
  - address: "0x000000000000000000000000000000000000beef"
    balance: 5000000
  - address: "0x0000000000000000000000000000000000000001"
    balance: 1000000
escrow: 2000000
`

func TestParse(t *testing.T) {
	gen, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "BLUES", gen.Mint)
	assert.Equal(t, "0x000000000000000000000000000000000000beef", gen.Maintainer.String())
	pkgs := gen.StakerPackages()
	require.Len(t, pkgs, 1)
	assert.Equal(t, uint64(2_592_000), pkgs[0].Period)
	assert.Equal(t, uint64(164), pkgs[0].RewardRate)
	assert.Len(t, gen.Accounts, 2)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	gen, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sample", gen.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Genesis)
		errMsg string
	}{
		{"no mint", func(g *Genesis) { g.Mint = "" }, "mint must be set"},
		{"no packages", func(g *Genesis) { g.Packages = nil }, "expect 1 to 255 packages"},
		{"empty name", func(g *Genesis) { g.Packages[0].Name = "" }, "name must be set"},
		{"zero cap", func(g *Genesis) { g.Packages[0].MaxDeposit = 0 }, "maxDeposit must be positive"},
		{"sub-second period", func(g *Genesis) { g.Packages[0].Period = 1500 * time.Millisecond }, "whole number of seconds"},
		{"zero balance", func(g *Genesis) { g.Accounts[1].Balance = 0 }, "non-zero"},
		{"duplicated account", func(g *Genesis) { g.Accounts[1].Address = g.Accounts[0].Address }, "duplicated"},
		{"escrow too large", func(g *Genesis) { g.Escrow = 1 << 62 }, "exceeds the maintainer allocation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewDevnet()
			tt.mutate(gen)
			err := gen.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := Parse([]byte("mint: BLUES\nunknown: 1\n"))
	assert.Error(t, err)
}

func TestDevnet(t *testing.T) {
	gen := NewDevnet()
	require.NoError(t, gen.Validate())
	assert.Equal(t, gen.ID(), NewDevnet().ID())

	other := NewDevnet()
	other.Packages[0].RewardRate = 21
	assert.NotEqual(t, gen.ID(), other.ID())

	pkgs := gen.StakerPackages()
	require.Len(t, pkgs, 3)
	assert.Equal(t, uint64(30*86400), pkgs[0].Period)
	assert.Equal(t, uint64(60*86400), pkgs[1].Period)
	assert.Equal(t, uint64(90*86400), pkgs[2].Period)
	assert.Equal(t, uint64(45), pkgs[2].RewardRate)
}

func TestBuild(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gen := NewDevnet()
	st := state.New(db, nil)
	require.NoError(t, gen.Build(st))

	s, err := builtin.Staker.WithState(st, gen.Mint)
	require.NoError(t, err)

	m, err := s.Maintainer()
	require.NoError(t, err)
	assert.Equal(t, DevAccounts()[0], m)

	bal, err := s.VaultBalance()
	require.NoError(t, err)
	assert.Equal(t, gen.Escrow, bal)

	all, err := s.Packages()
	require.NoError(t, err)
	assert.Equal(t, "Burrower's Bounty", all[2].Name)

	supply, err := builtin.Token.WithState(st).TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000_000), supply)

	// a second build hits the initialized registry
	assert.Error(t, gen.Build(st))
}
