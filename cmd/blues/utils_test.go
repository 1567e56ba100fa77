// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/bluescrypto/staking/builtin/staker"
	"github.com/bluescrypto/staking/builtin/token"
	"github.com/bluescrypto/staking/genesis"
)

func newContext(t *testing.T, dataDir string, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String(dataDirFlag.Name, dataDir, "")
	set.String(genesisFlag.Name, "", "")
	set.Int(cacheFlag.Name, 128, "")
	set.Uint64(verbosityFlag.Name, 0, "")
	set.Bool(jsonLogsFlag.Name, false, "")
	set.String(callerFlag.Name, "", "")
	set.String(toFlag.Name, "", "")
	set.Uint64(packageFlag.Name, 0, "")
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestOpenLedger(t *testing.T) {
	dir := t.TempDir()

	ldg, err := openLedger(newContext(t, dir))
	require.NoError(t, err)
	gen := ldg.Genesis()
	_, err = ldg.Stake(genesis.DevAccounts()[1], 0, 500)
	require.NoError(t, err)
	instanceDir := ldg.dir
	ldg.close()

	assert.Equal(t, dir, filepath.Dir(instanceDir))
	assert.DirExists(t, filepath.Join(instanceDir, "main.db"))
	assert.FileExists(t, filepath.Join(instanceDir, "events.db"))

	ldg, err = openLedger(newContext(t, dir))
	require.NoError(t, err)
	defer ldg.close()
	assert.Equal(t, gen.ID(), ldg.Genesis().ID())
	assert.Equal(t, 500, int(lockedIn(t, ldg, 0)))
}

func TestCustomGenesis(t *testing.T) {
	dir := t.TempDir()

	gen := genesis.NewDevnet()
	gen.Name = "custom"
	gen.Packages = gen.Packages[:1]
	data, err := yaml.Marshal(gen)
	require.NoError(t, err)
	path := filepath.Join(dir, "genesis.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	ldg, err := openLedger(newContext(t, dir, "--genesis", path))
	require.NoError(t, err)
	defer ldg.close()
	assert.Equal(t, "custom", ldg.Genesis().Name)
	assert.NotEqual(t, genesis.NewDevnet().ID(), ldg.Genesis().ID())

	_, err = openLedger(newContext(t, dir, "--genesis", filepath.Join(dir, "missing.yaml")))
	assert.Error(t, err)
}

func TestFlagValues(t *testing.T) {
	ctx := newContext(t, t.TempDir(), "--caller", "0x00000000000000000000000000000000000000aa", "--to", "bogus", "--package", "4294967296")

	caller, err := addressFlagValue(ctx, callerFlag)
	require.NoError(t, err)
	assert.Equal(t, byte(0xaa), caller[19])

	_, err = addressFlagValue(ctx, toFlag)
	assert.Error(t, err)

	_, err = addressFlagValue(newContext(t, t.TempDir()), callerFlag)
	assert.EqualError(t, err, "--caller is required")

	_, err = packageIndex(ctx)
	assert.Error(t, err)
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("HOME", "/home/blues")
	assert.Contains(t, defaultDataDir(), "/home/blues")
}

func lockedIn(t *testing.T, ldg *ledger, index uint32) uint64 {
	var locked uint64
	require.NoError(t, ldg.View(func(s *staker.Staker, _ *token.Token) error {
		p, err := s.Package(index)
		if err != nil {
			return err
		}
		locked = p.TotalLockedAmount
		return nil
	}))
	return locked
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, minCacheSlots, normalizeCacheSize(0))
	assert.Equal(t, 4096, normalizeCacheSize(4096))
}
