// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin"
	"github.com/bluescrypto/staking/builtin/staker/packages"
	"github.com/bluescrypto/staking/state"
)

// Genesis is the initial configuration of a staking ledger.
type Genesis struct {
	Name       string        `yaml:"name"`
	Mint       string        `yaml:"mint"`
	Maintainer blues.Address `yaml:"maintainer"`
	LaunchTime uint64        `yaml:"launchTime"`
	Packages   []Package     `yaml:"packages"`
	Accounts   []Account     `yaml:"accounts"`
	// Escrow is charged into the vault from the maintainer's account as the initial reward pool.
	Escrow uint64 `yaml:"escrow"`
}

// Package is a staking offer.
type Package struct {
	Name       string        `yaml:"name"`
	MaxDeposit uint64        `yaml:"maxDeposit"`
	Period     time.Duration `yaml:"period"`
	RewardRate uint64        `yaml:"rewardRate"`
}

// Account is an initial token allocation.
type Account struct {
	Address blues.Address `yaml:"address"`
	Balance uint64        `yaml:"balance"`
}

// Load reads and validates a genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return Parse(data)
}

// Parse decodes and validates a genesis document. Unknown fields are rejected.
func Parse(data []byte) (*Genesis, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var gen Genesis
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

// Validate checks the genesis for values the ledger cannot start with.
func (g *Genesis) Validate() error {
	if g.Mint == "" {
		return errors.New("mint must be set")
	}
	if g.Maintainer.IsZero() {
		return errors.New("maintainer must be set")
	}
	if len(g.Packages) == 0 || len(g.Packages) > math.MaxUint8 {
		return fmt.Errorf("expect 1 to %d packages, got %d", math.MaxUint8, len(g.Packages))
	}
	for i, p := range g.Packages {
		if p.Name == "" {
			return fmt.Errorf("package %d: name must be set", i)
		}
		if p.MaxDeposit == 0 {
			return fmt.Errorf("package %q: maxDeposit must be positive", p.Name)
		}
		if p.Period < time.Second || p.Period%time.Second != 0 {
			return fmt.Errorf("package %q: period must be a positive whole number of seconds", p.Name)
		}
	}

	var supply uint64
	seen := make(map[blues.Address]bool)
	for _, a := range g.Accounts {
		if seen[a.Address] {
			return fmt.Errorf("%v: duplicated account", a.Address)
		}
		seen[a.Address] = true
		if a.Balance == 0 {
			return fmt.Errorf("%v: balance must be a non-zero integer", a.Address)
		}
		if supply > math.MaxUint64-a.Balance {
			return errors.New("total allocation overflows")
		}
		supply += a.Balance
	}
	if g.Escrow > 0 {
		var maintainerBalance uint64
		for _, a := range g.Accounts {
			if a.Address == g.Maintainer {
				maintainerBalance = a.Balance
			}
		}
		if maintainerBalance < g.Escrow {
			return fmt.Errorf("escrow %d exceeds the maintainer allocation %d", g.Escrow, maintainerBalance)
		}
	}
	return nil
}

// ID identifies the genesis by the hash of its canonical encoding.
func (g *Genesis) ID() blues.Bytes32 {
	data, err := yaml.Marshal(g)
	if err != nil {
		panic(err) // plain data always encodes
	}
	return blues.Blake2b(data)
}

// StakerPackages converts the offers into registry packages.
func (g *Genesis) StakerPackages() []packages.Package {
	pkgs := make([]packages.Package, 0, len(g.Packages))
	for _, p := range g.Packages {
		pkgs = append(pkgs, packages.Package{
			Name:             p.Name,
			MaxDepositAmount: p.MaxDeposit,
			Period:           uint64(p.Period / time.Second),
			RewardRate:       p.RewardRate,
		})
	}
	return pkgs
}

// Build applies the genesis to an empty state: allocations, registry, maintainer, reward pool.
func (g *Genesis) Build(st *state.State) error {
	tok := builtin.Token.WithState(st)
	for _, a := range g.Accounts {
		if err := tok.Mint(a.Address, a.Balance); err != nil {
			return errors.Wrapf(err, "allocate %v", a.Address)
		}
	}
	s, err := builtin.Staker.WithState(st, g.Mint)
	if err != nil {
		return err
	}
	if err := s.Initialize(g.StakerPackages(), g.Maintainer); err != nil {
		return err
	}
	if g.Escrow > 0 {
		if err := s.ChargeEscrow(g.Maintainer, g.Escrow); err != nil {
			return errors.Wrap(err, "charge initial escrow")
		}
	}
	return nil
}
