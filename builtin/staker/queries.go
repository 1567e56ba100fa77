// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/holiman/uint256"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/staker/packages"
	"github.com/bluescrypto/staking/builtin/staker/reverts"
	"github.com/bluescrypto/staking/builtin/staker/stakes"
)

//
// Getters - no state change
//

// Initialized reports whether Initialize has run.
func (s *Staker) Initialized() (bool, error) {
	return s.access.Initialized()
}

// Maintainer returns the stored maintainer identity.
func (s *Staker) Maintainer() (blues.Address, error) {
	return s.access.Maintainer()
}

// IsMaintainer reports whether identity is the maintainer.
func (s *Staker) IsMaintainer(identity blues.Address) (bool, error) {
	return s.access.IsMaintainer(identity)
}

// MaxStakes returns the ledger capacity in effect.
func (s *Staker) MaxStakes() uint32 {
	return s.maxStakes
}

// VaultAddress returns the escrow vault account.
func (s *Staker) VaultAddress() blues.Address {
	return s.vault.Address()
}

// VaultBalance returns the tokens held by the escrow vault.
func (s *Staker) VaultBalance() (uint64, error) {
	return s.vault.Balance()
}

// Packages lists all packages in index order.
func (s *Staker) Packages() ([]*packages.Package, error) {
	return s.packages.All()
}

// Package returns the package at index.
func (s *Staker) Package(index uint32) (*packages.Package, error) {
	return s.getPackage(index)
}

// StakeCount returns the ledger length, which is also the next stake id.
func (s *Staker) StakeCount() (uint64, error) {
	return s.stakes.Len()
}

// GetStake returns the stake with id.
func (s *Staker) GetStake(id uint64) (*stakes.Stake, error) {
	stake, err := s.stakes.Get(id)
	if err != nil {
		return nil, err
	}
	if stake == nil {
		return nil, reverts.Newf(reverts.NonExistentStake, "stake %d does not exist", id)
	}
	return stake, nil
}

// StakesOf returns the ids of every stake opened by staker.
func (s *Staker) StakesOf(staker blues.Address) ([]uint64, error) {
	return s.stakes.IDsOf(staker)
}

// OpenStakes returns the ids of the staker's stakes in the package that are not withdrawn.
func (s *Staker) OpenStakes(staker blues.Address, index uint32) ([]uint64, error) {
	if _, err := s.getPackage(index); err != nil {
		return nil, err
	}
	return s.stakes.OpenIDs(staker, index)
}

// Liabilities returns what the vault owes to all open stakes at the current rates.
func (s *Staker) Liabilities() (*uint256.Int, error) {
	n, err := s.packages.Len()
	if err != nil {
		return nil, err
	}
	total := new(uint256.Int)
	for i := range n {
		pkg, err := s.packages.Get(i)
		if err != nil {
			return nil, err
		}
		open, err := s.packages.OpenTotals(i)
		if err != nil {
			return nil, err
		}
		owed := new(uint256.Int).Mul(uint256.NewInt(open.Units), uint256.NewInt(pkg.RewardRate))
		owed.Add(owed, uint256.NewInt(open.Principal))
		total.Add(total, owed)
	}
	return total, nil
}

// Withdrawable is the preview of a withdrawal.
type Withdrawable struct {
	StakeID    uint64
	Principal  uint64
	Reward     uint64
	Payout     uint64
	UnlockAt   uint64
	Unlocked   bool
	Terminated bool
}

// GetWithdrawable previews what withdrawing stake id at now would pay.
func (s *Staker) GetWithdrawable(id uint64, now uint64) (*Withdrawable, error) {
	stake, err := s.GetStake(id)
	if err != nil {
		return nil, err
	}
	pkg, err := s.getPackage(stake.PackageIndex)
	if err != nil {
		return nil, err
	}
	reward, payout, err := stakes.Reward(stake.Principal, pkg.RewardRate)
	if err != nil {
		return nil, reverts.Wrap(reverts.RewardOverflow, err, "reward does not fit the token range")
	}
	return &Withdrawable{
		StakeID:    id,
		Principal:  stake.Principal,
		Reward:     reward,
		Payout:     payout,
		UnlockAt:   stake.UnlockAt(pkg.Period),
		Unlocked:   stake.Unlocked(pkg.Period, now),
		Terminated: stake.Terminated,
	}, nil
}
