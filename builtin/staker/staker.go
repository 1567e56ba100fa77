// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staker implements the staking engine: deposits into time-locked packages,
// withdrawals with a fixed-rate reward, and the maintainer's escrow controls.
//
// Every mutating operation validates first, then moves tokens through the vault, then
// records the ledger change. A failing operation reverts the state to where it started.
package staker

import (
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/solidity"
	"github.com/bluescrypto/staking/builtin/staker/access"
	"github.com/bluescrypto/staking/builtin/staker/packages"
	"github.com/bluescrypto/staking/builtin/staker/reverts"
	"github.com/bluescrypto/staking/builtin/staker/stakes"
	"github.com/bluescrypto/staking/log"
	"github.com/bluescrypto/staking/state"
)

var (
	logger = log.WithContext("pkg", "staker")

	MaxStakes = solidity.NewConfigVariable("staker-max-stakes", blues.DefaultMaxStakes)
)

func SetLogger(l log.Logger) {
	logger = l
}

// Vault moves tokens into and out of the program controlled reserve.
type Vault interface {
	Address() blues.Address
	Balance() (uint64, error)
	Deposit(from blues.Address, amount uint64) error
	Release(to blues.Address, amount uint64) error
}

// Staker is the staking engine bound to one state.
type Staker struct {
	state     *state.State
	vault     Vault
	maxStakes uint32

	access   *access.Controller
	packages *packages.Service
	stakes   *stakes.Service
}

// New create a new instance.
func New(addr blues.Address, state *state.State, vault Vault) *Staker {
	sctx := solidity.NewContext(addr, state)
	return &Staker{
		state:     state,
		vault:     vault,
		maxStakes: MaxStakes.Override(sctx),
		access:    access.New(sctx),
		packages:  packages.New(sctx),
		stakes:    stakes.New(sctx),
	}
}

// Withdrawal is the outcome of a successful withdraw.
type Withdrawal struct {
	StakeID      uint64
	PackageIndex uint32
	Principal    uint64
	Reward       uint64
	Payout       uint64
}

// Initialize populates the registry and records the maintainer. It succeeds once.
func (s *Staker) Initialize(pkgs []packages.Package, maintainer blues.Address) error {
	return s.atomic("initialize", func() error {
		ok, err := s.access.Initialized()
		if err != nil {
			return err
		}
		if ok {
			return reverts.New(reverts.AlreadyInitialized, "staking storage is already initialized")
		}
		if err := s.packages.Populate(pkgs); err != nil {
			return err
		}
		if err := s.access.Setup(maintainer); err != nil {
			return err
		}
		logger.Info("staking initialized", "packages", len(pkgs), "maintainer", maintainer)
		return nil
	})
}

// Stake locks amount of the staker's tokens into the package and returns the new stake id.
func (s *Staker) Stake(staker blues.Address, index uint32, amount uint64, now uint64) (id uint64, err error) {
	err = s.atomic("stake", func() error {
		if err := s.requireInitialized(); err != nil {
			return err
		}
		pkg, err := s.getPackage(index)
		if err != nil {
			return err
		}
		if !pkg.Accepts(amount) {
			return reverts.Newf(reverts.InvalidDepositAmount,
				"deposit %d exceeds remaining capacity %d of package %d", amount, pkg.Remaining(), index)
		}
		count, err := s.stakes.Len()
		if err != nil {
			return err
		}
		if count >= uint64(s.maxStakes) {
			return reverts.Newf(reverts.LedgerFull, "ledger holds the maximum of %d stakes", s.maxStakes)
		}

		if err := s.vault.Deposit(staker, amount); err != nil {
			return transferError(err, "deposit into vault")
		}

		if err := s.packages.Lock(index, pkg, amount); err != nil {
			return err
		}
		if err := s.packages.Opened(index, amount); err != nil {
			return err
		}
		id, err = s.stakes.Add(&stakes.Stake{
			Staker:       staker,
			PackageIndex: index,
			Principal:    amount,
			OpenedAt:     now,
		})
		if err != nil {
			return err
		}
		logger.Debug("staked", "stakeID", id, "staker", staker, "package", index, "amount", amount)
		return nil
	})
	return
}

// Withdraw pays principal plus reward of an unlocked stake back to its staker.
func (s *Staker) Withdraw(caller blues.Address, id uint64, now uint64) (w *Withdrawal, err error) {
	err = s.atomic("withdraw", func() error {
		if err := s.requireInitialized(); err != nil {
			return err
		}
		stake, err := s.stakes.Get(id)
		if err != nil {
			return err
		}
		if stake == nil {
			return reverts.Newf(reverts.NonExistentStake, "stake %d does not exist", id)
		}
		if stake.Staker != caller {
			return reverts.Newf(reverts.NeverStaked, "stake %d does not belong to %v", id, caller)
		}
		if stake.Terminated {
			return reverts.Newf(reverts.AlreadyTerminated, "stake %d is already withdrawn", id)
		}
		pkg, err := s.packages.Get(stake.PackageIndex)
		if err != nil {
			return err
		}
		if pkg == nil {
			return errors.Errorf("stake %d refers to missing package %d", id, stake.PackageIndex)
		}
		if !stake.Unlocked(pkg.Period, now) {
			return reverts.Newf(reverts.LockTimeNotElapsed,
				"stake %d unlocks at %d, now is %d", id, stake.UnlockAt(pkg.Period), now)
		}
		reward, payout, err := stakes.Reward(stake.Principal, pkg.RewardRate)
		if err != nil {
			return reverts.Wrap(reverts.RewardOverflow, err, "reward does not fit the token range")
		}

		if err := s.vault.Release(caller, payout); err != nil {
			return transferError(err, "release from vault")
		}

		if err := s.stakes.Terminate(id, stake); err != nil {
			return err
		}
		if err := s.packages.Closed(stake.PackageIndex, stake.Principal); err != nil {
			return err
		}
		w = &Withdrawal{
			StakeID:      id,
			PackageIndex: stake.PackageIndex,
			Principal:    stake.Principal,
			Reward:       reward,
			Payout:       payout,
		}
		logger.Debug("withdrawn", "stakeID", id, "staker", caller, "payout", payout)
		return nil
	})
	return
}

// ChargeEscrow tops up the vault. Anyone may fund it.
func (s *Staker) ChargeEscrow(funder blues.Address, amount uint64) error {
	return s.atomic("chargeEscrow", func() error {
		if err := s.requireInitialized(); err != nil {
			return err
		}
		if err := s.vault.Deposit(funder, amount); err != nil {
			return transferError(err, "charge vault")
		}
		logger.Debug("escrow charged", "funder", funder, "amount", amount)
		return nil
	})
}

// ReleaseEscrow moves vault funds to destination. Restricted to the maintainer and
// not bounded by what the vault owes to open stakes.
func (s *Staker) ReleaseEscrow(caller, destination blues.Address, amount uint64) error {
	return s.atomic("releaseEscrow", func() error {
		if err := s.requireMaintainer(caller); err != nil {
			return err
		}
		if err := s.vault.Release(destination, amount); err != nil {
			return transferError(err, "release from vault")
		}
		logger.Info("escrow released", "destination", destination, "amount", amount)
		return nil
	})
}

// ChangeRewardRate sets the package's reward rate and returns the previous one.
// Open stakes are paid at the rate in force when they are withdrawn.
func (s *Staker) ChangeRewardRate(caller blues.Address, index uint32, rate uint64) (previous uint64, err error) {
	err = s.atomic("changeRewardRate", func() error {
		if err := s.requireMaintainer(caller); err != nil {
			return err
		}
		pkg, err := s.getPackage(index)
		if err != nil {
			return err
		}
		previous = pkg.RewardRate
		if err := s.packages.SetRewardRate(index, pkg, rate); err != nil {
			return err
		}
		logger.Info("reward rate changed", "package", index, "from", previous, "to", rate)
		return nil
	})
	return
}

// atomic runs fn inside a checkpoint and reverts the state if fn fails.
func (s *Staker) atomic(op string, fn func() error) error {
	cp := s.state.NewCheckpoint()
	if err := fn(); err != nil {
		s.state.RevertTo(cp)
		if reverts.IsRevertErr(err) {
			logger.Debug("operation reverted", "op", op, "err", err)
		} else {
			logger.Error("operation failed", "op", op, "err", err)
		}
		return err
	}
	return nil
}

func (s *Staker) requireInitialized() error {
	ok, err := s.access.Initialized()
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(reverts.NotInitialized, "staking storage is not initialized")
	}
	return nil
}

func (s *Staker) requireMaintainer(caller blues.Address) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}
	ok, err := s.access.IsMaintainer(caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Newf(reverts.Unauthorized, "%v is not the maintainer", caller)
	}
	return nil
}

// getPackage returns the package at index or an InvalidPackageIndex revert.
func (s *Staker) getPackage(index uint32) (*packages.Package, error) {
	pkg, err := s.packages.Get(index)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		n, err := s.packages.Len()
		if err != nil {
			return nil, err
		}
		return nil, reverts.Newf(reverts.InvalidPackageIndex, "package %d does not exist, %d packages", index, n)
	}
	return pkg, nil
}

// transferError classifies a vault failure: storage faults pass through, refusals revert.
func transferError(err error, msg string) error {
	var se *state.Error
	if errors.As(err, &se) {
		return err
	}
	return reverts.Wrap(reverts.TransferFailed, err, msg)
}
