// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api holds the JSON shapes served by the REST handlers.
package api

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/staker"
	"github.com/bluescrypto/staking/builtin/staker/packages"
	"github.com/bluescrypto/staking/builtin/staker/stakes"
	"github.com/bluescrypto/staking/logdb"
)

type Package struct {
	Index       uint32              `json:"index"`
	Name        string              `json:"name"`
	MaxDeposit  math.HexOrDecimal64 `json:"maxDeposit"`
	TotalLocked math.HexOrDecimal64 `json:"totalLocked"`
	Remaining   math.HexOrDecimal64 `json:"remaining"`
	Period      uint64              `json:"period"`
	RewardRate  uint64              `json:"rewardRate"`
}

func ConvertPackage(index uint32, p *packages.Package) *Package {
	return &Package{
		Index:       index,
		Name:        p.Name,
		MaxDeposit:  math.HexOrDecimal64(p.MaxDepositAmount),
		TotalLocked: math.HexOrDecimal64(p.TotalLockedAmount),
		Remaining:   math.HexOrDecimal64(p.Remaining()),
		Period:      p.Period,
		RewardRate:  p.RewardRate,
	}
}

type Stake struct {
	ID           uint64              `json:"id"`
	Staker       blues.Address       `json:"staker"`
	PackageIndex uint32              `json:"packageIndex"`
	Principal    math.HexOrDecimal64 `json:"principal"`
	OpenedAt     uint64              `json:"openedAt"`
	Terminated   bool                `json:"terminated"`
	Withdrawable *Withdrawable       `json:"withdrawable,omitempty"`
}

func ConvertStake(id uint64, s *stakes.Stake) *Stake {
	return &Stake{
		ID:           id,
		Staker:       s.Staker,
		PackageIndex: s.PackageIndex,
		Principal:    math.HexOrDecimal64(s.Principal),
		OpenedAt:     s.OpenedAt,
		Terminated:   s.Terminated,
	}
}

// Withdrawable previews a withdrawal at the current time.
type Withdrawable struct {
	Reward   math.HexOrDecimal64 `json:"reward"`
	Payout   math.HexOrDecimal64 `json:"payout"`
	UnlockAt uint64              `json:"unlockAt"`
	Unlocked bool                `json:"unlocked"`
}

func ConvertWithdrawable(w *staker.Withdrawable) *Withdrawable {
	return &Withdrawable{
		Reward:   math.HexOrDecimal64(w.Reward),
		Payout:   math.HexOrDecimal64(w.Payout),
		UnlockAt: w.UnlockAt,
		Unlocked: w.Unlocked,
	}
}

type StakeRequest struct {
	PackageIndex uint32              `json:"packageIndex"`
	Amount       math.HexOrDecimal64 `json:"amount"`
}

type StakeResult struct {
	ID uint64 `json:"id"`
}

type Withdrawal struct {
	StakeID      uint64              `json:"stakeId"`
	PackageIndex uint32              `json:"packageIndex"`
	Principal    math.HexOrDecimal64 `json:"principal"`
	Reward       math.HexOrDecimal64 `json:"reward"`
	Payout       math.HexOrDecimal64 `json:"payout"`
}

func ConvertWithdrawal(w *staker.Withdrawal) *Withdrawal {
	return &Withdrawal{
		StakeID:      w.StakeID,
		PackageIndex: w.PackageIndex,
		Principal:    math.HexOrDecimal64(w.Principal),
		Reward:       math.HexOrDecimal64(w.Reward),
		Payout:       math.HexOrDecimal64(w.Payout),
	}
}

type RateRequest struct {
	RewardRate uint64 `json:"rewardRate"`
}

type RateResult struct {
	Previous uint64 `json:"previous"`
	Current  uint64 `json:"current"`
}

// Escrow describes the vault and what it owes.
type Escrow struct {
	Vault       blues.Address         `json:"vault"`
	Maintainer  blues.Address         `json:"maintainer"`
	Balance     math.HexOrDecimal64   `json:"balance"`
	Liabilities *math.HexOrDecimal256 `json:"liabilities"`
	Solvent     bool                  `json:"solvent"`
}

func ConvertEscrow(vault, maintainer blues.Address, balance uint64, liabilities *uint256.Int) *Escrow {
	return &Escrow{
		Vault:       vault,
		Maintainer:  maintainer,
		Balance:     math.HexOrDecimal64(balance),
		Liabilities: (*math.HexOrDecimal256)(liabilities.ToBig()),
		Solvent:     liabilities.CmpUint64(balance) <= 0,
	}
}

type ChargeRequest struct {
	Amount math.HexOrDecimal64 `json:"amount"`
}

type ReleaseRequest struct {
	Destination blues.Address       `json:"destination"`
	Amount      math.HexOrDecimal64 `json:"amount"`
}

type Account struct {
	Balance    math.HexOrDecimal64 `json:"balance"`
	Derived    bool                `json:"derived"`
	Maintainer bool                `json:"maintainer"`
	Stakes     []uint64            `json:"stakes"`
}

type Event struct {
	Seq          uint64              `json:"seq"`
	Time         uint64              `json:"time"`
	Kind         logdb.Kind          `json:"kind"`
	Account      blues.Address       `json:"account"`
	Counterparty *blues.Address      `json:"counterparty,omitempty"`
	StakeID      *uint64             `json:"stakeId,omitempty"`
	PackageIndex *uint32             `json:"packageIndex,omitempty"`
	Amount       math.HexOrDecimal64 `json:"amount"`
	Extra        math.HexOrDecimal64 `json:"extra"`
}

func ConvertEvent(ev *logdb.Event) *Event {
	return &Event{
		Seq:          ev.Seq,
		Time:         ev.Time,
		Kind:         ev.Kind,
		Account:      ev.Account,
		Counterparty: ev.Counterparty,
		StakeID:      ev.StakeID,
		PackageIndex: ev.PackageIndex,
		Amount:       math.HexOrDecimal64(ev.Amount),
		Extra:        math.HexOrDecimal64(ev.Extra),
	}
}
