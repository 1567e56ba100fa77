// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/bluescrypto/staking/blues"
)

// Kind names the ledger operation that produced an event.
type Kind string

const (
	KindInitialize Kind = "initialize"
	KindStake      Kind = "stake"
	KindWithdraw   Kind = "withdraw"
	KindCharge     Kind = "charge"
	KindRelease    Kind = "release"
	KindRate       Kind = "rate"
	KindMint       Kind = "mint"
)

// Event is a committed ledger change.
//
//	stake:    Account staker, StakeID, PackageIndex, Amount principal
//	withdraw: Account staker, StakeID, PackageIndex, Amount payout, Extra reward
//	charge:   Account funder, Amount
//	release:  Account maintainer, Counterparty destination, Amount
//	rate:     Account maintainer, PackageIndex, Amount new rate, Extra previous rate
//	mint:     Account receiver, Amount
type Event struct {
	Seq          uint64
	Time         uint64
	Kind         Kind
	Account      blues.Address
	Counterparty *blues.Address
	StakeID      *uint64
	PackageIndex *uint32
	Amount       uint64
	Extra        uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventFilter selects events. Nil fields match everything.
type EventFilter struct {
	Account *blues.Address // matches either account or counterparty
	Kinds   []Kind
	StakeID *uint64
	FromSeq uint64
	Order   Order
	Options *Options
}
