// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the fungible token the ledger stakes. Balances live in the
// program's storage; program-derived accounts can only be debited through an Authority.
package token

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/solidity"
	"github.com/bluescrypto/staking/state"
)

var (
	slotSupply   = solidity.NameToSlot("total-supply")
	slotBalances = solidity.NameToSlot("balances")
	slotDerived  = solidity.NameToSlot("derived-accounts")
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDerivedAccount      = errors.New("derived account can only be debited by its program")
	ErrSupplyOverflow      = errors.New("total supply overflow")
	ErrSelfTransfer        = errors.New("transfer to self")
)

// Token is the fungible token ledger.
type Token struct {
	context  *solidity.Context
	supply   *solidity.Raw[uint64]
	balances *solidity.Mapping[blues.Address, uint64]
	derived  *solidity.Mapping[blues.Address, blues.Address] // derived account -> owning program
}

// New create a new instance.
func New(addr blues.Address, state *state.State) *Token {
	ctx := solidity.NewContext(addr, state)
	return &Token{
		context:  ctx,
		supply:   solidity.NewRaw[uint64](ctx, slotSupply),
		balances: solidity.NewMapping[blues.Address, uint64](ctx, slotBalances),
		derived:  solidity.NewMapping[blues.Address, blues.Address](ctx, slotDerived),
	}
}

// TotalSupply returns the amount of tokens minted so far.
func (t *Token) TotalSupply() (uint64, error) {
	return t.supply.Get()
}

// BalanceOf returns the balance of the account.
func (t *Token) BalanceOf(addr blues.Address) (uint64, error) {
	return t.balances.Get(addr)
}

// IsDerived reports whether the account is program-derived.
func (t *Token) IsDerived(addr blues.Address) (bool, error) {
	return t.derived.Has(addr)
}

// Mint creates new tokens on the account.
func (t *Token) Mint(to blues.Address, amount uint64) error {
	supply, err := t.supply.Get()
	if err != nil {
		return err
	}
	newSupply, carry := bits.Add64(supply, amount, 0)
	if carry != 0 {
		return ErrSupplyOverflow
	}
	bal, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	// balance <= supply, so it cannot overflow if supply did not
	if err := t.balances.Upsert(to, bal+amount); err != nil {
		return err
	}
	return t.supply.Upsert(newSupply)
}

// Transfer moves tokens between two accounts on behalf of the owner of from.
// Program-derived accounts are refused, they move funds through their Authority.
func (t *Token) Transfer(from, to blues.Address, amount uint64) error {
	derived, err := t.IsDerived(from)
	if err != nil {
		return err
	}
	if derived {
		return ErrDerivedAccount
	}
	return t.transfer(from, to, amount)
}

// transfer is all-or-nothing: on any failure the state is reverted to before the call.
func (t *Token) transfer(from, to blues.Address, amount uint64) (err error) {
	if from == to {
		return ErrSelfTransfer
	}
	st := t.context.State()
	cp := st.NewCheckpoint()
	defer func() {
		if err != nil {
			st.RevertTo(cp)
		}
	}()

	fromBal, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return errors.WithMessagef(ErrInsufficientBalance, "%v has %d, needs %d", from, fromBal, amount)
	}
	toBal, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	if err := t.balances.Upsert(from, fromBal-amount); err != nil {
		return err
	}
	return t.balances.Upsert(to, toBal+amount)
}

// Authority is the signing capability over a program-derived account.
// It is only handed out by Derive, to the program that owns the seeds.
type Authority struct {
	token   *Token
	program blues.Address
	account blues.Address
}

// Derive returns the authority over the account derived from program and seeds,
// registering the account as derived on first use.
func (t *Token) Derive(program blues.Address, seeds ...[]byte) (*Authority, error) {
	account := blues.DeriveAddress(program, seeds...)
	owner, err := t.derived.Get(account)
	if err != nil {
		return nil, err
	}
	if owner.IsZero() {
		if err := t.derived.Upsert(account, program); err != nil {
			return nil, err
		}
	} else if owner != program {
		return nil, errors.Errorf("account %v is owned by program %v", account, owner)
	}
	return &Authority{token: t, program: program, account: account}, nil
}

// Address returns the derived account.
func (a *Authority) Address() blues.Address {
	return a.account
}

// Program returns the program owning the derived account.
func (a *Authority) Program() blues.Address {
	return a.program
}

// Transfer moves tokens out of the derived account.
func (a *Authority) Transfer(to blues.Address, amount uint64) error {
	return a.token.transfer(a.account, to, amount)
}
