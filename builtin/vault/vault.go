// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/token"
)

// Seed prefixes the seeds of the escrow vault account.
const Seed = "escrow_vault"

// Vault is the program-controlled reserve holding deposits and the reward pool.
// Its signing authority never leaves the vault.
type Vault struct {
	token     *token.Token
	authority *token.Authority
}

// New opens the escrow vault of the staking program for the given mint.
func New(tok *token.Token, mint string) (*Vault, error) {
	auth, err := tok.Derive(blues.StakingProgram, []byte(Seed), []byte(mint))
	if err != nil {
		return nil, err
	}
	return &Vault{token: tok, authority: auth}, nil
}

// Address returns the vault account.
func (v *Vault) Address() blues.Address {
	return v.authority.Address()
}

// Balance returns the tokens held by the vault.
func (v *Vault) Balance() (uint64, error) {
	return v.token.BalanceOf(v.authority.Address())
}

// Deposit moves tokens from the depositor into the vault.
func (v *Vault) Deposit(from blues.Address, amount uint64) error {
	return v.token.Transfer(from, v.authority.Address(), amount)
}

// Release moves tokens out of the vault, signed by the vault's own authority.
func (v *Vault) Release(to blues.Address, amount uint64) error {
	return v.authority.Transfer(to, amount)
}
