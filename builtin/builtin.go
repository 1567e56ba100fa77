// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/staker"
	"github.com/bluescrypto/staking/builtin/token"
	"github.com/bluescrypto/staking/builtin/vault"
	"github.com/bluescrypto/staking/state"
)

// Builtin programs binding.
var (
	Token  = &tokenProgram{blues.TokenProgram}
	Staker = &stakerProgram{blues.StakingProgram}
)

type (
	tokenProgram  struct{ Address blues.Address }
	stakerProgram struct{ Address blues.Address }
)

func (t *tokenProgram) WithState(state *state.State) *token.Token {
	return token.New(t.Address, state)
}

// WithState binds the staking engine, holding the escrow vault of mint, to the state.
func (s *stakerProgram) WithState(state *state.State, mint string) (*staker.Staker, error) {
	v, err := vault.New(Token.WithState(state), mint)
	if err != nil {
		return nil, err
	}
	return staker.New(s.Address, state, v), nil
}
