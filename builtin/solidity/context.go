// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/state"
)

// Context binds storage helpers to the account they read and write.
type Context struct {
	address blues.Address
	state   *state.State
}

func NewContext(address blues.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() blues.Address {
	return c.address
}

// Slot derives a storage position from a base position and a key.
func Slot(base blues.Bytes32, key []byte) blues.Bytes32 {
	return blues.Blake2b(key, base.Bytes())
}

// NameToSlot converts a human readable name into a storage position.
func NameToSlot(name string) blues.Bytes32 {
	return blues.BytesToBytes32([]byte(name))
}
