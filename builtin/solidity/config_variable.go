// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/log"
)

// ConfigVariable is a tunable with a compiled-in default. A non-zero value stored in the
// variable's slot of a program overrides the default.
type ConfigVariable struct {
	slot  blues.Bytes32
	name  string
	value uint32
}

func NewConfigVariable(name string, defaultValue uint32) *ConfigVariable {
	return &ConfigVariable{
		slot:  NameToSlot(name),
		name:  name,
		value: defaultValue,
	}
}

func (c *ConfigVariable) Get() uint32 {
	return c.value
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() blues.Bytes32 {
	return c.slot
}

// Override returns the effective value of the variable for the program bound to ctx.
// The receiver keeps its default so different programs never observe each other's overrides.
func (c *ConfigVariable) Override(ctx *Context) uint32 {
	storage, err := ctx.state.GetStorage(ctx.address, c.slot)
	if err != nil {
		log.Warn("failed to read config value", "slot", c.Name(), "error", err)
		return c.value
	}
	num := new(big.Int).SetBytes(storage.Bytes())
	if num.Sign() != 0 && num.IsUint64() && num.Uint64() <= uint64(^uint32(0)) {
		log.Debug("debug override found new config value", "slot", c.Name(), "value", num.Uint64())
		return uint32(num.Uint64())
	}
	return c.value
}
