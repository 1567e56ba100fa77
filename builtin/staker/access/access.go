// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package access stores the maintainer identity and answers whether a caller holds it.
package access

import (
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/solidity"
)

var (
	slotMaintainer  = solidity.NameToSlot("maintainer")
	slotInitialized = solidity.NameToSlot("initialized")
)

type Controller struct {
	maintainer  *solidity.Raw[blues.Address]
	initialized *solidity.Raw[bool]
}

func New(sctx *solidity.Context) *Controller {
	return &Controller{
		maintainer:  solidity.NewRaw[blues.Address](sctx, slotMaintainer),
		initialized: solidity.NewRaw[bool](sctx, slotInitialized),
	}
}

// Initialized reports whether the maintainer was recorded.
func (c *Controller) Initialized() (bool, error) {
	ok, err := c.initialized.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get initialized flag")
	}
	return ok, nil
}

// Setup records the maintainer and marks the storage initialized.
func (c *Controller) Setup(maintainer blues.Address) error {
	if err := c.maintainer.Upsert(maintainer); err != nil {
		return errors.Wrap(err, "failed to set maintainer")
	}
	return c.initialized.Upsert(true)
}

func (c *Controller) Maintainer() (blues.Address, error) {
	return c.maintainer.Get()
}

// IsMaintainer compares identity against the stored maintainer.
func (c *Controller) IsMaintainer(identity blues.Address) (bool, error) {
	m, err := c.maintainer.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get maintainer")
	}
	ok, err := c.Initialized()
	if err != nil {
		return false, err
	}
	return ok && m == identity, nil
}
