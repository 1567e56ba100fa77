// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"sync"
	"time"

	"github.com/bluescrypto/staking/blues"
)

const day = 24 * time.Hour

var devAccounts = sync.OnceValue(func() []blues.Address {
	accs := make([]blues.Address, 0, 10)
	for i := range 10 {
		h := blues.Blake2b([]byte(fmt.Sprintf("blues-dev-account-%d", i)))
		accs = append(accs, blues.BytesToAddress(h[12:]))
	}
	return accs
})

// DevAccounts returns the pre-funded accounts of the dev genesis. The first one is the maintainer.
func DevAccounts() []blues.Address {
	return devAccounts()
}

// NewDevnet returns the dev genesis carrying the three standard BLUES offers.
func NewDevnet() *Genesis {
	accs := DevAccounts()
	gen := &Genesis{
		Name:       "devnet",
		Mint:       "BLUES",
		Maintainer: accs[0],
		LaunchTime: 1_700_000_000,
		Packages: []Package{
			{Name: "BLUES Pebble Pounch", MaxDeposit: 100_000_000, Period: 30 * day, RewardRate: 20},
			{Name: "Blue Wheel Guild", MaxDeposit: 75_000_000, Period: 60 * day, RewardRate: 30},
			{Name: "Burrower's Bounty", MaxDeposit: 50_000_000, Period: 90 * day, RewardRate: 45},
		},
		Escrow: 10_000_000,
	}
	for _, a := range accs {
		gen.Accounts = append(gen.Accounts, Account{Address: a, Balance: 1_000_000_000})
	}
	return gen
}
