// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/blues"
)

// ErrPayoutOverflow is returned when a payout does not fit in a token amount.
var ErrPayoutOverflow = errors.New("payout exceeds token amount range")

// Stake is a single deposit into a package.
type Stake struct {
	Staker       blues.Address
	PackageIndex uint32
	Principal    uint64
	OpenedAt     uint64 // unix seconds
	Terminated   bool
}

// UnlockAt returns the earliest time the stake can be withdrawn.
func (s *Stake) UnlockAt(period uint64) uint64 {
	if s.OpenedAt > ^uint64(0)-period {
		return ^uint64(0)
	}
	return s.OpenedAt + period
}

// Unlocked reports whether the lock of period has elapsed at now.
func (s *Stake) Unlocked(period, now uint64) bool {
	return now >= s.UnlockAt(period)
}

// Reward computes the reward of a principal at rate:
//
//	reward = floor(principal / 10000) * rate
//	payout = principal + reward
func Reward(principal, rate uint64) (reward, payout uint64, err error) {
	r := uint256.NewInt(principal)
	r.Div(r, uint256.NewInt(blues.BasisPoints))
	r.Mul(r, uint256.NewInt(rate))

	p := new(uint256.Int).Add(r, uint256.NewInt(principal))
	if !p.IsUint64() {
		return 0, 0, ErrPayoutOverflow
	}
	return r.Uint64(), p.Uint64(), nil
}
