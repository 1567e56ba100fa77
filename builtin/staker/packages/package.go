// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packages

// Package is a staking offer. Only TotalLockedAmount and RewardRate change after initialization.
type Package struct {
	Name              string
	MaxDepositAmount  uint64
	TotalLockedAmount uint64 // running sum of accepted deposits, never decreased
	Period            uint64 // lock duration in seconds
	RewardRate        uint64 // basis points paid per 10,000 units of principal
}

// Remaining returns how much more the package accepts.
func (p *Package) Remaining() uint64 {
	if p.TotalLockedAmount >= p.MaxDepositAmount {
		return 0
	}
	return p.MaxDepositAmount - p.TotalLockedAmount
}

// Accepts reports whether a deposit of amount keeps the package within its cap.
func (p *Package) Accepts(amount uint64) bool {
	return amount <= p.Remaining()
}

// Open tracks the stakes of a package that are not yet withdrawn.
type Open struct {
	Principal uint64 // sum of open principals
	Units     uint64 // sum of floor(principal / 10,000) over open stakes
	Count     uint64
}
