// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blues

// Constants of the staking ledger.
const (
	// BasisPoints is the denominator of reward rates, 1 basis point = 1/10,000 of the principal.
	BasisPoints uint64 = 10_000

	// TokenDecimals is the precision of the staked token, 1 token = 10^9 units.
	TokenDecimals = 9

	// DefaultMaxStakes bounds the stake ledger, mirroring the space reserved for it up front.
	DefaultMaxStakes uint32 = 100_000
)

var (
	// StakingProgram is the address of the staking program, the owner of derived accounts like the vault.
	StakingProgram = BytesToAddress([]byte("blues-staking"))

	// TokenProgram is the address the token ledger keeps its storage under.
	TokenProgram = BytesToAddress([]byte("blues-token"))
)
