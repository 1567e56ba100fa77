// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"
	mathrand "math/rand/v2"

	"github.com/bluescrypto/staking/blues"
)

func RandAddress() (addr blues.Address) {
	rand.Read(addr[:])
	return
}

func RandBytes32() (b blues.Bytes32) {
	rand.Read(b[:])
	return
}

// RandAmount returns a token amount in [1, n].
func RandAmount(n uint64) uint64 {
	return mathrand.Uint64N(n) + 1 //#nosec G404
}
