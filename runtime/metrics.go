// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"strconv"

	"github.com/bluescrypto/staking/builtin/staker/reverts"
	"github.com/bluescrypto/staking/metrics"
)

var (
	metricOperations    = metrics.LazyLoadCounterVec("operations_count", []string{"op", "result"})
	metricOpDuration    = metrics.LazyLoadHistogramVec("operation_duration_ms", []string{"op"}, []int64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000})
	metricPackageLocked = metrics.LazyLoadGaugeVec("package_locked_amount", []string{"package"})
	metricVaultBalance  = metrics.LazyLoadGauge("vault_balance")
	metricStakeCount    = metrics.LazyLoadGauge("stake_count")
	metricCacheHit      = metrics.LazyLoadGauge("state_cache_hit")
	metricCacheMiss     = metrics.LazyLoadGauge("state_cache_miss")
)

// result labels an outcome by its revert kind, "ok" on success and "error" on faults.
func result(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := reverts.KindOf(err); ok {
		return string(kind)
	}
	return "error"
}

func packageLabel(index int) map[string]string {
	return map[string]string{"package": strconv.Itoa(index)}
}
