// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()

	for _, a := range []any{
		Gauge("noop_gauge"),
		GaugeVec("noop_gauge_vec", nil),
		Counter("noop_counter"),
		CounterVec("noop_counter_vec", nil),
		Histogram("noop_hist", nil),
		HistogramVec("noop_hist_vec", nil, nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}

	lazyGauge := LazyLoadGauge("lazy_gauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazy_gauge_vec", []string{"package"})
	lazyCounter := LazyLoadCounter("lazy_counter")
	lazyCounterVec := LazyLoadCounterVec("lazy_counter_vec", []string{"op"})
	lazyHistogramVec := LazyLoadHistogramVec("lazy_hist_vec", []string{"name"}, BucketHTTPReqs)

	// meters resolved after initialization are prometheus backed
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	Counter("stakes_total").Add(1)
	Counter("stakes_total").Add(2)

	ops := CounterVec("operations_total", []string{"op", "result"})
	ops.AddWithLabel(1, map[string]string{"op": "stake", "result": "ok"})
	ops.AddWithLabel(1, map[string]string{"op": "stake", "result": "InvalidDepositAmount"})
	ops.AddWithLabel(1, map[string]string{"op": "stake", "result": "ok"})

	Gauge("vault_balance").Set(500)
	Gauge("vault_balance").Add(-100)

	locked := GaugeVec("package_locked", []string{"package"})
	locked.SetWithLabel(70, map[string]string{"package": "0"})
	locked.AddWithLabel(5, map[string]string{"package": "0"})

	Histogram("op_duration_ms", []int64{1, 10, 100}).Observe(7)

	families := gather(t)
	require.Equal(t, float64(3), families["blues_staking_stakes_total"].Metric[0].GetCounter().GetValue())

	var okCount float64
	for _, m := range families["blues_staking_operations_total"].Metric {
		for _, l := range m.Label {
			if l.GetName() == "result" && l.GetValue() == "ok" {
				okCount += m.GetCounter().GetValue()
			}
		}
	}
	require.Equal(t, float64(2), okCount)
	require.Equal(t, float64(400), families["blues_staking_vault_balance"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(75), families["blues_staking_package_locked"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(7), families["blues_staking_op_duration_ms"].Metric[0].GetHistogram().GetSampleSum())

	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "blues_staking_stakes_total 3")
}
