// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packages_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluescrypto/staking/api"
	"github.com/bluescrypto/staking/api/packages"
	"github.com/bluescrypto/staking/test/testledger"
)

var ts *httptest.Server

func initServer(t *testing.T) *testledger.Ledger {
	ledger := testledger.New(t)
	router := mux.NewRouter()
	packages.New(ledger.Runtime).Mount(router, "/packages")
	ts = httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ledger
}

func TestPackages(t *testing.T) {
	initServer(t)

	for name, tt := range map[string]func(*testing.T){
		"getPackages":       getPackages,
		"getPackage":        getPackage,
		"getInvalidPackage": getInvalidPackage,
	} {
		t.Run(name, tt)
	}
}

func getPackages(t *testing.T) {
	data, code := testledger.Do(t, http.MethodGet, ts.URL+"/packages", nil, nil)
	require.Equal(t, http.StatusOK, code)

	var pkgs []*api.Package
	require.NoError(t, json.Unmarshal(data, &pkgs))
	require.Len(t, pkgs, 3)
	assert.Equal(t, "BLUES Pebble Pounch", pkgs[0].Name)
	assert.Equal(t, uint64(100_000_000), uint64(pkgs[0].MaxDeposit))
	assert.Equal(t, uint64(0), uint64(pkgs[0].TotalLocked))
	assert.Equal(t, uint64(30*86400), pkgs[0].Period)
	assert.Equal(t, uint64(45), pkgs[2].RewardRate)
	assert.Equal(t, uint32(2), pkgs[2].Index)
}

func getPackage(t *testing.T) {
	data, code := testledger.Do(t, http.MethodGet, ts.URL+"/packages/1", nil, nil)
	require.Equal(t, http.StatusOK, code)

	var pkg api.Package
	require.NoError(t, json.Unmarshal(data, &pkg))
	assert.Equal(t, "Blue Wheel Guild", pkg.Name)
	assert.Equal(t, uint64(75_000_000), uint64(pkg.Remaining))
}

func getInvalidPackage(t *testing.T) {
	_, code := testledger.Do(t, http.MethodGet, ts.URL+"/packages/3", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)

	_, code = testledger.Do(t, http.MethodGet, ts.URL+"/packages/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestChangeRate(t *testing.T) {
	ledger := initServer(t)
	maintainer := ledger.Maintainer()
	outsider := ledger.Account(1)

	data, code := testledger.Do(t, http.MethodPut, ts.URL+"/packages/0/rate", &maintainer, api.RateRequest{RewardRate: 25})
	require.Equal(t, http.StatusOK, code, string(data))
	var res api.RateResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, api.RateResult{Previous: 20, Current: 25}, res)

	data, code = testledger.Do(t, http.MethodPut, ts.URL+"/packages/0/rate", &outsider, api.RateRequest{RewardRate: 99})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Contains(t, string(data), "Unauthorized")

	_, code = testledger.Do(t, http.MethodPut, ts.URL+"/packages/0/rate", nil, api.RateRequest{RewardRate: 99})
	assert.Equal(t, http.StatusForbidden, code)

	_, code = testledger.Do(t, http.MethodPut, ts.URL+"/packages/7/rate", &maintainer, api.RateRequest{RewardRate: 1})
	assert.Equal(t, http.StatusNotFound, code)

	_, code = testledger.Do(t, http.MethodPut, ts.URL+"/packages/0/rate", &maintainer, map[string]any{"rate": 1})
	assert.Equal(t, http.StatusBadRequest, code)

	data, code = testledger.Do(t, http.MethodGet, ts.URL+"/packages/0", nil, nil)
	require.Equal(t, http.StatusOK, code)
	var pkg api.Package
	require.NoError(t, json.Unmarshal(data, &pkg))
	assert.Equal(t, uint64(25), pkg.RewardRate)
}
