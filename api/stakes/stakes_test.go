// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluescrypto/staking/api"
	"github.com/bluescrypto/staking/api/restutil"
	"github.com/bluescrypto/staking/api/stakes"
	"github.com/bluescrypto/staking/test/datagen"
	"github.com/bluescrypto/staking/test/testledger"
)

const day = uint64(86400)

func initServer(t *testing.T) (*testledger.Ledger, string) {
	ledger := testledger.New(t)
	router := mux.NewRouter()
	stakes.New(ledger.Runtime).Mount(router, "/stakes")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ledger, ts.URL
}

func revertKind(t *testing.T, data []byte) string {
	var body restutil.M
	require.NoError(t, json.Unmarshal(data, &body), string(data))
	return body["kind"].(string)
}

func TestStakeAndWithdraw(t *testing.T) {
	ledger, url := initServer(t)
	alice := ledger.Account(1)
	bob := ledger.Account(2)

	data, code := testledger.Do(t, http.MethodPost, url+"/stakes", &alice, api.StakeRequest{PackageIndex: 0, Amount: 1_000_000})
	require.Equal(t, http.StatusCreated, code, string(data))
	var created api.StakeResult
	require.NoError(t, json.Unmarshal(data, &created))
	assert.Equal(t, uint64(0), created.ID)

	var stake api.Stake
	testledger.Get(t, url+"/stakes/0", &stake)
	assert.Equal(t, alice, stake.Staker)
	assert.Equal(t, uint64(1_000_000), uint64(stake.Principal))
	assert.False(t, stake.Terminated)
	require.NotNil(t, stake.Withdrawable)
	assert.False(t, stake.Withdrawable.Unlocked)
	assert.Equal(t, ledger.Genesis().LaunchTime+30*day, stake.Withdrawable.UnlockAt)
	assert.Equal(t, uint64(2_000), uint64(stake.Withdrawable.Reward))

	data, code = testledger.Do(t, http.MethodPost, url+"/stakes/0/withdraw", &alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "LockTimeNotElapsed", revertKind(t, data))

	ledger.Clock.Advance(30 * day)

	data, code = testledger.Do(t, http.MethodPost, url+"/stakes/0/withdraw", &bob, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "NeverStaked", revertKind(t, data))

	data, code = testledger.Do(t, http.MethodPost, url+"/stakes/0/withdraw", &alice, nil)
	require.Equal(t, http.StatusOK, code, string(data))
	var withdrawal api.Withdrawal
	require.NoError(t, json.Unmarshal(data, &withdrawal))
	assert.Equal(t, uint64(1_002_000), uint64(withdrawal.Payout))
	assert.Equal(t, uint64(2_000), uint64(withdrawal.Reward))

	data, code = testledger.Do(t, http.MethodPost, url+"/stakes/0/withdraw", &alice, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "AlreadyTerminated", revertKind(t, data))

	testledger.Get(t, url+"/stakes/0", &stake)
	assert.True(t, stake.Terminated)
	assert.Nil(t, stake.Withdrawable)
}

func TestStakeRejected(t *testing.T) {
	ledger, url := initServer(t)
	alice := ledger.Account(1)

	tests := []struct {
		name string
		body any
		code int
		kind string
	}{
		{"bad package", api.StakeRequest{PackageIndex: 3, Amount: 1}, http.StatusNotFound, "InvalidPackageIndex"},
		{"over cap", api.StakeRequest{PackageIndex: 2, Amount: 50_000_001}, http.StatusBadRequest, "InvalidDepositAmount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, code := testledger.Do(t, http.MethodPost, url+"/stakes", &alice, tt.body)
			assert.Equal(t, tt.code, code, string(data))
			assert.Equal(t, tt.kind, revertKind(t, data))
		})
	}

	pauper := datagen.RandAddress()
	data, code := testledger.Do(t, http.MethodPost, url+"/stakes", &pauper, api.StakeRequest{PackageIndex: 0, Amount: 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "TransferFailed", revertKind(t, data))

	_, code = testledger.Do(t, http.MethodPost, url+"/stakes", nil, api.StakeRequest{Amount: 1})
	assert.Equal(t, http.StatusForbidden, code)

	_, code = testledger.Do(t, http.MethodPost, url+"/stakes", &alice, map[string]any{"package": 0})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetMissingStake(t *testing.T) {
	_, url := initServer(t)

	data, code := testledger.Do(t, http.MethodGet, url+"/stakes/42", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NonExistentStake", revertKind(t, data))

	_, code = testledger.Do(t, http.MethodGet, url+"/stakes/-1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
