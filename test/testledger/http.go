// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testledger

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluescrypto/staking/api/restutil"
	"github.com/bluescrypto/staking/blues"
)

// Do sends a request as caller, which may be nil, and returns the response body and status.
func Do(t testing.TB, method, url string, caller *blues.Address, body any) ([]byte, int) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if caller != nil {
		req.Header.Set(restutil.CallerHeader, caller.String())
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return data, res.StatusCode
}

// Get fetches url and decodes a 200 response into v, which is reset first.
func Get(t testing.TB, url string, v any) {
	data, code := Do(t, http.MethodGet, url, nil, nil)
	require.Equal(t, http.StatusOK, code, string(data))

	rv := reflect.ValueOf(v).Elem()
	rv.Set(reflect.Zero(rv.Type()))
	require.NoError(t, json.Unmarshal(data, v))
}
