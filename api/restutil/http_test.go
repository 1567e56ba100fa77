// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluescrypto/staking/builtin/staker/reverts"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{BadRequest(errors.New("x")), http.StatusBadRequest},
		{Forbidden(errors.New("x")), http.StatusForbidden},
		{NotFound(errors.New("x")), http.StatusNotFound},
		{Conflict(errors.New("x")), http.StatusConflict},
		{reverts.New(reverts.InvalidPackageIndex, "x"), http.StatusNotFound},
		{reverts.New(reverts.NonExistentStake, "x"), http.StatusNotFound},
		{reverts.New(reverts.Unauthorized, "x"), http.StatusForbidden},
		{reverts.New(reverts.NeverStaked, "x"), http.StatusForbidden},
		{reverts.New(reverts.AlreadyTerminated, "x"), http.StatusConflict},
		{reverts.New(reverts.LedgerFull, "x"), http.StatusConflict},
		{reverts.New(reverts.LockTimeNotElapsed, "x"), http.StatusBadRequest},
		{reverts.New(reverts.InvalidDepositAmount, "x"), http.StatusBadRequest},
		{pkgerrors.WithMessage(reverts.New(reverts.TransferFailed, "x"), "stake"), http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestWrapHandlerFunc(t *testing.T) {
	serve := func(err error) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return err })(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		return rr
	}

	rr := serve(reverts.New(reverts.NeverStaked, "stake 3 belongs to someone else"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, JSONContentType, rr.Header().Get("Content-Type"))
	var body M
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, M{"kind": "NeverStaked", "message": "stake 3 belongs to someone else"}, body)

	rr = serve(BadRequest(errors.New("body: bad json")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "bad json")

	rr = serve(HTTPError(nil, http.StatusTeapot))
	assert.Equal(t, http.StatusTeapot, rr.Code)

	rr = serve(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = serve(nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCaller(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	_, err := Caller(req)
	assert.Equal(t, http.StatusForbidden, StatusOf(err))

	req.Header.Set(CallerHeader, "nope")
	_, err = Caller(req)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))

	req.Header.Set(CallerHeader, "0x00000000000000000000000000000000000000ff")
	addr, err := Caller(req)
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), addr[19])
}

func TestParse(t *testing.T) {
	n, err := ParseUint("limit", "", 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)

	_, err = ParseUint("limit", "x", 7)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))

	i, err := ParseIndex("2")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), i)

	_, err = ParseIndex("4294967296")
	assert.Error(t, err)
}
