// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/staker/reverts"
)

// CallerHeader carries the identity an operation is performed as.
const CallerHeader = "x-blues-caller"

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// Forbidden convenience method to create http forbidden error.
func Forbidden(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusForbidden,
	}
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusNotFound,
	}
}

// Conflict convenience method to create http conflict error.
func Conflict(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusConflict,
	}
}

// revertStatus maps a ledger rejection to the status it is answered with.
var revertStatus = map[reverts.Kind]int{
	reverts.InvalidPackageIndex: http.StatusNotFound,
	reverts.NonExistentStake:    http.StatusNotFound,
	reverts.Unauthorized:        http.StatusForbidden,
	reverts.NeverStaked:         http.StatusForbidden,
	reverts.AlreadyTerminated:   http.StatusConflict,
	reverts.AlreadyInitialized:  http.StatusConflict,
	reverts.NotInitialized:      http.StatusConflict,
	reverts.LedgerFull:          http.StatusConflict,
}

// StatusOf returns the status an error is answered with.
func StatusOf(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	if kind, ok := reverts.KindOf(err); ok {
		if status, ok := revertStatus[kind]; ok {
			return status
		}
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// HandlerFunc like http.HandlerFunc, bu it returns an error.
// If the returned error is httpError type, httpError.status will be responded,
// a ledger rejection is answered with a JSON body naming its kind,
// otherwise http.StatusInternalServerError responded.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		if he, ok := err.(*httpError); ok {
			if he.cause != nil {
				http.Error(w, he.cause.Error(), he.status)
			} else {
				w.WriteHeader(he.status)
			}
			return
		}
		var revert *reverts.ErrRevert
		if errors.As(err, &revert) {
			w.Header().Set("Content-Type", JSONContentType)
			w.WriteHeader(StatusOf(err))
			json.NewEncoder(w).Encode(M{"kind": revert.Kind(), "message": revert.Message()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any

// Caller returns the identity named by the caller header.
func Caller(r *http.Request) (blues.Address, error) {
	v := r.Header.Get(CallerHeader)
	if v == "" {
		return blues.Address{}, Forbidden(errors.New("caller header missing"))
	}
	addr, err := blues.ParseAddress(v)
	if err != nil {
		return blues.Address{}, BadRequest(errors.WithMessage(err, "caller"))
	}
	return addr, nil
}

// ParseUint parses a decimal path or query value. The empty string yields def.
func ParseUint(name, s string, def uint64) (uint64, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return n, nil
}

// ParseIndex parses a package index.
func ParseIndex(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, "index"))
	}
	return uint32(n), nil
}
