// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/api"
	"github.com/bluescrypto/staking/api/restutil"
	"github.com/bluescrypto/staking/builtin/staker"
	"github.com/bluescrypto/staking/builtin/token"
	"github.com/bluescrypto/staking/runtime"
)

type Escrow struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Escrow {
	return &Escrow{rt}
}

func (e *Escrow) handleGetEscrow(w http.ResponseWriter, _ *http.Request) error {
	var result *api.Escrow
	err := e.rt.View(func(s *staker.Staker, _ *token.Token) error {
		maintainer, err := s.Maintainer()
		if err != nil {
			return err
		}
		balance, err := s.VaultBalance()
		if err != nil {
			return err
		}
		liabilities, err := s.Liabilities()
		if err != nil {
			return err
		}
		result = api.ConvertEscrow(s.VaultAddress(), maintainer, balance, liabilities)
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (e *Escrow) handleCharge(w http.ResponseWriter, req *http.Request) error {
	caller, err := restutil.Caller(req)
	if err != nil {
		return err
	}
	var body api.ChargeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := e.rt.ChargeEscrow(caller, uint64(body.Amount)); err != nil {
		return err
	}
	return e.handleGetEscrow(w, req)
}

func (e *Escrow) handleRelease(w http.ResponseWriter, req *http.Request) error {
	caller, err := restutil.Caller(req)
	if err != nil {
		return err
	}
	var body api.ReleaseRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := e.rt.ReleaseEscrow(caller, body.Destination, uint64(body.Amount)); err != nil {
		return err
	}
	return e.handleGetEscrow(w, req)
}

func (e *Escrow) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /escrow").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleGetEscrow))
	sub.Path("/charge").
		Methods(http.MethodPost).
		Name("POST /escrow/charge").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleCharge))
	sub.Path("/release").
		Methods(http.MethodPost).
		Name("POST /escrow/release").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleRelease))
}
