// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

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

type Stakes struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Stakes {
	return &Stakes{rt}
}

func (s *Stakes) getStake(id uint64) (*api.Stake, error) {
	now := s.rt.Now()
	var result *api.Stake
	err := s.rt.View(func(stk *staker.Staker, _ *token.Token) error {
		stake, err := stk.GetStake(id)
		if err != nil {
			return err
		}
		result = api.ConvertStake(id, stake)
		if stake.Terminated {
			return nil
		}
		w, err := stk.GetWithdrawable(id, now)
		if err != nil {
			return err
		}
		result.Withdrawable = api.ConvertWithdrawable(w)
		return nil
	})
	return result, err
}

func (s *Stakes) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.ParseUint("id", mux.Vars(req)["id"], 0)
	if err != nil {
		return err
	}
	stake, err := s.getStake(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, stake)
}

func (s *Stakes) handleStake(w http.ResponseWriter, req *http.Request) error {
	caller, err := restutil.Caller(req)
	if err != nil {
		return err
	}
	var body api.StakeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	id, err := s.rt.Stake(caller, body.PackageIndex, uint64(body.Amount))
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return restutil.WriteJSON(w, &api.StakeResult{ID: id})
}

func (s *Stakes) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.ParseUint("id", mux.Vars(req)["id"], 0)
	if err != nil {
		return err
	}
	caller, err := restutil.Caller(req)
	if err != nil {
		return err
	}
	withdrawal, err := s.rt.Withdraw(caller, id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, api.ConvertWithdrawal(withdrawal))
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /stakes").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleStake))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /stakes/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStake))
	sub.Path("/{id}/withdraw").
		Methods(http.MethodPost).
		Name("POST /stakes/{id}/withdraw").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleWithdraw))
}
