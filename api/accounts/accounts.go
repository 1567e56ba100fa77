// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/api"
	"github.com/bluescrypto/staking/api/restutil"
	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/staker"
	"github.com/bluescrypto/staking/builtin/token"
	"github.com/bluescrypto/staking/runtime"
)

type Accounts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Accounts {
	return &Accounts{rt}
}

func parseAddress(req *http.Request) (blues.Address, error) {
	addr, err := blues.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return blues.Address{}, restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	acc := &api.Account{}
	err = a.rt.View(func(s *staker.Staker, tok *token.Token) error {
		balance, err := tok.BalanceOf(addr)
		if err != nil {
			return err
		}
		acc.Balance = math.HexOrDecimal64(balance)
		if acc.Derived, err = tok.IsDerived(addr); err != nil {
			return err
		}
		if acc.Maintainer, err = s.IsMaintainer(addr); err != nil {
			return err
		}
		acc.Stakes, err = s.StakesOf(addr)
		return err
	})
	if err != nil {
		return err
	}
	if acc.Stakes == nil {
		acc.Stakes = []uint64{}
	}
	return restutil.WriteJSON(w, acc)
}

func (a *Accounts) handleGetStakes(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	openOnly := req.URL.Query().Get("open") == "true"

	result := []*api.Stake{}
	err = a.rt.View(func(s *staker.Staker, _ *token.Token) error {
		ids, err := s.StakesOf(addr)
		if err != nil {
			return err
		}
		for _, id := range ids {
			stake, err := s.GetStake(id)
			if err != nil {
				return err
			}
			if openOnly && stake.Terminated {
				continue
			}
			result = append(result, api.ConvertStake(id, stake))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/stakes").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}/stakes").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetStakes))
}
