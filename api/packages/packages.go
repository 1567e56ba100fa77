// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packages

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

type Packages struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Packages {
	return &Packages{rt}
}

func (p *Packages) handleGetPackages(w http.ResponseWriter, _ *http.Request) error {
	var result []*api.Package
	err := p.rt.View(func(s *staker.Staker, _ *token.Token) error {
		pkgs, err := s.Packages()
		if err != nil {
			return err
		}
		result = make([]*api.Package, 0, len(pkgs))
		for i, pkg := range pkgs {
			result = append(result, api.ConvertPackage(uint32(i), pkg))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (p *Packages) handleGetPackage(w http.ResponseWriter, req *http.Request) error {
	index, err := restutil.ParseIndex(mux.Vars(req)["index"])
	if err != nil {
		return err
	}
	var result *api.Package
	err = p.rt.View(func(s *staker.Staker, _ *token.Token) error {
		pkg, err := s.Package(index)
		if err != nil {
			return err
		}
		result = api.ConvertPackage(index, pkg)
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (p *Packages) handleChangeRate(w http.ResponseWriter, req *http.Request) error {
	index, err := restutil.ParseIndex(mux.Vars(req)["index"])
	if err != nil {
		return err
	}
	caller, err := restutil.Caller(req)
	if err != nil {
		return err
	}
	var body api.RateRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	previous, err := p.rt.ChangeRewardRate(caller, index, body.RewardRate)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &api.RateResult{Previous: previous, Current: body.RewardRate})
}

func (p *Packages) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /packages").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPackages))
	sub.Path("/{index}").
		Methods(http.MethodGet).
		Name("GET /packages/{index}").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPackage))
	sub.Path("/{index}/rate").
		Methods(http.MethodPut).
		Name("PUT /packages/{index}/rate").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleChangeRate))
}
