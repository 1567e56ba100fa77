// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/api"
	"github.com/bluescrypto/staking/api/restutil"
	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/logdb"
)

var knownKinds = map[logdb.Kind]bool{
	logdb.KindInitialize: true,
	logdb.KindStake:      true,
	logdb.KindWithdraw:   true,
	logdb.KindCharge:     true,
	logdb.KindRelease:    true,
	logdb.KindRate:       true,
	logdb.KindMint:       true,
}

type Events struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

// parseFilter reads the filter from the query string:
//
//	account, kind (comma separated), stakeId, from, offset, limit, order
func (e *Events) parseFilter(req *http.Request) (*logdb.EventFilter, error) {
	query := req.URL.Query()
	filter := &logdb.EventFilter{Order: logdb.ASC}

	if v := query.Get("account"); v != "" {
		addr, err := blues.ParseAddress(v)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "account"))
		}
		filter.Account = &addr
	}
	if v := query.Get("kind"); v != "" {
		for _, k := range strings.Split(v, ",") {
			kind := logdb.Kind(strings.TrimSpace(k))
			if !knownKinds[kind] {
				return nil, restutil.BadRequest(fmt.Errorf("kind: unknown %q", kind))
			}
			filter.Kinds = append(filter.Kinds, kind)
		}
	}
	if v := query.Get("stakeId"); v != "" {
		id, err := restutil.ParseUint("stakeId", v, 0)
		if err != nil {
			return nil, err
		}
		filter.StakeID = &id
	}
	from, err := restutil.ParseUint("from", query.Get("from"), 0)
	if err != nil {
		return nil, err
	}
	filter.FromSeq = from

	switch order := logdb.Order(query.Get("order")); order {
	case "", logdb.ASC:
	case logdb.DESC:
		filter.Order = logdb.DESC
	default:
		return nil, restutil.BadRequest(fmt.Errorf("order: expected %q or %q", logdb.ASC, logdb.DESC))
	}

	offset, err := restutil.ParseUint("offset", query.Get("offset"), 0)
	if err != nil {
		return nil, err
	}
	limit, err := restutil.ParseUint("limit", query.Get("limit"), e.limit)
	if err != nil {
		return nil, err
	}
	if limit > e.limit {
		return nil, restutil.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit))
	}
	filter.Options = &logdb.Options{Offset: offset, Limit: limit}
	return filter, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req)
	if err != nil {
		return err
	}
	evs, err := e.db.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	result := make([]*api.Event, 0, len(evs))
	for _, ev := range evs {
		result = append(result, api.ConvertEvent(ev))
	}
	return restutil.WriteJSON(w, result)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
