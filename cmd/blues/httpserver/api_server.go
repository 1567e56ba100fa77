// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/api/accounts"
	"github.com/bluescrypto/staking/api/escrow"
	"github.com/bluescrypto/staking/api/events"
	"github.com/bluescrypto/staking/api/middleware"
	"github.com/bluescrypto/staking/api/packages"
	"github.com/bluescrypto/staking/api/restutil"
	"github.com/bluescrypto/staking/api/stakes"
	"github.com/bluescrypto/staking/api/subscriptions"
	"github.com/bluescrypto/staking/co"
	"github.com/bluescrypto/staking/log"
	"github.com/bluescrypto/staking/runtime"
)

var logger = log.WithContext("pkg", "api")

type APIConfig struct {
	AllowedOrigins       string
	Timeout              time.Duration
	LogsLimit            uint64
	PprofOn              bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
}

// NewAPIHandler returns the REST handler of the ledger and a function closing the open subscriptions.
func NewAPIHandler(rt *runtime.Runtime, config APIConfig) (http.Handler, func()) {
	origins := strings.Split(strings.TrimSpace(config.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	packages.New(rt).
		Mount(router, "/packages")
	stakes.New(rt).
		Mount(router, "/stakes")
	escrow.New(rt).
		Mount(router, "/escrow")
	accounts.New(rt).
		Mount(router, "/accounts")
	events.New(rt.Events(), config.LogsLimit).
		Mount(router, "/events")
	subs := subscriptions.New(rt, origins)
	subs.Mount(router, "/subscriptions")

	if config.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if config.EnableMetrics {
		router.Use(middleware.MetricsMiddleware)
	}
	if config.EnableReqLogger != nil {
		router.Use(middleware.RequestLoggerMiddleware(logger, config.EnableReqLogger, config.SlowQueriesThreshold))
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"content-type", restutil.CallerHeader}),
		handlers.ExposedHeaders([]string{"x-genesis-id"}),
	)(handler)

	if config.Timeout > 0 {
		handler = handleAPITimeout(handler, config.Timeout)
	}
	handler = handleXGenesisID(handler, rt.Genesis().ID().String())
	handler = requestBodyLimit(handler)

	return handler, subs.Close
}

// StartAPIServer serves the ledger on addr. The returned function stops the server.
func StartAPIServer(addr string, rt *runtime.Runtime, config APIConfig) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}

	handler, closeSubs := NewAPIHandler(rt, config)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		closeSubs()
		srv.Close()
		goes.Wait()
	}, nil
}

func handleXGenesisID(h http.Handler, genesisID string) http.Handler {
	const headerKey = "x-genesis-id"
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actual := r.Header.Get(headerKey)
		if actual == "" {
			actual = r.URL.Query().Get(headerKey)
		}
		w.Header().Set(headerKey, genesisID)
		if actual != "" && actual != genesisID {
			http.Error(w, "genesis id mismatch", http.StatusForbidden)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// handleAPITimeout bounds plain requests. Websocket upgrades are long lived and pass through.
func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	timed := http.TimeoutHandler(h, timeout, "request timeout")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			h.ServeHTTP(w, r)
			return
		}
		timed.ServeHTTP(w, r)
	})
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
		h.ServeHTTP(w, r)
	})
}
