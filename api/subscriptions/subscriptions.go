// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/api/restutil"
	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/co"
	"github.com/bluescrypto/staking/log"
	"github.com/bluescrypto/staking/logdb"
	"github.com/bluescrypto/staking/runtime"
)

var logger = log.WithContext("pkg", "subscriptions")

// SubscriptionIDHeader names the upgrade response header carrying the subscription id.
const SubscriptionIDHeader = "x-subscription-id"

const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second
	// send pings to peer with this period, must be less than pongWait
	pingPeriod = (pongWait * 7) / 10
	// events sent per read of the history
	pageSize = 100
)

type Subscriptions struct {
	rt       *runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) parseEventFilter(req *http.Request) (uint64, logdb.EventFilter, error) {
	query := req.URL.Query()
	var filter logdb.EventFilter

	pos, err := restutil.ParseUint("pos", query.Get("pos"), 0)
	if err != nil {
		return 0, filter, err
	}
	if v := query.Get("account"); v != "" {
		addr, err := blues.ParseAddress(v)
		if err != nil {
			return 0, filter, restutil.BadRequest(errors.WithMessage(err, "account"))
		}
		filter.Account = &addr
	}
	if v := query.Get("kind"); v != "" {
		for _, k := range strings.Split(v, ",") {
			filter.Kinds = append(filter.Kinds, logdb.Kind(strings.TrimSpace(k)))
		}
	}
	return pos, filter, nil
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	pos, filter, err := s.parseEventFilter(req)
	if err != nil {
		return err
	}
	// subscribe before the first read so no commit is missed in between
	waiter := s.rt.NewWaiter()
	reader := newEventReader(s.rt.Events(), pos, filter, pageSize)

	id := uuid.NewRandom().String()
	conn, err := s.upgrader.Upgrade(w, req, http.Header{SubscriptionIDHeader: {id}})
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		// Upgrade has already replied to the client
		return nil
	}
	logger.Debug("subscription opened", "id", id, "pos", pos)
	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	var goes co.Goes
	goes.Go(func() {
		defer close(closed)
		for {
			// the subscription is write only, reads drive the pong and close handlers
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer goes.Wait()

	err = s.pipe(req.Context(), conn, reader, waiter, closed)
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Debug("subscription ended", "id", id, "err", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()),
			time.Now().Add(writeWait))
		return nil
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	return nil
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, reader *eventReader, waiter co.Waiter, closed <-chan struct{}) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		msgs, more, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		if more {
			continue
		}

		select {
		case <-waiter.C():
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-closed:
			return nil
		case <-s.done:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// Close ends every open subscription and waits for their handlers to return.
func (s *Subscriptions) Close() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
