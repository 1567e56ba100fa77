// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pborman/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluescrypto/staking/api"
	"github.com/bluescrypto/staking/logdb"
	"github.com/bluescrypto/staking/test/testledger"
)

func initSubscriptionsServer(t *testing.T) (*testledger.Ledger, *Subscriptions, *httptest.Server) {
	ledger := testledger.New(t)
	router := mux.NewRouter()
	subs := New(ledger.Runtime, []string{"*"})
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		subs.Close()
		ts.Close()
	})
	return ledger, subs, ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/events", RawQuery: query}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	assert.NotNil(t, uuid.Parse(resp.Header.Get(SubscriptionIDHeader)))
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *api.Event {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev api.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return &ev
}

func TestSubscribeFromStart(t *testing.T) {
	ledger, _, ts := initSubscriptionsServer(t)
	conn := dial(t, ts, "")

	// genesis: one mint per account, then initialize and the escrow charge
	accounts := len(ledger.Genesis().Accounts)
	for i := range accounts {
		ev := readEvent(t, conn)
		assert.Equal(t, logdb.KindMint, ev.Kind)
		assert.Equal(t, uint64(i+1), ev.Seq)
	}
	assert.Equal(t, logdb.KindInitialize, readEvent(t, conn).Kind)
	assert.Equal(t, logdb.KindCharge, readEvent(t, conn).Kind)

	id, err := ledger.Stake(ledger.Account(1), 2, 777)
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.Equal(t, logdb.KindStake, ev.Kind)
	require.NotNil(t, ev.StakeID)
	assert.Equal(t, id, *ev.StakeID)
	assert.Equal(t, uint64(777), uint64(ev.Amount))
}

func TestSubscribeFiltered(t *testing.T) {
	ledger, _, ts := initSubscriptionsServer(t)
	alice := ledger.Account(1)
	conn := dial(t, ts, "kind=stake,withdraw&account="+alice.String())

	_, err := ledger.Stake(ledger.Account(2), 0, 100)
	require.NoError(t, err)
	_, err = ledger.Stake(alice, 0, 200)
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.Equal(t, alice, ev.Account)
	assert.Equal(t, uint64(200), uint64(ev.Amount))
}

func TestSubscribeFromPosition(t *testing.T) {
	ledger, _, ts := initSubscriptionsServer(t)

	last, err := ledger.Events().LastSeq(context.Background())
	require.NoError(t, err)
	require.NoError(t, ledger.ChargeEscrow(ledger.Account(4), 50))

	conn := dial(t, ts, "pos="+strconv.FormatUint(last, 10))
	ev := readEvent(t, conn)
	assert.Equal(t, last+1, ev.Seq)
	assert.Equal(t, logdb.KindCharge, ev.Kind)
	assert.Equal(t, uint64(50), uint64(ev.Amount))
}

func TestSubscribeInvalidArgument(t *testing.T) {
	_, _, ts := initSubscriptionsServer(t)

	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/events", RawQuery: "pos=abc"}
	_, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCloseEndsSubscriptions(t *testing.T) {
	_, subs, ts := initSubscriptionsServer(t)
	conn := dial(t, ts, "kind=rate")

	done := make(chan struct{})
	go func() {
		subs.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not end the subscription")
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)
}
