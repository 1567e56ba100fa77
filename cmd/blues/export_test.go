// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluescrypto/staking/api"
	"github.com/bluescrypto/staking/logdb"
	"github.com/bluescrypto/staking/test/testledger"
)

func TestExportEvents(t *testing.T) {
	ledger := testledger.New(t)
	for i := range 3 {
		_, err := ledger.Stake(ledger.Account(i+1), 0, uint64(100*(i+1)))
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, exportEvents(context.Background(), ledger.Events(), &buf, false))

	last, err := ledger.Events().LastSeq(context.Background())
	require.NoError(t, err)

	var evs []*api.Event
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var ev api.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		evs = append(evs, &ev)
	}
	require.Len(t, evs, int(last))
	for i, ev := range evs {
		assert.Equal(t, uint64(i+1), ev.Seq)
	}
	tail := evs[len(evs)-1]
	assert.Equal(t, logdb.KindStake, tail.Kind)
	assert.Equal(t, uint64(300), uint64(tail.Amount))
}

func TestPumpEventsPages(t *testing.T) {
	ledger := testledger.New(t)
	last, err := ledger.Events().LastSeq(context.Background())
	require.NoError(t, err)

	// events past last are not exported
	require.NoError(t, ledger.ChargeEscrow(ledger.Account(1), 1))

	ch := make(chan []*logdb.Event, 16)
	require.NoError(t, pumpEvents(context.Background(), ledger.Events(), last, ch))
	close(ch)

	var n uint64
	for page := range ch {
		for _, ev := range page {
			n++
			assert.Equal(t, n, ev.Seq)
		}
	}
	assert.Equal(t, last, n)
}

func TestPumpEventsCancelled(t *testing.T) {
	ledger := testledger.New(t)
	last, err := ledger.Events().LastSeq(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = pumpEvents(ctx, ledger.Events(), last, make(chan []*logdb.Event))
	assert.Error(t, err)
}

func TestExportCompressed(t *testing.T) {
	ledger := testledger.New(t)

	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	require.NoError(t, exportEvents(context.Background(), ledger.Events(), w, false))
	require.NoError(t, w.Close())

	last, err := ledger.Events().LastSeq(context.Background())
	require.NoError(t, err)

	var n uint64
	scanner := bufio.NewScanner(snappy.NewReader(&buf))
	for scanner.Scan() {
		var ev api.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		n++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, last, n)
}
