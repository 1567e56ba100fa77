// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/bluescrypto/staking/api"
	"github.com/bluescrypto/staking/logdb"
)

// eventReader pages through the event history, resuming after the last event it returned.
type eventReader struct {
	db     *logdb.LogDB
	filter logdb.EventFilter
	pos    uint64 // seq of the last event delivered
	limit  uint64
}

func newEventReader(db *logdb.LogDB, pos uint64, filter logdb.EventFilter, limit uint64) *eventReader {
	return &eventReader{
		db:     db,
		filter: filter,
		pos:    pos,
		limit:  limit,
	}
}

// Read returns the next page of events and whether more may follow immediately.
func (er *eventReader) Read(ctx context.Context) ([]*api.Event, bool, error) {
	filter := er.filter
	filter.FromSeq = er.pos + 1
	filter.Order = logdb.ASC
	filter.Options = &logdb.Options{Limit: er.limit}

	evs, err := er.db.FilterEvents(ctx, &filter)
	if err != nil {
		return nil, false, err
	}
	msgs := make([]*api.Event, 0, len(evs))
	for _, ev := range evs {
		msgs = append(msgs, api.ConvertEvent(ev))
		er.pos = ev.Seq
	}
	return msgs, uint64(len(evs)) == er.limit, nil
}
