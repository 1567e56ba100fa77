// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"encoding/binary"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/blues"
)

const selectEvents = "SELECT seq, time, kind, account, counterparty, stakeID, packageIndex, amount, extra FROM event"

type LogDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (*LogDB, error) {
	return open(path, path+"?_journal_mode=WAL&_busy_timeout=5000")
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return open(":memory:", ":memory:")
}

func open(path, dsn string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// LastSeq returns the sequence of the newest event, 0 when empty.
func (db *LogDB) LastSeq(ctx context.Context) (uint64, error) {
	stmt, err := db.stmtCache.Prepare("SELECT COALESCE(MAX(seq), 0) FROM event")
	if err != nil {
		return 0, err
	}
	var seq uint64
	if err := stmt.QueryRowContext(ctx).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, selectEvents+" ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var (
		args  []any
		where = []string{"seq >= ?"}
	)
	args = append(args, filter.FromSeq)

	if filter.Account != nil {
		where = append(where, "(account = ? OR counterparty = ?)")
		args = append(args, filter.Account.Bytes(), filter.Account.Bytes())
	}
	if len(filter.Kinds) > 0 {
		marks := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			marks = append(marks, "?")
			args = append(args, string(k))
		}
		where = append(where, "kind IN ("+strings.Join(marks, ",")+")")
	}
	if filter.StakeID != nil {
		where = append(where, "stakeID = ?")
		args = append(args, *filter.StakeID)
	}

	stmt := selectEvents + " WHERE " + strings.Join(where, " AND ")
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			ev           Event
			kind         string
			account      []byte
			counterparty []byte
			stakeID      sql.NullInt64
			packageIndex sql.NullInt64
			amount       []byte
			extra        []byte
		)
		if err := rows.Scan(
			&ev.Seq,
			&ev.Time,
			&kind,
			&account,
			&counterparty,
			&stakeID,
			&packageIndex,
			&amount,
			&extra,
		); err != nil {
			return nil, err
		}
		ev.Kind = Kind(kind)
		ev.Account = blues.BytesToAddress(account)
		if len(counterparty) > 0 {
			cp := blues.BytesToAddress(counterparty)
			ev.Counterparty = &cp
		}
		if stakeID.Valid {
			id := uint64(stakeID.Int64)
			ev.StakeID = &id
		}
		if packageIndex.Valid {
			index := uint32(packageIndex.Int64)
			ev.PackageIndex = &index
		}
		ev.Amount = decodeAmount(amount)
		ev.Extra = decodeAmount(extra)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Prepare starts a batch of events sharing the same time.
func (db *LogDB) Prepare(time uint64) *Batch {
	return &Batch{db: db.db, time: time}
}

type Batch struct {
	db     *sql.DB
	time   uint64
	events []*Event
}

// Insert queues an event. Seq and Time are assigned on commit.
func (b *Batch) Insert(ev *Event) *Batch {
	b.events = append(b.events, ev)
	return b
}

// Len returns the number of queued events.
func (b *Batch) Len() int {
	return len(b.events)
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Commit writes all queued events in one sql transaction.
func (b *Batch) Commit() error {
	if len(b.events) == 0 {
		return nil
	}
	return b.execInTx(func(tx *sql.Tx) error {
		var last uint64
		if err := tx.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM event").Scan(&last); err != nil {
			return err
		}
		for _, ev := range b.events {
			last++
			var counterparty []byte
			if ev.Counterparty != nil {
				counterparty = ev.Counterparty.Bytes()
			}
			var stakeID, packageIndex any
			if ev.StakeID != nil {
				stakeID = *ev.StakeID
			}
			if ev.PackageIndex != nil {
				packageIndex = *ev.PackageIndex
			}
			if _, err := tx.Exec("INSERT INTO event(seq, time, kind, account, counterparty, stakeID, packageIndex, amount, extra) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
				last,
				b.time,
				string(ev.Kind),
				ev.Account.Bytes(),
				counterparty,
				stakeID,
				packageIndex,
				encodeAmount(ev.Amount),
				encodeAmount(ev.Extra),
			); err != nil {
				return errors.Wrapf(err, "insert %s event", ev.Kind)
			}
			ev.Seq = last
			ev.Time = b.time
		}
		return nil
	})
}

func encodeAmount(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func decodeAmount(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
