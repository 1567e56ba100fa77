// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/bluescrypto/staking/api"
	"github.com/bluescrypto/staking/logdb"
)

const exportPageSize = 1024

func exportAction(ctx *cli.Context, ldg *ledger) error {
	out := io.Writer(os.Stdout)
	showProgress := false
	if path := ctx.String(outFlag.Name); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "create [%v]", path)
		}
		defer f.Close()
		out = f
		showProgress = true
	}
	if ctx.Bool(compressFlag.Name) {
		w := snappy.NewBufferedWriter(out)
		defer w.Close()
		out = w
	}
	return exportEvents(handleExitSignal(), ldg.Events(), out, showProgress)
}

// exportEvents writes every event as one JSON object per line, oldest first.
func exportEvents(ctx context.Context, db *logdb.LogDB, out io.Writer, showProgress bool) error {
	last, err := db.LastSeq(ctx)
	if err != nil {
		return err
	}

	bar := pb.New64(int64(last)).SetMaxWidth(90)
	if showProgress {
		bar.Start()
	} else {
		bar.NotPrint = true
	}
	defer func() { bar.NotPrint = true }()

	ch := make(chan []*logdb.Event, 4)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(ch)
		return pumpEvents(ctx, db, last, ch)
	})
	group.Go(func() error {
		w := bufio.NewWriter(out)
		enc := json.NewEncoder(w)
		for page := range ch {
			for _, ev := range page {
				if err := enc.Encode(api.ConvertEvent(ev)); err != nil {
					return err
				}
			}
			bar.Add(len(page))
		}
		return w.Flush()
	})
	if err := group.Wait(); err != nil {
		return err
	}
	if showProgress {
		bar.Finish()
	}
	return nil
}

// pumpEvents sends the events up to seq last in pages.
func pumpEvents(ctx context.Context, db *logdb.LogDB, last uint64, ch chan<- []*logdb.Event) error {
	for from := uint64(1); from <= last; {
		page, err := db.FilterEvents(ctx, &logdb.EventFilter{
			FromSeq: from,
			Order:   logdb.ASC,
			Options: &logdb.Options{Limit: exportPageSize},
		})
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		// events committed after the export started are left out
		for len(page) > 0 && page[len(page)-1].Seq > last {
			page = page[:len(page)-1]
		}
		if len(page) == 0 {
			return nil
		}
		select {
		case ch <- page:
		case <-ctx.Done():
			return ctx.Err()
		}
		from = page[len(page)-1].Seq + 1
	}
	return nil
}
