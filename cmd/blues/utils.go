// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	goruntime "runtime"
	"syscall"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/genesis"
	"github.com/bluescrypto/staking/log"
	"github.com/bluescrypto/staking/logdb"
	"github.com/bluescrypto/staking/lvldb"
	"github.com/bluescrypto/staking/runtime"
)

const (
	// maxClockOffset is the host clock drift that gets reported.
	maxClockOffset = 5 * time.Second
	minCacheSlots  = 1024
	bytesPerSlot   = 256
)

func initLogger(ctx *cli.Context) *slog.LevelVar {
	var lvl slog.LevelVar
	lvl.Set(log.FromLegacyLevel(int(ctx.GlobalUint64(verbosityFlag.Name))))

	var handler slog.Handler
	if ctx.GlobalBool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, &lvl)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, &lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &lvl
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.GlobalString(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	gen, err := genesis.Load(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "load genesis [%v]", path)
	}
	return gen, nil
}

func makeInstanceDir(ctx *cli.Context, gen *genesis.Genesis) (string, error) {
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.New("unable to infer default data dir, use -data-dir to specify")
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gen.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

// ledger bundles the runtime with the databases it owns.
type ledger struct {
	*runtime.Runtime
	dir   string
	close func()
}

func openLedger(ctx *cli.Context) (*ledger, error) {
	gen, err := selectGenesis(ctx)
	if err != nil {
		return nil, err
	}
	instanceDir, err := makeInstanceDir(ctx, gen)
	if err != nil {
		return nil, err
	}

	mainPath := filepath.Join(instanceDir, "main.db")
	mainDB, err := lvldb.New(mainPath, lvldb.Options{CacheSize: 16, OpenFilesCacheCapacity: 64})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", mainPath)
	}
	logPath := filepath.Join(instanceDir, "events.db")
	logDB, err := logdb.New(logPath)
	if err != nil {
		mainDB.Close()
		return nil, errors.Wrapf(err, "open event database [%v]", logPath)
	}
	closeAll := func() {
		logger.Info("closing event database...")
		logDB.Close()
		logger.Info("closing main database...")
		mainDB.Close()
	}

	rt, err := runtime.New(mainDB, logDB, gen, runtime.SystemClock{}, runtime.Options{CacheSize: normalizeCacheSize(ctx.GlobalInt(cacheFlag.Name))})
	if err != nil {
		closeAll()
		return nil, err
	}
	return &ledger{Runtime: rt, dir: instanceDir, close: closeAll}, nil
}

func normalizeCacheSize(slots int) int {
	if slots < minCacheSlots {
		slots = minCacheSlots
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/4 os physical ram
		limit := int(mem.Total / 4 / bytesPerSlot)
		if slots > limit {
			slots = limit
			logger.Warn("cache size(slots) limited", "limit", limit)
		}
	}
	return slots
}

func addressFlagValue(ctx *cli.Context, flag cli.StringFlag) (blues.Address, error) {
	v := ctx.String(flag.Name)
	if v == "" {
		return blues.Address{}, errors.Errorf("--%s is required", flag.Name)
	}
	addr, err := blues.ParseAddress(v)
	if err != nil {
		return blues.Address{}, errors.WithMessagef(err, "--%s", flag.Name)
	}
	return addr, nil
}

func packageIndex(ctx *cli.Context) (uint32, error) {
	index := ctx.Uint64(packageFlag.Name)
	if index > uint64(^uint32(0)) {
		return 0, errors.Errorf("--%s out of range", packageFlag.Name)
	}
	return uint32(index), nil
}

// checkClockOffset warns when the host clock, which dates every stake, drifts from server.
func checkClockOffset(server string) {
	resp, err := ntp.Query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "server", server, "err", err)
		return
	}
	if resp.ClockOffset > maxClockOffset || resp.ClockOffset < -maxClockOffset {
		logger.Warn("clock offset detected", "offset", resp.ClockOffset.String())
	}
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch goruntime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "io.blues.staking")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "io.blues.staking")
		default:
			return filepath.Join(home, ".io.blues.staking")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
