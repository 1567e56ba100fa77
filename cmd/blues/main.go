// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/bluescrypto/staking/cmd/blues/httpserver"
	"github.com/bluescrypto/staking/log"
	"github.com/bluescrypto/staking/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "blues",
		Usage:   "BLUES staking ledger",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			pprofFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			ntpServerFlag,
		},
		Action:   serveAction,
		Commands: commands,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	if ctx.GlobalBool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	ldg, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer ldg.close()

	var apiLogs atomic.Bool
	apiLogs.Store(ctx.GlobalBool(enableAPILogsFlag.Name))
	apiURL, stopAPI, err := httpserver.StartAPIServer(ctx.GlobalString(apiAddrFlag.Name), ldg.Runtime, httpserver.APIConfig{
		AllowedOrigins:       ctx.GlobalString(apiCorsFlag.Name),
		Timeout:              time.Duration(ctx.GlobalUint64(apiTimeoutFlag.Name)) * time.Millisecond,
		LogsLimit:            ctx.GlobalUint64(apiLogsLimitFlag.Name),
		PprofOn:              ctx.GlobalBool(pprofFlag.Name),
		EnableMetrics:        ctx.GlobalBool(enableMetricsFlag.Name),
		EnableReqLogger:      &apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.GlobalUint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	metricsURL := ""
	if ctx.GlobalBool(enableMetricsFlag.Name) {
		url, stopMetrics, err := httpserver.StartMetricsServer(ctx.GlobalString(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); stopMetrics() }()
		metricsURL = url
	}

	printStartupMessage(ldg, apiURL, metricsURL)

	group, groupCtx := errgroup.WithContext(exitSignal)
	if server := ctx.GlobalString(ntpServerFlag.Name); server != "" {
		group.Go(func() error {
			monitorClock(groupCtx, server)
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})
	return group.Wait()
}

// monitorClock checks the host clock at start and then hourly until ctx is done.
func monitorClock(ctx context.Context, server string) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		checkClockOffset(server)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func printStartupMessage(ldg *ledger, apiURL, metricsURL string) {
	gen := ldg.Genesis()
	metricsLine := "Disabled"
	if metricsURL != "" {
		metricsLine = metricsURL
	}
	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Maintainer   [ %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
`,
		"blues "+fullVersion(),
		gen.ID().AbbrevString(), gen.Name,
		gen.Maintainer,
		ldg.dir,
		apiURL,
		metricsLine)
}
