// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/bluescrypto/staking/log"
)

var (
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a genesis file, the dev genesis is used when omitted",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 64 * 1024,
		Usage: "number of storage slots kept in memory",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8679",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /events API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Usage: "all queries with execution time(ms) above threshold will be logged",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server used to detect host clock drift, empty to disable",
	}

	// operation flags
	callerFlag = cli.StringFlag{
		Name:  "caller",
		Usage: "address the operation is performed as",
	}
	packageFlag = cli.Uint64Flag{
		Name:  "package",
		Usage: "package index",
	}
	amountFlag = cli.Uint64Flag{
		Name:  "amount",
		Usage: "token amount",
	}
	stakeIDFlag = cli.Uint64Flag{
		Name:  "id",
		Usage: "stake id",
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "destination address",
	}
	rateFlag = cli.Uint64Flag{
		Name:  "rate",
		Usage: "reward rate in basis points",
	}
	addressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "account address",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "output file, stdout when omitted",
	}
	compressFlag = cli.BoolFlag{
		Name:  "compress",
		Usage: "write the export as a snappy framed stream",
	}
)
