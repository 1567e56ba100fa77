// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/bluescrypto/staking/api"
	"github.com/bluescrypto/staking/builtin/staker"
	"github.com/bluescrypto/staking/builtin/token"
	"github.com/bluescrypto/staking/genesis"
)

var commands = []cli.Command{
	{
		Name:   "init",
		Usage:  "create the ledger from the genesis and exit",
		Action: withLedger(initAction),
	},
	{
		Name:   "serve",
		Usage:  "serve the ledger over HTTP (default)",
		Action: serveAction,
	},
	{
		Name:   "genesis",
		Usage:  "print the dev genesis as YAML, a starting point for custom networks",
		Action: genesisAction,
	},
	{
		Name:   "mint",
		Usage:  "create tokens for an account",
		Flags:  []cli.Flag{toFlag, amountFlag},
		Action: withLedger(mintAction),
	},
	{
		Name:   "stake",
		Usage:  "lock tokens into a package",
		Flags:  []cli.Flag{callerFlag, packageFlag, amountFlag},
		Action: withLedger(stakeAction),
	},
	{
		Name:   "withdraw",
		Usage:  "close a stake once its lock elapsed",
		Flags:  []cli.Flag{callerFlag, stakeIDFlag},
		Action: withLedger(withdrawAction),
	},
	{
		Name:   "charge",
		Usage:  "fund the escrow vault",
		Flags:  []cli.Flag{callerFlag, amountFlag},
		Action: withLedger(chargeAction),
	},
	{
		Name:   "release",
		Usage:  "move tokens out of the escrow vault (maintainer only)",
		Flags:  []cli.Flag{callerFlag, toFlag, amountFlag},
		Action: withLedger(releaseAction),
	},
	{
		Name:   "set-rate",
		Usage:  "change the reward rate of a package (maintainer only)",
		Flags:  []cli.Flag{callerFlag, packageFlag, rateFlag},
		Action: withLedger(setRateAction),
	},
	{
		Name:   "packages",
		Usage:  "list the packages",
		Action: withLedger(packagesAction),
	},
	{
		Name:   "stakes",
		Usage:  "list the stakes of an account",
		Flags:  []cli.Flag{addressFlag},
		Action: withLedger(stakesAction),
	},
	{
		Name:   "escrow",
		Usage:  "show the escrow vault and what it owes",
		Action: withLedger(escrowAction),
	},
	{
		Name:   "export",
		Usage:  "write the event history as JSON lines",
		Flags:  []cli.Flag{outFlag, compressFlag},
		Action: withLedger(exportAction),
	},
}

// withLedger opens the ledger for the duration of an offline command.
func withLedger(action func(ctx *cli.Context, ldg *ledger) error) func(ctx *cli.Context) error {
	return func(ctx *cli.Context) error {
		initLogger(ctx)
		ldg, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer ldg.close()
		return action(ctx, ldg)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func initAction(_ *cli.Context, ldg *ledger) error {
	gen := ldg.Genesis()
	fmt.Printf("ledger %v (%v) ready in %v\n", gen.ID().AbbrevString(), gen.Name, ldg.dir)
	return nil
}

func genesisAction(_ *cli.Context) error {
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(genesis.NewDevnet())
}

func mintAction(ctx *cli.Context, ldg *ledger) error {
	to, err := addressFlagValue(ctx, toFlag)
	if err != nil {
		return err
	}
	if err := ldg.Mint(to, ctx.Uint64(amountFlag.Name)); err != nil {
		return err
	}
	logger.Info("minted", "to", to, "amount", ctx.Uint64(amountFlag.Name))
	return nil
}

func stakeAction(ctx *cli.Context, ldg *ledger) error {
	caller, err := addressFlagValue(ctx, callerFlag)
	if err != nil {
		return err
	}
	index, err := packageIndex(ctx)
	if err != nil {
		return err
	}
	id, err := ldg.Stake(caller, index, ctx.Uint64(amountFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(&api.StakeResult{ID: id})
}

func withdrawAction(ctx *cli.Context, ldg *ledger) error {
	caller, err := addressFlagValue(ctx, callerFlag)
	if err != nil {
		return err
	}
	w, err := ldg.Withdraw(caller, ctx.Uint64(stakeIDFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(api.ConvertWithdrawal(w))
}

func chargeAction(ctx *cli.Context, ldg *ledger) error {
	caller, err := addressFlagValue(ctx, callerFlag)
	if err != nil {
		return err
	}
	if err := ldg.ChargeEscrow(caller, ctx.Uint64(amountFlag.Name)); err != nil {
		return err
	}
	return escrowAction(ctx, ldg)
}

func releaseAction(ctx *cli.Context, ldg *ledger) error {
	caller, err := addressFlagValue(ctx, callerFlag)
	if err != nil {
		return err
	}
	to, err := addressFlagValue(ctx, toFlag)
	if err != nil {
		return err
	}
	if err := ldg.ReleaseEscrow(caller, to, ctx.Uint64(amountFlag.Name)); err != nil {
		return err
	}
	return escrowAction(ctx, ldg)
}

func setRateAction(ctx *cli.Context, ldg *ledger) error {
	caller, err := addressFlagValue(ctx, callerFlag)
	if err != nil {
		return err
	}
	index, err := packageIndex(ctx)
	if err != nil {
		return err
	}
	rate := ctx.Uint64(rateFlag.Name)
	previous, err := ldg.ChangeRewardRate(caller, index, rate)
	if err != nil {
		return err
	}
	return printJSON(&api.RateResult{Previous: previous, Current: rate})
}

func packagesAction(_ *cli.Context, ldg *ledger) error {
	return ldg.View(func(s *staker.Staker, _ *token.Token) error {
		pkgs, err := s.Packages()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tNAME\tLOCKED\tMAX\tPERIOD\tRATE(bp)")
		for i, p := range pkgs {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%v\t%d\n",
				i, p.Name, p.TotalLockedAmount, p.MaxDepositAmount, time.Duration(p.Period)*time.Second, p.RewardRate)
		}
		return w.Flush()
	})
}

func stakesAction(ctx *cli.Context, ldg *ledger) error {
	addr, err := addressFlagValue(ctx, addressFlag)
	if err != nil {
		return err
	}
	now := ldg.Now()
	return ldg.View(func(s *staker.Staker, _ *token.Token) error {
		ids, err := s.StakesOf(addr)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPACKAGE\tPRINCIPAL\tOPENED\tSTATUS\tPAYOUT")
		for _, id := range ids {
			preview, err := s.GetWithdrawable(id, now)
			if err != nil {
				return err
			}
			stake, err := s.GetStake(id)
			if err != nil {
				return err
			}
			status := "locked"
			switch {
			case preview.Terminated:
				status = "withdrawn"
			case preview.Unlocked:
				status = "unlocked"
			}
			fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%d\n",
				id, stake.PackageIndex, stake.Principal,
				time.Unix(int64(stake.OpenedAt), 0).UTC().Format(time.RFC3339), status, preview.Payout)
		}
		return w.Flush()
	})
}

func escrowAction(_ *cli.Context, ldg *ledger) error {
	var esc *api.Escrow
	err := ldg.View(func(s *staker.Staker, _ *token.Token) error {
		maintainer, err := s.Maintainer()
		if err != nil {
			return err
		}
		balance, err := s.VaultBalance()
		if err != nil {
			return err
		}
		liabilities, err := s.Liabilities()
		if err != nil {
			return err
		}
		esc = api.ConvertEscrow(s.VaultAddress(), maintainer, balance, liabilities)
		return nil
	})
	if err != nil {
		return err
	}
	return printJSON(esc)
}
