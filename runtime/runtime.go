// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime hosts the staking engine. It serializes operations, gives each one a
// fresh journaled state and the time read once from its clock, then commits the state in
// a single batch, records the resulting events and wakes subscribers.
package runtime

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin"
	"github.com/bluescrypto/staking/builtin/solidity"
	"github.com/bluescrypto/staking/builtin/staker"
	"github.com/bluescrypto/staking/builtin/token"
	"github.com/bluescrypto/staking/co"
	"github.com/bluescrypto/staking/genesis"
	"github.com/bluescrypto/staking/kv"
	"github.com/bluescrypto/staking/log"
	"github.com/bluescrypto/staking/logdb"
	"github.com/bluescrypto/staking/metrics"
	"github.com/bluescrypto/staking/state"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metaAddress   = blues.BytesToAddress([]byte("blues-runtime"))
	slotGenesisID = solidity.NameToSlot("genesis-id")
)

type Options struct {
	CacheSize int // number of committed storage slots kept in memory
}

// Runtime is the single writer of a staking ledger.
type Runtime struct {
	mu     sync.RWMutex
	stater *state.Stater
	logDB  *logdb.LogDB
	gen    *genesis.Genesis
	clock  Clock
	last   uint64 // time of the last committed operation
	signal co.Signal
}

// call is the context of one operation.
type call struct {
	staker *staker.Staker
	token  *token.Token
	now    uint64
	events []*logdb.Event
}

func (c *call) emit(ev *logdb.Event) {
	c.events = append(c.events, ev)
}

// New opens the ledger stored in db. An empty db is populated from the genesis,
// a populated one must have been built from the same genesis.
func New(db kv.Store, logDB *logdb.LogDB, gen *genesis.Genesis, clock Clock, opts Options) (*Runtime, error) {
	r := &Runtime{
		stater: state.NewStater(db, opts.CacheSize),
		logDB:  logDB,
		gen:    gen,
		clock:  clock,
	}
	if err := r.bootstrap(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runtime) bootstrap() error {
	id := r.gen.ID()
	st := r.stater.NewState()
	stored, err := st.GetStorage(metaAddress, slotGenesisID)
	if err != nil {
		return err
	}
	if !stored.IsZero() {
		if stored != id {
			return errors.Errorf("database was built from genesis %v, not %v", stored, id)
		}
		logger.Debug("ledger opened", "genesis", id.AbbrevString())
		return nil
	}

	if err := r.gen.Build(st); err != nil {
		return errors.Wrap(err, "build genesis")
	}
	st.SetStorage(metaAddress, slotGenesisID, id)
	if err := r.stater.Commit(st); err != nil {
		return errors.Wrap(err, "commit genesis")
	}

	launch := r.gen.LaunchTime
	if launch == 0 {
		launch = r.clock.Now()
	}
	var events []*logdb.Event
	for _, a := range r.gen.Accounts {
		events = append(events, &logdb.Event{Kind: logdb.KindMint, Account: a.Address, Amount: a.Balance})
	}
	events = append(events, &logdb.Event{Kind: logdb.KindInitialize, Account: r.gen.Maintainer, Amount: uint64(len(r.gen.Packages))})
	if r.gen.Escrow > 0 {
		events = append(events, &logdb.Event{Kind: logdb.KindCharge, Account: r.gen.Maintainer, Amount: r.gen.Escrow})
	}
	r.record(launch, events)
	logger.Info("ledger created", "genesis", id.AbbrevString(), "packages", len(r.gen.Packages))
	return nil
}

// Genesis returns the genesis the ledger was built from.
func (r *Runtime) Genesis() *genesis.Genesis {
	return r.gen
}

// Events returns the event history.
func (r *Runtime) Events() *logdb.LogDB {
	return r.logDB
}

// NewWaiter returns a waiter woken after every committed operation.
func (r *Runtime) NewWaiter() co.Waiter {
	return r.signal.NewWaiter()
}

// Now returns the time the next operation would observe.
func (r *Runtime) Now() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return max(r.clock.Now(), r.last)
}

// View runs fn against the committed ledger. Writes fn makes are discarded.
func (r *Runtime) View(fn func(s *staker.Staker, tok *token.Token) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := r.stater.NewState()
	s, err := builtin.Staker.WithState(st, r.gen.Mint)
	if err != nil {
		return err
	}
	return fn(s, builtin.Token.WithState(st))
}

// Stake deposits amount into the package for staker and returns the stake id.
func (r *Runtime) Stake(stakerAddr blues.Address, index uint32, amount uint64) (uint64, error) {
	var id uint64
	err := r.exec("stake", func(c *call) error {
		var err error
		if id, err = c.staker.Stake(stakerAddr, index, amount, c.now); err != nil {
			return err
		}
		c.emit(&logdb.Event{Kind: logdb.KindStake, Account: stakerAddr, StakeID: &id, PackageIndex: &index, Amount: amount})
		return nil
	})
	return id, err
}

// Withdraw closes the caller's stake and pays it out.
func (r *Runtime) Withdraw(caller blues.Address, id uint64) (*staker.Withdrawal, error) {
	var w *staker.Withdrawal
	err := r.exec("withdraw", func(c *call) error {
		var err error
		if w, err = c.staker.Withdraw(caller, id, c.now); err != nil {
			return err
		}
		c.emit(&logdb.Event{
			Kind:         logdb.KindWithdraw,
			Account:      caller,
			StakeID:      &w.StakeID,
			PackageIndex: &w.PackageIndex,
			Amount:       w.Payout,
			Extra:        w.Reward,
		})
		return nil
	})
	return w, err
}

// ChargeEscrow moves amount from funder into the vault.
func (r *Runtime) ChargeEscrow(funder blues.Address, amount uint64) error {
	return r.exec("chargeEscrow", func(c *call) error {
		if err := c.staker.ChargeEscrow(funder, amount); err != nil {
			return err
		}
		c.emit(&logdb.Event{Kind: logdb.KindCharge, Account: funder, Amount: amount})
		return nil
	})
}

// ReleaseEscrow moves amount from the vault to destination on behalf of the maintainer.
func (r *Runtime) ReleaseEscrow(caller, destination blues.Address, amount uint64) error {
	return r.exec("releaseEscrow", func(c *call) error {
		if err := c.staker.ReleaseEscrow(caller, destination, amount); err != nil {
			return err
		}
		c.emit(&logdb.Event{Kind: logdb.KindRelease, Account: caller, Counterparty: &destination, Amount: amount})
		return nil
	})
}

// ChangeRewardRate sets the reward rate of a package and returns the previous one.
func (r *Runtime) ChangeRewardRate(caller blues.Address, index uint32, rate uint64) (uint64, error) {
	var previous uint64
	err := r.exec("changeRewardRate", func(c *call) error {
		var err error
		if previous, err = c.staker.ChangeRewardRate(caller, index, rate); err != nil {
			return err
		}
		c.emit(&logdb.Event{Kind: logdb.KindRate, Account: caller, PackageIndex: &index, Amount: rate, Extra: previous})
		return nil
	})
	return previous, err
}

// Mint creates tokens for an account. It is an operator tool and not part of the staking surface.
func (r *Runtime) Mint(to blues.Address, amount uint64) error {
	return r.exec("mint", func(c *call) error {
		if err := c.token.Mint(to, amount); err != nil {
			return err
		}
		c.emit(&logdb.Event{Kind: logdb.KindMint, Account: to, Amount: amount})
		return nil
	})
}

func (r *Runtime) exec(op string, fn func(c *call) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	err := r.run(fn)
	metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": result(err)})
	metricOpDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
	return err
}

func (r *Runtime) run(fn func(c *call) error) error {
	now := max(r.clock.Now(), r.last)

	st := r.stater.NewState()
	s, err := builtin.Staker.WithState(st, r.gen.Mint)
	if err != nil {
		return err
	}
	c := &call{staker: s, token: builtin.Token.WithState(st), now: now}
	if err := fn(c); err != nil {
		return err
	}
	if err := r.stater.Commit(st); err != nil {
		return errors.Wrap(err, "commit state")
	}
	r.last = now

	r.record(now, c.events)
	r.signal.Broadcast()
	r.updateGauges(s)
	return nil
}

// record appends events to the history. The ledger is already committed at this
// point, so a failure here is logged and not reported to the caller.
func (r *Runtime) record(now uint64, events []*logdb.Event) {
	batch := r.logDB.Prepare(now)
	for _, ev := range events {
		batch.Insert(ev)
	}
	if err := batch.Commit(); err != nil {
		logger.Warn("failed to record events", "count", len(events), "err", err)
	}
}

func (r *Runtime) updateGauges(s *staker.Staker) {
	if metrics.NoOp() {
		return
	}
	if pkgs, err := s.Packages(); err == nil {
		for i, p := range pkgs {
			metricPackageLocked().SetWithLabel(int64(p.TotalLockedAmount), packageLabel(i))
		}
	}
	if bal, err := s.VaultBalance(); err == nil {
		metricVaultBalance().Set(int64(bal))
	}
	if n, err := s.StakeCount(); err == nil {
		metricStakeCount().Set(int64(n))
	}
	hit, miss := r.stater.CacheStats()
	metricCacheHit().Set(hit)
	metricCacheMiss().Set(miss)
}
