// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"encoding/binary"
	"slices"

	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/solidity"
)

var (
	slotStakes   = solidity.NameToSlot("stakes")
	slotByStaker = solidity.NameToSlot("stakes-by-staker")
	slotOpen     = solidity.NameToSlot("stakes-open")
)

// openKey indexes the open stakes of a staker in a package.
type openKey struct {
	staker blues.Address
	index  uint32
}

func (k openKey) Bytes() []byte {
	b := make([]byte, 0, len(k.staker)+4)
	b = append(b, k.staker[:]...)
	return binary.BigEndian.AppendUint32(b, k.index)
}

// Service is the append-only stake ledger. Ids equal the ledger length at creation.
type Service struct {
	stakes   *solidity.List[*Stake]
	byStaker *solidity.Mapping[blues.Address, []uint64]
	open     *solidity.Mapping[openKey, []uint64]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		stakes:   solidity.NewList[*Stake](sctx, slotStakes),
		byStaker: solidity.NewMapping[blues.Address, []uint64](sctx, slotByStaker),
		open:     solidity.NewMapping[openKey, []uint64](sctx, slotOpen),
	}
}

// Len returns the number of stakes ever opened.
func (s *Service) Len() (uint64, error) {
	n, err := s.stakes.Len()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get stake count")
	}
	return n, nil
}

// Get returns the stake with id, nil if it does not exist.
func (s *Service) Get(id uint64) (*Stake, error) {
	st, err := s.stakes.Get(id)
	if err != nil {
		if errors.Is(err, solidity.ErrIndexOutOfRange) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to get stake %d", id)
	}
	return st, nil
}

// Add appends a stake and indexes it, returning its id.
func (s *Service) Add(stake *Stake) (uint64, error) {
	id, err := s.stakes.Push(stake)
	if err != nil {
		return 0, errors.Wrap(err, "failed to add stake")
	}

	ids, err := s.byStaker.Get(stake.Staker)
	if err != nil {
		return 0, err
	}
	if err := s.byStaker.Upsert(stake.Staker, append(ids, id)); err != nil {
		return 0, err
	}

	key := openKey{stake.Staker, stake.PackageIndex}
	open, err := s.open.Get(key)
	if err != nil {
		return 0, err
	}
	if err := s.open.Upsert(key, append(open, id)); err != nil {
		return 0, err
	}
	return id, nil
}

// Terminate marks the stake terminated and drops it from the open index.
func (s *Service) Terminate(id uint64, stake *Stake) error {
	stake.Terminated = true
	if err := s.stakes.Set(id, stake); err != nil {
		return errors.Wrapf(err, "failed to terminate stake %d", id)
	}

	key := openKey{stake.Staker, stake.PackageIndex}
	open, err := s.open.Get(key)
	if err != nil {
		return err
	}
	open = slices.DeleteFunc(open, func(v uint64) bool { return v == id })
	if len(open) == 0 {
		s.open.Delete(key)
		return nil
	}
	return s.open.Upsert(key, open)
}

// IDsOf returns the ids of every stake opened by staker, in creation order.
func (s *Service) IDsOf(staker blues.Address) ([]uint64, error) {
	return s.byStaker.Get(staker)
}

// OpenIDs returns the ids of the staker's open stakes in the package, in creation order.
func (s *Service) OpenIDs(staker blues.Address, index uint32) ([]uint64, error) {
	return s.open.Get(openKey{staker, index})
}
