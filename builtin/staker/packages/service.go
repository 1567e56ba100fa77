// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packages

import (
	"github.com/pkg/errors"

	"github.com/bluescrypto/staking/blues"
	"github.com/bluescrypto/staking/builtin/solidity"
)

var (
	slotPackages = solidity.NameToSlot("packages")
	slotOpen     = solidity.NameToSlot("packages-open")
)

// Service is the package registry.
type Service struct {
	packages *solidity.List[*Package]
	open     *solidity.Mapping[solidity.Index, *Open]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		packages: solidity.NewList[*Package](sctx, slotPackages),
		open:     solidity.NewMapping[solidity.Index, *Open](sctx, slotOpen),
	}
}

// Len returns the number of packages.
func (s *Service) Len() (uint32, error) {
	n, err := s.packages.Len()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get package count")
	}
	return uint32(n), nil
}

// Populate appends the initial packages. Callers guarantee it runs once.
func (s *Service) Populate(pkgs []Package) error {
	for i := range pkgs {
		p := pkgs[i]
		p.TotalLockedAmount = 0
		if _, err := s.packages.Push(&p); err != nil {
			return errors.Wrapf(err, "failed to add package %d", i)
		}
	}
	return nil
}

// Get returns the package at index, nil if out of range.
func (s *Service) Get(index uint32) (*Package, error) {
	p, err := s.packages.Get(uint64(index))
	if err != nil {
		if errors.Is(err, solidity.ErrIndexOutOfRange) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to get package %d", index)
	}
	return p, nil
}

// All returns every package in index order.
func (s *Service) All() ([]*Package, error) {
	n, err := s.packages.Len()
	if err != nil {
		return nil, err
	}
	all := make([]*Package, 0, n)
	for i := range n {
		p, err := s.packages.Get(i)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get package %d", i)
		}
		all = append(all, p)
	}
	return all, nil
}

// Lock adds an accepted deposit to the package total.
func (s *Service) Lock(index uint32, p *Package, amount uint64) error {
	p.TotalLockedAmount += amount
	return s.packages.Set(uint64(index), p)
}

// SetRewardRate overwrites the reward rate in place.
func (s *Service) SetRewardRate(index uint32, p *Package, rate uint64) error {
	p.RewardRate = rate
	return s.packages.Set(uint64(index), p)
}

// OpenTotals returns the open stake totals of the package.
func (s *Service) OpenTotals(index uint32) (*Open, error) {
	return s.open.Get(solidity.Index(index))
}

// Opened records a new open stake on the package.
func (s *Service) Opened(index uint32, principal uint64) error {
	o, err := s.open.Get(solidity.Index(index))
	if err != nil {
		return err
	}
	o.Principal += principal
	o.Units += principal / blues.BasisPoints
	o.Count++
	return s.open.Upsert(solidity.Index(index), o)
}

// Closed removes a withdrawn stake from the package's open totals.
func (s *Service) Closed(index uint32, principal uint64) error {
	o, err := s.open.Get(solidity.Index(index))
	if err != nil {
		return err
	}
	if o.Count == 0 || o.Principal < principal {
		return errors.Errorf("open totals of package %d out of sync", index)
	}
	o.Principal -= principal
	o.Units -= principal / blues.BasisPoints
	o.Count--
	return s.open.Upsert(solidity.Index(index), o)
}
