// Package wallet implements the TokenWallet port with an in-process
// balance ledger. In a chain-backed deployment this is replaced by the
// host ledger's native token transfers.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficientBalance is returned when the sender cannot cover the
// transfer amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Service is an in-process token ledger.
type Service struct {
	lock     sync.Mutex
	balances map[string]uint64
}

// NewService returns an empty ledger.
func NewService() *Service {
	return &Service{balances: make(map[string]uint64)}
}

// Transfer moves amount of denom between two addresses. It is
// all-or-nothing: on any failure no balance is touched.
func (s *Service) Transfer(
	_ context.Context, denom, from, to string, amount uint64,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	fromKey, toKey := balanceKey(denom, from), balanceKey(denom, to)
	if s.balances[fromKey] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance,
			from, s.balances[fromKey], amount)
	}

	s.balances[fromKey] -= amount
	s.balances[toKey] += amount
	return nil
}

// BalanceOf returns the balance of the given address.
func (s *Service) BalanceOf(
	_ context.Context, denom, address string,
) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.balances[balanceKey(denom, address)], nil
}

// Credit mints tokens onto an address. Used to seed balances in dev and
// tests.
func (s *Service) Credit(denom, address string, amount uint64) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.balances[balanceKey(denom, address)] += amount
}

func balanceKey(denom, address string) string {
	return denom + "/" + address
}
