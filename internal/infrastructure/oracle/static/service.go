// Package staticoracle implements the PriceSource port with fixed prices,
// for development and tests.
package staticoracle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/ports"
)

// Service serves operator-set prices with a fresh timestamp.
type Service struct {
	lock   sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewService returns a Service serving the given price per fiat currency.
func NewService(prices map[string]decimal.Decimal) *Service {
	if prices == nil {
		prices = make(map[string]decimal.Decimal)
	}
	return &Service{prices: prices}
}

// SetPrice sets or replaces the price of a fiat currency.
func (s *Service) SetPrice(fiatCurrency string, price decimal.Decimal) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.prices[fiatCurrency] = price
}

// GetPrice implements ports.PriceSource.
func (s *Service) GetPrice(
	_ context.Context, fiatCurrency string,
) (*ports.PriceQuote, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	price, ok := s.prices[fiatCurrency]
	if !ok {
		return nil, fmt.Errorf("no price configured for currency %s", fiatCurrency)
	}
	return &ports.PriceQuote{
		Price:      price,
		Confidence: decimal.NewFromInt(1),
		Timestamp:  time.Now().Unix(),
	}, nil
}
