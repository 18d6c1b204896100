package domain

import (
	"context"
	"errors"
)

// ErrTradeNotFound is returned by repositories when no trade matches the
// requested id.
var ErrTradeNotFound = errors.New("trade not found")

// TradeRepository is the abstraction for any kind of database intended to
// persist Trades.
type TradeRepository interface {
	// AddTrade persists a new trade and returns its assigned sequence id.
	AddTrade(ctx context.Context, trade *Trade) (uint64, error)
	// GetTrade returns the trade with the given id.
	GetTrade(ctx context.Context, tradeId uint64) (*Trade, error)
	// GetAllTrades returns all the trades stored in the repository.
	GetAllTrades(ctx context.Context) ([]*Trade, error)
	// GetTradesByTrader returns all the trades where the given address is
	// buyer or seller.
	GetTradesByTrader(ctx context.Context, address string) ([]*Trade, error)
	// GetTradesByState returns all the trades in the given state.
	GetTradesByState(ctx context.Context, state TradeState) ([]*Trade, error)
	// UpdateTrade allows to commit multiple changes to the same trade in a
	// transactional way.
	UpdateTrade(
		ctx context.Context,
		tradeId uint64,
		updateFn func(t *Trade) (*Trade, error),
	) error
}

// ArbitratorRepository persists the per-currency arbitrator pools. All
// mutations go through UpdatePool so that concurrent selections drawing
// from the same pool serialize on the record.
type ArbitratorRepository interface {
	// GetPool returns the pool for the given fiat currency, or an empty one
	// if none exists yet.
	GetPool(ctx context.Context, fiatCurrency string) (*ArbitratorPool, error)
	// ListPools returns all the registered pools.
	ListPools(ctx context.Context) ([]*ArbitratorPool, error)
	// UpdatePool allows to commit multiple changes to the same pool in a
	// transactional way.
	UpdatePool(
		ctx context.Context,
		fiatCurrency string,
		updateFn func(p *ArbitratorPool) (*ArbitratorPool, error),
	) error
}

// ConfigRepository persists the admin-mutable protocol configuration.
type ConfigRepository interface {
	// GetConfig returns the current protocol configuration.
	GetConfig(ctx context.Context) (*ProtocolConfig, error)
	// UpdateConfig allows to commit changes to the configuration in a
	// transactional way.
	UpdateConfig(
		ctx context.Context,
		updateFn func(c *ProtocolConfig) (*ProtocolConfig, error),
	) error
}
