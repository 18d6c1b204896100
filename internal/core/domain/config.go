package domain

import "github.com/shopspring/decimal"

// FeeRates holds the protocol fee rates in basis points out of 10000.
type FeeRates struct {
	BurnBps       uint64
	ChainBps      uint64
	WarchestBps   uint64
	ConversionBps uint64
	ArbitratorBps uint64
}

// TotalBps returns the sum of all protocol rates, arbitration included.
func (r FeeRates) TotalBps() uint64 {
	return r.BurnBps + r.ChainBps + r.WarchestBps + r.ConversionBps + r.ArbitratorBps
}

// FeeRecipients maps each protocol fee bucket to its collector address.
// The arbitration fee always goes to the assigned arbitrator instead.
type FeeRecipients struct {
	Burn       string
	Chain      string
	Warchest   string
	Conversion string
}

// ProtocolConfig is the admin-mutable configuration consulted by every
// mutating operation of the engine.
type ProtocolConfig struct {
	FeeRates      FeeRates
	FeeRecipients FeeRecipients
	// MaxTotalFeeBps is the ceiling for the sum of all fee rates.
	MaxTotalFeeBps uint64

	TradeLimitMinUsd decimal.Decimal
	TradeLimitMaxUsd decimal.Decimal
	// MaxActiveTradesPerUser bounds how many non-terminal trades a single
	// address can take part in.
	MaxActiveTradesPerUser int

	// TradeExpirationSecs is the lifetime of a trade request before it can
	// only be cancelled or refunded.
	TradeExpirationSecs int64
	// DisputeDelaySecs is how long after the fiat-deposit confirmation the
	// dispute window opens.
	DisputeDelaySecs int64

	// MaxPriceAgeSecs rejects oracle quotes older than this at creation.
	MaxPriceAgeSecs int64
	// MinPriceConfidence rejects oracle quotes below this confidence.
	MinPriceConfidence decimal.Decimal

	// ReputationGainBps is credited to an arbitrator on settlement;
	// ReputationSlashBps is debited when a stuck dispute is reassigned.
	ReputationGainBps  int32
	ReputationSlashBps int32

	// Paused is the circuit-breaker flag: when set, every mutating
	// operation is rejected.
	Paused bool
}

// Validate checks the fee configuration against the protocol ceiling.
func (c *ProtocolConfig) Validate() error {
	rates := []uint64{
		c.FeeRates.BurnBps, c.FeeRates.ChainBps, c.FeeRates.WarchestBps,
		c.FeeRates.ConversionBps, c.FeeRates.ArbitratorBps,
	}
	for _, rate := range rates {
		if rate > ReputationScale {
			return ErrInvalidFeeConfiguration
		}
	}
	if c.FeeRates.TotalBps() > c.MaxTotalFeeBps {
		return ErrInvalidFeeConfiguration
	}
	return nil
}
