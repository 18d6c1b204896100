package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceQuote is one observation of the fiat price of the traded token.
type PriceQuote struct {
	// Price is the fiat amount per whole token unit.
	Price decimal.Decimal
	// Confidence is the source-reported quality of the quote in [0, 1].
	Confidence decimal.Decimal
	// Timestamp is when the quote was observed, unix seconds.
	Timestamp int64
}

// PriceSource is the oracle consulted once per trade at creation time. The
// locked price never gets re-queried afterwards.
type PriceSource interface {
	// GetPrice returns the latest quote for the given fiat currency.
	GetPrice(ctx context.Context, fiatCurrency string) (*PriceQuote, error)
}
