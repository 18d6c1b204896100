// Package mathutil implements the fee-splitting arithmetic of the
// protocol. All intermediates are computed on arbitrary-precision decimals
// so that amount times rate can never overflow the native integer width.
package mathutil

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// TenThousands is the basis-point scale: rates are expressed out of 10000.
var TenThousands = uint64(10000)

var (
	// ErrRateTooHigh is returned when a single fee rate exceeds 10000 bps.
	ErrRateTooHigh = errors.New("fee rate exceeds 10000 basis points")
	// ErrRatesExceedCap is returned when the sum of all rates exceeds the
	// configured ceiling.
	ErrRatesExceedCap = errors.New("total fee rate exceeds the configured cap")
	// ErrOverflow is returned when a computed value does not fit an uint64.
	ErrOverflow = errors.New("fee computation overflows uint64")
)

// FeeShare is one named fee bucket. Bps is the input rate, Amount the
// computed share.
type FeeShare struct {
	Name   string
	Bps    uint64
	Amount uint64
}

// SplitFees splits a gross amount into the net value plus the given fee
// buckets. Each bucket gets floor(amount*bps/10000); the net absorbs every
// division remainder, so that net plus the sum of all shares always equals
// the gross amount exactly.
func SplitFees(amount uint64, shares []FeeShare, maxTotalBps uint64) (uint64, []FeeShare, error) {
	amountBig := new(big.Int).SetUint64(amount)
	tenThousandsBig := new(big.Int).SetUint64(TenThousands)

	var totalBps, totalFees uint64
	out := make([]FeeShare, len(shares))
	for i, share := range shares {
		if share.Bps > TenThousands {
			return 0, nil, ErrRateTooHigh
		}
		totalBps += share.Bps

		product := new(big.Int).Mul(amountBig, new(big.Int).SetUint64(share.Bps))
		feeBig := new(big.Int).Div(product, tenThousandsBig)
		if !feeBig.IsUint64() {
			return 0, nil, ErrOverflow
		}
		fee := feeBig.Uint64()

		totalFees += fee
		out[i] = FeeShare{Name: share.Name, Bps: share.Bps, Amount: fee}
	}
	if totalBps > maxTotalBps || totalBps > TenThousands {
		return 0, nil, ErrRatesExceedCap
	}

	// each share is bounded by amount*bps/10000 and the rates sum to no
	// more than 10000, hence totalFees <= amount
	return amount - totalFees, out, nil
}

// FiatValue converts a token amount with the given number of decimals to
// its fiat value at the given price.
func FiatValue(amount uint64, price decimal.Decimal, tokenDecimals int32) decimal.Decimal {
	amountDec := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -tokenDecimals)
	return price.Mul(amountDec)
}
