package ports

import "context"

// TokenWallet moves tokens between external balances and trade escrow
// accounts. Implementations must make Transfer all-or-nothing: the engine
// aborts the whole operation if a transfer fails.
type TokenWallet interface {
	// Transfer moves amount of denom from one address to another.
	Transfer(ctx context.Context, denom, from, to string, amount uint64) error
	// BalanceOf returns the balance of the given address.
	BalanceOf(ctx context.Context, denom, address string) (uint64, error)
}

// SeedSource supplies the unpredictable randomness backing arbitrator
// selection. Whether a VRF oracle or a commit-reveal scheme backs it is a
// deployment decision; the engine only requires that the value is not
// client-predictable.
type SeedSource interface {
	Seed(ctx context.Context) (uint64, error)
}
