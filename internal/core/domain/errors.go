package domain

import "errors"

var (
	// ErrInvalidTradeState is thrown when the requested operation is not
	// allowed from the trade's current state.
	ErrInvalidTradeState = errors.New("operation not allowed in current trade state")
	// ErrUnauthorized is thrown when the caller is not the party required to
	// perform the requested operation.
	ErrUnauthorized = errors.New("caller is not authorized for this operation")
	// ErrTradeExpired ...
	ErrTradeExpired = errors.New("trade is expired")
	// ErrTradeNotExpired ...
	ErrTradeNotExpired = errors.New("trade is not expired yet")
	// ErrInvalidAmountRange is thrown when the trade amount is outside the
	// offer or protocol limits.
	ErrInvalidAmountRange = errors.New("amount is outside the allowed range")
	// ErrInsufficientEscrowBalance ...
	ErrInsufficientEscrowBalance = errors.New("escrow balance does not match the trade amount")
	// ErrEscrowAlreadyFunded ...
	ErrEscrowAlreadyFunded = errors.New("escrow account is already funded")
	// ErrEscrowNotFunded ...
	ErrEscrowNotFunded = errors.New("escrow account is not funded")
	// ErrArithmeticOverflow is thrown when a fee or price computation would
	// overflow the native integer width.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	// ErrInvalidFeeConfiguration is thrown when a fee rate exceeds its
	// individual cap or the sum of all rates exceeds the protocol ceiling.
	ErrInvalidFeeConfiguration = errors.New("invalid fee configuration")
	// ErrNoEligibleArbitrators ...
	ErrNoEligibleArbitrators = errors.New("no eligible arbitrators for currency")
	// ErrDisputeWindowNotOpen ...
	ErrDisputeWindowNotOpen = errors.New("dispute window is not open yet")
	// ErrInvalidDisputeWinner is thrown when settling a dispute in favor of
	// an address that is neither the buyer nor the seller.
	ErrInvalidDisputeWinner = errors.New("winner must be either the buyer or the seller")
	// ErrArbitratorIsTrader is thrown when the selected arbitrator matches
	// one of the trading parties.
	ErrArbitratorIsTrader = errors.New("arbitrator must not be the buyer or the seller")
	// ErrMissingContact is thrown when an encrypted contact is required but
	// not provided.
	ErrMissingContact = errors.New("missing encrypted contact")
	// ErrArbitratorNotFound ...
	ErrArbitratorNotFound = errors.New("arbitrator not found in pool")
	// ErrArbitratorAlreadyRegistered ...
	ErrArbitratorAlreadyRegistered = errors.New("arbitrator is already registered for currency")
)
