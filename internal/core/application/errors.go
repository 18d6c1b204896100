package application

import "errors"

var (
	// ErrSystemPaused is returned by every mutating operation while the
	// admin circuit breaker flag is set.
	ErrSystemPaused = errors.New("system is paused")
	// ErrPriceStale is returned when the oracle quote is older than the
	// configured maximum age.
	ErrPriceStale = errors.New("price quote is stale")
	// ErrPriceOutOfRange is returned when the oracle quote confidence is
	// below the configured minimum.
	ErrPriceOutOfRange = errors.New("price quote confidence out of range")
	// ErrOfferNotActive ...
	ErrOfferNotActive = errors.New("offer is not active")
	// ErrTooManyActiveTrades ...
	ErrTooManyActiveTrades = errors.New("too many active trades for user")
	// ErrServiceUnavailable is returned when an upstream collaborator is
	// temporarily unreachable. Callers may retry; protocol-level rejections
	// are never wrapped in this error.
	ErrServiceUnavailable = errors.New("upstream service unavailable, try again later")
)
