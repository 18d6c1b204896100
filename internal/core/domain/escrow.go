package domain

// EscrowAccount tracks the token balance held in custody for a single
// trade. It is owned exclusively by its Trade and is funded, then released
// or refunded, exactly once.
type EscrowAccount struct {
	Balance uint64
	Funded  bool
	Closed  bool
}

// Fund credits the escrow with the trade amount. It fails if the account
// was already funded or already closed.
func (e *EscrowAccount) Fund(amount uint64) error {
	if e.Funded || e.Closed {
		return ErrEscrowAlreadyFunded
	}
	e.Balance = amount
	e.Funded = true
	return nil
}

// Withdraw zeroes the balance for a release, refund or settlement. The
// whole balance leaves the account in one move; partial withdrawals do not
// exist in this model.
func (e *EscrowAccount) Withdraw(amount uint64) error {
	if !e.Funded || e.Closed {
		return ErrEscrowNotFunded
	}
	if e.Balance != amount {
		return ErrInsufficientEscrowBalance
	}
	e.Balance = 0
	e.Closed = true
	return nil
}

// IsFunded returns whether the account currently holds the trade amount.
func (e *EscrowAccount) IsFunded() bool {
	return e.Funded && !e.Closed && e.Balance > 0
}
