package ports

import "context"

// TradeOutcome is the terminal result reported to the profile service.
type TradeOutcome string

const (
	OutcomeReleased       TradeOutcome = "released"
	OutcomeRefunded       TradeOutcome = "refunded"
	OutcomeCancelled      TradeOutcome = "cancelled"
	OutcomeSettledInFavor TradeOutcome = "settled_in_favor"
	OutcomeSettledAgainst TradeOutcome = "settled_against"
)

// ProfileService is notified after every terminal state. Notification is
// fire-and-forget: a failure must never block settlement.
type ProfileService interface {
	RecordTradeOutcome(ctx context.Context, user string, tradeId uint64, outcome TradeOutcome) error
}
