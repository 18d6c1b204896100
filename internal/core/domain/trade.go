package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeState represents the different states a trade can assume during its
// lifecycle.
type TradeState int

const (
	TradeStateRequestCreated TradeState = iota
	TradeStateRequestAccepted
	TradeStateEscrowFunded
	TradeStateFiatDeposited
	TradeStateEscrowReleased
	TradeStateEscrowDisputed
	TradeStateEscrowRefunded
	TradeStateRequestCancelled
	TradeStateSettledForMaker
	TradeStateSettledForTaker
)

var tradeStateNames = map[TradeState]string{
	TradeStateRequestCreated:   "request_created",
	TradeStateRequestAccepted:  "request_accepted",
	TradeStateEscrowFunded:     "escrow_funded",
	TradeStateFiatDeposited:    "fiat_deposited",
	TradeStateEscrowReleased:   "escrow_released",
	TradeStateEscrowDisputed:   "escrow_disputed",
	TradeStateEscrowRefunded:   "escrow_refunded",
	TradeStateRequestCancelled: "request_cancelled",
	TradeStateSettledForMaker:  "settled_for_maker",
	TradeStateSettledForTaker:  "settled_for_taker",
}

func (s TradeState) String() string {
	if name, ok := tradeStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseTradeState returns the state with the given name.
func ParseTradeState(name string) (TradeState, error) {
	for state, stateName := range tradeStateNames {
		if stateName == name {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown trade state %s", name)
}

// validTransitions is the single source of truth for the trade state graph.
// Any (state, target) pair not listed here is rejected with
// ErrInvalidTradeState.
var validTransitions = map[TradeState][]TradeState{
	TradeStateRequestCreated: {
		TradeStateRequestAccepted, TradeStateRequestCancelled,
	},
	TradeStateRequestAccepted: {
		TradeStateEscrowFunded, TradeStateEscrowRefunded,
	},
	TradeStateEscrowFunded: {
		TradeStateFiatDeposited, TradeStateEscrowRefunded,
	},
	TradeStateFiatDeposited: {
		TradeStateEscrowReleased, TradeStateEscrowDisputed,
	},
	TradeStateEscrowDisputed: {
		TradeStateSettledForMaker, TradeStateSettledForTaker,
	},
}

// OfferType tells whether the originating offer was buying or selling the
// token. The offer owner (maker) is the buyer on buy offers and the seller
// on sell offers.
type OfferType int

const (
	OfferTypeBuy OfferType = iota
	OfferTypeSell
)

// MaxStateHistory is the cap on recorded state changes per trade. Once
// full, the oldest entry is dropped so that a settlement can never fail on
// bookkeeping.
const MaxStateHistory = 20

// StateChange is one entry of a trade's state history.
type StateChange struct {
	State     TradeState
	Actor     string
	Timestamp int64
}

// Trade is the central entity of the lifecycle engine. It owns its escrow
// account and is mutated only through its transition methods.
type Trade struct {
	Id                   uint64 `badgerhold:"key"`
	OfferId              uuid.UUID
	OfferType            OfferType
	Buyer                string
	Seller               string
	Arbitrator           string
	TokenDenom           string
	Amount               uint64
	FiatCurrency         string
	LockedPrice          decimal.Decimal
	State                TradeState
	CreatedAt            int64
	ExpiresAt            int64
	DisputeWindowOpensAt int64
	StateHistory         []StateChange
	BuyerContact         string
	SellerContact        string
	Escrow               EscrowAccount
}

// NewTradeParams groups the immutable fields fixed at creation time.
type NewTradeParams struct {
	OfferId       uuid.UUID
	OfferType     OfferType
	Buyer         string
	Seller        string
	Arbitrator    string
	TokenDenom    string
	Amount        uint64
	FiatCurrency  string
	LockedPrice   decimal.Decimal
	BuyerContact  string
	SellerContact string
	Now           int64
	ExpiryTime    int64
}

// NewTrade returns a trade in RequestCreated state. The id is assigned by
// the repository on insert.
func NewTrade(params NewTradeParams) (*Trade, error) {
	if params.Arbitrator == params.Buyer || params.Arbitrator == params.Seller {
		return nil, ErrArbitratorIsTrader
	}

	t := &Trade{
		OfferId:       params.OfferId,
		OfferType:     params.OfferType,
		Buyer:         params.Buyer,
		Seller:        params.Seller,
		Arbitrator:    params.Arbitrator,
		TokenDenom:    params.TokenDenom,
		Amount:        params.Amount,
		FiatCurrency:  params.FiatCurrency,
		LockedPrice:   params.LockedPrice,
		State:         TradeStateRequestCreated,
		CreatedAt:     params.Now,
		ExpiresAt:     params.ExpiryTime,
		BuyerContact:  params.BuyerContact,
		SellerContact: params.SellerContact,
	}
	t.recordStateChange(TradeStateRequestCreated, t.Taker(), params.Now)
	return t, nil
}

// Maker returns the address of the offer owner.
func (t *Trade) Maker() string {
	if t.OfferType == OfferTypeBuy {
		return t.Buyer
	}
	return t.Seller
}

// Taker returns the address of the counterparty of the offer owner.
func (t *Trade) Taker() string {
	if t.OfferType == OfferTypeBuy {
		return t.Seller
	}
	return t.Buyer
}

// IsTerminal returns whether the trade reached a final state.
func (t *Trade) IsTerminal() bool {
	_, ok := validTransitions[t.State]
	return !ok
}

// IsExpired returns whether the trade expiration time has passed.
func (t *Trade) IsExpired(now int64) bool {
	return t.ExpiresAt > 0 && now > t.ExpiresAt
}

// Accept brings the trade from RequestCreated to RequestAccepted. Only the
// seller may accept, and only before the trade expires.
func (t *Trade) Accept(actor, sellerContact string, now int64) error {
	if actor != t.Seller {
		return ErrUnauthorized
	}
	if t.State != TradeStateRequestCreated {
		return ErrInvalidTradeState
	}
	if t.IsExpired(now) {
		return ErrTradeExpired
	}
	if len(sellerContact) <= 0 {
		return ErrMissingContact
	}

	t.SellerContact = sellerContact
	return t.transitionTo(TradeStateRequestAccepted, actor, now)
}

// FundEscrow brings the trade from RequestAccepted to EscrowFunded and
// credits the escrow account. The caller is responsible for moving the
// tokens before committing the updated trade.
func (t *Trade) FundEscrow(actor string, now int64) error {
	if actor != t.Seller {
		return ErrUnauthorized
	}
	if t.State != TradeStateRequestAccepted {
		return ErrInvalidTradeState
	}
	if t.IsExpired(now) {
		return ErrTradeExpired
	}

	if err := t.Escrow.Fund(t.Amount); err != nil {
		return err
	}
	return t.transitionTo(TradeStateEscrowFunded, actor, now)
}

// MarkFiatDeposited brings the trade from EscrowFunded to FiatDeposited and
// opens the dispute window after the configured delay.
func (t *Trade) MarkFiatDeposited(actor string, now, disputeDelay int64) error {
	if actor != t.Buyer {
		return ErrUnauthorized
	}
	if t.State != TradeStateEscrowFunded {
		return ErrInvalidTradeState
	}

	t.DisputeWindowOpensAt = now + disputeDelay
	return t.transitionTo(TradeStateFiatDeposited, actor, now)
}

// Release brings the trade from FiatDeposited to EscrowReleased and zeroes
// the escrow balance. Fee computation and transfers are orchestrated by the
// caller; this method only validates and commits the state change.
func (t *Trade) Release(actor string, now int64) error {
	if actor != t.Seller {
		return ErrUnauthorized
	}
	if t.State != TradeStateFiatDeposited {
		return ErrInvalidTradeState
	}

	if err := t.Escrow.Withdraw(t.Amount); err != nil {
		return err
	}
	return t.transitionTo(TradeStateEscrowReleased, actor, now)
}

// Cancel brings the trade from RequestCreated to RequestCancelled. Only the
// buyer may cancel a pending request.
func (t *Trade) Cancel(actor string, now int64) error {
	if actor != t.Buyer {
		return ErrUnauthorized
	}
	if t.State != TradeStateRequestCreated {
		return ErrInvalidTradeState
	}
	return t.transitionTo(TradeStateRequestCancelled, actor, now)
}

// Refund brings an expired trade from RequestAccepted or EscrowFunded to
// EscrowRefunded, zeroing the escrow balance if it was funded. Callable by
// anyone once the expiration time has passed.
func (t *Trade) Refund(actor string, now int64) error {
	if t.State != TradeStateRequestAccepted && t.State != TradeStateEscrowFunded {
		return ErrInvalidTradeState
	}
	if !t.IsExpired(now) {
		return ErrTradeNotExpired
	}

	if t.Escrow.IsFunded() {
		if err := t.Escrow.Withdraw(t.Amount); err != nil {
			return err
		}
	}
	return t.transitionTo(TradeStateEscrowRefunded, actor, now)
}

// Dispute brings the trade from FiatDeposited to EscrowDisputed. Either
// party may escalate once the dispute window is open; both encrypted
// contacts must be supplied so the arbitrator can reach the parties.
func (t *Trade) Dispute(actor, buyerContact, sellerContact string, now int64) error {
	if actor != t.Buyer && actor != t.Seller {
		return ErrUnauthorized
	}
	if t.State != TradeStateFiatDeposited {
		return ErrInvalidTradeState
	}
	if now < t.DisputeWindowOpensAt {
		return ErrDisputeWindowNotOpen
	}
	if len(buyerContact) <= 0 || len(sellerContact) <= 0 {
		return ErrMissingContact
	}

	t.BuyerContact = buyerContact
	t.SellerContact = sellerContact
	return t.transitionTo(TradeStateEscrowDisputed, actor, now)
}

// Settle brings the trade from EscrowDisputed to SettledForMaker or
// SettledForTaker depending on the winner's role. Only the assigned
// arbitrator may settle.
func (t *Trade) Settle(actor, winner string, now int64) error {
	if actor != t.Arbitrator {
		return ErrUnauthorized
	}
	if t.State != TradeStateEscrowDisputed {
		return ErrInvalidTradeState
	}
	if winner != t.Buyer && winner != t.Seller {
		return ErrInvalidDisputeWinner
	}

	if err := t.Escrow.Withdraw(t.Amount); err != nil {
		return err
	}

	target := TradeStateSettledForTaker
	if winner == t.Maker() {
		target = TradeStateSettledForMaker
	}
	return t.transitionTo(target, actor, now)
}

// ReassignArbitrator replaces the assigned arbitrator of a disputed trade.
// This is a privileged operator action for stuck disputes only.
func (t *Trade) ReassignArbitrator(arbitrator string, actor string, now int64) error {
	if t.State != TradeStateEscrowDisputed {
		return ErrInvalidTradeState
	}
	if arbitrator == t.Buyer || arbitrator == t.Seller {
		return ErrArbitratorIsTrader
	}
	t.Arbitrator = arbitrator
	t.recordStateChange(t.State, actor, now)
	return nil
}

func (t *Trade) transitionTo(target TradeState, actor string, now int64) error {
	allowed := false
	for _, s := range validTransitions[t.State] {
		if s == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidTradeState
	}

	t.State = target
	t.recordStateChange(target, actor, now)
	return nil
}

func (t *Trade) recordStateChange(state TradeState, actor string, now int64) {
	if len(t.StateHistory) >= MaxStateHistory {
		t.StateHistory = t.StateHistory[1:]
	}
	t.StateHistory = append(t.StateHistory, StateChange{
		State:     state,
		Actor:     actor,
		Timestamp: now,
	})
}
