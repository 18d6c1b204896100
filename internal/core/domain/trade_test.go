package domain_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
)

const (
	buyerAddr      = "local1buyer"
	sellerAddr     = "local1seller"
	arbitratorAddr = "local1arbitrator"

	tradeAmount = uint64(500000000)
	createdAt   = int64(1700000000)
	expiresAt   = createdAt + 1200
)

func newTestTrade(t *testing.T, offerType domain.OfferType) *domain.Trade {
	t.Helper()

	trade, err := domain.NewTrade(domain.NewTradeParams{
		OfferId:      uuid.New(),
		OfferType:    offerType,
		Buyer:        buyerAddr,
		Seller:       sellerAddr,
		Arbitrator:   arbitratorAddr,
		TokenDenom:   "uusdc",
		Amount:       tradeAmount,
		FiatCurrency: "USD",
		LockedPrice:  decimal.NewFromFloat(1.0),
		BuyerContact: "enc:buyer",
		Now:          createdAt,
		ExpiryTime:   expiresAt,
	})
	require.NoError(t, err)
	require.NotNil(t, trade)
	return trade
}

func TestParseTradeState(t *testing.T) {
	t.Parallel()

	for _, state := range []domain.TradeState{
		domain.TradeStateRequestCreated,
		domain.TradeStateEscrowFunded,
		domain.TradeStateSettledForTaker,
	} {
		parsed, err := domain.ParseTradeState(state.String())
		require.NoError(t, err)
		require.Equal(t, state, parsed)
	}

	_, err := domain.ParseTradeState("bogus")
	require.Error(t, err)
}

func TestNewTrade(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, domain.OfferTypeBuy)

	require.Equal(t, domain.TradeStateRequestCreated, trade.State)
	require.Equal(t, buyerAddr, trade.Maker())
	require.Equal(t, sellerAddr, trade.Taker())
	require.False(t, trade.IsTerminal())
	require.Len(t, trade.StateHistory, 1)
	require.Equal(t, domain.TradeStateRequestCreated, trade.StateHistory[0].State)
	require.Equal(t, trade.Taker(), trade.StateHistory[0].Actor)
	require.False(t, trade.Escrow.IsFunded())
}

func TestFailingNewTrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		arbitrator    string
		expectedError error
	}{
		{
			name:          "arbitrator_is_buyer",
			arbitrator:    buyerAddr,
			expectedError: domain.ErrArbitratorIsTrader,
		},
		{
			name:          "arbitrator_is_seller",
			arbitrator:    sellerAddr,
			expectedError: domain.ErrArbitratorIsTrader,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			trade, err := domain.NewTrade(domain.NewTradeParams{
				OfferId:    uuid.New(),
				Buyer:      buyerAddr,
				Seller:     sellerAddr,
				Arbitrator: tt.arbitrator,
				Amount:     tradeAmount,
				Now:        createdAt,
				ExpiryTime: expiresAt,
			})
			require.EqualError(t, err, tt.expectedError.Error())
			require.Nil(t, trade)
		})
	}
}

func TestMakerTaker(t *testing.T) {
	t.Parallel()

	buyTrade := newTestTrade(t, domain.OfferTypeBuy)
	require.Equal(t, buyerAddr, buyTrade.Maker())
	require.Equal(t, sellerAddr, buyTrade.Taker())

	sellTrade := newTestTrade(t, domain.OfferTypeSell)
	require.Equal(t, sellerAddr, sellTrade.Maker())
	require.Equal(t, buyerAddr, sellTrade.Taker())
}

func TestHappyPath(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, domain.OfferTypeSell)
	now := createdAt + 10

	require.NoError(t, trade.Accept(sellerAddr, "enc:seller", now))
	require.Equal(t, domain.TradeStateRequestAccepted, trade.State)
	require.Equal(t, "enc:seller", trade.SellerContact)

	require.NoError(t, trade.FundEscrow(sellerAddr, now+10))
	require.Equal(t, domain.TradeStateEscrowFunded, trade.State)
	require.True(t, trade.Escrow.IsFunded())
	require.Equal(t, tradeAmount, trade.Escrow.Balance)

	require.NoError(t, trade.MarkFiatDeposited(buyerAddr, now+20, 1800))
	require.Equal(t, domain.TradeStateFiatDeposited, trade.State)
	require.Equal(t, now+20+1800, trade.DisputeWindowOpensAt)

	require.NoError(t, trade.Release(sellerAddr, now+30))
	require.Equal(t, domain.TradeStateEscrowReleased, trade.State)
	require.True(t, trade.IsTerminal())
	require.False(t, trade.Escrow.IsFunded())
	require.Zero(t, trade.Escrow.Balance)

	require.Len(t, trade.StateHistory, 5)
	wantStates := []domain.TradeState{
		domain.TradeStateRequestCreated,
		domain.TradeStateRequestAccepted,
		domain.TradeStateEscrowFunded,
		domain.TradeStateFiatDeposited,
		domain.TradeStateEscrowReleased,
	}
	for i, want := range wantStates {
		require.Equal(t, want, trade.StateHistory[i].State)
	}
}

func TestDisputePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		offerType domain.OfferType
		winner    string
		wantState domain.TradeState
	}{
		{
			name:      "buyer_wins_buy_offer",
			offerType: domain.OfferTypeBuy,
			winner:    buyerAddr,
			wantState: domain.TradeStateSettledForMaker,
		},
		{
			name:      "seller_wins_buy_offer",
			offerType: domain.OfferTypeBuy,
			winner:    sellerAddr,
			wantState: domain.TradeStateSettledForTaker,
		},
		{
			name:      "buyer_wins_sell_offer",
			offerType: domain.OfferTypeSell,
			winner:    buyerAddr,
			wantState: domain.TradeStateSettledForTaker,
		},
		{
			name:      "seller_wins_sell_offer",
			offerType: domain.OfferTypeSell,
			winner:    sellerAddr,
			wantState: domain.TradeStateSettledForMaker,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			trade := disputedTrade(t, tt.offerType)

			require.NoError(t, trade.Settle(arbitratorAddr, tt.winner, createdAt+100))
			require.Equal(t, tt.wantState, trade.State)
			require.True(t, trade.IsTerminal())
			require.Zero(t, trade.Escrow.Balance)
		})
	}
}

func TestFailingSettle(t *testing.T) {
	t.Parallel()

	t.Run("not_arbitrator", func(t *testing.T) {
		t.Parallel()

		trade := disputedTrade(t, domain.OfferTypeBuy)
		err := trade.Settle(buyerAddr, buyerAddr, createdAt+100)
		require.EqualError(t, err, domain.ErrUnauthorized.Error())
	})

	t.Run("winner_not_a_party", func(t *testing.T) {
		t.Parallel()

		trade := disputedTrade(t, domain.OfferTypeBuy)
		err := trade.Settle(arbitratorAddr, "local1stranger", createdAt+100)
		require.EqualError(t, err, domain.ErrInvalidDisputeWinner.Error())
	})
}

func TestCancel(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, domain.OfferTypeBuy)

	err := trade.Cancel(sellerAddr, createdAt+5)
	require.EqualError(t, err, domain.ErrUnauthorized.Error())

	require.NoError(t, trade.Cancel(buyerAddr, createdAt+5))
	require.Equal(t, domain.TradeStateRequestCancelled, trade.State)
	require.True(t, trade.IsTerminal())
}

func TestRefund(t *testing.T) {
	t.Parallel()

	t.Run("funded_trade_after_expiry", func(t *testing.T) {
		t.Parallel()

		trade := newTestTrade(t, domain.OfferTypeBuy)
		require.NoError(t, trade.Accept(sellerAddr, "enc:seller", createdAt+10))
		require.NoError(t, trade.FundEscrow(sellerAddr, createdAt+20))

		err := trade.Refund(sellerAddr, expiresAt-1)
		require.EqualError(t, err, domain.ErrTradeNotExpired.Error())

		require.NoError(t, trade.Refund(sellerAddr, expiresAt+1))
		require.Equal(t, domain.TradeStateEscrowRefunded, trade.State)
		require.Zero(t, trade.Escrow.Balance)

		err = trade.Refund(sellerAddr, expiresAt+2)
		require.EqualError(t, err, domain.ErrInvalidTradeState.Error())
	})

	t.Run("accepted_unfunded_trade", func(t *testing.T) {
		t.Parallel()

		trade := newTestTrade(t, domain.OfferTypeBuy)
		require.NoError(t, trade.Accept(sellerAddr, "enc:seller", createdAt+10))

		require.NoError(t, trade.Refund("local1anyone", expiresAt+1))
		require.Equal(t, domain.TradeStateEscrowRefunded, trade.State)
	})
}

func TestAcceptAfterExpiry(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, domain.OfferTypeBuy)

	err := trade.Accept(sellerAddr, "enc:seller", expiresAt+1)
	require.EqualError(t, err, domain.ErrTradeExpired.Error())
	require.Equal(t, domain.TradeStateRequestCreated, trade.State)
}

func TestDisputeWindow(t *testing.T) {
	t.Parallel()

	trade := newTestTrade(t, domain.OfferTypeBuy)
	require.NoError(t, trade.Accept(sellerAddr, "enc:seller", createdAt+10))
	require.NoError(t, trade.FundEscrow(sellerAddr, createdAt+20))
	require.NoError(t, trade.MarkFiatDeposited(buyerAddr, createdAt+30, 1800))

	windowOpensAt := trade.DisputeWindowOpensAt

	err := trade.Dispute(buyerAddr, "enc:buyer", "enc:seller", windowOpensAt-1)
	require.EqualError(t, err, domain.ErrDisputeWindowNotOpen.Error())

	err = trade.Dispute("local1stranger", "enc:buyer", "enc:seller", windowOpensAt)
	require.EqualError(t, err, domain.ErrUnauthorized.Error())

	err = trade.Dispute(buyerAddr, "", "enc:seller", windowOpensAt)
	require.EqualError(t, err, domain.ErrMissingContact.Error())

	require.NoError(
		t, trade.Dispute(sellerAddr, "enc:buyer2", "enc:seller2", windowOpensAt),
	)
	require.Equal(t, domain.TradeStateEscrowDisputed, trade.State)
	require.Equal(t, "enc:buyer2", trade.BuyerContact)
	require.Equal(t, "enc:seller2", trade.SellerContact)
}

// TestStateGraphCoverage drives every operation against every reachable
// state and checks that exactly the listed transitions are accepted.
func TestStateGraphCoverage(t *testing.T) {
	t.Parallel()

	type op struct {
		name string
		run  func(trade *domain.Trade) error
	}

	farFuture := expiresAt + 10000

	ops := []op{
		{"accept", func(tr *domain.Trade) error {
			return tr.Accept(sellerAddr, "enc:seller", createdAt+1)
		}},
		{"fund", func(tr *domain.Trade) error {
			return tr.FundEscrow(sellerAddr, createdAt+1)
		}},
		{"fiat_deposited", func(tr *domain.Trade) error {
			return tr.MarkFiatDeposited(buyerAddr, createdAt+1, 0)
		}},
		{"release", func(tr *domain.Trade) error {
			return tr.Release(sellerAddr, createdAt+1)
		}},
		{"cancel", func(tr *domain.Trade) error {
			return tr.Cancel(buyerAddr, createdAt+1)
		}},
		{"refund", func(tr *domain.Trade) error {
			return tr.Refund(sellerAddr, farFuture)
		}},
		{"dispute", func(tr *domain.Trade) error {
			return tr.Dispute(buyerAddr, "enc:buyer", "enc:seller", farFuture)
		}},
		{"settle", func(tr *domain.Trade) error {
			return tr.Settle(arbitratorAddr, buyerAddr, createdAt+1)
		}},
	}

	allowed := map[domain.TradeState]map[string]bool{
		domain.TradeStateRequestCreated:   {"accept": true, "cancel": true},
		domain.TradeStateRequestAccepted:  {"fund": true, "refund": true},
		domain.TradeStateEscrowFunded:     {"fiat_deposited": true, "refund": true},
		domain.TradeStateFiatDeposited:    {"release": true, "dispute": true},
		domain.TradeStateEscrowDisputed:   {"settle": true},
		domain.TradeStateEscrowReleased:   {},
		domain.TradeStateEscrowRefunded:   {},
		domain.TradeStateRequestCancelled: {},
		domain.TradeStateSettledForMaker:  {},
		domain.TradeStateSettledForTaker:  {},
	}

	// tradeIn rebuilds a fresh trade and walks it to the requested state.
	tradeIn := func(t *testing.T, state domain.TradeState) *domain.Trade {
		t.Helper()

		trade := newTestTrade(t, domain.OfferTypeBuy)
		switch state {
		case domain.TradeStateRequestCreated:
		case domain.TradeStateRequestCancelled:
			require.NoError(t, trade.Cancel(buyerAddr, createdAt+1))
		default:
			require.NoError(t, trade.Accept(sellerAddr, "enc:seller", createdAt+1))
			if state == domain.TradeStateRequestAccepted {
				break
			}
			require.NoError(t, trade.FundEscrow(sellerAddr, createdAt+2))
			switch state {
			case domain.TradeStateEscrowFunded:
			case domain.TradeStateEscrowRefunded:
				require.NoError(t, trade.Refund(sellerAddr, farFuture))
			default:
				require.NoError(t, trade.MarkFiatDeposited(buyerAddr, createdAt+3, 0))
				switch state {
				case domain.TradeStateFiatDeposited:
				case domain.TradeStateEscrowReleased:
					require.NoError(t, trade.Release(sellerAddr, createdAt+4))
				default:
					require.NoError(
						t, trade.Dispute(buyerAddr, "enc:buyer", "enc:seller", createdAt+4),
					)
					switch state {
					case domain.TradeStateEscrowDisputed:
					case domain.TradeStateSettledForMaker:
						require.NoError(t, trade.Settle(arbitratorAddr, buyerAddr, createdAt+5))
					case domain.TradeStateSettledForTaker:
						require.NoError(t, trade.Settle(arbitratorAddr, sellerAddr, createdAt+5))
					}
				}
			}
		}
		require.Equal(t, state, trade.State)
		return trade
	}

	for state, allowedOps := range allowed {
		state, allowedOps := state, allowedOps
		for _, operation := range ops {
			operation := operation
			name := fmt.Sprintf("%s_%s", state, operation.name)
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				trade := tradeIn(t, state)
				err := operation.run(trade)
				if allowedOps[operation.name] {
					require.NoError(t, err)
				} else {
					require.Error(t, err)
					require.Equal(t, state, trade.State)
				}
			})
		}
	}
}

func TestStateHistoryCap(t *testing.T) {
	t.Parallel()

	trade := disputedTrade(t, domain.OfferTypeBuy)

	// Churn the history well past the cap by reassigning the arbitrator.
	for i := 0; i < domain.MaxStateHistory*2; i++ {
		replacement := fmt.Sprintf("local1arb%d", i)
		require.NoError(
			t, trade.ReassignArbitrator(replacement, "operator", createdAt+int64(100+i)),
		)
	}

	require.Len(t, trade.StateHistory, domain.MaxStateHistory)

	// The newest entry survives, the oldest ones were dropped.
	last := trade.StateHistory[len(trade.StateHistory)-1]
	require.Equal(t, createdAt+int64(100+domain.MaxStateHistory*2-1), last.Timestamp)
	require.NotEqual(t, domain.TradeStateRequestCreated, trade.StateHistory[0].State)
}

func TestReassignArbitrator(t *testing.T) {
	t.Parallel()

	trade := disputedTrade(t, domain.OfferTypeBuy)

	err := trade.ReassignArbitrator(buyerAddr, "operator", createdAt+100)
	require.EqualError(t, err, domain.ErrArbitratorIsTrader.Error())

	require.NoError(t, trade.ReassignArbitrator("local1arb2", "operator", createdAt+100))
	require.Equal(t, "local1arb2", trade.Arbitrator)
	require.Equal(t, domain.TradeStateEscrowDisputed, trade.State)

	fresh := newTestTrade(t, domain.OfferTypeBuy)
	err = fresh.ReassignArbitrator("local1arb2", "operator", createdAt+100)
	require.EqualError(t, err, domain.ErrInvalidTradeState.Error())
}

func disputedTrade(t *testing.T, offerType domain.OfferType) *domain.Trade {
	t.Helper()

	trade := newTestTrade(t, offerType)
	require.NoError(t, trade.Accept(sellerAddr, "enc:seller", createdAt+10))
	require.NoError(t, trade.FundEscrow(sellerAddr, createdAt+20))
	require.NoError(t, trade.MarkFiatDeposited(buyerAddr, createdAt+30, 0))
	require.NoError(t, trade.Dispute(buyerAddr, "enc:buyer", "enc:seller", createdAt+40))
	return trade
}
