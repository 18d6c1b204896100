package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/application"
	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
	"github.com/desamtralized/LocalMoney-sub003/internal/core/ports"
	"github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/offer"
	staticoracle "github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/oracle/static"
	"github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/profile"
	"github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/storage/db/inmemory"
	"github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/wallet"
)

const (
	buyerAddr  = "local1buyer"
	sellerAddr = "local1seller"
	arbAddr1   = "local1arb1"
	arbAddr2   = "local1arb2"

	tokenDenom  = "uusdc"
	tradeAmount = uint64(500000000)
)

type staticSeed struct {
	value uint64
}

func (s staticSeed) Seed(_ context.Context) (uint64, error) {
	return s.value, nil
}

type stubPriceSource struct {
	quote *ports.PriceQuote
}

func (s stubPriceSource) GetPrice(
	_ context.Context, _ string,
) (*ports.PriceQuote, error) {
	return s.quote, nil
}

func testConfig() domain.ProtocolConfig {
	return domain.ProtocolConfig{
		FeeRates: domain.FeeRates{
			BurnBps:       100,
			ChainBps:      50,
			WarchestBps:   50,
			ConversionBps: 0,
			ArbitratorBps: 100,
		},
		FeeRecipients: domain.FeeRecipients{
			Burn:       "fee/burn",
			Chain:      "fee/chain",
			Warchest:   "fee/warchest",
			Conversion: "fee/conversion",
		},
		MaxTotalFeeBps:         1000,
		TradeLimitMinUsd:       decimal.NewFromInt(1),
		TradeLimitMaxUsd:       decimal.NewFromInt(50000),
		MaxActiveTradesPerUser: 10,
		TradeExpirationSecs:    1200,
		DisputeDelaySecs:       0,
		MaxPriceAgeSecs:        300,
		MinPriceConfidence:     decimal.RequireFromString("0.5"),
		ReputationGainBps:      25,
		ReputationSlashBps:     100,
	}
}

type engineFixture struct {
	repoManager ports.RepoManager
	offers      *offer.Registry
	ledger      *wallet.Service
	tradeSvc    application.TradeService
	operatorSvc application.OperatorService
	offerId     uuid.UUID
}

// newFixture wires a fully in-process engine: in-memory storage, a static
// price oracle at 1 USD per token and a buy offer owned by the buyer. The
// seller is credited with exactly one trade amount.
func newFixture(
	t *testing.T, cfg domain.ProtocolConfig, arbitrators ...string,
) *engineFixture {
	t.Helper()

	repoManager := inmemory.NewRepoManager(cfg)
	offers := offer.NewRegistry()
	oracle := staticoracle.NewService(map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
	})
	ledger := wallet.NewService()
	seed := staticSeed{value: 42}

	tradeSvc := application.NewTradeService(
		repoManager, offers, oracle, profile.NewNotifier(), ledger, seed,
	)
	operatorSvc := application.NewOperatorService(repoManager, seed)

	ctx := context.Background()
	for _, addr := range arbitrators {
		require.NoError(t, operatorSvc.RegisterArbitrator(ctx, "USD", addr, 10))
	}

	offerId := offers.AddOffer(ports.Offer{
		Owner:        buyerAddr,
		Type:         domain.OfferTypeBuy,
		TokenDenom:   tokenDenom,
		MinAmount:    1,
		MaxAmount:    1000000000000,
		FiatCurrency: "USD",
		Active:       true,
	})

	ledger.Credit(tokenDenom, sellerAddr, tradeAmount)

	return &engineFixture{
		repoManager: repoManager,
		offers:      offers,
		ledger:      ledger,
		tradeSvc:    tradeSvc,
		operatorSvc: operatorSvc,
		offerId:     offerId,
	}
}

func (f *engineFixture) createTrade(t *testing.T) *domain.Trade {
	t.Helper()

	trade, err := f.tradeSvc.CreateTrade(context.Background(), application.CreateTradeRequest{
		OfferId:      f.offerId,
		Amount:       tradeAmount,
		Taker:        sellerAddr,
		BuyerContact: "enc:buyer",
	})
	require.NoError(t, err)
	require.NotNil(t, trade)
	return trade
}

func (f *engineFixture) balance(t *testing.T, address string) uint64 {
	t.Helper()

	balance, err := f.ledger.BalanceOf(context.Background(), tokenDenom, address)
	require.NoError(t, err)
	return balance
}

func (f *engineFixture) arbitratorInfo(t *testing.T, address string) domain.ArbitratorInfo {
	t.Helper()

	pool, err := f.repoManager.ArbitratorRepository().GetPool(context.Background(), "USD")
	require.NoError(t, err)
	info := pool.Get(address)
	require.NotNil(t, info)
	return *info
}

func (f *engineFixture) rewindExpiry(t *testing.T, tradeId uint64) {
	t.Helper()

	err := f.repoManager.TradeRepository().UpdateTrade(
		context.Background(), tradeId,
		func(tr *domain.Trade) (*domain.Trade, error) {
			tr.ExpiresAt = time.Now().Unix() - 1
			return tr, nil
		},
	)
	require.NoError(t, err)
}

func TestCreateTrade(t *testing.T) {
	f := newFixture(t, testConfig(), arbAddr1, arbAddr2)

	trade := f.createTrade(t)
	require.Equal(t, domain.TradeStateRequestCreated, trade.State)
	require.Equal(t, buyerAddr, trade.Buyer)
	require.Equal(t, sellerAddr, trade.Seller)
	require.Equal(t, tradeAmount, trade.Amount)
	require.True(t, trade.LockedPrice.Equal(decimal.NewFromInt(1)))
	require.Contains(t, []string{arbAddr1, arbAddr2}, trade.Arbitrator)

	// The assignment opened a case on the selected arbitrator.
	info := f.arbitratorInfo(t, trade.Arbitrator)
	require.Equal(t, uint32(1), info.CurrentCases)
	require.Equal(t, uint32(1), info.TotalCases)

	stored, err := f.tradeSvc.GetTrade(context.Background(), trade.Id)
	require.NoError(t, err)
	require.Equal(t, trade.Id, stored.Id)
}

func TestFailingCreateTrade(t *testing.T) {
	ctx := context.Background()

	t.Run("offer_not_active", func(t *testing.T) {
		f := newFixture(t, testConfig(), arbAddr1)
		require.NoError(t, f.offers.SetActive(f.offerId, false))

		_, err := f.tradeSvc.CreateTrade(ctx, application.CreateTradeRequest{
			OfferId: f.offerId, Amount: tradeAmount, Taker: sellerAddr,
		})
		require.ErrorIs(t, err, application.ErrOfferNotActive)
	})

	t.Run("amount_below_offer_minimum", func(t *testing.T) {
		f := newFixture(t, testConfig(), arbAddr1)

		_, err := f.tradeSvc.CreateTrade(ctx, application.CreateTradeRequest{
			OfferId: f.offerId, Amount: 0, Taker: sellerAddr,
		})
		require.ErrorIs(t, err, domain.ErrInvalidAmountRange)
	})

	t.Run("fiat_value_above_limit", func(t *testing.T) {
		f := newFixture(t, testConfig(), arbAddr1)

		// 60000 tokens at 1 USD exceed the 50000 USD ceiling.
		_, err := f.tradeSvc.CreateTrade(ctx, application.CreateTradeRequest{
			OfferId: f.offerId, Amount: 60000000000, Taker: sellerAddr,
		})
		require.ErrorIs(t, err, domain.ErrInvalidAmountRange)
	})

	t.Run("no_eligible_arbitrators", func(t *testing.T) {
		f := newFixture(t, testConfig())

		_, err := f.tradeSvc.CreateTrade(ctx, application.CreateTradeRequest{
			OfferId: f.offerId, Amount: tradeAmount, Taker: sellerAddr,
		})
		require.ErrorIs(t, err, domain.ErrNoEligibleArbitrators)
	})

	t.Run("arbitrator_cannot_be_a_party", func(t *testing.T) {
		// The only registered arbitrator is the seller itself.
		f := newFixture(t, testConfig(), sellerAddr)

		_, err := f.tradeSvc.CreateTrade(ctx, application.CreateTradeRequest{
			OfferId: f.offerId, Amount: tradeAmount, Taker: sellerAddr,
		})
		require.ErrorIs(t, err, domain.ErrNoEligibleArbitrators)
	})

	t.Run("too_many_active_trades", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxActiveTradesPerUser = 1
		f := newFixture(t, cfg, arbAddr1)

		f.createTrade(t)

		_, err := f.tradeSvc.CreateTrade(ctx, application.CreateTradeRequest{
			OfferId: f.offerId, Amount: tradeAmount, Taker: sellerAddr,
		})
		require.ErrorIs(t, err, application.ErrTooManyActiveTrades)
	})

	t.Run("too_many_active_trades_for_maker", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxActiveTradesPerUser = 1
		f := newFixture(t, cfg, arbAddr1)

		f.createTrade(t)

		// A fresh taker is still rejected: the offer owner already sits at
		// the limit.
		_, err := f.tradeSvc.CreateTrade(ctx, application.CreateTradeRequest{
			OfferId: f.offerId, Amount: tradeAmount, Taker: "local1otherseller",
		})
		require.ErrorIs(t, err, application.ErrTooManyActiveTrades)
	})
}

func TestCreateTradeRejectsBadQuotes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		quote         *ports.PriceQuote
		expectedError error
	}{
		{
			name: "stale_price",
			quote: &ports.PriceQuote{
				Price:      decimal.NewFromInt(1),
				Confidence: decimal.NewFromInt(1),
				Timestamp:  time.Now().Unix() - 3600,
			},
			expectedError: application.ErrPriceStale,
		},
		{
			name: "low_confidence",
			quote: &ports.PriceQuote{
				Price:      decimal.NewFromInt(1),
				Confidence: decimal.RequireFromString("0.1"),
				Timestamp:  time.Now().Unix(),
			},
			expectedError: application.ErrPriceOutOfRange,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			repoManager := inmemory.NewRepoManager(cfg)
			offers := offer.NewRegistry()
			ledger := wallet.NewService()

			tradeSvc := application.NewTradeService(
				repoManager, offers, stubPriceSource{quote: tt.quote},
				profile.NewNotifier(), ledger, staticSeed{value: 42},
			)

			offerId := offers.AddOffer(ports.Offer{
				Owner:        buyerAddr,
				Type:         domain.OfferTypeBuy,
				TokenDenom:   tokenDenom,
				MinAmount:    1,
				MaxAmount:    1000000000000,
				FiatCurrency: "USD",
				Active:       true,
			})

			_, err := tradeSvc.CreateTrade(ctx, application.CreateTradeRequest{
				OfferId: offerId, Amount: tradeAmount, Taker: sellerAddr,
			})
			require.ErrorIs(t, err, tt.expectedError)
		})
	}
}

// TestHappyPathRelease walks a trade from creation to release and checks
// that every token of the escrow is accounted for: the buyer receives the
// net amount and each fee bucket its floor share, with no arbitration fee
// since no dispute happened.
func TestHappyPathRelease(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(), arbAddr1)

	trade := f.createTrade(t)

	require.NoError(t, f.tradeSvc.AcceptRequest(ctx, trade.Id, sellerAddr, "enc:seller"))
	require.NoError(t, f.tradeSvc.FundEscrow(ctx, trade.Id, sellerAddr))

	// The seller's tokens moved into the trade escrow.
	require.Zero(t, f.balance(t, sellerAddr))

	require.NoError(t, f.tradeSvc.MarkFiatDeposited(ctx, trade.Id, buyerAddr))
	require.NoError(t, f.tradeSvc.ReleaseEscrow(ctx, trade.Id, sellerAddr))

	stored, err := f.tradeSvc.GetTrade(ctx, trade.Id)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStateEscrowReleased, stored.State)
	require.True(t, stored.IsTerminal())
	require.Zero(t, stored.Escrow.Balance)

	// 100+50+50 bps on 500000000.
	buyerBalance := f.balance(t, buyerAddr)
	burn := f.balance(t, "fee/burn")
	chain := f.balance(t, "fee/chain")
	warchest := f.balance(t, "fee/warchest")
	require.Equal(t, uint64(490000000), buyerBalance)
	require.Equal(t, uint64(5000000), burn)
	require.Equal(t, uint64(2500000), chain)
	require.Equal(t, uint64(2500000), warchest)
	require.Zero(t, f.balance(t, arbAddr1))

	// Conservation: everything that entered the escrow left it.
	require.Equal(t, tradeAmount, buyerBalance+burn+chain+warchest)

	// The arbitrator's case slot was freed without counting as resolved.
	info := f.arbitratorInfo(t, trade.Arbitrator)
	require.Zero(t, info.CurrentCases)
	require.Equal(t, uint32(1), info.TotalCases)
	require.Zero(t, info.ResolvedCases)
}

// commitFailRepoManager wraps a working storage backend with a trade
// repository that runs update closures on a detached copy and then reports
// a write failure, so nothing ever persists.
type commitFailRepoManager struct {
	ports.RepoManager
}

func (m commitFailRepoManager) TradeRepository() domain.TradeRepository {
	return commitFailTradeRepository{m.RepoManager.TradeRepository()}
}

type commitFailTradeRepository struct {
	domain.TradeRepository
}

func (r commitFailTradeRepository) UpdateTrade(
	ctx context.Context, tradeId uint64,
	updateFn func(*domain.Trade) (*domain.Trade, error),
) error {
	trade, err := r.TradeRepository.GetTrade(ctx, tradeId)
	if err != nil {
		return err
	}
	if _, err := updateFn(trade); err != nil {
		return err
	}
	return errors.New("storage write failed")
}

// TestFundEscrowRevertsOnFailedCommit checks that a funding whose state
// commit fails after the token transfer sends the tokens back to the
// seller instead of stranding them at the escrow address.
func TestFundEscrowRevertsOnFailedCommit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(), arbAddr1)

	trade := f.createTrade(t)
	require.NoError(t, f.tradeSvc.AcceptRequest(ctx, trade.Id, sellerAddr, "enc:seller"))

	brokenSvc := application.NewTradeService(
		commitFailRepoManager{f.repoManager}, f.offers,
		stubPriceSource{quote: &ports.PriceQuote{
			Price:      decimal.NewFromInt(1),
			Confidence: decimal.NewFromInt(1),
			Timestamp:  time.Now().Unix(),
		}},
		profile.NewNotifier(), f.ledger, staticSeed{value: 42},
	)

	require.Error(t, brokenSvc.FundEscrow(ctx, trade.Id, sellerAddr))

	require.Equal(t, tradeAmount, f.balance(t, sellerAddr))
	require.Zero(t, f.balance(t, fmt.Sprintf("escrow/%d", trade.Id)))

	stored, err := f.tradeSvc.GetTrade(ctx, trade.Id)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStateRequestAccepted, stored.State)

	// The untouched backend still funds normally afterwards.
	require.NoError(t, f.tradeSvc.FundEscrow(ctx, trade.Id, sellerAddr))
}

func TestUnauthorizedActors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(), arbAddr1)

	trade := f.createTrade(t)

	err := f.tradeSvc.AcceptRequest(ctx, trade.Id, buyerAddr, "enc:seller")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.tradeSvc.AcceptRequest(ctx, trade.Id, sellerAddr, "enc:seller"))

	err = f.tradeSvc.FundEscrow(ctx, trade.Id, buyerAddr)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.tradeSvc.FundEscrow(ctx, trade.Id, sellerAddr))

	err = f.tradeSvc.MarkFiatDeposited(ctx, trade.Id, sellerAddr)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.tradeSvc.MarkFiatDeposited(ctx, trade.Id, buyerAddr))

	err = f.tradeSvc.ReleaseEscrow(ctx, trade.Id, buyerAddr)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	// A rejected operation leaves the trade untouched.
	stored, err := f.tradeSvc.GetTrade(ctx, trade.Id)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStateFiatDeposited, stored.State)
	require.Equal(t, tradeAmount, stored.Escrow.Balance)
}

// TestExpiredTradeRefund checks that once a funded trade expires anyone
// can trigger the refund, the full amount returns to the seller with no
// fees taken, and the refund cannot run twice.
func TestExpiredTradeRefund(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(), arbAddr1)

	trade := f.createTrade(t)
	require.NoError(t, f.tradeSvc.AcceptRequest(ctx, trade.Id, sellerAddr, "enc:seller"))
	require.NoError(t, f.tradeSvc.FundEscrow(ctx, trade.Id, sellerAddr))

	err := f.tradeSvc.RefundEscrow(ctx, trade.Id, sellerAddr)
	require.ErrorIs(t, err, domain.ErrTradeNotExpired)

	f.rewindExpiry(t, trade.Id)

	require.NoError(t, f.tradeSvc.RefundEscrow(ctx, trade.Id, "local1anyone"))

	stored, err := f.tradeSvc.GetTrade(ctx, trade.Id)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStateEscrowRefunded, stored.State)
	require.Equal(t, tradeAmount, f.balance(t, sellerAddr))
	require.Zero(t, f.balance(t, buyerAddr))

	err = f.tradeSvc.RefundEscrow(ctx, trade.Id, sellerAddr)
	require.ErrorIs(t, err, domain.ErrInvalidTradeState)
	require.Equal(t, tradeAmount, f.balance(t, sellerAddr))
}

func TestExpiredUnfundedTradeRefund(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(), arbAddr1)

	trade := f.createTrade(t)
	require.NoError(t, f.tradeSvc.AcceptRequest(ctx, trade.Id, sellerAddr, "enc:seller"))

	f.rewindExpiry(t, trade.Id)

	require.NoError(t, f.tradeSvc.RefundEscrow(ctx, trade.Id, buyerAddr))

	// Nothing was in escrow, so the seller still holds the original funds.
	require.Equal(t, tradeAmount, f.balance(t, sellerAddr))
}

// TestDisputeSettlement walks the dispute path: the window gates the
// escalation, only the assigned arbitrator can settle, the winner receives
// the net amount and the arbitrator collects the arbitration fee plus a
// reputation gain.
func TestDisputeSettlement(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.DisputeDelaySecs = 3600
	f := newFixture(t, cfg, arbAddr1)

	trade := f.createTrade(t)
	require.NoError(t, f.tradeSvc.AcceptRequest(ctx, trade.Id, sellerAddr, "enc:seller"))
	require.NoError(t, f.tradeSvc.FundEscrow(ctx, trade.Id, sellerAddr))
	require.NoError(t, f.tradeSvc.MarkFiatDeposited(ctx, trade.Id, buyerAddr))

	err := f.tradeSvc.InitiateDispute(ctx, trade.Id, buyerAddr, "enc:buyer", "enc:seller")
	require.ErrorIs(t, err, domain.ErrDisputeWindowNotOpen)

	// Rewind the window and escalate.
	err = f.repoManager.TradeRepository().UpdateTrade(
		ctx, trade.Id, func(tr *domain.Trade) (*domain.Trade, error) {
			tr.DisputeWindowOpensAt = time.Now().Unix() - 1
			return tr, nil
		},
	)
	require.NoError(t, err)

	require.NoError(
		t, f.tradeSvc.InitiateDispute(ctx, trade.Id, buyerAddr, "enc:buyer", "enc:seller"),
	)

	err = f.tradeSvc.SettleDispute(ctx, trade.Id, buyerAddr, buyerAddr)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	err = f.tradeSvc.SettleDispute(ctx, trade.Id, arbAddr1, "local1stranger")
	require.ErrorIs(t, err, domain.ErrInvalidDisputeWinner)

	require.NoError(t, f.tradeSvc.SettleDispute(ctx, trade.Id, arbAddr1, buyerAddr))

	stored, err := f.tradeSvc.GetTrade(ctx, trade.Id)
	require.NoError(t, err)
	require.Equal(t, domain.TradeStateSettledForMaker, stored.State)

	// 100+50+50 bps to the buckets plus 100 bps to the arbitrator.
	buyerBalance := f.balance(t, buyerAddr)
	arbBalance := f.balance(t, arbAddr1)
	require.Equal(t, uint64(485000000), buyerBalance)
	require.Equal(t, uint64(5000000), arbBalance)

	total := buyerBalance + arbBalance +
		f.balance(t, "fee/burn") + f.balance(t, "fee/chain") + f.balance(t, "fee/warchest")
	require.Equal(t, tradeAmount, total)

	info := f.arbitratorInfo(t, arbAddr1)
	require.Equal(t, uint32(1), info.ResolvedCases)
	require.Zero(t, info.CurrentCases)
	require.Equal(t, uint32(application.DefaultReputationScore+25), info.ReputationScore)
}

func TestCancelFreesArbitratorSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(), arbAddr1)

	trade := f.createTrade(t)
	require.Equal(t, uint32(1), f.arbitratorInfo(t, arbAddr1).CurrentCases)

	require.NoError(t, f.tradeSvc.CancelRequest(ctx, trade.Id, buyerAddr))

	info := f.arbitratorInfo(t, arbAddr1)
	require.Zero(t, info.CurrentCases)
	require.Equal(t, uint32(1), info.TotalCases)
}

func TestPauseBlocksMutations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(), arbAddr1)

	trade := f.createTrade(t)

	require.NoError(t, f.operatorSvc.Pause(ctx))

	_, err := f.tradeSvc.CreateTrade(ctx, application.CreateTradeRequest{
		OfferId: f.offerId, Amount: tradeAmount, Taker: sellerAddr,
	})
	require.ErrorIs(t, err, application.ErrSystemPaused)

	err = f.tradeSvc.AcceptRequest(ctx, trade.Id, sellerAddr, "enc:seller")
	require.ErrorIs(t, err, application.ErrSystemPaused)

	// Reads keep working while paused.
	_, err = f.tradeSvc.GetTrade(ctx, trade.Id)
	require.NoError(t, err)

	require.NoError(t, f.operatorSvc.Resume(ctx))
	require.NoError(t, f.tradeSvc.AcceptRequest(ctx, trade.Id, sellerAddr, "enc:seller"))
}

func TestListTrades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig(), arbAddr1)

	first := f.createTrade(t)
	second := f.createTrade(t)
	require.NotEqual(t, first.Id, second.Id)

	all, err := f.tradeSvc.ListTrades(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	bySeller, err := f.tradeSvc.ListTradesByTrader(ctx, sellerAddr)
	require.NoError(t, err)
	require.Len(t, bySeller, 2)

	byStranger, err := f.tradeSvc.ListTradesByTrader(ctx, "local1stranger")
	require.NoError(t, err)
	require.Empty(t, byStranger)
}
