package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
	"github.com/desamtralized/LocalMoney-sub003/internal/core/ports"
	"github.com/desamtralized/LocalMoney-sub003/pkg/circuitbreaker"
	"github.com/desamtralized/LocalMoney-sub003/pkg/mathutil"
	"github.com/desamtralized/LocalMoney-sub003/pkg/stats"
)

// TokenDecimals is the precision of token amounts handled by the engine.
const TokenDecimals = 6

// CreateTradeRequest groups the taker-provided parameters of a new trade.
type CreateTradeRequest struct {
	OfferId      uuid.UUID
	Amount       uint64
	Taker        string
	BuyerContact string
}

// TradeService is the entry point for every lifecycle operation of a
// trade, from request to settlement.
type TradeService interface {
	CreateTrade(ctx context.Context, req CreateTradeRequest) (*domain.Trade, error)
	AcceptRequest(ctx context.Context, tradeId uint64, actor, sellerContact string) error
	FundEscrow(ctx context.Context, tradeId uint64, actor string) error
	MarkFiatDeposited(ctx context.Context, tradeId uint64, actor string) error
	ReleaseEscrow(ctx context.Context, tradeId uint64, actor string) error
	CancelRequest(ctx context.Context, tradeId uint64, actor string) error
	RefundEscrow(ctx context.Context, tradeId uint64, actor string) error
	InitiateDispute(
		ctx context.Context,
		tradeId uint64, actor, buyerContact, sellerContact string,
	) error
	SettleDispute(ctx context.Context, tradeId uint64, actor, winner string) error

	GetTrade(ctx context.Context, tradeId uint64) (*domain.Trade, error)
	ListTrades(ctx context.Context) ([]*domain.Trade, error)
	ListTradesByTrader(ctx context.Context, address string) ([]*domain.Trade, error)
	ListTradesByState(ctx context.Context, state domain.TradeState) ([]*domain.Trade, error)
}

type tradeService struct {
	repoManager ports.RepoManager
	offerSvc    ports.OfferService
	priceSource ports.PriceSource
	profileSvc  ports.ProfileService
	wallet      ports.TokenWallet
	seedSource  ports.SeedSource

	priceBreaker   *gobreaker.CircuitBreaker
	profileBreaker *gobreaker.CircuitBreaker
}

// NewTradeService returns a TradeService backed by the given repositories
// and collaborators.
func NewTradeService(
	repoManager ports.RepoManager,
	offerSvc ports.OfferService,
	priceSource ports.PriceSource,
	profileSvc ports.ProfileService,
	wallet ports.TokenWallet,
	seedSource ports.SeedSource,
) TradeService {
	return &tradeService{
		repoManager:    repoManager,
		offerSvc:       offerSvc,
		priceSource:    priceSource,
		profileSvc:     profileSvc,
		wallet:         wallet,
		seedSource:     seedSource,
		priceBreaker:   circuitbreaker.NewCircuitBreaker("price_source"),
		profileBreaker: circuitbreaker.NewCircuitBreaker("profile_service"),
	}
}

func (s *tradeService) CreateTrade(
	ctx context.Context, req CreateTradeRequest,
) (trade *domain.Trade, err error) {
	defer func() { stats.CountOperation("create_trade", err) }()

	cfg, err := s.checkNotPaused(ctx)
	if err != nil {
		return nil, err
	}

	offer, err := s.offerSvc.GetOffer(ctx, req.OfferId)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching offer: %s", ErrServiceUnavailable, err)
	}
	if !offer.Active {
		return nil, ErrOfferNotActive
	}
	if req.Amount < offer.MinAmount || req.Amount > offer.MaxAmount {
		return nil, domain.ErrInvalidAmountRange
	}

	quote, err := s.getValidatedPrice(ctx, offer.FiatCurrency, cfg)
	if err != nil {
		return nil, err
	}

	fiatValue := mathutil.FiatValue(req.Amount, quote.Price, TokenDecimals)
	if fiatValue.LessThan(cfg.TradeLimitMinUsd) ||
		fiatValue.GreaterThan(cfg.TradeLimitMaxUsd) {
		return nil, domain.ErrInvalidAmountRange
	}

	buyer, seller := offer.Owner, req.Taker
	if offer.Type == domain.OfferTypeSell {
		buyer, seller = req.Taker, offer.Owner
	}

	// Both parties gain an active trade, so both are bound by the limit.
	for _, party := range []string{req.Taker, offer.Owner} {
		if err := s.checkActiveTrades(ctx, party, cfg); err != nil {
			return nil, err
		}
	}

	seed, err := s.seedSource.Seed(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: drawing selection seed: %s", ErrServiceUnavailable, err)
	}

	var arbitrator string
	if err := s.repoManager.ArbitratorRepository().UpdatePool(
		ctx, offer.FiatCurrency,
		func(p *domain.ArbitratorPool) (*domain.ArbitratorPool, error) {
			selected, err := p.Select(seed, buyer, seller)
			if err != nil {
				return nil, err
			}
			selected.CurrentCases++
			selected.TotalCases++
			arbitrator = selected.Address
			return p, nil
		},
	); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	trade, err = domain.NewTrade(domain.NewTradeParams{
		OfferId:      offer.Id,
		OfferType:    offer.Type,
		Buyer:        buyer,
		Seller:       seller,
		Arbitrator:   arbitrator,
		TokenDenom:   offer.TokenDenom,
		Amount:       req.Amount,
		FiatCurrency: offer.FiatCurrency,
		LockedPrice:  quote.Price,
		BuyerContact: req.BuyerContact,
		Now:          now,
		ExpiryTime:   now + cfg.TradeExpirationSecs,
	})
	if err != nil {
		s.releaseArbitratorCase(ctx, offer.FiatCurrency, arbitrator, false)
		return nil, err
	}

	tradeId, err := s.repoManager.TradeRepository().AddTrade(ctx, trade)
	if err != nil {
		s.releaseArbitratorCase(ctx, offer.FiatCurrency, arbitrator, false)
		return nil, err
	}
	trade.Id = tradeId

	log.WithFields(log.Fields{
		"trade_id":   tradeId,
		"offer_id":   offer.Id,
		"buyer":      buyer,
		"seller":     seller,
		"arbitrator": arbitrator,
		"amount":     req.Amount,
		"fiat":       offer.FiatCurrency,
		"price":      quote.Price.String(),
	}).Info("trade created")
	return trade, nil
}

func (s *tradeService) AcceptRequest(
	ctx context.Context, tradeId uint64, actor, sellerContact string,
) (err error) {
	defer func() { stats.CountOperation("accept_request", err) }()

	if _, err = s.checkNotPaused(ctx); err != nil {
		return err
	}

	err = s.repoManager.TradeRepository().UpdateTrade(
		ctx, tradeId, func(t *domain.Trade) (*domain.Trade, error) {
			if err := t.Accept(actor, sellerContact, time.Now().Unix()); err != nil {
				return nil, err
			}
			return t, nil
		},
	)
	if err == nil {
		log.WithField("trade_id", tradeId).Info("trade request accepted")
	}
	return err
}

func (s *tradeService) FundEscrow(
	ctx context.Context, tradeId uint64, actor string,
) (err error) {
	defer func() { stats.CountOperation("fund_escrow", err) }()

	if _, err = s.checkNotPaused(ctx); err != nil {
		return err
	}

	var funded *domain.Trade
	err = s.repoManager.TradeRepository().UpdateTrade(
		ctx, tradeId, func(t *domain.Trade) (*domain.Trade, error) {
			if err := t.FundEscrow(actor, time.Now().Unix()); err != nil {
				return nil, err
			}
			// moving the tokens is the last step: if it fails nothing is
			// persisted, if it succeeds the funded state is committed
			if err := s.wallet.Transfer(
				ctx, t.TokenDenom, t.Seller, escrowAddress(t.Id), t.Amount,
			); err != nil {
				return nil, err
			}
			funded = t
			return t, nil
		},
	)
	if err != nil {
		if funded != nil {
			// The transfer went through but the state commit did not. Send
			// the tokens back so they are not stranded at the escrow
			// address of a trade still recorded as unfunded.
			if revertErr := s.wallet.Transfer(
				ctx, funded.TokenDenom,
				escrowAddress(funded.Id), funded.Seller, funded.Amount,
			); revertErr != nil {
				log.WithError(revertErr).WithField("trade_id", tradeId).
					Error("could not return escrow funds after failed commit")
			}
		}
		return err
	}

	log.WithField("trade_id", tradeId).Info("escrow funded")
	return nil
}

func (s *tradeService) MarkFiatDeposited(
	ctx context.Context, tradeId uint64, actor string,
) (err error) {
	defer func() { stats.CountOperation("mark_fiat_deposited", err) }()

	cfg, err := s.checkNotPaused(ctx)
	if err != nil {
		return err
	}

	err = s.repoManager.TradeRepository().UpdateTrade(
		ctx, tradeId, func(t *domain.Trade) (*domain.Trade, error) {
			if err := t.MarkFiatDeposited(
				actor, time.Now().Unix(), cfg.DisputeDelaySecs,
			); err != nil {
				return nil, err
			}
			return t, nil
		},
	)
	if err == nil {
		log.WithField("trade_id", tradeId).Info("fiat deposit confirmed")
	}
	return err
}

func (s *tradeService) ReleaseEscrow(
	ctx context.Context, tradeId uint64, actor string,
) (err error) {
	defer func() { stats.CountOperation("release_escrow", err) }()

	cfg, err := s.checkNotPaused(ctx)
	if err != nil {
		return err
	}

	var released *domain.Trade
	err = s.repoManager.TradeRepository().UpdateTrade(
		ctx, tradeId, func(t *domain.Trade) (*domain.Trade, error) {
			net, shares, err := protocolFeeShares(t.Amount, cfg, false)
			if err != nil {
				return nil, err
			}
			if err := t.Release(actor, time.Now().Unix()); err != nil {
				return nil, err
			}
			payments := append(
				[]payment{{to: t.Buyer, amount: net}},
				feePayments(shares, cfg.FeeRecipients, t.Arbitrator)...,
			)
			if err := s.payout(ctx, t.TokenDenom, escrowAddress(t.Id), payments); err != nil {
				return nil, err
			}
			released = t
			return t, nil
		},
	)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"trade_id": tradeId,
		"buyer":    released.Buyer,
		"amount":   released.Amount,
	}).Info("escrow released")
	s.closeArbitratorCase(ctx, released)
	s.notifyOutcome(released.Buyer, tradeId, ports.OutcomeReleased)
	s.notifyOutcome(released.Seller, tradeId, ports.OutcomeReleased)
	return nil
}

func (s *tradeService) CancelRequest(
	ctx context.Context, tradeId uint64, actor string,
) (err error) {
	defer func() { stats.CountOperation("cancel_request", err) }()

	if _, err = s.checkNotPaused(ctx); err != nil {
		return err
	}

	var cancelled *domain.Trade
	err = s.repoManager.TradeRepository().UpdateTrade(
		ctx, tradeId, func(t *domain.Trade) (*domain.Trade, error) {
			if err := t.Cancel(actor, time.Now().Unix()); err != nil {
				return nil, err
			}
			cancelled = t
			return t, nil
		},
	)
	if err != nil {
		return err
	}

	log.WithField("trade_id", tradeId).Info("trade request cancelled")
	s.closeArbitratorCase(ctx, cancelled)
	s.notifyOutcome(cancelled.Buyer, tradeId, ports.OutcomeCancelled)
	s.notifyOutcome(cancelled.Seller, tradeId, ports.OutcomeCancelled)
	return nil
}

func (s *tradeService) RefundEscrow(
	ctx context.Context, tradeId uint64, actor string,
) (err error) {
	defer func() { stats.CountOperation("refund_escrow", err) }()

	if _, err = s.checkNotPaused(ctx); err != nil {
		return err
	}

	var refunded *domain.Trade
	err = s.repoManager.TradeRepository().UpdateTrade(
		ctx, tradeId, func(t *domain.Trade) (*domain.Trade, error) {
			wasFunded := t.Escrow.IsFunded()
			if err := t.Refund(actor, time.Now().Unix()); err != nil {
				return nil, err
			}
			if wasFunded {
				// the full amount goes back to the seller, no fees taken
				if err := s.wallet.Transfer(
					ctx, t.TokenDenom, escrowAddress(t.Id), t.Seller, t.Amount,
				); err != nil {
					return nil, err
				}
			}
			refunded = t
			return t, nil
		},
	)
	if err != nil {
		return err
	}

	log.WithField("trade_id", tradeId).Info("expired trade refunded")
	s.closeArbitratorCase(ctx, refunded)
	s.notifyOutcome(refunded.Buyer, tradeId, ports.OutcomeRefunded)
	s.notifyOutcome(refunded.Seller, tradeId, ports.OutcomeRefunded)
	return nil
}

func (s *tradeService) InitiateDispute(
	ctx context.Context, tradeId uint64, actor, buyerContact, sellerContact string,
) (err error) {
	defer func() { stats.CountOperation("initiate_dispute", err) }()

	if _, err = s.checkNotPaused(ctx); err != nil {
		return err
	}

	err = s.repoManager.TradeRepository().UpdateTrade(
		ctx, tradeId, func(t *domain.Trade) (*domain.Trade, error) {
			if err := t.Dispute(
				actor, buyerContact, sellerContact, time.Now().Unix(),
			); err != nil {
				return nil, err
			}
			return t, nil
		},
	)
	if err == nil {
		log.WithFields(log.Fields{
			"trade_id":  tradeId,
			"initiator": actor,
		}).Warn("trade disputed")
	}
	return err
}

func (s *tradeService) SettleDispute(
	ctx context.Context, tradeId uint64, actor, winner string,
) (err error) {
	defer func() { stats.CountOperation("settle_dispute", err) }()

	cfg, err := s.checkNotPaused(ctx)
	if err != nil {
		return err
	}

	var settled *domain.Trade
	err = s.repoManager.TradeRepository().UpdateTrade(
		ctx, tradeId, func(t *domain.Trade) (*domain.Trade, error) {
			net, shares, err := protocolFeeShares(t.Amount, cfg, true)
			if err != nil {
				return nil, err
			}
			if err := t.Settle(actor, winner, time.Now().Unix()); err != nil {
				return nil, err
			}
			payments := append(
				[]payment{{to: winner, amount: net}},
				feePayments(shares, cfg.FeeRecipients, t.Arbitrator)...,
			)
			if err := s.payout(ctx, t.TokenDenom, escrowAddress(t.Id), payments); err != nil {
				return nil, err
			}
			settled = t
			return t, nil
		},
	)
	if err != nil {
		return err
	}

	if err := s.repoManager.ArbitratorRepository().UpdatePool(
		ctx, settled.FiatCurrency,
		func(p *domain.ArbitratorPool) (*domain.ArbitratorPool, error) {
			info := p.Get(settled.Arbitrator)
			if info == nil {
				return nil, domain.ErrArbitratorNotFound
			}
			info.ResolvedCases++
			if info.CurrentCases > 0 {
				info.CurrentCases--
			}
			info.AdjustReputation(cfg.ReputationGainBps)
			return p, nil
		},
	); err != nil {
		log.WithError(err).WithField("trade_id", tradeId).
			Warn("could not update arbitrator stats after settlement")
	}

	loser := settled.Buyer
	if winner == settled.Buyer {
		loser = settled.Seller
	}
	log.WithFields(log.Fields{
		"trade_id":   tradeId,
		"winner":     winner,
		"arbitrator": actor,
		"state":      settled.State.String(),
	}).Info("dispute settled")
	s.notifyOutcome(winner, tradeId, ports.OutcomeSettledInFavor)
	s.notifyOutcome(loser, tradeId, ports.OutcomeSettledAgainst)
	return nil
}

func (s *tradeService) GetTrade(
	ctx context.Context, tradeId uint64,
) (*domain.Trade, error) {
	return s.repoManager.TradeRepository().GetTrade(ctx, tradeId)
}

func (s *tradeService) ListTrades(ctx context.Context) ([]*domain.Trade, error) {
	return s.repoManager.TradeRepository().GetAllTrades(ctx)
}

func (s *tradeService) ListTradesByTrader(
	ctx context.Context, address string,
) ([]*domain.Trade, error) {
	return s.repoManager.TradeRepository().GetTradesByTrader(ctx, address)
}

func (s *tradeService) ListTradesByState(
	ctx context.Context, state domain.TradeState,
) ([]*domain.Trade, error) {
	return s.repoManager.TradeRepository().GetTradesByState(ctx, state)
}

func (s *tradeService) checkNotPaused(
	ctx context.Context,
) (*domain.ProtocolConfig, error) {
	cfg, err := s.repoManager.ConfigRepository().GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading protocol config: %s", ErrServiceUnavailable, err)
	}
	if cfg.Paused {
		return nil, ErrSystemPaused
	}
	return cfg, nil
}

func (s *tradeService) getValidatedPrice(
	ctx context.Context, fiatCurrency string, cfg *domain.ProtocolConfig,
) (*ports.PriceQuote, error) {
	res, err := s.priceBreaker.Execute(func() (interface{}, error) {
		return s.priceSource.GetPrice(ctx, fiatCurrency)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching price: %s", ErrServiceUnavailable, err)
	}
	quote := res.(*ports.PriceQuote)

	if time.Now().Unix()-quote.Timestamp > cfg.MaxPriceAgeSecs {
		return nil, ErrPriceStale
	}
	if quote.Confidence.LessThan(cfg.MinPriceConfidence) {
		return nil, ErrPriceOutOfRange
	}
	return quote, nil
}

func (s *tradeService) checkActiveTrades(
	ctx context.Context, address string, cfg *domain.ProtocolConfig,
) error {
	if cfg.MaxActiveTradesPerUser <= 0 {
		return nil
	}
	trades, err := s.repoManager.TradeRepository().GetTradesByTrader(ctx, address)
	if err != nil {
		return err
	}
	active := 0
	for _, t := range trades {
		if !t.IsTerminal() {
			active++
		}
	}
	if active >= cfg.MaxActiveTradesPerUser {
		return ErrTooManyActiveTrades
	}
	return nil
}

// closeArbitratorCase frees one slot of the trade's arbitrator once the
// trade reached a terminal state without their intervention.
func (s *tradeService) closeArbitratorCase(ctx context.Context, t *domain.Trade) {
	s.releaseArbitratorCase(ctx, t.FiatCurrency, t.Arbitrator, true)
}

func (s *tradeService) releaseArbitratorCase(
	ctx context.Context, fiatCurrency, arbitrator string, caseWasOpen bool,
) {
	if err := s.repoManager.ArbitratorRepository().UpdatePool(
		ctx, fiatCurrency,
		func(p *domain.ArbitratorPool) (*domain.ArbitratorPool, error) {
			info := p.Get(arbitrator)
			if info == nil {
				return nil, domain.ErrArbitratorNotFound
			}
			if info.CurrentCases > 0 {
				info.CurrentCases--
			}
			if !caseWasOpen && info.TotalCases > 0 {
				info.TotalCases--
			}
			return p, nil
		},
	); err != nil {
		log.WithError(err).WithField("arbitrator", arbitrator).
			Warn("could not release arbitrator case slot")
	}
}

// notifyOutcome reports a terminal state to the profile service without
// ever blocking the settlement path.
func (s *tradeService) notifyOutcome(
	user string, tradeId uint64, outcome ports.TradeOutcome,
) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := s.profileBreaker.Execute(func() (interface{}, error) {
			return nil, s.profileSvc.RecordTradeOutcome(ctx, user, tradeId, outcome)
		}); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"trade_id": tradeId,
				"user":     user,
			}).Warn("could not notify trade outcome")
		}
	}()
}

type payment struct {
	to     string
	amount uint64
}

// payout transfers every payment from the escrow address, reversing the
// already-applied ones if a later transfer fails so that the escrow is
// never left partially drained.
func (s *tradeService) payout(
	ctx context.Context, denom, from string, payments []payment,
) error {
	applied := make([]payment, 0, len(payments))
	for _, p := range payments {
		if p.amount == 0 {
			continue
		}
		if err := s.wallet.Transfer(ctx, denom, from, p.to, p.amount); err != nil {
			for _, a := range applied {
				if revertErr := s.wallet.Transfer(
					ctx, denom, a.to, from, a.amount,
				); revertErr != nil {
					log.WithError(revertErr).WithField("recipient", a.to).
						Error("could not revert partial payout")
				}
			}
			return err
		}
		applied = append(applied, p)
	}
	return nil
}

// protocolFeeShares returns the fee split applied on release or, when
// withArbitration is set, on dispute settlement.
func protocolFeeShares(
	amount uint64, cfg *domain.ProtocolConfig, withArbitration bool,
) (uint64, []mathutil.FeeShare, error) {
	shares := []mathutil.FeeShare{
		{Name: "burn", Bps: cfg.FeeRates.BurnBps},
		{Name: "chain", Bps: cfg.FeeRates.ChainBps},
		{Name: "warchest", Bps: cfg.FeeRates.WarchestBps},
		{Name: "conversion", Bps: cfg.FeeRates.ConversionBps},
	}
	if withArbitration {
		shares = append(shares, mathutil.FeeShare{
			Name: "arbitrator", Bps: cfg.FeeRates.ArbitratorBps,
		})
	}

	net, split, err := mathutil.SplitFees(amount, shares, cfg.MaxTotalFeeBps)
	if err != nil {
		switch err {
		case mathutil.ErrOverflow:
			return 0, nil, domain.ErrArithmeticOverflow
		default:
			return 0, nil, domain.ErrInvalidFeeConfiguration
		}
	}
	return net, split, nil
}

func feePayments(
	shares []mathutil.FeeShare, recipients domain.FeeRecipients, arbitrator string,
) []payment {
	recipientByName := map[string]string{
		"burn":       recipients.Burn,
		"chain":      recipients.Chain,
		"warchest":   recipients.Warchest,
		"conversion": recipients.Conversion,
		"arbitrator": arbitrator,
	}
	payments := make([]payment, 0, len(shares))
	for _, share := range shares {
		payments = append(payments, payment{
			to:     recipientByName[share.Name],
			amount: share.Amount,
		})
	}
	return payments
}

func escrowAddress(tradeId uint64) string {
	return fmt.Sprintf("escrow/%d", tradeId)
}
