package application

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
	"github.com/desamtralized/LocalMoney-sub003/internal/core/ports"
)

// DefaultReputationScore is assigned to newly registered arbitrators.
const DefaultReputationScore = 5000

// OperatorService is the privileged admin surface of the engine.
type OperatorService interface {
	RegisterArbitrator(
		ctx context.Context, fiatCurrency, address string, maxConcurrentCases uint32,
	) error
	SetArbitratorActive(
		ctx context.Context, fiatCurrency, address string, active bool,
	) error
	ListArbitrators(ctx context.Context, fiatCurrency string) ([]domain.ArbitratorInfo, error)

	// ReassignArbitrator replaces the arbitrator of a stuck disputed trade
	// with a newly selected one and slashes the reputation of the inactive
	// one.
	ReassignArbitrator(ctx context.Context, tradeId uint64) error

	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	UpdateFeeRates(ctx context.Context, rates domain.FeeRates) error
	GetConfig(ctx context.Context) (*domain.ProtocolConfig, error)
}

type operatorService struct {
	repoManager ports.RepoManager
	seedSource  ports.SeedSource
}

// NewOperatorService returns the admin surface backed by the given
// repositories.
func NewOperatorService(
	repoManager ports.RepoManager, seedSource ports.SeedSource,
) OperatorService {
	return &operatorService{repoManager: repoManager, seedSource: seedSource}
}

func (s *operatorService) RegisterArbitrator(
	ctx context.Context, fiatCurrency, address string, maxConcurrentCases uint32,
) error {
	err := s.repoManager.ArbitratorRepository().UpdatePool(
		ctx, fiatCurrency,
		func(p *domain.ArbitratorPool) (*domain.ArbitratorPool, error) {
			if err := p.Add(domain.ArbitratorInfo{
				Address:            address,
				Active:             true,
				MaxConcurrentCases: maxConcurrentCases,
				ReputationScore:    DefaultReputationScore,
			}); err != nil {
				return nil, err
			}
			return p, nil
		},
	)
	if err == nil {
		log.WithFields(log.Fields{
			"arbitrator": address,
			"fiat":       fiatCurrency,
		}).Info("arbitrator registered")
	}
	return err
}

func (s *operatorService) SetArbitratorActive(
	ctx context.Context, fiatCurrency, address string, active bool,
) error {
	return s.repoManager.ArbitratorRepository().UpdatePool(
		ctx, fiatCurrency,
		func(p *domain.ArbitratorPool) (*domain.ArbitratorPool, error) {
			info := p.Get(address)
			if info == nil {
				return nil, domain.ErrArbitratorNotFound
			}
			info.Active = active
			return p, nil
		},
	)
}

func (s *operatorService) ListArbitrators(
	ctx context.Context, fiatCurrency string,
) ([]domain.ArbitratorInfo, error) {
	pool, err := s.repoManager.ArbitratorRepository().GetPool(ctx, fiatCurrency)
	if err != nil {
		return nil, err
	}
	return pool.Arbitrators, nil
}

func (s *operatorService) ReassignArbitrator(
	ctx context.Context, tradeId uint64,
) error {
	trade, err := s.repoManager.TradeRepository().GetTrade(ctx, tradeId)
	if err != nil {
		return err
	}
	if trade.State != domain.TradeStateEscrowDisputed {
		return domain.ErrInvalidTradeState
	}

	cfg, err := s.repoManager.ConfigRepository().GetConfig(ctx)
	if err != nil {
		return err
	}
	seed, err := s.seedSource.Seed(ctx)
	if err != nil {
		return err
	}

	previous := trade.Arbitrator
	var replacement string
	if err := s.repoManager.ArbitratorRepository().UpdatePool(
		ctx, trade.FiatCurrency,
		func(p *domain.ArbitratorPool) (*domain.ArbitratorPool, error) {
			selected, err := p.Select(seed, trade.Buyer, trade.Seller, previous)
			if err != nil {
				return nil, err
			}
			selected.CurrentCases++
			selected.TotalCases++
			replacement = selected.Address

			if prev := p.Get(previous); prev != nil {
				if prev.CurrentCases > 0 {
					prev.CurrentCases--
				}
				prev.AdjustReputation(-cfg.ReputationSlashBps)
			}
			return p, nil
		},
	); err != nil {
		return err
	}

	err = s.repoManager.TradeRepository().UpdateTrade(
		ctx, tradeId, func(t *domain.Trade) (*domain.Trade, error) {
			if err := t.ReassignArbitrator(
				replacement, "operator", time.Now().Unix(),
			); err != nil {
				return nil, err
			}
			return t, nil
		},
	)
	if err != nil {
		// The pool change already committed. Reverse it so the replacement
		// does not keep a case slot for a trade it never got, and the
		// previous arbitrator is not slashed for a reassignment that never
		// happened.
		if revertErr := s.repoManager.ArbitratorRepository().UpdatePool(
			ctx, trade.FiatCurrency,
			func(p *domain.ArbitratorPool) (*domain.ArbitratorPool, error) {
				if selected := p.Get(replacement); selected != nil {
					if selected.CurrentCases > 0 {
						selected.CurrentCases--
					}
					if selected.TotalCases > 0 {
						selected.TotalCases--
					}
				}
				if prev := p.Get(previous); prev != nil {
					prev.CurrentCases++
					prev.AdjustReputation(cfg.ReputationSlashBps)
				}
				return p, nil
			},
		); revertErr != nil {
			log.WithError(revertErr).WithField("trade_id", tradeId).
				Error("could not revert arbitrator reassignment")
		}
		return err
	}

	log.WithFields(log.Fields{
		"trade_id": tradeId,
		"previous": previous,
		"new":      replacement,
	}).Warn("dispute arbitrator reassigned")
	return nil
}

func (s *operatorService) Pause(ctx context.Context) error {
	return s.setPaused(ctx, true)
}

func (s *operatorService) Resume(ctx context.Context) error {
	return s.setPaused(ctx, false)
}

func (s *operatorService) setPaused(ctx context.Context, paused bool) error {
	err := s.repoManager.ConfigRepository().UpdateConfig(
		ctx, func(c *domain.ProtocolConfig) (*domain.ProtocolConfig, error) {
			c.Paused = paused
			return c, nil
		},
	)
	if err == nil {
		if paused {
			log.Warn("system paused")
		} else {
			log.Info("system resumed")
		}
	}
	return err
}

func (s *operatorService) UpdateFeeRates(
	ctx context.Context, rates domain.FeeRates,
) error {
	return s.repoManager.ConfigRepository().UpdateConfig(
		ctx, func(c *domain.ProtocolConfig) (*domain.ProtocolConfig, error) {
			updated := *c
			updated.FeeRates = rates
			if err := updated.Validate(); err != nil {
				return nil, err
			}
			return &updated, nil
		},
	)
}

func (s *operatorService) GetConfig(
	ctx context.Context,
) (*domain.ProtocolConfig, error) {
	return s.repoManager.ConfigRepository().GetConfig(ctx)
}
