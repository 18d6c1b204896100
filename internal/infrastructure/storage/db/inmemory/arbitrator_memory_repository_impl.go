package inmemory

import (
	"context"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
)

type arbitratorRepositoryImpl struct {
	store *arbitratorInmemoryStore
}

func newArbitratorRepositoryImpl(store *arbitratorInmemoryStore) domain.ArbitratorRepository {
	return &arbitratorRepositoryImpl{store}
}

func (r *arbitratorRepositoryImpl) GetPool(
	_ context.Context, fiatCurrency string,
) (*domain.ArbitratorPool, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	pool, ok := r.store.pools[fiatCurrency]
	if !ok {
		return &domain.ArbitratorPool{FiatCurrency: fiatCurrency}, nil
	}
	return clonePool(pool), nil
}

func (r *arbitratorRepositoryImpl) ListPools(
	_ context.Context,
) ([]*domain.ArbitratorPool, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	pools := make([]*domain.ArbitratorPool, 0, len(r.store.pools))
	for _, p := range r.store.pools {
		pools = append(pools, clonePool(p))
	}
	return pools, nil
}

func (r *arbitratorRepositoryImpl) UpdatePool(
	_ context.Context,
	fiatCurrency string,
	updateFn func(p *domain.ArbitratorPool) (*domain.ArbitratorPool, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	pool, ok := r.store.pools[fiatCurrency]
	if !ok {
		pool = &domain.ArbitratorPool{FiatCurrency: fiatCurrency}
	}

	updated, err := updateFn(clonePool(pool))
	if err != nil {
		return err
	}

	r.store.pools[fiatCurrency] = clonePool(updated)
	return nil
}

func clonePool(p *domain.ArbitratorPool) *domain.ArbitratorPool {
	clone := *p
	clone.Arbitrators = make([]domain.ArbitratorInfo, len(p.Arbitrators))
	copy(clone.Arbitrators, p.Arbitrators)
	return &clone
}
