package dbbadger

import (
	"context"
	"sync"

	"github.com/timshannon/badgerhold/v4"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
)

type arbitratorRepositoryImpl struct {
	store *badgerhold.Store
	// concurrent selections drawing from the same pool serialize here
	updateLock sync.Mutex
}

func newArbitratorRepositoryImpl(store *badgerhold.Store) domain.ArbitratorRepository {
	return &arbitratorRepositoryImpl{store: store}
}

func (r *arbitratorRepositoryImpl) GetPool(
	_ context.Context, fiatCurrency string,
) (*domain.ArbitratorPool, error) {
	return r.getPool(fiatCurrency)
}

func (r *arbitratorRepositoryImpl) ListPools(
	_ context.Context,
) ([]*domain.ArbitratorPool, error) {
	var pools []domain.ArbitratorPool
	if err := r.store.Find(&pools, nil); err != nil {
		return nil, err
	}

	result := make([]*domain.ArbitratorPool, 0, len(pools))
	for i := range pools {
		result = append(result, &pools[i])
	}
	return result, nil
}

func (r *arbitratorRepositoryImpl) UpdatePool(
	_ context.Context,
	fiatCurrency string,
	updateFn func(p *domain.ArbitratorPool) (*domain.ArbitratorPool, error),
) error {
	r.updateLock.Lock()
	defer r.updateLock.Unlock()

	pool, err := r.getPool(fiatCurrency)
	if err != nil {
		return err
	}

	updatedPool, err := updateFn(pool)
	if err != nil {
		return err
	}

	return r.store.Upsert(fiatCurrency, updatedPool)
}

func (r *arbitratorRepositoryImpl) getPool(
	fiatCurrency string,
) (*domain.ArbitratorPool, error) {
	var pool domain.ArbitratorPool
	if err := r.store.Get(fiatCurrency, &pool); err != nil {
		if err == badgerhold.ErrNotFound {
			return &domain.ArbitratorPool{FiatCurrency: fiatCurrency}, nil
		}
		return nil, err
	}
	return &pool, nil
}
