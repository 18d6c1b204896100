package inmemory

import (
	"context"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
)

type configRepositoryImpl struct {
	store *configInmemoryStore
}

func newConfigRepositoryImpl(store *configInmemoryStore) domain.ConfigRepository {
	return &configRepositoryImpl{store}
}

func (r *configRepositoryImpl) GetConfig(
	_ context.Context,
) (*domain.ProtocolConfig, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	cfg := *r.store.config
	return &cfg, nil
}

func (r *configRepositoryImpl) UpdateConfig(
	_ context.Context,
	updateFn func(c *domain.ProtocolConfig) (*domain.ProtocolConfig, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	current := *r.store.config
	updated, err := updateFn(&current)
	if err != nil {
		return err
	}

	cfg := *updated
	r.store.config = &cfg
	return nil
}
