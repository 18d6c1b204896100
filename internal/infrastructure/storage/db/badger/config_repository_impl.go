package dbbadger

import (
	"context"
	"sync"

	"github.com/timshannon/badgerhold/v4"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
)

const configRecordKey = "protocol_config"

type configRecord struct {
	Key    string `badgerhold:"key"`
	Config domain.ProtocolConfig
}

type configRepositoryImpl struct {
	store      *badgerhold.Store
	updateLock sync.Mutex
}

func newConfigRepositoryImpl(store *badgerhold.Store) domain.ConfigRepository {
	return &configRepositoryImpl{store: store}
}

func (r *configRepositoryImpl) GetConfig(
	_ context.Context,
) (*domain.ProtocolConfig, error) {
	var record configRecord
	if err := r.store.Get(configRecordKey, &record); err != nil {
		return nil, err
	}
	return &record.Config, nil
}

func (r *configRepositoryImpl) UpdateConfig(
	ctx context.Context,
	updateFn func(c *domain.ProtocolConfig) (*domain.ProtocolConfig, error),
) error {
	r.updateLock.Lock()
	defer r.updateLock.Unlock()

	current, err := r.GetConfig(ctx)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	return r.store.Upsert(configRecordKey, &configRecord{
		Key:    configRecordKey,
		Config: *updated,
	})
}
