package dbbadger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
	"github.com/desamtralized/LocalMoney-sub003/internal/core/ports"
)

// repoManager holds the badgerhold store shared by all repositories.
type repoManager struct {
	store *badgerhold.Store

	tradeRepository      domain.TradeRepository
	arbitratorRepository domain.ArbitratorRepository
	configRepository     domain.ConfigRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk
// and seeds the protocol configuration if the store is empty.
func NewRepoManager(
	dbDir string, logger badger.Logger, defaultConfig domain.ProtocolConfig,
) (ports.RepoManager, error) {
	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening engine db: %w", err)
	}

	manager := &repoManager{
		store:                store,
		tradeRepository:      newTradeRepositoryImpl(store),
		arbitratorRepository: newArbitratorRepositoryImpl(store),
		configRepository:     newConfigRepositoryImpl(store),
	}

	if err := manager.seedConfig(defaultConfig); err != nil {
		store.Close()
		return nil, err
	}
	return manager, nil
}

func (d *repoManager) TradeRepository() domain.TradeRepository {
	return d.tradeRepository
}

func (d *repoManager) ArbitratorRepository() domain.ArbitratorRepository {
	return d.arbitratorRepository
}

func (d *repoManager) ConfigRepository() domain.ConfigRepository {
	return d.configRepository
}

func (d *repoManager) Close() {
	d.store.Close()
}

func (d *repoManager) seedConfig(defaultConfig domain.ProtocolConfig) error {
	var record configRecord
	err := d.store.Get(configRecordKey, &record)
	if err == nil {
		return nil
	}
	if err != badgerhold.ErrNotFound {
		return err
	}
	return d.store.Insert(configRecordKey, &configRecord{
		Key:    configRecordKey,
		Config: defaultConfig,
	})
}

// JSONEncode is a custom JSON based encoder for badger.
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer
	if err := json.NewEncoder(&buff).Encode(value); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger.
func JSONDecode(data []byte, value interface{}) error {
	return json.NewDecoder(bytes.NewReader(data)).Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
