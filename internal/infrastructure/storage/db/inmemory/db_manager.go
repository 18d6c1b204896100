package inmemory

import (
	"sync"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
	"github.com/desamtralized/LocalMoney-sub003/internal/core/ports"
)

type tradeInmemoryStore struct {
	trades map[uint64]*domain.Trade
	nextId uint64
	locker *sync.Mutex
}

type arbitratorInmemoryStore struct {
	pools map[string]*domain.ArbitratorPool
	// per-currency serialization of pool mutations happens on this lock
	locker *sync.Mutex
}

type configInmemoryStore struct {
	config *domain.ProtocolConfig
	locker *sync.Mutex
}

// DbManager is the in-memory implementation of the storage backend, used
// for development and tests.
type DbManager struct {
	tradeRepository      domain.TradeRepository
	arbitratorRepository domain.ArbitratorRepository
	configRepository     domain.ConfigRepository
}

// NewRepoManager returns an in-memory ports.RepoManager seeded with the
// given protocol configuration.
func NewRepoManager(cfg domain.ProtocolConfig) ports.RepoManager {
	tradeStore := &tradeInmemoryStore{
		trades: make(map[uint64]*domain.Trade),
		locker: &sync.Mutex{},
	}
	arbStore := &arbitratorInmemoryStore{
		pools:  make(map[string]*domain.ArbitratorPool),
		locker: &sync.Mutex{},
	}
	configStore := &configInmemoryStore{
		config: &cfg,
		locker: &sync.Mutex{},
	}

	return &DbManager{
		tradeRepository:      newTradeRepositoryImpl(tradeStore),
		arbitratorRepository: newArbitratorRepositoryImpl(arbStore),
		configRepository:     newConfigRepositoryImpl(configStore),
	}
}

func (d *DbManager) TradeRepository() domain.TradeRepository {
	return d.tradeRepository
}

func (d *DbManager) ArbitratorRepository() domain.ArbitratorRepository {
	return d.arbitratorRepository
}

func (d *DbManager) ConfigRepository() domain.ConfigRepository {
	return d.configRepository
}

func (d *DbManager) Close() {}
