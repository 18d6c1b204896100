package dbbadger

import (
	"context"
	"sync"

	"github.com/timshannon/badgerhold/v4"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
)

type tradeRepositoryImpl struct {
	store *badgerhold.Store
	// read-modify-write cycles on trades serialize here
	updateLock sync.Mutex
}

func newTradeRepositoryImpl(store *badgerhold.Store) domain.TradeRepository {
	return &tradeRepositoryImpl{store: store}
}

func (r *tradeRepositoryImpl) AddTrade(
	_ context.Context, trade *domain.Trade,
) (uint64, error) {
	if err := r.store.Insert(badgerhold.NextSequence(), trade); err != nil {
		return 0, err
	}
	return trade.Id, nil
}

func (r *tradeRepositoryImpl) GetTrade(
	_ context.Context, tradeId uint64,
) (*domain.Trade, error) {
	var trade domain.Trade
	if err := r.store.Get(tradeId, &trade); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrTradeNotFound
		}
		return nil, err
	}
	return &trade, nil
}

func (r *tradeRepositoryImpl) GetAllTrades(
	_ context.Context,
) ([]*domain.Trade, error) {
	return r.findTrades(nil)
}

func (r *tradeRepositoryImpl) GetTradesByTrader(
	_ context.Context, address string,
) ([]*domain.Trade, error) {
	query := badgerhold.Where("Buyer").Eq(address).
		Or(badgerhold.Where("Seller").Eq(address))
	return r.findTrades(query)
}

func (r *tradeRepositoryImpl) GetTradesByState(
	_ context.Context, state domain.TradeState,
) ([]*domain.Trade, error) {
	return r.findTrades(badgerhold.Where("State").Eq(state))
}

func (r *tradeRepositoryImpl) UpdateTrade(
	ctx context.Context,
	tradeId uint64,
	updateFn func(t *domain.Trade) (*domain.Trade, error),
) error {
	r.updateLock.Lock()
	defer r.updateLock.Unlock()

	currentTrade, err := r.GetTrade(ctx, tradeId)
	if err != nil {
		return err
	}

	updatedTrade, err := updateFn(currentTrade)
	if err != nil {
		return err
	}

	return r.store.Update(tradeId, updatedTrade)
}

func (r *tradeRepositoryImpl) findTrades(
	query *badgerhold.Query,
) ([]*domain.Trade, error) {
	var trades []domain.Trade
	if err := r.store.Find(&trades, query); err != nil {
		return nil, err
	}

	result := make([]*domain.Trade, 0, len(trades))
	for i := range trades {
		result = append(result, &trades[i])
	}
	return result, nil
}
