package inmemory

import (
	"context"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
)

type tradeRepositoryImpl struct {
	store *tradeInmemoryStore
}

func newTradeRepositoryImpl(store *tradeInmemoryStore) domain.TradeRepository {
	return &tradeRepositoryImpl{store}
}

func (r *tradeRepositoryImpl) AddTrade(
	_ context.Context, trade *domain.Trade,
) (uint64, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.nextId++
	trade.Id = r.store.nextId
	r.store.trades[trade.Id] = cloneTrade(trade)
	return trade.Id, nil
}

func (r *tradeRepositoryImpl) GetTrade(
	_ context.Context, tradeId uint64,
) (*domain.Trade, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	trade, ok := r.store.trades[tradeId]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	return cloneTrade(trade), nil
}

func (r *tradeRepositoryImpl) GetAllTrades(
	_ context.Context,
) ([]*domain.Trade, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	trades := make([]*domain.Trade, 0, len(r.store.trades))
	for _, t := range r.store.trades {
		trades = append(trades, cloneTrade(t))
	}
	return trades, nil
}

func (r *tradeRepositoryImpl) GetTradesByTrader(
	_ context.Context, address string,
) ([]*domain.Trade, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	trades := make([]*domain.Trade, 0)
	for _, t := range r.store.trades {
		if t.Buyer == address || t.Seller == address {
			trades = append(trades, cloneTrade(t))
		}
	}
	return trades, nil
}

func (r *tradeRepositoryImpl) GetTradesByState(
	_ context.Context, state domain.TradeState,
) ([]*domain.Trade, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	trades := make([]*domain.Trade, 0)
	for _, t := range r.store.trades {
		if t.State == state {
			trades = append(trades, cloneTrade(t))
		}
	}
	return trades, nil
}

// UpdateTrade runs updateFn on a copy of the stored trade and commits the
// result only if the closure succeeds, so a failing operation leaves no
// partial state behind.
func (r *tradeRepositoryImpl) UpdateTrade(
	_ context.Context,
	tradeId uint64,
	updateFn func(t *domain.Trade) (*domain.Trade, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	current, ok := r.store.trades[tradeId]
	if !ok {
		return domain.ErrTradeNotFound
	}

	updated, err := updateFn(cloneTrade(current))
	if err != nil {
		return err
	}

	r.store.trades[tradeId] = cloneTrade(updated)
	return nil
}

func cloneTrade(t *domain.Trade) *domain.Trade {
	clone := *t
	clone.StateHistory = make([]domain.StateChange, len(t.StateHistory))
	copy(clone.StateHistory, t.StateHistory)
	return &clone
}
