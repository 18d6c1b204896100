package ports

import "github.com/desamtralized/LocalMoney-sub003/internal/core/domain"

// RepoManager gives access to all the repositories of a storage backend.
type RepoManager interface {
	TradeRepository() domain.TradeRepository
	ArbitratorRepository() domain.ArbitratorRepository
	ConfigRepository() domain.ConfigRepository

	Close()
}
