// Package profile implements the ProfileService port with a structured
// log sink. A deployment pointing at a real reputation service swaps this
// for an HTTP or message-queue notifier.
package profile

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/ports"
)

type notifier struct{}

// NewNotifier returns a ProfileService that records outcomes in the logs.
func NewNotifier() ports.ProfileService {
	return notifier{}
}

func (n notifier) RecordTradeOutcome(
	_ context.Context, user string, tradeId uint64, outcome ports.TradeOutcome,
) error {
	log.WithFields(log.Fields{
		"user":     user,
		"trade_id": tradeId,
		"outcome":  outcome,
	}).Info("trade outcome recorded")
	return nil
}
