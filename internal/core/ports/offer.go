package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
)

// Offer is the read-only view of an offer owned by the external offer
// service.
type Offer struct {
	Id           uuid.UUID
	Owner        string
	Type         domain.OfferType
	TokenDenom   string
	MinAmount    uint64
	MaxAmount    uint64
	FiatCurrency string
	Active       bool
}

// OfferService is the collaborator owning the offer lifecycle. The engine
// only reads offers at trade creation.
type OfferService interface {
	// GetOffer returns the offer with the given id.
	GetOffer(ctx context.Context, offerId uuid.UUID) (*Offer, error)
}
