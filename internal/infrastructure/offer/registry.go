// Package offer provides an in-process registry implementing the
// OfferService port. Full offer lifecycle management is owned by an
// external service; this registry holds just enough state to drive trade
// creation.
package offer

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/ports"
)

// ErrOfferNotFound ...
var ErrOfferNotFound = errors.New("offer not found")

// Registry is an in-memory offer store.
type Registry struct {
	lock   sync.RWMutex
	offers map[uuid.UUID]ports.Offer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{offers: make(map[uuid.UUID]ports.Offer)}
}

// GetOffer implements ports.OfferService.
func (r *Registry) GetOffer(
	_ context.Context, offerId uuid.UUID,
) (*ports.Offer, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	offer, ok := r.offers[offerId]
	if !ok {
		return nil, ErrOfferNotFound
	}
	return &offer, nil
}

// AddOffer stores a new offer and returns its assigned id.
func (r *Registry) AddOffer(offer ports.Offer) uuid.UUID {
	r.lock.Lock()
	defer r.lock.Unlock()

	if offer.Id == uuid.Nil {
		offer.Id = uuid.New()
	}
	r.offers[offer.Id] = offer
	return offer.Id
}

// SetActive flips the active flag of an offer.
func (r *Registry) SetActive(offerId uuid.UUID, active bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	offer, ok := r.offers[offerId]
	if !ok {
		return ErrOfferNotFound
	}
	offer.Active = active
	r.offers[offerId] = offer
	return nil
}
