// Package randsource implements the SeedSource port with the local CSPRNG.
// A chain-backed deployment replaces this with a VRF oracle or a
// commit-reveal aggregator; the engine only requires that the seed is not
// client-predictable.
package randsource

import (
	"context"
	"crypto/rand"
	"encoding/binary"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/ports"
)

type service struct{}

// NewService returns a SeedSource backed by crypto/rand.
func NewService() ports.SeedSource {
	return &service{}
}

func (s *service) Seed(_ context.Context) (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
