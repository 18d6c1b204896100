package domain

const (
	// ReputationScale is the full reputation range expressed in basis points.
	ReputationScale = 10000

	selectionBaseWeight   = 1000
	availabilityBonusUnit = 100
	experienceBonusUnit   = 10
	experienceCap         = 100
)

// ArbitratorInfo describes one arbitrator registered for a fiat currency.
type ArbitratorInfo struct {
	Address            string
	Active             bool
	TotalCases         uint32
	ResolvedCases      uint32
	CurrentCases       uint32
	MaxConcurrentCases uint32
	ReputationScore    uint32
}

// IsEligible returns whether the arbitrator can be assigned a new case.
func (a *ArbitratorInfo) IsEligible() bool {
	return a.Active && a.CurrentCases < a.MaxConcurrentCases
}

// SelectionWeight returns the weight of the arbitrator in the roulette
// selection: a reputation share of the base weight, plus a bonus for spare
// capacity, plus a bonus for resolved cases capped at experienceCap.
func (a *ArbitratorInfo) SelectionWeight() uint64 {
	reputation := uint64(selectionBaseWeight) * uint64(a.ReputationScore) / ReputationScale
	availability := uint64(availabilityBonusUnit) * uint64(a.MaxConcurrentCases-a.CurrentCases)
	resolved := uint64(a.ResolvedCases)
	if resolved > experienceCap {
		resolved = experienceCap
	}
	return reputation + availability + uint64(experienceBonusUnit)*resolved
}

// AdjustReputation applies a signed basis-point delta to the reputation
// score, clamped to [0, ReputationScale].
func (a *ArbitratorInfo) AdjustReputation(delta int32) {
	score := int64(a.ReputationScore) + int64(delta)
	if score < 0 {
		score = 0
	}
	if score > ReputationScale {
		score = ReputationScale
	}
	a.ReputationScore = uint32(score)
}

// ArbitratorPool is the insertion-ordered set of arbitrators registered for
// one fiat currency. The ordering makes the weighted selection reproducible
// for a given seed.
type ArbitratorPool struct {
	FiatCurrency string `badgerhold:"key"`
	Arbitrators  []ArbitratorInfo
}

// Get returns a pointer to the info of the arbitrator with the given
// address, or nil if not registered.
func (p *ArbitratorPool) Get(address string) *ArbitratorInfo {
	for i := range p.Arbitrators {
		if p.Arbitrators[i].Address == address {
			return &p.Arbitrators[i]
		}
	}
	return nil
}

// Add registers a new arbitrator at the end of the pool.
func (p *ArbitratorPool) Add(info ArbitratorInfo) error {
	if p.Get(info.Address) != nil {
		return ErrArbitratorAlreadyRegistered
	}
	p.Arbitrators = append(p.Arbitrators, info)
	return nil
}

// Select picks one eligible arbitrator with a weighted roulette draw. It is
// a pure function of the seed and the pool state: the same inputs always
// yield the same arbitrator. The excluded addresses (the trading parties)
// are never picked.
func (p *ArbitratorPool) Select(seed uint64, excluded ...string) (*ArbitratorInfo, error) {
	isExcluded := func(addr string) bool {
		for _, e := range excluded {
			if e == addr {
				return true
			}
		}
		return false
	}

	var totalWeight uint64
	for i := range p.Arbitrators {
		a := &p.Arbitrators[i]
		if !a.IsEligible() || isExcluded(a.Address) {
			continue
		}
		totalWeight += a.SelectionWeight()
	}
	if totalWeight == 0 {
		return nil, ErrNoEligibleArbitrators
	}

	point := seed % totalWeight
	var cumulative uint64
	for i := range p.Arbitrators {
		a := &p.Arbitrators[i]
		if !a.IsEligible() || isExcluded(a.Address) {
			continue
		}
		cumulative += a.SelectionWeight()
		if cumulative > point {
			return a, nil
		}
	}
	return nil, ErrNoEligibleArbitrators
}
