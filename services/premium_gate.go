package services

import "github.com/urbanflow/urbanflow-backend/types"

// PremiumGate redacts paid-tier content for free-tier users. The gate is the
// single place entitlement rules live; providers and the enhancer always
// produce full-fidelity itineraries.
type PremiumGate struct{}

func NewPremiumGate() *PremiumGate {
	return &PremiumGate{}
}

// ApplyEntitlement returns a copy of the itineraries adjusted for the user's
// tier. Premium users see everything untouched. Free users keep every
// itinerary and all structural facts, but AI reasoning is replaced with a
// locked marker and live traffic-delay estimates are withheld. Applying the
// gate twice yields the same result as applying it once.
func (g *PremiumGate) ApplyEntitlement(itineraries []types.Itinerary, isPremium bool) []types.Itinerary {
	out := make([]types.Itinerary, len(itineraries))
	copy(out, itineraries)

	if isPremium {
		return out
	}

	for i := range out {
		out[i].AIReasoning = types.LockedReasoning()
		out[i].TrafficDelayMinutes = nil
	}

	return out
}
