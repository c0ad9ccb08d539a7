package services

import (
	"context"

	"github.com/urbanflow/urbanflow-backend/logger"
	"github.com/urbanflow/urbanflow-backend/types"
)

// TripProvider queries one concrete itinerary-planning backend and maps its
// native response into the canonical Itinerary shape.
//
// Providers fail soft: network errors, non-success statuses, unparseable
// bodies, and backend-reported errors all surface as an empty list, never as
// an error. This uniform contract is what makes cascading possible.
type TripProvider interface {
	Name() string
	Provenance() types.Provenance
	PlanTrip(ctx context.Context, origin, destination types.Coordinates) []types.Itinerary
}

// ProviderCascade orchestrates trip providers strictly in priority order.
// The first provider returning a non-empty, well-formed result wins and later
// providers are not attempted. If all providers come back empty the cascade
// itself returns empty; the caller interprets that as "use generative mode".
//
// Results from different providers are never merged, so every list shares one
// fare and time basis.
type ProviderCascade struct {
	providers []TripProvider
}

func NewProviderCascade(providers ...TripProvider) *ProviderCascade {
	return &ProviderCascade{providers: providers}
}

// Plan tries each configured provider in order and returns the first usable
// result set. Itineraries without steps are discarded before the cascade
// decides whether a provider's result counts as non-empty.
func (c *ProviderCascade) Plan(ctx context.Context, origin, destination types.Coordinates) []types.Itinerary {
	log := logger.GetLogger()

	for _, p := range c.providers {
		results := p.PlanTrip(ctx, origin, destination)
		usable := discardUnusable(results)

		if len(usable) > 0 {
			log.Infow("Provider returned itineraries",
				"provider", p.Name(),
				"count", len(usable),
				"discarded", len(results)-len(usable))
			return usable
		}

		log.Debugw("Provider returned no usable itineraries, trying next",
			"provider", p.Name())
	}

	return nil
}

// discardUnusable filters out itineraries with zero steps.
func discardUnusable(itineraries []types.Itinerary) []types.Itinerary {
	usable := make([]types.Itinerary, 0, len(itineraries))
	for _, it := range itineraries {
		if it.IsUsable() {
			usable = append(usable, it)
		}
	}
	return usable
}
