package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	apperrors "github.com/urbanflow/urbanflow-backend/errors"
	"github.com/urbanflow/urbanflow-backend/logger"
	"github.com/urbanflow/urbanflow-backend/types"
	"go.uber.org/zap"
)

// Pipeline monitoring. Provenance labels tell us how often searches are served
// by real engines versus AI or the static catalog.
type searchMetrics struct {
	searchCount     *prometheus.CounterVec
	notFoundCount   prometheus.Counter
	pipelineLatency prometheus.Histogram
}

var plannerMetrics = &searchMetrics{
	searchCount: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "urbanflow_searches_total",
		Help: "Completed searches by provenance of the top-ranked itinerary",
	}, []string{"provenance"}),
	notFoundCount: promauto.NewCounter(prometheus.CounterOpts{
		Name: "urbanflow_destination_not_found_total",
		Help: "Searches rejected because the destination could not be resolved",
	}),
	pipelineLatency: promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "urbanflow_pipeline_duration_seconds",
		Help:    "End-to-end planning pipeline latency",
		Buckets: prometheus.DefBuckets,
	}),
}

// PlanInput is one search as the handler hands it to the pipeline.
type PlanInput struct {
	Text      string
	Origin    *types.Coordinates
	Filter    types.RouteFilter
	IsPremium bool
}

// PlannerService runs the full planning pipeline: intent extraction,
// destination resolution, provider cascade, AI enhancement or generation,
// fallback catalog, entitlement gating, and ranking. The only error it
// returns is a failed destination resolution; every later stage degrades to
// the next tier instead of failing the search.
type PlannerService struct {
	geocoding     *GeocodingService
	weather       *WeatherService
	cascade       *ProviderCascade
	enhancer      *AIEnhancer
	gate          *PremiumGate
	ranker        *RouteRanker
	catalog       *FallbackCatalog
	cache         *TripCache
	defaultOrigin types.Coordinates
	log           *zap.SugaredLogger
}

func NewPlannerService(
	geocoding *GeocodingService,
	weather *WeatherService,
	cascade *ProviderCascade,
	enhancer *AIEnhancer,
	cache *TripCache,
	defaultOrigin types.Coordinates,
) *PlannerService {
	return &PlannerService{
		geocoding:     geocoding,
		weather:       weather,
		cascade:       cascade,
		enhancer:      enhancer,
		gate:          NewPremiumGate(),
		ranker:        NewRouteRanker(),
		catalog:       NewFallbackCatalog(),
		cache:         cache,
		defaultOrigin: defaultOrigin,
		log:           logger.GetLogger(),
	}
}

// PlanTrip executes one search. The returned list is never empty: if the
// destination resolved, some tier of the pipeline produced itineraries. The
// accessible filter is the one exception, since it selects rather than ranks.
func (s *PlannerService) PlanTrip(ctx context.Context, input PlanInput) ([]types.Itinerary, error) {
	start := time.Now()
	defer func() {
		plannerMetrics.pipelineLatency.Observe(time.Since(start).Seconds())
	}()

	destination := s.geocoding.ExtractIntent(ctx, input.Text)

	coords, err := s.geocoding.ResolveDestination(ctx, destination)
	if err != nil {
		if apperrors.IsDestinationNotFound(err) {
			plannerMetrics.notFoundCount.Inc()
		}
		return nil, err
	}

	origin := s.defaultOrigin
	if input.Origin != nil {
		origin = *input.Origin
	}

	query := types.TripQuery{
		Origin:      &origin,
		Destination: destination,
		IsPremium:   input.IsPremium,
	}

	// Weather is advisory context for the enhancer; a failed fetch just means
	// less informed annotations.
	snapshot, err := s.weather.GetCurrentWeather(ctx, coords)
	if err != nil {
		s.log.Warnw("Weather fetch failed, planning without it", "error", err)
	} else {
		query.Weather = snapshot
	}

	itineraries := s.plan(ctx, query, origin, coords)
	itineraries = discardUnusable(itineraries)
	if len(itineraries) == 0 {
		// The catalog never returns an empty or unusable set, so this tier
		// only fires if an earlier tier produced solely zero-step results.
		itineraries = s.catalog.Itineraries(destination)
	}

	plannerMetrics.searchCount.WithLabelValues(itineraries[0].Provenance.String()).Inc()

	itineraries = s.gate.ApplyEntitlement(itineraries, input.IsPremium)
	itineraries = s.ranker.Rank(itineraries, input.Filter)

	if s.cache != nil {
		s.cache.StoreSearch(ctx, destination, itineraries)
	}

	return itineraries, nil
}

// plan walks the provenance tiers in order: routing engines, then AI
// enhancement of their output, or AI generation when they produced nothing,
// and finally the static catalog.
func (s *PlannerService) plan(ctx context.Context, query types.TripQuery, origin, destination types.Coordinates) []types.Itinerary {
	itineraries := s.cascade.Plan(ctx, origin, destination)

	if len(itineraries) > 0 {
		return s.enhancer.EnhanceItineraries(ctx, query, itineraries)
	}

	generated, err := s.enhancer.GenerateItineraries(ctx, query, origin)
	if err != nil {
		s.log.Warnw("AI generation failed, serving offline estimates",
			"error", err, "destination", query.Destination)
		return s.catalog.Itineraries(query.Destination)
	}

	return generated
}

// RecentSearches exposes the cached search window for the recents endpoint.
func (s *PlannerService) RecentSearches(ctx context.Context) []RecentSearch {
	if s.cache == nil {
		return []RecentSearch{}
	}
	return s.cache.RecentSearches(ctx)
}
