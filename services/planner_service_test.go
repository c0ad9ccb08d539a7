package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/urbanflow/urbanflow-backend/errors"
	"github.com/urbanflow/urbanflow-backend/types"
)

// plannerHarness wires a real pipeline against httptest backends.
type plannerHarness struct {
	planner  *PlannerService
	provider *stubProvider
}

func newPlannerHarness(t *testing.T, geocodeOK bool, providerResults []types.Itinerary) *plannerHarness {
	t.Helper()

	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if geocodeOK {
			_, _ = w.Write([]byte(`{"results":[{"latitude":-23.58,"longitude":-46.63}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	t.Cleanup(geocode.Close)

	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(nominatim.Close)

	weather := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"current": {"temperature_2m": 24.0, "relative_humidity_2m": 50, "weather_code": 1},
			"hourly": {"rain": [0.0], "showers": [0.0]}
		}`))
	}))
	t.Cleanup(weather.Close)

	provider := &stubProvider{name: "stub", itineraries: providerResults}

	planner := NewPlannerService(
		newGeocodingService(geocode.URL, nominatim.URL),
		newWeatherService(weather.URL),
		NewProviderCascade(provider),
		NewAIEnhancer(nil),
		nil,
		types.Coordinates{Lat: -23.5615, Lng: -46.6559},
	)

	return &plannerHarness{planner: planner, provider: provider}
}

func engineItinerary(id string, totalTime int, cost float64) types.Itinerary {
	it := usableItinerary(id)
	it.TotalTime = totalTime
	it.Cost = cost
	it.Provenance = types.ProvenancePrimaryEngine
	it.AIReasoning = types.Visible("Route computed from GTFS schedule data.")
	return it
}

func TestPlanTrip_EngineResultsRankedAndGated(t *testing.T) {
	h := newPlannerHarness(t, true, []types.Itinerary{
		engineItinerary("slow", 40, 2.0),
		engineItinerary("fast", 15, 4.5),
	})

	routes, err := h.planner.PlanTrip(context.Background(), PlanInput{
		Text:   "Paulista Avenue",
		Filter: types.FilterFastest,
	})

	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "fast", routes[0].ID)
	assert.Equal(t, "slow", routes[1].ID)

	// Free tier: reasoning locked, traffic delay withheld.
	for _, route := range routes {
		assert.True(t, route.AIReasoning.Locked)
		assert.Nil(t, route.TrafficDelayMinutes)
	}
}

func TestPlanTrip_PremiumUserKeepsReasoning(t *testing.T) {
	h := newPlannerHarness(t, true, []types.Itinerary{engineItinerary("a", 20, 3.0)})

	routes, err := h.planner.PlanTrip(context.Background(), PlanInput{
		Text:      "Paulista Avenue",
		Filter:    types.FilterFastest,
		IsPremium: true,
	})

	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.False(t, routes[0].AIReasoning.Locked)
	assert.NotEmpty(t, routes[0].AIReasoning.Text)
}

func TestPlanTrip_FallsBackToCatalogWhenEverythingFails(t *testing.T) {
	// No provider results and no AI client: generation fails, catalog serves.
	h := newPlannerHarness(t, true, nil)

	routes, err := h.planner.PlanTrip(context.Background(), PlanInput{
		Text:   "Paulista Avenue",
		Filter: types.FilterCheapest,
	})

	require.NoError(t, err)
	require.Len(t, routes, 3, "the fallback catalog guarantees a non-empty response")
	for _, route := range routes {
		assert.Equal(t, types.ProvenanceStaticFallback, route.Provenance)
		assert.True(t, route.IsUsable())
	}

	// Cheapest-first ordering applied to the catalog too.
	assert.LessOrEqual(t, routes[0].Cost, routes[1].Cost)
	assert.LessOrEqual(t, routes[1].Cost, routes[2].Cost)
}

func TestPlanTrip_UnresolvedDestinationAbortsBeforeProviders(t *testing.T) {
	h := newPlannerHarness(t, false, []types.Itinerary{engineItinerary("a", 20, 3.0)})

	routes, err := h.planner.PlanTrip(context.Background(), PlanInput{
		Text:   "nowhere that resolves",
		Filter: types.FilterFastest,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsDestinationNotFound(err))
	assert.Nil(t, routes)
	assert.Zero(t, h.provider.calls, "no engine may be queried for an unresolved destination")
}

func TestPlanTrip_BlankDestinationIsValidationError(t *testing.T) {
	h := newPlannerHarness(t, true, nil)

	_, err := h.planner.PlanTrip(context.Background(), PlanInput{Text: "   "})

	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ValidationError, appErr.Type)
}

func TestPlanTrip_AccessibleFilterMayReturnEmpty(t *testing.T) {
	inaccessible := engineItinerary("a", 20, 3.0)
	inaccessible.IsAccessible = false
	h := newPlannerHarness(t, true, []types.Itinerary{inaccessible})

	routes, err := h.planner.PlanTrip(context.Background(), PlanInput{
		Text:   "Paulista Avenue",
		Filter: types.FilterAccessible,
	})

	require.NoError(t, err)
	assert.Empty(t, routes)
}
