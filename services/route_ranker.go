package services

import (
	"sort"

	"github.com/urbanflow/urbanflow-backend/types"
)

// RouteRanker orders itineraries by the user's chosen filter. Sorting is
// stable so ties keep the pipeline's provenance-priority order, and ranking
// an already-ranked list changes nothing.
type RouteRanker struct{}

func NewRouteRanker() *RouteRanker {
	return &RouteRanker{}
}

// Rank returns a new slice; the input is never modified. The accessible
// filter selects rather than sorts and may legitimately return an empty list.
func (r *RouteRanker) Rank(itineraries []types.Itinerary, filter types.RouteFilter) []types.Itinerary {
	out := make([]types.Itinerary, len(itineraries))
	copy(out, itineraries)

	switch filter {
	case types.FilterFastest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TotalTime < out[j].TotalTime })
	case types.FilterCheapest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Cost < out[j].Cost })
	case types.FilterLessWalking:
		sort.SliceStable(out, func(i, j int) bool { return out[i].WalkingDistance < out[j].WalkingDistance })
	case types.FilterLessTransfers:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Transfers < out[j].Transfers })
	case types.FilterAccessible:
		accessible := out[:0]
		for _, it := range out {
			if it.IsAccessible {
				accessible = append(accessible, it)
			}
		}
		out = accessible
	}

	return out
}
