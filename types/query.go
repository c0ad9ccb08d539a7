package types

// RouteFilter selects the ranking criterion applied to a result set.
type RouteFilter string

const (
	FilterFastest       RouteFilter = "fastest"
	FilterCheapest      RouteFilter = "cheapest"
	FilterLessWalking   RouteFilter = "less_walking"
	FilterLessTransfers RouteFilter = "less_transfers"
	FilterAccessible    RouteFilter = "accessible"
)

func (f RouteFilter) String() string {
	return string(f)
}

func (f RouteFilter) IsValid() bool {
	switch f {
	case FilterFastest, FilterCheapest, FilterLessWalking, FilterLessTransfers, FilterAccessible:
		return true
	default:
		return false
	}
}

// TripQuery is the single read-only input threaded through one search.
// A nil Origin means "unknown, use the configured default".
type TripQuery struct {
	Origin      *Coordinates    `json:"origin,omitempty"`
	Destination string          `json:"destination"`
	Weather     WeatherSnapshot `json:"weather"`
	IsPremium   bool            `json:"isPremium"`
}
