package types

// TransportMode enumerates the travel modes a step can use.
type TransportMode string

const (
	ModeWalk    TransportMode = "walk"
	ModeBus     TransportMode = "bus"
	ModeMetro   TransportMode = "metro"
	ModeTrain   TransportMode = "train"
	ModeBike    TransportMode = "bike"
	ModeRide    TransportMode = "ride"
	ModeScooter TransportMode = "scooter"
)

// String provides a string representation of the mode
func (m TransportMode) String() string {
	return string(m)
}

// IsValid checks if the mode is part of the closed enumeration
func (m TransportMode) IsValid() bool {
	switch m {
	case ModeWalk, ModeBus, ModeMetro, ModeTrain, ModeBike, ModeRide, ModeScooter:
		return true
	default:
		return false
	}
}

// Provenance records which pipeline tier produced an itinerary.
type Provenance string

const (
	ProvenancePrimaryEngine   Provenance = "primary-engine"
	ProvenanceSecondaryEngine Provenance = "secondary-engine"
	ProvenanceAIGenerated     Provenance = "ai-generated"
	ProvenanceAIEnhanced      Provenance = "ai-enhanced"
	ProvenanceStaticFallback  Provenance = "static-fallback"
)

func (p Provenance) String() string {
	return string(p)
}

func (p Provenance) IsValid() bool {
	switch p {
	case ProvenancePrimaryEngine, ProvenanceSecondaryEngine,
		ProvenanceAIGenerated, ProvenanceAIEnhanced, ProvenanceStaticFallback:
		return true
	default:
		return false
	}
}

// Step is one uninterrupted segment of travel within an itinerary.
type Step struct {
	Mode            TransportMode `json:"mode"`
	Instruction     string        `json:"instruction"`
	DurationMinutes int           `json:"durationMinutes"`
	LineName        string        `json:"lineName,omitempty"`
	Color           string        `json:"color,omitempty"`
}

// Itinerary is one complete proposed trip from origin to destination.
// IDs are unique within a result set but not stable across searches.
type Itinerary struct {
	ID                  string      `json:"id"`
	TotalTime           int         `json:"totalTime"`
	Cost                float64     `json:"cost"`
	WalkingDistance     int         `json:"walkingDistance"`
	Transfers           int         `json:"transfers"`
	CO2Savings          int         `json:"co2Savings"`
	IsAccessible        bool        `json:"isAccessible"`
	StartTime           string      `json:"startTime"`
	EndTime             string      `json:"endTime"`
	Steps               []Step      `json:"steps"`
	AIReasoning         AIReasoning `json:"aiReasoning"`
	Provenance          Provenance  `json:"provenance"`
	IsPremium           bool        `json:"isPremium,omitempty"`
	WeatherAlert        string      `json:"weatherAlert,omitempty"`
	SafetyScore         *int        `json:"safetyScore,omitempty"`
	CaloriesBurned      *int        `json:"caloriesBurned,omitempty"`
	TrafficDelayMinutes *int        `json:"trafficDelayMinutes,omitempty"`
}

// IsUsable reports whether the itinerary can be shown to a traveler.
// An itinerary with zero steps is invalid and must be discarded before ranking.
func (i Itinerary) IsUsable() bool {
	return len(i.Steps) > 0
}

// NonWalkSteps counts the steps that board a vehicle.
func (i Itinerary) NonWalkSteps() int {
	count := 0
	for _, s := range i.Steps {
		if s.Mode != ModeWalk {
			count++
		}
	}
	return count
}
