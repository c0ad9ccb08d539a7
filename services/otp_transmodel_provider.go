package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/urbanflow/urbanflow-backend/config"
	"github.com/urbanflow/urbanflow-backend/logger"
	"github.com/urbanflow/urbanflow-backend/types"
)

// transmodelQuery is the GraphQL trip query sent to OTP Transmodel endpoints.
const transmodelQuery = `
  query Trip($fromLat: Float!, $fromLon: Float!, $toLat: Float!, $toLon: Float!, $numTripPatterns: Int!) {
    trip(
      from: {coordinates: {latitude: $fromLat, longitude: $fromLon}}
      to: {coordinates: {latitude: $toLat, longitude: $toLon}}
      numTripPatterns: $numTripPatterns
    ) {
      tripPatterns {
        startTime
        endTime
        duration
        walkDistance
        legs {
          mode
          distance
          duration
          from {
            name
          }
          to {
            name
          }
          line {
            id
            publicCode
          }
        }
      }
    }
  }
`

// TransmodelProvider plans trips against an OTP Transmodel GraphQL endpoint.
// It is the primary engine of the provider cascade.
type TransmodelProvider struct {
	endpoint        string
	clientName      string
	numTripPatterns int
	httpClient      *http.Client
	fares           FareEstimator
}

var _ TripProvider = (*TransmodelProvider)(nil)

func NewTransmodelProvider(cfg config.RoutingConfig, fares FareEstimator) *TransmodelProvider {
	return &TransmodelProvider{
		endpoint:        cfg.PrimaryEndpoint,
		clientName:      cfg.ClientName,
		numTripPatterns: cfg.NumTripPatterns,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		fares: fares,
	}
}

func (p *TransmodelProvider) Name() string {
	return "otp-transmodel"
}

func (p *TransmodelProvider) Provenance() types.Provenance {
	return types.ProvenancePrimaryEngine
}

// Provider-specific intermediate shapes. Field names from the Transmodel
// response never leak past mapTripPattern.

type transmodelLeg struct {
	Mode     string  `json:"mode"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	From     struct {
		Name string `json:"name"`
	} `json:"from"`
	To struct {
		Name string `json:"name"`
	} `json:"to"`
	Line *struct {
		ID         string `json:"id"`
		PublicCode string `json:"publicCode"`
	} `json:"line"`
}

type transmodelTripPattern struct {
	StartTime    json.RawMessage `json:"startTime"`
	EndTime      json.RawMessage `json:"endTime"`
	Duration     float64         `json:"duration"`
	WalkDistance float64         `json:"walkDistance"`
	Legs         []transmodelLeg `json:"legs"`
}

type transmodelResponse struct {
	Data struct {
		Trip struct {
			TripPatterns []transmodelTripPattern `json:"tripPatterns"`
		} `json:"trip"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// PlanTrip queries the endpoint and maps the response into canonical
// itineraries. Every failure mode returns an empty list.
func (p *TransmodelProvider) PlanTrip(ctx context.Context, origin, destination types.Coordinates) []types.Itinerary {
	log := logger.GetLogger()

	if p.endpoint == "" {
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"query": transmodelQuery,
		"variables": map[string]interface{}{
			"fromLat":         origin.Lat,
			"fromLon":         origin.Lng,
			"toLat":           destination.Lat,
			"toLon":           destination.Lng,
			"numTripPatterns": p.numTripPatterns,
		},
	})
	if err != nil {
		log.Errorw("Failed to marshal Transmodel request", "error", err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		log.Errorw("Failed to create Transmodel request", "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	// Required by many public OTP deployments
	req.Header.Set("ET-Client-Name", p.clientName)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Warnw("Transmodel endpoint unreachable", "endpoint", p.endpoint, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnw("Transmodel endpoint returned non-OK status", "status", resp.StatusCode)
		return nil
	}

	var decoded transmodelResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		log.Warnw("Transmodel response was not valid JSON", "error", err)
		return nil
	}

	if len(decoded.Errors) > 0 {
		log.Warnw("Transmodel endpoint reported errors", "message", decoded.Errors[0].Message)
		return nil
	}

	patterns := decoded.Data.Trip.TripPatterns
	itineraries := make([]types.Itinerary, 0, len(patterns))
	for i, pattern := range patterns {
		itineraries = append(itineraries, p.mapTripPattern(pattern, i))
	}
	return itineraries
}

// mapTripPattern is the pure mapping from the provider's native shape into the
// canonical itinerary. Each leg becomes exactly one step; the first boarding
// is not a transfer.
func (p *TransmodelProvider) mapTripPattern(pattern transmodelTripPattern, index int) types.Itinerary {
	steps := make([]types.Step, 0, len(pattern.Legs))
	nonWalkLegs := 0

	for _, leg := range pattern.Legs {
		mode := mapOTPMode(leg.Mode)
		if mode != types.ModeWalk {
			nonWalkLegs++
		}

		step := types.Step{
			Mode:            mode,
			DurationMinutes: secondsToMinutes(leg.Duration),
			Color:           modeColor(mode),
		}

		toName := leg.To.Name
		if toName == "" {
			toName = "the destination"
		}
		if mode == types.ModeWalk {
			step.Instruction = fmt.Sprintf("Walk towards %s", toName)
		} else {
			lineName := leg.Mode
			if leg.Line != nil && leg.Line.PublicCode != "" {
				lineName = leg.Line.PublicCode
				step.LineName = leg.Line.PublicCode
			}
			step.Instruction = fmt.Sprintf("Take %s towards %s", lineName, toName)
		}

		steps = append(steps, step)
	}

	transfers := nonWalkLegs - 1
	if transfers < 0 {
		transfers = 0
	}

	startTime := parseOTPTime(pattern.StartTime)
	endTime := parseOTPTime(pattern.EndTime)

	return types.Itinerary{
		ID:              fmt.Sprintf("otp-gql-%d-%d", index, time.Now().UnixMilli()),
		TotalTime:       secondsToMinutes(pattern.Duration),
		Cost:            p.fares.Estimate(nonWalkLegs).Amount(),
		WalkingDistance: int(pattern.WalkDistance + 0.5),
		Transfers:       transfers,
		CO2Savings:      nonWalkLegs * co2SavingsPerTransitLegGrams,
		IsAccessible:    true, // modern OTP deployments default to accessible patterns
		StartTime:       formatClock(startTime),
		EndTime:         formatClock(endTime),
		Steps:           steps,
		AIReasoning:     types.Visible("Route computed from GTFS schedule data."),
		Provenance:      types.ProvenancePrimaryEngine,
		IsPremium:       true,
	}
}
