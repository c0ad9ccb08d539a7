package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/urbanflow/urbanflow-backend/config"
	"github.com/urbanflow/urbanflow-backend/logger"
	"github.com/urbanflow/urbanflow-backend/types"
)

// OTPRestProvider plans trips against an OTP classic REST plan endpoint
// (/otp/routers/default/plan). It is the secondary engine of the cascade.
type OTPRestProvider struct {
	endpoint       string
	clientName     string
	numItineraries int
	httpClient     *http.Client
	fares          FareEstimator
}

var _ TripProvider = (*OTPRestProvider)(nil)

func NewOTPRestProvider(cfg config.RoutingConfig, fares FareEstimator) *OTPRestProvider {
	return &OTPRestProvider{
		endpoint:       cfg.SecondaryEndpoint,
		clientName:     cfg.ClientName,
		numItineraries: cfg.NumTripPatterns,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		fares: fares,
	}
}

func (p *OTPRestProvider) Name() string {
	return "otp-rest"
}

func (p *OTPRestProvider) Provenance() types.Provenance {
	return types.ProvenanceSecondaryEngine
}

// Provider-specific intermediate shapes for the classic REST plan response.

type otpRestLeg struct {
	Mode         string          `json:"mode"`
	StartTime    json.RawMessage `json:"startTime"`
	EndTime      json.RawMessage `json:"endTime"`
	Duration     float64         `json:"duration"`
	Distance     float64         `json:"distance"`
	Route        string          `json:"route"`
	RouteColor   string          `json:"routeColor"`
	HeadSign     string          `json:"headsign"`
	To           struct {
		Name string `json:"name"`
	} `json:"to"`
}

type otpRestItinerary struct {
	Duration     float64         `json:"duration"`
	StartTime    json.RawMessage `json:"startTime"`
	EndTime      json.RawMessage `json:"endTime"`
	WalkDistance float64         `json:"walkDistance"`
	Transfers    int             `json:"transfers"`
	Legs         []otpRestLeg    `json:"legs"`
}

type otpRestResponse struct {
	Plan struct {
		Itineraries []otpRestItinerary `json:"itineraries"`
	} `json:"plan"`
	Error *struct {
		ID  int    `json:"id"`
		Msg string `json:"msg"`
	} `json:"error"`
}

// PlanTrip queries the endpoint and maps the response into canonical
// itineraries. Every failure mode returns an empty list.
func (p *OTPRestProvider) PlanTrip(ctx context.Context, origin, destination types.Coordinates) []types.Itinerary {
	log := logger.GetLogger()

	if p.endpoint == "" {
		return nil
	}

	params := url.Values{}
	params.Add("fromPlace", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Add("toPlace", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	params.Add("numItineraries", fmt.Sprintf("%d", p.numItineraries))
	params.Add("mode", "TRANSIT,WALK")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s?%s", p.endpoint, params.Encode()), nil)
	if err != nil {
		log.Errorw("Failed to create OTP REST request", "error", err)
		return nil
	}
	req.Header.Set("ET-Client-Name", p.clientName)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Warnw("OTP REST endpoint unreachable", "endpoint", p.endpoint, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnw("OTP REST endpoint returned non-OK status", "status", resp.StatusCode)
		return nil
	}

	var decoded otpRestResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		log.Warnw("OTP REST response was not valid JSON", "error", err)
		return nil
	}

	if decoded.Error != nil {
		log.Warnw("OTP REST endpoint reported an error",
			"id", decoded.Error.ID, "message", decoded.Error.Msg)
		return nil
	}

	raw := decoded.Plan.Itineraries
	itineraries := make([]types.Itinerary, 0, len(raw))
	for i, it := range raw {
		itineraries = append(itineraries, p.mapItinerary(it, i))
	}
	return itineraries
}

// mapItinerary is the pure mapping from the classic REST shape into the
// canonical itinerary.
func (p *OTPRestProvider) mapItinerary(raw otpRestItinerary, index int) types.Itinerary {
	steps := make([]types.Step, 0, len(raw.Legs))
	nonWalkLegs := 0

	for _, leg := range raw.Legs {
		mode := mapOTPMode(leg.Mode)
		if mode != types.ModeWalk {
			nonWalkLegs++
		}

		step := types.Step{
			Mode:            mode,
			DurationMinutes: secondsToMinutes(leg.Duration),
			Color:           modeColor(mode),
		}
		if leg.RouteColor != "" {
			step.Color = "#" + leg.RouteColor
		}

		toName := leg.To.Name
		if toName == "" {
			toName = "the destination"
		}
		if mode == types.ModeWalk {
			step.Instruction = fmt.Sprintf("Walk towards %s", toName)
		} else {
			lineName := leg.Mode
			if leg.Route != "" {
				lineName = leg.Route
				step.LineName = leg.Route
			}
			if leg.HeadSign != "" {
				toName = leg.HeadSign
			}
			step.Instruction = fmt.Sprintf("Take %s towards %s", lineName, toName)
		}

		steps = append(steps, step)
	}

	// Recompute transfers from the legs rather than trusting the backend
	// field, so both engines share one transfer basis.
	transfers := nonWalkLegs - 1
	if transfers < 0 {
		transfers = 0
	}

	return types.Itinerary{
		ID:              fmt.Sprintf("otp-rest-%d-%d", index, time.Now().UnixMilli()),
		TotalTime:       secondsToMinutes(raw.Duration),
		Cost:            p.fares.Estimate(nonWalkLegs).Amount(),
		WalkingDistance: int(raw.WalkDistance + 0.5),
		Transfers:       transfers,
		CO2Savings:      nonWalkLegs * co2SavingsPerTransitLegGrams,
		IsAccessible:    true,
		StartTime:       formatClock(parseOTPTime(raw.StartTime)),
		EndTime:         formatClock(parseOTPTime(raw.EndTime)),
		Steps:           steps,
		AIReasoning:     types.Visible("Route computed from GTFS schedule data."),
		Provenance:      types.ProvenanceSecondaryEngine,
		IsPremium:       true,
	}
}
