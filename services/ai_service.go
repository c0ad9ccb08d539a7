package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/urbanflow/urbanflow-backend/errors"
	"github.com/urbanflow/urbanflow-backend/logger"
	"github.com/urbanflow/urbanflow-backend/pkg/gemini"
	"github.com/urbanflow/urbanflow-backend/types"
	"google.golang.org/genai"
)

// AIEnhancer talks to the generative backend in one of two modes. In
// enhancement mode it annotates real routing data without altering its
// structural facts; in generative mode it invents itineraries from scratch
// when no real data is available.
type AIEnhancer struct {
	client gemini.ClientInterface
}

// NewAIEnhancer creates an enhancer. client may be nil when AI is disabled;
// generative mode then fails with a GenerationError and enhancement mode
// passes itineraries through untouched.
func NewAIEnhancer(client gemini.ClientInterface) *AIEnhancer {
	return &AIEnhancer{client: client}
}

// Ride-hail fare points quoted to the model as comparative-pricing context.
var rideHailEstimates = map[string]float64{
	"uber": 12.5,
	"bolt": 10.2,
	"99":   9.8,
}

const enhancerSystemInstruction = "You are an expert urban mobility planner. Respond with JSON only."

// Intermediate decode shapes for model output. Model field names never leak
// past toItineraries.

type aiStep struct {
	Mode            string `json:"mode"`
	Instruction     string `json:"instruction"`
	DurationMinutes int    `json:"durationMinutes"`
	LineName        string `json:"lineName,omitempty"`
	Color           string `json:"color,omitempty"`
}

type aiItinerary struct {
	ID                  string   `json:"id,omitempty"`
	TotalTime           int      `json:"totalTime"`
	Cost                float64  `json:"cost"`
	WalkingDistance     int      `json:"walkingDistance"`
	Transfers           int      `json:"transfers"`
	CO2Savings          int      `json:"co2Savings"`
	IsAccessible        bool     `json:"isAccessible"`
	StartTime           string   `json:"startTime"`
	EndTime             string   `json:"endTime"`
	Steps               []aiStep `json:"steps"`
	AIReasoning         string   `json:"aiReasoning"`
	WeatherAlert        string   `json:"weatherAlert,omitempty"`
	SafetyScore         *int     `json:"safetyScore,omitempty"`
	CaloriesBurned      *int     `json:"caloriesBurned,omitempty"`
	TrafficDelayMinutes *int     `json:"trafficDelayMinutes,omitempty"`
}

type aiRoutesResponse struct {
	Routes []aiItinerary `json:"routes"`
}

// stepSchema and routesSchema constrain the model output to the canonical
// itinerary shape, with the transport mode restricted to the closed enum.
var stepSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"mode": {Type: genai.TypeString, Enum: []string{
			"walk", "bus", "metro", "train", "bike", "ride", "scooter",
		}},
		"instruction":     {Type: genai.TypeString},
		"durationMinutes": {Type: genai.TypeInteger},
		"lineName":        {Type: genai.TypeString},
		"color":           {Type: genai.TypeString},
	},
	Required: []string{"mode", "instruction", "durationMinutes"},
}

var routesSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"routes": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":                  {Type: genai.TypeString},
					"totalTime":           {Type: genai.TypeInteger},
					"cost":                {Type: genai.TypeNumber},
					"walkingDistance":     {Type: genai.TypeInteger},
					"transfers":           {Type: genai.TypeInteger},
					"co2Savings":          {Type: genai.TypeInteger},
					"isAccessible":        {Type: genai.TypeBoolean},
					"startTime":           {Type: genai.TypeString},
					"endTime":             {Type: genai.TypeString},
					"steps":               {Type: genai.TypeArray, Items: stepSchema},
					"aiReasoning":         {Type: genai.TypeString},
					"weatherAlert":        {Type: genai.TypeString},
					"safetyScore":         {Type: genai.TypeInteger},
					"caloriesBurned":      {Type: genai.TypeInteger},
					"trafficDelayMinutes": {Type: genai.TypeInteger},
				},
				Required: []string{
					"totalTime", "cost", "walkingDistance", "transfers",
					"isAccessible", "startTime", "endTime", "steps", "aiReasoning",
				},
			},
		},
	},
	Required: []string{"routes"},
}

// GenerateItineraries invents a small set of materially distinct itineraries
// when no routing engine produced results. Any output that is empty, cannot be
// parsed, or fails schema validation returns a GenerationError; the caller
// converts that into a fallback-catalog lookup.
func (s *AIEnhancer) GenerateItineraries(ctx context.Context, query types.TripQuery, origin types.Coordinates) ([]types.Itinerary, error) {
	if s.client == nil {
		return nil, apperrors.GenerationError("AI generation unavailable", "no generative backend configured")
	}

	prompt := buildGenerativePrompt(query, origin)

	raw, err := s.client.GenerateJSON(ctx, enhancerSystemInstruction, prompt, routesSchema)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.GenerationErrorType, "generative backend request failed")
	}

	parsed, err := parseRoutesResponse(raw)
	if err != nil {
		return nil, err
	}

	itineraries := toItineraries(parsed.Routes, "ai-gen", types.ProvenanceAIGenerated)
	if len(itineraries) == 0 {
		return nil, apperrors.GenerationError("generative output was empty", "model returned no usable itineraries")
	}

	return itineraries, nil
}

// EnhanceItineraries annotates real routing results with reasoning, safety,
// weather, and comparative-pricing context. The model is required to preserve
// steps, times, and costs; that contract is validated mechanically before any
// enhanced output is accepted. Enhancement never fails: on any violation or
// backend error the raw itineraries are returned unchanged.
func (s *AIEnhancer) EnhanceItineraries(ctx context.Context, query types.TripQuery, itineraries []types.Itinerary) []types.Itinerary {
	log := logger.GetLogger()

	if s.client == nil || len(itineraries) == 0 {
		return itineraries
	}

	prompt, err := buildEnhancementPrompt(query, itineraries)
	if err != nil {
		log.Warnw("Failed to build enhancement prompt, keeping raw itineraries", "error", err)
		return itineraries
	}

	raw, err := s.client.GenerateJSON(ctx, enhancerSystemInstruction, prompt, routesSchema)
	if err != nil {
		log.Warnw("Enhancement request failed, keeping raw itineraries", "error", err)
		return itineraries
	}

	parsed, err := parseRoutesResponse(raw)
	if err != nil {
		log.Warnw("Enhancement output failed validation, keeping raw itineraries", "error", err)
		return itineraries
	}

	if len(parsed.Routes) != len(itineraries) {
		log.Warnw("Enhancement changed the itinerary count, keeping raw itineraries",
			"expected", len(itineraries), "got", len(parsed.Routes))
		return itineraries
	}

	enhanced := make([]types.Itinerary, len(itineraries))
	for i, original := range itineraries {
		annotated := parsed.Routes[i]

		if !stepsPreserved(original.Steps, annotated.Steps) {
			log.Warnw("Enhancement altered step structure, keeping raw itineraries",
				"itinerary", original.ID)
			return itineraries
		}

		// Structural facts come from the original; only annotations are taken
		// from the model.
		out := original
		out.AIReasoning = types.Visible(annotated.AIReasoning)
		out.WeatherAlert = annotated.WeatherAlert
		out.SafetyScore = annotated.SafetyScore
		out.CaloriesBurned = annotated.CaloriesBurned
		out.TrafficDelayMinutes = annotated.TrafficDelayMinutes
		if annotated.CO2Savings > 0 {
			out.CO2Savings = annotated.CO2Savings
		}
		out.Provenance = types.ProvenanceAIEnhanced
		enhanced[i] = out
	}

	return enhanced
}

// stepsPreserved checks that the annotated steps keep the original count,
// order, and modes.
func stepsPreserved(original []types.Step, annotated []aiStep) bool {
	if len(original) != len(annotated) {
		return false
	}
	for i := range original {
		if string(original[i].Mode) != annotated[i].Mode {
			return false
		}
	}
	return true
}

// parseRoutesResponse strips a single code fence, parses the remainder, and
// validates it against the canonical shape.
func parseRoutesResponse(raw string) (*aiRoutesResponse, error) {
	cleaned := stripCodeFence(raw)

	var parsed aiRoutesResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, apperrors.GenerationError("model output was not valid JSON", err.Error())
	}

	if len(parsed.Routes) == 0 {
		return nil, apperrors.GenerationError("model output was empty", "no routes in response")
	}

	for i, route := range parsed.Routes {
		if err := validateAIItinerary(route); err != nil {
			return nil, apperrors.GenerationError("model output failed schema validation",
				fmt.Sprintf("route %d: %v", i, err))
		}
	}

	return &parsed, nil
}

func validateAIItinerary(it aiItinerary) error {
	if it.TotalTime < 0 {
		return fmt.Errorf("negative totalTime %d", it.TotalTime)
	}
	if it.Cost < 0 {
		return fmt.Errorf("negative cost %f", it.Cost)
	}
	if it.WalkingDistance < 0 {
		return fmt.Errorf("negative walkingDistance %d", it.WalkingDistance)
	}
	if it.Transfers < 0 {
		return fmt.Errorf("negative transfers %d", it.Transfers)
	}
	if it.SafetyScore != nil && (*it.SafetyScore < 0 || *it.SafetyScore > 100) {
		return fmt.Errorf("safetyScore %d outside [0, 100]", *it.SafetyScore)
	}
	if len(it.Steps) == 0 {
		return fmt.Errorf("itinerary has no steps")
	}
	for i, step := range it.Steps {
		if !types.TransportMode(step.Mode).IsValid() {
			return fmt.Errorf("step %d has unknown mode %q", i, step.Mode)
		}
		if step.DurationMinutes < 0 {
			return fmt.Errorf("step %d has negative duration", i)
		}
	}
	return nil
}

// toItineraries converts validated model output into canonical itineraries,
// assigning a fresh identifier wherever the model omitted one. Identifiers are
// unique within the result set but not across searches.
func toItineraries(routes []aiItinerary, tag string, provenance types.Provenance) []types.Itinerary {
	now := time.Now().Unix()
	itineraries := make([]types.Itinerary, 0, len(routes))

	for i, route := range routes {
		steps := make([]types.Step, 0, len(route.Steps))
		for _, s := range route.Steps {
			mode := types.TransportMode(s.Mode)
			color := s.Color
			if color == "" {
				color = modeColor(mode)
			}
			steps = append(steps, types.Step{
				Mode:            mode,
				Instruction:     s.Instruction,
				DurationMinutes: s.DurationMinutes,
				LineName:        s.LineName,
				Color:           color,
			})
		}
		if len(steps) == 0 {
			continue
		}

		id := route.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d-%d", tag, i, now)
		}

		co2 := route.CO2Savings
		if co2 < 0 {
			co2 = 0
		}

		itineraries = append(itineraries, types.Itinerary{
			ID:                  id,
			TotalTime:           route.TotalTime,
			Cost:                route.Cost,
			WalkingDistance:     route.WalkingDistance,
			Transfers:           route.Transfers,
			CO2Savings:          co2,
			IsAccessible:        route.IsAccessible,
			StartTime:           route.StartTime,
			EndTime:             route.EndTime,
			Steps:               steps,
			AIReasoning:         types.Visible(route.AIReasoning),
			Provenance:          provenance,
			WeatherAlert:        route.WeatherAlert,
			SafetyScore:         route.SafetyScore,
			CaloriesBurned:      route.CaloriesBurned,
			TrafficDelayMinutes: route.TrafficDelayMinutes,
		})
	}

	return itineraries
}

// stripCodeFence removes a single leading/trailing markdown fence (and its
// optional language tag) from model output. The remainder must still parse as
// JSON; this only unwraps, it never repairs.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop an optional language tag such as "json" on the fence line.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, "{}[]") {
			trimmed = trimmed[idx+1:]
		}
	}

	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func buildGenerativePrompt(query types.TripQuery, origin types.Coordinates) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Plan urban transit routes.

Origin coordinates: %.4f, %.4f
Destination: %s
Current weather: %.0f°C, %s`,
		origin.Lat, origin.Lng, query.Destination, query.Weather.TempC, query.Weather.Condition)

	if query.Weather.RainSoon {
		b.WriteString("\nRain is expected within the hour.")
	}

	b.WriteString(`

Invent 3 to 4 materially distinct itineraries for this trip. They must span at
least: the fastest option, the cheapest option, and one multi-modal or
ride-hail option. Use plausible local transit line names for the destination
city. Every itinerary needs ordered steps with realistic durations, a short
aiReasoning explaining the trade-off it makes, and honest walking distances.`)

	return b.String()
}

func buildEnhancementPrompt(query types.TripQuery, itineraries []types.Itinerary) (string, error) {
	payload, err := json.Marshal(itineraries)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, `Annotate these transit routes to %s.

Current weather: %.0f°C, %s
Ride-hail price points for comparison: uber %.2f, bolt %.2f, 99 %.2f

Routes:
%s

Preserve every route exactly: same order, same step count, same modes, same
times and costs. Only add annotations: aiReasoning (why a traveler would pick
this route, including a price comparison against ride-hail where relevant),
safetyScore (0-100), weatherAlert when the weather affects the route, and
caloriesBurned / trafficDelayMinutes estimates.`,
		query.Destination,
		query.Weather.TempC, query.Weather.Condition,
		rideHailEstimates["uber"], rideHailEstimates["bolt"], rideHailEstimates["99"],
		string(payload))

	return b.String(), nil
}
