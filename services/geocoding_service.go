package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/urbanflow/urbanflow-backend/config"
	"github.com/urbanflow/urbanflow-backend/errors"
	"github.com/urbanflow/urbanflow-backend/logger"
	"github.com/urbanflow/urbanflow-backend/pkg/gemini"
	"github.com/urbanflow/urbanflow-backend/types"
	"google.golang.org/genai"
)

// GeocodingService resolves free-text locations into coordinates and extracts
// a normalized destination from conversational queries.
type GeocodingService struct {
	client    *http.Client
	userAgent string
	ai        gemini.ClientInterface

	// Overridable for tests.
	geocodeBaseURL   string
	nominatimBaseURL string
}

// NewGeocodingService creates a resolver. aiClient may be nil, in which case
// intent extraction returns the query verbatim.
func NewGeocodingService(cfg config.GeocodingConfig, aiClient gemini.ClientInterface) *GeocodingService {
	return &GeocodingService{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		userAgent:        cfg.UserAgent,
		ai:               aiClient,
		geocodeBaseURL:   "https://geocoding-api.open-meteo.com/v1/search",
		nominatimBaseURL: "https://nominatim.openstreetmap.org/search",
	}
}

// ResolveDestination converts a free-text location into coordinates. Ambiguous
// matches resolve to the first candidate; there is no disambiguation here.
// A single resolution issues at most one call per geocoding backend and never
// retries; the caller decides whether to retry the whole search.
func (s *GeocodingService) ResolveDestination(ctx context.Context, freeText string) (types.Coordinates, error) {
	log := logger.GetLogger()

	query := strings.TrimSpace(freeText)
	if query == "" {
		return types.Coordinates{}, errors.ValidationFailed(
			"empty destination",
			"destination text must not be empty or whitespace",
		)
	}

	// Primary geocoding service
	coords, err := s.getPrimaryCoordinates(ctx, query)
	if err == nil {
		return coords, nil
	}

	log.Warnw("Primary geocoding failed, falling back to Nominatim",
		"query", query,
		"error", err)

	// Fallback to Nominatim
	coords, err = s.getNominatimCoordinates(ctx, query)
	if err == nil {
		return coords, nil
	}

	log.Errorw("Both geocoding services failed",
		"query", query,
		"error", err)

	return types.Coordinates{}, errors.DestinationNotFound(query)
}

func (s *GeocodingService) getPrimaryCoordinates(ctx context.Context, query string) (types.Coordinates, error) {
	params := url.Values{}
	params.Add("name", query)
	params.Add("count", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s?%s", s.geocodeBaseURL, params.Encode()), nil)
	if err != nil {
		return types.Coordinates{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return types.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Coordinates{}, fmt.Errorf("geocoding API error: %s", resp.Status)
	}

	var geoResp struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return types.Coordinates{}, err
	}

	if len(geoResp.Results) == 0 {
		return types.Coordinates{}, fmt.Errorf("no location found for: %s", query)
	}

	return types.Coordinates{
		Lat: geoResp.Results[0].Latitude,
		Lng: geoResp.Results[0].Longitude,
	}, nil
}

func (s *GeocodingService) getNominatimCoordinates(ctx context.Context, query string) (types.Coordinates, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s?%s", s.nominatimBaseURL, params.Encode()), nil)
	if err != nil {
		return types.Coordinates{}, err
	}

	// Set a custom User-Agent as required by Nominatim's usage policy
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return types.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Coordinates{}, fmt.Errorf("nominatim api error: %s", resp.Status)
	}

	var nominatimResp []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&nominatimResp); err != nil {
		return types.Coordinates{}, err
	}

	if len(nominatimResp) == 0 {
		return types.Coordinates{}, fmt.Errorf("no location found for: %s", query)
	}

	lat, err := strconv.ParseFloat(nominatimResp[0].Lat, 64)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("invalid latitude: %s", nominatimResp[0].Lat)
	}

	lon, err := strconv.ParseFloat(nominatimResp[0].Lon, 64)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("invalid longitude: %s", nominatimResp[0].Lon)
	}

	return types.Coordinates{Lat: lat, Lng: lon}, nil
}

// intentSchema constrains the intent-extraction output.
var intentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"destination":  {Type: genai.TypeString},
		"time":         {Type: genai.TypeString},
		"type":         {Type: genai.TypeString, Enum: []string{"departure", "arrival"}},
		"isAccessible": {Type: genai.TypeBoolean},
	},
	Required: []string{"destination"},
}

const intentSystemInstruction = "You are an expert urban mobility analyzer. Extract destination and time intent accurately."

// ExtractIntent pulls the destination out of a conversational mobility query.
// It falls back to the original text verbatim on any failure and never
// returns an error to the caller.
func (s *GeocodingService) ExtractIntent(ctx context.Context, freeText string) string {
	log := logger.GetLogger()

	if s.ai == nil {
		return freeText
	}

	prompt := fmt.Sprintf(`User mobility request: %q. Identify the destination and constraints. Return JSON.`, freeText)

	raw, err := s.ai.GenerateJSON(ctx, intentSystemInstruction, prompt, intentSchema)
	if err != nil {
		log.Warnw("Intent extraction failed, using query verbatim", "error", err)
		return freeText
	}

	var parsed struct {
		Destination string `json:"destination"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		log.Warnw("Intent extraction returned invalid JSON, using query verbatim", "error", err)
		return freeText
	}

	if strings.TrimSpace(parsed.Destination) == "" {
		return freeText
	}
	return parsed.Destination
}
