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

// WeatherService fetches the read-only weather context attached to a trip
// query. The pipeline treats weather as optional: callers use a zero snapshot
// when the fetch fails.
type WeatherService struct {
	client *http.Client

	// Overridable for tests.
	forecastBaseURL string
}

func NewWeatherService(cfg config.WeatherConfig) *WeatherService {
	return &WeatherService{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		forecastBaseURL: "https://api.open-meteo.com/v1/forecast",
	}
}

// GetCurrentWeather fetches current conditions at the given coordinates using
// the Open-Meteo API.
func (s *WeatherService) GetCurrentWeather(ctx context.Context, coords types.Coordinates) (types.WeatherSnapshot, error) {
	log := logger.GetLogger()

	params := url.Values{}
	params.Add("latitude", fmt.Sprintf("%f", coords.Lat))
	params.Add("longitude", fmt.Sprintf("%f", coords.Lng))
	params.Add("current", "temperature_2m,relative_humidity_2m,weather_code")
	params.Add("hourly", "rain,showers")
	params.Add("forecast_hours", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s?%s", s.forecastBaseURL, params.Encode()), nil)
	if err != nil {
		return types.WeatherSnapshot{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return types.WeatherSnapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.WeatherSnapshot{}, fmt.Errorf("weather API error: %s", resp.Status)
	}

	var forecast struct {
		Current struct {
			Temperature2m      float64 `json:"temperature_2m"`
			RelativeHumidity2m int     `json:"relative_humidity_2m"`
			WeatherCode        int     `json:"weather_code"`
		} `json:"current"`
		Hourly struct {
			Rain    []float64 `json:"rain"`
			Showers []float64 `json:"showers"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return types.WeatherSnapshot{}, err
	}

	rainSoon := false
	for i := range forecast.Hourly.Rain {
		precipitation := forecast.Hourly.Rain[i]
		if i < len(forecast.Hourly.Showers) {
			precipitation += forecast.Hourly.Showers[i]
		}
		if precipitation > 0 {
			rainSoon = true
			break
		}
	}

	snapshot := types.WeatherSnapshot{
		TempC:     forecast.Current.Temperature2m,
		Condition: weatherCodeLabel(forecast.Current.WeatherCode),
		Humidity:  float64(forecast.Current.RelativeHumidity2m) / 100,
		RainSoon:  rainSoon,
	}

	log.Debugw("Weather snapshot fetched",
		"lat", coords.Lat,
		"lon", coords.Lng,
		"condition", snapshot.Condition)

	return snapshot, nil
}

// weatherCodeLabel maps WMO weather codes to short condition labels.
func weatherCodeLabel(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 3:
		return "Partly cloudy"
	case code <= 48:
		return "Fog"
	case code <= 57:
		return "Drizzle"
	case code <= 67:
		return "Rain"
	case code <= 77:
		return "Snow"
	case code <= 82:
		return "Showers"
	case code <= 86:
		return "Snow showers"
	default:
		return "Thunderstorm"
	}
}
