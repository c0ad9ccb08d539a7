package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/urbanflow/urbanflow-backend/types"
)

// Grams of CO2 saved per transit boarding versus a solo car ride. A local
// heuristic; the enhancer may refine it with context.
const co2SavingsPerTransitLegGrams = 250

// mapOTPMode converts an OTP mode string into the canonical transport mode.
// Unknown modes fall through to ride-hail, the least specific non-walk mode.
func mapOTPMode(otpMode string) types.TransportMode {
	switch strings.ToUpper(otpMode) {
	case "BUS", "TROLLEYBUS", "COACH":
		return types.ModeBus
	case "SUBWAY", "METRO":
		return types.ModeMetro
	case "RAIL", "TRAM", "CABLE_CAR", "FUNICULAR", "MONORAIL":
		return types.ModeTrain
	case "WALK", "FOOT":
		return types.ModeWalk
	case "BICYCLE", "BIKE":
		return types.ModeBike
	case "SCOOTER":
		return types.ModeScooter
	default:
		return types.ModeRide
	}
}

// modeColor returns the display color a step is rendered with.
func modeColor(mode types.TransportMode) string {
	switch mode {
	case types.ModeBus:
		return "#3B82F6"
	case types.ModeMetro:
		return "#EF4444"
	case types.ModeTrain:
		return "#10B981"
	case types.ModeWalk:
		return ""
	default:
		return "#9CA3AF"
	}
}

// formatClock renders a display time as a short HH:MM string.
func formatClock(t time.Time) string {
	return t.Format("15:04")
}

// secondsToMinutes rounds a duration in seconds to whole minutes.
func secondsToMinutes(seconds float64) int {
	return int(seconds/60 + 0.5)
}

// parseOTPTime accepts the two timestamp encodings seen across OTP
// deployments: RFC3339 strings (Transmodel) and epoch milliseconds (classic
// REST). Falls back to the current time when the value is unusable.
func parseOTPTime(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Now()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
		return time.Now()
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil && millis > 0 {
		return time.UnixMilli(millis)
	}

	return time.Now()
}
