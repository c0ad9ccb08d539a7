package types

// WeatherSnapshot is the read-only weather context attached to a trip query.
type WeatherSnapshot struct {
	TempC     float64 `json:"temp"`
	Condition string  `json:"condition"`
	Humidity  float64 `json:"humidity,omitempty"`
	RainSoon  bool    `json:"willRainInNextHour,omitempty"`
}
