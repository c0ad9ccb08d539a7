package valueobjects

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/urbanflow/urbanflow-backend/errors"
	"github.com/urbanflow/urbanflow-backend/types"
)

// GeoPoint is a validated WGS84 position. Origins and destinations pass
// through here before any routing request is built, so out-of-range
// coordinates never reach a provider.
type GeoPoint struct {
	latitude  float64
	longitude float64
}

// NewGeoPoint validates the coordinate ranges and returns the point.
func NewGeoPoint(lat, lng float64) (*GeoPoint, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}

	return &GeoPoint{
		latitude:  lat,
		longitude: lng,
	}, nil
}

// Latitude returns the latitude value
func (g GeoPoint) Latitude() float64 {
	return g.latitude
}

// Longitude returns the longitude value
func (g GeoPoint) Longitude() float64 {
	return g.longitude
}

// DistanceTo returns the great-circle distance to another point in meters.
func (g GeoPoint) DistanceTo(other GeoPoint) float64 {
	const earthRadius = 6371000 // meters

	lat1 := degreesToRadians(g.latitude)
	lng1 := degreesToRadians(g.longitude)
	lat2 := degreesToRadians(other.latitude)
	lng2 := degreesToRadians(other.longitude)

	dlat := lat2 - lat1
	dlng := lng2 - lng1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// IsWithinRadius reports whether another point lies within radius meters.
func (g GeoPoint) IsWithinRadius(other GeoPoint, radius float64) bool {
	if radius < 0 {
		return false
	}
	return g.DistanceTo(other) <= radius
}

// String returns a string representation of the geographic point
func (g GeoPoint) String() string {
	return fmt.Sprintf("(%f, %f)", g.latitude, g.longitude)
}

// ToCoordinates converts the point into the canonical wire shape.
func (g GeoPoint) ToCoordinates() types.Coordinates {
	return types.Coordinates{
		Lat: g.latitude,
		Lng: g.longitude,
	}
}

// NewGeoPointFromCoordinates validates and converts canonical coordinates.
func NewGeoPointFromCoordinates(coords types.Coordinates) (*GeoPoint, error) {
	return NewGeoPoint(coords.Lat, coords.Lng)
}

func (g GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	}{
		Latitude:  g.latitude,
		Longitude: g.longitude,
	})
}

// private helpers

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return errors.ValidationFailed(
			"invalid latitude",
			fmt.Sprintf("latitude %f is outside valid range [-90, 90]", lat),
		)
	}

	if lng < -180 || lng > 180 {
		return errors.ValidationFailed(
			"invalid longitude",
			fmt.Sprintf("longitude %f is outside valid range [-180, 180]", lng),
		)
	}

	return nil
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
