package entities

import "math"

// Coordinates represents a geographic point in decimal degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsWellFormed reports whether both components are finite numbers inside
// the valid global ranges.
func (c Coordinates) IsWellFormed() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// DistanceKm returns the great-circle distance to another point in
// kilometers, using the Haversine formula.
func (c Coordinates) DistanceKm(other Coordinates) float64 {
	const earthRadiusKm = 6371.0

	dLat := deg2rad(other.Lat - c.Lat)
	dLng := deg2rad(other.Lng - c.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(c.Lat))*math.Cos(deg2rad(other.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}
