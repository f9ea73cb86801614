package entities

import "time"

// BaseStation is a Tarana base node synced from the Tarana portal. The
// pipeline reads stations to decide fixed-wireless serviceability.
type BaseStation struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Latitude     float64   `json:"latitude" db:"latitude"`
	Longitude    float64   `json:"longitude" db:"longitude"`
	RangeMeters  float64   `json:"range_meters" db:"range_meters"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	LastSyncedAt time.Time `json:"last_synced_at" db:"last_synced_at"`
}

// Location returns the station position as Coordinates
func (b *BaseStation) Location() Coordinates {
	return Coordinates{Lat: b.Latitude, Lng: b.Longitude}
}
