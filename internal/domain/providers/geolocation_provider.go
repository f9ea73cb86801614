package providers

import (
	"context"

	"github.com/circletel/coverage-engine/internal/domain/entities"
)

// GeolocationProvider resolves free-text addresses to coordinates
type GeolocationProvider interface {
	// Geocode converts an address to geographic coordinates
	Geocode(ctx context.Context, address string) (*entities.Coordinates, error)

	// ReverseGeocode converts coordinates to a human readable address
	ReverseGeocode(ctx context.Context, coords entities.Coordinates) (string, error)
}
