package geolocation

import (
	"context"
	"fmt"
	"strings"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/providers"
)

// MockGeolocationProvider resolves a few known city names for development
// without an API key.
type MockGeolocationProvider struct{}

// NewMockGeolocationProvider creates a mock geolocation provider
func NewMockGeolocationProvider() providers.GeolocationProvider {
	return &MockGeolocationProvider{}
}

// Geocode resolves a known city name to its center coordinates
func (m *MockGeolocationProvider) Geocode(ctx context.Context, address string) (*entities.Coordinates, error) {
	lower := strings.ToLower(address)
	for _, province := range entities.SouthAfricanProvinces {
		for _, city := range province.Cities {
			if strings.Contains(lower, strings.ToLower(city.Name)) {
				coords := city.Location
				return &coords, nil
			}
		}
	}
	return nil, fmt.Errorf("no results for address")
}

// ReverseGeocode returns the nearest known city name
func (m *MockGeolocationProvider) ReverseGeocode(ctx context.Context, coords entities.Coordinates) (string, error) {
	var nearest *entities.City
	best := 0.0
	for _, province := range entities.SouthAfricanProvinces {
		for i := range province.Cities {
			city := province.Cities[i]
			distance := coords.DistanceKm(city.Location)
			if nearest == nil || distance < best {
				nearest = &city
				best = distance
			}
		}
	}
	if nearest == nil {
		return "", fmt.Errorf("no results for coordinates")
	}
	return fmt.Sprintf("%s, South Africa", nearest.Name), nil
}
