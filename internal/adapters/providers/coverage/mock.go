package coverage

import (
	"context"
	"time"

	"github.com/circletel/coverage-engine/internal/domain/entities"
)

// metro is an in-memory coverage circle for the mock provider
type metro struct {
	name     string
	center   entities.Coordinates
	radiusKm float64
}

var mockMetros = []metro{
	{"Johannesburg", entities.Coordinates{Lat: -26.2041, Lng: 28.0473}, 15},
	{"Cape Town", entities.Coordinates{Lat: -33.9249, Lng: 18.4241}, 12},
	{"Durban", entities.Coordinates{Lat: -29.8587, Lng: 31.0218}, 10},
	{"Pretoria", entities.Coordinates{Lat: -25.7479, Lng: 28.2293}, 12},
}

// MockProvider is a deterministic in-memory provider for development and
// tests. Points inside a metro circle get wireless and LTE coverage with a
// signal band tied to the distance from the metro center.
type MockProvider struct {
	id     string
	metros []metro
}

// NewMockProvider creates a mock provider covering the major metros
func NewMockProvider(id string) *MockProvider {
	return &MockProvider{id: id, metros: mockMetros}
}

// ID returns the provider identifier
func (p *MockProvider) ID() string {
	return p.id
}

// CheckCoverage answers from the static metro table
func (p *MockProvider) CheckCoverage(ctx context.Context, coords entities.Coordinates, serviceTypes []entities.ServiceType) (*entities.ProviderCoverageResult, error) {
	bestFraction := -1.0
	for _, m := range p.metros {
		distance := coords.DistanceKm(m.center)
		if distance > m.radiusKm {
			continue
		}
		fraction := distance / m.radiusKm
		if bestFraction < 0 || fraction < bestFraction {
			bestFraction = fraction
		}
	}

	available := bestFraction >= 0
	signal := entities.SignalNone
	if available {
		switch {
		case bestFraction <= 0.3:
			signal = entities.SignalExcellent
		case bestFraction <= 0.6:
			signal = entities.SignalGood
		default:
			signal = entities.SignalFair
		}
	}

	services := []entities.ServiceCoverage{}
	for _, st := range []entities.ServiceType{entities.ServiceUncappedWireless, entities.ServiceLTE} {
		if !wantsService(serviceTypes, st) {
			continue
		}
		services = append(services, entities.ServiceCoverage{
			Type:      st,
			Available: available,
			Signal:    signal,
		})
	}

	return &entities.ProviderCoverageResult{
		Provider:   p.id,
		Available:  available && len(services) > 0,
		Confidence: entities.ConfidenceMedium,
		Services:   services,
		CheckedAt:  time.Now(),
	}, nil
}
