package entities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWellFormed(t *testing.T) {
	cases := []struct {
		name   string
		coords Coordinates
		want   bool
	}{
		{"pretoria", Coordinates{Lat: -25.7461, Lng: 28.1881}, true},
		{"equator origin", Coordinates{Lat: 0, Lng: 0}, true},
		{"lat boundary", Coordinates{Lat: 90, Lng: 180}, true},
		{"lat too high", Coordinates{Lat: 90.1, Lng: 0}, false},
		{"lat too low", Coordinates{Lat: -90.1, Lng: 0}, false},
		{"lng too high", Coordinates{Lat: 0, Lng: 180.1}, false},
		{"lng too low", Coordinates{Lat: 0, Lng: -180.1}, false},
		{"nan lat", Coordinates{Lat: math.NaN(), Lng: 28}, false},
		{"nan lng", Coordinates{Lat: -25, Lng: math.NaN()}, false},
		{"inf lat", Coordinates{Lat: math.Inf(1), Lng: 28}, false},
		{"negative inf lng", Coordinates{Lat: -25, Lng: math.Inf(-1)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.coords.IsWellFormed())
		})
	}
}

func TestDistanceKm(t *testing.T) {
	johannesburg := Coordinates{Lat: -26.2041, Lng: 28.0473}
	pretoria := Coordinates{Lat: -25.7461, Lng: 28.1881}

	distance := johannesburg.DistanceKm(pretoria)
	assert.InDelta(t, 53, distance, 3)

	// Symmetric and zero at the same point
	assert.InDelta(t, distance, pretoria.DistanceKm(johannesburg), 0.001)
	assert.InDelta(t, 0, pretoria.DistanceKm(pretoria), 0.001)
}
