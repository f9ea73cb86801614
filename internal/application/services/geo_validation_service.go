package services

import (
	"fmt"

	"github.com/circletel/coverage-engine/internal/domain/entities"
)

// GeoValidationService validates coordinates for the South African coverage
// context. Validation is advisory: it never returns an error, it downgrades
// confidence and attaches warnings instead.
type GeoValidationService struct{}

// NewGeoValidationService creates a new geo validation service
func NewGeoValidationService() *GeoValidationService {
	return &GeoValidationService{}
}

// Validate checks a point against the national bounds, resolves its
// province and nearest major city, and derives a confidence verdict.
func (s *GeoValidationService) Validate(coords entities.Coordinates) entities.GeoValidationResult {
	result := entities.GeoValidationResult{
		Confidence: entities.ConfidenceLow,
		Warnings:   []string{},
	}

	if !coords.IsWellFormed() {
		result.Warnings = append(result.Warnings, "Invalid coordinate format")
		result.Suggestions = append(result.Suggestions, "Ensure coordinates are valid numbers within lat [-90,90] and lng [-180,180]")
		return result
	}

	result.IsValid = true

	if !entities.SouthAfricaBounds.Contains(coords) {
		if country := s.neighboringCountry(coords); country != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Coordinates are in %s, not South Africa", country.Name))
		} else {
			result.Warnings = append(result.Warnings, "Coordinates are outside South Africa")
		}
		result.Suggestions = append(result.Suggestions, "CircleTel services are only available within South Africa")
		if nearest := s.nearestCity(coords, nil); nearest != nil {
			result.NearestCity = nearest
			result.Suggestions = append(result.Suggestions,
				fmt.Sprintf("Nearest South African city: %s (%.1fkm away)", nearest.Name, nearest.DistanceKm))
		}
		return result
	}

	result.Confidence = entities.ConfidenceHigh

	province := s.province(coords)
	if province == nil {
		result.Confidence = entities.ConfidenceMedium
		result.Warnings = append(result.Warnings, "Unable to determine province")
	} else {
		result.Province = province.Name
	}

	nearest := s.nearestCity(coords, province)
	if nearest != nil {
		result.NearestCity = nearest
		result.AreaType, result.CoverageLikelihood = classifyArea(nearest.DistanceKm)
		// Distance to a major city degrades confidence inside the country
		if nearest.DistanceKm > 200 {
			result.Confidence = entities.ConfidenceMedium
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Location is %.1fkm from nearest major city (%s)", nearest.DistanceKm, nearest.Name))
		} else if nearest.DistanceKm > 100 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Location is %.1fkm from %s", nearest.DistanceKm, nearest.Name))
		}
	}

	return result
}

// classifyArea bands population density and coverage likelihood by the
// distance to the nearest major city: urban within 10km, suburban within
// 50km, rural beyond.
func classifyArea(distanceKm float64) (entities.AreaType, entities.Confidence) {
	switch {
	case distanceKm < 10:
		return entities.AreaUrban, entities.ConfidenceHigh
	case distanceKm < 50:
		return entities.AreaSuburban, entities.ConfidenceMedium
	default:
		return entities.AreaRural, entities.ConfidenceLow
	}
}

// neighboringCountry returns the bordering country whose bounds contain
// the point, if any.
func (s *GeoValidationService) neighboringCountry(coords entities.Coordinates) *entities.Country {
	for i := range entities.NeighboringCountries {
		if entities.NeighboringCountries[i].Bounds.Contains(coords) {
			return &entities.NeighboringCountries[i]
		}
	}
	return nil
}

// province returns the first province whose approximate bounds contain the
// point. The fixed province order keeps overlapping borders deterministic.
func (s *GeoValidationService) province(coords entities.Coordinates) *entities.Province {
	for i := range entities.SouthAfricanProvinces {
		if entities.SouthAfricanProvinces[i].Bounds.Contains(coords) {
			return &entities.SouthAfricanProvinces[i]
		}
	}
	return nil
}

// nearestCity finds the closest major city, searching only the given
// province when one is known.
func (s *GeoValidationService) nearestCity(coords entities.Coordinates, province *entities.Province) *entities.NearestCityMatch {
	provinces := entities.SouthAfricanProvinces
	if province != nil {
		provinces = []entities.Province{*province}
	}

	var match *entities.NearestCityMatch
	for _, p := range provinces {
		for _, city := range p.Cities {
			distance := coords.DistanceKm(city.Location)
			if match == nil || distance < match.DistanceKm {
				match = &entities.NearestCityMatch{
					Name:       city.Name,
					DistanceKm: distance,
					Location:   city.Location,
				}
			}
		}
	}
	return match
}
