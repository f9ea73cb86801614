package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/providers"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

// GeolocationHandler handles geocoding endpoints.
type GeolocationHandler struct {
	provider providers.GeolocationProvider
}

// NewGeolocationHandler creates a new geolocation handler.
func NewGeolocationHandler(provider providers.GeolocationProvider) *GeolocationHandler {
	return &GeolocationHandler{provider: provider}
}

// Geocode handles GET /api/geocode?address=...
func (h *GeolocationHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "MISSING_ADDRESS", "address parameter is required")
		return
	}

	coords, err := h.provider.Geocode(r.Context(), address)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("address", address).Msg("geocode failed")
		respondWithError(w, http.StatusBadGateway, "GEOCODE_FAILED", "failed to geocode address")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"address": address,
		"lat":     coords.Lat,
		"lng":     coords.Lng,
	})
}

// ReverseGeocode handles GET /api/reverse-geocode?lat=...&lng=...
func (h *GeolocationHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	latStr := strings.TrimSpace(r.URL.Query().Get("lat"))
	lngStr := strings.TrimSpace(r.URL.Query().Get("lng"))
	if latStr == "" || lngStr == "" {
		respondWithError(w, http.StatusBadRequest, "MISSING_COORDINATES", "lat and lng parameters are required")
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_COORDINATES", "lat must be a valid number")
		return
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_COORDINATES", "lng must be a valid number")
		return
	}

	coords := entities.Coordinates{Lat: lat, Lng: lng}
	if !coords.IsWellFormed() {
		respondWithError(w, http.StatusBadRequest, "INVALID_COORDINATES", "lat and lng must be finite numbers in valid ranges")
		return
	}

	address, err := h.provider.ReverseGeocode(r.Context(), coords)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("reverse geocode failed")
		respondWithError(w, http.StatusBadGateway, "GEOCODE_FAILED", "failed to reverse geocode")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"address": address})
}
