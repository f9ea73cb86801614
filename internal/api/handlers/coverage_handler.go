package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/circletel/coverage-engine/internal/application/services"
	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

// CoverageHandler handles coverage and product recommendation endpoints
type CoverageHandler struct {
	fallback    *services.FallbackService
	aggregator  *services.CoverageAggregationService
	recommender *services.ProductRecommendationService
	validator   *services.GeoValidationService
	analytics   *services.CoverageAnalyticsService
}

// NewCoverageHandler creates a new coverage handler
func NewCoverageHandler(
	fallback *services.FallbackService,
	aggregator *services.CoverageAggregationService,
	recommender *services.ProductRecommendationService,
	validator *services.GeoValidationService,
	analytics *services.CoverageAnalyticsService,
) *CoverageHandler {
	return &CoverageHandler{
		fallback:    fallback,
		aggregator:  aggregator,
		recommender: recommender,
		validator:   validator,
		analytics:   analytics,
	}
}

// coverageRequest is the shared input shape for the coverage endpoints,
// accepted as query parameters on GET and as a JSON body on POST.
type coverageRequest struct {
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	CustomerType    string   `json:"customerType"`
	MinSpeed        int      `json:"minSpeed"`
	MinBudget       *float64 `json:"minBudget"`
	MaxBudget       *float64 `json:"maxBudget"`
	PreferUnlimited *bool    `json:"preferUnlimited"`
	ServiceTypes    []string `json:"serviceTypes"`
}

// paramError is a request parse failure with its client-facing error code
type paramError struct {
	status  int
	code    string
	message string
}

// parseCoverageRequest reads the request from query parameters or, for
// POST, from the JSON body. Missing or malformed coordinates are client
// errors and never reach the pipeline.
func parseCoverageRequest(r *http.Request) (coverageRequest, *paramError) {
	var req coverageRequest

	if r.Method == http.MethodPost && r.URL.Query().Get("lat") == "" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, &paramError{http.StatusBadRequest, "INVALID_REQUEST", "request body must be valid JSON"}
		}
	} else {
		q := r.URL.Query()
		latStr := strings.TrimSpace(q.Get("lat"))
		lngStr := strings.TrimSpace(q.Get("lng"))
		if latStr != "" {
			lat, err := strconv.ParseFloat(latStr, 64)
			if err != nil {
				return req, &paramError{http.StatusBadRequest, "INVALID_COORDINATES", "lat must be a valid number"}
			}
			req.Lat = &lat
		}
		if lngStr != "" {
			lng, err := strconv.ParseFloat(lngStr, 64)
			if err != nil {
				return req, &paramError{http.StatusBadRequest, "INVALID_COORDINATES", "lng must be a valid number"}
			}
			req.Lng = &lng
		}
		req.CustomerType = q.Get("customerType")
		if v := q.Get("minSpeed"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				req.MinSpeed = n
			}
		}
		if v := q.Get("maxBudget"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				req.MaxBudget = &f
			}
		}
		if v := q.Get("minBudget"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				req.MinBudget = &f
			}
		}
		if v := q.Get("services"); v != "" {
			req.ServiceTypes = strings.Split(v, ",")
		}
	}

	if req.Lat == nil || req.Lng == nil {
		return req, &paramError{http.StatusBadRequest, "MISSING_COORDINATES", "lat and lng parameters are required"}
	}
	return req, nil
}

// coordinates returns the request's point, rejecting values outside the
// valid global ranges.
func (req coverageRequest) coordinates() (entities.Coordinates, *paramError) {
	coords := entities.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	if !coords.IsWellFormed() {
		return coords, &paramError{http.StatusBadRequest, "INVALID_COORDINATES", "lat and lng must be finite numbers in valid ranges"}
	}
	return coords, nil
}

// serviceTypes maps the requested service tags to recognized types.
// Unrecognized tags are dropped; an empty result means "all types".
func (req coverageRequest) serviceTypes() []entities.ServiceType {
	var out []entities.ServiceType
	for _, raw := range req.ServiceTypes {
		if st, ok := entities.ParseServiceType(strings.TrimSpace(raw)); ok {
			out = append(out, st)
		}
	}
	return out
}

// GetProducts handles GET/POST /api/coverage/products. Provider failures
// degrade the response but never fail it: when every provider is down the
// response is still HTTP 200 with an empty recommendation list and
// fallback_reason "all_failed" in the metadata.
func (h *CoverageHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	req, perr := parseCoverageRequest(r)
	if perr != nil {
		respondWithError(w, perr.status, perr.code, perr.message)
		return
	}
	coords, perr := req.coordinates()
	if perr != nil {
		respondWithError(w, perr.status, perr.code, perr.message)
		return
	}

	opts := services.DefaultRecommendationOptions()
	if req.CustomerType != "" {
		ct, ok := entities.ParseCustomerType(req.CustomerType)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "INVALID_CUSTOMER_TYPE", "customerType must be consumer, sme or enterprise")
			return
		}
		opts.CustomerType = ct
	}
	opts.MinSpeedMbps = req.MinSpeed
	opts.BudgetMin = req.MinBudget
	opts.BudgetMax = req.MaxBudget
	if req.PreferUnlimited != nil {
		opts.PreferUnlimited = *req.PreferUnlimited
	}

	coverage, err := h.fallback.CheckWithFallback(r.Context(), coords, req.serviceTypes())
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("coverage fallback failed")
		respondWithAppError(w, err)
		return
	}

	recommendations, err := h.recommender.Recommend(r.Context(), coverage, opts)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("recommendation failed")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL", "failed to rank packages")
		return
	}

	h.analytics.Record(r.Context(), coverage)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"skyFibreAvailable":    h.recommender.IsSkyFibreAvailable(coverage),
		"coverageSummary":      coverage,
		"recommendations":      recommendations,
		"totalRecommendations": len(recommendations),
	})
}

// CheckCoverage handles GET/POST /api/coverage/check and returns the raw
// aggregated verdict without package ranking.
func (h *CoverageHandler) CheckCoverage(w http.ResponseWriter, r *http.Request) {
	req, perr := parseCoverageRequest(r)
	if perr != nil {
		respondWithError(w, perr.status, perr.code, perr.message)
		return
	}
	coords, perr := req.coordinates()
	if perr != nil {
		respondWithError(w, perr.status, perr.code, perr.message)
		return
	}

	coverage, err := h.aggregator.CheckCoverage(r.Context(), coords, req.serviceTypes())
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("coverage aggregation failed")
		respondWithAppError(w, err)
		return
	}

	h.analytics.Record(r.Context(), coverage)

	respondWithJSON(w, http.StatusOK, coverage)
}

// ValidateLocation handles GET/POST /api/coverage/geo-validate. The
// validator itself never errors: out-of-range values come back with
// is_valid=false and warnings, not an HTTP failure.
func (h *CoverageHandler) ValidateLocation(w http.ResponseWriter, r *http.Request) {
	req, perr := parseCoverageRequest(r)
	if perr != nil {
		respondWithError(w, perr.status, perr.code, perr.message)
		return
	}

	result := h.validator.Validate(entities.Coordinates{Lat: *req.Lat, Lng: *req.Lng})
	respondWithJSON(w, http.StatusOK, result)
}
