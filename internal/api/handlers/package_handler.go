package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/circletel/coverage-engine/internal/application/services"
	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

// PackageHandler handles catalogue endpoints
type PackageHandler struct {
	packages *services.PackageService
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(packages *services.PackageService) *PackageHandler {
	return &PackageHandler{packages: packages}
}

// packageFilterFromQuery builds the repository filter from query parameters.
// Unrecognized service or customer type tags are rejected rather than
// silently matching nothing.
func packageFilterFromQuery(r *http.Request) (repositories.PackageFilter, *paramError) {
	q := r.URL.Query()
	filter := repositories.PackageFilter{
		Provider:   strings.TrimSpace(q.Get("provider")),
		ActiveOnly: true,
	}

	if raw := q.Get("serviceType"); raw != "" {
		st, ok := entities.ParseServiceType(raw)
		if !ok {
			return filter, &paramError{http.StatusBadRequest, "INVALID_SERVICE_TYPE", "unrecognized serviceType"}
		}
		filter.ServiceType = &st
	}
	if raw := q.Get("customerType"); raw != "" {
		ct, ok := entities.ParseCustomerType(raw)
		if !ok {
			return filter, &paramError{http.StatusBadRequest, "INVALID_CUSTOMER_TYPE", "customerType must be consumer, sme or enterprise"}
		}
		filter.CustomerType = &ct
	}
	if raw := q.Get("maxPrice"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, &paramError{http.StatusBadRequest, "INVALID_PRICE", "maxPrice must be a number"}
		}
		filter.MaxPrice = &f
	}
	if raw := q.Get("minSpeed"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, &paramError{http.StatusBadRequest, "INVALID_SPEED", "minSpeed must be an integer"}
		}
		filter.MinSpeedMbps = &n
	}
	return filter, nil
}

// ListPackages handles GET /api/packages
func (h *PackageHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	filter, perr := packageFilterFromQuery(r)
	if perr != nil {
		respondWithError(w, perr.status, perr.code, perr.message)
		return
	}

	packages, err := h.packages.List(r.Context(), filter)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("failed to list packages")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL", "failed to list packages")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"packages": packages,
		"count":    len(packages),
	})
}

// SearchPackages handles GET /api/packages/search?q=...
func (h *PackageHandler) SearchPackages(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "MISSING_QUERY", "q parameter is required")
		return
	}

	filter, perr := packageFilterFromQuery(r)
	if perr != nil {
		respondWithError(w, perr.status, perr.code, perr.message)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	packages, err := h.packages.Search(r.Context(), query, filter, limit)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("package search failed")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL", "package search failed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"packages": packages,
		"count":    len(packages),
		"query":    query,
	})
}

// GetPackage handles GET /api/packages/{id}
func (h *PackageHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "MISSING_ID", "package id is required")
		return
	}

	pkg, err := h.packages.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, pkg)
}

// ReindexPackages handles POST /api/admin/packages/reindex and rebuilds
// the search collection from the catalogue.
func (h *PackageHandler) ReindexPackages(w http.ResponseWriter, r *http.Request) {
	if err := h.packages.Reindex(r.Context()); err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("package reindex failed")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL", "package reindex failed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "reindexed"})
}
