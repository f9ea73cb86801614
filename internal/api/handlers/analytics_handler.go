package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/circletel/coverage-engine/internal/application/services"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

// AnalyticsHandler exposes the coverage check log
type AnalyticsHandler struct {
	analytics *services.CoverageAnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *services.CoverageAnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// RecentCoverageChecks handles GET /api/analytics/coverage-checks
func (h *AnalyticsHandler) RecentCoverageChecks(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-24 * time.Hour)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "INVALID_SINCE", "since must be an RFC3339 timestamp")
			return
		}
		since = parsed
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	logs, err := h.analytics.RecentChecks(r.Context(), since, limit)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("failed to load coverage checks")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL", "failed to load coverage checks")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"checks": logs,
		"count":  len(logs),
	})
}
