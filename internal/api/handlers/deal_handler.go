package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/circletel/coverage-engine/internal/application/services"
	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

// DealHandler handles deal recommendation endpoints
type DealHandler struct {
	deals       repositories.DealRepository
	recommender *services.DealRecommenderService
}

// NewDealHandler creates a new deal handler
func NewDealHandler(deals repositories.DealRepository, recommender *services.DealRecommenderService) *DealHandler {
	return &DealHandler{deals: deals, recommender: recommender}
}

// dealRecommendationRequest is the POST body for deal ranking
type dealRecommendationRequest struct {
	Profile  entities.CustomerProfile `json:"profile"`
	Provider string                   `json:"provider,omitempty"`
	Limit    int                      `json:"limit,omitempty"`
}

// RecommendDeals handles POST /api/deals/recommendations. The profile is
// entirely optional: an empty body ranks the active deals on their
// intrinsic factors alone.
func (h *DealHandler) RecommendDeals(w http.ResponseWriter, r *http.Request) {
	var req dealRecommendationRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be valid JSON")
			return
		}
	}

	if req.Profile.DataUsage != "" {
		switch req.Profile.DataUsage {
		case entities.UsageLight, entities.UsageModerate, entities.UsageHeavy:
		default:
			respondWithError(w, http.StatusBadRequest, "INVALID_DATA_USAGE", "data_usage must be light, moderate or heavy")
			return
		}
	}

	limit := req.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var (
		deals []entities.Deal
		err   error
	)
	if provider := strings.TrimSpace(req.Provider); provider != "" {
		deals, err = h.deals.ListActiveByProvider(r.Context(), provider)
	} else {
		deals, err = h.deals.ListActive(r.Context())
	}
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("failed to load deals")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL", "failed to load deals")
		return
	}

	scored := h.recommender.RecommendDeals(deals, req.Profile, limit)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": scored,
		"total":           len(scored),
	})
}

// GetDeal handles GET /api/deals/{id}
func (h *DealHandler) GetDeal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "MISSING_ID", "deal id is required")
		return
	}

	deal, err := h.deals.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, deal)
}
