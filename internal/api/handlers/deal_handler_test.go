package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circletel/coverage-engine/internal/application/services"
	"github.com/circletel/coverage-engine/internal/domain/entities"
	apperrors "github.com/circletel/coverage-engine/pkg/errors"
)

// stubDealRepo serves a fixed deal list
type stubDealRepo struct {
	deals []entities.Deal
}

func (r *stubDealRepo) GetByID(ctx context.Context, id string) (*entities.Deal, error) {
	for i := range r.deals {
		if r.deals[i].ID == id {
			return &r.deals[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("deal not found: " + id)
}

func (r *stubDealRepo) ListActive(ctx context.Context) ([]entities.Deal, error) {
	return r.deals, nil
}

func (r *stubDealRepo) ListActiveByProvider(ctx context.Context, provider string) ([]entities.Deal, error) {
	var out []entities.Deal
	for _, d := range r.deals {
		if d.Provider == provider {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *stubDealRepo) Upsert(ctx context.Context, deal *entities.Deal) error { return nil }

func newTestDealHandler() *DealHandler {
	repo := &stubDealRepo{deals: []entities.Deal{
		{ID: "deal-mtn-50gb", Name: "MTN 50GB", Provider: "mtn", TotalMonthly: 399, ContractMonths: 12, DataAllowance: "50GB", IsActive: true},
		{ID: "deal-mtn-unlimited", Name: "MTN Uncapped", Provider: "mtn", TotalMonthly: 799, ContractMonths: 24, DataAllowance: "unlimited", IsActive: true},
		{ID: "deal-supersonic-10gb", Name: "Supersonic 10GB", Provider: "supersonic", TotalMonthly: 199, ContractMonths: 0, DataAllowance: "10GB", IsActive: true},
	}}
	return NewDealHandler(repo, services.NewDealRecommenderService())
}

func TestRecommendDeals_EmptyBody(t *testing.T) {
	h := newTestDealHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/deals/recommendations", nil)
	rec := httptest.NewRecorder()
	h.RecommendDeals(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var data struct {
		Recommendations []entities.DealScore `json:"recommendations"`
		Total           int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 3, data.Total)
}

func TestRecommendDeals_WithProfile(t *testing.T) {
	h := newTestDealHandler()

	body := `{"profile": {"budget": 400, "data_usage": "moderate"}, "limit": 2}`
	req := httptest.NewRequest(http.MethodPost, "/api/deals/recommendations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.RecommendDeals(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)

	var data struct {
		Recommendations []entities.DealScore `json:"recommendations"`
		Total           int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Total)
	for _, ds := range data.Recommendations {
		assert.GreaterOrEqual(t, ds.Score, 0)
		assert.LessOrEqual(t, ds.Score, 100)
	}
}

func TestRecommendDeals_ProviderFilter(t *testing.T) {
	h := newTestDealHandler()

	body := `{"provider": "supersonic"}`
	req := httptest.NewRequest(http.MethodPost, "/api/deals/recommendations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.RecommendDeals(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)

	var data struct {
		Recommendations []entities.DealScore `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Recommendations, 1)
	assert.Equal(t, "deal-supersonic-10gb", data.Recommendations[0].Deal.ID)
}

func TestRecommendDeals_InvalidDataUsage(t *testing.T) {
	h := newTestDealHandler()

	body := `{"profile": {"data_usage": "gigantic"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/deals/recommendations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.RecommendDeals(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_DATA_USAGE", env.Error.Code)
}

func TestRecommendDeals_MalformedBody(t *testing.T) {
	h := newTestDealHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/deals/recommendations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.RecommendDeals(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestGetDeal(t *testing.T) {
	h := newTestDealHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/deals/deal-mtn-50gb", nil)
	req.SetPathValue("id", "deal-mtn-50gb")
	rec := httptest.NewRecorder()
	h.GetDeal(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var deal entities.Deal
	require.NoError(t, json.Unmarshal(env.Data, &deal))
	assert.Equal(t, "MTN 50GB", deal.Name)
}

func TestGetDeal_NotFound(t *testing.T) {
	h := newTestDealHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/deals/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.GetDeal(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
