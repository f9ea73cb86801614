package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circletel/coverage-engine/internal/application/services"
	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/providers"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
	apperrors "github.com/circletel/coverage-engine/pkg/errors"
)

// stubCoverageProvider answers every check the same way
type stubCoverageProvider struct {
	id     string
	result *entities.ProviderCoverageResult
	err    error
}

func (p *stubCoverageProvider) ID() string { return p.id }

func (p *stubCoverageProvider) CheckCoverage(ctx context.Context, coords entities.Coordinates, serviceTypes []entities.ServiceType) (*entities.ProviderCoverageResult, error) {
	return p.result, p.err
}

// stubPackageRepo serves a fixed catalogue
type stubPackageRepo struct {
	packages []entities.Package
}

func (r *stubPackageRepo) GetByID(ctx context.Context, id string) (*entities.Package, error) {
	for i := range r.packages {
		if r.packages[i].ID == id {
			return &r.packages[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("package not found: " + id)
}

func (r *stubPackageRepo) List(ctx context.Context, filter repositories.PackageFilter) ([]entities.Package, error) {
	return r.packages, nil
}

func (r *stubPackageRepo) ListByServiceTypes(ctx context.Context, types []entities.ServiceType) ([]entities.Package, error) {
	return r.packages, nil
}

func (r *stubPackageRepo) Upsert(ctx context.Context, pkg *entities.Package) error { return nil }

func newTestCoverageHandler(provider *stubCoverageProvider) *CoverageHandler {
	provs := []providers.CoverageProvider{provider}
	aggregator := services.NewCoverageAggregationService(provs, []string{provider.id}, nil, time.Minute, nil)
	fallback := services.NewFallbackService(aggregator, provider, nil, 1, time.Millisecond, time.Second)

	catalogue := &stubPackageRepo{packages: []entities.Package{
		{
			ID:           "skyfibre-home-20",
			Name:         "SkyFibre Home 20",
			CustomerType: entities.CustomerConsumer,
			ServiceType:  entities.ServiceUncappedWireless,
			MonthlyPrice: 599,
			Speed:        entities.Speed{DownloadMbps: 20, UploadMbps: 10},
			Data:         entities.DataAllowance{Unit: "unlimited"},
			IsActive:     true,
		},
	}}

	return NewCoverageHandler(
		fallback,
		aggregator,
		services.NewProductRecommendationService(catalogue),
		services.NewGeoValidationService(),
		services.NewCoverageAnalyticsService(nil, nil),
	)
}

func uncappedAvailable(id string) *entities.ProviderCoverageResult {
	return &entities.ProviderCoverageResult{
		Provider:   id,
		Available:  true,
		Confidence: entities.ConfidenceHigh,
		Services: []entities.ServiceCoverage{
			{Type: entities.ServiceUncappedWireless, Available: true, Signal: entities.SignalExcellent},
		},
		CheckedAt: time.Now(),
	}
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestGetProducts_MissingCoordinates(t *testing.T) {
	h := newTestCoverageHandler(&stubCoverageProvider{id: "mtn", result: uncappedAvailable("mtn")})

	req := httptest.NewRequest(http.MethodGet, "/api/coverage/products", nil)
	rec := httptest.NewRecorder()
	h.GetProducts(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "MISSING_COORDINATES", env.Error.Code)
}

func TestGetProducts_InvalidCoordinates(t *testing.T) {
	h := newTestCoverageHandler(&stubCoverageProvider{id: "mtn", result: uncappedAvailable("mtn")})

	for _, query := range []string{
		"lat=abc&lng=28.1",
		"lat=-25.7&lng=xyz",
		"lat=91&lng=28.1",
		"lat=-25.7&lng=-181",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/coverage/products?"+query, nil)
		rec := httptest.NewRecorder()
		h.GetProducts(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", query)
		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Error, "query %q", query)
		assert.Equal(t, "INVALID_COORDINATES", env.Error.Code, "query %q", query)
	}
}

func TestGetProducts_SkyFibreAvailable(t *testing.T) {
	h := newTestCoverageHandler(&stubCoverageProvider{id: "mtn", result: uncappedAvailable("mtn")})

	req := httptest.NewRequest(http.MethodGet, "/api/coverage/products?lat=-25.7461&lng=28.1881", nil)
	rec := httptest.NewRecorder()
	h.GetProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var data struct {
		SkyFibreAvailable    bool                     `json:"skyFibreAvailable"`
		Recommendations      []entities.RankedPackage `json:"recommendations"`
		TotalRecommendations int                      `json:"totalRecommendations"`
		CoverageSummary      entities.CoverageResult  `json:"coverageSummary"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	assert.True(t, data.SkyFibreAvailable)
	assert.Equal(t, 1, data.TotalRecommendations)
	require.Len(t, data.Recommendations, 1)
	assert.Equal(t, "skyfibre-home-20", data.Recommendations[0].ID)
	assert.Equal(t, entities.FallbackPrimarySuccess, data.CoverageSummary.Metadata.FallbackReason)
}

func TestGetProducts_AllFailedIsDegradedSuccess(t *testing.T) {
	h := newTestCoverageHandler(&stubCoverageProvider{
		id:  "mtn",
		err: providers.NewProviderError("mtn", "upstream down", nil),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/coverage/products?lat=-25.7461&lng=28.1881", nil)
	rec := httptest.NewRecorder()
	h.GetProducts(rec, req)

	// Provider failures never surface as HTTP errors.
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var data struct {
		SkyFibreAvailable    bool                    `json:"skyFibreAvailable"`
		TotalRecommendations int                     `json:"totalRecommendations"`
		CoverageSummary      entities.CoverageResult `json:"coverageSummary"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	assert.False(t, data.SkyFibreAvailable)
	assert.Equal(t, 0, data.TotalRecommendations)
	assert.Equal(t, entities.FallbackAllFailed, data.CoverageSummary.Metadata.FallbackReason)
}

func TestGetProducts_PostBody(t *testing.T) {
	h := newTestCoverageHandler(&stubCoverageProvider{id: "mtn", result: uncappedAvailable("mtn")})

	body := `{"lat": -25.7461, "lng": 28.1881, "customerType": "consumer", "minSpeed": 10}`
	req := httptest.NewRequest(http.MethodPost, "/api/coverage/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.GetProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestGetProducts_UnknownCustomerType(t *testing.T) {
	h := newTestCoverageHandler(&stubCoverageProvider{id: "mtn", result: uncappedAvailable("mtn")})

	req := httptest.NewRequest(http.MethodGet, "/api/coverage/products?lat=-25.7&lng=28.1&customerType=household", nil)
	rec := httptest.NewRecorder()
	h.GetProducts(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CUSTOMER_TYPE", env.Error.Code)
}

func TestCheckCoverage_ReturnsProviderOutcomes(t *testing.T) {
	h := newTestCoverageHandler(&stubCoverageProvider{id: "mtn", result: uncappedAvailable("mtn")})

	req := httptest.NewRequest(http.MethodGet, "/api/coverage/check?lat=-25.7461&lng=28.1881", nil)
	rec := httptest.NewRecorder()
	h.CheckCoverage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var result entities.CoverageResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.OverallCoverage)
	assert.Contains(t, result.Providers, "mtn")
	assert.NotEmpty(t, result.CheckID)
}

func TestCheckCoverage_AllProvidersFailingIsDegradedSuccess(t *testing.T) {
	h := newTestCoverageHandler(&stubCoverageProvider{
		id:  "mtn",
		err: providers.NewProviderError("mtn", "upstream down", nil),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/coverage/check?lat=-25.7461&lng=28.1881", nil)
	rec := httptest.NewRecorder()
	h.CheckCoverage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var result entities.CoverageResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.OverallCoverage)
	assert.Equal(t, entities.FallbackAllFailed, result.Metadata.FallbackReason)
	assert.Equal(t, []string{"mtn"}, result.Metadata.ProvidersFailed)
	require.Contains(t, result.Providers, "mtn")
	assert.NotEmpty(t, result.Providers["mtn"].Error)
}

func TestValidateLocation(t *testing.T) {
	h := newTestCoverageHandler(&stubCoverageProvider{id: "mtn", result: uncappedAvailable("mtn")})

	req := httptest.NewRequest(http.MethodGet, "/api/coverage/geo-validate?lat=-25.7461&lng=28.1881", nil)
	rec := httptest.NewRecorder()
	h.ValidateLocation(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var result entities.GeoValidationResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.IsValid)
	assert.Equal(t, entities.ConfidenceHigh, result.Confidence)
	assert.Equal(t, "Gauteng", result.Province)
	assert.Equal(t, entities.AreaUrban, result.AreaType)
	assert.Equal(t, entities.ConfidenceHigh, result.CoverageLikelihood)
}

func TestValidateLocation_MissingCoordinates(t *testing.T) {
	h := newTestCoverageHandler(&stubCoverageProvider{id: "mtn", result: uncappedAvailable("mtn")})

	req := httptest.NewRequest(http.MethodGet, "/api/coverage/geo-validate", nil)
	rec := httptest.NewRecorder()
	h.ValidateLocation(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "MISSING_COORDINATES", env.Error.Code)
}
