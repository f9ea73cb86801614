package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circletel/coverage-engine/internal/application/services"
	"github.com/circletel/coverage-engine/internal/domain/entities"
)

// stubLogRepo replays a fixed coverage log slice
type stubLogRepo struct {
	logs      []entities.CoverageLog
	lastSince time.Time
	lastLimit int
}

func (r *stubLogRepo) Insert(ctx context.Context, log *entities.CoverageLog) error {
	r.logs = append(r.logs, *log)
	return nil
}

func (r *stubLogRepo) ListSince(ctx context.Context, since time.Time, limit int) ([]entities.CoverageLog, error) {
	r.lastSince = since
	r.lastLimit = limit
	return r.logs, nil
}

func TestRecentCoverageChecks(t *testing.T) {
	repo := &stubLogRepo{logs: []entities.CoverageLog{
		{ID: "check-1", Latitude: -25.7461, Longitude: 28.1881, OverallCoverage: true, FallbackReason: entities.FallbackPrimarySuccess},
		{ID: "check-2", Latitude: -33.9249, Longitude: 18.4241, OverallCoverage: false, FallbackReason: entities.FallbackAllFailed},
	}}
	h := NewAnalyticsHandler(services.NewCoverageAnalyticsService(repo, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/coverage-checks?limit=50", nil)
	rec := httptest.NewRecorder()
	h.RecentCoverageChecks(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, repo.lastLimit)

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var data struct {
		Checks []entities.CoverageLog `json:"checks"`
		Count  int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Count)
	assert.Equal(t, "check-1", data.Checks[0].ID)
}

func TestRecentCoverageChecks_SinceFilter(t *testing.T) {
	repo := &stubLogRepo{}
	h := NewAnalyticsHandler(services.NewCoverageAnalyticsService(repo, nil))

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/coverage-checks?since="+since.Format(time.RFC3339), nil)
	rec := httptest.NewRecorder()
	h.RecentCoverageChecks(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, repo.lastSince.Equal(since))
}

func TestRecentCoverageChecks_InvalidSince(t *testing.T) {
	h := NewAnalyticsHandler(services.NewCoverageAnalyticsService(&stubLogRepo{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/coverage-checks?since=yesterday", nil)
	rec := httptest.NewRecorder()
	h.RecentCoverageChecks(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_SINCE", env.Error.Code)
}
