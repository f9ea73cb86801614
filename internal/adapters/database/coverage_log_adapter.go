package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
	"github.com/circletel/coverage-engine/internal/infrastructure/clients/postgres"
	apperrors "github.com/circletel/coverage-engine/pkg/errors"
)

// CoverageLogAdapter implements CoverageLogRepository
type CoverageLogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCoverageLogAdapter creates a new coverage log adapter
func NewCoverageLogAdapter(client *postgres.Client) repositories.CoverageLogRepository {
	return &CoverageLogAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Insert records a completed coverage check
func (a *CoverageLogAdapter) Insert(ctx context.Context, log *entities.CoverageLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	record := goqu.Record{
		"id":                  log.ID,
		"latitude":            log.Latitude,
		"longitude":           log.Longitude,
		"providers_attempted": pq.Array(log.ProvidersAttempted),
		"providers_failed":    pq.Array(log.ProvidersFailed),
		"overall_coverage":    log.OverallCoverage,
		"fallback_reason":     string(log.FallbackReason),
		"duration_ms":         log.DurationMs,
		"created_at":          log.CreatedAt,
	}

	query, args, err := a.db.Insert("coverage_logs").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to insert coverage log", err)
	}

	return nil
}

// ListSince retrieves logs created after the given time
func (a *CoverageLogAdapter) ListSince(ctx context.Context, since time.Time, limit int) ([]entities.CoverageLog, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := a.db.Select(
		"id", "latitude", "longitude", "providers_attempted", "providers_failed",
		"overall_coverage", "fallback_reason", "duration_ms", "created_at",
	).From("coverage_logs").
		Where(goqu.C("created_at").Gt(since)).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list coverage logs", err)
	}
	defer rows.Close()

	logs := []entities.CoverageLog{}
	for rows.Next() {
		log := entities.CoverageLog{}
		err := rows.Scan(
			&log.ID,
			&log.Latitude,
			&log.Longitude,
			pq.Array(&log.ProvidersAttempted),
			pq.Array(&log.ProvidersFailed),
			&log.OverallCoverage,
			&log.FallbackReason,
			&log.DurationMs,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan coverage log", err)
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}
