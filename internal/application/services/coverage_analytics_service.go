package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/providers"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

// CoverageAnalyticsService records completed coverage checks for later
// analysis and publishes them on the event bus. Recording is best effort:
// an analytics failure never fails the coverage request it describes.
type CoverageAnalyticsService struct {
	logs     repositories.CoverageLogRepository
	eventBus providers.EventBus
}

// NewCoverageAnalyticsService creates a new coverage analytics service
func NewCoverageAnalyticsService(logs repositories.CoverageLogRepository, eventBus providers.EventBus) *CoverageAnalyticsService {
	return &CoverageAnalyticsService{
		logs:     logs,
		eventBus: eventBus,
	}
}

// Record persists the check outcome and publishes a coverage.checked event
func (s *CoverageAnalyticsService) Record(ctx context.Context, result *entities.CoverageResult) {
	logger := observability.LoggerFromContext(ctx)

	if s.logs != nil {
		log := &entities.CoverageLog{
			ID:                 uuid.NewString(),
			Latitude:           result.Coordinates.Lat,
			Longitude:          result.Coordinates.Lng,
			ProvidersAttempted: result.Metadata.ProvidersAttempted,
			ProvidersFailed:    result.Metadata.ProvidersFailed,
			OverallCoverage:    result.OverallCoverage,
			FallbackReason:     result.Metadata.FallbackReason,
			DurationMs:         result.Metadata.DurationMs,
			CreatedAt:          time.Now(),
		}
		if err := s.logs.Insert(ctx, log); err != nil {
			logger.Warn().Err(err).Str("check_id", result.CheckID).Msg("failed to persist coverage log")
		}
	}

	if s.eventBus != nil {
		event := entities.CoverageCheckedEvent{
			CheckID:         result.CheckID,
			Coordinates:     result.Coordinates,
			OverallCoverage: result.OverallCoverage,
			FallbackReason:  result.Metadata.FallbackReason,
			Timestamp:       time.Now(),
		}
		if err := s.eventBus.Publish(ctx, providers.ChannelCoverageChecked, event); err != nil {
			logger.Warn().Err(err).Str("check_id", result.CheckID).Msg("failed to publish coverage event")
		}
	}
}

// RecentChecks returns the coverage logs recorded since the given time
func (s *CoverageAnalyticsService) RecentChecks(ctx context.Context, since time.Time, limit int) ([]entities.CoverageLog, error) {
	return s.logs.ListSince(ctx, since, limit)
}
