package repositories

import (
	"context"
	"time"

	"github.com/circletel/coverage-engine/internal/domain/entities"
)

// CoverageLogRepository defines the interface for coverage check audit logs
type CoverageLogRepository interface {
	// Insert records a completed coverage check
	Insert(ctx context.Context, log *entities.CoverageLog) error

	// ListSince retrieves logs created after the given time
	ListSince(ctx context.Context, since time.Time, limit int) ([]entities.CoverageLog, error)
}
