package repositories

import (
	"context"

	"github.com/circletel/coverage-engine/internal/domain/entities"
)

// BaseStationRepository defines the interface for base station access
type BaseStationRepository interface {
	// GetByID retrieves a base station by its identifier
	GetByID(ctx context.Context, id string) (*entities.BaseStation, error)

	// ListActive retrieves all active base stations
	ListActive(ctx context.Context) ([]entities.BaseStation, error)

	// ListNear retrieves active stations within radiusMeters of the point
	ListNear(ctx context.Context, coords entities.Coordinates, radiusMeters float64) ([]entities.BaseStation, error)

	// Upsert inserts or updates a base station
	Upsert(ctx context.Context, station *entities.BaseStation) error
}
