package repositories

import (
	"context"

	"github.com/circletel/coverage-engine/internal/domain/entities"
)

// DealRepository defines the interface for promotional deal access
type DealRepository interface {
	// GetByID retrieves a deal by its identifier
	GetByID(ctx context.Context, id string) (*entities.Deal, error)

	// ListActive retrieves all currently active deals
	ListActive(ctx context.Context) ([]entities.Deal, error)

	// ListActiveByProvider retrieves active deals for one provider
	ListActiveByProvider(ctx context.Context, provider string) ([]entities.Deal, error)

	// Upsert inserts or updates a deal
	Upsert(ctx context.Context, deal *entities.Deal) error
}
