package repositories

import (
	"context"

	"github.com/circletel/coverage-engine/internal/domain/entities"
)

// PackageFilter narrows catalogue queries
type PackageFilter struct {
	Provider     string
	ServiceType  *entities.ServiceType
	CustomerType *entities.CustomerType
	MaxPrice     *float64
	MinSpeedMbps *int
	ActiveOnly   bool
}

// PackageRepository defines the interface for package catalogue access
type PackageRepository interface {
	// GetByID retrieves a package by its identifier
	GetByID(ctx context.Context, id string) (*entities.Package, error)

	// List retrieves packages matching the filter
	List(ctx context.Context, filter PackageFilter) ([]entities.Package, error)

	// ListByServiceTypes retrieves active packages for any of the given
	// service types
	ListByServiceTypes(ctx context.Context, serviceTypes []entities.ServiceType) ([]entities.Package, error)

	// Upsert inserts or updates a package
	Upsert(ctx context.Context, pkg *entities.Package) error
}

// PackageSearchRepository defines the interface for full text package search
type PackageSearchRepository interface {
	// Search performs a free text search over the package catalogue
	Search(ctx context.Context, query string, filter PackageFilter, limit int) ([]entities.Package, error)

	// Index adds or updates a package document in the search index
	Index(ctx context.Context, pkg *entities.Package) error

	// EnsureCollection creates the search collection if it does not exist
	EnsureCollection(ctx context.Context) error
}
