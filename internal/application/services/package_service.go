package services

import (
	"context"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

// PackageService exposes the read side of the package catalogue
type PackageService struct {
	packages repositories.PackageRepository
	search   repositories.PackageSearchRepository
}

// NewPackageService creates a new package service
func NewPackageService(packages repositories.PackageRepository, search repositories.PackageSearchRepository) *PackageService {
	return &PackageService{
		packages: packages,
		search:   search,
	}
}

// GetByID retrieves one package
func (s *PackageService) GetByID(ctx context.Context, id string) (*entities.Package, error) {
	return s.packages.GetByID(ctx, id)
}

// List retrieves packages matching the filter from the catalogue
func (s *PackageService) List(ctx context.Context, filter repositories.PackageFilter) ([]entities.Package, error) {
	return s.packages.List(ctx, filter)
}

// Search runs a free text search over the catalogue. When the search index
// is unreachable it falls back to a plain catalogue listing so the endpoint
// degrades instead of failing.
func (s *PackageService) Search(ctx context.Context, query string, filter repositories.PackageFilter, limit int) ([]entities.Package, error) {
	if s.search != nil {
		results, err := s.search.Search(ctx, query, filter, limit)
		if err == nil {
			return results, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("package search index unavailable, falling back to catalogue listing")
	}

	filter.ActiveOnly = true
	results, err := s.packages.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Reindex pushes every active catalogue package into the search index
func (s *PackageService) Reindex(ctx context.Context) error {
	if s.search == nil {
		return nil
	}
	if err := s.search.EnsureCollection(ctx); err != nil {
		return err
	}

	packages, err := s.packages.List(ctx, repositories.PackageFilter{ActiveOnly: true})
	if err != nil {
		return err
	}
	for i := range packages {
		if err := s.search.Index(ctx, &packages[i]); err != nil {
			return err
		}
	}
	return nil
}
