package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
	tsclient "github.com/circletel/coverage-engine/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements package search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements PackageSearchRepository
var _ repositories.PackageSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// EnsureCollection creates the packages collection if it does not exist
func (a *TypesenseAdapter) EnsureCollection(ctx context.Context) error {
	_, err := a.client.Client().Collection(tsclient.PackagesCollection).Retrieve(ctx)
	if err == nil {
		return nil
	}
	return a.client.InitSchema(ctx)
}

// Index adds or updates a package document in the search index
func (a *TypesenseAdapter) Index(ctx context.Context, pkg *entities.Package) error {
	document := map[string]interface{}{
		"id":            pkg.ID,
		"name":          pkg.Name,
		"provider":      pkg.Provider,
		"service_type":  string(pkg.ServiceType),
		"customer_type": string(pkg.CustomerType),
		"price":         pkg.MonthlyPrice,
		"download_mbps": pkg.Speed.DownloadMbps,
		"upload_mbps":   pkg.Speed.UploadMbps,
		"is_unlimited":  pkg.Data.Unlimited(),
		"features":      pkg.Features,
		"created_at":    pkg.CreatedAt.Unix(),
		"is_active":     pkg.IsActive,
	}

	_, err := a.client.Client().Collection(tsclient.PackagesCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index package: %w", err)
	}

	return nil
}

// Search performs a free text search over the package catalogue
func (a *TypesenseAdapter) Search(ctx context.Context, query string, filter repositories.PackageFilter, limit int) ([]entities.Package, error) {
	if query == "" {
		query = "*"
	}
	if limit <= 0 {
		limit = 20
	}

	filters := []string{"is_active:=true"}
	if filter.Provider != "" {
		filters = append(filters, fmt.Sprintf("provider:=%s", filter.Provider))
	}
	if filter.ServiceType != nil {
		filters = append(filters, fmt.Sprintf("service_type:=%s", string(*filter.ServiceType)))
	}
	if filter.CustomerType != nil {
		filters = append(filters, fmt.Sprintf("customer_type:=%s", string(*filter.CustomerType)))
	}
	if filter.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price:<=%f", *filter.MaxPrice))
	}
	if filter.MinSpeedMbps != nil {
		filters = append(filters, fmt.Sprintf("download_mbps:>=%d", *filter.MinSpeedMbps))
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("name,provider,features"),
		FilterBy: pointer.String(strings.Join(filters, " && ")),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.PackagesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search packages: %w", err)
	}

	packages := []entities.Package{}
	if result.Hits == nil {
		return packages, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document

		// Typesense returns map[string]interface{}, cast each field safely
		pkg := entities.Package{}
		if val, ok := doc["id"].(string); ok {
			pkg.ID = val
		}
		if val, ok := doc["name"].(string); ok {
			pkg.Name = val
		}
		if val, ok := doc["provider"].(string); ok {
			pkg.Provider = val
		}
		if val, ok := doc["service_type"].(string); ok {
			pkg.ServiceType = entities.ServiceType(val)
		}
		if val, ok := doc["customer_type"].(string); ok {
			pkg.CustomerType = entities.CustomerType(val)
		}
		if val, ok := doc["price"].(float64); ok {
			pkg.MonthlyPrice = val
		}
		if val, ok := doc["download_mbps"].(float64); ok {
			pkg.Speed.DownloadMbps = int(val)
		}
		if val, ok := doc["upload_mbps"].(float64); ok {
			pkg.Speed.UploadMbps = int(val)
		}
		if val, ok := doc["is_unlimited"].(bool); ok && val {
			pkg.Data = entities.DataAllowance{Unit: "unlimited"}
		}
		if val, ok := doc["is_active"].(bool); ok {
			pkg.IsActive = val
		}
		if vals, ok := doc["features"].([]interface{}); ok {
			for _, v := range vals {
				if s, ok := v.(string); ok {
					pkg.Features = append(pkg.Features, s)
				}
			}
		}

		packages = append(packages, pkg)
	}

	return packages, nil
}
