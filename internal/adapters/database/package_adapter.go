package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
	"github.com/circletel/coverage-engine/internal/infrastructure/clients/postgres"
	apperrors "github.com/circletel/coverage-engine/pkg/errors"
)

// PackageAdapter implements PackageRepository
type PackageAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPackageAdapter creates a new package adapter
func NewPackageAdapter(client *postgres.Client) repositories.PackageRepository {
	return &PackageAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var packageColumns = []interface{}{
	"id", "name", "customer_type", "service_type", "provider",
	"monthly_price", "setup_fee", "currency",
	"download_mbps", "upload_mbps", "data_amount", "data_unit",
	"description", "features", "is_active", "created_at", "updated_at",
}

// GetByID retrieves a package by ID
func (a *PackageAdapter) GetByID(ctx context.Context, id string) (*entities.Package, error) {
	query, args, err := a.db.Select(packageColumns...).
		From("packages").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	pkg, err := a.scanPackage(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("package with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get package", err)
	}

	return pkg, nil
}

// List retrieves packages matching the filter
func (a *PackageAdapter) List(ctx context.Context, filter repositories.PackageFilter) ([]entities.Package, error) {
	ds := a.db.Select(packageColumns...).From("packages")

	if filter.ActiveOnly {
		ds = ds.Where(goqu.Ex{"is_active": true})
	}
	if filter.Provider != "" {
		ds = ds.Where(goqu.Ex{"provider": filter.Provider})
	}
	if filter.ServiceType != nil {
		ds = ds.Where(goqu.Ex{"service_type": string(*filter.ServiceType)})
	}
	if filter.CustomerType != nil {
		ds = ds.Where(goqu.Ex{"customer_type": string(*filter.CustomerType)})
	}
	if filter.MaxPrice != nil {
		ds = ds.Where(goqu.C("monthly_price").Lte(*filter.MaxPrice))
	}
	if filter.MinSpeedMbps != nil {
		ds = ds.Where(goqu.C("download_mbps").Gte(*filter.MinSpeedMbps))
	}

	query, args, err := ds.Order(goqu.C("monthly_price").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryPackages(ctx, query, args)
}

// ListByServiceTypes retrieves active packages for any of the given service types
func (a *PackageAdapter) ListByServiceTypes(ctx context.Context, serviceTypes []entities.ServiceType) ([]entities.Package, error) {
	if len(serviceTypes) == 0 {
		return []entities.Package{}, nil
	}

	types := make([]string, len(serviceTypes))
	for i, t := range serviceTypes {
		types[i] = string(t)
	}

	query, args, err := a.db.Select(packageColumns...).
		From("packages").
		Where(goqu.Ex{"service_type": types, "is_active": true}).
		Order(goqu.C("monthly_price").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryPackages(ctx, query, args)
}

// Upsert inserts or updates a package
func (a *PackageAdapter) Upsert(ctx context.Context, pkg *entities.Package) error {
	now := time.Now()
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = now
	}
	pkg.UpdatedAt = now

	record := goqu.Record{
		"id":            pkg.ID,
		"name":          pkg.Name,
		"customer_type": string(pkg.CustomerType),
		"service_type":  string(pkg.ServiceType),
		"provider":      pkg.Provider,
		"monthly_price": pkg.MonthlyPrice,
		"setup_fee":     pkg.SetupFee,
		"currency":      pkg.Currency,
		"download_mbps": pkg.Speed.DownloadMbps,
		"upload_mbps":   pkg.Speed.UploadMbps,
		"data_amount":   pkg.Data.Amount,
		"data_unit":     pkg.Data.Unit,
		"description":   sql.NullString{String: pkg.Description, Valid: pkg.Description != ""},
		"features":      pq.Array(pkg.Features),
		"is_active":     pkg.IsActive,
		"created_at":    pkg.CreatedAt,
		"updated_at":    pkg.UpdatedAt,
	}

	query, args, err := a.db.Insert("packages").
		Rows(record).
		OnConflict(goqu.DoUpdate("id", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to upsert package", err)
	}

	return nil
}

func (a *PackageAdapter) queryPackages(ctx context.Context, query string, args []interface{}) ([]entities.Package, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list packages", err)
	}
	defer rows.Close()

	packages := []entities.Package{}
	for rows.Next() {
		pkg, err := a.scanPackage(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan package", err)
		}
		packages = append(packages, *pkg)
	}

	return packages, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *PackageAdapter) scanPackage(row rowScanner) (*entities.Package, error) {
	pkg := &entities.Package{}
	var description sql.NullString

	err := row.Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.CustomerType,
		&pkg.ServiceType,
		&pkg.Provider,
		&pkg.MonthlyPrice,
		&pkg.SetupFee,
		&pkg.Currency,
		&pkg.Speed.DownloadMbps,
		&pkg.Speed.UploadMbps,
		&pkg.Data.Amount,
		&pkg.Data.Unit,
		&description,
		pq.Array(&pkg.Features),
		&pkg.IsActive,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	pkg.Description = description.String
	return pkg, nil
}
