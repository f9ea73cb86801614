package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
	"github.com/circletel/coverage-engine/internal/infrastructure/clients/postgres"
	apperrors "github.com/circletel/coverage-engine/pkg/errors"
)

// BaseStationAdapter implements BaseStationRepository
type BaseStationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBaseStationAdapter creates a new base station adapter
func NewBaseStationAdapter(client *postgres.Client) repositories.BaseStationRepository {
	return &BaseStationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var baseStationColumns = []interface{}{
	"id", "name", "latitude", "longitude", "range_meters", "is_active", "last_synced_at",
}

// GetByID retrieves a base station by ID
func (a *BaseStationAdapter) GetByID(ctx context.Context, id string) (*entities.BaseStation, error) {
	query, args, err := a.db.Select(baseStationColumns...).
		From("base_stations").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	station := &entities.BaseStation{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&station.ID,
		&station.Name,
		&station.Latitude,
		&station.Longitude,
		&station.RangeMeters,
		&station.IsActive,
		&station.LastSyncedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("base station with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get base station", err)
	}

	return station, nil
}

// ListActive retrieves all active base stations
func (a *BaseStationAdapter) ListActive(ctx context.Context) ([]entities.BaseStation, error) {
	query, args, err := a.db.Select(baseStationColumns...).
		From("base_stations").
		Where(goqu.Ex{"is_active": true}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryStations(ctx, query, args)
}

// ListNear retrieves active stations within radiusMeters of the point.
// The bounding box filter runs in SQL; the exact great circle distance
// check happens in Go after the candidate rows come back.
func (a *BaseStationAdapter) ListNear(ctx context.Context, coords entities.Coordinates, radiusMeters float64) ([]entities.BaseStation, error) {
	// 1 degree of latitude is roughly 111km
	degrees := radiusMeters / 111000.0

	query, args, err := a.db.Select(baseStationColumns...).
		From("base_stations").
		Where(
			goqu.Ex{"is_active": true},
			goqu.C("latitude").Between(goqu.Range(coords.Lat-degrees, coords.Lat+degrees)),
			goqu.C("longitude").Between(goqu.Range(coords.Lng-degrees, coords.Lng+degrees)),
		).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	candidates, err := a.queryStations(ctx, query, args)
	if err != nil {
		return nil, err
	}

	stations := []entities.BaseStation{}
	for _, s := range candidates {
		if coords.DistanceKm(s.Location())*1000 <= radiusMeters {
			stations = append(stations, s)
		}
	}

	return stations, nil
}

// Upsert inserts or updates a base station
func (a *BaseStationAdapter) Upsert(ctx context.Context, station *entities.BaseStation) error {
	station.LastSyncedAt = time.Now()

	record := goqu.Record{
		"id":             station.ID,
		"name":           station.Name,
		"latitude":       station.Latitude,
		"longitude":      station.Longitude,
		"range_meters":   station.RangeMeters,
		"is_active":      station.IsActive,
		"last_synced_at": station.LastSyncedAt,
	}

	query, args, err := a.db.Insert("base_stations").
		Rows(record).
		OnConflict(goqu.DoUpdate("id", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to upsert base station", err)
	}

	return nil
}

func (a *BaseStationAdapter) queryStations(ctx context.Context, query string, args []interface{}) ([]entities.BaseStation, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list base stations", err)
	}
	defer rows.Close()

	stations := []entities.BaseStation{}
	for rows.Next() {
		station := entities.BaseStation{}
		err := rows.Scan(
			&station.ID,
			&station.Name,
			&station.Latitude,
			&station.Longitude,
			&station.RangeMeters,
			&station.IsActive,
			&station.LastSyncedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan base station", err)
		}
		stations = append(stations, station)
	}

	return stations, rows.Err()
}
