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

// DealAdapter implements DealRepository
type DealAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDealAdapter creates a new deal adapter
func NewDealAdapter(client *postgres.Client) repositories.DealRepository {
	return &DealAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var dealColumns = []interface{}{
	"id", "name", "provider", "total_monthly", "contract_months",
	"data_allowance", "device_name", "promo_end_date", "is_active", "created_at",
}

// GetByID retrieves a deal by ID
func (a *DealAdapter) GetByID(ctx context.Context, id string) (*entities.Deal, error) {
	query, args, err := a.db.Select(dealColumns...).
		From("deals").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	deal, err := a.scanDeal(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("deal with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get deal", err)
	}

	return deal, nil
}

// ListActive retrieves all currently active deals
func (a *DealAdapter) ListActive(ctx context.Context) ([]entities.Deal, error) {
	return a.listActive(ctx, "")
}

// ListActiveByProvider retrieves active deals for one provider
func (a *DealAdapter) ListActiveByProvider(ctx context.Context, provider string) ([]entities.Deal, error) {
	return a.listActive(ctx, provider)
}

func (a *DealAdapter) listActive(ctx context.Context, provider string) ([]entities.Deal, error) {
	ds := a.db.Select(dealColumns...).
		From("deals").
		Where(goqu.Ex{"is_active": true})

	if provider != "" {
		ds = ds.Where(goqu.Ex{"provider": provider})
	}

	query, args, err := ds.Order(goqu.C("total_monthly").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list deals", err)
	}
	defer rows.Close()

	deals := []entities.Deal{}
	for rows.Next() {
		deal, err := a.scanDeal(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan deal", err)
		}
		deals = append(deals, *deal)
	}

	return deals, rows.Err()
}

// Upsert inserts or updates a deal
func (a *DealAdapter) Upsert(ctx context.Context, deal *entities.Deal) error {
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = time.Now()
	}

	var promoEnd sql.NullTime
	if deal.PromoEndDate != nil {
		promoEnd = sql.NullTime{Time: *deal.PromoEndDate, Valid: true}
	}

	record := goqu.Record{
		"id":              deal.ID,
		"name":            deal.Name,
		"provider":        deal.Provider,
		"total_monthly":   deal.TotalMonthly,
		"contract_months": deal.ContractMonths,
		"data_allowance":  deal.DataAllowance,
		"device_name":     sql.NullString{String: deal.DeviceName, Valid: deal.DeviceName != ""},
		"promo_end_date":  promoEnd,
		"is_active":       deal.IsActive,
		"created_at":      deal.CreatedAt,
	}

	query, args, err := a.db.Insert("deals").
		Rows(record).
		OnConflict(goqu.DoUpdate("id", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to upsert deal", err)
	}

	return nil
}

func (a *DealAdapter) scanDeal(row rowScanner) (*entities.Deal, error) {
	deal := &entities.Deal{}
	var deviceName sql.NullString
	var promoEnd sql.NullTime

	err := row.Scan(
		&deal.ID,
		&deal.Name,
		&deal.Provider,
		&deal.TotalMonthly,
		&deal.ContractMonths,
		&deal.DataAllowance,
		&deviceName,
		&promoEnd,
		&deal.IsActive,
		&deal.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	deal.DeviceName = deviceName.String
	if promoEnd.Valid {
		t := promoEnd.Time
		deal.PromoEndDate = &t
	}

	return deal, nil
}
