package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/circletel/coverage-engine/internal/adapters/database"
	"github.com/circletel/coverage-engine/internal/adapters/search"
	"github.com/circletel/coverage-engine/internal/application/services"
	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/infrastructure/clients/postgres"
	"github.com/circletel/coverage-engine/internal/infrastructure/clients/typesense"
	"github.com/circletel/coverage-engine/pkg/config"
)

const skyFibreProvider = "CircleTel (MTN Network)"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	var searchRepo *search.TypesenseAdapter
	if err == nil {
		searchRepo = search.NewTypesenseAdapter(tsClient)
	} else {
		log.Printf("Typesense unavailable, skipping search indexing: %v", err)
	}

	packageRepo := database.NewPackageAdapter(pgClient)
	stationRepo := database.NewBaseStationAdapter(pgClient)
	dealRepo := database.NewDealAdapter(pgClient)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				coverage_logs,
				packages,
				base_stations,
				deals
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	now := time.Now()

	// 1. Seed the SkyFibre catalogue
	packages := []entities.Package{
		skyFibrePackage("skyfibre-home-20", "SkyFibre Home 20", entities.CustomerConsumer, 599, 20, 10, now),
		skyFibrePackage("skyfibre-home-40", "SkyFibre Home 40", entities.CustomerConsumer, 899, 40, 20, now),
		skyFibrePackage("skyfibre-home-60", "SkyFibre Home 60", entities.CustomerConsumer, 1199, 60, 30, now),
		skyFibrePackage("skyfibre-business-50", "SkyFibre Business 50", entities.CustomerSME, 1499, 50, 25, now),
		skyFibrePackage("skyfibre-business-100", "SkyFibre Business 100", entities.CustomerSME, 2499, 100, 50, now),
		skyFibrePackage("skyfibre-business-200", "SkyFibre Business 200", entities.CustomerSME, 3999, 200, 100, now),
	}
	for i := range packages {
		if err := packageRepo.Upsert(ctx, &packages[i]); err != nil {
			log.Printf("Failed to seed package %s: %v", packages[i].Name, err)
		}
	}
	log.Printf("Seeded %d packages", len(packages))

	// 2. Seed demo Tarana base stations around the metros
	stations := []entities.BaseStation{
		{ID: "bn-jhb-sandton", Name: "Sandton BN", Latitude: -26.1076, Longitude: 28.0567, RangeMeters: 8000, IsActive: true, LastSyncedAt: now},
		{ID: "bn-jhb-roodepoort", Name: "Roodepoort BN", Latitude: -26.1625, Longitude: 27.8725, RangeMeters: 8000, IsActive: true, LastSyncedAt: now},
		{ID: "bn-pta-centurion", Name: "Centurion BN", Latitude: -25.8603, Longitude: 28.1894, RangeMeters: 8000, IsActive: true, LastSyncedAt: now},
		{ID: "bn-cpt-bellville", Name: "Bellville BN", Latitude: -33.8987, Longitude: 18.6298, RangeMeters: 7000, IsActive: true, LastSyncedAt: now},
		{ID: "bn-dbn-umhlanga", Name: "Umhlanga BN", Latitude: -29.7266, Longitude: 31.0854, RangeMeters: 7000, IsActive: true, LastSyncedAt: now},
	}
	for i := range stations {
		if err := stationRepo.Upsert(ctx, &stations[i]); err != nil {
			log.Printf("Failed to seed station %s: %v", stations[i].Name, err)
		}
	}
	log.Printf("Seeded %d base stations", len(stations))

	// 3. Seed demo deals
	promoEnd := now.Add(10 * 24 * time.Hour)
	deals := []entities.Deal{
		{ID: "deal-mtn-50gb", Name: "MTN 50GB Promo", Provider: "mtn", TotalMonthly: 399, ContractMonths: 12, DataAllowance: "50GB", IsActive: true, CreatedAt: now},
		{ID: "deal-mtn-unlimited", Name: "MTN Uncapped Home", Provider: "mtn", TotalMonthly: 799, ContractMonths: 24, DataAllowance: "unlimited", PromoEndDate: &promoEnd, IsActive: true, CreatedAt: now},
		{ID: "deal-supersonic-10gb", Name: "Supersonic Starter 10GB", Provider: "supersonic", TotalMonthly: 199, ContractMonths: 0, DataAllowance: "10GB", IsActive: true, CreatedAt: now},
		{ID: "deal-mtn-s24", Name: "Galaxy S24 + 25GB", Provider: "mtn", TotalMonthly: 1099, ContractMonths: 36, DataAllowance: "25GB", DeviceName: "Samsung Galaxy S24", IsActive: true, CreatedAt: now},
	}
	for i := range deals {
		if err := dealRepo.Upsert(ctx, &deals[i]); err != nil {
			log.Printf("Failed to seed deal %s: %v", deals[i].Name, err)
		}
	}
	log.Printf("Seeded %d deals", len(deals))

	// 4. Index the catalogue in Typesense
	if searchRepo != nil {
		packageService := services.NewPackageService(packageRepo, searchRepo)
		if err := packageService.Reindex(ctx); err != nil {
			log.Printf("Failed to index packages: %v", err)
		} else {
			log.Println("Packages indexed in Typesense")
		}
	}

	log.Println("Seeding complete")
}

func skyFibrePackage(id, name string, customerType entities.CustomerType, price float64, down, up int, now time.Time) entities.Package {
	return entities.Package{
		ID:           id,
		Name:         name,
		CustomerType: customerType,
		ServiceType:  entities.ServiceUncappedWireless,
		Provider:     skyFibreProvider,
		MonthlyPrice: price,
		SetupFee:     0,
		Currency:     "ZAR",
		Speed:        entities.Speed{DownloadMbps: down, UploadMbps: up},
		Data:         entities.DataAllowance{Unit: "unlimited"},
		Features:     []string{"Uncapped data", "No fair-use throttling", "Month-to-month available"},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
