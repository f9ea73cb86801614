package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
)

// stubPackageRepo serves a fixed catalogue
type stubPackageRepo struct {
	packages []entities.Package
}

func (r *stubPackageRepo) GetByID(ctx context.Context, id string) (*entities.Package, error) {
	for i := range r.packages {
		if r.packages[i].ID == id {
			return &r.packages[i], nil
		}
	}
	return nil, assert.AnError
}

func (r *stubPackageRepo) List(ctx context.Context, filter repositories.PackageFilter) ([]entities.Package, error) {
	return r.packages, nil
}

func (r *stubPackageRepo) ListByServiceTypes(ctx context.Context, types []entities.ServiceType) ([]entities.Package, error) {
	var out []entities.Package
	for _, pkg := range r.packages {
		for _, t := range types {
			if pkg.ServiceType == t {
				out = append(out, pkg)
				break
			}
		}
	}
	return out, nil
}

func (r *stubPackageRepo) Upsert(ctx context.Context, pkg *entities.Package) error { return nil }

func skyFibreCatalogue() []entities.Package {
	mk := func(id, name string, ct entities.CustomerType, price float64, down int) entities.Package {
		return entities.Package{
			ID:           id,
			Name:         name,
			CustomerType: ct,
			ServiceType:  entities.ServiceUncappedWireless,
			Provider:     "CircleTel (MTN Network)",
			MonthlyPrice: price,
			Currency:     "ZAR",
			Speed:        entities.Speed{DownloadMbps: down, UploadMbps: down / 2},
			Data:         entities.DataAllowance{Unit: "unlimited"},
			IsActive:     true,
		}
	}
	return []entities.Package{
		mk("home-20", "SkyFibre Home 20", entities.CustomerConsumer, 599, 20),
		mk("home-40", "SkyFibre Home 40", entities.CustomerConsumer, 899, 40),
		mk("home-60", "SkyFibre Home 60", entities.CustomerConsumer, 1199, 60),
		mk("biz-100", "SkyFibre Business 100", entities.CustomerSME, 2499, 100),
	}
}

func uncappedWirelessCoverage(signal entities.SignalStrength, confidence entities.Confidence) *entities.CoverageResult {
	return &entities.CoverageResult{
		CheckID:     "test-check",
		Coordinates: pretoria,
		BestServices: []entities.ServiceRecommendation{
			{
				ServiceType:         entities.ServiceUncappedWireless,
				Available:           true,
				RecommendedProvider: "mtn",
				Providers: []entities.ProviderSignal{
					{Provider: "mtn", Signal: signal, Confidence: confidence},
				},
			},
		},
		OverallCoverage: true,
		LastUpdated:     time.Now(),
	}
}

func TestRecommend_SkyFibreScenario(t *testing.T) {
	repo := &stubPackageRepo{packages: skyFibreCatalogue()}
	svc := NewProductRecommendationService(repo)
	coverage := uncappedWirelessCoverage(entities.SignalExcellent, entities.ConfidenceHigh)

	assert.True(t, svc.IsSkyFibreAvailable(coverage))

	ranked, err := svc.Recommend(context.Background(), coverage, DefaultRecommendationOptions())
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	for _, rec := range ranked {
		assert.True(t, rec.Available)
		assert.Equal(t, entities.SignalExcellent, rec.Signal)
		assert.NotEmpty(t, rec.MatchReasons)
		assert.GreaterOrEqual(t, rec.Score, 0)
		assert.LessOrEqual(t, rec.Score, 100)
	}

	// Excellent signal and high confidence push every package to the cap,
	// so the tie resolves by price ascending.
	assert.Equal(t, 100, ranked[0].Score)
	assert.Equal(t, "home-20", ranked[0].ID)
}

func TestRecommend_NoCoverageMeansNoRecommendations(t *testing.T) {
	repo := &stubPackageRepo{packages: skyFibreCatalogue()}
	svc := NewProductRecommendationService(repo)

	coverage := &entities.CoverageResult{OverallCoverage: false}

	ranked, err := svc.Recommend(context.Background(), coverage, DefaultRecommendationOptions())
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.False(t, svc.IsSkyFibreAvailable(coverage))
}

func TestRecommend_HardFiltersDropPackages(t *testing.T) {
	repo := &stubPackageRepo{packages: skyFibreCatalogue()}
	svc := NewProductRecommendationService(repo)
	coverage := uncappedWirelessCoverage(entities.SignalGood, entities.ConfidenceHigh)

	maxBudget := 1000.0
	opts := DefaultRecommendationOptions()
	opts.BudgetMax = &maxBudget
	opts.MinSpeedMbps = 30

	ranked, err := svc.Recommend(context.Background(), coverage, opts)
	require.NoError(t, err)

	// Only Home 40 passes both the budget ceiling and the speed floor; the
	// rest are dropped, not down-ranked.
	require.Len(t, ranked, 1)
	assert.Equal(t, "home-40", ranked[0].ID)
}

func TestRecommend_CustomerTypeFilter(t *testing.T) {
	repo := &stubPackageRepo{packages: skyFibreCatalogue()}
	svc := NewProductRecommendationService(repo)
	coverage := uncappedWirelessCoverage(entities.SignalGood, entities.ConfidenceHigh)

	opts := DefaultRecommendationOptions()
	opts.CustomerType = entities.CustomerSME
	ranked, err := svc.Recommend(context.Background(), coverage, opts)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "biz-100", ranked[0].ID)

	// Enterprise customers are served from the SME tier.
	opts.CustomerType = entities.CustomerEnterprise
	ranked, err = svc.Recommend(context.Background(), coverage, opts)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "biz-100", ranked[0].ID)
}

func TestRecommend_DeterministicOrder(t *testing.T) {
	repo := &stubPackageRepo{packages: skyFibreCatalogue()}
	svc := NewProductRecommendationService(repo)
	coverage := uncappedWirelessCoverage(entities.SignalGood, entities.ConfidenceMedium)

	first, err := svc.Recommend(context.Background(), coverage, DefaultRecommendationOptions())
	require.NoError(t, err)
	second, err := svc.Recommend(context.Background(), coverage, DefaultRecommendationOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
