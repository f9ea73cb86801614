package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circletel/coverage-engine/internal/domain/entities"
)

func TestParseDataAmountGB(t *testing.T) {
	cases := map[string]float64{
		"50GB":      50,
		"50 GB":     50,
		"1TB":       1000,
		"1.5tb":     1500,
		"500MB":     0.5,
		"  20gb  ":  20,
		"unlimited": 0,
		"garbage":   0,
		"":          0,
		"GB50":      0,
	}
	for raw, want := range cases {
		assert.InDelta(t, want, ParseDataAmountGB(raw), 0.0001, "input %q", raw)
	}
}

func TestScore_PerfectBudgetMatch(t *testing.T) {
	svc := NewDealRecommenderService()
	budget := 799.0

	deal := entities.Deal{ID: "d1", Name: "Uncapped Home", TotalMonthly: 799, DataAllowance: "unlimited"}
	scored := svc.RecommendDeals([]entities.Deal{deal}, entities.CustomerProfile{Budget: &budget}, 0)

	require.Len(t, scored, 1)
	// Baseline 50 + full budget bonus 25, plus the unlimited value bonus.
	assert.GreaterOrEqual(t, scored[0].Score, 75)
	assert.Contains(t, scored[0].Reasons, "Excellent budget match")
}

func TestScore_BudgetBandsAreRelative(t *testing.T) {
	svc := NewDealRecommenderService()
	budget := 1000.0
	profile := entities.CustomerProfile{Budget: &budget}

	near := entities.Deal{ID: "near", TotalMonthly: 1050}
	closeBy := entities.Deal{ID: "close", TotalMonthly: 1150}
	mid := entities.Deal{ID: "mid", TotalMonthly: 1400}
	far := entities.Deal{ID: "far", TotalMonthly: 2500}

	scored := svc.RecommendDeals([]entities.Deal{far, mid, closeBy, near}, profile, 0)

	require.Len(t, scored, 4)
	assert.Equal(t, "near", scored[0].Deal.ID)
	assert.Equal(t, "close", scored[1].Deal.ID)
	assert.Equal(t, "mid", scored[2].Deal.ID)
	assert.Equal(t, "far", scored[3].Deal.ID)
	assert.Contains(t, scored[3].Reasons, "Well outside your budget")
}

func TestScore_ContractTermAndDevice(t *testing.T) {
	svc := NewDealRecommenderService()
	months := 24

	match := entities.Deal{ID: "match", ContractMonths: 24, DeviceName: "Samsung Galaxy S24"}
	off := entities.Deal{ID: "off", ContractMonths: 48}

	profile := entities.CustomerProfile{
		PreferredMonths:  &months,
		DevicePreference: "galaxy",
	}
	scored := svc.RecommendDeals([]entities.Deal{off, match}, profile, 0)

	require.Len(t, scored, 2)
	assert.Equal(t, "match", scored[0].Deal.ID)
	// 50 + term 20 + device 15
	assert.Equal(t, 85, scored[0].Score)
	// 50 - term 20
	assert.Equal(t, 30, scored[1].Score)
}

func TestScore_DataUsageTiers(t *testing.T) {
	svc := NewDealRecommenderService()

	light := entities.Deal{ID: "light", DataAllowance: "10GB"}
	heavy := entities.Deal{ID: "heavy", DataAllowance: "200GB"}
	unlimited := entities.Deal{ID: "unlimited", DataAllowance: "uncapped"}

	scored := svc.RecommendDeals(
		[]entities.Deal{light, heavy, unlimited},
		entities.CustomerProfile{DataUsage: entities.UsageHeavy},
		0,
	)

	byID := map[string]entities.DealScore{}
	for _, s := range scored {
		byID[s.Deal.ID] = s
	}

	assert.Greater(t, byID["heavy"].Score, byID["light"].Score)
	assert.Greater(t, byID["unlimited"].Score, byID["light"].Score)
	assert.Contains(t, byID["light"].Reasons, "Data allowance does not match your usage")
}

func TestScore_PromoUrgency(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewDealRecommenderServiceWithClock(func() time.Time { return now })

	soon := now.Add(7 * 24 * time.Hour)
	later := now.Add(60 * 24 * time.Hour)
	ended := now.Add(-24 * time.Hour)

	urgent := entities.Deal{ID: "urgent", PromoEndDate: &soon}
	relaxed := entities.Deal{ID: "relaxed", PromoEndDate: &later}
	expired := entities.Deal{ID: "expired", PromoEndDate: &ended}

	scored := svc.RecommendDeals([]entities.Deal{relaxed, urgent, expired}, entities.CustomerProfile{}, 0)

	require.Len(t, scored, 3)
	assert.Equal(t, "urgent", scored[0].Deal.ID)
	assert.Equal(t, 60, scored[0].Score)
	assert.Equal(t, 50, scored[1].Score)
	assert.Equal(t, 50, scored[2].Score)
}

func TestRecommendDeals_StableOrderAndLimit(t *testing.T) {
	svc := NewDealRecommenderService()

	a := entities.Deal{ID: "a", DataAllowance: "garbage"}
	b := entities.Deal{ID: "b", DataAllowance: "also garbage"}
	c := entities.Deal{ID: "c", DataAllowance: ""}

	scored := svc.RecommendDeals([]entities.Deal{a, b, c}, entities.CustomerProfile{}, 0)

	// Unparseable allowances score the baseline and keep input order.
	require.Len(t, scored, 3)
	assert.Equal(t, "a", scored[0].Deal.ID)
	assert.Equal(t, "b", scored[1].Deal.ID)
	assert.Equal(t, "c", scored[2].Deal.ID)
	for _, s := range scored {
		assert.Equal(t, 50, s.Score)
	}

	limited := svc.RecommendDeals([]entities.Deal{a, b, c}, entities.CustomerProfile{}, 2)
	assert.Len(t, limited, 2)
}
