package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/circletel/coverage-engine/internal/domain/entities"
)

// DealRecommenderService scores commercial deals against a customer
// profile. Scoring is a pure function: identical deals and profile always
// produce identical scores and ordering.
type DealRecommenderService struct {
	now func() time.Time
}

// NewDealRecommenderService creates a new deal recommender
func NewDealRecommenderService() *DealRecommenderService {
	return &DealRecommenderService{now: time.Now}
}

// NewDealRecommenderServiceWithClock allows a fixed clock (used for tests)
func NewDealRecommenderServiceWithClock(now func() time.Time) *DealRecommenderService {
	return &DealRecommenderService{now: now}
}

// dataAmountPattern matches textual allowances like "50GB", "1.5 TB", "500MB"
var dataAmountPattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*(GB|TB|MB)\s*$`)

// ParseDataAmountGB normalizes a textual data allowance to gigabytes.
// Unparseable strings yield 0 so that one malformed catalogue entry
// degrades its own score instead of crashing the ranking pass. "Uncapped"
// and "unlimited" also yield 0; unlimited deals are matched through the
// usage tier instead.
func ParseDataAmountGB(raw string) float64 {
	m := dataAmountPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2]) {
	case "TB":
		return amount * 1000
	case "MB":
		return amount / 1000
	default:
		return amount
	}
}

// RecommendDeals scores the deals against the profile and returns them in
// descending score order. Ties keep the input order. limit <= 0 means no
// limit.
func (s *DealRecommenderService) RecommendDeals(deals []entities.Deal, profile entities.CustomerProfile, limit int) []entities.DealScore {
	scored := make([]entities.DealScore, 0, len(deals))
	for _, deal := range deals {
		score, reasons := s.score(deal, profile)
		scored = append(scored, entities.DealScore{
			Deal:    deal,
			Score:   score,
			Reasons: reasons,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// score computes the 0-100 score and the reasons behind it
func (s *DealRecommenderService) score(deal entities.Deal, profile entities.CustomerProfile) (int, []string) {
	score := 50.0
	reasons := []string{}

	// Budget proximity, relative bands so the weighting holds across
	// price ranges.
	if profile.Budget != nil && *profile.Budget > 0 {
		diff := math.Abs(deal.TotalMonthly-*profile.Budget) / *profile.Budget
		switch {
		case diff < 0.10:
			score += 25
			reasons = append(reasons, "Excellent budget match")
		case diff < 0.20:
			score += 18
			reasons = append(reasons, "Close to your budget")
		case diff < 0.50:
			score += 8
		default:
			score -= 25
			reasons = append(reasons, "Well outside your budget")
		}
	}

	// Contract term match
	if profile.PreferredMonths != nil {
		termDiff := deal.ContractMonths - *profile.PreferredMonths
		if termDiff < 0 {
			termDiff = -termDiff
		}
		switch {
		case termDiff == 0:
			score += 20
			reasons = append(reasons, fmt.Sprintf("Matches your preferred %d month term", *profile.PreferredMonths))
		case termDiff <= 6:
			score += 10
		case termDiff > 12:
			score -= 20
			reasons = append(reasons, "Contract term far from your preference")
		}
	}

	// Data usage tier match
	dataGB := ParseDataAmountGB(deal.DataAllowance)
	unlimited := isUnlimitedAllowance(deal.DataAllowance)
	if profile.DataUsage != "" {
		if tierMatches(profile.DataUsage, dataGB, unlimited) {
			score += 20
			reasons = append(reasons, fmt.Sprintf("Data allowance suits %s usage", profile.DataUsage))
		} else {
			score -= 20
			reasons = append(reasons, "Data allowance does not match your usage")
		}
	}

	// Device preference substring match
	if profile.DevicePreference != "" && deal.DeviceName != "" {
		if strings.Contains(strings.ToLower(deal.DeviceName), strings.ToLower(profile.DevicePreference)) {
			score += 15
			reasons = append(reasons, fmt.Sprintf("Includes %s", deal.DeviceName))
		}
	}

	// Cost per GB value banding
	if dataGB > 0 {
		costPerGB := deal.TotalMonthly / dataGB
		if costPerGB <= 5 {
			score += 10
			reasons = append(reasons, "Excellent value per GB")
		} else if costPerGB <= 10 {
			score += 5
		}
	} else if unlimited {
		score += 10
		reasons = append(reasons, "Unlimited data")
	}

	// Promo urgency bonus
	if deal.PromoEndDate != nil {
		until := deal.PromoEndDate.Sub(s.now())
		if until > 0 && until <= 14*24*time.Hour {
			score += 10
			reasons = append(reasons, "Promotional price ending soon")
		}
	}

	final := int(math.Round(score))
	if final > 100 {
		final = 100
	}
	if final < 0 {
		final = 0
	}
	return final, reasons
}

func isUnlimitedAllowance(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	return lower == "unlimited" || lower == "uncapped"
}

// tierMatches checks whether the deal's allowance suits the usage tier:
// light up to 20GB, moderate 20-100GB, heavy above 100GB or unlimited.
func tierMatches(tier entities.DataUsageTier, dataGB float64, unlimited bool) bool {
	switch tier {
	case entities.UsageLight:
		return !unlimited && dataGB > 0 && dataGB <= 20
	case entities.UsageModerate:
		return unlimited || (dataGB > 20 && dataGB <= 100)
	case entities.UsageHeavy:
		return unlimited || dataGB > 100
	}
	return false
}
