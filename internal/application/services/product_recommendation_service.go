package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/repositories"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

// RecommendationOptions narrows and weights the package ranking
type RecommendationOptions struct {
	CustomerType    entities.CustomerType
	BudgetMin       *float64
	BudgetMax       *float64
	MinSpeedMbps    int
	PreferUnlimited bool
}

// DefaultRecommendationOptions returns the options used when the caller
// specifies nothing.
func DefaultRecommendationOptions() RecommendationOptions {
	return RecommendationOptions{PreferUnlimited: true}
}

// ProductRecommendationService turns a merged coverage verdict into ranked
// catalogue packages. Packages for unavailable service types are excluded;
// budget and speed act as hard filters, everything else only moves the
// score.
type ProductRecommendationService struct {
	packages repositories.PackageRepository
}

// NewProductRecommendationService creates a new product recommendation service
func NewProductRecommendationService(packages repositories.PackageRepository) *ProductRecommendationService {
	return &ProductRecommendationService{packages: packages}
}

// Recommend ranks the eligible catalogue packages against the coverage at
// the point. The result order is deterministic: score descending, then
// price ascending, then id.
func (s *ProductRecommendationService) Recommend(ctx context.Context, coverage *entities.CoverageResult, opts RecommendationOptions) ([]entities.RankedPackage, error) {
	ctx, span := observability.StartSpan(ctx, "ProductRecommendationService.Recommend")
	defer span.End()

	availableTypes := coverage.AvailableServiceTypes()
	span.SetAttributes(attribute.Int("coverage.available_service_types", len(availableTypes)))
	if len(availableTypes) == 0 {
		return []entities.RankedPackage{}, nil
	}

	candidates, err := s.packages.ListByServiceTypes(ctx, availableTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate packages: %w", err)
	}

	ranked := []entities.RankedPackage{}
	for _, pkg := range candidates {
		rec := s.rank(pkg, coverage, opts)
		if rec == nil {
			continue
		}
		ranked = append(ranked, *rec)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].MonthlyPrice != ranked[j].MonthlyPrice {
			return ranked[i].MonthlyPrice < ranked[j].MonthlyPrice
		}
		return ranked[i].ID < ranked[j].ID
	})

	return ranked, nil
}

// IsSkyFibreAvailable reports whether the SkyFibre service (uncapped
// wireless) is available in the merged coverage.
func (s *ProductRecommendationService) IsSkyFibreAvailable(coverage *entities.CoverageResult) bool {
	return coverage.ServiceAvailable(entities.ServiceUncappedWireless)
}

// rank applies hard filters and scores one package. A nil return means the
// package is filtered out entirely.
func (s *ProductRecommendationService) rank(pkg entities.Package, coverage *entities.CoverageResult, opts RecommendationOptions) *entities.RankedPackage {
	service := findService(coverage, pkg.ServiceType)
	if service == nil || !service.Available {
		return nil
	}

	// Hard filters
	if opts.CustomerType != "" && !customerTypeMatches(pkg.CustomerType, opts.CustomerType) {
		return nil
	}
	if opts.BudgetMin != nil && pkg.MonthlyPrice < *opts.BudgetMin {
		return nil
	}
	if opts.BudgetMax != nil && pkg.MonthlyPrice > *opts.BudgetMax {
		return nil
	}
	if pkg.Speed.DownloadMbps < opts.MinSpeedMbps {
		return nil
	}

	signal := entities.SignalGood
	confidence := entities.ConfidenceMedium
	if len(service.Providers) > 0 {
		signal = service.Providers[0].Signal
		confidence = service.Providers[0].Confidence
	}

	score := s.score(pkg, signal, confidence, opts)

	return &entities.RankedPackage{
		Package:      pkg,
		Available:    true,
		Signal:       signal,
		Confidence:   confidence,
		Score:        score,
		MatchReasons: s.matchReasons(pkg, service, signal, opts),
		Pros:         s.pros(pkg, signal),
		Cons:         s.cons(pkg, signal, confidence),
	}
}

// score computes the 0-100 recommendation score
func (s *ProductRecommendationService) score(pkg entities.Package, signal entities.SignalStrength, confidence entities.Confidence, opts RecommendationOptions) int {
	score := 50

	switch signal {
	case entities.SignalExcellent:
		score += 25
	case entities.SignalGood:
		score += 20
	case entities.SignalFair:
		score += 15
	case entities.SignalPoor:
		score += 10
	}

	switch confidence {
	case entities.ConfidenceHigh:
		score += 15
	case entities.ConfidenceMedium:
		score += 10
	case entities.ConfidenceLow:
		score += 5
	}

	if opts.PreferUnlimited && pkg.Data.Unlimited() {
		score += 10
	}

	if opts.MinSpeedMbps > 0 {
		switch {
		case float64(pkg.Speed.DownloadMbps) >= float64(opts.MinSpeedMbps)*1.5:
			score += 10
		case pkg.Speed.DownloadMbps >= opts.MinSpeedMbps:
			score += 5
		}
	}

	if pkg.CustomerType == entities.CustomerSME || pkg.CustomerType == entities.CustomerEnterprise {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func (s *ProductRecommendationService) matchReasons(pkg entities.Package, service *entities.ServiceRecommendation, signal entities.SignalStrength, opts RecommendationOptions) []string {
	reasons := []string{
		fmt.Sprintf("Available via %s with %s signal", service.RecommendedProvider, signal),
	}

	if pkg.Data.Unlimited() {
		reasons = append(reasons, "Unlimited data - no cap, no throttling")
	}
	if opts.MinSpeedMbps > 0 && pkg.Speed.DownloadMbps >= opts.MinSpeedMbps {
		reasons = append(reasons, fmt.Sprintf("Meets your %d Mbps speed requirement", opts.MinSpeedMbps))
	}
	if pkg.CustomerType == entities.CustomerSME || pkg.CustomerType == entities.CustomerEnterprise {
		reasons = append(reasons, "Business-grade service with SLA")
	}
	if pkg.SetupFee == 0 {
		reasons = append(reasons, "No setup fees")
	}

	return reasons
}

func (s *ProductRecommendationService) pros(pkg entities.Package, signal entities.SignalStrength) []string {
	pros := []string{}

	if signal == entities.SignalExcellent || signal == entities.SignalGood {
		pros = append(pros, fmt.Sprintf("%s signal strength", titleCase(string(signal))))
	}
	if pkg.Data.Unlimited() {
		pros = append(pros, "Truly unlimited data")
	}
	if pkg.SetupFee == 0 {
		pros = append(pros, "No installation fees")
	}
	if pkg.Speed.DownloadMbps >= 50 {
		pros = append(pros, "High-speed connectivity")
	}
	if pkg.CustomerType == entities.CustomerSME || pkg.CustomerType == entities.CustomerEnterprise {
		pros = append(pros, "Business SLA included", "Priority support")
	}

	if len(pros) == 0 {
		pros = append(pros, "Wireless internet alternative to fixed line")
	}
	return pros
}

func (s *ProductRecommendationService) cons(pkg entities.Package, signal entities.SignalStrength, confidence entities.Confidence) []string {
	cons := []string{}

	if signal == entities.SignalFair || signal == entities.SignalPoor {
		cons = append(cons, fmt.Sprintf("%s signal strength may affect performance", titleCase(string(signal))))
	}
	if confidence == entities.ConfidenceLow {
		cons = append(cons, "Coverage confidence is lower - recommend site survey")
	}
	if pkg.CustomerType == entities.CustomerConsumer && pkg.Speed.DownloadMbps < 40 {
		cons = append(cons, "May be limiting for multiple heavy users")
	}
	if pkg.ServiceType == entities.ServiceUncappedWireless || pkg.ServiceType == entities.ServiceLicensedWireless {
		cons = append(cons, "Fixed wireless - line of sight to tower preferred")
	}

	return cons
}

// customerTypeMatches treats enterprise requests as eligible for SME
// packages; the catalogue has no dedicated enterprise tier.
func customerTypeMatches(pkgType, want entities.CustomerType) bool {
	if pkgType == want {
		return true
	}
	return want == entities.CustomerEnterprise && pkgType == entities.CustomerSME
}

func findService(coverage *entities.CoverageResult, t entities.ServiceType) *entities.ServiceRecommendation {
	for i := range coverage.BestServices {
		if coverage.BestServices[i].ServiceType == t {
			return &coverage.BestServices[i]
		}
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
