package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/providers"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

// CoverageAggregationService fans a coverage check out to every registered
// provider in parallel and merges the partial results into one verdict.
// A provider failure never fails the aggregation as long as at least one
// provider answers.
type CoverageAggregationService struct {
	coverageProviders []providers.CoverageProvider
	priority          []string
	cache             providers.CacheProvider
	cacheTTL          time.Duration
	metrics           *observability.Metrics
}

// NewCoverageAggregationService creates a new aggregation service. priority
// is the configured provider order used to pick the recommended provider
// when several cover the same service type.
func NewCoverageAggregationService(
	coverageProviders []providers.CoverageProvider,
	priority []string,
	cache providers.CacheProvider,
	cacheTTL time.Duration,
	metrics *observability.Metrics,
) *CoverageAggregationService {
	return &CoverageAggregationService{
		coverageProviders: coverageProviders,
		priority:          priority,
		cache:             cache,
		cacheTTL:          cacheTTL,
		metrics:           metrics,
	}
}

// Providers returns the registered coverage providers
func (s *CoverageAggregationService) Providers() []providers.CoverageProvider {
	return s.coverageProviders
}

// CheckCoverage aggregates coverage across all registered providers with a
// Redis cache-aside.
func (s *CoverageAggregationService) CheckCoverage(ctx context.Context, coords entities.Coordinates, serviceTypes []entities.ServiceType) (*entities.CoverageResult, error) {
	ctx, span := observability.StartSpan(ctx, "CoverageAggregationService.CheckCoverage")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("coverage.lat", coords.Lat),
		attribute.Float64("coverage.lng", coords.Lng),
	)

	logger := observability.LoggerFromContext(ctx)

	cacheKey := s.cacheKey(coords, serviceTypes)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var result entities.CoverageResult
			if err := json.Unmarshal(cached, &result); err == nil {
				if s.metrics != nil {
					observability.RecordCacheHit(ctx, s.metrics, "coverage")
				}
				logger.Debug().Str("cache_key", cacheKey).Msg("coverage cache hit")
				return &result, nil
			}
		}
		if s.metrics != nil {
			observability.RecordCacheMiss(ctx, s.metrics, "coverage")
		}
	}

	result, err := s.Aggregate(ctx, coords, serviceTypes, s.coverageProviders)
	if err != nil {
		return nil, err
	}

	// Degraded verdicts are not cached, so recovered providers answer again
	// on the next check.
	if s.cache != nil && result.Metadata.FallbackReason != entities.FallbackAllFailed {
		if payload, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, cacheKey, payload, s.cacheTTL)
		}
	}

	return result, nil
}

// Aggregate runs the fan-out over an explicit provider subset. Provider
// failures never fail the aggregation: when every provider errors the
// merged result is degraded (every provider in ProvidersFailed, no
// coverage) rather than an error. Only an empty subset is an error, since
// that is a wiring mistake, not an upstream outage.
func (s *CoverageAggregationService) Aggregate(ctx context.Context, coords entities.Coordinates, serviceTypes []entities.ServiceType, subset []providers.CoverageProvider) (*entities.CoverageResult, error) {
	if len(subset) == 0 {
		return nil, fmt.Errorf("no coverage providers configured")
	}

	logger := observability.LoggerFromContext(ctx)
	start := time.Now()

	type outcome struct {
		id     string
		result *entities.ProviderCoverageResult
		err    error
	}

	// Parallel fan-out. Each provider failure is captured per slot so a
	// slow or broken provider never hides its peers' answers.
	outcomes := make([]outcome, len(subset))
	var wg sync.WaitGroup
	for i, provider := range subset {
		wg.Add(1)
		go func(i int, provider providers.CoverageProvider) {
			defer wg.Done()
			result, err := provider.CheckCoverage(ctx, coords, serviceTypes)
			outcomes[i] = outcome{id: provider.ID(), result: result, err: err}
		}(i, provider)
	}
	wg.Wait()

	results := make(map[string]*entities.ProviderCoverageResult, len(subset))
	failures := make(map[string]error)
	for _, o := range outcomes {
		if o.err != nil {
			failures[o.id] = o.err
			logger.Warn().Err(o.err).Str("provider", o.id).Msg("coverage provider failed")
			continue
		}
		results[o.id] = o.result
	}

	result := s.Compose(coords, results, failures, start)
	if len(results) == 0 {
		result.Metadata.FallbackReason = entities.FallbackAllFailed
		logger.Error().
			Strs("providers_failed", result.Metadata.ProvidersFailed).
			Msg("all coverage providers failed, returning degraded result")
	}
	return result, nil
}

// Compose builds the merged CoverageResult from already collected provider
// results and failures. The fallback chain uses it to stitch the primary
// and secondary stages together.
func (s *CoverageAggregationService) Compose(coords entities.Coordinates, results map[string]*entities.ProviderCoverageResult, failures map[string]error, start time.Time) *entities.CoverageResult {
	providerOutcomes := make(map[string]entities.ProviderOutcome, len(results)+len(failures))
	attempted := make([]string, 0, len(results)+len(failures))

	for id, result := range results {
		attempted = append(attempted, id)
		providerOutcomes[id] = entities.ProviderOutcome{
			Available:  result.Available,
			Confidence: result.Confidence,
			Services:   result.Services,
		}
	}

	failed := failureIDs(failures)
	for _, id := range failed {
		attempted = append(attempted, id)
		providerOutcomes[id] = entities.ProviderOutcome{
			Confidence: entities.ConfidenceLow,
			Error:      failures[id].Error(),
		}
	}
	sort.Strings(attempted)

	bestServices := s.mergeServices(results)
	overall := false
	for _, svc := range bestServices {
		if svc.Available {
			overall = true
			break
		}
	}

	return &entities.CoverageResult{
		CheckID:         uuid.NewString(),
		Coordinates:     coords,
		Providers:       providerOutcomes,
		BestServices:    bestServices,
		OverallCoverage: overall,
		Metadata: entities.AggregationMetadata{
			ProvidersAttempted: attempted,
			ProvidersFailed:    failed,
			DurationMs:         time.Since(start).Milliseconds(),
		},
		LastUpdated: time.Now(),
	}
}

func failureIDs(failures map[string]error) []string {
	ids := make([]string, 0, len(failures))
	for id := range failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// mergeServices computes the per-service-type OR merge and picks the
// recommended provider from the configured priority order. The merge reads
// from a map keyed by provider id, so the outcome does not depend on which
// provider answered first.
func (s *CoverageAggregationService) mergeServices(results map[string]*entities.ProviderCoverageResult) []entities.ServiceRecommendation {
	recommendations := []entities.ServiceRecommendation{}

	for _, serviceType := range entities.AllServiceTypes() {
		rec := entities.ServiceRecommendation{
			ServiceType: serviceType,
			Providers:   []entities.ProviderSignal{},
		}

		availableProviders := []string{}
		for id, result := range results {
			for _, svc := range result.Services {
				if svc.Type != serviceType || !svc.Available {
					continue
				}
				rec.Available = true
				rec.Providers = append(rec.Providers, entities.ProviderSignal{
					Provider:   id,
					Signal:     svc.Signal,
					Confidence: result.Confidence,
				})
				availableProviders = append(availableProviders, id)
			}
		}

		if !rec.Available {
			continue
		}

		ordered := s.orderByPriority(availableProviders)
		sort.Slice(rec.Providers, func(i, j int) bool {
			ri, rj := s.priorityRank(rec.Providers[i].Provider), s.priorityRank(rec.Providers[j].Provider)
			if ri != rj {
				return ri < rj
			}
			return rec.Providers[i].Provider < rec.Providers[j].Provider
		})
		rec.RecommendedProvider = ordered[0]
		rec.AlternativeProviders = ordered[1:]

		recommendations = append(recommendations, rec)
	}

	return recommendations
}

// orderByPriority sorts provider ids by the configured priority list.
// Providers absent from the list sort after configured ones, by name, so
// ties stay deterministic.
func (s *CoverageAggregationService) orderByPriority(ids []string) []string {
	ordered := append([]string(nil), ids...)
	sort.Slice(ordered, func(i, j int) bool {
		ri, rj := s.priorityRank(ordered[i]), s.priorityRank(ordered[j])
		if ri != rj {
			return ri < rj
		}
		return ordered[i] < ordered[j]
	})
	return ordered
}

func (s *CoverageAggregationService) priorityRank(id string) int {
	for i, p := range s.priority {
		if p == id {
			return i
		}
	}
	return len(s.priority)
}

func (s *CoverageAggregationService) cacheKey(coords entities.Coordinates, serviceTypes []entities.ServiceType) string {
	tags := make([]string, len(serviceTypes))
	for i, t := range serviceTypes {
		tags[i] = string(t)
	}
	sort.Strings(tags)

	raw := fmt.Sprintf("%.6f,%.6f|%s", coords.Lat, coords.Lng, strings.Join(tags, ","))
	sum := sha256.Sum256([]byte(raw))
	return "coverage:check:" + hex.EncodeToString(sum[:])
}
