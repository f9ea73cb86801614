package services

import (
	"context"
	"time"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/providers"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
	"github.com/circletel/coverage-engine/pkg/retry"
)

// FallbackService walks the provider fallback chain: the primary provider
// first, the secondaries only when the primary errors or reports no
// coverage. Transient provider failures are retried a bounded number of
// times; permanent failures move the chain forward immediately. When every
// provider fails the service still returns a degraded result rather than
// an error, so callers can answer with partial information.
type FallbackService struct {
	aggregator  *CoverageAggregationService
	primary     providers.CoverageProvider
	secondaries []providers.CoverageProvider
	retryConfig retry.Config
	timeout     time.Duration
}

// NewFallbackService creates a new fallback service. retryAttempts and
// retryDelay bound the transient retries per provider attempt; timeout caps
// each individual provider call.
func NewFallbackService(
	aggregator *CoverageAggregationService,
	primary providers.CoverageProvider,
	secondaries []providers.CoverageProvider,
	retryAttempts int,
	retryDelay time.Duration,
	timeout time.Duration,
) *FallbackService {
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &FallbackService{
		aggregator:  aggregator,
		primary:     primary,
		secondaries: secondaries,
		retryConfig: retry.Config{
			MaxAttempts:   retryAttempts,
			InitialDelay:  retryDelay,
			MaxDelay:      retryDelay * 4,
			BackoffFactor: 2.0,
		},
		timeout: timeout,
	}
}

// CheckWithFallback resolves coverage for a point through the fallback
// chain and stamps the taken path into the result metadata.
func (s *FallbackService) CheckWithFallback(ctx context.Context, coords entities.Coordinates, serviceTypes []entities.ServiceType) (*entities.CoverageResult, error) {
	ctx, span := observability.StartSpan(ctx, "FallbackService.CheckWithFallback")
	defer span.End()

	logger := observability.LoggerFromContext(ctx)
	start := time.Now()

	results := make(map[string]*entities.ProviderCoverageResult)
	failures := make(map[string]error)

	primaryResult, primaryErr := s.attempt(ctx, s.primary, coords, serviceTypes)
	if primaryErr == nil {
		results[s.primary.ID()] = primaryResult
		if primaryResult.Available {
			result := s.aggregator.Compose(coords, results, failures, start)
			result.Metadata.FallbackReason = entities.FallbackPrimarySuccess
			return result, nil
		}
		logger.Info().Str("provider", s.primary.ID()).Msg("primary provider reports no coverage, trying secondaries")
	} else {
		failures[s.primary.ID()] = primaryErr
		logger.Warn().Err(primaryErr).Str("provider", s.primary.ID()).Msg("primary provider failed, trying secondaries")
	}

	// Secondary stage: parallel over the secondaries, transient retries
	// per provider.
	type outcome struct {
		id     string
		result *entities.ProviderCoverageResult
		err    error
	}
	outcomes := make(chan outcome, len(s.secondaries))
	for _, provider := range s.secondaries {
		go func(provider providers.CoverageProvider) {
			result, err := s.attempt(ctx, provider, coords, serviceTypes)
			outcomes <- outcome{id: provider.ID(), result: result, err: err}
		}(provider)
	}
	for range s.secondaries {
		o := <-outcomes
		if o.err != nil {
			failures[o.id] = o.err
			logger.Warn().Err(o.err).Str("provider", o.id).Msg("secondary provider failed")
			continue
		}
		results[o.id] = o.result
	}

	result := s.aggregator.Compose(coords, results, failures, start)
	result.Metadata.FallbackReason = s.finalReason(result, primaryErr, len(results) > 0)

	if result.Metadata.FallbackReason == entities.FallbackAllFailed {
		logger.Error().
			Strs("providers_failed", result.Metadata.ProvidersFailed).
			Msg("all coverage providers failed, returning degraded result")
	}

	return result, nil
}

// attempt calls one provider with the per-call timeout and bounded
// transient retries.
func (s *FallbackService) attempt(ctx context.Context, provider providers.CoverageProvider, coords entities.Coordinates, serviceTypes []entities.ServiceType) (*entities.ProviderCoverageResult, error) {
	var result *entities.ProviderCoverageResult
	err := retry.DoIf(ctx, s.retryConfig, providers.IsTransient, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var callErr error
		result, callErr = provider.CheckCoverage(attemptCtx, coords, serviceTypes)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// finalReason derives the chain outcome. secondary_success needs actual
// coverage from a secondary; a chain where providers answered but nobody
// covers the point keeps the primary-stage reason.
func (s *FallbackService) finalReason(result *entities.CoverageResult, primaryErr error, anyAnswered bool) entities.FallbackReason {
	if !anyAnswered {
		return entities.FallbackAllFailed
	}
	if result.OverallCoverage {
		return entities.FallbackSecondarySuccess
	}
	if primaryErr != nil {
		return entities.FallbackPrimaryTimeout
	}
	return entities.FallbackPrimaryNoCoverage
}
