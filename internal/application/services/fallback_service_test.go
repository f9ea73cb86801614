package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/providers"
)

func newFallback(primary *stubProvider, secondaries ...*stubProvider) *FallbackService {
	all := []providers.CoverageProvider{primary}
	secs := make([]providers.CoverageProvider, 0, len(secondaries))
	for _, s := range secondaries {
		all = append(all, s)
		secs = append(secs, s)
	}
	aggregator := NewCoverageAggregationService(all, []string{"mtn", "tarana", "supersonic"}, nil, time.Minute, nil)
	return NewFallbackService(aggregator, primary, secs, 3, time.Millisecond, time.Second)
}

func TestCheckWithFallback_PrimarySuccess(t *testing.T) {
	primary := answersWith("mtn", available("mtn", covered(entities.ServiceFibre, entities.SignalExcellent)))
	secondary := answersWith("tarana", available("tarana", covered(entities.ServiceUncappedWireless, entities.SignalGood)))

	svc := newFallback(primary, secondary)

	result, err := svc.CheckWithFallback(context.Background(), pretoria, nil)
	require.NoError(t, err)

	assert.Equal(t, entities.FallbackPrimarySuccess, result.Metadata.FallbackReason)
	assert.True(t, result.OverallCoverage)
	// Secondaries are never consulted when the primary has coverage.
	assert.Equal(t, 0, secondary.callCount())
}

func TestCheckWithFallback_SecondarySuccess(t *testing.T) {
	primary := failsWith("mtn", providers.NewProviderError("mtn", "wms rejected request", nil))
	secondary := answersWith("tarana", available("tarana", covered(entities.ServiceUncappedWireless, entities.SignalGood)))

	svc := newFallback(primary, secondary)

	result, err := svc.CheckWithFallback(context.Background(), pretoria, nil)
	require.NoError(t, err)

	assert.Equal(t, entities.FallbackSecondarySuccess, result.Metadata.FallbackReason)
	assert.True(t, result.ServiceAvailable(entities.ServiceUncappedWireless))
	assert.Contains(t, result.Metadata.ProvidersFailed, "mtn")
}

func TestCheckWithFallback_PrimaryNoCoverage(t *testing.T) {
	primary := answersWith("mtn", available("mtn"))
	secondary := answersWith("tarana", available("tarana"))

	svc := newFallback(primary, secondary)

	result, err := svc.CheckWithFallback(context.Background(), pretoria, nil)
	require.NoError(t, err)

	assert.Equal(t, entities.FallbackPrimaryNoCoverage, result.Metadata.FallbackReason)
	assert.False(t, result.OverallCoverage)
	assert.Equal(t, 1, secondary.callCount())
}

func TestCheckWithFallback_PrimaryTimeout(t *testing.T) {
	primary := failsWith("mtn", providers.NewProviderError("mtn", "request failed", nil))
	secondary := answersWith("tarana", available("tarana"))

	svc := newFallback(primary, secondary)

	result, err := svc.CheckWithFallback(context.Background(), pretoria, nil)
	require.NoError(t, err)

	// A secondary answered without coverage, so the chain reports the
	// primary failure rather than all_failed.
	assert.Equal(t, entities.FallbackPrimaryTimeout, result.Metadata.FallbackReason)
	assert.False(t, result.OverallCoverage)
}

func TestCheckWithFallback_AllFailedIsDegradedSuccess(t *testing.T) {
	primary := failsWith("mtn", providers.NewProviderError("mtn", "request failed", nil))
	secondaryA := failsWith("tarana", providers.NewProviderError("tarana", "db down", nil))
	secondaryB := failsWith("supersonic", providers.NewProviderError("supersonic", "api down", nil))

	svc := newFallback(primary, secondaryA, secondaryB)

	result, err := svc.CheckWithFallback(context.Background(), pretoria, nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, entities.FallbackAllFailed, result.Metadata.FallbackReason)
	assert.False(t, result.OverallCoverage)
	assert.Empty(t, result.BestServices)
	assert.ElementsMatch(t, []string{"mtn", "tarana", "supersonic"}, result.Metadata.ProvidersFailed)
}

func TestCheckWithFallback_RetriesTransientFailures(t *testing.T) {
	ok := available("mtn", covered(entities.ServiceFibre, entities.SignalGood))
	primary := &stubProvider{id: "mtn", script: []stubCall{
		{err: providers.NewTransientProviderError("mtn", "502 from upstream", nil)},
		{err: providers.NewTransientProviderError("mtn", "502 from upstream", nil)},
		{result: ok},
	}}

	svc := newFallback(primary)

	result, err := svc.CheckWithFallback(context.Background(), pretoria, nil)
	require.NoError(t, err)

	assert.Equal(t, entities.FallbackPrimarySuccess, result.Metadata.FallbackReason)
	assert.Equal(t, 3, primary.callCount())
}

func TestCheckWithFallback_DoesNotRetryPermanentFailures(t *testing.T) {
	primary := failsWith("mtn", providers.NewProviderError("mtn", "malformed response", nil))
	secondary := answersWith("tarana", available("tarana", covered(entities.ServiceUncappedWireless, entities.SignalFair)))

	svc := newFallback(primary, secondary)

	_, err := svc.CheckWithFallback(context.Background(), pretoria, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, primary.callCount())
}
