package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/circletel/coverage-engine/internal/domain/entities"
)

// CoverageProvider is the shared interface every coverage source implements.
// Each adapter owns its own transport and maps its provider's proprietary
// response into the normalized ProviderCoverageResult. An adapter must never
// catch and hide a peer provider's failures; it owns only its own call.
type CoverageProvider interface {
	// ID returns the stable provider identifier used in priority lists,
	// merge metadata and logs.
	ID() string

	// CheckCoverage returns the provider's verdict for the point and the
	// requested service types. An empty serviceTypes slice means "all
	// service types this provider knows about". Failures are reported as
	// *ProviderError.
	CheckCoverage(ctx context.Context, coords entities.Coordinates, serviceTypes []entities.ServiceType) (*entities.ProviderCoverageResult, error)
}

// ProviderError is a typed failure from one coverage provider. Transient
// failures (timeouts, 5xx) are retryable; permanent failures (4xx, auth)
// are not.
type ProviderError struct {
	Provider   string
	StatusCode int
	Reason     string
	Transient  bool
	Err        error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s: %s (status %d)", e.Provider, e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Reason)
}

// Unwrap implements the unwrap interface
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a permanent provider error
func NewProviderError(provider, reason string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Reason: reason, Err: err}
}

// NewTransientProviderError creates a retryable provider error
func NewTransientProviderError(provider, reason string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Reason: reason, Transient: true, Err: err}
}

// IsTransient reports whether the error chain contains a transient
// provider failure.
func IsTransient(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Transient
	}
	return false
}
