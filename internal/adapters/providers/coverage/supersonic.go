package coverage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/providers"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

const (
	supersonicProviderID     = "supersonic"
	defaultSupersonicBaseURL = "https://supersonic.co.za/api"
	defaultSupersonicTimeout = 10 * time.Second
)

// supersonicTechnologies maps the Supersonic package type tags to service
// types. Unknown tags are skipped, never errors.
var supersonicTechnologies = map[string]entities.ServiceType{
	"airfibre": entities.ServiceUncappedWireless,
	"5g":       entities.Service5G,
	"fibre":    entities.ServiceFibre,
	"lte":      entities.ServiceLTE,
}

// SupersonicProvider checks coverage through the Supersonic availability
// API, which answers with the package technologies sellable at the point.
type SupersonicProvider struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
}

// NewSupersonicProvider creates a new Supersonic coverage provider
func NewSupersonicProvider(baseURL string, metrics *observability.Metrics) *SupersonicProvider {
	return NewSupersonicProviderWithOptions(baseURL, nil, metrics)
}

// NewSupersonicProviderWithOptions allows overriding the HTTP client (used for tests)
func NewSupersonicProviderWithOptions(baseURL string, httpClient *http.Client, metrics *observability.Metrics) *SupersonicProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultSupersonicBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultSupersonicTimeout}
	}
	return &SupersonicProvider{
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    metrics,
	}
}

// ID returns the provider identifier
func (p *SupersonicProvider) ID() string {
	return supersonicProviderID
}

// supersonicResponse is the availability answer from the Supersonic API
type supersonicResponse struct {
	Available bool `json:"available"`
	Packages  []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"packages"`
}

// CheckCoverage queries the Supersonic availability endpoint and maps the
// returned package technologies to service types.
func (p *SupersonicProvider) CheckCoverage(ctx context.Context, coords entities.Coordinates, serviceTypes []entities.ServiceType) (*entities.ProviderCoverageResult, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", coords.Lat))
	params.Set("lng", fmt.Sprintf("%f", coords.Lng))
	reqURL := p.baseURL + "/coverage?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, providers.NewProviderError(supersonicProviderID, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if p.metrics != nil {
		observability.RecordProviderMetric(ctx, p.metrics, supersonicProviderID, time.Since(start), err != nil)
	}
	if err != nil {
		return nil, providers.NewTransientProviderError(supersonicProviderID, "coverage request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &providers.ProviderError{
			Provider:   supersonicProviderID,
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("coverage endpoint returned %d", resp.StatusCode),
			Transient:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.NewTransientProviderError(supersonicProviderID, "failed to read response", err)
	}

	var parsed supersonicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, providers.NewProviderError(supersonicProviderID, "malformed coverage response", err)
	}

	// One entry per distinct technology seen in the sellable packages
	seen := map[entities.ServiceType]bool{}
	services := []entities.ServiceCoverage{}
	for _, pkg := range parsed.Packages {
		serviceType, ok := supersonicTechnologies[strings.ToLower(pkg.Type)]
		if !ok || seen[serviceType] {
			continue
		}
		if !wantsService(serviceTypes, serviceType) {
			continue
		}
		seen[serviceType] = true
		services = append(services, entities.ServiceCoverage{
			Type:       serviceType,
			Available:  true,
			Signal:     entities.SignalGood,
			Technology: pkg.Type,
		})
	}

	return &entities.ProviderCoverageResult{
		Provider:   supersonicProviderID,
		Available:  parsed.Available && len(services) > 0,
		Confidence: entities.ConfidenceMedium,
		Services:   services,
		CheckedAt:  time.Now(),
	}, nil
}
