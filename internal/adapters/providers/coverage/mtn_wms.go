package coverage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/circletel/coverage-engine/internal/domain/entities"
	"github.com/circletel/coverage-engine/internal/domain/providers"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

const (
	mtnProviderID     = "mtn"
	defaultMTNBaseURL = "https://mtnsi.mtn.co.za/cache/geoserver/wms"
	defaultMTNTimeout = 15 * time.Second

	// GetFeatureInfo is issued against a 256x256 tile with the query
	// point at the center pixel.
	wmsTileSize    = 256
	wmsCenterPixel = 128
	wmsBBoxRadiusM = 100.0
)

// mtnLayers maps each WMS layer name to the service type it answers for
var mtnLayers = map[string]entities.ServiceType{
	"FTTBCoverage":               entities.ServiceFibre,
	"UncappedWirelessEBU":        entities.ServiceUncappedWireless,
	"FLTECoverageEBU":            entities.ServiceFixedLTE,
	"PMPCoverage":                entities.ServiceLicensedWireless,
	"mtnsi:MTNSA-Coverage-5G-5G": entities.Service5G,
	"mtnsi:MTNSA-Coverage-LTE":   entities.ServiceLTE,
}

// MTNWMSProvider checks coverage against the MTN GeoServer WMS maps. Each
// service type has its own map layer; the adapter issues one GetFeatureInfo
// query per requested layer and treats returned features as coverage.
type MTNWMSProvider struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
}

// NewMTNWMSProvider creates a new MTN WMS coverage provider
func NewMTNWMSProvider(baseURL string, metrics *observability.Metrics) *MTNWMSProvider {
	return NewMTNWMSProviderWithOptions(baseURL, nil, metrics)
}

// NewMTNWMSProviderWithOptions allows overriding the HTTP client (used for tests)
func NewMTNWMSProviderWithOptions(baseURL string, httpClient *http.Client, metrics *observability.Metrics) *MTNWMSProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultMTNBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultMTNTimeout}
	}
	return &MTNWMSProvider{
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    metrics,
	}
}

// ID returns the provider identifier
func (p *MTNWMSProvider) ID() string {
	return mtnProviderID
}

// CheckCoverage queries every relevant WMS layer in parallel and merges the
// per-layer verdicts into one provider result.
func (p *MTNWMSProvider) CheckCoverage(ctx context.Context, coords entities.Coordinates, serviceTypes []entities.ServiceType) (*entities.ProviderCoverageResult, error) {
	start := time.Now()
	layers := p.layersToQuery(serviceTypes)
	if len(layers) == 0 {
		return &entities.ProviderCoverageResult{
			Provider:   mtnProviderID,
			Available:  false,
			Confidence: entities.ConfidenceHigh,
			Services:   []entities.ServiceCoverage{},
			CheckedAt:  time.Now(),
		}, nil
	}

	type layerResult struct {
		coverage entities.ServiceCoverage
		err      error
	}

	results := make([]layerResult, len(layers))
	var wg sync.WaitGroup
	for i, layer := range layers {
		wg.Add(1)
		go func(i int, layer string) {
			defer wg.Done()
			coverage, err := p.queryLayer(ctx, layer, coords)
			results[i] = layerResult{coverage: coverage, err: err}
		}(i, layer)
	}
	wg.Wait()

	services := make([]entities.ServiceCoverage, 0, len(layers))
	available := false
	var firstErr error
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		services = append(services, r.coverage)
		if r.coverage.Available {
			available = true
		}
	}

	if p.metrics != nil {
		observability.RecordProviderMetric(ctx, p.metrics, mtnProviderID, time.Since(start), failed == len(layers))
	}

	// Only fail the provider when every layer query failed; partial layer
	// failures degrade to the layers that answered.
	if failed == len(layers) {
		return nil, firstErr
	}

	return &entities.ProviderCoverageResult{
		Provider:   mtnProviderID,
		Available:  available,
		Confidence: entities.ConfidenceHigh,
		Services:   services,
		CheckedAt:  time.Now(),
	}, nil
}

func (p *MTNWMSProvider) layersToQuery(serviceTypes []entities.ServiceType) []string {
	if len(serviceTypes) == 0 {
		layers := make([]string, 0, len(mtnLayers))
		for layer := range mtnLayers {
			layers = append(layers, layer)
		}
		return layers
	}

	layers := []string{}
	for layer, st := range mtnLayers {
		for _, want := range serviceTypes {
			if st == want {
				layers = append(layers, layer)
				break
			}
		}
	}
	return layers
}

// wmsFeatureCollection is the GeoJSON shape of a GetFeatureInfo response
type wmsFeatureCollection struct {
	Features []struct {
		Properties map[string]interface{} `json:"properties"`
	} `json:"features"`
}

func (p *MTNWMSProvider) queryLayer(ctx context.Context, layer string, coords entities.Coordinates) (entities.ServiceCoverage, error) {
	serviceType := mtnLayers[layer]

	reqURL := p.buildFeatureInfoURL(layer, coords)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return entities.ServiceCoverage{}, providers.NewProviderError(mtnProviderID, "failed to build WMS request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CircleTel-Coverage-Checker/1.0")
	req.Header.Set("Referer", "https://mtnsi.mtn.co.za/")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return entities.ServiceCoverage{}, providers.NewTransientProviderError(mtnProviderID, "WMS request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		provErr := &providers.ProviderError{
			Provider:   mtnProviderID,
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("WMS layer %s returned %d", layer, resp.StatusCode),
			Transient:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
		return entities.ServiceCoverage{}, provErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return entities.ServiceCoverage{}, providers.NewTransientProviderError(mtnProviderID, "failed to read WMS response", err)
	}

	var collection wmsFeatureCollection
	if err := json.Unmarshal(body, &collection); err != nil {
		return entities.ServiceCoverage{}, providers.NewProviderError(mtnProviderID, "malformed WMS response", err)
	}

	if len(collection.Features) == 0 {
		return entities.ServiceCoverage{
			Type:      serviceType,
			Available: false,
			Signal:    entities.SignalNone,
		}, nil
	}

	properties := collection.Features[0].Properties
	return entities.ServiceCoverage{
		Type:       serviceType,
		Available:  coverageFromProperties(properties),
		Signal:     signalFromProperties(properties),
		Technology: technologyFromProperties(properties),
	}, nil
}

// buildFeatureInfoURL builds a WMS 1.3.0 GetFeatureInfo URL with a CRS:84
// bounding box around the point and the query pixel at the tile center.
func (p *MTNWMSProvider) buildFeatureInfoURL(layer string, coords entities.Coordinates) string {
	// 1 degree of latitude is roughly 111,000 meters
	const metersPerDegree = 111000.0
	deltaLat := wmsBBoxRadiusM / metersPerDegree
	deltaLng := wmsBBoxRadiusM / (metersPerDegree * math.Cos(coords.Lat*math.Pi/180))

	params := url.Values{}
	params.Set("SERVICE", "WMS")
	params.Set("VERSION", "1.3.0")
	params.Set("REQUEST", "GetFeatureInfo")
	params.Set("LAYERS", layer)
	params.Set("QUERY_LAYERS", layer)
	params.Set("INFO_FORMAT", "application/json")
	params.Set("FEATURE_COUNT", "10")
	params.Set("EXCEPTIONS", "application/json")
	// WMS 1.3.0 with CRS:84 keeps longitude,latitude axis order
	params.Set("CRS", "CRS:84")
	params.Set("BBOX", fmt.Sprintf("%f,%f,%f,%f",
		coords.Lng-deltaLng, coords.Lat-deltaLat,
		coords.Lng+deltaLng, coords.Lat+deltaLat,
	))
	params.Set("WIDTH", fmt.Sprintf("%d", wmsTileSize))
	params.Set("HEIGHT", fmt.Sprintf("%d", wmsTileSize))
	params.Set("I", fmt.Sprintf("%d", wmsCenterPixel))
	params.Set("J", fmt.Sprintf("%d", wmsCenterPixel))

	return p.baseURL + "?" + params.Encode()
}

// coverageFromProperties decides availability from whatever coverage
// indicator the layer exposes. Layers are inconsistent about field names.
func coverageFromProperties(properties map[string]interface{}) bool {
	indicators := []string{"coverage", "available", "signal", "strength", "level", "quality"}
	for _, key := range indicators {
		value, ok := properties[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case bool:
			return v
		case float64:
			return v > 0
		case string:
			lower := strings.ToLower(v)
			return lower != "none" && lower != "no" && lower != "false" && lower != "unavailable" && lower != "null"
		}
	}
	// A feature with any properties at the point means the layer polygon
	// covers it.
	return len(properties) > 0
}

func signalFromProperties(properties map[string]interface{}) entities.SignalStrength {
	var raw interface{}
	for _, key := range []string{"signal", "strength", "quality", "level"} {
		if v, ok := properties[key]; ok && v != nil {
			raw = v
			break
		}
	}

	switch v := raw.(type) {
	case float64:
		switch {
		case v >= 90:
			return entities.SignalExcellent
		case v >= 70:
			return entities.SignalGood
		case v >= 50:
			return entities.SignalFair
		case v >= 30:
			return entities.SignalPoor
		default:
			return entities.SignalNone
		}
	case string:
		lower := strings.ToLower(v)
		switch {
		case strings.Contains(lower, "excellent"), strings.Contains(lower, "very strong"):
			return entities.SignalExcellent
		case strings.Contains(lower, "good"), strings.Contains(lower, "strong"):
			return entities.SignalGood
		case strings.Contains(lower, "fair"), strings.Contains(lower, "medium"):
			return entities.SignalFair
		case strings.Contains(lower, "poor"), strings.Contains(lower, "weak"):
			return entities.SignalPoor
		case strings.Contains(lower, "none"), strings.Contains(lower, "no signal"):
			return entities.SignalNone
		}
	}

	if coverageFromProperties(properties) {
		return entities.SignalFair
	}
	return entities.SignalNone
}

func technologyFromProperties(properties map[string]interface{}) string {
	for _, key := range []string{"technology", "type"} {
		if v, ok := properties[key].(string); ok {
			return v
		}
	}
	return ""
}
