package entities

import "time"

// ServiceType is the network service tag shared by the coverage aggregator
// and the recommendation services.
type ServiceType string

const (
	ServiceUncappedWireless ServiceType = "uncapped_wireless"
	ServiceFibre            ServiceType = "fibre"
	ServiceFixedLTE         ServiceType = "fixed_lte"
	ServiceLicensedWireless ServiceType = "licensed_wireless"
	Service5G               ServiceType = "5g"
	ServiceLTE              ServiceType = "lte"
)

// servicePriority orders service types for presentation, best technology
// first. Unknown types sort last.
var servicePriority = map[ServiceType]int{
	ServiceFibre:            1,
	Service5G:               2,
	ServiceFixedLTE:         3,
	ServiceUncappedWireless: 4,
	ServiceLicensedWireless: 5,
	ServiceLTE:              6,
}

// AllServiceTypes returns the recognized service types in priority order.
func AllServiceTypes() []ServiceType {
	return []ServiceType{
		ServiceFibre,
		Service5G,
		ServiceFixedLTE,
		ServiceUncappedWireless,
		ServiceLicensedWireless,
		ServiceLTE,
	}
}

// ParseServiceType maps a raw tag to a recognized ServiceType. Unrecognized
// tags report ok=false and must be treated as "no match" by callers.
func ParseServiceType(raw string) (ServiceType, bool) {
	st := ServiceType(raw)
	_, ok := servicePriority[st]
	return st, ok
}

// Priority returns the presentation rank of the service type; lower is
// better. Unrecognized types rank after all known ones.
func (s ServiceType) Priority() int {
	if p, ok := servicePriority[s]; ok {
		return p
	}
	return len(servicePriority) + 1
}

// SignalStrength is a provider's qualitative signal verdict at a point
type SignalStrength string

const (
	SignalExcellent SignalStrength = "excellent"
	SignalGood      SignalStrength = "good"
	SignalFair      SignalStrength = "fair"
	SignalPoor      SignalStrength = "poor"
	SignalNone      SignalStrength = "none"
)

// Confidence expresses how much a data source is trusted for a point
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ServiceCoverage is one provider's verdict for one service type
type ServiceCoverage struct {
	Type       ServiceType    `json:"type"`
	Available  bool           `json:"available"`
	Signal     SignalStrength `json:"signal"`
	Technology string         `json:"technology,omitempty"`
}

// ProviderCoverageResult is the normalized answer of a single coverage
// provider for a point. Each provider adapter maps its proprietary response
// into this shape.
type ProviderCoverageResult struct {
	Provider   string            `json:"provider"`
	Available  bool              `json:"available"`
	Confidence Confidence        `json:"confidence"`
	Services   []ServiceCoverage `json:"services"`
	CheckedAt  time.Time         `json:"checked_at"`
}

// ProviderOutcome records how a provider fared inside one aggregation,
// including providers that were attempted but failed.
type ProviderOutcome struct {
	Available  bool              `json:"available"`
	Confidence Confidence        `json:"confidence"`
	Services   []ServiceCoverage `json:"services"`
	Error      string            `json:"error,omitempty"`
}

// ProviderSignal is a provider's contribution to one service recommendation
type ProviderSignal struct {
	Provider   string         `json:"provider"`
	Signal     SignalStrength `json:"signal"`
	Confidence Confidence     `json:"confidence"`
}

// ServiceRecommendation is the merged, per-service-type availability with
// the tie-broken recommended provider.
type ServiceRecommendation struct {
	ServiceType          ServiceType      `json:"service_type"`
	Available            bool             `json:"available"`
	Providers            []ProviderSignal `json:"providers"`
	RecommendedProvider  string           `json:"recommended_provider,omitempty"`
	AlternativeProviders []string         `json:"alternative_providers,omitempty"`
}

// FallbackReason declares which path the fallback chain took
type FallbackReason string

const (
	FallbackPrimarySuccess    FallbackReason = "primary_success"
	FallbackPrimaryTimeout    FallbackReason = "primary_timeout"
	FallbackPrimaryNoCoverage FallbackReason = "primary_no_coverage"
	FallbackSecondarySuccess  FallbackReason = "secondary_success"
	FallbackAllFailed         FallbackReason = "all_failed"
)

// AggregationMetadata carries diagnostic information about one aggregation
type AggregationMetadata struct {
	ProvidersAttempted []string       `json:"providers_attempted"`
	ProvidersFailed    []string       `json:"providers_failed,omitempty"`
	FallbackReason     FallbackReason `json:"fallback_reason,omitempty"`
	DurationMs         int64          `json:"duration_ms"`
}

// CoverageResult is the merged coverage verdict for a point. It is built
// fresh per request and never persisted.
type CoverageResult struct {
	CheckID         string                     `json:"check_id"`
	Coordinates     Coordinates                `json:"coordinates"`
	Providers       map[string]ProviderOutcome `json:"providers"`
	BestServices    []ServiceRecommendation    `json:"best_services"`
	OverallCoverage bool                       `json:"overall_coverage"`
	Metadata        AggregationMetadata        `json:"metadata"`
	LastUpdated     time.Time                  `json:"last_updated"`
}

// ServiceAvailable reports whether the merged result marks the given
// service type as available.
func (r *CoverageResult) ServiceAvailable(t ServiceType) bool {
	for _, svc := range r.BestServices {
		if svc.ServiceType == t && svc.Available {
			return true
		}
	}
	return false
}

// AvailableServiceTypes returns every service type the merged result marks
// available, in recommendation order.
func (r *CoverageResult) AvailableServiceTypes() []ServiceType {
	var out []ServiceType
	for _, svc := range r.BestServices {
		if svc.Available {
			out = append(out, svc.ServiceType)
		}
	}
	return out
}
