package entities

import "time"

// CoverageLog is the persisted record of one coverage check, used for
// coverage analytics and provider health reporting.
type CoverageLog struct {
	ID                 string         `json:"id" db:"id"`
	Latitude           float64        `json:"latitude" db:"latitude"`
	Longitude          float64        `json:"longitude" db:"longitude"`
	ProvidersAttempted []string       `json:"providers_attempted" db:"-"`
	ProvidersFailed    []string       `json:"providers_failed" db:"-"`
	OverallCoverage    bool           `json:"overall_coverage" db:"overall_coverage"`
	FallbackReason     FallbackReason `json:"fallback_reason" db:"fallback_reason"`
	DurationMs         int64          `json:"duration_ms" db:"duration_ms"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
}

// CoverageCheckedEvent is the event published after each coverage check
type CoverageCheckedEvent struct {
	CheckID         string         `json:"check_id"`
	Coordinates     Coordinates    `json:"coordinates"`
	OverallCoverage bool           `json:"overall_coverage"`
	FallbackReason  FallbackReason `json:"fallback_reason"`
	Timestamp       time.Time      `json:"timestamp"`
}
