package providers

import (
	"context"
)

// Event channels
const (
	ChannelCoverageChecked = "coverage:checked"
	ChannelStationsSynced  = "coverage:stations_synced"
)

// EventHandler processes a raw event payload from a channel
type EventHandler func(ctx context.Context, payload []byte) error

// EventBus defines the interface for publishing and subscribing to
// domain events
type EventBus interface {
	// Publish sends an event payload to a channel
	Publish(ctx context.Context, channel string, payload interface{}) error

	// Subscribe registers a handler for a channel
	Subscribe(ctx context.Context, channel string, handler EventHandler) error

	// Unsubscribe removes all handlers for a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close shuts down the event bus
	Close() error
}
