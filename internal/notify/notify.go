// Package notify publishes task completion events.
package notify

import (
	"context"
)

// Publisher sends one event per call. Implementations must be safe to Close
// more than once.
//
//go:generate mockgen -destination=mocks/mock_publisher.go -package=mocks -source=notify.go Publisher
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

// NopPublisher discards every event. It is used when no brokers are configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
