package eventv1

import "context"

// Publisher delivers committed order events to downstream consumers.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=eventv1_mock
type Publisher interface {
	Publish(ctx context.Context, event *OrderEvent) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, *OrderEvent) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }
