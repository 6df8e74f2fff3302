// Package eventbus provides the publish/subscribe abstraction for workflow
// definition lifecycle events.
package eventbus

import (
	"context"

	"github.com/hdts/flowkit/pkg/events"
)

// Event is anything that can be published on the bus.
type Event interface {
	GetType() events.EventType
}

// EventPublisher publishes events keyed by workflow ID.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber registers handlers and starts consumption.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler processes one decoded event.
type EventHandler func(ctx context.Context, event any) error

// EventBus combines both sides plus lifecycle management.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
