// Package eventbus provides event-driven communication infrastructure for
// the workflow automation engine.
package eventbus

import (
	"context"

	"github.com/fieldline/fieldline/pkg/events"
)

// Event is implemented by everything the bus carries.
type Event interface {
	GetType() events.EventType
}

// EventPublisher publishes events under a partition key. Events for one work
// order share a key so consumers see its transitions in order.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber registers handlers per event type; Subscribe starts
// consuming and delivers each decoded event to its handler.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler processes one decoded event. A returned error nacks the
// message for redelivery.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
