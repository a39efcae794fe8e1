package eventbus

import (
	"context"

	"github.com/monegment/monegment/pkg/domain/events"
)

// HandlerFunc reacts to one published event.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus defines the contract for publishing and subscribing to domain events.
type Bus interface {
	Register(eventType events.EventType, handler HandlerFunc)
	Emit(ctx context.Context, event events.Event) error
}
