package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/monegment/monegment/pkg/domain/events"
	"github.com/monegment/monegment/pkg/eventbus"
)

// ErrBusClosed is returned by Emit once the bus has been closed.
var ErrBusClosed = errors.New("event bus closed")

// MemoryEventBus dispatches events synchronously to the registered handlers.
// Handler errors and panics are logged and never reach the publisher.
type MemoryEventBus struct {
	handlers map[events.EventType][]eventbus.HandlerFunc
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryEventBus{
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Register adds a handler for an event type.
func (b *MemoryEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit dispatches the event to all registered handlers for its type.
func (b *MemoryEventBus) Emit(ctx context.Context, event events.Event) error {
	b.mu.RLock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[event.Type()]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		dispatch(ctx, b.logger, handler, event)
	}
	return nil
}

var _ eventbus.Bus = (*MemoryEventBus)(nil)

// MemoryAsyncEventBus queues events and dispatches them on a background goroutine.
type MemoryAsyncEventBus struct {
	handlers map[events.EventType][]eventbus.HandlerFunc
	mu       sync.RWMutex
	queue    chan queued
	logger   *slog.Logger
	wg       sync.WaitGroup

	// closeMu guards closed and the queue send against Close.
	closeMu sync.RWMutex
	closed  bool
}

type queued struct {
	ctx   context.Context
	event events.Event
}

// NewWithMemoryAsync creates an asynchronous in-memory bus with a buffered queue.
func NewWithMemoryAsync(logger *slog.Logger, size int) *MemoryAsyncEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = 100
	}
	b := &MemoryAsyncEventBus{
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
		queue:    make(chan queued, size),
		logger:   logger.With("bus", "memory-async"),
	}
	b.wg.Add(1)
	go b.process()
	return b
}

func (b *MemoryAsyncEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit enqueues the event. Handlers run with a context detached from the caller's
// cancellation.
func (b *MemoryAsyncEventBus) Emit(ctx context.Context, event events.Event) error {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	select {
	case b.queue <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits for the queue to drain. Calling it
// again is a no-op.
func (b *MemoryAsyncEventBus) Close() {
	b.closeMu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.closeMu.Unlock()
	b.wg.Wait()
}

func (b *MemoryAsyncEventBus) process() {
	defer b.wg.Done()
	for q := range b.queue {
		b.mu.RLock()
		handlers := append([]eventbus.HandlerFunc(nil), b.handlers[q.event.Type()]...)
		b.mu.RUnlock()
		for _, handler := range handlers {
			dispatch(q.ctx, b.logger, handler, q.event)
		}
	}
}

var _ eventbus.Bus = (*MemoryAsyncEventBus)(nil)

func dispatch(ctx context.Context, logger *slog.Logger, handler eventbus.HandlerFunc, event events.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered in event handler", "type", event.Type(), "panic", r)
		}
	}()
	if err := handler(ctx, event); err != nil {
		logger.Error("failed to process event", "type", event.Type(), "error", err)
	}
}
