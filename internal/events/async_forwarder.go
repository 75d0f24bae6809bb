package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/observability"
)

var (
	// ErrForwardQueueFull is returned when an event is dropped because the
	// broker is not keeping up.
	ErrForwardQueueFull = errors.New("event forward queue full")
	// ErrForwarderClosed is returned for events published after Close.
	ErrForwarderClosed = errors.New("event forwarder closed")
)

type queuedEvent struct {
	ctx   context.Context
	event Event
}

// AsyncForwarder runs a broker handler on its own goroutine behind a bounded
// queue, so a slow or unreachable broker never delays the publishing request.
// Queued events keep the publisher's context values but not its cancellation.
type AsyncForwarder struct {
	name    string
	handle  EventHandler
	queue   chan queuedEvent
	logger  *zap.Logger
	metrics *observability.Metrics

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Uint64
}

// NewAsyncForwarder starts the delivery goroutine. buffer below 1 is raised to 1.
func NewAsyncForwarder(name string, handle EventHandler, buffer int, logger *zap.Logger, metrics *observability.Metrics) *AsyncForwarder {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &AsyncForwarder{
		name:    name,
		handle:  handle,
		queue:   make(chan queuedEvent, buffer),
		logger:  logger.With(zap.String("forwarder", name)),
		metrics: metrics,
		done:    make(chan struct{}),
	}
	go f.run()
	return f
}

// Handle enqueues the event without blocking.
func (f *AsyncForwarder) Handle(ctx context.Context, event Event) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrForwarderClosed
	}
	select {
	case f.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		f.dropped.Add(1)
		f.metrics.EventForwardFailed(f.name, "dropped")
		return ErrForwardQueueFull
	}
}

// Dropped reports how many events were discarded on a full queue.
func (f *AsyncForwarder) Dropped() uint64 {
	return f.dropped.Load()
}

// Close stops accepting events and waits until the queued ones are delivered
// or ctx ends.
func (f *AsyncForwarder) Close(ctx context.Context) error {
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.queue)
	}
	f.mu.Unlock()

	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *AsyncForwarder) run() {
	defer close(f.done)
	for queued := range f.queue {
		if err := f.handle(queued.ctx, queued.event); err != nil {
			f.metrics.EventForwardFailed(f.name, "error")
			f.logger.Warn("forward event failed",
				zap.String("event_id", queued.event.ID),
				zap.String("event_type", string(queued.event.Type)),
				zap.Error(err))
		}
	}
}
