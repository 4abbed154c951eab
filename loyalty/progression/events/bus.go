package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/logger"
)

// Publisher accepts committed events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event)
}

// Sink receives delivered envelopes.
type Sink interface {
	Deliver(ctx context.Context, env Envelope) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, env Envelope) error

func (f SinkFunc) Deliver(ctx context.Context, env Envelope) error {
	return f(ctx, env)
}

// Bus fans events out to sinks from a background worker so publishers never
// block on delivery.
type Bus struct {
	sinks []Sink
	queue chan Envelope
	now   func() time.Time

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewBus starts a bus with a queue of the given size.
func NewBus(size int, sinks ...Sink) *Bus {
	if size <= 0 {
		size = 256
	}
	b := &Bus{
		sinks: sinks,
		queue: make(chan Envelope, size),
		now:   time.Now,
		done:  make(chan struct{}),
	}
	go b.run()
	return b
}

// Publish enqueues events. When the queue is full, or the bus is closed, the
// event is dropped and logged.
func (b *Bus) Publish(_ context.Context, events ...Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, e := range events {
		env := NewEnvelope(e, b.now())
		if b.closed {
			slog.Warn("Event bus closed, dropping event",
				slog.String("type", "eng"),
				slog.String("event", env.Type),
				slog.String("user_id", env.UserID))
			continue
		}
		select {
		case b.queue <- env:
		default:
			slog.Warn("Event queue full, dropping event",
				slog.String("type", "eng"),
				slog.String("event", env.Type),
				slog.String("user_id", env.UserID))
		}
	}
}

func (b *Bus) run() {
	defer close(b.done)
	for env := range b.queue {
		for _, sink := range b.sinks {
			if err := sink.Deliver(context.Background(), env); err != nil {
				slog.Error("Event delivery failed",
					slog.String("type", "error"),
					slog.String("event", env.Type),
					slog.String("event_id", env.ID),
					slog.Any("error", err))
			}
		}
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSink logs every event at info level.
type LogSink struct{}

func (LogSink) Deliver(_ context.Context, env Envelope) error {
	logger.LogEngine("Event published",
		slog.String("event", env.Type),
		slog.String("user_id", env.UserID),
		slog.Any("data", env.Data))
	return nil
}

// Recorder keeps published events in memory. Used by tests and the dev mode.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, events ...Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many recorded events have the given name.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Name() == name {
			n++
		}
	}
	return n
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, ...Event) {}
