// Package bus carries game events into the engine and reactions back out over
// bounded channels. Publishing never blocks indefinitely: a full channel gets
// a short grace period and then the message is counted as dropped. Engine
// operations are idempotent, so duplicate or dropped deliveries degrade the
// experience without corrupting state.
package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/astraeum/oraclecore/core"
)

// DefaultBufferSize is the channel capacity used when none is configured.
const DefaultBufferSize = 64

// DefaultPublishTimeout is how long a publish waits on a full channel before
// dropping.
const DefaultPublishTimeout = 250 * time.Millisecond

// EventBus is the engine's delivery seam.
type EventBus struct {
	events    chan core.GameEvent
	reactions chan core.Reaction
	timeout   time.Duration

	closed  bool
	dropped droppedCounters
	mu      sync.RWMutex
}

type droppedCounters struct {
	events    atomic.Uint64
	reactions atomic.Uint64
}

// Options configure an EventBus.
type Options struct {
	BufferSize     int
	PublishTimeout time.Duration
}

// New creates a bus with bounded buffers.
func New(optFns ...func(o *Options)) *EventBus {
	opts := Options{BufferSize: DefaultBufferSize, PublishTimeout: DefaultPublishTimeout}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	return &EventBus{
		events:    make(chan core.GameEvent, opts.BufferSize),
		reactions: make(chan core.Reaction, opts.BufferSize),
		timeout:   opts.PublishTimeout,
	}
}

// PublishEvent enqueues an inbound game event, dropping after the publish
// timeout when the buffer stays full.
func (b *EventBus) PublishEvent(ev core.GameEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	select {
	case b.events <- ev:
	default:
		timer := time.NewTimer(b.timeout)
		defer timer.Stop()
		select {
		case b.events <- ev:
		case <-timer.C:
			b.dropped.events.Add(1)
		}
	}
}

// ConsumeEvent blocks for the next event or context cancellation.
func (b *EventBus) ConsumeEvent(ctx context.Context) (core.GameEvent, bool) {
	select {
	case ev, ok := <-b.events:
		return ev, ok
	case <-ctx.Done():
		return core.GameEvent{}, false
	}
}

// PublishReaction enqueues an outbound oracle reaction with the same
// full-buffer policy as events.
func (b *EventBus) PublishReaction(r core.Reaction) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	select {
	case b.reactions <- r:
	default:
		timer := time.NewTimer(b.timeout)
		defer timer.Stop()
		select {
		case b.reactions <- r:
		case <-timer.C:
			b.dropped.reactions.Add(1)
		}
	}
}

// ConsumeReaction blocks for the next reaction or context cancellation.
func (b *EventBus) ConsumeReaction(ctx context.Context) (core.Reaction, bool) {
	select {
	case r, ok := <-b.reactions:
		return r, ok
	case <-ctx.Done():
		return core.Reaction{}, false
	}
}

// DroppedEvents reports how many inbound events were discarded.
func (b *EventBus) DroppedEvents() uint64 { return b.dropped.events.Load() }

// DroppedReactions reports how many outbound reactions were discarded.
func (b *EventBus) DroppedReactions() uint64 { return b.dropped.reactions.Load() }

// Close shuts the bus down. Publishing after close is a silent no-op.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.events)
	close(b.reactions)
}
