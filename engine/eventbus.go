package engine

import (
	"context"
	"sync"
	"time"

	"crewscore/core"
)

// DispatchMode selects synchronous or asynchronous event delivery.
type DispatchMode int

const (
	DispatchSync DispatchMode = iota
	DispatchAsync
)

const (
	asyncQueueSize = 2048
	asyncWorkers   = 4
)

type subscriber struct {
	id int64
	fn func(context.Context, core.Event)
}

// EventBus provides thread-safe pub/sub with sync and async dispatch.
// Async mode drops events when the queue is full rather than blocking the
// scoring path.
type EventBus struct {
	mode   DispatchMode
	mu     sync.RWMutex
	subs   map[core.EventType][]subscriber
	nextID int64
	queue  chan core.Event
	ctx    context.Context
	cancel context.CancelFunc
}

func NewEventBus(mode DispatchMode) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	bus := &EventBus{
		mode:   mode,
		subs:   make(map[core.EventType][]subscriber),
		queue:  make(chan core.Event, asyncQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	if mode == DispatchAsync {
		for i := 0; i < asyncWorkers; i++ {
			go bus.worker()
		}
	}
	return bus
}

func (b *EventBus) worker() {
	for {
		select {
		case ev := <-b.queue:
			b.dispatch(context.Background(), ev)
		case <-b.ctx.Done():
			return
		}
	}
}

// Close stops async workers.
func (b *EventBus) Close() {
	b.cancel()
	// allow workers to drain briefly
	time.Sleep(10 * time.Millisecond)
}

// Subscribe registers a handler for an event type and returns an unsubscribe
// function.
func (b *EventBus) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[typ] = append(b.subs[typ], subscriber{id: id, fn: handler})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[typ]
		for i, s := range list {
			if s.id == id {
				b.subs[typ] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers an event to subscribers of its type.
func (b *EventBus) Publish(ctx context.Context, ev core.Event) {
	if b.mode == DispatchAsync {
		select {
		case b.queue <- ev:
		default:
			// drop when full; scoring latency wins over delivery
		}
		return
	}
	b.dispatch(ctx, ev)
}

func (b *EventBus) dispatch(ctx context.Context, ev core.Event) {
	b.mu.RLock()
	handlers := make([]func(context.Context, core.Event), 0, len(b.subs[ev.Type]))
	for _, s := range b.subs[ev.Type] {
		handlers = append(handlers, s.fn)
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, ev)
	}
}
