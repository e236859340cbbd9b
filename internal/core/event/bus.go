package event

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Handler receives one fired event.
type Handler func(Event)

// SubscriptionID identifies one Subscribe call. Go funcs are not comparable,
// so unsubscribing goes through the id instead of the handler value.
type SubscriptionID uint64

type subscription struct {
	id SubscriptionID
	fn Handler
}

// Bus is a synchronous publish/subscribe dispatcher keyed by event Type.
//
// Fire delivers immediately on the caller's goroutine. Post/Flush is a
// double buffer: events posted during tick N are fired when Flush runs at the
// start of tick N+1 (see DispatchSystem).
type Bus struct {
	mu       sync.Mutex // protects registration and the post buffer, never held during dispatch
	handlers map[Type][]subscription
	owner    map[SubscriptionID]Type
	nextID   SubscriptionID
	front    []Event
	back     []Event
	flushing bool
	log      *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[Type][]subscription),
		owner:    make(map[SubscriptionID]Type),
		front:    make([]Event, 0, 32),
		back:     make([]Event, 0, 32),
		log:      log,
	}
}

// Subscribe registers fn for events of type t. Subscribing the same function
// twice yields two ids and two invocations per Fire.
func (b *Bus) Subscribe(t Type, fn Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[t] = append(b.handlers[t], subscription{id: id, fn: fn})
	b.owner[id] = t
	return id
}

// On registers a typed handler. The event type is taken from T's zero value,
// so T must be one of the value event structs of this package.
func On[T Event](b *Bus, fn func(T)) SubscriptionID {
	var zero T
	return b.Subscribe(zero.Type(), func(e Event) {
		fn(e.(T))
	})
}

// Unsubscribe removes a subscription. Unknown or already removed ids are
// ignored. The type entry is deleted with its last handler.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.owner[id]
	if !ok {
		return
	}
	delete(b.owner, id)

	subs := b.handlers[t]
	// Build a fresh slice: a Fire in progress may still hold the old one.
	kept := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(b.handlers, t)
		return
	}
	b.handlers[t] = kept
}

// Fire invokes every handler currently subscribed to ev.Type() in
// subscription order. A panicking handler is logged and skipped; Fire itself
// never panics.
func (b *Bus) Fire(ev Event) {
	if ev == nil {
		return
	}
	b.mu.Lock()
	subs := b.handlers[ev.Type()]
	b.mu.Unlock()

	for _, s := range subs {
		b.invoke(ev, s)
	}
}

func (b *Bus) invoke(ev Event, s subscription) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler failed",
				zap.Stringer("event", ev.Type()),
				zap.Uint64("subscription", uint64(s.id)),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	s.fn(ev)
}

// Post queues ev for the next Flush.
func (b *Bus) Post(ev Event) {
	if ev == nil {
		return
	}
	b.mu.Lock()
	b.back = append(b.back, ev)
	b.mu.Unlock()
}

// Flush swaps the post buffers and fires every queued event in post order.
// Events posted by handlers during Flush wait for the next Flush.
// A Flush called from inside a handler is a no-op.
func (b *Bus) Flush() int {
	b.mu.Lock()
	if b.flushing {
		b.mu.Unlock()
		return 0
	}
	b.flushing = true
	b.front, b.back = b.back, b.front[:0]
	pending := b.front
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.flushing = false
		b.mu.Unlock()
	}()
	for _, ev := range pending {
		b.Fire(ev)
	}
	return len(pending)
}

// Pending returns the number of posted events waiting for Flush.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.back)
}

// Clear drops every subscription and every queued event.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[Type][]subscription)
	b.owner = make(map[SubscriptionID]Type)
	b.back = b.back[:0]
}

// HandlerCount returns the number of handlers registered for t.
func (b *Bus) HandlerCount(t Type) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[t])
}

// TypeCount returns the number of event types with at least one handler.
func (b *Bus) TypeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

// LogActiveSubscriptions writes one debug line per subscribed event type.
func (b *Bus) LogActiveSubscriptions() {
	b.mu.Lock()
	types := make([]Type, 0, len(b.handlers))
	counts := make(map[Type]int, len(b.handlers))
	for t, subs := range b.handlers {
		types = append(types, t)
		counts[t] = len(subs)
	}
	b.mu.Unlock()

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	b.log.Info("event bus subscriptions", zap.Int("types", len(types)))
	for _, t := range types {
		b.log.Info("  subscribers",
			zap.Stringer("event", t),
			zap.Int("count", counts[t]),
		)
	}
}
