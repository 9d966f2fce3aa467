// Package event provides a small synchronous in-process event bus.
//
// Topics use dot notation ("block.changed", "editor.readonly.toggled").
// A subscription pattern may end in ".*" to match any suffix. Delivery is
// synchronous with Publish; handler panics are recovered so one listener
// cannot take down the publisher.
package event

import (
	"strings"
	"sync"
)

// Topic is a hierarchical event type using dot notation.
type Topic string

// Well-known topics published by the editor core.
const (
	// TopicBlockChanged fires after a block's debounced mutation settles.
	TopicBlockChanged Topic = "block.changed"
	// TopicReadOnlyToggled fires after the read-only state changes.
	TopicReadOnlyToggled Topic = "editor.readonly.toggled"
)

// Match reports whether the topic matches the subscription pattern.
// A pattern ending in ".*" matches the topic's whole subtree.
func (t Topic) Match(pattern Topic) bool {
	if t == pattern {
		return true
	}
	if strings.HasSuffix(string(pattern), ".*") {
		prefix := strings.TrimSuffix(string(pattern), "*")
		return strings.HasPrefix(string(t), prefix)
	}
	return false
}

// Event is the payload delivered to handlers.
type Event struct {
	Topic Topic
	// BlockID identifies the originating block, when applicable.
	BlockID string
	// Data carries topic-specific payload.
	Data any
}

// Handler receives published events.
type Handler func(Event)

// Subscription identifies an active handler registration.
type Subscription struct {
	bus *Bus
	id  int
}

// Cancel removes the subscription. Safe to call repeatedly.
func (s Subscription) Cancel() {
	if s.bus != nil {
		s.bus.unsubscribe(s.id)
	}
}

type registration struct {
	id      int
	pattern Topic
	handler Handler
}

// Bus dispatches events synchronously to matching subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   []registration
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for topics matching pattern.
func (b *Bus) Subscribe(pattern Topic, handler Handler) Subscription {
	if handler == nil {
		return Subscription{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, registration{id: b.nextID, pattern: pattern, handler: handler})
	return Subscription{bus: b, id: b.nextID}
}

// Publish delivers the event to every matching subscriber, in subscription
// order. Handler panics are recovered and ignored.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, reg := range b.subs {
		if ev.Topic.Match(reg.pattern) {
			matched = append(matched, reg.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range matched {
		func() {
			defer func() {
				recover() // Ignore panics from handlers
			}()
			h(ev)
		}()
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, reg := range b.subs {
		if reg.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}
