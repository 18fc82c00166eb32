// Package event provides a small synchronous publish/subscribe bus.
//
// The engine runs inside the host's input-handling turn, so delivery is
// synchronous and in subscription order: Publish returns after every
// handler has run. Handlers that panic are recovered and counted so one
// misbehaving subscriber cannot take down a command.
package event

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Errors returned by bus operations.
var (
	ErrNilHandler      = errors.New("handler is nil")
	ErrNotSubscribed   = errors.New("subscription not found")
	ErrHandlerPanicked = errors.New("event handler panicked")
)

// Topic names an event stream.
type Topic string

// Handler processes a published event.
type Handler interface {
	Handle(topic Topic, payload any) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(topic Topic, payload any) error

// Handle calls the function.
func (f HandlerFunc) Handle(topic Topic, payload any) error {
	return f(topic, payload)
}

// Subscription identifies a registered handler.
type Subscription struct {
	id    uint64
	topic Topic
}

// Topic returns the topic the subscription listens on.
func (s Subscription) Topic() Topic {
	return s.topic
}

// Stats holds bus counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	HandlerErrors uint64
	HandlerPanics uint64
}

// Bus delivers events to subscribers synchronously.
// All methods are safe for concurrent use, though the engine itself
// publishes from a single goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic]map[uint64]Handler

	published     atomic.Uint64
	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[uint64]Handler)}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic Topic, h Handler) (Subscription, error) {
	if h == nil {
		return Subscription{}, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uint64]Handler)
	}
	b.subs[topic][id] = h
	return Subscription{id: id, topic: topic}, nil
}

// SubscribeFunc registers a function handler for a topic.
func (b *Bus) SubscribeFunc(topic Topic, fn HandlerFunc) (Subscription, error) {
	return b.Subscribe(topic, fn)
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers, ok := b.subs[sub.topic]
	if !ok {
		return ErrNotSubscribed
	}
	if _, ok := handlers[sub.id]; !ok {
		return ErrNotSubscribed
	}
	delete(handlers, sub.id)
	if len(handlers) == 0 {
		delete(b.subs, sub.topic)
	}
	return nil
}

// Publish delivers the payload to every handler subscribed to the
// topic, in subscription order. It returns the first handler error, but
// always delivers to all handlers.
func (b *Bus) Publish(topic Topic, payload any) error {
	b.published.Add(1)

	b.mu.RLock()
	handlers := b.subs[topic]
	ids := make([]uint64, 0, len(handlers))
	for id := range handlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	ordered := make([]Handler, len(ids))
	for i, id := range ids {
		ordered[i] = handlers[id]
	}
	b.mu.RUnlock()

	var firstErr error
	for _, h := range ordered {
		err := b.deliver(h, topic, payload)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// deliver runs a single handler with panic recovery.
func (b *Bus) deliver(h Handler, topic Topic, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			err = fmt.Errorf("%w: %v", ErrHandlerPanicked, r)
		}
	}()

	b.delivered.Add(1)
	if err := h.Handle(topic, payload); err != nil {
		b.handlerErrors.Add(1)
		return err
	}
	return nil
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		HandlerErrors: b.handlerErrors.Load(),
		HandlerPanics: b.handlerPanics.Load(),
	}
}
