// Package event is a small publish/subscribe dispatcher scoped to the
// component that owns it. Handlers run synchronously on the publisher's
// goroutine, in the order they were subscribed.
package event

import "sync"

type Handler func()

// Bus maps keys to ordered handler lists.
type Bus[K comparable] struct {
	mu       sync.RWMutex
	handlers map[K][]Handler
}

func NewBus[K comparable]() *Bus[K] {
	return &Bus[K]{
		handlers: make(map[K][]Handler),
	}
}

// Subscribe appends h to the handlers for key. A nil handler is ignored.
func (b *Bus[K]) Subscribe(key K, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[key] = append(b.handlers[key], h)
}

// Publish invokes every handler registered for key and returns how many ran.
// Handlers subscribed while a publish is in flight are picked up by the next one.
func (b *Bus[K]) Publish(key K) int {
	b.mu.RLock()
	hs := b.handlers[key]
	b.mu.RUnlock()

	for _, h := range hs {
		h()
	}
	return len(hs)
}

// Len reports the number of handlers registered for key.
func (b *Bus[K]) Len(key K) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[key])
}
