// Package broadcast fans messages out to in-process subscribers.
package broadcast

import (
	"context"
	"sync"
)

// MemoryBroadcaster drops messages for slow subscribers rather than
// blocking the sender. All methods are safe for concurrent use.
type MemoryBroadcaster[T any] struct {
	mu          sync.RWMutex
	subscribers map[chan T]struct{}
	bufferSize  int
	closed      bool
}

// NewMemoryBroadcaster creates a broadcaster whose subscribers buffer up to
// bufferSize messages. The minimum buffer is 1.
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	return &MemoryBroadcaster[T]{
		subscribers: make(map[chan T]struct{}),
		bufferSize:  max(bufferSize, 1),
	}
}

// Subscribe returns a channel that receives every message broadcast after
// the call. The channel is closed when ctx is done or the broadcaster is
// closed.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, b.bufferSize)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[ch] = struct{}{}

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			b.unsubscribe(ch)
		}()
	}
	return ch
}

// Broadcast sends msg to all subscribers without blocking.
func (b *MemoryBroadcaster[T]) Broadcast(msg T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers returns the number of active subscribers.
func (b *MemoryBroadcaster[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel. It is safe to call more than once.
func (b *MemoryBroadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subscribers {
		close(ch)
	}
	clear(b.subscribers)
}

func (b *MemoryBroadcaster[T]) unsubscribe(ch chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}
