package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 16

// Broker fans published events out to every live subscriber.
//
// Subscribers only ever care about the most recent state, so a full
// subscriber buffer sheds its oldest queued event to make room for the new
// one instead of dropping the new one. Publish never blocks.
type Broker[T any] struct {
	mu         sync.RWMutex
	subs       map[chan Event[T]]struct{}
	done       chan struct{}
	bufferSize int

	last    Event[T]
	hasLast bool
}

// NewBroker creates a broker with the default buffer size.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker whose subscriber channels hold size events.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	if size < 1 {
		size = 1
	}
	return &Broker[T]{
		subs:       make(map[chan Event[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: size,
	}
}

// Subscribe returns a channel of future events.
// The channel is closed when ctx is cancelled or the broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	return b.subscribe(ctx, false)
}

// SubscribeWithLast is like Subscribe but first delivers the most recently
// published event, if any, so late subscribers start from current state.
func (b *Broker[T]) SubscribeWithLast(ctx context.Context) <-chan Event[T] {
	return b.subscribe(ctx, true)
}

func (b *Broker[T]) subscribe(ctx context.Context, replay bool) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := make(chan Event[T], b.bufferSize)
	if replay && b.hasLast {
		sub <- b.last
	}
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[sub]; ok {
			delete(b.subs, sub)
			close(sub)
		}
	}()

	return sub
}

// Publish sends an event to all subscribers.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	// Publish mutates last, so it takes the write lock.
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		return
	}

	b.last = event
	b.hasLast = true

	for sub := range b.subs {
		deliver(sub, event)
	}
}

// deliver enqueues event on sub, evicting the oldest queued event when full.
func deliver[T any](sub chan Event[T], event Event[T]) {
	for {
		select {
		case sub <- event:
			return
		default:
		}
		select {
		case <-sub:
		default:
		}
	}
}

// Last returns the most recently published payload.
func (b *Broker[T]) Last() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last.Payload, b.hasLast
}

// Close shuts down the broker and closes all subscriber channels. Idempotent.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		return
	}

	close(b.done)
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// closed must be called with b.mu held.
func (b *Broker[T]) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}
