package events

import (
	"context"
	"sync"
)

const subscriberBuffer = 64

type localSub struct {
	ch   chan Event
	done chan struct{} // closed when the subscriber's context ends
}

// LocalBus fans events out to in-process subscribers.
// Publish waits for room in every live subscriber's buffer, so invalidations
// are not dropped while the worker is running.
type LocalBus struct {
	mu     sync.RWMutex
	subs   map[int]*localSub
	nextID int
	closed bool

	quit      chan struct{}
	closeOnce sync.Once
}

// NewLocalBus creates an in-process bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{
		subs: make(map[int]*localSub),
		quit: make(chan struct{}),
	}
}

// Publish delivers event to every current subscriber.
func (b *LocalBus) Publish(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	for _, sub := range b.subs {
		select {
		case sub.ch <- event:
		case <-sub.done:
		case <-b.quit:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a new subscriber.
func (b *LocalBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	id := b.nextID
	b.nextID++
	sub := &localSub{ch: make(chan Event, subscriberBuffer), done: make(chan struct{})}
	b.subs[id] = sub

	go func() {
		select {
		case <-ctx.Done():
		case <-b.quit:
		}
		close(sub.done)
		b.unsubscribe(id)
	}()

	return sub.ch, nil
}

// unsubscribe runs after sub.done is closed, which releases any publisher
// blocked on this subscriber before the write lock is taken.
func (b *LocalBus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Close stops the bus and closes every subscriber channel.
func (b *LocalBus) Close() error {
	b.closeOnce.Do(func() { close(b.quit) })

	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
