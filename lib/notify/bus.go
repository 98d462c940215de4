// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber retained-value bound used when
// New is given a non-positive size.
const DefaultBuffer = 64

var (
	// ErrBusClosed is returned by Subscribe after Close.
	ErrBusClosed = errors.New("notify: bus closed")

	// ErrSubscriptionClosed is returned by Next once the subscription
	// has been closed, either directly or by closing the bus.
	ErrSubscriptionClosed = errors.New("notify: subscription closed")
)

// Bus broadcasts values of type T to any number of subscriptions.
type Bus[T any] struct {
	buffer int

	mu          sync.Mutex
	subscribers map[*Subscription[T]]struct{}
	closed      bool

	published atomic.Uint64
}

// Stats is a point-in-time summary of bus activity.
type Stats struct {
	Published   uint64 `json:"published"`
	Subscribers int    `json:"subscribers"`
}

// New creates a bus whose subscriptions retain at most buffer
// undelivered values each.
func New[T any](buffer int) *Bus[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus[T]{
		buffer:      buffer,
		subscribers: make(map[*Subscription[T]]struct{}),
	}
}

// Subscribe registers a new subscription. The id is informational
// (logs, stats) and need not be unique.
func (b *Bus[T]) Subscribe(id string) (*Subscription[T], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}
	subscription := &Subscription[T]{
		id:     id,
		bus:    b,
		ring:   make([]T, b.buffer),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	b.subscribers[subscription] = struct{}{}
	return subscription, nil
}

// Publish appends value to every current subscription. It never
// blocks on a subscriber and never fails.
func (b *Bus[T]) Publish(value T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.published.Add(1)
	for subscription := range b.subscribers {
		subscription.push(value)
	}
}

// Close closes the bus and every subscription. Subsequent Publish
// calls are ignored and Subscribe fails.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subscribers := b.subscribers
	b.subscribers = nil
	b.mu.Unlock()

	for subscription := range subscribers {
		subscription.shutdown()
	}
}

// Stats returns the number of published values and live subscriptions.
func (b *Bus[T]) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Published:   b.published.Load(),
		Subscribers: len(b.subscribers),
	}
}

func (b *Bus[T]) remove(subscription *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, subscription)
}

// Delivery is one value received from a subscription. Missed counts
// values dropped for this subscription since the previous delivery
// because its ring overflowed; a non-zero Missed means the values
// between the previous delivery and this one are incomplete.
type Delivery[T any] struct {
	Value  T
	Missed uint64
}

// Subscription is one subscriber's view of the bus.
type Subscription[T any] struct {
	id  string
	bus *Bus[T]

	mu     sync.Mutex
	ring   []T
	head   int
	length int
	missed uint64
	closed bool

	delivered atomic.Uint64
	dropped   atomic.Uint64

	// signal holds a token whenever the ring may be non-empty.
	signal chan struct{}
	done   chan struct{}
}

// SubscriptionStats summarizes one subscription.
type SubscriptionStats struct {
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
	Pending   int    `json:"pending"`
}

// ID returns the id given to Subscribe.
func (s *Subscription[T]) ID() string { return s.id }

// Done is closed when the subscription is closed.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Next blocks until a value is available, the subscription is closed,
// or ctx is done.
func (s *Subscription[T]) Next(ctx context.Context) (Delivery[T], error) {
	for {
		if delivery, ok, err := s.pop(); ok || err != nil {
			return delivery, err
		}
		select {
		case <-s.signal:
		case <-s.done:
		case <-ctx.Done():
			return Delivery[T]{}, ctx.Err()
		}
	}
}

// Discard drops every pending value and clears the missed counter,
// returning how many values were discarded. A consumer that has
// rebuilt its state from an authoritative snapshot uses this to skip
// values the snapshot already covers.
func (s *Subscription[T]) Discard() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	discarded := s.length
	var zero T
	for i := range s.ring {
		s.ring[i] = zero
	}
	s.head = 0
	s.length = 0
	s.missed = 0
	return discarded
}

// Stats returns delivery counters for this subscription.
func (s *Subscription[T]) Stats() SubscriptionStats {
	s.mu.Lock()
	pending := s.length
	s.mu.Unlock()
	return SubscriptionStats{
		Delivered: s.delivered.Load(),
		Dropped:   s.dropped.Load(),
		Pending:   pending,
	}
}

// Close unsubscribes and wakes any blocked Next. Safe to call more
// than once.
func (s *Subscription[T]) Close() {
	s.bus.remove(s)
	s.shutdown()
}

func (s *Subscription[T]) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

func (s *Subscription[T]) push(value T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	capacity := len(s.ring)
	if s.length == capacity {
		// Overwrite the oldest value.
		s.ring[s.head] = value
		s.head = (s.head + 1) % capacity
		s.missed++
		s.dropped.Add(1)
	} else {
		s.ring[(s.head+s.length)%capacity] = value
		s.length++
	}
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) pop() (Delivery[T], bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Delivery[T]{}, false, ErrSubscriptionClosed
	}
	if s.length == 0 {
		return Delivery[T]{}, false, nil
	}
	var zero T
	delivery := Delivery[T]{Value: s.ring[s.head], Missed: s.missed}
	s.ring[s.head] = zero
	s.head = (s.head + 1) % len(s.ring)
	s.length--
	s.missed = 0
	s.delivered.Add(1)
	return delivery, true, nil
}
