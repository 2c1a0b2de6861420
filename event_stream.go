package rpl

import (
	"slices"
	"sync"
)

// EventStream is a hot multicast source.
// Every value passed to [(*EventStream).Fire] is delivered
// to the consumers subscribed at that moment.
//
// Unlike most producers, the stream returned by [(*EventStream).Events]
// shares the EventStream's state between its subscriptions;
// that sharing is the purpose of the type.
//
// The zero value is ready to use.
// An EventStream must not be copied after first use.
type EventStream[V, E any] struct {
	mu        sync.Mutex
	consumers []*Consumer[V, E]

	// Set once the stream has terminated,
	// and replayed to late subscribers.
	terminal func(*Consumer[V, E])
}

// NewEventStream returns a new, empty EventStream.
func NewEventStream[V, E any]() *EventStream[V, E] {
	return new(EventStream[V, E])
}

// Events returns a Producer subscribing to s.
// Subscribers only observe values fired after they subscribed.
// Subscribing after s has terminated
// immediately delivers the same terminal signal.
func (s *EventStream[V, E]) Events() Producer[V, E] {
	return Make(func(c *Consumer[V, E]) *Lifetime {
		s.mu.Lock()
		if s.terminal != nil {
			terminal := s.terminal
			s.mu.Unlock()
			terminal(c)
			return nil
		}
		s.consumers = append(s.consumers, c)
		s.mu.Unlock()

		c.Lifetime().Add(func() {
			s.remove(c)
		})
		return nil
	})
}

// Fire delivers v to every current subscriber.
// Consumers subscribing while Fire is running do not receive v.
// Fire is a no-op after s has terminated,
// and stops delivering if a subscriber terminates s while Fire runs.
func (s *EventStream[V, E]) Fire(v V) {
	s.mu.Lock()
	if s.terminal != nil {
		s.mu.Unlock()
		return
	}
	consumers := slices.Clone(s.consumers)
	s.mu.Unlock()

	for _, c := range consumers {
		if s.terminated() {
			return
		}
		c.offerNext(v)
	}
}

func (s *EventStream[V, E]) terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal != nil
}

// FireError terminates s with e, delivering e to every current subscriber.
// Calls after s has terminated are ignored.
func (s *EventStream[V, E]) FireError(e E) {
	s.terminate(func(c *Consumer[V, E]) {
		c.PutError(e)
	})
}

// Close completes s and every current subscriber.
// Calls after s has terminated are ignored.
func (s *EventStream[V, E]) Close() {
	s.terminate(func(c *Consumer[V, E]) {
		c.PutDone()
	})
}

// HasConsumers reports whether s has any live subscriber.
func (s *EventStream[V, E]) HasConsumers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.consumers) > 0
}

func (s *EventStream[V, E]) terminate(terminal func(*Consumer[V, E])) {
	s.mu.Lock()
	if s.terminal != nil {
		s.mu.Unlock()
		return
	}
	s.terminal = terminal
	consumers := s.consumers
	s.consumers = nil
	s.mu.Unlock()

	for _, c := range consumers {
		terminal(c)
	}
}

func (s *EventStream[V, E]) remove(c *Consumer[V, E]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.consumers = slices.DeleteFunc(s.consumers, func(have *Consumer[V, E]) bool {
		return have == c
	})
}
