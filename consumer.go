package rpl

import (
	"sync"
	"sync/atomic"
)

// Consumer receives the signals of one subscription:
// any number of values, then at most one terminal signal,
// either an error or completion.
//
// Each Consumer owns a [Lifetime].
// Ending that lifetime disengages the consumer,
// so that every later signal is dropped,
// and releases whatever the producer attached to it.
// Delivering a terminal signal ends the lifetime too.
//
// Signal delivery to a single Consumer is serialized,
// so producers whose event sources run on other goroutines
// may call the Put methods directly.
// A signal put while another one is being delivered,
// whether from a handler of c or from another goroutine,
// is queued and delivered in order by the goroutine already delivering;
// the Put call then returns without waiting for the handler.
//
// Consumers must be created with [NewConsumer].
type Consumer[V, E any] struct {
	next func(V)
	err  func(E)
	done func()

	lifetime *Lifetime

	mu         sync.Mutex
	delivering bool
	pending    []pendingSignal[V, E]

	// Set when a terminal signal is accepted,
	// which may be before its handler runs.
	terminated atomic.Bool
}

type pendingSignal[V, E any] struct {
	kind  signalKind
	value V
	err   E
}

type signalKind uint8

const (
	signalNext signalKind = iota
	signalError
	signalDone
)

func (k signalKind) putName() string {
	switch k {
	case signalNext:
		return "PutNext"
	case signalError:
		return "PutError"
	default:
		return "PutDone"
	}
}

// NewConsumer returns a Consumer calling the given handlers.
// Any handler may be nil, in which case that signal is accepted and dropped.
func NewConsumer[V, E any](next func(V), err func(E), done func()) *Consumer[V, E] {
	return &Consumer[V, E]{
		next: next,
		err:  err,
		done: done,

		lifetime: new(Lifetime),
	}
}

// PutNext delivers v and reports whether the consumer accepted it.
// It returns false once the consumer has been cancelled or terminated;
// producers should stop emitting at that point.
func (c *Consumer[V, E]) PutNext(v V) bool {
	return c.put(pendingSignal[V, E]{kind: signalNext, value: v}, checkContracts)
}

// PutError delivers the terminal error e and then ends c's lifetime.
// It reports whether e was accepted.
func (c *Consumer[V, E]) PutError(e E) bool {
	return c.put(pendingSignal[V, E]{kind: signalError, err: e}, checkContracts)
}

// PutDone delivers the terminal completion signal and then ends c's lifetime.
// It reports whether the signal was accepted.
func (c *Consumer[V, E]) PutDone() bool {
	return c.put(pendingSignal[V, E]{kind: signalDone}, checkContracts)
}

// offerNext is PutNext for multicast sources,
// which may race their own termination against an in-flight value.
// A value offered after a terminal is dropped instead of being a violation.
func (c *Consumer[V, E]) offerNext(v V) bool {
	return c.put(pendingSignal[V, E]{kind: signalNext, value: v}, false)
}

func (c *Consumer[V, E]) put(s pendingSignal[V, E], strict bool) bool {
	c.mu.Lock()
	if c.terminated.Load() {
		c.mu.Unlock()
		if strict {
			panic(ContractViolationError{Signal: s.kind.putName()})
		}
		return false
	}
	if c.lifetime.Ended() {
		c.mu.Unlock()
		return false
	}

	if s.kind != signalNext {
		c.terminated.Store(true)
	}
	c.pending = append(c.pending, s)

	if c.delivering {
		c.mu.Unlock()
		return true
	}
	c.delivering = true
	c.mu.Unlock()

	c.drain()
	return true
}

// drain delivers pending signals until the queue is empty.
// Only the goroutine that set c.delivering calls it.
func (c *Consumer[V, E]) drain() {
	finished := false
	defer func() {
		if finished {
			return
		}

		// A handler panicked.
		// Drop whatever is queued so that later signals are not stuck behind it.
		c.mu.Lock()
		c.delivering = false
		clear(c.pending)
		c.pending = c.pending[:0]
		c.mu.Unlock()
	}()

	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.delivering = false
			c.mu.Unlock()
			finished = true
			return
		}
		s := c.pending[0]
		c.pending[0] = pendingSignal[V, E]{}
		c.pending = c.pending[1:]
		c.mu.Unlock()

		c.deliver(s)
	}
}

func (c *Consumer[V, E]) deliver(s pendingSignal[V, E]) {
	if s.kind == signalNext {
		// Values queued before a cancellation are dropped.
		if c.next != nil && !c.lifetime.Ended() {
			c.next(s.value)
		}
		return
	}

	defer c.lifetime.End()
	if c.lifetime.Ended() {
		return
	}
	if s.kind == signalError {
		if c.err != nil {
			c.err(s.err)
		}
	} else if c.done != nil {
		c.done()
	}
}

// Lifetime returns the subscription lifetime of c.
// Producers attach their resources to it
// and may watch it for cancellation.
func (c *Consumer[V, E]) Lifetime() *Lifetime {
	return c.lifetime
}

// Active reports whether c still accepts signals:
// it has neither received a terminal signal nor been cancelled.
func (c *Consumer[V, E]) Active() bool {
	return !c.terminated.Load() && !c.lifetime.Ended()
}
