package rpl

import "sync"

// Variable holds a value and notifies subscribers when it changes.
//
// Every subscriber observes changes in the order they were made,
// and a subscriber of [(*Variable).Producer] never sees a value
// older than the one it started with.
type Variable[V comparable] struct {
	mu      sync.Mutex
	value   V
	version uint64
	closed  bool

	changes EventStream[versioned[V], NoError]
}

type versioned[V any] struct {
	value   V
	version uint64
}

// NewVariable returns a Variable holding initial.
func NewVariable[V comparable](initial V) *Variable[V] {
	return &Variable[V]{value: initial}
}

// Value returns the current value.
func (v *Variable[V]) Value() V {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set stores val and, if it differs from the current value,
// notifies subscribers of [(*Variable).Changes] and [(*Variable).Producer].
// It reports whether the value changed.
//
// Set may be called from within a subscriber's handler;
// the new value is delivered once that handler returns.
func (v *Variable[V]) Set(val V) bool {
	v.mu.Lock()
	if v.value == val {
		v.mu.Unlock()
		return false
	}
	v.value = val
	v.version++
	change := versioned[V]{value: val, version: v.version}
	v.mu.Unlock()

	v.changes.Fire(change)
	return true
}

// Close completes every subscription to v.
// Later subscribers receive the current value, if they asked for it,
// and then completion.
// Set keeps updating the value after Close but no longer notifies anyone.
func (v *Variable[V]) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	v.changes.Close()
}

// Changes returns a Producer of future values only.
func (v *Variable[V]) Changes() Producer[V, NoError] {
	return Make(func(c *Consumer[V, NoError]) *Lifetime {
		return v.subscribe(c, false)
	})
}

// Producer returns a Producer that emits the current value on subscription,
// followed by every future value.
func (v *Variable[V]) Producer() Producer[V, NoError] {
	return Make(func(c *Consumer[V, NoError]) *Lifetime {
		return v.subscribe(c, true)
	})
}

func (v *Variable[V]) subscribe(c *Consumer[V, NoError], withCurrent bool) *Lifetime {
	v.mu.Lock()
	current := versioned[V]{value: v.value, version: v.version}
	if v.closed {
		v.mu.Unlock()
		if withCurrent && !c.PutNext(current.value) {
			return nil
		}
		c.PutDone()
		return nil
	}

	// Concurrent Set calls may fire out of order,
	// and a Set racing this subscription may fire the value read above.
	// Versions drop both.
	minVersion := current.version + 1
	if withCurrent {
		minVersion = current.version
	}
	inner := NewConsumer[versioned[V], NoError](func(change versioned[V]) {
		if change.version < minVersion {
			return
		}
		minVersion = change.version + 1
		c.PutNext(change.value)
	}, nil, func() {
		c.PutDone()
	})

	// The stream is still open while v.mu is held,
	// so subscribing only registers inner and runs no handler.
	lt := v.changes.Events().Start(inner)
	v.mu.Unlock()

	if withCurrent {
		inner.PutNext(current)
	}
	return lt
}
