package rpl

// Source is an external event source, such as a timer or a file watcher,
// that producers can subscribe to.
//
// Register arranges for fn to be called for each event
// and returns a function cancelling that registration.
// Implementations must not call fn after cancel has returned,
// except for a call already in progress on another goroutine.
// cancel must be safe to call more than once,
// and from within fn.
type Source[T any] interface {
	Register(fn func(T)) (cancel func())
}

// SourceFunc adapts a registration function to a [Source].
type SourceFunc[T any] func(fn func(T)) (cancel func())

// Register calls f.
func (f SourceFunc[T]) Register(fn func(T)) func() {
	return f(fn)
}

// FromSource returns a Producer emitting every event of src
// until the subscription is cancelled.
// Each subscription makes its own registration.
// The stream never completes on its own.
func FromSource[E, T any](src Source[T]) Producer[T, E] {
	return Make(func(c *Consumer[T, E]) *Lifetime {
		c.Lifetime().Add(src.Register(func(v T) {
			c.PutNext(v)
		}))
		return nil
	})
}

// FromChan returns a Producer that forwards values received on ch
// and completes when ch is closed.
//
// Each subscription runs a goroutine reading from ch,
// which stops when the subscription ends.
// Concurrent subscriptions compete for the values of ch.
func FromChan[E, V any](ch <-chan V) Producer[V, E] {
	return Make(func(c *Consumer[V, E]) *Lifetime {
		go runChanToConsumer(ch, c)
		return nil
	})
}

func runChanToConsumer[V, E any](ch <-chan V, c *Consumer[V, E]) {
	done := c.Lifetime().Done()

	for {
		select {
		case <-done:
			return

		case v, ok := <-ch:
			if !ok {
				c.PutDone()
				return
			}
			if !c.PutNext(v) {
				return
			}
		}
	}
}
