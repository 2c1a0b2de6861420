package rpl

// Deferred returns a Producer that builds its real implementation
// once per subscription.
//
// Each call to Start on the returned Producer invokes creator exactly once,
// then starts the created producer with the same consumer
// and returns that subscription's lifetime unchanged.
// creator is never invoked at construction time,
// and its results are never reused across subscriptions,
// so per-subscription state such as counters or connections
// belongs inside the producer creator builds.
//
// If creator panics, the panic propagates out of Start
// before the consumer receives any signal.
//
// Deferred panics if creator is nil.
func Deferred[V, E any](creator func() Producer[V, E]) Producer[V, E] {
	if creator == nil {
		panic("rpl: Deferred called with nil creator")
	}

	return Make(func(c *Consumer[V, E]) *Lifetime {
		return creator().Start(c)
	})
}
