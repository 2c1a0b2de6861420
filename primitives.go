package rpl

import "slices"

// NoError is the error type of streams that never fail.
type NoError struct{}

// Empty is the value type of streams whose values carry no data,
// such as plain change notifications.
type Empty struct{}

// Single returns a Producer that emits v and then completes.
//
// The error type comes first so that callers only spell it out:
//
//	rpl.Single[rpl.NoError](42)
func Single[E, V any](v V) Producer[V, E] {
	return Make(func(c *Consumer[V, E]) *Lifetime {
		if c.PutNext(v) {
			c.PutDone()
		}
		return nil
	})
}

// Values returns a Producer that emits vs in order and then completes.
// vs is copied, so later changes to the caller's slice are not observed.
//
// Emission stops early if the consumer is cancelled from a handler.
func Values[E, V any](vs ...V) Producer[V, E] {
	vs = slices.Clone(vs)
	return Make(func(c *Consumer[V, E]) *Lifetime {
		for _, v := range vs {
			if !c.PutNext(v) {
				return nil
			}
		}
		c.PutDone()
		return nil
	})
}

// Complete returns a Producer that completes without emitting a value.
func Complete[V, E any]() Producer[V, E] {
	return Make(func(c *Consumer[V, E]) *Lifetime {
		c.PutDone()
		return nil
	})
}

// Fail returns a Producer that fails with e without emitting a value.
func Fail[V, E any](e E) Producer[V, E] {
	return Make(func(c *Consumer[V, E]) *Lifetime {
		c.PutError(e)
		return nil
	})
}

// Never returns a Producer that never signals.
// Its subscriptions last until cancelled.
func Never[V, E any]() Producer[V, E] {
	return Producer[V, E]{}
}
