// Package rpl contains a small push-based stream core
// built from three types.
//
// A [Producer] is a cold, immutable description of a stream.
// Calling [Producer.Start] with a [Consumer] runs the producer's start procedure,
// which delivers values and at most one terminal signal
// (an error or completion) to the consumer,
// either synchronously or later from an external event [Source].
// Start returns a [Lifetime]; ending it cancels the subscription,
// stops any further delivery, and releases the subscription's resources.
//
// Because every Start call runs the start procedure again,
// one Producer value can be subscribed to any number of times,
// and each subscription gets its own state.
// [Deferred] makes this explicit by building the real producer
// through a creator function, once per subscription.
//
// Hot sources such as [EventStream] and [Variable]
// adapt shared, changing state to the same Producer interface.
//
// # Contracts
//
// A consumer never receives a value after a terminal signal,
// and never receives two terminal signals.
// Cancellation is not an error: it drops further signals silently.
// Signalling an already terminated consumer is a producer bug;
// building with the rpldebug tag turns it into a panic
// with a [ContractViolationError].
package rpl
