package rpl

// Producer is a cold stream description.
//
// Constructing a Producer does no work.
// Every call to [Producer.Start] runs the producer's start procedure again,
// so any state the stream needs must be created inside that procedure;
// two subscriptions never share it unless the producer's author chose to.
//
// Producer is an immutable value and may be copied freely.
// The zero Producer never signals.
type Producer[V, E any] struct {
	start func(*Consumer[V, E]) *Lifetime
}

// Make returns a Producer whose subscriptions run start.
//
// start receives the subscribing consumer.
// It may signal the consumer synchronously, or arrange for later delivery,
// and returns a Lifetime owning whatever it allocated.
// A nil return means there is nothing to release.
func Make[V, E any](start func(c *Consumer[V, E]) *Lifetime) Producer[V, E] {
	return Producer[V, E]{start: start}
}

// Start subscribes c to p.
//
// The start procedure runs synchronously on the calling goroutine.
// The returned lifetime is c's own lifetime;
// ending it cancels the subscription and releases its resources.
// If c terminated before the start procedure returned,
// those resources are released before Start returns.
func (p Producer[V, E]) Start(c *Consumer[V, E]) *Lifetime {
	lt := c.Lifetime()
	if p.start == nil {
		return lt
	}

	lt.Hold(p.start(c))
	return lt
}

// StartWithNext subscribes next to p and ties the subscription to into.
func (p Producer[V, E]) StartWithNext(next func(V), into *Lifetime) {
	into.Hold(p.Start(NewConsumer[V, E](next, nil, nil)))
}

// StartWithNextDone is like [Producer.StartWithNext]
// and also reports completion to done.
func (p Producer[V, E]) StartWithNextDone(next func(V), done func(), into *Lifetime) {
	into.Hold(p.Start(NewConsumer[V, E](next, nil, done)))
}

// StartWithNextError is like [Producer.StartWithNext]
// and also reports the terminal error to err.
func (p Producer[V, E]) StartWithNextError(next func(V), err func(E), into *Lifetime) {
	into.Hold(p.Start(NewConsumer(next, err, nil)))
}
