// Package rtimer contains timer-backed event sources and producers.
//
// Timer callbacks run on goroutines owned by this package;
// rpl consumers serialize the resulting deliveries.
package rtimer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bettergram/rpl"
)

// Ticker is an [rpl.Source] that fires at a fixed interval.
//
// A Ticker holds only configuration;
// every registration owns its own [time.Ticker] and goroutine.
type Ticker struct {
	interval time.Duration
}

// NewTicker returns a Ticker firing every interval.
// It panics if interval is not positive.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		panic("rtimer: NewTicker called with non-positive interval")
	}
	return &Ticker{interval: interval}
}

// Register starts delivering tick times to fn
// until the returned cancel function is called.
//
// cancel does not wait for a callback already running on the tick goroutine,
// so it is safe to call from within fn.
func (t *Ticker) Register(fn func(time.Time)) (cancel func()) {
	tk := time.NewTicker(t.interval)
	stop := make(chan struct{})

	var stopped atomic.Bool
	go func() {
		defer tk.Stop()

		for {
			select {
			case <-stop:
				return

			case now := <-tk.C:
				if stopped.Load() {
					return
				}
				fn(now)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopped.Store(true)
			close(stop)
		})
	}
}

// Interval returns a Producer emitting the tick time every d,
// until the subscription is cancelled.
// Each subscription gets a fresh registration.
func Interval[E any](d time.Duration) rpl.Producer[time.Time, E] {
	return rpl.Deferred(func() rpl.Producer[time.Time, E] {
		return rpl.FromSource[E, time.Time](NewTicker(d))
	})
}

// After returns a Producer that emits the time once, after d,
// and then completes.
// Cancelling the subscription first stops the timer.
func After[E any](d time.Duration) rpl.Producer[time.Time, E] {
	return rpl.Make(func(c *rpl.Consumer[time.Time, E]) *rpl.Lifetime {
		timer := time.AfterFunc(d, func() {
			if c.PutNext(time.Now()) {
				c.PutDone()
			}
		})

		lt := new(rpl.Lifetime)
		lt.Add(func() {
			timer.Stop()
		})
		return lt
	})
}
