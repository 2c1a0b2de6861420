package rpl

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// Lifetime owns the cleanup actions of an active subscription or resource.
//
// Ending a Lifetime runs its actions in reverse registration order, exactly once.
// [(*Lifetime).End] is idempotent and may be called from within
// one of the lifetime's own actions or from any signal callback.
//
// The zero value is ready to use. A Lifetime must not be copied after first use.
// Go has no destructors, so whoever owns a Lifetime is responsible for ending it,
// typically with a deferred End call.
type Lifetime struct {
	log *slog.Logger

	mu      sync.Mutex
	ended   bool
	actions []func()

	// Lazily created by Done.
	done chan struct{}
}

// NewLifetime returns a Lifetime that reports panicking cleanup actions to log.
// A nil log, like a zero Lifetime, falls back to [slog.Default].
func NewLifetime(log *slog.Logger) *Lifetime {
	return &Lifetime{log: log}
}

// Add registers fn to run when l ends.
// If l has already ended, fn runs before Add returns.
func (l *Lifetime) Add(fn func()) {
	if fn == nil {
		return
	}

	l.mu.Lock()
	if l.ended {
		l.mu.Unlock()
		l.run(fn)
		return
	}
	l.actions = append(l.actions, fn)
	l.mu.Unlock()
}

// Hold makes child a sub-lifetime of l:
// ending l ends child.
// Ending child first has no effect on l.
func (l *Lifetime) Hold(child *Lifetime) {
	if child == nil || child == l {
		return
	}
	l.Add(child.End)
}

// End runs every registered action, most recent first.
// Calls after the first are no-ops.
//
// A panicking action is logged as a [*CleanupPanicError]
// and the remaining actions still run.
func (l *Lifetime) End() {
	l.mu.Lock()
	if l.ended {
		l.mu.Unlock()
		return
	}
	l.ended = true
	actions := l.actions
	l.actions = nil
	if l.done != nil {
		close(l.done)
	}
	l.mu.Unlock()

	for i := len(actions) - 1; i >= 0; i-- {
		l.run(actions[i])
	}
}

// Ended reports whether End has been called.
// It becomes true before any cleanup action runs.
func (l *Lifetime) Ended() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ended
}

// Done returns a channel that is closed when l ends.
// Goroutine-backed producers select on it to observe cancellation.
func (l *Lifetime) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done == nil {
		l.done = make(chan struct{})
		if l.ended {
			close(l.done)
		}
	}
	return l.done
}

func (l *Lifetime) run(fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		err := &CleanupPanicError{Value: r, Stack: debug.Stack()}
		log := l.log
		if log == nil {
			log = slog.Default()
		}
		log.Error(
			"Lifetime cleanup action panicked",
			"err", err,
			"stack", string(err.Stack),
		)
	}()

	fn()
}
