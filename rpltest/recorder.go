// Package rpltest contains utilities for testing rpl producers.
package rpltest

import (
	"sync"
	"testing"

	"github.com/bettergram/rpl"
	"github.com/stretchr/testify/require"
)

// Kind identifies the type of a recorded [Signal].
type Kind uint8

const (
	KindNext Kind = iota + 1
	KindError
	KindDone
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindDone:
		return "done"
	default:
		return "invalid"
	}
}

// Signal is a single recorded consumer call.
type Signal[V, E any] struct {
	Kind  Kind
	Value V
	Err   E
}

// Next returns the Signal recorded for PutNext(v).
func Next[V, E any](v V) Signal[V, E] {
	return Signal[V, E]{Kind: KindNext, Value: v}
}

// Error returns the Signal recorded for PutError(e).
func Error[V, E any](e E) Signal[V, E] {
	return Signal[V, E]{Kind: KindError, Err: e}
}

// Done returns the Signal recorded for PutDone().
func Done[V, E any]() Signal[V, E] {
	return Signal[V, E]{Kind: KindDone}
}

// Recorder records the signals delivered to the consumers it creates.
//
// Recorder is safe for concurrent use.
type Recorder[V, E any] struct {
	mu      sync.Mutex
	signals []Signal[V, E]

	// Closed and replaced on every recorded signal.
	changed chan struct{}
}

// NewRecorder returns an empty Recorder.
func NewRecorder[V, E any]() *Recorder[V, E] {
	return &Recorder[V, E]{changed: make(chan struct{})}
}

// Consumer returns a new consumer whose signals are appended to r.
func (r *Recorder[V, E]) Consumer() *rpl.Consumer[V, E] {
	return rpl.NewConsumer(
		func(v V) { r.record(Next[V, E](v)) },
		func(e E) { r.record(Error[V](e)) },
		func() { r.record(Done[V, E]()) },
	)
}

// Start subscribes a new recording consumer to p
// and returns the subscription lifetime.
func (r *Recorder[V, E]) Start(p rpl.Producer[V, E]) *rpl.Lifetime {
	return p.Start(r.Consumer())
}

func (r *Recorder[V, E]) record(s Signal[V, E]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.signals = append(r.signals, s)
	close(r.changed)
	r.changed = make(chan struct{})
}

// Signals returns a snapshot copy of the recorded signals.
func (r *Recorder[V, E]) Signals() []Signal[V, E] {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Signal[V, E], len(r.signals))
	copy(out, r.signals)
	return out
}

// Values returns the values of the recorded next signals, in order.
func (r *Recorder[V, E]) Values() []V {
	sigs := r.Signals()
	out := make([]V, 0, len(sigs))
	for _, s := range sigs {
		if s.Kind == KindNext {
			out = append(out, s.Value)
		}
	}
	return out
}

// Changed returns a channel that is closed on the next recorded signal.
func (r *Recorder[V, E]) Changed() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changed
}

// Reset discards all recorded signals.
func (r *Recorder[V, E]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = nil
}

// RequireSignals fails t unless the recorded signals equal want.
func (r *Recorder[V, E]) RequireSignals(t *testing.T, want ...Signal[V, E]) {
	t.Helper()

	got := r.Signals()
	if len(want) == 0 {
		require.Empty(t, got)
		return
	}
	require.Equal(t, want, got)
}

// RequireNoSignals fails t if any signal has been recorded.
func (r *Recorder[V, E]) RequireNoSignals(t *testing.T) {
	t.Helper()
	require.Empty(t, r.Signals())
}

// RequireWellFormed fails t if the recording violates the consumer contract:
// a value after a terminal signal, or more than one terminal signal.
//
// The recorder has one sequence for all its consumers,
// so only use this with a single consumer.
func (r *Recorder[V, E]) RequireWellFormed(t *testing.T) {
	t.Helper()

	sigs := r.Signals()
	for i, s := range sigs {
		if s.Kind == KindNext {
			continue
		}
		require.Equalf(
			t, len(sigs)-1, i,
			"terminal %s signal at index %d followed by %d more signals",
			s.Kind, i, len(sigs)-1-i,
		)
	}
}
