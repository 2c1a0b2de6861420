package rtest

import (
	"testing"
	"time"
)

// ScheduleDuration is how long the channel helpers wait
// for another goroutine to make progress.
const ScheduleDuration = 100 * time.Millisecond

// ReceiveSoon fails t if no value arrives on ch within [ScheduleDuration].
// Otherwise it returns the received value.
func ReceiveSoon[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	timer := time.NewTimer(ScheduleDuration)
	defer timer.Stop()

	select {
	case v := <-ch:
		return v
	case <-timer.C:
		t.Fatalf("did not receive value within %s", ScheduleDuration)
	}

	panic("unreachable")
}

// SendSoon fails t if v cannot be sent on ch within [ScheduleDuration].
func SendSoon[T any](t *testing.T, ch chan<- T, v T) {
	t.Helper()

	timer := time.NewTimer(ScheduleDuration)
	defer timer.Stop()

	select {
	case ch <- v:
	case <-timer.C:
		t.Fatalf("could not send value within %s", ScheduleDuration)
	}
}

// IsSending fails t if a receive from ch would block right now.
// Use it on channels that are closed to signal readiness.
func IsSending[T any](t *testing.T, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
	default:
		t.Fatal("channel was not ready to receive")
	}
}

// NotSending fails t if a value is immediately available on ch.
func NotSending[T any](t *testing.T, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
		t.Fatal("channel unexpectedly had a value ready")
	default:
	}
}

// NotSendingSoon fails t if a value arrives on ch within [ScheduleDuration].
func NotSendingSoon[T any](t *testing.T, ch <-chan T) {
	t.Helper()

	timer := time.NewTimer(ScheduleDuration)
	defer timer.Stop()

	select {
	case <-ch:
		t.Fatal("channel unexpectedly received a value")
	case <-timer.C:
	}
}
