package rpl_test

import (
	"sync"
	"time"

	"github.com/bettergram/rpl/internal/rtest"
)

// manualSource is an rpl.Source driven by the test.
type manualSource[T any] struct {
	mu      sync.Mutex
	fns     map[int]func(T)
	nextID  int
	cancels int
}

func newManualSource[T any]() *manualSource[T] {
	return &manualSource[T]{fns: make(map[int]func(T))}
}

func (s *manualSource[T]) Register(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.fns, id)
			s.cancels++
		})
	}
}

// Emit calls every registered callback with v.
func (s *manualSource[T]) Emit(v T) {
	s.mu.Lock()
	fns := make([]func(T), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (s *manualSource[T]) Registrations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}

func (s *manualSource[T]) Cancels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

func timeAfterSchedule() <-chan time.Time {
	return time.After(rtest.ScheduleDuration)
}
