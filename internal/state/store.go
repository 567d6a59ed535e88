package state

import (
	"context"
	"sync"
)

// Store holds a State and serializes updates to it. When actions overlap, only the most
// recently started one may publish its result.
type Store[T any] struct {
	mu       sync.Mutex
	state    State[T]
	settled  State[T] // last published state that was not loading
	gen      uint64
	watchers map[chan State[T]]struct{}
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{watchers: make(map[chan State[T]]struct{})}
}

// Snapshot returns the current state.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set replaces the state and supersedes any running action.
func (s *Store[T]) Set(st State[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.publish(st)
}

// ClearError dismisses the current error without re-running anything.
func (s *Store[T]) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Failed() {
		s.publish(s.state.WithoutError())
	}
}

// Run enters Loading, calls fn and publishes its outcome unless a newer action has started
// meanwhile. A cancelled action restores the last settled state, so an overlapping cancel
// never leaves the store loading. Run returns the outcome of this action, whether or not
// it was published.
func (s *Store[T]) Run(ctx context.Context, fn func(ctx context.Context) (T, error)) State[T] {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.publish(Loading[T]())
	s.mu.Unlock()

	data, err := fn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	var result State[T]
	switch {
	case ctx.Err() != nil:
		result = s.settled
	case err != nil:
		result = Failure[T](err)
	default:
		result = Success(data)
	}

	if gen == s.gen {
		s.publish(result)
	}
	return result
}

// Watch streams state changes, starting with the current state. Slow readers only see the
// most recent state. The channel is closed when ctx is done.
func (s *Store[T]) Watch(ctx context.Context) <-chan State[T] {
	ch := make(chan State[T], 1)

	s.mu.Lock()
	ch <- s.state
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// publish must be called with mu held.
func (s *Store[T]) publish(st State[T]) {
	s.state = st
	if !st.IsLoading {
		s.settled = st
	}
	for ch := range s.watchers {
		select {
		case ch <- st:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
