// Package state holds the reducer store shared by the cart, order and session containers.
package state

import "sync"

// Reducer computes the next state from the current one. It must not mutate its input:
// slices and maps in the returned state are fresh whenever they differ.
type Reducer[S any, A any] func(S, A) S

// Effect runs after a transition has been published, still inside the dispatch critical
// section, so effects observe transitions in dispatch order.
type Effect[S any, A any] func(prev, next S, action A)

// Store serializes transitions of one state tree.
type Store[S any, A any] struct {
	dispatchMu sync.Mutex

	mu      sync.RWMutex
	current S
	subs    map[int]func(S)
	nextSub int

	reduce Reducer[S, A]
	effect Effect[S, A]
}

// Option configures a Store.
type Option[S any, A any] func(*Store[S, A])

// WithEffect installs the side effect run after every transition.
func WithEffect[S any, A any](effect Effect[S, A]) Option[S, A] {
	return func(s *Store[S, A]) { s.effect = effect }
}

func New[S any, A any](initial S, reduce Reducer[S, A], opts ...Option[S, A]) *Store[S, A] {
	s := &Store[S, A]{
		current: initial,
		subs:    make(map[int]func(S)),
		reduce:  reduce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies action and returns the resulting state. Subscribers are notified
// before the next Dispatch is admitted; they must not call Dispatch themselves.
func (s *Store[S, A]) Dispatch(action A) S {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.current
	next := s.reduce(prev, action)
	s.current = next
	subs := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if s.effect != nil {
		s.effect(prev, next, action)
	}
	for _, fn := range subs {
		fn(next)
	}
	return next
}

// State returns the current snapshot.
func (s *Store[S, A]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn for every published state and returns its cancel func.
func (s *Store[S, A]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
