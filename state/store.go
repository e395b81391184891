package state

import (
	"sync"

	"taskboard/model"
)

// Listener observes a completed transition. prev and next are private
// copies. Listeners run on the dispatching goroutine, in registration order,
// before the next action is applied; they must not call Dispatch.
type Listener func(prev, next model.AppState, a Action)

// Snapshot is an immutable view of the state at one version.
type Snapshot struct {
	State   model.AppState
	Version uint64
}

// Store owns the current AppState. Dispatch is the only way to change it.
type Store struct {
	dispatchMu sync.Mutex // serializes apply+publish

	mu        sync.RWMutex
	state     model.AppState
	version   uint64
	listeners []listenerEntry
	nextID    int
}

type listenerEntry struct {
	id int
	fn Listener
}

// NewStore creates a store holding a copy of initial.
func NewStore(initial model.AppState) *Store {
	return &Store{state: initial.Clone()}
}

// Dispatch applies a and publishes the result to every listener. It returns
// the snapshot produced by this transition.
func (s *Store) Dispatch(a Action) Snapshot {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	s.version++
	snap := Snapshot{State: next.Clone(), Version: s.version}
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(prev.Clone(), next.Clone(), a)
	}
	return snap
}

// Snapshot returns a copy of the current state and its version.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state.Clone(), Version: s.version}
}

// State returns a copy of the current state.
func (s *Store) State() model.AppState {
	return s.Snapshot().State
}

// Version counts applied actions.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
