package store

import (
	"sync"

	"classlink/internal/core/domain"
)

// Observer receives a session snapshot after every applied action.
type Observer func(domain.Session)

// Store owns the session state. It is the sole writer; everything else
// reads snapshots. The controller is its only caller, so Dispatch calls are
// already serialized, but the mutex keeps Snapshot safe from any goroutine.
type Store struct {
	mu        sync.RWMutex
	state     domain.Session
	observers []Observer
}

// New creates a store for a fresh session.
func New(roomID domain.RoomID, settings domain.Settings) *Store {
	return &Store{
		state: domain.NewSession(roomID, settings),
	}
}

// Dispatch applies an action through the reducer and notifies observers with
// the resulting snapshot.
func (s *Store) Dispatch(a Action) domain.Session {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := clone(s.state)
	observers := s.observers
	s.mu.Unlock()

	for _, obs := range observers {
		obs(next)
	}
	return next
}

// Snapshot returns a deep copy of the current session state.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.state)
}

// Subscribe registers an observer. Observers are invoked synchronously after
// each dispatch, in registration order.
func (s *Store) Subscribe(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}
