// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package event

import (
	"context"
	"sync"
)

// Store persists the ordered event log. Indices are 1-based: the first
// event ever appended has index 1. Events are never deleted except by
// Clear, which truncates the whole log.
type Store interface {
	// Append adds an event at the end of the log.
	Append(ctx context.Context, e Event) error

	// Events returns all events at or after the given 1-based index, in
	// insertion order. from values below 1 are treated as 1.
	Events(ctx context.Context, from int) ([]Event, error)

	// Count returns the number of events in the log.
	Count(ctx context.Context) (int, error)

	// Clear truncates the log.
	Clear(ctx context.Context) error
}

// MemoryStore is an in-memory Store. It is the default backing when no
// database is configured and the workhorse of the test suite.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds an event to the in-memory log.
func (s *MemoryStore) Append(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Events returns events at or after the 1-based index from.
func (s *MemoryStore) Events(_ context.Context, from int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if from < 1 {
		from = 1
	}
	if from > len(s.events) {
		return nil, nil
	}
	out := make([]Event, len(s.events)-from+1)
	copy(out, s.events[from-1:])
	return out, nil
}

// Count returns the number of stored events.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), nil
}

// Clear truncates the in-memory log.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	return nil
}
