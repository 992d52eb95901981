// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

// Package session owns the mutable observation state of one simulated
// world session: per-actor hand and inventory state, snapshots of
// entities marked for deconstruction, the monotonic tick, and the feed
// identity. All state is cleared and the feed identity rotated on
// session reset.
//
// The engine runs single-threaded inside discrete simulation steps, so
// session state carries no locking; a deployment that distributes
// handlers across goroutines must serialize access per actor and entity.
package session

import (
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/cargolog/cargolog/internal/event"
	"github.com/cargolog/cargolog/internal/inventory"
	"github.com/cargolog/cargolog/internal/item"
)

// OpenContainer records the composite snapshot of the container an actor
// currently has open, with slot registration order preserved for the
// resolver's tie-break.
type OpenContainer struct {
	EntityID  int64
	Tag       string
	SlotOrder []string
	Snaps     inventory.Composite
}

// ActorState is the per-actor observation state, created lazily on the
// first notification for that actor and kept for the session lifetime.
type ActorState struct {
	// HandKey and HandCount describe the actor's cursor hand; Holding is
	// false when the hand is empty.
	HandKey   item.Key
	HandCount int
	Holding   bool

	// Main is the last known snapshot of the actor's main inventory.
	Main inventory.Snapshot

	// Open is the currently open container, nil when none.
	Open *OpenContainer
}

// Session is the process-wide state store for one world session.
type Session struct {
	logger *slog.Logger

	feedID ulid.ULID
	tick   int64
	actors map[int64]*ActorState
	decon  map[string]inventory.Composite
}

// New creates an empty session with a fresh feed identity.
func New(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		logger: logger,
		feedID: event.NewULID(),
		actors: map[int64]*ActorState{},
		decon:  map[string]inventory.Composite{},
	}
}

// Tick returns the latest observed world tick. Implements event.Clock.
func (s *Session) Tick() int64 { return s.tick }

// Observe advances the session tick. Ticks never move backwards, so
// event sequence numbers stay monotonic even if the host delivers a
// stale notification.
func (s *Session) Observe(tick int64) {
	if tick > s.tick {
		s.tick = tick
	}
}

// FeedID returns the current feed identity. It changes on every Reset,
// invalidating subscriptions made against the previous identity.
func (s *Session) FeedID() ulid.ULID { return s.feedID }

// Actor returns the state for an actor ID, or nil if none exists yet.
func (s *Session) Actor(id int64) *ActorState {
	return s.actors[id]
}

// ActorOrCreate returns the state for an actor, creating it on first
// observation with the given main-inventory snapshot as baseline.
func (s *Session) ActorOrCreate(id int64, baseline inventory.Snapshot) *ActorState {
	if st, ok := s.actors[id]; ok {
		return st
	}
	st := &ActorState{Main: baseline}
	s.actors[id] = st
	s.logger.Debug("tracking new actor", "actor_id", id)
	return st
}

// MarkDeconstruction stores an entity's composite snapshot keyed by
// entity identity, for later delta comparison when robots mine it.
func (s *Session) MarkDeconstruction(e inventory.Entity, snap inventory.Composite) {
	s.decon[EntityKey(e)] = snap
}

// DeconSnapshot returns the stored snapshot for an entity, or nil.
func (s *Session) DeconSnapshot(e inventory.Entity) inventory.Composite {
	return s.decon[EntityKey(e)]
}

// DropDeconSnapshot discards the stored snapshot for an entity.
func (s *Session) DropDeconSnapshot(e inventory.Entity) {
	delete(s.decon, EntityKey(e))
}

// Reset clears all per-actor and per-entity state, rewinds the tick, and
// rotates the feed identity.
func (s *Session) Reset() {
	s.actors = map[int64]*ActorState{}
	s.decon = map[string]inventory.Composite{}
	s.tick = 0
	s.feedID = event.NewULID()
	s.logger.Info("session reset", "feed_id", s.feedID.String())
}

// EntityKey derives a stable identity for an entity: the unit ID when it
// has one, otherwise a position-based key.
func EntityKey(e inventory.Entity) string {
	if id := e.ID(); id != 0 {
		return fmt.Sprintf("unit:%d", id)
	}
	pos := e.Pos()
	return fmt.Sprintf("pos:%s:%.2f:%.2f", e.TypeTag(), pos.X, pos.Y)
}
