// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package event

import (
	"context"
	"log/slog"

	"github.com/cargolog/cargolog/pkg/errutil"
)

// Clock supplies the current world tick for event stamping. The session
// implements it from the latest notification, clamped to be monotonic.
type Clock interface {
	Tick() int64
}

// Emitter assembles canonical event records, appends them to the log,
// and pushes them to subscribers synchronously. There is no queueing or
// batching: by the time Emit returns, the event is stored and delivered.
type Emitter struct {
	store       Store
	broadcaster *Broadcaster
	clock       Clock
	logger      *slog.Logger
}

// NewEmitter creates an emitter. broadcaster may be nil for store-only
// operation; a nil logger falls back to slog.Default.
func NewEmitter(store Store, broadcaster *Broadcaster, clock Clock, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		store:       store,
		broadcaster: broadcaster,
		clock:       clock,
		logger:      logger,
	}
}

// Emit stamps, stores, and broadcasts one event. A failed append is
// absorbed: the event is still delivered to subscribers and returned,
// the failure is logged and counted. Inference never fails the
// simulation step.
func (em *Emitter) Emit(ctx context.Context, actor Actor, action Action, location Location, it Item) Event {
	e := Event{
		ID:       NewULID(),
		Tick:     em.clock.Tick(),
		Actor:    actor,
		Action:   action,
		Location: location,
		Item:     it,
	}

	if err := em.store.Append(ctx, e); err != nil {
		AppendFailures.Inc()
		errutil.LogError(em.logger, "failed to append event to log", err)
	}

	if em.broadcaster != nil {
		em.broadcaster.Broadcast(e)
	}

	EventsEmitted.WithLabelValues(action.String()).Inc()
	em.logger.Debug("event emitted",
		"action", action.String(),
		"item", it.Name,
		"count", it.Count,
		"location", location.Kind.String(),
	)
	return e
}
