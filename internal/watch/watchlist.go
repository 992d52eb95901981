// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

// Package watch maintains the time-windowed set of entities whose
// inventories are polled for asynchronous external fills, such as a
// robot restocking a freshly built machine. Polling on a fixed cadence
// is a deliberate trade-off: it avoids re-scanning every entity on every
// simulation step.
package watch

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/cargolog/cargolog/internal/event"
	"github.com/cargolog/cargolog/internal/inventory"
	"github.com/cargolog/cargolog/internal/session"
)

// Default cadence values, in world ticks.
const (
	// DefaultScanInterval is one second of world time.
	DefaultScanInterval = 60
	// DefaultQuiescence is roughly ten minutes of world time.
	DefaultQuiescence = 36000
)

// Config tunes the watchlist cadence.
type Config struct {
	// ScanInterval is the number of ticks between scans.
	ScanInterval int64
	// Quiescence is how long an entry may go without an observed fill
	// before it is evicted.
	Quiescence int64
}

// DefaultConfig returns the default cadence.
func DefaultConfig() Config {
	return Config{ScanInterval: DefaultScanInterval, Quiescence: DefaultQuiescence}
}

type entry struct {
	entity     inventory.Entity
	snap       inventory.Composite
	lastChange int64
}

// List is the monitoring watchlist. Fills observed by a scan are booked
// against the logistics network with an unidentified robot actor: by the
// time the poll sees the delta, the robot that made it is gone. This is
// a documented imprecision.
type List struct {
	cfg     Config
	emitter *event.Emitter
	logger  *slog.Logger

	entries  map[string]*entry
	lastScan int64
}

// networkActor is the attributed actor for observed automated fills.
var networkActor = event.Actor{Kind: event.ActorLogisticRobot, ID: 0, Name: "logistic-network"}

// NewList creates an empty watchlist.
func NewList(cfg Config, emitter *event.Emitter, logger *slog.Logger) *List {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultScanInterval
	}
	if cfg.Quiescence <= 0 {
		cfg.Quiescence = DefaultQuiescence
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &List{
		cfg:     cfg,
		emitter: emitter,
		logger:  logger,
		entries: map[string]*entry{},
	}
}

// Add starts monitoring an entity against the given baseline snapshot.
// Re-adding a watched entity replaces its baseline and resets its timer.
func (l *List) Add(e inventory.Entity, baseline inventory.Composite, now int64) {
	if baseline == nil {
		baseline = inventory.Composite{}
	}
	key := session.EntityKey(e)
	l.entries[key] = &entry{entity: e, snap: baseline, lastChange: now}
	WatchedEntities.Set(float64(len(l.entries)))
	l.logger.Debug("watching entity", "entity", key, "tick", now)
}

// Len returns the number of watched entities.
func (l *List) Len() int { return len(l.entries) }

// MaybeScan runs Scan when at least ScanInterval ticks have passed since
// the previous scan.
func (l *List) MaybeScan(ctx context.Context, now int64) {
	if now-l.lastScan < l.cfg.ScanInterval {
		return
	}
	l.lastScan = now
	l.Scan(ctx, now)
}

// Scan diffs every watched entity against its stored snapshot, emits
// TAKE(logistic-network)+GIVE(entity slot) for each positive per-slot
// delta, and evicts entries that vanished or stayed quiet for the whole
// quiescence window.
func (l *List) Scan(ctx context.Context, now int64) {
	started := time.Now()
	defer func() {
		ScanDuration.Observe(time.Since(started).Seconds())
	}()

	for _, key := range l.sortedKeys() {
		en := l.entries[key]
		if !en.entity.Valid() {
			delete(l.entries, key)
			Evictions.WithLabelValues("invalid").Inc()
			l.logger.Debug("evicting vanished entity", "entity", key)
			continue
		}

		current := inventory.TakeComposite(en.entity)
		changed := l.emitFills(ctx, en, current)
		en.snap = current
		if changed {
			en.lastChange = now
		} else if now-en.lastChange >= l.cfg.Quiescence {
			delete(l.entries, key)
			Evictions.WithLabelValues("quiescent").Inc()
			l.logger.Debug("evicting quiescent entity", "entity", key, "last_change", en.lastChange)
		}
	}
	WatchedEntities.Set(float64(len(l.entries)))
}

// emitFills books every positive delta between the stored and current
// snapshots and reports whether any was found.
func (l *List) emitFills(ctx context.Context, en *entry, current inventory.Composite) bool {
	delta := inventory.DiffComposite(en.snap, current)
	changed := false

	slots := make([]string, 0, len(delta))
	for slot := range delta {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	for _, slot := range slots {
		for _, k := range delta[slot].Keys() {
			n := delta[slot][k]
			if n <= 0 {
				continue
			}
			it := event.ItemOf(k, n)
			l.emitter.Emit(ctx, networkActor, event.ActionTake, event.LogisticNetwork(), it)
			l.emitter.Emit(ctx, networkActor, event.ActionGive,
				event.EntityAt(en.entity.TypeTag(), en.entity.ID(), slot), it)
			changed = true
		}
	}
	return changed
}

// Reset drops every entry, used on session reset.
func (l *List) Reset() {
	l.entries = map[string]*entry{}
	l.lastScan = 0
	WatchedEntities.Set(0)
}

func (l *List) sortedKeys() []string {
	keys := make([]string, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
