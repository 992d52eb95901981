// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

// Package compose maps raw world notifications onto canonical logistics
// events. Each handler runs to completion inside one simulation step:
// the events it emits are ordered, and no two handlers overlap.
//
// Handlers never fail. Notifications missing required payload fields are
// dropped whole, with no partial emission; a crash mid-handler can leave
// a multi-step transaction partially emitted, which is an accepted
// inconsistency window rather than a transactional guarantee.
package compose

import (
	"context"
	"log/slog"
	"sort"

	"github.com/cargolog/cargolog/internal/event"
	"github.com/cargolog/cargolog/internal/inventory"
	"github.com/cargolog/cargolog/internal/item"
	"github.com/cargolog/cargolog/internal/session"
	"github.com/cargolog/cargolog/internal/watch"
)

// Composer turns notifications into emitted events, tracking per-actor
// observation state in the session along the way.
type Composer struct {
	session *session.Session
	emitter *event.Emitter
	watch   *watch.List
	logger  *slog.Logger
}

// New creates a composer. watchlist may be nil when robot-build
// monitoring is not wanted.
func New(sess *session.Session, emitter *event.Emitter, watchlist *watch.List, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		session: sess,
		emitter: emitter,
		watch:   watchlist,
		logger:  logger,
	}
}

// Session returns the session state store the composer mutates.
func (c *Composer) Session() *session.Session { return c.session }

// Tick drives the watchlist cadence. Call once per simulation step (or
// whenever the host reports time passing).
func (c *Composer) Tick(ctx context.Context, tick int64) {
	c.session.Observe(tick)
	if c.watch != nil {
		c.watch.MaybeScan(ctx, c.session.Tick())
	}
}

// Reset clears all observation state and the watchlist, rotating the
// feed identity. Invoked on session restart or world reconfiguration.
func (c *Composer) Reset() {
	c.session.Reset()
	if c.watch != nil {
		c.watch.Reset()
	}
}

// HandlePlayerJoined captures an actor's inventory baseline before any
// movement is observed.
func (c *Composer) HandlePlayerJoined(_ context.Context, n PlayerJoined) {
	c.session.Observe(n.Tick)
	c.stateFor(n.Player)
}

// HandleHandChange books the transition of a player's cursor stack:
// empty→held is a TAKE, held→empty a GIVE, a count change a partial
// TAKE/GIVE, and an item swap a GIVE of the old stack followed by a TAKE
// of the new one, in that order.
func (c *Composer) HandleHandChange(ctx context.Context, n HandChange) {
	c.session.Observe(n.Tick)
	st := c.stateFor(n.Player)
	actor := playerActor(n.Player)

	var (
		newKey   item.Key
		newCount int
		holding  = n.Player.Hand != nil
	)
	if holding {
		newKey = item.NewKey(n.Player.Hand.Name, n.Player.Hand.Quality)
		newCount = n.Player.Hand.Count
	}

	switch {
	case !st.Holding && holding:
		loc, _ := c.resolve(n.Player, st, newKey, signTakeSource)
		c.emitter.Emit(ctx, actor, event.ActionTake, loc, event.ItemOf(newKey, newCount))

	case st.Holding && !holding:
		loc, _ := c.resolve(n.Player, st, st.HandKey, signGiveTarget)
		c.emitter.Emit(ctx, actor, event.ActionGive, loc, event.ItemOf(st.HandKey, st.HandCount))

	case st.Holding && holding && st.HandKey == newKey:
		switch {
		case newCount > st.HandCount:
			loc, _ := c.resolve(n.Player, st, newKey, signTakeSource)
			c.emitter.Emit(ctx, actor, event.ActionTake, loc, event.ItemOf(newKey, newCount-st.HandCount))
		case newCount < st.HandCount:
			loc, _ := c.resolve(n.Player, st, newKey, signGiveTarget)
			c.emitter.Emit(ctx, actor, event.ActionGive, loc, event.ItemOf(newKey, st.HandCount-newCount))
		}

	case st.Holding && holding:
		// Swap: the old stack leaves the hand before the new one enters.
		loc, _ := c.resolve(n.Player, st, st.HandKey, signGiveTarget)
		c.emitter.Emit(ctx, actor, event.ActionGive, loc, event.ItemOf(st.HandKey, st.HandCount))
		loc, _ = c.resolve(n.Player, st, newKey, signTakeSource)
		c.emitter.Emit(ctx, actor, event.ActionTake, loc, event.ItemOf(newKey, newCount))
	}

	st.Holding = holding
	st.HandKey = newKey
	st.HandCount = newCount
}

// HandleContainerOpened snapshots the opened entity so later hand
// changes can be attributed to its slots.
func (c *Composer) HandleContainerOpened(_ context.Context, n ContainerOpened) {
	c.session.Observe(n.Tick)
	st := c.stateFor(n.Player)

	if n.Target == nil || !n.Target.Valid() {
		st.Open = nil
		return
	}

	comp := inventory.TakeComposite(n.Target)
	order := make([]string, 0, len(comp))
	for _, slot := range n.Target.SlotNames() {
		if _, ok := comp[slot]; ok {
			order = append(order, slot)
		}
	}
	st.Open = &session.OpenContainer{
		EntityID:  n.Target.ID(),
		Tag:       n.Target.TypeTag(),
		SlotOrder: order,
		Snaps:     comp,
	}
}

// HandleContainerClosed forgets the open-container snapshot.
func (c *Composer) HandleContainerClosed(_ context.Context, n ContainerClosed) {
	c.session.Observe(n.Tick)
	st := c.stateFor(n.Player)
	st.Open = nil
}

// HandleQuickTransfer books a bulk transfer by diffing the player's main
// inventory: every item that left it is a TAKE(player-inventory) paired
// with a GIVE into the target's first slot, and symmetrically for the
// opposite direction. Take and give totals balance by construction.
func (c *Composer) HandleQuickTransfer(ctx context.Context, n QuickTransfer) {
	c.session.Observe(n.Tick)
	if n.Target == nil {
		c.drop("quick_transfer", "missing target")
		return
	}
	st := c.stateFor(n.Player)
	actor := playerActor(n.Player)

	fresh := inventory.Take(n.Player.Main)
	delta := inventory.Diff(st.Main, fresh)
	st.Main = fresh

	slot := firstSlot(n.Target)
	containerLoc := event.EntityAt(n.Target.TypeTag(), n.Target.ID(), slot)
	playerLoc := event.PlayerInventory(n.Player.ID)

	for _, k := range delta.Keys() {
		d := delta[k]
		switch {
		case n.FromPlayer && d < 0:
			it := event.ItemOf(k, -d)
			c.emitter.Emit(ctx, actor, event.ActionTake, playerLoc, it)
			c.emitter.Emit(ctx, actor, event.ActionGive, containerLoc, it)
		case !n.FromPlayer && d > 0:
			it := event.ItemOf(k, d)
			c.emitter.Emit(ctx, actor, event.ActionTake, containerLoc, it)
			c.emitter.Emit(ctx, actor, event.ActionGive, playerLoc, it)
		}
	}

	c.refreshOpen(st, n.Player)
}

// HandleGroundDrop books a stack dropped on the ground.
func (c *Composer) HandleGroundDrop(ctx context.Context, n GroundDrop) {
	c.session.Observe(n.Tick)
	if n.Stack == nil {
		c.drop("ground_drop", "missing stack")
		return
	}
	st := c.stateFor(n.Player)
	actor := playerActor(n.Player)

	it := event.ItemOf(item.NewKey(n.Stack.Name, n.Stack.Quality), n.Stack.Count)
	c.emitter.Emit(ctx, actor, event.ActionTake, event.PlayerInventory(n.Player.ID), it)
	c.emitter.Emit(ctx, actor, event.ActionGive, event.Ground(), it)

	st.Main = inventory.Take(n.Player.Main)
}

// HandleGroundPickup books a stack picked up from the ground.
func (c *Composer) HandleGroundPickup(ctx context.Context, n GroundPickup) {
	c.session.Observe(n.Tick)
	if n.Stack == nil {
		c.drop("ground_pickup", "missing stack")
		return
	}
	st := c.stateFor(n.Player)
	actor := playerActor(n.Player)

	it := event.ItemOf(item.NewKey(n.Stack.Name, n.Stack.Quality), n.Stack.Count)
	c.emitter.Emit(ctx, actor, event.ActionTake, event.Ground(), it)
	c.emitter.Emit(ctx, actor, event.ActionGive, event.PlayerInventory(n.Player.ID), it)

	st.Main = inventory.Take(n.Player.Main)
}

// HandleCraft books a manual craft retrograde: each ingredient moves
// from the player inventory to the crafting bench, the output is made
// there, then moves back to the player inventory. Totals balance even
// though the host only reports the net craft.
func (c *Composer) HandleCraft(ctx context.Context, n Craft) {
	c.session.Observe(n.Tick)
	if n.Recipe == nil || n.Output == nil {
		c.drop("craft", "missing recipe or output")
		return
	}
	st := c.stateFor(n.Player)
	actor := playerActor(n.Player)
	bench := event.Crafting(n.Player.ID)
	playerLoc := event.PlayerInventory(n.Player.ID)

	for _, ing := range n.Recipe.Ingredients {
		it := event.ItemOf(item.NewKey(ing.Name, ing.Quality), ing.Count*n.Output.Count)
		c.emitter.Emit(ctx, actor, event.ActionTake, playerLoc, it)
		c.emitter.Emit(ctx, actor, event.ActionGive, bench, it)
	}

	out := event.ItemOf(item.NewKey(n.Output.Name, n.Output.Quality), n.Output.Count)
	c.emitter.Emit(ctx, actor, event.ActionMake, bench, out)
	c.emitter.Emit(ctx, actor, event.ActionTake, bench, out)
	c.emitter.Emit(ctx, actor, event.ActionGive, playerLoc, out)

	st.Main = inventory.Take(n.Player.Main)
}

// HandlePreMine books the contents of an entity a player is about to
// mine. Loose ground stacks are booked against the ground location
// rather than an entity slot.
func (c *Composer) HandlePreMine(ctx context.Context, n PreMine) {
	c.session.Observe(n.Tick)
	if n.Target == nil {
		c.drop("pre_mine", "missing target")
		return
	}
	st := c.stateFor(n.Player)
	actor := playerActor(n.Player)
	playerLoc := event.PlayerInventory(n.Player.ID)

	c.emitContents(ctx, actor, n.Target, playerLoc)
	st.Main = inventory.Take(n.Player.Main)
}

// HandlePostMine books the yield buffer of a finished player mine under
// the synthetic "mining" slot.
func (c *Composer) HandlePostMine(ctx context.Context, n PostMine) {
	c.session.Observe(n.Tick)
	if n.Target == nil || n.Buffer == nil {
		c.drop("post_mine", "missing target or buffer")
		return
	}
	st := c.stateFor(n.Player)
	actor := playerActor(n.Player)
	playerLoc := event.PlayerInventory(n.Player.ID)
	from := event.EntityAt(n.Target.TypeTag(), n.Target.ID(), "mining")

	yield := inventory.Take(n.Buffer)
	for _, k := range yield.Keys() {
		it := event.ItemOf(k, yield[k])
		c.emitter.Emit(ctx, actor, event.ActionTake, from, it)
		c.emitter.Emit(ctx, actor, event.ActionGive, playerLoc, it)
	}

	st.Main = inventory.Take(n.Player.Main)
}

// HandleMarkDeconstruction snapshots an entity marked for automated
// deconstruction so later robot mining can be diffed against it.
func (c *Composer) HandleMarkDeconstruction(_ context.Context, n MarkDeconstruction) {
	c.session.Observe(n.Tick)
	if n.Target == nil {
		c.drop("mark_deconstruction", "missing target")
		return
	}
	c.session.MarkDeconstruction(n.Target, inventory.TakeComposite(n.Target))
}

// HandleRobotPreMine books what left an entity between its
// deconstruction marking and the robot arriving: every negative
// per-slot delta is a TAKE from the entity into the logistics network.
// Loose ground stacks book their full contents from the ground instead.
func (c *Composer) HandleRobotPreMine(ctx context.Context, n RobotPreMine) {
	c.session.Observe(n.Tick)
	if n.Target == nil {
		c.drop("robot_pre_mine", "missing target")
		return
	}
	actor := robotActor(n.Robot)
	network := event.LogisticNetwork()

	if n.Target.TypeTag() == inventory.TypeGroundItem {
		c.emitContents(ctx, actor, n.Target, network)
		c.session.MarkDeconstruction(n.Target, inventory.TakeComposite(n.Target))
		return
	}

	stored := c.session.DeconSnapshot(n.Target)
	current := inventory.TakeComposite(n.Target)
	delta := inventory.DiffComposite(stored, current)

	slots := make([]string, 0, len(delta))
	for slot := range delta {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	for _, slot := range slots {
		from := event.EntityAt(n.Target.TypeTag(), n.Target.ID(), slot)
		for _, k := range delta[slot].Keys() {
			if d := delta[slot][k]; d < 0 {
				it := event.ItemOf(k, -d)
				c.emitter.Emit(ctx, actor, event.ActionTake, from, it)
				c.emitter.Emit(ctx, actor, event.ActionGive, network, it)
			}
		}
	}

	c.session.MarkDeconstruction(n.Target, current)
}

// HandleRobotPostMine books the yield buffer of a finished robot mine
// and discards the entity's stored snapshot.
func (c *Composer) HandleRobotPostMine(ctx context.Context, n RobotPostMine) {
	c.session.Observe(n.Tick)
	if n.Target == nil || n.Buffer == nil {
		c.drop("robot_post_mine", "missing target or buffer")
		return
	}
	actor := robotActor(n.Robot)
	network := event.LogisticNetwork()
	from := event.EntityAt(n.Target.TypeTag(), n.Target.ID(), "mining")

	yield := inventory.Take(n.Buffer)
	for _, k := range yield.Keys() {
		it := event.ItemOf(k, yield[k])
		c.emitter.Emit(ctx, actor, event.ActionTake, from, it)
		c.emitter.Emit(ctx, actor, event.ActionGive, network, it)
	}

	c.session.DropDeconSnapshot(n.Target)
}

// HandleRobotBuild books the stack a robot used to place an entity and
// registers the new entity on the watchlist with an empty baseline, so
// the fills that follow construction are observed.
func (c *Composer) HandleRobotBuild(ctx context.Context, n RobotBuild) {
	c.session.Observe(n.Tick)
	if n.Target == nil || n.Stack == nil {
		c.drop("robot_build", "missing target or stack")
		return
	}
	actor := robotActor(n.Robot)

	it := event.ItemOf(item.NewKey(n.Stack.Name, n.Stack.Quality), n.Stack.Count)
	c.emitter.Emit(ctx, actor, event.ActionTake, event.LogisticNetwork(), it)
	c.emitter.Emit(ctx, actor, event.ActionGive,
		event.EntityAt(n.Target.TypeTag(), n.Target.ID(), "building"), it)

	if c.watch != nil {
		c.watch.Add(n.Target, inventory.Composite{}, c.session.Tick())
	}
}

// emitContents books every item currently inside an entity as a TAKE
// from its slot (or from the ground, for loose stacks) plus a GIVE to
// the destination.
func (c *Composer) emitContents(ctx context.Context, actor event.Actor, e inventory.Entity, dest event.Location) {
	ground := e.TypeTag() == inventory.TypeGroundItem
	comp := inventory.TakeComposite(e)

	slots := make([]string, 0, len(comp))
	for slot := range comp {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	for _, slot := range slots {
		from := event.EntityAt(e.TypeTag(), e.ID(), slot)
		if ground {
			from = event.Ground()
		}
		snap := comp[slot]
		for _, k := range snap.Keys() {
			it := event.ItemOf(k, snap[k])
			c.emitter.Emit(ctx, actor, event.ActionTake, from, it)
			c.emitter.Emit(ctx, actor, event.ActionGive, dest, it)
		}
	}
}

// refreshOpen re-captures the open container's slots when the player has
// one open, keeping the resolver's baselines current after bulk moves.
func (c *Composer) refreshOpen(st *session.ActorState, p PlayerRef) {
	if st.Open == nil || p.Open == nil || !p.Open.Valid() || p.Open.ID() != st.Open.EntityID {
		return
	}
	for _, slot := range st.Open.SlotOrder {
		st.Open.Snaps[slot] = inventory.Take(p.Open.Slot(slot))
	}
}

// stateFor returns the actor's observation state, creating it with a
// fresh main-inventory baseline on first sight.
func (c *Composer) stateFor(p PlayerRef) *session.ActorState {
	return c.session.ActorOrCreate(p.ID, inventory.Take(p.Main))
}

// drop discards a malformed notification without emitting anything.
func (c *Composer) drop(kind, reason string) {
	DroppedNotifications.WithLabelValues(kind).Inc()
	c.logger.Warn("dropping malformed notification", "kind", kind, "reason", reason)
}

func playerActor(p PlayerRef) event.Actor {
	return event.Actor{Kind: event.ActorPlayerHand, ID: p.ID, Name: p.Name}
}

func robotActor(r RobotRef) event.Actor {
	return event.Actor{Kind: event.ActorLogisticRobot, ID: r.ID, Name: r.Name}
}

func firstSlot(e inventory.Entity) string {
	if names := e.SlotNames(); len(names) > 0 {
		return names[0]
	}
	return "main"
}
