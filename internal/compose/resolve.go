// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package compose

import (
	"github.com/cargolog/cargolog/internal/event"
	"github.com/cargolog/cargolog/internal/inventory"
	"github.com/cargolog/cargolog/internal/item"
	"github.com/cargolog/cargolog/internal/session"
)

// Signs for resolver queries: the direction the item moved relative to
// the container being searched.
const (
	// signTakeSource searches for the container the item disappeared from.
	signTakeSource = -1
	// signGiveTarget searches for the container the item appeared in.
	signGiveTarget = 1
)

// resolve locates the external container that explains an observed hand
// change: the one whose contents moved opposite to the hand. The search
// order is fixed: main inventory first, then the open container's slots
// in registration order. On a match only the queried key's baseline is
// refreshed in the stored snapshot: a swap resolves two legs against the
// same container, and the second leg's delta must survive the first.
//
// This is a heuristic, not a proof of causality: two simultaneous
// unrelated changes of the same item key can be misattributed. The false
// return means no tracked container explains the change and the caller
// must book the full raw quantity against the unobserved world location.
func (c *Composer) resolve(p PlayerRef, st *session.ActorState, key item.Key, sign int) (event.Location, bool) {
	fresh := inventory.Take(p.Main)
	if matches(inventory.Diff(st.Main, fresh)[key], sign) {
		refreshKey(st.Main, key, fresh)
		return event.PlayerInventory(p.ID), true
	}

	if st.Open != nil && p.Open != nil && p.Open.Valid() && p.Open.ID() == st.Open.EntityID {
		for _, slot := range st.Open.SlotOrder {
			freshSlot := inventory.Take(p.Open.Slot(slot))
			if matches(inventory.Diff(st.Open.Snaps[slot], freshSlot)[key], sign) {
				refreshKey(st.Open.Snaps[slot], key, freshSlot)
				return event.EntityAt(st.Open.Tag, st.Open.EntityID, slot), true
			}
		}
	}

	event.UnresolvedLocations.Inc()
	return event.World(), false
}

// refreshKey copies a single key's count from the fresh snapshot into the
// stored baseline, dropping the entry when the item is gone.
func refreshKey(snap inventory.Snapshot, key item.Key, fresh inventory.Snapshot) {
	if n := fresh[key]; n > 0 {
		snap[key] = n
		return
	}
	delete(snap, key)
}

func matches(delta, sign int) bool {
	if sign < 0 {
		return delta < 0
	}
	return delta > 0
}
