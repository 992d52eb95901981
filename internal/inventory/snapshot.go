// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package inventory

import (
	"github.com/cargolog/cargolog/internal/item"
)

// Snapshot maps item keys to non-negative counts for one container at an
// instant. The empty map is the snapshot of a missing or empty container.
type Snapshot map[item.Key]int

// Composite maps slot names to per-slot snapshots for one entity.
type Composite map[string]Snapshot

// Take captures a container's current contents. A nil or invalid
// container yields an empty snapshot, never an error. Duplicate lines
// for the same item key are summed.
func Take(c Container) Snapshot {
	snap := Snapshot{}
	if c == nil || !c.Valid() {
		return snap
	}
	for _, line := range c.Lines() {
		if line.Count <= 0 {
			continue
		}
		snap[item.NewKey(line.Name, line.Quality)] += line.Count
	}
	return snap
}

// TakeComposite captures every slot of an entity. Entities may expose
// the same underlying container under several slot names; each container
// contributes exactly once, credited to the first slot naming it.
func TakeComposite(e Entity) Composite {
	comp := Composite{}
	if e == nil || !e.Valid() {
		return comp
	}
	seen := map[Container]bool{}
	for _, name := range e.SlotNames() {
		c := e.Slot(name)
		if c == nil || seen[c] {
			continue
		}
		seen[c] = true
		comp[name] = Take(c)
	}
	return comp
}

// Keys returns the snapshot's item keys in deterministic order.
func (s Snapshot) Keys() []item.Key {
	keys := make([]item.Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, n := range s {
		out[k] = n
	}
	return out
}

// Clone returns a deep copy of the composite snapshot.
func (c Composite) Clone() Composite {
	out := make(Composite, len(c))
	for slot, snap := range c {
		out[slot] = snap.Clone()
	}
	return out
}
