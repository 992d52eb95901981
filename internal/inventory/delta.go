// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package inventory

import (
	"sort"

	"github.com/cargolog/cargolog/internal/item"
)

// sortKeys orders item keys by name, then quality, for deterministic
// event emission.
func sortKeys(keys []item.Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Quality < keys[j].Quality
	})
}

// Delta maps item keys to signed count changes (new minus old). Keys
// with a zero change are omitted, so Diff(s, s) is always empty.
type Delta map[item.Key]int

// CompositeDelta maps slot names to per-slot deltas. Slots with no
// changes are omitted entirely.
type CompositeDelta map[string]Delta

// Diff computes new minus old over the union of both key sets. A key
// missing from one side counts as zero there.
func Diff(old, new Snapshot) Delta {
	d := Delta{}
	for k, n := range new {
		if diff := n - old[k]; diff != 0 {
			d[k] = diff
		}
	}
	for k, n := range old {
		if _, present := new[k]; !present && n != 0 {
			d[k] = -n
		}
	}
	return d
}

// Keys returns the delta's item keys in deterministic order.
func (d Delta) Keys() []item.Key {
	keys := make([]item.Key, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// DiffComposite applies Diff per slot over the union of both slot sets;
// a slot absent from one side diffs against the empty snapshot.
func DiffComposite(old, new Composite) CompositeDelta {
	cd := CompositeDelta{}
	for slot, snap := range new {
		if d := Diff(old[slot], snap); len(d) > 0 {
			cd[slot] = d
		}
	}
	for slot, snap := range old {
		if _, present := new[slot]; present {
			continue
		}
		if d := Diff(snap, nil); len(d) > 0 {
			cd[slot] = d
		}
	}
	return cd
}
