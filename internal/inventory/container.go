// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

// Package inventory provides point-in-time inventory snapshots and the
// signed deltas between them. The host world is reached only through the
// Container and Entity interfaces so the engine can be driven by a live
// simulation, a replay journal, or test fixtures alike.
package inventory

// Line is one raw inventory entry as reported by the host. A container
// may report several lines for the same logical item; snapshots sum them.
type Line struct {
	Name    string
	Quality string
	Count   int
}

// Container is a single readable inventory. Implementations must be
// comparable values: composite snapshots de-duplicate aliased slots by
// comparing Container identity.
type Container interface {
	// Valid reports whether the container still exists in the world.
	Valid() bool

	// Lines returns the raw contents. Order and duplication are
	// host-defined and carry no meaning.
	Lines() []Line
}

// Position locates an entity in the world, used as an identity fallback
// for entities without a stable unit ID.
type Position struct {
	X float64
	Y float64
}

// TypeGroundItem is the type tag of loose item stacks lying on the
// ground. They get special treatment during mining: their contents are
// booked against the ground location rather than an entity slot.
const TypeGroundItem = "item-entity"

// Entity is an addressable world object exposing one or more named
// inventory roles (slots).
type Entity interface {
	// ID returns the entity's stable unit ID, or 0 if it has none.
	ID() int64

	// TypeTag names the entity's kind, e.g. "iron-chest" or "assembler".
	TypeTag() string

	// Valid reports whether the entity still exists.
	Valid() bool

	// Pos returns the entity's world position.
	Pos() Position

	// SlotNames returns the entity's inventory roles in registration
	// order. The order is significant: it is the resolver's tie-break
	// order and the "first available slot" for quick transfers.
	SlotNames() []string

	// Slot returns the container backing a named role, or nil if the
	// role is unknown.
	Slot(name string) Container
}
