// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package compose

import (
	"github.com/cargolog/cargolog/internal/inventory"
)

// PlayerRef carries the live state of a player at notification time.
// Main and Open are read lazily: snapshots are captured only when a
// handler needs them.
type PlayerRef struct {
	ID   int64
	Name string

	// Main is the player's main inventory.
	Main inventory.Container

	// Hand is the player's cursor stack, nil when the hand is empty.
	Hand *inventory.Line

	// Open is the entity the player currently has open, nil when none.
	Open inventory.Entity
}

// RobotRef identifies a logistics robot.
type RobotRef struct {
	ID   int64
	Name string
}

// Ingredient is one recipe input. Quality defaults to normal.
type Ingredient struct {
	Name    string
	Quality string
	Count   int
}

// Recipe names a craft and its inputs.
type Recipe struct {
	Name        string
	Ingredients []Ingredient
}

// PlayerJoined announces an actor so its inventory baseline can be
// captured before any movement happens.
type PlayerJoined struct {
	Tick   int64
	Player PlayerRef
}

// HandChange reports that a player's cursor stack changed; the new hand
// state is read from Player.Hand and compared against the stored one.
type HandChange struct {
	Tick   int64
	Player PlayerRef
}

// ContainerOpened reports that a player opened an entity's inventory UI.
type ContainerOpened struct {
	Tick   int64
	Player PlayerRef
	Target inventory.Entity
}

// ContainerClosed reports that a player closed the open container.
type ContainerClosed struct {
	Tick   int64
	Player PlayerRef
}

// QuickTransfer reports a bulk transfer between the player inventory and
// a container. FromPlayer is the transfer direction.
type QuickTransfer struct {
	Tick       int64
	Player     PlayerRef
	Target     inventory.Entity
	FromPlayer bool
}

// GroundDrop reports a stack dropped on the ground.
type GroundDrop struct {
	Tick   int64
	Player PlayerRef
	Stack  *inventory.Line
}

// GroundPickup reports a stack picked up from the ground.
type GroundPickup struct {
	Tick   int64
	Player PlayerRef
	Stack  *inventory.Line
}

// Craft reports a completed manual craft.
type Craft struct {
	Tick   int64
	Player PlayerRef
	Recipe *Recipe

	// Output is the crafted stack; ingredient quantities scale with its
	// count.
	Output *inventory.Line
}

// PreMine reports that a player is about to mine an entity, while its
// contents are still observable.
type PreMine struct {
	Tick   int64
	Player PlayerRef
	Target inventory.Entity
}

// PostMine reports the yield buffer of a finished player mine. Target
// may no longer be valid; its identity fields are still readable.
type PostMine struct {
	Tick   int64
	Player PlayerRef
	Target inventory.Entity
	Buffer inventory.Container
}

// MarkDeconstruction reports that an entity was marked for automated
// deconstruction; its contents are snapshotted for later comparison.
type MarkDeconstruction struct {
	Tick   int64
	Target inventory.Entity
}

// RobotPreMine reports that a robot is about to mine an entity.
type RobotPreMine struct {
	Tick   int64
	Robot  RobotRef
	Target inventory.Entity
}

// RobotPostMine reports the yield buffer of a finished robot mine.
type RobotPostMine struct {
	Tick   int64
	Robot  RobotRef
	Target inventory.Entity
	Buffer inventory.Container
}

// RobotBuild reports that a robot placed a new entity.
type RobotBuild struct {
	Tick   int64
	Robot  RobotRef
	Target inventory.Entity

	// Stack is the item stack consumed to build the entity.
	Stack *inventory.Line
}
