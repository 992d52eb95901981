// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

// Package inventorytest provides mutable in-memory containers and
// entities for exercising the inference engine without a host world.
package inventorytest

import (
	"github.com/cargolog/cargolog/internal/inventory"
)

// Container is a mutable in-memory inventory.Container.
type Container struct {
	Invalid bool
	lines   []inventory.Line
}

// NewContainer creates a container holding the given lines.
func NewContainer(lines ...inventory.Line) *Container {
	return &Container{lines: lines}
}

// Valid implements inventory.Container.
func (c *Container) Valid() bool { return !c.Invalid }

// Lines implements inventory.Container.
func (c *Container) Lines() []inventory.Line {
	out := make([]inventory.Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Set replaces the container contents.
func (c *Container) Set(lines ...inventory.Line) {
	c.lines = lines
}

// Adjust adds n (possibly negative) to the named item, appending a new
// line if none matches. Lines that reach zero or below are removed.
func (c *Container) Adjust(name, quality string, n int) {
	if quality == "" {
		quality = "normal"
	}
	for i := range c.lines {
		if c.lines[i].Name == name && c.lines[i].Quality == quality {
			c.lines[i].Count += n
			if c.lines[i].Count <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			}
			return
		}
	}
	if n > 0 {
		c.lines = append(c.lines, inventory.Line{Name: name, Quality: quality, Count: n})
	}
}

// Entity is a mutable in-memory inventory.Entity.
type Entity struct {
	Unit     int64
	Tag      string
	Invalid  bool
	Position inventory.Position

	slotOrder []string
	slots     map[string]*Container
}

// NewEntity creates an entity with no slots.
func NewEntity(id int64, tag string) *Entity {
	return &Entity{Unit: id, Tag: tag, slots: map[string]*Container{}}
}

// AddSlot registers a named slot backed by the given container.
// Registration order is preserved. The same container may back several
// names to model aliased inventories.
func (e *Entity) AddSlot(name string, c *Container) *Entity {
	if _, exists := e.slots[name]; !exists {
		e.slotOrder = append(e.slotOrder, name)
	}
	e.slots[name] = c
	return e
}

// ID implements inventory.Entity.
func (e *Entity) ID() int64 { return e.Unit }

// TypeTag implements inventory.Entity.
func (e *Entity) TypeTag() string { return e.Tag }

// Valid implements inventory.Entity.
func (e *Entity) Valid() bool { return !e.Invalid }

// Pos implements inventory.Entity.
func (e *Entity) Pos() inventory.Position { return e.Position }

// SlotNames implements inventory.Entity.
func (e *Entity) SlotNames() []string {
	out := make([]string, len(e.slotOrder))
	copy(out, e.slotOrder)
	return out
}

// Slot implements inventory.Entity.
func (e *Entity) Slot(name string) inventory.Container {
	c, ok := e.slots[name]
	if !ok {
		return nil
	}
	return c
}

// Slots returns the mutable container behind a slot name for test setup.
func (e *Entity) Slots(name string) *Container { return e.slots[name] }
