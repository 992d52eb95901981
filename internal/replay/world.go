// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

// Package replay drives the inference engine from recorded input: a
// YAML definition of the initial world plus a JSONL journal of raw
// notifications and world mutations. It stands in for the live host
// simulation in the run command and in end-to-end tests.
package replay

import (
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/cargolog/cargolog/internal/compose"
	"github.com/cargolog/cargolog/internal/inventory"
)

// StackDef is one item stack in world definitions and journal records.
type StackDef struct {
	Name    string `yaml:"name" json:"name"`
	Quality string `yaml:"quality" json:"quality"`
	Count   int    `yaml:"count" json:"count"`
}

// SlotDef defines one named inventory slot and its initial contents.
type SlotDef struct {
	Name  string     `yaml:"name" json:"name"`
	Items []StackDef `yaml:"items" json:"items"`
}

// EntityDef defines one world entity.
type EntityDef struct {
	ID  int64  `yaml:"id" json:"id"`
	Tag string `yaml:"tag" json:"tag"`
	Pos struct {
		X float64 `yaml:"x" json:"x"`
		Y float64 `yaml:"y" json:"y"`
	} `yaml:"pos" json:"pos"`
	Slots []SlotDef `yaml:"slots" json:"slots"`
}

// PlayerDef defines one player and their main inventory.
type PlayerDef struct {
	ID   int64      `yaml:"id" json:"id"`
	Name string     `yaml:"name" json:"name"`
	Main []StackDef `yaml:"main" json:"main"`
}

// RobotDef defines one logistics robot.
type RobotDef struct {
	ID   int64  `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// WorldDef is the YAML document describing the initial world.
type WorldDef struct {
	Players  []PlayerDef `yaml:"players"`
	Robots   []RobotDef  `yaml:"robots"`
	Entities []EntityDef `yaml:"entities"`
}

// Container is a scripted in-memory inventory.
type Container struct {
	invalid bool
	lines   []inventory.Line
}

// Valid implements inventory.Container.
func (c *Container) Valid() bool { return !c.invalid }

// Lines implements inventory.Container.
func (c *Container) Lines() []inventory.Line {
	out := make([]inventory.Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Adjust adds n (possibly negative) to the named item.
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

func newContainer(items []StackDef) *Container {
	c := &Container{}
	for _, s := range items {
		c.Adjust(s.Name, s.Quality, s.Count)
	}
	return c
}

// Entity is a scripted in-memory world entity.
type Entity struct {
	def       EntityDef
	invalid   bool
	slotOrder []string
	slots     map[string]*Container
}

func newEntity(def EntityDef) *Entity {
	e := &Entity{def: def, slots: map[string]*Container{}}
	for _, slot := range def.Slots {
		e.slotOrder = append(e.slotOrder, slot.Name)
		e.slots[slot.Name] = newContainer(slot.Items)
	}
	return e
}

// ID implements inventory.Entity.
func (e *Entity) ID() int64 { return e.def.ID }

// TypeTag implements inventory.Entity.
func (e *Entity) TypeTag() string { return e.def.Tag }

// Valid implements inventory.Entity.
func (e *Entity) Valid() bool { return !e.invalid }

// Pos implements inventory.Entity.
func (e *Entity) Pos() inventory.Position {
	return inventory.Position{X: e.def.Pos.X, Y: e.def.Pos.Y}
}

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

// Player is a scripted player: main inventory, cursor hand, and the
// entity currently open, if any.
type Player struct {
	ID   int64
	Name string
	Main *Container
	Hand *inventory.Line
	Open *Entity
}

// World is the scripted world state mutated by journal records.
type World struct {
	players  map[int64]*Player
	robots   map[int64]compose.RobotRef
	entities map[int64]*Entity
}

// NewWorld builds a world from its definition.
func NewWorld(def WorldDef) *World {
	w := &World{
		players:  map[int64]*Player{},
		robots:   map[int64]compose.RobotRef{},
		entities: map[int64]*Entity{},
	}
	for _, p := range def.Players {
		w.players[p.ID] = &Player{ID: p.ID, Name: p.Name, Main: newContainer(p.Main)}
	}
	for _, r := range def.Robots {
		w.robots[r.ID] = compose.RobotRef{ID: r.ID, Name: r.Name}
	}
	for _, e := range def.Entities {
		w.entities[e.ID] = newEntity(e)
	}
	return w
}

// LoadWorld parses a YAML world definition.
func LoadWorld(data []byte) (*World, error) {
	var def WorldDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, oops.Code("WORLD_INVALID").Wrap(err)
	}
	return NewWorld(def), nil
}

// Player returns a scripted player, or an error for unknown IDs.
func (w *World) Player(id int64) (*Player, error) {
	p, ok := w.players[id]
	if !ok {
		return nil, oops.Code("WORLD_UNKNOWN_PLAYER").With("player", id).Errorf("player not defined")
	}
	return p, nil
}

// Entity returns a scripted entity, or an error for unknown IDs.
func (w *World) Entity(id int64) (*Entity, error) {
	e, ok := w.entities[id]
	if !ok {
		return nil, oops.Code("WORLD_UNKNOWN_ENTITY").With("entity", id).Errorf("entity not defined")
	}
	return e, nil
}

// Robot returns a scripted robot, or an error for unknown IDs.
func (w *World) Robot(id int64) (compose.RobotRef, error) {
	r, ok := w.robots[id]
	if !ok {
		return compose.RobotRef{}, oops.Code("WORLD_UNKNOWN_ROBOT").With("robot", id).Errorf("robot not defined")
	}
	return r, nil
}

// Ref assembles the live compose.PlayerRef for a player.
func (w *World) Ref(p *Player) compose.PlayerRef {
	ref := compose.PlayerRef{
		ID:   p.ID,
		Name: p.Name,
		Main: p.Main,
		Hand: p.Hand,
	}
	if p.Open != nil {
		ref.Open = p.Open
	}
	return ref
}
