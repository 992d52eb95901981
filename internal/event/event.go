// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

// Package event defines the canonical logistics event record and the
// machinery that stamps, persists, and fans it out to subscribers.
package event

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/cargolog/cargolog/internal/item"
)

// Action is the kind of movement an event describes.
type Action uint8

const (
	// ActionTake removes an item from a location into an actor's possession.
	ActionTake Action = iota
	// ActionGive deposits an item from an actor into a location.
	ActionGive
	// ActionMake denotes a production transformation at a crafting location.
	ActionMake
)

func (a Action) String() string {
	switch a {
	case ActionTake:
		return "take"
	case ActionGive:
		return "give"
	case ActionMake:
		return "make"
	default:
		return "unknown"
	}
}

// MarshalText renders the action for JSON feeds.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses an action from its feed rendering.
func (a *Action) UnmarshalText(text []byte) error {
	switch string(text) {
	case "take":
		*a = ActionTake
	case "give":
		*a = ActionGive
	case "make":
		*a = ActionMake
	default:
		return fmt.Errorf("unknown action %q", text)
	}
	return nil
}

// ActorKind identifies what type of hand moved the item.
type ActorKind uint8

const (
	// ActorPlayerHand is a player's cursor hand.
	ActorPlayerHand ActorKind = iota
	// ActorLogisticRobot is an automated logistics robot.
	ActorLogisticRobot
)

func (k ActorKind) String() string {
	switch k {
	case ActorPlayerHand:
		return "player-hand"
	case ActorLogisticRobot:
		return "logistic-robot"
	default:
		return "unknown"
	}
}

// MarshalText renders the actor kind for JSON feeds.
func (k ActorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses an actor kind from its feed rendering.
func (k *ActorKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player-hand":
		*k = ActorPlayerHand
	case "logistic-robot":
		*k = ActorLogisticRobot
	default:
		return fmt.Errorf("unknown actor kind %q", text)
	}
	return nil
}

// Actor is who or what performed a movement.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   int64     `json:"id"`
	Name string    `json:"name"`
}

// LocationKind tags the unrelated places an item can move through.
type LocationKind uint8

const (
	// LocEntity is a slot of an addressable world entity.
	LocEntity LocationKind = iota
	// LocPlayerInventory is a player's main inventory.
	LocPlayerInventory
	// LocGround is loose items on the ground.
	LocGround
	// LocLogisticNetwork is the robotic logistics network.
	LocLogisticNetwork
	// LocCrafting is the virtual crafting bench of a player.
	LocCrafting
	// LocWorld is the unobserved fallback when no tracked container
	// explains an observed change.
	LocWorld
)

func (k LocationKind) String() string {
	switch k {
	case LocEntity:
		return "entity"
	case LocPlayerInventory:
		return "player-inventory"
	case LocGround:
		return "ground"
	case LocLogisticNetwork:
		return "logistic-network"
	case LocCrafting:
		return "crafting"
	case LocWorld:
		return "world"
	default:
		return "unknown"
	}
}

// MarshalText renders the location kind for JSON feeds.
func (k LocationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a location kind from its feed rendering.
func (k *LocationKind) UnmarshalText(text []byte) error {
	for _, candidate := range []LocationKind{LocEntity, LocPlayerInventory, LocGround, LocLogisticNetwork, LocCrafting, LocWorld} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown location kind %q", text)
}

// Location is a tagged union over the places an item can come from or go
// to. Tag is the entity type tag and is set only for LocEntity. ID 0 on
// ground/world locations denotes "unobserved/uncontained".
type Location struct {
	Kind LocationKind `json:"kind"`
	Tag  string       `json:"tag,omitempty"`
	ID   int64        `json:"id"`
	Slot string       `json:"slot,omitempty"`
}

// EntityAt locates a named slot of a world entity.
func EntityAt(tag string, id int64, slot string) Location {
	return Location{Kind: LocEntity, Tag: tag, ID: id, Slot: slot}
}

// PlayerInventory locates a player's main inventory.
func PlayerInventory(playerID int64) Location {
	return Location{Kind: LocPlayerInventory, ID: playerID, Slot: "main"}
}

// Ground locates loose items on the ground.
func Ground() Location {
	return Location{Kind: LocGround}
}

// LogisticNetwork locates the robotic logistics network.
func LogisticNetwork() Location {
	return Location{Kind: LocLogisticNetwork}
}

// Crafting locates a player's virtual crafting bench.
func Crafting(playerID int64) Location {
	return Location{Kind: LocCrafting, ID: playerID}
}

// World is the unobserved fallback location.
func World() Location {
	return Location{Kind: LocWorld}
}

// Item is a quantity of one item kind as carried by an event.
type Item struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Quality string `json:"quality"`
}

// ItemOf builds an event item from a structured key and a count.
func ItemOf(k item.Key, count int) Item {
	return Item{Name: k.Name, Count: count, Quality: k.Quality}
}

// Key returns the structured key of the event item.
func (i Item) Key() item.Key {
	return item.NewKey(i.Name, i.Quality)
}

// Event is one inferred logistics movement. Events are immutable once
// emitted and live in an append-only, 1-based log. Tick is monotonic
// non-decreasing but not unique: several events may share a tick.
type Event struct {
	ID       ulid.ULID `json:"id"`
	Tick     int64     `json:"tick"`
	Actor    Actor     `json:"actor"`
	Action   Action    `json:"action"`
	Location Location  `json:"location"`
	Item     Item      `json:"item"`
}
