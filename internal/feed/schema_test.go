// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package feed_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargolog/cargolog/internal/event"
	"github.com/cargolog/cargolog/internal/feed"
	"github.com/cargolog/cargolog/internal/item"
)

func TestGenerateSchema(t *testing.T) {
	data, err := feed.GenerateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, feed.SchemaID(), schema["$id"])
	assert.Equal(t, "CargoLog Logistics Event", schema["title"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"id", "tick", "actor", "action", "location", "item"} {
		assert.Contains(t, props, field)
	}
}

func TestValidateEmittedEvent(t *testing.T) {
	e := event.Event{
		ID:       event.NewULID(),
		Tick:     42,
		Actor:    event.Actor{Kind: event.ActorPlayerHand, ID: 1, Name: "alice"},
		Action:   event.ActionTake,
		Location: event.EntityAt("iron-chest", 9, "main"),
		Item:     event.ItemOf(item.NewKey("iron-plate", ""), 5),
	}
	data, err := json.Marshal(e)
	require.NoError(t, err)

	assert.NoError(t, feed.ValidateEvent(data))
}

func TestValidateRejectsBadAction(t *testing.T) {
	e := event.Event{
		ID:       event.NewULID(),
		Actor:    event.Actor{Kind: event.ActorPlayerHand, ID: 1},
		Action:   event.ActionTake,
		Location: event.Ground(),
		Item:     event.ItemOf(item.NewKey("coal", ""), 1),
	}
	data, err := json.Marshal(e)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	doc["action"] = "teleport"
	bad, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.Error(t, feed.ValidateEvent(bad))
}

func TestValidateRejectsGarbage(t *testing.T) {
	assert.Error(t, feed.ValidateEvent([]byte("{not json")))
}
