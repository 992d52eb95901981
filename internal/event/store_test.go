// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package event_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargolog/cargolog/internal/event"
	"github.com/cargolog/cargolog/internal/item"
)

func storedEvent(tick int64, name string, count int) event.Event {
	return event.Event{
		ID:       event.NewULID(),
		Tick:     tick,
		Actor:    event.Actor{Kind: event.ActorPlayerHand, ID: 1, Name: "alice"},
		Action:   event.ActionTake,
		Location: event.PlayerInventory(1),
		Item:     event.ItemOf(item.NewKey(name, ""), count),
	}
}

func TestMemoryStoreAppendAndEvents(t *testing.T) {
	ctx := context.Background()
	store := event.NewMemoryStore()

	first := storedEvent(10, "iron-plate", 5)
	second := storedEvent(11, "copper-plate", 3)
	third := storedEvent(12, "iron-gear-wheel", 1)
	for _, e := range []event.Event{first, second, third} {
		require.NoError(t, store.Append(ctx, e))
	}

	all, err := store.Events(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, third.ID, all[2].ID)

	tail, err := store.Events(ctx, 3)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, third.ID, tail[0].ID)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMemoryStoreFromBelowOne(t *testing.T) {
	ctx := context.Background()
	store := event.NewMemoryStore()
	require.NoError(t, store.Append(ctx, storedEvent(1, "coal", 2)))

	for _, from := range []int{0, -5} {
		got, err := store.Events(ctx, from)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
}

func TestMemoryStoreFromPastEnd(t *testing.T) {
	ctx := context.Background()
	store := event.NewMemoryStore()
	require.NoError(t, store.Append(ctx, storedEvent(1, "coal", 2)))

	got, err := store.Events(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := event.NewMemoryStore()
	require.NoError(t, store.Append(ctx, storedEvent(1, "coal", 2)))
	require.NoError(t, store.Clear(ctx))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Positions restart at 1 after a clear.
	fresh := storedEvent(2, "stone", 7)
	require.NoError(t, store.Append(ctx, fresh))
	got, err := store.Events(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fresh.ID, got[0].ID)
}
