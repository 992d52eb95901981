// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package event_test

import (
	"context"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargolog/cargolog/internal/event"
	"github.com/cargolog/cargolog/internal/item"
)

type fixedClock int64

func (c fixedClock) Tick() int64 { return int64(c) }

type failingStore struct{}

func (failingStore) Append(context.Context, event.Event) error {
	return oops.Code("STORE_APPEND_FAILED").Errorf("disk on fire")
}
func (failingStore) Events(context.Context, int) ([]event.Event, error) { return nil, nil }
func (failingStore) Count(context.Context) (int, error)                 { return 0, nil }
func (failingStore) Clear(context.Context) error                        { return nil }

func TestEmitterStampsStoresAndBroadcasts(t *testing.T) {
	ctx := context.Background()
	store := event.NewMemoryStore()
	b := event.NewBroadcaster()
	ch, err := b.Subscribe("t", event.SubscribeOptions{})
	require.NoError(t, err)

	em := event.NewEmitter(store, b, fixedClock(42), nil)

	actor := event.Actor{Kind: event.ActorPlayerHand, ID: 7, Name: "alice"}
	it := event.ItemOf(item.NewKey("iron-plate", ""), 5)
	e := em.Emit(ctx, actor, event.ActionTake, event.PlayerInventory(7), it)

	assert.Equal(t, int64(42), e.Tick)
	assert.Equal(t, actor, e.Actor)
	assert.Equal(t, event.ActionTake, e.Action)
	assert.NotZero(t, e.ID)

	stored, err := store.Events(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, e.ID, stored[0].ID)

	assert.Equal(t, e.ID, (<-ch).ID)
}

func TestEmitterULIDsAreOrdered(t *testing.T) {
	ctx := context.Background()
	em := event.NewEmitter(event.NewMemoryStore(), nil, fixedClock(1), nil)

	actor := event.Actor{Kind: event.ActorPlayerHand, ID: 1}
	it := event.ItemOf(item.NewKey("coal", ""), 1)

	a := em.Emit(ctx, actor, event.ActionTake, event.Ground(), it)
	b := em.Emit(ctx, actor, event.ActionGive, event.PlayerInventory(1), it)
	assert.Equal(t, -1, a.ID.Compare(b.ID))
}

func TestEmitterAbsorbsAppendFailure(t *testing.T) {
	ctx := context.Background()
	b := event.NewBroadcaster()
	ch, err := b.Subscribe("t", event.SubscribeOptions{})
	require.NoError(t, err)

	em := event.NewEmitter(failingStore{}, b, fixedClock(9), nil)

	it := event.ItemOf(item.NewKey("coal", ""), 1)
	e := em.Emit(ctx, event.Actor{Kind: event.ActorLogisticRobot}, event.ActionGive, event.LogisticNetwork(), it)

	// The event is still stamped and delivered downstream.
	assert.Equal(t, int64(9), e.Tick)
	assert.Equal(t, e.ID, (<-ch).ID)
}
