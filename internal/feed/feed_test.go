// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package feed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargolog/cargolog/internal/event"
	"github.com/cargolog/cargolog/internal/feed"
	"github.com/cargolog/cargolog/internal/item"
	"github.com/cargolog/cargolog/internal/session"
	"github.com/cargolog/cargolog/pkg/errutil"
)

type feedRig struct {
	sess    *session.Session
	store   *event.MemoryStore
	emitter *event.Emitter
	svc     *feed.Service
}

func newFeedRig(t *testing.T) *feedRig {
	t.Helper()
	sess := session.New(nil)
	store := event.NewMemoryStore()
	b := event.NewBroadcaster()
	return &feedRig{
		sess:    sess,
		store:   store,
		emitter: event.NewEmitter(store, b, sess, nil),
		svc:     feed.NewService("", store, b, sess, nil),
	}
}

func (r *feedRig) emit(ctx context.Context, name string, count int) event.Event {
	return r.emitter.Emit(ctx,
		event.Actor{Kind: event.ActorPlayerHand, ID: 1, Name: "alice"},
		event.ActionTake,
		event.PlayerInventory(1),
		event.ItemOf(item.NewKey(name, ""), count),
	)
}

func TestVersionIsConstant(t *testing.T) {
	r := newFeedRig(t)
	assert.Equal(t, 1, r.svc.Version())
}

func TestHandshakeResolvesCapability(t *testing.T) {
	r := newFeedRig(t)

	id, err := r.svc.Handshake(feed.DefaultCapability)
	require.NoError(t, err)
	assert.Equal(t, r.sess.FeedID(), id)

	// The handshake is stable until the session resets.
	again, err := r.svc.Handshake(feed.DefaultCapability)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestHandshakeUnknownCapability(t *testing.T) {
	r := newFeedRig(t)
	_, err := r.svc.Handshake("someone-else.events")
	errutil.AssertErrorCode(t, err, "FEED_UNKNOWN_CAPABILITY")
}

func TestSubscribeAndReceive(t *testing.T) {
	ctx := context.Background()
	r := newFeedRig(t)

	id, err := r.svc.Handshake(feed.DefaultCapability)
	require.NoError(t, err)
	ch, err := r.svc.Subscribe(id, "consumer-1", event.SubscribeOptions{})
	require.NoError(t, err)

	e := r.emit(ctx, "iron-plate", 5)
	assert.Equal(t, e.ID, (<-ch).ID)
}

func TestSubscribeStaleFeedID(t *testing.T) {
	r := newFeedRig(t)

	id, err := r.svc.Handshake(feed.DefaultCapability)
	require.NoError(t, err)

	r.sess.Reset()
	r.svc.InvalidateSubscriptions()

	_, err = r.svc.Subscribe(id, "consumer-1", event.SubscribeOptions{})
	errutil.AssertErrorCode(t, err, "FEED_STALE_ID")

	// A fresh handshake works again.
	fresh, err := r.svc.Handshake(feed.DefaultCapability)
	require.NoError(t, err)
	_, err = r.svc.Subscribe(fresh, "consumer-1", event.SubscribeOptions{})
	assert.NoError(t, err)
}

func TestResubscribeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := newFeedRig(t)

	id, err := r.svc.Handshake(feed.DefaultCapability)
	require.NoError(t, err)

	_, err = r.svc.Subscribe(id, "consumer-1", event.SubscribeOptions{})
	require.NoError(t, err)
	ch, err := r.svc.Subscribe(id, "consumer-1", event.SubscribeOptions{})
	require.NoError(t, err)

	r.emit(ctx, "coal", 1)
	// One subscription, one delivery.
	assert.Len(t, ch, 1)
}

func TestEventsAndClear(t *testing.T) {
	ctx := context.Background()
	r := newFeedRig(t)

	first := r.emit(ctx, "iron-plate", 5)
	second := r.emit(ctx, "copper-plate", 3)

	events, err := r.svc.Events(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ID)

	tail, err := r.svc.Events(ctx, 2)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, second.ID, tail[0].ID)

	require.NoError(t, r.svc.Clear(ctx))
	events, err = r.svc.Events(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, events)

	// Positions restart at 1 after a clear.
	third := r.emit(ctx, "stone", 2)
	events, err = r.svc.Events(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, third.ID, events[0].ID)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	r := newFeedRig(t)

	id, err := r.svc.Handshake(feed.DefaultCapability)
	require.NoError(t, err)
	ch, err := r.svc.Subscribe(id, "consumer-1", event.SubscribeOptions{})
	require.NoError(t, err)

	r.svc.Unsubscribe("consumer-1")
	_, open := <-ch
	assert.False(t, open)
}
