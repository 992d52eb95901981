// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package event

import (
	"log/slog"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 100

// SubscribeOptions tunes one subscription.
type SubscribeOptions struct {
	// ItemFilter, when non-empty, is a glob pattern matched against the
	// event item name; non-matching events are not delivered.
	ItemFilter string
}

type subscriber struct {
	id     string
	ch     chan Event
	filter glob.Glob
}

// Broadcaster distributes emitted events to subscribers, each identified
// by a caller-chosen ID. Subscribing an ID that is already registered
// replaces the old subscription, so re-subscription never causes
// duplicate delivery.
type Broadcaster struct {
	mu    sync.RWMutex
	subs  map[string]*subscriber
	order []string
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: map[string]*subscriber{}}
}

// Subscribe registers a subscriber and returns its delivery channel.
// An existing subscription under the same ID is closed and replaced.
func (b *Broadcaster) Subscribe(id string, opts SubscribeOptions) (<-chan Event, error) {
	var filter glob.Glob
	if opts.ItemFilter != "" {
		g, err := glob.Compile(opts.ItemFilter)
		if err != nil {
			return nil, oops.Code("SUBSCRIBE_FILTER_INVALID").With("filter", opts.ItemFilter).Wrap(err)
		}
		filter = g
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, exists := b.subs[id]; exists {
		close(prev.ch)
	} else {
		b.order = append(b.order, id)
	}

	sub := &subscriber{
		id:     id,
		ch:     make(chan Event, subscriberBuffer),
		filter: filter,
	}
	b.subs[id] = sub
	return sub.ch, nil
}

// Unsubscribe removes a subscriber and closes its channel. Unknown IDs
// are a no-op.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, exists := b.subs[id]
	if !exists {
		return
	}
	delete(b.subs, id)
	for i, sid := range b.order {
		if sid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	close(sub.ch)
}

// Broadcast delivers an event to every subscriber, in subscription
// order, applying per-subscriber item filters.
func (b *Broadcaster) Broadcast(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, id := range b.order {
		sub := b.subs[id]
		if sub.filter != nil && !sub.filter.Match(e.Item.Name) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			// Known limitation: delivery is best-effort. A subscriber
			// that stops draining its channel misses events once its
			// buffer fills; the durable log remains the source of truth.
			slog.Warn("event dropped: subscriber buffer full",
				"subscriber", sub.id,
				"event_id", e.ID.String(),
				"action", e.Action.String(),
			)
		}
	}
}

// Reset drops every subscription, closing all channels. Used on session
// reset, which invalidates prior feed identifiers.
func (b *Broadcaster) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		close(sub.ch)
	}
	b.subs = map[string]*subscriber{}
	b.order = nil
}
