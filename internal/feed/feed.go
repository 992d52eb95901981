// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

// Package feed is the consumer-facing surface of the event stream: the
// pull query interface, the subscription handshake, and the feed schema.
//
// Consumers discover the feed by asking a well-known capability name for
// the current feed identifier, then subscribe against that identifier.
// The identifier rotates whenever the producing session resets, so a
// consumer holding a stale identifier gets an explicit error and must
// redo the handshake.
package feed

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/cargolog/cargolog/internal/event"
	"github.com/cargolog/cargolog/internal/session"
)

// Version is the constant schema version of the event feed.
const Version = 1

// DefaultCapability is the well-known capability name consumers query
// during the handshake.
const DefaultCapability = "cargolog.events"

// Service exposes the event feed to consumers.
type Service struct {
	capability  string
	store       event.Store
	broadcaster *event.Broadcaster
	session     *session.Session
	logger      *slog.Logger
}

// NewService creates the feed surface over a store, broadcaster, and
// session. An empty capability falls back to DefaultCapability.
func NewService(capability string, store event.Store, broadcaster *event.Broadcaster, sess *session.Session, logger *slog.Logger) *Service {
	if capability == "" {
		capability = DefaultCapability
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		capability:  capability,
		store:       store,
		broadcaster: broadcaster,
		session:     sess,
		logger:      logger,
	}
}

// Version returns the feed schema version.
func (s *Service) Version() int { return Version }

// Capability returns the capability name this feed answers to.
func (s *Service) Capability() string { return s.capability }

// Handshake resolves a capability name to the current feed identifier.
func (s *Service) Handshake(capability string) (ulid.ULID, error) {
	if capability != s.capability {
		return ulid.ULID{}, oops.Code("FEED_UNKNOWN_CAPABILITY").
			With("capability", capability).
			Errorf("no feed registered under capability")
	}
	return s.session.FeedID(), nil
}

// Subscribe registers a subscriber against a feed identifier obtained
// from Handshake. Re-subscribing under the same subscriber ID replaces
// the previous subscription, so retrying the handshake after a session
// restart never causes duplicate delivery.
func (s *Service) Subscribe(feedID ulid.ULID, subscriberID string, opts event.SubscribeOptions) (<-chan event.Event, error) {
	if feedID != s.session.FeedID() {
		return nil, oops.Code("FEED_STALE_ID").
			With("feed_id", feedID.String()).
			Errorf("feed identifier is no longer current; redo the handshake")
	}
	ch, err := s.broadcaster.Subscribe(subscriberID, opts)
	if err != nil {
		return nil, err
	}
	s.logger.Info("subscriber registered", "subscriber", subscriberID, "feed_id", feedID.String())
	return ch, nil
}

// Unsubscribe removes a subscriber.
func (s *Service) Unsubscribe(subscriberID string) {
	s.broadcaster.Unsubscribe(subscriberID)
}

// Events returns all events at or after the 1-based index from.
func (s *Service) Events(ctx context.Context, from int) ([]event.Event, error) {
	events, err := s.store.Events(ctx, from)
	if err != nil {
		return nil, oops.Code("FEED_QUERY_FAILED").With("from", from).Wrap(err)
	}
	return events, nil
}

// Clear truncates the durable event log. This is the only way events
// are ever deleted.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return oops.Code("FEED_CLEAR_FAILED").Wrap(err)
	}
	s.logger.Info("event log cleared")
	return nil
}

// InvalidateSubscriptions drops every live subscription. Called when the
// producing session resets: prior feed identifiers stop working and
// consumers must handshake again.
func (s *Service) InvalidateSubscriptions() {
	s.broadcaster.Reset()
}
