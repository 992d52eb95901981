// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

// Package store provides the durable Postgres backing for the event log.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/cargolog/cargolog/internal/event"
)

// pool is the subset of pgxpool.Pool the store uses, satisfied by
// pgxmock in tests.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements event.Store on PostgreSQL. Log position is
// the row's rank in insertion order, so indices stay contiguous and
// 1-based across restarts.
type PostgresStore struct {
	pool pool
}

// NewPostgresStore connects to the database, retrying with exponential
// backoff so the service tolerates a database that is still starting.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	var p *pgxpool.Pool
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		p, err = pgxpool.New(ctx, dsn)
		if err != nil {
			return retry.RetryableError(err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	return &PostgresStore{pool: p}, nil
}

// NewPostgresStoreWithPool wraps an existing pool, used by tests.
func NewPostgresStoreWithPool(p pool) *PostgresStore {
	return &PostgresStore{pool: p}
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Append persists an event. Re-appending an event ID already stored is
// an idempotent no-op, so replaying a journal over an existing log does
// not duplicate rows.
func (s *PostgresStore) Append(ctx context.Context, e event.Event) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO events (id, tick, actor_kind, actor_id, actor_name, action, loc_kind, loc_tag, loc_id, loc_slot, item_name, item_count, item_quality)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID.String(),
		e.Tick,
		e.Actor.Kind.String(),
		e.Actor.ID,
		e.Actor.Name,
		e.Action.String(),
		e.Location.Kind.String(),
		e.Location.Tag,
		e.Location.ID,
		e.Location.Slot,
		e.Item.Name,
		e.Item.Count,
		e.Item.Quality,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil
		}
		return oops.Code("STORE_APPEND_FAILED").With("event_id", e.ID.String()).Wrap(err)
	}
	return nil
}

const selectColumns = `id, tick, actor_kind, actor_id, actor_name, action, loc_kind, loc_tag, loc_id, loc_slot, item_name, item_count, item_quality`

// Events returns all events at or after the 1-based index from, in
// insertion order.
func (s *PostgresStore) Events(ctx context.Context, from int) ([]event.Event, error) {
	if from < 1 {
		from = 1
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM events ORDER BY seq OFFSET $1`,
		from-1)
	if err != nil {
		return nil, oops.Code("STORE_QUERY_FAILED").With("from", from).Wrap(err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("STORE_QUERY_FAILED").With("operation", "iterate rows").Wrap(err)
	}
	return events, nil
}

// Count returns the number of stored events.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, oops.Code("STORE_QUERY_FAILED").With("operation", "count").Wrap(err)
	}
	return n, nil
}

// Clear truncates the event log, restarting positions at 1.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE events RESTART IDENTITY`); err != nil {
		return oops.Code("STORE_CLEAR_FAILED").Wrap(err)
	}
	return nil
}

func scanEvent(rows pgx.Rows) (event.Event, error) {
	var (
		e                             event.Event
		idStr, kindStr, action, lKind string
	)
	if err := rows.Scan(&idStr, &e.Tick, &kindStr, &e.Actor.ID, &e.Actor.Name, &action,
		&lKind, &e.Location.Tag, &e.Location.ID, &e.Location.Slot,
		&e.Item.Name, &e.Item.Count, &e.Item.Quality); err != nil {
		return event.Event{}, oops.Code("STORE_SCAN_FAILED").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return event.Event{}, oops.Code("STORE_SCAN_FAILED").With("event_id", idStr).Wrap(err)
	}
	e.ID = id

	if err := e.Actor.Kind.UnmarshalText([]byte(kindStr)); err != nil {
		return event.Event{}, oops.Code("STORE_SCAN_FAILED").With("actor_kind", kindStr).Wrap(err)
	}
	if err := e.Action.UnmarshalText([]byte(action)); err != nil {
		return event.Event{}, oops.Code("STORE_SCAN_FAILED").With("action", action).Wrap(err)
	}
	if err := e.Location.Kind.UnmarshalText([]byte(lKind)); err != nil {
		return event.Event{}, oops.Code("STORE_SCAN_FAILED").With("loc_kind", lKind).Wrap(err)
	}
	return e, nil
}
