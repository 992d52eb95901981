// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/cargolog/cargolog/internal/compose"
	"github.com/cargolog/cargolog/internal/config"
	"github.com/cargolog/cargolog/internal/event"
	"github.com/cargolog/cargolog/internal/feed"
	"github.com/cargolog/cargolog/internal/logging"
	"github.com/cargolog/cargolog/internal/observability"
	"github.com/cargolog/cargolog/internal/replay"
	"github.com/cargolog/cargolog/internal/session"
	"github.com/cargolog/cargolog/internal/store"
	"github.com/cargolog/cargolog/internal/watch"
)

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	var worldPath, journalPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a notification journal through the inference engine",
		Long: `Load a YAML world definition, replay a JSONL notification journal
through the inference engine, and append the inferred events to the
configured event log. A journal path of "-" reads from stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runReplay(cmd.Context(), cmd, cfg, worldPath, journalPath)
		},
	}

	cmd.Flags().StringVar(&worldPath, "world", "", "YAML world definition path (required)")
	cmd.Flags().StringVar(&journalPath, "journal", "-", `JSONL journal path ("-" for stdin)`)
	cmd.Flags().String("log-format", "json", "log format (json or text)")
	cmd.Flags().Int64("watch-interval", watch.DefaultScanInterval, "watchlist scan cadence in ticks")
	cmd.Flags().Int64("watch-quiescence", watch.DefaultQuiescence, "watchlist eviction window in ticks")
	cmd.Flags().String("database-url", "", "Postgres URL for the durable log (empty = in-memory)")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("feed-capability", "", "capability name the feed answers to")
	_ = cmd.MarkFlagRequired("world")

	return cmd
}

func runReplay(ctx context.Context, cmd *cobra.Command, cfg config.Config, worldPath, journalPath string) error {
	logging.SetDefault("cargolog", version, cfg.Log.Format)

	worldData, err := os.ReadFile(worldPath)
	if err != nil {
		return oops.Code("WORLD_READ_FAILED").With("path", worldPath).Wrap(err)
	}
	world, err := replay.LoadWorld(worldData)
	if err != nil {
		return err
	}

	var journal io.Reader = cmd.InOrStdin()
	if journalPath != "" && journalPath != "-" {
		f, err := os.Open(journalPath)
		if err != nil {
			return oops.Code("JOURNAL_READ_FAILED").With("path", journalPath).Wrap(err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				slog.Debug("error closing journal", "error", closeErr)
			}
		}()
		journal = f
	}

	var eventStore event.Store
	if cfg.Database.URL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pgStore.Close()
		eventStore = pgStore
		slog.Info("connected to database")
	} else {
		eventStore = event.NewMemoryStore()
		slog.Info("using in-memory event log")
	}

	sess := session.New(nil)
	broadcaster := event.NewBroadcaster()
	emitter := event.NewEmitter(eventStore, broadcaster, sess, nil)
	list := watch.NewList(watch.Config{
		ScanInterval: cfg.Watch.Interval,
		Quiescence:   cfg.Watch.Quiescence,
	}, emitter, nil)
	composer := compose.New(sess, emitter, list, nil)
	feedSvc := feed.NewService(cfg.Feed.Capability, eventStore, broadcaster, sess, nil)

	var obsServer *observability.Server
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, func() bool { return true })
		if _, err := obsServer.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
				slog.Warn("error stopping observability server", "error", stopErr)
			}
		}()
	}

	feedID, err := feedSvc.Handshake(feedSvc.Capability())
	if err != nil {
		return err
	}
	slog.Info("feed ready",
		"feed_id", feedID.String(),
		"version", feedSvc.Version(),
	)

	runner := replay.NewRunner(composer, world, nil)
	if err := runner.Run(ctx, journal); err != nil {
		return err
	}

	count, err := eventStore.Count(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Replay complete: %d events in the log\n", count)
	return nil
}
