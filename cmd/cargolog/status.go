// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cargolog/cargolog/internal/config"
	"github.com/cargolog/cargolog/internal/feed"
	"github.com/cargolog/cargolog/internal/store"
)

// logStatus holds the durable log status report.
type logStatus struct {
	SchemaVersion  uint   `json:"schema_version"`
	SchemaDirty    bool   `json:"schema_dirty"`
	EventCount     int    `json:"event_count"`
	FeedVersion    int    `json:"feed_version"`
	FeedCapability string `json:"feed_capability"`
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the durable event log",
		Long:  `Show the database schema version and the size of the durable event log.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().String("database-url", "", "Postgres URL for the durable log")
	cmd.Flags().String("feed-capability", "", "capability name the feed answers to")

	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	st := logStatus{
		FeedVersion:    feed.Version,
		FeedCapability: cfg.Feed.Capability,
	}
	if st.FeedCapability == "" {
		st.FeedCapability = feed.DefaultCapability
	}

	if cfg.Database.URL != "" {
		if err := fillDatabaseStatus(cmd.Context(), cfg.Database.URL, &st); err != nil {
			return err
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Feed capability:\t%s\n", st.FeedCapability)
	fmt.Fprintf(w, "Feed version:\t%d\n", st.FeedVersion)
	fmt.Fprintf(w, "Schema version:\t%d (dirty: %v)\n", st.SchemaVersion, st.SchemaDirty)
	fmt.Fprintf(w, "Events in log:\t%d\n", st.EventCount)
	//nolint:errcheck // tabwriter flush to stdout
	w.Flush()
	return nil
}

func fillDatabaseStatus(ctx context.Context, databaseURL string, st *logStatus) error {
	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if closeErr := m.Close(); closeErr != nil {
		slog.Warn("error closing migrator", "error", closeErr)
	}
	if err != nil {
		return err
	}
	st.SchemaVersion = version
	st.SchemaDirty = dirty

	s, err := store.NewPostgresStore(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer s.Close()

	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	st.EventCount = count
	return nil
}
