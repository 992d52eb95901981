// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/cargolog/cargolog/internal/config"
	"github.com/cargolog/cargolog/internal/event"
	"github.com/cargolog/cargolog/internal/store"
)

// NewEventsCmd creates the events subcommand with list and clear verbs.
func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect or truncate the durable event log",
	}
	cmd.AddCommand(newEventsListCmd())
	cmd.AddCommand(newEventsClearCmd())
	return cmd
}

func newEventsListCmd() *cobra.Command {
	var (
		from       int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events from the durable log",
		Long:  `List events from the durable log, starting at a 1-based position.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, s *store.PostgresStore) error {
				events, err := s.Events(ctx, from)
				if err != nil {
					return err
				}
				if jsonOutput {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(events)
				}
				printEventTable(cmd, events, from)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&from, "from", 1, "1-based log position to start at")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output events as JSON")
	cmd.Flags().String("database-url", "", "Postgres URL for the durable log")

	return cmd
}

func newEventsClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Truncate the durable event log",
		Long:  `Truncate the durable event log. Positions restart at 1.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, s *store.PostgresStore) error {
				if err := s.Clear(ctx); err != nil {
					return err
				}
				cmd.Println("Event log cleared")
				return nil
			})
		},
	}
	cmd.Flags().String("database-url", "", "Postgres URL for the durable log")
	return cmd
}

// withStore connects to the configured database and runs fn.
func withStore(cmd *cobra.Command, fn func(context.Context, *store.PostgresStore) error) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required to inspect the durable log")
	}

	ctx := cmd.Context()
	s, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func printEventTable(cmd *cobra.Command, events []event.Event, from int) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tTICK\tACTOR\tACTION\tITEM\tCOUNT\tLOCATION")
	for i, e := range events {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%d\t%s\n",
			from+i,
			e.Tick,
			formatActor(e.Actor),
			e.Action.String(),
			e.Item.Key().String(),
			e.Item.Count,
			formatLocation(e.Location),
		)
	}
	//nolint:errcheck // tabwriter flush to stdout
	w.Flush()
}

func formatActor(a event.Actor) string {
	if a.Name != "" {
		return a.Name
	}
	return a.Kind.String() + "#" + strconv.FormatInt(a.ID, 10)
}

func formatLocation(l event.Location) string {
	switch l.Kind {
	case event.LocEntity:
		return fmt.Sprintf("%s#%d/%s", l.Tag, l.ID, l.Slot)
	case event.LocPlayerInventory:
		return fmt.Sprintf("player#%d/%s", l.ID, l.Slot)
	case event.LocCrafting:
		return fmt.Sprintf("crafting#%d", l.ID)
	default:
		return l.Kind.String()
	}
}
