// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/cargolog/cargolog/internal/config"
	"github.com/cargolog/cargolog/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Run all pending database migrations against the PostgreSQL event log.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, down)
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations instead of applying them")
	cmd.Flags().String("database-url", "", "Postgres URL for the durable log")

	return cmd
}

func runMigrate(cmd *cobra.Command, down bool) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required to run migrations")
	}

	m, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			slog.Warn("error closing migrator", "error", closeErr)
		}
	}()

	if down {
		cmd.Println("Rolling back migrations...")
		if err := m.Down(); err != nil {
			return err
		}
		cmd.Println("Rollback completed successfully")
		return nil
	}

	cmd.Println("Running migrations...")
	if err := m.Up(); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}
