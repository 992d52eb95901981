// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the CargoLog CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cargolog",
		Short: "CargoLog - logistics event inference engine",
		Long: `CargoLog infers canonical TAKE/GIVE/MAKE logistics events from raw
inventory-change notifications of a simulated world, keeps them in a
durable ordered log, and publishes them on a subscribable feed.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewEventsCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
