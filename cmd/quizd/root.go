// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the quizd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quizd",
		Short: "quizd - vtuber quiz backend",
		Long: `quizd is the backend for the vtuber fan quiz platform: accounts,
Bilibili account binding, the follow graph, questions, and voting.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
