// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/virtio/vtuber-quiz/internal/config"
	"github.com/virtio/vtuber-quiz/internal/store"
)

const statusTimeout = 5 * time.Second

// Status holds the reported state of the backing database.
type Status struct {
	Database         string `json:"database"`
	Reachable        bool   `json:"reachable"`
	MigrationVersion uint   `json:"migration_version"`
	Dirty            bool   `json:"dirty"`
	Error            string `json:"error,omitempty"`
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database and migration status",
		Long:  `Check that the PostgreSQL database is reachable and report the current migration version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	status := gatherStatus(cmd.Context(), cfg)

	if jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatStatusTable(status))
	return nil
}

// gatherStatus probes the database and the migration state. Failures are
// reported in the status, not returned: an unreachable database is a valid
// answer to "what is the status".
func gatherStatus(ctx context.Context, cfg *config.Config) Status {
	status := Status{
		Database: fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database),
	}

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	pool, err := store.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		status.Error = err.Error()
		return status
	}
	pool.Close()
	status.Reachable = true

	migrator, err := store.NewMigrator(cfg.Database.DSN())
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer migrator.Close() //nolint:errcheck // close error is not actionable here

	version, dirty, err := migrator.Version()
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.MigrationVersion = version
	status.Dirty = dirty

	return status
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status Status) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "DATABASE\tREACHABLE\tMIGRATION\tDIRTY")
	_, _ = fmt.Fprintln(w, "--------\t---------\t---------\t-----")

	if !status.Reachable {
		_, _ = fmt.Fprintf(w, "%s\tno\t-\t-\n", status.Database)
	} else {
		_, _ = fmt.Fprintf(w, "%s\tyes\t%d\t%v\n",
			status.Database, status.MigrationVersion, status.Dirty)
	}
	_ = w.Flush()

	if status.Error != "" {
		b.WriteString("error: " + status.Error + "\n")
	}
	return b.String()
}
