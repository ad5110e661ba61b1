package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/service"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.db.MigrateDown(app.cfg.Database.MigrationsPath, steps)
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.db.RunMigrations(app.cfg.Database.MigrationsPath)
			},
		},
		downCmd,
		&cobra.Command{
			Use:   "to [version]",
			Short: "Migrate up or down to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return app.db.MigrateToVersion(app.cfg.Database.MigrationsPath, uint(version))
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := app.db.MigrationVersion(app.cfg.Database.MigrationsPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
				return nil
			},
		},
	)
	return migrateCmd
}

func newRoleCmd() *cobra.Command {
	roleCmd := &cobra.Command{
		Use:   "role",
		Short: "Manage user roles",
	}
	roleCmd.AddCommand(&cobra.Command{
		Use:   "grant [user-id] [USER|ADMIN]",
		Short: "Assign a role to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := models.Role(strings.ToUpper(args[1]))
			assignment, err := app.services.Session.AssignRole(cmd.Context(), service.SystemActor, args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", assignment.UserID, assignment.Role)
			return nil
		},
	})
	return roleCmd
}

func newCountersCmd() *cobra.Command {
	countersCmd := &cobra.Command{
		Use:   "counters",
		Short: "Maintain denormalized article counters",
	}
	countersCmd.AddCommand(&cobra.Command{
		Use:   "reconcile",
		Short: "Recompute like and comment counters from their rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			fixed, err := app.services.Admin.ReconcileCounters(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "articles fixed: %d\n", fixed)
			return nil
		},
	})
	return countersCmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print row counts as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.services.Admin.Stats(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}
