package admin

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cloo-solutions/draftwise/internal/config"
	"github.com/cloo-solutions/draftwise/internal/database"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
	"github.com/spf13/cobra"
)

const defaultMigrationsPath = "migrations"

// MigrateCmd returns the migrate command group
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.PersistentFlags().String("migrations", defaultMigrationsPath, "Directory holding the SQL migrations")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := migrateSetup()
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("migrations")
			return database.Migrate(cfg.DatabaseURL, dir, logger)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer")
				}
				steps = n
			}
			cfg, logger, err := migrateSetup()
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("migrations")
			if err := database.Rollback(cfg.DatabaseURL, dir, steps); err != nil {
				return err
			}
			logger.Info("migrations rolled back", "steps", steps)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := migrateSetup()
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("migrations")
			version, dirty, ok, err := database.Version(cfg.DatabaseURL, dir)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})

	return cmd
}

func migrateSetup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := telemetry.NewLogger(cfg.LogFormat, cfg.Debug)
	return cfg, logger, nil
}
