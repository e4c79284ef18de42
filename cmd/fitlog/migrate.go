// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Reads everything from the configured backend and restores it into another.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/backup"
	"github.com/harperreed/fitlog/internal/dailylog"
	"github.com/harperreed/fitlog/internal/progress"
	"github.com/spf13/cobra"
)

var (
	migrateTo      string
	migrateDataDir string
	migrateDryRun  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data to another storage backend",
	Long: `Copy the signed-in user's data from the configured backend to another one.

Use this when moving from local SQLite to Charm sync or Firestore, or back.
The source is left untouched. Afterwards, change "backend" in your config
to start using the new one.

IMPORTANT:

  - Diet logs, workouts and plans overwrite the same days in the target
  - Weigh-ins are appended, so migrating twice duplicates them
  - Run with --dry-run first to see what would be copied

USAGE:

  fitlog migrate --to charm --dry-run            # Preview what would be copied
  fitlog migrate --to firestore                  # Perform the copy
  fitlog migrate --to sqlite --data-dir ~/other  # Copy into another SQLite file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateTo == "" {
			return fmt.Errorf("--to is required (sqlite, charm, firestore)")
		}
		targetCfg := *cfg
		targetCfg.Backend = migrateTo
		if migrateDataDir != "" {
			targetCfg.DataDir = migrateDataDir
		}
		if targetCfg.GetBackend() == cfg.GetBackend() && targetCfg.GetDataDir() == cfg.GetDataDir() {
			return fmt.Errorf("target is the configured %s backend", cfg.GetBackend())
		}

		data, err := backup.NewService(agg, reader).Collect(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("failed to read source: %w", err)
		}

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()
			fmt.Printf("Would copy from %s to %s:\n", cfg.GetBackend(), targetCfg.GetBackend())
			printRestoreResult(backup.RestoreResult{
				DietLogs:     len(data.DietLogs),
				WorkoutLogs:  len(data.WorkoutLogs),
				WorkoutPlans: len(data.WorkoutPlans),
				Weights:      len(data.Progress),
			})
			return nil
		}

		target, err := targetCfg.OpenStore(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to open %s store: %w", targetCfg.GetBackend(), err)
		}
		defer func() { _ = target.Close() }()

		paths := targetCfg.Paths()
		svc := backup.NewService(
			dailylog.NewAggregator(target, paths, dailylog.WithLogger(logger), dailylog.WithMetrics(metrics)),
			progress.NewReader(target, paths, logger, metrics),
		)
		res, err := svc.Restore(cmd.Context(), userID, data)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Copied %s to %s", cfg.GetBackend(), targetCfg.GetBackend())
		printRestoreResult(res)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "target backend (sqlite, charm, firestore)")
	migrateCmd.Flags().StringVar(&migrateDataDir, "data-dir", "", "target data directory (sqlite only)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
