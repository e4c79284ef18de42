// ABOUTME: CLI commands for exporting and importing fitlog data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/backup"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export fitlog data",
	Long: `Export every diet log, workout, plan and weigh-in of the signed-in user.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   Markdown tables (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include data since this date (YYYY-MM-DD, markdown only)

EXAMPLES:

  fitlog export json                        # Export all data as JSON
  fitlog export json -o backup.json         # Save to file
  fitlog export yaml                        # Export as YAML
  fitlog export markdown --since 2024-01-01 # Export data from 2024 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]
		switch format {
		case "json", "yaml", "markdown":
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}
		if exportSince != "" {
			if _, err := models.ParseDateKey(exportSince); err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
			}
		}

		exported, err := backup.NewService(agg, reader).Collect(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		var data []byte
		switch format {
		case "json":
			data, err = backup.ExportJSON(exported)
		case "yaml":
			data, err = backup.ExportYAML(exported)
		case "markdown":
			data = []byte(backup.ExportMarkdown(exported, exportSince))
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import fitlog data from JSON",
	Long: `Import fitlog data from a JSON backup file into the signed-in user.

Diet logs, workouts and plans replace the stored day. Weigh-ins are added,
so importing the same file twice duplicates them.

EXAMPLES:

  fitlog import backup.json               # Import from file`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		raw, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		data, err := backup.ParseJSON(raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		res, err := backup.NewService(agg, reader).Restore(cmd.Context(), userID, data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		printRestoreResult(res)
		return nil
	},
}

func printRestoreResult(res backup.RestoreResult) {
	fmt.Printf("  Diet logs: %d\n", res.DietLogs)
	fmt.Printf("  Workouts: %d\n", res.WorkoutLogs)
	fmt.Printf("  Plans: %d\n", res.WorkoutPlans)
	fmt.Printf("  Weigh-ins: %d\n", res.Weights)
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
