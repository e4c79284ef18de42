// ABOUTME: CLI commands for weigh-ins and weight trend.
// ABOUTME: Supports add, list, and summary subcommands.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/progress"
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:     "progress",
	Aliases: []string{"p", "weight"},
	Short:   "Track body weight",
	Long: `Log weigh-ins and follow the trend.

Weigh-ins are never edited or removed. Several on the same day are all kept.

COMMANDS:

  add       Log a weigh-in in kg
  list      Show every weigh-in in date order with the trend
  summary   Ask the coach for a short summary of the trend`,
}

var progressAddCmd = &cobra.Command{
	Use:     "add <weight>",
	Aliases: []string{"a"},
	Short:   "Log a weigh-in",
	Long: `Log a weigh-in in kg for the day.

Examples:
  fitlog progress add 72.4
  fitlog progress add 73 --date 2024-01-10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := targetDate()
		if err != nil {
			return err
		}

		e, err := reader.LogWeight(cmd.Context(), userID, date, args[0])
		if err != nil {
			return fmt.Errorf("failed to log weight: %w", err)
		}

		color.Green("✓ Logged %.1f kg", e.Weight)
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(e.ID), e.Date)
		return nil
	},
}

var progressListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List weigh-ins",
	RunE: func(cmd *cobra.Command, args []string) error {
		series, err := reader.Series(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("failed to read progress: %w", err)
		}
		if len(series) == 0 {
			fmt.Println("No weigh-ins found.")
			return nil
		}

		for _, p := range series {
			fmt.Printf("%s %6.1f kg\n", color.New(color.Faint).Sprint(p.Date), p.Weight)
		}
		if trend, ok := progress.TrendSummary(series); ok {
			fmt.Printf("\nTrend: %s (%+.1f kg over %d weigh-ins, range %.1f-%.1f)\n",
				trend.Direction, trend.Change, trend.Points, trend.Min, trend.Max)
		}
		return nil
	},
}

var progressSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize the weight trend",
	Long: `Ask the coach for a short written summary of your weigh-ins.

Needs at least two weigh-ins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		series, err := reader.Series(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("failed to read progress: %w", err)
		}

		summary, err := coach.SummarizeProgress(cmd.Context(), series)
		if err != nil {
			return fmt.Errorf("failed to summarize: %w", err)
		}
		fmt.Println(summary)
		return nil
	},
}

func init() {
	progressCmd.AddCommand(progressAddCmd)
	progressCmd.AddCommand(progressListCmd)
	progressCmd.AddCommand(progressSummaryCmd)
	rootCmd.AddCommand(progressCmd)
}
