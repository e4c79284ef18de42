// ABOUTME: CLI command showing the day's dashboard.
// ABOUTME: With --watch, redraws on every diet or workout change until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/dailylog"
	"github.com/spf13/cobra"
)

var dashboardWatch bool

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"today", "dash"},
	Short:   "Show the day's totals and workout",
	Long: `Show calories and protein against your targets together with the
day's workout status.

Use --watch to keep the dashboard open; it updates whenever a meal or
workout for the day changes, including changes made from another device,
the API or the MCP server.

EXAMPLES:

  fitlog dashboard
  fitlog dashboard --date 2024-01-15
  fitlog dashboard --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := targetDate()
		if err != nil {
			return err
		}

		if !dashboardWatch {
			sum, err := agg.Today(cmd.Context(), userID, date)
			if err != nil {
				return fmt.Errorf("failed to read day: %w", err)
			}
			printSummary(sum)
			return nil
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case <-sigChan:
				cancel()
			case <-ctx.Done():
			}
		}()

		updates, err := agg.WatchDay(ctx, userID, date)
		if err != nil {
			return fmt.Errorf("failed to watch day: %w", err)
		}
		for sum := range updates {
			fmt.Println()
			printSummary(sum)
		}
		return nil
	},
}

func printSummary(sum dailylog.DaySummary) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Printf("%s\n", sum.Date)
	fmt.Printf("  Calories  %s %d / %d kcal\n", progressBar(sum.CaloriePercent), sum.Calories, sum.CalorieTarget)
	fmt.Printf("  Protein   %s %d / %d g\n", progressBar(sum.ProteinPercent), sum.Protein, sum.ProteinTarget)
	fmt.Printf("  Meals     %d\n", sum.Meals)

	if !sum.WorkoutCompleted {
		fmt.Printf("  Workout   %s\n", faint.Sprint("not logged"))
		return
	}
	fmt.Printf("  Workout   %s %d of %d exercises, volume %.0f kg\n",
		color.GreenString("✓"), sum.ExercisesLogged, sum.TotalExercises, sum.Volume)
}

// progressBar renders a 20-cell bar for a 0-100 percentage.
func progressBar(percent float64) string {
	const width = 20
	filled := int(percent / 100 * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3.0f%%", bar, percent)
}

func init() {
	dashboardCmd.Flags().BoolVarP(&dashboardWatch, "watch", "w", false, "keep updating until interrupted")
	rootCmd.AddCommand(dashboardCmd)
}
