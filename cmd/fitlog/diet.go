// ABOUTME: CLI commands for the daily diet log.
// ABOUTME: Supports add, rm, show, and estimate subcommands.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/spf13/cobra"
)

var estimateLog bool

var dietCmd = &cobra.Command{
	Use:     "diet",
	Aliases: []string{"d", "meal"},
	Short:   "Manage the diet log",
	Long: `Log meals with their calories and protein.

Each day has one diet log. Totals are recomputed from the meals on every
change and compared against your daily targets.

COMMANDS:

  add        Log a meal
  rm         Remove a meal by its id
  show       Show the day's meals and totals
  estimate   Ask for a calorie/protein estimate of a meal description`,
}

var dietAddCmd = &cobra.Command{
	Use:     "add <name> <calories> <protein>",
	Aliases: []string{"a"},
	Short:   "Log a meal",
	Long: `Log a meal. Calories and protein must be non-negative numbers;
decimals are truncated.

Examples:
  fitlog diet add "Chicken rice" 650 45
  fitlog diet add Oats 350 12 --date 2024-01-15`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := targetDate()
		if err != nil {
			return err
		}

		dl, err := agg.AddMeal(cmd.Context(), userID, date, models.MealInput{
			Name:     args[0],
			Calories: args[1],
			Protein:  args[2],
		})
		if err != nil {
			return fmt.Errorf("failed to add meal: %w", err)
		}

		meal := dl.Meals[len(dl.Meals)-1]
		color.Green("✓ Added %s", meal.Name)
		fmt.Printf("  %s %d kcal, %d g protein\n",
			color.New(color.Faint).Sprint(meal.ID), meal.Calories, meal.Protein)
		printDietTotals(dl)
		return nil
	},
}

var dietRmCmd = &cobra.Command{
	Use:     "rm <meal-id>",
	Aliases: []string{"delete", "del"},
	Short:   "Remove a meal",
	Long: `Remove a meal from the day's diet log by the id shown in 'fitlog diet show'.

Removing an id that is not in the log leaves it unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := targetDate()
		if err != nil {
			return err
		}
		mealID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid meal id: %s", args[0])
		}

		dl, err := agg.DeleteMeal(cmd.Context(), userID, date, mealID)
		if err != nil {
			return fmt.Errorf("failed to delete meal: %w", err)
		}

		color.Yellow("✗ Removed meal %d", mealID)
		printDietTotals(dl)
		return nil
	},
}

var dietShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"ls", "list"},
	Short:   "Show the day's meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := targetDate()
		if err != nil {
			return err
		}

		dl, err := agg.DietLog(cmd.Context(), userID, date)
		if err != nil {
			return fmt.Errorf("failed to read diet log: %w", err)
		}

		fmt.Printf("Diet: %s\n", date)
		if len(dl.Meals) == 0 {
			fmt.Println("No meals logged.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, m := range dl.Meals {
			fmt.Printf("  %s %s %5d kcal %4d g\n",
				faint.Sprint(m.ID), padRight(m.Name, 24), m.Calories, m.Protein)
		}
		printDietTotals(dl)
		return nil
	},
}

var dietEstimateCmd = &cobra.Command{
	Use:   "estimate <description>",
	Short: "Estimate calories and protein of a meal",
	Long: `Ask the coach for a calorie and protein estimate of a meal description.

The estimate is only printed unless --log is given, in which case it is
logged as a meal named after the description.

Examples:
  fitlog diet estimate "two eggs on toast"
  fitlog diet estimate "large burrito bowl" --log`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := targetDate()
		if err != nil {
			return err
		}
		description := strings.Join(args, " ")

		est, err := coach.EstimateNutrition(cmd.Context(), description)
		if err != nil {
			return fmt.Errorf("failed to estimate: %w", err)
		}

		fmt.Printf("%s: ~%.0f kcal, ~%.0f g protein\n", description, est.Calories, est.Protein)
		if !estimateLog {
			return nil
		}

		dl, err := agg.AddMeal(cmd.Context(), userID, date, est.MealInput(description))
		if err != nil {
			return fmt.Errorf("failed to add meal: %w", err)
		}
		color.Green("✓ Logged %s", description)
		printDietTotals(dl)
		return nil
	},
}

func printDietTotals(dl models.DailyDietLog) {
	targets := agg.Targets()
	fmt.Printf("  Total: %d / %d kcal (%.0f%%), %d / %d g protein (%.0f%%)\n",
		dl.TotalCalories, targets.Calories, targets.CalorieProgress(dl.TotalCalories),
		dl.TotalProtein, targets.Protein, targets.ProteinProgress(dl.TotalProtein))
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	dietEstimateCmd.Flags().BoolVar(&estimateLog, "log", false, "log the estimate as a meal")

	dietCmd.AddCommand(dietAddCmd)
	dietCmd.AddCommand(dietRmCmd)
	dietCmd.AddCommand(dietShowCmd)
	dietCmd.AddCommand(dietEstimateCmd)
	rootCmd.AddCommand(dietCmd)
}
