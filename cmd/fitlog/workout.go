// ABOUTME: CLI commands for workout plans and sessions.
// ABOUTME: Supports generate, show, and finish subcommands.
package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/fitlog/internal/dailylog"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/spf13/cobra"
)

var finishSets []string

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Manage workouts",
	Long: `Generate a workout plan for a day, then log the sets you did.

WORKFLOW:

  1. Get a plan:        fitlog workout generate
  2. Do the workout
  3. Log your sets:     fitlog workout finish --set "Squat=60x8" --set "Squat=60x8"
  4. Review the day:    fitlog workout show

Finishing again on the same day adds to the sets already logged.

COMMANDS:

  generate   Generate and save a plan for the day
  show       Show the day's plan and logged sets
  finish     Log sets against the day's plan`,
}

var workoutGenerateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate a workout plan",
	Long: `Ask the coach for a workout plan and save it for the day.

Generating again replaces the saved plan. Sets already logged are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := targetDate()
		if err != nil {
			return err
		}

		plan, err := coach.GenerateWorkout(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to generate workout: %w", err)
		}
		if err := agg.SavePlan(cmd.Context(), userID, date, plan); err != nil {
			return fmt.Errorf("failed to save plan: %w", err)
		}

		color.Green("✓ Generated %d exercises for %s", len(plan), date)
		printPlan(plan)
		return nil
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the day's workout",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := targetDate()
		if err != nil {
			return err
		}

		plan, hasPlan, err := agg.Plan(cmd.Context(), userID, date)
		if err != nil {
			return fmt.Errorf("failed to read plan: %w", err)
		}
		wl, done, err := agg.WorkoutLog(cmd.Context(), userID, date)
		if err != nil {
			return fmt.Errorf("failed to read workout log: %w", err)
		}

		fmt.Printf("Workout: %s\n", date)
		if !hasPlan && !done {
			fmt.Println("No workout plan. Run 'fitlog workout generate' to get one.")
			return nil
		}
		if hasPlan {
			printPlan(plan)
		}
		if !done {
			return nil
		}

		fmt.Println("\nLogged:")
		names := make([]string, 0, len(wl.Exercises))
		for name := range wl.Exercises {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sets := wl.Exercises[name]
			parts := make([]string, len(sets))
			for i, s := range sets {
				parts[i] = formatSet(s)
			}
			fmt.Printf("  %s: %s\n", name, strings.Join(parts, ", "))
		}
		fmt.Printf("  %d of %d exercises, volume %.0f kg\n",
			len(wl.Exercises), wl.TotalExercises, dailylog.SessionVolume(wl.Exercises))
		if wl.CompletedAt != "" {
			fmt.Printf("  %s\n", color.New(color.Faint).Sprint("completed "+wl.CompletedAt))
		}
		return nil
	},
}

var workoutFinishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Log sets for the day's workout",
	Long: `Log the sets you did against the day's saved plan.

Each --set is "Exercise=WEIGHTxREPS". Leave the weight out for bodyweight
work. Exercise names must match the plan.

Examples:
  fitlog workout finish --set "Squat=60x8" --set "Squat=60x6"
  fitlog workout finish --set "Push-up=x12"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := targetDate()
		if err != nil {
			return err
		}
		if len(finishSets) == 0 {
			return fmt.Errorf("log at least one --set")
		}

		sessionLog := models.SessionLog{}
		for _, raw := range finishSets {
			name, set, err := parseSetFlag(raw)
			if err != nil {
				return err
			}
			sessionLog[name] = append(sessionLog[name], set)
		}

		plan, ok, err := agg.Plan(cmd.Context(), userID, date)
		if err != nil {
			return fmt.Errorf("failed to read plan: %w", err)
		}
		if !ok {
			return fmt.Errorf("no workout plan for %s, run 'fitlog workout generate' first", date)
		}

		wl, err := agg.FinishWorkout(cmd.Context(), userID, date, plan, sessionLog)
		if err != nil {
			return fmt.Errorf("failed to finish workout: %w", err)
		}

		color.Green("✓ Workout saved")
		fmt.Printf("  %d of %d exercises, volume %.0f kg\n",
			len(wl.Exercises), wl.TotalExercises, dailylog.SessionVolume(wl.Exercises))
		return nil
	},
}

// parseSetFlag parses "Name=WEIGHTxREPS" into an exercise name and set.
func parseSetFlag(raw string) (string, models.WorkoutSetEntry, error) {
	idx := strings.LastIndex(raw, "=")
	if idx <= 0 {
		return "", models.WorkoutSetEntry{}, fmt.Errorf("invalid set %q (use Exercise=WEIGHTxREPS)", raw)
	}
	name := strings.TrimSpace(raw[:idx])
	value := strings.ToLower(strings.TrimSpace(raw[idx+1:]))

	weight, reps, found := strings.Cut(value, "x")
	if !found {
		return "", models.WorkoutSetEntry{}, fmt.Errorf("invalid set %q (use Exercise=WEIGHTxREPS)", raw)
	}
	set := models.WorkoutSetEntry{
		Weight: models.SetValue(strings.TrimSpace(weight)),
		Reps:   models.SetValue(strings.TrimSpace(reps)),
	}
	if set.IsEmpty() {
		return "", models.WorkoutSetEntry{}, fmt.Errorf("invalid set %q: weight and reps are both empty", raw)
	}
	return name, set, nil
}

func formatSet(s models.WorkoutSetEntry) string {
	if s.Weight.IsEmpty() {
		return fmt.Sprintf("%s reps", s.Reps)
	}
	return fmt.Sprintf("%s x %s", s.Weight, s.Reps)
}

func printPlan(plan models.WorkoutPlan) {
	faint := color.New(color.Faint)
	for i, e := range plan {
		fmt.Printf("  %d. %s %d x %s %s\n", i+1, padRight(e.Name, 22), e.Sets, e.Reps, faint.Sprintf("(%s)", e.Group))
		fmt.Printf("     %s\n", faint.Sprint(e.Instructions))
	}
}

func init() {
	workoutFinishCmd.Flags().StringArrayVarP(&finishSets, "set", "s", nil, `logged set as "Exercise=WEIGHTxREPS" (repeatable)`)

	workoutCmd.AddCommand(workoutGenerateCmd)
	workoutCmd.AddCommand(workoutShowCmd)
	workoutCmd.AddCommand(workoutFinishCmd)
	rootCmd.AddCommand(workoutCmd)
}
