// ABOUTME: Tests for whole-history reads and restores.
// ABOUTME: Restored diet logs get totals recomputed from their meals.
package dailylog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/store"
)

func TestHistoryOrderedByDate(t *testing.T) {
	agg, _ := setupAggregator(t)
	ctx := context.Background()

	for _, date := range []string{"2024-01-03", "2024-01-01", "2024-01-02"} {
		if _, err := agg.AddMeal(ctx, "u1", date, models.MealInput{Name: "Rice", Calories: "100", Protein: "5"}); err != nil {
			t.Fatalf("AddMeal(%s) failed: %v", date, err)
		}
	}
	if _, err := agg.AddMeal(ctx, "u2", "2024-01-01", models.MealInput{Name: "Other", Calories: "1", Protein: "1"}); err != nil {
		t.Fatalf("AddMeal(u2) failed: %v", err)
	}

	logs, err := agg.DietLogs(ctx, "u1")
	if err != nil {
		t.Fatalf("DietLogs failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("DietLogs() returned %d logs, want 3", len(logs))
	}
	for i, want := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		if logs[i].Date != want {
			t.Errorf("logs[%d].Date = %q, want %q", i, logs[i].Date, want)
		}
	}

	if err := agg.SavePlan(ctx, "u1", testDate, plan("Push-up")); err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}
	if _, err := agg.FinishWorkout(ctx, "u1", testDate, plan("Push-up"), models.SessionLog{
		"Push-up": {{Reps: "10"}},
	}); err != nil {
		t.Fatalf("FinishWorkout failed: %v", err)
	}

	workouts, err := agg.WorkoutLogs(ctx, "u1")
	if err != nil {
		t.Fatalf("WorkoutLogs failed: %v", err)
	}
	if len(workouts) != 1 || workouts[0].Date != testDate {
		t.Errorf("WorkoutLogs() = %+v", workouts)
	}

	plans, err := agg.Plans(ctx, "u1")
	if err != nil {
		t.Fatalf("Plans failed: %v", err)
	}
	if len(plans[testDate]) != 1 {
		t.Errorf("Plans() = %+v", plans)
	}
}

func TestRestoreDietLogRecomputesTotals(t *testing.T) {
	agg, _ := setupAggregator(t)
	ctx := context.Background()
	updated := time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC)

	err := agg.RestoreDietLog(ctx, "u1", models.DailyDietLog{
		Date:          "2023-12-31",
		Meals:         []models.MealEntry{{ID: 1, Name: "Rice", Calories: 500, Protein: 20}, {ID: 2, Name: "Egg", Calories: 150, Protein: 12}},
		TotalCalories: 9999,
		UpdatedAt:     updated,
	})
	if err != nil {
		t.Fatalf("RestoreDietLog failed: %v", err)
	}

	dl, err := agg.DietLog(ctx, "u1", "2023-12-31")
	if err != nil {
		t.Fatalf("DietLog failed: %v", err)
	}
	if dl.TotalCalories != 650 || dl.TotalProtein != 32 {
		t.Errorf("totals = %d/%d, want 650/32", dl.TotalCalories, dl.TotalProtein)
	}
	if !dl.UpdatedAt.Equal(updated) {
		t.Errorf("UpdatedAt = %v, want %v", dl.UpdatedAt, updated)
	}

	// New meals after a restore get ids above the restored ones.
	dl, err = agg.AddMeal(ctx, "u1", "2023-12-31", models.MealInput{Name: "Tea", Calories: "5", Protein: "0"})
	if err != nil {
		t.Fatalf("AddMeal failed: %v", err)
	}
	if last := dl.Meals[len(dl.Meals)-1]; last.ID <= 2 {
		t.Errorf("new meal id %d not above restored ids", last.ID)
	}
}

func TestRestoreWorkoutLog(t *testing.T) {
	agg, _ := setupAggregator(t)
	ctx := context.Background()

	wl := models.DailyWorkoutLog{
		Date:        "2023-12-30",
		Exercises:   models.SessionLog{"Curl": {{Weight: "10", Reps: "12"}}},
		WorkoutPlan: plan("Curl", "Plank"),
		CompletedAt: "2023-12-30T18:00:00Z",
	}
	if err := agg.RestoreWorkoutLog(ctx, "u1", wl); err != nil {
		t.Fatalf("RestoreWorkoutLog failed: %v", err)
	}

	got, ok, err := agg.WorkoutLog(ctx, "u1", "2023-12-30")
	if err != nil || !ok {
		t.Fatalf("WorkoutLog() = ok %v, err %v", ok, err)
	}
	if got.TotalExercises != 2 || got.CompletedAt != wl.CompletedAt || Volume(got.Exercises["Curl"]) != 120 {
		t.Errorf("restored log = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected createdAt to be filled by the store")
	}

	var ve *models.ValidationError
	if err := agg.RestoreWorkoutLog(ctx, "u1", models.DailyWorkoutLog{Date: "yesterday"}); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for bad date, got %v", err)
	}
}

func TestHistoryStoreError(t *testing.T) {
	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })
	agg := NewAggregator(queryFailingStore{Store: s, err: errors.New("offline")}, testPaths)

	_, err := agg.DietLogs(context.Background(), "u1")
	var se *models.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

type queryFailingStore struct {
	store.Store
	err error
}

func (f queryFailingStore) Query(ctx context.Context, q store.Query) ([]store.Document, error) {
	return nil, f.err
}
