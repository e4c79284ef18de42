// ABOUTME: Whole-history reads and restores of a user's day documents.
// ABOUTME: Used by export, import and backend migration.
package dailylog

import (
	"context"
	"sort"

	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/store"
)

// DietLogs returns every stored diet log ordered by date.
func (a *Aggregator) DietLogs(ctx context.Context, userID string) ([]models.DailyDietLog, error) {
	docs, err := a.store.Query(ctx, store.CollectionQuery(a.paths.Collection(userID, store.DietLogs)))
	if err != nil {
		return nil, a.storeErr("query diet logs", err)
	}
	logs := make([]models.DailyDietLog, 0, len(docs))
	for _, doc := range docs {
		dl, err := decodeDietLog(doc, true, userID, "")
		if err != nil {
			return nil, err
		}
		logs = append(logs, dl)
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Date < logs[j].Date })
	return logs, nil
}

// WorkoutLogs returns every stored workout log ordered by date.
func (a *Aggregator) WorkoutLogs(ctx context.Context, userID string) ([]models.DailyWorkoutLog, error) {
	docs, err := a.store.Query(ctx, store.CollectionQuery(a.paths.Collection(userID, store.WorkoutLogs)))
	if err != nil {
		return nil, a.storeErr("query workout logs", err)
	}
	logs := make([]models.DailyWorkoutLog, 0, len(docs))
	for _, doc := range docs {
		wl, err := decodeWorkoutLog(doc, true, userID, "")
		if err != nil {
			return nil, err
		}
		logs = append(logs, wl)
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Date < logs[j].Date })
	return logs, nil
}

// Plans returns every saved plan keyed by date.
func (a *Aggregator) Plans(ctx context.Context, userID string) (map[string]models.WorkoutPlan, error) {
	docs, err := a.store.Query(ctx, store.CollectionQuery(a.paths.Collection(userID, store.WorkoutPlans)))
	if err != nil {
		return nil, a.storeErr("query workout plans", err)
	}
	plans := make(map[string]models.WorkoutPlan, len(docs))
	for _, doc := range docs {
		var sp struct {
			Date    string             `json:"date" firestore:"date"`
			Workout models.WorkoutPlan `json:"workout" firestore:"workout"`
		}
		if err := doc.DataTo(&sp); err != nil {
			return nil, &models.StoreError{Op: "decode workout plan", Err: err}
		}
		plans[sp.Date] = sp.Workout
	}
	return plans, nil
}

// RestoreDietLog writes a previously exported diet log for userID. Totals
// are recomputed from the meals rather than trusted.
func (a *Aggregator) RestoreDietLog(ctx context.Context, userID string, dl models.DailyDietLog) error {
	if err := validateDay(userID, dl.Date); err != nil {
		return err
	}
	meals := dl.Meals
	if meals == nil {
		meals = []models.MealEntry{}
	}
	totals := ComputeTotals(meals)
	fields := store.Fields{
		"userId":        userID,
		"date":          dl.Date,
		"meals":         meals,
		"totalCalories": totals.Calories,
		"totalProtein":  totals.Protein,
		"updatedAt":     store.TimestampOr(dl.UpdatedAt),
	}
	if err := a.store.UpsertMerge(ctx, a.paths.DayDoc(userID, store.DietLogs, dl.Date), fields); err != nil {
		return a.storeErr("restore diet log", err)
	}
	return nil
}

// RestoreWorkoutLog writes a previously exported workout log for userID.
func (a *Aggregator) RestoreWorkoutLog(ctx context.Context, userID string, wl models.DailyWorkoutLog) error {
	if err := validateDay(userID, wl.Date); err != nil {
		return err
	}
	exercises := wl.Exercises
	if exercises == nil {
		exercises = models.SessionLog{}
	}
	fields := store.Fields{
		"userId":         userID,
		"date":           wl.Date,
		"exercises":      exercises,
		"workoutPlan":    wl.WorkoutPlan,
		"totalExercises": len(wl.WorkoutPlan),
		"completedAt":    wl.CompletedAt,
		"createdAt":      store.TimestampOr(wl.CreatedAt),
	}
	if err := a.store.UpsertMerge(ctx, a.paths.DayDoc(userID, store.WorkoutLogs, wl.Date), fields); err != nil {
		return a.storeErr("restore workout log", err)
	}
	return nil
}
