// ABOUTME: Store-backed daily log service for diet and workout documents.
// ABOUTME: Each mutation reads the day document, recomputes it and upserts it once.
package dailylog

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/fitlog/internal/logging"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/store"
	"github.com/harperreed/fitlog/internal/telemetry"
)

// Aggregator keeps DailyDietLog and DailyWorkoutLog documents consistent.
// There is no cross-call locking: two concurrent mutations of the same day
// race and the last writer wins.
type Aggregator struct {
	store   store.Store
	paths   store.Paths
	ids     *IDSource
	now     func() time.Time
	targets models.Targets
	logger  *log.Logger
	metrics *telemetry.Manager
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock sets the clock used for meal ids and completion times.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithTargets overrides the daily nutrition targets.
func WithTargets(t models.Targets) Option {
	return func(a *Aggregator) { a.targets = t }
}

func WithLogger(l *log.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

func WithMetrics(m *telemetry.Manager) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// NewAggregator creates an Aggregator over s.
func NewAggregator(s store.Store, paths store.Paths, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:   s,
		paths:   paths,
		now:     time.Now,
		targets: models.DefaultTargets,
		logger:  logging.Discard(),
		metrics: telemetry.NewTestManager(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ids = NewIDSource(a.now)
	return a
}

// Targets returns the configured daily targets.
func (a *Aggregator) Targets() models.Targets {
	return a.targets
}

func (a *Aggregator) storeErr(op string, err error) error {
	a.metrics.CounterStoreErrors.WithLabelValues(op).Inc()
	a.logger.Error("store operation failed", "op", op, "err", err)
	return &models.StoreError{Op: op, Err: err}
}

func validateDay(userID, date string) error {
	if userID == "" {
		return &models.ValidationError{Field: "userId", Reason: "not signed in"}
	}
	_, err := models.ParseDateKey(date)
	return err
}

// DietLog returns the diet log for a day. A missing document is an empty log.
func (a *Aggregator) DietLog(ctx context.Context, userID, date string) (models.DailyDietLog, error) {
	if err := validateDay(userID, date); err != nil {
		return models.DailyDietLog{}, err
	}
	doc, ok, err := a.store.Get(ctx, a.paths.DayDoc(userID, store.DietLogs, date))
	if err != nil {
		return models.DailyDietLog{}, a.storeErr("read diet log", err)
	}
	return decodeDietLog(doc, ok, userID, date)
}

func decodeDietLog(doc store.Document, ok bool, userID, date string) (models.DailyDietLog, error) {
	dl := models.DailyDietLog{UserID: userID, Date: date, Meals: []models.MealEntry{}}
	if !ok {
		return dl, nil
	}
	if err := doc.DataTo(&dl); err != nil {
		return models.DailyDietLog{}, &models.StoreError{Op: "decode diet log", Err: err}
	}
	if dl.Meals == nil {
		dl.Meals = []models.MealEntry{}
	}
	return dl, nil
}

func (a *Aggregator) writeDiet(ctx context.Context, userID, date string, meals []models.MealEntry, totals Totals) error {
	fields := store.Fields{
		"userId":        userID,
		"date":          date,
		"meals":         meals,
		"totalCalories": totals.Calories,
		"totalProtein":  totals.Protein,
		"updatedAt":     store.ServerTimestamp,
	}
	if err := a.store.UpsertMerge(ctx, a.paths.DayDoc(userID, store.DietLogs, date), fields); err != nil {
		return a.storeErr("write diet log", err)
	}
	return nil
}

// AddMeal validates input, appends it to the day's meals and persists the log.
func (a *Aggregator) AddMeal(ctx context.Context, userID, date string, input models.MealInput) (models.DailyDietLog, error) {
	if err := validateDay(userID, date); err != nil {
		return models.DailyDietLog{}, err
	}
	// Validate before touching the store.
	if _, err := input.Parse(); err != nil {
		return models.DailyDietLog{}, err
	}

	current, err := a.DietLog(ctx, userID, date)
	if err != nil {
		return models.DailyDietLog{}, err
	}
	meals, totals, err := AddMeal(current.Meals, input, a.ids)
	if err != nil {
		return models.DailyDietLog{}, err
	}
	if err := a.writeDiet(ctx, userID, date, meals, totals); err != nil {
		return models.DailyDietLog{}, err
	}

	a.metrics.CounterMealsAdded.Inc()
	added := meals[len(meals)-1]
	a.logger.Debug("meal added", "user", userID, "date", date, "id", added.ID, "calories", added.Calories)

	current.Meals = meals
	current.TotalCalories = totals.Calories
	current.TotalProtein = totals.Protein
	return current, nil
}

// DeleteMeal removes a meal by id. Removing a missing id returns the log
// unchanged and writes nothing.
func (a *Aggregator) DeleteMeal(ctx context.Context, userID, date string, mealID int64) (models.DailyDietLog, error) {
	current, err := a.DietLog(ctx, userID, date)
	if err != nil {
		return models.DailyDietLog{}, err
	}
	meals, totals := DeleteMeal(current.Meals, mealID)
	if len(meals) == len(current.Meals) {
		a.logger.Debug("meal not found", "user", userID, "date", date, "id", mealID)
		return current, nil
	}
	if err := a.writeDiet(ctx, userID, date, meals, totals); err != nil {
		return models.DailyDietLog{}, err
	}

	a.metrics.CounterMealsDeleted.Inc()
	a.logger.Debug("meal deleted", "user", userID, "date", date, "id", mealID)

	current.Meals = meals
	current.TotalCalories = totals.Calories
	current.TotalProtein = totals.Protein
	return current, nil
}

// WorkoutLog returns the workout log for a day and whether one was saved.
func (a *Aggregator) WorkoutLog(ctx context.Context, userID, date string) (models.DailyWorkoutLog, bool, error) {
	if err := validateDay(userID, date); err != nil {
		return models.DailyWorkoutLog{}, false, err
	}
	doc, ok, err := a.store.Get(ctx, a.paths.DayDoc(userID, store.WorkoutLogs, date))
	if err != nil {
		return models.DailyWorkoutLog{}, false, a.storeErr("read workout log", err)
	}
	wl, err := decodeWorkoutLog(doc, ok, userID, date)
	return wl, ok, err
}

func decodeWorkoutLog(doc store.Document, ok bool, userID, date string) (models.DailyWorkoutLog, error) {
	wl := models.DailyWorkoutLog{UserID: userID, Date: date, Exercises: models.SessionLog{}}
	if !ok {
		return wl, nil
	}
	if err := doc.DataTo(&wl); err != nil {
		return models.DailyWorkoutLog{}, &models.StoreError{Op: "decode workout log", Err: err}
	}
	if wl.Exercises == nil {
		wl.Exercises = models.SessionLog{}
	}
	return wl, nil
}

func validateSession(session models.SessionLog) error {
	for name, sets := range session {
		for i, s := range sets {
			if _, err := models.ParseSetValue(fmt.Sprintf("%s[%d].weight", name, i), string(s.Weight)); err != nil {
				return err
			}
			if _, err := models.ParseSetValue(fmt.Sprintf("%s[%d].reps", name, i), string(s.Reps)); err != nil {
				return err
			}
		}
	}
	return nil
}

// FinishWorkout merges session into the day's stored exercises and saves it
// together with the plan. Nothing is written when validation fails.
func (a *Aggregator) FinishWorkout(ctx context.Context, userID, date string, plan models.WorkoutPlan, session models.SessionLog) (models.DailyWorkoutLog, error) {
	if err := validateDay(userID, date); err != nil {
		return models.DailyWorkoutLog{}, err
	}
	if err := plan.Validate(); err != nil {
		return models.DailyWorkoutLog{}, err
	}
	if !HasLoggedSets(session) {
		return models.DailyWorkoutLog{}, &models.ValidationError{Field: "exercises", Reason: "log at least one set before finishing"}
	}
	if err := validateSession(session); err != nil {
		return models.DailyWorkoutLog{}, err
	}
	// Reject unknown exercises before reading anything.
	if _, err := MergeWorkoutSession(nil, session, plan); err != nil {
		return models.DailyWorkoutLog{}, err
	}

	current, _, err := a.WorkoutLog(ctx, userID, date)
	if err != nil {
		return models.DailyWorkoutLog{}, err
	}
	merged, err := MergeWorkoutSession(keepPlanned(current.Exercises, plan), session, plan)
	if err != nil {
		return models.DailyWorkoutLog{}, err
	}

	completedAt := a.now().Format(time.RFC3339)
	fields := store.Fields{
		"userId":         userID,
		"date":           date,
		"exercises":      merged,
		"workoutPlan":    plan,
		"totalExercises": len(plan),
		"completedAt":    completedAt,
		"createdAt":      store.ServerTimestamp,
	}
	if err := a.store.UpsertMerge(ctx, a.paths.DayDoc(userID, store.WorkoutLogs, date), fields); err != nil {
		return models.DailyWorkoutLog{}, a.storeErr("write workout log", err)
	}

	a.metrics.CounterWorkoutsFinished.Inc()
	a.logger.Info("workout saved", "user", userID, "date", date, "exercises", len(merged), "volume", SessionVolume(merged))

	current.Exercises = merged
	current.WorkoutPlan = plan
	current.TotalExercises = len(plan)
	current.CompletedAt = completedAt
	return current, nil
}

// keepPlanned drops stored exercises that are not in plan, so a plan changed
// later in the day never leaves orphaned keys behind.
func keepPlanned(exercises models.SessionLog, plan models.WorkoutPlan) models.SessionLog {
	kept := make(models.SessionLog, len(exercises))
	for name, sets := range exercises {
		if plan.Has(name) {
			kept[name] = sets
		}
	}
	return kept
}

type storedPlan struct {
	Workout models.WorkoutPlan `json:"workout" firestore:"workout"`
}

// SavePlan keeps the validated plan shown for a day so a later finish can be
// checked against it. Saving again replaces the plan.
func (a *Aggregator) SavePlan(ctx context.Context, userID, date string, plan models.WorkoutPlan) error {
	if err := validateDay(userID, date); err != nil {
		return err
	}
	if err := plan.Validate(); err != nil {
		return err
	}
	fields := store.Fields{
		"userId":      userID,
		"date":        date,
		"workout":     plan,
		"generatedAt": store.ServerTimestamp,
	}
	if err := a.store.UpsertMerge(ctx, a.paths.DayDoc(userID, store.WorkoutPlans, date), fields); err != nil {
		return a.storeErr("write workout plan", err)
	}
	a.logger.Debug("workout plan saved", "user", userID, "date", date, "exercises", len(plan))
	return nil
}

// Plan returns the plan saved for a day, if any.
func (a *Aggregator) Plan(ctx context.Context, userID, date string) (models.WorkoutPlan, bool, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, false, err
	}
	doc, ok, err := a.store.Get(ctx, a.paths.DayDoc(userID, store.WorkoutPlans, date))
	if err != nil {
		return nil, false, a.storeErr("read workout plan", err)
	}
	if !ok {
		return nil, false, nil
	}
	var sp storedPlan
	if err := doc.DataTo(&sp); err != nil {
		return nil, false, &models.StoreError{Op: "decode workout plan", Err: err}
	}
	return sp.Workout, true, nil
}
