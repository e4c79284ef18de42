// ABOUTME: Live dashboard read model joining a day's diet and workout documents.
// ABOUTME: Both subscriptions are released on every exit path.
package dailylog

import (
	"context"

	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/store"
)

// DaySummary is the dashboard view of one day.
type DaySummary struct {
	Date             string  `json:"date"`
	Calories         int     `json:"calories"`
	Protein          int     `json:"protein"`
	CalorieTarget    int     `json:"calorieTarget"`
	ProteinTarget    int     `json:"proteinTarget"`
	CaloriePercent   float64 `json:"caloriePercent"`
	ProteinPercent   float64 `json:"proteinPercent"`
	Meals            int     `json:"meals"`
	WorkoutCompleted bool    `json:"workoutCompleted"`
	ExercisesLogged  int     `json:"exercisesLogged"`
	TotalExercises   int     `json:"totalExercises"`
	Volume           float64 `json:"volume"`
}

// Summarize builds a DaySummary from the two day documents.
func Summarize(date string, diet models.DailyDietLog, workout models.DailyWorkoutLog, completed bool, targets models.Targets) DaySummary {
	sum := DaySummary{
		Date:           date,
		Calories:       diet.TotalCalories,
		Protein:        diet.TotalProtein,
		CalorieTarget:  targets.Calories,
		ProteinTarget:  targets.Protein,
		CaloriePercent: targets.CalorieProgress(diet.TotalCalories),
		ProteinPercent: targets.ProteinProgress(diet.TotalProtein),
		Meals:          len(diet.Meals),
	}
	if completed {
		sum.WorkoutCompleted = true
		sum.ExercisesLogged = len(workout.Exercises)
		sum.TotalExercises = workout.TotalExercises
		sum.Volume = SessionVolume(workout.Exercises)
	}
	return sum
}

// Today reads both day documents once and summarizes them.
func (a *Aggregator) Today(ctx context.Context, userID, date string) (DaySummary, error) {
	diet, err := a.DietLog(ctx, userID, date)
	if err != nil {
		return DaySummary{}, err
	}
	workout, ok, err := a.WorkoutLog(ctx, userID, date)
	if err != nil {
		return DaySummary{}, err
	}
	return Summarize(date, diet, workout, ok, a.targets), nil
}

// WatchDay streams a DaySummary whenever either day document changes. The
// channel is closed when ctx ends or either underlying subscription ends.
func (a *Aggregator) WatchDay(ctx context.Context, userID, date string) (<-chan DaySummary, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}

	dietSub, err := a.store.Subscribe(ctx, store.DocQuery(a.paths.DayDoc(userID, store.DietLogs, date)))
	if err != nil {
		return nil, a.storeErr("subscribe diet log", err)
	}
	workoutSub, err := a.store.Subscribe(ctx, store.DocQuery(a.paths.DayDoc(userID, store.WorkoutLogs, date)))
	if err != nil {
		dietSub.Stop()
		return nil, a.storeErr("subscribe workout log", err)
	}

	out := make(chan DaySummary, 1)
	a.metrics.GaugeSubscriptions.Inc()

	go func() {
		defer a.metrics.GaugeSubscriptions.Dec()
		defer close(out)
		defer workoutSub.Stop()
		defer dietSub.Stop()

		var (
			diet               models.DailyDietLog
			workout            models.DailyWorkoutLog
			completed          bool
			haveDiet, haveWork bool
		)
		for {
			select {
			case <-ctx.Done():
				return
			case docs, ok := <-dietSub.Updates():
				if !ok {
					return
				}
				d, err := decodeDietLog(firstDoc(docs), len(docs) > 0, userID, date)
				if err != nil {
					a.logger.Warn("skipping undecodable diet log", "date", date, "err", err)
					continue
				}
				diet, haveDiet = d, true
			case docs, ok := <-workoutSub.Updates():
				if !ok {
					return
				}
				w, err := decodeWorkoutLog(firstDoc(docs), len(docs) > 0, userID, date)
				if err != nil {
					a.logger.Warn("skipping undecodable workout log", "date", date, "err", err)
					continue
				}
				workout, completed, haveWork = w, len(docs) > 0, true
			}
			if !haveDiet || !haveWork {
				continue
			}

			sum := Summarize(date, diet, workout, completed, a.targets)
			select {
			case <-out:
			default:
			}
			out <- sum
		}
	}()

	return out, nil
}

func firstDoc(docs []store.Document) store.Document {
	if len(docs) == 0 {
		return store.Document{}
	}
	return docs[0]
}
