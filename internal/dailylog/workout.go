// ABOUTME: Pure workout session operations: merge against the plan, volume, finish guard.
// ABOUTME: Merging is last-write-wins per exercise and never mutates its inputs.
package dailylog

import "github.com/harperreed/fitlog/internal/models"

// MergeWorkoutSession returns existing with every exercise in session
// replaced wholesale. Exercises only in existing are kept. Any session
// exercise missing from plan fails the whole merge.
func MergeWorkoutSession(existing, session models.SessionLog, plan models.WorkoutPlan) (models.SessionLog, error) {
	for name := range session {
		if !plan.Has(name) {
			return nil, &models.PlanMismatchError{Exercise: name}
		}
	}

	merged := make(models.SessionLog, len(existing)+len(session))
	for name, sets := range existing {
		merged[name] = sets
	}
	for name, sets := range session {
		merged[name] = append([]models.WorkoutSetEntry(nil), sets...)
	}
	return merged, nil
}

// Volume sums weight × reps over sets. Empty or unparseable fields count as zero.
func Volume(sets []models.WorkoutSetEntry) float64 {
	var total float64
	for _, s := range sets {
		w, ok := s.Weight.Number()
		if !ok {
			continue
		}
		r, ok := s.Reps.Number()
		if !ok {
			continue
		}
		total += w * r
	}
	return total
}

// SessionVolume sums Volume over every exercise.
func SessionVolume(session models.SessionLog) float64 {
	var total float64
	for _, sets := range session {
		total += Volume(sets)
	}
	return total
}

// HasLoggedSets reports whether at least one set has a weight or reps entered.
func HasLoggedSets(session models.SessionLog) bool {
	for _, sets := range session {
		for _, s := range sets {
			if !s.IsEmpty() {
				return true
			}
		}
	}
	return false
}
