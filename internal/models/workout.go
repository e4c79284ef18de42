// ABOUTME: Workout plan, set entry and daily workout log models.
// ABOUTME: Set fields keep the user's raw text; parsing happens when volume is computed.
package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Exercise is one item of a generated workout plan.
type Exercise struct {
	Name         string `json:"name" firestore:"name"`
	Sets         int    `json:"sets" firestore:"sets"`
	Reps         string `json:"reps" firestore:"reps"`
	Group        string `json:"group" firestore:"group"`
	Instructions string `json:"instructions" firestore:"instructions"`
}

// Validate checks that every field of the exercise is usable.
func (e Exercise) Validate() error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	case e.Sets <= 0:
		return &ValidationError{Field: "sets", Reason: "must be a positive integer"}
	case strings.TrimSpace(e.Reps) == "":
		return &ValidationError{Field: "reps", Reason: "must not be empty"}
	case strings.TrimSpace(e.Group) == "":
		return &ValidationError{Field: "group", Reason: "must not be empty"}
	case strings.TrimSpace(e.Instructions) == "":
		return &ValidationError{Field: "instructions", Reason: "must not be empty"}
	}
	return nil
}

// WorkoutPlan is the ordered exercise list shown for a day.
type WorkoutPlan []Exercise

// Validate rejects an empty plan or any invalid exercise.
func (p WorkoutPlan) Validate() error {
	if len(p) == 0 {
		return &ValidationError{Field: "workout", Reason: "plan has no exercises"}
	}
	for i, e := range p {
		if err := e.Validate(); err != nil {
			ve := err.(*ValidationError)
			ve.Field = "workout[" + strconv.Itoa(i) + "]." + ve.Field
			return ve
		}
	}
	return nil
}

// Names returns the exercise names in plan order.
func (p WorkoutPlan) Names() []string {
	names := make([]string, len(p))
	for i, e := range p {
		names[i] = e.Name
	}
	return names
}

// Has reports whether the plan contains an exercise with the given name.
func (p WorkoutPlan) Has(name string) bool {
	for _, e := range p {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Find returns the exercise with the given name.
func (p WorkoutPlan) Find(name string) (Exercise, bool) {
	for _, e := range p {
		if e.Name == name {
			return e, true
		}
	}
	return Exercise{}, false
}

// SetValue is a numeric-or-empty set field, stored exactly as entered.
type SetValue string

// ParseSetValue validates raw text at the input boundary.
func ParseSetValue(field, raw string) (SetValue, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", &ValidationError{Field: field, Reason: "must be a number or empty"}
	}
	if v < 0 {
		return "", &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return SetValue(s), nil
}

// IsEmpty reports whether nothing was entered.
func (v SetValue) IsEmpty() bool {
	return strings.TrimSpace(string(v)) == ""
}

// Number parses the value. Empty or unparseable text yields false.
func (v SetValue) Number() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// WorkoutSetEntry is one logged set of an exercise.
type WorkoutSetEntry struct {
	Weight SetValue `json:"weight" firestore:"weight"`
	Reps   SetValue `json:"reps" firestore:"reps"`
}

// IsEmpty reports whether neither field was filled in.
func (s WorkoutSetEntry) IsEmpty() bool {
	return s.Weight.IsEmpty() && s.Reps.IsEmpty()
}

// SessionLog maps exercise names to the sets logged for them.
type SessionLog map[string][]WorkoutSetEntry

// DailyWorkoutLog records one user's finished workout for one date.
type DailyWorkoutLog struct {
	UserID         string      `json:"userId" firestore:"userId"`
	Date           string      `json:"date" firestore:"date"`
	Exercises      SessionLog  `json:"exercises" firestore:"exercises"`
	WorkoutPlan    WorkoutPlan `json:"workoutPlan" firestore:"workoutPlan"`
	TotalExercises int         `json:"totalExercises" firestore:"totalExercises"`
	CompletedAt    string      `json:"completedAt,omitempty" firestore:"completedAt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt" firestore:"createdAt"`
}
