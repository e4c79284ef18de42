// ABOUTME: Meal entry and daily diet log models.
// ABOUTME: Parses raw meal form fields into validated entries.
package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// MealEntry is a single logged meal. Entries are immutable once created;
// the only mutation is removal from the parent log.
type MealEntry struct {
	ID       int64  `json:"id" firestore:"id"`
	Name     string `json:"name" firestore:"name"`
	Calories int    `json:"calories" firestore:"calories"`
	Protein  int    `json:"protein" firestore:"protein"`
}

// DailyDietLog aggregates one user's meals for one calendar date.
type DailyDietLog struct {
	UserID        string      `json:"userId" firestore:"userId"`
	Date          string      `json:"date" firestore:"date"`
	Meals         []MealEntry `json:"meals" firestore:"meals"`
	TotalCalories int         `json:"totalCalories" firestore:"totalCalories"`
	TotalProtein  int         `json:"totalProtein" firestore:"totalProtein"`
	UpdatedAt     time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

// MealInput holds the raw, user-entered fields of a meal before validation.
type MealInput struct {
	Name     string `json:"name"`
	Calories string `json:"calories"`
	Protein  string `json:"protein"`
}

// Parse validates the input and returns an entry without an ID.
func (in MealInput) Parse() (MealEntry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return MealEntry{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	calories, err := parseAmount("calories", in.Calories)
	if err != nil {
		return MealEntry{}, err
	}
	protein, err := parseAmount("protein", in.Protein)
	if err != nil {
		return MealEntry{}, err
	}
	return MealEntry{Name: name, Calories: calories, Protein: protein}, nil
}

// parseAmount accepts a non-negative number and truncates any fraction.
func parseAmount(field, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &ValidationError{Field: field, Reason: "is required"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: field, Reason: "must be a number"}
	}
	if v < 0 {
		return 0, &ValidationError{Field: field, Reason: "must not be negative"}
	}
	if v > math.MaxInt32 {
		return 0, &ValidationError{Field: field, Reason: "is too large"}
	}
	return int(v), nil
}

// NutritionEstimate is a generated calorie/protein guess for a meal
// description. It is only ever used to pre-fill a MealInput.
type NutritionEstimate struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
}

// MealInput converts the estimate into editable form fields.
func (e NutritionEstimate) MealInput(name string) MealInput {
	return MealInput{
		Name:     name,
		Calories: strconv.FormatFloat(e.Calories, 'f', -1, 64),
		Protein:  strconv.FormatFloat(e.Protein, 'f', -1, 64),
	}
}
