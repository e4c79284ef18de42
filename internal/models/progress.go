// ABOUTME: Progress entry model, daily targets and date key helpers.
// ABOUTME: Dates are zero-padded YYYY-MM-DD so string order equals calendar order.
package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout of every date key.
const DateLayout = "2006-01-02"

// ProgressEntry is one weigh-in. Entries are append-only.
type ProgressEntry struct {
	ID        string    `json:"id" firestore:"-"`
	UserID    string    `json:"userId" firestore:"userId"`
	Date      string    `json:"date" firestore:"date"`
	Weight    float64   `json:"weight" firestore:"weight"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// ParseWeight validates a raw weight field; it must be a positive number.
func ParseWeight(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &ValidationError{Field: "weight", Reason: "is required"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: "weight", Reason: "must be a number"}
	}
	if v <= 0 {
		return 0, &ValidationError{Field: "weight", Reason: "must be greater than zero"}
	}
	return v, nil
}

// DateKey formats t as a date key in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the date key for the local clock.
func Today() string {
	return DateKey(time.Now())
}

// ParseDateKey accepts only the zero-padded YYYY-MM-DD form.
func ParseDateKey(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return "", &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return s, nil
}

// Targets are the daily nutrition goals.
type Targets struct {
	Calories int `json:"calorieTarget"`
	Protein  int `json:"proteinTarget"`
}

// DefaultTargets are used when configuration does not override them.
var DefaultTargets = Targets{Calories: 2300, Protein: 100}

// CalorieProgress returns consumed calories as a percentage of the target, capped at 100.
func (t Targets) CalorieProgress(consumed int) float64 {
	return percentOf(consumed, t.Calories)
}

// ProteinProgress returns consumed protein as a percentage of the target, capped at 100.
func (t Targets) ProteinProgress(consumed int) float64 {
	return percentOf(consumed, t.Protein)
}

func percentOf(current, target int) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(100, float64(current)/float64(target)*100)
}
