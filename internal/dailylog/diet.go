// ABOUTME: Pure diet log operations: meal ids, add, delete and totals.
// ABOUTME: Totals are always recomputed from the full meal sequence.
package dailylog

import (
	"sync"
	"time"

	"github.com/harperreed/fitlog/internal/models"
)

// Totals are the derived sums of a diet log.
type Totals struct {
	Calories int `json:"totalCalories"`
	Protein  int `json:"totalProtein"`
}

// ComputeTotals sums calories and protein over meals.
func ComputeTotals(meals []models.MealEntry) Totals {
	var t Totals
	for _, m := range meals {
		t.Calories += m.Calories
		t.Protein += m.Protein
	}
	return t
}

// IDSource issues creation-time meal ids in Unix milliseconds. Two meals
// added within the same millisecond still get distinct, increasing ids.
type IDSource struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewIDSource returns a source driven by now; nil means time.Now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns an id greater than every id it issued before and every id in existing.
func (s *IDSource) Next(existing []models.MealEntry) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	for _, m := range existing {
		if m.ID >= id {
			id = m.ID + 1
		}
	}
	s.last = id
	return id
}

// AddMeal validates input and returns a new meal sequence with the entry
// appended. existing is never modified; on error nothing should be written.
func AddMeal(existing []models.MealEntry, input models.MealInput, ids *IDSource) ([]models.MealEntry, Totals, error) {
	entry, err := input.Parse()
	if err != nil {
		return nil, Totals{}, err
	}
	entry.ID = ids.Next(existing)

	meals := make([]models.MealEntry, 0, len(existing)+1)
	meals = append(meals, existing...)
	meals = append(meals, entry)
	return meals, ComputeTotals(meals), nil
}

// DeleteMeal returns a new sequence without the meal with mealID.
// Deleting an id that is not present returns an equal copy.
func DeleteMeal(existing []models.MealEntry, mealID int64) ([]models.MealEntry, Totals) {
	meals := make([]models.MealEntry, 0, len(existing))
	for _, m := range existing {
		if m.ID != mealID {
			meals = append(meals, m)
		}
	}
	return meals, ComputeTotals(meals)
}
