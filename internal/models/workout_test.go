// ABOUTME: Tests for workout plan and set entry models.
// ABOUTME: Validates plan checks and numeric-or-empty set values.
package models

import (
	"errors"
	"testing"
)

func validExercise(name string) Exercise {
	return Exercise{Name: name, Sets: 3, Reps: "8-12", Group: "Chest", Instructions: "Keep your core tight."}
}

func TestWorkoutPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    WorkoutPlan
		wantErr bool
	}{
		{"valid", WorkoutPlan{validExercise("Push-up")}, false},
		{"empty", WorkoutPlan{}, true},
		{"zero sets", WorkoutPlan{{Name: "Push-up", Sets: 0, Reps: "10", Group: "Chest", Instructions: "x"}}, true},
		{"blank name", WorkoutPlan{{Name: " ", Sets: 3, Reps: "10", Group: "Chest", Instructions: "x"}}, true},
		{"blank reps", WorkoutPlan{{Name: "Curl", Sets: 3, Reps: "", Group: "Arms", Instructions: "x"}}, true},
		{"blank group", WorkoutPlan{{Name: "Curl", Sets: 3, Reps: "10", Group: "", Instructions: "x"}}, true},
		{"blank instructions", WorkoutPlan{{Name: "Curl", Sets: 3, Reps: "10", Group: "Arms"}}, true},
		{"second invalid", WorkoutPlan{validExercise("Push-up"), {Name: "Curl"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("expected ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestWorkoutPlanHas(t *testing.T) {
	plan := WorkoutPlan{validExercise("Push-up"), validExercise("Plank")}

	if !plan.Has("Plank") {
		t.Error("expected plan to contain Plank")
	}
	if plan.Has("Sit-up") {
		t.Error("expected plan not to contain Sit-up")
	}
	if _, ok := plan.Find("Push-up"); !ok {
		t.Error("expected Find to locate Push-up")
	}
}

func TestParseSetValue(t *testing.T) {
	tests := []struct {
		input   string
		want    SetValue
		wantErr bool
	}{
		{"", "", false},
		{"  ", "", false},
		{"15", "15", false},
		{" 12.5 ", "12.5", false},
		{"-3", "", true},
		{"heavy", "", true},
		{"NaN", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSetValue("reps", tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSetValue(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSetValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetValueNumber(t *testing.T) {
	if v, ok := SetValue("20").Number(); !ok || v != 20 {
		t.Errorf("Number() = %v, %v; want 20, true", v, ok)
	}
	if _, ok := SetValue("").Number(); ok {
		t.Error("expected empty value to be non-numeric")
	}
	if _, ok := SetValue("lots").Number(); ok {
		t.Error("expected free text to be non-numeric")
	}
}

func TestWorkoutSetEntryIsEmpty(t *testing.T) {
	if !(WorkoutSetEntry{}).IsEmpty() {
		t.Error("expected zero entry to be empty")
	}
	if (WorkoutSetEntry{Reps: "15"}).IsEmpty() {
		t.Error("expected entry with reps to be non-empty")
	}
}
