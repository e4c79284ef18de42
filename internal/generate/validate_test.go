// ABOUTME: Tests for generated plan and estimate validation.
// ABOUTME: Malformed output must be rejected whole.
package generate

import (
	"errors"
	"testing"

	"github.com/harperreed/fitlog/internal/models"
)

func TestValidateWorkoutPlan(t *testing.T) {
	valid := `{"workout":[{"name":"Push-up","sets":3,"reps":"10-12","group":"Chest","instructions":"Keep a straight line."},{"name":"Curl","sets":4.0,"reps":"8-12","group":"Arms","instructions":"No swinging."}]}`

	plan, err := ValidateWorkoutPlan(valid)
	if err != nil {
		t.Fatalf("ValidateWorkoutPlan() error: %v", err)
	}
	if len(plan) != 2 || plan[0].Name != "Push-up" || plan[1].Sets != 4 {
		t.Errorf("unexpected plan: %+v", plan)
	}

	fenced := "```json\n" + valid + "\n```"
	if _, err := ValidateWorkoutPlan(fenced); err != nil {
		t.Errorf("fenced plan rejected: %v", err)
	}
}

func TestValidateWorkoutPlanRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", `here is your plan`},
		{"missing key", `{"exercises":[]}`},
		{"empty", `{"workout":[]}`},
		{"fractional sets", `{"workout":[{"name":"A","sets":2.5,"reps":"10","group":"Chest","instructions":"x"}]}`},
		{"zero sets", `{"workout":[{"name":"A","sets":0,"reps":"10","group":"Chest","instructions":"x"}]}`},
		{"missing sets", `{"workout":[{"name":"A","reps":"10","group":"Chest","instructions":"x"}]}`},
		{"numeric reps", `{"workout":[{"name":"A","sets":3,"reps":10,"group":"Chest","instructions":"x"}]}`},
		{"blank name", `{"workout":[{"name":" ","sets":3,"reps":"10","group":"Chest","instructions":"x"}]}`},
		{"missing instructions", `{"workout":[{"name":"A","sets":3,"reps":"10","group":"Chest"}]}`},
		{"quoted sets", `{"workout":[{"name":"A","sets":"3","reps":"10","group":"Chest","instructions":"x"}]}`},
		{"trailing text", `{"workout":[{"name":"A","sets":3,"reps":"10","group":"Chest","instructions":"x"}]} and more`},
		{"second object", `{"workout":[{"name":"A","sets":3,"reps":"10","group":"Chest","instructions":"x"}]}{"workout":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ValidateWorkoutPlan(tt.text)
			var ge *models.GenerationError
			if !errors.As(err, &ge) {
				t.Fatalf("expected GenerationError, got %v", err)
			}
			if plan != nil {
				t.Errorf("expected no plan, got %+v", plan)
			}
		})
	}
}

func TestParseNutritionEstimate(t *testing.T) {
	est, err := ParseNutritionEstimate(`{"calories":420.5,"protein":31}`)
	if err != nil {
		t.Fatalf("ParseNutritionEstimate() error: %v", err)
	}
	if est.Calories != 420.5 || est.Protein != 31 {
		t.Errorf("unexpected estimate: %+v", est)
	}

	rejects := []string{
		`{"calories":"a lot","protein":20}`,
		`{"calories":100}`,
		`{"protein":20}`,
		`{"calories":-5,"protein":20}`,
		`{"calories":100,"protein":-1}`,
		`nope`,
	}
	for _, text := range rejects {
		var ge *models.GenerationError
		if _, err := ParseNutritionEstimate(text); !errors.As(err, &ge) {
			t.Errorf("ParseNutritionEstimate(%s) expected GenerationError, got %v", text, err)
		}
	}
}
