// ABOUTME: Validation of generated workout plans and nutrition estimates.
// ABOUTME: Generated text is untrusted; anything malformed is rejected whole.
package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/harperreed/fitlog/internal/models"
)

// WorkoutSchema is the response schema sent with workout prompts.
var WorkoutSchema = &Schema{
	Type: "OBJECT",
	Properties: map[string]*Schema{
		"workout": {
			Type: "ARRAY",
			Items: &Schema{
				Type: "OBJECT",
				Properties: map[string]*Schema{
					"name":         {Type: "STRING"},
					"sets":         {Type: "NUMBER"},
					"reps":         {Type: "STRING"},
					"group":        {Type: "STRING"},
					"instructions": {Type: "STRING"},
				},
				Required: []string{"name", "sets", "reps", "group", "instructions"},
			},
		},
	},
	Required: []string{"workout"},
}

// NutritionSchema is the response schema sent with nutrition prompts.
var NutritionSchema = &Schema{
	Type: "OBJECT",
	Properties: map[string]*Schema{
		"calories": {Type: "NUMBER"},
		"protein":  {Type: "NUMBER"},
	},
	Required: []string{"calories", "protein"},
}

type rawExercise struct {
	Name         string      `json:"name"`
	Sets         *float64    `json:"sets"`
	Reps         string      `json:"reps"`
	Group        string      `json:"group"`
	Instructions string      `json:"instructions"`
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// ValidateWorkoutPlan parses {"workout":[...]} and checks every exercise.
func ValidateWorkoutPlan(text string) (models.WorkoutPlan, error) {
	fail := func(err error) (models.WorkoutPlan, error) {
		return nil, &models.GenerationError{Op: "validate workout plan", Err: err}
	}

	var raw struct {
		Workout *[]rawExercise `json:"workout"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return fail(fmt.Errorf("decode: %w", err))
	}
	if raw.Workout == nil {
		return fail(errors.New(`missing "workout" key`))
	}

	plan := make(models.WorkoutPlan, 0, len(*raw.Workout))
	for i, r := range *raw.Workout {
		if r.Sets == nil {
			return fail(fmt.Errorf("workout[%d].sets is missing", i))
		}
		sets := *r.Sets
		if sets != math.Trunc(sets) || sets <= 0 || sets > math.MaxInt32 {
			return fail(fmt.Errorf("workout[%d].sets %v is not a positive integer", i, sets))
		}
		plan = append(plan, models.Exercise{
			Name:         strings.TrimSpace(r.Name),
			Sets:         int(sets),
			Reps:         strings.TrimSpace(r.Reps),
			Group:        strings.TrimSpace(r.Group),
			Instructions: strings.TrimSpace(r.Instructions),
		})
	}
	if err := plan.Validate(); err != nil {
		return fail(err)
	}
	return plan, nil
}

// ParseNutritionEstimate parses {"calories":n,"protein":n}. Both must be
// present, numeric and non-negative.
func ParseNutritionEstimate(text string) (models.NutritionEstimate, error) {
	fail := func(err error) (models.NutritionEstimate, error) {
		return models.NutritionEstimate{}, &models.GenerationError{Op: "validate nutrition estimate", Err: err}
	}

	var raw struct {
		Calories *float64 `json:"calories"`
		Protein  *float64 `json:"protein"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return fail(fmt.Errorf("decode: %w", err))
	}
	switch {
	case raw.Calories == nil:
		return fail(errors.New("missing calories"))
	case raw.Protein == nil:
		return fail(errors.New("missing protein"))
	case *raw.Calories < 0:
		return fail(errors.New("calories must not be negative"))
	case *raw.Protein < 0:
		return fail(errors.New("protein must not be negative"))
	}
	return models.NutritionEstimate{Calories: *raw.Calories, Protein: *raw.Protein}, nil
}
