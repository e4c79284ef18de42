// ABOUTME: Prompt templates for workout, nutrition and progress generation.
// ABOUTME: Wording is parameterized by the user's configured profile.
package generate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/fitlog/internal/progress"
)

// Profile describes the user for prompt wording.
type Profile struct {
	WeightKg      float64 `json:"weightKg"`
	Sex           string  `json:"sex"`
	Location      string  `json:"location"`
	Goal          string  `json:"goal"`
	Equipment     string  `json:"equipment"`
	Focus         string  `json:"focus"`
	Restrictions  string  `json:"restrictions"`
	ExerciseCount string  `json:"exerciseCount"`
	Cuisine       string  `json:"cuisine"`
	ProgramLength string  `json:"programLength"`
}

// DefaultProfile matches the tracker's original audience.
var DefaultProfile = Profile{
	WeightKg:      55,
	Sex:           "male",
	Location:      "Ghana",
	Goal:          "body recomposition (building muscle while managing fat)",
	Equipment:     "The user works out at home and only has access to dumbbells.",
	Focus:         "the upper body: specifically chest, shoulders, arms (biceps and triceps), and abs",
	Restrictions:  "Do NOT include any exercises that require a bench.",
	ExerciseCount: "5-6",
	Cuisine:       "Ghanaian",
	ProgramLength: "3-month",
}

// WithDefaults fills empty fields from DefaultProfile.
func (p Profile) WithDefaults() Profile {
	d := DefaultProfile
	if p.WeightKg > 0 {
		d.WeightKg = p.WeightKg
	}
	d.Sex = orDefault(p.Sex, d.Sex)
	d.Location = orDefault(p.Location, d.Location)
	d.Goal = orDefault(p.Goal, d.Goal)
	d.Equipment = orDefault(p.Equipment, d.Equipment)
	d.Focus = orDefault(p.Focus, d.Focus)
	d.Restrictions = orDefault(p.Restrictions, d.Restrictions)
	d.ExerciseCount = orDefault(p.ExerciseCount, d.ExerciseCount)
	d.Cuisine = orDefault(p.Cuisine, d.Cuisine)
	d.ProgramLength = orDefault(p.ProgramLength, d.ProgramLength)
	return d
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func (p Profile) who() string {
	return fmt.Sprintf("%skg %s in %s", strconv.FormatFloat(p.WeightKg, 'f', -1, 64), p.Sex, p.Location)
}

func workoutPrompt(p Profile) string {
	return fmt.Sprintf(`You are an expert fitness coach. Create a workout plan for a %s whose goal is %s. %s The main focus should be on %s. The workout should include a mix of equipment and bodyweight exercises. %s Provide %s exercises in total. Respond with ONLY a JSON object. The root of the object should be a key named "workout", which is an array of exercise objects. Each exercise object MUST have these exact keys: "name" (string), "sets" (number), "reps" (string, e.g., "8-12" or "30-60s"), "group" (string, e.g., "Chest", "Shoulders", "Arms", "Abs"), and "instructions" (string, clear and concise).`,
		p.who(), p.Goal, p.Equipment, p.Focus, p.Restrictions, p.ExerciseCount)
}

func nutritionPrompt(p Profile, description string) string {
	return fmt.Sprintf(`You are a nutrition expert for %s food. Analyze the following meal description and provide a reasonable estimate for its calories and protein. The user is a %s whose goal is %s. Meal: %q. Respond with only a JSON object with "calories" (number) and "protein" (number) keys.`,
		p.Cuisine, p.who(), p.Goal, description)
}

func progressPrompt(p Profile, series []progress.Point, trend progress.Trend) string {
	data := make([]string, len(series))
	for i, pt := range series {
		data[i] = fmt.Sprintf("%s: %skg", pt.Date, strconv.FormatFloat(pt.Weight, 'f', -1, 64))
	}
	return fmt.Sprintf(`Act as a positive and motivational fitness coach. The user is a %s on a %s %s. Based on this weight progress data, write a short, encouraging summary (2-3 sentences). The overall trend is %s (%+.1fkg from %s to %s); explain what it means for the goal. Offer one simple, actionable tip for the upcoming week. Data: %s`,
		p.who(), p.ProgramLength, p.Goal, trend.Direction, trend.Change, trend.Start.Date, trend.End.Date, strings.Join(data, ", "))
}
