// ABOUTME: Tests for the Coach with a scripted provider.
// ABOUTME: Verifies prompts carry the profile and rejected output never reaches the store.
package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/harperreed/fitlog/internal/dailylog"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/progress"
	"github.com/harperreed/fitlog/internal/store"
	"github.com/harperreed/fitlog/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type scriptedProvider struct {
	text    string
	err     error
	prompts []string
	schemas []*Schema
}

func (p *scriptedProvider) Complete(ctx context.Context, prompt string, schema *Schema) (string, error) {
	p.prompts = append(p.prompts, prompt)
	p.schemas = append(p.schemas, schema)
	return p.text, p.err
}

func TestCoachGenerateWorkout(t *testing.T) {
	provider := &scriptedProvider{text: `{"workout":[{"name":"Push-up","sets":3,"reps":"10","group":"Chest","instructions":"Go slow."}]}`}
	coach := NewCoach(provider, Profile{WeightKg: 70, Location: "Lisbon"}, nil, nil)

	plan, err := coach.GenerateWorkout(context.Background())
	if err != nil {
		t.Fatalf("GenerateWorkout() error: %v", err)
	}
	if len(plan) != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if provider.schemas[0] != WorkoutSchema {
		t.Error("workout schema not sent")
	}
	prompt := provider.prompts[0]
	if !strings.Contains(prompt, "70kg male in Lisbon") || !strings.Contains(prompt, `"workout"`) {
		t.Errorf("prompt does not reflect profile: %s", prompt)
	}
}

func TestCoachProviderErrorIsGenerationError(t *testing.T) {
	metrics := telemetry.NewTestManager()
	coach := NewCoach(&scriptedProvider{err: errors.New("timeout")}, Profile{}, nil, metrics)

	_, err := coach.GenerateWorkout(context.Background())
	var ge *models.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.CounterGenerations.WithLabelValues("workout", "error")); got != 1 {
		t.Errorf("error counter = %v, want 1", got)
	}
}

func TestMalformedEstimateWritesNothing(t *testing.T) {
	s := store.NewMemoryStore()
	defer func() { _ = s.Close() }()
	agg := dailylog.NewAggregator(s, store.Paths{AppID: "test"})
	coach := NewCoach(&scriptedProvider{text: `{"calories":"a lot","protein":20}`}, Profile{}, nil, nil)

	// Mirrors the estimate-then-save flow: the form is only filled on success.
	var form models.MealInput
	est, err := coach.EstimateNutrition(context.Background(), "banku and tilapia")
	if err == nil {
		form = est.MealInput("banku and tilapia")
		_, _ = agg.AddMeal(context.Background(), "u1", "2024-01-01", form)
	}

	var ge *models.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if form != (models.MealInput{}) {
		t.Errorf("form was filled: %+v", form)
	}
	if s.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0", s.Writes())
	}
}

func TestCoachEstimateNutrition(t *testing.T) {
	provider := &scriptedProvider{text: `{"calories":650,"protein":45}`}
	coach := NewCoach(provider, Profile{}, nil, nil)

	est, err := coach.EstimateNutrition(context.Background(), "jollof rice with chicken")
	if err != nil {
		t.Fatalf("EstimateNutrition() error: %v", err)
	}
	if est.Calories != 650 || est.Protein != 45 {
		t.Errorf("unexpected estimate: %+v", est)
	}
	if !strings.Contains(provider.prompts[0], "Ghanaian") {
		t.Errorf("default cuisine missing from prompt: %s", provider.prompts[0])
	}

	_, err = coach.EstimateNutrition(context.Background(), "   ")
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for blank description, got %v", err)
	}
}

func TestCoachSummarizeProgress(t *testing.T) {
	provider := &scriptedProvider{text: "  Nice steady gain. Keep it up!  "}
	coach := NewCoach(provider, Profile{}, nil, nil)

	_, err := coach.SummarizeProgress(context.Background(), []progress.Point{{Date: "2024-01-01", Weight: 55}})
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for one point, got %v", err)
	}
	if len(provider.prompts) != 0 {
		t.Fatal("provider called for a single point")
	}

	series := []progress.Point{{Date: "2024-01-01", Weight: 55}, {Date: "2024-02-01", Weight: 56}}
	summary, err := coach.SummarizeProgress(context.Background(), series)
	if err != nil {
		t.Fatalf("SummarizeProgress() error: %v", err)
	}
	if summary != "Nice steady gain. Keep it up!" {
		t.Errorf("summary = %q", summary)
	}
	if provider.schemas[0] != nil {
		t.Error("summary must not request JSON")
	}
	prompt := provider.prompts[0]
	if !strings.Contains(prompt, "gaining") || !strings.Contains(prompt, "2024-01-01: 55kg, 2024-02-01: 56kg") {
		t.Errorf("prompt missing trend or data: %s", prompt)
	}
}
