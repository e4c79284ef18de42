// ABOUTME: Coach drives the completion provider for plans, estimates and summaries.
// ABOUTME: Generated output is validated here before any caller can adopt it.
package generate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/fitlog/internal/logging"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/progress"
	"github.com/harperreed/fitlog/internal/telemetry"
)

// Coach wraps a Provider with prompts and validation.
type Coach struct {
	provider Provider
	profile  Profile
	logger   *log.Logger
	metrics  *telemetry.Manager
}

// NewCoach creates a Coach. A nil logger or metrics manager is replaced by a no-op one.
func NewCoach(provider Provider, profile Profile, logger *log.Logger, metrics *telemetry.Manager) *Coach {
	if logger == nil {
		logger = logging.Discard()
	}
	if metrics == nil {
		metrics = telemetry.NewTestManager()
	}
	return &Coach{provider: provider, profile: profile.WithDefaults(), logger: logger, metrics: metrics}
}

// Profile returns the effective profile.
func (c *Coach) Profile() Profile {
	return c.profile
}

func (c *Coach) complete(ctx context.Context, kind, prompt string, schema *Schema) (string, error) {
	start := time.Now()
	text, err := c.provider.Complete(ctx, prompt, schema)
	c.metrics.HistGenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.CounterGenerations.WithLabelValues(kind, "error").Inc()
		c.logger.Warn("completion failed", "kind", kind, "err", err)
		var ge *models.GenerationError
		if errors.As(err, &ge) {
			return "", err
		}
		return "", &models.GenerationError{Op: kind, Err: err}
	}
	return text, nil
}

func (c *Coach) rejected(kind string, err error) {
	c.metrics.CounterGenerations.WithLabelValues(kind, "rejected").Inc()
	c.logger.Warn("generated content rejected", "kind", kind, "err", err)
}

// GenerateWorkout asks for a plan and returns it only if it validates.
func (c *Coach) GenerateWorkout(ctx context.Context) (models.WorkoutPlan, error) {
	text, err := c.complete(ctx, "workout", workoutPrompt(c.profile), WorkoutSchema)
	if err != nil {
		return nil, err
	}
	plan, err := ValidateWorkoutPlan(text)
	if err != nil {
		c.rejected("workout", err)
		return nil, err
	}
	c.metrics.CounterGenerations.WithLabelValues("workout", "ok").Inc()
	return plan, nil
}

// EstimateNutrition returns a calorie/protein guess for a meal description.
// The estimate is a pre-fill only and is never written by the Coach.
func (c *Coach) EstimateNutrition(ctx context.Context, description string) (models.NutritionEstimate, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return models.NutritionEstimate{}, &models.ValidationError{Field: "description", Reason: "must not be empty"}
	}
	text, err := c.complete(ctx, "nutrition", nutritionPrompt(c.profile, description), NutritionSchema)
	if err != nil {
		return models.NutritionEstimate{}, err
	}
	est, err := ParseNutritionEstimate(text)
	if err != nil {
		c.rejected("nutrition", err)
		return models.NutritionEstimate{}, err
	}
	c.metrics.CounterGenerations.WithLabelValues("nutrition", "ok").Inc()
	return est, nil
}

// SummarizeProgress writes a short coaching summary for an ordered series.
// It refuses series with fewer than two points.
func (c *Coach) SummarizeProgress(ctx context.Context, series []progress.Point) (string, error) {
	trend, ok := progress.TrendSummary(series)
	if !ok {
		return "", &models.ValidationError{Field: "series", Reason: "need at least two weigh-ins for a summary"}
	}
	text, err := c.complete(ctx, "summary", progressPrompt(c.profile, series, trend), nil)
	if err != nil {
		return "", err
	}
	c.metrics.CounterGenerations.WithLabelValues("summary", "ok").Inc()
	return strings.TrimSpace(text), nil
}
