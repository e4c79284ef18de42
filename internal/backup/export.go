// ABOUTME: Export and import of a user's fitlog history.
// ABOUTME: Supports JSON (restorable), YAML and Markdown export formats.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/fitlog/internal/dailylog"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/progress"
	"gopkg.in/yaml.v3"
)

const (
	Version = "1.0"
	Tool    = "fitlog"
)

// ExportData represents the full export format for fitlog data.
type ExportData struct {
	Version      string                        `json:"version" yaml:"version"`
	ExportedAt   time.Time                     `json:"exported_at" yaml:"exported_at"`
	Tool         string                        `json:"tool" yaml:"tool"`
	UserID       string                        `json:"user_id" yaml:"user_id"`
	DietLogs     []models.DailyDietLog         `json:"diet_logs" yaml:"diet_logs"`
	WorkoutLogs  []models.DailyWorkoutLog      `json:"workout_logs" yaml:"workout_logs"`
	WorkoutPlans map[string]models.WorkoutPlan `json:"workout_plans" yaml:"workout_plans"`
	Progress     []models.ProgressEntry        `json:"progress" yaml:"progress"`
}

// RestoreResult counts what an import wrote.
type RestoreResult struct {
	DietLogs     int
	WorkoutLogs  int
	WorkoutPlans int
	Weights      int
}

// Service reads and writes whole histories through the domain services.
type Service struct {
	agg    *dailylog.Aggregator
	reader *progress.Reader
	now    func() time.Time
}

// NewService creates a backup Service.
func NewService(agg *dailylog.Aggregator, reader *progress.Reader) *Service {
	return &Service{agg: agg, reader: reader, now: time.Now}
}

// Collect retrieves all of a user's data for export.
func (s *Service) Collect(ctx context.Context, userID string) (*ExportData, error) {
	diet, err := s.agg.DietLogs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list diet logs: %w", err)
	}
	workouts, err := s.agg.WorkoutLogs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list workout logs: %w", err)
	}
	plans, err := s.agg.Plans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list workout plans: %w", err)
	}
	entries, err := s.reader.Entries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	return &ExportData{
		Version:      Version,
		ExportedAt:   s.now(),
		Tool:         Tool,
		UserID:       userID,
		DietLogs:     diet,
		WorkoutLogs:  workouts,
		WorkoutPlans: plans,
		Progress:     entries,
	}, nil
}

// Restore writes exported data for userID. Day documents are upserted, so
// restoring twice leaves them unchanged; weigh-ins are appended each time.
func (s *Service) Restore(ctx context.Context, userID string, data *ExportData) (RestoreResult, error) {
	var res RestoreResult

	for _, dl := range data.DietLogs {
		if err := s.agg.RestoreDietLog(ctx, userID, dl); err != nil {
			return res, fmt.Errorf("import diet log %s: %w", dl.Date, err)
		}
		res.DietLogs++
	}

	dates := make([]string, 0, len(data.WorkoutPlans))
	for date := range data.WorkoutPlans {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		if err := s.agg.SavePlan(ctx, userID, date, data.WorkoutPlans[date]); err != nil {
			return res, fmt.Errorf("import workout plan %s: %w", date, err)
		}
		res.WorkoutPlans++
	}

	for _, wl := range data.WorkoutLogs {
		if err := s.agg.RestoreWorkoutLog(ctx, userID, wl); err != nil {
			return res, fmt.Errorf("import workout log %s: %w", wl.Date, err)
		}
		res.WorkoutLogs++
	}

	for _, e := range data.Progress {
		if _, err := s.reader.RestoreEntry(ctx, userID, e); err != nil {
			return res, fmt.Errorf("import weight %s: %w", e.Date, err)
		}
		res.Weights++
	}

	return res, nil
}

// ExportJSON encodes data as indented JSON.
func ExportJSON(data *ExportData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// ParseJSON decodes a JSON export and checks that it came from fitlog.
func ParseJSON(raw []byte) (*ExportData, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	if data.Tool != Tool {
		return nil, fmt.Errorf("not a fitlog export (tool %q)", data.Tool)
	}
	if data.Version != Version {
		return nil, fmt.Errorf("unsupported export version %q", data.Version)
	}
	return &data, nil
}

// ExportYAML encodes data as human-readable YAML.
func ExportYAML(data *ExportData) ([]byte, error) {
	yamlData := struct {
		Version    string        `yaml:"version"`
		ExportedAt string        `yaml:"exported_at"`
		Tool       string        `yaml:"tool"`
		UserID     string        `yaml:"user_id"`
		Diet       []yamlDay     `yaml:"diet"`
		Workouts   []yamlWorkout `yaml:"workouts"`
		Weights    []yamlWeight  `yaml:"weights"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		UserID:     data.UserID,
		Diet:       make([]yamlDay, 0, len(data.DietLogs)),
		Workouts:   make([]yamlWorkout, 0, len(data.WorkoutLogs)),
		Weights:    make([]yamlWeight, 0, len(data.Progress)),
	}

	for _, dl := range data.DietLogs {
		day := yamlDay{Date: dl.Date, Calories: dl.TotalCalories, Protein: dl.TotalProtein}
		for _, m := range dl.Meals {
			day.Meals = append(day.Meals, yamlMeal{Name: m.Name, Calories: m.Calories, Protein: m.Protein})
		}
		yamlData.Diet = append(yamlData.Diet, day)
	}

	for _, wl := range data.WorkoutLogs {
		yw := yamlWorkout{
			Date:        wl.Date,
			CompletedAt: wl.CompletedAt,
			Volume:      dailylog.SessionVolume(wl.Exercises),
			Exercises:   make(map[string][]yamlSet, len(wl.Exercises)),
		}
		for name, sets := range wl.Exercises {
			for _, set := range sets {
				yw.Exercises[name] = append(yw.Exercises[name], yamlSet{Weight: string(set.Weight), Reps: string(set.Reps)})
			}
		}
		yamlData.Workouts = append(yamlData.Workouts, yw)
	}

	for _, p := range progress.OrderedSeries(data.Progress) {
		yamlData.Weights = append(yamlData.Weights, yamlWeight{Date: p.Date, Weight: p.Weight})
	}

	return yaml.Marshal(yamlData)
}

type yamlDay struct {
	Date     string     `yaml:"date"`
	Calories int        `yaml:"calories"`
	Protein  int        `yaml:"protein"`
	Meals    []yamlMeal `yaml:"meals,omitempty"`
}

type yamlMeal struct {
	Name     string `yaml:"name"`
	Calories int    `yaml:"calories"`
	Protein  int    `yaml:"protein"`
}

type yamlWorkout struct {
	Date        string               `yaml:"date"`
	CompletedAt string               `yaml:"completed_at,omitempty"`
	Volume      float64              `yaml:"volume"`
	Exercises   map[string][]yamlSet `yaml:"exercises"`
}

type yamlSet struct {
	Weight string `yaml:"weight,omitempty"`
	Reps   string `yaml:"reps,omitempty"`
}

type yamlWeight struct {
	Date   string  `yaml:"date"`
	Weight float64 `yaml:"weight"`
}

// ExportMarkdown renders daily totals, workouts and weigh-ins as tables.
// A non-empty since keeps only dates on or after it.
func ExportMarkdown(data *ExportData, since string) string {
	var sb strings.Builder
	keep := func(date string) bool { return since == "" || date >= since }

	sb.WriteString(fmt.Sprintf("# Fitlog Export - %s\n\n", data.ExportedAt.Format(models.DateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", data.ExportedAt.Format(time.RFC3339)))

	sb.WriteString("## Diet\n\n")
	sb.WriteString("| Date | Meals | Calories | Protein |\n")
	sb.WriteString("|------|-------|----------|---------|\n")
	for _, dl := range data.DietLogs {
		if !keep(dl.Date) {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %d kcal | %d g |\n", dl.Date, len(dl.Meals), dl.TotalCalories, dl.TotalProtein))
	}
	sb.WriteString("\n")

	sb.WriteString("## Workouts\n\n")
	sb.WriteString("| Date | Exercises | Volume |\n")
	sb.WriteString("|------|-----------|--------|\n")
	for _, wl := range data.WorkoutLogs {
		if !keep(wl.Date) {
			continue
		}
		names := make([]string, 0, len(wl.Exercises))
		for name := range wl.Exercises {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString(fmt.Sprintf("| %s | %s | %.0f kg |\n", wl.Date, strings.Join(names, ", "), dailylog.SessionVolume(wl.Exercises)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Weight\n\n")
	sb.WriteString("| Date | Weight |\n")
	sb.WriteString("|------|--------|\n")
	for _, p := range progress.OrderedSeries(data.Progress) {
		if !keep(p.Date) {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %.1f kg |\n", p.Date, p.Weight))
	}

	return sb.String()
}
