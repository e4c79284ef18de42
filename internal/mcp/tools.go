// ABOUTME: MCP tool implementations for meals, workouts and weigh-ins.
// ABOUTME: Every tool acts for the signed-in user; dates default to today.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/fitlog/internal/dailylog"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/progress"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// diet
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_meal",
		Description: "Log a meal with its calories and protein for a day",
	}, s.handleAddMeal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_meal",
		Description: "Remove a meal from a day's diet log by its ID",
	}, s.handleDeleteMeal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_diet_log",
		Description: "Get the meals and totals logged for a day",
	}, s.handleGetDietLog)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "estimate_nutrition",
		Description: "Estimate calories and protein for a meal description, optionally logging it",
	}, s.handleEstimateNutrition)

	// workouts
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "generate_workout",
		Description: "Generate and save the workout plan for a day",
	}, s.handleGenerateWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout_plan",
		Description: "Get the saved workout plan for a day",
	}, s.handleGetWorkoutPlan)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "finish_workout",
		Description: "Record the sets done for exercises in the day's plan",
	}, s.handleFinishWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout_log",
		Description: "Get the finished workout for a day",
	}, s.handleGetWorkoutLog)

	// progress
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_weight",
		Description: "Record a body weight in kg",
	}, s.handleLogWeight)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_progress",
		Description: "Get the weight series in date order with its trend",
	}, s.handleGetProgress)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "summarize_progress",
		Description: "Write a short coaching summary of the weight series",
	}, s.handleSummarizeProgress)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Get the day's calories, protein and workout at a glance",
	}, s.handleGetDashboard)
}

// Tool input/output types

type dayInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
}

type addMealInput struct {
	Date     string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
	Name     string `json:"name" jsonschema:"Meal name"`
	Calories string `json:"calories" jsonschema:"Calories in kcal, a non-negative number"`
	Protein  string `json:"protein" jsonschema:"Protein in grams, a non-negative number"`
}

type deleteMealInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
	ID   int64  `json:"id" jsonschema:"Meal ID from the diet log"`
}

type dietLogOutput struct {
	Date          string             `json:"date"`
	Meals         []models.MealEntry `json:"meals"`
	TotalCalories int                `json:"total_calories"`
	TotalProtein  int                `json:"total_protein"`
}

func newDietLogOutput(dl models.DailyDietLog) dietLogOutput {
	return dietLogOutput{
		Date:          dl.Date,
		Meals:         dl.Meals,
		TotalCalories: dl.TotalCalories,
		TotalProtein:  dl.TotalProtein,
	}
}

type estimateInput struct {
	Date        string `json:"date,omitempty" jsonschema:"Day to log the meal on, defaults to today"`
	Description string `json:"description" jsonschema:"What was eaten, e.g. a plate of jollof rice with chicken"`
	Log         bool   `json:"log,omitempty" jsonschema:"Log the estimate as a meal after estimating"`
}

type estimateOutput struct {
	Calories float64        `json:"calories"`
	Protein  float64        `json:"protein"`
	Logged   bool           `json:"logged"`
	DietLog  *dietLogOutput `json:"diet_log,omitempty"`
}

type planOutput struct {
	Date      string             `json:"date"`
	Exercises models.WorkoutPlan `json:"exercises"`
}

type setInput struct {
	Weight string `json:"weight,omitempty" jsonschema:"Weight in kg, empty if not used"`
	Reps   string `json:"reps,omitempty" jsonschema:"Reps done, empty if not done"`
}

type finishWorkoutInput struct {
	Date string                `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
	Sets map[string][]setInput `json:"sets" jsonschema:"Sets done, keyed by exercise name from the plan"`
}

type workoutLogOutput struct {
	Date           string            `json:"date"`
	Completed      bool              `json:"completed"`
	Exercises      models.SessionLog `json:"exercises,omitempty"`
	TotalExercises int               `json:"total_exercises"`
	CompletedAt    string            `json:"completed_at,omitempty"`
	Volume         float64           `json:"volume"`
}

func newWorkoutLogOutput(date string, wl models.DailyWorkoutLog, completed bool) workoutLogOutput {
	out := workoutLogOutput{Date: date, Completed: completed}
	if completed {
		out.Exercises = wl.Exercises
		out.TotalExercises = wl.TotalExercises
		out.CompletedAt = wl.CompletedAt
		out.Volume = dailylog.SessionVolume(wl.Exercises)
	}
	return out
}

type logWeightInput struct {
	Date   string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
	Weight string `json:"weight" jsonschema:"Body weight in kg"`
}

type weightOutput struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

type emptyInput struct{}

type progressOutput struct {
	Points []progress.Point `json:"points"`
	Trend  *progress.Trend  `json:"trend,omitempty"`
}

type summaryOutput struct {
	Summary string `json:"summary"`
}

// Tool handlers

func (s *Server) handleAddMeal(ctx context.Context, req *mcp.CallToolRequest, input addMealInput) (*mcp.CallToolResult, dietLogOutput, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, dietLogOutput{}, err
	}
	date, err := s.day(input.Date)
	if err != nil {
		return nil, dietLogOutput{}, err
	}

	dl, err := s.agg.AddMeal(ctx, userID, date, models.MealInput{
		Name:     input.Name,
		Calories: input.Calories,
		Protein:  input.Protein,
	})
	if err != nil {
		return nil, dietLogOutput{}, fmt.Errorf("failed to add meal: %w", err)
	}
	return nil, newDietLogOutput(dl), nil
}

func (s *Server) handleDeleteMeal(ctx context.Context, req *mcp.CallToolRequest, input deleteMealInput) (*mcp.CallToolResult, dietLogOutput, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, dietLogOutput{}, err
	}
	date, err := s.day(input.Date)
	if err != nil {
		return nil, dietLogOutput{}, err
	}

	dl, err := s.agg.DeleteMeal(ctx, userID, date, input.ID)
	if err != nil {
		return nil, dietLogOutput{}, fmt.Errorf("failed to delete meal: %w", err)
	}
	return nil, newDietLogOutput(dl), nil
}

func (s *Server) handleGetDietLog(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, dietLogOutput, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, dietLogOutput{}, err
	}
	date, err := s.day(input.Date)
	if err != nil {
		return nil, dietLogOutput{}, err
	}

	dl, err := s.agg.DietLog(ctx, userID, date)
	if err != nil {
		return nil, dietLogOutput{}, fmt.Errorf("failed to read diet log: %w", err)
	}
	return nil, newDietLogOutput(dl), nil
}

func (s *Server) handleEstimateNutrition(ctx context.Context, req *mcp.CallToolRequest, input estimateInput) (*mcp.CallToolResult, estimateOutput, error) {
	if err := s.requireCoach(); err != nil {
		return nil, estimateOutput{}, err
	}
	userID, err := s.userID()
	if err != nil {
		return nil, estimateOutput{}, err
	}
	date, err := s.day(input.Date)
	if err != nil {
		return nil, estimateOutput{}, err
	}

	est, err := s.coach.EstimateNutrition(ctx, input.Description)
	if err != nil {
		return nil, estimateOutput{}, fmt.Errorf("failed to estimate nutrition: %w", err)
	}
	out := estimateOutput{Calories: est.Calories, Protein: est.Protein}
	if !input.Log {
		return nil, out, nil
	}

	dl, err := s.agg.AddMeal(ctx, userID, date, est.MealInput(input.Description))
	if err != nil {
		return nil, estimateOutput{}, fmt.Errorf("failed to add meal: %w", err)
	}
	logged := newDietLogOutput(dl)
	out.Logged = true
	out.DietLog = &logged
	return nil, out, nil
}

func (s *Server) handleGenerateWorkout(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, planOutput, error) {
	if err := s.requireCoach(); err != nil {
		return nil, planOutput{}, err
	}
	userID, err := s.userID()
	if err != nil {
		return nil, planOutput{}, err
	}
	date, err := s.day(input.Date)
	if err != nil {
		return nil, planOutput{}, err
	}

	plan, err := s.coach.GenerateWorkout(ctx)
	if err != nil {
		return nil, planOutput{}, fmt.Errorf("failed to generate workout: %w", err)
	}
	if err := s.agg.SavePlan(ctx, userID, date, plan); err != nil {
		return nil, planOutput{}, fmt.Errorf("failed to save workout plan: %w", err)
	}
	return nil, planOutput{Date: date, Exercises: plan}, nil
}

func (s *Server) handleGetWorkoutPlan(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, planOutput, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, planOutput{}, err
	}
	date, err := s.day(input.Date)
	if err != nil {
		return nil, planOutput{}, err
	}

	plan, ok, err := s.agg.Plan(ctx, userID, date)
	if err != nil {
		return nil, planOutput{}, fmt.Errorf("failed to read workout plan: %w", err)
	}
	if !ok {
		return nil, planOutput{}, fmt.Errorf("no workout plan for %s, call generate_workout first", date)
	}
	return nil, planOutput{Date: date, Exercises: plan}, nil
}

func (s *Server) handleFinishWorkout(ctx context.Context, req *mcp.CallToolRequest, input finishWorkoutInput) (*mcp.CallToolResult, workoutLogOutput, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, workoutLogOutput{}, err
	}
	date, err := s.day(input.Date)
	if err != nil {
		return nil, workoutLogOutput{}, err
	}

	plan, ok, err := s.agg.Plan(ctx, userID, date)
	if err != nil {
		return nil, workoutLogOutput{}, fmt.Errorf("failed to read workout plan: %w", err)
	}
	if !ok {
		return nil, workoutLogOutput{}, fmt.Errorf("no workout plan for %s, call generate_workout first", date)
	}

	session := make(models.SessionLog, len(input.Sets))
	for name, sets := range input.Sets {
		entries := make([]models.WorkoutSetEntry, len(sets))
		for i, set := range sets {
			entries[i] = models.WorkoutSetEntry{Weight: models.SetValue(set.Weight), Reps: models.SetValue(set.Reps)}
		}
		session[name] = entries
	}

	wl, err := s.agg.FinishWorkout(ctx, userID, date, plan, session)
	if err != nil {
		return nil, workoutLogOutput{}, fmt.Errorf("failed to finish workout: %w", err)
	}
	return nil, newWorkoutLogOutput(date, wl, true), nil
}

func (s *Server) handleGetWorkoutLog(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, workoutLogOutput, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, workoutLogOutput{}, err
	}
	date, err := s.day(input.Date)
	if err != nil {
		return nil, workoutLogOutput{}, err
	}

	wl, ok, err := s.agg.WorkoutLog(ctx, userID, date)
	if err != nil {
		return nil, workoutLogOutput{}, fmt.Errorf("failed to read workout log: %w", err)
	}
	return nil, newWorkoutLogOutput(date, wl, ok), nil
}

func (s *Server) handleLogWeight(ctx context.Context, req *mcp.CallToolRequest, input logWeightInput) (*mcp.CallToolResult, weightOutput, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, weightOutput{}, err
	}
	date, err := s.day(input.Date)
	if err != nil {
		return nil, weightOutput{}, err
	}

	entry, err := s.reader.LogWeight(ctx, userID, date, input.Weight)
	if err != nil {
		return nil, weightOutput{}, fmt.Errorf("failed to log weight: %w", err)
	}
	return nil, weightOutput{ID: entry.ID, Date: entry.Date, Weight: entry.Weight}, nil
}

func (s *Server) handleGetProgress(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, progressOutput, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, progressOutput{}, err
	}

	series, err := s.reader.Series(ctx, userID)
	if err != nil {
		return nil, progressOutput{}, fmt.Errorf("failed to read progress: %w", err)
	}
	return nil, newProgressOutput(series), nil
}

func newProgressOutput(series []progress.Point) progressOutput {
	out := progressOutput{Points: series}
	if out.Points == nil {
		out.Points = []progress.Point{}
	}
	if trend, ok := progress.TrendSummary(series); ok {
		out.Trend = &trend
	}
	return out
}

func (s *Server) handleSummarizeProgress(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, summaryOutput, error) {
	if err := s.requireCoach(); err != nil {
		return nil, summaryOutput{}, err
	}
	userID, err := s.userID()
	if err != nil {
		return nil, summaryOutput{}, err
	}

	series, err := s.reader.Series(ctx, userID)
	if err != nil {
		return nil, summaryOutput{}, fmt.Errorf("failed to read progress: %w", err)
	}
	text, err := s.coach.SummarizeProgress(ctx, series)
	if err != nil {
		return nil, summaryOutput{}, fmt.Errorf("failed to summarize progress: %w", err)
	}
	return nil, summaryOutput{Summary: text}, nil
}

func (s *Server) handleGetDashboard(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, dailylog.DaySummary, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, dailylog.DaySummary{}, err
	}
	date, err := s.day(input.Date)
	if err != nil {
		return nil, dailylog.DaySummary{}, err
	}

	sum, err := s.agg.Today(ctx, userID, date)
	if err != nil {
		return nil, dailylog.DaySummary{}, fmt.Errorf("failed to read dashboard: %w", err)
	}
	return nil, sum, nil
}
