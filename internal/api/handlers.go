// ABOUTME: JSON handlers for diet logs, workout plans and sessions, and weigh-ins.
// ABOUTME: Domain errors map to HTTP status codes in one place.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/harperreed/fitlog/internal/identity"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/progress"
)

var errNoCoach = errors.New("no completion provider configured")

// --- Helper Functions ---

func (a *API) respondWithError(w http.ResponseWriter, code int, message string) {
	a.respondWithJSON(w, code, map[string]string{"error": message})
}

func (a *API) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error("failed to marshal response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "failed to marshal response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// statusFor maps a domain error to a status code. A generated plan that
// fails validation wraps a ValidationError, so GenerationError is checked first.
func statusFor(err error) int {
	var (
		ge *models.GenerationError
		ve *models.ValidationError
		pm *models.PlanMismatchError
		se *models.StoreError
	)
	switch {
	case errors.As(err, &ge):
		return http.StatusBadGateway
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &pm):
		return http.StatusUnprocessableEntity
	case errors.As(err, &se):
		return http.StatusServiceUnavailable
	case errors.Is(err, identity.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, errNoCoach):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		a.logger.Error("request failed", "path", r.URL.Path, "status", code, "err", err)
	}
	a.respondWithError(w, code, err.Error())
}

func (a *API) userID() (string, error) {
	id, ok := a.session.CurrentUserID()
	if !ok {
		return "", identity.ErrNotSignedIn
	}
	return id, nil
}

func (a *API) parseDateParam(dateStr string) (string, error) {
	if dateStr == "today" || dateStr == "" {
		return models.DateKey(a.now()), nil
	}
	return models.ParseDateKey(dateStr)
}

// dayParams resolves the signed-in user and the {date} URL parameter.
func (a *API) dayParams(r *http.Request) (string, string, error) {
	userID, err := a.userID()
	if err != nil {
		return "", "", err
	}
	date, err := a.parseDateParam(chi.URLParam(r, "date"))
	if err != nil {
		return "", "", err
	}
	return userID, date, nil
}

func decodeBody(r *http.Request, w http.ResponseWriter, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &models.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}

// field accepts a JSON string or number and keeps its text for validation.
type field string

func (f *field) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = field(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = field(data)
	return nil
}

// --- Diet Handlers ---

type mealRequest struct {
	Name     string `json:"name"`
	Calories field  `json:"calories"`
	Protein  field  `json:"protein"`
}

func (a *API) GetDietLog(w http.ResponseWriter, r *http.Request) {
	userID, date, err := a.dayParams(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	dl, err := a.agg.DietLog(r.Context(), userID, date)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondWithJSON(w, http.StatusOK, dl)
}

func (a *API) AddMeal(w http.ResponseWriter, r *http.Request) {
	userID, date, err := a.dayParams(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req mealRequest
	if err := decodeBody(r, w, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	dl, err := a.agg.AddMeal(r.Context(), userID, date, models.MealInput{
		Name:     req.Name,
		Calories: string(req.Calories),
		Protein:  string(req.Protein),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondWithJSON(w, http.StatusCreated, dl)
}

func (a *API) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	userID, date, err := a.dayParams(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	mealID, err := strconv.ParseInt(chi.URLParam(r, "mealId"), 10, 64)
	if err != nil {
		a.fail(w, r, &models.ValidationError{Field: "mealId", Reason: "must be an integer"})
		return
	}
	dl, err := a.agg.DeleteMeal(r.Context(), userID, date, mealID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondWithJSON(w, http.StatusOK, dl)
}

type estimateRequest struct {
	Description string `json:"description"`
}

type estimateResponse struct {
	Estimate models.NutritionEstimate `json:"estimate"`
	Meal     models.MealInput         `json:"meal"`
}

// EstimateMeal returns an editable pre-fill. Nothing is logged.
func (a *API) EstimateMeal(w http.ResponseWriter, r *http.Request) {
	if a.coach == nil {
		a.fail(w, r, errNoCoach)
		return
	}
	if _, _, err := a.dayParams(r); err != nil {
		a.fail(w, r, err)
		return
	}
	var req estimateRequest
	if err := decodeBody(r, w, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	est, err := a.coach.EstimateNutrition(r.Context(), req.Description)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondWithJSON(w, http.StatusOK, estimateResponse{Estimate: est, Meal: est.MealInput(req.Description)})
}

// --- Workout Handlers ---

type planResponse struct {
	Date    string             `json:"date"`
	Workout models.WorkoutPlan `json:"workout"`
}

func (a *API) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID, date, err := a.dayParams(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	plan, ok, err := a.agg.Plan(r.Context(), userID, date)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !ok {
		a.respondWithError(w, http.StatusNotFound, "no workout plan for "+date)
		return
	}
	a.respondWithJSON(w, http.StatusOK, planResponse{Date: date, Workout: plan})
}

func (a *API) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	if a.coach == nil {
		a.fail(w, r, errNoCoach)
		return
	}
	userID, date, err := a.dayParams(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	plan, err := a.coach.GenerateWorkout(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.agg.SavePlan(r.Context(), userID, date, plan); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondWithJSON(w, http.StatusCreated, planResponse{Date: date, Workout: plan})
}

func (a *API) GetWorkout(w http.ResponseWriter, r *http.Request) {
	userID, date, err := a.dayParams(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	wl, ok, err := a.agg.WorkoutLog(r.Context(), userID, date)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !ok {
		a.respondWithError(w, http.StatusNotFound, "no workout saved for "+date)
		return
	}
	a.respondWithJSON(w, http.StatusOK, wl)
}

type setRequest struct {
	Weight field `json:"weight"`
	Reps   field `json:"reps"`
}

type finishRequest struct {
	Exercises map[string][]setRequest `json:"exercises"`
}

// FinishWorkout records a session against the plan saved for the day.
func (a *API) FinishWorkout(w http.ResponseWriter, r *http.Request) {
	userID, date, err := a.dayParams(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req finishRequest
	if err := decodeBody(r, w, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	plan, ok, err := a.agg.Plan(r.Context(), userID, date)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !ok {
		a.respondWithError(w, http.StatusConflict, "no workout plan for "+date)
		return
	}

	session := make(models.SessionLog, len(req.Exercises))
	for name, sets := range req.Exercises {
		entries := make([]models.WorkoutSetEntry, len(sets))
		for i, s := range sets {
			entries[i] = models.WorkoutSetEntry{Weight: models.SetValue(s.Weight), Reps: models.SetValue(s.Reps)}
		}
		session[name] = entries
	}

	wl, err := a.agg.FinishWorkout(r.Context(), userID, date, plan, session)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondWithJSON(w, http.StatusOK, wl)
}

func (a *API) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, date, err := a.dayParams(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	sum, err := a.agg.Today(r.Context(), userID, date)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondWithJSON(w, http.StatusOK, sum)
}

// --- Progress Handlers ---

type weightRequest struct {
	Date   string `json:"date"`
	Weight field  `json:"weight"`
}

type progressResponse struct {
	Points []progress.Point `json:"points"`
	Trend  *progress.Trend  `json:"trend,omitempty"`
}

func newProgressResponse(series []progress.Point) progressResponse {
	resp := progressResponse{Points: series}
	if resp.Points == nil {
		resp.Points = []progress.Point{}
	}
	if trend, ok := progress.TrendSummary(series); ok {
		resp.Trend = &trend
	}
	return resp
}

func (a *API) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := a.userID()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	series, err := a.reader.Series(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondWithJSON(w, http.StatusOK, newProgressResponse(series))
}

func (a *API) LogWeight(w http.ResponseWriter, r *http.Request) {
	userID, err := a.userID()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req weightRequest
	if err := decodeBody(r, w, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	date, err := a.parseDateParam(req.Date)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	entry, err := a.reader.LogWeight(r.Context(), userID, date, string(req.Weight))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondWithJSON(w, http.StatusCreated, entry)
}

func (a *API) SummarizeProgress(w http.ResponseWriter, r *http.Request) {
	if a.coach == nil {
		a.fail(w, r, errNoCoach)
		return
	}
	userID, err := a.userID()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	series, err := a.reader.Series(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	text, err := a.coach.SummarizeProgress(r.Context(), series)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondWithJSON(w, http.StatusOK, map[string]string{"summary": text})
}
