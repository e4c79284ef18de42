// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Runs commands against a temp SQLite store and a fake Gemini endpoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/harperreed/fitlog/internal/config"
	"github.com/harperreed/fitlog/internal/dailylog"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/progress"
	"github.com/harperreed/fitlog/internal/store"
)

const (
	testDay  = "2024-01-15"
	planJSON = `{"workout":[` +
		`{"name":"Curl","sets":3,"reps":"12","group":"Arms","instructions":"Control the descent."},` +
		`{"name":"Push-up","sets":3,"reps":"10","group":"Chest","instructions":"Keep a straight line."}]}`
)

type testCLI struct {
	dataDir string
	userID  string
}

// fakeGemini answers generateContent calls by the kind of schema sent.
func fakeGemini(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		text := "Weight is trending down steadily."
		switch {
		case strings.Contains(string(body), `"workout"`):
			text = planJSON
		case strings.Contains(string(body), `"calories"`):
			text = `{"calories":640.7,"protein":30}`
		}
		resp := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupTestCLI points FITLOG_CONFIG at a temp config using SQLite and a
// static identity.
func setupTestCLI(t *testing.T, userID string) testCLI {
	t.Helper()

	dir := t.TempDir()
	srv := fakeGemini(t)
	cfgJSON := map[string]any{
		"backend":         "sqlite",
		"data_dir":        dir,
		"identity":        "static",
		"user_id":         userID,
		"gemini_api_key":  "test-key",
		"gemini_base_url": srv.URL,
		"log_level":       "error",
		"calorie_target":  2000,
		"protein_target":  100,
	}
	data, err := json.Marshal(cfgJSON)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	cfgPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(cfgPath, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("FITLOG_CONFIG", cfgPath)
	t.Setenv("GEMINI_API_KEY", "")
	resetFlags()
	t.Cleanup(func() {
		_ = closeStore()
		resetFlags()
	})

	return testCLI{dataDir: dir, userID: userID}
}

func resetFlags() {
	dateFlag = ""
	estimateLog = false
	finishSets = nil
	dashboardWatch = false
	exportOutput = ""
	exportSince = ""
	migrateTo = ""
	migrateDataDir = ""
	migrateDryRun = false
	serveAddr = ""
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags()
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	_ = closeStore()
	return err
}

func mustRun(t *testing.T, args ...string) {
	t.Helper()
	if err := run(t, args...); err != nil {
		t.Fatalf("%s failed: %v", strings.Join(args, " "), err)
	}
}

// inspect opens the CLI's SQLite database directly for verification.
func (c testCLI) inspect(t *testing.T, fn func(agg *dailylog.Aggregator, reader *progress.Reader)) {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(c.dataDir, "fitlog.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = s.Close() }()
	paths := store.Paths{AppID: config.DefaultAppID}
	fn(dailylog.NewAggregator(s, paths), progress.NewReader(s, paths, nil, nil))
}

func (c testCLI) dietLog(t *testing.T, date string) models.DailyDietLog {
	t.Helper()
	var dl models.DailyDietLog
	c.inspect(t, func(agg *dailylog.Aggregator, _ *progress.Reader) {
		var err error
		dl, err = agg.DietLog(context.Background(), c.userID, date)
		if err != nil {
			t.Fatalf("DietLog failed: %v", err)
		}
	})
	return dl
}

func TestRootCmd(t *testing.T) {
	if rootCmd.Use != "fitlog" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "fitlog")
	}
	if rootCmd.Short == "" || rootCmd.Long == "" {
		t.Error("Expected rootCmd descriptions to be non-empty")
	}
	if rootCmd.PersistentFlags().Lookup("date") == nil {
		t.Error("Expected persistent --date flag")
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	tests := []struct {
		parent   string
		children []string
	}{
		{"diet", []string{"add", "rm", "show", "estimate"}},
		{"workout", []string{"generate", "show", "finish"}},
		{"progress", []string{"add", "list", "summary"}},
		{"sync", []string{"link", "unlink", "status", "now", "repair", "reset", "wipe"}},
	}
	for _, tt := range tests {
		t.Run(tt.parent, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.parent})
			if err != nil || cmd.Name() != tt.parent {
				t.Fatalf("command %q not registered", tt.parent)
			}
			names := make(map[string]bool)
			for _, c := range cmd.Commands() {
				names[c.Name()] = true
			}
			for _, want := range tt.children {
				if !names[want] {
					t.Errorf("Expected %s subcommand %q", tt.parent, want)
				}
			}
		})
	}

	for _, name := range []string{"dashboard", "export", "import", "migrate", "serve", "mcp", "whoami", "install-skill"} {
		if cmd, _, err := rootCmd.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("Expected %q command to be registered", name)
		}
	}
}

func TestCmdAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"d", "diet"},
		{"w", "workout"},
		{"p", "progress"},
		{"today", "dashboard"},
		{"s", "sync"},
	}
	for _, tt := range tests {
		cmd, _, err := rootCmd.Find([]string{tt.alias})
		if err != nil || cmd.Name() != tt.want {
			t.Errorf("alias %q resolved to %v, want %q", tt.alias, cmd, tt.want)
		}
	}
}

func TestExportCmdValidArgs(t *testing.T) {
	want := map[string]bool{"json": true, "yaml": true, "markdown": true}
	if len(exportCmd.ValidArgs) != len(want) {
		t.Fatalf("ValidArgs = %v", exportCmd.ValidArgs)
	}
	for _, arg := range exportCmd.ValidArgs {
		if !want[arg] {
			t.Errorf("unexpected ValidArg %q", arg)
		}
	}
}

func TestDietAddAndRemove(t *testing.T) {
	cli := setupTestCLI(t, "u1")

	mustRun(t, "diet", "add", "Rice", "500", "20", "--date", testDay)
	mustRun(t, "diet", "add", "Egg", "150.9", "12", "--date", testDay)

	dl := cli.dietLog(t, testDay)
	if len(dl.Meals) != 2 || dl.TotalCalories != 650 || dl.TotalProtein != 32 {
		t.Fatalf("diet log = %+v, want 2 meals totalling 650/32", dl)
	}

	mustRun(t, "diet", "show", "--date", testDay)
	mustRun(t, "diet", "rm", strconv.FormatInt(dl.Meals[0].ID, 10), "--date", testDay)

	dl = cli.dietLog(t, testDay)
	if len(dl.Meals) != 1 || dl.Meals[0].Name != "Egg" || dl.TotalCalories != 150 {
		t.Errorf("after rm diet log = %+v", dl)
	}
}

func TestDietAddRejectsInvalidInput(t *testing.T) {
	cli := setupTestCLI(t, "u1")

	tests := []struct {
		name string
		args []string
	}{
		{"non-numeric calories", []string{"diet", "add", "Rice", "lots", "20"}},
		{"empty name", []string{"diet", "add", " ", "100", "20"}},
		{"bad date", []string{"diet", "add", "Rice", "100", "20", "--date", "2024-13-01"}},
		{"bad meal id", []string{"diet", "rm", "first"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}

	if dl := cli.dietLog(t, models.Today()); len(dl.Meals) != 0 {
		t.Errorf("expected nothing stored, got %+v", dl.Meals)
	}
}

func TestDietEstimate(t *testing.T) {
	cli := setupTestCLI(t, "u1")

	mustRun(t, "diet", "estimate", "burrito", "bowl", "--date", testDay)
	if dl := cli.dietLog(t, testDay); len(dl.Meals) != 0 {
		t.Fatalf("estimate without --log stored meals: %+v", dl.Meals)
	}

	mustRun(t, "diet", "estimate", "burrito bowl", "--log", "--date", testDay)
	dl := cli.dietLog(t, testDay)
	if len(dl.Meals) != 1 {
		t.Fatalf("expected 1 meal, got %+v", dl.Meals)
	}
	if m := dl.Meals[0]; m.Name != "burrito bowl" || m.Calories != 640 || m.Protein != 30 {
		t.Errorf("logged meal = %+v", m)
	}
}

func TestWorkoutFlow(t *testing.T) {
	cli := setupTestCLI(t, "u1")

	if err := run(t, "workout", "finish", "--set", "Curl=10x12", "--date", testDay); err == nil {
		t.Fatal("expected finish without a plan to fail")
	}

	mustRun(t, "workout", "generate", "--date", testDay)
	mustRun(t, "workout", "show", "--date", testDay)

	if err := run(t, "workout", "finish", "--set", "Deadlift=100x5", "--date", testDay); err == nil {
		t.Error("expected unknown exercise to fail")
	}

	mustRun(t, "workout", "finish", "--set", "Curl=10x12", "--set", "Push-up=x10", "--date", testDay)
	mustRun(t, "workout", "finish", "--set", "Curl=10x6", "--date", testDay)
	mustRun(t, "workout", "show", "--date", testDay)

	cli.inspect(t, func(agg *dailylog.Aggregator, _ *progress.Reader) {
		wl, ok, err := agg.WorkoutLog(context.Background(), "u1", testDay)
		if err != nil || !ok {
			t.Fatalf("WorkoutLog() = ok %v, err %v", ok, err)
		}
		if len(wl.Exercises["Curl"]) != 2 || wl.TotalExercises != 2 {
			t.Errorf("workout log = %+v", wl)
		}
		if v := dailylog.SessionVolume(wl.Exercises); v != 180 {
			t.Errorf("volume = %v, want 180", v)
		}
	})
}

func TestParseSetFlag(t *testing.T) {
	tests := []struct {
		raw     string
		name    string
		weight  string
		reps    string
		wantErr bool
	}{
		{raw: "Curl=10x12", name: "Curl", weight: "10", reps: "12"},
		{raw: "Bench Press = 60.5 X 8", name: "Bench Press", weight: "60.5", reps: "8"},
		{raw: "Push-up=x15", name: "Push-up", reps: "15"},
		{raw: "Sled=80x", name: "Sled", weight: "80"},
		{raw: "Curl", wantErr: true},
		{raw: "=10x12", wantErr: true},
		{raw: "Curl=12", wantErr: true},
		{raw: "Curl=x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, set, err := parseSetFlag(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseSetFlag(%q) expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSetFlag(%q) unexpected error: %v", tt.raw, err)
			}
			if name != tt.name || string(set.Weight) != tt.weight || string(set.Reps) != tt.reps {
				t.Errorf("parseSetFlag(%q) = %q %+v", tt.raw, name, set)
			}
		})
	}
}

func TestProgressCommands(t *testing.T) {
	cli := setupTestCLI(t, "u1")

	mustRun(t, "progress", "add", "56", "--date", "2024-01-10")
	if err := run(t, "progress", "summary"); err == nil {
		t.Error("expected summary with one weigh-in to fail")
	}

	mustRun(t, "progress", "add", "55.2", "--date", "2024-01-20")
	mustRun(t, "progress", "add", "55.6", "--date", "2024-01-15")
	if err := run(t, "progress", "add", "0"); err == nil {
		t.Error("expected zero weight to fail")
	}

	mustRun(t, "progress", "list")
	mustRun(t, "progress", "summary")

	cli.inspect(t, func(_ *dailylog.Aggregator, reader *progress.Reader) {
		series, err := reader.Series(context.Background(), "u1")
		if err != nil {
			t.Fatalf("Series failed: %v", err)
		}
		want := []string{"2024-01-10", "2024-01-15", "2024-01-20"}
		if len(series) != len(want) {
			t.Fatalf("series = %+v", series)
		}
		for i, date := range want {
			if series[i].Date != date {
				t.Errorf("series[%d].Date = %q, want %q", i, series[i].Date, date)
			}
		}
	})
}

func TestDashboardAndWhoami(t *testing.T) {
	setupTestCLI(t, "u1")

	mustRun(t, "diet", "add", "Rice", "1000", "50", "--date", testDay)
	mustRun(t, "dashboard", "--date", testDay)
	mustRun(t, "whoami")

	if userID != "u1" {
		t.Errorf("userID = %q, want u1", userID)
	}
	if got := agg.Targets().Calories; got != 2000 {
		t.Errorf("calorie target = %d, want 2000 from config", got)
	}
}

func TestSignInRequired(t *testing.T) {
	setupTestCLI(t, "")

	if err := run(t, "diet", "show"); err == nil {
		t.Error("expected commands to fail without a user id")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := setupTestCLI(t, "u1")
	mustRun(t, "diet", "add", "Rice", "500", "20", "--date", testDay)
	mustRun(t, "workout", "generate", "--date", testDay)
	mustRun(t, "workout", "finish", "--set", "Curl=10x12", "--date", testDay)
	mustRun(t, "progress", "add", "56", "--date", testDay)

	out := filepath.Join(src.dataDir, "backup.json")
	mustRun(t, "export", "json", "-o", out)
	mustRun(t, "export", "yaml", "-o", filepath.Join(src.dataDir, "backup.yaml"))
	mustRun(t, "export", "markdown", "--since", "2024-01-01", "-o", filepath.Join(src.dataDir, "backup.md"))

	md, err := os.ReadFile(filepath.Join(src.dataDir, "backup.md"))
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(md), "| 2024-01-15 | 1 | 500 kcal | 20 g |") {
		t.Errorf("markdown export missing diet row:\n%s", md)
	}

	dst := setupTestCLI(t, "u2")
	mustRun(t, "import", out)

	dl := dst.dietLog(t, testDay)
	if len(dl.Meals) != 1 || dl.TotalCalories != 500 {
		t.Errorf("imported diet log = %+v", dl)
	}
	dst.inspect(t, func(agg *dailylog.Aggregator, reader *progress.Reader) {
		ctx := context.Background()
		if _, ok, err := agg.Plan(ctx, "u2", testDay); err != nil || !ok {
			t.Errorf("imported plan missing: ok %v, err %v", ok, err)
		}
		if _, ok, err := agg.WorkoutLog(ctx, "u2", testDay); err != nil || !ok {
			t.Errorf("imported workout missing: ok %v, err %v", ok, err)
		}
		series, err := reader.Series(ctx, "u2")
		if err != nil || len(series) != 1 {
			t.Errorf("imported series = %+v, err %v", series, err)
		}
	})
}

func TestExportErrors(t *testing.T) {
	cli := setupTestCLI(t, "u1")

	if err := run(t, "export", "csv"); err == nil {
		t.Error("expected unknown format to fail")
	}
	if err := run(t, "export", "markdown", "--since", "last week"); err == nil {
		t.Error("expected invalid --since to fail")
	}
	if err := run(t, "import", filepath.Join(cli.dataDir, "missing.json")); err == nil {
		t.Error("expected missing file to fail")
	}

	foreign := filepath.Join(cli.dataDir, "health.json")
	if err := os.WriteFile(foreign, []byte(`{"version":"1.0","tool":"health"}`), 0600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := run(t, "import", foreign); err == nil {
		t.Error("expected foreign export to be rejected")
	}
}

func TestMigrateToAnotherSQLiteFile(t *testing.T) {
	setupTestCLI(t, "u1")
	mustRun(t, "diet", "add", "Rice", "500", "20", "--date", testDay)
	mustRun(t, "progress", "add", "56", "--date", testDay)

	target := t.TempDir()
	mustRun(t, "migrate", "--to", "sqlite", "--data-dir", target, "--dry-run")
	if _, err := os.Stat(filepath.Join(target, "fitlog.db")); !os.IsNotExist(err) {
		t.Fatalf("dry run created the target database (err %v)", err)
	}

	mustRun(t, "migrate", "--to", "sqlite", "--data-dir", target)

	moved := testCLI{dataDir: target, userID: "u1"}
	if dl := moved.dietLog(t, testDay); dl.TotalCalories != 500 {
		t.Errorf("migrated diet log = %+v", dl)
	}
}

func TestMigrateRejectsSameBackend(t *testing.T) {
	setupTestCLI(t, "u1")

	if err := run(t, "migrate"); err == nil {
		t.Error("expected missing --to to fail")
	}
	if err := run(t, "migrate", "--to", "sqlite"); err == nil {
		t.Error("expected migrating onto the configured store to fail")
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent float64
		filled  int
	}{
		{0, 0},
		{50, 10},
		{100, 20},
		{250, 20},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.percent), func(t *testing.T) {
			bar := progressBar(tt.percent)
			if got := strings.Count(bar, "█"); got != tt.filled {
				t.Errorf("progressBar(%v) filled %d cells, want %d", tt.percent, got, tt.filled)
			}
			if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 20 {
				t.Errorf("progressBar(%v) has %d cells, want 20", tt.percent, got)
			}
		})
	}
}
