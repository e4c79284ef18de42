// ABOUTME: Root Cobra command for fitlog CLI.
// ABOUTME: Builds config, logger, metrics, store, session and services via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/fitlog/internal/config"
	"github.com/harperreed/fitlog/internal/dailylog"
	"github.com/harperreed/fitlog/internal/generate"
	"github.com/harperreed/fitlog/internal/identity"
	"github.com/harperreed/fitlog/internal/logging"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/progress"
	"github.com/harperreed/fitlog/internal/store"
	"github.com/harperreed/fitlog/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	logger   *log.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Manager
	st       store.Store
	session  *identity.Session
	agg      *dailylog.Aggregator
	reader   *progress.Reader
	coach    *generate.Coach
	userID   string

	dateFlag string
)

// Commands that never touch the document store.
var storelessCommands = map[string]bool{
	"help":          true,
	"completion":    true,
	"install-skill": true,
	"link":          true,
	"unlink":        true,
	"repair":        true,
	"reset":         true,
	"wipe":          true,
}

// Long-running servers start without a user and report sign-in errors per call.
var optionalSignIn = map[string]bool{
	"mcp":   true,
	"serve": true,
}

var rootCmd = &cobra.Command{
	Use:   "fitlog",
	Short: "Daily diet, workout and weight tracker",
	Long: `Fitlog tracks what you eat, how you train and what you weigh, one day at a time.

WHAT IT TRACKS:

  Diet       meals with calories and protein, totals against daily targets
  Workouts   generated plans and the sets you actually logged
  Progress   weigh-ins and the trend across them

QUICK START:

  $ fitlog diet add "Chicken rice" 650 45     # Log a meal for today
  $ fitlog diet estimate "two eggs on toast"  # Ask for a calorie/protein guess
  $ fitlog workout generate                   # Get today's workout plan
  $ fitlog workout finish --set "Squat=60x8"  # Log what you did
  $ fitlog progress add 72.4                  # Log a weigh-in
  $ fitlog dashboard --watch                  # Live view of today

Use --date YYYY-MM-DD on any command to work on another day.

STORAGE BACKENDS:

  sqlite      Local database at ~/.local/share/fitlog/fitlog.db (default)
  charm       Charm KV with E2E encrypted cloud sync
  firestore   Google Cloud Firestore
  memory      In-process only, for trying things out

  Configure in ~/.config/fitlog/config.json or point FITLOG_CONFIG elsewhere.

INTEGRATIONS:

  fitlog serve   HTTP API with live WebSocket streams and /metrics
  fitlog mcp     Model Context Protocol server over stdio

  {
    "mcpServers": {
      "fitlog": { "command": "fitlog", "args": ["mcp"] }
    }
  }`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger = logging.New(cfg.LoggingParams())

		if storelessCommands[cmd.Name()] {
			return nil
		}
		return initServices(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

func initServices(cmd *cobra.Command) error {
	ctx := cmd.Context()

	registry = prometheus.NewRegistry()
	metrics = telemetry.NewManager(telemetry.Namespace, telemetry.Subsystem, registry)

	var err error
	st, err = cfg.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.GetBackend(), err)
	}
	logger.Debug("store opened", "backend", cfg.GetBackend())

	signer, err := cfg.NewSigner()
	if err != nil {
		return err
	}
	session = identity.NewSession(signer)
	session.OnAuthChange(func(id string) {
		if id == "" {
			logger.Debug("signed out")
			return
		}
		logger.Debug("signed in", "user", id)
	})

	userID, err = session.EnsureSignedIn(ctx)
	if err != nil {
		if !optionalSignIn[cmd.Name()] {
			return fmt.Errorf("sign-in failed: %w", err)
		}
		logger.Warn("starting without a signed-in user", "err", err)
	}

	paths := cfg.Paths()
	agg = dailylog.NewAggregator(st, paths,
		dailylog.WithTargets(cfg.GetTargets()),
		dailylog.WithLogger(logger),
		dailylog.WithMetrics(metrics),
	)
	reader = progress.NewReader(st, paths, logger, metrics)
	coach = generate.NewCoach(cfg.NewProvider(), cfg.GetProfile(), logger, metrics)
	return nil
}

func closeStore() error {
	if st == nil {
		return nil
	}
	err := st.Close()
	st = nil
	return err
}

// targetDate returns the --date flag, or today when it is unset.
func targetDate() (string, error) {
	if dateFlag == "" {
		return models.Today(), nil
	}
	return models.ParseDateKey(dateFlag)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "day to work on (YYYY-MM-DD, default today)")
}
