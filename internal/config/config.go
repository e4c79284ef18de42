// ABOUTME: Fitlog configuration management with backend and provider selection.
// ABOUTME: Builds the store, identity signer, completion provider and logger params.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/fitlog/internal/generate"
	"github.com/harperreed/fitlog/internal/identity"
	"github.com/harperreed/fitlog/internal/logging"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/store"
	"google.golang.org/api/option"
)

const (
	DefaultAppID      = "default-app-id"
	DefaultCharmHost  = "charm.2389.dev"
	DefaultListenAddr = ":8080"
	CharmDBName       = "fitlog"
)

// Config stores fitlog configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "charm", "firestore" or "memory".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for local data.
	// SQLite puts fitlog.db here; the anonymous identity file lives here too.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/fitlog.
	DataDir string `json:"data_dir,omitempty"`

	// AppID scopes every document path: artifacts/{app_id}/users/{user}/...
	AppID string `json:"app_id,omitempty"`

	CalorieTarget int `json:"calorie_target,omitempty"`
	ProteinTarget int `json:"protein_target,omitempty"`

	// Identity selects the sign-in method: "anonymous" (default), "static" or "charm".
	Identity string `json:"identity,omitempty"`
	UserID   string `json:"user_id,omitempty"`

	GeminiAPIKey  string `json:"gemini_api_key,omitempty"`
	GeminiModel   string `json:"gemini_model,omitempty"`
	GeminiBaseURL string `json:"gemini_base_url,omitempty"`

	FirestoreProject     string `json:"firestore_project,omitempty"`
	FirestoreCredentials string `json:"firestore_credentials,omitempty"`

	CharmHost string `json:"charm_host,omitempty"`

	Profile *generate.Profile `json:"profile,omitempty"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`
	LogFile   string `json:"log_file,omitempty"`

	ListenAddr     string   `json:"listen_addr,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetAppID returns the configured application id.
func (c *Config) GetAppID() string {
	if c.AppID == "" {
		return DefaultAppID
	}
	return c.AppID
}

// Paths returns document path helpers for the configured app id.
func (c *Config) Paths() store.Paths {
	return store.Paths{AppID: c.GetAppID()}
}

// GetTargets returns the daily targets, falling back to the defaults per field.
func (c *Config) GetTargets() models.Targets {
	t := models.DefaultTargets
	if c.CalorieTarget > 0 {
		t.Calories = c.CalorieTarget
	}
	if c.ProteinTarget > 0 {
		t.Protein = c.ProteinTarget
	}
	return t
}

// GetIdentity returns the configured sign-in method.
func (c *Config) GetIdentity() string {
	if c.Identity == "" {
		return "anonymous"
	}
	return c.Identity
}

// GetGeminiAPIKey prefers the GEMINI_API_KEY environment variable.
func (c *Config) GetGeminiAPIKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return c.GeminiAPIKey
}

// GetFirestoreProject prefers the config file, then GOOGLE_CLOUD_PROJECT.
func (c *Config) GetFirestoreProject() string {
	if c.FirestoreProject != "" {
		return c.FirestoreProject
	}
	return os.Getenv("GOOGLE_CLOUD_PROJECT")
}

// GetProfile returns the prompt profile with defaults filled in.
func (c *Config) GetProfile() generate.Profile {
	if c.Profile == nil {
		return generate.DefaultProfile
	}
	return c.Profile.WithDefaults()
}

// GetCharmHost returns the Charm server host.
func (c *Config) GetCharmHost() string {
	if c.CharmHost == "" {
		return DefaultCharmHost
	}
	return c.CharmHost
}

// GetListenAddr returns the HTTP API listen address.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// LoggingParams returns logger settings.
func (c *Config) LoggingParams() logging.Params {
	return logging.Params{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		File:   ExpandPath(c.LogFile),
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "fitlog")
}

// OpenStore creates a Store implementation based on the configured backend.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case "sqlite":
		return store.OpenSQLite(filepath.Join(dataDir, "fitlog.db"))
	case "charm":
		return store.OpenCharm(CharmDBName, c.GetCharmHost())
	case "firestore":
		project := c.GetFirestoreProject()
		if project == "" {
			return nil, fmt.Errorf("firestore backend needs firestore_project or GOOGLE_CLOUD_PROJECT")
		}
		var opts []option.ClientOption
		if c.FirestoreCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(ExpandPath(c.FirestoreCredentials)))
		}
		return store.OpenFirestore(ctx, project, opts...)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// NewSigner creates the identity signer for the configured method.
func (c *Config) NewSigner() (identity.Signer, error) {
	switch c.GetIdentity() {
	case "anonymous":
		return identity.AnonymousSigner{Path: filepath.Join(c.GetDataDir(), "anonymous-id")}, nil
	case "static":
		return identity.StaticSigner{UserID: c.UserID}, nil
	case "charm":
		if err := os.Setenv("CHARM_HOST", c.GetCharmHost()); err != nil {
			return nil, err
		}
		return identity.CharmSigner{}, nil
	default:
		return nil, fmt.Errorf("unknown identity: %q", c.Identity)
	}
}

// NewProvider creates the completion provider.
func (c *Config) NewProvider() generate.Provider {
	return &generate.GeminiClient{
		APIKey:  c.GetGeminiAPIKey(),
		BaseURL: c.GeminiBaseURL,
		Model:   c.GeminiModel,
	}
}

// GetConfigPath returns the config file path. FITLOG_CONFIG overrides it.
func GetConfigPath() string {
	if path := os.Getenv("FITLOG_CONFIG"); path != "" {
		return path
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "fitlog", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
