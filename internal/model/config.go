package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// BackendConfig holds the connection settings for the ticketing REST API.
type BackendConfig struct {
	// BaseURL is the API root, e.g. https://noc.example.com/api.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds each HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// IdentityConfig names the desk user. Read and dismiss state is scoped to it.
type IdentityConfig struct {
	UserID   string `mapstructure:"user_id" yaml:"user_id"`
	Username string `mapstructure:"username" yaml:"username"`
}

// PersistenceConfig selects where read/dismiss marks are kept.
type PersistenceConfig struct {
	// Driver is one of "sqlite", "file", "redis" or "memory".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the SQLite database or JSON file location.
	Path string `mapstructure:"path" yaml:"path"`

	// RedisURL is used when Driver is "redis".
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
}

// PollConfig holds the per-feed poll intervals in seconds.
type PollConfig struct {
	TicketModificationsSec  int `mapstructure:"ticket_modifications_sec" yaml:"ticket_modifications_sec"`
	AlertNotificationsSec   int `mapstructure:"alert_notifications_sec" yaml:"alert_notifications_sec"`
	RequestNotificationsSec int `mapstructure:"request_notifications_sec" yaml:"request_notifications_sec"`
	UnassignedAlertsSec     int `mapstructure:"unassigned_alerts_sec" yaml:"unassigned_alerts_sec"`
	AssignedRemindersSec    int `mapstructure:"assigned_reminders_sec" yaml:"assigned_reminders_sec"`
	TicketsSec              int `mapstructure:"tickets_sec" yaml:"tickets_sec"`
}

// AlertsConfig controls how the unassigned-ticket banner is produced.
type AlertsConfig struct {
	// Mode is "remote" (ask the backend) or "local" (derive from the
	// cached ticket list).
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend     BackendConfig     `mapstructure:"backend" yaml:"backend"`
	Identity    IdentityConfig    `mapstructure:"identity" yaml:"identity"`
	Persistence PersistenceConfig `mapstructure:"persistence" yaml:"persistence"`
	Poll        PollConfig        `mapstructure:"poll" yaml:"poll"`
	Alerts      AlertsConfig      `mapstructure:"alerts" yaml:"alerts"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// Alert modes.
const (
	AlertsModeRemote = "remote"
	AlertsModeLocal  = "local"
)

// Persistence drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// configDir returns ~/.config/nocdesk, or the working directory when the
// home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "nocdesk")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/nocdesk/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:    "http://localhost:8001/api",
			TimeoutSec: 30,
		},
		Persistence: PersistenceConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join(configDir(), "nocdesk.db"),
		},
		Poll: PollConfig{
			TicketModificationsSec:  10,
			AlertNotificationsSec:   10,
			RequestNotificationsSec: 15,
			UnassignedAlertsSec:     30,
			AssignedRemindersSec:    30,
			TicketsSec:              60,
		},
		Alerts: AlertsConfig{Mode: AlertsModeRemote},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(configDir(), "nocdesk.log"),
		},
	}
}

// setDefaults mirrors defaultAppConfig into viper so missing keys in a
// partial file still resolve.
func setDefaults(v *viper.Viper, d *AppConfig) {
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.timeout_sec", d.Backend.TimeoutSec)
	v.SetDefault("identity.user_id", d.Identity.UserID)
	v.SetDefault("identity.username", d.Identity.Username)
	v.SetDefault("persistence.driver", d.Persistence.Driver)
	v.SetDefault("persistence.path", d.Persistence.Path)
	v.SetDefault("persistence.redis_url", d.Persistence.RedisURL)
	v.SetDefault("poll.ticket_modifications_sec", d.Poll.TicketModificationsSec)
	v.SetDefault("poll.alert_notifications_sec", d.Poll.AlertNotificationsSec)
	v.SetDefault("poll.request_notifications_sec", d.Poll.RequestNotificationsSec)
	v.SetDefault("poll.unassigned_alerts_sec", d.Poll.UnassignedAlertsSec)
	v.SetDefault("poll.assigned_reminders_sec", d.Poll.AssignedRemindersSec)
	v.SetDefault("poll.tickets_sec", d.Poll.TicketsSec)
	v.SetDefault("alerts.mode", d.Alerts.Mode)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
// Environment variables prefixed with NOCDESK_ override file values
// (e.g. NOCDESK_BACKEND_BASE_URL).
func LoadConfig(path string) (*AppConfig, error) {
	defaults := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("nocdesk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, defaults)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if _, ok := err.(*os.PathError); !ok && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Alerts.Mode != AlertsModeLocal {
		cfg.Alerts.Mode = AlertsModeRemote
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("identity", cfg.Identity)
	v.Set("persistence", cfg.Persistence)
	v.Set("poll", cfg.Poll)
	v.Set("alerts", cfg.Alerts)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
