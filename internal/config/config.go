package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the on-disk locations the tracker reads and writes.
type Paths struct {
	StateDir     string `toml:"state_dir"`
	ScheduleFile string `toml:"schedule_file"`
	AuthorsFile  string `toml:"authors_file"`
	HistoryDB    string `toml:"history_db"`
	LogDir       string `toml:"log_dir"`
}

// Source contains settings for fetching author pages.
type Source struct {
	BaseURL           string  `toml:"base_url"`
	RequestTimeout    int     `toml:"request_timeout"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	Concurrency       int     `toml:"concurrency"`
	// IncludePast keeps drafts dated before today instead of dropping them
	// at the source.
	IncludePast bool `toml:"include_past"`
}

// Tracking contains the notification and retention windows.
type Tracking struct {
	ReminderDays  int `toml:"reminder_days"`
	RetentionDays int `toml:"retention_days"`
}

// Notifications selects and configures the delivery transport.
type Notifications struct {
	Transport      string `toml:"transport"`
	ResendAPIKey   string `toml:"resend_api_key"`
	ResendEndpoint string `toml:"resend_endpoint"`
	EmailFrom      string `toml:"email_from"`
	EmailTo        string `toml:"email_to"`
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Schedule configures the in-process watch loop.
type Schedule struct {
	Cron string `toml:"cron"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for the tracker.
//
// Configuration sections by subsystem:
//   - Paths: state directory, schedule, authors, run ledger and logs
//   - Source: author page fetching and rate limits
//   - Tracking: reminder lead time and record retention
//   - Notifications: Resend/ntfy transport settings
//   - Schedule: cron expression for watch mode
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Source        Source        `toml:"source"`
	Tracking      Tracking      `toml:"tracking"`
	Notifications Notifications `toml:"notifications"`
	Schedule      Schedule      `toml:"schedule"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath is the single-instance lock file guarding tracking cycles.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "releasewatch.lock")
}

// SourceTimeout returns the per-request timeout for author page fetches.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Source.RequestTimeout) * time.Second
}

// NotificationTimeout returns the per-request timeout for notification delivery.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
