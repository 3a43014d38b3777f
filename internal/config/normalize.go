package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSource()
	c.normalizeNotifications()
	c.normalizeLogging()
	c.Schedule.Cron = strings.TrimSpace(c.Schedule.Cron)
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = defaultCron
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ScheduleFile) == "" {
		c.Paths.ScheduleFile = filepath.Join(c.Paths.StateDir, defaultScheduleFileName)
	}
	if c.Paths.ScheduleFile, err = expandPath(c.Paths.ScheduleFile); err != nil {
		return fmt.Errorf("paths.schedule_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = filepath.Join(c.Paths.StateDir, defaultHistoryDBName)
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.AuthorsFile) == "" {
		c.Paths.AuthorsFile = defaultAuthorsFile
	}
	if c.Paths.AuthorsFile, err = expandPath(c.Paths.AuthorsFile); err != nil {
		return fmt.Errorf("paths.authors_file: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() {
	c.Source.BaseURL = strings.TrimRight(strings.TrimSpace(c.Source.BaseURL), "/")
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = defaultSourceBaseURL
	}
	c.Source.UserAgent = strings.TrimSpace(c.Source.UserAgent)
	if c.Source.UserAgent == "" {
		c.Source.UserAgent = defaultUserAgent
	}
	if c.Source.Burst <= 0 {
		c.Source.Burst = defaultBurst
	}
}

func (c *Config) normalizeNotifications() {
	n := &c.Notifications
	n.Transport = strings.ToLower(strings.TrimSpace(n.Transport))
	if n.Transport == "" {
		n.Transport = TransportResend
	}
	n.ResendAPIKey = strings.TrimSpace(n.ResendAPIKey)
	if n.ResendAPIKey == "" {
		if value, ok := os.LookupEnv("RESEND_API_KEY"); ok {
			n.ResendAPIKey = strings.TrimSpace(value)
		}
	}
	n.EmailTo = strings.TrimSpace(n.EmailTo)
	if n.EmailTo == "" {
		if value, ok := os.LookupEnv("EMAIL_TO"); ok {
			n.EmailTo = strings.TrimSpace(value)
		}
	}
	n.NtfyTopic = strings.TrimSpace(n.NtfyTopic)
	if n.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			n.NtfyTopic = strings.TrimSpace(value)
		}
	}
	n.ResendEndpoint = strings.TrimSpace(n.ResendEndpoint)
	if n.ResendEndpoint == "" {
		n.ResendEndpoint = defaultResendEndpoint
	}
	n.EmailFrom = strings.TrimSpace(n.EmailFrom)
	if n.EmailFrom == "" {
		n.EmailFrom = defaultEmailFrom
	}
}

// NtfyURL returns the full ntfy topic URL; a bare topic name is published on
// the public ntfy.sh server.
func (c *Config) NtfyURL() string {
	topic := strings.TrimSpace(c.Notifications.NtfyTopic)
	if topic == "" || strings.HasPrefix(topic, "http://") || strings.HasPrefix(topic, "https://") {
		return topic
	}
	return defaultNtfyServer + "/" + strings.TrimLeft(topic, "/")
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
