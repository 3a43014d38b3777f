package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorhill/cronexpr"
)

// Validate ensures the configuration is usable. Notification credentials are
// checked separately by ValidateNotifications so read-only commands work
// before a transport is configured.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateTracking(); err != nil {
		return err
	}
	if _, err := cronexpr.Parse(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron: %w", err)
	}
	return c.validateLogging()
}

func (c *Config) validateSource() error {
	parsed, err := url.Parse(c.Source.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("source.base_url must be an absolute URL, got %q", c.Source.BaseURL)
	}
	if err := ensurePositiveMap(map[string]int{
		"source.request_timeout":        c.Source.RequestTimeout,
		"source.concurrency":            c.Source.Concurrency,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	if c.Source.RequestsPerSecond <= 0 {
		return errors.New("source.requests_per_second must be positive")
	}
	return nil
}

func (c *Config) validateTracking() error {
	if c.Tracking.ReminderDays <= 0 {
		return errors.New("tracking.reminder_days must be positive")
	}
	if c.Tracking.RetentionDays <= 0 {
		return errors.New("tracking.retention_days must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
}

// ValidateNotifications checks that the selected transport has what it needs
// to deliver.
func (c *Config) ValidateNotifications() error {
	n := c.Notifications
	switch n.Transport {
	case TransportNone:
		return nil
	case TransportResend:
		if n.ResendAPIKey == "" {
			return missingSetting("notifications.resend_api_key", "RESEND_API_KEY")
		}
		if n.EmailTo == "" {
			return missingSetting("notifications.email_to", "EMAIL_TO")
		}
		if !strings.Contains(n.EmailFrom, "@") {
			return fmt.Errorf("notifications.email_from must contain an email address, got %q", n.EmailFrom)
		}
		return nil
	case TransportNtfy:
		if n.NtfyTopic == "" {
			return missingSetting("notifications.ntfy_topic", "NTFY_TOPIC")
		}
		return nil
	}
	return fmt.Errorf("notifications.transport: unsupported value %q (want resend, ntfy or none)", n.Transport)
}

func missingSetting(key, env string) error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("%s is required. Set %s env var or edit %s (create with 'releasewatch config init')", key, env, defaultPath)
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
