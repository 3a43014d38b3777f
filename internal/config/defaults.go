package config

// Notification transports accepted by notifications.transport.
const (
	TransportResend = "resend"
	TransportNtfy   = "ntfy"
	TransportNone   = "none"
)

const (
	defaultConfigPath       = "~/.config/releasewatch/config.toml"
	projectConfigName       = "releasewatch.toml"
	defaultStateDir         = "~/.local/share/releasewatch"
	defaultScheduleFileName = "release_schedule.json"
	defaultHistoryDBName    = "history.db"
	defaultAuthorsFile      = "~/.config/releasewatch/authors.yaml"
	defaultLogDir           = "~/.local/share/releasewatch/logs"
	defaultSourceBaseURL    = "https://www.booknotification.com"
	defaultSourceTimeout    = 30
	defaultUserAgent        = "Mozilla/5.0 (compatible; releasewatch/1.0)"
	defaultRequestsPerSec   = 1.0
	defaultBurst            = 1
	defaultConcurrency      = 2
	defaultReminderDays     = 7
	defaultRetentionDays    = 180
	defaultResendEndpoint   = "https://api.resend.com/emails"
	defaultEmailFrom        = "Book Tracker <onboarding@resend.dev>"
	defaultNotifyTimeout    = 15
	defaultNtfyServer       = "https://ntfy.sh"
	defaultCron             = "0 9 * * *"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:    defaultStateDir,
			AuthorsFile: defaultAuthorsFile,
			LogDir:      defaultLogDir,
		},
		Source: Source{
			BaseURL:           defaultSourceBaseURL,
			RequestTimeout:    defaultSourceTimeout,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: defaultRequestsPerSec,
			Burst:             defaultBurst,
			Concurrency:       defaultConcurrency,
		},
		Tracking: Tracking{
			ReminderDays:  defaultReminderDays,
			RetentionDays: defaultRetentionDays,
		},
		Notifications: Notifications{
			Transport:      TransportResend,
			ResendEndpoint: defaultResendEndpoint,
			EmailFrom:      defaultEmailFrom,
			RequestTimeout: defaultNotifyTimeout,
		},
		Schedule: Schedule{
			Cron: defaultCron,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
