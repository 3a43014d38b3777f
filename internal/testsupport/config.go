package testsupport

import (
	"path/filepath"
	"testing"

	"releasewatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Notifications default to the no-op transport.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	state := filepath.Join(base, "state")
	cfgVal.Paths.StateDir = state
	cfgVal.Paths.ScheduleFile = filepath.Join(state, "release_schedule.json")
	cfgVal.Paths.HistoryDB = filepath.Join(state, "history.db")
	cfgVal.Paths.AuthorsFile = filepath.Join(base, "authors.yaml")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Notifications.Transport = config.TransportNone
	cfgVal.Source.RequestsPerSecond = 1000
	cfgVal.Source.Burst = 100

	builder := &configBuilder{
		t:   t,
		cfg: &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSourceURL points the page fetcher at baseURL.
func WithSourceURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Source.BaseURL = baseURL
	}
}

// WithNtfy selects the ntfy transport publishing to url.
func WithNtfy(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.Transport = config.TransportNtfy
		b.cfg.Notifications.NtfyTopic = url
	}
}

// WithAuthors writes an authors file containing the given YAML document.
func WithAuthors(doc string) ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, b.cfg.Paths.AuthorsFile, doc)
	}
}
