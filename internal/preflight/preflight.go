package preflight

import (
	"context"
	"strings"

	"releasewatch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if strings.TrimSpace(cfg.Paths.LogDir) != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results,
		CheckAuthors(cfg.Paths.AuthorsFile),
		CheckHistory(ctx, cfg.Paths.HistoryDB),
		CheckNotifications(cfg),
		CheckSource(ctx, cfg.Source.BaseURL, cfg.Source.UserAgent),
	)
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
