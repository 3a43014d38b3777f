package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget specifies a directory and filename pattern to prune.
type RetentionTarget struct {
	Dir     string
	Pattern string
	// Exclude lists files that are never removed, such as the log currently
	// being written.
	Exclude []string
}

// CleanupOldLogs removes files matching the provided targets that are older
// than retentionDays and returns how many were removed. A retentionDays value
// of 0 disables pruning.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, now time.Time, targets ...RetentionTarget) int {
	if retentionDays <= 0 {
		return 0
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	removed := 0

	for _, target := range targets {
		dir := strings.TrimSpace(target.Dir)
		if dir == "" {
			continue
		}
		excluded := make(map[string]struct{}, len(target.Exclude))
		for _, path := range target.Exclude {
			excluded[filepath.Clean(path)] = struct{}{}
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if pat := strings.TrimSpace(target.Pattern); pat != "" {
				if matched, err := filepath.Match(pat, entry.Name()); err != nil || !matched {
					continue
				}
			}
			fullPath := filepath.Join(dir, entry.Name())
			if _, skip := excluded[filepath.Clean(fullPath)]; skip {
				continue
			}
			info, err := entry.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.Remove(fullPath); err != nil {
				WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
					String("path", fullPath),
					Error(err),
					String(FieldErrorHint, "check file permissions and log_dir ownership"),
					String(FieldImpact, "old log file remains on disk"),
				)
				continue
			}
			removed++
			if logger != nil {
				logger.Debug("log pruned", String("path", fullPath), String(FieldEventType, "log_pruned"))
			}
		}
	}
	return removed
}
