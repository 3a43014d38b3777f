package logging

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeAged(t *testing.T, dir, name string, ageDays int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	stamp := time.Now().AddDate(0, 0, -ageDays)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
	return path
}

func assertExists(t *testing.T, path string, want bool) {
	t.Helper()
	_, err := os.Stat(path)
	switch {
	case want && err != nil:
		t.Fatalf("expected %s to exist: %v", path, err)
	case !want && !errors.Is(err, fs.ErrNotExist):
		t.Fatalf("expected %s to be removed, stat err=%v", path, err)
	}
}

func TestCleanupOldLogsHonoursPatternAndExclusions(t *testing.T) {
	dir := t.TempDir()
	old := writeAged(t, dir, "releasewatch-2020-01-01.log", 40)
	current := writeAged(t, dir, "releasewatch-2020-01-02.log", 40)
	fresh := writeAged(t, dir, "releasewatch-2020-01-03.log", 1)
	other := writeAged(t, dir, "notes.txt", 40)

	target := RetentionFor(dir)
	target.Exclude = []string{current}
	if removed := CleanupOldLogs(NewNop(), 30, time.Now(), target); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	assertExists(t, old, false)
	assertExists(t, current, true)
	assertExists(t, fresh, true)
	assertExists(t, other, true)

	if removed := CleanupOldLogs(NewNop(), 0, time.Now(), target); removed != 0 {
		t.Fatalf("expected retention 0 to disable pruning, got %d", removed)
	}
}
