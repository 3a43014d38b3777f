package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"releasewatch/internal/config"
	"releasewatch/internal/logging"
)

func tempLogPath(t *testing.T) (string, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "out.log")
	return logPath, func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath, read := tempLogPath(t)
	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")
	content := read()
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath, read := tempLogPath(t)
	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "debug",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("message with caller", logging.String("detail", "x"))
	content := read()
	if !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
	if !strings.Contains(content, "detail: x") {
		t.Fatalf("expected raw debug attributes, got %q", content)
	}
}

func TestConsoleLoggerRendersComponentAuthorAndFields(t *testing.T) {
	logPath, read := tempLogPath(t)
	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithAuthor(logging.WithRunID(context.Background(), "run-123"), "Brandon Sanderson")
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "tracker"))
	logger.Info("drafts extracted", logging.Int("drafts", 3), logging.String(logging.FieldEventType, "author_fetched"))

	content := read()
	for _, want := range []string{"INFO [tracker] Brandon Sanderson – drafts extracted", "- Event: author_fetched", "- Drafts: 3", "+ 1 more field hidden"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in output, got %q", want, content)
		}
	}
	if strings.Contains(content, "run-123") {
		t.Fatalf("expected run id hidden at info level, got %q", content)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath, read := tempLogPath(t)
	logger, err := logging.New(logging.Options{
		Format:           "json",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("fetch failed", logging.String(logging.FieldAuthor, "N. K. Jemisin"))

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["level"] != "warn" || payload["msg"] != "fetch failed" || payload["author"] != "N. K. Jemisin" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %+v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesDailyJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "info"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("cycle complete", logging.Int("books", 4))

	content, err := os.ReadFile(logging.DailyLogPath(cfg.Paths.LogDir, time.Now()))
	if err != nil {
		t.Fatalf("read daily log: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"cycle complete"`) || !strings.Contains(string(content), `"books":4`) {
		t.Fatalf("unexpected daily log content %q", content)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	capture := logging.NewCaptureHandler(0, 5)
	logger := logging.TeeLogger(nil, capture)
	logging.WarnWithContext(logger, "store unreadable", "schedule_load_failed", logging.String(logging.FieldImpact, "starting empty"))

	lines := capture.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one captured line, got %v", lines)
	}
	if !strings.Contains(lines[0], "event_type=schedule_load_failed") {
		t.Fatalf("expected injected event type, got %q", lines[0])
	}
}
