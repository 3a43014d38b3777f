package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsEachLevel(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	infoHandler := slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	errHandler := slog.NewTextHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError})
	logger := slog.New(newFanoutHandler(infoHandler, errHandler)).With(slog.String("run_id", "r1"))

	logger.Info("cycle started")
	logger.Error("save failed")

	if !strings.Contains(infoBuf.String(), "cycle started") || !strings.Contains(infoBuf.String(), "save failed") {
		t.Fatalf("info handler missing records: %q", infoBuf.String())
	}
	if strings.Contains(errBuf.String(), "cycle started") {
		t.Fatalf("error handler received info record: %q", errBuf.String())
	}
	if !strings.Contains(errBuf.String(), "run_id=r1") {
		t.Fatalf("expected WithAttrs to reach every handler: %q", errBuf.String())
	}
	if newFanoutHandler(infoHandler, errHandler).Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug disabled when no handler accepts it")
	}
}

func TestCaptureHandlerKeepsMostRecent(t *testing.T) {
	capture := NewCaptureHandler(slog.LevelWarn, 2)
	logger := TeeLogger(NewNop(), capture).With(String(FieldRunID, "r1"))

	logger.Info("ignored")
	for i := 1; i <= 3; i++ {
		logger.Warn(fmt.Sprintf("warning %d", i), String(FieldAuthor, "Robin Hobb"))
	}

	lines := capture.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 captured lines, got %v", lines)
	}
	if !strings.HasPrefix(lines[0], "WARN warning 2") || !strings.HasPrefix(lines[1], "WARN warning 3") {
		t.Fatalf("unexpected capture order: %v", lines)
	}
	if !strings.Contains(lines[1], `author="Robin Hobb"`) || strings.Contains(lines[1], "run_id") {
		t.Fatalf("unexpected captured fields: %q", lines[1])
	}
}
