package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// CaptureHandler keeps the most recent records at or above a level in memory
// so they can be attached to failure reports. Use it with TeeLogger.
type CaptureHandler struct {
	level slog.Level
	limit int
	attrs []slog.Attr

	mu    *sync.Mutex
	lines *[]string
}

// NewCaptureHandler retains at most limit records at or above level.
func NewCaptureHandler(level slog.Level, limit int) *CaptureHandler {
	if limit <= 0 {
		limit = 20
	}
	lines := make([]string, 0, limit)
	return &CaptureHandler{level: level, limit: limit, mu: &sync.Mutex{}, lines: &lines}
}

func (h *CaptureHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *CaptureHandler) Handle(_ context.Context, record slog.Record) error {
	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, nil, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, nil, attr)
		return true
	})

	var b strings.Builder
	b.WriteString(levelLabel(record.Level))
	b.WriteByte(' ')
	b.WriteString(record.Message)
	for _, kv := range dedupeKVsByKey(kvs) {
		switch kv.key {
		case FieldRunID, FieldErrorHint, FieldImpact:
			continue
		}
		b.WriteByte(' ')
		b.WriteString(kv.key)
		b.WriteByte('=')
		b.WriteString(formatValue(kv.value))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(*h.lines) >= h.limit {
		*h.lines = append((*h.lines)[:0], (*h.lines)[1:]...)
	}
	*h.lines = append(*h.lines, b.String())
	return nil
}

func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup is a no-op; captured lines are flat.
func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// Lines returns a copy of the captured records, oldest first.
func (h *CaptureHandler) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), (*h.lines)...)
}
