package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one tracking cycle across every log line it emits.
	FieldRunID = "run_id"
	// FieldAuthor is the standardized key for the tracked author a line concerns.
	FieldAuthor = "author"
	// FieldBookID is the standardized key for schedule record identifiers.
	FieldBookID = "book_id"
	// FieldEventType names the kind of event a log line records.
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator's next step for a warning or error.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType names the decision recorded by DecisionAttrs.
	FieldDecisionType = "decision_type"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	authorKey contextKey = "author"
)

// WithRunID tags ctx with the identifier of the running cycle.
func WithRunID(ctx context.Context, runID string) context.Context {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the cycle identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// WithAuthor tags ctx with the author currently being processed.
func WithAuthor(ctx context.Context, author string) context.Context {
	author = strings.TrimSpace(author)
	if author == "" {
		return ctx
	}
	return context.WithValue(ctx, authorKey, author)
}

// AuthorFromContext returns the author stored by WithAuthor.
func AuthorFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	author, ok := ctx.Value(authorKey).(string)
	return author, ok && author != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if author, ok := AuthorFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldAuthor, author))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
