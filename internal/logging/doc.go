// Package logging assembles structured slog loggers and formatting helpers used
// across the tracker.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so a cycle can tag every line with its
// run identifier and the author being processed. WarnWithContext and
// ErrorWithContext enforce the event_type/error_hint/impact shape expected of
// operator-facing warnings. A no-op logger is provided for tests and wiring
// code that cannot fail.
package logging
