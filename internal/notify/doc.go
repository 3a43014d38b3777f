// Package notify decides which tracked releases qualify for which
// notification and records the outcome of each send.
//
// NewPlan is pure and day-gated: reminders fire only on the day exactly
// lead days before release and release-day alerts only on the release date.
// Evaluator.Dispatch sends one batch per kind and appends history events only
// for batches the Notifier confirmed, which is what makes every kind except
// date_change fire at most once per record.
package notify
