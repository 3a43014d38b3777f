// Package release defines the value types shared by extraction,
// reconciliation, notification and persistence: candidate drafts, tracked
// records, their notification history, and the schedule that holds them.
package release
