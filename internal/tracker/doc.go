// Package tracker runs one monitoring cycle end to end.
//
// A cycle holds an exclusive file lock for its whole duration, fetches every
// active author on a bounded worker pool, folds the drafts into the schedule,
// dispatches qualifying notifications, prunes stale records and saves the
// schedule once. Every cycle is tagged with a run id that appears on each log
// line and in the history ledger. When a cycle fails after the lock is held,
// including by panic, a failure alert carrying the recent warnings is sent
// on a best-effort basis.
package tracker
