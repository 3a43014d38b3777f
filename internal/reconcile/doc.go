// Package reconcile merges freshly extracted drafts into the persisted
// schedule.
//
// Reconcile is pure: it never touches the input schedule and returns a new
// one together with the ids discovered for the first time and every release
// date change it observed. Matching prefers ids and falls back to the
// case-folded title/author pair; records nobody mentioned this cycle are kept.
package reconcile
