// Package history keeps a SQLite ledger of tracking cycles and the
// notification batches each one attempted.
//
// The ledger is an audit trail only: the schedule document stays the source
// of truth for what has been notified. The schema is versioned; a database
// created by a different version is rejected with ErrSchemaMismatch rather
// than migrated.
package history
