// Package store persists canonical rule results.
//
// The Store interface is keyed by (session id, rule id): Save is an
// idempotent upsert that skips duplicates instead of overwriting them,
// and DeleteSession is a soft delete so sessions stay recoverable
// until the retention pruner hard-deletes them.
//
// Two backends are provided: SQLiteStore for production (WAL mode,
// single file) and MemoryStore for tests and development. Both honor
// the same duplicate and soft-delete semantics.
package store
