// Package store is the persistent collection store shared by every page.
//
// A collection is a named, ordered sequence of JSON records (or, for
// currentUser, a single record). The store encodes and decodes at this
// boundary only; engines see typed slices.
//
// # Media
//
// The bytes live in a Medium:
//   - memory: a map with an optional byte quota
//   - sqlite: mattn/go-sqlite3 file database (cgo)
//   - sqlite-pure: the same schema on modernc.org/sqlite
//   - postgres: jackc/pgx through database/sql
//
// Every medium applies a batch of mutations all-or-nothing, so a failed
// cascade or rename leaves the previous state intact.
//
// # Consistency
//
// Two pages holding the same medium are not coordinated: the last write of
// a whole collection wins and concurrent edits are not merged. The SQL media
// keep a per-collection revision counter so the number of writes is visible,
// but nothing reads it to reject stale writes.
//
// # Errors
//
// Any medium failure, including a payload that no longer decodes, surfaces
// as apperr.CodeStorageUnavailable.
package store
