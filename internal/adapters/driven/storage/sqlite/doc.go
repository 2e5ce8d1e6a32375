// Package sqlite provides the default DocumentStore, backed by a single
// SQLite database file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Raw documents are unique by source and questions by question_id; both
// tables use an autoincrement row id so listings come back in insertion order.
//
// # Data Location
//
// By default, the database is stored at ~/.waec/data/waec.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
