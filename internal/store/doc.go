// Package store persists sessions, projects, tags, pomodoros, and settings
// in SQLite.
//
// Open applies WAL journaling, foreign keys, and a busy timeout, then runs
// embedded migrations tracked in a schema_migrations table. All methods take
// a context and return wrapped errors naming the failed operation.
package store
