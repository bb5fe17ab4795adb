// Package track implements the time-tracking domain: sessions, projects,
// tags, pomodoros, breaks, aggregated statistics, settings, and the service
// answering every request operation of the wire protocol.
//
// Entities use ISO timestamps and UUID ids matching the persisted schema.
// Entity validators accumulate field-level errors instead of stopping at the
// first violation so callers see every problem in one pass.
package track
