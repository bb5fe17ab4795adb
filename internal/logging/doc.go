// Package logging assembles structured slog loggers and attribute helpers
// used across tally components.
//
// It centralizes level and output plumbing for the daemon and CLI and
// provides a no-op logger for tests and wiring code that cannot fail.
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape as the rest of the system.
package logging
