package testsupport

import (
	"path/filepath"
	"testing"

	"tally/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ExportDir = filepath.Join(base, "exports")
	cfg.Server.Bind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithIdleTimeout overrides the idle timeout in seconds.
func WithIdleTimeout(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Tracking.IdleTimeoutSeconds = seconds
	}
}

// WithDailyGoal overrides the daily goal in minutes.
func WithDailyGoal(minutes int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Tracking.DailyGoalMinutes = minutes
	}
}
