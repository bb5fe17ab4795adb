package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tally/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "tally")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Server.Bind != "127.0.0.1:7823" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if cfg.Tracking.IdleTimeoutSeconds != 300 {
		t.Fatalf("unexpected idle timeout: %d", cfg.Tracking.IdleTimeoutSeconds)
	}
	if cfg.Pomodoro.Length != 25 {
		t.Fatalf("unexpected pomodoro length: %d", cfg.Pomodoro.Length)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "tally.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.ExportDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "tally.toml")

	type payload struct {
		Server struct {
			Bind string `toml:"bind"`
		} `toml:"server"`
		Tracking struct {
			IdleTimeoutSeconds int `toml:"idle_timeout_seconds"`
			DailyGoalMinutes   int `toml:"daily_goal_minutes"`
		} `toml:"tracking"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Server.Bind = "127.0.0.1:9000"
	custom.Tracking.IdleTimeoutSeconds = 120
	custom.Tracking.DailyGoalMinutes = 360
	custom.Logging.Format = "json"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Server.Bind != "127.0.0.1:9000" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if cfg.Tracking.IdleTimeoutSeconds != 120 {
		t.Fatalf("unexpected idle timeout: %d", cfg.Tracking.IdleTimeoutSeconds)
	}
	if cfg.Tracking.DailyGoalMinutes != 360 {
		t.Fatalf("unexpected daily goal: %d", cfg.Tracking.DailyGoalMinutes)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	// Unset sections keep defaults.
	if cfg.Pomodoro.Length != 25 {
		t.Fatalf("unexpected pomodoro length: %d", cfg.Pomodoro.Length)
	}
}

func TestValidateRejectsBadBind(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Bind = "not-an-address"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad bind")
	}
}

func TestValidateRejectsNegativeRetention(t *testing.T) {
	cfg := config.Default()
	cfg.Tracking.DataRetentionDays = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative retention")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected sample file: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
}
