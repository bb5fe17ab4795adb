package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeTracking()
	c.normalizePomodoro()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		if value, ok := os.LookupEnv("TALLY_BIND"); ok {
			c.Server.Bind = strings.TrimSpace(value)
		}
	}
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		c.Server.RequestTimeoutSeconds = defaultRequestTimeout
	}
}

func (c *Config) normalizeTracking() {
	if c.Tracking.IdleTimeoutSeconds <= 0 {
		c.Tracking.IdleTimeoutSeconds = defaultIdleTimeoutSeconds
	}
	if c.Tracking.DailyGoalMinutes <= 0 {
		c.Tracking.DailyGoalMinutes = defaultDailyGoalMinutes
	}
	if c.Tracking.ActivityFlushSeconds <= 0 {
		c.Tracking.ActivityFlushSeconds = defaultActivityFlushSeconds
	}
	if c.Tracking.DataRetentionDays < 0 {
		c.Tracking.DataRetentionDays = 0
	}
}

func (c *Config) normalizePomodoro() {
	if c.Pomodoro.Length <= 0 {
		c.Pomodoro.Length = defaultPomodoroLength
	}
	if c.Pomodoro.BreakLength <= 0 {
		c.Pomodoro.BreakLength = defaultBreakLength
	}
	if c.Pomodoro.LongBreakLength <= 0 {
		c.Pomodoro.LongBreakLength = defaultLongBreakLength
	}
	if c.Pomodoro.UntilLongBreak <= 0 {
		c.Pomodoro.UntilLongBreak = defaultUntilLongBreak
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
