package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateTracking(); err != nil {
		return err
	}
	if err := c.validatePomodoro(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind %q is not a valid host:port address: %w", c.Server.Bind, err)
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return errors.New("server.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTracking() error {
	if err := ensurePositiveMap(map[string]int{
		"tracking.idle_timeout_seconds":   c.Tracking.IdleTimeoutSeconds,
		"tracking.daily_goal_minutes":     c.Tracking.DailyGoalMinutes,
		"tracking.activity_flush_seconds": c.Tracking.ActivityFlushSeconds,
	}); err != nil {
		return err
	}
	if c.Tracking.DataRetentionDays < 0 {
		return errors.New("tracking.data_retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validatePomodoro() error {
	return ensurePositiveMap(map[string]int{
		"pomodoro.length":            c.Pomodoro.Length,
		"pomodoro.break_length":      c.Pomodoro.BreakLength,
		"pomodoro.long_break_length": c.Pomodoro.LongBreakLength,
		"pomodoro.until_long_break":  c.Pomodoro.UntilLongBreak,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
