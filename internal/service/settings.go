package service

import (
	"context"
	"encoding/json"
	"strconv"

	"tally/internal/track"
)

// Settings returns the effective settings: configuration defaults overlaid
// with any values persisted through updateSettings.
func (s *Service) Settings(ctx context.Context) (*track.AppSettings, error) {
	settings := s.baseSettings()

	rows, err := s.store.Settings(ctx)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "settings", "load", "query settings", err)
	}
	applyRows(&settings, rows)
	return &settings, nil
}

// UpdateSettings applies a patch and persists the changed fields.
func (s *Service) UpdateSettings(ctx context.Context, patch track.SettingsPatch) (*track.SettingsActionResult, error) {
	if err := s.persistPatch(ctx, patch); err != nil {
		return nil, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("settings updated")
	return &track.SettingsActionResult{Success: true, Settings: *settings}, nil
}

// ResetSettings drops all persisted overrides, returning to defaults.
func (s *Service) ResetSettings(ctx context.Context) (*track.SettingsActionResult, error) {
	if err := s.store.ClearSettings(ctx); err != nil {
		return nil, track.Wrap(track.ErrStorage, "settings", "reset", "clear settings", err)
	}
	settings := s.baseSettings()
	s.logger.Info("settings reset")
	return &track.SettingsActionResult{Success: true, Settings: settings}, nil
}

// baseSettings seeds defaults from the daemon configuration so the TOML file
// and the protocol surface agree before any updateSettings call.
func (s *Service) baseSettings() track.AppSettings {
	settings := track.DefaultSettings()
	settings.IdleTimeout = s.cfg.Tracking.IdleTimeoutSeconds
	settings.DailyGoal = s.cfg.Tracking.DailyGoalMinutes
	settings.DataRetention = s.cfg.Tracking.DataRetentionDays
	settings.PomodoroLength = s.cfg.Pomodoro.Length
	settings.BreakLength = s.cfg.Pomodoro.BreakLength
	settings.LongBreakLength = s.cfg.Pomodoro.LongBreakLength
	settings.PomodorosUntilLongBreak = s.cfg.Pomodoro.UntilLongBreak
	settings.AutoStartBreaks = s.cfg.Pomodoro.AutoStartBreaks
	settings.AutoStartPomodoros = s.cfg.Pomodoro.AutoStartPomodoros
	return settings
}

func (s *Service) persistPatch(ctx context.Context, patch track.SettingsPatch) error {
	set := func(key, value string, settingType track.SettingType) error {
		if err := s.store.SetSetting(ctx, key, value, settingType); err != nil {
			return track.Wrap(track.ErrStorage, "settings", "update", "persist "+key, err)
		}
		return nil
	}
	setInt := func(key string, value *int) error {
		if value == nil {
			return nil
		}
		return set(key, strconv.Itoa(*value), track.SettingNumber)
	}
	setBool := func(key string, value *bool) error {
		if value == nil {
			return nil
		}
		return set(key, strconv.FormatBool(*value), track.SettingBoolean)
	}

	if err := setInt("idleTimeout", patch.IdleTimeout); err != nil {
		return err
	}
	if err := setInt("dailyGoal", patch.DailyGoal); err != nil {
		return err
	}
	if err := setInt("pomodoroLength", patch.PomodoroLength); err != nil {
		return err
	}
	if err := setInt("breakLength", patch.BreakLength); err != nil {
		return err
	}
	if err := setInt("longBreakLength", patch.LongBreakLength); err != nil {
		return err
	}
	if err := setInt("pomodorosUntilLongBreak", patch.PomodorosUntilLongBreak); err != nil {
		return err
	}
	if err := setInt("dataRetention", patch.DataRetention); err != nil {
		return err
	}
	if err := setBool("autoStartBreaks", patch.AutoStartBreaks); err != nil {
		return err
	}
	if err := setBool("autoStartPomodoros", patch.AutoStartPomodoros); err != nil {
		return err
	}
	if patch.Theme != nil {
		if err := set("theme", *patch.Theme, track.SettingString); err != nil {
			return err
		}
	}
	if patch.Notifications != nil {
		data, err := json.Marshal(patch.Notifications)
		if err != nil {
			return track.Wrap(track.ErrInternal, "settings", "update", "marshal notifications", err)
		}
		if err := set("notifications", string(data), track.SettingJSON); err != nil {
			return err
		}
	}
	if patch.Features != nil {
		data, err := json.Marshal(patch.Features)
		if err != nil {
			return track.Wrap(track.ErrInternal, "settings", "update", "marshal features", err)
		}
		if err := set("features", string(data), track.SettingJSON); err != nil {
			return err
		}
	}
	return nil
}

func applyRows(settings *track.AppSettings, rows map[string]track.Setting) {
	getInt := func(key string, dst *int) {
		if row, ok := rows[key]; ok {
			if v, err := strconv.Atoi(row.Value); err == nil {
				*dst = v
			}
		}
	}
	getBool := func(key string, dst *bool) {
		if row, ok := rows[key]; ok {
			if v, err := strconv.ParseBool(row.Value); err == nil {
				*dst = v
			}
		}
	}

	getInt("idleTimeout", &settings.IdleTimeout)
	getInt("dailyGoal", &settings.DailyGoal)
	getInt("pomodoroLength", &settings.PomodoroLength)
	getInt("breakLength", &settings.BreakLength)
	getInt("longBreakLength", &settings.LongBreakLength)
	getInt("pomodorosUntilLongBreak", &settings.PomodorosUntilLongBreak)
	getInt("dataRetention", &settings.DataRetention)
	getBool("autoStartBreaks", &settings.AutoStartBreaks)
	getBool("autoStartPomodoros", &settings.AutoStartPomodoros)
	if row, ok := rows["theme"]; ok {
		settings.Theme = row.Value
	}
	if row, ok := rows["notifications"]; ok {
		var patch track.NotificationSettingsPatch
		if err := json.Unmarshal([]byte(row.Value), &patch); err == nil {
			applyNotificationPatch(&settings.Notifications, patch)
		}
	}
	if row, ok := rows["features"]; ok {
		var patch track.FeatureTogglesPatch
		if err := json.Unmarshal([]byte(row.Value), &patch); err == nil {
			applyFeaturePatch(&settings.Features, patch)
		}
	}
}

func applyNotificationPatch(dst *track.NotificationSettings, patch track.NotificationSettingsPatch) {
	if patch.SessionEnd != nil {
		dst.SessionEnd = *patch.SessionEnd
	}
	if patch.BreakEnd != nil {
		dst.BreakEnd = *patch.BreakEnd
	}
	if patch.IdleDetected != nil {
		dst.IdleDetected = *patch.IdleDetected
	}
	if patch.DailyGoalReached != nil {
		dst.DailyGoalReached = *patch.DailyGoalReached
	}
}

func applyFeaturePatch(dst *track.FeatureToggles, patch track.FeatureTogglesPatch) {
	if patch.Pomodoro != nil {
		dst.Pomodoro = *patch.Pomodoro
	}
	if patch.AIAnalytics != nil {
		dst.AIAnalytics = *patch.AIAnalytics
	}
	if patch.HealthMonitoring != nil {
		dst.HealthMonitoring = *patch.HealthMonitoring
	}
}
