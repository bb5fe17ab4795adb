package store

import (
	"context"
	"fmt"
	"time"

	"tally/internal/track"
)

// Settings returns all persisted setting rows keyed by name.
func (s *Store) Settings(ctx context.Context) (map[string]track.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value, type, updated_at FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]track.Setting)
	for rows.Next() {
		var setting track.Setting
		var typeStr string
		if err := rows.Scan(&setting.Key, &setting.Value, &typeStr, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		setting.Type = track.SettingType(typeStr)
		settings[setting.Key] = setting
	}
	return settings, rows.Err()
}

// SetSetting writes one setting row, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string, settingType track.SettingType) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO settings (key, value, type, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, type = excluded.type, updated_at = excluded.updated_at`,
		key,
		value,
		string(settingType),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// ClearSettings removes every persisted setting, returning the store to
// defaults.
func (s *Store) ClearSettings(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings`); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	return nil
}
