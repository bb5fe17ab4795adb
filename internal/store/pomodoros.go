package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tally/internal/track"
)

const pomodoroColumns = "id, start_time, end_time, duration, status, session_id, created_at"
const breakColumns = "id, start_time, end_time, duration, is_long_break, pomodoro_id, created_at"

// InsertPomodoro persists a new pomodoro row.
func (s *Store) InsertPomodoro(ctx context.Context, p *track.Pomodoro) error {
	if p == nil {
		return errors.New("pomodoro is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO pomodoros (`+pomodoroColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.StartTime,
		nullableStringPtr(p.EndTime),
		p.Duration,
		string(p.Status),
		nullableStringPtr(p.SessionID),
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pomodoro: %w", err)
	}
	return nil
}

// UpdatePomodoro persists changes to an existing pomodoro row.
func (s *Store) UpdatePomodoro(ctx context.Context, p *track.Pomodoro) error {
	if p == nil {
		return errors.New("pomodoro is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE pomodoros SET end_time = ?, duration = ?, status = ?, session_id = ? WHERE id = ?`,
		nullableStringPtr(p.EndTime),
		p.Duration,
		string(p.Status),
		nullableStringPtr(p.SessionID),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update pomodoro: %w", err)
	}
	return nil
}

// FinishPomodoro records the end time and final status of a pomodoro.
func (s *Store) FinishPomodoro(ctx context.Context, id, endTime string, status track.PomodoroStatus) error {
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE pomodoros SET end_time = ?, status = ? WHERE id = ?`,
		endTime,
		string(status),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish pomodoro: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("finish pomodoro: no row with id %s", id)
	}
	return nil
}

// CountPomodoros returns how many pomodoros with the given status started
// within the date range.
func (s *Store) CountPomodoros(ctx context.Context, status track.PomodoroStatus, startDate, endDate string) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM pomodoros WHERE status = ? AND start_time >= ? AND start_time < ?`,
		string(status),
		startDate,
		endDate+"T23:59:59.999Z",
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pomodoros: %w", err)
	}
	return count, nil
}

// ListPomodoros returns pomodoros started within the date range ordered by
// start time.
func (s *Store) ListPomodoros(ctx context.Context, startDate, endDate string) ([]track.Pomodoro, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+pomodoroColumns+` FROM pomodoros
         WHERE start_time >= ? AND start_time < ? ORDER BY start_time`,
		startDate,
		endDate+"T23:59:59.999Z",
	)
	if err != nil {
		return nil, fmt.Errorf("list pomodoros: %w", err)
	}
	defer rows.Close()

	var pomodoros []track.Pomodoro
	for rows.Next() {
		p, err := scanPomodoro(rows)
		if err != nil {
			return nil, err
		}
		pomodoros = append(pomodoros, *p)
	}
	return pomodoros, rows.Err()
}

// InsertBreak persists a new break row.
func (s *Store) InsertBreak(ctx context.Context, b *track.Break) error {
	if b == nil {
		return errors.New("break is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO breaks (`+breakColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.StartTime,
		nullableStringPtr(b.EndTime),
		b.Duration,
		boolToInt(b.IsLongBreak),
		nullableStringPtr(b.PomodoroID),
		b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert break: %w", err)
	}
	return nil
}

// UpdateBreak persists changes to an existing break row.
func (s *Store) UpdateBreak(ctx context.Context, b *track.Break) error {
	if b == nil {
		return errors.New("break is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE breaks SET end_time = ?, duration = ? WHERE id = ?`,
		nullableStringPtr(b.EndTime),
		b.Duration,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("update break: %w", err)
	}
	return nil
}

// FinishBreak records the end time of a break.
func (s *Store) FinishBreak(ctx context.Context, id, endTime string) error {
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE breaks SET end_time = ? WHERE id = ?`,
		endTime,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish break: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("finish break: no row with id %s", id)
	}
	return nil
}

// CountBreaks returns how many breaks started within the date range.
func (s *Store) CountBreaks(ctx context.Context, startDate, endDate string) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM breaks WHERE start_time >= ? AND start_time < ?`,
		startDate,
		endDate+"T23:59:59.999Z",
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count breaks: %w", err)
	}
	return count, nil
}

func scanPomodoro(scanner interface{ Scan(dest ...any) error }) (*track.Pomodoro, error) {
	var (
		id        string
		startTime string
		endTime   sql.NullString
		duration  int
		statusStr string
		sessionID sql.NullString
		createdAt string
	)
	if err := scanner.Scan(&id, &startTime, &endTime, &duration, &statusStr, &sessionID, &createdAt); err != nil {
		return nil, err
	}
	return &track.Pomodoro{
		ID:        id,
		StartTime: startTime,
		EndTime:   stringPtr(endTime),
		Duration:  duration,
		Status:    track.PomodoroStatus(statusStr),
		SessionID: stringPtr(sessionID),
		CreatedAt: createdAt,
	}, nil
}
