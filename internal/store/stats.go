package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tally/internal/track"
)

// DayAggregate is the raw per-day rollup computed from session rows. Times
// are in milliseconds.
type DayAggregate struct {
	Date          string
	TotalTime     int64
	SessionsCount int
	DeepWorkTime  int64
	Interruptions int
}

// SessionAggregates rolls completed sessions up per day within the inclusive
// date range. Deep work counts sessions of 25 minutes or longer.
func (s *Store) SessionAggregates(ctx context.Context, startDate, endDate string) ([]DayAggregate, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT substr(start_time, 1, 10) AS day,
                COALESCE(SUM(duration), 0),
                COUNT(1),
                COALESCE(SUM(CASE WHEN duration >= 1500000 THEN duration ELSE 0 END), 0),
                COALESCE(SUM(interruptions), 0)
         FROM sessions
         WHERE start_time >= ? AND start_time < ? AND duration IS NOT NULL
         GROUP BY day ORDER BY day`,
		startDate,
		endDate+"T23:59:59.999Z",
	)
	if err != nil {
		return nil, fmt.Errorf("session aggregates: %w", err)
	}
	defer rows.Close()

	var aggregates []DayAggregate
	for rows.Next() {
		var agg DayAggregate
		if err := rows.Scan(&agg.Date, &agg.TotalTime, &agg.SessionsCount, &agg.DeepWorkTime, &agg.Interruptions); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}

// UpsertDailyStats writes the precomputed summary for one day.
func (s *Store) UpsertDailyStats(ctx context.Context, stats *track.DailyStats) error {
	if stats == nil {
		return errors.New("stats is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO daily_stats (date, total_time, active_time, deep_work_time, sessions_count, context_switches, goal_completion, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(date) DO UPDATE SET
             total_time = excluded.total_time,
             active_time = excluded.active_time,
             deep_work_time = excluded.deep_work_time,
             sessions_count = excluded.sessions_count,
             context_switches = excluded.context_switches,
             goal_completion = excluded.goal_completion,
             updated_at = excluded.updated_at`,
		stats.Date,
		stats.TotalTime,
		stats.ActiveTime,
		stats.DeepWorkTime,
		stats.SessionsCount,
		stats.ContextSwitches,
		stats.GoalCompletion,
		stats.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert daily stats: %w", err)
	}
	return nil
}

// GetDailyStats fetches the precomputed summary for one day. Returns nil
// when no row exists.
func (s *Store) GetDailyStats(ctx context.Context, date string) (*track.DailyStats, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT date, total_time, active_time, deep_work_time, sessions_count, context_switches, goal_completion, updated_at
         FROM daily_stats WHERE date = ?`,
		date,
	)
	stats, err := scanDailyStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily stats: %w", err)
	}
	return stats, nil
}

func scanDailyStats(scanner interface{ Scan(dest ...any) error }) (*track.DailyStats, error) {
	var stats track.DailyStats
	if err := scanner.Scan(
		&stats.Date,
		&stats.TotalTime,
		&stats.ActiveTime,
		&stats.DeepWorkTime,
		&stats.SessionsCount,
		&stats.ContextSwitches,
		&stats.GoalCompletion,
		&stats.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}
