package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DatabaseHealth reports diagnostic information about the database file and
// schema.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TablesPresent    []string
	MissingTables    []string
	IntegrityCheck   bool
	SessionCount     int
	Error            string
}

var expectedTables = []string{"sessions", "projects", "tags", "session_tags", "pomodoros", "breaks", "daily_stats", "settings"}

// CheckHealth returns diagnostic information about the tracking database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping database: %w", err)
	}
	health.DatabaseReadable = true

	rows, err := s.db.QueryContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	present := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("scan table name: %w", err)
		}
		present[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("iterate tables: %w", err)
	}

	for _, table := range expectedTables {
		if _, ok := present[table]; ok {
			health.TablesPresent = append(health.TablesPresent, table)
		} else {
			health.MissingTables = append(health.MissingTables, table)
		}
	}

	if _, ok := present["sessions"]; ok {
		row := s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM sessions")
		if err := row.Scan(&health.SessionCount); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count sessions: %w", err)
		}
	}

	var integrityResult string
	row := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

// PruneBefore removes completed sessions, pomodoros, breaks, and daily stats
// older than the cutoff date. Active and paused sessions are never pruned.
func (s *Store) PruneBefore(ctx context.Context, cutoffDate string) (int64, error) {
	var removed int64

	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM sessions WHERE start_time < ? AND status IN ('completed', 'interrupted')`,
		cutoffDate,
	)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += n
	}

	for _, stmt := range []struct {
		query string
		label string
	}{
		{`DELETE FROM pomodoros WHERE start_time < ?`, "prune pomodoros"},
		{`DELETE FROM breaks WHERE start_time < ?`, "prune breaks"},
		{`DELETE FROM daily_stats WHERE date < ?`, "prune daily stats"},
	} {
		res, err := s.db.ExecContext(ctx, stmt.query, cutoffDate)
		if err != nil {
			return removed, fmt.Errorf("%s: %w", stmt.label, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += n
		}
	}

	return removed, nil
}
