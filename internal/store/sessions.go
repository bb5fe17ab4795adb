package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tally/internal/track"
)

const sessionColumns = "id, start_time, end_time, duration, status, project_id, file_path, complexity, stress_level, interruptions, created_at, updated_at"

// SessionFilter narrows and pages session listings. Nil fields match
// everything. Dates compare against start_time lexicographically, which is
// safe for RFC 3339 values.
type SessionFilter struct {
	StartDate *string
	EndDate   *string
	ProjectID *string
	Status    *track.SessionStatus
	Limit     int
	Offset    int
}

// InsertSession persists a new session row.
func (s *Store) InsertSession(ctx context.Context, session *track.Session) error {
	if session == nil {
		return errors.New("session is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.StartTime,
		nullableStringPtr(session.EndTime),
		nullableInt64Ptr(session.Duration),
		string(session.Status),
		nullableStringPtr(session.ProjectID),
		nullableStringPtr(session.FilePath),
		nullableFloatPtr(session.Complexity),
		nullableFloatPtr(session.StressLevel),
		session.Interruptions,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession fetches a session by id, including its tags. Returns nil when
// no row matches.
func (s *Store) GetSession(ctx context.Context, id string) (*track.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	tags, err := s.sessionTagNames(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Tags = tags
	return session, nil
}

// UpdateSession persists changes to an existing session row.
func (s *Store) UpdateSession(ctx context.Context, session *track.Session) error {
	if session == nil {
		return errors.New("session is nil")
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions
         SET start_time = ?, end_time = ?, duration = ?, status = ?, project_id = ?,
             file_path = ?, complexity = ?, stress_level = ?, interruptions = ?, updated_at = ?
         WHERE id = ?`,
		session.StartTime,
		nullableStringPtr(session.EndTime),
		nullableInt64Ptr(session.Duration),
		string(session.Status),
		nullableStringPtr(session.ProjectID),
		nullableStringPtr(session.FilePath),
		nullableFloatPtr(session.Complexity),
		nullableFloatPtr(session.StressLevel),
		session.Interruptions,
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update session: no row with id %s", session.ID)
	}
	return nil
}

// ActiveSession returns the most recent session still in an active or paused
// state, or nil when none is in flight.
func (s *Store) ActiveSession(ctx context.Context) (*track.Session, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+` FROM sessions
         WHERE status IN (?, ?) ORDER BY start_time DESC LIMIT 1`,
		string(track.SessionActive),
		string(track.SessionPaused),
	)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active session: %w", err)
	}
	tags, err := s.sessionTagNames(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	session.Tags = tags
	return session, nil
}

// ListSessions returns sessions matching filter ordered by start time
// descending, along with the total match count before paging.
func (s *Store) ListSessions(ctx context.Context, filter SessionFilter) ([]track.Session, int, error) {
	where, args := sessionFilterClause(filter)

	var total int
	countQuery := `SELECT COUNT(1) FROM sessions` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions` + where + ` ORDER BY start_time DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []track.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range sessions {
		tags, err := s.sessionTagNames(ctx, sessions[i].ID)
		if err != nil {
			return nil, 0, err
		}
		sessions[i].Tags = tags
	}
	return sessions, total, nil
}

func sessionFilterClause(filter SessionFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.StartDate != nil {
		clauses = append(clauses, "start_time >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		// Inclusive end date: anything starting before the next day.
		clauses = append(clauses, "start_time < ?")
		args = append(args, *filter.EndDate+"T23:59:59.999Z")
	}
	if filter.ProjectID != nil {
		clauses = append(clauses, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	where := " WHERE " + clauses[0]
	for _, clause := range clauses[1:] {
		where += " AND " + clause
	}
	return where, args
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (*track.Session, error) {
	var (
		id          string
		startTime   string
		endTime     sql.NullString
		duration    sql.NullInt64
		statusStr   string
		projectID   sql.NullString
		filePath    sql.NullString
		complexity  sql.NullFloat64
		stressLevel sql.NullFloat64
		interrupts  int
		createdAt   string
		updatedAt   string
	)

	if err := scanner.Scan(
		&id,
		&startTime,
		&endTime,
		&duration,
		&statusStr,
		&projectID,
		&filePath,
		&complexity,
		&stressLevel,
		&interrupts,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	return &track.Session{
		ID:            id,
		StartTime:     startTime,
		EndTime:       stringPtr(endTime),
		Duration:      int64Ptr(duration),
		Status:        track.SessionStatus(statusStr),
		ProjectID:     stringPtr(projectID),
		FilePath:      stringPtr(filePath),
		Complexity:    floatPtr(complexity),
		StressLevel:   floatPtr(stressLevel),
		Interruptions: interrupts,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
