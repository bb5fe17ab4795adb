package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tally/internal/track"
)

const tagColumns = "id, name, color, usage_count, created_at"

// GetOrCreateTag returns the tag with the given name, creating it when it
// does not exist yet.
func (s *Store) GetOrCreateTag(ctx context.Context, name string) (*track.Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE name = ?`, name)
	tag, err := scanTag(row)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tag: %w", err)
	}

	created := &track.Tag{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO tags (`+tagColumns+`) VALUES (?, ?, ?, ?, ?)`,
		created.ID,
		created.Name,
		nullableStringPtr(created.Color),
		0,
		created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	return created, nil
}

// ReplaceSessionTags attaches the named tags to a session, replacing any
// previous set and bumping usage counts for newly attached tags.
func (s *Store) ReplaceSessionTags(ctx context.Context, sessionID string, names []string) error {
	// Resolve tags before opening the write transaction so tag creation
	// does not contend with it for the writer lock.
	tags := make([]*track.Tag, 0, len(names))
	for _, name := range names {
		tag, err := s.GetOrCreateTag(ctx, name)
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tag tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_tags WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear session tags: %w", err)
	}

	for _, tag := range tags {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO session_tags (session_id, tag_id) VALUES (?, ?)`,
			sessionID,
			tag.ID,
		); err != nil {
			return fmt.Errorf("attach tag %q: %w", tag.Name, err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE tags SET usage_count = usage_count + 1 WHERE id = ?`,
			tag.ID,
		); err != nil {
			return fmt.Errorf("bump tag usage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tag tx: %w", err)
	}
	return nil
}

// ListTags returns all tags ordered by usage count descending.
func (s *Store) ListTags(ctx context.Context) ([]track.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY usage_count DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []track.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, rows.Err()
}

func (s *Store) sessionTagNames(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT t.name FROM tags t
         JOIN session_tags st ON st.tag_id = t.id
         WHERE st.session_id = ? ORDER BY t.name`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("session tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanTag(scanner interface{ Scan(dest ...any) error }) (*track.Tag, error) {
	var (
		id         string
		name       string
		color      sql.NullString
		usageCount int
		createdAt  string
	)
	if err := scanner.Scan(&id, &name, &color, &usageCount, &createdAt); err != nil {
		return nil, err
	}
	return &track.Tag{
		ID:         id,
		Name:       name,
		Color:      stringPtr(color),
		UsageCount: usageCount,
		CreatedAt:  createdAt,
	}, nil
}
