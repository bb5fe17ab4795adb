package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tally/internal/track"
)

const projectColumns = "id, name, description, git_repository, git_branch, color, is_archived, created_at, updated_at, last_active"

// InsertProject persists a new project row.
func (s *Store) InsertProject(ctx context.Context, project *track.Project) error {
	if project == nil {
		return errors.New("project is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO projects (`+projectColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.Name,
		nullableStringPtr(project.Description),
		nullableStringPtr(project.GitRepository),
		nullableStringPtr(project.GitBranch),
		nullableStringPtr(project.Color),
		boolToInt(project.IsArchived),
		project.CreatedAt,
		project.UpdatedAt,
		nullableStringPtr(project.LastActive),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetProject fetches a project by id. Returns nil when no row matches.
func (s *Store) GetProject(ctx context.Context, id string) (*track.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// GetProjectByName fetches a project by its unique name. Returns nil when no
// row matches.
func (s *Store) GetProjectByName(ctx context.Context, name string) (*track.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE name = ?`, name)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project by name: %w", err)
	}
	return project, nil
}

// UpdateProject persists changes to an existing project row.
func (s *Store) UpdateProject(ctx context.Context, project *track.Project) error {
	if project == nil {
		return errors.New("project is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE projects
         SET name = ?, description = ?, git_repository = ?, git_branch = ?, color = ?,
             is_archived = ?, updated_at = ?, last_active = ?
         WHERE id = ?`,
		project.Name,
		nullableStringPtr(project.Description),
		nullableStringPtr(project.GitRepository),
		nullableStringPtr(project.GitBranch),
		nullableStringPtr(project.Color),
		boolToInt(project.IsArchived),
		project.UpdatedAt,
		nullableStringPtr(project.LastActive),
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// ListProjects returns all projects ordered by name.
func (s *Store) ListProjects(ctx context.Context) ([]track.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []track.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// ProjectTotals returns per-project tracked milliseconds within the date
// range, keyed by project name.
func (s *Store) ProjectTotals(ctx context.Context, startDate, endDate string) ([]track.ProjectTime, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT p.name, COALESCE(SUM(s.duration), 0)
         FROM sessions s JOIN projects p ON p.id = s.project_id
         WHERE s.start_time >= ? AND s.start_time < ? AND s.duration IS NOT NULL
         GROUP BY p.name ORDER BY SUM(s.duration) DESC`,
		startDate,
		endDate+"T23:59:59.999Z",
	)
	if err != nil {
		return nil, fmt.Errorf("project totals: %w", err)
	}
	defer rows.Close()

	var totals []track.ProjectTime
	for rows.Next() {
		var entry track.ProjectTime
		if err := rows.Scan(&entry.Name, &entry.Time); err != nil {
			return nil, err
		}
		totals = append(totals, entry)
	}
	return totals, rows.Err()
}

func scanProject(scanner interface{ Scan(dest ...any) error }) (*track.Project, error) {
	var (
		id          string
		name        string
		description sql.NullString
		gitRepo     sql.NullString
		gitBranch   sql.NullString
		color       sql.NullString
		isArchived  int
		createdAt   string
		updatedAt   string
		lastActive  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&name,
		&description,
		&gitRepo,
		&gitBranch,
		&color,
		&isArchived,
		&createdAt,
		&updatedAt,
		&lastActive,
	); err != nil {
		return nil, err
	}

	return &track.Project{
		ID:            id,
		Name:          name,
		Description:   stringPtr(description),
		GitRepository: stringPtr(gitRepo),
		GitBranch:     stringPtr(gitBranch),
		Color:         stringPtr(color),
		IsArchived:    isArchived != 0,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
		LastActive:    stringPtr(lastActive),
	}, nil
}
