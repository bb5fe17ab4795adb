package service

import (
	"context"

	"github.com/google/uuid"

	"tally/internal/logging"
	"tally/internal/protocol"
	"tally/internal/track"
)

// Projects lists all known projects with their tracked totals.
func (s *Service) Projects(ctx context.Context) (*track.ProjectsResult, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "projects", "list", "query projects", err)
	}

	// Totals cover the full history; the listing is a catalog, not a report.
	totals, err := s.store.ProjectTotals(ctx, "0000-01-01", "9999-12-31")
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "projects", "list", "aggregate totals", err)
	}
	totalByName := make(map[string]int64, len(totals))
	for _, entry := range totals {
		totalByName[entry.Name] = entry.Time
	}

	summaries := make([]track.ProjectSummary, 0, len(projects))
	for _, project := range projects {
		summaries = append(summaries, track.ProjectSummary{
			Name:       project.Name,
			TotalTime:  totalByName[project.Name],
			LastActive: project.LastActive,
		})
	}
	return &track.ProjectsResult{Projects: summaries}, nil
}

// AvailableTags lists all tags with usage counts.
func (s *Service) AvailableTags(ctx context.Context) (*track.TagsResult, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "tags", "list", "query tags", err)
	}
	summaries := make([]track.TagSummary, 0, len(tags))
	for _, tag := range tags {
		summaries = append(summaries, track.TagSummary{Name: tag.Name, UsageCount: tag.UsageCount})
	}
	return &track.TagsResult{Tags: summaries}, nil
}

// ProjectDetected records a detected project and announces it to clients.
// Called by workspace watchers when the active project changes.
func (s *Service) ProjectDetected(ctx context.Context, name, gitBranch string, recentFiles []string) (*track.Project, error) {
	project, err := s.resolveProject(ctx, name)
	if err != nil {
		return nil, err
	}
	if gitBranch != "" && (project.GitBranch == nil || *project.GitBranch != gitBranch) {
		project.GitBranch = &gitBranch
		project.UpdatedAt = nowRFC3339()
		if err := s.store.UpdateProject(ctx, project); err != nil {
			return nil, track.Wrap(track.ErrStorage, "projects", "detect", "update branch", err)
		}
	}
	s.publisher.Publish(protocol.TypeProjectDetected, track.ProjectDetected{
		Project:     project.Name,
		GitBranch:   gitBranch,
		RecentFiles: recentFiles,
	})
	return project, nil
}

// resolveProject returns the project with the given name, creating it on
// first sight.
func (s *Service) resolveProject(ctx context.Context, name string) (*track.Project, error) {
	project, err := s.store.GetProjectByName(ctx, name)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "projects", "resolve", "load project", err)
	}
	if project != nil {
		return project, nil
	}

	now := nowRFC3339()
	project = &track.Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertProject(ctx, project); err != nil {
		return nil, track.Wrap(track.ErrStorage, "projects", "resolve", "insert project", err)
	}
	s.logger.Info("project registered", logging.String("project", name))
	return project, nil
}

func (s *Service) touchProject(ctx context.Context, id string) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil || project == nil {
		return
	}
	now := nowRFC3339()
	project.LastActive = &now
	project.UpdatedAt = now
	if err := s.store.UpdateProject(ctx, project); err != nil {
		s.logger.Warn("touch project failed",
			logging.String("project_id", id),
			logging.Error(err))
	}
}
