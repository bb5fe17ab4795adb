package service

import (
	"context"
	"time"

	"tally/internal/export"
	"tally/internal/logging"
	"tally/internal/store"
	"tally/internal/track"
)

// ExportData writes the selected datasets to the configured export
// directory. The default range covers the last 30 days.
func (s *Service) ExportData(ctx context.Context, payload track.ExportDataPayload) (*track.ExportResult, error) {
	format := "json"
	if payload.Format != nil {
		format = *payload.Format
	}
	if payload.Encrypted != nil && *payload.Encrypted &&
		(payload.Password == nil || *payload.Password == "") {
		return nil, track.Wrap(track.ErrValidation, "export", "exportData", "password is required for encrypted exports", nil)
	}

	now := time.Now().UTC()
	timeRange := track.TimeRange{
		StartDate: now.AddDate(0, 0, -30).Format("2006-01-02"),
		EndDate:   now.Format("2006-01-02"),
	}
	if payload.StartDate != nil {
		timeRange.StartDate = *payload.StartDate
	}
	if payload.EndDate != nil {
		timeRange.EndDate = *payload.EndDate
	}
	if errs := track.ValidateExportRequest(track.ExportRequest{TimeRange: timeRange, Format: format}); len(errs) > 0 {
		return nil, track.Wrap(track.ErrValidation, "export", "exportData", errs[0].Message, nil)
	}

	bundle, err := s.buildBundle(ctx, timeRange, payload)
	if err != nil {
		return nil, err
	}

	path, err := export.Write(s.cfg.Paths.ExportDir, format, bundle)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "export", "exportData", "write export", err)
	}

	encrypted := payload.Encrypted != nil && *payload.Encrypted
	if encrypted {
		path, err = export.EncryptFile(path, *payload.Password)
		if err != nil {
			return nil, track.Wrap(track.ErrInternal, "export", "exportData", "encrypt export", err)
		}
	}

	s.logger.Info("export written",
		logging.String("path", path),
		logging.String("format", format),
		logging.Bool("encrypted", encrypted))
	return &track.ExportResult{
		Success:   true,
		FilePath:  path,
		Format:    format,
		Encrypted: encrypted,
	}, nil
}

func (s *Service) buildBundle(ctx context.Context, timeRange track.TimeRange, payload track.ExportDataPayload) (*export.Bundle, error) {
	bundle := &export.Bundle{
		Range:       timeRange,
		GeneratedAt: nowRFC3339(),
	}

	sessions, _, err := s.store.ListSessions(ctx, store.SessionFilter{
		StartDate: &timeRange.StartDate,
		EndDate:   &timeRange.EndDate,
	})
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "export", "exportData", "load sessions", err)
	}
	bundle.Sessions = sessions

	if payload.IncludeProjects == nil || *payload.IncludeProjects {
		projects, err := s.store.ListProjects(ctx)
		if err != nil {
			return nil, track.Wrap(track.ErrStorage, "export", "exportData", "load projects", err)
		}
		bundle.Projects = projects
	}
	if payload.IncludeTags != nil && *payload.IncludeTags {
		tags, err := s.store.ListTags(ctx)
		if err != nil {
			return nil, track.Wrap(track.ErrStorage, "export", "exportData", "load tags", err)
		}
		bundle.Tags = tags
	}

	aggregates, err := s.store.SessionAggregates(ctx, timeRange.StartDate, timeRange.EndDate)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "export", "exportData", "load stats", err)
	}
	goal := int64(s.cfg.Tracking.DailyGoalMinutes) * 60 * 1000
	for _, agg := range aggregates {
		bundle.Stats = append(bundle.Stats, aggregateToDaily(agg, goal))
	}

	pomodoros, err := s.store.ListPomodoros(ctx, timeRange.StartDate, timeRange.EndDate)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "export", "exportData", "load pomodoros", err)
	}
	bundle.Pomodoros = pomodoros

	return bundle, nil
}
