package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tally/internal/logging"
	"tally/internal/protocol"
	"tally/internal/store"
	"tally/internal/track"
)

// DailyStats reports the rollup for one day, defaulting to today.
func (s *Service) DailyStats(ctx context.Context, payload track.DailyStatsPayload) (*track.DailyStatsResult, error) {
	date := today()
	if payload.Date != nil {
		date = *payload.Date
	}

	stats, err := s.buildDailyStats(ctx, date)
	if err != nil {
		return nil, err
	}
	return &track.DailyStatsResult{Stats: *stats}, nil
}

// WeeklyStats reports per-day rollups for the requested week, defaulting to
// the current week starting Monday.
func (s *Service) WeeklyStats(ctx context.Context, payload track.WeeklyStatsPayload) (*track.PeriodStatsResult, error) {
	var start, end time.Time
	if payload.StartDate != nil {
		parsed, err := time.Parse("2006-01-02", *payload.StartDate)
		if err != nil {
			return nil, track.Wrap(track.ErrValidation, "stats", "weekly", "bad startDate", err)
		}
		start = parsed
	} else {
		now := time.Now().UTC()
		offset := (int(now.Weekday()) + 6) % 7 // days since Monday
		start = now.AddDate(0, 0, -offset).Truncate(24 * time.Hour)
	}
	end = start.AddDate(0, 0, 6)
	if payload.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *payload.EndDate)
		if err != nil {
			return nil, track.Wrap(track.ErrValidation, "stats", "weekly", "bad endDate", err)
		}
		end = parsed
	}

	return s.periodStats(ctx, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// MonthlyStats reports per-day rollups for the requested month, defaulting
// to the current one.
func (s *Service) MonthlyStats(ctx context.Context, payload track.MonthlyStatsPayload) (*track.PeriodStatsResult, error) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if payload.Year != nil {
		year = *payload.Year
	}
	if payload.Month != nil {
		month = *payload.Month
	}
	if month < 1 || month > 12 {
		return nil, track.Wrap(track.ErrValidation, "stats", "monthly", fmt.Sprintf("month %d out of range", month), nil)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return s.periodStats(ctx, first.Format("2006-01-02"), last.Format("2006-01-02"))
}

// ProjectStats aggregates one project's sessions within the optional date
// bounds.
func (s *Service) ProjectStats(ctx context.Context, payload track.ProjectStatsPayload) (*track.ProjectStatsResult, error) {
	project, err := s.store.GetProjectByName(ctx, payload.Project)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "stats", "project", "resolve project", err)
	}
	if project == nil {
		return nil, track.Wrap(track.ErrNotFound, "stats", "project", "project "+payload.Project, nil)
	}

	startDate := "0000-01-01"
	endDate := "9999-12-31"
	if payload.StartDate != nil {
		startDate = *payload.StartDate
	}
	if payload.EndDate != nil {
		endDate = *payload.EndDate
	}

	status := track.SessionCompleted
	sessions, _, err := s.store.ListSessions(ctx, sessionRangeFilter(startDate, endDate, &project.ID, &status))
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "stats", "project", "query sessions", err)
	}

	stats := track.ProjectStats{LastActive: project.LastActive}
	perDay := make(map[string]int64)
	for _, session := range sessions {
		if session.Duration == nil {
			continue
		}
		stats.TotalTime += *session.Duration
		stats.SessionsCount++
		day := session.StartTime
		if len(day) >= 10 {
			day = day[:10]
		}
		perDay[day] += *session.Duration
	}
	if stats.SessionsCount > 0 {
		stats.AverageSessionLength = stats.TotalTime / int64(stats.SessionsCount)
	}
	for day, duration := range perDay {
		stats.DailyBreakdown = append(stats.DailyBreakdown, track.DailyTime{Date: day, Time: duration})
	}
	sort.Slice(stats.DailyBreakdown, func(i, j int) bool {
		return stats.DailyBreakdown[i].Date < stats.DailyBreakdown[j].Date
	})

	return &track.ProjectStatsResult{Project: project.Name, Stats: stats}, nil
}

func (s *Service) periodStats(ctx context.Context, startDate, endDate string) (*track.PeriodStatsResult, error) {
	aggregates, err := s.store.SessionAggregates(ctx, startDate, endDate)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "stats", "period", "aggregate sessions", err)
	}

	goal := int64(s.cfg.Tracking.DailyGoalMinutes) * 60 * 1000
	days := make([]track.DailyStats, 0, len(aggregates))
	summary := track.PeriodSummary{}
	for _, agg := range aggregates {
		stats := aggregateToDaily(agg, goal)
		days = append(days, stats)

		summary.TotalTime += stats.TotalTime
		summary.ActiveTime += stats.ActiveTime
		summary.DeepWorkTime += stats.DeepWorkTime
		summary.SessionsCount += stats.SessionsCount
		summary.ContextSwitches += stats.ContextSwitches
	}
	if summary.TotalTime > 0 {
		summary.DeepWorkPercentage = 100 * float64(summary.DeepWorkTime) / float64(summary.TotalTime)
	}
	if summary.SessionsCount > 0 {
		summary.AverageSessionLength = summary.TotalTime / int64(summary.SessionsCount)
	}
	if len(days) > 0 {
		summary.AverageDailyTime = summary.TotalTime / int64(len(days))
	}

	return &track.PeriodStatsResult{Stats: days, Summary: &summary}, nil
}

func (s *Service) buildDailyStats(ctx context.Context, date string) (*track.DailyStats, error) {
	aggregates, err := s.store.SessionAggregates(ctx, date, date)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "stats", "daily", "aggregate sessions", err)
	}

	goal := int64(s.cfg.Tracking.DailyGoalMinutes) * 60 * 1000
	stats := track.DailyStats{Date: date, UpdatedAt: nowRFC3339()}
	if len(aggregates) > 0 {
		stats = aggregateToDaily(aggregates[0], goal)
	}

	projects, err := s.store.ProjectTotals(ctx, date, date)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "stats", "daily", "project totals", err)
	}
	stats.Projects = projects

	// Persist the rollup so historic days survive session pruning.
	if err := s.store.UpsertDailyStats(ctx, &stats); err != nil {
		s.logger.Warn("persist daily stats failed",
			logging.String("date", date),
			logging.Error(err))
	}
	return &stats, nil
}

// publishFocusProgress emits focusTimeUpdate and, on crossing the daily
// goal, goalReached.
func (s *Service) publishFocusProgress(ctx context.Context) {
	stats, err := s.buildDailyStats(ctx, today())
	if err != nil {
		s.logger.Warn("focus progress failed", logging.Error(err))
		return
	}

	goal := int64(s.cfg.Tracking.DailyGoalMinutes) * 60 * 1000
	s.publisher.Publish(protocol.TypeFocusTimeUpdate, track.FocusTimeUpdate{
		DailyTotal:     stats.TotalTime,
		GoalPercentage: stats.GoalCompletion,
	})
	if goal > 0 && stats.TotalTime >= goal {
		s.publisher.Publish(protocol.TypeGoalReached, track.GoalReached{
			GoalType:   "daily",
			Achieved:   stats.TotalTime,
			Target:     goal,
			Percentage: stats.GoalCompletion,
		})
	}
}

func aggregateToDaily(agg store.DayAggregate, goal int64) track.DailyStats {
	stats := track.DailyStats{
		Date:            agg.Date,
		TotalTime:       agg.TotalTime,
		ActiveTime:      agg.TotalTime,
		DeepWorkTime:    agg.DeepWorkTime,
		SessionsCount:   agg.SessionsCount,
		ContextSwitches: agg.Interruptions,
		UpdatedAt:       nowRFC3339(),
	}
	if stats.TotalTime > 0 {
		stats.DeepWorkPercentage = 100 * float64(stats.DeepWorkTime) / float64(stats.TotalTime)
	}
	if stats.SessionsCount > 0 {
		stats.AverageSessionLength = stats.TotalTime / int64(stats.SessionsCount)
	}
	if goal > 0 {
		stats.GoalCompletion = 100 * float64(stats.TotalTime) / float64(goal)
		if stats.GoalCompletion > 100 {
			stats.GoalCompletion = 100
		}
	}
	return stats
}

func sessionRangeFilter(startDate, endDate string, projectID *string, status *track.SessionStatus) store.SessionFilter {
	return store.SessionFilter{
		StartDate: &startDate,
		EndDate:   &endDate,
		ProjectID: projectID,
		Status:    status,
	}
}
