package service

import (
	"context"
	"time"

	"tally/internal/protocol"
	"tally/internal/store"
	"tally/internal/track"
)

// HealthMetrics derives wellbeing scores from the last seven days of
// sessions, breaks, and pomodoros, ending on the requested date.
func (s *Service) HealthMetrics(ctx context.Context, payload track.HealthMetricsPayload) (*track.HealthResult, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.Features.HealthMonitoring {
		return nil, track.Wrap(track.ErrUnavailable, "health", "metrics", "health monitoring is disabled", nil)
	}

	endDate := today()
	if payload.Date != nil && *payload.Date != "" {
		if errs := track.ValidateTimeRange(track.TimeRange{StartDate: *payload.Date, EndDate: *payload.Date}); len(errs) > 0 {
			return nil, track.Wrap(track.ErrValidation, "health", "metrics", errs[0].Message, nil)
		}
		endDate = *payload.Date
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, track.Wrap(track.ErrValidation, "health", "metrics", "date must be in YYYY-MM-DD format", nil)
	}
	startDate := end.AddDate(0, 0, -6).Format("2006-01-02")

	sessions, _, err := s.store.ListSessions(ctx, store.SessionFilter{
		StartDate: &startDate,
		EndDate:   &endDate,
	})
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "health", "metrics", "load sessions", err)
	}
	completedPomodoros, err := s.store.CountPomodoros(ctx, track.PomodoroCompleted, startDate, endDate)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "health", "metrics", "count pomodoros", err)
	}
	breaks, err := s.store.CountBreaks(ctx, startDate, endDate)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "health", "metrics", "count breaks", err)
	}

	metrics := computeHealthMetrics(sessions, completedPomodoros, breaks, int64(settings.DailyGoal)*60*1000)
	s.publishHealthAlerts(metrics)
	return &track.HealthResult{Metrics: metrics}, nil
}

// deepWorkThresholdMillis marks a session as deep work at 25 minutes,
// matching the aggregation queries.
const deepWorkThresholdMillis = 1_500_000

// computeHealthMetrics scores a week of activity. Every score is clamped
// to 0-100.
func computeHealthMetrics(sessions []track.Session, completedPomodoros, breaks int, dailyGoalMillis int64) track.HealthMetrics {
	var (
		totalTime     int64
		deepWorkTime  int64
		interruptions int
		stressSamples int
		stressSum     float64
		daysWorked    = make(map[string]int64)
	)
	for _, session := range sessions {
		if session.Duration == nil {
			continue
		}
		d := *session.Duration
		totalTime += d
		if d >= deepWorkThresholdMillis {
			deepWorkTime += d
		}
		interruptions += session.Interruptions
		if session.StressLevel != nil {
			stressSamples++
			stressSum += *session.StressLevel
		}
		if len(session.StartTime) >= 10 {
			daysWorked[session.StartTime[:10]] += d
		}
	}

	metrics := track.HealthMetrics{}

	// Stress: reported levels when available, otherwise interruption rate.
	if stressSamples > 0 {
		metrics.StressLevel = clampScore(stressSum / float64(stressSamples))
	} else if len(sessions) > 0 {
		metrics.StressLevel = clampScore(float64(interruptions) / float64(len(sessions)) * 20)
	}

	// Burnout: sustained overshoot of the daily goal across the week.
	var overloadedDays int
	for _, worked := range daysWorked {
		if dailyGoalMillis > 0 && worked > dailyGoalMillis*3/2 {
			overloadedDays++
		}
	}
	metrics.BurnoutRisk = clampScore(float64(overloadedDays) * 100 / 7)

	// Focus: share of tracked time spent in deep work.
	if totalTime > 0 {
		metrics.FocusScore = clampScore(float64(deepWorkTime) / float64(totalTime) * 100)
	}

	// Break compliance: breaks taken against completed pomodoros.
	if completedPomodoros > 0 {
		metrics.BreakCompliance = clampScore(float64(breaks) / float64(completedPomodoros) * 100)
	} else {
		metrics.BreakCompliance = 100
	}

	// Work-life balance: penalize both overwork and seven-day weeks.
	balance := 100.0
	if dailyGoalMillis > 0 && len(daysWorked) > 0 {
		avg := float64(totalTime) / float64(len(daysWorked))
		if over := avg/float64(dailyGoalMillis) - 1; over > 0 {
			balance -= over * 50
		}
	}
	if len(daysWorked) >= 7 {
		balance -= 20
	}
	metrics.WorkLifeBalance = clampScore(balance)

	metrics.Recommendations = buildRecommendations(metrics)
	return metrics
}

// RecommendationTypes are the values clients accept in
// HealthRecommendation.Type.
var RecommendationTypes = []string{"break", "posture", "hydration", "exercise", "focus"}

// AlertTypes are the values clients accept in HealthAlert.AlertType.
var AlertTypes = []string{"break", "posture", "hydration", "burnout", "eyestrain"}

func buildRecommendations(metrics track.HealthMetrics) []track.HealthRecommendation {
	var recs []track.HealthRecommendation
	if metrics.StressLevel >= 70 {
		recs = append(recs, track.HealthRecommendation{
			Type:     "break",
			Message:  "Stress is running high. Consider shorter sessions with regular breaks.",
			Priority: "high",
		})
	}
	if metrics.BurnoutRisk >= 50 {
		recs = append(recs, track.HealthRecommendation{
			Type:     "exercise",
			Message:  "You have been well over your daily goal most days this week. Plan a lighter day away from the desk.",
			Priority: "high",
		})
	}
	if metrics.BreakCompliance < 50 {
		recs = append(recs, track.HealthRecommendation{
			Type:     "break",
			Message:  "Breaks are being skipped after pomodoros. Let the break timer run.",
			Priority: "medium",
		})
	}
	if metrics.FocusScore < 30 {
		recs = append(recs, track.HealthRecommendation{
			Type:     "focus",
			Message:  "Most sessions are short. Try blocking out longer uninterrupted stretches.",
			Priority: "low",
		})
	}
	return recs
}

func (s *Service) publishHealthAlerts(metrics track.HealthMetrics) {
	if metrics.BurnoutRisk >= 70 {
		s.publisher.Publish(protocol.TypeHealthAlert, track.HealthAlert{
			AlertType:      "burnout",
			Message:        "Sustained overwork detected across the last week.",
			Severity:       "critical",
			Recommendation: "Take a full day away from tracked work.",
		})
		return
	}
	if metrics.StressLevel >= 80 {
		s.publisher.Publish(protocol.TypeHealthAlert, track.HealthAlert{
			AlertType:      "break",
			Message:        "Reported stress levels are very high.",
			Severity:       "warning",
			Recommendation: "Step away for a short walk before the next session.",
		})
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
