package track

import (
	"time"

	"tally/internal/validate"
)

// ValidateSession checks a persisted session row, accumulating one error per
// violated field.
func ValidateSession(s Session) []validate.FieldError {
	var errs []validate.FieldError

	errs = append(errs, validate.UUID(s.ID, "id")...)
	errs = append(errs, validate.Timestamp(s.StartTime, "startTime")...)

	if !s.Status.Valid() {
		errs = append(errs, validate.FieldError{
			Field:   "status",
			Message: "status must be a valid SessionStatus",
			Value:   string(s.Status),
		})
	}

	errs = append(errs, validate.NumberInRange(s.Interruptions, "interruptions", validate.AtLeast(0))...)
	errs = append(errs, validate.Timestamp(s.CreatedAt, "createdAt")...)
	errs = append(errs, validate.Timestamp(s.UpdatedAt, "updatedAt")...)

	if s.EndTime != nil {
		errs = append(errs, validate.Timestamp(*s.EndTime, "endTime")...)
	}
	if s.Duration != nil {
		errs = append(errs, validate.NumberInRange(*s.Duration, "duration", validate.AtLeast(0))...)
	}
	if s.ProjectID != nil {
		errs = append(errs, validate.UUID(*s.ProjectID, "projectId")...)
	}
	if s.Complexity != nil {
		errs = append(errs, validate.NumberInRange(*s.Complexity, "complexity", validate.Between(0, 100))...)
	}
	if s.StressLevel != nil {
		errs = append(errs, validate.NumberInRange(*s.StressLevel, "stressLevel", validate.Between(0, 100))...)
	}

	return errs
}

// ValidateProject checks a persisted project row.
func ValidateProject(p Project) []validate.FieldError {
	var errs []validate.FieldError

	errs = append(errs, validate.UUID(p.ID, "id")...)
	errs = append(errs, validate.NonEmptyString(p.Name, "name")...)
	errs = append(errs, validate.Timestamp(p.CreatedAt, "createdAt")...)
	errs = append(errs, validate.Timestamp(p.UpdatedAt, "updatedAt")...)

	if p.GitRepository != nil {
		errs = append(errs, validate.URL(*p.GitRepository, "gitRepository")...)
	}
	if p.Color != nil {
		errs = append(errs, validate.HexColor(*p.Color, "color")...)
	}
	if p.LastActive != nil {
		errs = append(errs, validate.Timestamp(*p.LastActive, "lastActive")...)
	}

	return errs
}

// ValidateTag checks a persisted tag row.
func ValidateTag(t Tag) []validate.FieldError {
	var errs []validate.FieldError

	errs = append(errs, validate.UUID(t.ID, "id")...)
	errs = append(errs, validate.NonEmptyString(t.Name, "name")...)
	errs = append(errs, validate.NumberInRange(t.UsageCount, "usageCount", validate.AtLeast(0))...)
	errs = append(errs, validate.Timestamp(t.CreatedAt, "createdAt")...)

	if t.Color != nil {
		errs = append(errs, validate.HexColor(*t.Color, "color")...)
	}

	return errs
}

// ValidatePomodoro checks a persisted pomodoro row.
func ValidatePomodoro(p Pomodoro) []validate.FieldError {
	var errs []validate.FieldError

	errs = append(errs, validate.UUID(p.ID, "id")...)
	errs = append(errs, validate.Timestamp(p.StartTime, "startTime")...)
	errs = append(errs, validate.NumberInRange(p.Duration, "duration", validate.AtLeast(1))...)

	if !p.Status.Valid() {
		errs = append(errs, validate.FieldError{
			Field:   "status",
			Message: "status must be a valid PomodoroStatus",
			Value:   string(p.Status),
		})
	}

	errs = append(errs, validate.Timestamp(p.CreatedAt, "createdAt")...)

	if p.EndTime != nil {
		errs = append(errs, validate.Timestamp(*p.EndTime, "endTime")...)
	}
	if p.SessionID != nil {
		errs = append(errs, validate.UUID(*p.SessionID, "sessionId")...)
	}

	return errs
}

// ValidateBreak checks a persisted break row.
func ValidateBreak(b Break) []validate.FieldError {
	var errs []validate.FieldError

	errs = append(errs, validate.UUID(b.ID, "id")...)
	errs = append(errs, validate.Timestamp(b.StartTime, "startTime")...)
	errs = append(errs, validate.NumberInRange(b.Duration, "duration", validate.AtLeast(1))...)
	errs = append(errs, validate.Timestamp(b.CreatedAt, "createdAt")...)

	if b.EndTime != nil {
		errs = append(errs, validate.Timestamp(*b.EndTime, "endTime")...)
	}
	if b.PomodoroID != nil {
		errs = append(errs, validate.UUID(*b.PomodoroID, "pomodoroId")...)
	}

	return errs
}

// ValidateDailyStats checks a precomputed daily summary.
func ValidateDailyStats(d DailyStats) []validate.FieldError {
	var errs []validate.FieldError

	errs = append(errs, validate.DateFormat(d.Date, "date")...)
	errs = append(errs, validate.NumberInRange(d.TotalTime, "totalTime", validate.AtLeast(0))...)
	errs = append(errs, validate.NumberInRange(d.ActiveTime, "activeTime", validate.AtLeast(0))...)
	errs = append(errs, validate.NumberInRange(d.DeepWorkTime, "deepWorkTime", validate.AtLeast(0))...)
	errs = append(errs, validate.NumberInRange(d.DeepWorkPercentage, "deepWorkPercentage", validate.Between(0, 100))...)
	errs = append(errs, validate.NumberInRange(d.SessionsCount, "sessionsCount", validate.AtLeast(0))...)
	errs = append(errs, validate.NumberInRange(d.AverageSessionLength, "averageSessionLength", validate.AtLeast(0))...)
	errs = append(errs, validate.NumberInRange(d.ContextSwitches, "contextSwitches", validate.AtLeast(0))...)
	errs = append(errs, validate.NumberInRange(d.GoalCompletion, "goalCompletion", validate.Between(0, 100))...)
	errs = append(errs, validate.Timestamp(d.UpdatedAt, "updatedAt")...)

	return errs
}

// ValidateSetting checks a persisted setting row.
func ValidateSetting(s Setting) []validate.FieldError {
	var errs []validate.FieldError

	errs = append(errs, validate.NonEmptyString(s.Key, "key")...)
	errs = append(errs, validate.NonEmptyString(s.Value, "value")...)

	if !s.Type.Valid() {
		errs = append(errs, validate.FieldError{
			Field:   "type",
			Message: "type must be a valid SettingType",
			Value:   string(s.Type),
		})
	}

	errs = append(errs, validate.Timestamp(s.UpdatedAt, "updatedAt")...)

	return errs
}

// ValidateTimeRange checks both dates for format and ordering. The ordering
// rule only applies when both dates parse; comparing malformed dates would
// produce misleading errors.
func ValidateTimeRange(r TimeRange) []validate.FieldError {
	var errs []validate.FieldError

	startErrs := validate.DateFormat(r.StartDate, "startDate")
	endErrs := validate.DateFormat(r.EndDate, "endDate")
	errs = append(errs, startErrs...)
	errs = append(errs, endErrs...)

	if len(startErrs) == 0 && len(endErrs) == 0 {
		start, startErr := time.Parse("2006-01-02", r.StartDate)
		end, endErr := time.Parse("2006-01-02", r.EndDate)
		if startErr == nil && endErr == nil && start.After(end) {
			errs = append(errs, validate.FieldError{
				Field:   "startDate",
				Message: "startDate must be before or equal to endDate",
				Value:   r.StartDate,
			})
		}
	}

	return errs
}
