package track

// Wire payload shapes for the request, response, and notification messages.
// Field names here are the protocol contract; changing a json tag breaks
// every connected editor client.

// StartSessionPayload is the optional payload of a startSession request.
type StartSessionPayload struct {
	Project *string  `json:"project,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// PauseSessionPayload identifies the session to pause. Reason is one of
// manual, idle, break, meeting.
type PauseSessionPayload struct {
	SessionID string  `json:"sessionId"`
	Reason    *string `json:"reason,omitempty"`
}

// ResumeSessionPayload identifies the session to resume.
type ResumeSessionPayload struct {
	SessionID string `json:"sessionId"`
}

// StopSessionPayload identifies the session to stop. Reason is one of
// completed, abandoned, editorClosed.
type StopSessionPayload struct {
	SessionID string  `json:"sessionId"`
	Reason    *string `json:"reason,omitempty"`
}

// SessionStatusPayload optionally targets a specific session; with no id the
// current session is reported.
type SessionStatusPayload struct {
	SessionID *string `json:"sessionId,omitempty"`
}

// SessionsQueryPayload filters and pages the getSessions listing.
type SessionsQueryPayload struct {
	StartDate *string        `json:"startDate,omitempty"`
	EndDate   *string        `json:"endDate,omitempty"`
	Project   *string        `json:"project,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Status    *SessionStatus `json:"status,omitempty"`
	Limit     *int           `json:"limit,omitempty"`
	Offset    *int           `json:"offset,omitempty"`
}

// DailyStatsPayload optionally selects a day; default is today.
type DailyStatsPayload struct {
	Date *string `json:"date,omitempty"`
}

// WeeklyStatsPayload optionally bounds the week; default is the current
// week.
type WeeklyStatsPayload struct {
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
}

// MonthlyStatsPayload optionally selects a month; default is the current
// month.
type MonthlyStatsPayload struct {
	Year  *int `json:"year,omitempty"`
	Month *int `json:"month,omitempty"`
}

// ProjectStatsPayload selects the project and optional date bounds.
type ProjectStatsPayload struct {
	Project   string  `json:"project"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
}

// SettingsPatch is the updateSettings payload. Nil fields are left at their
// current values.
type SettingsPatch struct {
	IdleTimeout             *int                       `json:"idleTimeout,omitempty"`
	DailyGoal               *int                       `json:"dailyGoal,omitempty"`
	PomodoroLength          *int                       `json:"pomodoroLength,omitempty"`
	BreakLength             *int                       `json:"breakLength,omitempty"`
	LongBreakLength         *int                       `json:"longBreakLength,omitempty"`
	PomodorosUntilLongBreak *int                       `json:"pomodorosUntilLongBreak,omitempty"`
	AutoStartBreaks         *bool                      `json:"autoStartBreaks,omitempty"`
	AutoStartPomodoros      *bool                      `json:"autoStartPomodoros,omitempty"`
	Notifications           *NotificationSettingsPatch `json:"notifications,omitempty"`
	Theme                   *string                    `json:"theme,omitempty"`
	DataRetention           *int                       `json:"dataRetention,omitempty"`
	Features                *FeatureTogglesPatch       `json:"features,omitempty"`
}

// NotificationSettingsPatch patches individual notification toggles.
type NotificationSettingsPatch struct {
	SessionEnd       *bool `json:"sessionEnd,omitempty"`
	BreakEnd         *bool `json:"breakEnd,omitempty"`
	IdleDetected     *bool `json:"idleDetected,omitempty"`
	DailyGoalReached *bool `json:"dailyGoalReached,omitempty"`
}

// FeatureTogglesPatch patches individual feature toggles.
type FeatureTogglesPatch struct {
	Pomodoro         *bool `json:"pomodoro,omitempty"`
	AIAnalytics      *bool `json:"aiAnalytics,omitempty"`
	HealthMonitoring *bool `json:"healthMonitoring,omitempty"`
}

// ExportDataPayload configures the exportData operation.
type ExportDataPayload struct {
	Format          *string `json:"format,omitempty"`
	StartDate       *string `json:"startDate,omitempty"`
	EndDate         *string `json:"endDate,omitempty"`
	IncludeProjects *bool   `json:"includeProjects,omitempty"`
	IncludeTags     *bool   `json:"includeTags,omitempty"`
	Encrypted       *bool   `json:"encrypted,omitempty"`
	Password        *string `json:"password,omitempty"`
}

// StartPomodoroPayload optionally overrides the configured pomodoro length
// in minutes.
type StartPomodoroPayload struct {
	Duration *int `json:"duration,omitempty"`
}

// StartBreakPayload optionally overrides the configured break length and
// kind.
type StartBreakPayload struct {
	Duration    *int  `json:"duration,omitempty"`
	IsLongBreak *bool `json:"isLongBreak,omitempty"`
}

// TagSessionPayload attaches tags to a session.
type TagSessionPayload struct {
	SessionID string   `json:"sessionId"`
	Tags      []string `json:"tags"`
}

// HealthMetricsPayload optionally selects a day; default is today.
type HealthMetricsPayload struct {
	Date *string `json:"date,omitempty"`
}

// SessionResult carries a session on its own, for startSessionResponse and
// getSessionStatusResponse.
type SessionResult struct {
	Session Session `json:"session"`
}

// SessionActionResult reports the outcome of a session mutation.
type SessionActionResult struct {
	Success bool    `json:"success"`
	Session Session `json:"session"`
}

// SessionsResult is the getSessionsResponse payload. Total counts matches
// before paging.
type SessionsResult struct {
	Sessions []Session `json:"sessions"`
	Total    int       `json:"total"`
}

// DailyStatsResult is the getDailyStatsResponse payload.
type DailyStatsResult struct {
	Stats DailyStats `json:"stats"`
}

// PeriodStatsResult is the weekly and monthly stats response payload.
type PeriodStatsResult struct {
	Stats   []DailyStats   `json:"stats"`
	Summary *PeriodSummary `json:"summary,omitempty"`
}

// DailyTime is one day's slice of a project breakdown.
type DailyTime struct {
	Date string `json:"date"`
	Time int64  `json:"time"`
}

// ProjectStats aggregates one project's tracked time.
type ProjectStats struct {
	TotalTime            int64       `json:"totalTime"`
	SessionsCount        int         `json:"sessionsCount"`
	AverageSessionLength int64       `json:"averageSessionLength,omitempty"`
	LastActive           *string     `json:"lastActive,omitempty"`
	DailyBreakdown       []DailyTime `json:"dailyBreakdown,omitempty"`
}

// ProjectStatsResult is the getProjectStatsResponse payload.
type ProjectStatsResult struct {
	Project string       `json:"project"`
	Stats   ProjectStats `json:"stats"`
}

// SettingsActionResult reports a settings mutation along with the resulting
// settings.
type SettingsActionResult struct {
	Success  bool        `json:"success"`
	Settings AppSettings `json:"settings"`
}

// ExportResult is the exportDataResponse payload.
type ExportResult struct {
	Success   bool   `json:"success"`
	FilePath  string `json:"filePath"`
	Format    string `json:"format"`
	Encrypted bool   `json:"encrypted"`
}

// PomodoroStartResult is the startPomodoroResponse payload. Duration is in
// minutes.
type PomodoroStartResult struct {
	Success    bool   `json:"success"`
	PomodoroID string `json:"pomodoroId"`
	StartTime  string `json:"startTime,omitempty"`
	EndTime    string `json:"endTime"`
	Duration   int    `json:"duration"`
}

// BreakStartResult is the startBreakResponse payload.
type BreakStartResult struct {
	Success     bool   `json:"success"`
	BreakID     string `json:"breakId"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime"`
	Duration    int    `json:"duration"`
	IsLongBreak bool   `json:"isLongBreak"`
}

// StopResult acknowledges stopPomodoro and stopBreak.
type StopResult struct {
	Success bool `json:"success"`
}

// TagSummary is one entry of the available-tags listing.
type TagSummary struct {
	Name       string `json:"name"`
	UsageCount int    `json:"usageCount"`
}

// TagsResult is the getAvailableTagsResponse payload.
type TagsResult struct {
	Tags []TagSummary `json:"tags"`
}

// ProjectSummary is one entry of the projects listing.
type ProjectSummary struct {
	Name       string  `json:"name"`
	TotalTime  int64   `json:"totalTime"`
	LastActive *string `json:"lastActive,omitempty"`
}

// ProjectsResult is the getProjectsResponse payload.
type ProjectsResult struct {
	Projects []ProjectSummary `json:"projects"`
}

// HealthResult is the getHealthMetricsResponse payload.
type HealthResult struct {
	Metrics HealthMetrics `json:"metrics"`
}

// StatusUpdate is the statusUpdate notification payload.
type StatusUpdate struct {
	Session Session `json:"session"`
}

// IdleDetected is the idleDetected notification payload. IdleTime is in
// milliseconds.
type IdleDetected struct {
	SessionID string `json:"sessionId"`
	IdleTime  int64  `json:"idleTime"`
}

// FocusTimeUpdate is the focusTimeUpdate notification payload. Totals are in
// milliseconds.
type FocusTimeUpdate struct {
	DailyTotal     int64   `json:"dailyTotal"`
	GoalPercentage float64 `json:"goalPercentage"`
	WeeklyTotal    int64   `json:"weeklyTotal,omitempty"`
}

// PomodoroUpdate is the pomodoroUpdate notification payload. RemainingTime
// is in milliseconds.
type PomodoroUpdate struct {
	PomodoroID     string         `json:"pomodoroId"`
	RemainingTime  int64          `json:"remainingTime"`
	Status         PomodoroStatus `json:"status"`
	CompletedCount int            `json:"completedCount,omitempty"`
	TotalCount     int            `json:"totalCount,omitempty"`
}

// BreakUpdate is the breakUpdate notification payload.
type BreakUpdate struct {
	BreakID       string         `json:"breakId"`
	RemainingTime int64          `json:"remainingTime"`
	Status        PomodoroStatus `json:"status"`
	IsLongBreak   bool           `json:"isLongBreak"`
}

// GoalReached is the goalReached notification payload. GoalType is one of
// daily, weekly, project, custom.
type GoalReached struct {
	GoalType   string  `json:"goalType"`
	Achieved   int64   `json:"achieved"`
	Target     int64   `json:"target"`
	Percentage float64 `json:"percentage"`
}

// HealthAlert is the healthAlert notification payload.
type HealthAlert struct {
	AlertType      string `json:"alertType"`
	Message        string `json:"message"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation,omitempty"`
}

// ProjectDetected is the projectDetected notification payload.
type ProjectDetected struct {
	Project     string   `json:"project"`
	GitBranch   string   `json:"gitBranch,omitempty"`
	RecentFiles []string `json:"recentFiles,omitempty"`
}
