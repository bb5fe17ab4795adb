package track

// SessionStatus enumerates the states a tracking session can be in.
type SessionStatus string

const (
	SessionActive      SessionStatus = "active"
	SessionPaused      SessionStatus = "paused"
	SessionCompleted   SessionStatus = "completed"
	SessionInterrupted SessionStatus = "interrupted"
)

// Valid reports whether s is a known session status.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionActive, SessionPaused, SessionCompleted, SessionInterrupted:
		return true
	}
	return false
}

// PomodoroStatus enumerates the states of a pomodoro or break timer.
type PomodoroStatus string

const (
	PomodoroActive      PomodoroStatus = "active"
	PomodoroCompleted   PomodoroStatus = "completed"
	PomodoroInterrupted PomodoroStatus = "interrupted"
)

// Valid reports whether s is a known pomodoro status.
func (s PomodoroStatus) Valid() bool {
	switch s {
	case PomodoroActive, PomodoroCompleted, PomodoroInterrupted:
		return true
	}
	return false
}

// SettingType enumerates the value types a persisted setting may hold.
type SettingType string

const (
	SettingString  SettingType = "string"
	SettingNumber  SettingType = "number"
	SettingBoolean SettingType = "boolean"
	SettingJSON    SettingType = "json"
)

// Valid reports whether t is a known setting type.
func (t SettingType) Valid() bool {
	switch t {
	case SettingString, SettingNumber, SettingBoolean, SettingJSON:
		return true
	}
	return false
}

// Session is the core unit of time tracking: one span of coding activity
// with its status, project association, and quality metrics.
type Session struct {
	ID            string        `json:"id"`
	StartTime     string        `json:"startTime"`
	EndTime       *string       `json:"endTime"`
	Duration      *int64        `json:"duration"`
	Status        SessionStatus `json:"status"`
	ProjectID     *string       `json:"projectId"`
	FilePath      *string       `json:"filePath"`
	Complexity    *float64      `json:"complexity"`
	StressLevel   *float64      `json:"stressLevel"`
	Interruptions int           `json:"interruptions"`
	Tags          []string      `json:"tags,omitempty"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

// Project groups related sessions, usually detected from a workspace or git
// repository.
type Project struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	GitRepository *string `json:"gitRepository"`
	GitBranch     *string `json:"gitBranch"`
	Color         *string `json:"color"`
	IsArchived    bool    `json:"isArchived"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
	LastActive    *string `json:"lastActive"`
}

// Tag labels sessions for flexible categorization.
type Tag struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Color      *string `json:"color"`
	UsageCount int     `json:"usageCount"`
	CreatedAt  string  `json:"createdAt"`
}

// SessionTag links a session to a tag.
type SessionTag struct {
	SessionID string `json:"sessionId"`
	TagID     string `json:"tagId"`
}

// Pomodoro is one focused work period, typically 25 minutes. Duration is in
// minutes.
type Pomodoro struct {
	ID        string         `json:"id"`
	StartTime string         `json:"startTime"`
	EndTime   *string        `json:"endTime"`
	Duration  int            `json:"duration"`
	Status    PomodoroStatus `json:"status"`
	SessionID *string        `json:"sessionId"`
	CreatedAt string         `json:"createdAt"`
}

// Break is a rest period between pomodoros. Duration is in minutes.
type Break struct {
	ID          string  `json:"id"`
	StartTime   string  `json:"startTime"`
	EndTime     *string `json:"endTime"`
	Duration    int     `json:"duration"`
	IsLongBreak bool    `json:"isLongBreak"`
	PomodoroID  *string `json:"pomodoroId"`
	CreatedAt   string  `json:"createdAt"`
}

// ProjectTime is one project's share of a day's tracked time.
type ProjectTime struct {
	Name string `json:"name"`
	Time int64  `json:"time"`
}

// DailyStats is the precomputed per-day summary backing the dashboards.
// Times are in milliseconds.
type DailyStats struct {
	Date                 string        `json:"date"`
	TotalTime            int64         `json:"totalTime"`
	ActiveTime           int64         `json:"activeTime"`
	DeepWorkTime         int64         `json:"deepWorkTime"`
	DeepWorkPercentage   float64       `json:"deepWorkPercentage"`
	SessionsCount        int           `json:"sessionsCount"`
	AverageSessionLength int64         `json:"averageSessionLength"`
	ContextSwitches      int           `json:"contextSwitches"`
	Projects             []ProjectTime `json:"projects,omitempty"`
	GoalCompletion       float64       `json:"goalCompletion"`
	UpdatedAt            string        `json:"updatedAt"`
}

// PeriodSummary aggregates a span of daily stats for weekly and monthly
// views.
type PeriodSummary struct {
	TotalTime            int64   `json:"totalTime"`
	ActiveTime           int64   `json:"activeTime"`
	DeepWorkTime         int64   `json:"deepWorkTime"`
	DeepWorkPercentage   float64 `json:"deepWorkPercentage"`
	SessionsCount        int     `json:"sessionsCount"`
	AverageSessionLength int64   `json:"averageSessionLength"`
	ContextSwitches      int     `json:"contextSwitches"`
	AverageDailyTime     int64   `json:"averageDailyTime"`
}

// Setting is one persisted configuration row.
type Setting struct {
	Key       string      `json:"key"`
	Value     string      `json:"value"`
	Type      SettingType `json:"type"`
	UpdatedAt string      `json:"updatedAt"`
}

// NotificationSettings toggles individual notification kinds.
type NotificationSettings struct {
	SessionEnd       bool `json:"sessionEnd"`
	BreakEnd         bool `json:"breakEnd"`
	IdleDetected     bool `json:"idleDetected"`
	DailyGoalReached bool `json:"dailyGoalReached"`
}

// FeatureToggles enables optional subsystems.
type FeatureToggles struct {
	Pomodoro         bool `json:"pomodoro"`
	AIAnalytics      bool `json:"aiAnalytics"`
	HealthMonitoring bool `json:"healthMonitoring"`
}

// AppSettings is the full user-facing configuration surface. Durations are
// in minutes except IdleTimeout and DailyGoal which are in seconds and
// minutes respectively.
type AppSettings struct {
	IdleTimeout             int                  `json:"idleTimeout"`
	DailyGoal               int                  `json:"dailyGoal"`
	PomodoroLength          int                  `json:"pomodoroLength"`
	BreakLength             int                  `json:"breakLength"`
	LongBreakLength         int                  `json:"longBreakLength"`
	PomodorosUntilLongBreak int                  `json:"pomodorosUntilLongBreak"`
	AutoStartBreaks         bool                 `json:"autoStartBreaks"`
	AutoStartPomodoros      bool                 `json:"autoStartPomodoros"`
	Notifications           NotificationSettings `json:"notifications"`
	Theme                   string               `json:"theme"`
	DataRetention           int                  `json:"dataRetention"`
	Features                FeatureToggles       `json:"features"`
}

// DefaultSettings returns the settings applied on first run and by
// resetSettings.
func DefaultSettings() AppSettings {
	return AppSettings{
		IdleTimeout:             300,
		DailyGoal:               480,
		PomodoroLength:          25,
		BreakLength:             5,
		LongBreakLength:         15,
		PomodorosUntilLongBreak: 4,
		AutoStartBreaks:         false,
		AutoStartPomodoros:      false,
		Notifications: NotificationSettings{
			SessionEnd:       true,
			BreakEnd:         true,
			IdleDetected:     true,
			DailyGoalReached: true,
		},
		Theme:         "system",
		DataRetention: 90,
		Features: FeatureToggles{
			Pomodoro:         true,
			AIAnalytics:      true,
			HealthMonitoring: true,
		},
	}
}

// TimeRange bounds a query by inclusive YYYY-MM-DD dates.
type TimeRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// HealthRecommendation is one actionable suggestion in the health metrics.
type HealthRecommendation struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// HealthMetrics summarizes wellbeing signals derived from tracked activity.
// Scores are 0-100.
type HealthMetrics struct {
	StressLevel     float64                `json:"stressLevel"`
	BurnoutRisk     float64                `json:"burnoutRisk"`
	FocusScore      float64                `json:"focusScore"`
	BreakCompliance float64                `json:"breakCompliance"`
	WorkLifeBalance float64                `json:"workLifeBalance"`
	Recommendations []HealthRecommendation `json:"recommendations,omitempty"`
}
