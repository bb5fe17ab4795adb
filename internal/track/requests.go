package track

import (
	"fmt"

	"tally/internal/validate"
)

// CreateSessionRequest starts a new session. Every field is optional; an
// empty request starts an untagged session against no project.
type CreateSessionRequest struct {
	ProjectID  *string  `json:"projectId,omitempty"`
	FilePath   *string  `json:"filePath,omitempty"`
	Complexity *float64 `json:"complexity,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// UpdateSessionRequest patches an existing session. Nil fields are left
// untouched.
type UpdateSessionRequest struct {
	Status          *SessionStatus `json:"status,omitempty"`
	Complexity      *float64       `json:"complexity,omitempty"`
	StressLevel     *float64       `json:"stressLevel,omitempty"`
	AddInterruption *bool          `json:"addInterruption,omitempty"`
}

// CreateProjectRequest registers a project. Name is the only required field.
type CreateProjectRequest struct {
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	GitRepository *string `json:"gitRepository,omitempty"`
	GitBranch     *string `json:"gitBranch,omitempty"`
	Color         *string `json:"color,omitempty"`
}

// UpdateProjectRequest patches an existing project.
type UpdateProjectRequest struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	GitRepository *string `json:"gitRepository,omitempty"`
	Color         *string `json:"color,omitempty"`
	IsArchived    *bool   `json:"isArchived,omitempty"`
}

// CreateTagRequest registers a tag.
type CreateTagRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

// UpdateTagRequest patches an existing tag.
type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// CreatePomodoroRequest starts a pomodoro. Duration is in minutes and
// defaults from settings when nil.
type CreatePomodoroRequest struct {
	Duration  *int    `json:"duration,omitempty"`
	SessionID *string `json:"sessionId,omitempty"`
}

// ExportInclude flags which datasets an export carries.
type ExportInclude struct {
	Sessions  bool `json:"sessions"`
	Projects  bool `json:"projects"`
	Stats     bool `json:"stats"`
	Pomodoros bool `json:"pomodoros"`
}

// ExportRequest describes one data export.
type ExportRequest struct {
	TimeRange       TimeRange     `json:"timeRange"`
	Format          string        `json:"format"`
	Include         ExportInclude `json:"include"`
	IncludeInsights *bool         `json:"includeInsights,omitempty"`
	Encrypt         bool          `json:"encrypt,omitempty"`
}

// AnalyticsQuery filters the stats operations.
type AnalyticsQuery struct {
	TimeRange        TimeRange `json:"timeRange"`
	ProjectIDs       []string  `json:"projectIds,omitempty"`
	TagIDs           []string  `json:"tagIds,omitempty"`
	GroupBy          *string   `json:"groupBy,omitempty"`
	IncludeBreakdown *bool     `json:"includeBreakdown,omitempty"`
}

// ExportFormats lists the accepted export formats.
var ExportFormats = []string{"csv", "json"}

// ValidateCreateSessionRequest checks the optional fields that carry
// constraints.
func ValidateCreateSessionRequest(r CreateSessionRequest) []validate.FieldError {
	var errs []validate.FieldError

	if r.ProjectID != nil {
		errs = append(errs, validate.UUID(*r.ProjectID, "projectId")...)
	}
	if r.Complexity != nil {
		errs = append(errs, validate.NumberInRange(*r.Complexity, "complexity", validate.Between(0, 100))...)
	}

	return errs
}

// ValidateUpdateSessionRequest checks a session patch.
func ValidateUpdateSessionRequest(r UpdateSessionRequest) []validate.FieldError {
	var errs []validate.FieldError

	if r.Status != nil && !r.Status.Valid() {
		errs = append(errs, validate.FieldError{
			Field:   "status",
			Message: "status must be a valid SessionStatus",
			Value:   string(*r.Status),
		})
	}
	if r.Complexity != nil {
		errs = append(errs, validate.NumberInRange(*r.Complexity, "complexity", validate.Between(0, 100))...)
	}
	if r.StressLevel != nil {
		errs = append(errs, validate.NumberInRange(*r.StressLevel, "stressLevel", validate.Between(0, 100))...)
	}

	return errs
}

// ValidateCreateProjectRequest checks a project creation request.
func ValidateCreateProjectRequest(r CreateProjectRequest) []validate.FieldError {
	var errs []validate.FieldError

	errs = append(errs, validate.NonEmptyString(r.Name, "name")...)
	if r.GitRepository != nil {
		errs = append(errs, validate.URL(*r.GitRepository, "gitRepository")...)
	}
	if r.Color != nil {
		errs = append(errs, validate.HexColor(*r.Color, "color")...)
	}

	return errs
}

// ValidateUpdateProjectRequest checks a project patch.
func ValidateUpdateProjectRequest(r UpdateProjectRequest) []validate.FieldError {
	var errs []validate.FieldError

	if r.Name != nil {
		errs = append(errs, validate.NonEmptyString(*r.Name, "name")...)
	}
	if r.GitRepository != nil {
		errs = append(errs, validate.URL(*r.GitRepository, "gitRepository")...)
	}
	if r.Color != nil {
		errs = append(errs, validate.HexColor(*r.Color, "color")...)
	}

	return errs
}

// ValidateCreateTagRequest checks a tag creation request.
func ValidateCreateTagRequest(r CreateTagRequest) []validate.FieldError {
	var errs []validate.FieldError

	errs = append(errs, validate.NonEmptyString(r.Name, "name")...)
	if r.Color != nil {
		errs = append(errs, validate.HexColor(*r.Color, "color")...)
	}

	return errs
}

// ValidateUpdateTagRequest checks a tag patch.
func ValidateUpdateTagRequest(r UpdateTagRequest) []validate.FieldError {
	var errs []validate.FieldError

	if r.Name != nil {
		errs = append(errs, validate.NonEmptyString(*r.Name, "name")...)
	}
	if r.Color != nil {
		errs = append(errs, validate.HexColor(*r.Color, "color")...)
	}

	return errs
}

// ValidateCreatePomodoroRequest checks a pomodoro start request.
func ValidateCreatePomodoroRequest(r CreatePomodoroRequest) []validate.FieldError {
	var errs []validate.FieldError

	if r.Duration != nil {
		errs = append(errs, validate.NumberInRange(*r.Duration, "duration", validate.AtLeast(1))...)
	}
	if r.SessionID != nil {
		errs = append(errs, validate.UUID(*r.SessionID, "sessionId")...)
	}

	return errs
}

// ValidateAnalyticsQuery checks a stats query, including per-element id
// checks on the filter arrays.
func ValidateAnalyticsQuery(q AnalyticsQuery) []validate.FieldError {
	errs := ValidateTimeRange(q.TimeRange)

	for i, id := range q.ProjectIDs {
		errs = append(errs, validate.UUID(id, fmt.Sprintf("projectIds[%d]", i))...)
	}
	for i, id := range q.TagIDs {
		errs = append(errs, validate.UUID(id, fmt.Sprintf("tagIds[%d]", i))...)
	}

	if q.GroupBy != nil {
		switch *q.GroupBy {
		case "day", "week", "month":
		default:
			errs = append(errs, validate.FieldError{
				Field:   "groupBy",
				Message: "groupBy must be one of: day, week, month",
				Value:   *q.GroupBy,
			})
		}
	}

	return errs
}

// ValidateExportRequest checks an export request.
func ValidateExportRequest(r ExportRequest) []validate.FieldError {
	errs := ValidateTimeRange(r.TimeRange)

	valid := false
	for _, f := range ExportFormats {
		if r.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, validate.FieldError{
			Field:   "format",
			Message: "format must be one of: csv, json",
			Value:   r.Format,
		})
	}

	return errs
}
