package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tally/internal/track"
)

// Bundle holds the datasets selected for one export.
type Bundle struct {
	Range       track.TimeRange    `json:"range"`
	GeneratedAt string             `json:"generatedAt"`
	Sessions    []track.Session    `json:"sessions,omitempty"`
	Projects    []track.Project    `json:"projects,omitempty"`
	Tags        []track.Tag        `json:"tags,omitempty"`
	Stats       []track.DailyStats `json:"stats,omitempty"`
	Pomodoros   []track.Pomodoro   `json:"pomodoros,omitempty"`
}

// FileName derives the export file name from the format and date range.
func FileName(format string, r track.TimeRange) string {
	stamp := time.Now().UTC().Format("20060102-150405")
	return fmt.Sprintf("tally-export-%s-to-%s-%s.%s", r.StartDate, r.EndDate, stamp, format)
}

// Write renders bundle into dir using the requested format and returns the
// full path of the written file.
func Write(dir, format string, bundle *Bundle) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(format, bundle.Range))

	switch format {
	case "json":
		if err := writeJSON(path, bundle); err != nil {
			return "", err
		}
	case "csv":
		if err := writeCSV(path, bundle); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	return path, nil
}

func writeJSON(path string, bundle *Bundle) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(bundle); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// writeCSV emits one section per dataset, each introduced by its own header
// row.
func writeCSV(path string, bundle *Bundle) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	if len(bundle.Sessions) > 0 {
		if err := writeSessionRows(w, bundle.Sessions); err != nil {
			return err
		}
	}
	if len(bundle.Projects) > 0 {
		if err := writeProjectRows(w, bundle.Projects); err != nil {
			return err
		}
	}
	if len(bundle.Tags) > 0 {
		if err := writeTagRows(w, bundle.Tags); err != nil {
			return err
		}
	}
	if len(bundle.Stats) > 0 {
		if err := writeStatsRows(w, bundle.Stats); err != nil {
			return err
		}
	}
	if len(bundle.Pomodoros) > 0 {
		if err := writePomodoroRows(w, bundle.Pomodoros); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}

func writeSessionRows(w *csv.Writer, sessions []track.Session) error {
	if err := w.Write([]string{"session_id", "start_time", "end_time", "duration_ms", "status", "project_id", "interruptions", "tags"}); err != nil {
		return fmt.Errorf("write session header: %w", err)
	}
	for _, s := range sessions {
		row := []string{
			s.ID,
			s.StartTime,
			deref(s.EndTime),
			formatInt64Ptr(s.Duration),
			string(s.Status),
			deref(s.ProjectID),
			strconv.Itoa(s.Interruptions),
			joinTags(s.Tags),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write session row: %w", err)
		}
	}
	return flushSection(w)
}

func writeProjectRows(w *csv.Writer, projects []track.Project) error {
	if err := w.Write([]string{"project_id", "name", "git_repository", "git_branch", "archived", "last_active"}); err != nil {
		return fmt.Errorf("write project header: %w", err)
	}
	for _, p := range projects {
		row := []string{
			p.ID,
			p.Name,
			deref(p.GitRepository),
			deref(p.GitBranch),
			strconv.FormatBool(p.IsArchived),
			deref(p.LastActive),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write project row: %w", err)
		}
	}
	return flushSection(w)
}

func writeTagRows(w *csv.Writer, tags []track.Tag) error {
	if err := w.Write([]string{"tag_id", "name", "color", "usage_count"}); err != nil {
		return fmt.Errorf("write tag header: %w", err)
	}
	for _, t := range tags {
		row := []string{
			t.ID,
			t.Name,
			deref(t.Color),
			strconv.Itoa(t.UsageCount),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write tag row: %w", err)
		}
	}
	return flushSection(w)
}

func writeStatsRows(w *csv.Writer, stats []track.DailyStats) error {
	if err := w.Write([]string{"date", "total_time_ms", "active_time_ms", "deep_work_time_ms", "sessions_count", "context_switches", "goal_completion"}); err != nil {
		return fmt.Errorf("write stats header: %w", err)
	}
	for _, d := range stats {
		row := []string{
			d.Date,
			strconv.FormatInt(d.TotalTime, 10),
			strconv.FormatInt(d.ActiveTime, 10),
			strconv.FormatInt(d.DeepWorkTime, 10),
			strconv.Itoa(d.SessionsCount),
			strconv.Itoa(d.ContextSwitches),
			strconv.FormatFloat(d.GoalCompletion, 'f', 1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write stats row: %w", err)
		}
	}
	return flushSection(w)
}

func writePomodoroRows(w *csv.Writer, pomodoros []track.Pomodoro) error {
	if err := w.Write([]string{"pomodoro_id", "start_time", "end_time", "duration_min", "status", "session_id"}); err != nil {
		return fmt.Errorf("write pomodoro header: %w", err)
	}
	for _, p := range pomodoros {
		row := []string{
			p.ID,
			p.StartTime,
			deref(p.EndTime),
			strconv.Itoa(p.Duration),
			string(p.Status),
			deref(p.SessionID),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write pomodoro row: %w", err)
		}
	}
	return flushSection(w)
}

func flushSection(w *csv.Writer) error {
	w.Flush()
	return w.Error()
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatInt64Ptr(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func joinTags(tags []string) string {
	switch len(tags) {
	case 0:
		return ""
	case 1:
		return tags[0]
	}
	joined := tags[0]
	for _, tag := range tags[1:] {
		joined += ";" + tag
	}
	return joined
}
