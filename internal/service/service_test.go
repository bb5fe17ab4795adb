package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"tally/internal/protocol"
	"tally/internal/testsupport"
	"tally/internal/track"
)

type publishedEvent struct {
	Type    string
	Payload any
}

// recorder captures published notifications for assertions.
type recorder struct {
	mu     sync.Mutex
	events []publishedEvent
	ch     chan publishedEvent
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan publishedEvent, 64)}
}

func (r *recorder) Publish(notificationType string, payload any) {
	event := publishedEvent{Type: notificationType, Payload: payload}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	select {
	case r.ch <- event:
	default:
	}
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, event := range r.events {
		types[i] = event.Type
	}
	return types
}

func (r *recorder) waitFor(t *testing.T, match func(publishedEvent) bool) publishedEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-r.ch:
			if match(event) {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for notification")
		}
	}
}

func newTestService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	rec := newRecorder()
	svc := New(cfg, st, rec, nil)
	svc.tick = 5 * time.Millisecond
	t.Cleanup(svc.Close)
	return svc, rec
}

func TestSessionLifecycle(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()

	project := "tally"
	started, err := svc.StartSession(ctx, track.StartSessionPayload{
		Project: &project,
		Tags:    []string{"go", "ipc"},
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if started.Session.Status != track.SessionActive {
		t.Fatalf("status = %q, want active", started.Session.Status)
	}
	if started.Session.ProjectID == nil {
		t.Fatalf("expected project to be attached")
	}

	paused, err := svc.PauseSession(ctx, track.PauseSessionPayload{SessionID: started.Session.ID})
	if err != nil {
		t.Fatalf("PauseSession: %v", err)
	}
	if paused.Session.Status != track.SessionPaused {
		t.Fatalf("status after pause = %q", paused.Session.Status)
	}

	resumed, err := svc.ResumeSession(ctx, track.ResumeSessionPayload{SessionID: started.Session.ID})
	if err != nil {
		t.Fatalf("ResumeSession: %v", err)
	}
	if resumed.Session.Status != track.SessionActive {
		t.Fatalf("status after resume = %q", resumed.Session.Status)
	}

	stopped, err := svc.StopSession(ctx, track.StopSessionPayload{SessionID: started.Session.ID})
	if err != nil {
		t.Fatalf("StopSession: %v", err)
	}
	if stopped.Session.Status != track.SessionCompleted {
		t.Fatalf("status after stop = %q", stopped.Session.Status)
	}
	if stopped.Session.Duration == nil || *stopped.Session.Duration < 0 {
		t.Fatalf("expected non-negative duration, got %v", stopped.Session.Duration)
	}

	var statusUpdates int
	for _, typ := range rec.types() {
		if typ == protocol.TypeStatusUpdate {
			statusUpdates++
		}
	}
	if statusUpdates < 4 {
		t.Fatalf("statusUpdate notifications = %d, want at least 4", statusUpdates)
	}
}

func TestStartSessionInterruptsPrevious(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.StartSession(ctx, track.StartSessionPayload{})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	second, err := svc.StartSession(ctx, track.StartSessionPayload{})
	if err != nil {
		t.Fatalf("second StartSession: %v", err)
	}
	if second.Session.ID == first.Session.ID {
		t.Fatalf("expected a new session id")
	}

	status, err := svc.SessionStatus(ctx, track.SessionStatusPayload{SessionID: &first.Session.ID})
	if err != nil {
		t.Fatalf("SessionStatus: %v", err)
	}
	if status.Session.Status != track.SessionInterrupted {
		t.Fatalf("first session status = %q, want interrupted", status.Session.Status)
	}
}

func TestPauseRequiresActiveSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, track.StartSessionPayload{})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := svc.PauseSession(ctx, track.PauseSessionPayload{SessionID: started.Session.ID}); err != nil {
		t.Fatalf("PauseSession: %v", err)
	}
	_, err = svc.PauseSession(ctx, track.PauseSessionPayload{SessionID: started.Session.ID})
	if !errors.Is(err, track.ErrConflict) {
		t.Fatalf("pausing a paused session: err = %v, want conflict", err)
	}
}

func TestSessionStatusNoActiveSession(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SessionStatus(context.Background(), track.SessionStatusPayload{})
	if !errors.Is(err, track.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestSettingsUpdateAndReset(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	idle := 600
	theme := "dark"
	aiOff := false
	updated, err := svc.UpdateSettings(ctx, track.SettingsPatch{
		IdleTimeout: &idle,
		Theme:       &theme,
		Features:    &track.FeatureTogglesPatch{AIAnalytics: &aiOff},
	})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if updated.Settings.IdleTimeout != 600 || updated.Settings.Theme != "dark" {
		t.Fatalf("settings after update = %+v", updated.Settings)
	}

	loaded, err := svc.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if loaded.IdleTimeout != 600 {
		t.Fatalf("persisted idleTimeout = %d, want 600", loaded.IdleTimeout)
	}
	if loaded.Features.AIAnalytics || !loaded.Features.Pomodoro {
		t.Fatalf("features after patch = %+v", loaded.Features)
	}

	reset, err := svc.ResetSettings(ctx)
	if err != nil {
		t.Fatalf("ResetSettings: %v", err)
	}
	if reset.Settings.IdleTimeout != svc.cfg.Tracking.IdleTimeoutSeconds {
		t.Fatalf("idleTimeout after reset = %d", reset.Settings.IdleTimeout)
	}
	if reset.Settings.Theme != "system" {
		t.Fatalf("theme after reset = %q", reset.Settings.Theme)
	}
}

func TestStartPomodoroConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.StartPomodoro(ctx, track.StartPomodoroPayload{}); err != nil {
		t.Fatalf("StartPomodoro: %v", err)
	}
	_, err := svc.StartPomodoro(ctx, track.StartPomodoroPayload{})
	if !errors.Is(err, track.ErrConflict) {
		t.Fatalf("second StartPomodoro: err = %v, want conflict", err)
	}
}

func TestStopPomodoroMarksInterrupted(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()

	started, err := svc.StartPomodoro(ctx, track.StartPomodoroPayload{})
	if err != nil {
		t.Fatalf("StartPomodoro: %v", err)
	}
	result, err := svc.StopPomodoro(ctx)
	if err != nil {
		t.Fatalf("StopPomodoro: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success")
	}

	event := rec.waitFor(t, func(e publishedEvent) bool {
		update, ok := e.Payload.(track.PomodoroUpdate)
		return ok && update.PomodoroID == started.PomodoroID && update.Status == track.PomodoroInterrupted
	})
	if event.Type != protocol.TypePomodoroUpdate {
		t.Fatalf("event type = %q", event.Type)
	}

	if _, err := svc.StopPomodoro(ctx); !errors.Is(err, track.ErrConflict) {
		t.Fatalf("second stop: err = %v, want conflict", err)
	}
}

func TestPomodoroRunsToCompletion(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()

	started, err := svc.StartPomodoro(ctx, track.StartPomodoroPayload{})
	if err != nil {
		t.Fatalf("StartPomodoro: %v", err)
	}

	// Pull the deadline in so the countdown expires within the test.
	svc.mu.Lock()
	svc.pomodoro.endsAt = time.Now().Add(10 * time.Millisecond)
	svc.mu.Unlock()

	rec.waitFor(t, func(e publishedEvent) bool {
		update, ok := e.Payload.(track.PomodoroUpdate)
		return ok && update.PomodoroID == started.PomodoroID && update.Status == track.PomodoroCompleted
	})

	svc.mu.Lock()
	completed := svc.completedToday
	svc.mu.Unlock()
	if completed != 1 {
		t.Fatalf("completedToday = %d, want 1", completed)
	}
}

func TestStartBreakLongOverride(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	long := true
	started, err := svc.StartBreak(ctx, track.StartBreakPayload{IsLongBreak: &long})
	if err != nil {
		t.Fatalf("StartBreak: %v", err)
	}
	if !started.IsLongBreak {
		t.Fatalf("expected a long break")
	}
	if started.Duration != svc.cfg.Pomodoro.LongBreakLength {
		t.Fatalf("duration = %d, want %d", started.Duration, svc.cfg.Pomodoro.LongBreakLength)
	}
	if _, err := svc.StopBreak(ctx); err != nil {
		t.Fatalf("StopBreak: %v", err)
	}
}

func TestExportDataWritesJSONFile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.StartSession(ctx, track.StartSessionPayload{}); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	result, err := svc.ExportData(ctx, track.ExportDataPayload{})
	if err != nil {
		t.Fatalf("ExportData: %v", err)
	}
	if !result.Success || result.Format != "json" {
		t.Fatalf("result = %+v", result)
	}
	data, err := os.ReadFile(result.FilePath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "\"sessions\"") {
		t.Fatalf("export missing sessions dataset")
	}
}

func TestExportDataEncrypted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	encrypted := true
	password := "correct horse"
	result, err := svc.ExportData(ctx, track.ExportDataPayload{
		Encrypted: &encrypted,
		Password:  &password,
	})
	if err != nil {
		t.Fatalf("ExportData: %v", err)
	}
	if !result.Encrypted || !strings.HasSuffix(result.FilePath, ".enc") {
		t.Fatalf("result = %+v", result)
	}
}

func TestExportDataRejectsUnknownFormat(t *testing.T) {
	svc, _ := newTestService(t)

	format := "xlsx"
	_, err := svc.ExportData(context.Background(), track.ExportDataPayload{Format: &format})
	if !errors.Is(err, track.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestHealthMetricsRespectsFeatureToggle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.HealthMetrics(ctx, track.HealthMetricsPayload{}); err != nil {
		t.Fatalf("HealthMetrics: %v", err)
	}

	off := false
	if _, err := svc.UpdateSettings(ctx, track.SettingsPatch{
		Features: &track.FeatureTogglesPatch{HealthMonitoring: &off},
	}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	_, err := svc.HealthMetrics(ctx, track.HealthMetricsPayload{})
	if !errors.Is(err, track.ErrUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestComputeHealthMetricsScores(t *testing.T) {
	long := int64(2 * deepWorkThresholdMillis)
	stress := 90.0
	sessions := []track.Session{
		{StartTime: "2026-08-24T09:00:00Z", Duration: &long, StressLevel: &stress},
		{StartTime: "2026-08-25T09:00:00Z", Duration: &long, StressLevel: &stress},
	}

	metrics := computeHealthMetrics(sessions, 4, 1, 8*60*60*1000)
	if metrics.StressLevel != 90 {
		t.Fatalf("stress = %v, want 90", metrics.StressLevel)
	}
	if metrics.FocusScore != 100 {
		t.Fatalf("focus = %v, want 100", metrics.FocusScore)
	}
	if metrics.BreakCompliance != 25 {
		t.Fatalf("break compliance = %v, want 25", metrics.BreakCompliance)
	}
	if len(metrics.Recommendations) == 0 {
		t.Fatalf("expected recommendations for high stress")
	}
}

func TestHealthOutputsUseClientEnums(t *testing.T) {
	contains := func(set []string, v string) bool {
		for _, s := range set {
			if s == v {
				return true
			}
		}
		return false
	}

	// Twenty-minute days against a ten-minute goal trip every
	// recommendation branch at once.
	short := int64(20 * 60 * 1000)
	stress := 90.0
	var sessions []track.Session
	for day := 24; day <= 27; day++ {
		sessions = append(sessions, track.Session{
			StartTime:   time.Date(2026, 8, day, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
			Duration:    &short,
			StressLevel: &stress,
		})
	}
	metrics := computeHealthMetrics(sessions, 4, 1, 10*60*1000)
	if len(metrics.Recommendations) != 4 {
		t.Fatalf("recommendations = %d, want 4", len(metrics.Recommendations))
	}
	for _, rec := range metrics.Recommendations {
		if !contains(RecommendationTypes, rec.Type) {
			t.Errorf("recommendation type %q not accepted by clients", rec.Type)
		}
	}

	svc, rec := newTestService(t)
	svc.publishHealthAlerts(track.HealthMetrics{BurnoutRisk: 80})
	svc.publishHealthAlerts(track.HealthMetrics{StressLevel: 90})
	if len(rec.events) != 2 {
		t.Fatalf("alerts = %d, want 2", len(rec.events))
	}
	for _, event := range rec.events {
		alert, ok := event.Payload.(track.HealthAlert)
		if !ok {
			t.Fatalf("payload type %T", event.Payload)
		}
		if !contains(AlertTypes, alert.AlertType) {
			t.Errorf("alert type %q not accepted by clients", alert.AlertType)
		}
	}
}
