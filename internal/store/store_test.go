package store_test

import (
	"context"
	"testing"
	"time"

	"tally/internal/store"
	"tally/internal/testsupport"
	"tally/internal/track"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	health, err := st.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable {
		t.Fatalf("expected healthy database: %#v", health)
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("expected all tables present, missing %v", health.MissingTables)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session := testsupport.NewSession(t, st)

	fetched, err := st.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if fetched == nil || fetched.ID != session.ID {
		t.Fatalf("unexpected fetched session: %#v", fetched)
	}
	if fetched.Status != track.SessionActive {
		t.Fatalf("unexpected status: %s", fetched.Status)
	}

	end := time.Now().UTC().Format(time.RFC3339Nano)
	duration := int64(90 * time.Minute / time.Millisecond)
	fetched.EndTime = &end
	fetched.Duration = &duration
	fetched.Status = track.SessionCompleted
	fetched.UpdatedAt = end
	if err := st.UpdateSession(ctx, fetched); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	updated, err := st.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession after update failed: %v", err)
	}
	if updated.Status != track.SessionCompleted {
		t.Fatalf("expected completed status, got %s", updated.Status)
	}
	if updated.Duration == nil || *updated.Duration != duration {
		t.Fatalf("unexpected duration: %v", updated.Duration)
	}
}

func TestGetSessionMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	session, err := st.GetSession(context.Background(), "b54ad275-e465-4a9f-8d21-9e3c0c9a4e64")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if session != nil {
		t.Fatalf("expected nil for missing session, got %#v", session)
	}
}

func TestActiveSessionPrefersLatest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewSession(t, st)
	end := time.Now().UTC().Format(time.RFC3339Nano)
	first.Status = track.SessionCompleted
	first.EndTime = &end
	first.UpdatedAt = end
	if err := st.UpdateSession(ctx, first); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	second := testsupport.NewSession(t, st)

	active, err := st.ActiveSession(ctx)
	if err != nil {
		t.Fatalf("ActiveSession failed: %v", err)
	}
	if active == nil || active.ID != second.ID {
		t.Fatalf("expected second session active, got %#v", active)
	}
}

func TestListSessionsFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	completedSession := testsupport.NewSession(t, st)
	end := time.Now().UTC().Format(time.RFC3339Nano)
	completedSession.Status = track.SessionCompleted
	completedSession.EndTime = &end
	completedSession.UpdatedAt = end
	if err := st.UpdateSession(ctx, completedSession); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	testsupport.NewSession(t, st)

	status := track.SessionCompleted
	sessions, total, err := st.ListSessions(ctx, store.SessionFilter{Status: &status})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if total != 1 || len(sessions) != 1 {
		t.Fatalf("expected one completed session, got total=%d len=%d", total, len(sessions))
	}
	if sessions[0].ID != completedSession.ID {
		t.Fatalf("unexpected session: %s", sessions[0].ID)
	}

	all, total, err := st.ListSessions(ctx, store.SessionFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListSessions with limit failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2 before paging, got %d", total)
	}
	if len(all) != 1 {
		t.Fatalf("expected one page entry, got %d", len(all))
	}
}

func TestSessionTags(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session := testsupport.NewSession(t, st)
	if err := st.ReplaceSessionTags(ctx, session.ID, []string{"refactoring", "backend"}); err != nil {
		t.Fatalf("ReplaceSessionTags failed: %v", err)
	}

	fetched, err := st.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(fetched.Tags) != 2 {
		t.Fatalf("expected two tags, got %v", fetched.Tags)
	}

	tags, err := st.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected two tag rows, got %d", len(tags))
	}
	for _, tag := range tags {
		if tag.UsageCount != 1 {
			t.Fatalf("expected usage count 1 for %s, got %d", tag.Name, tag.UsageCount)
		}
	}

	// Replacing with a subset drops the detached tag from the session.
	if err := st.ReplaceSessionTags(ctx, session.ID, []string{"backend"}); err != nil {
		t.Fatalf("ReplaceSessionTags subset failed: %v", err)
	}
	fetched, err = st.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(fetched.Tags) != 1 || fetched.Tags[0] != "backend" {
		t.Fatalf("expected only backend tag, got %v", fetched.Tags)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := st.SetSetting(ctx, "dailyGoal", "360", track.SettingNumber); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := st.SetSetting(ctx, "dailyGoal", "420", track.SettingNumber); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}

	settings, err := st.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	got, ok := settings["dailyGoal"]
	if !ok {
		t.Fatal("expected dailyGoal setting")
	}
	if got.Value != "420" || got.Type != track.SettingNumber {
		t.Fatalf("unexpected setting: %#v", got)
	}

	if err := st.ClearSettings(ctx); err != nil {
		t.Fatalf("ClearSettings failed: %v", err)
	}
	settings, err = st.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings after clear failed: %v", err)
	}
	if len(settings) != 0 {
		t.Fatalf("expected empty settings, got %d rows", len(settings))
	}
}

func TestSessionAggregates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session := testsupport.NewSession(t, st)
	end := time.Now().UTC().Format(time.RFC3339Nano)
	duration := int64(30 * time.Minute / time.Millisecond)
	session.Status = track.SessionCompleted
	session.EndTime = &end
	session.Duration = &duration
	session.UpdatedAt = end
	if err := st.UpdateSession(ctx, session); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	aggregates, err := st.SessionAggregates(ctx, today, today)
	if err != nil {
		t.Fatalf("SessionAggregates failed: %v", err)
	}
	if len(aggregates) != 1 {
		t.Fatalf("expected one aggregate day, got %d", len(aggregates))
	}
	agg := aggregates[0]
	if agg.Date != today {
		t.Fatalf("unexpected aggregate date: %s", agg.Date)
	}
	if agg.TotalTime != duration {
		t.Fatalf("unexpected total time: %d", agg.TotalTime)
	}
	if agg.DeepWorkTime != duration {
		t.Fatalf("expected 30m session to count as deep work, got %d", agg.DeepWorkTime)
	}
}

func TestPruneBeforeKeepsActiveSessions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	old := testsupport.NewSession(t, st)
	past := time.Now().UTC().AddDate(0, 0, -120)
	oldStart := past.Format(time.RFC3339Nano)
	oldEnd := past.Add(time.Hour).Format(time.RFC3339Nano)
	duration := int64(time.Hour / time.Millisecond)
	old.StartTime = oldStart
	old.EndTime = &oldEnd
	old.Duration = &duration
	old.Status = track.SessionCompleted
	old.UpdatedAt = oldEnd
	if err := st.UpdateSession(ctx, old); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	active := testsupport.NewSession(t, st)

	cutoff := time.Now().UTC().AddDate(0, 0, -90).Format("2006-01-02")
	removed, err := st.PruneBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("PruneBefore failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one pruned row, got %d", removed)
	}

	remaining, err := st.GetSession(ctx, active.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if remaining == nil {
		t.Fatal("expected active session to survive pruning")
	}
}
