package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"tally/internal/config"
	"tally/internal/store"
	"tally/internal/track"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewSession inserts an active session starting now for tests using the
// provided store.
func NewSession(t testing.TB, st *store.Store) *track.Session {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	session := &track.Session{
		ID:        uuid.NewString(),
		StartTime: now,
		Status:    track.SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.InsertSession(context.Background(), session); err != nil {
		t.Fatalf("store.InsertSession: %v", err)
	}
	return session
}
