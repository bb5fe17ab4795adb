package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tally/internal/logging"
	"tally/internal/protocol"
	"tally/internal/store"
	"tally/internal/track"
)

// StartSession begins a new tracking session. Any session still active or
// paused is interrupted first; only one session runs at a time.
func (s *Service) StartSession(ctx context.Context, payload track.StartSessionPayload) (*track.SessionResult, error) {
	current, err := s.store.ActiveSession(ctx)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "sessions", "start", "load active session", err)
	}
	if current != nil {
		if err := s.finishSession(ctx, current, track.SessionInterrupted); err != nil {
			return nil, err
		}
	}

	now := nowRFC3339()
	session := &track.Session{
		ID:        uuid.NewString(),
		StartTime: now,
		Status:    track.SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if payload.Project != nil {
		project, err := s.ProjectDetected(ctx, *payload.Project, "", nil)
		if err != nil {
			return nil, err
		}
		session.ProjectID = &project.ID
	}

	if err := s.store.InsertSession(ctx, session); err != nil {
		return nil, track.Wrap(track.ErrStorage, "sessions", "start", "insert session", err)
	}

	if len(payload.Tags) > 0 {
		if err := s.store.ReplaceSessionTags(ctx, session.ID, payload.Tags); err != nil {
			return nil, track.Wrap(track.ErrStorage, "sessions", "start", "attach tags", err)
		}
		session.Tags = payload.Tags
	}

	s.logger.Info("session started", logging.String("session_id", session.ID))
	s.publisher.Publish(protocol.TypeStatusUpdate, track.StatusUpdate{Session: *session})
	return &track.SessionResult{Session: *session}, nil
}

// PauseSession pauses an active session.
func (s *Service) PauseSession(ctx context.Context, payload track.PauseSessionPayload) (*track.SessionActionResult, error) {
	session, err := s.requireSession(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != track.SessionActive {
		return nil, track.Wrap(track.ErrConflict, "sessions", "pause", "session is not active", nil)
	}

	session.Status = track.SessionPaused
	session.UpdatedAt = nowRFC3339()
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, track.Wrap(track.ErrStorage, "sessions", "pause", "update session", err)
	}

	reason := "manual"
	if payload.Reason != nil {
		reason = *payload.Reason
	}
	s.logger.Info("session paused",
		logging.String("session_id", session.ID),
		logging.String("reason", reason))
	s.publisher.Publish(protocol.TypeStatusUpdate, track.StatusUpdate{Session: *session})
	return &track.SessionActionResult{Success: true, Session: *session}, nil
}

// ResumeSession resumes a paused session.
func (s *Service) ResumeSession(ctx context.Context, payload track.ResumeSessionPayload) (*track.SessionActionResult, error) {
	session, err := s.requireSession(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != track.SessionPaused {
		return nil, track.Wrap(track.ErrConflict, "sessions", "resume", "session is not paused", nil)
	}

	session.Status = track.SessionActive
	session.UpdatedAt = nowRFC3339()
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, track.Wrap(track.ErrStorage, "sessions", "resume", "update session", err)
	}

	s.logger.Info("session resumed", logging.String("session_id", session.ID))
	s.publisher.Publish(protocol.TypeStatusUpdate, track.StatusUpdate{Session: *session})
	return &track.SessionActionResult{Success: true, Session: *session}, nil
}

// StopSession completes a session and records its duration.
func (s *Service) StopSession(ctx context.Context, payload track.StopSessionPayload) (*track.SessionActionResult, error) {
	session, err := s.requireSession(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != track.SessionActive && session.Status != track.SessionPaused {
		return nil, track.Wrap(track.ErrConflict, "sessions", "stop", "session already finished", nil)
	}

	status := track.SessionCompleted
	if payload.Reason != nil && *payload.Reason == "abandoned" {
		status = track.SessionInterrupted
	}
	if err := s.finishSession(ctx, session, status); err != nil {
		return nil, err
	}

	s.publisher.Publish(protocol.TypeStatusUpdate, track.StatusUpdate{Session: *session})
	s.publishFocusProgress(ctx)
	return &track.SessionActionResult{Success: true, Session: *session}, nil
}

// SessionStatus reports the targeted session, or the current one when the
// payload names none.
func (s *Service) SessionStatus(ctx context.Context, payload track.SessionStatusPayload) (*track.SessionResult, error) {
	if payload.SessionID != nil {
		session, err := s.requireSession(ctx, *payload.SessionID)
		if err != nil {
			return nil, err
		}
		return &track.SessionResult{Session: *session}, nil
	}

	session, err := s.store.ActiveSession(ctx)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "sessions", "status", "load active session", err)
	}
	if session == nil {
		return nil, track.Wrap(track.ErrNotFound, "sessions", "status", "no active session", nil)
	}
	return &track.SessionResult{Session: *session}, nil
}

// Sessions lists sessions matching the query.
func (s *Service) Sessions(ctx context.Context, payload track.SessionsQueryPayload) (*track.SessionsResult, error) {
	filter := store.SessionFilter{
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
		Status:    payload.Status,
	}
	if payload.Limit != nil {
		filter.Limit = *payload.Limit
	}
	if payload.Offset != nil {
		filter.Offset = *payload.Offset
	}
	if payload.Project != nil {
		project, err := s.store.GetProjectByName(ctx, *payload.Project)
		if err != nil {
			return nil, track.Wrap(track.ErrStorage, "sessions", "list", "resolve project", err)
		}
		if project == nil {
			return &track.SessionsResult{Sessions: []track.Session{}, Total: 0}, nil
		}
		filter.ProjectID = &project.ID
	}

	sessions, total, err := s.store.ListSessions(ctx, filter)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "sessions", "list", "query sessions", err)
	}
	if sessions == nil {
		sessions = []track.Session{}
	}
	return &track.SessionsResult{Sessions: sessions, Total: total}, nil
}

// TagSession replaces the tags attached to a session.
func (s *Service) TagSession(ctx context.Context, payload track.TagSessionPayload) (*track.SessionActionResult, error) {
	session, err := s.requireSession(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceSessionTags(ctx, session.ID, payload.Tags); err != nil {
		return nil, track.Wrap(track.ErrStorage, "sessions", "tag", "replace tags", err)
	}
	session.Tags = payload.Tags
	return &track.SessionActionResult{Success: true, Session: *session}, nil
}

// RecordInterruption bumps the interruption counter on the current session.
// Used by idle detection.
func (s *Service) RecordInterruption(ctx context.Context, sessionID string) error {
	session, err := s.requireSession(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Interruptions++
	session.UpdatedAt = nowRFC3339()
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return track.Wrap(track.ErrStorage, "sessions", "interruption", "update session", err)
	}
	return nil
}

func (s *Service) requireSession(ctx context.Context, id string) (*track.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, track.Wrap(track.ErrStorage, "sessions", "get", "load session", err)
	}
	if session == nil {
		return nil, track.Wrap(track.ErrNotFound, "sessions", "get", "session "+id, nil)
	}
	return session, nil
}

func (s *Service) finishSession(ctx context.Context, session *track.Session, status track.SessionStatus) error {
	now := time.Now().UTC()
	end := now.Format(time.RFC3339Nano)
	session.Status = status
	session.EndTime = &end
	session.UpdatedAt = end

	if start, err := time.Parse(time.RFC3339, session.StartTime); err == nil {
		duration := now.Sub(start).Milliseconds()
		if duration < 0 {
			duration = 0
		}
		session.Duration = &duration
	}

	if err := s.store.UpdateSession(ctx, session); err != nil {
		return track.Wrap(track.ErrStorage, "sessions", "finish", "update session", err)
	}

	if session.ProjectID != nil {
		s.touchProject(ctx, *session.ProjectID)
	}

	s.logger.Info("session finished",
		logging.String("session_id", session.ID),
		logging.String("status", string(status)))
	return nil
}
