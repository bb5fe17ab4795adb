package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/logging"
	"tally/internal/protocol"
	"tally/internal/track"
)

// timerRun is one live pomodoro or break countdown. The goroutine driving
// it exits when done is closed or the countdown reaches zero.
type timerRun struct {
	id     string
	endsAt time.Time
	done   chan struct{}
	once   sync.Once
}

func newTimerRun(id string, endsAt time.Time) *timerRun {
	return &timerRun{id: id, endsAt: endsAt, done: make(chan struct{})}
}

func (r *timerRun) stop() {
	r.once.Do(func() { close(r.done) })
}

// StartPomodoro begins a pomodoro countdown. Duration defaults to the
// configured length and is given in minutes.
func (s *Service) StartPomodoro(ctx context.Context, payload track.StartPomodoroPayload) (*track.PomodoroStartResult, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.Features.Pomodoro {
		return nil, track.Wrap(track.ErrUnavailable, "pomodoro", "start", "pomodoro feature is disabled", nil)
	}

	duration := settings.PomodoroLength
	if payload.Duration != nil && *payload.Duration > 0 {
		duration = *payload.Duration
	}

	s.mu.Lock()
	if s.pomodoro != nil {
		s.mu.Unlock()
		return nil, track.Wrap(track.ErrConflict, "pomodoro", "start", "a pomodoro is already running", nil)
	}

	start := time.Now().UTC()
	endsAt := start.Add(time.Duration(duration) * time.Minute)
	pomodoro := track.Pomodoro{
		ID:        uuid.NewString(),
		StartTime: start.Format(time.RFC3339Nano),
		Duration:  duration,
		Status:    track.PomodoroActive,
		CreatedAt: start.Format(time.RFC3339Nano),
	}
	run := newTimerRun(pomodoro.ID, endsAt)
	s.pomodoro = run
	s.mu.Unlock()

	if err := s.store.InsertPomodoro(ctx, &pomodoro); err != nil {
		s.clearPomodoro(run)
		return nil, track.Wrap(track.ErrStorage, "pomodoro", "start", "insert pomodoro", err)
	}

	go s.runPomodoro(run, pomodoro)

	s.logger.Info("pomodoro started",
		logging.String("pomodoro_id", pomodoro.ID),
		logging.Int("duration_minutes", duration))
	return &track.PomodoroStartResult{
		Success:    true,
		PomodoroID: pomodoro.ID,
		StartTime:  pomodoro.StartTime,
		EndTime:    endsAt.Format(time.RFC3339Nano),
		Duration:   duration,
	}, nil
}

// StopPomodoro interrupts the running pomodoro.
func (s *Service) StopPomodoro(ctx context.Context) (*track.StopResult, error) {
	s.mu.Lock()
	run := s.pomodoro
	s.pomodoro = nil
	s.mu.Unlock()

	if run == nil {
		return nil, track.Wrap(track.ErrConflict, "pomodoro", "stop", "no pomodoro is running", nil)
	}
	run.stop()

	if err := s.settlePomodoro(ctx, run.id, track.PomodoroInterrupted); err != nil {
		return nil, err
	}
	s.publisher.Publish(protocol.TypePomodoroUpdate, track.PomodoroUpdate{
		PomodoroID:    run.id,
		RemainingTime: 0,
		Status:        track.PomodoroInterrupted,
	})
	s.logger.Info("pomodoro stopped", logging.String("pomodoro_id", run.id))
	return &track.StopResult{Success: true}, nil
}

// StartBreak begins a break countdown. When the payload does not say
// otherwise, every Nth break after the configured pomodoro count is long.
func (s *Service) StartBreak(ctx context.Context, payload track.StartBreakPayload) (*track.BreakStartResult, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.activeBreak != nil {
		s.mu.Unlock()
		return nil, track.Wrap(track.ErrConflict, "pomodoro", "startBreak", "a break is already running", nil)
	}

	long := s.completedToday > 0 && settings.PomodorosUntilLongBreak > 0 &&
		s.completedToday%settings.PomodorosUntilLongBreak == 0
	if payload.IsLongBreak != nil {
		long = *payload.IsLongBreak
	}
	duration := settings.BreakLength
	if long {
		duration = settings.LongBreakLength
	}
	if payload.Duration != nil && *payload.Duration > 0 {
		duration = *payload.Duration
	}

	start := time.Now().UTC()
	endsAt := start.Add(time.Duration(duration) * time.Minute)
	brk := track.Break{
		ID:          uuid.NewString(),
		StartTime:   start.Format(time.RFC3339Nano),
		Duration:    duration,
		IsLongBreak: long,
		CreatedAt:   start.Format(time.RFC3339Nano),
	}
	run := newTimerRun(brk.ID, endsAt)
	s.activeBreak = run
	s.mu.Unlock()

	if err := s.store.InsertBreak(ctx, &brk); err != nil {
		s.clearBreak(run)
		return nil, track.Wrap(track.ErrStorage, "pomodoro", "startBreak", "insert break", err)
	}

	go s.runBreak(run, brk)

	s.logger.Info("break started",
		logging.String("break_id", brk.ID),
		logging.Int("duration_minutes", duration),
		logging.Bool("long", long))
	return &track.BreakStartResult{
		Success:     true,
		BreakID:     brk.ID,
		StartTime:   brk.StartTime,
		EndTime:     endsAt.Format(time.RFC3339Nano),
		Duration:    duration,
		IsLongBreak: long,
	}, nil
}

// StopBreak interrupts the running break.
func (s *Service) StopBreak(ctx context.Context) (*track.StopResult, error) {
	s.mu.Lock()
	run := s.activeBreak
	s.activeBreak = nil
	s.mu.Unlock()

	if run == nil {
		return nil, track.Wrap(track.ErrConflict, "pomodoro", "stopBreak", "no break is running", nil)
	}
	run.stop()

	if err := s.settleBreak(ctx, run.id); err != nil {
		return nil, err
	}
	s.logger.Info("break stopped", logging.String("break_id", run.id))
	return &track.StopResult{Success: true}, nil
}

// runPomodoro drives one pomodoro countdown to completion or interruption.
func (s *Service) runPomodoro(run *timerRun, pomodoro track.Pomodoro) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	settings, err := s.Settings(context.Background())
	if err != nil {
		settings = &track.AppSettings{}
	}
	totalCount := settings.PomodorosUntilLongBreak

	for {
		select {
		case <-run.done:
			return
		case <-ticker.C:
			remaining := time.Until(run.endsAt)
			if remaining > 0 {
				s.mu.Lock()
				completed := s.completedToday
				s.mu.Unlock()
				s.publisher.Publish(protocol.TypePomodoroUpdate, track.PomodoroUpdate{
					PomodoroID:     run.id,
					RemainingTime:  remaining.Milliseconds(),
					Status:         track.PomodoroActive,
					CompletedCount: completed,
					TotalCount:     totalCount,
				})
				continue
			}
			s.completePomodoro(run, totalCount)
			return
		}
	}
}

// completePomodoro settles a naturally expiring pomodoro and, when
// configured, rolls straight into a break.
func (s *Service) completePomodoro(run *timerRun, totalCount int) {
	s.mu.Lock()
	if s.pomodoro != run {
		s.mu.Unlock()
		return
	}
	s.pomodoro = nil
	day := today()
	if s.completedDate != day {
		s.completedDate = day
		s.completedToday = 0
	}
	s.completedToday++
	completed := s.completedToday
	s.mu.Unlock()

	ctx := context.Background()
	if err := s.settlePomodoro(ctx, run.id, track.PomodoroCompleted); err != nil {
		s.logger.Warn("pomodoro completion not persisted",
			logging.String("pomodoro_id", run.id), logging.Error(err))
	}
	s.publisher.Publish(protocol.TypePomodoroUpdate, track.PomodoroUpdate{
		PomodoroID:     run.id,
		RemainingTime:  0,
		Status:         track.PomodoroCompleted,
		CompletedCount: completed,
		TotalCount:     totalCount,
	})
	s.logger.Info("pomodoro completed", logging.String("pomodoro_id", run.id))

	if s.cfg.Pomodoro.AutoStartBreaks {
		if _, err := s.StartBreak(ctx, track.StartBreakPayload{}); err != nil &&
			!errors.Is(err, track.ErrConflict) {
			s.logger.Warn("auto break not started", logging.Error(err))
		}
	}
}

// runBreak drives one break countdown.
func (s *Service) runBreak(run *timerRun, brk track.Break) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-run.done:
			return
		case <-ticker.C:
			remaining := time.Until(run.endsAt)
			if remaining > 0 {
				s.publisher.Publish(protocol.TypeBreakUpdate, track.BreakUpdate{
					BreakID:       run.id,
					RemainingTime: remaining.Milliseconds(),
					Status:        track.PomodoroActive,
					IsLongBreak:   brk.IsLongBreak,
				})
				continue
			}
			s.completeBreak(run, brk)
			return
		}
	}
}

func (s *Service) completeBreak(run *timerRun, brk track.Break) {
	s.mu.Lock()
	if s.activeBreak != run {
		s.mu.Unlock()
		return
	}
	s.activeBreak = nil
	s.mu.Unlock()

	ctx := context.Background()
	if err := s.settleBreak(ctx, run.id); err != nil {
		s.logger.Warn("break completion not persisted",
			logging.String("break_id", run.id), logging.Error(err))
	}
	s.publisher.Publish(protocol.TypeBreakUpdate, track.BreakUpdate{
		BreakID:       run.id,
		RemainingTime: 0,
		Status:        track.PomodoroCompleted,
		IsLongBreak:   brk.IsLongBreak,
	})
	s.logger.Info("break completed", logging.String("break_id", run.id))

	if s.cfg.Pomodoro.AutoStartPomodoros {
		if _, err := s.StartPomodoro(ctx, track.StartPomodoroPayload{}); err != nil &&
			!errors.Is(err, track.ErrConflict) {
			s.logger.Warn("auto pomodoro not started", logging.Error(err))
		}
	}
}

func (s *Service) settlePomodoro(ctx context.Context, id string, status track.PomodoroStatus) error {
	if err := s.store.FinishPomodoro(ctx, id, nowRFC3339(), status); err != nil {
		return track.Wrap(track.ErrStorage, "pomodoro", "settle", "update pomodoro", err)
	}
	return nil
}

func (s *Service) settleBreak(ctx context.Context, id string) error {
	if err := s.store.FinishBreak(ctx, id, nowRFC3339()); err != nil {
		return track.Wrap(track.ErrStorage, "pomodoro", "settleBreak", "update break", err)
	}
	return nil
}

func (s *Service) clearPomodoro(run *timerRun) {
	s.mu.Lock()
	if s.pomodoro == run {
		s.pomodoro = nil
	}
	s.mu.Unlock()
	run.stop()
}

func (s *Service) clearBreak(run *timerRun) {
	s.mu.Lock()
	if s.activeBreak == run {
		s.activeBreak = nil
	}
	s.mu.Unlock()
	run.stop()
}
