package service

import (
	"log/slog"
	"sync"
	"time"

	"tally/internal/config"
	"tally/internal/logging"
	"tally/internal/store"
)

// Publisher delivers a notification to connected clients. Implementations
// must not block; slow consumers are the transport's problem.
type Publisher interface {
	Publish(notificationType string, payload any)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(notificationType string, payload any)

// Publish calls fn.
func (fn PublisherFunc) Publish(notificationType string, payload any) {
	fn(notificationType, payload)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, any) {}

// Service implements the tracking operations.
type Service struct {
	cfg       *config.Config
	store     *store.Store
	publisher Publisher
	logger    *slog.Logger

	// tick controls how often timer runners emit updates. Tests shorten it.
	tick time.Duration

	mu             sync.Mutex
	pomodoro       *timerRun
	activeBreak    *timerRun
	completedToday int
	completedDate  string
}

// New constructs a Service. A nil publisher drops notifications; a nil
// logger discards logs.
func New(cfg *config.Config, st *store.Store, publisher Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:       cfg,
		store:     st,
		publisher: publisher,
		logger:    logging.NewComponentLogger(logger, "service"),
		tick:      time.Second,
	}
}

// Close stops any running timers. Safe to call more than once.
func (s *Service) Close() {
	s.mu.Lock()
	pomodoro := s.pomodoro
	activeBreak := s.activeBreak
	s.pomodoro = nil
	s.activeBreak = nil
	s.mu.Unlock()

	if pomodoro != nil {
		pomodoro.stop()
	}
	if activeBreak != nil {
		activeBreak.stop()
	}
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}
