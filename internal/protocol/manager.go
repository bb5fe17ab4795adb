package protocol

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"tally/internal/logging"
)

// Manager composes a Bridge with a Tracker and a Dispatcher. Every inbound
// message is classified once: responses route to the tracker, notifications
// to the dispatcher, and anything else is dropped as protocol noise.
type Manager struct {
	bridge     Bridge
	tracker    *Tracker
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu          sync.Mutex
	unsubscribe func()
}

// NewManager wires the manager to bridge and starts consuming its inbound
// stream. A non-positive timeout selects DefaultRequestTimeout.
func NewManager(bridge Bridge, timeout time.Duration, logger *slog.Logger) (*Manager, error) {
	if bridge == nil {
		return nil, errors.New("manager requires a bridge")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		bridge:     bridge,
		tracker:    NewTracker(timeout, logger),
		dispatcher: NewDispatcher(logger),
		logger:     logger,
	}

	unsubscribe, err := bridge.OnMessage(m.route)
	if err != nil {
		return nil, err
	}
	m.unsubscribe = unsubscribe
	return m, nil
}

func (m *Manager) route(msg *Message) {
	if msg == nil {
		return
	}
	switch msg.Kind() {
	case KindResponse:
		if !m.tracker.HandleResponse(msg) {
			// Expected after timeouts and disposal races; logged for
			// observability, not treated as a protocol error.
			m.logger.Debug("unmatched response ignored",
				logging.String("type", msg.Type),
				logging.String("id", msg.ID))
		}
	case KindNotification:
		m.dispatcher.Dispatch(msg)
	default:
		m.logger.Debug("unroutable message dropped", logging.String("type", msg.Type))
	}
}

// SendRequest hands req to the tracker with the bridge as egress and returns
// the in-flight call.
func (m *Manager) SendRequest(req *Message) *Call {
	return m.tracker.Send(req, m.bridge.Send)
}

// Request builds, sends, and awaits one request in a single step.
func (m *Manager) Request(ctx context.Context, msgType string, payload any) (*Message, error) {
	req, err := NewRequest(msgType, payload)
	if err != nil {
		return nil, err
	}
	return m.SendRequest(req).Wait(ctx)
}

// SubscribeToNotification registers fn for the given notification type and
// returns its unsubscribe function.
func (m *Manager) SubscribeToNotification(msgType string, fn NotificationHandler) func() {
	return m.dispatcher.Subscribe(msgType, fn)
}

// Dispose detaches from the bridge and fails all pending requests. Safe to
// call multiple times.
func (m *Manager) Dispose() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	m.tracker.Clear()
}
