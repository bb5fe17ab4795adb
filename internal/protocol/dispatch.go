package protocol

import (
	"log/slog"
	"sync"

	"tally/internal/logging"
)

// NotificationHandler receives one notification per invocation.
type NotificationHandler func(*Message)

type subscription struct {
	fn NotificationHandler
}

// Dispatcher fans inbound notifications out to subscribers registered per
// notification type. Handlers run in subscription order; one handler's panic
// is recovered and logged without disturbing the rest.
type Dispatcher struct {
	mu       sync.Mutex
	handlers map[string][]*subscription
	logger   *slog.Logger
}

// NewDispatcher builds an empty dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		handlers: make(map[string][]*subscription),
		logger:   logger,
	}
}

// Subscribe registers fn for notifications of the given type and returns an
// unsubscribe function removing exactly that registration. Multiple
// subscriptions per type are independent; unsubscribing twice is a no-op.
func (d *Dispatcher) Subscribe(msgType string, fn NotificationHandler) func() {
	sub := &subscription{fn: fn}

	d.mu.Lock()
	d.handlers[msgType] = append(d.handlers[msgType], sub)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		subs := d.handlers[msgType]
		for i, candidate := range subs {
			if candidate == sub {
				d.handlers[msgType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Dispatch invokes every handler registered for the notification's type and
// reports whether at least one ran. Messages that are not notifications, and
// types without registered handlers, return false.
func (d *Dispatcher) Dispatch(n *Message) bool {
	if n == nil || !IsNotificationType(n.Type) {
		return false
	}

	d.mu.Lock()
	subs := d.handlers[n.Type]
	snapshot := make([]*subscription, len(subs))
	copy(snapshot, subs)
	d.mu.Unlock()

	if len(snapshot) == 0 {
		return false
	}

	for _, sub := range snapshot {
		d.invoke(sub.fn, n)
	}
	return true
}

func (d *Dispatcher) invoke(fn NotificationHandler, n *Message) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification handler panicked",
				logging.String("notification", n.Type),
				logging.Any("panic", r))
		}
	}()
	fn(n)
}
