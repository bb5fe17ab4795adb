package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tally/internal/logging"
)

// DefaultRequestTimeout bounds how long a tracker waits for a response
// before failing the caller.
const DefaultRequestTimeout = 30 * time.Second

// ErrCancelled rejects every caller still pending when a tracker is cleared.
var ErrCancelled = errors.New("request cancelled: tracker cleared")

// Call represents an in-flight request in the net/rpc style. Done receives
// the Call exactly once, after Response or Err is set.
type Call struct {
	Request  *Message
	Response *Message
	Err      error
	Done     chan *Call
}

func (c *Call) finish() {
	select {
	case c.Done <- c:
	default:
		// Done is buffered for one completion; a second settle attempt would
		// violate the at-most-once invariant and is dropped.
	}
}

// Wait blocks until the call settles or ctx is done.
func (c *Call) Wait(ctx context.Context) (*Message, error) {
	select {
	case <-c.Done:
		return c.Response, c.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type pendingEntry struct {
	call  *Call
	timer *time.Timer
	since time.Time
}

// Tracker owns the collection of in-flight requests and matches incoming
// responses to the request awaiting them. Each pending entry is settled at
// most once: by a matching response, by its timeout firing, or by Clear.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]*pendingEntry
	timeout time.Duration
	logger  *slog.Logger
}

// NewTracker builds a tracker applying timeout uniformly to every request it
// issues. A non-positive timeout selects DefaultRequestTimeout.
func NewTracker(timeout time.Duration, logger *slog.Logger) *Tracker {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Tracker{
		pending: make(map[string]*pendingEntry),
		timeout: timeout,
		logger:  logger,
	}
}

// Send registers req as pending and hands it to send. Registration happens
// before egress so a response delivered synchronously from within send still
// finds the entry. The returned Call settles with the non-error response, or
// with an error on an error-typed response, timeout, egress failure, or
// Clear.
func (t *Tracker) Send(req *Message, send func(*Message) error) *Call {
	call := &Call{Request: req, Done: make(chan *Call, 1)}

	if req == nil || req.ID == "" {
		call.Err = errors.New("request must carry an id")
		call.finish()
		return call
	}

	entry := &pendingEntry{call: call, since: time.Now()}
	entry.timer = time.AfterFunc(t.timeout, func() {
		if t.remove(req.ID) == nil {
			return
		}
		call.Err = fmt.Errorf("request %s timed out after %dms", req.Type, t.timeout.Milliseconds())
		call.finish()
	})

	t.mu.Lock()
	t.pending[req.ID] = entry
	t.mu.Unlock()

	if err := send(req); err != nil {
		if t.remove(req.ID) != nil {
			call.Err = fmt.Errorf("send %s: %w", req.Type, err)
			call.finish()
		}
		return call
	}

	return call
}

// HandleResponse settles the pending request matching resp's id. It returns
// false when no entry matches: unmatched responses are expected after
// timeouts, disposal, or when another tracker issued the request, and are
// not an error. Duplicate responses for an already-settled id are a no-op.
func (t *Tracker) HandleResponse(resp *Message) bool {
	if resp == nil || resp.ID == "" {
		return false
	}

	entry := t.remove(resp.ID)
	if entry == nil {
		return false
	}

	call := entry.call
	if resp.IsError() && resp.Error != nil {
		call.Err = fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
	} else {
		call.Response = resp
	}
	call.finish()
	return true
}

// Clear fails every outstanding caller with ErrCancelled and releases all
// timers. Used on disposal so callers settle deterministically instead of
// hanging.
func (t *Tracker) Clear() {
	t.mu.Lock()
	entries := make([]*pendingEntry, 0, len(t.pending))
	for id, entry := range t.pending {
		entries = append(entries, entry)
		delete(t.pending, id)
	}
	t.mu.Unlock()

	for _, entry := range entries {
		entry.timer.Stop()
		entry.call.Err = ErrCancelled
		entry.call.finish()
	}
}

// PendingCount reports the number of requests still awaiting a response.
func (t *Tracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// remove detaches and returns the entry for id, stopping its timer, or nil
// when id is not pending. Removal before settling keeps every settle path
// idempotent.
func (t *Tracker) remove(id string) *pendingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.pending[id]
	if !ok {
		return nil
	}
	delete(t.pending, id)
	entry.timer.Stop()
	return entry
}
